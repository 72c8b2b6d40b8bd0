// Package notes keeps the in-memory note collection and persists it as one
// whole-file snapshot through a Gateway.
package notes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/starford/docnotes/internal/models"
	"github.com/starford/docnotes/internal/storage"
)

// Gateway reads and replaces the full persisted note collection.
type Gateway interface {
	// Fetch returns every persisted note. An absent snapshot is an empty slice.
	Fetch(ctx context.Context) ([]models.Note, error)
	// Replace overwrites the persisted snapshot with notes.
	Replace(ctx context.Context, notes []models.Note) error
}

// UnreadableSuffix is appended to the snapshot name for the copy FileGateway
// keeps of a file it cannot decode.
const UnreadableSuffix = ".unreadable"

// FileGateway stores the snapshot as a JSON file on the local disk.
type FileGateway struct {
	fs   storage.Provider
	name string
}

// NewFileGateway returns a gateway for the JSON file at path. The parent
// directory is created when missing.
func NewFileGateway(path string) (*FileGateway, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("notes: mkdir %s: %w", dir, err)
	}
	fs, err := storage.NewFS(dir)
	if err != nil {
		return nil, err
	}
	return &FileGateway{fs: fs, name: filepath.Base(path)}, nil
}

// Fetch implements Gateway.
func (g *FileGateway) Fetch(_ context.Context) ([]models.Note, error) {
	data, err := g.fs.Read(g.name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.Note{}, nil
		}
		return nil, err
	}
	notes, err := DecodeDocument(data)
	if err != nil {
		// Keep the unreadable bytes; the next save replaces the snapshot.
		backup := g.name + UnreadableSuffix
		if werr := g.fs.Write(backup, data); werr != nil {
			return nil, fmt.Errorf("%w (backup %s failed: %v)", err, backup, werr)
		}
		return nil, fmt.Errorf("%w (copy kept as %s)", err, backup)
	}
	return notes, nil
}

// Replace implements Gateway.
func (g *FileGateway) Replace(_ context.Context, notes []models.Note) error {
	data, err := EncodeDocument(notes)
	if err != nil {
		return err
	}
	return g.fs.Write(g.name, data)
}

// EncodeDocument renders notes as {"notes": [...]} with two-space indentation.
func EncodeDocument(notes []models.Note) ([]byte, error) {
	if notes == nil {
		notes = []models.Note{}
	}
	data, err := json.MarshalIndent(models.NotesDocument{Notes: notes}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("notes: encode: %w", err)
	}
	return append(data, '\n'), nil
}

// DecodeDocument parses a {"notes": [...]} snapshot. A document without a
// notes key decodes to an empty slice.
func DecodeDocument(data []byte) ([]models.Note, error) {
	var doc models.NotesDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("notes: decode: %w", err)
	}
	if doc.Notes == nil {
		return []models.Note{}, nil
	}
	return doc.Notes, nil
}
