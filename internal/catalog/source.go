package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/starford/docnotes/internal/checksum"
	"github.com/starford/docnotes/internal/models"
)

// Source is one read of the documentation snapshot.
type Source struct {
	Path     string
	Records  []models.ClassRecord
	Checksum string
	ReadAt   time.Time
}

// LoadFile reads the documentation snapshot at path.
func LoadFile(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	records, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", path, err)
	}
	return &Source{
		Path:     path,
		Records:  records,
		Checksum: checksum.Sum(data),
		ReadAt:   time.Now(),
	}, nil
}

// Decode parses a snapshot given either as a bare array of class records or
// wrapped as {"nodes": [...]}.
func Decode(data []byte) ([]models.ClassRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("decode: empty document")
	}

	if trimmed[0] == '{' {
		var doc models.CatalogDocument
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		return nonNilSlice(doc.Nodes), nil
	}

	var records []models.ClassRecord
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return nonNilSlice(records), nil
}
