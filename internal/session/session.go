// Package session composes the catalogue and the note store into the handle
// shared by the HTTP and MCP surfaces.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/docnotes/internal/apperr"
	"github.com/starford/docnotes/internal/catalog"
	"github.com/starford/docnotes/internal/models"
	"github.com/starford/docnotes/internal/notes"
	"github.com/starford/docnotes/internal/sse"
)

// Notifier receives change events. *sse.Broker implements it.
type Notifier interface {
	Publish(event sse.Event)
	PublishNoteEvent(kind, classID, itemID string)
}

type nopNotifier struct{}

func (nopNotifier) Publish(sse.Event) {}
func (nopNotifier) PublishNoteEvent(_, _, _ string) {}

// Session holds the current catalogue and the note collection.
type Session struct {
	holder *catalog.Holder
	store  *notes.Store
	notify Notifier
	logger *slog.Logger
}

// New creates a session. A nil notifier discards events.
func New(holder *catalog.Holder, store *notes.Store, notify Notifier, logger *slog.Logger) *Session {
	if notify == nil {
		notify = nopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{holder: holder, store: store, notify: notify, logger: logger}
}

// Catalog returns the catalogue in effect.
func (s *Session) Catalog() *catalog.Catalog { return s.holder.Current() }

// Status reports the note store persistence state.
func (s *Session) Status() notes.Status { return s.store.Status() }

// Notes returns every note with its orphan flag set against the current catalogue.
func (s *Session) Notes() []models.Note {
	return s.markOrphans(s.store.All())
}

// NotesForClass returns the notes scoped to classID.
func (s *Session) NotesForClass(classID string) []models.Note {
	return s.markOrphans(s.store.ForClass(classID))
}

// Note returns a single note or apperr.ErrNotFound.
func (s *Session) Note(classID, itemID string) (models.Note, error) {
	n, ok := s.store.Find(classID, itemID)
	if !ok {
		return models.Note{}, fmt.Errorf("note %s/%s: %w", classID, itemID, apperr.ErrNotFound)
	}
	return s.markOrphans([]models.Note{n})[0], nil
}

// Orphans returns the notes whose key no longer resolves in the catalogue.
func (s *Session) Orphans() []models.Note {
	out := []models.Note{}
	for _, n := range s.Notes() {
		if n.Orphan {
			out = append(out, n)
		}
	}
	return out
}

// SetNote creates or replaces a note. A persistence failure is returned but the
// change stays in memory and is still announced.
func (s *Session) SetNote(ctx context.Context, classID, itemID, content string) (models.Note, error) {
	err := s.store.Upsert(ctx, classID, itemID, content)
	return s.afterWrite(err, sse.KindSaved, classID, itemID)
}

// UpdateNote changes an existing note only.
func (s *Session) UpdateNote(ctx context.Context, classID, itemID, content string) (models.Note, error) {
	err := s.store.Update(ctx, classID, itemID, content)
	return s.afterWrite(err, sse.KindSaved, classID, itemID)
}

// DeleteNote removes a note. Deleting an absent note reports false and no error.
func (s *Session) DeleteNote(ctx context.Context, classID, itemID string) (bool, error) {
	removed, err := s.store.Remove(ctx, classID, itemID)
	if removed && (err == nil || errors.Is(err, apperr.ErrPersist)) {
		s.notify.PublishNoteEvent(sse.KindDeleted, classID, itemID)
	}
	return removed, err
}

// ReplaceNotes swaps the whole collection.
func (s *Session) ReplaceNotes(ctx context.Context, ns []models.Note) error {
	err := s.store.ReplaceAll(ctx, ns)
	if err == nil || errors.Is(err, apperr.ErrPersist) {
		s.notify.PublishNoteEvent(sse.KindReplaced, "", "")
	}
	return err
}

// Flush writes the collection when the last save failed or is outstanding.
func (s *Session) Flush(ctx context.Context) error {
	if !s.store.Status().Unsaved {
		return nil
	}
	return s.store.Save(ctx)
}

// CatalogReloaded is the watcher callback: it announces the new catalogue and
// logs how many notes it orphaned.
func (s *Session) CatalogReloaded(c *catalog.Catalog) {
	orphans := len(s.Orphans())
	if orphans > 0 {
		s.logger.Warn("session: notes without a catalogue match", slog.Int("orphans", orphans))
	}
	s.notify.Publish(sse.Event{Type: sse.TypeCatalogReloaded, Data: map[string]any{
		"checksum": c.Checksum(),
		"records":  c.Len(),
		"orphans":  orphans,
	}})
}

func (s *Session) afterWrite(err error, kind, classID, itemID string) (models.Note, error) {
	if err != nil && !errors.Is(err, apperr.ErrPersist) {
		return models.Note{}, err
	}
	s.notify.PublishNoteEvent(kind, classID, itemID)
	n, ok := s.store.Find(classID, itemID)
	if !ok {
		// Removed concurrently after the write.
		return models.Note{ClassID: classID, ItemID: itemID}, err
	}
	return s.markOrphans([]models.Note{n})[0], err
}

// markOrphans flags notes that do not resolve. An empty catalogue (not loaded)
// flags nothing.
func (s *Session) markOrphans(ns []models.Note) []models.Note {
	c := s.holder.Current()
	if c.Len() == 0 {
		return ns
	}
	for i := range ns {
		ns[i].Orphan = !c.Resolve(ns[i].ClassID, ns[i].ItemID)
	}
	return ns
}
