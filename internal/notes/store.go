package notes

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/docnotes/internal/apperr"
	"github.com/starford/docnotes/internal/models"
)

// Default persistence retry policy.
const (
	DefaultSaveRetries = 2
	DefaultSaveBackoff = 100 * time.Millisecond
)

// Status describes the persistence state of a Store.
type Status struct {
	Count     int    `json:"count"`
	Version   uint64 `json:"version"`
	Persisted uint64 `json:"persisted_version"`
	Unsaved   bool   `json:"unsaved"`
	LastError string `json:"last_error,omitempty"`
	// LoadError is set while the collection started empty because the
	// snapshot could not be read.
	LoadError string `json:"load_error,omitempty"`
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for load and save failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithRetries sets how many times a failed write is retried and the base
// delay between attempts. The delay grows linearly with the attempt number.
func WithRetries(n int, backoff time.Duration) Option {
	return func(s *Store) {
		if n >= 0 {
			s.retries = n
		}
		if backoff >= 0 {
			s.backoff = backoff
		}
	}
}

// Store is the in-memory note collection. Every mutation persists the whole
// collection through the gateway.
//
// Mutations bump a version under mu. Writes are serialised by saveMu and
// always send the newest snapshot, so a write that finds its version already
// persisted by a later one returns without touching the gateway.
type Store struct {
	gw      Gateway
	logger  *slog.Logger
	retries int
	backoff time.Duration

	mu        sync.Mutex
	notes     []models.Note
	version   uint64
	persisted uint64
	lastErr   error
	loadErr   error

	saveMu sync.Mutex
}

// NewStore creates an empty store over gw. Call Load to read the snapshot.
func NewStore(gw Gateway, opts ...Option) *Store {
	s := &Store{
		gw:      gw,
		logger:  slog.Default(),
		retries: DefaultSaveRetries,
		backoff: DefaultSaveBackoff,
		notes:   []models.Note{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load replaces the collection with the persisted snapshot. On failure the
// collection is empty and the error, wrapping apperr.ErrLoad, is returned.
func (s *Store) Load(ctx context.Context) ([]models.Note, error) {
	fetched, err := s.gw.Fetch(ctx)
	if err != nil {
		s.mu.Lock()
		s.notes = []models.Note{}
		s.version++
		s.persisted = s.version
		s.loadErr = fmt.Errorf("%w: %w", apperr.ErrLoad, err)
		loadErr := s.loadErr
		s.mu.Unlock()

		s.logger.Error("notes: load failed, starting empty", slog.String("error", err.Error()))
		return []models.Note{}, loadErr
	}

	folded, dups := fold(fetched)
	if dups > 0 {
		s.logger.Warn("notes: duplicate keys in snapshot, last entry kept", slog.Int("duplicates", dups))
	}

	s.mu.Lock()
	s.notes = folded
	s.version++
	s.persisted = s.version
	s.lastErr = nil
	s.loadErr = nil
	out := cloneNotes(s.notes)
	s.mu.Unlock()

	s.logger.Info("notes: loaded", slog.Int("count", len(out)))
	return out, nil
}

// Upsert sets the content of the note at (classID, itemID), appending it when
// absent, then persists the collection.
func (s *Store) Upsert(ctx context.Context, classID, itemID, content string) error {
	if err := validateKey(classID, itemID); err != nil {
		return err
	}
	s.mu.Lock()
	if i := s.indexOf(classID, itemID); i >= 0 {
		s.notes[i].Content = content
	} else {
		s.notes = append(s.notes, models.Note{ClassID: classID, ItemID: itemID, Content: content})
	}
	v := s.bump()
	s.mu.Unlock()
	return s.persist(ctx, v, false)
}

// Update sets the content of an existing note. It returns apperr.ErrNotFound
// without writing when the note is absent.
func (s *Store) Update(ctx context.Context, classID, itemID, content string) error {
	if err := validateKey(classID, itemID); err != nil {
		return err
	}
	s.mu.Lock()
	i := s.indexOf(classID, itemID)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("note %s/%s: %w", classID, itemID, apperr.ErrNotFound)
	}
	s.notes[i].Content = content
	v := s.bump()
	s.mu.Unlock()
	return s.persist(ctx, v, false)
}

// Remove deletes the note at (classID, itemID). Removing an absent note is a
// no-op and writes nothing.
func (s *Store) Remove(ctx context.Context, classID, itemID string) (bool, error) {
	if err := validateKey(classID, itemID); err != nil {
		return false, err
	}
	s.mu.Lock()
	i := s.indexOf(classID, itemID)
	if i < 0 {
		s.mu.Unlock()
		return false, nil
	}
	s.notes = append(s.notes[:i:i], s.notes[i+1:]...)
	v := s.bump()
	s.mu.Unlock()
	return true, s.persist(ctx, v, false)
}

// ReplaceAll swaps the whole collection and persists it.
func (s *Store) ReplaceAll(ctx context.Context, notes []models.Note) error {
	for _, n := range notes {
		if err := validateKey(n.ClassID, n.ItemID); err != nil {
			return err
		}
	}
	folded, _ := fold(notes)
	s.mu.Lock()
	s.notes = folded
	v := s.bump()
	s.mu.Unlock()
	return s.persist(ctx, v, false)
}

// Save writes the current collection even when nothing changed.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	v := s.version
	s.mu.Unlock()
	return s.persist(ctx, v, true)
}

// Find returns the note at (classID, itemID).
func (s *Store) Find(classID, itemID string) (models.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(classID, itemID); i >= 0 {
		return s.notes[i], true
	}
	return models.Note{}, false
}

// Exists reports whether a note is stored at (classID, itemID).
func (s *Store) Exists(classID, itemID string) bool {
	_, ok := s.Find(classID, itemID)
	return ok
}

// All returns a copy of the collection in insertion order.
func (s *Store) All() []models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneNotes(s.notes)
}

// ForClass returns the notes scoped to classID.
func (s *Store) ForClass(classID string) []models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Note{}
	for _, n := range s.notes {
		if n.ClassID == classID {
			out = append(out, n)
		}
	}
	return out
}

// Len returns the number of notes.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notes)
}

// Status reports the persistence state.
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		Count:     len(s.notes),
		Version:   s.version,
		Persisted: s.persisted,
		Unsaved:   s.persisted < s.version || s.lastErr != nil,
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	if s.loadErr != nil {
		st.LoadError = s.loadErr.Error()
	}
	return st
}

// bump must be called with mu held.
func (s *Store) bump() uint64 {
	s.version++
	return s.version
}

// indexOf must be called with mu held.
func (s *Store) indexOf(classID, itemID string) int {
	for i, n := range s.notes {
		if n.ClassID == classID && n.ItemID == itemID {
			return i
		}
	}
	return -1
}

// persist writes the newest snapshot unless version v is already durable.
func (s *Store) persist(ctx context.Context, v uint64, force bool) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if !force && s.persisted >= v {
		s.mu.Unlock()
		return nil
	}
	snapshot := cloneNotes(s.notes)
	target := s.version
	s.mu.Unlock()

	err := s.write(ctx, snapshot)

	s.mu.Lock()
	if err == nil {
		if target > s.persisted {
			s.persisted = target
		}
		s.lastErr = nil
	} else {
		s.lastErr = err
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("notes: save failed, changes kept in memory",
			slog.Uint64("version", target),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", apperr.ErrPersist, err)
	}
	s.logger.Debug("notes: saved", slog.Uint64("version", target), slog.Int("count", len(snapshot)))
	return nil
}

func (s *Store) write(ctx context.Context, snapshot []models.Note) error {
	var err error
	for attempt := 0; attempt <= s.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.backoff * time.Duration(attempt)):
			}
			s.logger.Warn("notes: retrying save", slog.Int("attempt", attempt), slog.String("error", err.Error()))
		}
		if err = s.gw.Replace(ctx, snapshot); err == nil {
			return nil
		}
	}
	return err
}

func validateKey(classID, itemID string) error {
	if classID == "" || itemID == "" {
		return fmt.Errorf("note key requires class and item id: %w", apperr.ErrInvalid)
	}
	return nil
}

// fold collapses duplicate keys with upsert semantics: the first position is
// kept and the last content wins. Orphan flags are dropped.
func fold(in []models.Note) ([]models.Note, int) {
	out := make([]models.Note, 0, len(in))
	pos := make(map[models.NoteKey]int, len(in))
	dups := 0
	for _, n := range in {
		n.Orphan = false
		if i, ok := pos[n.Key()]; ok {
			out[i].Content = n.Content
			dups++
			continue
		}
		pos[n.Key()] = len(out)
		out = append(out, n)
	}
	return out, dups
}

func cloneNotes(in []models.Note) []models.Note {
	out := make([]models.Note, len(in))
	copy(out, in)
	return out
}
