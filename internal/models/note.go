// Package models defines the domain types for docnotes.
package models

// Note is a free-text annotation attached to one catalogue item.
// ClassID is the scope (class name) and ItemID the member within it.
type Note struct {
	ClassID string `json:"classId"`
	ItemID  string `json:"itemId"`
	Content string `json:"content"`
	Orphan  bool   `json:"orphan,omitempty"` // key no longer resolves in the catalogue
}

// Key returns the (class, item) pair identifying the note.
func (n Note) Key() NoteKey {
	return NoteKey{ClassID: n.ClassID, ItemID: n.ItemID}
}

// NoteKey identifies at most one note.
type NoteKey struct {
	ClassID string
	ItemID  string
}

// NotesDocument is the persisted snapshot payload exchanged with a gateway.
type NotesDocument struct {
	Notes []Note `json:"notes"`
}
