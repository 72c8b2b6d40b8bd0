package api

import (
	"github.com/starford/docnotes/internal/models"
)

// NoteContentRequest is the request body for PUT and PATCH on a note.
type NoteContentRequest struct {
	Content *string `json:"content" example:"Clamped to [0, 1]." validate:"required"`
}

// NoteMutationResponse is returned by note writes. Persisted is false when the
// change is held in memory but the snapshot write failed.
type NoteMutationResponse struct {
	Note      *models.Note `json:"note,omitempty"`
	Persisted bool         `json:"persisted"`
	Error     string       `json:"error,omitempty"`
}

// SuccessResponse acknowledges a full snapshot replacement.
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}

// SearchHit is one matching tree item. Children is the number of direct
// children so clients can tell categories from classes without the subtree.
type SearchHit struct {
	ID       string `json:"id" example:"MyClass" validate:"required"`
	Name     string `json:"name" example:"MyClass" validate:"required"`
	Path     string `json:"path" example:"Category/Sub/MyClass" validate:"required"`
	Children int    `json:"children" example:"0"`
}

// SearchResponse wraps search results in pre-order.
type SearchResponse struct {
	Query   string      `json:"query"`
	Results []SearchHit `json:"results" validate:"required"`
}

// ClassResponse is a tree item together with the notes scoped to it.
type ClassResponse struct {
	Item  *models.TreeItem `json:"item"`
	Notes []models.Note    `json:"notes"`
}

// NotesListResponse wraps a filtered list of notes.
type NotesListResponse struct {
	Notes []models.Note `json:"notes" validate:"required"`
	Total int           `json:"total" example:"3"`
}

func toSearchHits(items []*models.TreeItem) []SearchHit {
	hits := make([]SearchHit, len(items))
	for i, it := range items {
		hits[i] = SearchHit{ID: it.ID, Name: it.Name, Path: it.Path, Children: len(it.Children)}
	}
	return hits
}
