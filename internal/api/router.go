package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/docnotes/internal/session"
)

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(sess *session.Session, sseHandler http.Handler) chi.Router {
	h := NewHandler(sess)

	r := chi.NewRouter()

	// Whole-snapshot gateway contract.
	r.Get("/notes", h.ExportNotes)
	r.Post("/notes", h.ImportNotes)

	r.Get("/notes/status", h.NotesStatus)
	r.Get("/notes/orphans", h.Orphans)
	r.Get("/notes/{classId}", h.ClassNotes)
	r.Get("/notes/{classId}/{itemId}", h.GetNote)
	r.Put("/notes/{classId}/{itemId}", h.PutNote)
	r.Patch("/notes/{classId}/{itemId}", h.PatchNote)
	r.Delete("/notes/{classId}/{itemId}", h.DeleteNote)

	// Catalogue.
	r.Get("/tree", h.Tree)
	r.Get("/search", h.Search)
	r.Get("/classes/*", h.Class)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
