package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/docnotes/internal/apperr"
	"github.com/starford/docnotes/internal/checksum"
	"github.com/starford/docnotes/internal/models"
	"github.com/starford/docnotes/internal/session"
)

// Handler holds API route handlers.
type Handler struct {
	sess *session.Session
}

// NewHandler creates a new Handler.
func NewHandler(sess *session.Session) *Handler {
	return &Handler{sess: sess}
}

// urlParam returns a decoded chi URL parameter. chi routes on RawPath when the
// request carries one (e.g. an encoded slash in a node title), and its params
// are still escaped then. Otherwise they are already decoded and a literal '%'
// must be kept.
func urlParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return raw
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// noteKey extracts the class and item id from the URL.
func noteKey(r *http.Request) (string, string) {
	return urlParam(r, "classId"), urlParam(r, "itemId")
}

// ExportNotes handles GET /api/notes.
//
//	@Summary		Get the full notes snapshot
//	@Tags			notes
//	@Produce		json
//	@Success		200	{object}	models.NotesDocument
//	@Router			/notes [get]
func (h *Handler) ExportNotes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, models.NotesDocument{Notes: h.sess.Notes()})
}

// ImportNotes handles POST /api/notes.
//
//	@Summary		Replace the full notes snapshot
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.NotesDocument	true	"Complete note collection"
//	@Success		200		{object}	SuccessResponse
//	@Failure		400		{object}	errResponse
//	@Failure		500		{object}	errResponse
//	@Router			/notes [post]
func (h *Handler) ImportNotes(w http.ResponseWriter, r *http.Request) {
	var doc models.NotesDocument
	if !readJSON(w, r, &doc) {
		return
	}
	if err := h.sess.ReplaceNotes(r.Context(), doc.Notes); err != nil {
		switch {
		case errors.Is(err, apperr.ErrInvalid):
			writeJSON(w, http.StatusBadRequest, errorBody("every note needs classId and itemId"))
		default:
			slog.Error("replace notes failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("Failed to write notes"))
		}
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// NotesStatus handles GET /api/notes/status.
//
//	@Summary		Persistence state of the note store
//	@Tags			notes
//	@Produce		json
//	@Success		200	{object}	notes.Status
//	@Router			/notes/status [get]
func (h *Handler) NotesStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.sess.Status())
}

// Orphans handles GET /api/notes/orphans.
//
//	@Summary		Notes whose key no longer resolves in the catalogue
//	@Tags			notes
//	@Produce		json
//	@Success		200	{object}	NotesListResponse
//	@Router			/notes/orphans [get]
func (h *Handler) Orphans(w http.ResponseWriter, _ *http.Request) {
	orphans := h.sess.Orphans()
	writeJSON(w, http.StatusOK, NotesListResponse{Notes: orphans, Total: len(orphans)})
}

// ClassNotes handles GET /api/notes/{classId}.
//
//	@Summary		Notes scoped to one class
//	@Tags			notes
//	@Produce		json
//	@Param			classId	path		string	true	"Class name"
//	@Success		200		{object}	NotesListResponse
//	@Router			/notes/{classId} [get]
func (h *Handler) ClassNotes(w http.ResponseWriter, r *http.Request) {
	ns := h.sess.NotesForClass(urlParam(r, "classId"))
	writeJSON(w, http.StatusOK, NotesListResponse{Notes: ns, Total: len(ns)})
}

// GetNote handles GET /api/notes/{classId}/{itemId}.
//
//	@Summary		Get a single note
//	@Tags			notes
//	@Produce		json
//	@Param			classId	path		string	true	"Class name"
//	@Param			itemId	path		string	true	"Member name or node title"
//	@Success		200		{object}	models.Note
//	@Failure		404		{object}	errResponse
//	@Router			/notes/{classId}/{itemId} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	classID, itemID := noteKey(r)
	note, err := h.sess.Note(classID, itemID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// PutNote handles PUT /api/notes/{classId}/{itemId}.
//
//	@Summary		Create or replace a note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			classId	path		string				true	"Class name"
//	@Param			itemId	path		string				true	"Member name or node title"
//	@Param			body	body		NoteContentRequest	true	"Note content"
//	@Success		200		{object}	NoteMutationResponse
//	@Success		202		{object}	NoteMutationResponse	"Kept in memory, write failed"
//	@Failure		400		{object}	errResponse
//	@Router			/notes/{classId}/{itemId} [put]
func (h *Handler) PutNote(w http.ResponseWriter, r *http.Request) {
	classID, itemID := noteKey(r)
	content, ok := readContent(w, r)
	if !ok {
		return
	}
	note, err := h.sess.SetNote(r.Context(), classID, itemID, content)
	h.writeMutation(w, "set note", classID, itemID, &note, err)
}

// PatchNote handles PATCH /api/notes/{classId}/{itemId}.
//
//	@Summary		Update an existing note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			classId	path		string				true	"Class name"
//	@Param			itemId	path		string				true	"Member name or node title"
//	@Param			body	body		NoteContentRequest	true	"Note content"
//	@Success		200		{object}	NoteMutationResponse
//	@Success		202		{object}	NoteMutationResponse	"Kept in memory, write failed"
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Router			/notes/{classId}/{itemId} [patch]
func (h *Handler) PatchNote(w http.ResponseWriter, r *http.Request) {
	classID, itemID := noteKey(r)
	content, ok := readContent(w, r)
	if !ok {
		return
	}
	note, err := h.sess.UpdateNote(r.Context(), classID, itemID, content)
	h.writeMutation(w, "update note", classID, itemID, &note, err)
}

// DeleteNote handles DELETE /api/notes/{classId}/{itemId}.
// Deleting an absent note succeeds.
//
//	@Summary		Delete a note
//	@Tags			notes
//	@Param			classId	path	string	true	"Class name"
//	@Param			itemId	path	string	true	"Member name or node title"
//	@Success		204		"Note deleted"
//	@Success		202		{object}	NoteMutationResponse	"Removed in memory, write failed"
//	@Router			/notes/{classId}/{itemId} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	classID, itemID := noteKey(r)
	if _, err := h.sess.DeleteNote(r.Context(), classID, itemID); err != nil {
		h.writeMutation(w, "delete note", classID, itemID, nil, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeMutation(w http.ResponseWriter, op, classID, itemID string, note *models.Note, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, NoteMutationResponse{Note: note, Persisted: true})
	case errors.Is(err, apperr.ErrInvalid):
		writeJSON(w, http.StatusBadRequest, errorBody("classId and itemId are required"))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrPersist):
		slog.Warn(op+" not persisted",
			slog.String("class", classID),
			slog.String("item", itemID),
			slog.String("error", err.Error()))
		writeJSON(w, http.StatusAccepted, NoteMutationResponse{Note: note, Persisted: false, Error: err.Error()})
	default:
		slog.Error(op+" failed", slog.String("class", classID), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func readContent(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req NoteContentRequest
	if !readJSON(w, r, &req) {
		return "", false
	}
	if req.Content == nil {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return "", false
	}
	return *req.Content, true
}

// Tree handles GET /api/tree.
//
//	@Summary		Navigation tree of the catalogue
//	@Tags			catalog
//	@Produce		json
//	@Param			If-None-Match	header	string	false	"Catalogue checksum from a previous ETag"
//	@Success		200	{array}	models.TreeItem
//	@Success		304	"Not modified"
//	@Router			/tree [get]
func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) {
	c := h.sess.Catalog()
	if sum := c.Checksum(); sum != "" {
		etag := checksum.ETag(sum)
		w.Header().Set("ETag", etag)
		if match := r.Header.Get("If-None-Match"); match != "" && strings.Contains(match, etag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	writeJSON(w, http.StatusOK, c.Tree())
}

// Search handles GET /api/search.
//
//	@Summary		Case-insensitive name search over the tree
//	@Tags			catalog
//	@Produce		json
//	@Param			q	query		string	false	"Substring to match; empty yields no results"
//	@Success		200	{object}	SearchResponse
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	writeJSON(w, http.StatusOK, SearchResponse{
		Query:   q,
		Results: toSearchHits(h.sess.Catalog().Search(q)),
	})
}

// Class handles GET /api/classes/*.
//
//	@Summary		Tree item by path with its notes
//	@Tags			catalog
//	@Produce		json
//	@Param			path	path		string	true	"Tree path, e.g. Category/Sub/MyClass"
//	@Success		200		{object}	ClassResponse
//	@Failure		404		{object}	errResponse
//	@Router			/classes/{path} [get]
func (h *Handler) Class(w http.ResponseWriter, r *http.Request) {
	path := urlParam(r, "*")
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	c := h.sess.Catalog()
	item, ok := c.FindByPath(path)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	ns := []models.Note{}
	if c.IsClass(item) {
		ns = h.sess.NotesForClass(item.ID)
	}
	writeJSON(w, http.StatusOK, ClassResponse{Item: item, Notes: ns})
}
