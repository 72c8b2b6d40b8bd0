package api

import (
	"bytes"
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/starford/docnotes/internal/storage"
)

// ImageHandler serves node screenshots referenced by imgPath.
type ImageHandler struct {
	files storage.Provider
}

// NewImageHandler creates a handler serving files from the images directory.
func NewImageHandler(files storage.Provider) *ImageHandler {
	return &ImageHandler{files: files}
}

// ServeFile handles GET /img/*.
func (h *ImageHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(urlParam(r, "*"), "/")
	if name == "" {
		http.Error(w, "filename is required", http.StatusBadRequest)
		return
	}
	info, err := h.files.Stat(name)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrOutsideRoot):
			http.Error(w, "invalid path", http.StatusBadRequest)
		case errors.Is(err, os.ErrNotExist):
			http.NotFound(w, r)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}
	if info.IsDir() {
		http.NotFound(w, r)
		return
	}
	data, err := h.files.Read(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), bytes.NewReader(data))
}
