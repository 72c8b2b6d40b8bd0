// Package testutil provides shared test helpers for setting up catalogues and note stores.
package testutil

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/docnotes/internal/catalog"
	"github.com/starford/docnotes/internal/models"
	"github.com/starford/docnotes/internal/notes"
	"github.com/starford/docnotes/internal/session"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Records returns a small catalogue: two classes under one subcategory and one
// class carrying a visual node.
func Records() []models.ClassRecord {
	return []models.ClassRecord{
		{
			ClassName:  "CharacterMovement",
			Path:       "Gameplay/Movement/CharacterMovement",
			Properties: []models.PropertyRecord{{Name: "MaxSpeed", Type: "float"}},
			Functions:  []models.FunctionRecord{{Name: "Jump", ReturnType: "void", Parameters: []models.ParameterRecord{}}},
		},
		{
			ClassName:  "FlyingMovement",
			Path:       "Gameplay/Movement/FlyingMovement",
			Properties: []models.PropertyRecord{{Name: "Lift", Type: "float"}},
			Functions:  []models.FunctionRecord{},
		},
		{
			ClassName:  "WidgetLibrary",
			Path:       "UI/Widgets/WidgetLibrary",
			Properties: []models.PropertyRecord{},
			Functions:  []models.FunctionRecord{},
			Nodes: []models.NodeRecord{{
				DocsName:   "widget_create",
				ClassID:    "WidgetLibrary",
				ClassName:  "WidgetLibrary",
				ShortTitle: "Create",
				FullTitle:  "Create Widget",
				ImgPath:    "img/widget_create.png",
				Inputs:     []models.PinRecord{},
				Outputs:    []models.PinRecord{},
			}},
		},
	}
}

// CatalogFile writes records as a snapshot file in a temp dir and returns its path.
func CatalogFile(t *testing.T, records []models.ClassRecord) string {
	t.Helper()
	data, err := json.Marshal(records)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "docs.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// NotesFile returns a file-backed note store in a temp dir and the file path.
func NotesFile(t *testing.T) (*notes.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notes.json")
	gw, err := notes.NewFileGateway(path)
	if err != nil {
		t.Fatal(err)
	}
	return notes.NewStore(gw, notes.WithLogger(Logger()), notes.WithRetries(0, 0)), path
}

// Session builds a session over Records and a fresh file-backed store.
func Session(t *testing.T, notify session.Notifier) (*session.Session, string) {
	t.Helper()
	holder, err := catalog.Open(CatalogFile(t, Records()), Logger())
	if err != nil {
		t.Fatal(err)
	}
	store, notesPath := NotesFile(t)
	return session.New(holder, store, notify, Logger()), notesPath
}
