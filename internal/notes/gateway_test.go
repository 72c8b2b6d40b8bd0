package notes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/docnotes/internal/apperr"
	"github.com/starford/docnotes/internal/models"
)

func TestFileGateway_MissingFileIsEmpty(t *testing.T) {
	gw, err := NewFileGateway(filepath.Join(t.TempDir(), "data", "notes.json"))
	require.NoError(t, err)

	got, err := gw.Fetch(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFileGateway_ReplaceWritesIndentedDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.json")
	gw, err := NewFileGateway(path)
	require.NoError(t, err)

	notes := []models.Note{{ClassID: "Foo", ItemID: "Speed", Content: "fast"}}
	require.NoError(t, gw.Replace(context.Background(), notes))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	want := "{\n  \"notes\": [\n    {\n      \"classId\": \"Foo\",\n      \"itemId\": \"Speed\",\n      \"content\": \"fast\"\n    }\n  ]\n}\n"
	assert.Equal(t, want, string(raw))

	got, err := gw.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, notes, got)
}

func TestFileGateway_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	gw, err := NewFileGateway(path)
	require.NoError(t, err)

	_, err = gw.Fetch(context.Background())
	assert.Error(t, err)
}

func TestFileGateway_UnreadableFileSurvivesNextSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.json")
	truncated := []byte(`{"notes":[{"classId":"Foo","itemId":"Speed","content":"keep me"`)
	require.NoError(t, os.WriteFile(path, truncated, 0o644))
	gw, err := NewFileGateway(path)
	require.NoError(t, err)

	s := newTestStore(gw)
	_, err = s.Load(context.Background())
	require.ErrorIs(t, err, apperr.ErrLoad)
	assert.Contains(t, s.Status().LoadError, "notes: decode")
	assert.False(t, s.Status().Unsaved)

	require.NoError(t, s.Upsert(context.Background(), "Foo", "Jump", "new"))

	kept, err := os.ReadFile(path + UnreadableSuffix)
	require.NoError(t, err)
	assert.Equal(t, truncated, kept)
	assert.Contains(t, s.Status().LoadError, "notes: decode")
}

func TestEncodeDocument_NilIsEmptyArray(t *testing.T) {
	data, err := EncodeDocument(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"notes":[]}`, string(data))
}

func TestDecodeDocument_MissingKey(t *testing.T) {
	got, err := DecodeDocument([]byte(`{}`))
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestHTTPGateway_RoundTrip(t *testing.T) {
	var stored []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/notes", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			if stored == nil {
				_, _ = w.Write([]byte(`{"notes":[]}`))
				return
			}
			_, _ = w.Write(stored)
		case http.MethodPost:
			var doc models.NotesDocument
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&doc))
			stored, _ = json.Marshal(doc)
			_, _ = w.Write([]byte(`{"success":true}`))
		}
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL+"/", nil)
	ctx := context.Background()

	got, err := gw.Fetch(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	notes := []models.Note{{ClassID: "Foo", ItemID: "Jump", Content: "high"}}
	require.NoError(t, gw.Replace(ctx, notes))

	got, err = gw.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, notes, got)
}

func TestHTTPGateway_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to write notes"}`))
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL, srv.Client())
	err := gw.Replace(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to write notes")

	_, err = gw.Fetch(context.Background())
	assert.Error(t, err)
}
