package notes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/starford/docnotes/internal/models"
)

const notesEndpoint = "/api/notes"

// HTTPGateway talks to a remote notes service exposing GET and POST /api/notes.
type HTTPGateway struct {
	base   string
	client *http.Client
}

// NewHTTPGateway returns a gateway for the service at baseURL.
func NewHTTPGateway(baseURL string, client *http.Client) *HTTPGateway {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPGateway{base: strings.TrimRight(baseURL, "/"), client: client}
}

// Fetch implements Gateway.
func (g *HTTPGateway) Fetch(ctx context.Context) ([]models.Note, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.base+notesEndpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("notes: fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("notes: fetch: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("notes: fetch: %s", remoteError(resp.StatusCode, body))
	}
	return DecodeDocument(body)
}

// Replace implements Gateway.
func (g *HTTPGateway) Replace(ctx context.Context, notes []models.Note) error {
	data, err := EncodeDocument(notes)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.base+notesEndpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("notes: replace: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("notes: replace: %s", remoteError(resp.StatusCode, body))
	}
	return nil
}

// remoteError extracts the {"error": "..."} message when the service sent one.
func remoteError(status int, body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		return fmt.Sprintf("status %d: %s", status, payload.Error)
	}
	return fmt.Sprintf("status %d", status)
}
