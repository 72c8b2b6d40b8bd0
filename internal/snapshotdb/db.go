// Package snapshotdb persists the note snapshot in a single SQLite row.
package snapshotdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/docnotes/internal/checksum"
	"github.com/starford/docnotes/internal/models"
	"github.com/starford/docnotes/internal/notes"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS note_snapshots (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	payload    TEXT NOT NULL,
	checksum   TEXT NOT NULL DEFAULT '',
	revision   INTEGER NOT NULL DEFAULT 0,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// DB wraps a sql.DB holding the note snapshot. It implements notes.Gateway.
type DB struct {
	conn *sql.DB
}

var _ notes.Gateway = (*DB)(nil)

// Meta describes the stored snapshot.
type Meta struct {
	Revision  int64
	Checksum  string
	UpdatedAt time.Time
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("snapshotdb: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("snapshotdb: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("snapshotdb: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Fetch implements notes.Gateway. No stored snapshot yields an empty slice.
func (db *DB) Fetch(ctx context.Context) ([]models.Note, error) {
	var payload string
	err := db.conn.QueryRowContext(ctx, `SELECT payload FROM note_snapshots WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return []models.Note{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("snapshotdb: fetch: %w", err)
	}
	return notes.DecodeDocument([]byte(payload))
}

// Replace implements notes.Gateway by overwriting the snapshot row and bumping
// its revision.
func (db *DB) Replace(ctx context.Context, ns []models.Note) error {
	data, err := notes.EncodeDocument(ns)
	if err != nil {
		return err
	}
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO note_snapshots (id, payload, checksum, revision, updated_at)
		VALUES (1, ?, ?, 1, ?)
		ON CONFLICT(id) DO UPDATE SET
			payload    = excluded.payload,
			checksum   = excluded.checksum,
			revision   = note_snapshots.revision + 1,
			updated_at = excluded.updated_at
	`, string(data), checksum.Sum(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("snapshotdb: replace: %w", err)
	}
	return nil
}

// Meta returns the revision and checksum of the stored snapshot. A database
// with no snapshot reports revision 0.
func (db *DB) Meta(ctx context.Context) (Meta, error) {
	var m Meta
	err := db.conn.QueryRowContext(ctx,
		`SELECT revision, checksum, updated_at FROM note_snapshots WHERE id = 1`,
	).Scan(&m.Revision, &m.Checksum, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Meta{}, nil
	}
	if err != nil {
		return Meta{}, fmt.Errorf("snapshotdb: meta: %w", err)
	}
	return m, nil
}
