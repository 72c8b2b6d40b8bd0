package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/starford/docnotes/internal/apperr"
	"github.com/starford/docnotes/internal/catalog"
	"github.com/starford/docnotes/internal/notes"
	"github.com/starford/docnotes/internal/session"
	"github.com/starford/docnotes/internal/snapshotdb"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newLogger builds the JSON logger writing to w and, when configured, to a
// rotated log file. The returned closer releases the file.
func newLogger(w io.Writer, cfg ApplicationConfig) (*slog.Logger, io.Closer) {
	var closer io.Closer = nopCloser{}
	if cfg.LogFile.Enabled() {
		lj := &lumberjack.Logger{
			Filename:   cfg.LogFile.Path,
			MaxSize:    cfg.LogFile.MaxSizeMB,
			MaxBackups: cfg.LogFile.MaxBackups,
			MaxAge:     cfg.LogFile.MaxAgeDays,
			Compress:   cfg.LogFile.Compress,
		}
		w = io.MultiWriter(w, lj)
		closer = lj
	}
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	return logger, closer
}

// openGateway returns the notes gateway for the configured backend.
func openGateway(cfg NotesConfig) (notes.Gateway, io.Closer, error) {
	switch cfg.Backend {
	case BackendFile:
		gw, err := notes.NewFileGateway(cfg.File)
		if err != nil {
			return nil, nil, err
		}
		return gw, nopCloser{}, nil
	case BackendSQLite:
		db, err := snapshotdb.Open(cfg.SQLite)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	case BackendHTTP:
		return notes.NewHTTPGateway(cfg.RemoteURL, &http.Client{Timeout: 10 * time.Second}), nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown notes backend %q", cfg.Backend)
	}
}

// appState is the assembled domain state shared by the HTTP and MCP modes.
type appState struct {
	holder  *catalog.Holder
	session *session.Session
	closer  io.Closer
}

// buildState loads the catalogue and notes. Both loads fail soft: the
// service starts with whatever could be read and logs the rest.
func buildState(ctx context.Context, cfg *Config, logger *slog.Logger, notify session.Notifier) (*appState, error) {
	gw, closer, err := openGateway(cfg.Notes)
	if err != nil {
		return nil, fmt.Errorf("init notes gateway: %w", err)
	}

	holder, err := catalog.Open(cfg.Catalog.Source, logger)
	if err != nil {
		logger.Warn("catalog unavailable, starting empty",
			slog.String("source", cfg.Catalog.Source),
			slog.String("error", err.Error()))
	}

	store := notes.NewStore(gw,
		notes.WithLogger(logger),
		notes.WithRetries(cfg.Notes.SaveRetries, cfg.Notes.SaveBackoff))
	if _, err := store.Load(ctx); err != nil && !errors.Is(err, apperr.ErrLoad) {
		_ = closer.Close()
		return nil, err
	}

	return &appState{
		holder:  holder,
		session: session.New(holder, store, notify, logger),
		closer:  closer,
	}, nil
}

// shutdown flushes outstanding note changes and releases the gateway.
func (st *appState) shutdown(logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := st.session.Flush(ctx); err != nil {
		logger.Error("final notes save failed", slog.String("error", err.Error()))
	}
	if err := st.closer.Close(); err != nil {
		logger.Error("close notes gateway", slog.String("error", err.Error()))
	}
}
