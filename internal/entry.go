// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/docnotes/internal/api"
	"github.com/starford/docnotes/internal/catalog"
	"github.com/starford/docnotes/internal/mcpserver"
	"github.com/starford/docnotes/internal/sse"
	"github.com/starford/docnotes/internal/storage"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// Run starts the HTTP service with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger, logCloser := newLogger(app.logOutput, cfg.App)
	defer logCloser.Close()
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("version", app.version),
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("catalog_source", cfg.Catalog.Source),
		slog.String("notes_backend", cfg.Notes.Backend),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	state, err := buildState(ctx, cfg, logger, broker)
	if err != nil {
		return err
	}
	defer state.shutdown(logger)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(api.CORS(cfg.App.HTTP.CORSOrigins))

	// Health check endpoints.
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"status":"ok","catalog_records":%d,"notes_unsaved":%t}`,
			state.holder.Current().Len(), state.session.Status().Unsaved)
	})

	// Mount API routes under /api, including the SSE endpoint at /api/events.
	r.Mount("/api", api.NewRouter(state.session, broker))

	// Node screenshots.
	if cfg.Catalog.ImagesPath != "" {
		if files, err := storage.NewFS(cfg.Catalog.ImagesPath); err != nil {
			logger.Warn("images directory unavailable", slog.String("error", err.Error()))
		} else {
			r.Get("/img/*", api.NewImageHandler(files).ServeFile)
		}
	}

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Rebuild the catalogue when the documentation snapshot changes.
	if cfg.Catalog.Watch {
		g.Go(func() error {
			if err := catalog.Watch(gCtx, state.holder, logger, state.session.CatalogReloaded); err != nil {
				logger.Warn("catalog watcher disabled", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		// Unblocks the watcher after a signal.
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools on stdin/stdout. Logs go to stderr unless
// overridden, since stdout carries the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	cfg := app.config

	logger, logCloser := newLogger(app.logOutput, cfg.App)
	defer logCloser.Close()
	slog.SetDefault(logger)

	state, err := buildState(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer state.shutdown(logger)

	if cfg.Catalog.Watch {
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := catalog.Watch(watchCtx, state.holder, logger, state.session.CatalogReloaded); err != nil {
				logger.Warn("catalog watcher disabled", slog.String("error", err.Error()))
			}
		}()
	}

	logger.Info("MCP server starting on stdio", slog.String("version", app.version))
	return mcpserver.New(state.session, app.version).ServeStdio()
}

// PrintTree writes the catalogue tree, or the search results for query, to w.
// format is "json" or "table".
func PrintTree(w io.Writer, query, format string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	src, err := catalog.LoadFile(app.config.Catalog.Source)
	if err != nil {
		return err
	}
	c := catalog.New(src.Records, src.Checksum)

	items := c.Tree()
	if query != "" {
		items = c.Search(query)
	}
	return renderItems(w, items, c.IsClass, format, query == "")
}
