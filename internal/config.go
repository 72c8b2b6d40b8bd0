package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Notes backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendHTTP   = "http"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Catalog CatalogConfig     `yaml:"catalog"`
	Notes   NotesConfig       `yaml:"notes"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Catalog.Validate(); err != nil {
		return err
	}
	return c.Notes.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level    `yaml:"log_level"`
	LogFile  LogFileConfig `yaml:"log_file"`
	HTTP     HTTPConfig    `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if err := c.LogFile.Validate(); err != nil {
		return fmt.Errorf("log_file: %w", err)
	}
	return c.HTTP.Validate()
}

// LogFileConfig enables a rotated JSON log file next to stdout.
// An empty Path disables it.
type LogFileConfig struct {
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Enabled reports whether file logging is configured.
func (c *LogFileConfig) Enabled() bool {
	return c.Path != ""
}

// Validate validates the log file configuration.
func (c *LogFileConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxSizeMB, validation.When(c.Enabled(), validation.Required, validation.Min(1))),
		validation.Field(&c.MaxBackups, validation.Min(0)),
		validation.Field(&c.MaxAgeDays, validation.Min(0)),
	)
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// CatalogConfig locates the generated documentation snapshot.
type CatalogConfig struct {
	Source     string `yaml:"source"`
	ImagesPath string `yaml:"images_path"`
	Watch      bool   `yaml:"watch"`
}

// Validate validates the catalogue configuration.
func (c *CatalogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Source, validation.Required),
	)
}

// NotesConfig selects where the note snapshot is persisted.
type NotesConfig struct {
	Backend     string        `yaml:"backend"`
	File        string        `yaml:"file"`
	SQLite      string        `yaml:"sqlite"`
	RemoteURL   string        `yaml:"remote_url"`
	SaveRetries int           `yaml:"save_retries"`
	SaveBackoff time.Duration `yaml:"save_backoff"`
}

// Validate validates the notes configuration.
func (c *NotesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.Required, validation.In(BackendFile, BackendSQLite, BackendHTTP)),
		validation.Field(&c.File, validation.When(c.Backend == BackendFile, validation.Required)),
		validation.Field(&c.SQLite, validation.When(c.Backend == BackendSQLite, validation.Required)),
		validation.Field(&c.RemoteURL, validation.When(c.Backend == BackendHTTP, validation.Required, is.URL)),
		validation.Field(&c.SaveRetries, validation.Min(0), validation.Max(10)),
		validation.Field(&c.SaveBackoff, validation.Min(time.Duration(0))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			LogFile: LogFileConfig{
				MaxSizeMB:  10,
				MaxBackups: 3,
				MaxAgeDays: 28,
			},
			HTTP: HTTPConfig{
				Port: 3001,
			},
		},
		Catalog: CatalogConfig{
			Source:     "./data/docs.json",
			ImagesPath: "./data/img",
			Watch:      true,
		},
		Notes: NotesConfig{
			Backend:     BackendFile,
			File:        "./data/notes.json",
			SQLite:      "./data/notes.db",
			SaveRetries: 2,
			SaveBackoff: 100 * time.Millisecond,
		},
	}
}
