// Package storage defines the data-directory file abstraction.
package storage

import "os"

// Provider is the interface for file operations scoped to one root directory.
type Provider interface {
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to root).
	Write(path string, content []byte) error
	// Stat returns file info for path (relative to root).
	Stat(path string) (os.FileInfo, error)
	// Delete removes the file at path (relative to root).
	Delete(path string) error
}
