// Package storage defines the notebook file-system abstraction.
package storage

import "time"

// FileInfo describes one file in the notebook directory. ModTime is
// the fallback timestamp for notes whose metadata was never persisted.
type FileInfo struct {
	Name    string
	ModTime time.Time
}

// Provider is the interface for notebook file operations. The notebook
// is a flat directory: names never contain path separators.
type Provider interface {
	// List returns name and modification time for every regular file.
	List() ([]FileInfo, error)
	// Read returns the raw bytes of the named file.
	Read(name string) ([]byte, error)
	// Write atomically replaces the named file with content.
	Write(name string, content []byte) error
	// Delete removes the named file.
	Delete(name string) error
}
