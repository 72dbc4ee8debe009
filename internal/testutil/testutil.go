// Package testutil provides shared test helpers for setting up
// notebooks and stores.
package testutil

import (
	"testing"
	"time"

	"github.com/starford/laguz/internal/storage"
	"github.com/starford/laguz/internal/store"
)

// TestNotebook creates a temporary notebook directory with a storage
// provider.
func TestNotebook(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	fs, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, fs
}

// TestStore creates a store over a temporary notebook with a short
// debounce so tests can wait out the save window quickly. The store is
// closed automatically.
func TestStore(t *testing.T, opts ...store.Option) (*store.Store, *storage.FS) {
	t.Helper()
	_, fs := TestNotebook(t)
	opts = append([]store.Option{store.WithDebounce(20 * time.Millisecond)}, opts...)
	st := store.New(fs, opts...)
	t.Cleanup(st.Close)
	return st, fs
}
