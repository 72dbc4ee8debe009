package store

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/starford/laguz/internal/storage"
)

// Watch runs an fsnotify watcher on the notebook directory until ctx
// is cancelled, folding external edits back into the store.
//
// The store's own atomic saves echo back as Create events; Refresh
// recognises them by checksum and ignores them. External edits and
// newly dropped note files are merged into memory. External deletions
// are not honoured: memory is authoritative while the process runs, so
// a missing file is simply re-written on the next save.
func Watch(ctx context.Context, s *Store, fs *storage.FS, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(fs.Root()); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", fs.Root()))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			name := filepath.Base(ev.Name)
			if name == FoldersFile || strings.HasPrefix(name, storage.TmpPrefix) ||
				!strings.HasSuffix(name, noteExt) {
				continue
			}
			id, err := uuid.Parse(strings.TrimSuffix(name, noteExt))
			if err != nil {
				continue // orphan file, never managed
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				raw, readErr := s.fs.Read(name)
				if readErr != nil {
					logger.Warn("watcher: read failed",
						slog.String("file", name), slog.String("error", readErr.Error()))
					continue
				}
				mod := time.Now()
				if info, statErr := os.Stat(ev.Name); statErr == nil {
					mod = info.ModTime()
				}
				if kind := s.Refresh(id, raw, mod); kind != "" {
					logger.Debug("watcher: merged external change",
						slog.String("file", name), slog.String("op", kind))
				}

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				if s.Has(id) {
					logger.Debug("watcher: note file removed externally, re-asserting",
						slog.String("file", name))
					s.Resave()
				}
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
