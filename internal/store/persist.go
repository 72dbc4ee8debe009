package store

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/laguz/internal/checksum"
	"github.com/starford/laguz/internal/codec"
	"github.com/starford/laguz/internal/models"
)

// scheduleSave marks the store dirty. The run loop (re)arms the
// debounce timer on each mark, so bursts of edits collapse into one
// persistence pass of the final state.
func (s *Store) scheduleSave() {
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

// Flush forces a synchronous persistence pass, cancelling any pending
// debounce timer. Used on shutdown and by anything that must observe
// converged disk state.
func (s *Store) Flush() {
	done := make(chan struct{})
	select {
	case s.flushCh <- done:
		<-done
	case <-s.stopped:
	}
}

// Close flushes once more and stops the save scheduler.
func (s *Store) Close() {
	if s.closed.CompareAndSwap(false, true) {
		close(s.stopCh)
	}
	<-s.stopped
}

// run owns the debounce timer: each dirty mark re-arms it, only the
// latest timer survives, and the pass runs after a quiet period.
func (s *Store) run() {
	defer close(s.stopped)

	var timer *time.Timer
	var fire <-chan time.Time

	arm := func() {
		if timer == nil {
			timer = time.NewTimer(s.debounce)
			fire = timer.C
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(s.debounce)
	}
	disarm := func() {
		if timer == nil {
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
	}

	for {
		select {
		case <-s.stopCh:
			disarm()
			s.persist()
			return

		case <-s.dirty:
			arm()

		case <-fire:
			s.persist()

		case done := <-s.flushCh:
			disarm()
			// Consume a pending dirty mark so the timer is not re-armed
			// for state this pass already covers.
			select {
			case <-s.dirty:
			default:
			}
			s.persist()
			close(done)
		}
	}
}

// persist converges the notebook directory with memory: every note is
// encoded and written, stray note files are deleted, and the folder
// list is rewritten. The pass is idempotent; errors are logged and
// swallowed, the next pass re-converges.
func (s *Store) persist() {
	type image struct {
		name string
		data []byte
	}

	s.mu.Lock()
	images := make([]image, 0, len(s.notes))
	live := make(map[string]struct{}, len(s.notes))
	for _, n := range s.notes {
		images = append(images, image{
			name: n.Filename(),
			data: codec.Encode(codec.File{Folder: n.Folder, Body: n.Body, Rich: n.RichPayload}),
		})
		live[n.Filename()] = struct{}{}
	}
	folders := s.folderNamesLocked()
	s.mu.Unlock()

	for _, img := range images {
		if err := s.fs.Write(img.name, img.data); err != nil {
			s.logger.Warn("store: write note failed",
				slog.String("file", img.name), slog.String("error", err.Error()))
		}
	}

	files, err := s.fs.List()
	if err != nil {
		s.logger.Warn("store: list for reconcile failed", slog.String("error", err.Error()))
	} else {
		for _, fi := range files {
			if fi.Name == FoldersFile || !strings.HasSuffix(fi.Name, noteExt) {
				continue
			}
			if _, ok := live[fi.Name]; ok {
				continue
			}
			if _, err := uuid.Parse(strings.TrimSuffix(fi.Name, noteExt)); err != nil {
				continue // orphan with an unparseable id, never managed
			}
			if err := s.fs.Delete(fi.Name); err != nil {
				s.logger.Warn("store: delete stray note failed",
					slog.String("file", fi.Name), slog.String("error", err.Error()))
			}
		}
	}

	if err := s.fs.Write(FoldersFile, []byte(strings.Join(folders, "\n")+"\n")); err != nil {
		s.logger.Warn("store: write folders failed", slog.String("error", err.Error()))
	}

	s.notify("saved", "")
}

// load populates the store from the notebook directory. A directory
// listing failure yields an empty collection rather than an error; the
// caller bootstraps the starter note. Files whose stem is not a UUID
// are skipped. File modification time stands in for both timestamps
// (a portable stat carries no creation time).
func (s *Store) load() {
	files, err := s.fs.List()
	if err != nil {
		s.logger.Warn("store: load failed, starting empty", slog.String("error", err.Error()))
		return
	}

	if data, err := s.fs.Read(FoldersFile); err == nil {
		for _, line := range strings.Split(string(data), "\n") {
			if name := strings.TrimSpace(line); name != "" {
				s.folders[name] = struct{}{}
			}
		}
	}

	for _, fi := range files {
		if fi.Name == FoldersFile || !strings.HasSuffix(fi.Name, noteExt) {
			continue
		}
		id, err := uuid.Parse(strings.TrimSuffix(fi.Name, noteExt))
		if err != nil {
			s.logger.Warn("store: skipping unrecognised note file", slog.String("file", fi.Name))
			continue
		}
		data, err := s.fs.Read(fi.Name)
		if err != nil {
			s.logger.Warn("store: read note failed",
				slog.String("file", fi.Name), slog.String("error", err.Error()))
			continue
		}
		f := codec.Decode(data)
		folder := f.Folder
		if strings.TrimSpace(folder) == "" {
			folder = models.DefaultFolder
		}
		s.notes = append(s.notes, &models.Note{
			ID:          id,
			Body:        f.Body,
			RichPayload: f.Rich,
			Folder:      folder,
			CreatedAt:   fi.ModTime,
			UpdatedAt:   fi.ModTime,
		})
		// Folders referenced by notes self-heal a stale folder list.
		s.folders[folder] = struct{}{}
	}

	sort.SliceStable(s.notes, func(i, j int) bool {
		return s.notes[i].UpdatedAt.After(s.notes[j].UpdatedAt)
	})
}

// Refresh reconciles one note file changed outside the process. It
// returns the kind of change merged into memory, or "" when the file
// already matches in-memory state (our own save echoing back).
func (s *Store) Refresh(id uuid.UUID, raw []byte, mod time.Time) string {
	f := codec.Decode(raw)
	folder := f.Folder
	if strings.TrimSpace(folder) == "" {
		folder = models.DefaultFolder
	}

	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx >= 0 {
		n := s.notes[idx]
		current := codec.Encode(codec.File{Folder: n.Folder, Body: n.Body, Rich: n.RichPayload})
		if checksum.Equal(current, raw) {
			s.mu.Unlock()
			return ""
		}
		n.Body = f.Body
		n.RichPayload = f.Rich
		n.Folder = folder
		if mod.After(n.UpdatedAt) {
			n.UpdatedAt = mod
		}
		s.folders[folder] = struct{}{}
		s.mu.Unlock()
		s.notify("updated", id.String())
		return "updated"
	}

	s.notes = append(s.notes, &models.Note{
		ID:          id,
		Body:        f.Body,
		RichPayload: f.Rich,
		Folder:      folder,
		CreatedAt:   mod,
		UpdatedAt:   mod,
	})
	s.folders[folder] = struct{}{}
	s.mu.Unlock()
	s.notify("created", id.String())
	return "created"
}

// Resave schedules a persistence pass without mutating state, used to
// re-assert memory over the directory after an external deletion.
func (s *Store) Resave() {
	s.scheduleSave()
}
