// Package store owns the in-memory note and folder collection and
// mirrors it to disk with debounced, convergent saves. The in-memory
// collection is the source of truth while the process runs; the
// notebook directory is a write-behind projection of it.
package store

import (
	"bytes"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/storage"
)

const (
	// DefaultDebounce coalesces bursts of edits into a single disk write.
	DefaultDebounce = 250 * time.Millisecond

	// FoldersFile holds the persisted folder list, one name per line.
	FoldersFile = "folders.txt"

	noteExt = ".txt"
)

// starterBody seeds a fresh notebook so the UI never opens empty.
const starterBody = "Welcome to Laguz\nStart typing to replace this note. Create folders to keep things tidy."

// EventCallback is invoked after a store mutation or persistence pass.
// kind is one of "created", "updated", "moved", "deleted",
// "folder.created", "saved". id carries the note id, the folder name
// for folder events, or is empty for store-wide events.
type EventCallback func(kind, id string)

// Store is the single authoritative collection of notes and folders.
type Store struct {
	fs       storage.Provider
	logger   *slog.Logger
	debounce time.Duration
	onChange EventCallback

	mu       sync.Mutex
	notes    []*models.Note // ordered, newest additions at the front
	folders  map[string]struct{}
	selected uuid.UUID // uuid.Nil when nothing is selected

	dirty   chan struct{}
	flushCh chan chan struct{}
	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// Option is a functional option for configuring the store.
type Option func(*Store)

// WithLogger sets the logger used for persistence diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithDebounce overrides the save coalescing window.
func WithDebounce(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithEventCallback registers an observer for store changes.
func WithEventCallback(cb EventCallback) Option {
	return func(s *Store) { s.onChange = cb }
}

// New loads the notebook from fs and starts the save scheduler. An
// empty or unreadable notebook is bootstrapped with one starter note,
// persisted immediately; otherwise the most recently updated note is
// selected.
func New(fs storage.Provider, opts ...Option) *Store {
	s := &Store{
		fs:       fs,
		logger:   slog.Default(),
		debounce: DefaultDebounce,
		folders:  map[string]struct{}{models.DefaultFolder: {}},
		dirty:    make(chan struct{}, 1),
		flushCh:  make(chan chan struct{}),
		stopCh:   make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.load()
	if len(s.notes) == 0 {
		n := models.New("")
		n.Body = starterBody
		s.notes = []*models.Note{n}
		s.selected = n.ID
		s.persist()
	} else {
		s.selected = s.notes[0].ID // load sorts newest-updated first
	}

	go s.run()
	return s
}

// AddNote creates an empty note in the given (or default) folder,
// places it at the front of the collection, and selects it.
func (s *Store) AddNote(folder string) models.Note {
	n := models.New(folder)
	s.mu.Lock()
	s.notes = append([]*models.Note{n}, s.notes...)
	s.folders[n.Folder] = struct{}{}
	s.selected = n.ID
	out := *n
	s.mu.Unlock()

	s.scheduleSave()
	s.notify("created", n.ID.String())
	return out
}

// DeleteNote removes the note. Deleting the selected note reselects
// the remaining note with the greatest UpdatedAt, or nothing if the
// store is left empty. Unknown ids are a no-op.
func (s *Store) DeleteNote(id uuid.UUID) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.notes = append(s.notes[:idx], s.notes[idx+1:]...)
	if s.selected == id {
		s.selected = mostRecent(s.notes)
	}
	s.mu.Unlock()

	s.scheduleSave()
	s.notify("deleted", id.String())
}

// UpdateNote replaces the body and rich payload. Identical values are
// a no-op: UpdatedAt is not bumped and no save is scheduled.
func (s *Store) UpdateNote(id uuid.UUID, body string, rich []byte) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return apperr.ErrNotFound
	}
	n := s.notes[idx]
	if n.Body == body && bytes.Equal(n.RichPayload, rich) {
		s.mu.Unlock()
		return nil
	}
	n.Body = body
	n.RichPayload = rich
	n.Touch()
	s.mu.Unlock()

	s.scheduleSave()
	s.notify("updated", id.String())
	return nil
}

// MoveNote reassigns the note's folder. Moving to the current folder
// is a no-op. A blank target lands in the default folder; names the
// line-oriented format cannot carry are rejected. Moves bump
// UpdatedAt, so a moved note sorts as recently touched.
func (s *Store) MoveNote(id uuid.UUID, folder string) error {
	if strings.TrimSpace(folder) == "" {
		folder = models.DefaultFolder
	} else if !models.ValidFolder(folder) {
		return apperr.ErrBadFolder
	}
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return apperr.ErrNotFound
	}
	n := s.notes[idx]
	if n.Folder == folder {
		s.mu.Unlock()
		return nil
	}
	n.Folder = folder
	n.Touch()
	s.folders[folder] = struct{}{}
	s.mu.Unlock()

	s.scheduleSave()
	s.notify("moved", id.String())
	return nil
}

// AddFolder ensures a folder exists. The name is trimmed; names that
// are empty after trimming or contain line breaks are rejected with
// ok=false and no change.
func (s *Store) AddFolder(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if !models.ValidFolder(name) {
		return "", false
	}
	s.mu.Lock()
	s.folders[name] = struct{}{}
	s.mu.Unlock()

	s.scheduleSave()
	s.notify("folder.created", name)
	return name, true
}

// Select marks the note as selected.
func (s *Store) Select(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(id) < 0 {
		return apperr.ErrNotFound
	}
	s.selected = id
	return nil
}

// Query filters notes by folder (empty folder means all) and by a
// case-insensitive substring match of search against title or body
// (blank search matches everything), sorted by UpdatedAt descending.
// Equal timestamps keep collection order.
func (s *Store) Query(search, folder string) []models.Note {
	search = strings.TrimSpace(search)
	q := strings.ToLower(search)

	s.mu.Lock()
	out := make([]models.Note, 0, len(s.notes))
	for _, n := range s.notes {
		if folder != "" && n.Folder != folder {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(n.Title()), q) &&
			!strings.Contains(strings.ToLower(n.Body), q) {
			continue
		}
		out = append(out, *n)
	}
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// GetNote returns a snapshot of one note.
func (s *Store) GetNote(id uuid.UUID) (models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return models.Note{}, apperr.ErrNotFound
	}
	return *s.notes[idx], nil
}

// Has reports whether a note with the given id exists.
func (s *Store) Has(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexLocked(id) >= 0
}

// Notes returns a snapshot of all notes in collection order.
func (s *Store) Notes() []models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Note, len(s.notes))
	for i, n := range s.notes {
		out[i] = *n
	}
	return out
}

// Folders returns the folder names with the default folder pinned
// first, the rest sorted case-insensitively ascending.
func (s *Store) Folders() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.folderNamesLocked()
}

// Selected returns the selected note, if any.
func (s *Store) Selected() (models.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == uuid.Nil {
		return models.Note{}, false
	}
	idx := s.indexLocked(s.selected)
	if idx < 0 {
		return models.Note{}, false
	}
	return *s.notes[idx], true
}

func (s *Store) indexLocked(id uuid.UUID) int {
	for i, n := range s.notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) folderNamesLocked() []string {
	names := make([]string, 0, len(s.folders))
	for name := range s.folders {
		if name == models.DefaultFolder {
			continue
		}
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return append([]string{models.DefaultFolder}, names...)
}

func (s *Store) notify(kind, id string) {
	if s.onChange != nil {
		s.onChange(kind, id)
	}
}

// mostRecent returns the id of the note with the greatest UpdatedAt,
// or uuid.Nil for an empty collection.
func mostRecent(notes []*models.Note) uuid.UUID {
	var best *models.Note
	for _, n := range notes {
		if best == nil || n.UpdatedAt.After(best.UpdatedAt) {
			best = n
		}
	}
	if best == nil {
		return uuid.Nil
	}
	return best.ID
}
