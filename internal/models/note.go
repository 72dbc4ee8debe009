// Package models defines the domain types for Laguz.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultFolder always exists and receives notes created or loaded
// without an explicit folder.
const DefaultFolder = "General"

// ValidFolder reports whether name can serve as a folder name: it must
// be non-empty after trimming and free of line breaks, which the
// line-oriented persisted format cannot carry.
func ValidFolder(name string) bool {
	return strings.TrimSpace(name) != "" && !strings.ContainsAny(name, "\r\n")
}

// Note represents a single note in the notebook.
type Note struct {
	ID          uuid.UUID `json:"id"`
	Body        string    `json:"body"`
	RichPayload []byte    `json:"-"`
	Folder      string    `json:"folder"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// New creates an empty note in the given folder. A blank or otherwise
// invalid folder falls back to DefaultFolder.
func New(folder string) *Note {
	if !ValidFolder(folder) {
		folder = DefaultFolder
	}
	now := time.Now()
	return &Note{
		ID:        uuid.New(),
		Folder:    folder,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Title derives the display title: the first line of the body, trimmed.
// The title is never stored separately from the body.
func (n *Note) Title() string {
	line := n.Body
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

// Filename returns the name of the file this note persists to.
func (n *Note) Filename() string {
	return n.ID.String() + ".txt"
}

// Touch bumps UpdatedAt to now.
func (n *Note) Touch() {
	n.UpdatedAt = time.Now()
}
