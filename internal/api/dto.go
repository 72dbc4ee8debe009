package api

import (
	"encoding/base64"
	"time"

	"github.com/starford/laguz/internal/models"
)

// NoteDTO is the wire representation of a note. RTF carries the rich
// payload base64-encoded and is only populated on single-note reads.
type NoteDTO struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Folder    string    `json:"folder"`
	RTF       string    `json:"rtf,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Folder string `json:"folder"`
}

// UpdateNoteRequest is the request body for replacing a note's content.
// RTF is base64; an empty value clears the rich payload.
type UpdateNoteRequest struct {
	Body string `json:"body"`
	RTF  string `json:"rtf"`
}

// MoveNoteRequest is the request body for moving a note to a folder.
type MoveNoteRequest struct {
	Folder string `json:"folder"`
}

// CreateFolderRequest is the request body for creating a folder.
type CreateFolderRequest struct {
	Name string `json:"name"`
}

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []NoteDTO `json:"notes"`
	Total int       `json:"total"`
}

// FolderListResponse wraps the folder list.
type FolderListResponse struct {
	Folders []string `json:"folders"`
}

func toDTO(n models.Note, withRich bool) NoteDTO {
	dto := NoteDTO{
		ID:        n.ID.String(),
		Title:     n.Title(),
		Body:      n.Body,
		Folder:    n.Folder,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
	if withRich && len(n.RichPayload) > 0 {
		dto.RTF = base64.StdEncoding.EncodeToString(n.RichPayload)
	}
	return dto
}

func toDTOs(notes []models.Note) []NoteDTO {
	out := make([]NoteDTO, len(notes))
	for i, n := range notes {
		out[i] = toDTO(n, false)
	}
	return out
}
