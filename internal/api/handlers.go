package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/store"
)

// Handler holds API route handlers.
type Handler struct {
	st *store.Store
}

// NewHandler creates a new Handler.
func NewHandler(st *store.Store) *Handler {
	return &Handler{st: st}
}

// noteID parses the {id} URL parameter.
func noteID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

// ListNotes handles GET /notes. Query parameters: q (substring search),
// folder (restrict to one folder).
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	notes := h.st.Query(q.Get("q"), q.Get("folder"))
	writeJSON(w, http.StatusOK, NoteListResponse{
		Notes: toDTOs(notes),
		Total: len(notes),
	})
}

// CreateNote handles POST /notes. A blank or absent folder places the
// note in the default folder.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	n := h.st.AddNote(req.Folder)
	writeJSON(w, http.StatusCreated, toDTO(n, true))
}

// GetNote handles GET /notes/{id}.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid note id"))
		return
	}
	n, err := h.st.GetNote(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, toDTO(n, true))
}

// UpdateNote handles PUT /notes/{id}. Submitting unchanged content is
// a no-op on the store side.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	id, ok := noteID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid note id"))
		return
	}
	var req UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	var rich []byte
	if req.RTF != "" {
		raw, err := base64.StdEncoding.DecodeString(req.RTF)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("rtf is not valid base64"))
			return
		}
		rich = raw
	}
	if err := h.st.UpdateNote(id, req.Body, rich); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		slog.Error("update note failed", slog.String("id", id.String()), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	n, err := h.st.GetNote(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, toDTO(n, true))
}

// MoveNote handles POST /notes/{id}/move.
func (h *Handler) MoveNote(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid note id"))
		return
	}
	var req MoveNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.st.MoveNote(id, req.Folder); err != nil {
		if errors.Is(err, apperr.ErrBadFolder) {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid folder name"))
			return
		}
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	n, _ := h.st.GetNote(id)
	writeJSON(w, http.StatusOK, toDTO(n, false))
}

// DeleteNote handles DELETE /notes/{id}. Deleting an unknown note is a
// no-op and still answers 204.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid note id"))
		return
	}
	h.st.DeleteNote(id)
	w.WriteHeader(http.StatusNoContent)
}

// SelectNote handles POST /notes/{id}/select.
func (h *Handler) SelectNote(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid note id"))
		return
	}
	if err := h.st.Select(id); err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SelectedNote handles GET /notes/selected. No selection answers 204.
func (h *Handler) SelectedNote(w http.ResponseWriter, _ *http.Request) {
	n, ok := h.st.Selected()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, toDTO(n, true))
}

// ListFolders handles GET /folders.
func (h *Handler) ListFolders(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, FolderListResponse{Folders: h.st.Folders()})
}

// CreateFolder handles POST /folders. Names are trimmed; names empty
// after trimming are rejected.
func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req CreateFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	name, ok := h.st.AddFolder(req.Name)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("folder name is empty"))
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"name": name})
}
