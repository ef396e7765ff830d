package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/file-vault/internal/model"
	"github.com/sakif/file-vault/internal/service"
)

// FileHandler serves the signed-in user's file records.
// All routes require a session; ownership is enforced by the service.
type FileHandler struct {
	files  *service.FileService
	logger *slog.Logger
}

func NewFileHandler(files *service.FileService, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		files:  files,
		logger: logger,
	}
}

// HandleList returns the user's files, filtered by the query string.
//
// HTTP: GET /api/files?q=&type=&access=&tag=&range=
func (h *FileHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := service.SearchFilter{
		Query:    q.Get("q"),
		FileType: model.FileType(q.Get("type")),
		Access:   model.Access(q.Get("access")),
		Tag:      q.Get("tag"),
		Range:    q.Get("range"),
	}

	result, err := h.files.Search(r.Context(), user.ID, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleOverview returns the dashboard summary.
//
// HTTP: GET /api/files/overview
func (h *FileHandler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	overview, err := h.files.Overview(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// HandleUpload records a new file.
//
// HTTP: POST /api/files
func (h *FileHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var fields model.FileFields
	if err := decodeJSON(w, r, &fields); err != nil {
		writeError(w, err)
		return
	}

	created, err := h.files.Upload(r.Context(), user.ID, fields)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// HandleUpdate applies a partial update to one of the user's files.
//
// HTTP: PATCH /api/files/{id}
func (h *FileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var patch model.FilePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.files.Update(r.Context(), user.ID, chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// HandleDelete removes one of the user's files.
//
// HTTP: DELETE /api/files/{id}
func (h *FileHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.files.Delete(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
