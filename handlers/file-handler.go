package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"

	"task-manager/backend/services"
)

type FileResolver interface {
	Resolve(name string) (string, error)
}

type FileHandler struct {
	Files FileResolver
}

func NewFileHandler(files FileResolver) *FileHandler {
	return &FileHandler{Files: files}
}

// Download streams a stored attachment by filename. There is no ownership
// check tying the filename to a project or user.
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]

	path, err := h.Files.Resolve(filename)
	if errors.Is(err, services.ErrFileNotFound) {
		respondError(w, http.StatusNotFound, "File not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error fetching file")
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	http.ServeFile(w, r, path)
}
