package handlers

import (
	"context"
	"errors"
	"net/http"

	"task-manager/backend/models"
	"task-manager/backend/services"
)

type UserReader interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type UserHandler struct {
	Service UserReader
}

func NewUserHandler(service UserReader) *UserHandler {
	return &UserHandler{Service: service}
}

// GetUser looks up a user by the email query parameter. The password hash
// is never part of the response.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		respondError(w, http.StatusBadRequest, "Email is required")
		return
	}

	user, err := h.Service.GetUserByEmail(r.Context(), email)
	if errors.Is(err, services.ErrUserNotFound) {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error fetching user details")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"name":  user.Name,
		"email": user.Email,
	})
}
