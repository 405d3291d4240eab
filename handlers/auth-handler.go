package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"task-manager/backend/logging"
	"task-manager/backend/models"
	"task-manager/backend/services"
)

var validate = validator.New()

// AuthService is the slice of UserService the auth endpoints need.
type AuthService interface {
	RegisterUser(ctx context.Context, name, email, password string) error
	LoginUser(ctx context.Context, email, password string) (*models.User, error)
}

type AuthHandler struct {
	Service AuthService
}

func NewAuthHandler(service AuthService) *AuthHandler {
	return &AuthHandler{Service: service}
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request data")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "Name, email and password are required")
		return
	}

	err := h.Service.RegisterUser(r.Context(), req.Name, req.Email, req.Password)
	if errors.Is(err, services.ErrUserExists) {
		respondError(w, http.StatusConflict, "User already exists")
		return
	}
	if err != nil {
		logging.Logger.Errorf("Event ID: REGISTER_FAILED, Description: Error registering user: %v", err)
		respondError(w, http.StatusInternalServerError, "Error registering user")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

// Login authenticates and returns the user's id, name and email. No token
// is issued; callers carry the email on later requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request data")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.Service.LoginUser(r.Context(), req.Email, req.Password)
	if errors.Is(err, services.ErrUserNotFound) {
		respondError(w, http.StatusBadRequest, "User not found")
		return
	}
	if errors.Is(err, services.ErrInvalidCredentials) {
		respondError(w, http.StatusBadRequest, "Invalid credentials")
		return
	}
	if err != nil {
		logging.Logger.Errorf("Event ID: LOGIN_FAILED, Description: Error logging in user: %v", err)
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	respondJSON(w, http.StatusOK, LoginResponse{
		ID:    user.ID.Hex(),
		Name:  user.Name,
		Email: user.Email,
	})
}
