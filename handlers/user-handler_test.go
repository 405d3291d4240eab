package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-manager/backend/models"
	"task-manager/backend/services"
)

type fakeUserReader struct {
	users map[string]*models.User
}

func (f *fakeUserReader) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, services.ErrUserNotFound
	}
	return user, nil
}

func TestUserHandler_GetUser(t *testing.T) {
	reader := &fakeUserReader{users: map[string]*models.User{
		"a@x.com": {Name: "Ana", Email: "a@x.com", Password: "hash"},
	}}
	h := NewUserHandler(reader)

	tests := []struct {
		name         string
		target       string
		expectedCode int
	}{
		{"missing email", "/api/user", http.StatusBadRequest},
		{"unknown email", "/api/user?email=nobody@x.com", http.StatusNotFound},
		{"found", "/api/user?email=a@x.com", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			h.GetUser(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)
		})
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/user?email=a@x.com", nil)
	h.GetUser(rec, req)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Ana", body["name"])
	assert.Equal(t, "a@x.com", body["email"])
	assert.NotContains(t, rec.Body.String(), "hash")
}
