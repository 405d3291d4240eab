package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"task-manager/backend/logging"
	"task-manager/backend/services"
)

// IdentityVerifier checks an identity proof. The only implementation today
// is the session service keyed on a bare email; the seam exists so a token
// scheme can replace it without touching handlers.
type IdentityVerifier interface {
	Verify(ctx context.Context, proof string) error
}

// SessionTimeout guards a route with the sliding-window session check. The
// proof is the email query parameter.
func SessionTimeout(verifier IdentityVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email := r.URL.Query().Get("email")
			if email == "" {
				unauthorized(w, "Unauthorized: No email provided")
				return
			}

			err := verifier.Verify(r.Context(), email)
			if errors.Is(err, services.ErrNoSession) || errors.Is(err, services.ErrSessionExpired) {
				logging.Logger.Infof("Event ID: SESSION_REJECTED, Description: Session check failed for %s: %v", email, err)
				unauthorized(w, "Session expired. Please log in again.")
				return
			}
			if err != nil {
				logging.Logger.Errorf("Event ID: SESSION_CHECK_FAILED, Description: Session check error for %s: %v", email, err)
				respond(w, http.StatusInternalServerError, "Server error")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	respond(w, http.StatusUnauthorized, message)
}

func respond(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
