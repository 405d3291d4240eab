package handlers

import (
	"context"
	"net/http"

	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"task-manager/backend/logging"
)

// Pinger is the slice of the Mongo client the health check needs.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// HealthHandler reports whether the store is reachable. The ping runs
// through a circuit breaker so a dead store answers fast instead of piling
// up connection timeouts.
type HealthHandler struct {
	Store   Pinger
	Breaker *gobreaker.CircuitBreaker
}

func NewHealthHandler(store Pinger, breaker *gobreaker.CircuitBreaker) *HealthHandler {
	return &HealthHandler{Store: store, Breaker: breaker}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	_, err := h.Breaker.Execute(func() (interface{}, error) {
		return nil, h.Store.Ping(r.Context(), nil)
	})
	if err != nil {
		logging.Logger.Warnf("Event ID: HEALTH_CHECK_FAILED, Description: Store ping failed: %v", err)
		respondError(w, http.StatusServiceUnavailable, "Store unavailable")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
