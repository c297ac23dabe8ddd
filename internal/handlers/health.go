package handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/rewear-exchange/internal/logger"
)

//go:generate mockgen -source=health.go -destination=health_mock.go -package=handlers

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthResponse represents the service health
// swagger:model HealthResponse
type HealthResponse struct {
	// default: OK
	Status string `json:"status"`
}

// NewHealthHandler returns an HTTP handler reporting service health.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} handlers.HealthResponse
// @Failure 503 {object} handlers.HealthResponse
// @Router /health [get]
func NewHealthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			logger.Log.Errorw("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "UNAVAILABLE"})
			return
		}
		writeJSON(w, http.StatusOK, HealthResponse{Status: "OK"})
	}
}
