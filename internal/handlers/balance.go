package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/rewear-exchange/internal/models"
)

//go:generate mockgen -source=balance.go -destination=balance_mock.go -package=handlers

// Balancer defines the interface that the user service must implement.
type Balancer interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (int64, error)
	GetStats(ctx context.Context, userID uuid.UUID) (*models.UserStats, error)
}

// BalanceResponse represents the caller's points balance
// swagger:model BalanceResponse
type BalanceResponse struct {
	// Points balance
	// default: 100
	Points int64 `json:"points"`
}

// NewGetBalanceHandler returns an HTTP handler for fetching the caller's points.
// @Summary Get points balance
// @Description Returns the points balance of the authenticated user
// @Tags users
// @Produce json
// @Success 200 {object} handlers.BalanceResponse "User balance"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.ErrorResponse "User not found"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /balance [get]
// @Security BearerAuth
func NewGetBalanceHandler(svc Balancer, tokener Tokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := authorizedUserID(w, r, tokener)
		if !ok {
			return
		}

		points, err := svc.GetBalance(r.Context(), userID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, BalanceResponse{Points: points})
	}
}

// NewGetStatsHandler returns an HTTP handler for fetching the caller's activity counters.
// @Summary Get user statistics
// @Description Returns points, listed and active items, and exchange counters of the authenticated user
// @Tags users
// @Produce json
// @Success 200 {object} models.UserStats "User statistics"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.ErrorResponse "User not found"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /users/stats [get]
// @Security BearerAuth
func NewGetStatsHandler(svc Balancer, tokener Tokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := authorizedUserID(w, r, tokener)
		if !ok {
			return
		}

		stats, err := svc.GetStats(r.Context(), userID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, stats)
	}
}
