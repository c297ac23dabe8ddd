package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sbilibin2017/rewear-exchange/internal/jwt"
	"github.com/sbilibin2017/rewear-exchange/internal/logger"
	"github.com/sbilibin2017/rewear-exchange/internal/services"
)

//go:generate mockgen -source=handlers.go -destination=handlers_mock.go -package=handlers

// Tokener defines the token methods needed by protected handlers.
type Tokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// ErrorResponse represents an error response
// swagger:model ErrorResponse
type ErrorResponse struct {
	// Error message
	// default: Unauthorized
	Error string `json:"error"`
}

// MessageResponse represents a plain success message
// swagger:model MessageResponse
type MessageResponse struct {
	// Success message
	// default: Exchange accepted
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeServiceError maps service errors to HTTP statuses. Unknown errors
// are logged and reported as 500 without details.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidRequest),
		errors.Is(err, services.ErrInsufficientPoints):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Log.Errorw("internal server error", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// authorizedUserID extracts the caller from the bearer token. It writes a
// 401 response and returns false when the token is missing or invalid.
func authorizedUserID(w http.ResponseWriter, r *http.Request, tokener Tokener) (uuid.UUID, bool) {
	ctx := r.Context()

	tokenStr, err := tokener.GetTokenFromRequest(ctx, r)
	if err != nil {
		logger.Log.Errorw("unauthorized request: missing or invalid token", "error", err)
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, false
	}

	claims, err := tokener.GetClaims(ctx, tokenStr)
	if err != nil {
		logger.Log.Errorw("failed to parse token claims", "error", err)
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, false
	}

	return claims.UserID, true
}

// pathUUID parses the {name} route parameter. It writes a 400 response
// and returns false when the value is not a UUID.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
