package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/rewear-exchange/internal/models"
	"github.com/sbilibin2017/rewear-exchange/internal/services"
)

//go:generate mockgen -source=exchange.go -destination=exchange_mock.go -package=handlers

// ExchangeManager defines the interface that the exchange service must implement.
type ExchangeManager interface {
	Create(ctx context.Context, requesterID uuid.UUID, in services.CreateExchangeInput) (*models.ExchangeDB, error)
	ListExchangesForUser(ctx context.Context, userID uuid.UUID) ([]models.ExchangeDetails, error)
}

// ExchangeTransition moves an exchange to its next status on behalf of actorID.
type ExchangeTransition func(ctx context.Context, actorID, exchangeID uuid.UUID) (*models.ExchangeDB, error)

// CreateExchangeRequest represents the JSON body for requesting an item
// swagger:model CreateExchangeRequest
type CreateExchangeRequest struct {
	// Requested item
	// required: true
	ItemID string `json:"item_id"`

	// direct_swap or points_exchange
	// required: true
	// default: points_exchange
	ExchangeType models.ExchangeType `json:"exchange_type"`

	// Optional note to the owner
	Message *string `json:"message,omitempty"`

	// Offered points, required for points_exchange
	// default: 50
	PointsExchanged *int64 `json:"points_exchanged,omitempty"`
}

// NewCreateExchangeHandler returns an HTTP handler for opening an exchange request.
// @Summary Request an item
// @Description Opens a pending direct swap or points exchange for an available item
// @Tags exchanges
// @Accept json
// @Produce json
// @Param request body handlers.CreateExchangeRequest true "Exchange request"
// @Success 201 {object} models.ExchangeDB "Created exchange"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request / insufficient points"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.ErrorResponse "Item not found or not available"
// @Failure 409 {object} handlers.ErrorResponse "Exchange request already exists"
// @Router /exchanges [post]
// @Security BearerAuth
func NewCreateExchangeHandler(svc ExchangeManager, tokener Tokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := authorizedUserID(w, r, tokener)
		if !ok {
			return
		}

		var req CreateExchangeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		itemID, err := uuid.Parse(req.ItemID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid item_id")
			return
		}

		exchange, err := svc.Create(r.Context(), userID, services.CreateExchangeInput{
			ItemID:          itemID,
			ExchangeType:    req.ExchangeType,
			Message:         req.Message,
			PointsExchanged: req.PointsExchanged,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, exchange)
	}
}

// NewListExchangesHandler returns an HTTP handler listing the caller's exchanges.
// @Summary List my exchanges
// @Description Returns exchanges where the caller is the offering or requesting user, newest first
// @Tags exchanges
// @Produce json
// @Success 200 {array} models.ExchangeDetails "Exchanges"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /exchanges [get]
// @Security BearerAuth
func NewListExchangesHandler(svc ExchangeManager, tokener Tokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := authorizedUserID(w, r, tokener)
		if !ok {
			return
		}

		exchanges, err := svc.ListExchangesForUser(r.Context(), userID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, exchanges)
	}
}

// NewExchangeTransitionHandler returns an HTTP handler that applies transition
// to the exchange named by the {id} route parameter.
// @Summary Move an exchange through its lifecycle
// @Description accept and reject are reserved to the offering user; complete and cancel are open to both participants
// @Tags exchanges
// @Produce json
// @Param id path string true "Exchange ID"
// @Success 200 {object} handlers.MessageResponse "Transition applied"
// @Failure 400 {object} handlers.ErrorResponse "Invalid id / insufficient points"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 403 {object} handlers.ErrorResponse "Not authorized"
// @Failure 404 {object} handlers.ErrorResponse "Exchange not found"
// @Failure 409 {object} handlers.ErrorResponse "Invalid state / concurrent modification"
// @Router /exchanges/{id}/accept [put]
// @Router /exchanges/{id}/reject [put]
// @Router /exchanges/{id}/complete [put]
// @Router /exchanges/{id}/cancel [put]
// @Security BearerAuth
func NewExchangeTransitionHandler(transition ExchangeTransition, tokener Tokener, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := authorizedUserID(w, r, tokener)
		if !ok {
			return
		}
		exchangeID, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}

		if _, err := transition(r.Context(), userID, exchangeID); err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, MessageResponse{Message: message})
	}
}
