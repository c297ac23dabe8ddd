package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/sbilibin2017/rewear-exchange/internal/models"
	"github.com/sbilibin2017/rewear-exchange/internal/services"
)

//go:generate mockgen -source=item.go -destination=item_mock.go -package=handlers

// ItemManager defines the interface that the item service must implement.
type ItemManager interface {
	CreateItem(ctx context.Context, ownerID uuid.UUID, in services.CreateItemInput) (*models.ItemDB, error)
	GetItem(ctx context.Context, itemID uuid.UUID) (*models.ItemDB, error)
	ListItems(ctx context.Context, filter models.ItemFilter) (*models.ItemPage, error)
	ListItemsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.ItemDB, error)
	UpdateItem(ctx context.Context, actorID, itemID uuid.UUID, in services.UpdateItemInput) (*models.ItemDB, error)
	DeleteItem(ctx context.Context, actorID, itemID uuid.UUID) error
}

// CreateItemRequest represents the JSON body for listing a garment
// swagger:model CreateItemRequest
type CreateItemRequest struct {
	// Listing title
	// required: true
	// default: Denim jacket
	Title string `json:"title"`

	// Free-text description
	Description string `json:"description"`

	// One of tops, bottoms, dresses, outerwear, shoes, accessories, bags, other
	// required: true
	// default: outerwear
	Category string `json:"category"`

	// One of new, like_new, good, fair, poor
	// required: true
	// default: good
	Condition string `json:"condition"`

	// Size label
	// default: M
	Size string `json:"size"`

	// Brand name
	Brand string `json:"brand"`

	// Minimum points for a points exchange
	// default: 50
	PricePoints int64 `json:"price_points"`
}

// NewCreateItemHandler returns an HTTP handler for listing a new item.
// @Summary List an item
// @Description Lists a garment owned by the authenticated user
// @Tags items
// @Accept json
// @Produce json
// @Param request body handlers.CreateItemRequest true "Item"
// @Success 201 {object} models.ItemDB "Created item"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /items [post]
// @Security BearerAuth
func NewCreateItemHandler(svc ItemManager, tokener Tokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := authorizedUserID(w, r, tokener)
		if !ok {
			return
		}

		var req CreateItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		item, err := svc.CreateItem(r.Context(), userID, services.CreateItemInput{
			Title:       req.Title,
			Description: req.Description,
			Category:    req.Category,
			Condition:   req.Condition,
			Size:        req.Size,
			Brand:       req.Brand,
			PricePoints: req.PricePoints,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, item)
	}
}

// NewGetItemHandler returns an HTTP handler for fetching a single item.
// @Summary Get an item
// @Description Returns an item by id
// @Tags items
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} models.ItemDB "Item"
// @Failure 400 {object} handlers.ErrorResponse "Invalid id"
// @Failure 404 {object} handlers.ErrorResponse "Item not found"
// @Router /items/{id} [get]
func NewGetItemHandler(svc ItemManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}

		item, err := svc.GetItem(r.Context(), itemID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, item)
	}
}

// NewListItemsHandler returns an HTTP handler for browsing the catalog of
// available items.
// @Summary Browse items
// @Description Lists available items newest first, filtered by category and a search term
// @Tags items
// @Produce json
// @Param category query string false "Category"
// @Param search query string false "Matches title, description or brand"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} models.ItemPage "Catalog page"
// @Failure 400 {object} handlers.ErrorResponse "Invalid query"
// @Router /items [get]
func NewListItemsHandler(svc ItemManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		filter := models.ItemFilter{
			Category: q.Get("category"),
			Search:   q.Get("search"),
		}
		var ok bool
		if filter.Page, ok = queryInt(w, q.Get("page"), "page"); !ok {
			return
		}
		if filter.Limit, ok = queryInt(w, q.Get("limit"), "limit"); !ok {
			return
		}

		page, err := svc.ListItems(r.Context(), filter)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, page)
	}
}

// queryInt parses an optional integer query parameter. An empty value is 0.
func queryInt(w http.ResponseWriter, value, name string) (int, bool) {
	if value == "" {
		return 0, true
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return n, true
}

// NewListMyItemsHandler returns an HTTP handler listing the caller's items.
// @Summary My items
// @Description Lists every item of the authenticated user, newest first
// @Tags items
// @Produce json
// @Success 200 {array} models.ItemDB "Items"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Router /users/my-items [get]
// @Security BearerAuth
func NewListMyItemsHandler(svc ItemManager, tokener Tokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := authorizedUserID(w, r, tokener)
		if !ok {
			return
		}

		items, err := svc.ListItemsByOwner(r.Context(), userID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, items)
	}
}

// UpdateItemRequest represents the JSON body for editing a listing.
// Omitted fields keep their value.
// swagger:model UpdateItemRequest
type UpdateItemRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Condition   *string `json:"condition,omitempty"`
	Size        *string `json:"size,omitempty"`
	Brand       *string `json:"brand,omitempty"`
	PricePoints *int64  `json:"price_points,omitempty"`
}

// NewUpdateItemHandler returns an HTTP handler for editing an owned item.
// @Summary Update an item
// @Description Changes the listing fields of an item owned by the authenticated user
// @Tags items
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param request body handlers.UpdateItemRequest true "Fields to change"
// @Success 200 {object} models.ItemDB "Updated item"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 403 {object} handlers.ErrorResponse "Not the owner"
// @Failure 404 {object} handlers.ErrorResponse "Item not found"
// @Router /items/{id} [put]
// @Security BearerAuth
func NewUpdateItemHandler(svc ItemManager, tokener Tokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := authorizedUserID(w, r, tokener)
		if !ok {
			return
		}
		itemID, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}

		var req UpdateItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		item, err := svc.UpdateItem(r.Context(), userID, itemID, services.UpdateItemInput{
			Title:       req.Title,
			Description: req.Description,
			Category:    req.Category,
			Condition:   req.Condition,
			Size:        req.Size,
			Brand:       req.Brand,
			PricePoints: req.PricePoints,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, item)
	}
}

// NewDeleteItemHandler returns an HTTP handler for removing an owned item.
// @Summary Delete an item
// @Description Deletes an available item owned by the authenticated user
// @Tags items
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} handlers.MessageResponse "Item deleted successfully"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 403 {object} handlers.ErrorResponse "Not the owner"
// @Failure 404 {object} handlers.ErrorResponse "Item not found"
// @Failure 409 {object} handlers.ErrorResponse "Item is part of an accepted exchange"
// @Router /items/{id} [delete]
// @Security BearerAuth
func NewDeleteItemHandler(svc ItemManager, tokener Tokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := authorizedUserID(w, r, tokener)
		if !ok {
			return
		}
		itemID, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}

		if err := svc.DeleteItem(r.Context(), userID, itemID); err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, MessageResponse{Message: "Item deleted successfully"})
	}
}
