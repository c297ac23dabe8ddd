package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sbilibin2017/rewear-exchange/internal/logger"
	"github.com/sbilibin2017/rewear-exchange/internal/models"
)

//go:generate mockgen -source=item.go -destination=item_mock.go -package=services

const (
	defaultItemsPage  = 1
	defaultItemsLimit = 20
	maxItemsLimit     = 100
)

// ItemRepository stores and loads listed items.
type ItemRepository interface {
	Save(ctx context.Context, item *models.ItemDB) error                                       // Inserts a new item
	GetByID(ctx context.Context, itemID uuid.UUID) (*models.ItemDB, error)                     // Returns the item or nil
	GetByIDForUpdate(ctx context.Context, itemID uuid.UUID) (*models.ItemDB, error)            // Returns a locked item or nil
	ListAvailable(ctx context.Context, filter models.ItemFilter) ([]models.ItemListing, error) // Returns one catalog page
	CountAvailable(ctx context.Context, filter models.ItemFilter) (int, error)                 // Counts catalog matches
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.ItemDB, error)               // Lists the owner's items
	Update(ctx context.Context, item *models.ItemDB) error                                     // Writes editable fields
	Delete(ctx context.Context, itemID uuid.UUID) error                                        // Removes the item
}

// ItemExchanges reports who has exchanges on an item.
type ItemExchanges interface {
	ListRequesterIDsByItem(ctx context.Context, itemID uuid.UUID) ([]uuid.UUID, error)
}

// ListingInvalidator drops cached exchange listings.
type ListingInvalidator interface {
	Invalidate(ctx context.Context, userIDs ...uuid.UUID) error
}

// CreateItemInput holds the fields of a new listing.
type CreateItemInput struct {
	Title       string
	Description string
	Category    string
	Condition   string
	Size        string
	Brand       string
	PricePoints int64
}

// UpdateItemInput holds the fields to change. Nil fields are kept.
type UpdateItemInput struct {
	Title       *string
	Description *string
	Category    *string
	Condition   *string
	Size        *string
	Brand       *string
	PricePoints *int64
}

// ItemService manages garment listings.
type ItemService struct {
	tx        TxManager
	repo      ItemRepository
	exchanges ItemExchanges
	cache     ListingInvalidator
}

// NewItemService creates a new ItemService. cache may be nil.
func NewItemService(tx TxManager, repo ItemRepository, exchanges ItemExchanges, cache ListingInvalidator) *ItemService {
	return &ItemService{
		tx:        tx,
		repo:      repo,
		exchanges: exchanges,
		cache:     cache,
	}
}

// CreateItem lists a new available item owned by ownerID.
func (s *ItemService) CreateItem(ctx context.Context, ownerID uuid.UUID, in CreateItemInput) (*models.ItemDB, error) {
	item := &models.ItemDB{
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Category:    in.Category,
		Condition:   in.Condition,
		Size:        in.Size,
		Brand:       in.Brand,
		PricePoints: in.PricePoints,
	}
	if err := validateItem(item); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, item); err != nil {
		logger.Log.Errorw("failed to save item", "ownerID", ownerID, "error", err)
		return nil, err
	}
	return item, nil
}

func validateItem(item *models.ItemDB) error {
	if item.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidRequest)
	}
	if _, ok := models.ItemCategories[item.Category]; !ok {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidRequest, item.Category)
	}
	if _, ok := models.ItemConditions[item.Condition]; !ok {
		return fmt.Errorf("%w: unknown condition %q", ErrInvalidRequest, item.Condition)
	}
	if item.PricePoints < 0 {
		return fmt.Errorf("%w: price_points must not be negative", ErrInvalidRequest)
	}
	return nil
}

// GetItem returns an item by id.
func (s *ItemService) GetItem(ctx context.Context, itemID uuid.UUID) (*models.ItemDB, error) {
	item, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		logger.Log.Errorw("failed to get item", "itemID", itemID, "error", err)
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item, nil
}

// ListItems returns one page of available items, newest first. Page and
// limit default to 1 and 20; limit is capped at 100.
func (s *ItemService) ListItems(ctx context.Context, filter models.ItemFilter) (*models.ItemPage, error) {
	if filter.Page < 0 || filter.Limit < 0 {
		return nil, fmt.Errorf("%w: page and limit must be positive", ErrInvalidRequest)
	}
	if filter.Category != "" {
		if _, ok := models.ItemCategories[filter.Category]; !ok {
			return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidRequest, filter.Category)
		}
	}
	filter.Search = strings.TrimSpace(filter.Search)
	if filter.Page == 0 {
		filter.Page = defaultItemsPage
	}
	if filter.Limit == 0 {
		filter.Limit = defaultItemsLimit
	}
	if filter.Limit > maxItemsLimit {
		filter.Limit = maxItemsLimit
	}

	items, err := s.repo.ListAvailable(ctx, filter)
	if err != nil {
		logger.Log.Errorw("failed to list items", "filter", filter, "error", err)
		return nil, err
	}
	total, err := s.repo.CountAvailable(ctx, filter)
	if err != nil {
		logger.Log.Errorw("failed to count items", "filter", filter, "error", err)
		return nil, err
	}

	return &models.ItemPage{
		Items: items,
		Pagination: models.Pagination{
			Page:  filter.Page,
			Limit: filter.Limit,
			Total: total,
		},
	}, nil
}

// ListItemsByOwner returns every item of the owner, newest first.
func (s *ItemService) ListItemsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.ItemDB, error) {
	items, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		logger.Log.Errorw("failed to list owner items", "ownerID", ownerID, "error", err)
		return nil, err
	}
	return items, nil
}

// UpdateItem changes the listing fields of an item owned by actorID.
func (s *ItemService) UpdateItem(ctx context.Context, actorID, itemID uuid.UUID, in UpdateItemInput) (*models.ItemDB, error) {
	var (
		item     *models.ItemDB
		affected []uuid.UUID
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		item, err = s.lockOwnedItem(ctx, actorID, itemID)
		if err != nil {
			return err
		}

		applyItemUpdate(item, in)
		if err := validateItem(item); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, item); err != nil {
			return err
		}

		affected, err = s.exchanges.ListRequesterIDsByItem(ctx, itemID)
		return err
	})
	if err != nil {
		err = translateItemError(err)
		logger.Log.Errorw("failed to update item", "itemID", itemID, "actorID", actorID, "error", err)
		return nil, err
	}

	s.invalidateListings(ctx, itemID, item.OwnerID, affected)
	return item, nil
}

func applyItemUpdate(item *models.ItemDB, in UpdateItemInput) {
	if in.Title != nil {
		item.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	if in.Category != nil {
		item.Category = *in.Category
	}
	if in.Condition != nil {
		item.Condition = *in.Condition
	}
	if in.Size != nil {
		item.Size = *in.Size
	}
	if in.Brand != nil {
		item.Brand = *in.Brand
	}
	if in.PricePoints != nil {
		item.PricePoints = *in.PricePoints
	}
}

// DeleteItem removes an available item owned by actorID together with its
// exchanges. Items taken by an accepted exchange cannot be deleted.
func (s *ItemService) DeleteItem(ctx context.Context, actorID, itemID uuid.UUID) error {
	var (
		ownerID  uuid.UUID
		affected []uuid.UUID
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		item, err := s.lockOwnedItem(ctx, actorID, itemID)
		if err != nil {
			return err
		}
		if !item.IsAvailable {
			return fmt.Errorf("%w: item is part of an accepted exchange", ErrInvalidState)
		}
		ownerID = item.OwnerID

		affected, err = s.exchanges.ListRequesterIDsByItem(ctx, itemID)
		if err != nil {
			return err
		}
		return s.repo.Delete(ctx, itemID)
	})
	if err != nil {
		err = translateItemError(err)
		logger.Log.Errorw("failed to delete item", "itemID", itemID, "actorID", actorID, "error", err)
		return err
	}

	s.invalidateListings(ctx, itemID, ownerID, affected)
	return nil
}

func (s *ItemService) lockOwnedItem(ctx context.Context, actorID, itemID uuid.UUID) (*models.ItemDB, error) {
	item, err := s.repo.GetByIDForUpdate(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: item %s", ErrNotFound, itemID)
	}
	if item.OwnerID != actorID {
		return nil, fmt.Errorf("%w: only the owner can change the item", ErrForbidden)
	}
	return item, nil
}

func translateItemError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return translateTxError(err)
}

// invalidateListings drops cached exchange listings that show the item.
func (s *ItemService) invalidateListings(ctx context.Context, itemID, ownerID uuid.UUID, requesters []uuid.UUID) {
	if s.cache == nil || len(requesters) == 0 {
		return
	}
	users := append([]uuid.UUID{ownerID}, requesters...)
	if err := s.cache.Invalidate(ctx, users...); err != nil {
		logger.Log.Warnw("failed to invalidate cached exchanges", "itemID", itemID, "error", err)
	}
}
