package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sbilibin2017/rewear-exchange/internal/models"
	"github.com/sbilibin2017/rewear-exchange/internal/services"
	"github.com/sbilibin2017/rewear-exchange/internal/txmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type itemMocks struct {
	repo      *services.MockItemRepository
	exchanges *services.MockItemExchanges
	cache     *services.MockListingInvalidator
	svc       *services.ItemService
}

func newItemMocks(t *testing.T) *itemMocks {
	ctrl := gomock.NewController(t)
	tx := services.NewMockTxManager(ctrl)
	tx.EXPECT().
		WithinTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		}).
		AnyTimes()

	m := &itemMocks{
		repo:      services.NewMockItemRepository(ctrl),
		exchanges: services.NewMockItemExchanges(ctrl),
		cache:     services.NewMockListingInvalidator(ctrl),
	}
	m.svc = services.NewItemService(tx, m.repo, m.exchanges, m.cache)
	return m
}

func strPtr(v string) *string { return &v }

func TestItemService_CreateItem(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	valid := services.CreateItemInput{
		Title:       " Denim jacket ",
		Category:    models.CategoryOuterwear,
		Condition:   models.ConditionGood,
		Size:        "M",
		PricePoints: 50,
	}

	t.Run("success", func(t *testing.T) {
		m := newItemMocks(t)
		m.repo.EXPECT().Save(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, item *models.ItemDB) error {
				item.ItemID = uuid.New()
				item.IsAvailable = true
				return nil
			})

		item, err := m.svc.CreateItem(ctx, ownerID, valid)
		require.NoError(t, err)
		assert.Equal(t, "Denim jacket", item.Title)
		assert.Equal(t, ownerID, item.OwnerID)
		assert.True(t, item.IsAvailable)
	})

	tests := []struct {
		name   string
		modify func(in *services.CreateItemInput)
	}{
		{name: "empty title", modify: func(in *services.CreateItemInput) { in.Title = " " }},
		{name: "unknown category", modify: func(in *services.CreateItemInput) { in.Category = "hats" }},
		{name: "unknown condition", modify: func(in *services.CreateItemInput) { in.Condition = "worn" }},
		{name: "negative price", modify: func(in *services.CreateItemInput) { in.PricePoints = -5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newItemMocks(t)
			in := valid
			tt.modify(&in)

			_, err := m.svc.CreateItem(ctx, ownerID, in)
			assert.ErrorIs(t, err, services.ErrInvalidRequest)
		})
	}

	t.Run("save error", func(t *testing.T) {
		m := newItemMocks(t)
		m.repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("db error"))

		_, err := m.svc.CreateItem(ctx, ownerID, valid)
		assert.EqualError(t, err, "db error")
	})
}

func TestItemService_GetItem(t *testing.T) {
	m := newItemMocks(t)
	itemID := uuid.New()

	m.repo.EXPECT().GetByID(gomock.Any(), itemID).Return(&models.ItemDB{ItemID: itemID, Title: "Scarf"}, nil)
	item, err := m.svc.GetItem(context.Background(), itemID)
	require.NoError(t, err)
	assert.Equal(t, "Scarf", item.Title)

	m.repo.EXPECT().GetByID(gomock.Any(), itemID).Return(nil, nil)
	_, err = m.svc.GetItem(context.Background(), itemID)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestItemService_ListItems(t *testing.T) {
	ctx := context.Background()
	listing := []models.ItemListing{{ItemDB: models.ItemDB{ItemID: uuid.New(), Title: "Wool scarf"}, OwnerUsername: "alice"}}

	t.Run("defaults page and limit", func(t *testing.T) {
		m := newItemMocks(t)
		want := models.ItemFilter{Search: "wool", Page: 1, Limit: 20}
		m.repo.EXPECT().ListAvailable(gomock.Any(), want).Return(listing, nil)
		m.repo.EXPECT().CountAvailable(gomock.Any(), want).Return(1, nil)

		page, err := m.svc.ListItems(ctx, models.ItemFilter{Search: "  wool "})
		require.NoError(t, err)
		assert.Equal(t, listing, page.Items)
		assert.Equal(t, models.Pagination{Page: 1, Limit: 20, Total: 1}, page.Pagination)
	})

	t.Run("limit is capped", func(t *testing.T) {
		m := newItemMocks(t)
		want := models.ItemFilter{Category: models.CategoryBags, Page: 3, Limit: 100}
		m.repo.EXPECT().ListAvailable(gomock.Any(), want).Return([]models.ItemListing{}, nil)
		m.repo.EXPECT().CountAvailable(gomock.Any(), want).Return(201, nil)

		page, err := m.svc.ListItems(ctx, models.ItemFilter{Category: models.CategoryBags, Page: 3, Limit: 500})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Equal(t, models.Pagination{Page: 3, Limit: 100, Total: 201}, page.Pagination)
	})

	t.Run("invalid filters", func(t *testing.T) {
		m := newItemMocks(t)

		_, err := m.svc.ListItems(ctx, models.ItemFilter{Category: "hats"})
		assert.ErrorIs(t, err, services.ErrInvalidRequest)

		_, err = m.svc.ListItems(ctx, models.ItemFilter{Page: -1})
		assert.ErrorIs(t, err, services.ErrInvalidRequest)

		_, err = m.svc.ListItems(ctx, models.ItemFilter{Limit: -10})
		assert.ErrorIs(t, err, services.ErrInvalidRequest)
	})

	t.Run("store error", func(t *testing.T) {
		m := newItemMocks(t)
		m.repo.EXPECT().ListAvailable(gomock.Any(), gomock.Any()).Return(nil, errors.New("db error"))

		_, err := m.svc.ListItems(ctx, models.ItemFilter{})
		assert.EqualError(t, err, "db error")
	})
}

func TestItemService_ListItemsByOwner(t *testing.T) {
	m := newItemMocks(t)
	ownerID := uuid.New()
	items := []models.ItemDB{{ItemID: uuid.New(), OwnerID: ownerID}, {ItemID: uuid.New(), OwnerID: ownerID, IsAvailable: true}}

	m.repo.EXPECT().ListByOwner(gomock.Any(), ownerID).Return(items, nil)

	got, err := m.svc.ListItemsByOwner(context.Background(), ownerID)
	require.NoError(t, err)
	assert.Equal(t, items, got)
}

func TestItemService_UpdateItem(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	requester := uuid.New()
	itemID := uuid.New()
	stored := func() *models.ItemDB {
		return &models.ItemDB{
			ItemID:      itemID,
			OwnerID:     owner,
			Title:       "Denim jacket",
			Category:    models.CategoryOuterwear,
			Condition:   models.ConditionGood,
			PricePoints: 50,
			IsAvailable: true,
		}
	}

	t.Run("partial update invalidates listings", func(t *testing.T) {
		m := newItemMocks(t)
		m.repo.EXPECT().GetByIDForUpdate(gomock.Any(), itemID).Return(stored(), nil)
		m.repo.EXPECT().Update(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, item *models.ItemDB) error {
				assert.Equal(t, "Cropped denim jacket", item.Title)
				assert.Equal(t, int64(70), item.PricePoints)
				assert.Equal(t, models.CategoryOuterwear, item.Category)
				return nil
			})
		m.exchanges.EXPECT().ListRequesterIDsByItem(gomock.Any(), itemID).Return([]uuid.UUID{requester}, nil)
		m.cache.EXPECT().Invalidate(gomock.Any(), owner, requester).Return(nil)

		item, err := m.svc.UpdateItem(ctx, owner, itemID, services.UpdateItemInput{
			Title:       strPtr(" Cropped denim jacket"),
			PricePoints: int64Ptr(70),
		})
		require.NoError(t, err)
		assert.Equal(t, "Cropped denim jacket", item.Title)
	})

	t.Run("no exchanges skips invalidation", func(t *testing.T) {
		m := newItemMocks(t)
		m.repo.EXPECT().GetByIDForUpdate(gomock.Any(), itemID).Return(stored(), nil)
		m.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
		m.exchanges.EXPECT().ListRequesterIDsByItem(gomock.Any(), itemID).Return([]uuid.UUID{}, nil)

		_, err := m.svc.UpdateItem(ctx, owner, itemID, services.UpdateItemInput{Size: strPtr("L")})
		require.NoError(t, err)
	})

	t.Run("not the owner", func(t *testing.T) {
		m := newItemMocks(t)
		m.repo.EXPECT().GetByIDForUpdate(gomock.Any(), itemID).Return(stored(), nil)

		_, err := m.svc.UpdateItem(ctx, requester, itemID, services.UpdateItemInput{Title: strPtr("Mine now")})
		assert.ErrorIs(t, err, services.ErrForbidden)
	})

	t.Run("missing item", func(t *testing.T) {
		m := newItemMocks(t)
		m.repo.EXPECT().GetByIDForUpdate(gomock.Any(), itemID).Return(nil, nil)

		_, err := m.svc.UpdateItem(ctx, owner, itemID, services.UpdateItemInput{})
		assert.ErrorIs(t, err, services.ErrNotFound)
	})

	t.Run("invalid field", func(t *testing.T) {
		m := newItemMocks(t)
		m.repo.EXPECT().GetByIDForUpdate(gomock.Any(), itemID).Return(stored(), nil)

		_, err := m.svc.UpdateItem(ctx, owner, itemID, services.UpdateItemInput{Condition: strPtr("worn")})
		assert.ErrorIs(t, err, services.ErrInvalidRequest)
	})

	t.Run("lock conflict", func(t *testing.T) {
		m := newItemMocks(t)
		m.repo.EXPECT().GetByIDForUpdate(gomock.Any(), itemID).Return(nil, txmanager.ErrConflict)

		_, err := m.svc.UpdateItem(ctx, owner, itemID, services.UpdateItemInput{})
		assert.ErrorIs(t, err, services.ErrConflict)
	})
}

func TestItemService_DeleteItem(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	requester := uuid.New()
	itemID := uuid.New()

	t.Run("deletes and invalidates listings", func(t *testing.T) {
		m := newItemMocks(t)
		m.repo.EXPECT().GetByIDForUpdate(gomock.Any(), itemID).
			Return(&models.ItemDB{ItemID: itemID, OwnerID: owner, IsAvailable: true}, nil)
		m.exchanges.EXPECT().ListRequesterIDsByItem(gomock.Any(), itemID).Return([]uuid.UUID{requester}, nil)
		m.repo.EXPECT().Delete(gomock.Any(), itemID).Return(nil)
		m.cache.EXPECT().Invalidate(gomock.Any(), owner, requester).Return(errors.New("redis down"))

		assert.NoError(t, m.svc.DeleteItem(ctx, owner, itemID))
	})

	t.Run("taken item", func(t *testing.T) {
		m := newItemMocks(t)
		m.repo.EXPECT().GetByIDForUpdate(gomock.Any(), itemID).
			Return(&models.ItemDB{ItemID: itemID, OwnerID: owner, IsAvailable: false}, nil)

		assert.ErrorIs(t, m.svc.DeleteItem(ctx, owner, itemID), services.ErrInvalidState)
	})

	t.Run("not the owner", func(t *testing.T) {
		m := newItemMocks(t)
		m.repo.EXPECT().GetByIDForUpdate(gomock.Any(), itemID).
			Return(&models.ItemDB{ItemID: itemID, OwnerID: owner, IsAvailable: true}, nil)

		assert.ErrorIs(t, m.svc.DeleteItem(ctx, requester, itemID), services.ErrForbidden)
	})

	t.Run("missing item", func(t *testing.T) {
		m := newItemMocks(t)
		m.repo.EXPECT().GetByIDForUpdate(gomock.Any(), itemID).Return(nil, nil)

		assert.ErrorIs(t, m.svc.DeleteItem(ctx, owner, itemID), services.ErrNotFound)
	})
}
