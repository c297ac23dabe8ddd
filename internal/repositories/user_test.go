package repositories

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/sbilibin2017/rewear-exchange/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepositories(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()

	reader := NewUserReadRepository(db)
	writer := NewUserWriteRepository(db)

	require.NoError(t, writer.Save(ctx, "alice", "hashed", "alice@example.com", 100))

	t.Run("GetByUsernameOrEmail", func(t *testing.T) {
		username := "alice"
		user, err := reader.GetByUsernameOrEmail(ctx, &username, nil)
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.Equal(t, "hashed", user.PasswordHash)
		assert.Equal(t, int64(100), user.Points)

		email := "alice@example.com"
		other := "someone-else"
		user, err = reader.GetByUsernameOrEmail(ctx, &other, &email)
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "alice", user.Username)

		user, err = reader.GetByUsernameOrEmail(ctx, &other, nil)
		assert.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("duplicate username fails", func(t *testing.T) {
		err := writer.Save(ctx, "alice", "hashed", "other@example.com", 100)
		assert.Error(t, err)
	})

	t.Run("GetPoints", func(t *testing.T) {
		username := "alice"
		user, err := reader.GetByUsernameOrEmail(ctx, &username, nil)
		require.NoError(t, err)

		points, err := reader.GetPoints(ctx, user.UserID)
		assert.NoError(t, err)
		assert.Equal(t, int64(100), points)

		_, err = reader.GetPoints(ctx, uuid.New())
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("GetStats", func(t *testing.T) {
		owner := insertUser(t, db, "stats-owner", 40)
		requester := insertUser(t, db, "stats-requester", 0)
		first := insertItem(t, db, owner, "Boots", 10)
		insertItem(t, db, owner, "Belt", 5)
		require.NoError(t, NewItemRepository(db, nil).MarkUnavailable(ctx, first))

		exchanges := NewExchangeRepository(db, nil)
		completed := &models.ExchangeDB{ItemID: first, OfferingUserID: owner, RequestingUserID: requester,
			ExchangeType: models.DirectSwap, Status: models.StatusCompleted}
		pending := &models.ExchangeDB{ItemID: first, OfferingUserID: owner, RequestingUserID: requester,
			ExchangeType: models.DirectSwap, Status: models.StatusPending}
		require.NoError(t, exchanges.Save(ctx, completed))
		require.NoError(t, exchanges.Save(ctx, pending))

		stats, err := reader.GetStats(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, models.UserStats{
			Points:             40,
			ItemsListed:        2,
			ActiveItems:        1,
			TotalExchanges:     2,
			CompletedExchanges: 1,
			PendingExchanges:   1,
		}, *stats)

		_, err = reader.GetStats(ctx, uuid.New())
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}
