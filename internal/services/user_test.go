package services_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sbilibin2017/rewear-exchange/internal/models"
	"github.com/sbilibin2017/rewear-exchange/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestUserService(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reader := services.NewMockUserStatsReader(ctrl)
	svc := services.NewUserService(reader)
	ctx := context.Background()
	userID := uuid.New()

	t.Run("GetBalance", func(t *testing.T) {
		reader.EXPECT().GetPoints(gomock.Any(), userID).Return(int64(75), nil)

		points, err := svc.GetBalance(ctx, userID)
		assert.NoError(t, err)
		assert.Equal(t, int64(75), points)
	})

	t.Run("GetBalance unknown user", func(t *testing.T) {
		reader.EXPECT().GetPoints(gomock.Any(), userID).Return(int64(0), sql.ErrNoRows)

		_, err := svc.GetBalance(ctx, userID)
		assert.ErrorIs(t, err, services.ErrNotFound)
	})

	t.Run("GetStats", func(t *testing.T) {
		stats := &models.UserStats{Points: 10, ItemsListed: 3, ActiveItems: 2, TotalExchanges: 4, CompletedExchanges: 1, PendingExchanges: 2}
		reader.EXPECT().GetStats(gomock.Any(), userID).Return(stats, nil)

		got, err := svc.GetStats(ctx, userID)
		assert.NoError(t, err)
		assert.Equal(t, stats, got)
	})

	t.Run("GetStats error", func(t *testing.T) {
		reader.EXPECT().GetStats(gomock.Any(), userID).Return(nil, errors.New("db error"))

		_, err := svc.GetStats(ctx, userID)
		assert.EqualError(t, err, "db error")
	})
}
