package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/sbilibin2017/rewear-exchange/internal/logger"
	"github.com/sbilibin2017/rewear-exchange/internal/models"
)

//go:generate mockgen -source=user.go -destination=user_mock.go -package=services

// UserStatsReader reads balances and activity counters.
type UserStatsReader interface {
	GetPoints(ctx context.Context, userID uuid.UUID) (int64, error)            // Returns the current balance
	GetStats(ctx context.Context, userID uuid.UUID) (*models.UserStats, error) // Returns activity counters
}

// UserService exposes read access to user balances and statistics.
type UserService struct {
	reader UserStatsReader
}

// NewUserService creates a new UserService.
func NewUserService(reader UserStatsReader) *UserService {
	return &UserService{reader: reader}
}

// GetBalance returns the user's points.
func (s *UserService) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	points, err := s.reader.GetPoints(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		logger.Log.Errorw("failed to get user balance", "userID", userID, "error", err)
		return 0, err
	}
	return points, nil
}

// GetStats returns the user's item and exchange counters.
func (s *UserService) GetStats(ctx context.Context, userID uuid.UUID) (*models.UserStats, error) {
	stats, err := s.reader.GetStats(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.Log.Errorw("failed to get user stats", "userID", userID, "error", err)
		return nil, err
	}
	return stats, nil
}
