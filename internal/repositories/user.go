package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/rewear-exchange/internal/models"
)

type UserReadRepository struct {
	db *sqlx.DB
}

func NewUserReadRepository(db *sqlx.DB) *UserReadRepository {
	return &UserReadRepository{db: db}
}

// GetByUsernameOrEmail returns the first user matching either the username or
// the email. A nil argument is ignored. It returns nil when nobody matches.
func (r *UserReadRepository) GetByUsernameOrEmail(ctx context.Context, username, email *string) (*models.UserDB, error) {
	const query = `
		SELECT user_id, username, email, password_hash, points, created_at, updated_at
		FROM users
		WHERE username = $1::VARCHAR OR email = $2::VARCHAR
		LIMIT 1
	`

	var user models.UserDB
	err := r.db.GetContext(ctx, &user, query, username, email)

	logQuery(query, []any{username, email}, user.UserID, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// GetPoints returns the user's current points without locking.
func (r *UserReadRepository) GetPoints(ctx context.Context, userID uuid.UUID) (int64, error) {
	const query = `SELECT points FROM users WHERE user_id = $1`

	var points int64
	err := r.db.GetContext(ctx, &points, query, userID)
	logQuery(query, []any{userID}, points, err)

	return points, err
}

// GetStats aggregates the user's items and exchanges. It returns
// sql.ErrNoRows for an unknown user.
func (r *UserReadRepository) GetStats(ctx context.Context, userID uuid.UUID) (*models.UserStats, error) {
	const query = `
		SELECT
			u.points,
			(SELECT COUNT(*) FROM items i WHERE i.owner_id = u.user_id) AS items_listed,
			(SELECT COUNT(*) FROM items i WHERE i.owner_id = u.user_id AND i.is_available) AS active_items,
			COUNT(e.exchange_id) AS total_exchanges,
			COUNT(e.exchange_id) FILTER (WHERE e.status = 'completed') AS completed_exchanges,
			COUNT(e.exchange_id) FILTER (WHERE e.status = 'pending') AS pending_exchanges
		FROM users u
		LEFT JOIN exchanges e ON u.user_id = e.offering_user_id OR u.user_id = e.requesting_user_id
		WHERE u.user_id = $1
		GROUP BY u.user_id, u.points
	`

	var stats models.UserStats
	err := r.db.GetContext(ctx, &stats, query, userID)
	logQuery(query, []any{userID}, stats, err)

	if err != nil {
		return nil, err
	}
	return &stats, nil
}

type UserWriteRepository struct {
	db *sqlx.DB
}

func NewUserWriteRepository(db *sqlx.DB) *UserWriteRepository {
	return &UserWriteRepository{db: db}
}

// Save inserts a new user with an initial points balance.
func (r *UserWriteRepository) Save(ctx context.Context, username, passwordHash, email string, points int64) error {
	const query = `
		INSERT INTO users (username, email, password_hash, points, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`
	args := []any{username, email, passwordHash, points}

	res, err := r.db.ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	// Never log the password hash.
	logQuery(query, []any{username, email, points}, rowsAffected, err)

	return err
}
