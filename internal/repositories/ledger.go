package repositories

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// LedgerRepository reads and adjusts user point balances
type LedgerRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewLedgerRepository(db *sqlx.DB, txGetter TxGetter) *LedgerRepository {
	return &LedgerRepository{db: db, txGetter: txGetter}
}

// GetBalance returns the user's points and locks the user row until the end
// of the current transaction. It returns sql.ErrNoRows for an unknown user.
func (r *LedgerRepository) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	const query = `
		SELECT points
		FROM users
		WHERE user_id = $1
		FOR UPDATE
	`

	var points int64
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &points, query, userID)
	logQuery(query, []any{userID}, points, err)

	return points, err
}

// AdjustBalance adds delta to the user's points in a single statement and
// returns the new balance. A debit that would drive the balance below zero
// matches no row and returns sql.ErrNoRows, leaving the balance unchanged.
func (r *LedgerRepository) AdjustBalance(ctx context.Context, userID uuid.UUID, delta int64) (int64, error) {
	const query = `
		UPDATE users
		SET points = points + $2, updated_at = NOW()
		WHERE user_id = $1 AND points + $2 >= 0
		RETURNING points
	`
	args := []any{userID, delta}

	var points int64
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &points, query, args...)
	logQuery(query, args, points, err)

	if err == sql.ErrNoRows {
		return 0, sql.ErrNoRows
	}
	return points, err
}
