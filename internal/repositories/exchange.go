package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/rewear-exchange/internal/models"
)

// ExchangeRepository handles exchange reads and writes
type ExchangeRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewExchangeRepository(db *sqlx.DB, txGetter TxGetter) *ExchangeRepository {
	return &ExchangeRepository{db: db, txGetter: txGetter}
}

// Save inserts a new exchange and fills in its generated id and timestamps.
func (r *ExchangeRepository) Save(ctx context.Context, e *models.ExchangeDB) error {
	const query = `
		INSERT INTO exchanges (exchange_id, item_id, offering_user_id, requesting_user_id,
		                       exchange_type, status, message, points_exchanged, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	if e.ExchangeID == uuid.Nil {
		e.ExchangeID = uuid.New()
	}
	args := []any{e.ExchangeID, e.ItemID, e.OfferingUserID, e.RequestingUserID,
		e.ExchangeType, e.Status, e.Message, e.PointsExchanged}

	err := executor(ctx, r.db, r.txGetter).QueryRowxContext(ctx, query, args...).Scan(&e.CreatedAt, &e.UpdatedAt)
	logQuery(query, args, e.ExchangeID, err)
	return err
}

// GetByIDForUpdate returns the exchange and locks its row until the end of
// the current transaction. It returns nil when the exchange does not exist.
func (r *ExchangeRepository) GetByIDForUpdate(ctx context.Context, exchangeID uuid.UUID) (*models.ExchangeDB, error) {
	const query = `
		SELECT exchange_id, item_id, offering_user_id, requesting_user_id, exchange_type,
		       status, message, points_exchanged, created_at, updated_at
		FROM exchanges
		WHERE exchange_id = $1
		FOR UPDATE
	`

	var e models.ExchangeDB
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &e, query, exchangeID)
	logQuery(query, []any{exchangeID}, e.Status, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// UpdateStatus sets the status of an exchange. It returns sql.ErrNoRows if
// the exchange does not exist.
func (r *ExchangeRepository) UpdateStatus(ctx context.Context, exchangeID uuid.UUID, status models.ExchangeStatus) error {
	const query = `
		UPDATE exchanges
		SET status = $2, updated_at = NOW()
		WHERE exchange_id = $1
	`
	args := []any{exchangeID, status}

	res, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}
	logQuery(query, args, rowsAffected, err)

	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ExistsPending reports whether requesterID already has a pending exchange for itemID.
func (r *ExchangeRepository) ExistsPending(ctx context.Context, itemID, requesterID uuid.UUID) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM exchanges
			WHERE item_id = $1 AND requesting_user_id = $2 AND status = 'pending'
		)
	`
	args := []any{itemID, requesterID}

	var exists bool
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &exists, query, args...)
	logQuery(query, args, exists, err)

	return exists, err
}

// ListByUserID returns every exchange the user takes part in, newest first.
func (r *ExchangeRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]models.ExchangeDetails, error) {
	const query = `
		SELECT e.exchange_id, e.item_id, e.offering_user_id, e.requesting_user_id, e.exchange_type,
		       e.status, e.message, e.points_exchanged, e.created_at, e.updated_at,
		       i.title AS item_title, u1.username AS offering_username, u2.username AS requesting_username
		FROM exchanges e
		JOIN items i ON e.item_id = i.item_id
		JOIN users u1 ON e.offering_user_id = u1.user_id
		JOIN users u2 ON e.requesting_user_id = u2.user_id
		WHERE e.offering_user_id = $1 OR e.requesting_user_id = $1
		ORDER BY e.created_at DESC, e.exchange_id DESC
	`

	exchanges := []models.ExchangeDetails{}
	err := sqlx.SelectContext(ctx, executor(ctx, r.db, r.txGetter), &exchanges, query, userID)
	logQuery(query, []any{userID}, len(exchanges), err)

	if err != nil {
		return nil, err
	}
	return exchanges, nil
}

// ListRequesterIDsByItem returns the distinct requesters of every exchange
// on itemID, in any status.
func (r *ExchangeRepository) ListRequesterIDsByItem(ctx context.Context, itemID uuid.UUID) ([]uuid.UUID, error) {
	const query = `SELECT DISTINCT requesting_user_id FROM exchanges WHERE item_id = $1`

	ids := []uuid.UUID{}
	err := sqlx.SelectContext(ctx, executor(ctx, r.db, r.txGetter), &ids, query, itemID)
	logQuery(query, []any{itemID}, len(ids), err)

	if err != nil {
		return nil, err
	}
	return ids, nil
}
