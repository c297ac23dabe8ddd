package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/rewear-exchange/internal/models"
)

const itemColumns = `item_id, owner_id, title, description, category, condition, size, brand,
		       price_points, is_available, created_at, updated_at`

// likeEscaper escapes LIKE wildcards so a search term matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ItemRepository handles item reads and writes
type ItemRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewItemRepository(db *sqlx.DB, txGetter TxGetter) *ItemRepository {
	return &ItemRepository{db: db, txGetter: txGetter}
}

// Save inserts a new item and fills in its generated id and timestamps.
func (r *ItemRepository) Save(ctx context.Context, item *models.ItemDB) error {
	const query = `
		INSERT INTO items (item_id, owner_id, title, description, category, condition, size, brand,
		                   price_points, is_available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE, NOW(), NOW())
		RETURNING is_available, created_at, updated_at
	`
	if item.ItemID == uuid.Nil {
		item.ItemID = uuid.New()
	}
	args := []any{item.ItemID, item.OwnerID, item.Title, item.Description, item.Category,
		item.Condition, item.Size, item.Brand, item.PricePoints}

	err := executor(ctx, r.db, r.txGetter).QueryRowxContext(ctx, query, args...).
		Scan(&item.IsAvailable, &item.CreatedAt, &item.UpdatedAt)
	logQuery(query, args, item.ItemID, err)
	return err
}

// GetByID returns the item or nil when it does not exist.
func (r *ItemRepository) GetByID(ctx context.Context, itemID uuid.UUID) (*models.ItemDB, error) {
	const query = `SELECT ` + itemColumns + ` FROM items WHERE item_id = $1`
	return r.get(ctx, query, itemID)
}

// GetAvailableForUpdate returns the item if it is still available and locks
// its row until the end of the current transaction. It returns nil when the
// item does not exist or is no longer available.
func (r *ItemRepository) GetAvailableForUpdate(ctx context.Context, itemID uuid.UUID) (*models.ItemDB, error) {
	const query = `SELECT ` + itemColumns + ` FROM items WHERE item_id = $1 AND is_available = TRUE FOR UPDATE`
	return r.get(ctx, query, itemID)
}

func (r *ItemRepository) get(ctx context.Context, query string, itemID uuid.UUID) (*models.ItemDB, error) {
	var item models.ItemDB
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &item, query, itemID)
	logQuery(query, []any{itemID}, item.IsAvailable, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// MarkUnavailable flags an available item as taken. It returns sql.ErrNoRows
// if the item does not exist or was already unavailable.
func (r *ItemRepository) MarkUnavailable(ctx context.Context, itemID uuid.UUID) error {
	const query = `
		UPDATE items
		SET is_available = FALSE, updated_at = NOW()
		WHERE item_id = $1 AND is_available = TRUE
	`

	res, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query, itemID)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}
	logQuery(query, []any{itemID}, rowsAffected, err)

	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetByIDForUpdate returns the item whatever its availability and locks its
// row until the end of the current transaction. It returns nil when the item
// does not exist.
func (r *ItemRepository) GetByIDForUpdate(ctx context.Context, itemID uuid.UUID) (*models.ItemDB, error) {
	const query = `SELECT ` + itemColumns + ` FROM items WHERE item_id = $1 FOR UPDATE`
	return r.get(ctx, query, itemID)
}

func availableItemsWhere(filter models.ItemFilter) (string, []any) {
	where := `WHERE i.is_available = TRUE`
	var args []any

	if filter.Category != "" {
		args = append(args, filter.Category)
		where += fmt.Sprintf(` AND i.category = $%d`, len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+likeEscaper.Replace(filter.Search)+"%")
		n := len(args)
		where += fmt.Sprintf(` AND (i.title ILIKE $%d OR i.description ILIKE $%d OR i.brand ILIKE $%d)`, n, n, n)
	}
	return where, args
}

// ListAvailable returns one page of available items matching filter, newest
// first, with the owner's username.
func (r *ItemRepository) ListAvailable(ctx context.Context, filter models.ItemFilter) ([]models.ItemListing, error) {
	where, args := availableItemsWhere(filter)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	query := `
		SELECT i.item_id, i.owner_id, i.title, i.description, i.category, i.condition, i.size, i.brand,
		       i.price_points, i.is_available, i.created_at, i.updated_at, u.username AS owner_username
		FROM items i
		JOIN users u ON i.owner_id = u.user_id
		` + where + fmt.Sprintf(`
		ORDER BY i.created_at DESC, i.item_id DESC
		LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	items := []models.ItemListing{}
	err := sqlx.SelectContext(ctx, executor(ctx, r.db, r.txGetter), &items, query, args...)
	logQuery(query, args, len(items), err)

	if err != nil {
		return nil, err
	}
	return items, nil
}

// CountAvailable returns how many available items match filter across all pages.
func (r *ItemRepository) CountAvailable(ctx context.Context, filter models.ItemFilter) (int, error) {
	where, args := availableItemsWhere(filter)
	query := `SELECT COUNT(*) FROM items i ` + where

	var total int
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &total, query, args...)
	logQuery(query, args, total, err)

	return total, err
}

// ListByOwner returns every item of the owner, available or not, newest first.
func (r *ItemRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.ItemDB, error) {
	const query = `SELECT ` + itemColumns + ` FROM items WHERE owner_id = $1 ORDER BY created_at DESC, item_id DESC`

	items := []models.ItemDB{}
	err := sqlx.SelectContext(ctx, executor(ctx, r.db, r.txGetter), &items, query, ownerID)
	logQuery(query, []any{ownerID}, len(items), err)

	if err != nil {
		return nil, err
	}
	return items, nil
}

// Update writes the editable fields of item and refreshes its updated_at.
// Availability is left to the exchange lifecycle. It returns sql.ErrNoRows
// if the item does not exist.
func (r *ItemRepository) Update(ctx context.Context, item *models.ItemDB) error {
	const query = `
		UPDATE items
		SET title = $2, description = $3, category = $4, condition = $5, size = $6, brand = $7,
		    price_points = $8, updated_at = NOW()
		WHERE item_id = $1
		RETURNING updated_at
	`
	args := []any{item.ItemID, item.Title, item.Description, item.Category, item.Condition,
		item.Size, item.Brand, item.PricePoints}

	err := executor(ctx, r.db, r.txGetter).QueryRowxContext(ctx, query, args...).Scan(&item.UpdatedAt)
	logQuery(query, args, item.UpdatedAt, err)
	return err
}

// Delete removes the item and, by cascade, its exchanges. It returns
// sql.ErrNoRows if the item does not exist.
func (r *ItemRepository) Delete(ctx context.Context, itemID uuid.UUID) error {
	const query = `DELETE FROM items WHERE item_id = $1`

	res, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query, itemID)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}
	logQuery(query, []any{itemID}, rowsAffected, err)

	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
