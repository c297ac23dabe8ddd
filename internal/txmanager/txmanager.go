// Package txmanager runs units of work inside serializable database
// transactions and hands the active transaction to repositories through the
// request context.
package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/rewear-exchange/internal/logger"
)

// ErrConflict is returned when the database aborts a transaction because of a
// concurrent modification, a lock that could not be acquired in time, or a
// uniqueness violation. The caller may retry.
var ErrConflict = errors.New("concurrent modification")

// Postgres SQLSTATE codes treated as conflicts.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeUniqueViolation      = "23505"
)

// Manager begins, commits and rolls back transactions.
type Manager struct {
	db          *sqlx.DB
	lockTimeout time.Duration
}

// New creates a Manager. A positive lockTimeout bounds how long a statement
// inside the transaction waits for a row lock.
func New(db *sqlx.DB, lockTimeout time.Duration) *Manager {
	return &Manager{db: db, lockTimeout: lockTimeout}
}

// WithinTx runs fn inside a serializable transaction. The transaction is
// committed when fn returns nil and rolled back otherwise. If ctx already
// carries a transaction, fn joins it.
func (m *Manager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if GetTxFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := m.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		logger.Log.Errorw("failed to begin transaction", "error", err)
		return translate(err)
	}

	defer func() {
		if rec := recover(); rec != nil {
			tx.Rollback()
			panic(rec)
		}
	}()

	if m.lockTimeout > 0 {
		// SET does not accept bind parameters.
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", m.lockTimeout.Milliseconds())
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			logger.Log.Errorw("failed to set lock timeout", "error", err)
			return translate(err)
		}
	}

	if err := fn(setTxToContext(ctx, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Log.Errorw("failed to rollback transaction", "error", rbErr)
		}
		return translate(err)
	}

	if err := tx.Commit(); err != nil {
		logger.Log.Errorw("failed to commit transaction", "error", err)
		return translate(err)
	}
	return nil
}

// translate wraps conflict-class Postgres errors with ErrConflict and returns
// every other error unchanged.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable, codeUniqueViolation:
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.Message)
	}
	return err
}

// contextKey is an unexported type for keys in context
type contextKey struct{}

var txKey = contextKey{}

// setTxToContext stores a transaction in the context
func setTxToContext(ctx context.Context, tx *sqlx.Tx) context.Context {
	return context.WithValue(ctx, txKey, tx)
}

// GetTxFromContext retrieves the transaction from the context. Returns nil if not present.
func GetTxFromContext(ctx context.Context) *sqlx.Tx {
	tx, _ := ctx.Value(txKey).(*sqlx.Tx)
	return tx
}
