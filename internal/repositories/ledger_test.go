package repositories

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
)

func TestLedgerRepository_AdjustBalance_Mock(t *testing.T) {
	userID := uuid.New()

	t.Run("returns new balance", func(t *testing.T) {
		db, mock := setupMock(t)
		mock.ExpectQuery(`UPDATE users\s+SET points = points \+ \$2`).
			WithArgs(userID.String(), int64(-30)).
			WillReturnRows(sqlmock.NewRows([]string{"points"}).AddRow(70))

		points, err := NewLedgerRepository(db, nil).AdjustBalance(context.Background(), userID, -30)
		assert.NoError(t, err)
		assert.Equal(t, int64(70), points)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("overdraft matches no row", func(t *testing.T) {
		db, mock := setupMock(t)
		mock.ExpectQuery(`UPDATE users`).
			WillReturnRows(sqlmock.NewRows([]string{"points"}))

		_, err := NewLedgerRepository(db, nil).AdjustBalance(context.Background(), userID, -500)
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("uses transaction from context", func(t *testing.T) {
		db, mock := setupMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT points\s+FROM users\s+WHERE user_id = \$1\s+FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows([]string{"points"}).AddRow(10))
		mock.ExpectCommit()

		tx, err := db.Beginx()
		assert.NoError(t, err)

		repo := NewLedgerRepository(db, func(ctx context.Context) *sqlx.Tx { return tx })
		points, err := repo.GetBalance(context.Background(), userID)
		assert.NoError(t, err)
		assert.Equal(t, int64(10), points)

		assert.NoError(t, tx.Commit())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLedgerRepository_AdjustBalance(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()
	repo := NewLedgerRepository(db, nil)

	userID := insertUser(t, db, "alice", 100)

	points, err := repo.AdjustBalance(ctx, userID, 50)
	assert.NoError(t, err)
	assert.Equal(t, int64(150), points)

	points, err = repo.AdjustBalance(ctx, userID, -150)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), points)

	_, err = repo.AdjustBalance(ctx, userID, -1)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.Equal(t, int64(0), getPoints(t, db, userID))

	_, err = repo.GetBalance(ctx, uuid.New())
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestLedgerRepository_DebitConcurrency(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()
	repo := NewLedgerRepository(db, nil)

	const initial = 100
	userID := insertUser(t, db, "concurrent", initial)

	const numGoroutines = 300
	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			if _, err := repo.AdjustBalance(ctx, userID, -1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, initial, succeeded)
	assert.Equal(t, int64(0), getPoints(t, db, userID))
}
