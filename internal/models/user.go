package models

import (
	"time"

	"github.com/google/uuid"
)

// UserDB represents a user record in the database
type UserDB struct {
	UserID       uuid.UUID `json:"id" db:"user_id"`            // Primary key
	Username     string    `json:"username" db:"username"`     // Unique username
	Email        string    `json:"email" db:"email"`           // User email
	PasswordHash string    `json:"-" db:"password_hash"`       // Bcrypt hash
	Points       int64     `json:"points" db:"points"`         // Points balance, never negative
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // Creation timestamp
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"` // Last update timestamp
}

// UserStats aggregates a user's listing and exchange activity.
type UserStats struct {
	Points             int64 `json:"points" db:"points"`
	ItemsListed        int64 `json:"items_listed" db:"items_listed"`
	ActiveItems        int64 `json:"active_items" db:"active_items"`
	TotalExchanges     int64 `json:"total_exchanges" db:"total_exchanges"`
	CompletedExchanges int64 `json:"completed_exchanges" db:"completed_exchanges"`
	PendingExchanges   int64 `json:"pending_exchanges" db:"pending_exchanges"`
}
