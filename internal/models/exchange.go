package models

import (
	"time"

	"github.com/google/uuid"
)

// ExchangeType describes how an exchange is settled.
type ExchangeType string

// Supported exchange types
const (
	DirectSwap     ExchangeType = "direct_swap"
	PointsExchange ExchangeType = "points_exchange"
)

// Valid reports whether t is a known exchange type.
func (t ExchangeType) Valid() bool {
	return t == DirectSwap || t == PointsExchange
}

// ExchangeStatus is the lifecycle state of an exchange.
type ExchangeStatus string

// Exchange lifecycle states
const (
	StatusPending   ExchangeStatus = "pending"
	StatusAccepted  ExchangeStatus = "accepted"
	StatusRejected  ExchangeStatus = "rejected"
	StatusCompleted ExchangeStatus = "completed"
	StatusCancelled ExchangeStatus = "cancelled"
)

// ExchangeDB represents an exchange row in the database
type ExchangeDB struct {
	ExchangeID       uuid.UUID      `json:"id" db:"exchange_id"`                        // Unique exchange identifier
	ItemID           uuid.UUID      `json:"item_id" db:"item_id"`                       // Item under negotiation
	OfferingUserID   uuid.UUID      `json:"offering_user_id" db:"offering_user_id"`     // Item owner at creation time
	RequestingUserID uuid.UUID      `json:"requesting_user_id" db:"requesting_user_id"` // User proposing to acquire the item
	ExchangeType     ExchangeType   `json:"exchange_type" db:"exchange_type"`           // direct_swap or points_exchange
	Status           ExchangeStatus `json:"status" db:"status"`                         // Current lifecycle state
	Message          *string        `json:"message,omitempty" db:"message"`             // Optional note from the requester
	PointsExchanged  int64          `json:"points_exchanged" db:"points_exchanged"`     // Points moved on accept, 0 for direct swaps
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`                 // Creation timestamp
	UpdatedAt        time.Time      `json:"updated_at" db:"updated_at"`                 // Last transition timestamp
}

// IsParticipant reports whether userID is the offering or the requesting user.
func (e *ExchangeDB) IsParticipant(userID uuid.UUID) bool {
	return e.OfferingUserID == userID || e.RequestingUserID == userID
}

// ExchangeDetails is an exchange joined with its item title and both usernames.
type ExchangeDetails struct {
	ExchangeDB
	ItemTitle          string `json:"item_title" db:"item_title"`
	OfferingUsername   string `json:"offering_username" db:"offering_username"`
	RequestingUsername string `json:"requesting_username" db:"requesting_username"`
}
