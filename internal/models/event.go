package models

// Exchange lifecycle event types
const (
	EventExchangeCreated   = "exchange.created"
	EventExchangeAccepted  = "exchange.accepted"
	EventExchangeRejected  = "exchange.rejected"
	EventExchangeCompleted = "exchange.completed"
	EventExchangeCancelled = "exchange.cancelled"
)

// ExchangeEvent is published after an exchange transition has been committed.
type ExchangeEvent struct {
	EventID          string         `json:"event_id"`           // EventID is a unique identifier for the event.
	Type             string         `json:"type"`               // Type is one of the exchange.* event types.
	Timestamp        int64          `json:"timestamp"`          // Timestamp is the Unix time (in seconds) of the commit.
	ExchangeID       string         `json:"exchange_id"`        // ExchangeID identifies the exchange that changed.
	ItemID           string         `json:"item_id"`            // ItemID identifies the item under negotiation.
	OfferingUserID   string         `json:"offering_user_id"`   // OfferingUserID is the item owner.
	RequestingUserID string         `json:"requesting_user_id"` // RequestingUserID is the acquiring party.
	ExchangeType     ExchangeType   `json:"exchange_type"`      // ExchangeType is direct_swap or points_exchange.
	PointsExchanged  int64          `json:"points_exchanged"`   // PointsExchanged is the settled amount, if any.
	Status           ExchangeStatus `json:"status"`             // Status is the state after the transition.
}
