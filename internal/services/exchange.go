package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/rewear-exchange/internal/logger"
	"github.com/sbilibin2017/rewear-exchange/internal/models"
	"github.com/sbilibin2017/rewear-exchange/internal/repositories"
	"github.com/segmentio/kafka-go"
)

//go:generate mockgen -source=exchange.go -destination=exchange_mock.go -package=services

// TxManager runs fn inside a single database transaction.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ExchangeStore persists exchanges.
type ExchangeStore interface {
	Save(ctx context.Context, e *models.ExchangeDB) error                                       // Inserts a new exchange
	GetByIDForUpdate(ctx context.Context, exchangeID uuid.UUID) (*models.ExchangeDB, error)     // Returns a locked exchange or nil
	UpdateStatus(ctx context.Context, exchangeID uuid.UUID, status models.ExchangeStatus) error // Sets the exchange status
	ExistsPending(ctx context.Context, itemID, requesterID uuid.UUID) (bool, error)             // Reports a pending duplicate
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]models.ExchangeDetails, error)       // Lists exchanges newest first
}

// ItemStore exposes the item operations the exchange lifecycle depends on.
type ItemStore interface {
	GetAvailableForUpdate(ctx context.Context, itemID uuid.UUID) (*models.ItemDB, error) // Returns a locked available item or nil
	MarkUnavailable(ctx context.Context, itemID uuid.UUID) error                         // Clears the availability flag
}

// UserLedger reads and adjusts user point balances.
type UserLedger interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (int64, error)                 // Returns a locked balance
	AdjustBalance(ctx context.Context, userID uuid.UUID, delta int64) (int64, error) // Applies delta, never below zero
}

// ExchangeListCache caches per-user exchange listings. Set only writes when
// the version read before the store query is still current.
type ExchangeListCache interface {
	Get(ctx context.Context, userID uuid.UUID) ([]models.ExchangeDetails, error)
	Version(ctx context.Context, userID uuid.UUID) (int64, error)
	Set(ctx context.Context, userID uuid.UUID, version int64, exchanges []models.ExchangeDetails) error
	Invalidate(ctx context.Context, userIDs ...uuid.UUID) error
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// CreateExchangeInput holds the caller supplied fields of a new exchange.
type CreateExchangeInput struct {
	ItemID          uuid.UUID
	ExchangeType    models.ExchangeType
	Message         *string
	PointsExchanged *int64
}

// ExchangeService drives the exchange lifecycle and the points settlement
// that happens on acceptance.
type ExchangeService struct {
	tx          TxManager
	exchanges   ExchangeStore
	items       ItemStore
	ledger      UserLedger
	cache       ExchangeListCache
	kafkaWriter KafkaWriter
}

// NewExchangeService creates a new ExchangeService. cache and kafkaWriter may be nil.
func NewExchangeService(
	tx TxManager,
	exchanges ExchangeStore,
	items ItemStore,
	ledger UserLedger,
	cache ExchangeListCache,
	kafkaWriter KafkaWriter,
) *ExchangeService {
	return &ExchangeService{
		tx:          tx,
		exchanges:   exchanges,
		items:       items,
		ledger:      ledger,
		cache:       cache,
		kafkaWriter: kafkaWriter,
	}
}

// Create opens a pending exchange for an available item owned by someone else.
func (s *ExchangeService) Create(ctx context.Context, requesterID uuid.UUID, in CreateExchangeInput) (*models.ExchangeDB, error) {
	if !in.ExchangeType.Valid() {
		return nil, fmt.Errorf("%w: unknown exchange type %q", ErrInvalidRequest, in.ExchangeType)
	}
	if in.PointsExchanged != nil && *in.PointsExchanged < 0 {
		return nil, fmt.Errorf("%w: points_exchanged must not be negative", ErrInvalidRequest)
	}

	var exchange *models.ExchangeDB
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		item, err := s.items.GetAvailableForUpdate(ctx, in.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("%w: item not found or not available", ErrNotFound)
		}
		if item.OwnerID == requesterID {
			return fmt.Errorf("%w: cannot request your own item", ErrInvalidRequest)
		}

		var points int64
		if in.ExchangeType == models.PointsExchange {
			if in.PointsExchanged == nil || *in.PointsExchanged < item.PricePoints {
				return fmt.Errorf("%w: offer is below the item price of %d", ErrInsufficientPoints, item.PricePoints)
			}
			points = *in.PointsExchanged

			balance, err := s.ledger.GetBalance(ctx, requesterID)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: requester", ErrNotFound)
			}
			if err != nil {
				return err
			}
			if balance < points {
				return fmt.Errorf("%w: balance %d is below the offer of %d", ErrInsufficientPoints, balance, points)
			}
		}

		exists, err := s.exchanges.ExistsPending(ctx, item.ItemID, requesterID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: a pending request for this item already exists", ErrConflict)
		}

		exchange = &models.ExchangeDB{
			ItemID:           item.ItemID,
			OfferingUserID:   item.OwnerID,
			RequestingUserID: requesterID,
			ExchangeType:     in.ExchangeType,
			Status:           models.StatusPending,
			Message:          in.Message,
			PointsExchanged:  points,
		}
		return s.exchanges.Save(ctx, exchange)
	})
	if err != nil {
		err = translateTxError(err)
		logger.Log.Errorw("failed to create exchange", "requesterID", requesterID, "itemID", in.ItemID, "error", err)
		return nil, err
	}

	s.afterCommit(ctx, models.EventExchangeCreated, exchange)
	return exchange, nil
}

// Accept moves a pending exchange to accepted. For a points exchange the
// offer moves from the requester to the offerer; the item becomes unavailable.
func (s *ExchangeService) Accept(ctx context.Context, actorID, exchangeID uuid.UUID) (*models.ExchangeDB, error) {
	var exchange *models.ExchangeDB
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		e, err := s.lockExchange(ctx, exchangeID)
		if err != nil {
			return err
		}
		if e.OfferingUserID != actorID {
			return fmt.Errorf("%w: only the offering user can accept", ErrForbidden)
		}
		if e.Status != models.StatusPending {
			return fmt.Errorf("%w: cannot accept a %s exchange", ErrInvalidState, e.Status)
		}

		item, err := s.items.GetAvailableForUpdate(ctx, e.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("%w: item no longer available", ErrInvalidState)
		}

		if e.ExchangeType == models.PointsExchange && e.PointsExchanged > 0 {
			if err := s.settle(ctx, e); err != nil {
				return err
			}
		}

		if err := s.exchanges.UpdateStatus(ctx, e.ExchangeID, models.StatusAccepted); err != nil {
			return err
		}
		if err := s.items.MarkUnavailable(ctx, e.ItemID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: item no longer available", ErrInvalidState)
			}
			return err
		}

		e.Status = models.StatusAccepted
		exchange = e
		return nil
	})
	if err != nil {
		err = translateTxError(err)
		logger.Log.Errorw("failed to accept exchange", "exchangeID", exchangeID, "actorID", actorID, "error", err)
		return nil, err
	}

	s.afterCommit(ctx, models.EventExchangeAccepted, exchange)
	return exchange, nil
}

// settle moves the offered points from the requester to the offerer. Both
// user rows are locked in UUID order first.
func (s *ExchangeService) settle(ctx context.Context, e *models.ExchangeDB) error {
	first, second := e.RequestingUserID, e.OfferingUserID
	if bytes.Compare(first[:], second[:]) > 0 {
		first, second = second, first
	}

	var requesterBalance int64
	for _, userID := range []uuid.UUID{first, second} {
		balance, err := s.ledger.GetBalance(ctx, userID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		if err != nil {
			return err
		}
		if userID == e.RequestingUserID {
			requesterBalance = balance
		}
	}
	if requesterBalance < e.PointsExchanged {
		return fmt.Errorf("%w: balance %d is below the offer of %d", ErrInsufficientPoints, requesterBalance, e.PointsExchanged)
	}

	if _, err := s.ledger.AdjustBalance(ctx, e.RequestingUserID, -e.PointsExchanged); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: balance is below the offer of %d", ErrInsufficientPoints, e.PointsExchanged)
		}
		return err
	}
	if _, err := s.ledger.AdjustBalance(ctx, e.OfferingUserID, e.PointsExchanged); err != nil {
		return err
	}
	return nil
}

// Reject moves a pending exchange to rejected. Only the offerer may reject.
func (s *ExchangeService) Reject(ctx context.Context, actorID, exchangeID uuid.UUID) (*models.ExchangeDB, error) {
	return s.applyTransition(ctx, actorID, exchangeID, transition{
		to:          models.StatusRejected,
		from:        []models.ExchangeStatus{models.StatusPending},
		offererOnly: true,
		event:       models.EventExchangeRejected,
	})
}

// Complete moves an accepted exchange to completed. Either participant may complete.
func (s *ExchangeService) Complete(ctx context.Context, actorID, exchangeID uuid.UUID) (*models.ExchangeDB, error) {
	return s.applyTransition(ctx, actorID, exchangeID, transition{
		to:    models.StatusCompleted,
		from:  []models.ExchangeStatus{models.StatusAccepted},
		event: models.EventExchangeCompleted,
	})
}

// Cancel moves a pending or accepted exchange to cancelled. Either participant
// may cancel. Points settled on acceptance are not refunded.
func (s *ExchangeService) Cancel(ctx context.Context, actorID, exchangeID uuid.UUID) (*models.ExchangeDB, error) {
	return s.applyTransition(ctx, actorID, exchangeID, transition{
		to:    models.StatusCancelled,
		from:  []models.ExchangeStatus{models.StatusPending, models.StatusAccepted},
		event: models.EventExchangeCancelled,
	})
}

type transition struct {
	to          models.ExchangeStatus
	from        []models.ExchangeStatus
	offererOnly bool
	event       string
}

func (t transition) allowedFrom(status models.ExchangeStatus) bool {
	for _, s := range t.from {
		if s == status {
			return true
		}
	}
	return false
}

func (s *ExchangeService) applyTransition(ctx context.Context, actorID, exchangeID uuid.UUID, t transition) (*models.ExchangeDB, error) {
	var exchange *models.ExchangeDB
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		e, err := s.lockExchange(ctx, exchangeID)
		if err != nil {
			return err
		}
		if t.offererOnly && e.OfferingUserID != actorID {
			return fmt.Errorf("%w: only the offering user can move the exchange to %s", ErrForbidden, t.to)
		}
		if !e.IsParticipant(actorID) {
			return fmt.Errorf("%w: not a participant of the exchange", ErrForbidden)
		}
		if !t.allowedFrom(e.Status) {
			return fmt.Errorf("%w: cannot move a %s exchange to %s", ErrInvalidState, e.Status, t.to)
		}

		if err := s.exchanges.UpdateStatus(ctx, e.ExchangeID, t.to); err != nil {
			return err
		}
		e.Status = t.to
		exchange = e
		return nil
	})
	if err != nil {
		err = translateTxError(err)
		logger.Log.Errorw("failed to update exchange", "exchangeID", exchangeID, "actorID", actorID, "to", t.to, "error", err)
		return nil, err
	}

	s.afterCommit(ctx, t.event, exchange)
	return exchange, nil
}

func (s *ExchangeService) lockExchange(ctx context.Context, exchangeID uuid.UUID) (*models.ExchangeDB, error) {
	e, err := s.exchanges.GetByIDForUpdate(ctx, exchangeID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, fmt.Errorf("%w: exchange %s", ErrNotFound, exchangeID)
	}
	return e, nil
}

// ListExchangesForUser returns the exchanges the user takes part in, newest first.
// A listing read from the store is cached only if no transition touching the
// user was invalidated while the read was in flight.
func (s *ExchangeService) ListExchangesForUser(ctx context.Context, userID uuid.UUID) ([]models.ExchangeDetails, error) {
	cacheable := false
	var version int64
	if s.cache != nil {
		exchanges, err := s.cache.Get(ctx, userID)
		if err == nil {
			return exchanges, nil
		}
		if !errors.Is(err, repositories.ErrCacheMiss) {
			logger.Log.Warnw("failed to read cached exchanges", "userID", userID, "error", err)
		}

		version, err = s.cache.Version(ctx, userID)
		if err != nil {
			logger.Log.Warnw("failed to read cached exchanges version", "userID", userID, "error", err)
		} else {
			cacheable = true
		}
	}

	exchanges, err := s.exchanges.ListByUserID(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to list exchanges", "userID", userID, "error", err)
		return nil, err
	}

	if cacheable {
		err := s.cache.Set(ctx, userID, version, exchanges)
		switch {
		case errors.Is(err, repositories.ErrCacheStale):
			logger.Log.Debugw("skipped caching stale exchanges", "userID", userID, "version", version)
		case err != nil:
			logger.Log.Warnw("failed to cache exchanges", "userID", userID, "error", err)
		}
	}
	return exchanges, nil
}

// afterCommit drops stale listings of both participants and publishes the event.
func (s *ExchangeService) afterCommit(ctx context.Context, eventType string, e *models.ExchangeDB) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, e.OfferingUserID, e.RequestingUserID); err != nil {
			logger.Log.Warnw("failed to invalidate cached exchanges", "exchangeID", e.ExchangeID, "error", err)
		}
	}

	s.publishEvent(ctx, models.ExchangeEvent{
		EventID:          uuid.NewString(),
		Type:             eventType,
		Timestamp:        time.Now().Unix(),
		ExchangeID:       e.ExchangeID.String(),
		ItemID:           e.ItemID.String(),
		OfferingUserID:   e.OfferingUserID.String(),
		RequestingUserID: e.RequestingUserID.String(),
		ExchangeType:     e.ExchangeType,
		PointsExchanged:  e.PointsExchanged,
		Status:           e.Status,
	})
}

// publishEvent publishes an exchange event to Kafka.
func (s *ExchangeService) publishEvent(ctx context.Context, event models.ExchangeEvent) {
	if s.kafkaWriter == nil {
		logger.Log.Debugw("Kafka writer not configured, skipping publishing", "event", event.Type, "exchange_id", event.ExchangeID)
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("Failed to marshal exchange event for Kafka", "exchange_id", event.ExchangeID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(event.ExchangeID),
		Value: data,
	}

	if err := s.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("Failed to publish exchange event to Kafka", "exchange_id", event.ExchangeID, "event", event.Type, "error", err)
	} else {
		logger.Log.Infow("Exchange event published to Kafka", "exchange_id", event.ExchangeID, "event", event.Type)
	}
}
