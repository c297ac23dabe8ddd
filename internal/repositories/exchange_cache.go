package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/rewear-exchange/internal/logger"
	"github.com/sbilibin2017/rewear-exchange/internal/models"
)

// ErrCacheMiss is returned when no cached entry exists for the key.
var ErrCacheMiss = errors.New("cache miss")

// ErrCacheStale is returned by Set when the listing was invalidated after
// the version passed to Set was read.
var ErrCacheStale = errors.New("cache entry is stale")

// versionExpiration keeps listing versions well past any listing TTL.
const versionExpiration = 24 * time.Hour

// ExchangeListCacheRepository caches per-user exchange listings in Redis
type ExchangeListCacheRepository struct {
	client *redis.Client
	exp    time.Duration // expiration duration for cached listings
}

// NewExchangeListCacheRepository creates a new repository instance with the given TTL
func NewExchangeListCacheRepository(client *redis.Client, expiration time.Duration) *ExchangeListCacheRepository {
	return &ExchangeListCacheRepository{
		client: client,
		exp:    expiration,
	}
}

func exchangeListKey(userID uuid.UUID) string {
	return fmt.Sprintf("exchanges:user:%s", userID)
}

func exchangeListVersionKey(userID uuid.UUID) string {
	return fmt.Sprintf("exchanges:user:%s:version", userID)
}

// Version returns the listing version of a user. It is 0 until the first
// invalidation.
func (r *ExchangeListCacheRepository) Version(ctx context.Context, userID uuid.UUID) (int64, error) {
	key := exchangeListVersionKey(userID)

	version, err := r.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		version, err = 0, nil
	}

	logger.Log.Debugw("cache", "key", key, "result", version, "error", err)
	return version, err
}

// Get returns the cached listing for a user, or ErrCacheMiss.
func (r *ExchangeListCacheRepository) Get(ctx context.Context, userID uuid.UUID) ([]models.ExchangeDetails, error) {
	key := exchangeListKey(userID)

	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		logger.Log.Debugw("cache", "key", key, "result", nil, "error", err)
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var exchanges []models.ExchangeDetails
	if err := json.Unmarshal(val, &exchanges); err != nil {
		logger.Log.Debugw("cache", "key", key, "value", string(val), "error", err)
		return nil, err
	}

	logger.Log.Debugw("cache", "key", key, "result", len(exchanges), "error", nil)
	return exchanges, nil
}

// Set caches the listing for a user with expiration. The write happens only
// if the user's listing version still equals version; otherwise Set returns
// ErrCacheStale and leaves the cache untouched.
func (r *ExchangeListCacheRepository) Set(ctx context.Context, userID uuid.UUID, version int64, exchanges []models.ExchangeDetails) error {
	key := exchangeListKey(userID)
	versionKey := exchangeListVersionKey(userID)

	data, err := json.Marshal(exchanges)
	if err != nil {
		return err
	}

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, versionKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return ErrCacheStale
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.exp)
			return nil
		})
		return err
	}, versionKey)
	if errors.Is(err, redis.TxFailedErr) {
		err = ErrCacheStale
	}

	logger.Log.Debugw("cache", "key", key, "version", version, "result", len(exchanges), "error", err)
	return err
}

// Invalidate bumps the listing versions of the given users and drops their
// cached listings in one MULTI/EXEC.
func (r *ExchangeListCacheRepository) Invalidate(ctx context.Context, userIDs ...uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, exchangeListKey(id))
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range userIDs {
			versionKey := exchangeListVersionKey(id)
			pipe.Incr(ctx, versionKey)
			pipe.Expire(ctx, versionKey, versionExpiration)
		}
		pipe.Del(ctx, keys...)
		return nil
	})

	logger.Log.Debugw("cache", "keys", keys, "result", "invalidated", "error", err)
	return err
}
