package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"trademind/internal/logger"
	"trademind/internal/types"
)

// DefaultTTL keeps cached candle ranges fresh enough for chart reloads
// without hammering upstream providers.
const DefaultTTL = 60 * time.Second

// Store caches candle series in Redis, relying on TTL for expiry.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

// Key builds a consistent, readable cache key for a candle range.
func Key(symbol, resolution string, from, to int64, provider types.Provider) string {
	return fmt.Sprintf("candle:%s:%s:%d:%d:%s", symbol, resolution, from, to, provider)
}

// GetCandles returns the cached series for key, if present.
func (s *Store) GetCandles(ctx context.Context, key string) ([]types.Candle, bool) {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn(ctx, "Candle cache read failed", "key", key, "error", err)
		}
		return nil, false
	}

	var candles []types.Candle
	if err := json.Unmarshal(data, &candles); err != nil {
		logger.Warn(ctx, "Candle cache entry corrupt", "key", key, "error", err)
		return nil, false
	}
	return candles, true
}

// SetCandles caches a series under key with the store's TTL. Failures are
// logged and swallowed: the cache is an optimization, never a dependency.
func (s *Store) SetCandles(ctx context.Context, key string, candles []types.Candle) {
	data, err := json.Marshal(candles)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
		logger.Warn(ctx, "Candle cache write failed", "key", key, "error", err)
	}
}
