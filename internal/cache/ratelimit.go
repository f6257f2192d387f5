package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrRateLimited is returned when a provider's request budget for the
// current window is spent.
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimiter enforces a per-provider sliding-window request budget with
// a Redis ZSET log, so the limit holds across processes.
type RateLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

func NewRateLimiter(rdb *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{rdb: rdb, limit: limit, window: window}
}

// Allow records one request for provider and returns ErrRateLimited when
// the window already holds limit requests.
func (l *RateLimiter) Allow(ctx context.Context, provider string) error {
	key := fmt.Sprintf("rl:%s", provider)
	nowMS := time.Now().UnixMilli()
	windowStartMS := nowMS - l.window.Milliseconds()

	pipe := l.rdb.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStartMS, 10))
	pipe.ZAdd(ctx, key, &redis.Z{Score: float64(nowMS), Member: strconv.FormatInt(nowMS, 10)})
	card := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, l.window+5*time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("rate limit check: %w", err)
	}

	if card.Val() > int64(l.limit) {
		// Take the rejected request back out of the window.
		l.rdb.ZRem(ctx, key, strconv.FormatInt(nowMS, 10))
		return fmt.Errorf("%w: %d requests in the last %s for provider %s",
			ErrRateLimited, card.Val(), l.window, provider)
	}
	return nil
}
