package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trademind/internal/cache"
	"trademind/internal/interfaces"
	"trademind/internal/logger"
	"trademind/internal/types"
)

// ErrInvalidProvider is returned for provider names outside auto,
// finnhub, yahoo.
var ErrInvalidProvider = errors.New("invalid provider")

const oneYear = 365 * 24 * time.Hour

// Selector routes a historical request to the right upstream provider:
// Finnhub for near-term intraday ranges, Yahoo for long-range or higher
// timeframes. Under auto selection a Finnhub failure falls back to Yahoo.
// Cache and limiter are optional; nil disables them.
type Selector struct {
	finnhub interfaces.HistoryProvider
	yahoo   interfaces.HistoryProvider
	store   *cache.Store
	limiter *cache.RateLimiter
}

func NewSelector(finnhub, yahoo interfaces.HistoryProvider, store *cache.Store, limiter *cache.RateLimiter) *Selector {
	return &Selector{finnhub: finnhub, yahoo: yahoo, store: store, limiter: limiter}
}

// Historical is the unified entry point for historical candles.
func (s *Selector) Historical(ctx context.Context, symbol, resolution string, from, to int64, provider types.Provider) ([]types.Candle, error) {
	if provider == "" {
		provider = types.ProviderAuto
	}
	if !provider.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidProvider, provider)
	}

	key := cache.Key(symbol, resolution, from, to, provider)
	if s.store != nil {
		if candles, ok := s.store.GetCandles(ctx, key); ok {
			logger.Debug(ctx, "Candle cache hit", "key", key, "count", len(candles))
			return candles, nil
		}
	}

	candles, err := s.fetch(ctx, symbol, resolution, from, to, provider)
	if err != nil {
		return nil, err
	}

	if s.store != nil && len(candles) > 0 {
		s.store.SetCandles(ctx, key, candles)
	}
	return candles, nil
}

func (s *Selector) fetch(ctx context.Context, symbol, resolution string, from, to int64, provider types.Provider) ([]types.Candle, error) {
	effective := provider
	if provider == types.ProviderAuto {
		effective = s.pick(resolution, from, to)
	}

	if effective == types.ProviderFinnhub {
		candles, err := s.fetchFinnhub(ctx, symbol, resolution, from, to)
		if err != nil {
			if provider == types.ProviderAuto {
				logger.Warn(ctx, "Finnhub fetch failed, falling back to Yahoo",
					"symbol", symbol, "error", err)
				return s.yahoo.Candles(ctx, symbol, resolution, from, to)
			}
			return nil, err
		}
		return candles, nil
	}
	return s.yahoo.Candles(ctx, symbol, resolution, from, to)
}

// pick chooses the upstream for auto selection: intraday resolutions over
// at most one year go to Finnhub, everything else to Yahoo.
func (s *Selector) pick(resolution string, from, to int64) types.Provider {
	rangeSeconds := to - from
	if rangeSeconds < 0 {
		rangeSeconds = 0
	}
	switch resolution {
	case "1", "5", "15", "30", "60":
		if rangeSeconds <= int64(oneYear.Seconds()) {
			return types.ProviderFinnhub
		}
	}
	return types.ProviderYahoo
}

func (s *Selector) fetchFinnhub(ctx context.Context, symbol, resolution string, from, to int64) ([]types.Candle, error) {
	if s.limiter != nil {
		if err := s.limiter.Allow(ctx, string(types.ProviderFinnhub)); err != nil {
			return nil, err
		}
	}
	return s.finnhub.Candles(ctx, symbol, resolution, from, to)
}
