package chartsync

import (
	"context"

	"trademind/internal/interfaces"
	"trademind/internal/logger"
	"trademind/internal/types"
)

// LoadResult is the outcome of one epoch-tagged historical fetch.
type LoadResult struct {
	Epoch    uint64
	Symbol   string
	Preset   types.Preset
	Provider types.Provider
	Candles  []types.Candle
	Err      error
}

// HistoricalLoader issues snapshot fetches tagged with the epoch current
// at call time. Results whose epoch is no longer current are dropped
// silently, successes and failures alike; superseded epochs are never
// retried.
type HistoricalLoader struct {
	client interfaces.HistoryClient
	epochs *EpochGuard
	commit func(LoadResult)
}

func NewHistoricalLoader(client interfaces.HistoryClient, epochs *EpochGuard, commit func(LoadResult)) *HistoricalLoader {
	return &HistoricalLoader{client: client, epochs: epochs, commit: commit}
}

// Load starts an asynchronous fetch. Multiple loads may be in flight when
// input changes outpace network latency; only the latest epoch commits.
func (l *HistoricalLoader) Load(ctx context.Context, symbol string, preset types.Preset, provider types.Provider, epoch uint64) {
	go func() {
		candles, err := l.client.History(ctx, symbol, preset, provider)

		if !l.epochs.IsCurrent(epoch) {
			logger.StaleDrop(ctx, "history fetch", epoch, l.epochs.Current(), "symbol", symbol)
			return
		}

		l.commit(LoadResult{
			Epoch:    epoch,
			Symbol:   symbol,
			Preset:   preset,
			Provider: provider,
			Candles:  candles,
			Err:      err,
		})
	}()
}
