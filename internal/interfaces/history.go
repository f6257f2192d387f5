package interfaces

import (
	"context"

	"trademind/internal/types"
)

// HistoryClient fetches a historical snapshot for the chart from the
// TradeMind API.
type HistoryClient interface {
	History(ctx context.Context, symbol string, preset types.Preset, provider types.Provider) ([]types.Candle, error)
}

// HistoryProvider is an upstream candle source used by the server side
// (Finnhub, Yahoo, or the auto selector over both).
type HistoryProvider interface {
	Candles(ctx context.Context, symbol, resolution string, from, to int64) ([]types.Candle, error)
}
