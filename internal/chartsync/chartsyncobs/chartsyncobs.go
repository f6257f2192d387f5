package chartsyncobs

import (
	"context"

	"trademind/internal/interfaces"
	"trademind/internal/logger"
	"trademind/internal/trace"
	"trademind/internal/types"
)

// observableSynchronizer wraps a Synchronizer with observability
// (logging & tracing)
type observableSynchronizer struct {
	sync interfaces.Synchronizer
}

// Compile-time interface check
var _ interfaces.Synchronizer = (*observableSynchronizer)(nil)

// Wrap wraps a synchronizer with observability middleware
func Wrap(sync interfaces.Synchronizer) interfaces.Synchronizer {
	return &observableSynchronizer{
		sync: sync,
	}
}

// SetSymbol records a symbol change with observability
func (os *observableSynchronizer) SetSymbol(symbol string) {
	ctx, span := trace.StartSpan(context.Background(), "chartsync.SetSymbol")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Symbol input changed", "symbol", symbol)
	os.sync.SetSymbol(symbol)
}

// SetPreset records a preset change with observability
func (os *observableSynchronizer) SetPreset(preset types.Preset) {
	ctx, span := trace.StartSpan(context.Background(), "chartsync.SetPreset")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Preset input changed", "preset", string(preset))
	os.sync.SetPreset(preset)
}

// SetProvider records a provider change with observability
func (os *observableSynchronizer) SetProvider(provider types.Provider) {
	ctx, span := trace.StartSpan(context.Background(), "chartsync.SetProvider")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Provider input changed", "provider", string(provider))
	os.sync.SetProvider(provider)
}

// Series returns the reconciled series
func (os *observableSynchronizer) Series() []types.Candle {
	return os.sync.Series()
}

// PatternLabel returns the latest pattern label
func (os *observableSynchronizer) PatternLabel() string {
	return os.sync.PatternLabel()
}

// Close tears down the synchronizer with observability
func (os *observableSynchronizer) Close() {
	ctx, span := trace.StartSpan(context.Background(), "chartsync.Close")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Closing chart synchronizer")
	os.sync.Close()
	logger.InfoSkip(ctx, 1, "Chart synchronizer closed")
}
