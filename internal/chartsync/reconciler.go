package chartsync

import (
	"sync"

	"trademind/internal/types"
)

// UpdateKind reports how the reconciler merged a live candle.
type UpdateKind int

const (
	// UpdateDropped means the candle was stale, out of order, or arrived
	// before any snapshot; the series is unchanged.
	UpdateDropped UpdateKind = iota
	// UpdateReplaced means the candle refreshed the currently forming
	// bucket in place.
	UpdateReplaced
	// UpdateAppended means the candle opened a new bucket.
	UpdateAppended
)

// SeriesReconciler merges a historical snapshot with incoming stream
// candles into one series whose timestamps stay unique and non-decreasing.
// It trusts individual bars arithmetically; it only owns temporal order.
type SeriesReconciler struct {
	mu      sync.Mutex
	candles []types.Candle
}

func NewSeriesReconciler() *SeriesReconciler {
	return &SeriesReconciler{}
}

// ApplySnapshot replaces the owned series wholesale.
func (r *SeriesReconciler) ApplySnapshot(candles []types.Candle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.candles = make([]types.Candle, len(candles))
	copy(r.candles, candles)
}

// ApplyUpdate merges one live candle against the last stored bucket.
// The feed delivers the forming bucket repeatedly until it closes and a
// new one begins; gaps are not backfilled.
func (r *SeriesReconciler) ApplyUpdate(c types.Candle) UpdateKind {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.candles) == 0 {
		// No anchor to reconcile against until the snapshot lands.
		return UpdateDropped
	}

	last := r.candles[len(r.candles)-1]
	switch {
	case c.T == last.T:
		r.candles[len(r.candles)-1] = c
		return UpdateReplaced
	case c.T > last.T:
		r.candles = append(r.candles, c)
		return UpdateAppended
	default:
		return UpdateDropped
	}
}

// Series returns a copy of the current series.
func (r *SeriesReconciler) Series() []types.Candle {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]types.Candle, len(r.candles))
	copy(out, r.candles)
	return out
}

// Len returns the number of stored candles.
func (r *SeriesReconciler) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.candles)
}

// Reset discards the series. Called when the active context changes so
// the old symbol's data never bleeds into the new one.
func (r *SeriesReconciler) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.candles = nil
}
