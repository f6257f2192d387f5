package interfaces

import "trademind/internal/types"

// RenderSurface is the external charting boundary. The synchronizer pushes
// reconciled state into it; it never calls back into the synchronizer.
// Implementations are invoked from the synchronizer's goroutines and must
// not block for long.
type RenderSurface interface {
	// SetSeries replaces the rendered series wholesale after a snapshot load.
	SetSeries(symbol string, preset types.Preset, candles []types.Candle)
	// UpdateCandle applies one live delta. appended reports whether the
	// candle opened a new bucket (true) or updated the forming one (false).
	UpdateCandle(candle types.Candle, appended bool)
	// SetPatternLabel replaces the latest-pattern label.
	SetPatternLabel(label string)
	// SetError shows a user-facing error message for the current context.
	SetError(msg string)
	// SetLoading toggles the loading state while a snapshot is in flight.
	SetLoading(loading bool)
}
