package interfaces

import "trademind/internal/types"

// Synchronizer keeps a chart series continuously correct while the user
// changes symbol, preset, and provider.
type Synchronizer interface {
	SetSymbol(symbol string)
	SetPreset(preset types.Preset)
	SetProvider(provider types.Provider)
	// Series returns a copy of the reconciled series.
	Series() []types.Candle
	// PatternLabel returns the latest rendered pattern label.
	PatternLabel() string
	// Close tears down the live connection and invalidates in-flight
	// fetches. No render surface calls happen after Close returns.
	Close()
}
