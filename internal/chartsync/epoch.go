package chartsync

import "sync/atomic"

// EpochGuard associates in-flight fetches and open connections with the
// user-driven request context that created them. Every change to symbol,
// preset, or provider bumps the epoch; a result is committed only if its
// issue epoch still equals the current one.
type EpochGuard struct {
	n atomic.Uint64
}

// Next advances to a new epoch and returns it.
func (g *EpochGuard) Next() uint64 {
	return g.n.Add(1)
}

// Current returns the current epoch.
func (g *EpochGuard) Current() uint64 {
	return g.n.Load()
}

// IsCurrent reports whether epoch is still the current one.
func (g *EpochGuard) IsCurrent(epoch uint64) bool {
	return g.n.Load() == epoch
}
