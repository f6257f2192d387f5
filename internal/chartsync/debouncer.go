package chartsync

import (
	"sync"
	"time"
)

// Debouncer delays propagation of a rapidly changing value until it has
// been stable for the quiet period. A burst of n changes faster than the
// quiet period emits exactly once: the last value, quietPeriod after the
// burst ends. A pending emission is discarded when a newer value arrives.
type Debouncer[T any] struct {
	quiet time.Duration
	emit  func(T)

	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64
	stopped bool
}

// NewDebouncer creates a debouncer that calls emit on its own goroutine
// once the input has settled.
func NewDebouncer[T any](quiet time.Duration, emit func(T)) *Debouncer[T] {
	return &Debouncer[T]{quiet: quiet, emit: emit}
}

// Set records a new raw value and restarts the quiet-period timer.
func (d *Debouncer[T]) Set(value T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}

	d.seq++
	seq := d.seq
	d.timer = time.AfterFunc(d.quiet, func() {
		// The timer may fire concurrently with a newer Set; the sequence
		// check makes sure only the latest value of a burst propagates.
		d.mu.Lock()
		stale := d.stopped || seq != d.seq
		d.mu.Unlock()
		if stale {
			return
		}
		d.emit(value)
	})
}

// Stop discards any pending emission. No emit happens after Stop returns
// unless the callback was already running.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
