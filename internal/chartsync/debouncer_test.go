package chartsync

import (
	"sync"
	"testing"
	"time"
)

func TestDebouncerBurstEmitsOnlyLastValue(t *testing.T) {
	var mu sync.Mutex
	var emitted []string

	d := NewDebouncer(30*time.Millisecond, func(v string) {
		mu.Lock()
		emitted = append(emitted, v)
		mu.Unlock()
	})
	defer d.Stop()

	// A fast typing burst: each keystroke lands before the quiet period
	// elapses.
	for _, v := range []string{"N", "NV", "NVD", "NVDA"} {
		d.Set(v)
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(emitted) != 1 {
		t.Fatalf("Expected exactly 1 emission, got %d: %v", len(emitted), emitted)
	}
	if emitted[0] != "NVDA" {
		t.Errorf("Expected last value NVDA, got %s", emitted[0])
	}
}

func TestDebouncerSeparateBurstsEmitSeparately(t *testing.T) {
	var mu sync.Mutex
	var emitted []string

	d := NewDebouncer(20*time.Millisecond, func(v string) {
		mu.Lock()
		emitted = append(emitted, v)
		mu.Unlock()
	})
	defer d.Stop()

	d.Set("AAPL")
	time.Sleep(80 * time.Millisecond)
	d.Set("MSFT")
	time.Sleep(80 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(emitted) != 2 {
		t.Fatalf("Expected 2 emissions, got %d: %v", len(emitted), emitted)
	}
	if emitted[0] != "AAPL" || emitted[1] != "MSFT" {
		t.Errorf("Expected [AAPL MSFT], got %v", emitted)
	}
}

func TestDebouncerStopDiscardsPending(t *testing.T) {
	var mu sync.Mutex
	count := 0

	d := NewDebouncer(30*time.Millisecond, func(string) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	d.Set("AAPL")
	d.Stop()

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if count != 0 {
		t.Errorf("Expected no emissions after Stop, got %d", count)
	}
}

func TestDebouncerSetAfterStopIsNoop(t *testing.T) {
	var mu sync.Mutex
	count := 0

	d := NewDebouncer(10*time.Millisecond, func(string) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	d.Stop()
	d.Set("AAPL")

	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if count != 0 {
		t.Errorf("Expected no emissions for Set after Stop, got %d", count)
	}
}
