package poller

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"trademind/internal/types"
)

type fakeSource struct {
	mu      sync.Mutex
	batches [][]types.Candle
	idx     int
	err     error
}

func (f *fakeSource) Recent(ctx context.Context, symbol, resolution string, lookbackMinutes int) ([]types.Candle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if len(f.batches) == 0 {
		return nil, nil
	}
	batch := f.batches[f.idx]
	if f.idx < len(f.batches)-1 {
		f.idx++
	}
	return batch, nil
}

func (p *Poller) subscribed(symbol string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.symbols[symbol]
	return ok
}

func (p *Poller) lastSeen(symbol string) (int64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ts, ok := p.lastTS[symbol]
	return ts, ok
}

func TestPollErrorUnsubscribesSymbol(t *testing.T) {
	src := &fakeSource{err: errors.New("upstream unavailable")}
	// The error path returns before Redis is touched.
	p := New(src, nil, Config{})
	p.Subscribe("AAPL")

	p.pollSymbol(context.Background(), "AAPL")

	if p.subscribed("AAPL") {
		t.Error("Expected failing symbol to be unsubscribed")
	}
	if _, ok := p.lastSeen("AAPL"); ok {
		t.Error("Expected no last-seen bookkeeping for failed symbol")
	}
}

func TestPollPublishesNewAndFormingBuckets(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx := context.Background()
	src := &fakeSource{batches: [][]types.Candle{
		{{T: 100, C: 10}},                    // new bucket: publish
		{{T: 100, C: 10.5}},                  // same bucket still forming: publish
		{{T: 100, C: 10.5}, {T: 160, C: 11}}, // new bucket: publish
	}}
	p := New(src, rdb, Config{Channel: "live_candles"})
	p.Subscribe("AAPL")

	pubsub := rdb.Subscribe(ctx, "live_candles")
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	ch := pubsub.Channel()

	p.pollSymbol(ctx, "AAPL")
	p.pollSymbol(ctx, "AAPL")
	p.pollSymbol(ctx, "AAPL")

	wantTS := []int64{100, 100, 160}
	for i, want := range wantTS {
		select {
		case raw := <-ch:
			var msg types.StreamMessage
			if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
				t.Fatalf("Message %d: failed to decode payload: %v", i, err)
			}
			if msg.Type != types.MessageTypeCandle || msg.Symbol != "AAPL" {
				t.Errorf("Message %d: unexpected envelope: %+v", i, msg)
			}
			if msg.Candle.T != want {
				t.Errorf("Message %d: expected candle t=%d, got %d", i, want, msg.Candle.T)
			}
			if len(msg.Patterns) == 0 {
				t.Errorf("Message %d: expected patterns on published candle", i)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("Timed out waiting for message %d", i)
		}
	}

	if ts, ok := p.lastSeen("AAPL"); !ok || ts != 160 {
		t.Errorf("Expected last seen bucket 160, got %d (ok=%v)", ts, ok)
	}
}

func TestPollSkipsStaleBucket(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx := context.Background()
	src := &fakeSource{batches: [][]types.Candle{
		{{T: 160, C: 11}},
		{{T: 100, C: 10}}, // older than the last seen bucket: no publish
	}}
	p := New(src, rdb, Config{Channel: "live_candles"})
	p.Subscribe("AAPL")

	pubsub := rdb.Subscribe(ctx, "live_candles")
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	ch := pubsub.Channel()

	p.pollSymbol(ctx, "AAPL")
	p.pollSymbol(ctx, "AAPL")

	select {
	case raw := <-ch:
		var msg types.StreamMessage
		if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
			t.Fatalf("Failed to decode payload: %v", err)
		}
		if msg.Candle.T != 160 {
			t.Errorf("Expected first publish t=160, got %d", msg.Candle.T)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for first message")
	}

	select {
	case raw := <-ch:
		t.Errorf("Expected stale bucket suppressed, got publish: %s", raw.Payload)
	case <-time.After(100 * time.Millisecond):
	}

	if ts, _ := p.lastSeen("AAPL"); ts != 160 {
		t.Errorf("Expected last seen to stay 160, got %d", ts)
	}
}

func TestPollEmptySeriesIsNoop(t *testing.T) {
	src := &fakeSource{}
	// Empty series returns before any publish, so no Redis is needed.
	p := New(src, nil, Config{})
	p.Subscribe("AAPL")

	p.pollSymbol(context.Background(), "AAPL")

	if !p.subscribed("AAPL") {
		t.Error("Expected symbol to stay subscribed on empty series")
	}
	if _, ok := p.lastSeen("AAPL"); ok {
		t.Error("Expected no last-seen bookkeeping for empty series")
	}
}

func TestUnsubscribeForgetsLastSeen(t *testing.T) {
	p := New(&fakeSource{}, nil, Config{})
	p.Subscribe("AAPL")
	p.mu.Lock()
	p.lastTS["AAPL"] = 100
	p.mu.Unlock()

	p.Unsubscribe("AAPL")

	if p.subscribed("AAPL") {
		t.Error("Expected symbol removed")
	}
	if _, ok := p.lastSeen("AAPL"); ok {
		t.Error("Expected last-seen bucket forgotten; a re-subscribe starts fresh")
	}
}
