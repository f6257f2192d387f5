package providers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"trademind/internal/types"
)

type fakeProvider struct {
	mu      sync.Mutex
	calls   int
	candles []types.Candle
	err     error
}

func (f *fakeProvider) Candles(ctx context.Context, symbol, resolution string, from, to int64) ([]types.Candle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.candles, f.err
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestSelectorAutoPicksFinnhubForIntraday(t *testing.T) {
	fh := &fakeProvider{candles: []types.Candle{{T: 100}}}
	yh := &fakeProvider{}
	s := NewSelector(fh, yh, nil, nil)

	now := time.Now().Unix()
	candles, err := s.Historical(context.Background(), "AAPL", "1", now-3600, now, types.ProviderAuto)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(candles) != 1 {
		t.Fatalf("Expected 1 candle, got %d", len(candles))
	}
	if fh.callCount() != 1 || yh.callCount() != 0 {
		t.Errorf("Expected finnhub only, got finnhub=%d yahoo=%d", fh.callCount(), yh.callCount())
	}
}

func TestSelectorAutoPicksYahooForDailyResolution(t *testing.T) {
	fh := &fakeProvider{}
	yh := &fakeProvider{candles: []types.Candle{{T: 100}}}
	s := NewSelector(fh, yh, nil, nil)

	now := time.Now().Unix()
	if _, err := s.Historical(context.Background(), "AAPL", "D", now-3600, now, types.ProviderAuto); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if fh.callCount() != 0 || yh.callCount() != 1 {
		t.Errorf("Expected yahoo only, got finnhub=%d yahoo=%d", fh.callCount(), yh.callCount())
	}
}

func TestSelectorAutoPicksYahooForLongRange(t *testing.T) {
	fh := &fakeProvider{}
	yh := &fakeProvider{candles: []types.Candle{{T: 100}}}
	s := NewSelector(fh, yh, nil, nil)

	now := time.Now().Unix()
	twoYears := int64(2 * 365 * 24 * 3600)
	if _, err := s.Historical(context.Background(), "AAPL", "1", now-twoYears, now, types.ProviderAuto); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if yh.callCount() != 1 {
		t.Errorf("Expected yahoo for multi-year intraday range, got finnhub=%d yahoo=%d", fh.callCount(), yh.callCount())
	}
}

func TestSelectorAutoFallsBackToYahoo(t *testing.T) {
	fh := &fakeProvider{err: errors.New("finnhub unavailable")}
	yh := &fakeProvider{candles: []types.Candle{{T: 100}}}
	s := NewSelector(fh, yh, nil, nil)

	now := time.Now().Unix()
	candles, err := s.Historical(context.Background(), "AAPL", "1", now-3600, now, types.ProviderAuto)
	if err != nil {
		t.Fatalf("Expected fallback to succeed, got %v", err)
	}
	if len(candles) != 1 {
		t.Errorf("Expected yahoo's candle, got %d candles", len(candles))
	}
	if fh.callCount() != 1 || yh.callCount() != 1 {
		t.Errorf("Expected both providers tried, got finnhub=%d yahoo=%d", fh.callCount(), yh.callCount())
	}
}

func TestSelectorExplicitFinnhubDoesNotFallBack(t *testing.T) {
	fh := &fakeProvider{err: errors.New("finnhub unavailable")}
	yh := &fakeProvider{candles: []types.Candle{{T: 100}}}
	s := NewSelector(fh, yh, nil, nil)

	now := time.Now().Unix()
	_, err := s.Historical(context.Background(), "AAPL", "1", now-3600, now, types.ProviderFinnhub)
	if err == nil {
		t.Fatal("Expected explicit finnhub failure to propagate")
	}
	if yh.callCount() != 0 {
		t.Errorf("Expected no yahoo fallback for explicit provider, got %d calls", yh.callCount())
	}
}

func TestSelectorExplicitYahoo(t *testing.T) {
	fh := &fakeProvider{}
	yh := &fakeProvider{candles: []types.Candle{{T: 100}}}
	s := NewSelector(fh, yh, nil, nil)

	now := time.Now().Unix()
	if _, err := s.Historical(context.Background(), "AAPL", "1", now-3600, now, types.ProviderYahoo); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if fh.callCount() != 0 || yh.callCount() != 1 {
		t.Errorf("Expected yahoo only, got finnhub=%d yahoo=%d", fh.callCount(), yh.callCount())
	}
}

func TestSelectorRejectsUnknownProvider(t *testing.T) {
	s := NewSelector(&fakeProvider{}, &fakeProvider{}, nil, nil)

	_, err := s.Historical(context.Background(), "AAPL", "1", 0, 100, types.Provider("bloomberg"))
	if !errors.Is(err, ErrInvalidProvider) {
		t.Errorf("Expected ErrInvalidProvider, got %v", err)
	}
}
