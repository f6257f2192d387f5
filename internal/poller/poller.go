package poller

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"trademind/internal/logger"
	"trademind/internal/patterns"
	"trademind/internal/types"
)

// RecentSource provides the last lookback minutes of candles for a
// symbol. Implemented by the Finnhub client.
type RecentSource interface {
	Recent(ctx context.Context, symbol, resolution string, lookbackMinutes int) ([]types.Candle, error)
}

// Config tunes the polling loop.
type Config struct {
	Channel         string // Redis pub/sub channel for candle messages
	Resolution      string
	PollInterval    time.Duration
	LookbackMinutes int
}

func (c *Config) applyDefaults() {
	if c.Channel == "" {
		c.Channel = "live_candles"
	}
	if c.Resolution == "" {
		c.Resolution = "1"
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 5 * time.Second
	}
	if c.LookbackMinutes <= 0 {
		c.LookbackMinutes = 120
	}
}

// Poller runs a single centralized polling loop over all subscribed
// symbols and publishes new-or-updated candles to Redis pub/sub, so any
// number of consumers can share one upstream request stream.
type Poller struct {
	source RecentSource
	rdb    *redis.Client
	cfg    Config

	mu      sync.Mutex
	symbols map[string]struct{}
	lastTS  map[string]int64

	stopCh  chan struct{}
	wg      sync.WaitGroup
	started bool
}

func New(source RecentSource, rdb *redis.Client, cfg Config) *Poller {
	cfg.applyDefaults()
	return &Poller{
		source:  source,
		rdb:     rdb,
		cfg:     cfg,
		symbols: make(map[string]struct{}),
		lastTS:  make(map[string]int64),
		stopCh:  make(chan struct{}),
	}
}

// Start launches the polling loop. Safe to call once.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	p.wg.Add(1)
	go p.loop(ctx)
	logger.Info(ctx, "Candle poller started", "interval", p.cfg.PollInterval.String(), "channel", p.cfg.Channel)
}

// Stop halts the loop and waits for it to finish.
func (p *Poller) Stop(ctx context.Context) {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()

	close(p.stopCh)
	p.wg.Wait()
	logger.Info(ctx, "Candle poller stopped")
}

// Subscribe adds a symbol to the polling set.
func (p *Poller) Subscribe(symbol string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.symbols[symbol] = struct{}{}
}

// Unsubscribe removes a symbol and forgets its last seen bucket.
func (p *Poller) Unsubscribe(symbol string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.symbols, symbol)
	delete(p.lastTS, symbol)
}

func (p *Poller) loop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, symbol := range p.snapshotSymbols() {
				p.pollSymbol(ctx, symbol)
			}
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) snapshotSymbols() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.symbols))
	for s := range p.symbols {
		out = append(out, s)
	}
	return out
}

// pollSymbol fetches recent candles for one symbol and publishes when the
// latest bucket is new or still forming. A poll error drops the symbol
// from the set; the next subscriber re-adds it.
func (p *Poller) pollSymbol(ctx context.Context, symbol string) {
	candles, err := p.source.Recent(ctx, symbol, p.cfg.Resolution, p.cfg.LookbackMinutes)
	if err != nil {
		logger.Warn(ctx, "Poll failed, unsubscribing symbol", "symbol", symbol, "error", err)
		p.Unsubscribe(symbol)
		return
	}
	if len(candles) == 0 {
		return
	}

	latest := candles[len(candles)-1]
	var previous *types.Candle
	if len(candles) >= 2 {
		previous = &candles[len(candles)-2]
	}

	p.mu.Lock()
	last, seen := p.lastTS[symbol]
	publish := !seen || latest.T >= last
	if publish {
		p.lastTS[symbol] = latest.T
	}
	p.mu.Unlock()

	if !publish {
		return
	}

	msg := types.StreamMessage{
		Type:       types.MessageTypeCandle,
		Symbol:     symbol,
		Resolution: p.cfg.Resolution,
		Candle:     latest,
		Patterns:   patterns.Classify(latest, previous),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := p.rdb.Publish(ctx, p.cfg.Channel, payload).Err(); err != nil {
		logger.Warn(ctx, "Publish failed", "symbol", symbol, "channel", p.cfg.Channel, "error", err)
		return
	}
	logger.Debug(ctx, "Published candle", "symbol", symbol, "t", latest.T)
}
