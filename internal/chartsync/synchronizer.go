package chartsync

import (
	"context"
	"errors"
	"sync"
	"time"

	"trademind/internal/interfaces"
	"trademind/internal/logger"
	"trademind/internal/types"
)

// Inputs is the user-driven chart context. Any change to it invalidates
// in-flight work for the previous context.
type Inputs struct {
	Symbol   string
	Preset   types.Preset
	Provider types.Provider
}

// Config configures a ChartSynchronizer.
type Config struct {
	// QuietPeriod is the debounce window for user input.
	QuietPeriod time.Duration
	// Initial, when it carries a symbol, is applied on construction
	// through the same debounced path as user input.
	Initial Inputs
}

// ChartSynchronizer keeps one chart series continuously correct: it
// debounces input, races and cancels stale historical fetches by epoch,
// maintains at most one live stream connection, and reconciles snapshot
// and stream data into a single ordered series pushed to the render
// surface.
type ChartSynchronizer struct {
	surface interfaces.RenderSurface

	epochs  EpochGuard
	rec     *SeriesReconciler
	ann     *PatternAnnotator
	deb     *Debouncer[Inputs]
	streams *StreamConnectionManager
	loader  *HistoricalLoader

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	inputs Inputs
	closed bool
}

var _ interfaces.Synchronizer = (*ChartSynchronizer)(nil)

// New builds a synchronizer over a history client, a stream source, and a
// render surface. Call Close when done; the surface is never touched
// after Close returns the internal teardown.
func New(cfg Config, history interfaces.HistoryClient, source interfaces.StreamSource, surface interfaces.RenderSurface) *ChartSynchronizer {
	ctx, cancel := context.WithCancel(context.Background())

	s := &ChartSynchronizer{
		surface: surface,
		rec:     NewSeriesReconciler(),
		ann:     NewPatternAnnotator(),
		ctx:     ctx,
		cancel:  cancel,
		inputs:  cfg.Initial,
	}
	s.loader = NewHistoricalLoader(history, &s.epochs, s.commitSnapshot)
	s.streams = NewStreamConnectionManager(source, s.applyStreamMessage)
	s.deb = NewDebouncer(cfg.QuietPeriod, s.activate)

	if cfg.Initial.Symbol != "" {
		s.deb.Set(cfg.Initial)
	}
	return s
}

// StreamManager exposes the connection manager, mainly so callers can
// observe state transitions.
func (s *ChartSynchronizer) StreamManager() *StreamConnectionManager {
	return s.streams
}

func (s *ChartSynchronizer) SetSymbol(symbol string) {
	s.setInputs(func(in *Inputs) { in.Symbol = symbol })
}

func (s *ChartSynchronizer) SetPreset(preset types.Preset) {
	s.setInputs(func(in *Inputs) { in.Preset = preset })
}

func (s *ChartSynchronizer) SetProvider(provider types.Provider) {
	s.setInputs(func(in *Inputs) { in.Provider = provider })
}

func (s *ChartSynchronizer) setInputs(apply func(*Inputs)) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	before := s.inputs
	apply(&s.inputs)
	in := s.inputs
	s.mu.Unlock()

	if in == before {
		return
	}
	s.deb.Set(in)
}

// activate runs once per settled input burst: it opens a new epoch,
// discards the previous series, swaps the stream context, and starts the
// snapshot load.
func (s *ChartSynchronizer) activate(in Inputs) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	epoch := s.epochs.Next()
	s.rec.Reset()
	s.ann.Reset()
	s.surface.SetPatternLabel("")
	s.surface.SetLoading(true)
	s.mu.Unlock()

	logger.Debug(s.ctx, "Chart context activated",
		"symbol", in.Symbol, "preset", string(in.Preset), "provider", string(in.Provider), "epoch", epoch)

	resolution, _ := in.Preset.StreamResolution()
	s.streams.Activate(s.ctx, in.Symbol, resolution, epoch)
	s.loader.Load(s.ctx, in.Symbol, in.Preset, in.Provider, epoch)
}

// commitSnapshot lands a historical fetch. The epoch is re-checked under
// the lock: last epoch wins regardless of arrival order.
func (s *ChartSynchronizer) commitSnapshot(res LoadResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || !s.epochs.IsCurrent(res.Epoch) {
		logger.StaleDrop(s.ctx, "snapshot commit", res.Epoch, s.epochs.Current(), "symbol", res.Symbol)
		return
	}

	s.surface.SetLoading(false)
	if res.Err != nil {
		s.surface.SetError(userMessage(res.Err))
		return
	}
	s.rec.ApplySnapshot(res.Candles)
	s.surface.SetSeries(res.Symbol, res.Preset, s.rec.Series())
}

// applyStreamMessage merges one live message. Messages from a superseded
// connection epoch are dropped; reordering across a connection swap is
// irrelevant because the old connection is torn down first.
func (s *ChartSynchronizer) applyStreamMessage(epoch uint64, msg types.StreamMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || !s.epochs.IsCurrent(epoch) {
		return
	}
	if msg.Type != types.MessageTypeCandle {
		return
	}

	kind := s.rec.ApplyUpdate(msg.Candle)
	if kind == UpdateDropped {
		return
	}
	s.surface.UpdateCandle(msg.Candle, kind == UpdateAppended)

	if label, changed := s.ann.Observe(msg.Patterns); changed {
		s.surface.SetPatternLabel(label)
	}
}

// Series returns a copy of the reconciled series.
func (s *ChartSynchronizer) Series() []types.Candle {
	return s.rec.Series()
}

// PatternLabel returns the latest rendered pattern label.
func (s *ChartSynchronizer) PatternLabel() string {
	return s.ann.Label()
}

// Close tears down the synchronizer: pending debounce emissions are
// discarded, in-flight fetch epochs are invalidated, and the live
// connection is closed. Idempotent.
func (s *ChartSynchronizer) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.epochs.Next()
	s.mu.Unlock()

	s.deb.Stop()
	s.streams.Deactivate(s.ctx)
	s.cancel()
}

// userMessage renders a fetch failure for the UI. Errors carrying their
// own user message (the history client's status mapping) win; anything
// else is a transport-level failure.
func userMessage(err error) string {
	var um interface{ UserMessage() string }
	if errors.As(err, &um) {
		return um.UserMessage()
	}
	return "network error"
}
