package chartsync

import (
	"context"
	"sync"

	"trademind/internal/interfaces"
	"trademind/internal/logger"
	"trademind/internal/types"
)

// ConnState is the lifecycle state of the live stream context.
type ConnState int

const (
	StateIdle ConnState = iota
	StateConnecting
	StateOpen
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// streamContext is one logical subscription for a (symbol, resolution)
// pair, tagged with the epoch that created it.
type streamContext struct {
	symbol     string
	resolution string
	epoch      uint64
	conn       interfaces.StreamConn
	cancel     context.CancelFunc
}

// StreamConnectionManager owns the lifecycle of at most one live
// connection. Activating a new (symbol, resolution) pair closes the
// previous connection before the new dial starts, so two connections for
// different pairs are never open at once. Close is idempotent. There is
// no automatic reconnect: after a transport error the context stays
// Closed until a new context becomes active.
type StreamConnectionManager struct {
	source    interfaces.StreamSource
	onMessage func(epoch uint64, msg types.StreamMessage)
	onState   func(from, to ConnState)

	mu    sync.Mutex
	state ConnState
	cur   *streamContext
}

func NewStreamConnectionManager(source interfaces.StreamSource, onMessage func(uint64, types.StreamMessage)) *StreamConnectionManager {
	return &StreamConnectionManager{
		source:    source,
		onMessage: onMessage,
		state:     StateIdle,
	}
}

// SetStateListener registers an observer for state transitions. Must be
// called before the first Activate.
func (m *StreamConnectionManager) SetStateListener(fn func(from, to ConnState)) {
	m.onState = fn
}

// State returns the current connection state.
func (m *StreamConnectionManager) State() ConnState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Activate makes (symbol, resolution) the active stream context under the
// given epoch. An empty resolution means streaming is disabled for the
// active preset; the manager goes Idle.
func (m *StreamConnectionManager) Activate(ctx context.Context, symbol, resolution string, epoch uint64) {
	m.mu.Lock()
	m.closeCurrentLocked(ctx)

	if resolution == "" {
		m.setStateLocked(ctx, symbol, resolution, StateIdle)
		m.mu.Unlock()
		return
	}

	dialCtx, cancel := context.WithCancel(ctx)
	sc := &streamContext{symbol: symbol, resolution: resolution, epoch: epoch, cancel: cancel}
	m.cur = sc
	m.setStateLocked(ctx, symbol, resolution, StateConnecting)
	m.mu.Unlock()

	go m.run(dialCtx, sc)
}

// Deactivate closes any active connection. Safe to call repeatedly.
func (m *StreamConnectionManager) Deactivate(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeCurrentLocked(ctx)
}

func (m *StreamConnectionManager) run(ctx context.Context, sc *streamContext) {
	conn, err := m.source.Open(ctx, sc.symbol, sc.resolution)

	m.mu.Lock()
	if m.cur != sc {
		// Superseded while dialing; the replacement already owns the state.
		m.mu.Unlock()
		if err == nil {
			_ = conn.Close()
		}
		return
	}
	if err != nil {
		m.cur = nil
		m.setStateLocked(ctx, sc.symbol, sc.resolution, StateClosed)
		m.mu.Unlock()
		logger.Warn(ctx, "Stream connection failed", "symbol", sc.symbol, "resolution", sc.resolution, "error", err)
		return
	}
	sc.conn = conn
	m.setStateLocked(ctx, sc.symbol, sc.resolution, StateOpen)
	m.mu.Unlock()

	// FIFO per connection; the channel closes when the transport closes.
	for msg := range conn.Messages() {
		m.onMessage(sc.epoch, msg)
	}

	m.mu.Lock()
	if m.cur == sc {
		m.cur = nil
		m.setStateLocked(ctx, sc.symbol, sc.resolution, StateClosed)
	}
	m.mu.Unlock()
}

func (m *StreamConnectionManager) closeCurrentLocked(ctx context.Context) {
	if m.cur == nil {
		return
	}
	sc := m.cur
	m.cur = nil
	sc.cancel()
	if sc.conn != nil {
		_ = sc.conn.Close()
	}
	m.setStateLocked(ctx, sc.symbol, sc.resolution, StateClosed)
}

func (m *StreamConnectionManager) setStateLocked(ctx context.Context, symbol, resolution string, to ConnState) {
	from := m.state
	if from == to {
		return
	}
	m.state = to
	logger.StreamState(ctx, symbol, resolution, from.String(), to.String())
	if m.onState != nil {
		m.onState(from, to)
	}
}
