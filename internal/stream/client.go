package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"trademind/internal/interfaces"
	"trademind/internal/logger"
	"trademind/internal/types"
)

// Source opens live candle websocket subscriptions against the
// TradeMind API.
type Source struct {
	baseURL string
	dialer  *websocket.Dialer
}

var _ interfaces.StreamSource = (*Source)(nil)

// NewSource creates a stream source. baseURL is the http(s) API base;
// the websocket scheme is derived from it.
func NewSource(baseURL string) *Source {
	return &Source{
		baseURL: baseURL,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

// Open dials /ws/candles/{symbol}?resolution={resolution} and returns
// once the handshake completes.
func (s *Source) Open(ctx context.Context, symbol, resolution string) (interfaces.StreamConn, error) {
	u := fmt.Sprintf("%s/ws/candles/%s?resolution=%s",
		wsBase(s.baseURL), url.PathEscape(symbol), url.QueryEscape(resolution))

	ws, _, err := s.dialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u, err)
	}

	c := &conn{
		ws:   ws,
		msgs: make(chan types.StreamMessage, 16),
	}
	go c.readLoop(ctx)
	return c, nil
}

// conn is one open websocket subscription.
type conn struct {
	ws        *websocket.Conn
	msgs      chan types.StreamMessage
	closeOnce sync.Once
}

var _ interfaces.StreamConn = (*conn)(nil)

func (c *conn) Messages() <-chan types.StreamMessage {
	return c.msgs
}

// Close is idempotent; closing an already-closed connection is a no-op.
func (c *conn) Close() error {
	c.closeOnce.Do(func() {
		_ = c.ws.Close()
	})
	return nil
}

// readLoop delivers decoded messages in FIFO order until the transport
// closes. Malformed payloads are dropped with a diagnostic; the
// connection stays open.
func (c *conn) readLoop(ctx context.Context) {
	defer close(c.msgs)

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if !isExpectedClose(err) {
				logger.Warn(ctx, "Stream transport closed", "error", err)
			}
			_ = c.Close()
			return
		}

		var msg types.StreamMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warn(ctx, "Dropping malformed stream payload", "error", err)
			continue
		}

		select {
		case c.msgs <- msg:
		case <-ctx.Done():
			_ = c.Close()
			return
		}
	}
}

func isExpectedClose(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure, websocket.CloseGoingAway)
}

// wsBase rewrites an http(s) base URL to its ws(s) equivalent.
func wsBase(baseURL string) string {
	switch {
	case strings.HasPrefix(baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(baseURL, "https://")
	case strings.HasPrefix(baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(baseURL, "http://")
	default:
		return baseURL
	}
}
