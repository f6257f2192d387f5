package interfaces

import (
	"context"

	"trademind/internal/types"
)

// StreamSource opens live candle subscriptions. Open blocks until the
// transport reports readiness or fails.
type StreamSource interface {
	Open(ctx context.Context, symbol, resolution string) (StreamConn, error)
}

// StreamConn is one live subscription. Messages delivers decoded stream
// messages in FIFO order; the channel is closed when the transport closes
// or errors. Close is idempotent.
type StreamConn interface {
	Messages() <-chan types.StreamMessage
	Close() error
}
