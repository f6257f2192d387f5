package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"trademind/internal/logger"
	"trademind/internal/patterns"
	"trademind/internal/types"
)

// handleStream upgrades to a websocket and pushes live candles for one
// symbol until the client disconnects.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	resolution := r.URL.Query().Get("resolution")
	if resolution == "" {
		resolution = "1"
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn(r.Context(), "Websocket upgrade failed", "symbol", symbol, "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The read side only exists to notice the client going away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	logger.Info(ctx, "Websocket client connected", "symbol", symbol, "resolution", resolution)
	s.streamCandles(ctx, conn, symbol, resolution)
	logger.Info(ctx, "Websocket client disconnected", "symbol", symbol)
}

// streamCandles polls recent candles and pushes one message whenever the
// latest bucket changes. Per-connection polling keeps each subscription
// independent; the centralized poller covers the fan-out case.
func (s *Server) streamCandles(ctx context.Context, conn *websocket.Conn, symbol, resolution string) {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	var lastTS int64
	for {
		candles, err := s.recent.Recent(ctx, symbol, resolution, s.cfg.LookbackMinutes)
		if err != nil {
			logger.Warn(ctx, "Recent candles poll failed", "symbol", symbol, "error", err)
		} else if len(candles) > 0 {
			latest := candles[len(candles)-1]
			var previous *types.Candle
			if len(candles) >= 2 {
				previous = &candles[len(candles)-2]
			}

			if lastTS == 0 || latest.T != lastTS {
				msg := types.StreamMessage{
					Type:       types.MessageTypeCandle,
					Symbol:     symbol,
					Resolution: resolution,
					Candle:     latest,
					Patterns:   patterns.Classify(latest, previous),
				}
				if err := conn.WriteJSON(msg); err != nil {
					return
				}
				lastTS = latest.T
			}
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}
