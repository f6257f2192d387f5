package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"trademind/internal/poller"
	"trademind/internal/types"
)

// HistoricalSource serves ranged candle queries. Implemented by the
// provider selector.
type HistoricalSource interface {
	Historical(ctx context.Context, symbol, resolution string, from, to int64, provider types.Provider) ([]types.Candle, error)
}

// Config tunes the HTTP/websocket server.
type Config struct {
	AllowedOrigin   string
	PollInterval    time.Duration
	LookbackMinutes int
}

func (c *Config) applyDefaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = 5 * time.Second
	}
	if c.LookbackMinutes <= 0 {
		c.LookbackMinutes = 120
	}
}

// Server exposes the candle history API and the live candle websocket.
type Server struct {
	history  HistoricalSource
	recent   poller.RecentSource
	cfg      Config
	upgrader websocket.Upgrader
	now      func() time.Time
}

func New(history HistoricalSource, recent poller.RecentSource, cfg Config) *Server {
	cfg.applyDefaults()
	s := &Server{
		history: history,
		recent:  recent,
		cfg:     cfg,
		now:     time.Now,
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || cfg.AllowedOrigin == "*" || origin == cfg.AllowedOrigin
		},
	}
	return s
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /candles/history", s.withCORS(s.handleHistory))
	mux.HandleFunc("GET /ws/candles/{symbol}", s.handleStream)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) withCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.AllowedOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", s.cfg.AllowedOrigin)
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDetail sends an error body in the {"detail": ...} shape the chart
// client maps to user messages.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
