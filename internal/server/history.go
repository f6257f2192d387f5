package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"trademind/internal/cache"
	"trademind/internal/logger"
	"trademind/internal/providers"
	"trademind/internal/types"
)

// maxMinutes caps "last N minutes" queries at one year of minute data.
const maxMinutes = 60 * 24 * 365

// handleHistory is the unified historical candles endpoint. Callers pass
// either a preset shorthand, `minutes` for last-N-minutes intraday
// ranges, or explicit from_ts/to_ts.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	symbol := q.Get("symbol")
	if symbol == "" {
		writeDetail(w, http.StatusBadRequest, "symbol is required")
		return
	}

	provider := types.Provider(q.Get("provider"))
	if provider == "" {
		provider = types.ProviderAuto
	}
	if !provider.Valid() {
		writeDetail(w, http.StatusBadRequest, fmt.Sprintf("invalid provider: %s", provider))
		return
	}

	resolution, from, to, ok := s.resolveRange(w, q)
	if !ok {
		return
	}

	candles, err := s.history.Historical(ctx, symbol, resolution, from, to, provider)
	if err != nil {
		switch {
		case errors.Is(err, cache.ErrRateLimited):
			writeDetail(w, http.StatusTooManyRequests, "rate limit exceeded")
		case errors.Is(err, providers.ErrInvalidProvider):
			writeDetail(w, http.StatusBadRequest, err.Error())
		default:
			logger.ErrorWithErr(ctx, "Historical fetch failed", err, "symbol", symbol, "resolution", resolution)
			writeDetail(w, http.StatusBadGateway, "upstream provider error")
		}
		return
	}

	if len(candles) == 0 {
		writeDetail(w, http.StatusNotFound, "No candles found")
		return
	}
	writeJSON(w, http.StatusOK, candles)
}

// resolveRange turns the query into (resolution, from, to). It writes the
// error response itself and reports ok=false when the parameters are bad.
func (s *Server) resolveRange(w http.ResponseWriter, q url.Values) (resolution string, from, to int64, ok bool) {
	now := s.now().Unix()

	if presetStr := q.Get("preset"); presetStr != "" {
		preset := types.Preset(presetStr)
		if !preset.Valid() {
			writeDetail(w, http.StatusBadRequest, fmt.Sprintf("invalid preset: %s", presetStr))
			return "", 0, 0, false
		}
		resolution, from, to = presetRange(preset, s.now())
		return resolution, from, to, true
	}

	resolution = q.Get("resolution")
	if resolution == "" {
		resolution = "1"
	}

	minutes, err := parseOptionalInt(q, "minutes")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid minutes")
		return "", 0, 0, false
	}
	if minutes != nil && (*minutes < 1 || *minutes > maxMinutes) {
		writeDetail(w, http.StatusBadRequest, fmt.Sprintf("minutes must be between 1 and %d", maxMinutes))
		return "", 0, 0, false
	}

	fromTS, err := parseOptionalInt(q, "from_ts")
	if err != nil || (fromTS != nil && *fromTS < 0) {
		writeDetail(w, http.StatusBadRequest, "invalid from_ts")
		return "", 0, 0, false
	}
	toTS, err := parseOptionalInt(q, "to_ts")
	if err != nil || (toTS != nil && *toTS < 0) {
		writeDetail(w, http.StatusBadRequest, "invalid to_ts")
		return "", 0, 0, false
	}

	// Default: the last trading day of minute data.
	if fromTS == nil && minutes == nil {
		m := int64(60 * 24)
		minutes = &m
	}

	if fromTS == nil {
		to = now
		if toTS != nil {
			to = *toTS
		}
		from = to - *minutes*60
	} else {
		from = *fromTS
		to = now
		if toTS != nil {
			to = *toTS
		}
	}

	if from >= to {
		writeDetail(w, http.StatusBadRequest, "from_ts must be < to_ts")
		return "", 0, 0, false
	}
	return resolution, from, to, true
}

// presetRange maps a preset to a concrete (resolution, from, to) range.
// Intraday presets use minute buckets so they can stream; longer presets
// widen the bucket with the window.
func presetRange(p types.Preset, now time.Time) (string, int64, int64) {
	to := now.Unix()
	switch p {
	case types.Preset1D:
		return "1", now.Add(-24 * time.Hour).Unix(), to
	case types.Preset5D:
		return "5", now.Add(-5 * 24 * time.Hour).Unix(), to
	case types.Preset1M:
		return "30", now.Add(-30 * 24 * time.Hour).Unix(), to
	case types.Preset3M:
		return "60", now.Add(-90 * 24 * time.Hour).Unix(), to
	case types.Preset6M:
		return "D", now.Add(-180 * 24 * time.Hour).Unix(), to
	case types.Preset1Y:
		return "D", now.Add(-365 * 24 * time.Hour).Unix(), to
	case types.PresetYTD:
		jan1 := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return "D", jan1.Unix(), to
	default: // ALL
		return "W", 0, to
	}
}

func parseOptionalInt(q url.Values, name string) (*int64, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
