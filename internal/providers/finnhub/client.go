package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"trademind/internal/interfaces"
	"trademind/internal/types"
)

const statusOK = "ok"

// Client calls Finnhub's /stock/candle endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ interfaces.HistoryProvider = (*Client)(nil)

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// candleResponse is Finnhub's parallel-array candle payload.
// s is "ok" | "no_data" | "error".
type candleResponse struct {
	S string    `json:"s"`
	T []int64   `json:"t"`
	O []float64 `json:"o"`
	H []float64 `json:"h"`
	L []float64 `json:"l"`
	C []float64 `json:"c"`
	V []float64 `json:"v"`
}

// Candles fetches candles for [from, to]. A non-ok upstream status yields
// an empty series, not an error.
func (c *Client) Candles(ctx context.Context, symbol, resolution string, from, to int64) ([]types.Candle, error) {
	q := url.Values{}
	q.Set("symbol", strings.ToUpper(symbol))
	q.Set("resolution", resolution)
	q.Set("from", strconv.FormatInt(from, 10))
	q.Set("to", strconv.FormatInt(to, 10))
	q.Set("token", c.apiKey)

	u := fmt.Sprintf("%s/stock/candle?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("finnhub fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("finnhub read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("finnhub: status %d", resp.StatusCode)
	}

	var payload candleResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("finnhub decode: %w", err)
	}
	if payload.S != statusOK {
		return nil, nil
	}

	candles := make([]types.Candle, 0, len(payload.T))
	for i, ts := range payload.T {
		if i >= len(payload.O) || i >= len(payload.H) || i >= len(payload.L) || i >= len(payload.C) {
			break
		}
		var v float64
		if i < len(payload.V) {
			v = payload.V[i]
		}
		candles = append(candles, types.Candle{
			T: ts,
			O: payload.O[i],
			H: payload.H[i],
			L: payload.L[i],
			C: payload.C[i],
			V: v,
		})
	}
	return candles, nil
}

// Recent fetches the last lookback minutes of candles.
func (c *Client) Recent(ctx context.Context, symbol, resolution string, lookbackMinutes int) ([]types.Candle, error) {
	now := time.Now().Unix()
	from := now - int64(lookbackMinutes)*60
	return c.Candles(ctx, symbol, resolution, from, now)
}
