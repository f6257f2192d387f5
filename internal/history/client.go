package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"trademind/internal/interfaces"
	"trademind/internal/types"
)

// Client fetches historical candles from the TradeMind API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ interfaces.HistoryClient = (*Client)(nil)

// NewClient creates a history client against the given API base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// History fetches the snapshot series for (symbol, preset, provider).
func (c *Client) History(ctx context.Context, symbol string, preset types.Preset, provider types.Provider) ([]types.Candle, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("preset", string(preset))
	q.Set("provider", string(provider))
	return c.get(ctx, q)
}

// Recent fetches the last minutes of candles at the given resolution.
func (c *Client) Recent(ctx context.Context, symbol, resolution string, minutes int) ([]types.Candle, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("resolution", resolution)
	q.Set("minutes", strconv.Itoa(minutes))
	return c.get(ctx, q)
}

func (c *Client) get(ctx context.Context, q url.Values) ([]types.Candle, error) {
	u := fmt.Sprintf("%s/candles/history?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &FetchError{Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Status: resp.StatusCode, Detail: decodeDetail(body)}
	}

	var candles []types.Candle
	if err := json.Unmarshal(body, &candles); err != nil {
		return nil, &FetchError{Err: fmt.Errorf("decode candles: %w", err)}
	}
	return candles, nil
}

// decodeDetail extracts the optional {"detail": "..."} body from an error
// response. Anything unparseable yields an empty detail so the status
// default applies.
func decodeDetail(body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Detail
}
