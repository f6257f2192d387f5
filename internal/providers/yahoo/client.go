package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"trademind/internal/interfaces"
	"trademind/internal/types"
)

// intervalMap translates chart resolutions to Yahoo interval strings.
var intervalMap = map[string]string{
	"1":  "1m",
	"5":  "5m",
	"15": "15m",
	"30": "30m",
	"60": "1h",
	"D":  "1d",
	"W":  "1wk",
	"M":  "1mo",
}

// Client fetches candles from the Yahoo Finance v8 chart API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ interfaces.HistoryProvider = (*Client)(nil)

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// chart is the response structure from the Yahoo chart API. Nulls appear
// in the quote arrays for holidays and halts, hence interface{}.
type chart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

// Candles fetches candles for [from, to] at the given resolution. An
// unknown resolution falls back to daily bars.
func (c *Client) Candles(ctx context.Context, symbol, resolution string, from, to int64) ([]types.Candle, error) {
	interval, ok := intervalMap[resolution]
	if !ok {
		interval = "1d"
	}

	u := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=%s",
		c.baseURL, url.PathEscape(symbol), from, to, interval)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d", resp.StatusCode)
	}

	var payload chart
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", payload.Chart.Error.Description)
	}
	if len(payload.Chart.Result) == 0 || len(payload.Chart.Result[0].Timestamp) == 0 {
		return nil, nil
	}

	result := payload.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, nil
	}
	quote := result.Indicators.Quote[0]

	candles := make([]types.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) || i >= len(quote.Close) {
			break
		}
		o := toFloat(quote.Open[i])
		h := toFloat(quote.High[i])
		l := toFloat(quote.Low[i])
		cl := toFloat(quote.Close[i])
		if o == 0 && h == 0 && l == 0 && cl == 0 {
			continue // null bars (holidays etc.)
		}
		var v float64
		if i < len(quote.Volume) {
			v = toFloat(quote.Volume[i])
		}
		candles = append(candles, types.Candle{T: ts, O: o, H: h, L: l, C: cl, V: v})
	}

	sort.Slice(candles, func(i, j int) bool { return candles[i].T < candles[j].T })
	return candles, nil
}
