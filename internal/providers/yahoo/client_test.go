package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const chartBody = `{
  "chart": {
    "result": [{
      "timestamp": [160, 100],
      "indicators": {
        "quote": [{
          "open":   [10.5, 10],
          "high":   [12, 11],
          "low":    [10, 9],
          "close":  [11.9, 10.5],
          "volume": [1200, 1000]
        }]
      }
    }],
    "error": null
  }
}`

func TestCandlesDecodesAndSorts(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.String()
		w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	candles, err := c.Candles(context.Background(), "AAPL", "1", 0, 200)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !strings.Contains(gotPath, "/v8/finance/chart/AAPL") {
		t.Errorf("Unexpected path: %s", gotPath)
	}
	if !strings.Contains(gotPath, "interval=1m") {
		t.Errorf("Expected 1m interval for resolution 1, got %s", gotPath)
	}

	if len(candles) != 2 {
		t.Fatalf("Expected 2 candles, got %d", len(candles))
	}
	// Response order was [160, 100]; output must be ascending.
	if candles[0].T != 100 || candles[1].T != 160 {
		t.Errorf("Expected sorted timestamps, got %d then %d", candles[0].T, candles[1].T)
	}
}

func TestCandlesSkipsNullBars(t *testing.T) {
	body := `{
	  "chart": {
	    "result": [{
	      "timestamp": [100, 160, 220],
	      "indicators": {
	        "quote": [{
	          "open":   [10, null, 10.5],
	          "high":   [11, null, 12],
	          "low":    [9, null, 10],
	          "close":  [10.5, null, 11.9],
	          "volume": [1000, null, 1200]
	        }]
	      }
	    }],
	    "error": null
	  }
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	candles, err := c.Candles(context.Background(), "AAPL", "1", 0, 300)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("Expected null bar skipped, got %d candles", len(candles))
	}
	if candles[0].T != 100 || candles[1].T != 220 {
		t.Errorf("Unexpected timestamps: %d, %d", candles[0].T, candles[1].T)
	}
}

func TestCandlesAPIError(t *testing.T) {
	body := `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Candles(context.Background(), "ZZZZ", "D", 0, 200)
	if err == nil {
		t.Fatal("Expected error for chart API error payload")
	}
	if !strings.Contains(err.Error(), "delisted") {
		t.Errorf("Expected upstream description in error, got %v", err)
	}
}

func TestCandlesUnknownResolutionFallsBackToDaily(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.String()
		w.Write([]byte(`{"chart":{"result":[],"error":null}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.Candles(context.Background(), "AAPL", "45", 0, 200); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(gotPath, "interval=1d") {
		t.Errorf("Expected daily fallback interval, got %s", gotPath)
	}
}
