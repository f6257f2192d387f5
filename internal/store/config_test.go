package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Expected defaults for missing file, got %v", err)
	}

	if cfg.Server.Addr != ":8000" {
		t.Errorf("Expected default addr :8000, got %s", cfg.Server.Addr)
	}
	if cfg.Providers.RatePerMinute != 50 {
		t.Errorf("Expected default rate 50, got %d", cfg.Providers.RatePerMinute)
	}
	if cfg.QuietPeriod() != 300*time.Millisecond {
		t.Errorf("Expected default quiet period 300ms, got %v", cfg.QuietPeriod())
	}
	if cfg.Chart.DefaultPreset != "1D" {
		t.Errorf("Expected default preset 1D, got %s", cfg.Chart.DefaultPreset)
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  addr: ":9000"
stream:
  poll_seconds: 2
chart:
  quiet_period_ms: 150
  default_symbol: MSFT
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Server.Addr != ":9000" {
		t.Errorf("Expected addr :9000, got %s", cfg.Server.Addr)
	}
	if cfg.Stream.PollSeconds != 2 {
		t.Errorf("Expected poll_seconds 2, got %d", cfg.Stream.PollSeconds)
	}
	if cfg.QuietPeriod() != 150*time.Millisecond {
		t.Errorf("Expected quiet period 150ms, got %v", cfg.QuietPeriod())
	}
	if cfg.Chart.DefaultSymbol != "MSFT" {
		t.Errorf("Expected default symbol MSFT, got %s", cfg.Chart.DefaultSymbol)
	}
	// Untouched sections keep their defaults.
	if cfg.Providers.FinnhubBaseURL != "https://finnhub.io/api/v1" {
		t.Errorf("Expected finnhub default to survive, got %s", cfg.Providers.FinnhubBaseURL)
	}
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
stream:
  poll_seconds: 0
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("Expected validation error for poll_seconds 0")
	}
}
