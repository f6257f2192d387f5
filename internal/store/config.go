package store

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr          string `yaml:"addr"`
		AllowedOrigin string `yaml:"allowed_origin"`
	} `yaml:"server"`
	Providers struct {
		FinnhubBaseURL   string `yaml:"finnhub_base_url"`
		FinnhubAPIKeyEnv string `yaml:"finnhub_api_key_env"`
		YahooBaseURL     string `yaml:"yahoo_base_url"`
		RatePerMinute    int    `yaml:"rate_per_minute"`
	} `yaml:"providers"`
	Redis struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr"`
		DB      int    `yaml:"db"`
	} `yaml:"redis"`
	Stream struct {
		PollSeconds     int `yaml:"poll_seconds"`
		LookbackMinutes int `yaml:"lookback_minutes"`
	} `yaml:"stream"`
	Poller struct {
		Enabled bool     `yaml:"enabled"`
		Symbols []string `yaml:"symbols"`
		Channel string   `yaml:"channel"`
	} `yaml:"poller"`
	Chart struct {
		BaseURL         string `yaml:"base_url"`
		QuietPeriodMS   int    `yaml:"quiet_period_ms"`
		DefaultSymbol   string `yaml:"default_symbol"`
		DefaultPreset   string `yaml:"default_preset"`
		DefaultProvider string `yaml:"default_provider"`
	} `yaml:"chart"`
}

func (c *Config) Validate() error {
	if c.Stream.PollSeconds <= 0 {
		return fmt.Errorf("stream.poll_seconds must be positive, got %d", c.Stream.PollSeconds)
	}
	if c.Stream.LookbackMinutes <= 0 {
		return fmt.Errorf("stream.lookback_minutes must be positive, got %d", c.Stream.LookbackMinutes)
	}
	if c.Providers.RatePerMinute <= 0 {
		return fmt.Errorf("providers.rate_per_minute must be positive, got %d", c.Providers.RatePerMinute)
	}
	if c.Chart.QuietPeriodMS < 0 {
		return fmt.Errorf("chart.quiet_period_ms must not be negative, got %d", c.Chart.QuietPeriodMS)
	}
	return nil
}

// QuietPeriod returns the debounce quiet period for chart input.
func (c *Config) QuietPeriod() time.Duration {
	return time.Duration(c.Chart.QuietPeriodMS) * time.Millisecond
}

// FinnhubAPIKey resolves the Finnhub token from the configured env var.
func (c *Config) FinnhubAPIKey() string {
	return os.Getenv(c.Providers.FinnhubAPIKeyEnv)
}

func defaults() *Config {
	var c Config
	c.Server.Addr = ":8000"
	c.Server.AllowedOrigin = "http://localhost:5173"
	c.Providers.FinnhubBaseURL = "https://finnhub.io/api/v1"
	c.Providers.FinnhubAPIKeyEnv = "FINNHUB_API_KEY"
	c.Providers.YahooBaseURL = "https://query1.finance.yahoo.com"
	c.Providers.RatePerMinute = 50 // Finnhub free tier
	c.Redis.Addr = "localhost:6379"
	c.Stream.PollSeconds = 5
	c.Stream.LookbackMinutes = 120
	c.Poller.Channel = "live_candles"
	c.Chart.BaseURL = "http://localhost:8000"
	c.Chart.QuietPeriodMS = 300
	c.Chart.DefaultSymbol = "AAPL"
	c.Chart.DefaultPreset = "1D"
	c.Chart.DefaultProvider = "auto"
	return &c
}

// LoadConfig reads the yaml config at path. A missing file yields the
// built-in defaults so the server runs out of the box.
func LoadConfig(path string) (*Config, error) {
	c := defaults()

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return c, nil
}
