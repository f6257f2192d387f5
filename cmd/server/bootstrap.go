package main

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"trademind/internal/cache"
	"trademind/internal/logger"
	"trademind/internal/poller"
	"trademind/internal/providers"
	"trademind/internal/providers/finnhub"
	"trademind/internal/providers/yahoo"
	"trademind/internal/server"
	"trademind/internal/store"
)

// serverDeps bundles everything main needs to run and tear down.
type serverDeps struct {
	server   *server.Server
	rdb      *redis.Client
	poller   *poller.Poller
	teardown func(ctx context.Context)
}

// buildServer wires providers, the optional Redis layer, the poller, and
// the HTTP server from config.
func buildServer(ctx context.Context, cfg *store.Config) (*serverDeps, error) {
	fh := finnhub.NewClient(cfg.Providers.FinnhubBaseURL, cfg.FinnhubAPIKey())
	yh := yahoo.NewClient(cfg.Providers.YahooBaseURL)

	if cfg.FinnhubAPIKey() == "" {
		logger.Warn(ctx, "No Finnhub API key configured - finnhub requests will be rejected upstream",
			"env", cfg.Providers.FinnhubAPIKeyEnv)
	}

	var (
		rdb         *redis.Client
		candleCache *cache.Store
		limiter     *cache.RateLimiter
	)
	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			// Degrade to uncached operation rather than refusing to start.
			logger.Warn(ctx, "Redis unreachable, running without cache", "addr", cfg.Redis.Addr, "error", err)
			_ = rdb.Close()
			rdb = nil
		} else {
			logger.Info(ctx, "Connected to Redis", "addr", cfg.Redis.Addr)
			candleCache = cache.NewStore(rdb, cache.DefaultTTL)
			limiter = cache.NewRateLimiter(rdb, cfg.Providers.RatePerMinute, time.Minute)
		}
	}

	selector := providers.NewSelector(fh, yh, candleCache, limiter)

	var p *poller.Poller
	if cfg.Poller.Enabled && rdb != nil {
		p = poller.New(fh, rdb, poller.Config{
			Channel:         cfg.Poller.Channel,
			PollInterval:    time.Duration(cfg.Stream.PollSeconds) * time.Second,
			LookbackMinutes: cfg.Stream.LookbackMinutes,
		})
		for _, sym := range cfg.Poller.Symbols {
			p.Subscribe(sym)
		}
		p.Start(ctx)
	}

	srv := server.New(selector, fh, server.Config{
		AllowedOrigin:   cfg.Server.AllowedOrigin,
		PollInterval:    time.Duration(cfg.Stream.PollSeconds) * time.Second,
		LookbackMinutes: cfg.Stream.LookbackMinutes,
	})

	return &serverDeps{
		server: srv,
		rdb:    rdb,
		poller: p,
		teardown: func(ctx context.Context) {
			if p != nil {
				p.Stop(ctx)
			}
			if rdb != nil {
				if err := rdb.Close(); err != nil {
					logger.Warn(ctx, "Redis close failed", "error", err)
				}
			}
		},
	}, nil
}
