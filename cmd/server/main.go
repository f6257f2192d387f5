package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"trademind/internal/logger"
	"trademind/internal/store"
	"trademind/internal/trace"
)

func main() {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := store.LoadConfig("config.yaml")
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		os.Exit(1)
	}

	deps, err := buildServer(ctx, cfg)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to build server", err)
		os.Exit(1)
	}

	httpSrv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: deps.server.Handler(),
	}

	go func() {
		logger.Info(ctx, "TradeMind API listening", "addr", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorWithErr(ctx, "HTTP server failed", err)
			cancel()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigc:
		logger.Info(ctx, "Shutting down...")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn(shutdownCtx, "HTTP shutdown incomplete", "error", err)
	}
	deps.teardown(shutdownCtx)

	if err := trace.Shutdown(shutdownCtx); err != nil {
		logger.Warn(shutdownCtx, "Tracer shutdown failed", "error", err)
	}
}
