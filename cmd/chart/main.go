package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"trademind/internal/chartsync"
	"trademind/internal/chartsync/chartsyncobs"
	"trademind/internal/history"
	"trademind/internal/logger"
	"trademind/internal/store"
	"trademind/internal/stream"
	"trademind/internal/trace"
	"trademind/internal/types"
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

	ctx := context.Background()

	cfg, err := store.LoadConfig("config.yaml")
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		os.Exit(1)
	}

	hist := history.NewClient(cfg.Chart.BaseURL)
	source := stream.NewSource(cfg.Chart.BaseURL)
	surface := newTerminalSurface(os.Stdout)

	sync := chartsyncobs.Wrap(chartsync.New(chartsync.Config{
		QuietPeriod: cfg.QuietPeriod(),
		Initial: chartsync.Inputs{
			Symbol:   cfg.Chart.DefaultSymbol,
			Preset:   types.Preset(cfg.Chart.DefaultPreset),
			Provider: types.Provider(cfg.Chart.DefaultProvider),
		},
	}, hist, source, surface))
	defer sync.Close()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		sync.Close()
		os.Exit(0)
	}()

	fmt.Println("commands: symbol <SYM> | preset <1D|5D|1M|3M|6M|1Y|YTD|ALL> | provider <auto|finnhub|yahoo> | series | quit")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		switch cmd {
		case "symbol":
			if arg == "" {
				fmt.Println("usage: symbol <SYM>")
				continue
			}
			sync.SetSymbol(strings.ToUpper(arg))
		case "preset":
			p := types.Preset(strings.ToUpper(arg))
			if !p.Valid() {
				fmt.Printf("invalid preset: %s\n", arg)
				continue
			}
			sync.SetPreset(p)
		case "provider":
			p := types.Provider(strings.ToLower(arg))
			if !p.Valid() {
				fmt.Printf("invalid provider: %s\n", arg)
				continue
			}
			sync.SetProvider(p)
		case "series":
			candles := sync.Series()
			fmt.Printf("%d candles", len(candles))
			if label := sync.PatternLabel(); label != "" {
				fmt.Printf(", patterns: %s", label)
			}
			fmt.Println()
		case "quit", "exit":
			return
		default:
			fmt.Printf("unknown command: %s\n", cmd)
		}
	}
}
