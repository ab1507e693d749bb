package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/fundbot/config"
	"github.com/alejandrodnm/fundbot/internal/adapters/agents"
	"github.com/alejandrodnm/fundbot/internal/adapters/findata"
	"github.com/alejandrodnm/fundbot/internal/adapters/notify"
	"github.com/alejandrodnm/fundbot/internal/adapters/storage"
	"github.com/alejandrodnm/fundbot/internal/application/backtest"
	"github.com/alejandrodnm/fundbot/internal/ports"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full per-day tables (default: compact 1-line)")
	noStore := flag.Bool("no-store", false, "skip persisting the run to SQLite")
	threshold := flag.Float64("threshold", 0.02, "momentum signal threshold over the lookback window")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	start, end, err := cfg.DateRange()
	if err != nil {
		slog.Error("invalid date range", "err", err)
		os.Exit(1)
	}

	slog.Info("fundbot starting",
		"config", *configPath,
		"tickers", cfg.Backtest.Tickers,
		"start", cfg.Backtest.StartDate,
		"end", cfg.Backtest.EndDate,
	)

	client := findata.NewClient(cfg.API.BaseURL, cfg.API.APIKey)

	var store ports.RunStorage
	if !*noStore {
		sqlStore, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer sqlStore.Close()
		store = sqlStore
	}

	notifier := notify.NewConsole(*table)
	agent := agents.NewMomentum(client, *threshold)

	bt := backtest.New(backtest.Config{
		Tickers:           cfg.Backtest.Tickers,
		StartDate:         start,
		EndDate:           end,
		InitialCapital:    cfg.Backtest.InitialCapital,
		MarginRequirement: cfg.Backtest.MarginRequirement,
		LookbackDays:      cfg.Backtest.LookbackDays,
	}, agent, client, store, notifier)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	result, err := bt.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Warn("backtest interrupted", "run_id", result.RunID)
			return
		}
		slog.Error("backtest failed", "err", err)
		os.Exit(1)
	}

	slog.Info("fundbot finished",
		"run_id", result.RunID,
		"final_value", result.Values[len(result.Values)-1].TotalValue,
		"total_return_pct", result.Stats.TotalReturnPct,
	)
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
