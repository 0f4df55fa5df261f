package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/roundbet/config"
	"github.com/alejandrodnm/roundbet/internal/adapters/admin"
	"github.com/alejandrodnm/roundbet/internal/adapters/notify"
	"github.com/alejandrodnm/roundbet/internal/adapters/oracle"
	"github.com/alejandrodnm/roundbet/internal/adapters/storage"
	"github.com/alejandrodnm/roundbet/internal/application/market"
	"github.com/alejandrodnm/roundbet/internal/domain"
	"github.com/alejandrodnm/roundbet/internal/ports"
)

const usage = `usage: roundbet [flags] <command> [args]

market:
  init                                  instantiate the market from config
  advance                               advance rounds (permissionless)
  keeper [-once]                        advance periodically
  bet -as ADDR -round N -dir bull|bear -amount X
  collect -as ADDR                      collect all winnings

queries:
  status | config | fee
  round -id N
  position -as ADDR
  history -as ADDR [-start-after N] [-limit N]
  pending -as ADDR
  transfers [-limit N] [-ack]           pending token transfers

admin:
  pause | resume
  update-config [-duration S] [-min-bet X] [-burn-fee BP] [-gaming-fee BP] [-oracle REF] [-token REF] [-custody ADDR]
  distribute ADDR=RATIO...

local:
  demo                                  run a full round in memory

flags:
`

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	cmd, args := flag.Arg(0), flag.Args()[1:]

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

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cmd == "demo" {
		if err := runDemo(ctx, notify.NewConsole()); err != nil {
			slog.Error("demo failed", "err", err)
			os.Exit(1)
		}
		return
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	priceOracle, err := newOracle(cfg)
	if err != nil {
		slog.Error("failed to set up oracle", "err", err)
		os.Exit(1)
	}

	console := notify.NewConsole()
	app := &cli{
		cfg:     cfg,
		console: console,
		outbox:  storage.NewOutbox(store),
	}
	app.market = market.New(store, priceOracle, app.outbox, admin.NewStatic(domain.Address(cfg.Admin.Address)),
		market.WithNotifier(console),
	)

	if err := app.run(ctx, cmd, args); err != nil {
		slog.Error("command failed", "cmd", cmd, "err", err)
		os.Exit(1)
	}
}

// newOracle construye el oráculo según oracle.mode.
func newOracle(cfg *config.Config) (ports.PriceOracle, error) {
	switch cfg.Oracle.Mode {
	case "http":
		if cfg.Oracle.BaseURL == "" {
			return nil, fmt.Errorf("oracle.base_url is required in http mode")
		}
		return oracle.NewClient(cfg.Oracle.BaseURL, cfg.Oracle.RatePerSec), nil
	case "fixed":
		price, err := domain.ParseAmount(cfg.Oracle.FixedPrice)
		if err != nil {
			return nil, fmt.Errorf("oracle.fixed_price: %w", err)
		}
		owner := domain.Address(cfg.Admin.Address)
		feed := oracle.NewFeed(owner)
		if err := feed.Update(owner, cfg.Market.OracleRef, price); err != nil {
			return nil, err
		}
		return feed, nil
	}
	return nil, fmt.Errorf("unknown oracle mode %q (want http|fixed)", cfg.Oracle.Mode)
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
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
