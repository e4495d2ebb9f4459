package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"PriceBoard/internal/cache"
	"PriceBoard/internal/collector"
	"PriceBoard/internal/config"
	"PriceBoard/internal/dashboard"
	"PriceBoard/internal/display"
	"PriceBoard/internal/logger"
	"PriceBoard/internal/server"
	"PriceBoard/internal/session"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("config validation", zap.Error(err))
	}
	window, err := cfg.Window()
	if err != nil {
		log.Fatal("session window", zap.Error(err))
	}
	log.Info("PriceBoard starting",
		zap.String("source", cfg.Source.BaseURL),
		zap.Stringer("open", window.Open),
		zap.Stringer("close", window.Close),
		zap.String("timezone", cfg.Session.Timezone),
	)

	// Init fetcher
	fetcher := collector.NewSourceFetcher(cfg.Source.BaseURL, cfg.Source.APIKey, cfg.Proxy, cfg.Source.Timeout)
	col := collector.NewCollector(fetcher, log)

	// Init history cache
	var hc cache.Cache
	if cfg.Cache.SQLitePath != "" {
		sc, err := cache.NewSQLiteCache(cfg.Cache.SQLitePath, cfg.Display.MaxHistory, log)
		if err != nil {
			log.Warn("init sqlite cache failed, using noop", zap.Error(err))
			hc = cache.NewNoopCache()
		} else {
			hc = sc
		}
	} else {
		hc = cache.NewNoopCache()
	}
	defer hc.Close()

	// Init renderers
	hub := display.NewHub(cfg.Display.MaxHistory, log)
	renderers := display.Multi{hub}
	if cfg.Display.Console {
		renderers = append(renderers, display.NewConsole(os.Stdout))
	}

	// Init engine
	clock := session.NewClock(cfg.Session.Timezone, window, log)
	engine := dashboard.NewEngine(clock, col, hc, renderers, dashboard.Options{
		TickInterval:     cfg.Display.TickInterval,
		FlashDuration:    cfg.Display.FlashDuration,
		MaxHistory:       cfg.Display.MaxHistory,
		LedgerColumnSize: cfg.Display.LedgerColumnSize,
		FilterLedger:     *cfg.Display.FilterLedger,
	}, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init display server
	var srv *server.Server
	if cfg.Server.Addr != "" {
		srv = server.New(cfg.Server.Addr, server.NewHandler(engine, hub), log)
		srv.Start()
	} else {
		log.Info("display server disabled")
	}

	if err := engine.Start(ctx); err != nil {
		log.Fatal("start engine", zap.Error(err))
	}
	log.Info("PriceBoard is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, stopping...")
	engine.Stop()
	cancel()
	if srv != nil {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("server shutdown", zap.Error(err))
		}
	}
	log.Info("PriceBoard stopped")
}
