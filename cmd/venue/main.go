package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/soletrade/venue/internal/config"
	"github.com/soletrade/venue/internal/engine"
	"github.com/soletrade/venue/internal/feed"
	"github.com/soletrade/venue/internal/handler"
	"github.com/soletrade/venue/internal/journal"
	"github.com/soletrade/venue/internal/reporter"
	"github.com/soletrade/venue/internal/service"
	"github.com/soletrade/venue/internal/store"
)

func main() {
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Load .env if present, then configuration from the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up slog logger with configured level.
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Journal (pebble-backed event log).
	jnl, err := journal.Open(cfg.JournalDir, cfg.CheckpointInterval, logger)
	if err != nil {
		logger.Error("failed to open journal", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Trade feed is optional; without brokers the venue runs standalone.
	var tradeFeed *feed.TradeFeed
	if len(cfg.KafkaBrokers) > 0 {
		tradeFeed = feed.New(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	}

	// Stores.
	orderStore := store.NewOrderStore()
	tradeStore := store.NewTradeStore()

	// Engine.
	seq := engine.NewSequencer()
	registry := engine.NewRegistry(seq)

	// Reporter fans outcomes to journal, feed, and stores. A nil feed
	// interface value must stay nil, hence the indirection.
	var feedIface reporter.Feed
	if tradeFeed != nil {
		feedIface = tradeFeed
	}
	rep := reporter.New(seq, jnl, feedIface, orderStore, tradeStore, logger)

	// Services.
	orderSvc := service.NewOrderService(registry, rep, orderStore, cfg.MaxOrderQty)
	instrumentSvc := service.NewInstrumentService(registry, rep)
	marketSvc := service.NewMarketService(registry, tradeStore, cfg.DepthLevels)

	// Replay the journal before serving traffic.
	restorer := service.NewRestorer(jnl, registry, seq, orderStore, tradeStore, logger)
	if err := restorer.Restore(); err != nil {
		logger.Error("failed to restore from journal", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Router.
	router := handler.NewRouter(orderSvc, instrumentSvc, marketSvc, logger)

	// Configure HTTP server.
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start HTTP server in a goroutine.
	go func() {
		logger.Info("server starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	// Graceful shutdown: stop HTTP server, drain journal, close feed.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	if err := jnl.Close(); err != nil {
		logger.Error("journal close error", slog.String("error", err.Error()))
	}
	if tradeFeed != nil {
		if err := tradeFeed.Close(); err != nil {
			logger.Error("trade feed close error", slog.String("error", err.Error()))
		}
	}

	logger.Info("server stopped")
}
