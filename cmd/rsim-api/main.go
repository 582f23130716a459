package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"raisingsim/internal/api"
	"raisingsim/internal/config"
	"raisingsim/internal/game"
	"raisingsim/internal/narration"
	"raisingsim/internal/session"
	"raisingsim/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	if cfg.Store.Driver == store.DriverSQLite && strings.TrimSpace(cfg.Store.SQLitePath) == "" {
		cfg.Store.SQLitePath = "data/rsim.db"
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	backend, err := store.Open(ctx, cfg.StoreOptions(), logger)
	if err != nil {
		logger.Error("store open failed", "err", err)
		os.Exit(1)
	}
	defer backend.Close()

	narrator, err := narration.New(cfg.NarrationOptions())
	if err != nil {
		logger.Error("narration init failed", "err", err)
		os.Exit(1)
	}
	engine := game.NewEngine(cfg.EngineOptions(), narrator, logger)

	server := api.New(cfg, logger, engine, session.NewManager(), backend)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("rsim api listening", "addr", cfg.Addr, "store", cfg.Store.Driver, "narration", cfg.Narration.Provider, "tick_months", engine.TickMonths())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
