package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/caarlos0/env/v11"

	"raisingsim/internal/autoplay"
	"raisingsim/internal/config"
	"raisingsim/internal/game"
	"raisingsim/internal/narration"
	"raisingsim/internal/store"
)

type autoplayConfig struct {
	Games      int  `env:"RSIM_AUTOPLAY_GAMES" envDefault:"1"`
	Characters int  `env:"RSIM_AUTOPLAY_CHARACTERS" envDefault:"2"`
	Narrate    bool `env:"RSIM_AUTOPLAY_NARRATE" envDefault:"false"`
	SkipSave   bool `env:"RSIM_AUTOPLAY_SKIP_SAVE" envDefault:"false"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	var run autoplayConfig
	if err := env.Parse(&run); err != nil {
		slog.Error("load autoplay config", "err", err)
		os.Exit(1)
	}
	if run.Games < 1 {
		run.Games = 1
	}
	if cfg.Store.Driver == store.DriverSQLite && strings.TrimSpace(cfg.Store.SQLitePath) == "" {
		cfg.Store.SQLitePath = "data/rsim.db"
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	narrator, err := narration.New(cfg.NarrationOptions())
	if err != nil {
		logger.Error("narration init failed", "err", err)
		os.Exit(1)
	}
	engine := game.NewEngine(cfg.EngineOptions(), narrator, logger)
	player := autoplay.NewPlayer(engine, nil, logger)

	logger.Info("autoplay started", "games", run.Games, "characters", run.Characters, "tick_months", engine.TickMonths())
	var last *game.State
	for i := 0; i < run.Games; i++ {
		st, err := player.NewRoster(run.Characters)
		if err != nil {
			logger.Error("roster failed", "err", err)
			os.Exit(1)
		}
		settings := cfg.NewGameSettings()
		settings.NarrationEnabled = settings.NarrationEnabled && run.Narrate
		st.UpdateSettings(settings)

		sum, err := player.Play(ctx, st)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("autoplay shutdown", "game", i+1)
				return
			}
			logger.Error("game failed", "game", i+1, "err", err)
			os.Exit(1)
		}
		logger.Info("game complete",
			"game", i+1,
			"periods", sum.Periods,
			"money", sum.Money,
			"entries", sum.Entries,
			"resolved", sum.Resolved,
			"stages", sum.Stages,
			"growth", sum.Growth,
		)
		last = st
	}

	if run.SkipSave || last == nil {
		return
	}
	backend, err := store.Open(ctx, cfg.StoreOptions(), logger)
	if err != nil {
		logger.Error("store open failed", "err", err)
		os.Exit(1)
	}
	defer backend.Close()
	key := cfg.SaveKey + ":autoplay"
	if err := store.SaveState(ctx, backend, key, last); err != nil {
		logger.Error("save failed", "err", err)
		os.Exit(1)
	}
	logger.Info("autoplay saved", "key", key)
}
