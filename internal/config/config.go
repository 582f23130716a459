package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v2"

	"raisingsim/internal/game"
	"raisingsim/internal/narration"
	"raisingsim/internal/store"
)

type EngineConfig struct {
	TickMonths int   `yaml:"tick_months" env:"RSIM_TICK_MONTHS"`
	Seed       int64 `yaml:"seed" env:"RSIM_SEED"`
}

type StoreConfig struct {
	Driver        string `yaml:"driver" env:"RSIM_STORE_DRIVER"`
	SQLitePath    string `yaml:"sqlite_path" env:"RSIM_SQLITE_PATH"`
	DatabaseURL   string `yaml:"database_url" env:"DATABASE_URL"`
	MaxConns      int32  `yaml:"max_conns" env:"RSIM_DB_MAX_CONNS"`
	RedisAddr     string `yaml:"redis_addr" env:"RSIM_REDIS_ADDR"`
	RedisPassword string `yaml:"redis_password" env:"RSIM_REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"RSIM_REDIS_DB"`
}

type NarrationConfig struct {
	Provider string        `yaml:"provider" env:"RSIM_NARRATION_PROVIDER"`
	Endpoint string        `yaml:"endpoint" env:"RSIM_NARRATION_ENDPOINT"`
	APIKey   string        `yaml:"api_key" env:"OPENAI_API_KEY"`
	Model    string        `yaml:"model" env:"RSIM_NARRATION_MODEL"`
	Timeout  time.Duration `yaml:"timeout" env:"RSIM_NARRATION_TIMEOUT"`
}

type Config struct {
	Addr           string          `yaml:"addr" env:"RSIM_API_ADDR"`
	LogLevel       string          `yaml:"log_level" env:"RSIM_LOG_LEVEL"`
	RequestTimeout time.Duration   `yaml:"request_timeout" env:"RSIM_REQUEST_TIMEOUT"`
	SaveKey        string          `yaml:"save_key" env:"RSIM_SAVE_KEY"`
	Engine         EngineConfig    `yaml:"engine"`
	Store          StoreConfig     `yaml:"store"`
	Narration      NarrationConfig `yaml:"narration"`
}

func Default() Config {
	return Config{
		Addr:           ":8080",
		LogLevel:       "info",
		RequestTimeout: 15 * time.Second,
		SaveKey:        store.DefaultKey,
		Engine:         EngineConfig{TickMonths: game.DefaultTickMonths},
		Store:          StoreConfig{Driver: store.DriverSQLite},
		Narration: NarrationConfig{
			Provider: narration.ProviderNone,
			Model:    narration.DefaultModel,
			Timeout:  game.DefaultNarrationTimeout,
		},
	}
}

// LoadFromEnv reads the optional YAML file named by RSIM_CONFIG and then
// applies environment overrides.
func LoadFromEnv() (Config, error) {
	return Load(strings.TrimSpace(os.Getenv("RSIM_CONFIG")))
}

func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Addr = ":" + strings.TrimPrefix(port, ":")
	}
	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	cfg.Narration.Provider = strings.ToLower(strings.TrimSpace(cfg.Narration.Provider))
	cfg.Store.DatabaseURL = strings.TrimSpace(cfg.Store.DatabaseURL)
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Engine.TickMonths != 1 && c.Engine.TickMonths != 2 {
		return fmt.Errorf("tick_months must be 1 or 2, got %d", c.Engine.TickMonths)
	}
	switch c.Store.Driver {
	case store.DriverMemory, store.DriverSQLite, store.DriverRedis:
	case store.DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	switch c.Narration.Provider {
	case "", narration.ProviderNone, narration.ProviderHTTP, narration.ProviderOpenAI:
	default:
		return fmt.Errorf("unknown narration provider %q", c.Narration.Provider)
	}
	if strings.TrimSpace(c.SaveKey) == "" {
		return fmt.Errorf("save_key must not be empty")
	}
	return nil
}

func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c Config) StoreOptions() store.Options {
	return store.Options{
		Driver:        c.Store.Driver,
		SQLitePath:    c.Store.SQLitePath,
		DatabaseURL:   c.Store.DatabaseURL,
		MaxConns:      c.Store.MaxConns,
		RedisAddr:     c.Store.RedisAddr,
		RedisPassword: c.Store.RedisPassword,
		RedisDB:       c.Store.RedisDB,
	}
}

func (c Config) NarrationOptions() narration.Options {
	return narration.Options{
		Provider: c.Narration.Provider,
		APIKey:   c.Narration.APIKey,
		Model:    c.Narration.Model,
		Timeout:  c.Narration.Timeout,
	}
}

// NewGameSettings seeds the per-game settings from the narration section.
func (c Config) NewGameSettings() game.Settings {
	enabled := c.Narration.Provider != "" && c.Narration.Provider != narration.ProviderNone
	return game.Settings{NarrationEnabled: enabled, Endpoint: strings.TrimSpace(c.Narration.Endpoint)}
}

func (c Config) EngineOptions() game.EngineConfig {
	cfg := game.EngineConfig{TickMonths: c.Engine.TickMonths, NarrationTimeout: c.Narration.Timeout}
	if c.Engine.Seed != 0 {
		cfg.Rand = game.NewSeededRand(c.Engine.Seed)
	}
	return cfg
}
