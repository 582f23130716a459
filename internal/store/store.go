package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"raisingsim/internal/game"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"

	DefaultKey = "raising_sim_save_v2"
)

var ErrNotFound = errors.New("save slot not found")

// Backend stores opaque blobs by key.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, blob []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

type Options struct {
	Driver        string
	SQLitePath    string
	DatabaseURL   string
	MaxConns      int32
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func Open(ctx context.Context, opts Options, logger *slog.Logger) (Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	driver := strings.ToLower(strings.TrimSpace(opts.Driver))
	var (
		b   Backend
		err error
	)
	switch driver {
	case DriverMemory:
		b = NewMemory()
	case "", DriverSQLite:
		driver = DriverSQLite
		b, err = OpenSQLite(ctx, opts.SQLitePath)
	case DriverPostgres:
		b, err = OpenPostgres(ctx, opts.DatabaseURL, opts.MaxConns)
	case DriverRedis:
		b, err = OpenRedis(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", opts.Driver)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("save store ready", "driver", driver)
	return b, nil
}

func SaveState(ctx context.Context, b Backend, key string, s *game.State) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := b.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// LoadState returns the saved state for key, or false when the slot is absent,
// unreadable or corrupt. It never returns an error.
func LoadState(ctx context.Context, b Backend, key string, logger *slog.Logger) (*game.State, bool) {
	if logger == nil {
		logger = slog.Default()
	}
	raw, err := b.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Warn("load save slot failed", "key", key, "err", err)
		}
		return nil, false
	}
	var s game.State
	if err := json.Unmarshal(raw, &s); err != nil {
		logger.Warn("save slot is corrupt", "key", key, "err", err)
		return nil, false
	}
	if len(s.Characters) == 0 {
		logger.Warn("save slot has no characters", "key", key)
		return nil, false
	}
	s.Normalize()
	return &s, true
}
