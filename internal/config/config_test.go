package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.Engine.TickMonths != 2 || cfg.Store.Driver != "sqlite" || cfg.Narration.Provider != "none" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.NewGameSettings().NarrationEnabled {
		t.Fatalf("narration should be off by default")
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rsim.yaml")
	body := strings.Join([]string{
		"addr: \":9000\"",
		"log_level: debug",
		"engine:",
		"  tick_months: 1",
		"store:",
		"  driver: memory",
		"narration:",
		"  provider: http",
		"  endpoint: http://worker.local/narrate",
		"  timeout: 3s",
	}, "\n")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("RSIM_TICK_MONTHS", "2")
	t.Setenv("RSIM_STORE_DRIVER", "Redis")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9000" || cfg.Narration.Timeout != 3*time.Second || cfg.Narration.Provider != "http" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Engine.TickMonths != 2 || cfg.Store.Driver != "redis" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	settings := cfg.NewGameSettings()
	if !settings.NarrationEnabled || settings.Endpoint != "http://worker.local/narrate" {
		t.Fatalf("unexpected settings %+v", settings)
	}
	if cfg.SlogLevel().String() != "DEBUG" {
		t.Fatalf("got level %s", cfg.SlogLevel())
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"RSIM_TICK_MONTHS", "3"},
		{"RSIM_STORE_DRIVER", "floppy"},
		{"RSIM_STORE_DRIVER", "postgres"},
		{"RSIM_NARRATION_PROVIDER", "oracle"},
	}
	for _, tc := range tests {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "")
			t.Setenv(tc.key, tc.value)
			if _, err := Load(""); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestPortOverridesAddr(t *testing.T) {
	t.Setenv("PORT", "7000")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7000" {
		t.Fatalf("got addr %q", cfg.Addr)
	}
}
