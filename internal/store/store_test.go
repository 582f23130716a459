package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"raisingsim/internal/game"
)

func sampleState(t *testing.T) *game.State {
	t.Helper()
	s := game.NewState()
	if _, err := s.AddCharacter(game.CharacterInput{Name: "Mina", Personality: "ENFP", BirthMonth: 4, BirthDay: 2}); err != nil {
		t.Fatalf("add: %v", err)
	}
	s.Money = 420
	return s
}

func roundTrip(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()
	if _, ok := LoadState(ctx, b, "slot", nil); ok {
		t.Fatalf("expected empty slot to load as absent")
	}

	want := sampleState(t)
	if err := SaveState(ctx, b, "slot", want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok := LoadState(ctx, b, "slot", nil)
	if !ok {
		t.Fatalf("expected saved slot to load")
	}
	if got.Money != 420 || len(got.Characters) != 2 || len(got.Relations) != 2 {
		t.Fatalf("unexpected state money=%d chars=%d rels=%d", got.Money, len(got.Characters), len(got.Relations))
	}
	if got.Characters[1].Zodiac != game.ZodiacAries {
		t.Fatalf("got zodiac %s want Aries", got.Characters[1].Zodiac)
	}

	want.Money = 7
	if err := SaveState(ctx, b, "slot", want); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _ = LoadState(ctx, b, "slot", nil)
	if got.Money != 7 {
		t.Fatalf("overwrite not visible, money=%d", got.Money)
	}

	if err := b.Put(ctx, "broken", []byte("{not json")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, ok := LoadState(ctx, b, "broken", nil); ok {
		t.Fatalf("expected corrupt slot to load as absent")
	}

	if err := b.Delete(ctx, "slot"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := b.Get(ctx, "slot"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v want ErrNotFound", err)
	}
}

func TestMemoryRoundTrip(t *testing.T) {
	roundTrip(t, NewMemory())
}

func TestSQLiteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "save.sqlite")
	b, err := OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer b.Close()
	roundTrip(t, b)
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "save.sqlite")
	b, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := SaveState(ctx, b, DefaultKey, sampleState(t)); err != nil {
		t.Fatalf("save: %v", err)
	}
	b.Close()

	b, err = OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen sqlite: %v", err)
	}
	defer b.Close()
	if _, ok := LoadState(ctx, b, DefaultKey, nil); !ok {
		t.Fatalf("expected data to survive reopen")
	}
}

func TestLoadRejectsEmptyRoster(t *testing.T) {
	b := NewMemory()
	b.Put(context.Background(), "slot", []byte(`{"money":5,"characters":[]}`))
	if _, ok := LoadState(context.Background(), b, "slot", nil); ok {
		t.Fatalf("expected empty roster to load as absent")
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), Options{Driver: "floppy"}, nil); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestPostgresRoundTrip(t *testing.T) {
	url := os.Getenv("RSIM_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("RSIM_TEST_DATABASE_URL not set")
	}
	b, err := OpenPostgres(context.Background(), url, 2)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	defer b.Close()
	roundTrip(t, b)
}

func TestRedisRoundTrip(t *testing.T) {
	addr := os.Getenv("RSIM_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("RSIM_TEST_REDIS_ADDR not set")
	}
	b, err := OpenRedis(context.Background(), addr, "", 0)
	if err != nil {
		t.Fatalf("open redis: %v", err)
	}
	defer b.Close()
	roundTrip(t, b)
}
