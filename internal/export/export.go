package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"raisingsim/internal/game"
)

type Document struct {
	ExportedAt time.Time   `json:"exported_at"`
	State      *game.State `json:"state"`
}

func Encode(w io.Writer, s *game.State, now time.Time) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Document{ExportedAt: now.UTC(), State: s})
}

func Filename(now time.Time) string {
	return fmt.Sprintf("raising-sim-export-%s.json", now.UTC().Format("20060102-150405"))
}

func WriteFile(path string, s *game.State, now time.Time) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if err := Encode(f, s, now); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
