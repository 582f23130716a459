package store

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationFS embed.FS

type migration struct {
	version string
	sql     string
}

func migrations(dialect string) ([]migration, error) {
	files, err := fs.Glob(migrationFS, fmt.Sprintf("migrations/%s/*.sql", dialect))
	if err != nil {
		return nil, fmt.Errorf("glob migrations: %w", err)
	}
	sort.Strings(files)
	out := make([]migration, 0, len(files))
	for _, file := range files {
		raw, err := migrationFS.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", file, err)
		}
		out = append(out, migration{version: filepath.Base(file), sql: string(raw)})
	}
	return out, nil
}
