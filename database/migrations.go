package database

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

//go:embed migrations
var migrationsFS embed.FS

// MigrationsTempDir copies the embedded migrations of one sql dialect (mysql, postgres or
// sqlite3) into a new temporary directory and returns its path, so the binary can migrate without
// shipping the sql files separately.
//
// The caller removes the directory when it is done with it.
func MigrationsTempDir(dialect string) (string, error) {
	mFS, err := fs.Sub(migrationsFS, path.Join("migrations", dialect))
	if err != nil {
		return "", err
	}

	entries, err := fs.ReadDir(mFS, ".")
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("no migrations for dialect %s", dialect)
	}

	tmpDir, err := os.MkdirTemp("", "sentinel-migrations-*")
	if err != nil {
		return "", err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		content, err := fs.ReadFile(mFS, entry.Name())
		if err != nil {
			os.RemoveAll(tmpDir)
			return "", err
		}

		dst := filepath.Join(tmpDir, entry.Name())
		if err := os.WriteFile(dst, content, 0600); err != nil {
			os.RemoveAll(tmpDir)
			return "", fmt.Errorf("failed to write %q: %w", dst, err)
		}
	}

	return tmpDir, nil
}
