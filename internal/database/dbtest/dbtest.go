// Package dbtest opens throwaway SQLite databases with the project schema
// applied.
package dbtest

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Open returns an in-memory database with every up migration applied. The
// pool is pinned to one connection since each :memory: connection is a
// separate database.
func Open(t testing.TB) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	for _, file := range upMigrations(t) {
		script, err := os.ReadFile(file)
		if err != nil {
			t.Fatalf("Failed to read migration %s: %v", file, err)
		}
		if _, err := db.Exec(string(script)); err != nil {
			t.Fatalf("Failed to apply migration %s: %v", filepath.Base(file), err)
		}
	}

	return db
}

// MigrationsDir locates the repository's migrations directory from the
// calling package's working directory.
func MigrationsDir(t testing.TB) string {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.Join(dir, "migrations")
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("go.mod not found above working directory")
		}
		dir = parent
	}
}

func upMigrations(t testing.TB) []string {
	files, err := filepath.Glob(filepath.Join(MigrationsDir(t), "*.up.sql"))
	if err != nil {
		t.Fatalf("Failed to list migrations: %v", err)
	}
	if len(files) == 0 {
		t.Fatalf("No migrations found")
	}
	sort.Strings(files)
	return files
}
