package database

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*/*.sql
var migrationsFS embed.FS

// dialectMap maps database types to Goose dialect names
var dialectMap = map[string]string{
	TypeSQLite:   "sqlite3",
	TypePostgres: "postgres",
}

// goose keeps dialect and filesystem in package globals
var gooseMu sync.Mutex

// RunMigrations applies the embedded migrations of the given database type
func RunMigrations(db *sql.DB, databaseType string) error {
	dialect, ok := dialectMap[databaseType]
	if !ok {
		return fmt.Errorf("no migrations for database type: %s", databaseType)
	}
	migrationsDir, err := fs.Sub(migrationsFS, "migrations/"+databaseType)
	if err != nil {
		return fmt.Errorf("failed to get migrations directory: %w", err)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	goose.SetBaseFS(migrationsDir)
	goose.SetLogger(goose.NopLogger())

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Debug("migrations completed successfully", "type", databaseType)
	return nil
}
