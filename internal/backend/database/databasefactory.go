package database

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// driverMap maps configured database types to database/sql driver names
var driverMap = map[string]string{
	TypeSQLite:   "sqlite",
	TypePostgres: "pgx",
}

func NewDatabase(databaseType, connectionString string) (DatabaseService, error) {
	driver, ok := driverMap[databaseType]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver: %s", databaseType)
	}

	if databaseType == TypeSQLite && !isInMemory(connectionString) {
		if err := os.MkdirAll(filepath.Dir(connectionString), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sqlx.Connect(driver, connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	if databaseType == TypeSQLite {
		// one connection keeps :memory: databases alive and serialises writers
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}
	slog.Info("database connected", "type", databaseType, "driver", driver)

	// Ensure database schema exists (idempotent), important for in-memory SQLite
	if err := RunMigrations(db.DB, databaseType); err != nil {
		_ = db.Close()
		return nil, err
	}

	return newSQLDatabase(db), nil
}

func isInMemory(connectionString string) bool {
	return connectionString == ":memory:" || strings.Contains(connectionString, "mode=memory")
}
