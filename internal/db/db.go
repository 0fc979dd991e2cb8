package db

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

// Init opens the store for driver ("sqlite" or "pgx") and verifies it.
func Init(driver, connection string) (*sqlx.DB, error) {
	if driver == "sqlite" && !isMemory(connection) {
		dir := filepath.Dir(strings.TrimPrefix(connection, "file:"))
		err := os.MkdirAll(dir, 0755)
		if err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	if driver == "sqlite" {
		connection = sqliteDSN(connection)
	}

	db, err := sqlx.Connect(driver, connection)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	if driver == "sqlite" {
		// SQLite has a single writer; in-memory databases also live per connection.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	slog.Info("database connected", "driver", driver)

	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func Close(db *sqlx.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}

// sqliteDSN adds the foreign_keys pragma so the driver applies it to every
// connection it opens, not only the first one.
func sqliteDSN(connection string) string {
	if strings.Contains(connection, "foreign_keys") {
		return connection
	}
	sep := "?"
	if strings.Contains(connection, "?") {
		sep = "&"
	}
	return connection + sep + "_pragma=foreign_keys(1)"
}

func isMemory(connection string) bool {
	return connection == ":memory:" || strings.Contains(connection, "mode=memory") || strings.HasPrefix(connection, "file::memory:")
}
