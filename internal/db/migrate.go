package db

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/pressly/goose/v3"
)

// Direction selects what Migrate does.
type Direction string

const (
	Up     Direction = "up"
	Down   Direction = "down"
	Status Direction = "status"
)

var dialects = map[string]goose.Dialect{
	"sqlite": goose.DialectSQLite3,
	"pgx":    goose.DialectPostgres,
}

// goose keeps its dialect and base FS in package state.
var gooseMu sync.Mutex

// Migrate applies, rolls back or reports the embedded migrations.
// Down rolls back a single version.
func Migrate(ctx context.Context, db *sql.DB, driver string, dir Direction) error {
	dialect, ok := dialects[driver]
	if !ok {
		return fmt.Errorf("no migration dialect for driver %q", driver)
	}

	migrations, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	err = goose.SetDialect(string(dialect))
	if err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	switch dir {
	case Up:
		err = goose.UpContext(ctx, db, ".")
	case Down:
		err = goose.DownContext(ctx, db, ".")
	case Status:
		err = goose.StatusContext(ctx, db, ".")
	default:
		return fmt.Errorf("unknown migration direction %q", dir)
	}
	if err != nil {
		return fmt.Errorf("failed to migrate %s: %w", dir, err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	slog.Info("migrations finished", "direction", dir, "driver", driver, "version", version)
	return nil
}

// RunMigrations applies every pending migration.
func RunMigrations(db *sql.DB, driver string) error {
	return Migrate(context.Background(), db, driver, Up)
}
