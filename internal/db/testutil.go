package db

import (
	"testing"

	"github.com/jmoiron/sqlx"
)

// SetupTestDB opens an in-memory SQLite database with every migration applied.
// The connection is closed when the test finishes.
func SetupTestDB(t testing.TB) *sqlx.DB {
	t.Helper()

	db, err := Init("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close DB: %v", err)
		}
	})

	if err := RunMigrations(db.DB, "sqlite"); err != nil {
		t.Fatalf("Failed to migrate tables: %v", err)
	}

	return db
}
