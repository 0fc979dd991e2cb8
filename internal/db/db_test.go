package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateRoundTrip(t *testing.T) {
	conn, err := Init("sqlite", filepath.Join(t.TempDir(), "nested", "stock.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, conn.DB, "sqlite", Up))
	require.NoError(t, Migrate(ctx, conn.DB, "sqlite", Up), "up is idempotent")

	var tables int
	require.NoError(t, conn.Get(&tables, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name LIKE '%_values'`))
	assert.Equal(t, 8, tables)

	require.NoError(t, Migrate(ctx, conn.DB, "sqlite", Status))
	require.NoError(t, Migrate(ctx, conn.DB, "sqlite", Down))

	require.NoError(t, conn.Get(&tables, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'attributes'`))
	assert.Equal(t, 0, tables)
}

func TestMigrateRejectsUnknownInput(t *testing.T) {
	conn := SetupTestDB(t)
	assert.ErrorContains(t, Migrate(context.Background(), conn.DB, "mysql", Up), "no migration dialect")
	assert.ErrorContains(t, Migrate(context.Background(), conn.DB, "sqlite", "sideways"), "unknown migration direction")
}

func TestForeignKeysEnforced(t *testing.T) {
	conn := SetupTestDB(t)
	_, err := conn.Exec(`INSERT INTO asset_instances (id, asset_id, label, trash_bin, created_at, updated_at)
		VALUES ('i-1', 'no-such-asset', 'x', FALSE, '2024-01-01', '2024-01-01')`)
	assert.Error(t, err)
}

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{":memory:", ":memory:?_pragma=foreign_keys(1)"},
		{"./data/stock.db", "./data/stock.db?_pragma=foreign_keys(1)"},
		{"file:stock.db?_pragma=busy_timeout(5000)", "file:stock.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"},
		{"stock.db?_pragma=foreign_keys(0)", "stock.db?_pragma=foreign_keys(0)"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sqliteDSN(tt.in))
		})
	}
}

func TestForeignKeysOnEveryConnection(t *testing.T) {
	conn, err := Init("sqlite", filepath.Join(t.TempDir(), "stock.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	// no idle connections, so each query opens a fresh one
	conn.SetMaxIdleConns(0)
	for range 3 {
		var enabled int
		require.NoError(t, conn.Get(&enabled, "PRAGMA foreign_keys"))
		assert.Equal(t, 1, enabled)
	}
}
