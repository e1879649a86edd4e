package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grievance/internal/platform/config"
)

func TestOpenAndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "grievance.db")
	db, err := Open(config.DatabaseConfig{URL: "file:" + path, MaxConnections: 2})
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	applied, err := Migrate(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_init.sql"}, applied)

	for _, table := range []string{"organizations", "users", "complaints", "audit_logs"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}

	applied, err = Migrate(ctx, db)
	require.NoError(t, err)
	assert.Empty(t, applied, "second run applies nothing")
}

func TestOpen_Memory(t *testing.T) {
	db, err := Open(config.DatabaseConfig{URL: ":memory:", MaxConnections: 10})
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, 1, db.Stats().MaxOpenConnections)
}
