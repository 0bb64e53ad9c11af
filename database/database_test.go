package database_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/gastromatic/sqlstate"
	"github.com/gastromatic/sqlstate/database"
)

func seedSQLite(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "facade.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = db.Exec(`CREATE TABLE widgets (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`)
	require.NoError(t, err)

	return path
}

func TestOpen_SQLite(t *testing.T) {
	path := seedSQLite(t)

	state, cleanup, err := database.Open(context.Background(), database.Config{
		Type:    "sqlite",
		DSN:     path,
		Schemas: map[string]string{"core": "main"},
	})
	require.NoError(t, err)
	defer cleanup()

	core, err := state.S().Schema("core")
	require.NoError(t, err)
	assert.Equal(t, []string{"widgets"}, core.TableNames())
}

func TestOpen_UnsupportedType(t *testing.T) {
	_, _, err := database.Open(context.Background(), database.Config{Type: "oracle"})
	assert.ErrorContains(t, err, "unsupported database type")
}

func TestOpen_UnknownSchema(t *testing.T) {
	path := seedSQLite(t)

	_, _, err := database.Open(context.Background(), database.Config{
		Type:    "sqlite",
		DSN:     path,
		Schemas: map[string]string{"core": "billing"},
	})
	assert.ErrorIs(t, err, sqlstate.ErrSchemaNotFound)
}
