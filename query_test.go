package sqlstate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gastromatic/sqlstate"
)

func TestTable_SelectSQL(t *testing.T) {
	table := usersTable()

	sql, err := table.SelectSQL()
	require.NoError(t, err)
	assert.Equal(t, `SELECT "id", "email", "created_at" FROM "public"."users"`, sql)

	sql, err = table.SelectSQL("email")
	require.NoError(t, err)
	assert.Equal(t, `SELECT "email" FROM "public"."users"`, sql)

	_, err = table.SelectSQL("nope")
	assert.ErrorIs(t, err, sqlstate.ErrColumnNotFound)
}

func TestTable_InsertSQL(t *testing.T) {
	table := usersTable()

	sql, err := table.InsertSQL()
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "public"."users" ("id", "email", "created_at") VALUES ($1, $2, $3)`, sql)

	sql, err = table.InsertSQL("email")
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "public"."users" ("email") VALUES ($1)`, sql)
}

func TestTable_UpdateSQL(t *testing.T) {
	table := usersTable()

	sql, err := table.UpdateSQL()
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "public"."users" SET "email" = $1, "created_at" = $2 WHERE "id" = $3`, sql)

	sql, err = table.UpdateSQL("email")
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "public"."users" SET "email" = $1 WHERE "id" = $2`, sql)

	noKey := &sqlstate.Table{Name: "log", Columns: []sqlstate.Column{{Name: "msg"}}}
	_, err = noKey.UpdateSQL()
	assert.ErrorIs(t, err, sqlstate.ErrNoPrimaryKey)
}

func TestTable_UpdateSQL_AllKeyColumns(t *testing.T) {
	join := &sqlstate.Table{
		Schema:  "public",
		Name:    "user_teams",
		Dialect: sqlstate.DialectPostgres,
		Columns: []sqlstate.Column{
			{Name: "user_id", DataType: "uuid", Position: 1, IsPrimaryKey: true},
			{Name: "team_id", DataType: "uuid", Position: 2, IsPrimaryKey: true},
		},
	}

	_, err := join.UpdateSQL()
	assert.ErrorContains(t, err, "no updatable columns")

	// Explicitly naming a key column still works.
	sql, err := join.UpdateSQL("team_id")
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "public"."user_teams" SET "team_id" = $1 WHERE "user_id" = $2 AND "team_id" = $3`, sql)
}

func TestTable_DeleteSQL(t *testing.T) {
	table := usersTable()

	sql, err := table.DeleteSQL()
	require.NoError(t, err)
	assert.Equal(t, `DELETE FROM "public"."users" WHERE "id" = $1`, sql)

	noKey := &sqlstate.Table{Name: "log"}
	_, err = noKey.DeleteSQL()
	assert.ErrorIs(t, err, sqlstate.ErrNoPrimaryKey)
}

func TestTable_SQLite_Placeholders(t *testing.T) {
	table := &sqlstate.Table{
		Name:    "users",
		Dialect: sqlstate.DialectSQLite,
		Columns: []sqlstate.Column{
			{Name: "id", DataType: "integer", Position: 1, IsPrimaryKey: true},
			{Name: "email", DataType: "text", Position: 2},
		},
	}

	sql, err := table.InsertSQL()
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "users" ("id", "email") VALUES (?, ?)`, sql)

	sql, err = table.UpdateSQL()
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "users" SET "email" = ? WHERE "id" = ?`, sql)
}

func TestTable_CompositePrimaryKey(t *testing.T) {
	table := &sqlstate.Table{
		Schema:  "public",
		Name:    "memberships",
		Dialect: sqlstate.DialectPostgres,
		Columns: []sqlstate.Column{
			{Name: "user_id", DataType: "uuid", Position: 1, IsPrimaryKey: true},
			{Name: "team_id", DataType: "uuid", Position: 2, IsPrimaryKey: true},
			{Name: "role", DataType: "text", Position: 3},
		},
	}

	sql, err := table.DeleteSQL()
	require.NoError(t, err)
	assert.Equal(t, `DELETE FROM "public"."memberships" WHERE "user_id" = $1 AND "team_id" = $2`, sql)

	sql, err = table.UpdateSQL()
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "public"."memberships" SET "role" = $1 WHERE "user_id" = $2 AND "team_id" = $3`, sql)
}
