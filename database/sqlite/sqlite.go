// Package sqlite builds reflected sqlstate states over SQLite using the
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/gastromatic/sqlstate"
)

// MainSchema is the only schema a SQLite database exposes for reflection.
const MainSchema = "main"

const tablesQuery = `
	SELECT name, type
	FROM sqlite_master
	WHERE type IN ('table', 'view')
		AND name NOT LIKE 'sqlite_%'
	ORDER BY name
`

// Open opens a SQLite database, reflects the requested schemas, and
// returns a ready State. SQLite has no named schemas beyond "main", so
// every requested schema must be "main"; anything else fails with
// ErrSchemaNotFound. Like the postgres builder, reflection is all or
// nothing.
func Open(ctx context.Context, dsn string, schemas map[string]string) (*sqlstate.State, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	ns := make(sqlstate.Namespace, len(schemas))
	for attr, schema := range schemas {
		if !sqlstate.IsValidIdentifier(attr) {
			_ = db.Close()
			return nil, fmt.Errorf("attribute %q: %w", attr, sqlstate.ErrInvalidIdentifier)
		}
		if schema != MainSchema {
			_ = db.Close()
			return nil, fmt.Errorf("reflect schema %s: %w", schema, sqlstate.ErrSchemaNotFound)
		}

		tables, err := reflectMain(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		ns[attr] = sqlstate.NewSchema(schema, tables)
	}

	return sqlstate.NewState(db, ns), nil
}

// reflectMain lists tables and views from sqlite_master and describes each
// through PRAGMA table_info.
func reflectMain(ctx context.Context, db *sql.DB) ([]*sqlstate.Table, error) {
	rows, err := db.QueryContext(ctx, tablesQuery)
	if err != nil {
		return nil, fmt.Errorf("reflect main: query tables: %w", err)
	}

	type tableRow struct {
		name string
		typ  string
	}
	var tableRows []tableRow
	for rows.Next() {
		var tr tableRow
		if err := rows.Scan(&tr.name, &tr.typ); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("reflect main: scan table: %w", err)
		}
		tableRows = append(tableRows, tr)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("reflect main: tables: %w", err)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("reflect main: tables: %w", err)
	}

	tables := make([]*sqlstate.Table, 0, len(tableRows))
	for _, tr := range tableRows {
		columns, err := describeTable(ctx, db, tr.name)
		if err != nil {
			return nil, err
		}
		tables = append(tables, &sqlstate.Table{
			Name:    tr.name,
			IsView:  tr.typ == "view",
			Dialect: sqlstate.DialectSQLite,
			Columns: columns,
		})
	}

	sort.Slice(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })
	return tables, nil
}

// describeTable reads one table's columns through PRAGMA table_info. The
// table name comes from sqlite_master and is trusted; it only needs SQL
// quoting because PRAGMA arguments cannot be bound.
func describeTable(ctx context.Context, db *sql.DB, tableName string) ([]sqlstate.Column, error) {
	query := `PRAGMA table_info(` + sqlstate.QuoteIdentifier(tableName) + `)`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("describe table %s: %w", tableName, err)
	}
	defer func() { _ = rows.Close() }()

	var columns []sqlstate.Column
	for rows.Next() {
		var cid, notNull, pk int
		var name, dataType string
		var dfltValue sql.NullString

		if err := rows.Scan(&cid, &name, &dataType, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("describe table %s: scan column: %w", tableName, err)
		}

		col := sqlstate.Column{
			Name:         name,
			DataType:     dataType,
			Nullable:     notNull == 0,
			Position:     cid + 1,
			IsPrimaryKey: pk > 0,
		}
		if dfltValue.Valid {
			col.Default = &dfltValue.String
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("describe table %s: rows error: %w", tableName, err)
	}

	return columns, nil
}
