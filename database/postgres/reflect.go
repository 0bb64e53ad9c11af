package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gastromatic/sqlstate"
)

// Reflection reads the information_schema catalog views, so it sees both
// tables and views and works for any schema the connecting role can read.

const schemaExistsQuery = `
	SELECT EXISTS (
		SELECT 1
		FROM information_schema.schemata
		WHERE schema_name = $1
	)
`

const tablesQuery = `
	SELECT table_name, table_type
	FROM information_schema.tables
	WHERE table_schema = $1
	ORDER BY table_name
`

const columnsQuery = `
	SELECT table_name, column_name, data_type, is_nullable, column_default, ordinal_position
	FROM information_schema.columns
	WHERE table_schema = $1
	ORDER BY table_name, ordinal_position
`

const primaryKeysQuery = `
	SELECT tc.table_name, kcu.column_name
	FROM information_schema.table_constraints tc
	JOIN information_schema.key_column_usage kcu
		ON tc.constraint_name = kcu.constraint_name
		AND tc.table_schema = kcu.table_schema
	WHERE tc.table_schema = $1
		AND tc.constraint_type = 'PRIMARY KEY'
`

type tableRow struct {
	name      string
	tableType string
}

type columnRow struct {
	table    string
	name     string
	dataType string
	nullable bool
	def      *string
	position int
}

type pkRow struct {
	table  string
	column string
}

// assembleTables joins the three catalog result sets into reflected tables
// sorted by name.
func assembleTables(schema string, tables []tableRow, columns []columnRow, pks []pkRow) []*sqlstate.Table {
	byName := make(map[string]*sqlstate.Table, len(tables))
	for _, tr := range tables {
		byName[tr.name] = &sqlstate.Table{
			Schema:  schema,
			Name:    tr.name,
			IsView:  tr.tableType == "VIEW",
			Dialect: sqlstate.DialectPostgres,
		}
	}

	pkCols := make(map[string]map[string]bool, len(pks))
	for _, pk := range pks {
		if pkCols[pk.table] == nil {
			pkCols[pk.table] = make(map[string]bool)
		}
		pkCols[pk.table][pk.column] = true
	}

	for _, cr := range columns {
		t, ok := byName[cr.table]
		if !ok {
			continue
		}
		t.Columns = append(t.Columns, sqlstate.Column{
			Name:         cr.name,
			DataType:     cr.dataType,
			Nullable:     cr.nullable,
			Default:      cr.def,
			Position:     cr.position,
			IsPrimaryKey: pkCols[cr.table][cr.name],
		})
	}

	out := make([]*sqlstate.Table, 0, len(byName))
	for _, t := range byName {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// reflectSchemaDB reflects one schema through a database/sql engine.
func reflectSchemaDB(ctx context.Context, db *sql.DB, schema string) ([]*sqlstate.Table, error) {
	var exists bool
	if err := db.QueryRowContext(ctx, schemaExistsQuery, schema).Scan(&exists); err != nil {
		return nil, fmt.Errorf("reflect schema %s: check schema: %w", schema, err)
	}
	if !exists {
		return nil, fmt.Errorf("reflect schema %s: %w", schema, sqlstate.ErrSchemaNotFound)
	}

	var tables []tableRow
	rows, err := db.QueryContext(ctx, tablesQuery, schema)
	if err != nil {
		return nil, fmt.Errorf("reflect schema %s: query tables: %w", schema, err)
	}
	for rows.Next() {
		var tr tableRow
		if err := rows.Scan(&tr.name, &tr.tableType); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("reflect schema %s: scan table: %w", schema, err)
		}
		tables = append(tables, tr)
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("reflect schema %s: tables: %w", schema, err)
	}

	var columns []columnRow
	rows, err = db.QueryContext(ctx, columnsQuery, schema)
	if err != nil {
		return nil, fmt.Errorf("reflect schema %s: query columns: %w", schema, err)
	}
	for rows.Next() {
		var cr columnRow
		var nullable string
		var def sql.NullString
		if err := rows.Scan(&cr.table, &cr.name, &cr.dataType, &nullable, &def, &cr.position); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("reflect schema %s: scan column: %w", schema, err)
		}
		cr.nullable = nullable == "YES"
		if def.Valid {
			cr.def = &def.String
		}
		columns = append(columns, cr)
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("reflect schema %s: columns: %w", schema, err)
	}

	var pks []pkRow
	rows, err = db.QueryContext(ctx, primaryKeysQuery, schema)
	if err != nil {
		return nil, fmt.Errorf("reflect schema %s: query primary keys: %w", schema, err)
	}
	for rows.Next() {
		var pk pkRow
		if err := rows.Scan(&pk.table, &pk.column); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("reflect schema %s: scan primary key: %w", schema, err)
		}
		pks = append(pks, pk)
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("reflect schema %s: primary keys: %w", schema, err)
	}

	return assembleTables(schema, tables, columns, pks), nil
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	return rows.Close()
}

// reflectSchemaPool reflects one schema through a pgx pool. It must produce
// the same tables as reflectSchemaDB for the same schema.
func reflectSchemaPool(ctx context.Context, pool *pgxpool.Pool, schema string) ([]*sqlstate.Table, error) {
	var exists bool
	if err := pool.QueryRow(ctx, schemaExistsQuery, schema).Scan(&exists); err != nil {
		return nil, fmt.Errorf("reflect schema %s: check schema: %w", schema, err)
	}
	if !exists {
		return nil, fmt.Errorf("reflect schema %s: %w", schema, sqlstate.ErrSchemaNotFound)
	}

	var tables []tableRow
	rows, err := pool.Query(ctx, tablesQuery, schema)
	if err != nil {
		return nil, fmt.Errorf("reflect schema %s: query tables: %w", schema, err)
	}
	for rows.Next() {
		var tr tableRow
		if err := rows.Scan(&tr.name, &tr.tableType); err != nil {
			rows.Close()
			return nil, fmt.Errorf("reflect schema %s: scan table: %w", schema, err)
		}
		tables = append(tables, tr)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reflect schema %s: tables: %w", schema, err)
	}

	var columns []columnRow
	rows, err = pool.Query(ctx, columnsQuery, schema)
	if err != nil {
		return nil, fmt.Errorf("reflect schema %s: query columns: %w", schema, err)
	}
	for rows.Next() {
		var cr columnRow
		var nullable string
		if err := rows.Scan(&cr.table, &cr.name, &cr.dataType, &nullable, &cr.def, &cr.position); err != nil {
			rows.Close()
			return nil, fmt.Errorf("reflect schema %s: scan column: %w", schema, err)
		}
		cr.nullable = nullable == "YES"
		columns = append(columns, cr)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reflect schema %s: columns: %w", schema, err)
	}

	var pks []pkRow
	rows, err = pool.Query(ctx, primaryKeysQuery, schema)
	if err != nil {
		return nil, fmt.Errorf("reflect schema %s: query primary keys: %w", schema, err)
	}
	for rows.Next() {
		var pk pkRow
		if err := rows.Scan(&pk.table, &pk.column); err != nil {
			rows.Close()
			return nil, fmt.Errorf("reflect schema %s: scan primary key: %w", schema, err)
		}
		pks = append(pks, pk)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reflect schema %s: primary keys: %w", schema, err)
	}

	return assembleTables(schema, tables, columns, pks), nil
}
