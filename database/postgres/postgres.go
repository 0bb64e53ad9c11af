// Package postgres builds reflected sqlstate states over PostgreSQL, in a
// blocking database/sql variant and a pgx pool variant.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver

	"github.com/gastromatic/sqlstate"
)

// Open connects to postgres through the pgx database/sql driver, reflects
// each requested schema, and returns a ready State. The schemas map goes
// from caller-chosen attribute name to the database schema to reflect.
//
// Reflection is all or nothing: the first schema that fails closes the
// engine and returns the error, so callers never see a partially
// populated State.
func Open(ctx context.Context, dsn string, schemas map[string]string) (*sqlstate.State, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	ns, err := reflectNamespace(schemas, func(schema string) ([]*sqlstate.Table, error) {
		return reflectSchemaDB(ctx, db, schema)
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return sqlstate.NewState(db, ns), nil
}

// OpenConfig validates the config, builds its DSN, and calls Open.
func OpenConfig(ctx context.Context, cfg sqlstate.Config, schemas map[string]string) (*sqlstate.State, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return Open(ctx, cfg.ConnString(), schemas)
}

// reflectNamespace reflects every requested schema with the given reflector
// and builds the namespace. Attribute names are validated; schema names are
// trusted and only ever passed as query parameters. Fails on the first
// error.
func reflectNamespace(schemas map[string]string, reflect func(string) ([]*sqlstate.Table, error)) (sqlstate.Namespace, error) {
	ns := make(sqlstate.Namespace, len(schemas))
	for attr, schema := range schemas {
		if !sqlstate.IsValidIdentifier(attr) {
			return nil, fmt.Errorf("attribute %q: %w", attr, sqlstate.ErrInvalidIdentifier)
		}

		tables, err := reflect(schema)
		if err != nil {
			return nil, err
		}
		ns[attr] = sqlstate.NewSchema(schema, tables)
	}
	return ns, nil
}
