// Package sqlstate reflects existing database schemas and exposes the
// reflected tables as a navigable namespace with scoped connection
// acquisition.
//
// Sqlstate does not implement a query engine, a connection pool, a
// transaction manager, or migrations. The underlying driver owns all of
// that; this package only builds a connection configuration, opens an
// engine, reflects catalog metadata once at construction time, and wraps
// the result so callers can navigate schema -> table -> column by name.
//
// # Key Components
//
//   - Config: immutable connection parameters used to build a DSN
//   - State: engine handle plus reflected namespace, built once at startup
//   - Namespace / Schema / Table / Column: the reflected catalog
//   - Conn: a scoped connection acquired from the State's engine
//
// # Example Usage
//
//	cfg := sqlstate.Config{
//	    Host:     "localhost",
//	    Port:     5432,
//	    Database: "app",
//	    Username: "app",
//	    Password: "secret",
//	}
//
//	state, err := postgres.OpenConfig(ctx, cfg, map[string]string{
//	    "core": "public",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer state.Close()
//
//	core, err := state.S().Schema("core")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	users, err := core.Table("users")
//
// See the database package for the backend facade and the database/postgres
// and database/sqlite packages for the reflectors.
package sqlstate
