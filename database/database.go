package database

import (
	"context"
	"fmt"

	"github.com/gastromatic/sqlstate"
	"github.com/gastromatic/sqlstate/database/postgres"
	"github.com/gastromatic/sqlstate/database/sqlite"
)

// Config holds the configuration for building a reflected state.
type Config struct {
	// Type specifies the backend: "postgres" or "sqlite"
	Type string `mapstructure:"type"`
	// DSN is the data source name (connection string or sqlite file path)
	DSN string `mapstructure:"dsn"`
	// Schemas maps caller-chosen attribute names to schema names to reflect
	Schemas map[string]string `mapstructure:"schemas"`
}

// Open connects to the configured backend, reflects the requested schemas,
// and returns a ready State. The returned cleanup function closes the
// engine.
func Open(ctx context.Context, cfg Config) (*sqlstate.State, func(), error) {
	var (
		state *sqlstate.State
		err   error
	)

	switch cfg.Type {
	case "postgres":
		state, err = postgres.Open(ctx, cfg.DSN, cfg.Schemas)
	case "sqlite":
		state, err = sqlite.Open(ctx, cfg.DSN, cfg.Schemas)
	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() { _ = state.Close() }
	return state, cleanup, nil
}
