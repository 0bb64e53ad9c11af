// Package config provides configuration loading and validation for the
// sqlstate CLI and server.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (SQLSTATE_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with SQLSTATE_ prefix:
//   - server.port → SQLSTATE_SERVER_PORT
//   - database.type → SQLSTATE_DATABASE_TYPE
//   - log.level → SQLSTATE_LOG_LEVEL
//
// # Configuration Structure
//
// The Config struct contains:
//   - Database: backend type, DSN or connection fields, TLS material, and
//     the schemas to reflect (attribute name → schema name)
//   - Server: port for the schema-browser API
//   - CORS: cross-origin resource sharing settings
//   - Log: logging level
//
// # Validation
//
// Configuration is validated using struct tags plus cross-field rules:
//   - Type must be postgres or sqlite
//   - Ports must be 1-65535
//   - Postgres needs a DSN or full connection fields; sqlite needs a path
//   - Log level must be debug, info, warn, or error
package config
