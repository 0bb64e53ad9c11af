package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gastromatic/sqlstate"
	"github.com/gastromatic/sqlstate/config"
	"github.com/gastromatic/sqlstate/database"
	"github.com/gastromatic/sqlstate/profile"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "sqlstate",
	Short:   "Inspect reflected database schemas",
	Long: `Sqlstate reflects existing database schemas and exposes the
reflected tables for inspection, SQL generation, and a read-only
schema-browser API.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		setupLogging(cfg.Log.Level)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("profile", "", "connection profile name (env: SQLSTATE_PROFILE)")
	rootCmd.PersistentFlags().String("db-type", "", "database type: sqlite, postgres (env: SQLSTATE_DATABASE_TYPE)")
	rootCmd.PersistentFlags().String("db-dsn", "", "database connection string (env: SQLSTATE_DATABASE_DSN)")
	rootCmd.PersistentFlags().StringToString("schema", nil, "schemas to reflect as name=schema pairs")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON instead of tables")
}

// loadConfig loads the layered configuration and overlays the selected
// connection profile, if any.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var files []string
	if configFile, _ := cmd.Flags().GetString("config"); configFile != "" {
		files = append(files, configFile)
	}

	cfg, err := config.Load(files, cmd.Flags())
	if err != nil {
		return nil, err
	}

	name, _ := cmd.Flags().GetString("profile")
	if name == "" {
		name = os.Getenv("SQLSTATE_PROFILE")
	}
	if name == "" {
		return cfg, nil
	}

	path, err := profile.DefaultPath()
	if err != nil {
		return nil, err
	}
	profiles, err := profile.Load(path)
	if err != nil {
		return nil, err
	}
	p, err := profiles.Get(name)
	if err != nil {
		return nil, err
	}

	cfg.Database.Type = p.Type
	cfg.Database.DSN = p.ConnString()
	if len(p.Schemas) > 0 {
		cfg.Database.Schemas = p.Schemas
	}
	return cfg, nil
}

// openState builds the reflected state from the loaded configuration.
func openState(cmd *cobra.Command) (*sqlstate.State, func(), error) {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return nil, nil, err
	}

	return database.Open(cmd.Context(), database.Config{
		Type:    cfg.Database.Type,
		DSN:     cfg.Database.ConnString(),
		Schemas: cfg.Database.Schemas,
	})
}

func main() {
	rootCmd.SetContext(context.Background())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
