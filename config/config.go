package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/gastromatic/sqlstate"
	sqlstatehttp "github.com/gastromatic/sqlstate/http"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for sqlstate.
type Config struct {
	Database DatabaseConfig          `mapstructure:"database"`
	Server   ServerConfig            `mapstructure:"server"`
	CORS     sqlstatehttp.CORSConfig `mapstructure:"cors"`
	Log      LogConfig               `mapstructure:"log"`
}

// DatabaseConfig holds the connection target and the schemas to reflect.
// Either a full DSN or the individual connection fields can be given; a
// non-empty DSN wins.
type DatabaseConfig struct {
	Type     string              `mapstructure:"type" validate:"required,oneof=postgres sqlite"`
	DSN      string              `mapstructure:"dsn"`
	Host     string              `mapstructure:"host"`
	Port     int                 `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Database string              `mapstructure:"database"`
	Username string              `mapstructure:"username"`
	Password string              `mapstructure:"password"`
	TLS      *sqlstate.TLSConfig `mapstructure:"tls"`
	Schemas  map[string]string   `mapstructure:"schemas"`
}

// ConnString returns the DSN, building it from the connection fields when
// no explicit DSN is configured.
func (c DatabaseConfig) ConnString() string {
	if c.DSN != "" {
		return c.DSN
	}
	return sqlstate.Config{
		Host:     c.Host,
		Port:     c.Port,
		Database: c.Database,
		Username: c.Username,
		Password: c.Password,
		TLS:      c.TLS,
	}.ConnString()
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"db-type": "database.type",
	"db-dsn":  "database.dsn",
	"schema":  "database.schemas",
	"port":    "server.port",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		// Use custom mapping if it exists, otherwise use flag name as-is
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5712)

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "sqlstate.db")
	v.SetDefault("database.schemas", map[string]string{"main": "main"})

	v.SetDefault("log.level", "info")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("SQLSTATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if err := validateDatabase(cfg.Database); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validateDatabase checks the cross-field rules the struct tags cannot
// express: postgres needs a DSN or full connection fields, sqlite needs a
// file path.
func validateDatabase(db DatabaseConfig) error {
	switch db.Type {
	case "postgres":
		if db.DSN == "" && (db.Host == "" || db.Port == 0 || db.Database == "" || db.Username == "") {
			return errors.New("validate config: postgres requires dsn or host, port, database and username")
		}
	case "sqlite":
		if db.DSN == "" {
			return errors.New("validate config: sqlite requires dsn")
		}
	}
	return nil
}
