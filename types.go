package sqlstate

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// TLSConfig holds the file paths for verify-ca client TLS. All three files
// must exist when the config is validated.
type TLSConfig struct {
	ServerCA   string `mapstructure:"server_ca" validate:"required,file"`
	ClientCert string `mapstructure:"client_cert" validate:"required,file"`
	ClientKey  string `mapstructure:"client_key" validate:"required,file"`
}

// ConnectArgs returns the DSN query parameters for verify-ca TLS.
func (t TLSConfig) ConnectArgs() url.Values {
	return url.Values{
		"sslmode":     {"verify-ca"},
		"sslrootcert": {t.ServerCA},
		"sslcert":     {t.ClientCert},
		"sslkey":      {t.ClientKey},
	}
}

// Config is an immutable record of connection parameters. It carries no
// connection state; it only knows how to render itself as a DSN. Opening
// the engine is where connectivity failures surface.
type Config struct {
	Host     string     `mapstructure:"host" validate:"required"`
	Port     int        `mapstructure:"port" validate:"required,min=1,max=65535"`
	Database string     `mapstructure:"database" validate:"required"`
	Username string     `mapstructure:"username" validate:"required"`
	Password string     `mapstructure:"password"`
	TLS      *TLSConfig `mapstructure:"tls"`
}

// Validate checks the config fields, including that TLS file paths exist
// when TLS is configured.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

// ConnString renders the config as a postgres:// URL, including TLS
// connect args when configured.
func (c Config) ConnString() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Database,
	}
	if c.TLS != nil {
		u.RawQuery = c.TLS.ConnectArgs().Encode()
	}
	return u.String()
}

var validIdentifierRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidIdentifier checks if a caller-chosen attribute name is valid
// (lowercase, alphanumeric with underscores, max 63 chars). Names read
// back from a database catalog are not subject to this rule.
func IsValidIdentifier(name string) bool {
	return validIdentifierRegex.MatchString(name) && len(name) <= 63
}

// QuoteIdentifier double-quotes an identifier for use in generated SQL,
// escaping embedded quotes. Both postgres and sqlite accept this form.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
