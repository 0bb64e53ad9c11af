// Package profile manages named connection profiles for the sqlstate CLI.
//
// Profiles are stored in ~/.sqlstate/config.yaml and let users switch
// between databases with --profile or SQLSTATE_PROFILE.
package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gastromatic/sqlstate"
)

var (
	// ErrNoProfiles is returned when the config file has no profiles
	ErrNoProfiles = errors.New("no profiles configured")
	// ErrProfileNotFound is returned when the named profile does not exist
	ErrProfileNotFound = errors.New("profile not found")
	// ErrProfileExists is returned when adding a profile whose name is taken
	ErrProfileExists = errors.New("profile already exists")
)

// Profile holds the connection target and schema set for one database.
type Profile struct {
	Name     string            `yaml:"name"`
	Type     string            `yaml:"type"`
	DSN      string            `yaml:"dsn,omitempty"`
	Host     string            `yaml:"host,omitempty"`
	Port     int               `yaml:"port,omitempty"`
	Database string            `yaml:"database,omitempty"`
	Username string            `yaml:"username,omitempty"`
	Password string            `yaml:"password,omitempty"`
	Schemas  map[string]string `yaml:"schemas,omitempty"`
	Default  bool              `yaml:"default,omitempty"`
}

// File holds the full config file structure with multiple profiles.
type File struct {
	Profiles []Profile `yaml:"profiles"`
}

// Get returns the profile by name.
// If name is empty, returns the default profile.
func (f *File) Get(name string) (*Profile, error) {
	if len(f.Profiles) == 0 {
		return nil, ErrNoProfiles
	}

	if name == "" {
		return f.GetDefault()
	}

	for i := range f.Profiles {
		if f.Profiles[i].Name == name {
			return &f.Profiles[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
}

// GetDefault returns the default profile.
// If no profile is marked as default, returns the first profile.
func (f *File) GetDefault() (*Profile, error) {
	if len(f.Profiles) == 0 {
		return nil, ErrNoProfiles
	}

	for i := range f.Profiles {
		if f.Profiles[i].Default {
			return &f.Profiles[i], nil
		}
	}

	return &f.Profiles[0], nil
}

// Add adds a new profile. Returns ErrProfileExists if a profile with the
// same name already exists. Use Update to modify an existing profile.
func (f *File) Add(p Profile) error {
	for i := range f.Profiles {
		if f.Profiles[i].Name == p.Name {
			return fmt.Errorf("%w: %s", ErrProfileExists, p.Name)
		}
	}
	f.Profiles = append(f.Profiles, p)
	return nil
}

// Update updates an existing profile. Returns ErrProfileNotFound if the
// profile doesn't exist. Use Add to create a new profile.
func (f *File) Update(p Profile) error {
	for i := range f.Profiles {
		if f.Profiles[i].Name == p.Name {
			f.Profiles[i] = p
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrProfileNotFound, p.Name)
}

// Remove removes a profile by name.
func (f *File) Remove(name string) error {
	for i := range f.Profiles {
		if f.Profiles[i].Name == name {
			f.Profiles = append(f.Profiles[:i], f.Profiles[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
}

// SetDefault sets the default profile by name.
// Clears the default flag from all other profiles.
func (f *File) SetDefault(name string) error {
	found := false
	for i := range f.Profiles {
		if f.Profiles[i].Name == name {
			f.Profiles[i].Default = true
			found = true
		} else {
			f.Profiles[i].Default = false
		}
	}

	if !found {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return nil
}

// Names returns a list of all profile names.
func (f *File) Names() []string {
	names := make([]string, len(f.Profiles))
	for i := range f.Profiles {
		names[i] = f.Profiles[i].Name
	}
	return names
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".sqlstate", "config.yaml"), nil
}

// Load reads the config file at path. A missing file yields an empty File.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("read profile config: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse profile config: %w", err)
	}
	return &f, nil
}

// Save writes the config file at path, creating the parent directory when
// needed. The file is written with owner-only permissions because it can
// contain credentials.
func Save(path string, f *File) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create profile config directory: %w", err)
	}

	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode profile config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write profile config: %w", err)
	}
	return nil
}

// ConnString renders the profile's connection target as a DSN. Sqlite
// profiles carry an explicit DSN; postgres profiles may instead carry the
// individual connection fields.
func (p *Profile) ConnString() string {
	if p.DSN != "" {
		return p.DSN
	}
	return sqlstate.Config{
		Host:     p.Host,
		Port:     p.Port,
		Database: p.Database,
		Username: p.Username,
		Password: p.Password,
	}.ConnString()
}
