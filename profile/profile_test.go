package profile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gastromatic/sqlstate/profile"
)

func sampleFile() *profile.File {
	return &profile.File{Profiles: []profile.Profile{
		{Name: "prod", Type: "postgres", Host: "db.internal", Port: 5432, Database: "app", Username: "svc", Password: "pw", Default: true},
		{Name: "local", Type: "sqlite", DSN: "dev.db"},
	}}
}

func TestFile_Get(t *testing.T) {
	f := sampleFile()

	p, err := f.Get("local")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", p.Type)

	// Empty name resolves the default profile.
	p, err = f.Get("")
	require.NoError(t, err)
	assert.Equal(t, "prod", p.Name)

	_, err = f.Get("staging")
	assert.ErrorIs(t, err, profile.ErrProfileNotFound)

	empty := &profile.File{}
	_, err = empty.Get("")
	assert.ErrorIs(t, err, profile.ErrNoProfiles)
}

func TestFile_GetDefault_FallsBackToFirst(t *testing.T) {
	f := &profile.File{Profiles: []profile.Profile{
		{Name: "a"},
		{Name: "b"},
	}}

	p, err := f.GetDefault()
	require.NoError(t, err)
	assert.Equal(t, "a", p.Name)
}

func TestFile_AddUpdateRemove(t *testing.T) {
	f := sampleFile()

	err := f.Add(profile.Profile{Name: "prod"})
	assert.ErrorIs(t, err, profile.ErrProfileExists)

	require.NoError(t, f.Add(profile.Profile{Name: "staging", Type: "postgres", DSN: "postgres://x"}))
	assert.Equal(t, []string{"prod", "local", "staging"}, f.Names())

	err = f.Update(profile.Profile{Name: "missing"})
	assert.ErrorIs(t, err, profile.ErrProfileNotFound)

	require.NoError(t, f.Update(profile.Profile{Name: "staging", Type: "postgres", DSN: "postgres://y"}))
	p, err := f.Get("staging")
	require.NoError(t, err)
	assert.Equal(t, "postgres://y", p.DSN)

	require.NoError(t, f.Remove("staging"))
	assert.ErrorIs(t, f.Remove("staging"), profile.ErrProfileNotFound)
}

func TestFile_SetDefault(t *testing.T) {
	f := sampleFile()

	require.NoError(t, f.SetDefault("local"))
	p, err := f.GetDefault()
	require.NoError(t, err)
	assert.Equal(t, "local", p.Name)

	// Only one profile carries the flag at a time.
	count := 0
	for _, p := range f.Profiles {
		if p.Default {
			count++
		}
	}
	assert.Equal(t, 1, count)

	assert.ErrorIs(t, f.SetDefault("missing"), profile.ErrProfileNotFound)
}

func TestLoadSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, profile.Save(path, sampleFile()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := profile.Load(path)
	require.NoError(t, err)
	assert.Equal(t, sampleFile(), got)
}

func TestLoad_MissingFile(t *testing.T) {
	f, err := profile.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, f.Profiles)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profiles: [unclosed"), 0o600))

	_, err := profile.Load(path)
	assert.Error(t, err)
}

func TestProfile_ConnString(t *testing.T) {
	p := profile.Profile{Type: "postgres", Host: "db.internal", Port: 5432, Database: "app", Username: "svc", Password: "pw"}
	assert.Equal(t, "postgres://svc:pw@db.internal:5432/app", p.ConnString())

	withDSN := profile.Profile{Type: "postgres", DSN: "postgres://explicit"}
	assert.Equal(t, "postgres://explicit", withDSN.ConnString())
}
