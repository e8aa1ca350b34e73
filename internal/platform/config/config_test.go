package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) lookupFunc {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoadReadsYAMLOnTopOfDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
mode: release
database:
  host: db.internal
  port: 3307
  user: lib
  dbname: books
session:
  secret: s3cret
  lifetime: 30m
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ModeRelease, cfg.Mode)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, 3307, cfg.DB.Port)
	assert.Equal(t, 30*time.Minute, cfg.Session.Lifetime)
	assert.Equal(t, ":5001", cfg.Server.Addr)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ModeDev, cfg.Mode)
	assert.Equal(t, time.Hour, cfg.Session.Lifetime)
	assert.NotEmpty(t, cfg.Session.Secret)
}

func TestApplyEnvOverridesFile(t *testing.T) {
	cfg := Default()
	err := applyEnv(&cfg, envMap(map[string]string{
		"DB_HOST":                  "legacy-host",
		"LIBRARY_DB_HOST":          "new-host",
		"DB_PORT":                  "29951",
		"SECRET_KEY":               "from-env",
		"LIBRARY_SESSION_LIFETIME": "2h",
	}))
	require.NoError(t, err)
	assert.Equal(t, "new-host", cfg.DB.Host)
	assert.Equal(t, 29951, cfg.DB.Port)
	assert.Equal(t, "from-env", cfg.Session.Secret)
	assert.Equal(t, 2*time.Hour, cfg.Session.Lifetime)
}

func TestApplyEnvRejectsBadPort(t *testing.T) {
	cfg := Default()
	err := applyEnv(&cfg, envMap(map[string]string{"DB_PORT": "abc"}))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"dev defaults", func(c *Config) {}, false},
		{"unknown mode", func(c *Config) { c.Mode = "staging" }, true},
		{"release without secret", func(c *Config) { c.Mode = ModeRelease }, true},
		{"release with secret", func(c *Config) { c.Mode = ModeRelease; c.Session.Secret = "x" }, false},
		{"zero lifetime", func(c *Config) { c.Session.Lifetime = 0 }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
