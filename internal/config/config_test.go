package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsAndEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/kimbia_test")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("RATE_LIMIT_LOGIN", "3")

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "postgres://localhost/kimbia_test", cfg.Database.URL)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, 3, cfg.RateLimit.LoginPerMinute)

	// Untouched values fall back to defaults.
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 20, cfg.Auth.TokenLength)
	require.Equal(t, 12, cfg.Auth.BcryptCost)
	require.Equal(t, "development", cfg.Environment)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadRejectsShortTokenLength(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/kimbia_test")
	t.Setenv("AUTH_TOKEN_LENGTH", "8")

	_, err := Load("")
	require.Error(t, err)
}

func TestLoadValidatesPoolSizing(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/kimbia_test")

	t.Setenv("DATABASE_MAX_CONNECTIONS", "0")
	_, err := Load("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "max_connections")

	t.Setenv("DATABASE_MAX_CONNECTIONS", "10")
	t.Setenv("DATABASE_MAX_IDLE_CONNECTIONS", "11")
	_, err = Load("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "max_idle_connections")

	t.Setenv("DATABASE_MAX_IDLE_CONNECTIONS", "5")
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 10, cfg.Database.MaxConnections)
	require.Equal(t, 5, cfg.Database.MaxIdle)
}

func TestLoadYAMLFileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 7000
database:
  url: postgres://yaml-host/kimbia
environment: production
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("DATABASE_URL", "")
	t.Setenv("SERVER_PORT", "7001")

	cfg, err := Load(path)
	require.NoError(t, err)

	// Env wins over the file; file wins over defaults.
	require.Equal(t, 7001, cfg.Server.Port)
	require.Equal(t, "postgres://yaml-host/kimbia", cfg.Database.URL)
	require.Equal(t, "production", cfg.Environment)
}

func TestLoadMissingFileFails(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/kimbia_test")

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
