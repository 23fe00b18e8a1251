package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel(""))
}

func TestLoadConfig_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nport = 9090\n"), 0o644))

	cfg, got, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nport = 70000\n"), 0o644))

	_, _, err := loadConfig(path)
	assert.Error(t, err)
}

func TestOpenDB_AppliesMigrations(t *testing.T) {
	db, err := openDB(filepath.Join(t.TempDir(), "nested", "mediagrab.db"))
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM probe_cache").Scan(&n))
	assert.Zero(t, n)
}

func TestLoadConfig_NothingDiscoveredUsesDefaults(t *testing.T) {
	t.Setenv("MEDIAGRAB_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())
	if _, err := os.Stat("/etc/mediagrab/config.toml"); err == nil {
		t.Skip("system config present")
	}

	cfg, path, err := loadConfig("")
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, 8000, cfg.Server.Port)
}

func TestLoadConfig_PinnedPathMissing(t *testing.T) {
	t.Setenv("MEDIAGRAB_CONFIG", filepath.Join(t.TempDir(), "gone.toml"))

	cfg, _, err := loadConfig("")
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "MEDIAGRAB_CONFIG")
}
