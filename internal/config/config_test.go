package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:8000", cfg.BaseURL)
	require.Equal(t, "info", cfg.LogLevel)
	require.NotEmpty(t, cfg.StorePath)
}

func TestLoadMissingConfiguredFileFails(t *testing.T) {
	t.Setenv("PETSHOP_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	require.Error(t, err, "an explicitly configured but missing file should fail loudly")
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Setenv("PETSHOP_BASE_URL", "http://shop.example:9000/")
	t.Setenv("PETSHOP_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://shop.example:9000", cfg.BaseURL, "trailing slashes are trimmed")
	require.Equal(t, "debug", cfg.LogLevel)
	require.NotEmpty(t, cfg.StorePath)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_url: http://file.example:8000\nlog_level: warn\n"), 0o644))
	t.Setenv("PETSHOP_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://file.example:8000", cfg.BaseURL)
	require.Equal(t, "warn", cfg.LogLevel)
}
