package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir()) // no config.yaml present

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 0, cfg.Match.Workers)
	assert.Equal(t, float64(98), cfg.Match.MemoryPct)
	assert.Equal(t, 1, cfg.Match.ProgressSecs)
	assert.Equal(t, 0.9, cfg.Match.StrThreshold)
	assert.Equal(t, float64(1), cfg.Match.NumThreshold)
	assert.Equal(t, 10, cfg.Nearest.Matches)
	assert.Equal(t, 1000, cfg.Nearest.ChunkSize)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 200, cfg.Server.MaxUploadMB)
}

func TestLoadConfigFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	data := "server:\n  port: 9999\nmatch:\n  workers: 4\nlog:\n  level: debug\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(data), 0o644))
	chdir(t, dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Match.Workers)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched keys keep their defaults.
	assert.Equal(t, 0.9, cfg.Match.StrThreshold)
}

func TestLoadEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("FUZZYMATCH_SERVER_PORT", "7777")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Server.Port)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.Error(t, InitLogger(LogConfig{Level: "nope", Format: "console"}))
}
