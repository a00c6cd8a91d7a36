package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateParsesToDefaults(t *testing.T) {
	var cfg Config
	require.NoError(t, json.Unmarshal(stripLineComments([]byte(configTemplate)), &cfg))
	cfg.Dir = "/x"
	assert.Equal(t, defaultConfig("/x"), cfg)
}

func TestStripLineComments(t *testing.T) {
	in := "// header\n{\n  // note\n  \"log_level\": \"warn\" // trailing stays\n}\n"
	got := string(stripLineComments([]byte(in)))
	assert.NotContains(t, got, "header")
	assert.NotContains(t, got, "note")
	assert.Contains(t, got, "trailing stays")
}

func TestLoadFromWritesTemplateOnFirstRun(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(dir), cfg)

	data, err := os.ReadFile(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	assert.Equal(t, configTemplate, string(data))
}

func TestLoadFromFillsMissingFields(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`// partial
{"log_level": "debug"}`), 0o600))

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.Equal(t, DefaultDatabaseFile, cfg.DatabaseFile)
	assert.Equal(t, filepath.Join(dir, DefaultSettingsFile), cfg.SettingsPath())
}

func TestLoadFromRejectsBrokenJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"log_level": `), 0o600))
	_, err := LoadFrom(dir)
	assert.Error(t, err)
}

func TestEnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("OWL_METRICS_ADDR=127.0.0.1:9477\nOWL_LOG_LEVEL=error\n"), 0o600))
	t.Setenv("OWL_LOG_LEVEL", "warn")
	t.Setenv("OWL_TICK_INTERVAL", "30s")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9477", cfg.MetricsAddr, ".env applies")
	assert.Equal(t, "warn", cfg.LogLevel, "process environment beats .env")
	tick, err := cfg.Tick()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, tick)
}

func TestInvalidTickInterval(t *testing.T) {
	t.Setenv("OWL_TICK_INTERVAL", "soon")
	_, err := LoadFrom(t.TempDir())
	assert.Error(t, err)
}

func TestDirHonoursHomeEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)
	got, err := Dir()
	require.NoError(t, err)
	assert.Equal(t, dir, got)
}

func TestAbsoluteSettingsFile(t *testing.T) {
	cfg := Config{SettingsFile: "/etc/owl/settings.json", Dir: "/home/u/.owl"}
	assert.Equal(t, "/etc/owl/settings.json", cfg.SettingsPath())
}
