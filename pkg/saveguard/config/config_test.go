package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.True(t, cfg.AutoScan)
	assert.Equal(t, DefaultScanIntervalMinutes, cfg.ScanIntervalMinutes)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, DefaultHistoryRetentionDays, cfg.History.RetentionDays)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.EnabledGames)
}

func TestLoadFromFile(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	dir := filepath.Join(configHome, "saveguard")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	content := `
api_url: https://backup.example.com
device_id: dev-42
auto_scan: false
enabled_games:
  - Foo
  - Bar
custom_paths:
  - game_name: Foo
    path: /srv/saves/foo
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://backup.example.com", cfg.APIURL)
	assert.Equal(t, "dev-42", cfg.DeviceID)
	assert.False(t, cfg.AutoScan)
	assert.Equal(t, []string{"Foo", "Bar"}, cfg.EnabledGames)
	require.Len(t, cfg.CustomPaths, 1)
	assert.Equal(t, "Foo", cfg.CustomPaths[0].GameName)
	assert.Equal(t, "/srv/saves/foo", cfg.CustomPaths[0].Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("SAVEGUARD_API_URL", "https://env.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.APIURL)
}

func TestWriteDefault(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	require.NoError(t, WriteDefault())

	configPath := filepath.Join(configHome, "saveguard", "config.yaml")
	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "api_url")

	// A second call must not clobber an existing file.
	require.NoError(t, os.WriteFile(configPath, []byte("api_url: custom\n"), 0o644))
	require.NoError(t, WriteDefault())
	data, err = os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, "api_url: custom\n", string(data))
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	cfg.DeviceID = "dev-99"
	cfg.EnabledGames = []string{"Foo"}
	require.NoError(t, cfg.Save())

	reloaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dev-99", reloaded.DeviceID)
	assert.Equal(t, []string{"Foo"}, reloaded.EnabledGames)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandPath("~/saves")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "saves"), got)

	got, err = ExpandPath("/absolute/saves")
	require.NoError(t, err)
	assert.Equal(t, "/absolute/saves", got)
}
