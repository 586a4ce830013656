package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// HistoryConfig configures the local upload-history store.
type HistoryConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Path          string `mapstructure:"path"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// CustomPath is a user-supplied save location merged into a game's
// manifest templates during scanning.
type CustomPath struct {
	GameName string `mapstructure:"game_name"`
	Path     string `mapstructure:"path"`
}

// Config represents the application configuration.
type Config struct {
	// APIURL is the base endpoint of the remote backup service. The
	// core treats it as an opaque string.
	APIURL string `mapstructure:"api_url"`

	// DeviceID is the stored device identifier assigned at registration.
	DeviceID string `mapstructure:"device_id"`

	// ManifestURL overrides the upstream manifest location. Empty uses
	// the community default.
	ManifestURL string `mapstructure:"manifest_url"`

	// AutoScan enables periodic background scanning.
	AutoScan bool `mapstructure:"auto_scan"`

	// ScanIntervalMinutes is the period between automatic scans.
	ScanIntervalMinutes int `mapstructure:"scan_interval_minutes"`

	// EnabledGames restricts uploads to the named games. Empty means no
	// restriction.
	EnabledGames []string `mapstructure:"enabled_games"`

	// CustomPaths are user-supplied save locations.
	CustomPaths []CustomPath `mapstructure:"custom_paths"`

	History HistoryConfig `mapstructure:"history"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/saveguard/config.yaml
//   - $HOME/.config/saveguard/config.yaml
//
// Environment variables are prefixed with SAVEGUARD_ (e.g.
// SAVEGUARD_API_URL).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "saveguard"))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", "saveguard"))

	v.SetEnvPrefix("SAVEGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is acceptable; we use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Expand ~ in user-supplied paths
	if strings.HasPrefix(cfg.History.Path, "~") {
		cfg.History.Path = filepath.Join(homeDir, cfg.History.Path[1:])
	}
	for i, cp := range cfg.CustomPaths {
		if strings.HasPrefix(cp.Path, "~") {
			cfg.CustomPaths[i].Path = filepath.Join(homeDir, cp.Path[1:])
		}
	}

	return &cfg, nil
}

// setDefaults registers default values on a viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("auto_scan", true)
	v.SetDefault("scan_interval_minutes", DefaultScanIntervalMinutes)

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", "") // Empty means use DefaultHistoryPath
	v.SetDefault("history.retention_days", DefaultHistoryRetentionDays)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "") // Empty means use logging.DefaultLogPath
	v.SetDefault("logging.rotation.max_size", "10MB")
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.components", map[string]string{
		"manifest": "info",
		"scanner":  "info",
		"archive":  "info",
		"uploader": "info",
		"client":   "info",
		"history":  "warn",
	})
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "saveguard"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "saveguard"), nil
}

// DataDir returns $XDG_DATA_HOME/saveguard/ for the token and history store.
func DataDir() string {
	return filepath.Join(xdg.DataHome, "saveguard")
}

// CacheDir returns $XDG_CACHE_HOME/saveguard/ for the manifest cache.
func CacheDir() string {
	return filepath.Join(xdg.CacheHome, "saveguard")
}

// StateDir returns $XDG_STATE_HOME/saveguard/ for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "saveguard")
}

// DefaultHistoryPath returns the default upload-history store path.
func DefaultHistoryPath() string {
	return filepath.Join(DataDir(), "history")
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	if err := os.MkdirAll(DataDir(), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	return nil
}

// Save persists the configuration to the config file, replacing it
// wholesale. Only fields meant to be user-visible are written.
func (c *Config) Save() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	configDir, err := ConfigDir()
	if err != nil {
		return err
	}
	configPath := filepath.Join(configDir, "config.yaml")

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("api_url", c.APIURL)
	v.Set("device_id", c.DeviceID)
	if c.ManifestURL != "" {
		v.Set("manifest_url", c.ManifestURL)
	}
	v.Set("auto_scan", c.AutoScan)
	v.Set("scan_interval_minutes", c.ScanIntervalMinutes)
	v.Set("enabled_games", c.EnabledGames)

	customPaths := make([]map[string]string, 0, len(c.CustomPaths))
	for _, cp := range c.CustomPaths {
		customPaths = append(customPaths, map[string]string{
			"game_name": cp.GameName,
			"path":      cp.Path,
		})
	}
	v.Set("custom_paths", customPaths)
	v.Set("history.enabled", c.History.Enabled)
	v.Set("history.retention_days", c.History.RetentionDays)
	v.Set("logging.level", c.Logging.Level)

	if err := v.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// WriteDefault writes a default config file if none exists.
// Returns nil if a config file already exists.
func WriteDefault() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	configDir, err := ConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	defaultConfig := fmt.Sprintf(`# Saveguard Backup Agent Configuration

# Base URL of the remote backup service
api_url: %s

# Device identifier assigned at registration (set by "saveguard login")
device_id: ""

# Automatically scan for saves on a timer
auto_scan: true
scan_interval_minutes: %d

# Restrict uploads to these games (empty = all detected games)
enabled_games: []

# Extra save locations merged into the manifest's templates
# custom_paths:
#   - game_name: My Game
#     path: ~/Documents/My Game/saves
custom_paths: []

# Local upload history
history:
  enabled: true
  retention_days: %d

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: info
  # Log file path (empty means use default: $XDG_STATE_HOME/saveguard/saveguard.log)
  path: ""
  rotation:
    max_size: 10MB
    max_age: 30       # days
    max_backups: 5
  # Per-component log levels
  components:
    manifest: info
    scanner: info
    uploader: info
    history: warn
`, DefaultAPIURL, DefaultScanIntervalMinutes, DefaultHistoryRetentionDays)

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}

	return nil
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}
