package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/saveguard/pkg/saveguard/config"
	"github.com/jamesainslie/saveguard/pkg/saveguard/logging"
	"github.com/jamesainslie/saveguard/pkg/saveguard/types"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "saveguard",
		Short: "Back up game save files to the cloud",
		Long: `Saveguard finds game save files on this machine and backs them up
to a remote storage service.

Save locations come from the community ludusavi manifest, which covers
thousands of games. Custom paths can be added for anything the manifest
misses.

Examples:
  saveguard                        # Scan for game saves
  saveguard scan -o json           # Machine-readable scan output
  saveguard games search zelda     # Search the known-game catalog
  saveguard login <session-cookie> # Register this device
  saveguard upload --profile <id>  # Back up all detected saves
  saveguard history                # View past uploads`,
		Args: cobra.NoArgs,
		RunE: runScan,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/saveguard/config.yaml)")
	rootCmd.PersistentFlags().StringP("output", "o", "pretty", "output format (pretty, plain, json, yaml)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	// Bind flags to viper
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			viper.AddConfigPath(filepath.Join(xdgConfigHome, "saveguard"))
		}

		homeDir, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".config", "saveguard"))
		}
	}

	viper.SetEnvPrefix("SAVEGUARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("api_url", config.DefaultAPIURL)
	viper.SetDefault("scan_interval_minutes", config.DefaultScanIntervalMinutes)
	viper.SetDefault("history.retention_days", config.DefaultHistoryRetentionDays)

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()
}

// initLogging sets up the file logger from the loaded configuration.
// Failures are reported but never block the command.
func initLogging(cfg *config.Config) {
	logCfg := logging.Config{
		Level:      cfg.Logging.Level,
		Path:       cfg.Logging.Path,
		Components: cfg.Logging.Components,
	}

	if maxSize, err := types.ParseSize(cfg.Logging.Rotation.MaxSize); err == nil {
		logCfg.Rotation.MaxSize = maxSize
	}
	logCfg.Rotation.MaxAge = cfg.Logging.Rotation.MaxAge
	logCfg.Rotation.MaxBackups = cfg.Logging.Rotation.MaxBackups

	if getVerbose() {
		logCfg.ConsoleLevel = "debug"
	}

	if err := logging.Init(logCfg); err != nil {
		printError("Failed to initialize logging: %v", err)
	}
}

// Execute runs the root command.
func Execute() error {
	defer func() { _ = logging.Close() }()
	return rootCmd.Execute()
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
