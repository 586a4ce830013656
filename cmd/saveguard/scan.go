package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/saveguard/pkg/saveguard/config"
	"github.com/jamesainslie/saveguard/pkg/saveguard/manifest"
	"github.com/jamesainslie/saveguard/pkg/saveguard/output"
	"github.com/jamesainslie/saveguard/pkg/saveguard/resolve"
	"github.com/jamesainslie/saveguard/pkg/saveguard/scanner"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for game save files",
	Long: `Scan the machine for game save files using the known-game catalog.

Games are reported sorted by save size, largest first. Only games with
at least one existing, non-empty save location are shown.`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

// buildScanner loads the manifest catalog and constructs a scanner with
// the user's custom paths applied.
func buildScanner(ctx context.Context, cfg *config.Config) (*scanner.Scanner, *manifest.Store, error) {
	store := manifest.NewStore(manifest.Options{
		URL: cfg.ManifestURL,
	})

	if err := store.Load(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to load manifest: %w", err)
	}

	s := scanner.New(store, resolve.NewOSResolver())
	for _, cp := range cfg.CustomPaths {
		s.AddCustomPath(cp.GameName, cp.Path)
	}

	return s, store, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		printInfo("\nInterrupted, stopping...")
		cancel()
	}()

	return ctx, cancel
}

// getFormatter resolves the configured output formatter.
func getFormatter() (output.Formatter, error) {
	name := viper.GetString("output")
	if name == "" {
		name = "pretty"
	}

	formatter, err := output.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown output format %q: available formats are %v", name, output.Available())
	}
	return formatter, nil
}

// runScan is the main scan command handler.
func runScan(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	initLogging(cfg)

	formatter, err := getFormatter()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	s, store, err := buildScanner(ctx, cfg)
	if err != nil {
		return err
	}

	printVerbose("Catalog contains %d known games", len(store.Games()))

	startTime := time.Now()
	games, err := s.ScanAll(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	report := &output.ScanReport{
		Games:      games,
		KnownGames: len(store.Games()),
		Elapsed:    time.Since(startTime),
	}

	var buf bytes.Buffer
	if err := formatter.FormatScan(&buf, report); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Print(buf.String())

	return nil
}
