package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/saveguard/pkg/saveguard/config"
	"github.com/jamesainslie/saveguard/pkg/saveguard/history"
	"github.com/jamesainslie/saveguard/pkg/saveguard/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View upload history",
	Long: `View the history of save uploads from this machine.

Each entry records the game, outcome, and archive size. Entries older
than the retention period are removed by 'history clean'.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean up old history entries",
	Long:  `Remove history entries older than the configured retention period.`,
	Args:  cobra.NoArgs,
	RunE:  runHistoryClean,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show")

	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

// openHistory opens the history store at the configured path.
func openHistory() (*history.Store, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	initLogging(cfg)

	path := cfg.History.Path
	if path == "" {
		path = config.DefaultHistoryPath()
	}

	store, err := history.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history store: %w", err)
	}
	return store, cfg, nil
}

// runHistory lists recent uploads.
func runHistory(cmd *cobra.Command, _ []string) error {
	store, _, err := openHistory()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	records, err := store.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if len(records) == 0 {
		printInfo("No upload history found.")
		printInfo("Run 'saveguard upload' to back up your saves.")
		return nil
	}

	fmt.Printf("\n%-20s  %-30s  %-8s  %-10s  %s\n", "WHEN", "GAME", "STATUS", "SIZE", "MESSAGE")
	fmt.Println(strings.Repeat("-", 100))

	for _, record := range records {
		status := "ok"
		if !record.Success {
			status = "failed"
		}
		fmt.Printf("%-20s  %-30s  %-8s  %-10s  %s\n",
			record.Timestamp.Local().Format("2006-01-02 15:04:05"),
			truncateString(record.GameName, 30),
			status,
			types.FormatSize(record.SizeBytes),
			truncateString(record.Message, 40),
		)
	}

	fmt.Println(strings.Repeat("-", 100))
	printInfo("\nShowing %d entries. Use --limit to see more.", len(records))

	return nil
}

// runHistoryClean prunes old entries.
func runHistoryClean(cmd *cobra.Command, _ []string) error {
	store, cfg, err := openHistory()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	days := cfg.History.RetentionDays
	if days <= 0 {
		days = config.DefaultHistoryRetentionDays
	}

	if err := store.Prune(days); err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}

	printInfo("Removed entries older than %d days.", days)
	return nil
}

// truncateString shortens a string to at most max characters.
func truncateString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
