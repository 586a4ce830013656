package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/saveguard/pkg/saveguard/config"
	"github.com/jamesainslie/saveguard/pkg/saveguard/history"
	"github.com/jamesainslie/saveguard/pkg/saveguard/output"
	"github.com/jamesainslie/saveguard/pkg/saveguard/types"
	"github.com/jamesainslie/saveguard/pkg/saveguard/uploader"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [game...]",
	Short: "Back up detected game saves",
	Long: `Scan for game saves and upload them to the backup service.

With no arguments every detected game is uploaded, subject to the
enabled_games list in the configuration. Naming games on the command
line uploads only those games.

Each game is archived and uploaded independently; one failure does not
stop the rest of the batch.`,
	RunE: runUpload,
}

var uploadProfileID string

func init() {
	uploadCmd.Flags().StringVarP(&uploadProfileID, "profile", "p", "", "game profile ID to upload to (required)")
	_ = uploadCmd.MarkFlagRequired("profile")

	rootCmd.AddCommand(uploadCmd)
}

// runUpload scans and uploads save files.
func runUpload(cmd *cobra.Command, args []string) error {
	cfg, token, err := requireToken()
	if err != nil {
		return err
	}

	formatter, err := getFormatter()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	s, _, err := buildScanner(ctx, cfg)
	if err != nil {
		return err
	}

	printInfo("Scanning for game saves...")
	games, err := s.ScanAll(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	games = selectGames(games, args, cfg.EnabledGames)
	if len(games) == 0 {
		printInfo("No game saves to upload.")
		return nil
	}

	printInfo("Uploading %d game(s)...", len(games))

	up := uploader.New(cfg.APIURL, token)
	results := up.UploadSaves(ctx, games, uploadProfileID)

	recordHistory(cfg, games, results)

	report := &output.UploadReport{Results: results}
	var buf bytes.Buffer
	if err := formatter.FormatUploads(&buf, report); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Print(buf.String())

	if report.Succeeded() < len(results) {
		return fmt.Errorf("%d of %d uploads failed", len(results)-report.Succeeded(), len(results))
	}
	return nil
}

// selectGames filters detected games by command-line arguments, falling
// back to the enabled_games configuration list.
func selectGames(games []types.DetectedGame, args, enabled []string) []types.DetectedGame {
	allow := args
	if len(allow) == 0 {
		allow = enabled
	}
	if len(allow) == 0 {
		return games
	}

	wanted := make(map[string]bool, len(allow))
	for _, name := range allow {
		wanted[strings.ToLower(name)] = true
	}

	var selected []types.DetectedGame
	for _, game := range games {
		if wanted[strings.ToLower(game.Name)] {
			selected = append(selected, game)
		}
	}
	return selected
}

// recordHistory appends the batch outcome to the local history store.
// History problems are reported but never fail the upload.
func recordHistory(cfg *config.Config, games []types.DetectedGame, results []types.UploadResult) {
	if !cfg.History.Enabled {
		return
	}

	path := cfg.History.Path
	if path == "" {
		path = config.DefaultHistoryPath()
	}

	store, err := history.Open(path)
	if err != nil {
		printVerbose("Failed to open history store: %v", err)
		return
	}
	defer func() { _ = store.Close() }()

	sizes := make(map[string]int64, len(games))
	for _, game := range games {
		sizes[game.Name] = game.TotalSizeBytes
	}

	store.AppendResults(results, sizes)

	if cfg.History.RetentionDays > 0 {
		if err := store.Prune(cfg.History.RetentionDays); err != nil {
			printVerbose("Failed to prune history: %v", err)
		}
	}
}
