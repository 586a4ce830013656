package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/saveguard/pkg/saveguard/config"
)

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "List games in the known-game catalog",
	Long: `List the games the save catalog knows how to locate.

The catalog is the community ludusavi manifest, refreshed weekly. Use
'games search' to filter by name.`,
	Args: cobra.NoArgs,
	RunE: runGames,
}

var gamesSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the known-game catalog",
	Long:  `Search the catalog for games whose name contains the query, case-insensitively.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runGamesSearch,
}

var gamesPathsCmd = &cobra.Command{
	Use:   "paths <game>",
	Short: "Show save path templates for a game",
	Long:  `Display the raw save path templates the catalog records for a game.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runGamesPaths,
}

var gamesLimit int

func init() {
	gamesCmd.Flags().IntVarP(&gamesLimit, "limit", "l", 50, "maximum number of games to list (0 for all)")

	gamesCmd.AddCommand(gamesSearchCmd)
	gamesCmd.AddCommand(gamesPathsCmd)
	rootCmd.AddCommand(gamesCmd)
}

// runGames lists catalog games.
func runGames(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	initLogging(cfg)

	ctx, cancel := signalContext()
	defer cancel()

	_, store, err := buildScanner(ctx, cfg)
	if err != nil {
		return err
	}

	names := store.Games()
	total := len(names)
	if gamesLimit > 0 && len(names) > gamesLimit {
		names = names[:gamesLimit]
	}

	for _, name := range names {
		fmt.Println(name)
	}

	if len(names) < total {
		printInfo("\nShowing %d of %d games. Use --limit 0 to list all.", len(names), total)
	}

	return nil
}

// runGamesSearch filters catalog games by substring.
func runGamesSearch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	initLogging(cfg)

	ctx, cancel := signalContext()
	defer cancel()

	_, store, err := buildScanner(ctx, cfg)
	if err != nil {
		return err
	}

	matches := store.Search(args[0])
	if len(matches) == 0 {
		printInfo("No games matching %q.", args[0])
		return nil
	}

	for _, name := range matches {
		fmt.Println(name)
	}

	return nil
}

// runGamesPaths shows a game's save templates.
func runGamesPaths(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	initLogging(cfg)

	ctx, cancel := signalContext()
	defer cancel()

	_, store, err := buildScanner(ctx, cfg)
	if err != nil {
		return err
	}

	templates := store.PathsFor(args[0])
	if len(templates) == 0 {
		printInfo("No save paths known for %q.", args[0])
		printInfo("Use 'saveguard games search %s' to find the exact catalog name.", args[0])
		return nil
	}

	for _, tmpl := range templates {
		line := tmpl.Path
		if len(tmpl.Tags) > 0 {
			line += "  [" + strings.Join(tmpl.Tags, ", ") + "]"
		}
		fmt.Println(line)
	}

	return nil
}
