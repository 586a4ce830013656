package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/saveguard/pkg/saveguard/client"
	"github.com/jamesainslie/saveguard/pkg/saveguard/config"
	"github.com/jamesainslie/saveguard/pkg/saveguard/credentials"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Manage game profiles",
	Long: `List and create game profiles on the backup service.

A game profile is the remote destination a game's saves are uploaded
to. Pass a profile ID to 'saveguard upload --profile'.`,
	Args: cobra.NoArgs,
	RunE: runProfiles,
}

var profilesCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a game profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfilesCreate,
}

var profilesPlatform string

func init() {
	profilesCreateCmd.Flags().StringVar(&profilesPlatform, "platform", "pc", "platform for the new profile")

	profilesCmd.AddCommand(profilesCreateCmd)
	rootCmd.AddCommand(profilesCmd)
}

// requireToken loads configuration and the stored bearer token.
func requireToken() (*config.Config, string, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, "", fmt.Errorf("failed to load configuration: %w", err)
	}
	initLogging(cfg)

	store := credentials.NewFileStore(credentials.DefaultTokenPath())
	token, err := store.Token()
	if err != nil {
		if errors.Is(err, credentials.ErrNotAuthenticated) {
			return nil, "", fmt.Errorf("not logged in: use 'saveguard login' to register this device first")
		}
		return nil, "", fmt.Errorf("failed to read credentials: %w", err)
	}

	return cfg, token, nil
}

// runProfiles lists the account's game profiles.
func runProfiles(cmd *cobra.Command, _ []string) error {
	cfg, token, err := requireToken()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	api := client.New(cfg.APIURL)
	profiles, err := api.GameProfiles(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to list profiles: %w", err)
	}

	if len(profiles) == 0 {
		printInfo("No game profiles found.")
		printInfo("Use 'saveguard profiles create <name>' to create one.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPLATFORM")
	for _, p := range profiles {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Name, p.Platform)
	}
	return tw.Flush()
}

// runProfilesCreate creates a new game profile.
func runProfilesCreate(cmd *cobra.Command, args []string) error {
	cfg, token, err := requireToken()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	api := client.New(cfg.APIURL)
	profile, err := api.CreateGameProfile(ctx, token, args[0], profilesPlatform)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	printInfo("Created profile %q (%s).", profile.Name, profile.ID)
	return nil
}
