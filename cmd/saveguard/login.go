package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/saveguard/pkg/saveguard/client"
	"github.com/jamesainslie/saveguard/pkg/saveguard/config"
	"github.com/jamesainslie/saveguard/pkg/saveguard/credentials"
)

var loginCmd = &cobra.Command{
	Use:   "login <session-cookie>",
	Short: "Register this device with the backup service",
	Long: `Register this device using a browser session cookie.

Log in to the backup service in a browser, copy the session cookie
value, and pass it here. The device receives its own long-lived token;
the cookie is only used for this one registration call.`,
	Args: cobra.ExactArgs(1),
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove this device's stored credentials",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication status",
	Long:  `Check whether this device's stored token is still accepted by the backup service.`,
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var loginDeviceName string

func init() {
	loginCmd.Flags().StringVar(&loginDeviceName, "device-name", "", "name for this device (default: hostname)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)
}

// runLogin registers the device and stores its token.
func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	initLogging(cfg)

	deviceName := loginDeviceName
	if deviceName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "desktop"
		}
		deviceName = hostname
	}

	ctx, cancel := signalContext()
	defer cancel()

	api := client.New(cfg.APIURL)
	device, err := api.Register(ctx, args[0], deviceName, client.MachineID())
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	store := credentials.NewFileStore(credentials.DefaultTokenPath())
	if err := store.Save(device.Token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	cfg.DeviceID = device.DeviceID
	if err := cfg.Save(); err != nil {
		printError("Failed to persist device ID: %v", err)
	}

	printInfo("Device %q registered.", deviceName)
	printVerbose("Device ID: %s, token expires: %s", device.DeviceID, device.ExpiresAt)
	return nil
}

// runLogout deletes the stored token.
func runLogout(cmd *cobra.Command, _ []string) error {
	store := credentials.NewFileStore(credentials.DefaultTokenPath())
	if err := store.Delete(); err != nil {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}

	printInfo("Logged out.")
	return nil
}

// runStatus checks the stored token against the service.
func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	initLogging(cfg)

	store := credentials.NewFileStore(credentials.DefaultTokenPath())
	token, err := store.Token()
	if err != nil {
		if errors.Is(err, credentials.ErrNotAuthenticated) {
			printInfo("Not logged in. Use 'saveguard login' to register this device.")
			return nil
		}
		return fmt.Errorf("failed to read credentials: %w", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	var deviceID *string
	if cfg.DeviceID != "" {
		deviceID = &cfg.DeviceID
	}

	api := client.New(cfg.APIURL)
	status := api.Me(ctx, token, deviceID)

	if !status.Authenticated {
		printInfo("Token is no longer valid. Use 'saveguard login' to re-register.")
		return nil
	}

	printInfo("Authenticated.")
	if status.UserEmail != nil {
		printInfo("  account: %s", *status.UserEmail)
	}
	if status.PlanName != nil {
		printInfo("  plan:    %s", *status.PlanName)
	}
	if status.DeviceID != nil {
		printVerbose("  device:  %s", *status.DeviceID)
	}

	return nil
}
