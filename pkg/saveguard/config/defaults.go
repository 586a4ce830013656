// Package config provides configuration management for the saveguard
// backup agent.
package config

// Default configuration values for saveguard.
const (
	// DefaultAPIURL is the remote backup service endpoint.
	DefaultAPIURL = "https://saveknight.com"

	// DefaultScanIntervalMinutes is how often automatic scans run when
	// auto-scan is enabled.
	DefaultScanIntervalMinutes = 60

	// DefaultHistoryRetentionDays is how long upload history records
	// are kept before pruning.
	DefaultHistoryRetentionDays = 90
)
