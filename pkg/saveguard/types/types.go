// Package types provides core data types for the saveguard backup agent.
// It includes structures for detected save locations, upload outcomes,
// and utility functions for parsing and formatting byte sizes.
package types

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Size constants for binary (IEC) units.
const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
	GiB int64 = 1024 * MiB
)

// SaveTemplate pairs a raw manifest path template with its metadata tags.
// Templates contain placeholder tokens such as <home> or <documents> that
// must be resolved before the path can be evaluated on disk.
type SaveTemplate struct {
	// Path is the raw template string from the manifest.
	Path string `json:"path"`

	// Tags are the manifest-supplied classification tags (e.g. "save",
	// "config"). May be empty.
	Tags []string `json:"tags,omitempty"`
}

// DetectedSavePath describes the on-disk evaluation of one save template.
// It is produced once per template per game during a scan and never
// mutated afterwards.
type DetectedSavePath struct {
	// Pattern is the original manifest template.
	Pattern string `json:"pattern"`

	// ResolvedPath is the template with all placeholders substituted,
	// suitable for glob evaluation.
	ResolvedPath string `json:"resolved_path"`

	// Exists reports whether the resolved pattern matched anything.
	Exists bool `json:"exists"`

	// FileCount is the number of regular files found under the matches.
	FileCount int `json:"file_count"`

	// TotalSizeBytes is the aggregate size of those files.
	TotalSizeBytes int64 `json:"total_size_bytes"`
}

// DetectedGame aggregates the detection results for a single game.
type DetectedGame struct {
	// Name is the game name as it appears in the manifest.
	Name string `json:"name"`

	// Paths holds one entry per manifest template, in manifest order.
	Paths []DetectedSavePath `json:"paths"`

	// TotalSizeBytes is the sum of the constituent path sizes.
	TotalSizeBytes int64 `json:"total_size_bytes"`

	// LastModified is the newest modification time observed among the
	// existing resolved paths. Nil when no path exists.
	LastModified *time.Time `json:"last_modified,omitempty"`
}

// HumanSize returns the aggregate size formatted as a human-readable string.
func (g *DetectedGame) HumanSize() string {
	return FormatSize(g.TotalSizeBytes)
}

// HasSaves reports whether at least one path exists with at least one file.
// Games for which this is false are suppressed from scan output.
func (g *DetectedGame) HasSaves() bool {
	for _, p := range g.Paths {
		if p.Exists && p.FileCount > 0 {
			return true
		}
	}
	return false
}

// PrimaryPath returns the first resolved path, or "" when the game has
// no paths. Uploads report it as the local path hint.
func (g *DetectedGame) PrimaryPath() string {
	if len(g.Paths) == 0 {
		return ""
	}
	return g.Paths[0].ResolvedPath
}

// UploadResult records the outcome of one game's upload attempt.
// Results are independent: a failure in one game never invalidates the
// results of the others in the same batch.
type UploadResult struct {
	// GameName identifies which game this result belongs to.
	GameName string `json:"game_name"`

	// Success reports whether the remote accepted the archive.
	Success bool `json:"success"`

	// Message is a human-readable outcome description. For remote
	// rejections it carries the remote's error text verbatim.
	Message string `json:"message"`

	// UploadID is the remote-assigned upload identifier, when provided.
	UploadID *string `json:"upload_id,omitempty"`

	// VersionNumber is the remote-assigned save version, when provided.
	VersionNumber *int `json:"version_number,omitempty"`
}

// sizePattern matches size strings like "100M", "2G", "500K", "1.5GB", etc.
var sizePattern = regexp.MustCompile(`(?i)^\s*([0-9]+(?:\.[0-9]+)?)\s*([KMG]?(?:i?B)?)\s*$`)

// ErrInvalidSize indicates that the size string could not be parsed.
var ErrInvalidSize = errors.New("invalid size format")

// ParseSize parses a human-readable size string and returns the size in
// bytes. It supports plain bytes ("1024"), and K/M/G suffixes with
// optional "B"/"iB" ("100K", "50MiB", "2GB"). Decimal values are
// truncated to the nearest byte.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidSize)
	}

	matches := sizePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	suffix := strings.ToUpper(matches[2])
	suffix = strings.TrimSuffix(suffix, "IB")
	suffix = strings.TrimSuffix(suffix, "B")

	var multiplier int64
	switch suffix {
	case "":
		multiplier = 1
	case "K":
		multiplier = KiB
	case "M":
		multiplier = MiB
	case "G":
		multiplier = GiB
	default:
		return 0, fmt.Errorf("%w: unknown suffix %q", ErrInvalidSize, suffix)
	}

	return int64(value * float64(multiplier)), nil
}

// FormatSize converts a size in bytes to a human-readable string using
// binary (IEC) units for consistency with common filesystem tools.
func FormatSize(bytes int64) string {
	return humanize.IBytes(uint64(bytes))
}
