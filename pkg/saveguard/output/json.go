package output

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/jamesainslie/saveguard/pkg/saveguard/types"
)

// jsonScanOutput represents the full JSON scan output structure.
type jsonScanOutput struct {
	Games []jsonGame `json:"games"`
	Meta  jsonMeta   `json:"meta"`
}

// jsonGame represents a detected game in JSON output.
type jsonGame struct {
	Name         string                   `json:"name"`
	Size         int64                    `json:"size"`
	SizeHuman    string                   `json:"size_human"`
	LastModified *time.Time               `json:"last_modified,omitempty"`
	Paths        []types.DetectedSavePath `json:"paths"`
}

// jsonMeta represents metadata in JSON output.
type jsonMeta struct {
	KnownGames int    `json:"known_games"`
	Detected   int    `json:"detected"`
	TotalSize  int64  `json:"total_size"`
	Elapsed    string `json:"elapsed"`
}

// JSONFormatter formats output as indented JSON.
// It is suitable for machine processing and API integration.
type JSONFormatter struct{}

// FormatScan writes the detection report to the buffer.
func (f *JSONFormatter) FormatScan(w *bytes.Buffer, r *ScanReport) error {
	out := jsonScanOutput{
		Games: make([]jsonGame, 0, len(r.Games)),
		Meta: jsonMeta{
			KnownGames: r.KnownGames,
			Detected:   len(r.Games),
			TotalSize:  r.TotalSize(),
			Elapsed:    r.Elapsed.String(),
		},
	}

	for _, game := range r.Games {
		out.Games = append(out.Games, jsonGame{
			Name:         game.Name,
			Size:         game.TotalSizeBytes,
			SizeHuman:    types.FormatSize(game.TotalSizeBytes),
			LastModified: game.LastModified,
			Paths:        game.Paths,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// FormatUploads writes the upload batch report to the buffer.
func (f *JSONFormatter) FormatUploads(w *bytes.Buffer, r *UploadReport) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)
