package output

import (
	"bytes"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/saveguard/pkg/saveguard/types"
)

// yamlScanOutput represents the full YAML scan output structure.
type yamlScanOutput struct {
	Games []yamlGame `yaml:"games"`
	Meta  yamlMeta   `yaml:"meta"`
}

// yamlGame represents a detected game in YAML output.
type yamlGame struct {
	Name         string     `yaml:"name"`
	Size         int64      `yaml:"size"`
	SizeHuman    string     `yaml:"size_human"`
	LastModified *time.Time `yaml:"last_modified,omitempty"`
	Paths        []yamlPath `yaml:"paths"`
}

// yamlPath represents a resolved save path in YAML output.
type yamlPath struct {
	Pattern   string `yaml:"pattern"`
	Path      string `yaml:"path"`
	Exists    bool   `yaml:"exists"`
	FileCount int    `yaml:"file_count"`
	Size      int64  `yaml:"size"`
}

// yamlMeta represents metadata in YAML output.
type yamlMeta struct {
	KnownGames int    `yaml:"known_games"`
	Detected   int    `yaml:"detected"`
	TotalSize  int64  `yaml:"total_size"`
	Elapsed    string `yaml:"elapsed"`
}

// yamlUploadOutput represents the full YAML upload output structure.
type yamlUploadOutput struct {
	Results   []yamlUploadResult `yaml:"results"`
	Succeeded int                `yaml:"succeeded"`
	Failed    int                `yaml:"failed"`
}

// yamlUploadResult represents one upload outcome in YAML output.
type yamlUploadResult struct {
	Game          string  `yaml:"game"`
	Success       bool    `yaml:"success"`
	Message       string  `yaml:"message"`
	UploadID      *string `yaml:"upload_id,omitempty"`
	VersionNumber *int    `yaml:"version_number,omitempty"`
}

// YAMLFormatter formats output as YAML.
// It produces the same structure as JSONFormatter but in YAML format.
type YAMLFormatter struct{}

// FormatScan writes the detection report to the buffer.
func (f *YAMLFormatter) FormatScan(w *bytes.Buffer, r *ScanReport) error {
	out := yamlScanOutput{
		Games: make([]yamlGame, 0, len(r.Games)),
		Meta: yamlMeta{
			KnownGames: r.KnownGames,
			Detected:   len(r.Games),
			TotalSize:  r.TotalSize(),
			Elapsed:    r.Elapsed.String(),
		},
	}

	for _, game := range r.Games {
		out.Games = append(out.Games, buildYAMLGame(game))
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(out); err != nil {
		return err
	}
	return encoder.Close()
}

// FormatUploads writes the upload batch report to the buffer.
func (f *YAMLFormatter) FormatUploads(w *bytes.Buffer, r *UploadReport) error {
	out := yamlUploadOutput{
		Results:   make([]yamlUploadResult, 0, len(r.Results)),
		Succeeded: r.Succeeded(),
		Failed:    len(r.Results) - r.Succeeded(),
	}

	for _, res := range r.Results {
		out.Results = append(out.Results, yamlUploadResult{
			Game:          res.GameName,
			Success:       res.Success,
			Message:       res.Message,
			UploadID:      res.UploadID,
			VersionNumber: res.VersionNumber,
		})
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(out); err != nil {
		return err
	}
	return encoder.Close()
}

// buildYAMLGame converts a detected game to the YAML output structure.
func buildYAMLGame(game types.DetectedGame) yamlGame {
	paths := make([]yamlPath, 0, len(game.Paths))
	for _, p := range game.Paths {
		paths = append(paths, yamlPath{
			Pattern:   p.Pattern,
			Path:      p.ResolvedPath,
			Exists:    p.Exists,
			FileCount: p.FileCount,
			Size:      p.TotalSizeBytes,
		})
	}

	return yamlGame{
		Name:         game.Name,
		Size:         game.TotalSizeBytes,
		SizeHuman:    types.FormatSize(game.TotalSizeBytes),
		LastModified: game.LastModified,
		Paths:        paths,
	}
}

func init() {
	Register("yaml", func() Formatter {
		return &YAMLFormatter{}
	})
}

// Ensure YAMLFormatter implements Formatter.
var _ Formatter = (*YAMLFormatter)(nil)
