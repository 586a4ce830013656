package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/jamesainslie/saveguard/pkg/saveguard/types"
)

// PlainFormatter formats output as a simple tab-separated table.
// It produces plain text output suitable for scripting and piping.
// No colors or styling are applied.
type PlainFormatter struct{}

// FormatScan writes the detection report to the buffer.
func (f *PlainFormatter) FormatScan(w *bytes.Buffer, r *ScanReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	if _, err := tw.Write([]byte("SIZE\tFILES\tGAME\tPATH\n")); err != nil {
		return err
	}

	for _, game := range r.Games {
		var files int
		for _, p := range game.Paths {
			files += p.FileCount
		}
		row := fmt.Sprintf("%s\t%d\t%s\t%s\n",
			types.FormatSize(game.TotalSizeBytes), files, game.Name, game.PrimaryPath())
		if _, err := tw.Write([]byte(row)); err != nil {
			return err
		}
	}

	return tw.Flush()
}

// FormatUploads writes the upload batch report to the buffer.
func (f *PlainFormatter) FormatUploads(w *bytes.Buffer, r *UploadReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	if _, err := tw.Write([]byte("STATUS\tGAME\tMESSAGE\n")); err != nil {
		return err
	}

	for _, res := range r.Results {
		status := "ok"
		if !res.Success {
			status = "failed"
		}
		row := fmt.Sprintf("%s\t%s\t%s\n", status, res.GameName, res.Message)
		if _, err := tw.Write([]byte(row)); err != nil {
			return err
		}
	}

	return tw.Flush()
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
