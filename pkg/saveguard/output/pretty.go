package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/jamesainslie/saveguard/pkg/saveguard/types"
)

// PrettyFormatter formats output with colors and styling using lipgloss.
// It produces a visually appealing output suitable for terminal display.
type PrettyFormatter struct{}

// FormatScan writes the formatted detection report to the buffer.
func (f *PrettyFormatter) FormatScan(w *bytes.Buffer, r *ScanReport) error {
	w.WriteString(f.formatHeader(r))
	w.WriteString("\n")
	w.WriteString(f.formatGameTable(r))
	w.WriteString(f.formatFooter(r))
	return nil
}

// formatHeader builds the header box with scan metadata.
func (f *PrettyFormatter) formatHeader(r *ScanReport) string {
	var parts []string

	knownLabel := LabelStyle.Render("Known games:")
	knownValue := ValueStyle.Render(fmt.Sprintf("%d", r.KnownGames))
	parts = append(parts, fmt.Sprintf("%s %s", knownLabel, knownValue))

	detectedLabel := LabelStyle.Render("Detected:")
	detectedValue := ValueStyle.Render(fmt.Sprintf("%d", len(r.Games)))
	parts = append(parts, fmt.Sprintf("%s %s", detectedLabel, detectedValue))

	elapsedLabel := LabelStyle.Render("Elapsed:")
	elapsedValue := MutedStyle.Render(formatDuration(r.Elapsed))
	parts = append(parts, fmt.Sprintf("%s %s", elapsedLabel, elapsedValue))

	return HeaderBox.Render(strings.Join(parts, "  "))
}

// formatGameTable builds the game table with SIZE, FILES and GAME columns.
func (f *PrettyFormatter) formatGameTable(r *ScanReport) string {
	if len(r.Games) == 0 {
		return MutedStyle.Render("  No game saves found\n")
	}

	var sb strings.Builder

	sizeHeader := TableHeaderStyle.Render("SIZE")
	filesHeader := TableHeaderStyle.Render("FILES")
	gameHeader := TableHeaderStyle.Render("GAME")
	sb.WriteString(fmt.Sprintf("  %s  %s  %s\n", sizeHeader, filesHeader, gameHeader))

	// Calculate max size width for alignment
	maxSizeWidth := 8
	for _, game := range r.Games {
		if n := len(game.HumanSize()); n > maxSizeWidth {
			maxSizeWidth = n
		}
	}

	for _, game := range r.Games {
		sizeStr := SizeStyle.Render(padLeft(game.HumanSize(), maxSizeWidth))
		filesStr := ValueStyle.Render(padLeft(fmt.Sprintf("%d", fileCount(game)), 5))
		gameStr := TitleStyle.Render(game.Name)
		sb.WriteString(fmt.Sprintf("  %s  %s  %s\n", sizeStr, filesStr, gameStr))

		for _, path := range game.Paths {
			if !path.Exists {
				continue
			}
			sb.WriteString(fmt.Sprintf("  %s\n", PathStyle.Render("      "+path.ResolvedPath)))
		}
	}

	return sb.String()
}

// formatFooter builds the footer box with summary information.
func (f *PrettyFormatter) formatFooter(r *ScanReport) string {
	var parts []string

	countLabel := LabelStyle.Render("Games:")
	countValue := ValueStyle.Render(fmt.Sprintf("%d", len(r.Games)))
	parts = append(parts, fmt.Sprintf("%s %s", countLabel, countValue))

	totalLabel := LabelStyle.Render("Total:")
	totalValue := SizeStyle.Render(humanize.IBytes(uint64(r.TotalSize())))
	parts = append(parts, fmt.Sprintf("%s %s", totalLabel, totalValue))

	hint := MutedStyle.Render("Use -o plain for unformatted output")
	parts = append(parts, hint)

	return FooterBox.Render(strings.Join(parts, "  "))
}

// FormatUploads writes the formatted upload batch report to the buffer.
func (f *PrettyFormatter) FormatUploads(w *bytes.Buffer, r *UploadReport) error {
	for _, res := range r.Results {
		status := SuccessStyle.Render("OK  ")
		if !res.Success {
			status = ErrorStyle.Render("FAIL")
		}
		line := fmt.Sprintf("  %s  %s  %s\n",
			status, TitleStyle.Render(res.GameName), MutedStyle.Render(res.Message))
		w.WriteString(line)
	}

	var parts []string

	okLabel := LabelStyle.Render("Uploaded:")
	okValue := SuccessStyle.Render(fmt.Sprintf("%d/%d", r.Succeeded(), len(r.Results)))
	parts = append(parts, fmt.Sprintf("%s %s", okLabel, okValue))

	if failed := len(r.Results) - r.Succeeded(); failed > 0 {
		failLabel := LabelStyle.Render("Failed:")
		failValue := ErrorStyle.Render(fmt.Sprintf("%d", failed))
		parts = append(parts, fmt.Sprintf("%s %s", failLabel, failValue))
	}

	w.WriteString(FooterBox.Render(strings.Join(parts, "  ")))
	w.WriteString("\n")
	return nil
}

// fileCount sums the file counts of all existing paths for a game.
func fileCount(game types.DetectedGame) int {
	var n int
	for _, p := range game.Paths {
		n += p.FileCount
	}
	return n
}

// padLeft pads a string with spaces on the left to achieve the desired width.
func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

// formatDuration formats a time.Duration as a human-friendly string.
func formatDuration(d interface{ Seconds() float64 }) string {
	sec := d.Seconds()
	if sec < 1 {
		return fmt.Sprintf("%.0fms", sec*1000)
	}
	if sec < 60 {
		return fmt.Sprintf("%.1fs", sec)
	}
	minutes := int(sec) / 60
	seconds := int(sec) % 60
	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	hours := minutes / 60
	minutes = minutes % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
