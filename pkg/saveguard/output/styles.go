package output

import "github.com/charmbracelet/lipgloss"

// Color constants using the ANSI 256-color palette.
const (
	// ColorPrimary is used for headers and game names (soft blue).
	ColorPrimary = lipgloss.Color("75")

	// ColorSuccess is used for successful uploads (green).
	ColorSuccess = lipgloss.Color("78")

	// ColorDanger is used for failed uploads (red).
	ColorDanger = lipgloss.Color("160")

	// ColorMuted is used for labels and secondary text (gray).
	ColorMuted = lipgloss.Color("243")
)

// Box styles for the scan header and summary footer.
var (
	// HeaderBox holds the scan metadata line.
	HeaderBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1).
			MarginBottom(1)

	// FooterBox holds the totals line.
	FooterBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1).
			MarginTop(1)
)

// Text styles.
var (
	// TitleStyle renders game names.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// LabelStyle renders field labels (e.g., "Games:", "Total:").
	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// ValueStyle renders field values.
	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	// SuccessStyle renders successful upload status.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle renders failed upload status.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorDanger)

	// MutedStyle renders secondary text like hints and messages.
	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// PathStyle renders resolved save paths.
	PathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	// SizeStyle renders save sizes.
	SizeStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	// TableHeaderStyle renders the game table column headers.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorMuted).
				BorderBottom(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(ColorMuted).
				PaddingRight(2)
)
