package ui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	ColorSuccess   = lipgloss.Color("#00D26A") // accepted, confirmed
	ColorWarning   = lipgloss.Color("#FFB800") // pending, warnings
	ColorError     = lipgloss.Color("#FF4444") // rejected, errors
	ColorAddress   = lipgloss.Color("#00B4D8") // addresses and hashes
	ColorValue     = lipgloss.Color("#FFFFFF") // heights, counts
	ColorMeta      = lipgloss.Color("#555555") // labels, timestamps
	ColorBorder    = lipgloss.Color("#1E3A5F") // box chrome
	ColorContract  = lipgloss.Color("#9B5DE5") // contract names
	ColorHighlight = lipgloss.Color("#F15BB5") // table headers
)

// Base styles.
var (
	StyleSuccess  = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleWarning  = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleError    = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleAddress  = lipgloss.NewStyle().Foreground(ColorAddress)
	StyleValue    = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	StyleMeta     = lipgloss.NewStyle().Foreground(ColorMeta)
	StyleContract = lipgloss.NewStyle().Foreground(ColorContract).Bold(true)

	StyleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true)

	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorContract).
			Bold(true).
			MarginBottom(1)
)

// Success formats a success message.
func Success(msg string) string { return StyleSuccess.Render("✓ " + msg) }

// Warn formats a warning message.
func Warn(msg string) string { return StyleWarning.Render("⚠ " + msg) }

// Err formats an error message.
func Err(msg string) string { return StyleError.Render("✗ " + msg) }

// Info formats a neutral message.
func Info(msg string) string { return StyleMeta.Render("ℹ " + msg) }

// Addr formats an address or hash.
func Addr(a string) string { return StyleAddress.Render(a) }

// Val formats a value.
func Val(v string) string { return StyleValue.Render(v) }

// Meta formats metadata text.
func Meta(m string) string { return StyleMeta.Render(m) }

// Contract formats a contract name.
func Contract(name string) string { return StyleContract.Render(name) }

// Truncate shortens a long address or hash for display: AbCd12…9f8e.
func Truncate(s string) string {
	if len(s) <= 12 {
		return s
	}
	return s[:6] + "…" + s[len(s)-4:]
}
