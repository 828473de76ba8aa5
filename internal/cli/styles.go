package cli

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// PrimaryColor is the main theme color.
	PrimaryColor = lipgloss.Color("#4A90D9")
	// SuccessColor indicates successful operations.
	SuccessColor = lipgloss.Color("#4ECDC4")
	// WarningColor indicates warnings or caution messages.
	WarningColor = lipgloss.Color("#FFE66D")
	// ErrorColor indicates errors or failure messages.
	ErrorColor = lipgloss.Color("#FF6B6B")
	// SubtleColor indicates less prominent UI elements.
	SubtleColor = lipgloss.Color("#666666")

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)

	// SuccessStyle formats success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	// WarningStyle formats warning messages.
	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	// ErrorStyle formats error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// SubtleStyle formats less prominent text.
	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// AmountStyle highlights money amounts.
	AmountStyle = lipgloss.NewStyle().
			Bold(true)

	// BoxStyle is used for bordered summary boxes.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(SubtleColor).
			Padding(0, 1)
)

// Icons used in command output.
const (
	IconSuccess = "✓"
	IconWarning = "⚠"
	IconError   = "✗"
	IconActive  = "●"
)

// Success renders a success line.
func Success(msg string) string { return SuccessStyle.Render(IconSuccess + " " + msg) }

// Warning renders a warning line.
func Warning(msg string) string { return WarningStyle.Render(IconWarning + " " + msg) }

// Error renders an error line.
func Error(msg string) string { return ErrorStyle.Render(IconError + " " + msg) }

// Title renders a section title.
func Title(msg string) string { return TitleStyle.Render(msg) }

// Subtle renders secondary text.
func Subtle(msg string) string { return SubtleStyle.Render(msg) }
