// Package styles provides Lip Gloss styles for the Wordimize terminal client.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette.
var (
	Primary    = lipgloss.Color("#2563EB") // Blue
	Success    = lipgloss.Color("#10B981") // Green
	Warning    = lipgloss.Color("#F59E0B") // Amber
	Error      = lipgloss.Color("#EF4444") // Red
	Muted      = lipgloss.Color("#6B7280") // Gray
	Foreground = lipgloss.Color("#F9FAFB") // White
	Border     = lipgloss.Color("#374151")
)

// Header styles.
var (
	// TitleStyle renders the source word, the screen title.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Foreground).
			Background(Primary).
			Padding(0, 2)

	// StatusStyle is for the round and mistake counters next to the title.
	StatusStyle = lipgloss.NewStyle().
			Foreground(Muted).
			PaddingLeft(2)

	// DangerStatusStyle highlights the mistake counter on the last allowed mistake.
	DangerStatusStyle = StatusStyle.
				Foreground(Error).
				Bold(true)
)

// Word list styles.
var (
	WordStyle = lipgloss.NewStyle().
			Foreground(Foreground).
			PaddingLeft(2)

	// NewestWordStyle marks the most recent word.
	NewestWordStyle = WordStyle.
			Foreground(Success).
			Bold(true)

	EmptyListStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true).
			PaddingLeft(2)
)

// Prompt and alert styles.
var (
	PromptStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1)

	AlertStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Warning).
			Padding(0, 2)

	AlertTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Warning)

	// ResetAlertTitleStyle is used when a round was forced to restart.
	ResetAlertTitleStyle = AlertTitleStyle.
				Foreground(Error)

	AlertMessageStyle = lipgloss.NewStyle().
				Foreground(Foreground)

	HelpStyle = lipgloss.NewStyle().
			Foreground(Muted).
			MarginTop(1)
)
