package cli

import "github.com/charmbracelet/lipgloss"

// Shared output styles.
var (
	titleStyle = lipgloss.NewStyle().Bold(true)

	scoreStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#1a7f37", Dark: "#3fb950"})

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#6e7781", Dark: "#8b949e"})
)
