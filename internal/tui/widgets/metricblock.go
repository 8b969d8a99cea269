// ABOUTME: Compact stat card widget for dashboard headline figures
// ABOUTME: Renders an icon, title and value in a bordered box

package widgets

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/formationsgest/internal/tui/icons"
)

// StatCard renders a bordered headline figure
func StatCard(icon icons.Icon, title, value string, width int) string {
	if width <= 0 {
		width = 22
	}

	titleLine := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Render(icon.String() + " " + title)
	valueLine := lipgloss.NewStyle().Foreground(lipgloss.Color("#F9FAFB")).Bold(true).Render(value)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#2563EB")).
		Padding(0, 1).
		Width(width - 2).
		Render(titleLine + "\n" + valueLine)
}
