// ABOUTME: Progress bars for percentage shares on dashboards
// ABOUTME: Clamps to [0,100] and colors the filled part by status level

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ProgressBarConfig holds configuration for the progress bar
type ProgressBarConfig struct {
	Width       int
	FilledColor lipgloss.Color
	EmptyColor  lipgloss.Color
}

// DefaultProgressBarConfig returns sensible defaults
func DefaultProgressBarConfig() ProgressBarConfig {
	return ProgressBarConfig{
		Width:       20,
		FilledColor: lipgloss.Color("#2563EB"), // Blue
		EmptyColor:  lipgloss.Color("#374151"), // Dark gray
	}
}

// filledCells is the number of filled cells for percent in a bar of width
func filledCells(percent float64, width int) int {
	percent = max(0, min(100, percent))
	return min(width, int(percent/100.0*float64(width)+0.5))
}

// ProgressBar renders percent as a bracketed bar
func ProgressBar(percent float64, config ProgressBarConfig) string {
	if config.Width <= 0 {
		config.Width = 20
	}
	filled := filledCells(percent, config.Width)

	var bar strings.Builder
	bar.WriteString("[")
	bar.WriteString(lipgloss.NewStyle().Foreground(config.FilledColor).Render(strings.Repeat("█", filled)))
	bar.WriteString(lipgloss.NewStyle().Foreground(config.EmptyColor).Render(strings.Repeat("░", config.Width-filled)))
	bar.WriteString("]")
	return bar.String()
}

// ShareBar renders one labelled share line: label, bar, percent and count
func ShareBar(label string, count int, percent float64, labelWidth int, config ProgressBarConfig) string {
	config.FilledColor = StatusColor(StatusFor(label))
	return fmt.Sprintf("%-*s %s %3.0f%% (%d)",
		labelWidth, label,
		ProgressBar(percent, config),
		max(0, min(100, percent)),
		count,
	)
}
