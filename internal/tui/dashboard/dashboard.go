// ABOUTME: Dashboard component rendering a role's headline figures and status shares
// ABOUTME: Stat cards on top, one percentage bar per status below

package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	board "github.com/markalston/formationsgest/internal/dashboard"
	"github.com/markalston/formationsgest/internal/tui/icons"
	"github.com/markalston/formationsgest/internal/tui/styles"
	"github.com/markalston/formationsgest/internal/tui/widgets"
)

const cardWidth = 22

// Dashboard displays a board.Dashboard
type Dashboard struct {
	data   *board.Dashboard
	width  int
	height int
}

// New creates a dashboard view
func New(data *board.Dashboard, width, height int) *Dashboard {
	return &Dashboard{data: data, width: width, height: height}
}

// SetSize updates the dashboard dimensions
func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
}

func statIcon(label string) icons.Icon {
	switch label {
	case "Formations":
		return icons.Formation
	case "Inscriptions":
		return icons.Inscription
	case "Candidatures":
		return icons.Candidature
	case "Plannings", "Mes sessions":
		return icons.Planning
	default:
		return icons.Evaluation
	}
}

// View renders the dashboard
func (d *Dashboard) View() string {
	if d.data == nil {
		return "Chargement du tableau de bord..."
	}

	var sb strings.Builder
	sb.WriteString(styles.Title.Render(d.data.Title))
	sb.WriteString("\n")

	var cards []string
	for _, s := range d.data.Stats {
		cards = append(cards, widgets.StatCard(statIcon(s.Label), s.Label, s.Value, cardWidth))
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	sb.WriteString("\n\n")

	barCfg := widgets.DefaultProgressBarConfig()
	barCfg.Width = max(10, min(40, d.width-40))

	for _, sec := range d.data.Sections {
		sb.WriteString(styles.ValueStyle.Render(sec.Title))
		sb.WriteString(styles.Subtitle.Render(fmt.Sprintf(" (%d)", sec.Total)))
		sb.WriteString("\n")

		labelWidth := 0
		for _, b := range sec.Bars {
			labelWidth = max(labelWidth, len(b.Label))
		}
		for _, b := range sec.Bars {
			sb.WriteString("  ")
			sb.WriteString(widgets.ShareBar(b.Label, b.Count, b.Percent, labelWidth, barCfg))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	style := lipgloss.NewStyle()
	if d.width > 0 {
		style = style.Width(d.width)
	}
	if d.height > 0 {
		style = style.Height(d.height)
	}
	return style.Render(sb.String())
}
