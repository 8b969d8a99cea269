// ABOUTME: Status badge widgets for enrollment and application statuses
// ABOUTME: Maps backend status codes to colored inline badges

package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/formationsgest/internal/models"
)

// StatusLevel represents the severity of a status
type StatusLevel int

const (
	StatusOK StatusLevel = iota
	StatusWarning
	StatusCritical
	StatusInfo
	StatusNeutral
)

// Badge colors
var (
	BadgeOKBg      = lipgloss.Color("#10B981")
	BadgeWarnBg    = lipgloss.Color("#F59E0B")
	BadgeCritBg    = lipgloss.Color("#EF4444")
	BadgeInfoBg    = lipgloss.Color("#3B82F6")
	BadgeNeutralBg = lipgloss.Color("#6B7280")
)

// StatusFor classifies a backend status code
func StatusFor(statut string) StatusLevel {
	switch strings.ToUpper(statut) {
	case models.InscriptionConfirmee, models.CandidatureAcceptee, "TERMINE", "5", "4":
		return StatusOK
	case models.InscriptionEnAttente, "PLANIFIE", "3":
		return StatusWarning
	case models.InscriptionAnnulee, models.CandidatureRefusee, "2", "1":
		return StatusCritical
	case "EN_COURS":
		return StatusInfo
	default:
		return StatusNeutral
	}
}

// StatusColor returns the color of a status level
func StatusColor(level StatusLevel) lipgloss.Color {
	switch level {
	case StatusOK:
		return BadgeOKBg
	case StatusWarning:
		return BadgeWarnBg
	case StatusCritical:
		return BadgeCritBg
	case StatusInfo:
		return BadgeInfoBg
	default:
		return BadgeNeutralBg
	}
}

// Badge renders a colored status badge
func Badge(text string, level StatusLevel) string {
	fg := lipgloss.Color("#FFFFFF")
	if level == StatusWarning {
		fg = lipgloss.Color("#000000")
	}
	return lipgloss.NewStyle().
		Background(StatusColor(level)).
		Foreground(fg).
		Padding(0, 1).
		Bold(true).
		Render(text)
}

// RoleBadge renders the user's role
func RoleBadge(role models.Role) string {
	switch role {
	case models.RoleAdmin:
		return Badge(role.String(), StatusCritical)
	case models.RoleAssistant:
		return Badge(role.String(), StatusInfo)
	case models.RoleFormateur:
		return Badge(role.String(), StatusOK)
	default:
		return Badge("--", StatusNeutral)
	}
}
