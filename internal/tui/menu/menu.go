// ABOUTME: Role-filtered navigation menu for the TUI
// ABOUTME: Lists the routes the access gate allows plus logout and quit

package menu

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/markalston/formationsgest/internal/gate"
	"github.com/markalston/formationsgest/internal/tui/icons"
)

// Actions that are not gate routes
const (
	ActionLogout = "logout"
	ActionQuit   = "quit"
)

// SelectedMsg is sent when the user picks an entry. Route is a gate route
// name or one of the Action constants.
type SelectedMsg struct {
	Route string
}

// CancelledMsg is sent when the user leaves the menu with esc
type CancelledMsg struct{}

type option struct {
	label string
	route string
}

// Menu is the navigation menu of an authenticated user
type Menu struct {
	options  []option
	selected string
	form     *huh.Form
}

// New builds the menu from the routes the user may open. Routes without a
// screen are skipped.
func New(routes []gate.Route, hasScreen func(route string) bool) *Menu {
	m := &Menu{}
	for _, r := range routes {
		if hasScreen != nil && !hasScreen(r.Name) {
			continue
		}
		m.options = append(m.options, option{label: iconFor(r.Name).String() + " " + r.Title, route: r.Name})
	}
	m.options = append(m.options,
		option{label: icons.Logout.String() + " Se déconnecter", route: ActionLogout},
		option{label: icons.Quit.String() + " Quitter", route: ActionQuit},
	)
	m.selected = m.options[0].route
	m.form = m.createForm()
	return m
}

func iconFor(route string) icons.Icon {
	switch route {
	case gate.RouteAdmin, gate.RouteAssistant, gate.RouteFormateur:
		return icons.Dashboard
	case gate.RouteFormations:
		return icons.Formation
	case gate.RouteInscriptions:
		return icons.Inscription
	case gate.RouteFormateurs:
		return icons.Formateur
	case gate.RoutePlannings:
		return icons.Planning
	case gate.RouteEntreprises:
		return icons.Entreprise
	case gate.RouteCandidatures:
		return icons.Candidature
	case gate.RouteEvaluations:
		return icons.Evaluation
	case gate.RouteUsers, gate.RouteAccount:
		return icons.User
	default:
		return icons.Info
	}
}

func (m *Menu) createForm() *huh.Form {
	var opts []huh.Option[string]
	for _, o := range m.options {
		opts = append(opts, huh.NewOption(o.label, o.route))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Menu").
				Options(opts...).
				Value(&m.selected),
		),
	).WithTheme(huh.ThemeBase())
}

// Routes returns the route of each entry in display order
func (m *Menu) Routes() []string {
	out := make([]string, len(m.options))
	for i, o := range m.options {
		out[i] = o.route
	}
	return out
}

// Reset rebuilds the form so the menu can be shown again
func (m *Menu) Reset() tea.Cmd {
	m.form = m.createForm()
	return m.form.Init()
}

// Init implements tea.Model
func (m *Menu) Init() tea.Cmd {
	return m.form.Init()
}

// Update implements tea.Model
func (m *Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		return m, func() tea.Msg { return CancelledMsg{} }
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		route := m.selected
		return m, func() tea.Msg { return SelectedMsg{Route: route} }
	}
	return m, cmd
}

// View implements tea.Model
func (m *Menu) View() string {
	return m.form.View()
}
