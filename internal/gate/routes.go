// ABOUTME: Route table naming every view and command with its required roles
// ABOUTME: Registration panics on unknown roles so misconfiguration fails at startup

package gate

import (
	"fmt"

	"github.com/markalston/formationsgest/internal/models"
)

// Route is a named view or command
type Route struct {
	Name   string
	Title  string
	Roles  []models.Role
	Public bool
}

// Table holds routes in registration order
type Table struct {
	byName map[string]Route
	order  []string
}

// NewTable creates an empty route table
func NewTable() *Table {
	return &Table{byName: make(map[string]Route)}
}

// Register adds r. Panics if a role is unknown or the name is taken.
func (t *Table) Register(r Route) *Table {
	if r.Name == "" {
		panic("gate: route name is required")
	}
	if _, dup := t.byName[r.Name]; dup {
		panic(fmt.Sprintf("gate: route %q registered twice", r.Name))
	}
	for _, role := range r.Roles {
		if !role.Valid() {
			panic(fmt.Sprintf("gate: route %q uses unknown role %q; valid roles: %v", r.Name, role, models.Roles))
		}
	}
	t.byName[r.Name] = r
	t.order = append(t.order, r.Name)
	return t
}

// Lookup returns the route called name
func (t *Table) Lookup(name string) (Route, bool) {
	r, ok := t.byName[name]
	return r, ok
}

// All returns every route in registration order
func (t *Table) All() []Route {
	out := make([]Route, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.byName[name])
	}
	return out
}

// Route names shared by the CLI and the TUI
const (
	RouteForgotPassword = "forgot-password"
	RouteResetPassword  = "reset-password"
	RouteAdmin          = "admin"
	RouteAssistant      = "assistant"
	RouteFormateur      = "formateur"
	RouteAccount        = "account"
	RouteFormations     = "formations"
	RouteFormationsEdit = "formations.edit"
	RouteInscriptions   = "inscriptions"
	RouteFormateurs     = "formateurs"
	RoutePlannings      = "plannings"
	RoutePlanningsEdit  = "plannings.edit"
	RouteEntreprises    = "entreprises"
	RouteCandidatures   = "candidatures"
	RouteEvaluations    = "evaluations"
	RouteEvaluationStat = "evaluations.stats"
	RouteUsers          = "users"
)

// DefaultRoutes is the FormationsGest navigation
func DefaultRoutes() *Table {
	admin := models.RoleAdmin
	assistant := models.RoleAssistant
	formateur := models.RoleFormateur

	return NewTable().
		Register(Route{Name: LoginRoute, Title: "Connexion", Public: true}).
		Register(Route{Name: RouteForgotPassword, Title: "Mot de passe oublié", Public: true}).
		Register(Route{Name: RouteResetPassword, Title: "Réinitialiser le mot de passe", Public: true}).
		Register(Route{Name: RouteAdmin, Title: "Tableau de bord administrateur", Roles: []models.Role{admin}}).
		Register(Route{Name: RouteAssistant, Title: "Tableau de bord assistant", Roles: []models.Role{assistant}}).
		Register(Route{Name: RouteFormateur, Title: "Tableau de bord formateur", Roles: []models.Role{formateur}}).
		Register(Route{Name: RouteFormations, Title: "Formations"}).
		Register(Route{Name: RouteFormationsEdit, Title: "Gérer les formations", Roles: []models.Role{admin, assistant}}).
		Register(Route{Name: RouteInscriptions, Title: "Inscriptions", Roles: []models.Role{admin, assistant}}).
		Register(Route{Name: RouteFormateurs, Title: "Formateurs", Roles: []models.Role{admin, assistant}}).
		Register(Route{Name: RoutePlannings, Title: "Plannings"}).
		Register(Route{Name: RoutePlanningsEdit, Title: "Gérer les plannings", Roles: []models.Role{admin, assistant}}).
		Register(Route{Name: RouteEntreprises, Title: "Entreprises", Roles: []models.Role{admin, assistant}}).
		Register(Route{Name: RouteCandidatures, Title: "Candidatures", Roles: []models.Role{admin}}).
		Register(Route{Name: RouteEvaluations, Title: "Évaluations"}).
		Register(Route{Name: RouteEvaluationStat, Title: "Statistiques des évaluations", Roles: []models.Role{admin, formateur}}).
		Register(Route{Name: RouteUsers, Title: "Utilisateurs", Roles: []models.Role{admin}}).
		Register(Route{Name: RouteAccount, Title: "Mon compte"})
}
