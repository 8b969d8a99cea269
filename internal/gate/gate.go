// ABOUTME: Access gate deciding whether a view or command may render for a session
// ABOUTME: Waits while validating, redirects when unauthenticated or the role is not allowed

package gate

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/markalston/formationsgest/internal/models"
	"github.com/markalston/formationsgest/internal/session"
)

// Outcome is what the caller should do with a protected view
type Outcome int

const (
	Wait Outcome = iota
	Render
	RedirectLogin
	RedirectHome
)

func (o Outcome) String() string {
	switch o {
	case Wait:
		return "wait"
	case Render:
		return "render"
	case RedirectLogin:
		return "redirect-login"
	case RedirectHome:
		return "redirect-home"
	default:
		return "unknown"
	}
}

// Decision is the gate's verdict. Target names the route to show next.
type Decision struct {
	Outcome Outcome
	Target  string
}

// MismatchPolicy controls where an authenticated user without the required
// role is sent
type MismatchPolicy string

const (
	PolicyHome  MismatchPolicy = "home"
	PolicyLogin MismatchPolicy = "login"
)

// ParseMismatchPolicy accepts "home" or "login". Empty means home.
func ParseMismatchPolicy(s string) (MismatchPolicy, error) {
	switch MismatchPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyHome:
		return PolicyHome, nil
	case PolicyLogin:
		return PolicyLogin, nil
	default:
		return "", fmt.Errorf("invalid role mismatch policy %q: expected home or login", s)
	}
}

// LoginRoute is where unauthenticated sessions are sent
const LoginRoute = "login"

var homeRoutes = map[models.Role]string{
	models.RoleAdmin:     "admin",
	models.RoleAssistant: "assistant",
	models.RoleFormateur: "formateur",
}

// HomeFor returns the dashboard route of role, or the login route for an
// unknown role
func HomeFor(role models.Role) string {
	if home, ok := homeRoutes[role]; ok {
		return home
	}
	return LoginRoute
}

// Decide evaluates required roles against a session. An empty required set
// admits any authenticated user with a known role. A loading session always waits.
func Decide(required []models.Role, s session.Snapshot, policy MismatchPolicy) Decision {
	if s.Loading {
		return Decision{Outcome: Wait}
	}
	if s.State() != session.StateAuthenticated {
		return Decision{Outcome: RedirectLogin, Target: LoginRoute}
	}
	if !s.Role().Valid() {
		return Decision{Outcome: RedirectLogin, Target: LoginRoute}
	}

	if len(required) == 0 || slices.Contains(required, s.Role()) {
		return Decision{Outcome: Render}
	}

	if policy == PolicyLogin {
		return Decision{Outcome: RedirectLogin, Target: LoginRoute}
	}
	return Decision{Outcome: RedirectHome, Target: HomeFor(s.Role())}
}

// Gate applies Decide to named routes
type Gate struct {
	routes *Table
	policy MismatchPolicy
}

// New creates a gate over routes. An empty policy means PolicyHome.
func New(routes *Table, policy MismatchPolicy) *Gate {
	if policy == "" {
		policy = PolicyHome
	}
	return &Gate{routes: routes, policy: policy}
}

// Routes returns the gate's route table
func (g *Gate) Routes() *Table {
	return g.routes
}

// Check decides whether route may render for s. Public routes always render.
// Panics on an unregistered route name.
func (g *Gate) Check(route string, s session.Snapshot) Decision {
	r, ok := g.routes.Lookup(route)
	if !ok {
		panic(fmt.Sprintf("gate: unknown route %q", route))
	}
	if r.Public {
		return Decision{Outcome: Render, Target: r.Name}
	}

	d := Decide(r.Roles, s, g.policy)
	switch d.Outcome {
	case Render:
		d.Target = r.Name
	case RedirectHome, RedirectLogin:
		email := ""
		if s.User != nil {
			email = s.User.Email
		}
		slog.Warn("Access denied",
			"route", r.Name,
			"required_roles", r.Roles,
			"user_role", s.Role(),
			"user", email,
			"redirect", d.Target,
		)
	}
	return d
}

// Allowed lists the protected routes role may render, in registration order.
// An unknown role gets none.
func (g *Gate) Allowed(role models.Role) []Route {
	if !role.Valid() {
		return nil
	}
	var out []Route
	for _, r := range g.routes.All() {
		if r.Public {
			continue
		}
		if len(r.Roles) == 0 || slices.Contains(r.Roles, role) {
			out = append(out, r)
		}
	}
	return out
}
