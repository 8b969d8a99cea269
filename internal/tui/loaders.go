// ABOUTME: Data loaders behind each TUI list route
// ABOUTME: Fetch a resource through the API client and shape it as a table

package tui

import (
	"context"

	"github.com/markalston/formationsgest/internal/client"
	"github.com/markalston/formationsgest/internal/dashboard"
	"github.com/markalston/formationsgest/internal/export"
	"github.com/markalston/formationsgest/internal/gate"
	"github.com/markalston/formationsgest/internal/models"
)

// API is the slice of the API client the TUI reads from
type API interface {
	dashboard.Source
	ListFormateurs(ctx context.Context, opts *client.ListOptions) (*client.List[models.Formateur], error)
	ListEntreprises(ctx context.Context, opts *client.ListOptions) (*client.List[models.Entreprise], error)
	ListEvaluations(ctx context.Context, opts *client.ListOptions) (*client.List[models.Evaluation], error)
	ListUsers(ctx context.Context, opts *client.ListOptions) (*client.List[models.User], error)
}

type loadFunc func(ctx context.Context, api API, user models.UserProfile) (export.Table, error)

// tableOf adapts a list call and a table builder into a loadFunc
func tableOf[T any](
	list func(api API, ctx context.Context, user models.UserProfile) (*client.List[T], error),
	build func([]T) export.Table,
) loadFunc {
	return func(ctx context.Context, api API, user models.UserProfile) (export.Table, error) {
		res, err := list(api, ctx, user)
		if err != nil {
			return export.Table{}, err
		}
		return build(res.Items), nil
	}
}

// ownScope restricts formateurs to their own records
func ownScope(user models.UserProfile) *client.ListOptions {
	if user.Role != models.RoleFormateur {
		return nil
	}
	return &client.ListOptions{Filters: map[string]string{"formateur": user.ID}}
}

var listLoaders = map[string]loadFunc{
	gate.RouteFormations: tableOf(func(api API, ctx context.Context, _ models.UserProfile) (*client.List[models.Formation], error) {
		return api.ListFormations(ctx, nil)
	}, export.Formations),
	gate.RouteInscriptions: tableOf(func(api API, ctx context.Context, _ models.UserProfile) (*client.List[models.Inscription], error) {
		return api.ListInscriptions(ctx, nil)
	}, export.Inscriptions),
	gate.RouteFormateurs: tableOf(func(api API, ctx context.Context, _ models.UserProfile) (*client.List[models.Formateur], error) {
		return api.ListFormateurs(ctx, nil)
	}, export.Formateurs),
	gate.RoutePlannings: tableOf(func(api API, ctx context.Context, u models.UserProfile) (*client.List[models.Planning], error) {
		return api.ListPlannings(ctx, ownScope(u))
	}, export.Plannings),
	gate.RouteEntreprises: tableOf(func(api API, ctx context.Context, _ models.UserProfile) (*client.List[models.Entreprise], error) {
		return api.ListEntreprises(ctx, nil)
	}, export.Entreprises),
	gate.RouteCandidatures: tableOf(func(api API, ctx context.Context, _ models.UserProfile) (*client.List[models.Candidature], error) {
		return api.ListCandidatures(ctx, nil)
	}, export.Candidatures),
	gate.RouteEvaluations: tableOf(func(api API, ctx context.Context, u models.UserProfile) (*client.List[models.Evaluation], error) {
		return api.ListEvaluations(ctx, ownScope(u))
	}, export.Evaluations),
	gate.RouteUsers: tableOf(func(api API, ctx context.Context, _ models.UserProfile) (*client.List[models.User], error) {
		return api.ListUsers(ctx, nil)
	}, export.Users),
}

func isDashboardRoute(route string) bool {
	return route == gate.RouteAdmin || route == gate.RouteAssistant || route == gate.RouteFormateur
}

// hasScreen reports whether the TUI can show route
func hasScreen(route string) bool {
	if isDashboardRoute(route) || route == gate.RouteAccount {
		return true
	}
	_, ok := listLoaders[route]
	return ok
}
