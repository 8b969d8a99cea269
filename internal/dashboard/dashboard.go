// ABOUTME: Role-based dashboard data assembled from API calls
// ABOUTME: Computes counts and per-status percentage shares for each role's home screen

package dashboard

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/markalston/formationsgest/internal/client"
	"github.com/markalston/formationsgest/internal/models"
)

// Bar is one status share
type Bar struct {
	Label   string
	Count   int
	Percent float64
}

// Section groups bars under a heading
type Section struct {
	Title string
	Total int
	Bars  []Bar
}

// Stat is a single headline figure
type Stat struct {
	Label string
	Value string
}

// Dashboard is what a role sees on its home screen
type Dashboard struct {
	Title    string
	Stats    []Stat
	Sections []Section
}

// Source is the slice of the API client dashboards read from
type Source interface {
	ListFormations(ctx context.Context, opts *client.ListOptions) (*client.List[models.Formation], error)
	ListInscriptions(ctx context.Context, opts *client.ListOptions) (*client.List[models.Inscription], error)
	ListCandidatures(ctx context.Context, opts *client.ListOptions) (*client.List[models.Candidature], error)
	ListPlannings(ctx context.Context, opts *client.ListOptions) (*client.List[models.Planning], error)
	EvaluationStats(ctx context.Context, opts *client.ListOptions) (*models.EvaluationStats, error)
}

// Percent is part's share of total in [0,100]. A zero total yields 0.
func Percent(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	p := float64(part) / float64(total) * 100
	return math.Max(0, math.Min(100, p))
}

// Shares turns counts into bars in the given order, followed by any other
// labels in sorted order
func Shares(counts map[string]int, order []string) (bars []Bar, total int) {
	for _, n := range counts {
		total += n
	}

	labels := slices.Clone(order)
	var extra []string
	for k := range counts {
		if !slices.Contains(order, k) {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	labels = append(labels, extra...)

	for _, l := range labels {
		bars = append(bars, Bar{Label: l, Count: counts[l], Percent: Percent(counts[l], total)})
	}
	return bars, total
}

func countBy[T any](items []T, key func(T) string) map[string]int {
	out := map[string]int{}
	for _, it := range items {
		k := key(it)
		if k == "" {
			k = "INCONNU"
		}
		out[k]++
	}
	return out
}

var (
	inscriptionOrder = []string{models.InscriptionEnAttente, models.InscriptionConfirmee, models.InscriptionAnnulee}
	candidatureOrder = []string{models.CandidatureEnAttente, models.CandidatureAcceptee, models.CandidatureRefusee}
)

// Build fetches and assembles the dashboard for user's role
func Build(ctx context.Context, src Source, user models.UserProfile) (*Dashboard, error) {
	switch user.Role {
	case models.RoleAdmin:
		return buildAdmin(ctx, src)
	case models.RoleAssistant:
		return buildAssistant(ctx, src)
	case models.RoleFormateur:
		return buildFormateur(ctx, src, user)
	default:
		return nil, fmt.Errorf("no dashboard for role %q", user.Role)
	}
}

func buildAdmin(ctx context.Context, src Source) (*Dashboard, error) {
	var (
		formations   *client.List[models.Formation]
		inscriptions *client.List[models.Inscription]
		candidatures *client.List[models.Candidature]
		stats        *models.EvaluationStats
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		formations, err = src.ListFormations(gctx, nil)
		return err
	})
	g.Go(func() (err error) {
		inscriptions, err = src.ListInscriptions(gctx, nil)
		return err
	})
	g.Go(func() (err error) {
		candidatures, err = src.ListCandidatures(gctx, nil)
		return err
	})
	g.Go(func() (err error) {
		stats, err = src.EvaluationStats(gctx, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	insBars, insTotal := Shares(countBy(inscriptions.Items, func(i models.Inscription) string { return i.Statut }), inscriptionOrder)
	candBars, candTotal := Shares(countBy(candidatures.Items, func(c models.Candidature) string { return c.Statut }), candidatureOrder)

	return &Dashboard{
		Title: "Tableau de bord administrateur",
		Stats: []Stat{
			{Label: "Formations", Value: strconv.Itoa(formations.Total)},
			{Label: "Inscriptions", Value: strconv.Itoa(inscriptions.Total)},
			{Label: "Candidatures", Value: strconv.Itoa(candidatures.Total)},
			{Label: "Note moyenne", Value: average(stats)},
		},
		Sections: []Section{
			{Title: "Inscriptions par statut", Total: insTotal, Bars: insBars},
			{Title: "Candidatures par statut", Total: candTotal, Bars: candBars},
		},
	}, nil
}

func buildAssistant(ctx context.Context, src Source) (*Dashboard, error) {
	var (
		inscriptions *client.List[models.Inscription]
		plannings    *client.List[models.Planning]
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		inscriptions, err = src.ListInscriptions(gctx, nil)
		return err
	})
	g.Go(func() (err error) {
		plannings, err = src.ListPlannings(gctx, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	insBars, insTotal := Shares(countBy(inscriptions.Items, func(i models.Inscription) string { return i.Statut }), inscriptionOrder)
	planBars, planTotal := Shares(countBy(plannings.Items, func(p models.Planning) string { return p.Statut }), nil)

	return &Dashboard{
		Title: "Tableau de bord assistant",
		Stats: []Stat{
			{Label: "Inscriptions", Value: strconv.Itoa(inscriptions.Total)},
			{Label: "Plannings", Value: strconv.Itoa(plannings.Total)},
		},
		Sections: []Section{
			{Title: "Inscriptions par statut", Total: insTotal, Bars: insBars},
			{Title: "Plannings par statut", Total: planTotal, Bars: planBars},
		},
	}, nil
}

func buildFormateur(ctx context.Context, src Source, user models.UserProfile) (*Dashboard, error) {
	own := &client.ListOptions{Filters: map[string]string{"formateur": user.ID}}

	var (
		plannings *client.List[models.Planning]
		stats     *models.EvaluationStats
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		plannings, err = src.ListPlannings(gctx, own)
		return err
	})
	g.Go(func() (err error) {
		stats, err = src.EvaluationStats(gctx, own)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	noteBars, noteTotal := Shares(stats.Repartition, []string{"1", "2", "3", "4", "5"})

	return &Dashboard{
		Title: "Tableau de bord formateur",
		Stats: []Stat{
			{Label: "Mes sessions", Value: strconv.Itoa(plannings.Total)},
			{Label: "Évaluations", Value: strconv.Itoa(stats.Total)},
			{Label: "Note moyenne", Value: average(stats)},
		},
		Sections: []Section{
			{Title: "Répartition des notes", Total: noteTotal, Bars: noteBars},
		},
	}, nil
}

func average(s *models.EvaluationStats) string {
	if s == nil || s.Total == 0 {
		return "-"
	}
	return strconv.FormatFloat(s.Moyenne, 'f', 1, 64) + "/5"
}
