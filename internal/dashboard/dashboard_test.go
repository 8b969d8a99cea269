package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markalston/formationsgest/internal/client"
	"github.com/markalston/formationsgest/internal/models"
)

type fakeSource struct {
	formations   []models.Formation
	inscriptions []models.Inscription
	candidatures []models.Candidature
	plannings    []models.Planning
	stats        models.EvaluationStats
	err          error

	planningOpts *client.ListOptions
}

func list[T any](items []T) *client.List[T] {
	return &client.List[T]{Items: items, Total: len(items)}
}

func (f *fakeSource) ListFormations(ctx context.Context, opts *client.ListOptions) (*client.List[models.Formation], error) {
	return list(f.formations), f.err
}

func (f *fakeSource) ListInscriptions(ctx context.Context, opts *client.ListOptions) (*client.List[models.Inscription], error) {
	return list(f.inscriptions), nil
}

func (f *fakeSource) ListCandidatures(ctx context.Context, opts *client.ListOptions) (*client.List[models.Candidature], error) {
	return list(f.candidatures), nil
}

func (f *fakeSource) ListPlannings(ctx context.Context, opts *client.ListOptions) (*client.List[models.Planning], error) {
	f.planningOpts = opts
	return list(f.plannings), nil
}

func (f *fakeSource) EvaluationStats(ctx context.Context, opts *client.ListOptions) (*models.EvaluationStats, error) {
	s := f.stats
	return &s, nil
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, Percent(3, 0))
	assert.Equal(t, 50.0, Percent(1, 2))
	assert.Equal(t, 100.0, Percent(5, 4))
	assert.Equal(t, 0.0, Percent(-1, 4))
}

func TestShares(t *testing.T) {
	bars, total := Shares(map[string]int{"A": 1, "B": 3, "Z": 0, "X": 4}, []string{"B", "A", "C"})
	assert.Equal(t, 8, total)
	assert.Equal(t, []Bar{
		{Label: "B", Count: 3, Percent: 37.5},
		{Label: "A", Count: 1, Percent: 12.5},
		{Label: "C", Count: 0, Percent: 0},
		{Label: "X", Count: 4, Percent: 50},
		{Label: "Z", Count: 0, Percent: 0},
	}, bars)
}

func TestShares_EmptyTotalIsAllZero(t *testing.T) {
	bars, total := Shares(nil, []string{"EN_ATTENTE", "CONFIRMEE"})
	assert.Zero(t, total)
	for _, b := range bars {
		assert.Zero(t, b.Percent)
	}
}

func TestBuild_Admin(t *testing.T) {
	src := &fakeSource{
		formations: []models.Formation{{ID: "f1"}, {ID: "f2"}},
		inscriptions: []models.Inscription{
			{Statut: models.InscriptionConfirmee},
			{Statut: models.InscriptionConfirmee},
			{Statut: models.InscriptionEnAttente},
			{Statut: models.InscriptionAnnulee},
		},
		candidatures: []models.Candidature{{Statut: models.CandidatureAcceptee}},
		stats:        models.EvaluationStats{Total: 10, Moyenne: 4.3},
	}

	d, err := Build(context.Background(), src, models.UserProfile{Role: models.RoleAdmin})
	require.NoError(t, err)

	assert.Contains(t, d.Stats, Stat{Label: "Formations", Value: "2"})
	assert.Contains(t, d.Stats, Stat{Label: "Note moyenne", Value: "4.3/5"})
	require.Len(t, d.Sections, 2)
	assert.Equal(t, 4, d.Sections[0].Total)
	assert.Equal(t, Bar{Label: models.InscriptionConfirmee, Count: 2, Percent: 50}, d.Sections[0].Bars[1])
}

func TestBuild_FormateurScopesToOwnPlannings(t *testing.T) {
	src := &fakeSource{
		plannings: []models.Planning{{ID: "p1"}},
		stats:     models.EvaluationStats{Total: 2, Moyenne: 4, Repartition: map[string]int{"4": 1, "5": 1}},
	}

	d, err := Build(context.Background(), src, models.UserProfile{ID: "u7", Role: models.RoleFormateur})
	require.NoError(t, err)

	require.NotNil(t, src.planningOpts)
	assert.Equal(t, "u7", src.planningOpts.Filters["formateur"])
	assert.Contains(t, d.Stats, Stat{Label: "Mes sessions", Value: "1"})
	require.Len(t, d.Sections, 1)
	assert.Len(t, d.Sections[0].Bars, 5)
}

func TestBuild_PropagatesErrors(t *testing.T) {
	src := &fakeSource{err: errors.New("boom")}
	_, err := Build(context.Background(), src, models.UserProfile{Role: models.RoleAdmin})
	assert.Error(t, err)
}

func TestBuild_UnknownRole(t *testing.T) {
	_, err := Build(context.Background(), &fakeSource{}, models.UserProfile{Role: "GUEST"})
	assert.Error(t, err)
}
