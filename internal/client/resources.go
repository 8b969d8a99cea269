// ABOUTME: Enrollment, staffing, scheduling, company, recruitment and evaluation endpoints
// ABOUTME: Thin wrappers issuing GET/POST/PUT/DELETE to fixed REST paths

package client

import (
	"context"
	"net/http"

	"github.com/markalston/formationsgest/internal/models"
)

// ListInscriptions calls GET /inscriptions
func (c *Client) ListInscriptions(ctx context.Context, opts *ListOptions) (*List[models.Inscription], error) {
	return callList[models.Inscription](ctx, c, request{method: http.MethodGet, path: "/inscriptions", query: opts.values()})
}

// CreateInscription calls POST /inscriptions, multipart when documents are attached
func (c *Client) CreateInscription(ctx context.Context, in *models.Inscription, documents ...*Upload) (*models.Inscription, error) {
	req, err := withUploads(request{method: http.MethodPost, path: "/inscriptions", body: in}, documents...)
	if err != nil {
		return nil, err
	}
	return call[models.Inscription](ctx, c, req)
}

// UpdateInscriptionStatus calls PUT /inscriptions/:id/status
func (c *Client) UpdateInscriptionStatus(ctx context.Context, id, statut string) (*models.Inscription, error) {
	return call[models.Inscription](ctx, c, request{
		method: http.MethodPut,
		path:   idPath("/inscriptions", id, "status"),
		body:   models.StatusUpdate{Statut: statut},
	})
}

// ListFormateurs calls GET /formateurs
func (c *Client) ListFormateurs(ctx context.Context, opts *ListOptions) (*List[models.Formateur], error) {
	return callList[models.Formateur](ctx, c, request{method: http.MethodGet, path: "/formateurs", query: opts.values()})
}

// GetFormateur calls GET /formateurs/:id
func (c *Client) GetFormateur(ctx context.Context, id string) (*models.Formateur, error) {
	return call[models.Formateur](ctx, c, request{method: http.MethodGet, path: idPath("/formateurs", id)})
}

// CreateFormateur calls POST /formateurs
func (c *Client) CreateFormateur(ctx context.Context, f *models.Formateur) (*models.Formateur, error) {
	return call[models.Formateur](ctx, c, request{method: http.MethodPost, path: "/formateurs", body: f})
}

// ListPlannings calls GET /plannings
func (c *Client) ListPlannings(ctx context.Context, opts *ListOptions) (*List[models.Planning], error) {
	return callList[models.Planning](ctx, c, request{method: http.MethodGet, path: "/plannings", query: opts.values()})
}

// GetPlanning calls GET /plannings/:id
func (c *Client) GetPlanning(ctx context.Context, id string) (*models.Planning, error) {
	return call[models.Planning](ctx, c, request{method: http.MethodGet, path: idPath("/plannings", id)})
}

// CreatePlanning calls POST /plannings
func (c *Client) CreatePlanning(ctx context.Context, p *models.Planning) (*models.Planning, error) {
	return call[models.Planning](ctx, c, request{method: http.MethodPost, path: "/plannings", body: p})
}

// ListEntreprises calls GET /entreprises
func (c *Client) ListEntreprises(ctx context.Context, opts *ListOptions) (*List[models.Entreprise], error) {
	return callList[models.Entreprise](ctx, c, request{method: http.MethodGet, path: "/entreprises", query: opts.values()})
}

// GetEntreprise calls GET /entreprises/:id
func (c *Client) GetEntreprise(ctx context.Context, id string) (*models.Entreprise, error) {
	return call[models.Entreprise](ctx, c, request{method: http.MethodGet, path: idPath("/entreprises", id)})
}

// CreateEntreprise calls POST /entreprises
func (c *Client) CreateEntreprise(ctx context.Context, e *models.Entreprise) (*models.Entreprise, error) {
	return call[models.Entreprise](ctx, c, request{method: http.MethodPost, path: "/entreprises", body: e})
}

// UpdateEntreprise calls PUT /entreprises/:id
func (c *Client) UpdateEntreprise(ctx context.Context, id string, e *models.Entreprise) (*models.Entreprise, error) {
	return call[models.Entreprise](ctx, c, request{method: http.MethodPut, path: idPath("/entreprises", id), body: e})
}

// DeleteEntreprise calls DELETE /entreprises/:id
func (c *Client) DeleteEntreprise(ctx context.Context, id string) error {
	return c.exec(ctx, request{method: http.MethodDelete, path: idPath("/entreprises", id)})
}

// ListCandidatures calls GET /candidatures
func (c *Client) ListCandidatures(ctx context.Context, opts *ListOptions) (*List[models.Candidature], error) {
	return callList[models.Candidature](ctx, c, request{method: http.MethodGet, path: "/candidatures", query: opts.values()})
}

// CreateCandidature calls POST /candidatures with the CV and extra documents
func (c *Client) CreateCandidature(ctx context.Context, cand *models.Candidature, files ...*Upload) (*models.Candidature, error) {
	req, err := withUploads(request{method: http.MethodPost, path: "/candidatures", body: cand}, files...)
	if err != nil {
		return nil, err
	}
	return call[models.Candidature](ctx, c, req)
}

// AcceptCandidature calls PUT /candidatures/:id/accept
func (c *Client) AcceptCandidature(ctx context.Context, id string) (*models.Candidature, error) {
	return call[models.Candidature](ctx, c, request{method: http.MethodPut, path: idPath("/candidatures", id, "accept")})
}

// RejectCandidature calls PUT /candidatures/:id/reject
func (c *Client) RejectCandidature(ctx context.Context, id string) (*models.Candidature, error) {
	return call[models.Candidature](ctx, c, request{method: http.MethodPut, path: idPath("/candidatures", id, "reject")})
}

// CreateEvaluation calls POST /evaluations
func (c *Client) CreateEvaluation(ctx context.Context, e *models.Evaluation) (*models.Evaluation, error) {
	return call[models.Evaluation](ctx, c, request{method: http.MethodPost, path: "/evaluations", body: e})
}

// ListEvaluations calls GET /evaluations
func (c *Client) ListEvaluations(ctx context.Context, opts *ListOptions) (*List[models.Evaluation], error) {
	return callList[models.Evaluation](ctx, c, request{method: http.MethodGet, path: "/evaluations", query: opts.values()})
}

// EvaluationStats calls GET /evaluations/stats
func (c *Client) EvaluationStats(ctx context.Context, opts *ListOptions) (*models.EvaluationStats, error) {
	return call[models.EvaluationStats](ctx, c, request{method: http.MethodGet, path: "/evaluations/stats", query: opts.values()})
}
