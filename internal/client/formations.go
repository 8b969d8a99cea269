// ABOUTME: Formation catalogue endpoints
// ABOUTME: CRUD plus cached category and city lookups; image upload switches to multipart

package client

import (
	"context"
	"net/http"
	"slices"

	"github.com/markalston/formationsgest/internal/models"
)

// ListFormations calls GET /formations
func (c *Client) ListFormations(ctx context.Context, opts *ListOptions) (*List[models.Formation], error) {
	return callList[models.Formation](ctx, c, request{method: http.MethodGet, path: "/formations", query: opts.values()})
}

// GetFormation calls GET /formations/:id
func (c *Client) GetFormation(ctx context.Context, id string) (*models.Formation, error) {
	return call[models.Formation](ctx, c, request{method: http.MethodGet, path: idPath("/formations", id)})
}

// CreateFormation calls POST /formations. A non-nil image is sent as the
// "image" part of a multipart body.
func (c *Client) CreateFormation(ctx context.Context, f *models.Formation, image *Upload) (*models.Formation, error) {
	req, err := withUploads(request{method: http.MethodPost, path: "/formations", body: f}, image)
	if err != nil {
		return nil, err
	}
	defer c.invalidateReferences()
	return call[models.Formation](ctx, c, req)
}

// UpdateFormation calls PUT /formations/:id
func (c *Client) UpdateFormation(ctx context.Context, id string, f *models.Formation, image *Upload) (*models.Formation, error) {
	req, err := withUploads(request{method: http.MethodPut, path: idPath("/formations", id), body: f}, image)
	if err != nil {
		return nil, err
	}
	defer c.invalidateReferences()
	return call[models.Formation](ctx, c, req)
}

// DeleteFormation calls DELETE /formations/:id
func (c *Client) DeleteFormation(ctx context.Context, id string) error {
	defer c.invalidateReferences()
	return c.exec(ctx, request{method: http.MethodDelete, path: idPath("/formations", id)})
}

// FormationCategories calls GET /formations/categories
func (c *Client) FormationCategories(ctx context.Context) ([]string, error) {
	return c.reference(ctx, "/formations/categories")
}

// FormationVilles calls GET /formations/villes
func (c *Client) FormationVilles(ctx context.Context) ([]string, error) {
	return c.reference(ctx, "/formations/villes")
}

// reference fetches a value list, reusing a cached copy while it is fresh
func (c *Client) reference(ctx context.Context, path string) ([]string, error) {
	if c.refs != nil {
		if values, ok := c.refs.Get(path); ok {
			return slices.Clone(values), nil
		}
	}
	data, err := call[[]string](ctx, c, request{method: http.MethodGet, path: path})
	if err != nil {
		return nil, err
	}
	if c.refs != nil {
		c.refs.Set(path, slices.Clone(*data))
	}
	return *data, nil
}

// invalidateReferences drops cached value lists after a formation changes
func (c *Client) invalidateReferences() {
	if c.refs != nil {
		c.refs.Purge()
	}
}

// withUploads converts req to a multipart request when any upload is present
func withUploads(req request, uploads ...*Upload) (request, error) {
	var files []Upload
	for _, u := range uploads {
		if u != nil && u.Content != nil {
			files = append(files, *u)
		}
	}
	if len(files) == 0 {
		return req, nil
	}
	form, err := newMultipartBody(req.body, files)
	if err != nil {
		return req, err
	}
	req.body = nil
	req.form = form
	return req, nil
}
