// ABOUTME: Authentication and user administration endpoints
// ABOUTME: Login, profile, password flows and /auth/users CRUD

package client

import (
	"context"
	"net/http"

	"github.com/markalston/formationsgest/internal/models"
)

// Login calls POST /auth/login. A 401 here means bad credentials and never
// ends an existing session.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error) {
	return decodeRaw[models.LoginResult](ctx, c, request{
		method:               http.MethodPost,
		path:                 "/auth/login",
		body:                 creds,
		skipUnauthorizedHook: true,
	})
}

// Me calls GET /auth/me
func (c *Client) Me(ctx context.Context) (*models.UserProfile, error) {
	return call[models.UserProfile](ctx, c, request{method: http.MethodGet, path: "/auth/me"})
}

// UpdateMe calls PUT /auth/me
func (c *Client) UpdateMe(ctx context.Context, update *models.ProfileUpdate) (*models.UserProfile, error) {
	return call[models.UserProfile](ctx, c, request{method: http.MethodPut, path: "/auth/me", body: update})
}

// ChangePassword calls PUT /auth/password
func (c *Client) ChangePassword(ctx context.Context, change *models.PasswordChange) error {
	return c.exec(ctx, request{method: http.MethodPut, path: "/auth/password", body: change})
}

// ForgotPassword calls POST /auth/forgot-password
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.exec(ctx, request{
		method: http.MethodPost,
		path:   "/auth/forgot-password",
		body:   map[string]string{"email": email},
	})
}

// ResetPassword calls POST /auth/reset-password
func (c *Client) ResetPassword(ctx context.Context, reset *models.PasswordReset) error {
	return c.exec(ctx, request{method: http.MethodPost, path: "/auth/reset-password", body: reset})
}

// ListUsers calls GET /auth/users
func (c *Client) ListUsers(ctx context.Context, opts *ListOptions) (*List[models.User], error) {
	return callList[models.User](ctx, c, request{method: http.MethodGet, path: "/auth/users", query: opts.values()})
}

// GetUser calls GET /auth/users/:id
func (c *Client) GetUser(ctx context.Context, id string) (*models.User, error) {
	return call[models.User](ctx, c, request{method: http.MethodGet, path: idPath("/auth/users", id)})
}

// CreateUser calls POST /auth/users
func (c *Client) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	return call[models.User](ctx, c, request{method: http.MethodPost, path: "/auth/users", body: user})
}

// UpdateUser calls PUT /auth/users/:id
func (c *Client) UpdateUser(ctx context.Context, id string, user *models.User) (*models.User, error) {
	return call[models.User](ctx, c, request{method: http.MethodPut, path: idPath("/auth/users", id), body: user})
}

// DeleteUser calls DELETE /auth/users/:id
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.exec(ctx, request{method: http.MethodDelete, path: idPath("/auth/users", id)})
}
