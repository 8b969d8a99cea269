// ABOUTME: Integration tests for the TUI app
// ABOUTME: Drives Update directly with a fake session and API to check screen transitions

package tui

import (
	"context"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/markalston/formationsgest/internal/client"
	"github.com/markalston/formationsgest/internal/gate"
	"github.com/markalston/formationsgest/internal/models"
	"github.com/markalston/formationsgest/internal/session"
	"github.com/markalston/formationsgest/internal/tui/login"
	"github.com/markalston/formationsgest/internal/tui/menu"
)

type fakeSession struct {
	mu       sync.Mutex
	snapshot session.Snapshot
	user     *models.UserProfile
	loginErr error
}

func (f *fakeSession) Snapshot() session.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot
}

func (f *fakeSession) Init(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshot.Loading = false
	f.snapshot.User = f.user
	return nil
}

func (f *fakeSession) Login(ctx context.Context, creds models.Credentials) (*models.UserProfile, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshot = session.Snapshot{Token: "tok", User: f.user}
	return f.user, nil
}

func (f *fakeSession) Logout() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshot = session.Snapshot{}
}

func (f *fakeSession) Subscribe(l session.Listener) func() { return func() {} }

type fakeAPI struct{}

func (fakeAPI) ListFormations(ctx context.Context, opts *client.ListOptions) (*client.List[models.Formation], error) {
	return &client.List[models.Formation]{Items: []models.Formation{{ID: "f1", Titre: "Go avancé"}, {ID: "f2", Titre: "Docker"}}, Total: 2}, nil
}

func (fakeAPI) ListInscriptions(ctx context.Context, opts *client.ListOptions) (*client.List[models.Inscription], error) {
	return &client.List[models.Inscription]{}, nil
}

func (fakeAPI) ListCandidatures(ctx context.Context, opts *client.ListOptions) (*client.List[models.Candidature], error) {
	return &client.List[models.Candidature]{}, nil
}

func (fakeAPI) ListPlannings(ctx context.Context, opts *client.ListOptions) (*client.List[models.Planning], error) {
	return &client.List[models.Planning]{}, nil
}

func (fakeAPI) EvaluationStats(ctx context.Context, opts *client.ListOptions) (*models.EvaluationStats, error) {
	return &models.EvaluationStats{}, nil
}

func (fakeAPI) ListFormateurs(ctx context.Context, opts *client.ListOptions) (*client.List[models.Formateur], error) {
	return &client.List[models.Formateur]{}, nil
}

func (fakeAPI) ListEntreprises(ctx context.Context, opts *client.ListOptions) (*client.List[models.Entreprise], error) {
	return &client.List[models.Entreprise]{}, nil
}

func (fakeAPI) ListEvaluations(ctx context.Context, opts *client.ListOptions) (*client.List[models.Evaluation], error) {
	return &client.List[models.Evaluation]{}, nil
}

func (fakeAPI) ListUsers(ctx context.Context, opts *client.ListOptions) (*client.List[models.User], error) {
	return &client.List[models.User]{}, nil
}

func userWith(role models.Role) *models.UserProfile {
	return &models.UserProfile{ID: "u1", Prenom: "Claire", Nom: "Dupont", Role: role}
}

func newApp(t *testing.T, sess *fakeSession) *App {
	t.Helper()
	app := New(sess, gate.New(gate.DefaultRoutes(), gate.PolicyHome), fakeAPI{})
	app.width = 100
	app.height = 40
	return app
}

func update(t *testing.T, app *App, msg tea.Msg) (*App, tea.Cmd) {
	t.Helper()
	model, cmd := app.Update(msg)
	return model.(*App), cmd
}

func authenticated(role models.Role) *fakeSession {
	u := userWith(role)
	return &fakeSession{snapshot: session.Snapshot{Token: "tok", User: u}, user: u}
}

func TestAppInitialState_StoredToken(t *testing.T) {
	sess := &fakeSession{snapshot: session.Snapshot{Token: "tok", Loading: true}, user: userWith(models.RoleAdmin)}
	app := newApp(t, sess)

	if app.screen != ScreenLoading {
		t.Errorf("expected ScreenLoading while validating, got %d", app.screen)
	}
	if !strings.Contains(app.View(), "Vérification") {
		t.Error("expected the spinner line while validating")
	}
}

func TestAppInitialState_NoToken(t *testing.T) {
	app := newApp(t, &fakeSession{})

	if app.screen != ScreenLogin {
		t.Errorf("expected ScreenLogin without a token, got %d", app.screen)
	}
	if app.login == nil {
		t.Error("expected login form to be initialized")
	}
}

func TestAppValidated_OpensRoleHome(t *testing.T) {
	tests := []struct {
		role models.Role
		want string
	}{
		{models.RoleAdmin, gate.RouteAdmin},
		{models.RoleAssistant, gate.RouteAssistant},
		{models.RoleFormateur, gate.RouteFormateur},
	}

	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			sess := &fakeSession{snapshot: session.Snapshot{Token: "tok", Loading: true}, user: userWith(tt.role)}
			app := newApp(t, sess)
			if err := sess.Init(context.Background()); err != nil {
				t.Fatal(err)
			}

			app, cmd := update(t, app, validatedMsg{})
			if app.screen != ScreenDashboard {
				t.Fatalf("expected ScreenDashboard, got %d", app.screen)
			}
			if app.route != tt.want {
				t.Errorf("expected route %q, got %q", tt.want, app.route)
			}
			if cmd == nil {
				t.Fatal("expected a dashboard load command")
			}
			loaded, ok := cmd().(dashboardLoadedMsg)
			if !ok {
				t.Fatal("expected dashboardLoadedMsg")
			}
			if loaded.err != nil {
				t.Fatalf("unexpected load error: %v", loaded.err)
			}
		})
	}
}

func TestAppValidated_RejectedTokenShowsLogin(t *testing.T) {
	sess := &fakeSession{snapshot: session.Snapshot{Token: "tok", Loading: true}}
	app := newApp(t, sess)
	sess.Logout()

	app, _ = update(t, app, validatedMsg{err: &client.APIError{StatusCode: 401, Message: "Token invalide"}})
	if app.screen != ScreenLogin {
		t.Errorf("expected ScreenLogin, got %d", app.screen)
	}
}

func TestAppLoginSubmit_Success(t *testing.T) {
	sess := &fakeSession{user: userWith(models.RoleAssistant)}
	app := newApp(t, sess)

	app, cmd := update(t, app, login.SubmitMsg{Credentials: models.Credentials{Email: "c@d.fr", Password: "pw"}})
	if cmd == nil {
		t.Fatal("expected login command")
	}
	app, _ = update(t, app, cmd())

	if app.screen != ScreenDashboard {
		t.Errorf("expected ScreenDashboard after login, got %d", app.screen)
	}
	if app.route != gate.RouteAssistant {
		t.Errorf("expected assistant home, got %q", app.route)
	}
	if app.login != nil {
		t.Error("expected login form to be released")
	}
}

func TestAppLoginSubmit_Failure(t *testing.T) {
	sess := &fakeSession{loginErr: &client.APIError{StatusCode: 401, Message: "Identifiants invalides"}}
	app := newApp(t, sess)

	app, cmd := update(t, app, login.SubmitMsg{})
	msg := cmd()
	failed, ok := msg.(loginFailedMsg)
	if !ok {
		t.Fatalf("expected loginFailedMsg, got %T", msg)
	}
	if failed.message != "Identifiants invalides" {
		t.Errorf("expected backend message, got %q", failed.message)
	}

	app, _ = update(t, app, failed)
	if app.screen != ScreenLogin {
		t.Errorf("expected to stay on login, got %d", app.screen)
	}
	if app.login.Error() != "Identifiants invalides" {
		t.Errorf("expected error shown on form, got %q", app.login.Error())
	}
}

func TestAppNavigate_RoleMismatchRedirectsHome(t *testing.T) {
	app := newApp(t, authenticated(models.RoleAssistant))

	app, _ = update(t, app, menu.SelectedMsg{Route: gate.RouteUsers})

	if app.route != gate.RouteAssistant {
		t.Errorf("expected redirect to assistant home, got %q", app.route)
	}
	if app.screen != ScreenDashboard {
		t.Errorf("expected ScreenDashboard, got %d", app.screen)
	}
	if !strings.Contains(app.notice, "Accès refusé") {
		t.Errorf("expected access denied notice, got %q", app.notice)
	}
}

func TestAppNavigate_LoginPolicy(t *testing.T) {
	sess := authenticated(models.RoleFormateur)
	app := New(sess, gate.New(gate.DefaultRoutes(), gate.PolicyLogin), fakeAPI{})

	app, _ = update(t, app, menu.SelectedMsg{Route: gate.RouteCandidatures})
	if app.screen != ScreenLogin {
		t.Errorf("expected ScreenLogin under the login policy, got %d", app.screen)
	}
}

func TestAppListRoute_LoadsTable(t *testing.T) {
	app := newApp(t, authenticated(models.RoleAdmin))

	app, cmd := update(t, app, menu.SelectedMsg{Route: gate.RouteFormations})
	if app.screen != ScreenList {
		t.Fatalf("expected ScreenList, got %d", app.screen)
	}
	if cmd == nil {
		t.Fatal("expected list load command")
	}

	app, _ = update(t, app, cmd())
	if app.list == nil {
		t.Fatal("expected list to be built")
	}
	if got := len(app.list.Visible()); got != 2 {
		t.Errorf("expected 2 rows, got %d", got)
	}
}

func TestAppStaleLoadIgnored(t *testing.T) {
	app := newApp(t, authenticated(models.RoleAdmin))
	app, _ = update(t, app, menu.SelectedMsg{Route: gate.RouteFormations})

	app, _ = update(t, app, dashboardLoadedMsg{route: gate.RouteAdmin})
	if app.dashboard != nil {
		t.Error("dashboard result for a previous screen must be dropped")
	}
	if app.screen != ScreenList {
		t.Errorf("expected to stay on ScreenList, got %d", app.screen)
	}
}

func TestAppSessionEnded_ShowsLoginWithNotice(t *testing.T) {
	sess := authenticated(models.RoleAdmin)
	app := newApp(t, sess)
	app, _ = update(t, app, menu.SelectedMsg{Route: gate.RouteAdmin})

	sess.Logout()
	app, _ = update(t, app, sessionChangedMsg{})
	if app.screen != ScreenLogin {
		t.Fatalf("expected ScreenLogin, got %d", app.screen)
	}
	if !strings.Contains(app.View(), "Session terminée") {
		t.Error("expected session ended notice on login screen")
	}
	if app.route != "" {
		t.Errorf("expected route reset, got %q", app.route)
	}
}

func TestAppMenu_FilteredByRole(t *testing.T) {
	sess := authenticated(models.RoleFormateur)
	app := newApp(t, sess)
	app, _ = update(t, app, sessionChangedMsg{})
	if app.route != gate.RouteFormateur {
		t.Fatalf("expected formateur home, got %q", app.route)
	}

	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")})
	if app.screen != ScreenMenu {
		t.Fatalf("expected ScreenMenu, got %d", app.screen)
	}
	routes := app.menu.Routes()
	for _, forbidden := range []string{gate.RouteUsers, gate.RouteCandidatures, gate.RouteAdmin} {
		if slices.Contains(routes, forbidden) {
			t.Errorf("formateur menu must not offer %q", forbidden)
		}
	}
	if !slices.Contains(routes, gate.RoutePlannings) {
		t.Error("formateur menu should offer plannings")
	}
}

func TestAppMenu_Logout(t *testing.T) {
	sess := authenticated(models.RoleAdmin)
	app := newApp(t, sess)

	app, _ = update(t, app, menu.SelectedMsg{Route: menu.ActionLogout})
	if app.screen != ScreenLogin {
		t.Errorf("expected ScreenLogin after logout, got %d", app.screen)
	}
	if sess.Snapshot().Token != "" {
		t.Error("expected session to be cleared")
	}
}

func TestFrame_HeaderShowsUser(t *testing.T) {
	app := newApp(t, authenticated(models.RoleAdmin))
	app, _ = update(t, app, menu.SelectedMsg{Route: gate.RouteAccount})

	view := app.View()
	if !strings.Contains(view, "FormationsGest") {
		t.Error("expected app name in header")
	}
	if !strings.Contains(view, "Claire Dupont") {
		t.Error("expected user name in header")
	}
}

// blockingSession holds Init until its context is cancelled
type blockingSession struct {
	*fakeSession
}

func (b blockingSession) Init(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestAppShutdown_CancelsStartupValidation(t *testing.T) {
	sess := blockingSession{&fakeSession{snapshot: session.Snapshot{Token: "tok", Loading: true}}}
	app := New(sess, gate.New(gate.DefaultRoutes(), gate.PolicyHome), fakeAPI{})

	done := make(chan tea.Msg, 1)
	validate := app.validate()
	go func() { done <- validate() }()

	app.shutdown()

	select {
	case msg := <-done:
		v, ok := msg.(validatedMsg)
		if !ok || v.err == nil {
			t.Errorf("expected cancelled validation, got %#v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("validation kept running after shutdown")
	}
}

func TestAppSessionChanged_ReadsCurrentSnapshot(t *testing.T) {
	sess := authenticated(models.RoleAdmin)
	app := newApp(t, sess)
	app, _ = update(t, app, sessionChangedMsg{})
	if app.screen != ScreenDashboard {
		t.Fatalf("expected admin dashboard, got %d", app.screen)
	}

	// a late notification for the earlier login must not undo the logout
	sess.Logout()
	app, _ = update(t, app, sessionChangedMsg{})
	app, _ = update(t, app, sessionChangedMsg{})
	if app.screen != ScreenLogin {
		t.Errorf("expected ScreenLogin, got %d", app.screen)
	}
}

func TestAppUnknownRole_SentToLogin(t *testing.T) {
	sess := authenticated("SUPERADMIN")
	app := newApp(t, sess)
	app, _ = update(t, app, sessionChangedMsg{})

	if app.screen != ScreenLogin {
		t.Fatalf("expected ScreenLogin for an unknown role, got %d", app.screen)
	}
	if !strings.Contains(app.View(), "Accès refusé") {
		t.Error("expected access denied notice")
	}
	if app.err != nil {
		t.Errorf("expected no screen error, got %v", app.err)
	}
}

func TestAppListRoute_ServerErrorOffersRetry(t *testing.T) {
	app := newApp(t, authenticated(models.RoleAdmin))
	app, _ = update(t, app, menu.SelectedMsg{Route: gate.RouteFormations})

	app, _ = update(t, app, listLoadedMsg{route: gate.RouteFormations, err: &client.APIError{StatusCode: 503, Message: "Base indisponible"}})
	view := app.View()
	if !strings.Contains(view, "Base indisponible") || !strings.Contains(view, "réessayer") {
		t.Errorf("expected server error with retry hint, got %q", view)
	}

	app, _ = update(t, app, listLoadedMsg{route: gate.RouteFormations, err: &client.APIError{StatusCode: 404, Message: "Introuvable"}})
	if strings.Contains(app.View(), "réessayer") {
		t.Error("client errors should not offer a retry")
	}
}
