// ABOUTME: Root bubbletea model for the TUI application
// ABOUTME: Follows the session state and routes every screen change through the access gate

package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/formationsgest/internal/client"
	board "github.com/markalston/formationsgest/internal/dashboard"
	"github.com/markalston/formationsgest/internal/export"
	"github.com/markalston/formationsgest/internal/gate"
	"github.com/markalston/formationsgest/internal/models"
	"github.com/markalston/formationsgest/internal/session"
	"github.com/markalston/formationsgest/internal/tui/dashboard"
	"github.com/markalston/formationsgest/internal/tui/icons"
	"github.com/markalston/formationsgest/internal/tui/listview"
	"github.com/markalston/formationsgest/internal/tui/login"
	"github.com/markalston/formationsgest/internal/tui/menu"
	"github.com/markalston/formationsgest/internal/tui/styles"
	"github.com/markalston/formationsgest/internal/tui/widgets"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenLoading Screen = iota
	ScreenLogin
	ScreenMenu
	ScreenDashboard
	ScreenList
	ScreenAccount
)

// Layout constants
const (
	minTerminalWidth = 80
	frameHeight      = 4 // header, footer and the newlines around content
)

// Session is the slice of the session manager the TUI drives
type Session interface {
	Snapshot() session.Snapshot
	Init(ctx context.Context) error
	Login(ctx context.Context, creds models.Credentials) (*models.UserProfile, error)
	Logout()
	Subscribe(l session.Listener) func()
}

// sessionChangedMsg tells the update loop the session changed. The handler
// reads the current snapshot, since deliveries may arrive out of order.
type sessionChangedMsg struct{}

// validatedMsg is sent when the startup validation finishes
type validatedMsg struct {
	err error
}

// loginFailedMsg carries the message to show under the login form
type loginFailedMsg struct {
	message string
}

// dashboardLoadedMsg is sent when dashboard data arrives
type dashboardLoadedMsg struct {
	route string
	data  *board.Dashboard
	err   error
}

// listLoadedMsg is sent when a list route's data arrives
type listLoadedMsg struct {
	route string
	table export.Table
	err   error
}

// App is the root model for the TUI
type App struct {
	session Session
	gate    *gate.Gate
	api     API

	screen     Screen
	route      string
	width      int
	height     int
	err        error
	notice     string
	lastUpdate time.Time
	snapshot   session.Snapshot

	// ctx is cancelled when the program exits; loads derive from it
	ctx    context.Context
	cancel context.CancelFunc

	// cancelLoad aborts the in-flight load of the current screen
	cancelLoad context.CancelFunc

	// Child models
	spinner   spinner.Model
	login     *login.Login
	menu      *menu.Menu
	dashboard *dashboard.Dashboard
	list      *listview.List
}

// New creates a new TUI application
func New(sess Session, g *gate.Gate, api API) *App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		ctx:      ctx,
		cancel:   cancel,
		session:  sess,
		gate:     g,
		api:      api,
		spinner:  sp,
		snapshot: sess.Snapshot(),
	}
	a.screen = ScreenLoading
	if !a.snapshot.Loading && a.snapshot.State() == session.StateUnauthenticated {
		a.screen = ScreenLogin
		a.login = login.New("")
	}
	return a
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	switch {
	case a.snapshot.Loading:
		return tea.Batch(a.spinner.Tick, a.validate())
	case a.screen == ScreenLogin:
		return a.login.Init()
	default:
		return func() tea.Msg { return sessionChangedMsg{} }
	}
}

// validate runs the startup session check
func (a *App) validate() tea.Cmd {
	return func() tea.Msg {
		err := a.session.Init(a.ctx)
		return validatedMsg{err: err}
	}
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.dashboard != nil {
			a.dashboard.SetSize(a.contentWidth(), a.contentHeight())
		}
		if a.list != nil {
			a.list.SetHeight(a.contentHeight())
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a.updateScreen(msg)

	case spinner.TickMsg:
		if a.screen != ScreenLoading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case validatedMsg:
		if msg.err != nil {
			slog.Info("Stored session not restored", "error", msg.err)
		}
		return a.applySession(a.session.Snapshot())

	case sessionChangedMsg:
		return a.applySession(a.session.Snapshot())

	case login.SubmitMsg:
		return a, a.submitLogin(msg.Credentials)

	case loginFailedMsg:
		if a.login == nil {
			return a, nil
		}
		return a, a.login.Failed(msg.message)

	case menu.SelectedMsg:
		return a.handleMenuSelection(msg.Route)

	case menu.CancelledMsg:
		return a.navigate(a.route)

	case listview.BackMsg:
		return a.openMenu()

	case dashboardLoadedMsg:
		if msg.route != a.route || a.screen != ScreenDashboard {
			return a, nil
		}
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		a.err = nil
		a.lastUpdate = time.Now()
		a.dashboard = dashboard.New(msg.data, a.contentWidth(), a.contentHeight())
		return a, nil

	case listLoadedMsg:
		if msg.route != a.route || a.screen != ScreenList {
			return a, nil
		}
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		a.err = nil
		a.lastUpdate = time.Now()
		a.list = listview.New(a.routeTitle(msg.route), msg.table, a.contentHeight())
		return a, nil

	default:
		// huh forms need their internal messages
		switch a.screen {
		case ScreenLogin, ScreenMenu:
			return a.updateScreen(msg)
		}
	}

	return a, nil
}

func (a *App) updateScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch a.screen {
	case ScreenLogin:
		if a.login == nil {
			return a, nil
		}
		model, cmd := a.login.Update(msg)
		a.login = model.(*login.Login)
		return a, cmd

	case ScreenMenu:
		if a.menu == nil {
			return a, nil
		}
		model, cmd := a.menu.Update(msg)
		a.menu = model.(*menu.Menu)
		return a, cmd

	case ScreenDashboard, ScreenAccount:
		if key, ok := msg.(tea.KeyMsg); ok {
			return a.handleViewKey(key)
		}

	case ScreenList:
		if key, ok := msg.(tea.KeyMsg); ok && a.list != nil && !a.list.Searching() {
			switch key.String() {
			case "q":
				return a, tea.Quit
			case "m":
				return a.openMenu()
			case "r":
				return a.navigate(a.route)
			}
		}
		if a.list != nil {
			model, cmd := a.list.Update(msg)
			a.list = model.(*listview.List)
			return a, cmd
		}
		if key, ok := msg.(tea.KeyMsg); ok {
			return a.handleViewKey(key)
		}
	}
	return a, nil
}

func (a *App) handleViewKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "q":
		return a, tea.Quit
	case "m", "esc":
		return a.openMenu()
	case "r":
		return a.navigate(a.route)
	case "l":
		a.session.Logout()
		return a.applySession(a.session.Snapshot())
	}
	return a, nil
}

// applySession moves to the screen that fits snapshot
func (a *App) applySession(s session.Snapshot) (tea.Model, tea.Cmd) {
	wasAuthenticated := a.snapshot.State() == session.StateAuthenticated
	a.snapshot = s

	switch {
	case s.Loading:
		a.screen = ScreenLoading
		return a, a.spinner.Tick

	case s.State() != session.StateAuthenticated:
		if a.screen == ScreenLogin && a.login != nil {
			return a, nil
		}
		a.stopLoad()
		a.resetViews()
		a.login = login.New("")
		if wasAuthenticated {
			a.login.SetNotice("Session terminée, veuillez vous reconnecter.")
		}
		a.screen = ScreenLogin
		return a, a.login.Init()

	default:
		if a.screen == ScreenLoading || a.screen == ScreenLogin {
			a.login = nil
			return a.navigate(a.home())
		}
		return a, nil
	}
}

// navigate asks the gate about route and opens it when allowed
func (a *App) navigate(route string) (tea.Model, tea.Cmd) {
	if route == "" {
		route = a.home()
	}

	d := a.gate.Check(route, a.snapshot)
	switch d.Outcome {
	case gate.Wait:
		a.screen = ScreenLoading
		return a, a.spinner.Tick

	case gate.RedirectLogin:
		a.stopLoad()
		a.resetViews()
		a.login = login.New("")
		if a.snapshot.State() == session.StateAuthenticated {
			a.login.SetNotice("Accès refusé. Connectez-vous avec un compte autorisé.")
		}
		a.screen = ScreenLogin
		return a, a.login.Init()

	case gate.RedirectHome:
		a.notice = "Accès refusé à " + a.routeTitle(route)
		return a.open(d.Target)
	}

	a.notice = ""
	return a.open(route)
}

// home is the role's dashboard. A role without one gets the account route,
// which the gate refuses for unknown roles.
func (a *App) home() string {
	if home := gate.HomeFor(a.snapshot.Role()); home != gate.LoginRoute {
		return home
	}
	return gate.RouteAccount
}

// open shows route and starts its load. Only call for routes the gate allowed.
func (a *App) open(route string) (tea.Model, tea.Cmd) {
	a.stopLoad()
	a.route = route
	a.err = nil

	ctx, cancel := context.WithCancel(a.ctx)
	a.cancelLoad = cancel
	user := models.UserProfile{}
	if a.snapshot.User != nil {
		user = *a.snapshot.User
	}

	switch {
	case isDashboardRoute(route):
		a.screen = ScreenDashboard
		a.dashboard = dashboard.New(nil, a.contentWidth(), a.contentHeight())
		return a, func() tea.Msg {
			data, err := board.Build(ctx, a.api, user)
			return dashboardLoadedMsg{route: route, data: data, err: err}
		}

	case route == gate.RouteAccount:
		a.screen = ScreenAccount
		return a, nil
	}

	load, ok := listLoaders[route]
	if !ok {
		cancel()
		a.err = fmt.Errorf("aucun écran pour %q", route)
		return a, nil
	}
	a.screen = ScreenList
	a.list = nil
	return a, func() tea.Msg {
		t, err := load(ctx, a.api, user)
		return listLoadedMsg{route: route, table: t, err: err}
	}
}

func (a *App) openMenu() (tea.Model, tea.Cmd) {
	if a.snapshot.State() != session.StateAuthenticated {
		return a, nil
	}
	a.menu = menu.New(a.gate.Allowed(a.snapshot.Role()), hasScreen)
	a.screen = ScreenMenu
	return a, a.menu.Init()
}

func (a *App) handleMenuSelection(route string) (tea.Model, tea.Cmd) {
	switch route {
	case menu.ActionQuit:
		return a, tea.Quit
	case menu.ActionLogout:
		a.session.Logout()
		return a.applySession(a.session.Snapshot())
	}
	return a.navigate(route)
}

func (a *App) submitLogin(creds models.Credentials) tea.Cmd {
	return func() tea.Msg {
		_, err := a.session.Login(a.ctx, creds)
		if err != nil {
			return loginFailedMsg{message: client.Message(err, "Connexion impossible")}
		}
		return sessionChangedMsg{}
	}
}

// shutdown cancels every request the app started
func (a *App) shutdown() {
	a.stopLoad()
	a.cancel()
}

func (a *App) stopLoad() {
	if a.cancelLoad != nil {
		a.cancelLoad()
		a.cancelLoad = nil
	}
}

func (a *App) resetViews() {
	a.menu = nil
	a.dashboard = nil
	a.list = nil
	a.route = ""
	a.err = nil
	a.notice = ""
}

func (a *App) routeTitle(route string) string {
	if r, ok := a.gate.Routes().Lookup(route); ok {
		return r.Title
	}
	return route
}

// View implements tea.Model
func (a *App) View() string {
	var content string

	switch a.screen {
	case ScreenLoading:
		content = a.spinner.View() + " Vérification de la session..."
	case ScreenLogin:
		if a.login != nil {
			content = a.login.View()
		}
	case ScreenMenu:
		if a.menu != nil {
			content = a.menu.View()
		}
	case ScreenDashboard:
		content = a.viewDashboard()
	case ScreenList:
		content = a.viewList()
	case ScreenAccount:
		content = a.viewAccount()
	}

	if a.notice != "" && a.screen != ScreenLogin {
		content = styles.StatusWarning.Render(icons.Warning.String()+" "+a.notice) + "\n" + content
	}

	return a.wrapWithFrame(content)
}

func (a *App) viewDashboard() string {
	if a.err != nil {
		return a.renderError()
	}
	if a.dashboard == nil {
		return ""
	}
	return styles.ActivePanel.Render(a.dashboard.View())
}

func (a *App) viewList() string {
	if a.err != nil {
		return a.renderError()
	}
	if a.list == nil {
		return styles.Panel.Render("Chargement de " + a.routeTitle(a.route) + "...")
	}
	return a.list.View()
}

func (a *App) viewAccount() string {
	u := a.snapshot.User
	if u == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(styles.Title.Render(icons.User.String() + " Mon compte"))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Nom    : %s\n", styles.ValueStyle.Render(u.FullName())))
	sb.WriteString(fmt.Sprintf("Email  : %s\n", u.Email))
	sb.WriteString(fmt.Sprintf("Rôle   : %s\n", widgets.RoleBadge(u.Role)))
	return styles.Panel.Render(sb.String())
}

// contentWidth is the width available inside the frame
// renderError shows the load error. Server failures get a retry hint.
func (a *App) renderError() string {
	line := "Erreur : " + client.Message(a.err, a.err.Error())
	if client.IsServerError(a.err) {
		line += " (r pour réessayer)"
	}
	return styles.StatusCritical.Render(line)
}

func (a *App) contentWidth() int {
	return max(minTerminalWidth, a.width) - 6
}

// contentHeight is the height available between header and footer
func (a *App) contentHeight() int {
	return max(10, a.height-frameHeight)
}

// renderHeader creates the header bar with app branding and the signed-in user
func (a *App) renderHeader() string {
	width := max(minTerminalWidth, a.width)

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)

	left := fmt.Sprintf(" %s %s ", icons.App.String(), titleStyle.Render("FormationsGest"))

	right := ""
	if u := a.snapshot.User; u != nil && a.snapshot.State() == session.StateAuthenticated {
		right = " " + u.FullName() + " " + widgets.RoleBadge(u.Role) + " "
	}

	fill := max(0, width-4-lipgloss.Width(left)-lipgloss.Width(right))
	return borderStyle.Render("╭─") + left + borderStyle.Render(strings.Repeat("─", fill)) + right + borderStyle.Render("─╮")
}

// renderFooter creates the footer with keyboard shortcuts and status
func (a *App) renderFooter() string {
	width := max(minTerminalWidth, a.width)

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	var shortcuts []string
	switch a.screen {
	case ScreenLogin:
		shortcuts = []string{"Tab Champ suivant", "Enter Valider", "ctrl+c Quitter"}
	case ScreenMenu:
		shortcuts = []string{"↑↓ Naviguer", "Enter Ouvrir", "Esc Retour"}
	case ScreenDashboard, ScreenAccount:
		shortcuts = []string{"m Menu", "r Actualiser", "l Déconnexion", "q Quitter"}
	case ScreenList:
		shortcuts = []string{"/ Rechercher", "m Menu", "r Actualiser", "q Quitter"}
	}

	var styled, plain []string
	for _, s := range shortcuts {
		key, label, _ := strings.Cut(s, " ")
		styled = append(styled, styles.KeyStyle.Render(key)+" "+labelStyle.Render(label))
		plain = append(plain, s)
	}
	left := " " + strings.Join(styled, "  ")
	leftWidth := lipgloss.Width(" " + strings.Join(plain, "  "))

	right := ""
	if !a.lastUpdate.IsZero() && (a.screen == ScreenDashboard || a.screen == ScreenList) {
		right = statusStyle.Render("Mis à jour "+formatTimeSince(a.lastUpdate)) + " "
	}

	fill := max(0, width-4-leftWidth-lipgloss.Width(right))
	return borderStyle.Render("╰─") + left + borderStyle.Render(strings.Repeat("─", fill)) + right + borderStyle.Render("─╯")
}

// formatTimeSince formats the time elapsed since t
func formatTimeSince(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < 5*time.Second:
		return "à l'instant"
	case d < time.Minute:
		return fmt.Sprintf("il y a %ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("il y a %dmin", int(d.Minutes()))
	default:
		return fmt.Sprintf("il y a %dh", int(d.Hours()))
	}
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder
	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())
	return sb.String()
}

// Run starts the TUI. Session changes made outside the update loop, such as
// a logout triggered by a 401, reach the program through a subscription.
func Run(sess Session, g *gate.Gate, api API) error {
	app := New(sess, g, api)

	p := tea.NewProgram(app, tea.WithAltScreen())

	unsubscribe := sess.Subscribe(session.ListenerFunc(func(session.Snapshot) {
		go p.Send(sessionChangedMsg{})
	}))
	defer unsubscribe()

	_, err := p.Run()
	app.shutdown()
	return err
}
