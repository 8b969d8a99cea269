// ABOUTME: Login screen as a bubbletea model wrapping a huh form
// ABOUTME: Emits SubmitMsg with the credentials and shows backend rejection messages

package login

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/markalston/formationsgest/internal/models"
	"github.com/markalston/formationsgest/internal/tui/icons"
	"github.com/markalston/formationsgest/internal/tui/styles"
)

// SubmitMsg is sent when the user submits the form
type SubmitMsg struct {
	Credentials models.Credentials
}

// Login is the sign-in screen
type Login struct {
	form       *huh.Form
	email      string
	password   string
	err        string
	notice     string
	submitting bool
}

// New creates a login screen prefilled with email
func New(email string) *Login {
	l := &Login{email: email}
	l.form = l.createForm()
	return l
}

func validateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("l'email est requis")
	}
	if !strings.Contains(s, "@") {
		return errors.New("email invalide")
	}
	return nil
}

func validatePassword(s string) error {
	if s == "" {
		return errors.New("le mot de passe est requis")
	}
	return nil
}

func (l *Login) createForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("prenom.nom@exemple.fr").
				Value(&l.email).
				Validate(validateEmail),
			huh.NewInput().
				Title("Mot de passe").
				EchoMode(huh.EchoModePassword).
				Value(&l.password).
				Validate(validatePassword),
		).Title(icons.Lock.String() + " Connexion"),
	).WithTheme(huh.ThemeBase())
}

// Init implements tea.Model
func (l *Login) Init() tea.Cmd {
	return l.form.Init()
}

// Update implements tea.Model
func (l *Login) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if l.submitting {
		return l, nil
	}

	form, cmd := l.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		l.form = f
	}

	if l.form.State == huh.StateCompleted {
		return l, l.submit()
	}
	return l, cmd
}

func (l *Login) submit() tea.Cmd {
	l.submitting = true
	l.err = ""
	creds := models.Credentials{Email: strings.TrimSpace(l.email), Password: l.password}
	return func() tea.Msg { return SubmitMsg{Credentials: creds} }
}

// Failed shows message and lets the user try again. The email is kept,
// the password is cleared.
func (l *Login) Failed(message string) tea.Cmd {
	l.err = message
	l.submitting = false
	l.password = ""
	l.form = l.createForm()
	return l.form.Init()
}

// SetNotice shows an informational line above the form
func (l *Login) SetNotice(notice string) {
	l.notice = notice
}

// Submitting reports whether a login request is in flight
func (l *Login) Submitting() bool {
	return l.submitting
}

// Error returns the last rejection message
func (l *Login) Error() string {
	return l.err
}

// View implements tea.Model
func (l *Login) View() string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render("FormationsGest"))
	sb.WriteString("\n")
	if l.notice != "" {
		sb.WriteString(styles.StatusWarning.Render(l.notice))
		sb.WriteString("\n\n")
	}
	if l.err != "" {
		sb.WriteString(styles.StatusCritical.Render(icons.Critical.String() + " " + l.err))
		sb.WriteString("\n\n")
	}
	if l.submitting {
		sb.WriteString(styles.Subtitle.Render("Connexion en cours..."))
		return sb.String()
	}
	sb.WriteString(l.form.View())
	return sb.String()
}
