// ABOUTME: Session commands: login, logout and whoami
// ABOUTME: Login prompts for the password unless it is piped on stdin

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/markalston/formationsgest/internal/gate"
	"github.com/markalston/formationsgest/internal/logger"
	"github.com/markalston/formationsgest/internal/models"
	"github.com/markalston/formationsgest/internal/session"
)

var (
	loginEmail         string
	loginPasswordStdin bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session token",
	Long: `Sign in with email and password. The token is stored in the config
directory and sent with every later command until 'logout'.

Use --password-stdin in scripts:
  echo "$PASSWORD" | formationsgest login --email admin@example.com --password-stdin`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()

		creds, err := promptCredentials(loginEmail, loginPasswordStdin, os.Stdin)
		if err != nil {
			os.Exit(reportError(cmd.OutOrStdout(), err))
		}
		exitCode := runLogin(ctx, cmd.OutOrStdout(), creds)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session token",
	Run: func(cmd *cobra.Command, args []string) {
		exitCode := runLogout(cmd.OutOrStdout())
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var whoamiCmd = onRoute(&cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user and token expiry",
	Run: runProtected(func(ctx context.Context, rt *runtime, w io.Writer, args []string) error {
		return runWhoami(ctx, w, rt)
	}),
}, gate.RouteAccount)

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().BoolVar(&loginPasswordStdin, "password-stdin", false, "Read the password from stdin")
}

// promptCredentials collects credentials from flags, stdin or an interactive form
func promptCredentials(email string, passwordStdin bool, stdin io.Reader) (models.Credentials, error) {
	creds := models.Credentials{Email: strings.TrimSpace(email)}

	if passwordStdin {
		if creds.Email == "" {
			return creds, errors.New("--email is required with --password-stdin")
		}
		password, err := readPasswordLine(stdin)
		creds.Password = password
		return creds, err
	}

	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Email").Value(&creds.Email).
			Validate(func(s string) error {
				if !strings.Contains(s, "@") {
					return errors.New("adresse email invalide")
				}
				return nil
			}),
		huh.NewInput().Title("Mot de passe").EchoMode(huh.EchoModePassword).Value(&creds.Password).
			Validate(func(s string) error {
				if s == "" {
					return errors.New("mot de passe requis")
				}
				return nil
			}),
	))
	if err := form.Run(); err != nil {
		return creds, fmt.Errorf("login cancelled: %w", err)
	}
	creds.Email = strings.TrimSpace(creds.Email)
	return creds, nil
}

// readPasswordLine reads a password from the first line of r
func readPasswordLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("empty password on stdin")
	}
	return password, nil
}

// promptPassword asks for a single hidden value
func promptPassword(title string) (string, error) {
	var password string
	err := huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(&password).
		Validate(func(s string) error {
			if s == "" {
				return errors.New("mot de passe requis")
			}
			return nil
		}).
		Run()
	if err != nil {
		return "", fmt.Errorf("cancelled: %w", err)
	}
	return password, nil
}

// runLogin signs in and returns the exit code
func runLogin(ctx context.Context, w io.Writer, creds models.Credentials) int {
	rt, err := newRuntime()
	if err != nil {
		return reportError(w, err)
	}
	logger.Init(os.Stderr, rt.cfg.LogLevel, rt.cfg.LogFormat)

	user, err := rt.session.Login(ctx, creds)
	if err != nil {
		return reportError(w, err)
	}

	if IsJSONOutput() {
		if err := printJSON(w, user); err != nil {
			return reportError(w, err)
		}
		return exitOK
	}
	fmt.Fprintf(w, "Logged in as %s (%s)\n", user.FullName(), user.Role)
	return exitOK
}

// runLogout clears the stored token and returns the exit code
func runLogout(w io.Writer) int {
	rt, err := newRuntime()
	if err != nil {
		return reportError(w, err)
	}
	rt.session.Logout()
	fmt.Fprintln(w, "Logged out")
	return exitOK
}

// whoami is the JSON shape of the whoami command
type whoami struct {
	User      *models.UserProfile `json:"user"`
	ExpiresAt *time.Time          `json:"expiresAt,omitempty"`
	Expired   bool                `json:"expired"`
}

func runWhoami(ctx context.Context, w io.Writer, rt *runtime) error {
	if err := rt.session.RefreshUser(ctx); err != nil {
		return err
	}
	s := rt.session.Snapshot()
	if s.User == nil {
		return errors.New("not logged in. Run 'formationsgest login' first")
	}

	out := whoami{User: s.User}
	claims, ok := session.TokenClaims(s.Token)
	if ok && !claims.ExpiresAt.IsZero() {
		out.ExpiresAt = &claims.ExpiresAt
		out.Expired = claims.Expired(time.Now())
	}

	if IsJSONOutput() {
		return printJSON(w, out)
	}

	fmt.Fprintf(w, "Name:    %s\n", s.User.FullName())
	fmt.Fprintf(w, "Email:   %s\n", s.User.Email)
	fmt.Fprintf(w, "Role:    %s\n", s.User.Role)
	if out.ExpiresAt != nil {
		fmt.Fprintf(w, "Expires: %s\n", out.ExpiresAt.Local().Format("02/01/2006 15:04"))
	}
	return nil
}
