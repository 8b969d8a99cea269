// ABOUTME: Root command for the formationsgest CLI
// ABOUTME: Handles global flags, configuration and the shared client/session wiring

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/markalston/formationsgest/internal/client"
	"github.com/markalston/formationsgest/internal/config"
	"github.com/markalston/formationsgest/internal/gate"
	"github.com/markalston/formationsgest/internal/logger"
	"github.com/markalston/formationsgest/internal/session"
	"github.com/markalston/formationsgest/internal/tokenstore"
)

var (
	apiURL     string
	jsonOutput bool
	configDir  string
)

// Exit codes shared by every command
const (
	exitOK       = 0
	exitRejected = 1 // the backend refused the operation
	exitError    = 2 // connectivity, authentication, invalid input
)

// routeAnnotation names the access gate route a command is checked against
const routeAnnotation = "formationsgest/route"

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "formationsgest",
	Short: "CLI for the FormationsGest training-center platform",
	Long: `formationsgest is a command-line client for the FormationsGest API.

It manages formations, inscriptions, formateurs, plannings, entreprises,
candidatures and evaluations, and opens an interactive dashboard with 'tui'.

Exit codes:
  0 - Success
  1 - The backend rejected the operation
  2 - Error (connectivity, not logged in, access denied, invalid input)

Environment Variables:
  FORMATIONSGEST_API_URL        Backend API URL (default: http://localhost:5000/api)
  FORMATIONSGEST_TIMEOUT        Request timeout (default: 30s)
  FORMATIONSGEST_ROLE_MISMATCH  Access denied behaviour: home or login (default: home)
  LOG_LEVEL                     debug, info, warn, error (default: info)
  LOG_FORMAT                    text, json (default: text)`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides FORMATIONSGEST_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Directory holding the session token and config.yaml")
}

// GetConfigDir returns the config directory from flag or the XDG default
func GetConfigDir() string {
	if configDir != "" {
		return configDir
	}
	return tokenstore.DefaultConfigDir()
}

// GetAPIURL returns the API URL from flag, env, config file, or default (in priority order)
func GetAPIURL() string {
	if apiURL != "" {
		return apiURL
	}
	if envURL := os.Getenv(config.EnvAPIURL); envURL != "" {
		return envURL
	}
	cfg, err := config.Load(GetConfigDir())
	if err != nil {
		return client.DefaultBaseURL
	}
	return cfg.APIURL
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// loadConfig reads the layered configuration and applies flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(GetConfigDir())
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	return cfg, nil
}

// runtime bundles the components a command works with
type runtime struct {
	cfg     *config.Config
	client  *client.Client
	session *session.Manager
	gate    *gate.Gate
}

// newRuntime wires store, client, session manager and gate. The client reads
// its bearer token from the store and reports 401s back to the manager.
func newRuntime() (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	store := tokenstore.NewFileStore(cfg.ConfigDir)
	c := client.New(cfg.APIURL,
		client.WithTokenSource(store),
		client.WithTimeout(cfg.Timeout),
	)
	mgr := session.NewManager(store, c)
	c.OnUnauthorized(mgr.HandleUnauthorized)

	return &runtime{
		cfg:     cfg,
		client:  c,
		session: mgr,
		gate:    gate.New(gate.DefaultRoutes(), cfg.RoleMismatch),
	}, nil
}

// errDenied is returned when the gate refuses a command
type errDenied struct {
	route         string
	decision      gate.Decision
	authenticated bool
}

func (e *errDenied) Error() string {
	if e.decision.Outcome == gate.RedirectLogin && !e.authenticated {
		return "not logged in. Run 'formationsgest login' first"
	}
	return fmt.Sprintf("access denied to %s for your role", e.route)
}

// authorize validates the stored session and asks the gate about route
func (rt *runtime) authorize(ctx context.Context, route string) error {
	r, ok := rt.gate.Routes().Lookup(route)
	if !ok {
		return fmt.Errorf("unknown route %q", route)
	}
	if r.Public {
		return nil
	}

	if err := rt.session.Init(ctx); err != nil {
		if client.IsTransport(err) {
			return err
		}
		return errors.New("session expired. Run 'formationsgest login' again")
	}

	snap := rt.session.Snapshot()
	d := rt.gate.Check(route, snap)
	if d.Outcome != gate.Render {
		return &errDenied{route: r.Title, decision: d, authenticated: snap.State() == session.StateAuthenticated}
	}
	return nil
}

// signalContext returns a context cancelled on SIGINT/SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// exitCodeFor maps an error to the CLI exit code
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return exitOK
	case client.IsForbidden(err), client.IsValidation(err):
		return exitRejected
	default:
		return exitError
	}
}

// reportError prints err the way every command does and returns its exit code
func reportError(w io.Writer, err error) int {
	fmt.Fprintf(w, "Error: %s\n", client.Message(err, err.Error()))
	return exitCodeFor(err)
}

// protected runs fn after the session is validated and the gate allows the
// command's route. It returns the exit code.
func protected(cmd *cobra.Command, w io.Writer, fn func(ctx context.Context, rt *runtime) error) int {
	ctx, cancel := signalContext()
	defer cancel()

	rt, err := newRuntime()
	if err != nil {
		return reportError(w, err)
	}
	logger.Init(os.Stderr, rt.cfg.LogLevel, rt.cfg.LogFormat)

	if err := rt.authorize(ctx, routeOf(cmd)); err != nil {
		return reportError(w, err)
	}
	if err := fn(ctx, rt); err != nil {
		return reportError(w, err)
	}
	return exitOK
}

// routeOf returns the gate route of cmd, inherited from its parents
func routeOf(cmd *cobra.Command) string {
	for c := cmd; c != nil; c = c.Parent() {
		if r, ok := c.Annotations[routeAnnotation]; ok {
			return r
		}
	}
	return gate.RouteAccount
}

// onRoute annotates cmd with its gate route
func onRoute(cmd *cobra.Command, route string) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[routeAnnotation] = route
	return cmd
}

// runProtected is the cobra Run body for gated commands
func runProtected(fn func(ctx context.Context, rt *runtime, w io.Writer, args []string) error) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		code := protected(cmd, w, func(ctx context.Context, rt *runtime) error {
			return fn(ctx, rt, w, args)
		})
		if code != exitOK {
			os.Exit(code)
		}
	}
}
