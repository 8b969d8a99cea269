// ABOUTME: Tests for the root command and global flag handling
// ABOUTME: Verifies URL precedence, exit code mapping and route annotations

package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/markalston/formationsgest/internal/client"
	"github.com/markalston/formationsgest/internal/gate"
)

// isolate points the CLI at a fresh config dir and clears env overrides
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	configDir = dir
	apiURL = ""
	jsonOutput = false
	t.Setenv("FORMATIONSGEST_API_URL", "")
	t.Setenv("FORMATIONSGEST_TIMEOUT", "")
	t.Setenv("FORMATIONSGEST_ROLE_MISMATCH", "")
	t.Cleanup(func() {
		configDir = ""
		apiURL = ""
		jsonOutput = false
	})
	return dir
}

func TestGetAPIURL_Default(t *testing.T) {
	isolate(t)

	url := GetAPIURL()
	if url != "http://localhost:5000/api" {
		t.Errorf("expected default URL http://localhost:5000/api, got %s", url)
	}
}

func TestGetAPIURL_FromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("FORMATIONSGEST_API_URL", "http://backend.example.com/api")

	url := GetAPIURL()
	if url != "http://backend.example.com/api" {
		t.Errorf("expected http://backend.example.com/api, got %s", url)
	}
}

func TestGetAPIURL_FromConfigFile(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("api_url: erp.example.com/api\n"), 0600); err != nil {
		t.Fatal(err)
	}

	url := GetAPIURL()
	if url != "http://erp.example.com/api" {
		t.Errorf("expected config file URL with scheme, got %s", url)
	}
}

func TestGetAPIURL_FlagOverridesEnv(t *testing.T) {
	isolate(t)
	t.Setenv("FORMATIONSGEST_API_URL", "http://backend.example.com/api")
	apiURL = "http://flag-override.example.com"

	url := GetAPIURL()
	if url != "http://flag-override.example.com" {
		t.Errorf("expected flag to override env, got %s", url)
	}
}

func TestJSONOutput(t *testing.T) {
	jsonOutput = true
	defer func() { jsonOutput = false }()

	if !IsJSONOutput() {
		t.Error("expected IsJSONOutput to return true")
	}
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitOK},
		{"validation", &client.APIError{StatusCode: 400, Message: "Champs requis"}, exitRejected},
		{"forbidden", &client.APIError{StatusCode: 403}, exitRejected},
		{"not found", &client.APIError{StatusCode: 404}, exitRejected},
		{"conflict", &client.APIError{StatusCode: 409, Message: "Déjà inscrit"}, exitRejected},
		{"unauthorized", &client.APIError{StatusCode: 401}, exitError},
		{"server", &client.APIError{StatusCode: 500}, exitError},
		{"transport", &client.TransportError{BaseURL: "http://x", Err: errors.New("refused")}, exitError},
		{"denied", &errDenied{route: "Utilisateurs", decision: gate.Decision{Outcome: gate.RedirectHome}}, exitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("expected exit code %d, got %d", tt.want, got)
			}
		})
	}
}

func TestRouteOf_InheritsFromParent(t *testing.T) {
	parent := onRoute(&cobra.Command{Use: "parent"}, gate.RouteUsers)
	child := &cobra.Command{Use: "child"}
	parent.AddCommand(child)
	override := onRoute(&cobra.Command{Use: "override"}, gate.RouteForgotPassword)
	parent.AddCommand(override)

	if got := routeOf(child); got != gate.RouteUsers {
		t.Errorf("expected inherited route %q, got %q", gate.RouteUsers, got)
	}
	if got := routeOf(override); got != gate.RouteForgotPassword {
		t.Errorf("expected own route %q, got %q", gate.RouteForgotPassword, got)
	}
}

func TestEveryCommandRouteIsRegistered(t *testing.T) {
	routes := gate.DefaultRoutes()

	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		if r, ok := c.Annotations[routeAnnotation]; ok {
			if _, found := routes.Lookup(r); !found {
				t.Errorf("command %q uses unregistered route %q", c.CommandPath(), r)
			}
		}
		for _, sub := range c.Commands() {
			walk(sub)
		}
	}
	walk(rootCmd)
}
