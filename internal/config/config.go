// ABOUTME: Configuration loader for the FormationsGest client
// ABOUTME: Layers defaults, config.yaml, .env and environment variables

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/markalston/formationsgest/internal/client"
	"github.com/markalston/formationsgest/internal/gate"
)

const (
	// FileName is the optional YAML file read from the config dir
	FileName = "config.yaml"

	EnvAPIURL       = "FORMATIONSGEST_API_URL"
	EnvTimeout      = "FORMATIONSGEST_TIMEOUT"
	EnvRoleMismatch = "FORMATIONSGEST_ROLE_MISMATCH"
	EnvLogLevel     = "LOG_LEVEL"
	EnvLogFormat    = "LOG_FORMAT"
)

type Config struct {
	APIURL       string
	Timeout      time.Duration
	RoleMismatch gate.MismatchPolicy
	LogLevel     string // debug, info, warn, error (default: info)
	LogFormat    string // text, json (default: text)

	// ConfigDir holds the token file, config.yaml and the TUI debug log
	ConfigDir string
}

// fileConfig mirrors config.yaml
type fileConfig struct {
	APIURL       string `yaml:"api_url"`
	Timeout      string `yaml:"timeout"`
	RoleMismatch string `yaml:"role_mismatch"`
	LogLevel     string `yaml:"log_level"`
	LogFormat    string `yaml:"log_format"`
}

// Defaults returns the built-in configuration
func Defaults(configDir string) *Config {
	return &Config{
		APIURL:       client.DefaultBaseURL,
		Timeout:      30 * time.Second,
		RoleMismatch: gate.PolicyHome,
		LogLevel:     "info",
		LogFormat:    "text",
		ConfigDir:    configDir,
	}
}

// Load builds the configuration for configDir. Later sources win:
// defaults, config.yaml, .env files (config dir then working dir), then the
// process environment.
func Load(configDir string) (*Config, error) {
	cfg := Defaults(configDir)

	if configDir != "" {
		if err := cfg.applyFile(filepath.Join(configDir, FileName)); err != nil {
			return nil, err
		}
	}

	dotenv, err := readDotenv(filepath.Join(configDir, ".env"), ".env")
	if err != nil {
		return nil, err
	}
	lookup := func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}

	if err := cfg.apply(fileConfig{
		APIURL:       lookup(EnvAPIURL),
		Timeout:      lookup(EnvTimeout),
		RoleMismatch: lookup(EnvRoleMismatch),
		LogLevel:     lookup(EnvLogLevel),
		LogFormat:    lookup(EnvLogFormat),
	}, "environment"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("invalid %s: %w", path, err)
	}
	return c.apply(fc, path)
}

// apply overlays the non-empty fields of fc. source names the origin in errors.
func (c *Config) apply(fc fileConfig, source string) error {
	if fc.APIURL != "" {
		c.APIURL = ensureScheme(strings.TrimSpace(fc.APIURL))
	}
	if fc.Timeout != "" {
		d, err := parseTimeout(fc.Timeout)
		if err != nil {
			return fmt.Errorf("%s: %w", source, err)
		}
		c.Timeout = d
	}
	if fc.RoleMismatch != "" {
		p, err := gate.ParseMismatchPolicy(fc.RoleMismatch)
		if err != nil {
			return fmt.Errorf("%s: %w", source, err)
		}
		c.RoleMismatch = p
	}
	if fc.LogLevel != "" {
		c.LogLevel = strings.ToLower(fc.LogLevel)
	}
	if fc.LogFormat != "" {
		c.LogFormat = strings.ToLower(fc.LogFormat)
	}
	return nil
}

// readDotenv merges the given .env files; earlier files win. Missing files
// are skipped.
func readDotenv(paths ...string) (map[string]string, error) {
	out := map[string]string{}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		vals, err := godotenv.Read(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", p, err)
		}
		for k, v := range vals {
			if _, seen := out[k]; !seen {
				out[k] = v
			}
		}
	}
	return out, nil
}

// parseTimeout accepts a Go duration ("45s") or a number of seconds ("45")
func parseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.Atoi(s); err == nil {
		if secs < 1 {
			return 0, fmt.Errorf("timeout must be positive, got %d", secs)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q", s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %s", d)
	}
	return d, nil
}

// ensureScheme adds http:// when the URL has no scheme
func ensureScheme(url string) string {
	if url == "" {
		return url
	}
	if !strings.Contains(url, "://") {
		return "http://" + url
	}
	return url
}
