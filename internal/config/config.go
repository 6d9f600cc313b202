package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DirName is the per-workspace directory holding config, logs and preferences.
const DirName = ".booklib"

// Config holds all booklib configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Remote library service
	API APIConfig `yaml:"api"`

	// Terminal UI
	UI UIConfig `yaml:"ui"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "booklib",
		Version: "0.3.0",

		API: APIConfig{
			BaseURL: DefaultBaseURL,
		},

		UI: UIConfig{
			DefaultView: ViewGrid,
			Theme:       ThemeLight,
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultPath returns .booklib/config.yaml under workspace, or under the
// working directory when workspace is empty.
func DefaultPath(workspace string) string {
	if workspace == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return filepath.Join(DirName, "config.yaml")
		}
		workspace = cwd
	}
	return filepath.Join(workspace, DirName, "config.yaml")
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Variables from a .env file in the working directory are loaded
// before environment overrides are applied; variables already set in the
// process environment win over .env.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case os.IsNotExist(err):
		// defaults
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if u := os.Getenv("BOOKLIB_API_URL"); u != "" {
		c.API.BaseURL = u
	}
	if os.Getenv("BOOKLIB_DARK_MODE") == "1" {
		c.UI.Theme = ThemeDark
	}
	if os.Getenv("BOOKLIB_DEBUG") == "1" {
		c.Logging.DebugMode = true
		c.Logging.Level = "debug"
	}
	if lvl := os.Getenv("BOOKLIB_LOG_LEVEL"); lvl != "" {
		c.Logging.Level = lvl
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api base_url %q: must be an absolute http(s) URL", c.API.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid api base_url %q: unsupported scheme %s", c.API.BaseURL, u.Scheme)
	}

	switch c.UI.DefaultView {
	case ViewGrid, ViewList:
	default:
		return fmt.Errorf("invalid ui default_view: %s (valid: %s, %s)", c.UI.DefaultView, ViewGrid, ViewList)
	}

	switch c.UI.Theme {
	case ThemeLight, ThemeDark:
	default:
		return fmt.Errorf("invalid ui theme: %s (valid: %s, %s)", c.UI.Theme, ThemeLight, ThemeDark)
	}

	return nil
}
