// Package config provides configuration loading and validation for the CLI and API server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/jonathan/teamverse/internal/publish"
)

// Config is the teamverse configuration. A YAML file may set any subset of
// fields; everything else keeps the value from Default.
type Config struct {
	OutputDir string `yaml:"output_dir"`
	Verbose   bool   `yaml:"verbose"`

	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Render struct {
		Browser   string        `yaml:"browser"`
		Width     int           `yaml:"width"`
		Height    int           `yaml:"height"`
		Tolerance int           `yaml:"tolerance"`
		Timeout   time.Duration `yaml:"timeout"`
	} `yaml:"render"`

	Fetch struct {
		Timeout   time.Duration `yaml:"timeout"`
		UserAgent string        `yaml:"user_agent"`
	} `yaml:"fetch"`

	Google struct {
		CredentialsFile string `yaml:"credentials_file"`
		TokenFile       string `yaml:"token_file"`
	} `yaml:"google"`

	Publish struct {
		RepoPath string `yaml:"repo_path"`
	} `yaml:"publish"`
}

// Default returns the built-in configuration.
func Default() *Config {
	home, _ := os.UserHomeDir()

	cfg := &Config{OutputDir: "."}
	cfg.Server.Port = 8000
	cfg.Render.Width = 1200
	cfg.Render.Height = 630
	cfg.Render.Tolerance = 10
	cfg.Render.Timeout = 60 * time.Second
	cfg.Fetch.Timeout = 30 * time.Second
	cfg.Google.CredentialsFile = filepath.Join(home, ".config", "policyengine", "google-credentials.json")
	cfg.Google.TokenFile = filepath.Join(home, ".config", "policyengine", "google-token.json")
	cfg.Publish.RepoPath = publish.DefaultRepoPath()
	return cfg
}

// LoadConfig reads a YAML config file over the defaults, then applies
// environment overrides. An empty path yields the defaults plus environment.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		// Resolve path relative to current directory if not absolute
		if !filepath.IsAbs(path) {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to get current directory: %w", err)
			}
			path = filepath.Join(cwd, path)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables read through getenv.
// Unset or empty variables leave the field unchanged.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("GOOGLE_CREDENTIALS_FILE"); v != "" {
		c.Google.CredentialsFile = v
	}
	if v := getenv("GOOGLE_TOKEN_FILE"); v != "" {
		c.Google.TokenFile = v
	}
	if v := getenv("TEAMVERSE_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := getenv("TEAMVERSE_BROWSER"); v != "" {
		c.Render.Browser = v
	}
	if v := getenv("TEAMVERSE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: TEAMVERSE_PORT must be an integer, got %q", v)
		}
		c.Server.Port = port
	}
	return nil
}

// Validate checks that the configuration has usable values.
func (c *Config) Validate() error {
	if c.Render.Width <= 0 {
		return fmt.Errorf("config error: 'render.width' must be positive")
	}
	if c.Render.Height <= 0 {
		return fmt.Errorf("config error: 'render.height' must be positive")
	}
	if c.Render.Tolerance < 0 {
		return fmt.Errorf("config error: 'render.tolerance' must be non-negative")
	}
	if c.Render.Timeout <= 0 {
		return fmt.Errorf("config error: 'render.timeout' must be positive")
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("config error: 'fetch.timeout' must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: 'server.port' must be between 1 and 65535")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("config error: 'output_dir' must not be empty")
	}

	if c.Render.Browser != "" {
		if _, err := os.Stat(c.Render.Browser); os.IsNotExist(err) {
			return fmt.Errorf("config error: browser not found: %s", c.Render.Browser)
		}
	}

	return nil
}
