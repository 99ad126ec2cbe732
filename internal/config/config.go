// Package config reads scangrep's optional dotfile configuration,
// yaml.v3-backed with local-overrides-global precedence: a local
// ".scangreprc" wins over the user-wide "~/.scangreprc", and an explicit
// --config=FILE wins over both.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrInvalidValue is returned by Validate for an out-of-range setting.
var ErrInvalidValue = errors.New("config: invalid value")

// Config holds the defaults a dotfile can supply for flags the user
// didn't pass explicitly on the command line.
type Config struct {
	Color       string   `yaml:"color,omitempty"`        // auto|always|never
	Jobs        *int     `yaml:"jobs,omitempty"`
	IgnoreFiles []string `yaml:"ignore_files,omitempty"`
	Hidden      *bool    `yaml:"hidden,omitempty"`
	LogLevel    string   `yaml:"log_level,omitempty"` // debug|info|warn|error

	path string
}

// Validate checks that fields with constrained value sets are actually
// one of the values the CLI knows how to interpret.
func (c *Config) Validate() error {
	switch c.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("%w: color %q", ErrInvalidValue, c.Color)
	}
	if c.Jobs != nil && *c.Jobs < 0 {
		return fmt.Errorf("%w: jobs must be >= 0, got %d", ErrInvalidValue, *c.Jobs)
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalidValue, c.LogLevel)
	}
	return nil
}

// LocalPath is the repository-local config file name, checked in the
// current working directory.
const LocalPath = ".scangreprc"

// GlobalPath is the user-wide config file, "~/.scangreprc".
func GlobalPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".scangreprc")
}

// Load resolves the effective config file: explicitPath if given,
// otherwise LocalPath if it exists in the working directory, otherwise
// GlobalPath. A missing file at any of those locations is not an error;
// Load returns a zero Config in that case so every field's absence just
// means "no override".
func Load(explicitPath string) (*Config, error) {
	path := explicitPath
	if path == "" {
		if _, err := os.Stat(LocalPath); err == nil {
			path = LocalPath
		} else {
			path = GlobalPath()
		}
	}

	cfg := &Config{path: path}
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Path reports which file Load actually read (empty if none was found).
func (c *Config) Path() string { return c.path }
