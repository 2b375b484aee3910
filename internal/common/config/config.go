package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/obentoo/pipinside/internal/lockfile"
	"github.com/obentoo/pipinside/internal/pipcmd"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the user configuration
type Config struct {
	Python    string          `yaml:"python,omitempty"`
	Lockfiles LockfileConfig  `yaml:"lockfiles"`
	Defaults  *pipcmd.Options `yaml:"defaults,omitempty"`
}

// LockfileConfig controls the lock file warning
type LockfileConfig struct {
	Names []string `yaml:"names,omitempty"`
	Depth *int     `yaml:"depth,omitempty"` // parent directories searched
	Warn  *bool    `yaml:"warn,omitempty"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	depth := lockfile.DefaultParents
	warn := true
	return &Config{
		Lockfiles: LockfileConfig{
			Names: lockfile.DefaultNames(),
			Depth: &depth,
			Warn:  &warn,
		},
		Defaults: pipcmd.NewOptions(),
	}
}

// LockfileNames returns the configured lock file names or the default
func (c *Config) LockfileNames() []string {
	if len(c.Lockfiles.Names) == 0 {
		return lockfile.DefaultNames()
	}
	return c.Lockfiles.Names
}

// LockfileDepth returns how many parent directories to search
func (c *Config) LockfileDepth() int {
	if c.Lockfiles.Depth == nil {
		return lockfile.DefaultParents
	}
	return *c.Lockfiles.Depth
}

// WarnLockfiles reports whether the lock file warning is enabled
func (c *Config) WarnLockfiles() bool {
	return c.Lockfiles.Warn == nil || *c.Lockfiles.Warn
}

// Validate checks values that YAML typing cannot
func (c *Config) Validate() error {
	if c.Lockfiles.Depth != nil && *c.Lockfiles.Depth < 0 {
		return fmt.Errorf("%w: lockfiles.depth must not be negative, got %d", ErrInvalidConfig, *c.Lockfiles.Depth)
	}
	for _, name := range c.Lockfiles.Names {
		if _, err := filepath.Match(name, ""); err != nil {
			return fmt.Errorf("%w: lockfiles.names: bad pattern %q", ErrInvalidConfig, name)
		}
	}
	return nil
}

// ConfigPaths returns all possible config file paths in priority order
// 1. ~/.config/pipin/config.yaml (XDG standard - priority)
// 2. ~/.pipin/config.yaml (legacy fallback)
func ConfigPaths() ([]string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	// Check XDG_CONFIG_HOME first, fallback to ~/.config
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}

	return []string{
		filepath.Join(xdgConfig, "pipin", "config.yaml"),
		filepath.Join(home, ".pipin", "config.yaml"),
	}, nil
}

// DefaultConfigPath returns the default config file path (XDG standard)
func DefaultConfigPath() (string, error) {
	paths, err := ConfigPaths()
	if err != nil {
		return "", err
	}
	return paths[0], nil
}

// FindConfigPath returns the first existing config file path
// Returns the default path if no config file exists yet
func FindConfigPath() (string, error) {
	paths, err := ConfigPaths()
	if err != nil {
		return "", err
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return paths[0], nil
}

// Load reads configuration from the first available config file
// Priority: ~/.config/pipin/config.yaml > ~/.pipin/config.yaml
func Load() (*Config, error) {
	configPath, err := FindConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom reads configuration from a specific file path.
// A missing file yields Default(); nothing is written.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, errors.Join(ErrInvalidConfig, err))
	}
	if cfg.Defaults == nil {
		cfg.Defaults = pipcmd.NewOptions()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Save writes configuration to the default config file
func (c *Config) Save() error {
	configPath, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(configPath)
}

// SaveTo writes configuration to a specific file path
func (c *Config) SaveTo(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
