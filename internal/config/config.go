// Package config provides configuration management for vellum-shell.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the vellum-shell configuration.
type Config struct {
	Backing BackingConfig `yaml:"backing"`
	Nav     NavConfig     `yaml:"nav"`
	Search  SearchConfig  `yaml:"search"`

	// Editor overrides $EDITOR for the backing binary's edit and delete
	// commands. Surfaced here so one config file covers the whole tool;
	// vellum-shell itself never launches an editor.
	Editor string `yaml:"editor"`

	// LogLevel is debug, info, warn or error. VELLUM_DEBUG=1 overrides it.
	LogLevel string `yaml:"log_level"`
}

// BackingConfig holds settings for the backing vellum binary.
type BackingConfig struct {
	// Binary is the backing binary name or path. Empty means "vellum" on
	// PATH.
	Binary string `yaml:"binary"`
}

// NavConfig holds arrow-key navigation settings.
type NavConfig struct {
	// SessionOnly restricts navigation to entries from the current shell
	// session.
	SessionOnly bool `yaml:"session_only"`

	// ExtraArgs are appended verbatim to every move invocation, e.g.
	// ["--no-duplicates"].
	ExtraArgs []string `yaml:"extra_args"`
}

// SearchConfig holds Ctrl-R search settings.
type SearchConfig struct {
	// Selector is the external interactive filter command. Set it to
	// "vellum-picker" to use the built-in selector.
	Selector string `yaml:"selector"`

	// SelectorOpts is a shell-style option string appended to the selector
	// argv, e.g. "--height 40% --reverse".
	SelectorOpts string `yaml:"selector_opts"`

	// FilterArgs are passed to `history --fzf`, e.g. ["--session"] to scope
	// search to the current session.
	FilterArgs []string `yaml:"filter_args"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Backing: BackingConfig{Binary: "vellum"},
		Nav: NavConfig{
			SessionOnly: true,
		},
		Search: SearchConfig{
			Selector: "fzf",
		},
		LogLevel: "warn",
	}
}

// Load loads configuration from the default path.
func Load() (*Config, error) {
	return LoadFromFile(DefaultPaths().ConfigFile())
}

// LoadFromFile loads configuration from the specified file.
// If the file doesn't exist, it returns default configuration.
// Environment variable overrides are applied after file loading.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyEnvOverrides()
	return cfg, nil
}

// ApplyEnvOverrides applies the environment surface recognized by the
// original shell glue on top of whatever the file provided.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("VELLUM_BIN"); v != "" {
		c.Backing.Binary = v
	}
	if v := os.Getenv("VELLUM_FZF_OPTS"); v != "" {
		c.Search.SelectorOpts = v
	}
	if v := os.Getenv("VELLUM_EDITOR"); v != "" {
		c.Editor = v
	}
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveToFile(DefaultPaths().ConfigFile())
}

// SaveToFile writes the configuration to the specified file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
