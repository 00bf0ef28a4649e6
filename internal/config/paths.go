package config

import (
	"os"
	"path/filepath"
)

// Paths holds the directories vellum-shell reads and writes.
type Paths struct {
	// ConfigDir is the directory for configuration files
	// (~/.config/vellum-shell).
	ConfigDir string

	// CacheDir is the directory for cache files, such as the picker's
	// single-instance lock (~/.cache/vellum-shell).
	CacheDir string
}

// DefaultPaths returns the default paths following the XDG Base Directory
// spec.
func DefaultPaths() *Paths {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(home, ".config")
	}

	cacheHome := os.Getenv("XDG_CACHE_HOME")
	if cacheHome == "" {
		cacheHome = filepath.Join(home, ".cache")
	}

	return &Paths{
		ConfigDir: filepath.Join(configHome, "vellum-shell"),
		CacheDir:  filepath.Join(cacheHome, "vellum-shell"),
	}
}

// ConfigFile returns the path to the main configuration file.
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.ConfigDir, "config.yaml")
}
