package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnvConfigPath names the environment variable that pins the config file.
const EnvConfigPath = "FILMIDS_CONFIG"

// LocalPath is the per-directory config file, checked before the user config.
const LocalPath = "./filmids.toml"

// DefaultPath returns the XDG-compliant default config path.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return LocalPath
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "filmids", "config.toml")
}

// Discover finds the config file using the standard search order.
// Search order:
//  1. FILMIDS_CONFIG environment variable
//  2. ./filmids.toml (current directory)
//  3. $XDG_CONFIG_HOME/filmids/config.toml
//
// It returns "" when no file exists; the tool then runs on defaults.
func Discover() (string, error) {
	if envPath := os.Getenv(EnvConfigPath); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("%s=%s: %w", EnvConfigPath, envPath, err)
		}
		return envPath, nil
	}

	for _, p := range []string{LocalPath, DefaultPath()} {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}
