// Package fs locates the directories nucleus keeps its files in.
package fs

import (
	"os"
	"path/filepath"
)

const appName = "nucleus"

// ConfigDirEnv overrides the configuration directory.
const ConfigDirEnv = "NUCLEUS_CONFIG_DIR"

// DefaultDataDir returns the default data directory for nucleus.
// Uses XDG_DATA_HOME if set, otherwise falls back to ~/.local/share/nucleus,
// or system temp directory if home is unavailable.
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), appName)
	}
	return filepath.Join(home, ".local", "share", appName)
}

// DefaultConfigPath returns where config.toml is looked up: the directory
// named by NUCLEUS_CONFIG_DIR when set, otherwise the user config directory.
// Returns "" when no location can be determined.
func DefaultConfigPath() string {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return filepath.Join(dir, "config.toml")
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appName, "config.toml")
}

// SessionsDir returns the directory chat sessions are stored in under dataDir.
func SessionsDir(dataDir string) string {
	return filepath.Join(dataDir, "sessions")
}
