// Package config provides configuration utilities for the application.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands ~ and environment variables in a file path.
// It handles both ~ for the home directory and $VAR style variables.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}

// DefaultDatabasePath returns the default SQLite database location.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "reportpipe.db"
	}
	return filepath.Join(home, ".local", "share", "reportpipe", "reportpipe.db")
}

// DefaultScratchDir returns the default location for downloaded document
// copies awaiting analysis.
func DefaultScratchDir() string {
	return filepath.Join(os.TempDir(), "reportpipe")
}
