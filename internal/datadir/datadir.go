// Package datadir provides constants and helpers for the taskpad data directory.
package datadir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// Dir is the name of the data directory inside the user's home.
	Dir = ".taskpad"

	// ConfigFile is the config file name (inside the data directory).
	ConfigFile = "taskpad.toml"

	// LogFile is the TUI log file name (inside the data directory).
	LogFile = "taskpad.log"

	// DatabaseFile is the default sqlite database name (inside the data directory).
	DatabaseFile = "taskpad.db"

	// StoreDir holds one JSON file per key for the file backend.
	StoreDir = "store"
)

// Default returns ~/.taskpad, or .taskpad in the working directory when the
// home directory cannot be determined.
func Default() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return Dir
	}
	return filepath.Join(home, Dir)
}

// ConfigPath returns the config file path within dir.
func ConfigPath(dir string) string {
	return joinPath(dir, ConfigFile)
}

// LogPath returns the log file path within dir.
func LogPath(dir string) string {
	return joinPath(dir, LogFile)
}

// DatabasePath returns the sqlite database path within dir.
func DatabasePath(dir string) string {
	return joinPath(dir, DatabaseFile)
}

// StorePath returns the file backend directory within dir.
func StorePath(dir string) string {
	return joinPath(dir, StoreDir)
}

// Ensure creates dir if it does not exist.
func Ensure(dir string) error {
	if dir == "" {
		dir = Dir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	return nil
}

func joinPath(dir, file string) string {
	if dir == "" {
		dir = Dir
	}
	return filepath.Join(dir, file)
}
