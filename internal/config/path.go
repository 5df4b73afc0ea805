package config

import (
	"os"
	"path/filepath"
)

const appDir = "httpmq"

// DefaultDataDir picks where queue data lives when --data-dir is not given.
// Order: $HTTPMQ_DATA_DIR, $XDG_DATA_HOME/httpmq, /var/lib/httpmq when
// writable, then the per-OS user data directory, then ./data.
func DefaultDataDir() string {
	if v := os.Getenv("HTTPMQ_DATA_DIR"); v != "" {
		return v
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appDir)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		return "./data"
	}
	if isWritableDir("/var/lib") {
		return filepath.Join("/var/lib", appDir)
	}
	// ~/Library/Application Support on macOS, %AppData% on Windows.
	if userDir, err := os.UserConfigDir(); err == nil && filepath.Base(userDir) != ".config" {
		return filepath.Join(userDir, appDir)
	}
	return filepath.Join(homeDir, "."+appDir)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

func isWritableDir(path string) bool {
	if !isDir(path) {
		return false
	}
	f, err := os.CreateTemp(path, ".httpmq-probe-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return true
}
