package config

import (
	"os"
	"path/filepath"
)

// UserConfigPath returns the path to the user-level config file.
// This follows the XDG Base Directory Specification:
// - Linux: ~/.config/gitchangelog/config.yml
// - macOS: ~/Library/Application Support/gitchangelog/config.yml
// - Windows: %APPDATA%\gitchangelog\config.yml
//
// If XDG_CONFIG_HOME is set, it will be respected on Linux.
func UserConfigPath() (string, error) {
	dir, err := UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yml"), nil
}

// UserConfigDir returns the path to the user-level config directory.
func UserConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "gitchangelog"), nil
}

// ProjectConfigPath returns the path to the project-level YAML config file,
// relative to the project directory.
func ProjectConfigPath() string {
	return ".gitchangelog.yml"
}

// ProjectJSONConfigPath returns the path to the project-level JSON config file,
// relative to the project directory.
func ProjectJSONConfigPath() string {
	return ".gitchangelog.json"
}
