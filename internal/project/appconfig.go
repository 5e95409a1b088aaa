// Package project persists PlateCut's local state as JSON under
// ~/.platecut/: the app config, the sheet-preset inventory, saved
// packing jobs, size templates and whole-app backups.
package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/piwi3910/PlateCut/internal/model"
)

// DefaultConfigDir returns the default directory for application state.
// On all platforms this is ~/.platecut/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".platecut")
}

// DefaultConfigPath returns the default path for the app config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// SaveAppConfig persists an AppConfig to the given path as JSON,
// creating any missing parent directories.
func SaveAppConfig(path string, config model.AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadAppConfig reads an AppConfig from the given path. A missing file
// is not an error: the shop defaults are returned.
func LoadAppConfig(path string) (model.AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.DefaultAppConfig(), nil
		}
		return model.AppConfig{}, err
	}
	var config model.AppConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return model.AppConfig{}, err
	}
	// Keep RecentJobs non-nil for callers that append
	if config.RecentJobs == nil {
		config.RecentJobs = []string{}
	}
	return config, nil
}
