//go:build darwin

package geosynth

import (
	"os"
	"path/filepath"
)

// getDefaultDataDir returns the default dataset directory for macOS.
// Returns ~/Library/Application Support/geosynth/
func getDefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Library", "Application Support", "geosynth"), nil
}
