//go:build linux

package geosynth

import (
	"os"
	"path/filepath"
)

// getDefaultDataDir returns the default dataset directory for Linux.
// Uses $XDG_DATA_HOME/geosynth/ if set, otherwise
// ~/.local/share/geosynth/
func getDefaultDataDir() (string, error) {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "geosynth"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "geosynth"), nil
}
