//go:build windows

package geosynth

import (
	"os"
	"path/filepath"
)

// getDefaultDataDir returns the default dataset directory for Windows.
// Returns %APPDATA%\geosynth\
func getDefaultDataDir() (string, error) {
	appData := os.Getenv("APPDATA")
	if appData == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		appData = filepath.Join(home, "AppData", "Roaming")
	}
	return filepath.Join(appData, "geosynth"), nil
}
