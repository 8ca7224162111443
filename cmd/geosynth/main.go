// Command geosynth downloads and inspects the GeoSynth dataset.
//
// Configuration is loaded from (in ascending precedence) built-in
// defaults, an optional config file, and environment variables:
//   - GEOSYNTH_BASE_URL: Override the archive server base URL
//   - GEOSYNTH_VARIANT:  Dataset variant, "demo" or "full"
//   - GEOSYNTH_DATA_DIR: Override for the local data directory
//
// The config file is searched as geosynth.yaml in the current
// directory and in ~/.config/geosynth/.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	geosynth "github.com/geomagical/geosynth-go"
)

// CLI exit codes for standardized error reporting.
const (
	// ExitSuccess indicates the operation completed successfully.
	ExitSuccess = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError = 1

	// ExitInvalidArgs indicates an unknown data type or variant.
	ExitInvalidArgs = 2

	// ExitNetworkError indicates a network or connection failure.
	ExitNetworkError = 3

	// ExitUnavailable indicates the server has no such archive.
	ExitUnavailable = 4

	// ExitCorruptArchive indicates a downloaded archive failed to extract.
	ExitCorruptArchive = 5

	// ExitStorageError indicates a filesystem operation failed.
	ExitStorageError = 6
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(ExitInvalidArgs)
	}

	logger := geosynth.NewZerologLogger(
		zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(zerolog.WarnLevel).
			With().Timestamp().Logger())

	cmd := geosynth.NewCommand(cfg, geosynth.WithLogger(logger))
	if err := cmd.Execute(); err != nil {
		os.Exit(exitCodeFromError(err))
	}
}

// loadConfig assembles the library Config from defaults, an optional
// config file, and GEOSYNTH_* environment variables.
func loadConfig() (geosynth.Config, error) {
	v := viper.New()

	v.SetDefault("base_url", geosynth.DefaultBaseURL)
	v.SetDefault("variant", string(geosynth.VariantDemo))
	v.SetDefault("data_dir", "")

	v.SetConfigName("geosynth")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "geosynth"))
	}

	v.SetEnvPrefix("GEOSYNTH")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return geosynth.Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	variant, err := geosynth.ParseVariant(v.GetString("variant"))
	if err != nil {
		return geosynth.Config{}, err
	}

	return geosynth.Config{
		BaseURL: v.GetString("base_url"),
		DataDir: v.GetString("data_dir"),
		Variant: variant,
	}, nil
}

// exitCodeFromError maps error types to exit codes.
func exitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, geosynth.ErrInvalidRequest):
		return ExitInvalidArgs
	case errors.Is(err, geosynth.ErrUnavailable):
		return ExitUnavailable
	case errors.Is(err, geosynth.ErrNetwork):
		return ExitNetworkError
	case errors.Is(err, geosynth.ErrCorruptArchive):
		return ExitCorruptArchive
	case errors.Is(err, geosynth.ErrIO):
		return ExitStorageError
	default:
		return ExitGeneralError
	}
}
