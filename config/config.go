// Package config loads editor settings from an optional atlas.toml with
// sensible defaults for the shipped realm map.
package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"realmatlas/alg"
	"realmatlas/storage"
	"realmatlas/typedef"
)

func setDefaults() {
	viper.SetDefault("logLevel", "info")

	viper.SetDefault("map.imagePath", "main-map.png")
	viper.SetDefault("map.width", 1801)
	viper.SetDefault("map.height", 1872)
	viper.SetDefault("map.bounds.minX", 283.0)
	viper.SetDefault("map.bounds.maxX", 2048.0)
	viper.SetDefault("map.bounds.minY", 130.0)
	viper.SetDefault("map.bounds.maxY", 1871.0)

	viper.SetDefault("calibration.profile", "offset")
	viper.SetDefault("calibration.offsetX", 0.0)
	viper.SetDefault("calibration.offsetY", 0.0)
	viper.SetDefault("calibration.scaleX", 1.0)
	viper.SetDefault("calibration.scaleY", 1.0)

	viper.SetDefault("dataset.path", "biomes_complete.json")

	viper.SetDefault("export.endpoint", "")
	viper.SetDefault("export.timeoutSeconds", 5)

	viper.SetDefault("sync.enabled", false)
	viper.SetDefault("sync.listen", ":42070")

	viper.SetDefault("autosave.enabled", true)
	viper.SetDefault("autosave.intervalSeconds", 60)

	viper.SetDefault("script.exportHook", "")
}

// Init sets defaults and reads the optional atlas.toml from the working
// directory or the data directory. A missing config file is not an error.
func Init() error {
	setDefaults()

	viper.SetConfigName("atlas")
	viper.SetConfigType("toml")
	viper.AddConfigPath(".")
	viper.AddConfigPath(storage.DataDir())

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

// LogLevel parses the configured zerolog level, defaulting to info.
func LogLevel() zerolog.Level {
	switch strings.ToLower(viper.GetString("logLevel")) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// WorldBounds returns the configured world bounds.
func WorldBounds() typedef.WorldBounds {
	return typedef.WorldBounds{
		MinX: viper.GetFloat64("map.bounds.minX"),
		MaxX: viper.GetFloat64("map.bounds.maxX"),
		MinY: viper.GetFloat64("map.bounds.minY"),
		MaxY: viper.GetFloat64("map.bounds.maxY"),
	}
}

// Calibration builds the configured coordinate calibration. The deployment
// commits to exactly one profile here; the two formulas are not
// interchangeable.
func Calibration() (alg.Calibration, error) {
	bounds := WorldBounds()
	width := viper.GetInt("map.width")
	height := viper.GetInt("map.height")
	offX := viper.GetFloat64("calibration.offsetX")
	offY := viper.GetFloat64("calibration.offsetY")

	var cal alg.Calibration
	switch profile := strings.ToLower(viper.GetString("calibration.profile")); profile {
	case "offset":
		cal = alg.NewOffsetCalibration(bounds, width, height, offX, offY)
	case "affine":
		cal = alg.NewAffineCalibration(bounds, width, height,
			viper.GetFloat64("calibration.scaleX"),
			viper.GetFloat64("calibration.scaleY"),
			offX, offY)
	default:
		return cal, fmt.Errorf("unknown calibration profile %q", profile)
	}

	if err := cal.Validate(); err != nil {
		return cal, err
	}
	return cal, nil
}

// MapImagePath returns the configured background image path.
func MapImagePath() string { return viper.GetString("map.imagePath") }

// DatasetPath returns the configured biome dataset path.
func DatasetPath() string { return viper.GetString("dataset.path") }

// ExportEndpoint returns the remote export URL, empty when unset.
func ExportEndpoint() string { return viper.GetString("export.endpoint") }

// ExportTimeoutSeconds returns the remote export timeout.
func ExportTimeoutSeconds() int { return viper.GetInt("export.timeoutSeconds") }

// SyncEnabled reports whether the websocket live-sync server should run.
func SyncEnabled() bool { return viper.GetBool("sync.enabled") }

// SyncListen returns the live-sync listen address.
func SyncListen() string { return viper.GetString("sync.listen") }

// AutosaveEnabled reports whether periodic snapshots are written.
func AutosaveEnabled() bool { return viper.GetBool("autosave.enabled") }

// AutosaveIntervalSeconds returns the autosave period.
func AutosaveIntervalSeconds() int { return viper.GetInt("autosave.intervalSeconds") }

// ExportHookScript returns the path of the optional export hook script,
// empty when none is configured.
func ExportHookScript() string { return viper.GetString("script.exportHook") }
