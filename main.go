package main

import (
	"flag"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.design/x/clipboard"

	"realmatlas/alg"
	"realmatlas/api"
	"realmatlas/app"
	"realmatlas/config"
	"realmatlas/editor"
	"realmatlas/script"
	"realmatlas/storage"
)

func main() {
	var headless bool
	var snapshotPath string
	flag.BoolVar(&headless, "headless", false, "Convert a snapshot to a JSON export without starting the GUI")
	flag.StringVar(&snapshotPath, "file", "", "Snapshot file (.atlas) to import on launch")
	flag.StringVar(&snapshotPath, "f", "", "Snapshot file (.atlas) to import on launch (shorthand)")
	flag.Parse()

	// Support a positional file argument so double-clicking a .atlas passes
	// the path through.
	if snapshotPath == "" {
		if args := flag.Args(); len(args) > 0 {
			snapshotPath = args[0]
		}
	}
	if snapshotPath != "" {
		snapshotPath = filepath.Clean(snapshotPath)
	}

	if err := config.Init(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(config.LogLevel())

	cal, err := config.Calibration()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid calibration")
	}

	if headless {
		if err := runHeadless(snapshotPath); err != nil {
			log.Fatal().Err(err).Msg("headless export failed")
		}
		return
	}

	runWithGUI(cal, snapshotPath)
}

// runHeadless converts a snapshot into a JSON export document with no
// window: the same store, document builder, hook and export path the GUI
// uses, driven once.
func runHeadless(snapshotPath string) error {
	store := editor.NewStore()

	if snapshotPath == "" {
		snapshotPath = storage.DataFile(storage.AutosaveFile)
	}
	n, err := storage.LoadSnapshotPath(snapshotPath, store)
	if err != nil {
		return err
	}
	log.Info().Int("points", n).Str("snapshot", snapshotPath).Msg("snapshot loaded")

	now := time.Now()
	doc := editor.BuildPatrolDocument(store, config.WorldBounds(), now)
	data, err := editor.MarshalDocument(doc)
	if err != nil {
		return err
	}

	hook, err := script.Load(config.ExportHookScript())
	if err != nil {
		log.Warn().Err(err).Msg("export hook not loaded")
	}
	data = hook.Apply(data)

	exporter := api.NewExportClient(config.ExportEndpoint(), exportTimeout())
	dest, err := exporter.Export("patrol_points", data, now)
	if err != nil {
		return err
	}
	log.Info().Str("dest", dest).Msg("export written")
	return nil
}

func runWithGUI(cal alg.Calibration, snapshotPath string) {
	clipboardOK := false
	if runtime.GOARCH != "wasm" && runtime.GOOS != "js" {
		if err := clipboard.Init(); err != nil {
			log.Warn().Err(err).Msg("clipboard unavailable, import/export copy disabled")
		} else {
			clipboardOK = true
		}
	}

	var sync *api.SyncServer
	if config.SyncEnabled() {
		sync = api.NewSyncServer()
		sync.Start(config.SyncListen())
	}

	game, err := app.NewGame(cal, app.GameOptions{
		MapImagePath:     config.MapImagePath(),
		DatasetPath:      config.DatasetPath(),
		ExportEndpoint:   config.ExportEndpoint(),
		ExportTimeout:    exportTimeout(),
		HookScript:       config.ExportHookScript(),
		Sync:             sync,
		AutosaveEnabled:  config.AutosaveEnabled(),
		AutosaveInterval: time.Duration(config.AutosaveIntervalSeconds()) * time.Second,
		ClipboardOK:      clipboardOK,
		SnapshotPath:     snapshotPath,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}

	ebiten.SetWindowTitle("RealmAtlas")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(1600, 900)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal().Err(err).Msg("editor exited")
	}
}

func exportTimeout() time.Duration {
	return time.Duration(config.ExportTimeoutSeconds()) * time.Second
}
