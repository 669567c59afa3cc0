package app

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog/log"
)

// MapInfo represents the background image configuration
type MapInfo struct {
	Width  int // Map width in pixels
	Height int // Map height in pixels
}

// MapManager handles loading and managing the background map image
type MapManager struct {
	mapImage  *ebiten.Image
	mapInfo   *MapInfo
	isLoaded  bool
	loadError error
}

// NewMapManager creates a new map manager instance
func NewMapManager() *MapManager {
	return &MapManager{
		isLoaded: false,
	}
}

// LoadMapAsync loads the map image in a separate goroutine. A load failure
// is non-fatal; the editor keeps running on a blank background.
func (mm *MapManager) LoadMapAsync(path string) {
	go func() {
		if err := mm.LoadMapData(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("map image unavailable, using blank background")
		}
	}()
}

// LoadMapData loads the map image from disk
func (mm *MapManager) LoadMapData(path string) error {
	file, err := os.Open(path)
	if err != nil {
		mm.loadError = fmt.Errorf("failed to open map file: %w", err)
		return mm.loadError
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		mm.loadError = fmt.Errorf("failed to decode map image: %w", err)
		return mm.loadError
	}

	bounds := img.Bounds()
	mm.mapImage = ebiten.NewImageFromImage(img)
	mm.mapInfo = &MapInfo{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}

	mm.isLoaded = true
	log.Info().Int("width", mm.mapInfo.Width).Int("height", mm.mapInfo.Height).Msg("map image loaded")

	return nil
}

// GetMapImage returns the loaded map image
func (mm *MapManager) GetMapImage() *ebiten.Image {
	return mm.mapImage
}

// IsLoaded returns whether the map image has been loaded
func (mm *MapManager) IsLoaded() bool {
	return mm.isLoaded
}

// GetLoadError returns any error that occurred during loading
func (mm *MapManager) GetLoadError() error {
	return mm.loadError
}

// GetMapInfo returns the loaded map information
func (mm *MapManager) GetMapInfo() *MapInfo {
	return mm.mapInfo
}
