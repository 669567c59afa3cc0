package app

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/rs/zerolog/log"

	"realmatlas/overlay"
	"realmatlas/typedef"
)

// DatasetManager loads the biome region dataset in the background. Until
// the load resolves the editor runs against an empty overlay; a load
// failure leaves it that way without error.
type DatasetManager struct {
	mu       sync.Mutex
	model    *overlay.Model
	isLoaded bool
}

// NewDatasetManager creates a manager with an empty overlay model.
func NewDatasetManager() *DatasetManager {
	return &DatasetManager{
		model: overlay.NewModel(typedef.BiomeDataset{}),
	}
}

// LoadAsync reads and parses the dataset file in a goroutine.
func (dm *DatasetManager) LoadAsync(path string) {
	go func() {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("biome dataset unavailable, overlay stays empty")
			return
		}

		var dataset typedef.BiomeDataset
		if err := json.Unmarshal(data, &dataset); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("biome dataset malformed, overlay stays empty")
			return
		}

		model := overlay.NewModel(dataset)
		dm.mu.Lock()
		// carry over a filter selected while the load was in flight
		model.SetFilter(dm.model.Filter())
		dm.model = model
		dm.isLoaded = true
		dm.mu.Unlock()
		log.Info().Int("biomes", len(dataset.Biomes)).Int("beacons", len(dataset.Beacons)).Msg("biome dataset loaded")
	}()
}

// Model returns the current overlay model; empty before the load resolves.
func (dm *DatasetManager) Model() *overlay.Model {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	return dm.model
}

// IsLoaded reports whether the dataset finished loading.
func (dm *DatasetManager) IsLoaded() bool {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	return dm.isLoaded
}
