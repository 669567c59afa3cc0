package typedef

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidBounds     = errors.New("world bounds must satisfy maxX > minX and maxY > minY")
	ErrInvalidDimensions = errors.New("image dimensions must be positive")
)

// WorldBounds describes the rectangular extent of the game world in world
// coordinates. World Y increases upward.
type WorldBounds struct {
	MinX float64 `json:"minX"`
	MaxX float64 `json:"maxX"`
	MinY float64 `json:"minY"`
	MaxY float64 `json:"maxY"`
}

// Validate checks the bounds invariant.
func (b WorldBounds) Validate() error {
	if b.MaxX <= b.MinX || b.MaxY <= b.MinY {
		return fmt.Errorf("%w: got %+v", ErrInvalidBounds, b)
	}
	return nil
}

// SpanX returns the world-unit width of the bounds.
func (b WorldBounds) SpanX() float64 { return b.MaxX - b.MinX }

// SpanY returns the world-unit height of the bounds.
func (b WorldBounds) SpanY() float64 { return b.MaxY - b.MinY }

// Point is an annotation position in world coordinates, rounded to the
// nearest integer.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Category groups annotation points. Patrol points live in the single
// ungrouped category; beacons use one category per biome identifier.
type Category string

// CategoryPatrol is the category for ungrouped patrol points.
const CategoryPatrol Category = "ungrouped"

// CategoryAll selects every category in overlay filters.
const CategoryAll Category = "all"

// Biome identifiers shipped with the realm dataset.
const (
	BiomeBeach     Category = "beach"
	BiomePlains    Category = "plains"
	BiomeForest    Category = "forest"
	BiomeMidlands  Category = "midlands"
	BiomeHighlands Category = "highlands"
	BiomeMountains Category = "mountains"
	BiomeGodlands  Category = "godlands"
)

// Biomes lists every biome category in display order.
var Biomes = []Category{
	BiomeBeach,
	BiomePlains,
	BiomeForest,
	BiomeMidlands,
	BiomeHighlands,
	BiomeMountains,
	BiomeGodlands,
}

// IsBiome reports whether c is one of the known biome identifiers.
func IsBiome(c Category) bool {
	for _, b := range Biomes {
		if b == c {
			return true
		}
	}
	return false
}

// BeaconDef is a named beacon position from the realm dataset.
type BeaconDef struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Name string  `json:"name"`
}

// BiomeDef describes one biome region from the realm dataset. Bounds are a
// world-space rectangle; the data model does not support arbitrary polygons.
type BiomeDef struct {
	Name            string      `json:"name"`
	Bounds          WorldBounds `json:"bounds"`
	BeaconType      string      `json:"beacon_type,omitempty"`
	Tier            int         `json:"tier,omitempty"`
	Color           string      `json:"color,omitempty"`
	BeaconPositions []Point     `json:"beacon_positions,omitempty"`
}

// BiomeDataset is the shape of the externally supplied region/beacon data.
// It is read-only once loaded; user gestures never mutate it.
type BiomeDataset struct {
	Biomes  map[string]BiomeDef `json:"biomes"`
	Beacons []BeaconDef         `json:"beacons"`
}
