package editor

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"realmatlas/alg"
	"realmatlas/typedef"
)

// ErrBadImportFormat is returned when an import document lacks a points
// array. The store is left untouched in that case.
var ErrBadImportFormat = errors.New("import document has no points array")

// PatrolDocument is the export shape of the patrol-point editor.
type PatrolDocument struct {
	Points    []typedef.Point     `json:"points"`
	Count     int                 `json:"count"`
	Timestamp string              `json:"timestamp"`
	Bounds    typedef.WorldBounds `json:"bounds"`
}

// BiomeExport is one biome entry in the beacon export document.
type BiomeExport struct {
	Name            string          `json:"name"`
	BeaconType      string          `json:"beacon_type"`
	Tier            int             `json:"tier"`
	Color           string          `json:"color"`
	BeaconPositions []typedef.Point `json:"beacon_positions"`
}

// BeaconExport is one flattened beacon entry in the beacon export document.
type BeaconExport struct {
	Name  string `json:"name"`
	Biome string `json:"biome"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
}

// ExportMetadata carries the export timestamp and world bounds.
type ExportMetadata struct {
	Exported   string              `json:"exported"`
	GameBounds typedef.WorldBounds `json:"game_bounds"`
}

// BeaconDocument is the export shape of the biome-beacon editor.
type BeaconDocument struct {
	Biomes   map[string]BiomeExport `json:"biomes"`
	Beacons  []BeaconExport         `json:"beacons"`
	Metadata ExportMetadata         `json:"metadata"`
}

// MarshalDocument renders any export document as pretty-printed JSON with
// two-space indentation so exports stay human-diffable.
func MarshalDocument(doc any) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// rawPoint tolerates partially filled entries; pointers distinguish a
// missing field from a zero coordinate.
type rawPoint struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

// rawPatrolDocument defers points decoding so a missing array can be told
// apart from an empty one.
type rawPatrolDocument struct {
	Points json.RawMessage `json:"points"`
}

// ParsePatrolDocument decodes a patrol export document. Entries missing a
// numeric x or y are skipped silently; a document without a points array
// fails with ErrBadImportFormat.
func ParsePatrolDocument(data []byte) ([]typedef.Point, error) {
	var raw rawPatrolDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadImportFormat, err)
	}
	if len(raw.Points) == 0 || string(raw.Points) == "null" {
		return nil, ErrBadImportFormat
	}

	var entries []rawPoint
	if err := json.Unmarshal(raw.Points, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadImportFormat, err)
	}

	points := make([]typedef.Point, 0, len(entries))
	for _, e := range entries {
		if e.X == nil || e.Y == nil {
			continue
		}
		points = append(points, typedef.Point{
			X: alg.RoundHalfUp(*e.X),
			Y: alg.RoundHalfUp(*e.Y),
		})
	}
	return points, nil
}

// BuildPatrolDocument serializes the store's patrol points.
func BuildPatrolDocument(s *Store, bounds typedef.WorldBounds, now time.Time) PatrolDocument {
	points := s.Points(typedef.CategoryPatrol)
	return PatrolDocument{
		Points:    points,
		Count:     len(points),
		Timestamp: now.Format(time.RFC3339),
		Bounds:    bounds,
	}
}

// BuildBeaconDocument serializes the store's beacon points, one biome block
// per category, enriched with dataset metadata when available.
func BuildBeaconDocument(s *Store, dataset *typedef.BiomeDataset, bounds typedef.WorldBounds, now time.Time) BeaconDocument {
	doc := BeaconDocument{
		Biomes:  make(map[string]BiomeExport),
		Beacons: make([]BeaconExport, 0),
		Metadata: ExportMetadata{
			Exported:   now.Format(time.RFC3339),
			GameBounds: bounds,
		},
	}

	for _, biome := range typedef.Biomes {
		points := s.Points(biome)
		if len(points) == 0 {
			continue
		}

		entry := BiomeExport{
			Name:            string(biome),
			BeaconPositions: points,
		}
		if dataset != nil {
			if def, ok := dataset.Biomes[string(biome)]; ok {
				entry.Name = def.Name
				entry.BeaconType = def.BeaconType
				entry.Tier = def.Tier
				entry.Color = def.Color
			}
		}
		doc.Biomes[string(biome)] = entry

		for i, p := range points {
			doc.Beacons = append(doc.Beacons, BeaconExport{
				Name:  fmt.Sprintf("%s beacon %d", biome, i+1),
				Biome: string(biome),
				X:     p.X,
				Y:     p.Y,
			})
		}
	}
	return doc
}
