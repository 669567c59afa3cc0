// Package overlay holds the read-only biome region model: rectangle
// polygons and beacon markers projected into render space, with
// category-based highlight and dim styling. The underlying dataset is
// never mutated by user gestures.
package overlay

import (
	"image/color"
	"sort"
	"strconv"

	"realmatlas/alg"
	"realmatlas/typedef"
)

// Vertex is a render-space polygon corner.
type Vertex struct {
	Row float64
	Col float64
}

// RegionPolygon is one biome rectangle projected into render space. The
// four vertices run top-left, top-right, bottom-right, bottom-left.
type RegionPolygon struct {
	Vertices [4]Vertex
	Label    string
	Category typedef.Category
}

// Style describes how a region is drawn under the current filter.
type Style struct {
	Fill       color.RGBA
	Outline    color.RGBA
	Alpha      float32
	Emphasized bool
}

// Opacity levels per filter state.
const (
	alphaUniform    = 0.35
	alphaEmphasized = 0.60
	alphaDimmed     = 0.12
)

// Model holds the immutable biome dataset and the current visibility
// filter. Regions and beacons are loaded once and only ever read.
type Model struct {
	dataset typedef.BiomeDataset
	filter  typedef.Category

	// projection cache, recomputed when the calibration changes
	cachedCal  alg.Calibration
	cachedPoly []RegionPolygon
	cacheValid bool
}

// NewModel wraps an externally loaded dataset. A nil-map dataset is valid
// and yields an empty overlay, so the editor stays usable while the load
// is still in flight or has failed.
func NewModel(dataset typedef.BiomeDataset) *Model {
	return &Model{dataset: dataset, filter: typedef.CategoryAll}
}

// RegionsToDraw projects every biome rectangle's four corners into render
// space. The projection is computed once per calibration and cached.
func (m *Model) RegionsToDraw(cal alg.Calibration) []RegionPolygon {
	if m.cacheValid && m.cachedCal == cal {
		return m.cachedPoly
	}

	names := make([]string, 0, len(m.dataset.Biomes))
	for name := range m.dataset.Biomes {
		names = append(names, name)
	}
	sort.Strings(names)

	polys := make([]RegionPolygon, 0, len(names))
	for _, name := range names {
		def := m.dataset.Biomes[name]
		b := def.Bounds

		tlRow, tlCol := cal.ToRender(b.MinX, b.MaxY)
		trRow, trCol := cal.ToRender(b.MaxX, b.MaxY)
		brRow, brCol := cal.ToRender(b.MaxX, b.MinY)
		blRow, blCol := cal.ToRender(b.MinX, b.MinY)

		label := def.Name
		if label == "" {
			label = name
		}
		polys = append(polys, RegionPolygon{
			Vertices: [4]Vertex{
				{Row: tlRow, Col: tlCol},
				{Row: trRow, Col: trCol},
				{Row: brRow, Col: brCol},
				{Row: blRow, Col: blCol},
			},
			Label:    label,
			Category: typedef.Category(name),
		})
	}

	m.cachedCal = cal
	m.cachedPoly = polys
	m.cacheValid = true
	return polys
}

// SetFilter selects which category is emphasized. CategoryAll restores the
// uniform style for every region.
func (m *Model) SetFilter(cat typedef.Category) {
	m.filter = cat
}

// Filter returns the current visibility filter.
func (m *Model) Filter() typedef.Category {
	return m.filter
}

// StyleFor returns the draw style for a region category under the current
// filter: the selected category is emphasized, all others dimmed; with
// CategoryAll every region gets the uniform style.
func (m *Model) StyleFor(cat typedef.Category) Style {
	fill := m.fillColor(cat)
	style := Style{Fill: fill, Outline: outlineFor(fill), Alpha: alphaUniform}
	if m.filter == typedef.CategoryAll {
		return style
	}
	if m.filter == cat {
		style.Alpha = alphaEmphasized
		style.Emphasized = true
	} else {
		style.Alpha = alphaDimmed
	}
	return style
}

// Beacons returns a copy of the dataset beacon definitions.
func (m *Model) Beacons() []typedef.BeaconDef {
	out := make([]typedef.BeaconDef, len(m.dataset.Beacons))
	copy(out, m.dataset.Beacons)
	return out
}

// Biome looks up a biome definition by id.
func (m *Model) Biome(name string) (typedef.BiomeDef, bool) {
	def, ok := m.dataset.Biomes[name]
	return def, ok
}

// DatasetCopy returns a deep copy of the dataset for callers that need a
// mutable snapshot, such as the beacon save-back path.
func (m *Model) DatasetCopy() *typedef.BiomeDataset {
	out := &typedef.BiomeDataset{
		Biomes:  make(map[string]typedef.BiomeDef, len(m.dataset.Biomes)),
		Beacons: make([]typedef.BeaconDef, len(m.dataset.Beacons)),
	}
	copy(out.Beacons, m.dataset.Beacons)
	for name, def := range m.dataset.Biomes {
		positions := make([]typedef.Point, len(def.BeaconPositions))
		copy(positions, def.BeaconPositions)
		def.BeaconPositions = positions
		out.Biomes[name] = def
	}
	return out
}

func (m *Model) fillColor(cat typedef.Category) color.RGBA {
	if def, ok := m.dataset.Biomes[string(cat)]; ok && def.Color != "" {
		if c, ok := parseHexColor(def.Color); ok {
			return c
		}
	}
	return color.RGBA{R: 128, G: 128, B: 128, A: 255}
}

// outlineFor brightens the fill for the region border.
func outlineFor(fill color.RGBA) color.RGBA {
	brighten := func(v uint8) uint8 {
		if v > 205 {
			return 255
		}
		return v + 50
	}
	return color.RGBA{R: brighten(fill.R), G: brighten(fill.G), B: brighten(fill.B), A: 255}
}

// parseHexColor parses "#rrggbb" dataset color strings.
func parseHexColor(s string) (color.RGBA, bool) {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 255,
	}, true
}
