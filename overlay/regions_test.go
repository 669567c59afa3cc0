package overlay

import (
	"math"
	"testing"

	"realmatlas/alg"
	"realmatlas/typedef"
)

var testBounds = typedef.WorldBounds{MinX: 283, MaxX: 2048, MinY: 130, MaxY: 1871}

func testDataset() typedef.BiomeDataset {
	return typedef.BiomeDataset{
		Biomes: map[string]typedef.BiomeDef{
			"beach": {
				Name:   "Beach",
				Bounds: typedef.WorldBounds{MinX: 300, MaxX: 600, MinY: 200, MaxY: 500},
				Color:  "#e8d8a0",
			},
			"godlands": {
				Name:   "Godlands",
				Bounds: typedef.WorldBounds{MinX: 900, MaxX: 1400, MinY: 800, MaxY: 1200},
				Color:  "#b03030",
				BeaconPositions: []typedef.Point{{X: 1000, Y: 900}},
			},
		},
		Beacons: []typedef.BeaconDef{{X: 1000, Y: 900, Name: "godlands beacon 1"}},
	}
}

func testCalibration() alg.Calibration {
	return alg.NewOffsetCalibration(testBounds, 1801, 1872, 0, 0)
}

func TestRegionsToDrawProjectsCorners(t *testing.T) {
	m := NewModel(testDataset())
	cal := testCalibration()

	polys := m.RegionsToDraw(cal)
	if len(polys) != 2 {
		t.Fatalf("got %d polygons, want 2", len(polys))
	}

	// Sorted by biome id, so beach first.
	beach := polys[0]
	if beach.Category != "beach" || beach.Label != "Beach" {
		t.Errorf("first polygon = %s/%s", beach.Category, beach.Label)
	}

	wantRow, wantCol := cal.ToRender(300, 500) // top-left: minX, maxY
	if math.Abs(beach.Vertices[0].Row-wantRow) > 1e-9 || math.Abs(beach.Vertices[0].Col-wantCol) > 1e-9 {
		t.Errorf("top-left vertex = %+v, want (%v,%v)", beach.Vertices[0], wantRow, wantCol)
	}
	wantRow, wantCol = cal.ToRender(600, 200) // bottom-right: maxX, minY
	if math.Abs(beach.Vertices[2].Row-wantRow) > 1e-9 || math.Abs(beach.Vertices[2].Col-wantCol) > 1e-9 {
		t.Errorf("bottom-right vertex = %+v, want (%v,%v)", beach.Vertices[2], wantRow, wantCol)
	}

	// Render rows grow downward, so the top edge has the smaller row.
	if beach.Vertices[0].Row >= beach.Vertices[3].Row {
		t.Errorf("top row %v not above bottom row %v", beach.Vertices[0].Row, beach.Vertices[3].Row)
	}
}

func TestRegionsToDrawCachedPerCalibration(t *testing.T) {
	m := NewModel(testDataset())
	cal := testCalibration()

	first := m.RegionsToDraw(cal)
	second := m.RegionsToDraw(cal)
	if &first[0] != &second[0] {
		t.Error("projection recomputed for identical calibration")
	}

	other := alg.NewOffsetCalibration(testBounds, 900, 936, 0, 0)
	third := m.RegionsToDraw(other)
	if len(third) != 2 {
		t.Fatalf("got %d polygons after recalibration", len(third))
	}
	if third[0].Vertices[0].Col == first[0].Vertices[0].Col {
		t.Error("projection not recomputed for a different calibration")
	}
}

func TestStyleForFilterStates(t *testing.T) {
	m := NewModel(testDataset())

	m.SetFilter("beach")
	if s := m.StyleFor("beach"); !s.Emphasized || s.Alpha != alphaEmphasized {
		t.Errorf("selected style = %+v", s)
	}
	if s := m.StyleFor("godlands"); s.Emphasized || s.Alpha != alphaDimmed {
		t.Errorf("unselected style = %+v", s)
	}

	// "all" resets every region to the uniform, non-emphasized style.
	m.SetFilter(typedef.CategoryAll)
	for _, cat := range []typedef.Category{"beach", "godlands"} {
		if s := m.StyleFor(cat); s.Emphasized || s.Alpha != alphaUniform {
			t.Errorf("uniform style for %s = %+v", cat, s)
		}
	}
}

func TestStyleForUsesDatasetColor(t *testing.T) {
	m := NewModel(testDataset())
	s := m.StyleFor("beach")
	if s.Fill.R != 0xe8 || s.Fill.G != 0xd8 || s.Fill.B != 0xa0 {
		t.Errorf("fill = %+v, want #e8d8a0", s.Fill)
	}

	// Unknown category falls back to grey.
	s = m.StyleFor("volcano")
	if s.Fill.R != 128 || s.Fill.G != 128 || s.Fill.B != 128 {
		t.Errorf("fallback fill = %+v", s.Fill)
	}
}

func TestEmptyDatasetYieldsEmptyOverlay(t *testing.T) {
	m := NewModel(typedef.BiomeDataset{})
	polys := m.RegionsToDraw(testCalibration())
	if len(polys) != 0 {
		t.Errorf("empty dataset produced %d polygons", len(polys))
	}
	if len(m.Beacons()) != 0 {
		t.Errorf("empty dataset produced beacons")
	}
}

func TestDatasetCopyIsDeep(t *testing.T) {
	m := NewModel(testDataset())
	cp := m.DatasetCopy()

	cp.Biomes["godlands"].BeaconPositions[0] = typedef.Point{X: 1, Y: 1}

	original, _ := m.Biome("godlands")
	if original.BeaconPositions[0] != (typedef.Point{X: 1000, Y: 900}) {
		t.Errorf("mutating the copy changed the model dataset: %v", original.BeaconPositions[0])
	}
}

func TestParseHexColor(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"#e8d8a0", true},
		{"e8d8a0", false},
		{"#zzz", false},
		{"", false},
	}
	for _, tc := range cases {
		if _, ok := parseHexColor(tc.in); ok != tc.ok {
			t.Errorf("parseHexColor(%q) ok = %v, want %v", tc.in, ok, tc.ok)
		}
	}
}
