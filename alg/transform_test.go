package alg

import (
	"math"
	"testing"

	"realmatlas/typedef"
)

const epsilon = 1e-9

// realmBounds are the shipped realm map bounds.
var realmBounds = typedef.WorldBounds{MinX: 283, MaxX: 2048, MinY: 130, MaxY: 1871}

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func TestOffsetProfileCorners(t *testing.T) {
	cal := NewOffsetCalibration(realmBounds, 1801, 1872, 0, 0)

	row, col := cal.ToRender(283, 130)
	assertNear(t, "bottom-left col", col, 0)
	assertNear(t, "bottom-left row", row, 1872)

	row, col = cal.ToRender(2048, 1871)
	assertNear(t, "top-right col", col, 1801)
	assertNear(t, "top-right row", row, 0)
}

func TestOffsetProfileShiftsColumns(t *testing.T) {
	base := NewOffsetCalibration(realmBounds, 1801, 1872, 0, 0)
	shifted := NewOffsetCalibration(realmBounds, 1801, 1872, 14, 0)

	_, baseCol := base.ToRender(283, 130)
	_, shiftedCol := shifted.ToRender(283, 130)

	want := 14.0 / realmBounds.SpanX() * 1801
	assertNear(t, "column shift", shiftedCol-baseCol, want)

	baseRow, _ := base.ToRender(283, 130)
	shiftedRow, _ := shifted.ToRender(283, 130)
	assertNear(t, "row unchanged", shiftedRow, baseRow)
}

func TestRowAxisInverted(t *testing.T) {
	cal := NewOffsetCalibration(realmBounds, 1801, 1872, 0, 0)

	lowRow, _ := cal.ToRender(1000, 200)
	highRow, _ := cal.ToRender(1000, 1800)
	if highRow >= lowRow {
		t.Errorf("larger world Y should yield smaller render row: got %v >= %v", highRow, lowRow)
	}
}

func TestRoundTripOffsetProfile(t *testing.T) {
	cal := NewOffsetCalibration(realmBounds, 1801, 1872, 14, 0)

	for x := 283; x <= 2048; x += 97 {
		for y := 130; y <= 1871; y += 89 {
			row, col := cal.ToRender(float64(x), float64(y))
			gotX, gotY := cal.ToWorld(row, col)
			if gotX != x || gotY != y {
				t.Fatalf("round trip (%d,%d) -> (%d,%d)", x, y, gotX, gotY)
			}
		}
	}
}

func TestRoundTripAffineProfile(t *testing.T) {
	cal := NewAffineCalibration(realmBounds, 1801, 1872, 0.95, 1.05, -22, 8)

	for x := 283; x <= 2048; x += 103 {
		for y := 130; y <= 1871; y += 101 {
			row, col := cal.ToRender(float64(x), float64(y))
			gotX, gotY := cal.ToWorld(row, col)
			if gotX != x || gotY != y {
				t.Fatalf("round trip (%d,%d) -> (%d,%d)", x, y, gotX, gotY)
			}
		}
	}
}

func TestProfilesAreNotInterchangeable(t *testing.T) {
	offset := NewOffsetCalibration(realmBounds, 1801, 1872, 14, 0)
	affine := NewAffineCalibration(realmBounds, 1801, 1872, 1, 1, 14, 0)

	_, offsetCol := offset.ToRender(1000, 1000)
	_, affineCol := affine.ToRender(1000, 1000)
	if math.Abs(offsetCol-affineCol) < epsilon {
		t.Errorf("profiles agreed at col %v; expected distinct mappings", offsetCol)
	}
}

func TestOutOfBoundsNotClamped(t *testing.T) {
	cal := NewOffsetCalibration(realmBounds, 1801, 1872, 0, 0)

	_, col := cal.ToRender(3000, 1000)
	if col <= 1801 {
		t.Errorf("out-of-bounds world X should map past the image edge, got col %v", col)
	}
}

func TestCalibrationValidate(t *testing.T) {
	cases := []struct {
		name    string
		cal     Calibration
		wantErr bool
	}{
		{"valid", NewOffsetCalibration(realmBounds, 1801, 1872, 0, 0), false},
		{"inverted x bounds", NewOffsetCalibration(typedef.WorldBounds{MinX: 10, MaxX: 5, MinY: 0, MaxY: 1}, 100, 100, 0, 0), true},
		{"flat y bounds", NewOffsetCalibration(typedef.WorldBounds{MinX: 0, MaxX: 1, MinY: 3, MaxY: 3}, 100, 100, 0, 0), true},
		{"zero width", NewOffsetCalibration(realmBounds, 0, 1872, 0, 0), true},
		{"negative height", NewOffsetCalibration(realmBounds, 1801, -5, 0, 0), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cal.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestRoundHalfUp(t *testing.T) {
	cases := []struct {
		in   float64
		want int
	}{
		{1.4, 1},
		{1.5, 2},
		{1.6, 2},
		{-1.5, -1},
		{2.0, 2},
	}
	for _, tc := range cases {
		if got := RoundHalfUp(tc.in); got != tc.want {
			t.Errorf("RoundHalfUp(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
