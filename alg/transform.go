package alg

import (
	"fmt"
	"math"

	"realmatlas/typedef"
)

// Profile selects which calibration formula a deployment uses. The two
// profiles are not numerically interchangeable; an editor instance commits
// to exactly one.
type Profile uint8

const (
	// ProfileOffset applies OffsetX/OffsetY as world-unit shifts before
	// normalization against the world bounds.
	ProfileOffset Profile = iota
	// ProfileAffine multiplies the normalized fraction by ScaleX/ScaleY and
	// applies OffsetX/OffsetY as a post-scale pixel correction.
	ProfileAffine
)

// Calibration is the immutable configuration of the world-to-render mapping.
type Calibration struct {
	Bounds      typedef.WorldBounds
	ImageWidth  int
	ImageHeight int
	OffsetX     float64
	OffsetY     float64
	ScaleX      float64
	ScaleY      float64
	Profile     Profile
}

// NewOffsetCalibration builds a ProfileOffset calibration.
func NewOffsetCalibration(bounds typedef.WorldBounds, width, height int, offsetX, offsetY float64) Calibration {
	return Calibration{
		Bounds:      bounds,
		ImageWidth:  width,
		ImageHeight: height,
		OffsetX:     offsetX,
		OffsetY:     offsetY,
		ScaleX:      1,
		ScaleY:      1,
		Profile:     ProfileOffset,
	}
}

// NewAffineCalibration builds a ProfileAffine calibration.
func NewAffineCalibration(bounds typedef.WorldBounds, width, height int, scaleX, scaleY, offsetX, offsetY float64) Calibration {
	return Calibration{
		Bounds:      bounds,
		ImageWidth:  width,
		ImageHeight: height,
		OffsetX:     offsetX,
		OffsetY:     offsetY,
		ScaleX:      scaleX,
		ScaleY:      scaleY,
		Profile:     ProfileAffine,
	}
}

// Validate checks the calibration invariants.
func (c Calibration) Validate() error {
	if err := c.Bounds.Validate(); err != nil {
		return err
	}
	if c.ImageWidth <= 0 || c.ImageHeight <= 0 {
		return fmt.Errorf("%w: %dx%d", typedef.ErrInvalidDimensions, c.ImageWidth, c.ImageHeight)
	}
	return nil
}

// ToRender maps world coordinates to render-space (row, col) pixel
// coordinates. The row axis is inverted relative to world Y: world Y grows
// upward, render rows grow downward. Out-of-bounds input is not clamped;
// it simply lands outside the nominal image area.
func (c Calibration) ToRender(worldX, worldY float64) (row, col float64) {
	w := float64(c.ImageWidth)
	h := float64(c.ImageHeight)
	switch c.Profile {
	case ProfileAffine:
		col = (worldX - c.Bounds.MinX) / c.Bounds.SpanX() * c.ScaleX * w
		row = h - (worldY-c.Bounds.MinY)/c.Bounds.SpanY()*c.ScaleY*h
		col += c.OffsetX
		row -= c.OffsetY
	default: // ProfileOffset
		col = (worldX + c.OffsetX - c.Bounds.MinX) / c.Bounds.SpanX() * w
		row = h - (worldY+c.OffsetY-c.Bounds.MinY)/c.Bounds.SpanY()*h
	}
	return row, col
}

// ToWorld maps render-space (row, col) pixel coordinates back to world
// coordinates, rounding to the nearest integer with half-up ties. It is the
// exact inverse of ToRender for integer world inputs within the bounds.
func (c Calibration) ToWorld(row, col float64) (worldX, worldY int) {
	w := float64(c.ImageWidth)
	h := float64(c.ImageHeight)
	var x, y float64
	switch c.Profile {
	case ProfileAffine:
		x = (col-c.OffsetX)/(c.ScaleX*w)*c.Bounds.SpanX() + c.Bounds.MinX
		y = (h-(row+c.OffsetY))/(c.ScaleY*h)*c.Bounds.SpanY() + c.Bounds.MinY
	default: // ProfileOffset
		x = col/w*c.Bounds.SpanX() + c.Bounds.MinX - c.OffsetX
		y = (h-row)/h*c.Bounds.SpanY() + c.Bounds.MinY - c.OffsetY
	}
	return RoundHalfUp(x), RoundHalfUp(y)
}

// ToWorldPoint is ToWorld returning a typedef.Point.
func (c Calibration) ToWorldPoint(row, col float64) typedef.Point {
	x, y := c.ToWorld(row, col)
	return typedef.Point{X: x, Y: y}
}

// RoundHalfUp rounds to the nearest integer with .5 rounding toward +Inf.
// Every world-coordinate rounding in the editor goes through this so ties
// break the same way on transform and import.
func RoundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
