package app

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"realmatlas/alg"
	"realmatlas/overlay"
)

// gridStep is the world-unit spacing of the reference grid.
const gridStep = 100.0

// Marker is one annotation drawn on the map, positioned in render space.
type Marker struct {
	Row      float64
	Col      float64
	Label    string
	Color    color.RGBA
	Selected bool
}

// MapView owns the viewport over the background image: pan, zoom, overlay
// toggles and all drawing. Screen position = render position * scale + offset.
type MapView struct {
	cal        alg.Calibration
	mapManager *MapManager

	scale    float64
	offsetX  float64
	offsetY  float64
	minScale float64
	maxScale float64

	panning    bool
	lastMouseX int
	lastMouseY int
	screenW    int
	screenH    int

	showGrid        bool // Toggle reference grid
	showRegions     bool // Toggle biome rectangles
	showBeacons     bool // Toggle dataset beacon markers
	showCoordinates bool // Toggle cursor world-coordinate readout

	// smooth zoom animation state
	zoomTween     *gween.Tween
	anchorScreenX float64
	anchorScreenY float64
	anchorRow     float64
	anchorCol     float64

	centered bool
}

// NewMapView creates a map view over the given calibration.
func NewMapView(cal alg.Calibration, mm *MapManager) *MapView {
	return &MapView{
		cal:         cal,
		mapManager:  mm,
		scale:       0.4,
		minScale:    0.1,
		maxScale:    4.0,
		showGrid:    false,
		showRegions: true,
		showBeacons: true,
	}
}

// Update handles pan and zoom input. Editing gestures are handled by the
// Game, which owns the sessions.
func (m *MapView) Update(screenW, screenH int, dt float64) {
	m.screenW = screenW
	m.screenH = screenH

	if !m.centered {
		m.centerMapView()
		m.centered = true
	}

	// Smooth zoom toward the cursor
	if _, wheelY := ebiten.Wheel(); wheelY != 0 {
		cursorX, cursorY := ebiten.CursorPosition()
		m.handleSmoothZoom(wheelY, cursorX, cursorY)
	}
	if m.zoomTween != nil {
		v, finished := m.zoomTween.Update(float32(dt))
		m.scale = float64(v)
		m.offsetX = m.anchorScreenX - m.anchorCol*m.scale
		m.offsetY = m.anchorScreenY - m.anchorRow*m.scale
		if finished {
			m.zoomTween = nil
		}
	}

	// Pan with the middle mouse button
	mouseX, mouseY := ebiten.CursorPosition()
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonMiddle) {
		m.panning = true
		m.lastMouseX = mouseX
		m.lastMouseY = mouseY
	}
	if m.panning {
		if ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle) {
			m.offsetX += float64(mouseX - m.lastMouseX)
			m.offsetY += float64(mouseY - m.lastMouseY)
			m.lastMouseX = mouseX
			m.lastMouseY = mouseY
		} else {
			m.panning = false
		}
	}

	// Keyboard panning
	panSpeed := 600.0 * dt
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		m.offsetX += panSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		m.offsetX -= panSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		m.offsetY += panSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		m.offsetY -= panSpeed
	}
}

// handleSmoothZoom starts a zoom animation anchored at the cursor.
func (m *MapView) handleSmoothZoom(wheelDelta float64, cursorX, cursorY int) {
	target := m.scale * math.Pow(1.15, wheelDelta)
	if target < m.minScale {
		target = m.minScale
	}
	if target > m.maxScale {
		target = m.maxScale
	}

	m.anchorScreenX = float64(cursorX)
	m.anchorScreenY = float64(cursorY)
	m.anchorRow, m.anchorCol = m.ScreenToRender(cursorX, cursorY)
	m.zoomTween = gween.New(float32(m.scale), float32(target), 0.25, ease.OutCubic)
}

// centerMapView centers the image in the window.
func (m *MapView) centerMapView() {
	w := float64(m.cal.ImageWidth) * m.scale
	h := float64(m.cal.ImageHeight) * m.scale
	m.offsetX = (float64(m.screenW) - w) / 2
	m.offsetY = (float64(m.screenH) - h) / 2
}

// ScreenToRender converts a window position to render-space (row, col).
func (m *MapView) ScreenToRender(screenX, screenY int) (row, col float64) {
	col = (float64(screenX) - m.offsetX) / m.scale
	row = (float64(screenY) - m.offsetY) / m.scale
	return row, col
}

// RenderToScreen converts render-space (row, col) to a window position.
func (m *MapView) RenderToScreen(row, col float64) (x, y float64) {
	return col*m.scale + m.offsetX, row*m.scale + m.offsetY
}

// Calibration returns the view's coordinate calibration.
func (m *MapView) Calibration() alg.Calibration {
	return m.cal
}

// GetScale returns the current zoom level.
func (m *MapView) GetScale() float64 {
	return m.scale
}

// ToggleGrid toggles the reference grid.
func (m *MapView) ToggleGrid() {
	m.showGrid = !m.showGrid
}

// ToggleRegions toggles the biome rectangle overlay.
func (m *MapView) ToggleRegions() {
	m.showRegions = !m.showRegions
}

// ToggleBeacons toggles the dataset beacon markers.
func (m *MapView) ToggleBeacons() {
	m.showBeacons = !m.showBeacons
}

// ToggleCoordinates toggles the cursor coordinate readout.
func (m *MapView) ToggleCoordinates() {
	m.showCoordinates = !m.showCoordinates
}

// Draw renders the background, overlays and annotation markers.
func (m *MapView) Draw(screen *ebiten.Image, regions *overlay.Model, markers []Marker) {
	m.drawBackground(screen)

	if m.showRegions && regions != nil {
		m.drawRegions(screen, regions)
	}
	if m.showGrid {
		m.drawGrid(screen)
	}
	if m.showBeacons && regions != nil {
		m.drawDatasetBeacons(screen, regions)
	}
	m.drawMarkers(screen, markers)

	if m.showCoordinates {
		m.drawCursorCoordinates(screen)
	}
}

func (m *MapView) drawBackground(screen *ebiten.Image) {
	if m.mapManager.IsLoaded() {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(m.scale, m.scale)
		op.GeoM.Translate(m.offsetX, m.offsetY)
		screen.DrawImage(m.mapManager.GetMapImage(), op)
		return
	}

	// Blank backdrop sized like the calibrated image until the load resolves
	x, y := m.RenderToScreen(0, 0)
	w := float64(m.cal.ImageWidth) * m.scale
	h := float64(m.cal.ImageHeight) * m.scale
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), color.RGBA{24, 26, 32, 255}, false)
}

func (m *MapView) drawRegions(screen *ebiten.Image, regions *overlay.Model) {
	for _, poly := range regions.RegionsToDraw(m.cal) {
		style := regions.StyleFor(poly.Category)

		// Rectangle corners: top-left is vertex 0, bottom-right vertex 2
		x0, y0 := m.RenderToScreen(poly.Vertices[0].Row, poly.Vertices[0].Col)
		x1, y1 := m.RenderToScreen(poly.Vertices[2].Row, poly.Vertices[2].Col)

		fill := style.Fill
		fill.A = uint8(255 * style.Alpha)
		vector.DrawFilledRect(screen, float32(x0), float32(y0), float32(x1-x0), float32(y1-y0), fill, false)

		outlineWidth := float32(1)
		if style.Emphasized {
			outlineWidth = 2
		}
		vector.StrokeRect(screen, float32(x0), float32(y0), float32(x1-x0), float32(y1-y0), outlineWidth, style.Outline, false)

		if m.scale > 0.3 {
			drawText(screen, poly.Label, int(x0)+4, int(y0)+4, textWhite)
		}
	}
}

func (m *MapView) drawGrid(screen *ebiten.Image) {
	gridColor := color.RGBA{255, 255, 255, 40}
	b := m.cal.Bounds

	for wx := math.Ceil(b.MinX/gridStep) * gridStep; wx <= b.MaxX; wx += gridStep {
		row0, col := m.cal.ToRender(wx, b.MinY)
		row1, _ := m.cal.ToRender(wx, b.MaxY)
		x, y0 := m.RenderToScreen(row0, col)
		_, y1 := m.RenderToScreen(row1, col)
		vector.StrokeLine(screen, float32(x), float32(y0), float32(x), float32(y1), 1, gridColor, false)
	}
	for wy := math.Ceil(b.MinY/gridStep) * gridStep; wy <= b.MaxY; wy += gridStep {
		row, col0 := m.cal.ToRender(b.MinX, wy)
		_, col1 := m.cal.ToRender(b.MaxX, wy)
		x0, y := m.RenderToScreen(row, col0)
		x1, _ := m.RenderToScreen(row, col1)
		vector.StrokeLine(screen, float32(x0), float32(y), float32(x1), float32(y), 1, gridColor, false)
	}
}

func (m *MapView) drawDatasetBeacons(screen *ebiten.Image, regions *overlay.Model) {
	beaconColor := color.RGBA{255, 200, 60, 255}
	for _, b := range regions.Beacons() {
		row, col := m.cal.ToRender(b.X, b.Y)
		x, y := m.RenderToScreen(row, col)

		size := float32(math.Max(3, 5*m.scale))
		vector.StrokeCircle(screen, float32(x), float32(y), size, 1.5, beaconColor, false)
		if m.scale > 0.6 && b.Name != "" {
			drawText(screen, b.Name, int(x)+6, int(y)-6, textDim)
		}
	}
}

func (m *MapView) drawMarkers(screen *ebiten.Image, markers []Marker) {
	for _, marker := range markers {
		x, y := m.RenderToScreen(marker.Row, marker.Col)

		radius := float32(math.Max(4, 6*m.scale))
		outline := color.RGBA{255, 255, 255, 200}
		if marker.Selected {
			outline = color.RGBA{255, 230, 80, 255}
		}
		vector.DrawFilledCircle(screen, float32(x), float32(y), radius+1.5, outline, false)
		vector.DrawFilledCircle(screen, float32(x), float32(y), radius, marker.Color, false)

		if m.scale > 0.5 && marker.Label != "" {
			drawText(screen, marker.Label, int(x)-textWidth(marker.Label)/2, int(y)-int(radius)-16, textWhite)
		}
	}
}

func (m *MapView) drawCursorCoordinates(screen *ebiten.Image) {
	cursorX, cursorY := ebiten.CursorPosition()
	row, col := m.ScreenToRender(cursorX, cursorY)
	wx, wy := m.cal.ToWorld(row, col)
	readout := fmt.Sprintf("world (%d, %d)", wx, wy)
	drawText(screen, readout, cursorX+14, cursorY+10, textWhite)
}

// MarkerHitTest returns the index of the topmost marker within pick range
// of the given window position, or -1.
func (m *MapView) MarkerHitTest(markers []Marker, screenX, screenY int) int {
	pickRadius := math.Max(8, 7*m.scale)
	for i := len(markers) - 1; i >= 0; i-- {
		x, y := m.RenderToScreen(markers[i].Row, markers[i].Col)
		dx := x - float64(screenX)
		dy := y - float64(screenY)
		if math.Hypot(dx, dy) <= pickRadius {
			return i
		}
	}
	return -1
}
