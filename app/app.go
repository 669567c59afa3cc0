package app

import (
	"errors"
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog/log"
	"golang.design/x/clipboard"

	"realmatlas/alg"
	"realmatlas/api"
	"realmatlas/editor"
	"realmatlas/script"
	"realmatlas/storage"
	"realmatlas/typedef"
)

// EditorMode selects which editor variant receives gestures.
type EditorMode int

const (
	// ModePatrol is the single-category patrol-point editor.
	ModePatrol EditorMode = iota
	// ModeBeacon is the multi-category biome-beacon editor.
	ModeBeacon
)

var patrolMarkerColor = color.RGBA{80, 200, 120, 255}

// markerRef ties a drawn marker back to its store entry by identity.
type markerRef struct {
	category typedef.Category
	id       editor.SlotID
}

// GameOptions carries the wiring the Game needs from main.
type GameOptions struct {
	MapImagePath     string
	DatasetPath      string
	ExportEndpoint   string
	ExportTimeout    time.Duration
	HookScript       string
	Sync             *api.SyncServer
	AutosaveEnabled  bool
	AutosaveInterval time.Duration
	ClipboardOK      bool
	SnapshotPath     string // optional .atlas file to import on launch
}

// Game is the Ebiten application: one shared annotation store, the two
// editor sessions over it, the map view, and the surrounding plumbing.
type Game struct {
	mapView  *MapView
	store    *editor.Store
	patrol   *editor.PatrolSession
	beacons  *editor.BeaconSession
	datasets *DatasetManager
	toasts   *ToastManager
	stats    *StatsOverlay
	exporter *api.ExportClient
	hook     *script.Hook
	sync     *api.SyncServer

	mode        EditorMode
	clipboardOK bool

	draggingMarker bool
	dragCategory   typedef.Category
	dragID         editor.SlotID

	// dataset-beacon relocation drag, queued for save-back on export
	draggingDatasetBeacon bool
	dragBeaconBiome       string
	dragBeaconIndex       int

	autosaveEnabled  bool
	autosaveInterval time.Duration
	lastAutosave     time.Time
	lastUpdateTime   time.Time

	screenW int
	screenH int
}

// NewGame wires the application together. Map image and dataset loads are
// started asynchronously; gestures arriving before they resolve run
// against current, possibly empty, state.
func NewGame(cal alg.Calibration, opts GameOptions) (*Game, error) {
	hook, err := script.Load(opts.HookScript)
	if err != nil {
		// A broken hook never blocks the editor, it just isn't applied.
		log.Warn().Err(err).Msg("export hook not loaded")
		hook = nil
	}

	mapManager := NewMapManager()
	mapManager.LoadMapAsync(opts.MapImagePath)

	datasets := NewDatasetManager()
	datasets.LoadAsync(opts.DatasetPath)

	store := editor.NewStore()
	g := &Game{
		mapView:          NewMapView(cal, mapManager),
		store:            store,
		patrol:           editor.NewPatrolSessionOn(store, cal),
		beacons:          editor.NewBeaconSessionOn(store, cal),
		datasets:         datasets,
		toasts:           NewToastManager(),
		stats:            NewStatsOverlay(),
		exporter:         api.NewExportClient(opts.ExportEndpoint, opts.ExportTimeout),
		hook:             hook,
		sync:             opts.Sync,
		clipboardOK:      opts.ClipboardOK,
		autosaveEnabled:  opts.AutosaveEnabled,
		autosaveInterval: opts.AutosaveInterval,
		lastAutosave:     time.Now(),
	}

	if g.sync != nil {
		observer := func(m editor.Mutation) { g.sync.Publish(m) }
		g.patrol.SetMutationObserver(observer)
		g.beacons.SetMutationObserver(observer)
	}

	if opts.SnapshotPath != "" {
		if n, err := storage.LoadSnapshotPath(opts.SnapshotPath, store); err != nil {
			log.Warn().Err(err).Str("path", opts.SnapshotPath).Msg("launch snapshot not loaded")
		} else {
			g.toasts.Info(fmt.Sprintf("Loaded %d points from %s", n, opts.SnapshotPath))
		}
	} else if opts.AutosaveEnabled {
		if n, err := storage.LoadSnapshot(storage.AutosaveFile, store); err != nil {
			log.Warn().Err(err).Msg("autosave not restored")
		} else if n > 0 {
			g.toasts.Info(fmt.Sprintf("Restored %d points from autosave", n))
		}
	}

	return g, nil
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	now := time.Now()
	dt := 1.0 / 60.0
	if !g.lastUpdateTime.IsZero() {
		dt = now.Sub(g.lastUpdateTime).Seconds()
		if dt > 0.1 {
			dt = 0.1
		}
	}
	g.lastUpdateTime = now

	g.toasts.Update()
	g.stats.Update()
	g.mapView.Update(g.screenW, g.screenH, dt)

	g.handleKeys()
	g.handleEditingGestures()
	g.handleAutosave(now)

	return nil
}

func (g *Game) handleKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		if g.mode == ModePatrol {
			g.mode = ModeBeacon
			g.toasts.Info("Beacon editor")
		} else {
			g.mode = ModePatrol
			g.toasts.Info("Patrol point editor")
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyG) {
		g.mapView.ToggleGrid()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.mapView.ToggleRegions()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		g.mapView.ToggleBeacons()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.mapView.ToggleCoordinates()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.stats.Toggle()
	}

	g.handleBiomeKeys()

	if inpututil.IsKeyJustPressed(ebiten.KeyE) {
		g.exportCurrent()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyI) {
		g.importFromClipboard()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		g.saveSnapshot()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF9) {
		g.loadSnapshot()
	}
}

// handleBiomeKeys maps 1..7 to biome selection and 0/Escape to none. The
// selection doubles as the overlay highlight filter.
func (g *Game) handleBiomeKeys() {
	digits := []ebiten.Key{
		ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4,
		ebiten.KeyDigit5, ebiten.KeyDigit6, ebiten.KeyDigit7,
	}
	for i, key := range digits {
		if i >= len(typedef.Biomes) {
			break
		}
		if inpututil.IsKeyJustPressed(key) {
			biome := typedef.Biomes[i]
			if err := g.beacons.SetActiveBiome(biome); err != nil {
				g.toasts.Error(err.Error())
				return
			}
			g.datasets.Model().SetFilter(biome)
			if g.mode == ModeBeacon {
				g.toasts.Info(fmt.Sprintf("Active biome: %s (%d beacons)", biome, g.beacons.Counts()[biome]))
			}
			return
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyDigit0) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.beacons.ClearActiveBiome()
		g.datasets.Model().SetFilter(typedef.CategoryAll)
	}
}

// handleEditingGestures routes place, drag-end and delete gestures to the
// active session. Markers are resolved by slot id, not by their displayed
// number, so earlier deletions never redirect a gesture.
func (g *Game) handleEditingGestures() {
	markers, refs := g.buildMarkers()
	mouseX, mouseY := ebiten.CursorPosition()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if hit := g.mapView.MarkerHitTest(markers, mouseX, mouseY); hit >= 0 {
			g.draggingMarker = true
			g.dragCategory = refs[hit].category
			g.dragID = refs[hit].id
		} else if biome, index, ok := g.datasetBeaconHit(mouseX, mouseY); ok {
			g.draggingDatasetBeacon = true
			g.dragBeaconBiome = biome
			g.dragBeaconIndex = index
		} else {
			g.placeAtCursor(mouseX, mouseY)
		}
		return
	}

	if g.draggingDatasetBeacon && inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		row, col := g.mapView.ScreenToRender(mouseX, mouseY)
		x, y := g.mapView.Calibration().ToWorld(row, col)
		g.beacons.RecordBeaconMove(g.dragBeaconBiome, g.dragBeaconIndex, typedef.Point{X: x, Y: y})
		g.toasts.Info(fmt.Sprintf("%s beacon %d repositioned, saved on next export", g.dragBeaconBiome, g.dragBeaconIndex+1))
		g.draggingDatasetBeacon = false
		return
	}

	if g.draggingMarker && inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		row, col := g.mapView.ScreenToRender(mouseX, mouseY)
		var moved bool
		if g.mode == ModePatrol {
			moved = g.patrol.DragEnd(g.dragID, row, col)
		} else {
			moved = g.beacons.DragEnd(g.dragCategory, g.dragID, row, col)
		}
		if moved {
			x, y := g.mapView.Calibration().ToWorld(row, col)
			g.toasts.Info(fmt.Sprintf("Moved to (%d, %d)", x, y))
		}
		g.draggingMarker = false
		return
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		if hit := g.mapView.MarkerHitTest(markers, mouseX, mouseY); hit >= 0 {
			ref := refs[hit]
			var removed bool
			if g.mode == ModePatrol {
				removed = g.patrol.Remove(ref.id)
			} else {
				removed = g.beacons.Remove(ref.category, ref.id)
			}
			if removed {
				g.toasts.Info(fmt.Sprintf("Deleted (%d left)", g.currentCount()))
			}
		}
	}
}

// datasetBeaconHit tests the cursor against the active biome's dataset
// beacon positions. Only the beacon editor relocates dataset beacons, and
// only within the biome being edited.
func (g *Game) datasetBeaconHit(mouseX, mouseY int) (string, int, bool) {
	if g.mode != ModeBeacon {
		return "", 0, false
	}
	biome := string(g.beacons.ActiveBiome())
	if biome == "" {
		return "", 0, false
	}
	def, ok := g.datasets.Model().Biome(biome)
	if !ok {
		return "", 0, false
	}

	cal := g.mapView.Calibration()
	for i, p := range def.BeaconPositions {
		row, col := cal.ToRender(float64(p.X), float64(p.Y))
		x, y := g.mapView.RenderToScreen(row, col)
		dx := x - float64(mouseX)
		dy := y - float64(mouseY)
		if dx*dx+dy*dy <= 8*8 {
			return biome, i, true
		}
	}
	return "", 0, false
}

func (g *Game) placeAtCursor(mouseX, mouseY int) {
	row, col := g.mapView.ScreenToRender(mouseX, mouseY)

	if g.mode == ModePatrol {
		ann, index := g.patrol.Place(row, col)
		g.toasts.Info(fmt.Sprintf("%s at (%d, %d)", editor.Label(index), ann.X, ann.Y))
		return
	}

	ann, err := g.beacons.Place(row, col)
	if err != nil {
		if errors.Is(err, editor.ErrNoActiveBiome) {
			g.toasts.Error("Select a biome (1-7) before placing a beacon")
		} else {
			g.toasts.Error(err.Error())
		}
		return
	}
	g.toasts.Info(fmt.Sprintf("%s beacon at (%d, %d)", g.beacons.ActiveBiome(), ann.X, ann.Y))
}

func (g *Game) currentCount() int {
	if g.mode == ModePatrol {
		return g.patrol.Count()
	}
	return g.beacons.Total()
}

// buildMarkers projects the active mode's annotations into render space.
// Labels are derived from current positions on every frame.
func (g *Game) buildMarkers() ([]Marker, []markerRef) {
	cal := g.mapView.Calibration()
	var markers []Marker
	var refs []markerRef

	appendMarkers := func(cat typedef.Category, markerColor color.RGBA, labelFor func(i int) string) {
		for i, ann := range g.store.Annotations(cat) {
			row, col := cal.ToRender(float64(ann.X), float64(ann.Y))
			markers = append(markers, Marker{
				Row:      row,
				Col:      col,
				Label:    labelFor(i),
				Color:    markerColor,
				Selected: g.draggingMarker && g.dragID == ann.ID && g.dragCategory == cat,
			})
			refs = append(refs, markerRef{category: cat, id: ann.ID})
		}
	}

	if g.mode == ModePatrol {
		appendMarkers(typedef.CategoryPatrol, patrolMarkerColor, editor.Label)
		return markers, refs
	}

	model := g.datasets.Model()
	for _, biome := range typedef.Biomes {
		b := biome
		appendMarkers(b, model.StyleFor(b).Fill, func(i int) string {
			return fmt.Sprintf("%s %d", b, i+1)
		})
	}
	return markers, refs
}

func (g *Game) exportCurrent() {
	now := time.Now()
	var (
		data   []byte
		err    error
		prefix string
	)
	if g.mode == ModePatrol {
		data, err = g.patrol.Export(now)
		prefix = "patrol_points"
	} else {
		dataset := g.datasets.Model().DatasetCopy()
		if n := g.beacons.ApplyPendingMoves(dataset); n > 0 {
			g.toasts.Info(fmt.Sprintf("Applied %d beacon relocations", n))
		}
		data, err = g.beacons.Export(dataset, now)
		prefix = "beacons"
	}
	if err != nil {
		g.toasts.Error(fmt.Sprintf("Export failed: %v", err))
		return
	}

	data = g.hook.Apply(data)

	dest, err := g.exporter.Export(prefix, data, now)
	if err != nil {
		g.toasts.Error(fmt.Sprintf("Export failed: %v", err))
		return
	}
	g.toasts.Success(fmt.Sprintf("Exported %d points to %s", g.currentCount(), dest))

	if g.clipboardOK {
		clipboard.Write(clipboard.FmtText, data)
	}
}

func (g *Game) importFromClipboard() {
	if g.mode != ModePatrol {
		g.toasts.Error("Import is available in the patrol point editor")
		return
	}
	if !g.clipboardOK {
		g.toasts.Error("Clipboard unavailable")
		return
	}

	data := clipboard.Read(clipboard.FmtText)
	if len(data) == 0 {
		g.toasts.Error("Clipboard is empty")
		return
	}

	n, err := g.patrol.ImportPatrol(data)
	if err != nil {
		g.toasts.Error("Import failed: document has no points array")
		return
	}
	g.toasts.Success(fmt.Sprintf("Imported %d points", n))
}

func (g *Game) saveSnapshot() {
	if err := storage.SaveSnapshot(storage.AutosaveFile, g.store, time.Now()); err != nil {
		g.toasts.Error(fmt.Sprintf("Snapshot failed: %v", err))
		return
	}
	g.toasts.Success("Session saved")
}

func (g *Game) loadSnapshot() {
	n, err := storage.LoadSnapshot(storage.AutosaveFile, g.store)
	if err != nil {
		g.toasts.Error(fmt.Sprintf("Restore failed: %v", err))
		return
	}
	g.draggingMarker = false
	g.toasts.Success(fmt.Sprintf("Restored %d points", n))
}

func (g *Game) handleAutosave(now time.Time) {
	if !g.autosaveEnabled || now.Sub(g.lastAutosave) < g.autosaveInterval {
		return
	}
	g.lastAutosave = now
	if err := storage.SaveSnapshot(storage.AutosaveFile, g.store, now); err != nil {
		log.Warn().Err(err).Msg("autosave failed")
	}
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	markers, _ := g.buildMarkers()
	g.mapView.Draw(screen, g.datasets.Model(), markers)

	g.drawStatusBar(screen)
	g.toasts.Draw(screen, g.screenW, g.screenH)
	g.stats.Draw(screen, g.screenW)
}

func (g *Game) drawStatusBar(screen *ebiten.Image) {
	var status string
	if g.mode == ModePatrol {
		status = fmt.Sprintf("[Patrol] points: %d", g.patrol.Count())
	} else {
		active := string(g.beacons.ActiveBiome())
		if active == "" {
			active = "none"
		}
		status = fmt.Sprintf("[Beacons] biome: %s  total: %d", active, g.beacons.Total())
	}
	status += "  |  Tab mode  E export  I import  F5 save  F9 restore  G/R/B/C overlays  1-7 biome  0 all"
	drawText(screen, status, 8, g.screenH-18, textDim)
}

// Layout implements ebiten.Game.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.screenW = outsideWidth
	g.screenH = outsideHeight
	return outsideWidth, outsideHeight
}
