package editor

import (
	"errors"
	"fmt"
	"time"

	"realmatlas/alg"
	"realmatlas/typedef"
)

// ErrNoActiveBiome is returned when a beacon place gesture arrives with no
// biome selected. It is surfaced as a status message; nothing is mutated.
var ErrNoActiveBiome = errors.New("select a biome before placing a beacon")

// Mutation describes one store change, delivered to the session observer
// after the change has been applied. The observer runs synchronously on the
// update thread, so a later gesture never sees a half-applied mutation.
type Mutation struct {
	Op       string           `json:"op"` // add, move, remove, clear, import
	Category typedef.Category `json:"category"`
	Index    int              `json:"index"`
	Point    typedef.Point    `json:"point"`
}

// Session owns one editor's annotation state: the store, the calibration
// used to translate gestures, and an optional mutation observer.
type Session struct {
	store    *Store
	cal      alg.Calibration
	onMutate func(Mutation)
}

// NewSession creates a session with an empty store.
func NewSession(cal alg.Calibration) *Session {
	return NewSessionOn(NewStore(), cal)
}

// NewSessionOn creates a session over an existing store, letting two editor
// variants share one annotation collection. Their categories are disjoint,
// so the variants never see each other's points.
func NewSessionOn(store *Store, cal alg.Calibration) *Session {
	return &Session{store: store, cal: cal}
}

// Store exposes the session's annotation store.
func (s *Session) Store() *Store { return s.store }

// Calibration returns the session's coordinate calibration.
func (s *Session) Calibration() alg.Calibration { return s.cal }

// SetMutationObserver registers a callback invoked after every mutation.
func (s *Session) SetMutationObserver(fn func(Mutation)) { s.onMutate = fn }

func (s *Session) notify(m Mutation) {
	if s.onMutate != nil {
		s.onMutate(m)
	}
}

// placeAt converts a render-space gesture to world coordinates and appends
// a point to the category.
func (s *Session) placeAt(cat typedef.Category, row, col float64) (Annotation, int) {
	x, y := s.cal.ToWorld(row, col)
	index := s.store.Add(cat, x, y)
	anns := s.store.Annotations(cat)
	ann := anns[len(anns)-1]
	s.notify(Mutation{Op: "add", Category: cat, Index: index, Point: ann.Point()})
	return ann, index
}

// dragEnd relocates the point with the given slot id to the gesture's world
// position. The id survives deletions of earlier points, so the gesture
// lands on the right entry even after indices shifted.
func (s *Session) dragEnd(cat typedef.Category, id SlotID, row, col float64) bool {
	x, y := s.cal.ToWorld(row, col)
	if !s.store.UpdateByID(cat, id, x, y) {
		return false
	}
	i := s.store.IndexOf(cat, id)
	s.notify(Mutation{Op: "move", Category: cat, Index: i, Point: typedef.Point{X: x, Y: y}})
	return true
}

// remove deletes the point with the given slot id.
func (s *Session) remove(cat typedef.Category, id SlotID) bool {
	i := s.store.IndexOf(cat, id)
	if i < 0 || !s.store.RemoveAt(cat, i) {
		return false
	}
	s.notify(Mutation{Op: "remove", Category: cat, Index: i})
	return true
}

// ImportPatrol replaces the whole store with the points of a patrol export
// document, in document order. A document without a points array fails with
// ErrBadImportFormat and leaves the store untouched; entries missing a
// numeric x or y are skipped silently. Returns the number of points added.
func (s *Session) ImportPatrol(data []byte) (int, error) {
	points, err := ParsePatrolDocument(data)
	if err != nil {
		return 0, err
	}
	s.store.ClearAll()
	for _, p := range points {
		s.store.Add(typedef.CategoryPatrol, p.X, p.Y)
	}
	s.notify(Mutation{Op: "import", Category: typedef.CategoryPatrol, Index: len(points)})
	return len(points), nil
}

// Label derives the user-visible label for the point currently at index.
// Labels are positional and must be re-derived after every mutation.
func Label(index int) string {
	return fmt.Sprintf("Point %d", index+1)
}

// PatrolSession is the single-category patrol-point editor.
type PatrolSession struct {
	*Session
}

// NewPatrolSession creates a patrol-point editor session.
func NewPatrolSession(cal alg.Calibration) *PatrolSession {
	return &PatrolSession{Session: NewSession(cal)}
}

// NewPatrolSessionOn creates a patrol-point editor session over a shared
// store.
func NewPatrolSessionOn(store *Store, cal alg.Calibration) *PatrolSession {
	return &PatrolSession{Session: NewSessionOn(store, cal)}
}

// Place handles a click gesture in render space and returns the new point.
func (p *PatrolSession) Place(row, col float64) (Annotation, int) {
	return p.placeAt(typedef.CategoryPatrol, row, col)
}

// DragEnd handles a drag-end gesture for the marker with the given slot id.
func (p *PatrolSession) DragEnd(id SlotID, row, col float64) bool {
	return p.dragEnd(typedef.CategoryPatrol, id, row, col)
}

// Remove handles a right-click gesture for the marker with the given slot id.
func (p *PatrolSession) Remove(id SlotID) bool {
	return p.remove(typedef.CategoryPatrol, id)
}

// Annotations returns the current patrol points in display order.
func (p *PatrolSession) Annotations() []Annotation {
	return p.store.Annotations(typedef.CategoryPatrol)
}

// Count returns the number of patrol points.
func (p *PatrolSession) Count() int {
	return p.store.Count(typedef.CategoryPatrol)
}

// Export serializes the current patrol points as a pretty-printed document.
func (p *PatrolSession) Export(now time.Time) ([]byte, error) {
	doc := BuildPatrolDocument(p.store, p.cal.Bounds, now)
	return MarshalDocument(doc)
}

// BeaconSession is the multi-category biome-beacon editor. Placement goes
// to the currently selected biome; with none selected the gesture is
// rejected.
type BeaconSession struct {
	*Session
	active typedef.Category // empty until a biome is selected

	// pending beacon relocations for the dataset save-back path,
	// keyed by biome id then dataset beacon index
	pending map[string]map[int]typedef.Point
}

// NewBeaconSession creates a biome-beacon editor session with no biome
// selected.
func NewBeaconSession(cal alg.Calibration) *BeaconSession {
	return NewBeaconSessionOn(NewStore(), cal)
}

// NewBeaconSessionOn creates a biome-beacon editor session over a shared
// store.
func NewBeaconSessionOn(store *Store, cal alg.Calibration) *BeaconSession {
	return &BeaconSession{
		Session: NewSessionOn(store, cal),
		pending: make(map[string]map[int]typedef.Point),
	}
}

// SetActiveBiome selects the biome new beacons are added to.
func (b *BeaconSession) SetActiveBiome(biome typedef.Category) error {
	if !typedef.IsBiome(biome) {
		return fmt.Errorf("unknown biome %q", biome)
	}
	b.active = biome
	return nil
}

// ClearActiveBiome deselects the active biome.
func (b *BeaconSession) ClearActiveBiome() { b.active = "" }

// ActiveBiome returns the currently selected biome, or "" if none.
func (b *BeaconSession) ActiveBiome() typedef.Category { return b.active }

// Place handles a click gesture. It fails with ErrNoActiveBiome when no
// biome is selected, leaving the store untouched.
func (b *BeaconSession) Place(row, col float64) (Annotation, error) {
	if b.active == "" {
		return Annotation{}, ErrNoActiveBiome
	}
	ann, _ := b.placeAt(b.active, row, col)
	return ann, nil
}

// DragEnd handles a drag-end gesture for a beacon in the given biome.
func (b *BeaconSession) DragEnd(biome typedef.Category, id SlotID, row, col float64) bool {
	return b.dragEnd(biome, id, row, col)
}

// Remove handles a right-click gesture for a beacon in the given biome.
func (b *BeaconSession) Remove(biome typedef.Category, id SlotID) bool {
	return b.remove(biome, id)
}

// Counts returns the per-biome beacon counts, recomputed from the store.
func (b *BeaconSession) Counts() map[typedef.Category]int {
	counts := make(map[typedef.Category]int, len(typedef.Biomes))
	for _, biome := range typedef.Biomes {
		counts[biome] = b.store.Count(biome)
	}
	return counts
}

// Total returns the aggregate beacon count across all biomes.
func (b *BeaconSession) Total() int {
	total := 0
	for _, biome := range typedef.Biomes {
		total += b.store.Count(biome)
	}
	return total
}

// Export serializes the current beacons as a pretty-printed document,
// enriched with biome metadata from the dataset when available.
func (b *BeaconSession) Export(dataset *typedef.BiomeDataset, now time.Time) ([]byte, error) {
	doc := BuildBeaconDocument(b.store, dataset, b.cal.Bounds, now)
	return MarshalDocument(doc)
}

// RecordBeaconMove queues a relocation of a dataset beacon for the next
// save-back. Later records for the same biome and index win.
func (b *BeaconSession) RecordBeaconMove(biome string, index int, p typedef.Point) {
	moves := b.pending[biome]
	if moves == nil {
		moves = make(map[int]typedef.Point)
		b.pending[biome] = moves
	}
	moves[index] = p
}

// ApplyPendingMoves writes the queued beacon relocations into the given
// dataset copy and returns how many positions were updated. Moves whose
// biome or index does not exist in the dataset are dropped. The caller must
// pass a copy; overlay datasets are never mutated in place.
func (b *BeaconSession) ApplyPendingMoves(dataset *typedef.BiomeDataset) int {
	applied := 0
	for biome, moves := range b.pending {
		def, ok := dataset.Biomes[biome]
		if !ok {
			continue
		}
		for index, p := range moves {
			if index < 0 || index >= len(def.BeaconPositions) {
				continue
			}
			def.BeaconPositions[index] = p
			applied++
		}
		dataset.Biomes[biome] = def
	}
	b.pending = make(map[string]map[int]typedef.Point)
	return applied
}
