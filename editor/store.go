// Package editor holds the annotation engine: the ordered per-category
// point store and the session objects that translate map gestures into
// store mutations. It has no rendering knowledge; the GUI in app/ draws
// whatever the store currently contains.
package editor

import (
	"realmatlas/typedef"
)

// SlotID is a stable opaque identifier assigned to an annotation point at
// creation. It never changes for the lifetime of the point, unlike the
// display index, which shifts when earlier points are deleted.
type SlotID uint64

// Annotation is one stored point. X and Y are world coordinates rounded to
// the nearest integer.
type Annotation struct {
	ID SlotID
	X  int
	Y  int
}

// Point returns the annotation position as a typedef.Point.
func (a Annotation) Point() typedef.Point {
	return typedef.Point{X: a.X, Y: a.Y}
}

// Store keeps an ordered sequence of annotation points per category.
// Insertion order is the display order; indices are positional and shift
// down on deletion. Callers that show an index-derived label must re-derive
// it from the current position on every render.
type Store struct {
	categories map[typedef.Category][]Annotation
	nextID     SlotID
}

// NewStore creates an empty annotation store.
func NewStore() *Store {
	return &Store{
		categories: make(map[typedef.Category][]Annotation),
	}
}

// Add appends a point to the category and returns its 0-based index, which
// equals the previous sequence length.
func (s *Store) Add(cat typedef.Category, x, y int) int {
	s.nextID++
	pts := s.categories[cat]
	s.categories[cat] = append(pts, Annotation{ID: s.nextID, X: x, Y: y})
	return len(pts)
}

// Update replaces the coordinates of the entry at index in place. It reports
// false and leaves the store unchanged if the index is out of range.
func (s *Store) Update(cat typedef.Category, index, x, y int) bool {
	pts := s.categories[cat]
	if index < 0 || index >= len(pts) {
		return false
	}
	pts[index].X = x
	pts[index].Y = y
	return true
}

// RemoveAt deletes the entry at index; every later entry shifts down one
// position, keeping its relative order. Reports false on an out-of-range
// index, leaving the store unchanged.
func (s *Store) RemoveAt(cat typedef.Category, index int) bool {
	pts := s.categories[cat]
	if index < 0 || index >= len(pts) {
		return false
	}
	s.categories[cat] = append(pts[:index], pts[index+1:]...)
	return true
}

// IndexOf returns the current position of the point with the given slot id,
// or -1 if it is no longer in the category.
func (s *Store) IndexOf(cat typedef.Category, id SlotID) int {
	for i, p := range s.categories[cat] {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// UpdateByID relocates the point with the given slot id. Reports false if
// the id is not present.
func (s *Store) UpdateByID(cat typedef.Category, id SlotID, x, y int) bool {
	i := s.IndexOf(cat, id)
	if i < 0 {
		return false
	}
	return s.Update(cat, i, x, y)
}

// RemoveByID deletes the point with the given slot id. Reports false if the
// id is not present.
func (s *Store) RemoveByID(cat typedef.Category, id SlotID) bool {
	i := s.IndexOf(cat, id)
	if i < 0 {
		return false
	}
	return s.RemoveAt(cat, i)
}

// Clear empties the sequence for one category.
func (s *Store) Clear(cat typedef.Category) {
	delete(s.categories, cat)
}

// ClearAll empties every category.
func (s *Store) ClearAll() {
	s.categories = make(map[typedef.Category][]Annotation)
}

// Count returns the number of points in a category.
func (s *Store) Count(cat typedef.Category) int {
	return len(s.categories[cat])
}

// TotalCount returns the number of points across all categories.
func (s *Store) TotalCount() int {
	total := 0
	for _, pts := range s.categories {
		total += len(pts)
	}
	return total
}

// Annotations returns a copy of the category's sequence in display order.
func (s *Store) Annotations(cat typedef.Category) []Annotation {
	pts := s.categories[cat]
	out := make([]Annotation, len(pts))
	copy(out, pts)
	return out
}

// Points returns the category's positions in display order.
func (s *Store) Points(cat typedef.Category) []typedef.Point {
	pts := s.categories[cat]
	out := make([]typedef.Point, len(pts))
	for i, p := range pts {
		out[i] = p.Point()
	}
	return out
}

// Categories returns every category that currently holds at least one point.
func (s *Store) Categories() []typedef.Category {
	out := make([]typedef.Category, 0, len(s.categories))
	for cat, pts := range s.categories {
		if len(pts) > 0 {
			out = append(out, cat)
		}
	}
	return out
}
