package editor

import (
	"testing"

	"realmatlas/typedef"
)

func TestAddReturnsSequentialIndices(t *testing.T) {
	s := NewStore()
	for i := 0; i < 5; i++ {
		if got := s.Add(typedef.CategoryPatrol, i*10, i*20); got != i {
			t.Errorf("Add #%d returned index %d", i, got)
		}
	}
	if s.Count(typedef.CategoryPatrol) != 5 {
		t.Errorf("Count = %d, want 5", s.Count(typedef.CategoryPatrol))
	}
}

func TestRemoveAtShiftsLaterEntries(t *testing.T) {
	s := NewStore()
	s.Add(typedef.CategoryPatrol, 100, 100)
	s.Add(typedef.CategoryPatrol, 200, 200)
	s.Add(typedef.CategoryPatrol, 300, 300)

	if !s.RemoveAt(typedef.CategoryPatrol, 0) {
		t.Fatal("RemoveAt(0) reported failure")
	}

	pts := s.Points(typedef.CategoryPatrol)
	if len(pts) != 2 {
		t.Fatalf("len = %d, want 2", len(pts))
	}
	if pts[0] != (typedef.Point{X: 200, Y: 200}) || pts[1] != (typedef.Point{X: 300, Y: 300}) {
		t.Errorf("entries after removal = %v", pts)
	}
}

func TestRemoveMiddlePreservesOrder(t *testing.T) {
	s := NewStore()
	for i := 0; i < 6; i++ {
		s.Add(typedef.CategoryPatrol, i, i)
	}
	s.RemoveAt(typedef.CategoryPatrol, 3)

	pts := s.Points(typedef.CategoryPatrol)
	want := []int{0, 1, 2, 4, 5}
	for i, w := range want {
		if pts[i].X != w {
			t.Errorf("pts[%d].X = %d, want %d", i, pts[i].X, w)
		}
	}
}

func TestUpdateChangesOnlyTarget(t *testing.T) {
	s := NewStore()
	s.Add(typedef.CategoryPatrol, 1, 1)
	s.Add(typedef.CategoryPatrol, 2, 2)
	s.Add(typedef.CategoryPatrol, 3, 3)

	if !s.Update(typedef.CategoryPatrol, 1, 99, 98) {
		t.Fatal("Update reported failure")
	}

	pts := s.Points(typedef.CategoryPatrol)
	if len(pts) != 3 {
		t.Fatalf("len = %d, want 3", len(pts))
	}
	if pts[0] != (typedef.Point{X: 1, Y: 1}) || pts[2] != (typedef.Point{X: 3, Y: 3}) {
		t.Errorf("neighbours changed: %v", pts)
	}
	if pts[1] != (typedef.Point{X: 99, Y: 98}) {
		t.Errorf("pts[1] = %v, want {99 98}", pts[1])
	}
}

func TestOutOfRangeIsNoOp(t *testing.T) {
	s := NewStore()
	s.Add(typedef.CategoryPatrol, 1, 1)

	if s.Update(typedef.CategoryPatrol, 5, 0, 0) {
		t.Error("Update out of range reported success")
	}
	if s.Update(typedef.CategoryPatrol, -1, 0, 0) {
		t.Error("Update negative index reported success")
	}
	if s.RemoveAt(typedef.CategoryPatrol, 1) {
		t.Error("RemoveAt out of range reported success")
	}
	if s.Count(typedef.CategoryPatrol) != 1 {
		t.Errorf("store mutated by failed operations: count = %d", s.Count(typedef.CategoryPatrol))
	}
	pts := s.Points(typedef.CategoryPatrol)
	if pts[0] != (typedef.Point{X: 1, Y: 1}) {
		t.Errorf("entry mutated by failed operations: %v", pts[0])
	}
}

func TestSlotIDStableAcrossDeletion(t *testing.T) {
	s := NewStore()
	s.Add(typedef.CategoryPatrol, 1, 1)
	s.Add(typedef.CategoryPatrol, 2, 2)
	s.Add(typedef.CategoryPatrol, 3, 3)

	anns := s.Annotations(typedef.CategoryPatrol)
	third := anns[2].ID

	s.RemoveAt(typedef.CategoryPatrol, 0)

	// Former index 2 is now index 1, but the slot id still resolves it.
	if got := s.IndexOf(typedef.CategoryPatrol, third); got != 1 {
		t.Errorf("IndexOf after deletion = %d, want 1", got)
	}
	if !s.UpdateByID(typedef.CategoryPatrol, third, 30, 30) {
		t.Fatal("UpdateByID failed for surviving point")
	}
	pts := s.Points(typedef.CategoryPatrol)
	if pts[1] != (typedef.Point{X: 30, Y: 30}) {
		t.Errorf("UpdateByID moved wrong entry: %v", pts)
	}
	if !s.RemoveByID(typedef.CategoryPatrol, third) {
		t.Fatal("RemoveByID failed for surviving point")
	}
	if s.Count(typedef.CategoryPatrol) != 1 {
		t.Errorf("count = %d, want 1", s.Count(typedef.CategoryPatrol))
	}
}

func TestRemoveByUnknownIDIsNoOp(t *testing.T) {
	s := NewStore()
	s.Add(typedef.CategoryPatrol, 1, 1)
	id := s.Annotations(typedef.CategoryPatrol)[0].ID
	s.RemoveByID(typedef.CategoryPatrol, id)

	if s.RemoveByID(typedef.CategoryPatrol, id) {
		t.Error("RemoveByID on stale id reported success")
	}
	if s.UpdateByID(typedef.CategoryPatrol, id, 0, 0) {
		t.Error("UpdateByID on stale id reported success")
	}
}

func TestClearAllZeroesEveryCategory(t *testing.T) {
	s := NewStore()
	s.Add(typedef.CategoryPatrol, 1, 1)
	for _, b := range typedef.Biomes {
		s.Add(b, 5, 5)
	}

	s.ClearAll()

	if s.Count(typedef.CategoryPatrol) != 0 {
		t.Errorf("patrol count = %d after ClearAll", s.Count(typedef.CategoryPatrol))
	}
	for _, b := range typedef.Biomes {
		if s.Count(b) != 0 {
			t.Errorf("count(%s) = %d after ClearAll", b, s.Count(b))
		}
	}
	if s.TotalCount() != 0 {
		t.Errorf("TotalCount = %d after ClearAll", s.TotalCount())
	}
}

func TestCountsPerCategory(t *testing.T) {
	s := NewStore()
	s.Add(typedef.BiomeBeach, 1, 1)
	s.Add(typedef.BiomeBeach, 2, 2)
	s.Add(typedef.BiomeGodlands, 3, 3)

	if s.Count(typedef.BiomeBeach) != 2 {
		t.Errorf("beach count = %d, want 2", s.Count(typedef.BiomeBeach))
	}
	if s.Count(typedef.BiomeGodlands) != 1 {
		t.Errorf("godlands count = %d, want 1", s.Count(typedef.BiomeGodlands))
	}
	if s.TotalCount() != 3 {
		t.Errorf("TotalCount = %d, want 3", s.TotalCount())
	}
	if s.Count(typedef.BiomeForest) != 0 {
		t.Errorf("forest count = %d, want 0", s.Count(typedef.BiomeForest))
	}
}
