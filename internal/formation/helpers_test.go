package formation

import (
	"math"
	"testing"

	"github.com/andrewtc/formation-movement/internal/nav"
)

type testUnit struct {
	id        int
	pos       nav.Vec
	speed     float64
	formation *Formation
	slot      int
	assigned  int
	evicted   int
}

func newTestUnit(id int, x, y float64) *testUnit {
	return &testUnit{id: id, pos: nav.Vec{X: x, Y: y}, speed: 6, slot: -1}
}

func (u *testUnit) ID() int                   { return u.id }
func (u *testUnit) Position() nav.Vec         { return u.pos }
func (u *testUnit) MaxSpeed() float64         { return u.speed }
func (u *testUnit) Formation() *Formation     { return u.formation }
func (u *testUnit) SetFormation(f *Formation) { u.formation = f; u.slot = -1 }
func (u *testUnit) OnAssignedToSlot(slot int) { u.slot = slot; u.assigned++ }
func (u *testUnit) OnEvictedFromSlot(int)     { u.slot = -1; u.evicted++ }

func newTestMap(t *testing.T, rows ...string) *nav.Map {
	t.Helper()
	m, err := nav.NewMap(len(rows[0]), len(rows), nav.DefaultConfig())
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	for y, row := range rows {
		for x, c := range row {
			if c == '#' {
				m.SetPassable(nav.TileVec{X: x, Y: y}, false)
			}
		}
	}
	return m
}

func openMap(t *testing.T, w, h int) *nav.Map {
	t.Helper()
	m, err := nav.NewMap(w, h, nav.DefaultConfig())
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	return m
}

func newTestFormation(t *testing.T, m *nav.Map, origin, dest nav.Vec, b Behavior, opts ...Option) *Formation {
	t.Helper()
	f, err := New(m, 0, origin, dest, b, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return f
}

func addUnits(t *testing.T, f *Formation, units ...*testUnit) {
	t.Helper()
	for _, u := range units {
		if err := f.AddUnit(u); err != nil {
			t.Fatalf("AddUnit %d: %v", u.id, err)
		}
	}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func approxVec(a, b nav.Vec) bool { return approx(a.X, b.X) && approx(a.Y, b.Y) }

// checkSlotExclusivity fails if any unit holds two slots or any slot's
// occupant disagrees with the unit's own record.
func checkSlotExclusivity(t *testing.T, f *Formation) {
	t.Helper()
	seen := make(map[int]int)
	for i := 0; i < f.SlotCount(); i++ {
		u := f.SlotOccupant(i)
		if u == nil {
			continue
		}
		if prev, dup := seen[u.ID()]; dup {
			t.Fatalf("unit %d holds slots %d and %d", u.ID(), prev, i)
		}
		seen[u.ID()] = i
		if s, ok := f.SlotOf(u); !ok || s != i {
			t.Fatalf("slot %d holds unit %d but SlotOf says %d (%v)", i, u.ID(), s, ok)
		}
	}
}
