package formation

import (
	"math"
	"testing"

	"github.com/andrewtc/formation-movement/internal/nav"
)

func TestBoxBehavior_SevenMembersMakeThreeByThree(t *testing.T) {
	m := openMap(t, 40, 40)
	b := NewBoxBehavior(1)
	f := newTestFormation(t, m, nav.Vec{X: 20, Y: 20}, nav.Vec{X: 30, Y: 20}, b)
	for i := 0; i < 7; i++ {
		addUnits(t, f, newTestUnit(i, 20, 20))
	}
	f.Recalculate()
	if b.Columns() != 3 || b.Rows() != 3 {
		t.Fatalf("expected 3x3, got %d cols x %d rows", b.Columns(), b.Rows())
	}
	if f.SlotCount() != 7 {
		t.Fatalf("expected 7 slots, got %d", f.SlotCount())
	}
	// The back row holds one slot at column 0; the two cells after it are
	// never materialised.
	if got := f.Slots()[6].Offset; !approxVec(got, nav.Vec{X: -1, Y: -1}) {
		t.Fatalf("slot 6 local offset = %v, want (-1,-1)", got)
	}
	want := math.Sqrt(18) + AssignDistancePadding
	if !approx(f.AssignDistance(), want) {
		t.Fatalf("expected assign distance %.3f, got %.3f", want, f.AssignDistance())
	}
}

func TestBoxBehavior_SlotOffsetsCentredRowZeroInFront(t *testing.T) {
	m := openMap(t, 20, 20)
	b := NewBoxBehavior(2)
	f := newTestFormation(t, m, nav.Vec{X: 10, Y: 10}, nav.Vec{X: 15, Y: 10}, b)
	for i := 0; i < 4; i++ {
		addUnits(t, f, newTestUnit(i, 10, 10))
	}
	f.Recalculate()
	want := []nav.Vec{{X: -1, Y: 1}, {X: 1, Y: 1}, {X: -1, Y: -1}, {X: 1, Y: -1}}
	slots := f.Slots()
	for i, w := range want {
		if !approxVec(slots[i].Offset, w) {
			t.Fatalf("slot %d: expected %v got %v", i, w, slots[i].Offset)
		}
	}
	if !approx(f.AssignDistance(), (math.Sqrt(8)+1)*2) {
		t.Fatalf("spacing should scale the threshold, got %.3f", f.AssignDistance())
	}
}

func TestBoxBehavior_OutOfRangeFillsNothingThenFillsRowsFrontToBack(t *testing.T) {
	m := openMap(t, 60, 40)
	origin := nav.Vec{X: 10, Y: 20}
	f := newTestFormation(t, m, origin, nav.Vec{X: 50, Y: 20}, NewBoxBehavior(1))

	units := make([]*testUnit, 7)
	for i := range units {
		units[i] = newTestUnit(i, 40+float64(i), 5)
	}
	addUnits(t, f, units...)

	f.Update(0)
	for i := 0; i < f.SlotCount(); i++ {
		if f.SlotOccupant(i) != nil {
			t.Fatalf("slot %d filled while every unit is out of range", i)
		}
	}
	f.Update(0)
	if f.FirstFreeSlotIndex() != 0 {
		t.Fatal("out-of-range units should stay slot-less on later ticks")
	}

	// Facing east, so local Y is distance ahead of the origin.
	places := []nav.Vec{
		{X: 9, Y: 21}, {X: 11, Y: 19.5}, {X: 10, Y: 20.5}, {X: 11, Y: 20.5},
		{X: 9, Y: 19}, {X: 10, Y: 19}, {X: 11, Y: 21.5},
	}
	for i, p := range places {
		units[i].pos = p
	}
	f.Update(0)

	rows := [][]int{{0, 1, 2}, {3, 4, 5}, {6}}
	prevRowMinY := math.Inf(1)
	for r, slots := range rows {
		rowMaxY, rowMinY := math.Inf(-1), math.Inf(1)
		prevX := math.Inf(-1)
		for _, s := range slots {
			u := f.SlotOccupant(s)
			if u == nil {
				t.Fatalf("row %d slot %d should be filled", r, s)
			}
			rel := f.RelativePosition(u.Position())
			rowMaxY = math.Max(rowMaxY, rel.Y)
			rowMinY = math.Min(rowMinY, rel.Y)
			if rel.X < prevX {
				t.Fatalf("row %d not ordered by local X", r)
			}
			prevX = rel.X
		}
		if rowMaxY > prevRowMinY {
			t.Fatalf("row %d has a unit further forward than the row before it", r)
		}
		prevRowMinY = rowMinY
	}
	checkSlotExclusivity(t, f)
}

func TestBoxBehavior_PartialRangeLeavesFarUnitsSlotless(t *testing.T) {
	m := openMap(t, 60, 40)
	f := newTestFormation(t, m, nav.Vec{X: 10, Y: 20}, nav.Vec{X: 50, Y: 20}, NewBoxBehavior(1))
	near := []*testUnit{newTestUnit(1, 10, 20), newTestUnit(2, 11, 20)}
	far := newTestUnit(3, 40, 20)
	addUnits(t, f, near[0], near[1], far)
	f.Update(0)
	for _, u := range near {
		if u.slot < 0 {
			t.Fatalf("unit %d in range should have a slot", u.id)
		}
	}
	if far.slot >= 0 {
		t.Fatal("far unit should stay slot-less")
	}
	checkSlotExclusivity(t, f)
}
