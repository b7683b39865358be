package formation

import (
	"testing"

	"github.com/andrewtc/formation-movement/internal/nav"
)

func TestShapeOffsets_LeaderAlwaysZero(t *testing.T) {
	for _, s := range []Shape{ShapeLine, ShapeWedge, ShapeColumn, ShapeEchelon} {
		offsets := shapeOffsets(s, 6, 1)
		if offsets[0] != (nav.Vec{}) {
			t.Fatalf("%v: slot 0 should sit on the origin, got %v", s, offsets[0])
		}
	}
}

func TestShapeOffsets_Count(t *testing.T) {
	for _, count := range []int{0, 1, 3, 6} {
		if got := len(shapeOffsets(ShapeWedge, count, 1)); got != count {
			t.Fatalf("expected %d offsets, got %d", count, got)
		}
	}
}

func TestShapeOffsets_ColumnSingleFile(t *testing.T) {
	offsets := shapeOffsets(ShapeColumn, 4, 1)
	for i := 1; i < 4; i++ {
		if offsets[i].X != 0 {
			t.Fatalf("column slot %d: side offset should be 0, got %.1f", i, offsets[i].X)
		}
		if offsets[i].Y >= 0 {
			t.Fatalf("column slot %d: should trail behind, got %.1f", i, offsets[i].Y)
		}
	}
}

func TestShapeOffsets_WedgeTrailsBack(t *testing.T) {
	offsets := shapeOffsets(ShapeWedge, 5, 1)
	for i := 1; i < 5; i++ {
		if offsets[i].Y >= 0 {
			t.Fatalf("wedge slot %d: should trail behind, got %.1f", i, offsets[i].Y)
		}
	}
	if offsets[1].X != -offsets[2].X {
		t.Fatal("wedge arms should mirror each other")
	}
}

func TestShapeOffsets_LineSameDepth(t *testing.T) {
	offsets := shapeOffsets(ShapeLine, 5, 2)
	for i := 1; i < 5; i++ {
		if offsets[i].Y != 0 {
			t.Fatalf("line slot %d: forward offset should be 0, got %.1f", i, offsets[i].Y)
		}
	}
	if offsets[3].X != -4 || offsets[4].X != 4 {
		t.Fatalf("line spacing wrong: %v %v", offsets[3], offsets[4])
	}
}

func TestShapeBehavior_AssignsNearestInRange(t *testing.T) {
	m := openMap(t, 30, 30)
	// Facing east: slot 1 of a line is to the north (-Y), slot 2 to the south.
	f := newTestFormation(t, m, nav.Vec{X: 10, Y: 10}, nav.Vec{X: 20, Y: 10}, NewLineBehavior(1))
	south := newTestUnit(1, 10, 11)
	centre := newTestUnit(2, 10, 10)
	north := newTestUnit(3, 10, 9)
	far := newTestUnit(4, 28, 28)
	addUnits(t, f, south, centre, north, far)
	f.Update(0)

	if centre.slot != 0 {
		t.Fatalf("centre unit should take slot 0, got %d", centre.slot)
	}
	if !approxVec(f.SlotWorldLocation(north.slot), north.pos) {
		t.Fatalf("north unit should take the slot it stands on, got slot %d", north.slot)
	}
	if !approxVec(f.SlotWorldLocation(south.slot), south.pos) {
		t.Fatalf("south unit should take the slot it stands on, got slot %d", south.slot)
	}
	if far.slot != -1 {
		t.Fatal("far unit should stay slot-less")
	}
	checkSlotExclusivity(t, f)
}

func TestShapeBehavior_ColumnThresholdCoversLayout(t *testing.T) {
	m := openMap(t, 30, 30)
	b := NewColumnBehavior(1)
	f := newTestFormation(t, m, nav.Vec{X: 10, Y: 10}, nav.Vec{X: 20, Y: 10}, b)
	for i := 0; i < 4; i++ {
		addUnits(t, f, newTestUnit(i, 10, 10))
	}
	f.Recalculate()
	if b.AssignDistance() != 2*3+AssignDistancePadding {
		t.Fatalf("expected threshold 7, got %.2f", b.AssignDistance())
	}
	if b.Shape().String() != "column" {
		t.Fatalf("unexpected shape name %q", b.Shape())
	}
}
