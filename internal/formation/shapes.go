package formation

import (
	"fmt"
	"math"

	"github.com/andrewtc/formation-movement/internal/nav"
)

// Shape identifies the layout of a ShapeBehavior.
type Shape int

const (
	ShapeLine    Shape = iota // side-by-side across the facing
	ShapeWedge                // V-shape, point at the origin
	ShapeColumn               // single file behind the origin
	ShapeEchelon              // diagonal line stepping back to the right flank
)

func (s Shape) String() string {
	switch s {
	case ShapeLine:
		return "line"
	case ShapeWedge:
		return "wedge"
	case ShapeColumn:
		return "column"
	case ShapeEchelon:
		return "echelon"
	}
	return fmt.Sprintf("shape(%d)", int(s))
}

// Shapes lists every Shape in declaration order.
func Shapes() []Shape {
	return []Shape{ShapeLine, ShapeWedge, ShapeColumn, ShapeEchelon}
}

// shapeOffsets returns local offsets for count slots. X is to the right of
// the facing, Y is forward. Slot 0 always sits on the origin.
func shapeOffsets(s Shape, count int, spacing float64) []nav.Vec {
	offsets := make([]nav.Vec, count)
	for i := 1; i < count; i++ {
		side := float64((i+1)/2) * spacing
		if i%2 == 1 {
			side = -side
		}
		switch s {
		case ShapeLine:
			offsets[i] = nav.Vec{X: side}
		case ShapeWedge:
			offsets[i] = nav.Vec{X: side, Y: -float64((i+1)/2) * spacing}
		case ShapeColumn:
			offsets[i] = nav.Vec{Y: -float64(i) * spacing}
		case ShapeEchelon:
			step := float64(i) * spacing * 0.7
			offsets[i] = nav.Vec{X: step, Y: -step}
		}
	}
	return offsets
}

// ShapeBehavior lays slots out in a fixed shape and fills them in slot order,
// each with the nearest in-range member still unassigned.
type ShapeBehavior struct {
	shape          Shape
	spacing        float64
	assignDistance float64
}

// NewShapeBehavior returns a behavior for shape with the given spacing.
func NewShapeBehavior(shape Shape, spacing float64) *ShapeBehavior {
	if spacing <= 0 {
		panic(fmt.Sprintf("formation: %v spacing %.3f must be positive", shape, spacing))
	}
	return &ShapeBehavior{shape: shape, spacing: spacing}
}

func NewLineBehavior(spacing float64) *ShapeBehavior   { return NewShapeBehavior(ShapeLine, spacing) }
func NewWedgeBehavior(spacing float64) *ShapeBehavior  { return NewShapeBehavior(ShapeWedge, spacing) }
func NewColumnBehavior(spacing float64) *ShapeBehavior { return NewShapeBehavior(ShapeColumn, spacing) }

func (b *ShapeBehavior) Shape() Shape            { return b.shape }
func (b *ShapeBehavior) AssignDistance() float64 { return b.assignDistance }

// Recalculate adds one slot per member. The assignment threshold spans the
// layout's full extent plus padding.
func (b *ShapeBehavior) Recalculate(f *Formation) {
	offsets := shapeOffsets(b.shape, f.UnitCount(), b.spacing)
	extent := 0.0
	for _, o := range offsets {
		f.AddSlot(o)
		extent = math.Max(extent, o.Len())
	}
	b.assignDistance = 0
	if len(offsets) > 0 {
		b.assignDistance = 2*extent + AssignDistancePadding*b.spacing
	}
}

func (b *ShapeBehavior) ReassignSlots(f *Formation) {
	taken := make(map[int]bool, f.UnitCount())
	for slot := 0; slot < f.SlotCount(); slot++ {
		at := f.SlotWorldLocation(slot)
		var best Unit
		bestDist := math.Inf(1)
		for _, u := range f.units {
			if taken[u.ID()] || !f.InRange(u) {
				continue
			}
			if d := u.Position().DistSq(at); d < bestDist {
				best, bestDist = u, d
			}
		}
		if best == nil {
			return
		}
		taken[best.ID()] = true
		must(f.AssignUnitToSlot(best, slot))
	}
}
