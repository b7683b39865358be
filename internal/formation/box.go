package formation

import (
	"fmt"
	"math"
	"sort"

	"github.com/andrewtc/formation-movement/internal/nav"
)

// BoxBehavior packs members into a near-square grid of rows and columns,
// row 0 at the front.
type BoxBehavior struct {
	spacing        float64
	rows           int
	columns        int
	assignDistance float64
}

// NewBoxBehavior returns a box layout with the given slot spacing.
func NewBoxBehavior(spacing float64) *BoxBehavior {
	if spacing <= 0 {
		panic(fmt.Sprintf("formation: box spacing %.3f must be positive", spacing))
	}
	return &BoxBehavior{spacing: spacing}
}

func (b *BoxBehavior) Spacing() float64        { return b.spacing }
func (b *BoxBehavior) Rows() int               { return b.rows }
func (b *BoxBehavior) Columns() int            { return b.columns }
func (b *BoxBehavior) AssignDistance() float64 { return b.assignDistance }

// Recalculate sizes the box for the current membership and adds one slot per
// member in row-major order, centred on the origin.
func (b *BoxBehavior) Recalculate(f *Formation) {
	n := f.UnitCount()
	if n == 0 {
		b.rows, b.columns, b.assignDistance = 0, 0, 0
		return
	}
	b.columns = int(math.Ceil(math.Sqrt(float64(n))))
	b.rows = (n + b.columns - 1) / b.columns
	diag := math.Hypot(float64(b.rows), float64(b.columns))
	b.assignDistance = (diag + AssignDistancePadding) * b.spacing

	start := nav.Vec{
		X: float64(b.columns-1) * -0.5,
		Y: float64(b.rows-1) * -0.5,
	}.Scale(b.spacing)
	for i := 0; i < n; i++ {
		row, col := i/b.columns, i%b.columns
		cell := nav.Vec{X: float64(col), Y: float64(b.rows - row - 1)}
		f.AddSlot(start.Add(cell.Scale(b.spacing)))
	}
}

type rankedUnit struct {
	unit Unit
	rel  nav.Vec
}

// ReassignSlots fills rows front to back with the in-range members furthest
// along the facing, then orders each row left to right.
func (b *BoxBehavior) ReassignSlots(f *Formation) {
	if b.columns == 0 {
		return
	}
	var ranked []rankedUnit
	for _, u := range f.units {
		if !f.InRange(u) {
			continue
		}
		ranked = append(ranked, rankedUnit{unit: u, rel: f.RelativePosition(u.Position())})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].rel.Y > ranked[j].rel.Y })

	for row := 0; row*b.columns < len(ranked); row++ {
		end := min((row+1)*b.columns, len(ranked))
		rank := ranked[row*b.columns : end]
		sort.SliceStable(rank, func(i, j int) bool { return rank[i].rel.X < rank[j].rel.X })
		for col, r := range rank {
			slot := row*b.columns + col
			if slot >= f.SlotCount() {
				return
			}
			must(f.AssignUnitToSlot(r.unit, slot))
		}
	}
}

// must escalates an error from a call whose preconditions were just checked.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
