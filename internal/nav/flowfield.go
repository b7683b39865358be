package nav

// FlowTile is the per-tile result of a flowfield sweep.
type FlowTile struct {
	goal     bool
	closed   bool
	distance int
	adjCount uint8
	adj      [DirectionCount]Direction
}

func (t *FlowTile) IsGoal() bool        { return t.goal }
func (t *FlowTile) IsClosed() bool      { return t.closed }
func (t *FlowTile) DistanceToGoal() int { return t.distance }
func (t *FlowTile) AdjacencyCount() int { return int(t.adjCount) }

// Adjacency returns the i-th recorded direction toward a neighbour one step
// closer to the goal.
func (t *FlowTile) Adjacency(i int) Direction {
	if i < 0 || i >= int(t.adjCount) {
		return DirNone
	}
	return t.adj[i]
}

// BestAdjacency returns the first recorded adjacency, or DirNone. When
// several neighbours tie, which one was recorded first depends on heap order.
func (t *FlowTile) BestAdjacency() Direction {
	return t.Adjacency(0)
}

func (t *FlowTile) HasAdjacency(d Direction) bool {
	for i := 0; i < int(t.adjCount); i++ {
		if t.adj[i] == d {
			return true
		}
	}
	return false
}

func (t *FlowTile) addAdjacency(d Direction) {
	if d == DirNone || t.HasAdjacency(d) || int(t.adjCount) >= DirectionCount {
		return
	}
	t.adj[t.adjCount] = d
	t.adjCount++
}

// FlowfieldHandle identifies a pooled flowfield owned by a Map.
type FlowfieldHandle int

// NoFlowfield is the zero handle for "nothing reserved".
const NoFlowfield FlowfieldHandle = -1

// Flowfield is a goal-anchored grid of distances and best directions. All
// storage lives in the owning Map's pool; callers hold a FlowfieldHandle.
type Flowfield struct {
	grid     *Grid[FlowTile]
	goal     TileVec
	reserved bool
}

func (f *Flowfield) Goal() TileVec  { return f.goal }
func (f *Flowfield) Width() int     { return f.grid.Width() }
func (f *Flowfield) Height() int    { return f.grid.Height() }
func (f *Flowfield) Reserved() bool { return f.reserved }
func (f *Flowfield) Contains(pos TileVec) bool {
	return f.grid.Contains(pos)
}

// Tile returns a handle into the flowfield grid.
func (f *Flowfield) Tile(pos TileVec) Tile[FlowTile] { return f.grid.Tile(pos) }

// At returns the tile data at pos. Callers must check Contains first.
func (f *Flowfield) At(pos TileVec) *FlowTile { return f.grid.At(pos) }

// DistanceAt returns the step distance to the goal and whether pos is
// reachable at all.
func (f *Flowfield) DistanceAt(pos TileVec) (int, bool) {
	if !f.grid.Contains(pos) {
		return 0, false
	}
	t := f.grid.At(pos)
	if !t.closed {
		return 0, false
	}
	return t.distance, true
}

// Reachable reports whether the sweep reached pos.
func (f *Flowfield) Reachable(pos TileVec) bool {
	_, ok := f.DistanceAt(pos)
	return ok
}

// Next returns the tile one step closer to the goal from pos, following the
// best adjacency. ok is false at the goal, off-grid, or when unreachable.
func (f *Flowfield) Next(pos TileVec) (TileVec, bool) {
	if !f.grid.Contains(pos) {
		return pos, false
	}
	d := f.grid.At(pos).BestAdjacency()
	if d == DirNone {
		return pos, false
	}
	return pos.Add(d.Vector()), true
}

func (f *Flowfield) reserve() {
	if f.reserved {
		contractViolation("flowfield already reserved")
	}
	f.reserved = true
}

func (f *Flowfield) release() {
	f.reserved = false
}

// sweep runs a breadth-first pass from the goal over passable tiles. Step
// cost is uniform, so keying the frontier by distance visits tiles in BFS
// order. Every neighbour whose distance is exactly one more than the tile
// being expanded records the direction back toward it; ties accumulate.
func (f *Flowfield) sweep(passable func(TileVec) bool, frontier *MinHeap[int, TileVec]) {
	f.grid.Clear(FlowTile{})
	if !f.grid.Contains(f.goal) {
		return
	}
	goal := f.grid.At(f.goal)
	goal.goal = true
	goal.closed = true

	frontier.Clear()
	must(frontier.Insert(0, f.goal))

	dirs := Directions()
	for !frontier.Empty() {
		pos, _ := frontier.PopMin()
		cur := f.grid.At(pos)
		for _, d := range dirs {
			next := pos.Add(d.Vector())
			if !f.grid.Contains(next) || !passable(next) {
				continue
			}
			nt := f.grid.At(next)
			switch {
			case !nt.closed:
				nt.closed = true
				nt.distance = cur.distance + 1
				nt.addAdjacency(d.Opposite())
				must(frontier.Insert(nt.distance, next))
			case nt.distance == cur.distance+1:
				nt.addAdjacency(d.Opposite())
			}
		}
	}
}
