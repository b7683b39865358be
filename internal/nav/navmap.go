package nav

import (
	"fmt"
	"math"
	"sort"
)

// NavTile is the per-tile passability and search state of a Map.
//
// openedBy and closedBy hold the id of the last search that touched the tile,
// so a new search never has to reset the grid: a stamp that does not match
// the current id is stale.
type NavTile struct {
	passable bool
	openedBy int
	closedBy int
	cost     int
	cameFrom Direction
}

func (t *NavTile) Passable() bool { return t.passable }

func (t *NavTile) isOpen(search int) bool   { return t.openedBy == search }
func (t *NavTile) isClosed(search int) bool { return t.closedBy == search }

// Map is the navigation map: the passability grid, the path request queue,
// the A* open list and the flowfield pool.
type Map struct {
	cfg      Config
	tiles    *Grid[NavTile]
	openList *MinHeap[int, TileVec]
	frontier *MinHeap[int, TileVec]

	nextSearchID int
	pending      []PathRequest // ascending by ID

	flowfields    []Flowfield
	nextFlowfield int
}

// NewMap builds an all-passable width x height map.
func NewMap(width, height int, cfg Config) (*Map, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.ValidateSize(width, height); err != nil {
		return nil, err
	}
	m := &Map{
		cfg:        cfg,
		tiles:      NewGrid[NavTile](cfg.MaxDimensionPow2),
		flowfields: make([]Flowfield, cfg.MaxFlowfields),
	}
	for i := range m.flowfields {
		m.flowfields[i].grid = NewGrid[FlowTile](cfg.MaxDimensionPow2)
	}
	if err := m.tiles.Resize(width, height); err != nil {
		return nil, err
	}
	m.tiles.Clear(NavTile{passable: true})

	openCap := cfg.OpenListCapacity
	if openCap == 0 {
		openCap = width * height
	}
	m.openList = NewMinHeap[int, TileVec](openCap)
	m.frontier = NewMinHeap[int, TileVec](width * height)
	return m, nil
}

func (m *Map) Config() Config { return m.cfg }
func (m *Map) Width() int     { return m.tiles.Width() }
func (m *Map) Height() int    { return m.tiles.Height() }

// Contains reports whether pos is a tile of the map.
func (m *Map) Contains(pos TileVec) bool { return m.tiles.Contains(pos) }

// Tile returns a handle into the passability grid.
func (m *Map) Tile(pos TileVec) Tile[NavTile] { return m.tiles.Tile(pos) }

// IsPassable reports whether pos is on the map and passable.
func (m *Map) IsPassable(pos TileVec) bool {
	return m.tiles.Contains(pos) && m.tiles.At(pos).passable
}

// SetPassable changes a tile. Existing flowfields keep their old data until
// RefreshFlowfields runs.
func (m *Map) SetPassable(pos TileVec, passable bool) {
	m.tiles.At(pos).passable = passable
}

// WorldToTile maps a world position to the tile containing it.
func (m *Map) WorldToTile(p Vec) TileVec {
	s := m.cfg.TileSize
	return TileVec{int(math.Floor(p.X / s)), int(math.Floor(p.Y / s))}
}

// TileToWorld returns the world-space centre of a tile.
func (m *Map) TileToWorld(t TileVec) Vec {
	s := m.cfg.TileSize
	return Vec{(float64(t.X) + 0.5) * s, (float64(t.Y) + 0.5) * s}
}

// Bounds returns the world-space size of the map; the map spans
// [0,Bounds().X] x [0,Bounds().Y].
func (m *Map) Bounds() Vec {
	s := m.cfg.TileSize
	return Vec{float64(m.Width()) * s, float64(m.Height()) * s}
}

// --- path requests ---

// RequestPath queues a search from the requester's current tile to
// destination and returns the request id.
func (m *Map) RequestPath(requester PathRequester, destination Vec) int {
	if requester == nil {
		contractViolation("path requested for nil requester")
	}
	m.nextSearchID++
	id := m.nextSearchID
	m.pending = append(m.pending, PathRequest{ID: id, Requester: requester, Destination: destination})
	return id
}

// CancelPath drops a request that has not been serviced yet. It reports
// whether anything was removed.
func (m *Map) CancelPath(id int) bool {
	i := sort.Search(len(m.pending), func(i int) bool { return m.pending[i].ID >= id })
	if i == len(m.pending) || m.pending[i].ID != id {
		return false
	}
	m.pending = append(m.pending[:i], m.pending[i+1:]...)
	return true
}

// IsPending reports whether request id is still queued.
func (m *Map) IsPending(id int) bool {
	i := sort.Search(len(m.pending), func(i int) bool { return m.pending[i].ID >= id })
	return i < len(m.pending) && m.pending[i].ID == id
}

// PendingRequests returns the number of queued requests.
func (m *Map) PendingRequests() int { return len(m.pending) }

// Update services at most MaxPathfindsPerTick queued requests, oldest first,
// and returns the requests it serviced.
func (m *Map) Update() []PathRequest {
	n := min(len(m.pending), m.cfg.MaxPathfindsPerTick)
	if n == 0 {
		return nil
	}
	served := make([]PathRequest, n)
	copy(served, m.pending[:n])
	m.pending = append(m.pending[:0], m.pending[n:]...)

	for _, req := range served {
		start := m.WorldToTile(req.Requester.Position())
		dest := m.WorldToTile(req.Destination)
		path := m.search(req.ID, start, dest)
		path.Destination = req.Destination
		req.Requester.SetPath(path)
	}
	return served
}

// FindPath runs a synchronous A* search between two tiles.
func (m *Map) FindPath(start, destination TileVec) Path {
	m.nextSearchID++
	return m.search(m.nextSearchID, start, destination)
}

// search is A* on the 4-connected grid with unit step cost and a Manhattan
// heuristic. Tiles are stamped with id instead of being reset.
func (m *Map) search(id int, start, dest TileVec) Path {
	path := Path{RequestID: id}
	if m.tiles.Contains(dest) {
		path.Destination = m.TileToWorld(dest)
	}
	if !m.IsPassable(dest) || !m.IsPassable(start) {
		return path
	}

	m.openList.Clear()
	st := m.tiles.At(start)
	st.cost = 0
	st.cameFrom = DirNone
	st.openedBy = id
	must(m.openList.Insert(0, start))

	dirs := Directions()
	for !m.openList.Empty() {
		pos, _ := m.openList.PopMin()
		cur := m.tiles.At(pos)
		cur.closedBy = id

		if pos == dest {
			path.Waypoints = m.backtrack(dest)
			m.openList.Clear()
			return path
		}

		for _, d := range dirs {
			next := pos.Add(d.Vector())
			if !m.tiles.Contains(next) {
				continue
			}
			nt := m.tiles.At(next)
			if !nt.passable || nt.isClosed(id) {
				continue
			}
			g := cur.cost + 1
			total := g + ManhattanDistance(next, dest)
			switch {
			case !nt.isOpen(id):
				nt.openedBy = id
				must(m.openList.Insert(total, next))
			case g < nt.cost:
				must(m.openList.Update(total, next))
			default:
				continue
			}
			nt.cost = g
			nt.cameFrom = d.Opposite()
		}
	}
	return path
}

// backtrack walks back-directions from dest to the start tile and returns the
// tile centres from nearest-to-start to dest. The start tile is not emitted.
func (m *Map) backtrack(dest TileVec) []Vec {
	var rev []Vec
	for pos := dest; ; {
		t := m.tiles.At(pos)
		if t.cameFrom == DirNone {
			break
		}
		rev = append(rev, m.TileToWorld(pos))
		pos = pos.Add(t.cameFrom.Vector())
	}
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev
}

// --- flowfield pool ---

// CreateFlowfield reserves a pooled flowfield and sweeps it toward goal.
func (m *Map) CreateFlowfield(goal TileVec) (FlowfieldHandle, error) {
	if m.nextFlowfield >= len(m.flowfields) {
		return NoFlowfield, fmt.Errorf("create flowfield toward %v (%d reserved): %w", goal, len(m.flowfields), ErrFlowfieldPoolExhausted)
	}
	if !m.tiles.Contains(goal) {
		return NoFlowfield, fmt.Errorf("create flowfield toward %v on %dx%d map: %w", goal, m.Width(), m.Height(), ErrGoalOutOfBounds)
	}

	h := FlowfieldHandle(m.nextFlowfield)
	ff := &m.flowfields[h]
	ff.reserve()
	must(ff.grid.Resize(m.Width(), m.Height()))
	ff.goal = goal
	ff.sweep(m.IsPassable, m.frontier)

	for m.nextFlowfield++; m.nextFlowfield < len(m.flowfields); m.nextFlowfield++ {
		if !m.flowfields[m.nextFlowfield].reserved {
			break
		}
	}
	return h, nil
}

// DestroyFlowfield returns a flowfield to the pool.
func (m *Map) DestroyFlowfield(h FlowfieldHandle) error {
	if _, err := m.LookupFlowfield(h); err != nil {
		return fmt.Errorf("destroy flowfield: %w", err)
	}
	m.flowfields[h].release()
	if int(h) < m.nextFlowfield {
		m.nextFlowfield = int(h)
	}
	return nil
}

// LookupFlowfield resolves a handle, failing for unreserved slots.
func (m *Map) LookupFlowfield(h FlowfieldHandle) (*Flowfield, error) {
	if h < 0 || int(h) >= len(m.flowfields) {
		return nil, fmt.Errorf("handle %d outside pool of %d: %w", h, len(m.flowfields), ErrInvalidFlowfield)
	}
	if !m.flowfields[h].reserved {
		return nil, fmt.Errorf("handle %d not reserved: %w", h, ErrInvalidFlowfield)
	}
	return &m.flowfields[h], nil
}

// Flowfield resolves a handle the caller knows to be reserved. An unreserved
// flowfield is never handed out.
func (m *Map) Flowfield(h FlowfieldHandle) *Flowfield {
	ff, err := m.LookupFlowfield(h)
	must(err)
	return ff
}

// RecalculateFlowfield re-sweeps one flowfield against current passability.
func (m *Map) RecalculateFlowfield(h FlowfieldHandle) error {
	ff, err := m.LookupFlowfield(h)
	if err != nil {
		return fmt.Errorf("recalculate flowfield: %w", err)
	}
	ff.sweep(m.IsPassable, m.frontier)
	return nil
}

// RefreshFlowfields re-sweeps every reserved flowfield and returns how many
// were recalculated.
func (m *Map) RefreshFlowfields() int {
	n := 0
	for i := range m.flowfields {
		if m.flowfields[i].reserved {
			m.flowfields[i].sweep(m.IsPassable, m.frontier)
			n++
		}
	}
	return n
}

// ReservedFlowfields returns how many pool slots are in use.
func (m *Map) ReservedFlowfields() int {
	n := 0
	for i := range m.flowfields {
		if m.flowfields[i].reserved {
			n++
		}
	}
	return n
}

// FlowfieldCapacity returns the pool size.
func (m *Map) FlowfieldCapacity() int { return len(m.flowfields) }
