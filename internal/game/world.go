package game

import (
	"fmt"
	"math"
	"sort"

	"github.com/andrewtc/formation-movement/internal/formation"
	"github.com/andrewtc/formation-movement/internal/nav"
)

// World owns the navigation map, every agent and every live formation. It is
// advanced one fixed step at a time by Update.
type World struct {
	cfg    Config
	layout *Layout
	nav    *nav.Map
	log    *SimLog
	tick   int

	agents     []*Agent
	formations map[int]*formation.Formation
	arrived    map[int]bool
	nextFormID int
}

// NewWorld builds a world from a layout and spawns an agent on every spawn
// tile. A nil log gets a fresh non-verbose SimLog.
func NewWorld(layout *Layout, cfg Config, log *SimLog) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m, err := nav.NewMap(layout.Width, layout.Height, cfg.Nav)
	if err != nil {
		return nil, fmt.Errorf("layout %q: %w", layout.Name, err)
	}
	layout.apply(m)
	if log == nil {
		log = NewSimLog(cfg.Verbose)
	}
	w := &World{
		cfg:        cfg,
		layout:     layout,
		nav:        m,
		log:        log,
		formations: make(map[int]*formation.Formation),
		arrived:    make(map[int]bool),
	}
	for _, t := range layout.Spawns {
		w.SpawnAgent(m.TileToWorld(t))
	}
	return w, nil
}

func (w *World) Config() Config   { return w.cfg }
func (w *World) Layout() *Layout  { return w.layout }
func (w *World) Nav() *nav.Map    { return w.nav }
func (w *World) Log() *SimLog     { return w.log }
func (w *World) Tick() int        { return w.tick }
func (w *World) Agents() []*Agent { return w.agents }

// Agent returns the agent with the given id, or nil.
func (w *World) Agent(id int) *Agent {
	if id < 0 || id >= len(w.agents) {
		return nil
	}
	return w.agents[id]
}

// SpawnAgent adds an idle agent at p.
func (w *World) SpawnAgent(p nav.Vec) *Agent {
	a := NewAgent(len(w.agents), p, w.cfg, w.nav, w.log, &w.tick)
	w.agents = append(w.agents, a)
	w.log.Add(w.tick, a.label, "order", "spawn", fmt.Sprintf("(%.1f,%.1f)", p.X, p.Y), 0)
	return a
}

// Formations returns the live formations in index order.
func (w *World) Formations() []*formation.Formation {
	idx := make([]int, 0, len(w.formations))
	for i := range w.formations {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	out := make([]*formation.Formation, len(idx))
	for i, k := range idx {
		out[i] = w.formations[k]
	}
	return out
}

// CreateFormation opens a formation at the lowest free index using the
// configured behavior and cohesion.
func (w *World) CreateFormation(origin, dest nav.Vec) (*formation.Formation, error) {
	behavior, err := w.cfg.newBehavior()
	if err != nil {
		return nil, err
	}
	index := w.nextFormID
	f, err := formation.New(w.nav, index, origin, dest, behavior,
		formation.WithCohesion(w.cfg.cohesionFunc()),
		formation.WithTraceRadius(w.cfg.TraceRadius))
	if err != nil {
		return nil, err
	}
	w.formations[index] = f
	w.nextFormID++
	for w.formations[w.nextFormID] != nil {
		w.nextFormID++
	}
	w.log.Add(w.tick, "--", "formation", "create",
		fmt.Sprintf("formation %d toward (%.1f,%.1f) flowfield %d", index, dest.X, dest.Y, f.FlowfieldHandle()), float64(index))
	return f, nil
}

func (w *World) destroyFormation(f *formation.Formation) {
	index := f.Index()
	if err := f.Destroy(); err != nil {
		// Formations own their flowfield exclusively.
		panic(err)
	}
	delete(w.formations, index)
	delete(w.arrived, index)
	if index < w.nextFormID {
		w.nextFormID = index
	}
	w.log.Add(w.tick, "--", "formation", "destroy", fmt.Sprintf("formation %d", index), float64(index))
}

// OrderMove sends agents to dest. Several agents, or one with GroupOrders
// set, get a new formation anchored at their centre of mass; a lone agent
// gets a path request. Agents leave whatever they were doing first. When the
// formation cannot be created nothing changes and the error is returned.
func (w *World) OrderMove(agents []*Agent, dest nav.Vec) (*formation.Formation, error) {
	return w.order(agents, dest, len(agents) > 1 || w.cfg.GroupOrders)
}

// OrderFormation is OrderMove that always forms up, even for one agent.
func (w *World) OrderFormation(agents []*Agent, dest nav.Vec) (*formation.Formation, error) {
	return w.order(agents, dest, true)
}

func (w *World) order(agents []*Agent, dest nav.Vec, group bool) (*formation.Formation, error) {
	if len(agents) == 0 {
		return nil, nil
	}
	var f *formation.Formation
	if group {
		var err error
		if f, err = w.CreateFormation(centerOfMass(agents), dest); err != nil {
			w.log.Add(w.tick, "--", "order", "rejected", err.Error(), float64(len(agents)))
			return nil, fmt.Errorf("order %d agents: %w", len(agents), err)
		}
	}
	for _, a := range agents {
		a.stop()
		if old := a.formation; old != nil {
			old.RemoveUnit(a)
		}
		if f == nil {
			a.requestPath(dest)
			continue
		}
		if err := f.AddUnit(a); err != nil {
			panic(err)
		}
	}
	w.log.Add(w.tick, "--", "order", "move",
		fmt.Sprintf("%d agents to (%.1f,%.1f)", len(agents), dest.X, dest.Y), float64(len(agents)))
	w.destroyEmptyFormations()
	return f, nil
}

// Halt removes agents from their formations and cancels their paths.
func (w *World) Halt(agents []*Agent) {
	for _, a := range agents {
		a.stop()
		if a.formation != nil {
			a.formation.RemoveUnit(a)
		}
	}
	w.destroyEmptyFormations()
}

// SetPassable edits one tile and re-sweeps every live flowfield.
func (w *World) SetPassable(t nav.TileVec, passable bool) error {
	if !w.nav.Contains(t) {
		return fmt.Errorf("tile %v on %dx%d map: %w", t, w.nav.Width(), w.nav.Height(), ErrTileOutOfBounds)
	}
	w.nav.SetPassable(t, passable)
	n := w.nav.RefreshFlowfields()
	w.log.Add(w.tick, "--", "flowfield", "refresh",
		fmt.Sprintf("tile (%d,%d) passable=%v, %d flowfields", t.X, t.Y, passable, n), float64(n))
	return nil
}

// AgentsInArea returns agents whose centre lies in the rectangle spanned by
// two corners.
func (w *World) AgentsInArea(a, b nav.Vec) []*Agent {
	lo := nav.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)}
	hi := nav.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)}
	var out []*Agent
	for _, ag := range w.agents {
		p := ag.pos
		if p.X >= lo.X && p.X <= hi.X && p.Y >= lo.Y && p.Y <= hi.Y {
			out = append(out, ag)
		}
	}
	return out
}

// AgentAt returns the first agent whose body covers p, or nil.
func (w *World) AgentAt(p nav.Vec) *Agent {
	for _, a := range w.agents {
		if a.pos.DistSq(p) <= a.radius*a.radius {
			return a
		}
	}
	return nil
}

// Update advances the world by one tick: path searches, formations, agents,
// then body collisions, and finally empty formations are released.
func (w *World) Update() {
	w.tick++
	dt := w.cfg.TimeStep

	w.nav.Update()
	for _, f := range w.Formations() {
		f.Update(dt)
		if !w.arrived[f.Index()] && f.Origin().DistSq(f.Destination()) <= atLocationToleranceSq {
			w.arrived[f.Index()] = true
			w.log.Add(w.tick, "--", "formation", "arrived", fmt.Sprintf("formation %d", f.Index()), float64(f.Index()))
		}
		w.log.AddVerbose(w.tick, "--", "formation", "origin",
			fmt.Sprintf("formation %d at (%.2f,%.2f) cohesion %.2f", f.Index(), f.Origin().X, f.Origin().Y, f.Cohesion()), f.Cohesion())
	}
	for _, a := range w.agents {
		a.Update(dt)
	}
	w.pushApart()
	for _, a := range w.agents {
		w.clampToBounds(a)
		w.collideWithWalls(a)
		w.clampToBounds(a)
		w.log.AddVerbose(w.tick, a.label, "order", "position", fmt.Sprintf("(%.2f,%.2f)", a.pos.X, a.pos.Y), 0)
	}
	w.destroyEmptyFormations()
}

// pushApart separates overlapping bodies by a damped share of the overlap.
// Unrelated agents split it evenly; see pushShares for formation mates.
func (w *World) pushApart() {
	for i, a := range w.agents {
		for _, b := range w.agents[i+1:] {
			minDist := a.radius + b.radius
			d := b.pos.Sub(a.pos)
			distSq := d.LenSq()
			if distSq >= minDist*minDist {
				continue
			}
			dist := math.Sqrt(distSq)
			dir := nav.Vec{X: 1}
			if dist > 0 {
				dir = d.Scale(1 / dist)
			}
			nudge := dir.Scale((minDist - dist) * 0.5)
			sa, sb := pushShares(a, b)
			a.pos = a.pos.Sub(nudge.Scale(sa))
			b.pos = b.pos.Add(nudge.Scale(sb))
		}
	}
}

// pushShares returns the parts of a push taken by a and b. Two members of the
// same formation do not split it: the one farther down the flowfield, or the
// higher id on equal distance, gives way entirely, so members file through a
// one-tile gap one at a time.
func pushShares(a, b *Agent) (float64, float64) {
	if a.formation == nil || a.formation != b.formation {
		return 0.5, 0.5
	}
	da, db := a.flowDistance(), b.flowDistance()
	if da < db || (da == db && a.id < b.id) {
		return 0, 1
	}
	return 1, 0
}

// collideWithWalls pushes an agent out of every blocked tile its body
// overlaps, along the axis of greatest separation. Tiles off the map count as
// blocked.
func (w *World) collideWithWalls(a *Agent) {
	half := w.cfg.Nav.TileSize / 2
	r := nav.Vec{X: a.radius, Y: a.radius}
	lo := w.nav.WorldToTile(a.pos.Sub(r))
	hi := w.nav.WorldToTile(a.pos.Add(r))
	for y := lo.Y; y <= hi.Y; y++ {
		for x := lo.X; x <= hi.X; x++ {
			t := nav.TileVec{X: x, Y: y}
			if w.nav.IsPassable(t) {
				continue
			}
			c := w.nav.TileToWorld(t)
			d := a.pos.Sub(c)
			reach := a.radius + half
			if math.Abs(d.X) >= reach || math.Abs(d.Y) >= reach {
				continue
			}
			if math.Abs(d.X) >= math.Abs(d.Y) {
				a.pos.X = c.X + math.Copysign(reach, d.X)
			} else {
				a.pos.Y = c.Y + math.Copysign(reach, d.Y)
			}
		}
	}
}

// clampToBounds keeps the whole body on the map.
func (w *World) clampToBounds(a *Agent) {
	b := w.nav.Bounds()
	r := math.Min(a.radius, math.Min(b.X, b.Y)/2)
	a.pos.X = math.Max(r, math.Min(a.pos.X, b.X-r))
	a.pos.Y = math.Max(r, math.Min(a.pos.Y, b.Y-r))
}

func (w *World) destroyEmptyFormations() {
	for _, f := range w.Formations() {
		if f.UnitCount() == 0 {
			w.destroyFormation(f)
		}
	}
}

// FormationOf returns the live formation with the given index.
func (w *World) FormationOf(index int) (*formation.Formation, error) {
	f, ok := w.formations[index]
	if !ok {
		return nil, fmt.Errorf("formation %d: %w", index, ErrNoFormation)
	}
	return f, nil
}

// CheckSlots verifies slot exclusivity across live formations: every taken
// slot's occupant maps back to that slot and no agent holds two slots.
func (w *World) CheckSlots() error {
	for _, f := range w.Formations() {
		seen := make(map[int]int)
		for i, s := range f.Slots() {
			if !s.Taken() {
				continue
			}
			u := s.Occupant()
			if prev, ok := seen[u.ID()]; ok {
				return fmt.Errorf("formation %d: agent %d holds slots %d and %d", f.Index(), u.ID(), prev, i)
			}
			seen[u.ID()] = i
			if got, ok := f.SlotOf(u); !ok || got != i {
				return fmt.Errorf("formation %d: slot %d occupant %d maps to slot %d", f.Index(), i, u.ID(), got)
			}
			if u.Formation() != f {
				return fmt.Errorf("formation %d: slot %d occupant %d belongs elsewhere", f.Index(), i, u.ID())
			}
		}
	}
	return nil
}

func centerOfMass(agents []*Agent) nav.Vec {
	var sum nav.Vec
	for _, a := range agents {
		sum = sum.Add(a.pos)
	}
	return sum.Scale(1 / float64(len(agents)))
}
