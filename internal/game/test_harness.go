package game

import (
	"fmt"
	"math/rand"

	"github.com/andrewtc/formation-movement/internal/nav"
)

// TestSim is a headless simulation harness used by tests and the headless
// report. It builds a World from options and steps it without Ebiten.
type TestSim struct {
	World  *World
	SimLog *SimLog
	Layout *Layout
	Config Config
	rng    *rand.Rand

	// orderErrs collects failures from order options; they are not fatal to
	// construction so tests can assert on them.
	orderErrs []error
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra simOptionKind = iota // layout, config, seed, verbose; applied first
	simOptAgent                      // add agents; applied after the world is built
	simOptOrder                      // move orders; applied after agents exist
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithLayout sets the map from ASCII rows ('#' wall, '.' open, 'u' agent).
func WithLayout(rows ...string) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		l, err := ParseLayout("test", rows)
		if err != nil {
			panic(err)
		}
		ts.Layout = l
	}}
}

// WithNamedLayout uses one of the built-in layouts.
func WithNamedLayout(name string) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		l, err := NamedLayout(name)
		if err != nil {
			panic(err)
		}
		ts.Layout = l
	}}
}

// WithConfig replaces the whole world config. Apply it before WithVerbose.
func WithConfig(cfg Config) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.Config = cfg
	}}
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- test harness
	}}
}

// WithVerbose enables per-tick verbose logging.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.Config.Verbose = v
	}}
}

// WithAgent spawns an agent at world position (x,y).
func WithAgent(x, y float64) SimOption {
	return SimOption{simOptAgent, func(ts *TestSim) {
		ts.World.SpawnAgent(nav.Vec{X: x, Y: y})
	}}
}

// WithScatteredAgents spawns n agents on random passable tile centres drawn
// from the seeded RNG.
func WithScatteredAgents(n int) SimOption {
	return SimOption{simOptAgent, func(ts *TestSim) {
		m := ts.World.Nav()
		var open []nav.TileVec
		for y := 0; y < m.Height(); y++ {
			for x := 0; x < m.Width(); x++ {
				if t := (nav.TileVec{X: x, Y: y}); m.IsPassable(t) {
					open = append(open, t)
				}
			}
		}
		ts.rng.Shuffle(len(open), func(i, j int) { open[i], open[j] = open[j], open[i] })
		for i := 0; i < n && i < len(open); i++ {
			ts.World.SpawnAgent(m.TileToWorld(open[i]))
		}
	}}
}

// WithFormation orders the agents with the given ids into one formation
// heading for (x,y).
func WithFormation(x, y float64, ids ...int) SimOption {
	return SimOption{simOptOrder, func(ts *TestSim) {
		if _, err := ts.World.OrderFormation(ts.agents(ids), nav.Vec{X: x, Y: y}); err != nil {
			ts.orderErrs = append(ts.orderErrs, err)
		}
	}}
}

// WithMoveOrder issues a regular move order, as a player click would.
func WithMoveOrder(x, y float64, ids ...int) SimOption {
	return SimOption{simOptOrder, func(ts *TestSim) {
		if _, err := ts.World.OrderMove(ts.agents(ids), nav.Vec{X: x, Y: y}); err != nil {
			ts.orderErrs = append(ts.orderErrs, err)
		}
	}}
}

// NewTestSim constructs a TestSim from the given options in ordered passes:
//  1. Infrastructure (layout, config, seed, verbose)
//  2. Build the World
//  3. Agents
//  4. Orders
//
// Without a layout the map is a 32x32 open field.
func NewTestSim(opts ...SimOption) *TestSim {
	ts := &TestSim{
		Config: DefaultConfig(),
		rng:    rand.New(rand.NewSource(1)), // #nosec G404 -- test harness default
	}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(ts)
		}
	}
	if ts.Layout == nil {
		ts.Layout = openLayout(32, 32)
	}
	ts.SimLog = NewSimLog(ts.Config.Verbose)
	w, err := NewWorld(ts.Layout, ts.Config, ts.SimLog)
	if err != nil {
		panic(fmt.Sprintf("test sim: %v", err))
	}
	ts.World = w
	for _, o := range opts {
		if o.kind == simOptAgent {
			o.fn(ts)
		}
	}
	for _, o := range opts {
		if o.kind == simOptOrder {
			o.fn(ts)
		}
	}
	return ts
}

func openLayout(w, h int) *Layout {
	return &Layout{Name: "open", Width: w, Height: h, blocked: make([]bool, w*h)}
}

// agents resolves ids, skipping unknown ones.
func (ts *TestSim) agents(ids []int) []*Agent {
	var out []*Agent
	for _, id := range ids {
		if a := ts.World.Agent(id); a != nil {
			out = append(out, a)
		}
	}
	return out
}

// OrderErrors returns errors raised by order options during construction.
func (ts *TestSim) OrderErrors() []error { return ts.orderErrs }

// RunTicks advances the simulation n ticks.
func (ts *TestSim) RunTicks(n int) {
	for i := 0; i < n; i++ {
		ts.World.Update()
	}
}

// RunUntil advances the simulation up to maxTicks, stopping early if predicate
// returns true. Returns the tick at which the predicate was satisfied, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		ts.World.Update()
		if predicate(ts) {
			return ts.World.Tick()
		}
	}
	return -1
}

// CurrentTick returns the current simulation tick.
func (ts *TestSim) CurrentTick() int {
	return ts.World.Tick()
}

// SimSnapshot is a lightweight copy of the world state at a tick.
type SimSnapshot struct {
	Tick       int
	Agents     []AgentSnapshot
	Formations int
}

// AgentSnapshot is a lightweight copy of an agent's state at a tick.
type AgentSnapshot struct {
	ID        int
	Label     string
	X, Y      float64
	Formation int // -1 when solo
	Slot      int // -1 when unslotted
}

// Snapshot returns the current state of all agents.
func (ts *TestSim) Snapshot() SimSnapshot {
	snap := SimSnapshot{Tick: ts.World.Tick(), Formations: len(ts.World.formations)}
	for _, a := range ts.World.Agents() {
		fi := -1
		if a.Formation() != nil {
			fi = a.Formation().Index()
		}
		snap.Agents = append(snap.Agents, AgentSnapshot{
			ID:        a.ID(),
			Label:     a.Label(),
			X:         a.pos.X,
			Y:         a.pos.Y,
			Formation: fi,
			Slot:      a.Slot(),
		})
	}
	return snap
}

// AllSettled reports whether every formation has arrived with its members on
// their slots and every solo agent has finished its route.
func (ts *TestSim) AllSettled() bool {
	for _, a := range ts.World.Agents() {
		if !a.Settled() {
			return false
		}
	}
	return true
}
