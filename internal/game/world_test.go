package game

import (
	"errors"
	"math"
	"testing"

	"github.com/andrewtc/formation-movement/internal/nav"
)

func approx(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func mustWorld(t *testing.T, cfg Config, rows ...string) *World {
	t.Helper()
	l, err := ParseLayout("test", rows)
	if err != nil {
		t.Fatalf("ParseLayout: %v", err)
	}
	w, err := NewWorld(l, cfg, nil)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	return w
}

func TestNewWorld_SpawnsOnLayoutTiles(t *testing.T) {
	w := mustWorld(t, DefaultConfig(),
		"....",
		".u#.",
		"...u",
	)
	if got := len(w.Agents()); got != 2 {
		t.Fatalf("expected 2 agents, got %d", got)
	}
	if p := w.Agent(0).Position(); p != (nav.Vec{X: 1.5, Y: 1.5}) {
		t.Fatalf("A0 at %v, want tile centre (1.5,1.5)", p)
	}
	if p := w.Agent(1).Position(); p != (nav.Vec{X: 3.5, Y: 2.5}) {
		t.Fatalf("A1 at %v, want (3.5,2.5)", p)
	}
	if w.Nav().IsPassable(nav.TileVec{X: 2, Y: 1}) {
		t.Fatal("wall tile should be impassable")
	}
	if w.Agent(2) != nil || w.Agent(-1) != nil {
		t.Fatal("out-of-range agent ids should return nil")
	}
}

func TestNewWorld_RejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Shape = "phalanx"
	l, _ := ParseLayout("x", []string{"...."})
	if _, err := NewWorld(l, cfg, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	cfg = DefaultConfig()
	cfg.Nav.MaxDimensionPow2 = 2
	wide, _ := ParseLayout("wide", []string{"......"})
	if _, err := NewWorld(wide, cfg, nil); !errors.Is(err, nav.ErrDimensionTooLarge) {
		t.Fatalf("expected ErrDimensionTooLarge, got %v", err)
	}
}

func TestOrderMove_SingleAgentFollowsPath(t *testing.T) {
	ts := NewTestSim(
		WithAgent(1.5, 1.5),
		WithMoveOrder(5.25, 1.75, 0),
	)
	a := ts.World.Agent(0)
	if a.PendingPath() != 1 {
		t.Fatalf("expected pending request id 1, got %d", a.PendingPath())
	}
	if len(ts.World.Formations()) != 0 {
		t.Fatal("a single-agent order should not create a formation")
	}

	tick := ts.RunUntil(func(ts *TestSim) bool { return ts.AllSettled() }, 300)
	if tick < 0 {
		t.Fatalf("agent never settled; at %v\n%s", a.Position(), ts.SimLog.Format())
	}
	p := a.Position()
	if !approx(p.X, 5.25, 0.1) || !approx(p.Y, 1.75, 0.1) {
		t.Fatalf("agent stopped at %v, want the exact ordered point (5.25,1.75)", p)
	}
	if !ts.SimLog.HasEntry("path", "delivered", "4 waypoints") {
		t.Fatalf("expected a 4-waypoint delivery:\n%s", ts.SimLog.Format())
	}
}

func TestOrderMove_UnreachableDestinationDeliversEmptyPath(t *testing.T) {
	ts := NewTestSim(
		WithLayout(
			"u.#..",
			"..#..",
			"..#..",
		),
		WithMoveOrder(4.5, 1.5, 0),
	)
	ts.RunTicks(5)
	if ts.SimLog.CountCategory("path", "empty") != 1 {
		t.Fatalf("expected one empty path:\n%s", ts.SimLog.Format())
	}
	a := ts.World.Agent(0)
	if p := a.Position(); !approx(p.X, 0.5, 1e-9) || !approx(p.Y, 0.5, 1e-9) {
		t.Fatalf("agent without a route should stay put, at %v", p)
	}
	if !a.Settled() {
		t.Fatal("agent with an empty path should be settled")
	}
}

func TestOrderMove_GroupFormsAtCentreOfMass(t *testing.T) {
	ts := NewTestSim(
		WithAgent(2.5, 2.5),
		WithAgent(4.5, 3.5),
		WithMoveOrder(20.5, 20.5, 0, 1),
	)
	fs := ts.World.Formations()
	if len(fs) != 1 {
		t.Fatalf("expected one formation, got %d", len(fs))
	}
	f := fs[0]
	if f.Index() != 0 {
		t.Fatalf("first formation should take index 0, got %d", f.Index())
	}
	if o := f.Origin(); o != (nav.Vec{X: 3.5, Y: 3}) {
		t.Fatalf("origin %v, want centre of mass (3.5,3)", o)
	}
	for _, a := range ts.World.Agents() {
		if a.Formation() != f {
			t.Fatalf("%s not in the new formation", a.Label())
		}
		if a.PendingPath() != 0 {
			t.Fatalf("%s should not have a path request", a.Label())
		}
	}
	if ts.World.Nav().ReservedFlowfields() != 1 {
		t.Fatalf("formation should reserve one flowfield, have %d", ts.World.Nav().ReservedFlowfields())
	}
}

func TestOrderMove_GroupOrdersFormUpSingleAgent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GroupOrders = true
	ts := NewTestSim(
		WithConfig(cfg),
		WithAgent(2.5, 2.5),
		WithMoveOrder(8.5, 2.5, 0),
	)
	if len(ts.World.Formations()) != 1 {
		t.Fatal("GroupOrders should put a lone agent in a formation")
	}
	if ts.World.Agent(0).PendingPath() != 0 {
		t.Fatal("a formed-up agent should not request a path")
	}
}

func TestOrderMove_ReordersReleaseAndReuseFormations(t *testing.T) {
	w := NewTestSim(
		WithAgent(2.5, 2.5),
		WithAgent(3.5, 2.5),
		WithAgent(4.5, 2.5),
	).World
	all := w.Agents()

	if _, err := w.OrderMove(all, nav.Vec{X: 10, Y: 10}); err != nil {
		t.Fatal(err)
	}
	if _, err := w.OrderMove(all[:1], nav.Vec{X: 20, Y: 2}); err != nil {
		t.Fatal(err)
	}
	f0, err := w.FormationOf(0)
	if err != nil {
		t.Fatal(err)
	}
	if f0.UnitCount() != 2 {
		t.Fatalf("formation 0 should keep 2 units, has %d", f0.UnitCount())
	}

	f1, err := w.OrderMove(all[1:], nav.Vec{X: 5, Y: 20})
	if err != nil {
		t.Fatal(err)
	}
	if f1.Index() != 1 {
		t.Fatalf("new formation should take index 1 while 0 is live, got %d", f1.Index())
	}
	if _, err := w.FormationOf(0); !errors.Is(err, ErrNoFormation) {
		t.Fatalf("emptied formation 0 should be destroyed, got %v", err)
	}

	f, err := w.OrderMove(all[1:], nav.Vec{X: 6, Y: 20})
	if err != nil {
		t.Fatal(err)
	}
	if f.Index() != 0 {
		t.Fatalf("lowest free index 0 should be reused, got %d", f.Index())
	}
	if got := w.Nav().ReservedFlowfields(); got != 1 {
		t.Fatalf("expected 1 reserved flowfield after churn, got %d", got)
	}
}

func TestOrderMove_CancelsPendingPath(t *testing.T) {
	w := NewTestSim(WithAgent(2.5, 2.5), WithAgent(3.5, 2.5)).World
	a := w.Agent(0)
	if _, err := w.OrderMove([]*Agent{a}, nav.Vec{X: 9, Y: 9}); err != nil {
		t.Fatal(err)
	}
	id := a.PendingPath()
	if !w.Nav().IsPending(id) {
		t.Fatalf("request %d should be queued", id)
	}
	if _, err := w.OrderMove(w.Agents(), nav.Vec{X: 12, Y: 12}); err != nil {
		t.Fatal(err)
	}
	if w.Nav().IsPending(id) {
		t.Fatalf("request %d should have been cancelled", id)
	}
	if !w.Log().HasEntry("path", "cancelled", "") {
		t.Fatal("cancellation should be logged")
	}
}

func TestOrderMove_PoolExhaustedChangesNothing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Nav.MaxFlowfields = 1
	w := NewTestSim(
		WithConfig(cfg),
		WithAgent(2.5, 2.5), WithAgent(3.5, 2.5),
		WithAgent(2.5, 8.5), WithAgent(3.5, 8.5),
	).World
	ag := w.Agents()
	if _, err := w.OrderMove(ag[:2], nav.Vec{X: 20, Y: 2}); err != nil {
		t.Fatal(err)
	}
	_, err := w.OrderMove(ag[2:], nav.Vec{X: 20, Y: 8})
	if !errors.Is(err, nav.ErrFlowfieldPoolExhausted) {
		t.Fatalf("expected ErrFlowfieldPoolExhausted, got %v", err)
	}
	for _, a := range ag[2:] {
		if a.Formation() != nil {
			t.Fatalf("%s should be untouched by a rejected order", a.Label())
		}
	}
	if len(w.Formations()) != 1 {
		t.Fatalf("expected the original formation only, have %d", len(w.Formations()))
	}
	if w.Log().CountCategory("order", "rejected") != 1 {
		t.Fatal("rejected order should be logged")
	}
}

func TestOrderMove_GoalOffMap(t *testing.T) {
	w := NewTestSim(WithAgent(2.5, 2.5), WithAgent(3.5, 2.5)).World
	if _, err := w.OrderMove(w.Agents(), nav.Vec{X: -4, Y: 2}); !errors.Is(err, nav.ErrGoalOutOfBounds) {
		t.Fatalf("expected ErrGoalOutOfBounds, got %v", err)
	}
}

func TestHalt_DissolvesFormation(t *testing.T) {
	ts := NewTestSim(
		WithAgent(2.5, 2.5), WithAgent(3.5, 2.5),
		WithMoveOrder(20, 20, 0, 1),
	)
	ts.RunTicks(10)
	ts.World.Halt(ts.World.Agents())
	if len(ts.World.Formations()) != 0 {
		t.Fatal("halting every member should destroy the formation")
	}
	if ts.World.Nav().ReservedFlowfields() != 0 {
		t.Fatal("destroyed formation should release its flowfield")
	}
	before := ts.Snapshot()
	ts.RunTicks(30)
	after := ts.Snapshot()
	for i := range before.Agents {
		dx := after.Agents[i].X - before.Agents[i].X
		dy := after.Agents[i].Y - before.Agents[i].Y
		if math.Hypot(dx, dy) > 0.2 {
			t.Fatalf("%s kept moving after halt", before.Agents[i].Label)
		}
	}
}

func TestWorld_FormationArrivesAndSettles(t *testing.T) {
	ts := NewTestSim(
		WithLayout(
			"................................",
			"................................",
			"..uu............................",
			"..uu............................",
			"................................",
			"................................",
			"................................",
			"................................",
			"................................",
			"................................",
			"................................",
			"................................",
			"................................",
			"................................",
			"................................",
			"................................",
		),
		WithMoveOrder(24.5, 10.5, 0, 1, 2, 3),
	)
	tick := ts.RunUntil(func(ts *TestSim) bool {
		if err := ts.World.CheckSlots(); err != nil {
			t.Fatalf("T=%d: %v", ts.CurrentTick(), err)
		}
		return ts.AllSettled()
	}, 1500)
	if tick < 0 {
		t.Fatalf("formation never settled\n%s", ts.SimLog.Summary(ts.World))
	}
	if !ts.SimLog.HasEntry("formation", "arrived", "formation 0") {
		t.Fatal("arrival should be logged")
	}
	f := ts.World.Formations()[0]
	if f.SlotCount() != 4 {
		t.Fatalf("expected 4 slots, got %d", f.SlotCount())
	}
	for _, a := range ts.World.Agents() {
		if a.Slot() < 0 {
			t.Fatalf("%s has no slot at T=%d", a.Label(), tick)
		}
		if d := a.Position().Sub(f.Destination()).Len(); d > 1.5 {
			t.Fatalf("%s settled %.2f from the destination", a.Label(), d)
		}
	}
}

func TestWorld_FormationRoutesThroughGap(t *testing.T) {
	ts := NewTestSim(
		WithLayout(
			"..........#.........",
			"..........#.........",
			"..u.......#.........",
			"..uu......#.........",
			"..........#.........",
			"..........#.........",
			"....................",
			"..........#.........",
		),
		WithMoveOrder(16.5, 2.5, 0, 1, 2),
	)
	tick := ts.RunUntil(func(ts *TestSim) bool {
		for _, a := range ts.World.Agents() {
			if a.Position().X < 12 {
				return false
			}
		}
		return ts.SimLog.HasEntry("formation", "arrived", "")
	}, 4000)
	if tick < 0 {
		t.Fatalf("formation never made it through the gap\n%s", RenderASCII(ts.World))
	}
	for _, a := range ts.World.Agents() {
		if !ts.World.Nav().IsPassable(ts.World.Nav().WorldToTile(a.Position())) {
			t.Fatalf("%s ended inside a wall at %v", a.Label(), a.Position())
		}
	}
}

func TestWorld_SetPassableRefreshesFlowfields(t *testing.T) {
	ts := NewTestSim(
		WithLayout(
			"u.......",
			"u.......",
			"........",
		),
		WithMoveOrder(6.5, 1.5, 0, 1),
	)
	w := ts.World
	f := w.Formations()[0]
	ff := f.Flowfield()
	probe := nav.TileVec{X: 4, Y: 1}
	if d, _ := ff.DistanceAt(probe); d != 2 {
		t.Fatalf("distance before edit = %d, want 2", d)
	}
	for _, y := range []int{0, 1} {
		if err := w.SetPassable(nav.TileVec{X: 5, Y: y}, false); err != nil {
			t.Fatal(err)
		}
	}
	if d, _ := ff.DistanceAt(probe); d != 4 {
		t.Fatalf("distance after edit = %d, want 4 (around the new wall)", d)
	}
	if got := w.Log().CountCategory("flowfield", "refresh"); got != 2 {
		t.Fatalf("expected 2 refresh entries, got %d", got)
	}
	if err := w.SetPassable(nav.TileVec{X: 99, Y: 0}, false); !errors.Is(err, ErrTileOutOfBounds) {
		t.Fatalf("editing off the map should fail with ErrTileOutOfBounds, got %v", err)
	}
}

func TestWorld_SelectionHelpers(t *testing.T) {
	w := NewTestSim(
		WithAgent(2, 2),
		WithAgent(5, 5),
		WithAgent(9, 1),
	).World
	got := w.AgentsInArea(nav.Vec{X: 6, Y: 6}, nav.Vec{X: 1, Y: 1})
	if len(got) != 2 || got[0].ID() != 0 || got[1].ID() != 1 {
		t.Fatalf("area selection = %v, want A0 and A1", got)
	}
	if a := w.AgentAt(nav.Vec{X: 5.3, Y: 4.8}); a == nil || a.ID() != 1 {
		t.Fatalf("AgentAt should hit A1, got %v", a)
	}
	if a := w.AgentAt(nav.Vec{X: 7, Y: 7}); a != nil {
		t.Fatalf("AgentAt on empty ground should be nil, got %s", a.Label())
	}
}

func TestWorld_PushApartSeparatesOverlaps(t *testing.T) {
	ts := NewTestSim(WithAgent(5, 5), WithAgent(5, 5))
	ts.RunTicks(1)
	a, b := ts.World.Agent(0).Position(), ts.World.Agent(1).Position()
	if !approx(a.X, 4.75, 1e-9) || !approx(b.X, 5.25, 1e-9) {
		t.Fatalf("coincident agents should split along +X by 0.25 each, got %v and %v", a, b)
	}
}

func TestWorld_WallsPushAgentsOut(t *testing.T) {
	ts := NewTestSim(
		WithLayout(
			"........",
			"........",
			"...#....",
			"........",
		),
		WithAgent(3.5, 1.7),
		WithAgent(-1, 3.5),
	)
	ts.RunTicks(1)
	if p := ts.World.Agent(0).Position(); !approx(p.Y, 1.5, 1e-9) || !approx(p.X, 3.5, 1e-9) {
		t.Fatalf("agent overlapping a wall should be pushed to (3.5,1.5), got %v", p)
	}
	if p := ts.World.Agent(1).Position(); !approx(p.X, 0.5, 1e-9) {
		t.Fatalf("agent off the map should be clamped to its radius, got %v", p)
	}
}

func TestWorld_EdgeBumpKeepsAgentsOnTheMap(t *testing.T) {
	ts := NewTestSim(
		WithLayout(
			"........",
			"........",
			"........",
		),
		WithAgent(7.5, 1.5),
		WithAgent(7.9, 1.5),
	)
	m := ts.World.Nav()
	for i := 0; i < 5; i++ {
		ts.RunTicks(1)
		for _, a := range ts.World.Agents() {
			if p := a.Position(); !m.IsPassable(m.WorldToTile(p)) || p.X > 7.5+1e-9 {
				t.Fatalf("T=%d: %s left the map at %v", ts.CurrentTick(), a.Label(), p)
			}
		}
	}

	if _, err := ts.World.OrderMove(ts.World.Agents(), nav.Vec{X: 1.5, Y: 1.5}); err != nil {
		t.Fatal(err)
	}
	ts.RunTicks(600)
	for _, a := range ts.World.Agents() {
		if p := a.Position(); p.X > 4 {
			t.Fatalf("%s never left the east edge, at %v\n%s", a.Label(), p, DebugReport(ts.World))
		}
	}
	if ts.SimLog.CountCategory("path", "empty") != 0 {
		t.Fatalf("no search should come back empty:\n%s", ts.SimLog.Format())
	}
}

func TestWorld_FormationMatesGiveWayByFlowfieldDistance(t *testing.T) {
	ts := NewTestSim(
		WithAgent(5.5, 5.5),
		WithAgent(5.9, 5.5),
		WithFormation(20.5, 5.5, 0, 1),
	)
	w := ts.World
	a0, a1 := w.Agent(0), w.Agent(1)

	// Same tile, same distance: the higher id takes the whole push.
	w.pushApart()
	if !approx(a0.Position().X, 5.5, 1e-9) || !approx(a1.Position().X, 6.2, 1e-9) {
		t.Fatalf("equal distance: got %v and %v, want A0 held at 5.5 and A1 at 6.2", a0.Position(), a1.Position())
	}

	// A1 one tile nearer the goal: A0 gives way even with the lower id.
	a0.SetPosition(nav.Vec{X: 5.7, Y: 5.5})
	a1.SetPosition(nav.Vec{X: 6.1, Y: 5.5})
	w.pushApart()
	if !approx(a0.Position().X, 5.4, 1e-9) || !approx(a1.Position().X, 6.1, 1e-9) {
		t.Fatalf("unequal distance: got %v and %v, want A0 at 5.4 and A1 held at 6.1", a0.Position(), a1.Position())
	}
}

func TestAgent_MembersNotSettledBeforeFormationArrives(t *testing.T) {
	ts := NewTestSim(
		WithAgent(2.5, 2.5), WithAgent(3.5, 2.5),
		WithMoveOrder(24.5, 10.5, 0, 1),
	)
	ts.RunTicks(10)
	f := ts.World.Formations()[0]
	if f.Origin().Sub(f.Destination()).Len() < 5 {
		t.Fatalf("formation should still be travelling, origin %v", f.Origin())
	}
	for _, a := range ts.World.Agents() {
		if a.Settled() {
			t.Fatalf("%s reports settled while its formation is at %v", a.Label(), f.Origin())
		}
	}
	if ts.AllSettled() {
		t.Fatal("AllSettled should wait for the formation to arrive")
	}
}
