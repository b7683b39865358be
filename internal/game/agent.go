package game

import (
	"fmt"
	"math"

	"github.com/andrewtc/formation-movement/internal/formation"
	"github.com/andrewtc/formation-movement/internal/nav"
)

const (
	// atLocationToleranceSq is how close (squared) counts as "there".
	atLocationToleranceSq = 0.01
	// approachSpeedBonus is added to the speed of an agent still walking to
	// its slot.
	approachSpeedBonus = 0.5
	// maxShortcutSteps bounds how far down the flowfield an agent looks for a
	// straight-line shortcut each tick.
	maxShortcutSteps = 2
	// maxShortcutLookahead is the Manhattan distance past which shortcuts
	// stop being considered.
	maxShortcutLookahead = 16
)

// Agent is one mobile unit. It follows a path for solo orders and its slot or
// its formation's flowfield otherwise.
type Agent struct {
	id     int
	label  string
	pos    nav.Vec
	vel    nav.Vec
	target nav.Vec
	speed  float64
	radius float64
	trace  float64

	formation *formation.Formation
	slot      int

	route       []nav.Vec
	pathRequest int

	nav  *nav.Map
	log  *SimLog
	tick *int
}

// NewAgent creates an idle agent at pos. tick points at the owner's tick
// counter so log entries carry the current tick.
func NewAgent(id int, pos nav.Vec, cfg Config, m *nav.Map, log *SimLog, tick *int) *Agent {
	return &Agent{
		id:     id,
		label:  fmt.Sprintf("A%d", id),
		pos:    pos,
		target: pos,
		speed:  cfg.AgentSpeed,
		radius: cfg.AgentRadius,
		trace:  cfg.TraceRadius,
		slot:   -1,
		nav:    m,
		log:    log,
		tick:   tick,
	}
}

func (a *Agent) ID() int                         { return a.id }
func (a *Agent) Label() string                   { return a.label }
func (a *Agent) Position() nav.Vec               { return a.pos }
func (a *Agent) Velocity() nav.Vec               { return a.vel }
func (a *Agent) Target() nav.Vec                 { return a.target }
func (a *Agent) Radius() float64                 { return a.radius }
func (a *Agent) MaxSpeed() float64               { return a.speed }
func (a *Agent) Formation() *formation.Formation { return a.formation }
func (a *Agent) Slot() int                       { return a.slot }
func (a *Agent) PendingPath() int                { return a.pathRequest }
func (a *Agent) Route() []nav.Vec                { return a.route }

func (a *Agent) SetFormation(f *formation.Formation) { a.formation, a.slot = f, -1 }

// SetPosition teleports the agent; used by layouts and tests.
func (a *Agent) SetPosition(p nav.Vec) { a.pos = p }

func (a *Agent) OnAssignedToSlot(slot int) {
	a.slot = slot
	a.log.Add(*a.tick, a.label, "slot", "assigned", fmt.Sprintf("formation %d slot %d", a.formation.Index(), slot), float64(slot))
}

func (a *Agent) OnEvictedFromSlot(slot int) {
	if a.slot == slot {
		a.slot = -1
	}
	a.log.AddVerbose(*a.tick, a.label, "slot", "evicted", fmt.Sprintf("slot %d", slot), float64(slot))
}

// SetPath receives a finished search. The last tile centre is swapped for
// the exact requested point so the agent stops where it was sent.
func (a *Agent) SetPath(p nav.Path) {
	if p.RequestID != a.pathRequest {
		return
	}
	a.pathRequest = 0
	a.route = a.route[:0]
	switch {
	case !p.Empty():
		a.route = append(a.route, p.Waypoints[:p.Len()-1]...)
		a.route = append(a.route, p.Destination)
		a.log.Add(*a.tick, a.label, "path", "delivered", fmt.Sprintf("%d waypoints", p.Len()), float64(p.Len()))
	case a.nav.WorldToTile(a.pos) == a.nav.WorldToTile(p.Destination) && a.nav.IsPassable(a.nav.WorldToTile(p.Destination)):
		a.route = append(a.route, p.Destination)
		a.log.Add(*a.tick, a.label, "path", "delivered", "same tile", 0)
	default:
		a.log.Add(*a.tick, a.label, "path", "empty", fmt.Sprintf("no route to (%.1f,%.1f)", p.Destination.X, p.Destination.Y), 0)
	}
}

// requestPath queues a search, replacing any request still pending.
func (a *Agent) requestPath(dest nav.Vec) {
	a.cancelPath()
	a.route = a.route[:0]
	a.pathRequest = a.nav.RequestPath(a, dest)
	a.log.Add(*a.tick, a.label, "path", "requested", fmt.Sprintf("request %d to (%.1f,%.1f)", a.pathRequest, dest.X, dest.Y), float64(a.pathRequest))
}

func (a *Agent) cancelPath() {
	if a.pathRequest == 0 {
		return
	}
	if a.nav.CancelPath(a.pathRequest) {
		a.log.Add(*a.tick, a.label, "path", "cancelled", fmt.Sprintf("request %d", a.pathRequest), float64(a.pathRequest))
	}
	a.pathRequest = 0
}

// stop drops every movement goal.
func (a *Agent) stop() {
	a.cancelPath()
	a.route = a.route[:0]
	a.target = a.pos
}

// Settled reports whether the agent has nothing left to do: formation members
// stand on their slot once the formation has reached its destination, solo
// agents have no route and no pending search.
func (a *Agent) Settled() bool {
	if f := a.formation; f != nil {
		return f.Origin().DistSq(f.Destination()) <= atLocationToleranceSq &&
			a.slot >= 0 && a.atLocation(f.SlotWorldLocation(a.slot))
	}
	return a.pathRequest == 0 && len(a.route) == 0 && a.atLocation(a.target)
}

// flowDistance is the step distance from the agent's tile to its formation
// goal. Unreachable tiles and solo agents report math.MaxInt.
func (a *Agent) flowDistance() int {
	if a.formation == nil {
		return math.MaxInt
	}
	d, ok := a.formation.Flowfield().DistanceAt(a.nav.WorldToTile(a.pos))
	if !ok {
		return math.MaxInt
	}
	return d
}

func (a *Agent) atLocation(p nav.Vec) bool {
	return a.pos.DistSq(p) <= atLocationToleranceSq
}

func (a *Agent) canMoveDirectlyTo(p nav.Vec) bool {
	return a.nav.TraceIsPassable(a.pos, p, a.trace)
}

func (a *Agent) approachingFormation() bool {
	return a.formation != nil && a.slot >= 0 && !a.atLocation(a.formation.SlotWorldLocation(a.slot))
}

// Update picks a target and steps toward it.
func (a *Agent) Update(dt float64) {
	switch {
	case a.formation != nil && a.slot >= 0:
		slot := a.formation.SlotWorldLocation(a.slot)
		if a.canMoveDirectlyTo(slot) {
			a.target = slot
		} else {
			a.followFlowfield()
		}
	case a.formation != nil:
		a.followFlowfield()
	default:
		a.followRoute()
	}

	a.vel = nav.Vec{}
	if a.atLocation(a.target) {
		a.pos = a.pos.Lerp(a.target, 0.5)
		return
	}
	if !a.nav.IsPassable(a.nav.WorldToTile(a.pos)) {
		return
	}
	speed := a.speed
	if a.approachingFormation() {
		speed *= 1 + approachSpeedBonus
	}
	to := a.target.Sub(a.pos)
	dist := to.Len()
	a.vel = to.Scale(speed / dist)
	a.pos = a.pos.Add(to.Scale(math.Min(speed*dt, dist) / dist))
}

// followRoute targets the next route point, dropping points already reached.
func (a *Agent) followRoute() {
	for len(a.route) > 0 && a.atLocation(a.route[0]) {
		if len(a.route) == 1 {
			a.target = a.route[0]
			a.route = a.route[:0]
			return
		}
		a.route = a.route[1:]
	}
	if len(a.route) > 0 {
		a.target = a.route[0]
	}
}

// followFlowfield steers along the formation flowfield. The current target
// is kept while it stays directly reachable; otherwise the agent restarts
// from the next tile down the field. It then looks a few tiles further for a
// straight-line shortcut.
func (a *Agent) followFlowfield() {
	ff := a.formation.Flowfield()
	cur := a.nav.WorldToTile(a.pos)
	if !ff.Reachable(cur) {
		a.target = a.pos
		return
	}

	tgt := a.nav.WorldToTile(a.target)
	if tgt == cur || !ff.Reachable(tgt) || !a.canMoveDirectlyTo(a.target) {
		if next, ok := ff.Next(cur); ok {
			tgt = next
		} else {
			tgt = cur
		}
	}
	for i := 0; i < maxShortcutSteps; i++ {
		if ff.At(tgt).IsGoal() || nav.ManhattanDistance(cur, tgt) > maxShortcutLookahead {
			break
		}
		next, ok := ff.Next(tgt)
		if !ok || !a.canMoveDirectlyTo(a.nav.TileToWorld(next)) {
			break
		}
		tgt = next
	}
	a.target = a.nav.TileToWorld(tgt)
}
