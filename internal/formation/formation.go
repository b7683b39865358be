package formation

import (
	"fmt"
	"image/color"
	"math"

	"github.com/andrewtc/formation-movement/internal/nav"
)

// DefaultTraceRadius is the body radius used when testing whether the
// formation origin can head straight for its destination.
const DefaultTraceRadius = 0.45

// Unit is a formation member.
type Unit interface {
	ID() int
	Position() nav.Vec
	MaxSpeed() float64
	Formation() *Formation
	SetFormation(*Formation)
	OnAssignedToSlot(slot int)
	OnEvictedFromSlot(slot int)
}

// Navigator is the slice of the navigation map a formation needs: flowfield
// ownership, coordinate transforms and passability queries. *nav.Map
// satisfies it.
type Navigator interface {
	CreateFlowfield(goal nav.TileVec) (nav.FlowfieldHandle, error)
	DestroyFlowfield(h nav.FlowfieldHandle) error
	Flowfield(h nav.FlowfieldHandle) *nav.Flowfield
	WorldToTile(p nav.Vec) nav.TileVec
	TileToWorld(t nav.TileVec) nav.Vec
	IsPassable(t nav.TileVec) bool
	TraceIsPassable(a, b nav.Vec, radius float64) bool
}

// Slot is a planned position relative to the formation origin and facing.
type Slot struct {
	Offset   nav.Vec
	occupant Unit
}

func (s *Slot) Taken() bool    { return s.occupant != nil }
func (s *Slot) Occupant() Unit { return s.occupant }

// Formation moves a group of units toward a destination, steering its origin
// along a flowfield and keeping members in behavior-defined slots.
type Formation struct {
	index       int
	color       color.RGBA
	nav         Navigator
	behavior    Behavior
	cohesion    CohesionFunc
	traceRadius float64

	origin      nav.Vec
	destination nav.Vec
	facing      float64

	flowfield nav.FlowfieldHandle
	slots     []Slot
	units     []Unit
	slotOf    map[int]int
	modified  bool
}

// Option configures a Formation at construction.
type Option func(*Formation)

// WithCohesion replaces the default ConstantCohesion.
func WithCohesion(fn CohesionFunc) Option {
	return func(f *Formation) { f.cohesion = fn }
}

// WithColor overrides the index palette colour.
func WithColor(c color.RGBA) Option {
	return func(f *Formation) { f.color = c }
}

// WithTraceRadius sets the radius for the straight-line shortcut test.
func WithTraceRadius(r float64) Option {
	return func(f *Formation) { f.traceRadius = r }
}

// New creates a formation and reserves a flowfield toward destination. The
// caller must Destroy it to release the flowfield.
func New(navigator Navigator, index int, origin, destination nav.Vec, behavior Behavior, opts ...Option) (*Formation, error) {
	if behavior == nil {
		return nil, fmt.Errorf("formation %d: nil behavior", index)
	}
	h, err := navigator.CreateFlowfield(navigator.WorldToTile(destination))
	if err != nil {
		return nil, fmt.Errorf("formation %d toward %v: %w", index, destination, err)
	}
	f := &Formation{
		index:       index,
		color:       ColorByIndex(index),
		nav:         navigator,
		behavior:    behavior,
		cohesion:    ConstantCohesion,
		traceRadius: DefaultTraceRadius,
		origin:      origin,
		destination: destination,
		flowfield:   h,
		slotOf:      make(map[int]int),
	}
	if to := destination.Sub(origin); to.LenSq() > 0 {
		f.facing = to.Angle()
	}
	for _, o := range opts {
		o(f)
	}
	return f, nil
}

// Destroy removes every member and releases the flowfield. Calling it twice
// is harmless.
func (f *Formation) Destroy() error {
	f.RemoveAllUnits()
	if f.flowfield == nav.NoFlowfield {
		return nil
	}
	h := f.flowfield
	f.flowfield = nav.NoFlowfield
	if err := f.nav.DestroyFlowfield(h); err != nil {
		return fmt.Errorf("formation %d: %w", f.index, err)
	}
	return nil
}

func (f *Formation) Index() int           { return f.index }
func (f *Formation) Color() color.RGBA    { return f.color }
func (f *Formation) Origin() nav.Vec      { return f.origin }
func (f *Formation) Destination() nav.Vec { return f.destination }
func (f *Formation) FacingAngle() float64 { return f.facing }
func (f *Formation) Behavior() Behavior   { return f.behavior }
func (f *Formation) Modified() bool       { return f.modified }

// Facing is the unit vector of FacingAngle.
func (f *Formation) Facing() nav.Vec { return nav.FromAngle(f.facing) }

func (f *Formation) HasFlowfield() bool                   { return f.flowfield != nav.NoFlowfield }
func (f *Formation) FlowfieldHandle() nav.FlowfieldHandle { return f.flowfield }

// Flowfield resolves the formation's flowfield. It panics after Destroy.
func (f *Formation) Flowfield() *nav.Flowfield { return f.nav.Flowfield(f.flowfield) }

// Units returns the members in join order.
func (f *Formation) Units() []Unit {
	out := make([]Unit, len(f.units))
	copy(out, f.units)
	return out
}

func (f *Formation) UnitCount() int { return len(f.units) }

func (f *Formation) ContainsUnit(u Unit) bool { return f.memberIndex(u) >= 0 }

func (f *Formation) memberIndex(u Unit) int {
	for i, m := range f.units {
		if m.ID() == u.ID() {
			return i
		}
	}
	return -1
}

// AddUnit makes u a member. The slot layout is rebuilt on the next Update.
func (f *Formation) AddUnit(u Unit) error {
	if f.ContainsUnit(u) {
		return nil
	}
	if u.Formation() != nil {
		return fmt.Errorf("add unit %d to formation %d: %w", u.ID(), f.index, ErrAlreadyInFormation)
	}
	f.units = append(f.units, u)
	u.SetFormation(f)
	f.modified = true
	return nil
}

// RemoveUnit evicts u from its slot and drops it from the formation. It
// reports whether u was a member.
func (f *Formation) RemoveUnit(u Unit) bool {
	i := f.memberIndex(u)
	if i < 0 {
		return false
	}
	f.units = append(f.units[:i], f.units[i+1:]...)
	if slot, ok := f.slotOf[u.ID()]; ok {
		f.evict(slot)
	}
	u.SetFormation(nil)
	f.modified = true
	return true
}

func (f *Formation) RemoveAllUnits() {
	for i := len(f.units) - 1; i >= 0; i-- {
		f.RemoveUnit(f.units[i])
	}
}

// --- slots ---

func (f *Formation) SlotCount() int { return len(f.slots) }

func (f *Formation) validSlot(i int) bool { return i >= 0 && i < len(f.slots) }

// AddSlot appends a slot at a local offset: X runs along the facing's
// perpendicular, Y along the facing.
func (f *Formation) AddSlot(offset nav.Vec) {
	f.slots = append(f.slots, Slot{Offset: offset})
}

func (f *Formation) removeAllSlots() {
	f.EvictAllUnits()
	f.slots = f.slots[:0]
}

// SlotOffset returns slot i's offset rotated into world orientation.
func (f *Formation) SlotOffset(i int) nav.Vec {
	if !f.validSlot(i) {
		panic(fmt.Sprintf("formation %d: slot %d of %d", f.index, i, len(f.slots)))
	}
	facing := f.Facing()
	o := f.slots[i].Offset
	return facing.Perpendicular().Scale(o.X).Add(facing.Scale(o.Y))
}

// SlotWorldLocation returns where slot i sits in the world.
func (f *Formation) SlotWorldLocation(i int) nav.Vec {
	return f.origin.Add(f.SlotOffset(i))
}

// RelativePosition projects a world point into the formation's local frame.
func (f *Formation) RelativePosition(p nav.Vec) nav.Vec {
	d := p.Sub(f.origin)
	facing := f.Facing()
	return nav.Vec{X: d.Dot(facing.Perpendicular()), Y: d.Dot(facing)}
}

// SlotOf returns the slot u holds.
func (f *Formation) SlotOf(u Unit) (int, bool) {
	i, ok := f.slotOf[u.ID()]
	return i, ok
}

// SlotOccupant returns the unit in slot i, or nil.
func (f *Formation) SlotOccupant(i int) Unit {
	if !f.validSlot(i) {
		return nil
	}
	return f.slots[i].occupant
}

// FirstFreeSlotIndex returns the lowest unoccupied slot, or -1.
func (f *Formation) FirstFreeSlotIndex() int {
	for i := range f.slots {
		if !f.slots[i].Taken() {
			return i
		}
	}
	return -1
}

// AssignUnitToSlot binds u to slot i, evicting whoever held i and whatever
// slot u held before.
func (f *Formation) AssignUnitToSlot(u Unit, i int) error {
	if !f.validSlot(i) {
		return fmt.Errorf("assign unit %d to slot %d of %d: %w", u.ID(), i, len(f.slots), ErrInvalidSlot)
	}
	if !f.ContainsUnit(u) {
		return fmt.Errorf("assign unit %d to formation %d: %w", u.ID(), f.index, ErrNotMember)
	}
	if cur, ok := f.slotOf[u.ID()]; ok && cur == i {
		return nil
	}
	if f.slots[i].Taken() {
		f.evict(i)
	}
	if cur, ok := f.slotOf[u.ID()]; ok {
		f.evict(cur)
	}
	f.slots[i].occupant = u
	f.slotOf[u.ID()] = i
	u.OnAssignedToSlot(i)
	return nil
}

// EvictUnitFromSlot empties slot i. An empty slot is left as is.
func (f *Formation) EvictUnitFromSlot(i int) error {
	if !f.validSlot(i) {
		return fmt.Errorf("evict slot %d of %d: %w", i, len(f.slots), ErrInvalidSlot)
	}
	f.evict(i)
	return nil
}

func (f *Formation) evict(i int) {
	u := f.slots[i].occupant
	if u == nil {
		return
	}
	f.slots[i].occupant = nil
	delete(f.slotOf, u.ID())
	u.OnEvictedFromSlot(i)
}

func (f *Formation) EvictAllUnits() {
	for i := range f.slots {
		f.evict(i)
	}
}

// AssignDistance is the current behavior's slot assignment threshold.
func (f *Formation) AssignDistance() float64 { return f.behavior.AssignDistance() }

func (f *Formation) AssignDistanceSquared() float64 {
	d := f.behavior.AssignDistance()
	return d * d
}

// CenterOfMass is the mean member position, or the origin when empty.
func (f *Formation) CenterOfMass() nav.Vec {
	if len(f.units) == 0 {
		return f.origin
	}
	var sum nav.Vec
	for _, u := range f.units {
		sum = sum.Add(u.Position())
	}
	return sum.Scale(1 / float64(len(f.units)))
}

// Cohesion evaluates the configured cohesion function.
func (f *Formation) Cohesion() float64 { return f.cohesion(f) }

// MaxSpeed is the speed of the slowest member.
func (f *Formation) MaxSpeed() float64 {
	if len(f.units) == 0 {
		return 0
	}
	speed := math.Inf(1)
	for _, u := range f.units {
		speed = math.Min(speed, u.MaxSpeed())
	}
	return speed
}

// Recalculate rebuilds the slot layout for the current membership. Every
// unit ends up slot-less.
func (f *Formation) Recalculate() {
	f.removeAllSlots()
	f.behavior.Recalculate(f)
}

// ReassignSlots evicts everyone and lets the behavior fill slots again.
func (f *Formation) ReassignSlots() {
	f.EvictAllUnits()
	f.behavior.ReassignSlots(f)
}

// Update advances the origin toward the destination and re-plans slots.
func (f *Formation) Update(dt float64) {
	speed := f.MaxSpeed() * f.cohesion(f)

	toGoal := f.destination.Sub(f.origin)
	tile := f.nav.WorldToTile(f.origin)
	if f.nav.IsPassable(tile) && !f.nav.TraceIsPassable(f.origin, f.destination, f.traceRadius) {
		if next, ok := f.Flowfield().Next(tile); ok {
			toGoal = f.nav.TileToWorld(next).Sub(f.origin)
		}
	}
	if dist := toGoal.Len(); dist > 0 {
		dir := toGoal.Scale(1 / dist)
		step := math.Min(speed*dt, dist)
		if step > 0 {
			f.origin = f.origin.Add(dir.Scale(step))
			f.facing = dir.Angle()
		}
	}

	if f.modified {
		f.Recalculate()
		f.ReassignSlots()
		f.modified = false
		return
	}
	if f.needsReassign() {
		f.ReassignSlots()
	}
}

// needsReassign reports whether any slotted member drifted out of range or
// any slot-less member came into range.
func (f *Formation) needsReassign() bool {
	limit := f.AssignDistanceSquared()
	for _, u := range f.units {
		d := u.Position().DistSq(f.origin)
		_, slotted := f.slotOf[u.ID()]
		if slotted && d > limit || !slotted && d <= limit {
			return true
		}
	}
	return false
}

// InRange reports whether u is within the assignment threshold.
func (f *Formation) InRange(u Unit) bool {
	return u.Position().DistSq(f.origin) <= f.AssignDistanceSquared()
}

// Slots returns a snapshot of slot offsets and occupancy for drawing.
func (f *Formation) Slots() []Slot {
	out := make([]Slot, len(f.slots))
	copy(out, f.slots)
	return out
}
