package formation

// AssignDistancePadding is added to a layout's extent (in spacing units) to
// get the distance within which members are given slots.
const AssignDistancePadding = 1.0

// Behavior lays out slots and decides who stands where. Recalculate runs on
// a formation whose slots were just cleared; ReassignSlots runs on one whose
// units were just evicted.
type Behavior interface {
	Recalculate(f *Formation)
	ReassignSlots(f *Formation)
	AssignDistance() float64
}
