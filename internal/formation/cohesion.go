package formation

// CohesionFunc scales formation speed by how well members keep their slots.
// Results are in [0,1].
type CohesionFunc func(f *Formation) float64

// atSlotToleranceSq is how close (squared) a unit must be to its slot to
// count as in formation.
const atSlotToleranceSq = 0.01

// ConstantCohesion never slows the formation down.
func ConstantCohesion(*Formation) float64 { return 1 }

// WeightedCohesion is the squared fraction of slotted units standing on their
// slot, counted over occupied slots that sit on passable tiles. A formation
// with no such slots moves at full speed.
func WeightedCohesion(f *Formation) float64 {
	if f.UnitCount() == 0 {
		return 0
	}
	passable := 0
	for i := range f.slots {
		if f.slots[i].occupant == nil {
			continue
		}
		if f.nav.IsPassable(f.nav.WorldToTile(f.SlotWorldLocation(i))) {
			passable++
		}
	}
	if passable == 0 {
		return 1
	}
	inPlace := 0
	for _, u := range f.units {
		slot, ok := f.slotOf[u.ID()]
		if !ok {
			continue
		}
		if u.Position().DistSq(f.SlotWorldLocation(slot)) <= atSlotToleranceSq {
			inPlace++
		}
	}
	c := float64(inPlace) / float64(passable)
	if c > 1 {
		c = 1
	}
	return c * c
}
