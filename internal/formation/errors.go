package formation

import "errors"

var (
	// ErrInvalidSlot is returned for a slot index outside the formation.
	ErrInvalidSlot = errors.New("formation: invalid slot index")
	// ErrNotMember is returned when a unit is not part of the formation.
	ErrNotMember = errors.New("formation: unit is not a member")
	// ErrAlreadyInFormation is returned when adding a unit that belongs to
	// another formation.
	ErrAlreadyInFormation = errors.New("formation: unit already belongs to a formation")
)
