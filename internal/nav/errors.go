package nav

import (
	"errors"
	"fmt"
)

var (
	// ErrDimensionTooLarge is returned when a grid is resized past its
	// power-of-two bound.
	ErrDimensionTooLarge = errors.New("nav: grid dimension exceeds maximum")
	// ErrHeapFull is returned by MinHeap.Insert at capacity.
	ErrHeapFull = errors.New("nav: heap is at capacity")
	// ErrHeapValueNotFound is returned by MinHeap.Update for a value that was
	// never inserted.
	ErrHeapValueNotFound = errors.New("nav: value not present in heap")
	// ErrFlowfieldPoolExhausted is returned when every pooled flowfield is
	// reserved.
	ErrFlowfieldPoolExhausted = errors.New("nav: flowfield pool exhausted")
	// ErrInvalidFlowfield is returned for a handle that is out of range or not
	// reserved.
	ErrInvalidFlowfield = errors.New("nav: invalid flowfield handle")
	// ErrGoalOutOfBounds is returned when a flowfield goal lies outside the
	// map.
	ErrGoalOutOfBounds = errors.New("nav: flowfield goal outside map")
	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("nav: invalid config")
)

// contractViolation aborts on a broken internal invariant. These are caller
// bugs or undersized configuration, never expected runtime outcomes.
func contractViolation(format string, args ...any) {
	panic(fmt.Sprintf("nav: contract violation: "+format, args...))
}

// must escalates an error from an internal call site to a contract violation.
func must(err error) {
	if err != nil {
		contractViolation("%v", err)
	}
}
