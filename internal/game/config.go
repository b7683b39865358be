package game

import (
	"errors"
	"fmt"

	"github.com/andrewtc/formation-movement/internal/formation"
	"github.com/andrewtc/formation-movement/internal/nav"
)

var (
	ErrInvalidConfig   = errors.New("game: invalid config")
	ErrBadLayout       = errors.New("game: malformed layout")
	ErrUnknownLayout   = errors.New("game: unknown layout")
	ErrNoFormation     = errors.New("game: no such formation")
	ErrTileOutOfBounds = errors.New("game: tile outside map")
)

// Cohesion modes accepted by Config.Cohesion.
const (
	CohesionConstant = "constant"
	CohesionWeighted = "weighted"
)

// Config tunes a World. Start from DefaultConfig.
type Config struct {
	Nav nav.Config

	// TimeStep is the simulated seconds per tick.
	TimeStep float64
	// AgentSpeed is the cruising speed in world units per second.
	AgentSpeed float64
	// AgentRadius is the collision radius used for push-apart and walls.
	AgentRadius float64
	// TraceRadius is the body radius for straight-line reachability checks.
	TraceRadius float64
	// FormationSpacing is the slot spacing of newly ordered formations.
	FormationSpacing float64
	// Shape picks the behavior for new formations: "box" or a formation.Shape
	// name ("line", "wedge", "column", "echelon").
	Shape string
	// Cohesion is CohesionConstant or CohesionWeighted.
	Cohesion string
	// GroupOrders makes single-agent orders create a formation too.
	GroupOrders bool
	// Verbose records per-tick entries in the SimLog.
	Verbose bool
}

func DefaultConfig() Config {
	return Config{
		Nav:              nav.DefaultConfig(),
		TimeStep:         1.0 / 60.0,
		AgentSpeed:       6,
		AgentRadius:      0.5,
		TraceRadius:      formation.DefaultTraceRadius,
		FormationSpacing: 1,
		Shape:            "box",
		Cohesion:         CohesionConstant,
	}
}

// Validate reports settings a World cannot run with.
func (c Config) Validate() error {
	if err := c.Nav.Validate(); err != nil {
		return err
	}
	switch {
	case c.TimeStep <= 0:
		return fmt.Errorf("time step %.4f must be positive: %w", c.TimeStep, ErrInvalidConfig)
	case c.AgentSpeed <= 0:
		return fmt.Errorf("agent speed %.2f must be positive: %w", c.AgentSpeed, ErrInvalidConfig)
	case c.AgentRadius < 0 || c.TraceRadius < 0:
		return fmt.Errorf("radii %.2f/%.2f must not be negative: %w", c.AgentRadius, c.TraceRadius, ErrInvalidConfig)
	case c.FormationSpacing <= 0:
		return fmt.Errorf("formation spacing %.2f must be positive: %w", c.FormationSpacing, ErrInvalidConfig)
	case c.Cohesion != CohesionConstant && c.Cohesion != CohesionWeighted:
		return fmt.Errorf("cohesion mode %q: %w", c.Cohesion, ErrInvalidConfig)
	}
	if _, err := c.newBehavior(); err != nil {
		return err
	}
	return nil
}

func (c Config) newBehavior() (formation.Behavior, error) {
	if c.Shape == "" || c.Shape == "box" {
		return formation.NewBoxBehavior(c.FormationSpacing), nil
	}
	for _, s := range formation.Shapes() {
		if s.String() == c.Shape {
			return formation.NewShapeBehavior(s, c.FormationSpacing), nil
		}
	}
	return nil, fmt.Errorf("formation shape %q: %w", c.Shape, ErrInvalidConfig)
}

func (c Config) cohesionFunc() formation.CohesionFunc {
	if c.Cohesion == CohesionWeighted {
		return formation.WeightedCohesion
	}
	return formation.ConstantCohesion
}
