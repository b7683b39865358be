package nav

import "fmt"

// Config sizes a Map. The zero value is not usable; start from DefaultConfig.
type Config struct {
	// MaxDimensionPow2 bounds width and height to 1<<MaxDimensionPow2 tiles.
	MaxDimensionPow2 uint
	// MaxFlowfields is the flowfield pool capacity.
	MaxFlowfields int
	// MaxPathfindsPerTick caps how many queued requests Update services.
	MaxPathfindsPerTick int
	// TileSize is the world-space edge length of one tile.
	TileSize float64
	// OpenListCapacity sizes the A* open list. Zero means one entry per map
	// tile, which can never overflow.
	OpenListCapacity int
}

// DefaultConfig returns the stock sizing: up to 1024x1024 tiles, 16 pooled
// flowfields, one path search per tick, unit tiles.
func DefaultConfig() Config {
	return Config{
		MaxDimensionPow2:    10,
		MaxFlowfields:       16,
		MaxPathfindsPerTick: 1,
		TileSize:            1,
	}
}

// Validate reports configuration a Map cannot run with.
func (c Config) Validate() error {
	switch {
	case c.MaxDimensionPow2 == 0 || c.MaxDimensionPow2 > 15:
		return fmt.Errorf("max dimension power %d out of range [1,15]: %w", c.MaxDimensionPow2, ErrInvalidConfig)
	case c.MaxFlowfields <= 0:
		return fmt.Errorf("max flowfields %d must be positive: %w", c.MaxFlowfields, ErrInvalidConfig)
	case c.MaxPathfindsPerTick <= 0:
		return fmt.Errorf("max pathfinds per tick %d must be positive: %w", c.MaxPathfindsPerTick, ErrInvalidConfig)
	case c.TileSize <= 0:
		return fmt.Errorf("tile size %.3f must be positive: %w", c.TileSize, ErrInvalidConfig)
	case c.OpenListCapacity < 0:
		return fmt.Errorf("open list capacity %d must not be negative: %w", c.OpenListCapacity, ErrInvalidConfig)
	}
	return nil
}

// ValidateSize reports whether a width x height map fits the configuration.
func (c Config) ValidateSize(width, height int) error {
	maxDim := 1 << c.MaxDimensionPow2
	if width <= 0 || height <= 0 || width > maxDim || height > maxDim {
		return fmt.Errorf("map %dx%d (max %d): %w", width, height, maxDim, ErrDimensionTooLarge)
	}
	return nil
}
