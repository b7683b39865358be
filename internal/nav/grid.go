package nav

import "fmt"

// TileVec is an integer tile coordinate or tile offset.
type TileVec struct {
	X, Y int
}

func (t TileVec) Add(o TileVec) TileVec { return TileVec{t.X + o.X, t.Y + o.Y} }
func (t TileVec) Sub(o TileVec) TileVec { return TileVec{t.X - o.X, t.Y - o.Y} }

func (t TileVec) String() string { return fmt.Sprintf("(%d,%d)", t.X, t.Y) }

// ManhattanDistance returns |dx| + |dy| between two tiles.
func ManhattanDistance(a, b TileVec) int {
	return absInt(a.X-b.X) + absInt(a.Y-b.Y)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Grid is a bounded row-major tile container. Width and height never exceed
// 1<<maxDimPow2. Storage is allocated on the first Resize that needs it and
// reused after that.
type Grid[T any] struct {
	maxDimPow2 uint
	width      int
	height     int
	tiles      []T
}

// NewGrid returns an empty grid bounded by 1<<maxDimPow2 on each axis.
func NewGrid[T any](maxDimPow2 uint) *Grid[T] {
	return &Grid[T]{maxDimPow2: maxDimPow2}
}

// MaxDimension is the largest width or height the grid accepts.
func (g *Grid[T]) MaxDimension() int { return 1 << g.maxDimPow2 }

func (g *Grid[T]) Width() int  { return g.width }
func (g *Grid[T]) Height() int { return g.height }

// Resize changes the grid dimensions and zeroes every tile.
func (g *Grid[T]) Resize(width, height int) error {
	maxDim := g.MaxDimension()
	if width < 0 || height < 0 || width > maxDim || height > maxDim {
		return fmt.Errorf("resize to %dx%d (max %d): %w", width, height, maxDim, ErrDimensionTooLarge)
	}
	size := width * height
	if cap(g.tiles) < size {
		g.tiles = make([]T, size)
	} else {
		g.tiles = g.tiles[:size]
	}
	g.width = width
	g.height = height
	var zero T
	g.Clear(zero)
	return nil
}

// Clear overwrites every tile with fill.
func (g *Grid[T]) Clear(fill T) {
	for i := range g.tiles {
		g.tiles[i] = fill
	}
}

// Contains reports whether pos lies inside the grid.
func (g *Grid[T]) Contains(pos TileVec) bool {
	return pos.X >= 0 && pos.Y >= 0 && pos.X < g.width && pos.Y < g.height
}

// At returns the tile data at pos. Callers must check Contains first.
func (g *Grid[T]) At(pos TileVec) *T {
	if !g.Contains(pos) {
		contractViolation("tile %v outside %dx%d grid", pos, g.width, g.height)
	}
	return &g.tiles[pos.Y*g.width+pos.X]
}

// Tile returns a handle for pos. The handle may be invalid.
func (g *Grid[T]) Tile(pos TileVec) Tile[T] {
	return Tile[T]{grid: g, pos: pos}
}

// Tile is a (grid, position) handle. It is valid iff the grid contains the
// position.
type Tile[T any] struct {
	grid *Grid[T]
	pos  TileVec
}

func (t Tile[T]) Valid() bool {
	return t.grid != nil && t.grid.Contains(t.pos)
}

func (t Tile[T]) Position() TileVec { return t.pos }

// Data dereferences the handle. Dereferencing an invalid handle is a
// contract violation.
func (t Tile[T]) Data() *T {
	if t.grid == nil {
		contractViolation("dereference of detached tile %v", t.pos)
	}
	return t.grid.At(t.pos)
}

// Relative returns the handle offset from t.
func (t Tile[T]) Relative(offset TileVec) Tile[T] {
	return Tile[T]{grid: t.grid, pos: t.pos.Add(offset)}
}

// Adjacent returns the neighbouring handle in direction d.
func (t Tile[T]) Adjacent(d Direction) Tile[T] {
	return t.Relative(d.Vector())
}
