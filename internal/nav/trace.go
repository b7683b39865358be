package nav

import "math"

// AreaIsPassable reports whether every tile overlapped by the axis-aligned
// square of half-extent radius around p exists and is passable.
func (m *Map) AreaIsPassable(p Vec, radius float64) bool {
	if radius < 0 {
		contractViolation("negative area radius %.3f", radius)
	}
	r := Vec{radius, radius}
	lo := m.WorldToTile(p.Sub(r))
	hi := m.WorldToTile(p.Add(r))
	for y := lo.Y; y <= hi.Y; y++ {
		for x := lo.X; x <= hi.X; x++ {
			if !m.IsPassable(TileVec{x, y}) {
				return false
			}
		}
	}
	return true
}

// TraceIsPassable reports whether a body of the given radius can travel in a
// straight line from a to b. Both endpoints and every grid-line crossing in
// between are checked.
func (m *Map) TraceIsPassable(a, b Vec, radius float64) bool {
	if !m.AreaIsPassable(a, radius) || !m.AreaIsPassable(b, radius) {
		return false
	}
	for _, p := range m.TraceGridIntercepts(a, b) {
		if !m.AreaIsPassable(p, radius) {
			return false
		}
	}
	return true
}

// TraceGridIntercepts returns, in order, the world points where the segment
// a->b crosses tile boundaries. b itself is never included.
func (m *Map) TraceGridIntercepts(a, b Vec) []Vec {
	s := m.cfg.TileSize
	o := a.Scale(1 / s)
	delta := b.Sub(a).Scale(1 / s)
	dist := delta.Len()
	if dist == 0 {
		return nil
	}
	dir := delta.Scale(1 / dist)

	tx := timeToGridLine(o.X, dir.X)
	ty := timeToGridLine(o.Y, dir.Y)
	stepX := math.Inf(1)
	if dir.X != 0 {
		stepX = math.Abs(1 / dir.X)
	}
	stepY := math.Inf(1)
	if dir.Y != 0 {
		stepY = math.Abs(1 / dir.Y)
	}

	var out []Vec
	for {
		t := math.Min(tx, ty)
		if t >= dist {
			return out
		}
		out = append(out, o.Add(dir.Scale(t)).Scale(s))
		// A corner crossing advances both axes at once.
		crossX, crossY := tx <= ty, ty <= tx
		if crossX {
			tx += stepX
		}
		if crossY {
			ty += stepY
		}
	}
}

// timeToGridLine returns how far along a unit direction component v the
// coordinate o travels before reaching the next integer line, or +Inf.
func timeToGridLine(o, v float64) float64 {
	var line float64
	switch {
	case v > 0:
		line = math.Floor(o) + 1
	case v < 0:
		line = math.Ceil(o) - 1
	default:
		return math.Inf(1)
	}
	return (line - o) / v
}
