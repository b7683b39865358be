package nav

// Path is the result of a path search: tile-centre waypoints ordered from
// the first step after the start tile to the destination tile. An empty path
// means no route exists (or the requester already stands on the destination
// tile).
type Path struct {
	RequestID   int
	Waypoints   []Vec
	Destination Vec
}

// Empty reports whether the path has no waypoints.
func (p Path) Empty() bool { return len(p.Waypoints) == 0 }

// Len returns the waypoint count.
func (p Path) Len() int { return len(p.Waypoints) }

// Waypoint returns the i-th waypoint.
func (p Path) Waypoint(i int) Vec { return p.Waypoints[i] }

// PathRequester is anything that can be routed: it reports where it stands and
// receives the finished path.
type PathRequester interface {
	Position() Vec
	SetPath(Path)
}

// PathRequest is a queued search.
type PathRequest struct {
	ID          int
	Requester   PathRequester
	Destination Vec
}
