package nav

// Direction is one of the four grid directions, or DirNone.
type Direction uint8

const (
	DirNone Direction = iota
	DirEast
	DirNorth
	DirWest
	DirSouth
)

// DirectionCount is the number of real (non-None) directions.
const DirectionCount = 4

// dirVectors is indexed by Direction. Y grows downward, so North is -Y.
var dirVectors = [DirectionCount + 1]TileVec{
	DirNone:  {0, 0},
	DirEast:  {1, 0},
	DirNorth: {0, -1},
	DirWest:  {-1, 0},
	DirSouth: {0, 1},
}

var dirOpposite = [DirectionCount + 1]Direction{
	DirNone:  DirNone,
	DirEast:  DirWest,
	DirNorth: DirSouth,
	DirWest:  DirEast,
	DirSouth: DirNorth,
}

var dirCounterClockwise = [DirectionCount + 1]Direction{
	DirNone:  DirNone,
	DirEast:  DirNorth,
	DirNorth: DirWest,
	DirWest:  DirSouth,
	DirSouth: DirEast,
}

// Opposite returns the direction pointing the other way.
func (d Direction) Opposite() Direction {
	if d > DirSouth {
		return DirNone
	}
	return dirOpposite[d]
}

// CounterClockwise returns the next direction in E, N, W, S order.
func (d Direction) CounterClockwise() Direction {
	if d > DirSouth {
		return DirNone
	}
	return dirCounterClockwise[d]
}

// Vector returns the unit tile offset for d. DirNone maps to (0,0).
func (d Direction) Vector() TileVec {
	if d > DirSouth {
		return TileVec{}
	}
	return dirVectors[d]
}

// WorldVector returns d as a unit vector in world space.
func (d Direction) WorldVector() Vec {
	v := d.Vector()
	return Vec{float64(v.X), float64(v.Y)}
}

func (d Direction) String() string {
	switch d {
	case DirEast:
		return "east"
	case DirNorth:
		return "north"
	case DirWest:
		return "west"
	case DirSouth:
		return "south"
	default:
		return "none"
	}
}

// Directions lists the four directions in the rotational order every sweep
// uses: east first, then counter-clockwise.
func Directions() [DirectionCount]Direction {
	var out [DirectionCount]Direction
	d := DirEast
	for i := range out {
		out[i] = d
		d = d.CounterClockwise()
	}
	return out
}
