package game

import (
	"fmt"
	"sort"

	"github.com/andrewtc/formation-movement/internal/nav"
)

// Layout is a parsed ASCII map: '#' is blocked, '.' is open, 'u' is open with
// an agent spawned on it.
type Layout struct {
	Name    string
	Width   int
	Height  int
	blocked []bool
	Spawns  []nav.TileVec
}

// ParseLayout reads rows top to bottom. All rows must have the same width.
func ParseLayout(name string, rows []string) (*Layout, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("layout %q is empty: %w", name, ErrBadLayout)
	}
	l := &Layout{
		Name:    name,
		Width:   len(rows[0]),
		Height:  len(rows),
		blocked: make([]bool, len(rows[0])*len(rows)),
	}
	for y, row := range rows {
		if len(row) != l.Width {
			return nil, fmt.Errorf("layout %q row %d has width %d, want %d: %w", name, y, len(row), l.Width, ErrBadLayout)
		}
		for x, c := range []byte(row) {
			switch c {
			case '#':
				l.blocked[y*l.Width+x] = true
			case '.':
			case 'u':
				l.Spawns = append(l.Spawns, nav.TileVec{X: x, Y: y})
			default:
				return nil, fmt.Errorf("layout %q has %q at (%d,%d): %w", name, c, x, y, ErrBadLayout)
			}
		}
	}
	return l, nil
}

// Blocked reports whether (x,y) is a wall. Tiles off the layout are walls.
func (l *Layout) Blocked(x, y int) bool {
	if x < 0 || y < 0 || x >= l.Width || y >= l.Height {
		return true
	}
	return l.blocked[y*l.Width+x]
}

// apply copies the walls onto a map of the same size.
func (l *Layout) apply(m *nav.Map) {
	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; x++ {
			m.SetPassable(nav.TileVec{X: x, Y: y}, !l.blocked[y*l.Width+x])
		}
	}
}

// builtinLayouts are the maps shipped with the commands.
var builtinLayouts = map[string][]string{
	"open": {
		"........................",
		"........................",
		"..uuu...................",
		"..uuu...................",
		"..uuu...................",
		"........................",
		"........................",
		"........................",
		"........................",
		"........................",
		"........................",
		"........................",
	},
	"wall-gap": {
		"........................",
		"...........#............",
		"..uuu......#............",
		"..uuu......#............",
		"..uuu......#............",
		"...........#............",
		"...........#............",
		"...........#............",
		"........................",
		"...........#............",
		"...........#............",
		"...........#............",
	},
	"corridor": {
		"########################",
		"#......................#",
		"#.uu...................#",
		"#.uu..###########......#",
		"#.....#.........#......#",
		"#.....#.........#......#",
		"#.....#.........#......#",
		"#.....###########......#",
		"#......................#",
		"########################",
	},
	"maze": {
		"uu.#..........#.........",
		"uu.#.########.#.#######.",
		"...#.#......#.#.#.......",
		"...#.#.####.#.#.#.######",
		".....#.#..#.#...#......#",
		"######.#..#.#########..#",
		"........#.#...........#.",
		".######.#.###########.#.",
		".#......#.............#.",
		".#.######.#############.",
		".#.......#..............",
		".#######...############.",
	},
}

// LayoutNames lists the built-in layouts in sorted order.
func LayoutNames() []string {
	names := make([]string, 0, len(builtinLayouts))
	for name := range builtinLayouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NamedLayout parses a built-in layout.
func NamedLayout(name string) (*Layout, error) {
	rows, ok := builtinLayouts[name]
	if !ok {
		return nil, fmt.Errorf("layout %q (have %v): %w", name, LayoutNames(), ErrUnknownLayout)
	}
	return ParseLayout(name, rows)
}
