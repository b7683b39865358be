package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/andrewtc/formation-movement/internal/game"
	"github.com/andrewtc/formation-movement/internal/nav"
)

// tui drives a World in the terminal, one cell per tile.
type tui struct {
	screen tcell.Screen
	world  *game.World

	paused        bool
	showFlowfield bool
	cursor        nav.TileVec
	status        string
}

func newTUI(screen tcell.Screen, w *game.World) *tui {
	return &tui{
		screen: screen,
		world:  w,
		cursor: nav.TileVec{X: w.Nav().Width() / 2, Y: w.Nav().Height() / 2},
		status: "arrows move cursor, m move all, o opposite corner, x wall, f flowfield, h halt, space pause, q quit",
	}
}

var (
	styleFloor  = tcell.StyleDefault.Foreground(tcell.NewRGBColor(70, 76, 70))
	styleWall   = tcell.StyleDefault.Foreground(tcell.NewRGBColor(150, 140, 128))
	styleSolo   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleStatus = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleCursor = tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
)

// arrowRunes maps a tile step to the rune drawn on the flowfield overlay.
var arrowRunes = map[nav.TileVec]rune{
	{X: 1, Y: 0}:  '>',
	{X: -1, Y: 0}: '<',
	{X: 0, Y: 1}:  'v',
	{X: 0, Y: -1}: '^',
}

func (t *tui) draw() {
	t.screen.Clear()
	m := t.world.Nav()
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			if m.IsPassable(nav.TileVec{X: x, Y: y}) {
				t.screen.SetContent(x, y, '.', nil, styleFloor)
			} else {
				t.screen.SetContent(x, y, '#', nil, styleWall)
			}
		}
	}

	for _, f := range t.world.Formations() {
		c := f.Color()
		style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
		if t.showFlowfield {
			ff := f.Flowfield()
			for y := 0; y < ff.Height(); y++ {
				for x := 0; x < ff.Width(); x++ {
					pos := nav.TileVec{X: x, Y: y}
					if !ff.Reachable(pos) || ff.At(pos).IsGoal() {
						continue
					}
					r := arrowRunes[ff.At(pos).BestAdjacency().Vector()]
					t.screen.SetContent(x, y, r, nil, style.Dim(true))
				}
			}
		}
		d := m.WorldToTile(f.Destination())
		t.screen.SetContent(d.X, d.Y, 'X', nil, style)
		o := m.WorldToTile(f.Origin())
		t.screen.SetContent(o.X, o.Y, '@', nil, style.Bold(true))
	}

	for _, a := range t.world.Agents() {
		p := m.WorldToTile(a.Position())
		if !m.Contains(p) {
			continue
		}
		r, style := 'a', styleSolo
		if f := a.Formation(); f != nil {
			c := f.Color()
			r = rune('0' + f.Index()%10)
			style = tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
		}
		t.screen.SetContent(p.X, p.Y, r, nil, style)
	}

	mainc, _, _, _ := t.screen.GetContent(t.cursor.X, t.cursor.Y)
	t.screen.SetContent(t.cursor.X, t.cursor.Y, mainc, nil, styleCursor)

	state := "running"
	if t.paused {
		state = "paused"
	}
	t.drawLine(0, m.Height()+1, fmt.Sprintf("T=%d %s  agents=%d formations=%d  cursor=%v",
		t.world.Tick(), state, len(t.world.Agents()), len(t.world.Formations()), t.cursor))
	t.drawLine(0, m.Height()+2, t.status)
	t.screen.Show()
}

func (t *tui) drawLine(x, y int, s string) {
	for i, r := range s {
		t.screen.SetContent(x+i, y, r, nil, styleStatus)
	}
}

// handleInput applies one event. It returns false when the program should
// exit.
func (t *tui) handleInput(ev tcell.Event) bool {
	ev2, ok := ev.(*tcell.EventKey)
	if !ok {
		return true
	}
	m := t.world.Nav()
	switch ev2.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		t.moveCursor(0, -1)
	case tcell.KeyDown:
		t.moveCursor(0, 1)
	case tcell.KeyLeft:
		t.moveCursor(-1, 0)
	case tcell.KeyRight:
		t.moveCursor(1, 0)
	case tcell.KeyRune:
		switch ev2.Rune() {
		case 'q':
			return false
		case ' ':
			t.paused = !t.paused
		case 'f':
			t.showFlowfield = !t.showFlowfield
		case 'h':
			t.world.Halt(t.world.Agents())
			t.status = "halted"
		case 'x':
			if err := t.world.SetPassable(t.cursor, !m.IsPassable(t.cursor)); err != nil {
				t.status = err.Error()
			}
		case 'm':
			t.order(m.TileToWorld(t.cursor))
		case 'o':
			t.order(t.oppositeCorner())
		}
	}
	return true
}

func (t *tui) moveCursor(dx, dy int) {
	m := t.world.Nav()
	t.cursor.X = min(max(t.cursor.X+dx, 0), m.Width()-1)
	t.cursor.Y = min(max(t.cursor.Y+dy, 0), m.Height()-1)
}

func (t *tui) order(dest nav.Vec) {
	if _, err := t.world.OrderMove(t.world.Agents(), dest); err != nil {
		t.status = err.Error()
		return
	}
	t.status = fmt.Sprintf("ordered %d agents to (%.1f,%.1f)", len(t.world.Agents()), dest.X, dest.Y)
}

// oppositeCorner returns the centre of the passable tile nearest the map
// corner diagonally opposite the agents' mean position.
func (t *tui) oppositeCorner() nav.Vec {
	m := t.world.Nav()
	b := m.Bounds()
	var mean nav.Vec
	for _, a := range t.world.Agents() {
		mean = mean.Add(a.Position())
	}
	if n := len(t.world.Agents()); n > 0 {
		mean = mean.Scale(1 / float64(n))
	}
	corner := nav.Vec{}
	if mean.X < b.X/2 {
		corner.X = b.X
	}
	if mean.Y < b.Y/2 {
		corner.Y = b.Y
	}
	best, bestD := corner, -1.0
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			tile := nav.TileVec{X: x, Y: y}
			if !m.IsPassable(tile) {
				continue
			}
			p := m.TileToWorld(tile)
			if d := p.DistSq(corner); bestD < 0 || d < bestD {
				best, bestD = p, d
			}
		}
	}
	return best
}

func (t *tui) step() {
	if !t.paused {
		t.world.Update()
	}
}

func (t *tui) run() {
	ticker := time.NewTicker(16 * time.Millisecond) // ~60 FPS
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			eventChan <- t.screen.PollEvent()
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			if !t.handleInput(ev) {
				return
			}
		case <-ticker.C:
			t.step()
			t.draw()
		}
	}
}

func main() {
	var layoutName, shape string
	flag.StringVar(&layoutName, "layout", "maze", "built-in layout name")
	flag.StringVar(&shape, "shape", "box", "formation shape")
	flag.Parse()

	layout, err := game.NamedLayout(layoutName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load layout: %v\n", err)
		os.Exit(1)
	}
	cfg := game.DefaultConfig()
	cfg.Shape = shape
	w, err := game.NewWorld(layout, cfg, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build world: %v\n", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	newTUI(screen, w).run()
}
