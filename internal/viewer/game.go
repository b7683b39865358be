// Package viewer is the interactive Ebiten front end for a game.World.
package viewer

import (
	"fmt"
	"math"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/andrewtc/formation-movement/internal/game"
	"github.com/andrewtc/formation-movement/internal/nav"
)

// borderWidth is the pixel gap between the window edge and the map.
const borderWidth = 24

// dragThreshold is how far (pixels) the mouse must travel before a left
// press becomes a box selection instead of a click.
const dragThreshold = 4

// Game implements ebiten.Game over a World.
type Game struct {
	world *game.World
	feed  *EventFeed

	scale      float64 // pixels per world unit
	mapW, mapH int     // map size in pixels
	width      int
	height     int

	selected []*game.Agent

	dragging  bool
	dragStart nav.Vec // screen pixels

	traceStart *nav.Vec
	traceEnd   *nav.Vec

	showFlowfield bool
	showHUD       bool
	simSpeed      float64
	tickAccum     float64
}

// New wraps a world. scale is the on-screen size of one world unit.
func New(w *game.World, scale float64) *Game {
	b := w.Nav().Bounds()
	g := &Game{
		world:         w,
		feed:          NewEventFeed(),
		scale:         scale,
		mapW:          int(math.Ceil(b.X * scale)),
		mapH:          int(math.Ceil(b.Y * scale)),
		showFlowfield: true,
		showHUD:       true,
		simSpeed:      1,
	}
	g.width = g.mapW + 2*borderWidth + feedPanelWidth
	g.height = max(g.mapH+2*borderWidth, 360)
	g.feed.Sync(w.Log())
	return g
}

// WindowSize is the outer size the command should request.
func (g *Game) WindowSize() (int, int) { return g.width, g.height }

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

func (g *Game) Update() error {
	g.handleInput()

	if g.simSpeed > 0 {
		g.tickAccum += g.simSpeed
		for g.tickAccum >= 1.0 {
			g.tickAccum -= 1.0
			g.world.Update()
		}
	}
	g.feed.Sync(g.world.Log())
	return nil
}

func (g *Game) screenToWorld(x, y float64) nav.Vec {
	return nav.Vec{X: (x - borderWidth) / g.scale, Y: (y - borderWidth) / g.scale}
}

func (g *Game) worldToScreen(p nav.Vec) (float32, float32) {
	return float32(p.X*g.scale + borderWidth), float32(p.Y*g.scale + borderWidth)
}

func (g *Game) cursor() nav.Vec {
	mx, my := ebiten.CursorPosition()
	return nav.Vec{X: float64(mx), Y: float64(my)}
}

func (g *Game) handleInput() {
	tick := g.world.Tick()

	// Left: click selects one agent, drag selects a box.
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.dragging = true
		g.dragStart = g.cursor()
	}
	if g.dragging && inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.dragging = false
		end := g.cursor()
		if end.Sub(g.dragStart).Len() < dragThreshold {
			g.selected = g.selected[:0]
			if a := g.world.AgentAt(g.screenToWorld(end.X, end.Y)); a != nil {
				g.selected = append(g.selected, a)
			}
		} else {
			g.selected = g.world.AgentsInArea(
				g.screenToWorld(g.dragStart.X, g.dragStart.Y),
				g.screenToWorld(end.X, end.Y))
		}
	}

	// Right: move order. Shift forces a formation even for one agent.
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) && len(g.selected) > 0 {
		c := g.cursor()
		dest := g.screenToWorld(c.X, c.Y)
		order := g.world.OrderMove
		if ebiten.IsKeyPressed(ebiten.KeyShift) {
			order = g.world.OrderFormation
		}
		if _, err := order(g.selected, dest); err != nil {
			g.feed.Note(tick, err.Error())
		}
	}

	// X: toggle the wall under the cursor.
	if inpututil.IsKeyJustPressed(ebiten.KeyX) {
		c := g.cursor()
		m := g.world.Nav()
		t := m.WorldToTile(g.screenToWorld(c.X, c.Y))
		if m.Contains(t) {
			if err := g.world.SetPassable(t, !m.IsPassable(t)); err != nil {
				g.feed.Note(tick, err.Error())
			}
		}
	}

	// T: first press anchors a trace, second press ends it, third clears.
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		c := g.cursor()
		p := g.screenToWorld(c.X, c.Y)
		switch {
		case g.traceStart == nil:
			g.traceStart = &p
		case g.traceEnd == nil:
			g.traceEnd = &p
		default:
			g.traceStart, g.traceEnd = nil, nil
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.world.Halt(g.selected)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		g.showFlowfield = !g.showFlowfield
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}

	// C: copy the debug report.
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		if err := clipboard.WriteAll(game.DebugReport(g.world)); err != nil {
			g.feed.Note(tick, "clipboard: "+err.Error())
		} else {
			g.feed.Note(tick, "debug report copied")
		}
	}

	// Sim speed: P=pause/resume, ,=slower, .=faster.
	speeds := []float64{0, 0.25, 0.5, 1, 2, 4}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		if g.simSpeed > 0 {
			g.simSpeed = 0
		} else {
			g.simSpeed = 1
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyComma) {
		g.simSpeed = stepSpeed(speeds, g.simSpeed, -1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPeriod) {
		g.simSpeed = stepSpeed(speeds, g.simSpeed, +1)
	}
}

// stepSpeed moves dir steps along speeds from the closest entry to cur.
func stepSpeed(speeds []float64, cur float64, dir int) float64 {
	best := 0
	for i, s := range speeds {
		if math.Abs(s-cur) < math.Abs(speeds[best]-cur) {
			best = i
		}
	}
	i := min(max(best+dir, 0), len(speeds)-1)
	return speeds[i]
}

func (g *Game) speedString() string {
	switch g.simSpeed {
	case 0:
		return "PAUSED"
	case 1:
		return "1x"
	}
	return fmt.Sprintf("%gx", g.simSpeed)
}
