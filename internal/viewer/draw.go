package viewer

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/andrewtc/formation-movement/internal/formation"
	"github.com/andrewtc/formation-movement/internal/nav"
)

var (
	colBackground = color.RGBA{R: 12, G: 14, B: 12, A: 255}
	colFloor      = color.RGBA{R: 34, G: 38, B: 34, A: 255}
	colWall       = color.RGBA{R: 90, G: 84, B: 76, A: 255}
	colGridLine   = color.RGBA{R: 255, G: 255, B: 255, A: 10}
	colBorder     = color.RGBA{R: 65, G: 90, B: 65, A: 255}
	colSolo       = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	colSelected   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	colDragBox    = color.RGBA{R: 120, G: 200, B: 255, A: 200}
	colTraceOK    = color.RGBA{R: 80, G: 230, B: 120, A: 220}
	colTraceBlock = color.RGBA{R: 240, G: 80, B: 70, A: 220}
)

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colBackground)

	g.drawTiles(screen)
	if g.showFlowfield {
		for _, f := range g.world.Formations() {
			g.drawFlowfield(screen, f)
		}
	}
	for _, f := range g.world.Formations() {
		g.drawFormation(screen, f)
	}
	g.drawRoutes(screen)
	g.drawAgents(screen)
	g.drawTrace(screen)
	g.drawDragBox(screen)

	ox, oy := float32(borderWidth), float32(borderWidth)
	vector.StrokeRect(screen, ox-1, oy-1, float32(g.mapW)+2, float32(g.mapH)+2, 2.0, colBorder, false)

	g.feed.Draw(screen, g.mapW+2*borderWidth, g.height)

	if g.showHUD {
		g.drawHUD(screen)
	}
}

func (g *Game) drawTiles(screen *ebiten.Image) {
	m := g.world.Nav()
	ts := float32(m.Config().TileSize * g.scale)
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			c := colFloor
			if !m.IsPassable(nav.TileVec{X: x, Y: y}) {
				c = colWall
			}
			sx := float32(borderWidth) + float32(x)*ts
			sy := float32(borderWidth) + float32(y)*ts
			vector.FillRect(screen, sx, sy, ts, ts, c, false)
			vector.StrokeRect(screen, sx, sy, ts, ts, 1.0, colGridLine, false)
		}
	}
}

// drawFlowfield draws a short arrow on every reachable tile along each of its
// recorded adjacencies.
func (g *Game) drawFlowfield(screen *ebiten.Image, f *formation.Formation) {
	m := g.world.Nav()
	ff := f.Flowfield()
	fc := f.Color()
	c := color.RGBA{R: fc.R, G: fc.G, B: fc.B, A: 70}
	arm := m.Config().TileSize * 0.35
	for y := 0; y < ff.Height(); y++ {
		for x := 0; x < ff.Width(); x++ {
			t := nav.TileVec{X: x, Y: y}
			if !ff.Reachable(t) {
				continue
			}
			ft := ff.At(t)
			centre := m.TileToWorld(t)
			if ft.IsGoal() {
				cx, cy := g.worldToScreen(centre)
				vector.StrokeCircle(screen, cx, cy, float32(arm*g.scale), 1.5, fc, true)
				continue
			}
			for i := 0; i < ft.AdjacencyCount(); i++ {
				d := ft.Adjacency(i).Vector()
				tip := centre.Add(nav.Vec{X: float64(d.X), Y: float64(d.Y)}.Scale(arm))
				x0, y0 := g.worldToScreen(centre)
				x1, y1 := g.worldToScreen(tip)
				vector.StrokeLine(screen, x0, y0, x1, y1, 1.0, c, true)
			}
		}
	}
}

// drawFormation renders the origin, facing, threshold ring and slot diamonds.
func (g *Game) drawFormation(screen *ebiten.Image, f *formation.Formation) {
	fc := f.Color()
	ox, oy := g.worldToScreen(f.Origin())
	tip := f.Origin().Add(f.Facing().Scale(1.2))
	tx, ty := g.worldToScreen(tip)
	vector.StrokeLine(screen, ox, oy, tx, ty, 2.0, fc, true)
	vector.FillCircle(screen, ox, oy, 3, fc, true)

	ring := color.RGBA{R: fc.R, G: fc.G, B: fc.B, A: 40}
	vector.StrokeCircle(screen, ox, oy, float32(f.AssignDistance()*g.scale), 1.0, ring, true)

	dx, dy := g.worldToScreen(f.Destination())
	vector.StrokeLine(screen, dx-5, dy-5, dx+5, dy+5, 1.5, fc, true)
	vector.StrokeLine(screen, dx-5, dy+5, dx+5, dy-5, 1.5, fc, true)

	d := float32(0.2 * g.scale)
	for i, s := range f.Slots() {
		sx, sy := g.worldToScreen(f.SlotWorldLocation(i))
		c := color.RGBA{R: fc.R, G: fc.G, B: fc.B, A: 60}
		if s.Taken() {
			c.A = 160
			ax, ay := g.worldToScreen(s.Occupant().Position())
			vector.StrokeLine(screen, ax, ay, sx, sy, 1.0, color.RGBA{R: 255, G: 255, B: 255, A: 24}, false)
		}
		vector.StrokeLine(screen, sx-d, sy, sx, sy-d, 1.0, c, false)
		vector.StrokeLine(screen, sx, sy-d, sx+d, sy, 1.0, c, false)
		vector.StrokeLine(screen, sx+d, sy, sx, sy+d, 1.0, c, false)
		vector.StrokeLine(screen, sx, sy+d, sx-d, sy, 1.0, c, false)
	}
}

// drawRoutes draws the remaining waypoints of solo agents.
func (g *Game) drawRoutes(screen *ebiten.Image) {
	c := color.RGBA{R: 200, G: 200, B: 200, A: 60}
	for _, a := range g.world.Agents() {
		prev := a.Position()
		for _, p := range a.Route() {
			x0, y0 := g.worldToScreen(prev)
			x1, y1 := g.worldToScreen(p)
			vector.StrokeLine(screen, x0, y0, x1, y1, 1.0, c, true)
			prev = p
		}
	}
}

func (g *Game) drawAgents(screen *ebiten.Image) {
	sel := make(map[int]bool, len(g.selected))
	for _, a := range g.selected {
		sel[a.ID()] = true
	}
	for _, a := range g.world.Agents() {
		c := colSolo
		if f := a.Formation(); f != nil {
			c = f.Color()
		}
		x, y := g.worldToScreen(a.Position())
		r := float32(a.Radius() * g.scale)
		vector.FillCircle(screen, x, y, r*0.8, c, true)
		if sel[a.ID()] {
			vector.StrokeCircle(screen, x, y, r, 1.5, colSelected, true)
		}
		if v := a.Velocity(); v.LenSq() > 0 {
			h := a.Position().Add(v.Normalize().Scale(a.Radius()))
			hx, hy := g.worldToScreen(h)
			vector.StrokeLine(screen, x, y, hx, hy, 1.5, colBackground, true)
		}
	}
}

// drawTrace shows the trace tool segment and every grid intercept on it.
func (g *Game) drawTrace(screen *ebiten.Image) {
	if g.traceStart == nil {
		return
	}
	a := *g.traceStart
	b := g.screenToWorld(g.cursor().X, g.cursor().Y)
	if g.traceEnd != nil {
		b = *g.traceEnd
	}
	m := g.world.Nav()
	c := colTraceBlock
	if m.TraceIsPassable(a, b, g.world.Config().TraceRadius) {
		c = colTraceOK
	}
	x0, y0 := g.worldToScreen(a)
	x1, y1 := g.worldToScreen(b)
	vector.StrokeLine(screen, x0, y0, x1, y1, 1.5, c, true)
	for _, p := range m.TraceGridIntercepts(a, b) {
		px, py := g.worldToScreen(p)
		vector.FillCircle(screen, px, py, 2, c, true)
	}
}

func (g *Game) drawDragBox(screen *ebiten.Image) {
	if !g.dragging {
		return
	}
	c := g.cursor()
	x := float32(math.Min(c.X, g.dragStart.X))
	y := float32(math.Min(c.Y, g.dragStart.Y))
	w := float32(math.Abs(c.X - g.dragStart.X))
	h := float32(math.Abs(c.Y - g.dragStart.Y))
	vector.StrokeRect(screen, x, y, w, h, 1.0, colDragBox, false)
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	m := g.world.Nav()
	lines := []string{
		fmt.Sprintf("T=%d  SIM: %s  P=pause  ,/. speed", g.world.Tick(), g.speedString()),
		fmt.Sprintf("selected=%d  formations=%d  flowfields=%d/%d  pending=%d",
			len(g.selected), len(g.world.Formations()), m.ReservedFlowfields(), m.FlowfieldCapacity(), m.PendingRequests()),
		"LMB select/drag  RMB move  Shift+RMB form up  S halt",
		"X wall  T trace  F flowfield  C copy report  H hud",
	}
	const lineH = 16
	for i, l := range lines {
		ebitenutil.DebugPrintAt(screen, l, borderWidth+4, g.height-borderWidth-len(lines)*lineH+i*lineH)
	}
}
