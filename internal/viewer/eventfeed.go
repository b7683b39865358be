package viewer

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/andrewtc/formation-movement/internal/game"
)

const (
	feedPanelWidth = 340
	feedMaxEntries = 80
	feedLineHeight = 14
)

// categoryColors tints the marker next to each feed line.
var categoryColors = map[string]color.RGBA{
	"path":      {R: 90, G: 170, B: 255, A: 255},
	"formation": {R: 240, G: 200, B: 60, A: 255},
	"slot":      {R: 120, G: 220, B: 120, A: 255},
	"flowfield": {R: 200, G: 110, B: 240, A: 255},
	"order":     {R: 230, G: 230, B: 230, A: 255},
}

// EventFeed is a ring buffer of recent SimLog entries rendered on-screen.
type EventFeed struct {
	entries []game.SimLogEntry
	head    int
	count   int
	seen    int
	face    *text.GoXFace
}

func NewEventFeed() *EventFeed {
	return &EventFeed{
		entries: make([]game.SimLogEntry, feedMaxEntries),
		face:    text.NewGoXFace(basicfont.Face7x13),
	}
}

// Add appends an entry, overwriting the oldest when full.
func (f *EventFeed) Add(e game.SimLogEntry) {
	f.entries[f.head] = e
	f.head = (f.head + 1) % feedMaxEntries
	if f.count < feedMaxEntries {
		f.count++
	}
}

// Note adds a viewer-side message.
func (f *EventFeed) Note(tick int, msg string) {
	f.Add(game.SimLogEntry{Tick: tick, Agent: "--", Category: "order", Key: "ui", Value: msg})
}

// Sync pulls entries recorded since the last call. Per-tick verbose entries
// are skipped.
func (f *EventFeed) Sync(log *game.SimLog) {
	for _, e := range log.Since(f.seen) {
		if e.Key == "position" || e.Key == "origin" {
			continue
		}
		f.Add(e)
	}
	f.seen = log.Len()
}

// Recent returns entries in chronological order (oldest first).
func (f *EventFeed) Recent() []game.SimLogEntry {
	result := make([]game.SimLogEntry, f.count)
	for i := 0; i < f.count; i++ {
		idx := (f.head - f.count + i + feedMaxEntries) % feedMaxEntries
		result[i] = f.entries[idx]
	}
	return result
}

// Draw renders the feed panel at panelX, newest entry at the bottom.
func (f *EventFeed) Draw(screen *ebiten.Image, panelX, panelH int) {
	px := float32(panelX)
	vector.FillRect(screen, px, 0, feedPanelWidth, float32(panelH), color.RGBA{R: 10, G: 12, B: 14, A: 248}, false)
	vector.StrokeLine(screen, px, 0, px, float32(panelH), 1.0, color.RGBA{R: 50, G: 60, B: 80, A: 255}, false)
	vector.FillRect(screen, px, 0, feedPanelWidth, 18, color.RGBA{R: 20, G: 26, B: 36, A: 255}, false)
	f.drawText(screen, "EVENTS", panelX+8, 2, color.RGBA{R: 200, G: 210, B: 230, A: 255})

	entries := f.Recent()
	maxVisible := (panelH - 26) / feedLineHeight
	if len(entries) > maxVisible {
		entries = entries[len(entries)-maxVisible:]
	}
	const highlight = 3
	y := 22
	for i, e := range entries {
		fresh := i >= len(entries)-highlight
		if fresh {
			vector.FillRect(screen, px+2, float32(y), feedPanelWidth-4, feedLineHeight, color.RGBA{R: 30, G: 36, B: 48, A: 160}, false)
		}
		dot, ok := categoryColors[e.Category]
		if !ok {
			dot = color.RGBA{R: 128, G: 128, B: 128, A: 255}
		}
		vector.FillRect(screen, px+5, float32(y+4), 3, 6, dot, false)

		fg := color.RGBA{R: 150, G: 155, B: 165, A: 255}
		if fresh {
			fg = color.RGBA{R: 235, G: 238, B: 245, A: 255}
		}
		f.drawText(screen, fmt.Sprintf("%4d %-3s %s", e.Tick, e.Agent, e.Value), panelX+12, y, fg)
		y += feedLineHeight
	}
}

func (f *EventFeed) drawText(screen *ebiten.Image, s string, x, y int, c color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, s, f.face, op)
}
