package game

import (
	"fmt"
	"strings"

	"github.com/andrewtc/formation-movement/internal/nav"
)

// RunStats summarises one simulation run from its SimLog and final state.
type RunStats struct {
	Layout string
	Ticks  int

	PathsRequested int
	PathsDelivered int
	EmptyPaths     int
	PathsCancelled int

	FormationsCreated   int
	FormationsDestroyed int
	FormationsArrived   int
	RejectedOrders      int
	SlotAssignments     int
	FlowfieldRefreshes  int

	FirstArrivalTick int // -1 if no formation arrived
	SettledAgents    int
	Agents           int
	SlotViolation    string
}

// CollectStats reads a finished run.
func CollectStats(w *World) RunStats {
	log := w.Log()
	s := RunStats{
		Layout:              w.Layout().Name,
		Ticks:               w.Tick(),
		PathsRequested:      log.CountCategory("path", "requested"),
		PathsDelivered:      log.CountCategory("path", "delivered"),
		EmptyPaths:          log.CountCategory("path", "empty"),
		PathsCancelled:      log.CountCategory("path", "cancelled"),
		FormationsCreated:   log.CountCategory("formation", "create"),
		FormationsDestroyed: log.CountCategory("formation", "destroy"),
		FormationsArrived:   log.CountCategory("formation", "arrived"),
		RejectedOrders:      log.CountCategory("order", "rejected"),
		SlotAssignments:     log.CountCategory("slot", "assigned"),
		FlowfieldRefreshes:  log.CountCategory("flowfield", "refresh"),
		FirstArrivalTick:    FirstTick(log.Entries(), "formation", "arrived", ""),
		Agents:              len(w.Agents()),
	}
	for _, a := range w.Agents() {
		if a.Settled() {
			s.SettledAgents++
		}
	}
	if err := w.CheckSlots(); err != nil {
		s.SlotViolation = err.Error()
	}
	return s
}

// FirstTick returns the tick of the first entry matching category and key
// whose value contains the given substring, or -1.
func FirstTick(entries []SimLogEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains != "" && !strings.Contains(e.Value, contains) {
			continue
		}
		return e.Tick
	}
	return -1
}

// Format renders the stats as a short block.
func (s RunStats) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "layout=%s ticks=%d agents=%d settled=%d\n", s.Layout, s.Ticks, s.Agents, s.SettledAgents)
	fmt.Fprintf(&b, "  paths: requested=%d delivered=%d empty=%d cancelled=%d\n",
		s.PathsRequested, s.PathsDelivered, s.EmptyPaths, s.PathsCancelled)
	fmt.Fprintf(&b, "  formations: created=%d destroyed=%d arrived=%d first_arrival=%s rejected_orders=%d\n",
		s.FormationsCreated, s.FormationsDestroyed, s.FormationsArrived, tickString(s.FirstArrivalTick), s.RejectedOrders)
	fmt.Fprintf(&b, "  slots: assignments=%d flowfield_refreshes=%d\n", s.SlotAssignments, s.FlowfieldRefreshes)
	if s.SlotViolation != "" {
		fmt.Fprintf(&b, "  SLOT VIOLATION: %s\n", s.SlotViolation)
	}
	return b.String()
}

func tickString(t int) string {
	if t < 0 {
		return "n/a"
	}
	return fmt.Sprintf("T%d", t)
}

// DebugReport renders the map, agents and formations as text for pasting into
// a bug report. Walls are '#', agents in formation show the formation index
// digit, solo agents are 'a', and a formation origin is '@'.
func DebugReport(w *World) string {
	var b strings.Builder
	m := w.Nav()
	fmt.Fprintf(&b, "--- formation-movement debug report ---\n")
	fmt.Fprintf(&b, "layout=%s size=%dx%d tick=%d\n\n", w.Layout().Name, m.Width(), m.Height(), w.Tick())

	b.WriteString(RenderASCII(w))
	b.WriteByte('\n')
	b.WriteString(w.Log().Summary(w))

	for _, f := range w.Formations() {
		fmt.Fprintf(&b, "\nformation %d facing=%.2f rad behavior=%T assign_distance=%.2f\n",
			f.Index(), f.FacingAngle(), f.Behavior(), f.AssignDistance())
		for i, s := range f.Slots() {
			loc := f.SlotWorldLocation(i)
			holder := "--"
			if s.Taken() {
				holder = fmt.Sprintf("A%d", s.Occupant().ID())
			}
			fmt.Fprintf(&b, "  slot %2d offset=(%.2f,%.2f) at=(%.2f,%.2f) %s\n", i, s.Offset.X, s.Offset.Y, loc.X, loc.Y, holder)
		}
	}

	const tail = 40
	entries := w.Log().Entries()
	if len(entries) > tail {
		entries = entries[len(entries)-tail:]
	}
	b.WriteString("\nrecent events:\n")
	b.WriteString(formatEntries(entries))
	return b.String()
}

// RenderASCII draws the world one character per tile.
func RenderASCII(w *World) string {
	m := w.Nav()
	cells := make([][]byte, m.Height())
	for y := range cells {
		cells[y] = make([]byte, m.Width())
		for x := range cells[y] {
			cells[y][x] = '.'
			if !m.IsPassable(nav.TileVec{X: x, Y: y}) {
				cells[y][x] = '#'
			}
		}
	}
	put := func(p nav.Vec, c byte) {
		t := m.WorldToTile(p)
		if m.Contains(t) {
			cells[t.Y][t.X] = c
		}
	}
	for _, f := range w.Formations() {
		put(f.Origin(), '@')
	}
	for _, a := range w.Agents() {
		c := byte('a')
		if f := a.Formation(); f != nil {
			c = byte('0' + f.Index()%10)
		}
		put(a.Position(), c)
	}
	var b strings.Builder
	for _, row := range cells {
		b.Write(row)
		b.WriteByte('\n')
	}
	return b.String()
}
