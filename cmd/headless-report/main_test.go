package main

import (
	"testing"

	"github.com/andrewtc/formation-movement/internal/game"
)

func TestFarthestTile_OppositeCornerOfSpawns(t *testing.T) {
	ts := game.NewTestSim(game.WithNamedLayout("open"))
	got := farthestTile(ts.World)
	m := ts.World.Nav()
	if !m.IsPassable(m.WorldToTile(got)) {
		t.Fatalf("destination %v is not passable", got)
	}
	// Spawns sit in the top-left block, so the far corner is bottom-right.
	if got.X < float64(m.Width())/2 || got.Y < float64(m.Height())/2 {
		t.Fatalf("expected a bottom-right destination, got %v", got)
	}
}

func TestRunScenario_OpenLayoutArrives(t *testing.T) {
	rs := runScenario(1, 42, "open", game.DefaultConfig(), 0, 3000)
	if rs.orderErr != nil {
		t.Fatalf("order failed: %v", rs.orderErr)
	}
	if rs.FormationsCreated != 1 || rs.FormationsArrived != 1 {
		t.Fatalf("expected one formation to arrive:\n%s", rs.Format())
	}
	if rs.SlotViolation != "" {
		t.Fatal(rs.SlotViolation)
	}
}

func TestAvgTickString(t *testing.T) {
	if got := avgTickString(nil); got != "n/a" {
		t.Fatalf("got %q, want n/a", got)
	}
	if got := avgTickString([]int{10, 20}); got != "15.0" {
		t.Fatalf("got %q, want 15.0", got)
	}
	if got := avg(7, 0); got != 0 {
		t.Fatalf("avg with no runs = %v", got)
	}
}
