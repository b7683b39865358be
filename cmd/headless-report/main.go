package main

import (
	"flag"
	"fmt"

	"github.com/andrewtc/formation-movement/internal/game"
	"github.com/andrewtc/formation-movement/internal/nav"
)

type runStats struct {
	runIndex int
	seed     int64
	dest     nav.Vec
	orderErr error

	game.RunStats
}

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var scenario string
	var agents int
	var shape string

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs per layout")
	flag.IntVar(&ticks, "ticks", 3600, "ticks per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&scenario, "scenario", "all", "built-in layout name, or \"all\"")
	flag.IntVar(&agents, "agents", 6, "extra agents scattered on open tiles")
	flag.StringVar(&shape, "shape", "box", "formation shape")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		return
	}
	layouts := game.LayoutNames()
	if scenario != "all" {
		if _, err := game.NamedLayout(scenario); err != nil {
			fmt.Printf("error: %v (supported: %v)\n", err, layouts)
			return
		}
		layouts = []string{scenario}
	}
	cfg := game.DefaultConfig()
	cfg.Shape = shape
	if err := cfg.Validate(); err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	fmt.Printf("=== Headless Formation Report ===\n")
	fmt.Printf("layouts=%v runs=%d ticks=%d seed_base=%d seed_step=%d agents=+%d shape=%s\n\n",
		layouts, runs, ticks, seedBase, seedStep, agents, shape)

	for _, name := range layouts {
		all := make([]runStats, 0, runs)
		for i := 0; i < runs; i++ {
			seed := seedBase + int64(i)*seedStep
			rs := runScenario(i+1, seed, name, cfg, agents, ticks)
			all = append(all, rs)
			printRun(rs)
		}
		printAggregate(name, all)
	}
}

// runScenario scatters agents on a layout and orders all of them, as one
// group, to the open tile farthest from where they start.
func runScenario(runIndex int, seed int64, layout string, cfg game.Config, agents, ticks int) runStats {
	ts := game.NewTestSim(
		game.WithNamedLayout(layout),
		game.WithConfig(cfg),
		game.WithSeed(seed),
		game.WithScatteredAgents(agents),
	)
	rs := runStats{runIndex: runIndex, seed: seed}
	rs.dest = farthestTile(ts.World)
	if _, err := ts.World.OrderFormation(ts.World.Agents(), rs.dest); err != nil {
		rs.orderErr = err
	}
	ts.RunTicks(ticks)
	rs.RunStats = game.CollectStats(ts.World)
	return rs
}

// farthestTile is the centre of the passable tile farthest from the agents'
// mean position. Ties keep the first tile in row-major order.
func farthestTile(w *game.World) nav.Vec {
	m := w.Nav()
	var mean nav.Vec
	for _, a := range w.Agents() {
		mean = mean.Add(a.Position())
	}
	if n := len(w.Agents()); n > 0 {
		mean = mean.Scale(1 / float64(n))
	}
	best, bestD := nav.Vec{}, -1.0
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			t := nav.TileVec{X: x, Y: y}
			if !m.IsPassable(t) {
				continue
			}
			p := m.TileToWorld(t)
			if d := p.DistSq(mean); d > bestD {
				best, bestD = p, d
			}
		}
	}
	return best
}

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (seed=%d) dest=(%.1f,%.1f) ---\n", rs.runIndex, rs.seed, rs.dest.X, rs.dest.Y)
	if rs.orderErr != nil {
		fmt.Printf("order_error: %v\n", rs.orderErr)
	}
	fmt.Print(rs.Format())
	fmt.Println()
}

func printAggregate(layout string, all []runStats) {
	totalRequested := 0
	totalDelivered := 0
	totalCreated := 0
	totalAssignments := 0
	totalSettled := 0
	totalAgents := 0
	arrived := 0
	violations := 0
	arrivalTicks := make([]int, 0, len(all))

	for _, rs := range all {
		totalRequested += rs.PathsRequested
		totalDelivered += rs.PathsDelivered
		totalCreated += rs.FormationsCreated
		totalAssignments += rs.SlotAssignments
		totalSettled += rs.SettledAgents
		totalAgents += rs.Agents
		if rs.FormationsArrived > 0 {
			arrived++
		}
		if rs.FirstArrivalTick >= 0 {
			arrivalTicks = append(arrivalTicks, rs.FirstArrivalTick)
		}
		if rs.SlotViolation != "" {
			violations++
		}
	}

	fmt.Printf("=== Aggregate: %s ===\n", layout)
	fmt.Printf("runs=%d arrived=%d slot_violations=%d\n", len(all), arrived, violations)
	fmt.Printf("avg_per_run: paths_requested=%.1f paths_delivered=%.1f formations=%.1f slot_assignments=%.1f\n",
		avg(totalRequested, len(all)), avg(totalDelivered, len(all)), avg(totalCreated, len(all)), avg(totalAssignments, len(all)))
	fmt.Printf("settled_agents=%d/%d first_arrival_avg=%s\n\n", totalSettled, totalAgents, avgTickString(arrivalTicks))
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}
