package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/andrewtc/formation-movement/internal/game"
	"github.com/andrewtc/formation-movement/internal/viewer"
)

func main() {
	var layoutName, shape, cohesion string
	var scale float64
	var verbose bool

	flag.StringVar(&layoutName, "layout", "wall-gap", "built-in layout name")
	flag.Float64Var(&scale, "scale", 28, "pixels per tile")
	flag.StringVar(&shape, "shape", "box", "formation shape (box, line, wedge, column, echelon)")
	flag.StringVar(&cohesion, "cohesion", game.CohesionConstant, "cohesion model (constant, weighted)")
	flag.BoolVar(&verbose, "verbose", false, "log per-tick positions")
	flag.Parse()

	layout, err := game.NamedLayout(layoutName)
	if err != nil {
		log.Fatal(err)
	}
	cfg := game.DefaultConfig()
	cfg.Shape = shape
	cfg.Cohesion = cohesion
	cfg.Verbose = verbose

	w, err := game.NewWorld(layout, cfg, nil)
	if err != nil {
		log.Fatal(err)
	}
	g := viewer.New(w, scale)

	ebiten.SetWindowTitle("Formation Movement")
	ebiten.SetWindowSize(g.WindowSize())
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
