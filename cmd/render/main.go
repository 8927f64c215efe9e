package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"campusnav/pkg/campus"
	"campusnav/pkg/format"
	"campusnav/pkg/navigation"
)

func main() {
	datasetPath := flag.String("dataset", "campus.json", "Path to the campus dataset JSON")
	from := flag.String("from", "", "Start node id")
	to := flag.String("to", "", "Destination node id, or wc_man / wc_woman / main_entrance for the nearest one")
	indoor := flag.Bool("indoor", true, "Prefer indoor routes")
	outDir := flag.String("out", ".", "Directory for the floor SVGs")
	drawStairs := flag.Bool("draw-stairs", false, "Draw route segments that touch stairs")
	flag.Parse()

	if *from == "" || *to == "" {
		fmt.Fprintln(os.Stderr, "Usage: render --from <node> --to <node|wc_man|wc_woman|main_entrance> [--dataset campus.json] [--out dir]")
		os.Exit(1)
	}

	ds, err := campus.LoadFile(*datasetPath)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}

	opts := navigation.DefaultOptions()
	opts.Render.DrawStairs = *drawStairs
	engine := navigation.NewEngine(ds, opts)

	sel := navigation.Selection{NodeID: *to}
	if kind, ok := navigation.ParseNearestKind(*to); ok {
		sel = navigation.Selection{Nearest: kind}
	}
	target, err := engine.Resolve(sel, *from)
	if err != nil {
		log.Fatalf("Failed to resolve destination: %v", err)
	}

	dirs, err := engine.ComputeRoutes(*from, target, *indoor)
	if err != nil {
		log.Fatalf("Failed to compute routes: %v", err)
	}
	if len(dirs) == 0 {
		fmt.Printf("No route from %s to %s\n", *from, target)
		return
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	for i, d := range dirs {
		badge := string(d.Badge)
		if badge == "" {
			badge = "-"
		}
		fmt.Printf("Route %d [%s]: %s, %s (%s outdoor)\n", i+1, badge,
			format.Distance(d.TotalDistanceMeters),
			format.Duration(d.EstimatedTimeMinutes()),
			format.Distance(d.OutdoorDistanceMeters))

		for j, s := range d.Steps {
			fmt.Printf("  %d. %s\n", j+1, navigation.Describe(s))
			floor, ok := s.(navigation.ByFloor)
			if !ok || floor.Image == nil {
				continue
			}
			name := fmt.Sprintf("route%d_step%d_b%d_f%d.svg", i+1, j+1, floor.Building, floor.Floor)
			path := filepath.Join(*outDir, name)
			if err := os.WriteFile(path, floor.Image, 0o644); err != nil {
				log.Fatalf("Failed to write %s: %v", path, err)
			}
			fmt.Printf("     -> %s\n", path)
		}
	}
}
