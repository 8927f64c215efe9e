package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"campusnav/pkg/campus"
	"campusnav/pkg/osm"
)

func main() {
	input := flag.String("input", "", "Path to .osm.pbf or .osm file")
	datasetPath := flag.String("dataset", "", "Campus dataset JSON to merge into (empty = outdoor-only dataset)")
	output := flag.String("output", "campus.json", "Output dataset file path")
	bbox := flag.String("bbox", "", "Bounding box filter: minLat,minLng,maxLat,maxLng")
	keepAll := flag.Bool("keep-all", false, "Keep every connected component instead of only the largest")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: preprocess --input <file.osm.pbf> [--dataset campus.json] [--output campus.json] [--bbox minLat,minLng,maxLat,maxLng]")
		os.Exit(1)
	}

	opt := osm.Options{LargestComponent: !*keepAll}
	if *bbox != "" {
		b, err := osm.ParseBBox(*bbox)
		if err != nil {
			log.Fatalf("Invalid bbox format (expected minLat,minLng,maxLat,maxLng): %v", err)
		}
		opt.BBox = b
		log.Printf("Using bounding box filter: lat [%.4f, %.4f], lng [%.4f, %.4f]", b.MinLat, b.MaxLat, b.MinLng, b.MaxLng)
	}

	start := time.Now()

	// Step 1: Load the campus dataset, if any.
	ds := &campus.Dataset{}
	if *datasetPath != "" {
		log.Printf("Loading dataset from %s...", *datasetPath)
		var err error
		if ds, err = campus.LoadFile(*datasetPath); err != nil {
			log.Fatalf("Failed to load dataset: %v", err)
		}
		log.Printf("Dataset: %d indoor nodes, %d outdoor nodes", len(ds.Indoor.Nodes), len(ds.Outdoor.Nodes))
	}

	// Step 2: Import walkable ways.
	log.Println("Parsing OSM data...")
	og, err := osm.ImportFile(context.Background(), *input, opt)
	if err != nil {
		log.Fatalf("Failed to parse OSM data: %v", err)
	}
	log.Printf("Imported %d nodes, %d edges", len(og.Nodes), len(og.Edges))

	// Step 3: Merge and validate.
	added := ds.MergeOutdoor(*og)
	log.Printf("Merged %d new outdoor nodes", added)
	if err := ds.Validate(); err != nil {
		log.Fatalf("Merged dataset is invalid: %v", err)
	}

	// Step 4: Write.
	log.Printf("Writing dataset to %s...", *output)
	if err := campus.WriteFile(*output, ds); err != nil {
		log.Fatalf("Failed to write dataset: %v", err)
	}

	info, _ := os.Stat(*output)
	log.Printf("Done in %s. Output: %s (%.1f KB)", time.Since(start).Round(time.Millisecond), *output, float64(info.Size())/1024)
}
