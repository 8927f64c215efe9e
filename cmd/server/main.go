package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"campusnav/pkg/api"
	"campusnav/pkg/campus"
	"campusnav/pkg/navigation"
	"campusnav/pkg/osm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment and flags")
	}

	datasetPath := flag.String("dataset", getEnv("CAMPUSNAV_DATASET", "campus.json"), "Path to the campus dataset JSON")
	osmPath := flag.String("osm", getEnv("CAMPUSNAV_OSM", ""), "Optional .osm/.osm.pbf extract merged into the outdoor graph")
	bbox := flag.String("bbox", getEnv("CAMPUSNAV_BBOX", ""), "Bounding box for -osm: minLat,minLng,maxLat,maxLng")
	port := flag.Int("port", getEnvAsInt("CAMPUSNAV_PORT", 8080), "HTTP port")
	corsOrigin := flag.String("cors-origin", getEnv("CAMPUSNAV_CORS_ORIGIN", ""), "CORS allowed origin (empty = same-origin, * = any)")
	maxConcurrent := flag.Int("max-concurrent", getEnvAsInt("CAMPUSNAV_MAX_CONCURRENT", 0), "Concurrent request limit (0 = 2 x CPUs)")
	preferIndoor := flag.Bool("prefer-indoor", getEnvAsBool("CAMPUSNAV_PREFER_INDOOR", true), "Default ranking preference when a request does not say")
	readTimeout := flag.Int("read-timeout", getEnvAsInt("CAMPUSNAV_READ_TIMEOUT", 0), "Read timeout in seconds (0 = default)")
	writeTimeout := flag.Int("write-timeout", getEnvAsInt("CAMPUSNAV_WRITE_TIMEOUT", 0), "Write timeout in seconds (0 = default)")
	drawStairs := flag.Bool("draw-stairs", getEnvAsBool("CAMPUSNAV_DRAW_STAIRS", false), "Draw route segments that touch stairs")
	flag.Parse()

	start := time.Now()

	osmOpt := osm.Options{LargestComponent: true}
	if *bbox != "" {
		b, err := osm.ParseBBox(*bbox)
		if err != nil {
			log.Fatalf("Invalid bbox: %v", err)
		}
		osmOpt.BBox = b
	}

	// The cache owns the merged dataset; nothing touches it after loading.
	cache := campus.NewCache(func() (*campus.Dataset, error) {
		log.Printf("Loading dataset from %s...", *datasetPath)
		ds, err := campus.LoadFile(*datasetPath)
		if err != nil {
			return nil, err
		}
		if *osmPath == "" {
			return ds, nil
		}
		log.Printf("Importing outdoor paths from %s...", *osmPath)
		og, err := osm.ImportFile(context.Background(), *osmPath, osmOpt)
		if err != nil {
			return nil, fmt.Errorf("import outdoor paths: %w", err)
		}
		added := ds.MergeOutdoor(*og)
		log.Printf("Merged %d outdoor nodes, %d edges", added, len(og.Edges))
		if err := ds.Validate(); err != nil {
			return nil, err
		}
		return ds, nil
	})

	opts := navigation.DefaultOptions()
	opts.PreferIndoor = *preferIndoor
	opts.Render.DrawStairs = *drawStairs
	engine, err := navigation.NewEngineFromCache(cache, opts)
	if err != nil {
		log.Fatalf("Failed to build engine: %v", err)
	}

	log.Printf("Ready in %s", time.Since(start).Round(time.Millisecond))

	cfg := api.DefaultConfig(fmt.Sprintf(":%d", *port))
	cfg.CORSOrigin = *corsOrigin
	if *maxConcurrent > 0 {
		cfg.MaxConcurrent = *maxConcurrent
	}
	if *readTimeout > 0 {
		cfg.ReadTimeout = time.Duration(*readTimeout) * time.Second
	}
	if *writeTimeout > 0 {
		cfg.WriteTimeout = time.Duration(*writeTimeout) * time.Second
	}

	handlers := api.NewHandlers(engine, engine.Options().PreferIndoor)
	srv := api.NewServer(cfg, handlers)

	if err := api.ListenAndServe(srv); err != nil {
		log.Printf("Server stopped: %v", err)
		os.Exit(1)
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}
