// Package osm imports outdoor pedestrian graphs from OpenStreetMap extracts.
package osm

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"

	"campusnav/pkg/campus"
	"campusnav/pkg/geo"
	"campusnav/pkg/graph"
)

// Format is the encoding of an OSM extract.
type Format int

const (
	FormatPBF Format = iota
	FormatXML
)

// DetectFormat guesses the format from a file name.
func DetectFormat(path string) (Format, error) {
	name := strings.ToLower(path)
	switch {
	case strings.HasSuffix(name, ".pbf"):
		return FormatPBF, nil
	case strings.HasSuffix(name, ".osm"), strings.HasSuffix(name, ".xml"):
		return FormatXML, nil
	}
	return 0, fmt.Errorf("unsupported OSM file extension %q", filepath.Ext(path))
}

// scanner is the part of the osmpbf and osmxml scanners the importer uses.
type scanner interface {
	Scan() bool
	Object() osm.Object
	Err() error
	Close() error
}

func newScanner(ctx context.Context, r io.Reader, f Format, skipNodes bool) scanner {
	if f == FormatXML {
		return osmxml.New(ctx, r)
	}
	s := osmpbf.New(ctx, r, 1)
	s.SkipNodes = skipNodes
	s.SkipWays = !skipNodes
	s.SkipRelations = true
	return s
}

// walkableHighways lists highway tag values usable on foot.
var walkableHighways = map[string]bool{
	"footway":       true,
	"path":          true,
	"pedestrian":    true,
	"steps":         true,
	"living_street": true,
	"residential":   true,
	"service":       true,
	"track":         true,
}

// isWalkable returns true if the way can be walked.
func isWalkable(tags osm.Tags) bool {
	if !walkableHighways[tags.Find("highway")] {
		return false
	}

	// Skip area highways (pedestrian plazas drawn as outlines).
	if tags.Find("area") == "yes" {
		return false
	}

	// Skip restricted access.
	access := tags.Find("access")
	if access == "no" || access == "private" {
		return false
	}
	if tags.Find("foot") == "no" {
		return false
	}

	return true
}

// entrance describes an OSM node tagged as a building entrance. ok is false
// for any other node.
func entrance(tags osm.Tags) (label, building string, ok bool) {
	switch tags.Find("entrance") {
	case "main", "yes":
	default:
		return "", "", false
	}
	housenumber := tags.Find("addr:housenumber")
	label = tags.Find("name")
	if label == "" && housenumber != "" {
		label = "Building " + housenumber
	}
	building = tags.Find("ref")
	if building == "" {
		building = housenumber
	}
	return label, building, true
}

// NodeID returns the dataset id of an OSM node.
func NodeID(id osm.NodeID) string {
	return "osm_" + strconv.FormatInt(int64(id), 10)
}

// BBox defines a geographic bounding box for filtering.
// If non-zero, only edges with both endpoints inside the box are kept.
type BBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// IsZero returns true if the bbox is unset.
func (b BBox) IsZero() bool {
	return b.MinLat == 0 && b.MaxLat == 0 && b.MinLng == 0 && b.MaxLng == 0
}

// Contains returns true if the point is inside the bounding box.
func (b BBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// ParseBBox parses "minLat,minLng,maxLat,maxLng".
func ParseBBox(s string) (BBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return BBox{}, fmt.Errorf("bbox must have 4 comma-separated values, got %d", len(parts))
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return BBox{}, fmt.Errorf("bbox value %d: %w", i, err)
		}
		v[i] = f
	}
	b := BBox{MinLat: v[0], MinLng: v[1], MaxLat: v[2], MaxLng: v[3]}
	if b.MinLat > b.MaxLat || b.MinLng > b.MaxLng {
		return BBox{}, fmt.Errorf("bbox min exceeds max: %s", s)
	}
	return b, nil
}

// Options configures the importer.
type Options struct {
	Format           Format
	BBox             BBox // if non-zero, filter edges to this bounding box
	LargestComponent bool // keep only the largest connected component
}

type nodeInfo struct {
	lat, lon float64
	tags     osm.Tags
}

// Import reads an OSM extract and returns its walkable ways as an outdoor
// graph. Edge weights are haversine lengths in meters. The reader is
// consumed twice (seeks back to start for the second pass), so it must
// implement io.ReadSeeker.
func Import(ctx context.Context, rs io.ReadSeeker, opts ...Options) (*campus.OutdoorGraph, error) {
	var opt Options
	if len(opts) > 0 {
		opt = opts[0]
	}
	useBBox := !opt.BBox.IsZero()

	// Pass 1: Scan ways to collect referenced node IDs and way shapes.
	referenced := make(map[osm.NodeID]struct{})
	var ways [][]osm.NodeID

	sc := newScanner(ctx, rs, opt.Format, true)
	for sc.Scan() {
		w, ok := sc.Object().(*osm.Way)
		if !ok || len(w.Nodes) < 2 || !isWalkable(w.Tags) {
			continue
		}
		ids := make([]osm.NodeID, len(w.Nodes))
		for i, wn := range w.Nodes {
			ids[i] = wn.ID
			referenced[wn.ID] = struct{}{}
		}
		ways = append(ways, ids)
	}
	if err := sc.Err(); err != nil {
		sc.Close()
		return nil, fmt.Errorf("pass 1 (ways): %w", err)
	}
	sc.Close()

	log.Printf("Pass 1 complete: %d walkable ways, %d referenced nodes", len(ways), len(referenced))

	// Pass 2: Scan nodes to collect coordinates and tags of referenced nodes.
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek for pass 2: %w", err)
	}

	nodes := make(map[osm.NodeID]nodeInfo, len(referenced))
	sc = newScanner(ctx, rs, opt.Format, false)
	for sc.Scan() {
		n, ok := sc.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := referenced[n.ID]; !needed {
			continue
		}
		nodes[n.ID] = nodeInfo{lat: n.Lat, lon: n.Lon, tags: n.Tags}
	}
	if err := sc.Err(); err != nil {
		sc.Close()
		return nil, fmt.Errorf("pass 2 (nodes): %w", err)
	}
	sc.Close()

	log.Printf("Pass 2 complete: %d node coordinates collected", len(nodes))

	// Build edges from ways. Nodes are emitted in order of first use.
	var (
		out          campus.OutdoorGraph
		emitted      = make(map[osm.NodeID]struct{})
		skippedEdges int
		bboxFiltered int
		entrances    int
	)
	emit := func(id osm.NodeID, info nodeInfo) {
		if _, done := emitted[id]; done {
			return
		}
		emitted[id] = struct{}{}
		node := campus.OutdoorNode{ID: NodeID(id), Lat: info.lat, Lon: info.lon}
		if label, building, ok := entrance(info.tags); ok {
			node.Label = label
			node.BuildNum = building
			node.Type = []campus.NodeType{campus.MainEntrance}
			entrances++
		}
		out.Nodes = append(out.Nodes, node)
	}

	for _, w := range ways {
		for i := 0; i < len(w)-1; i++ {
			fromID, toID := w[i], w[i+1]
			from, fromOK := nodes[fromID]
			to, toOK := nodes[toID]
			if !fromOK || !toOK {
				skippedEdges++
				continue
			}

			// Bounding box filter: skip edges with any endpoint outside.
			if useBBox && (!opt.BBox.Contains(from.lat, from.lon) || !opt.BBox.Contains(to.lat, to.lon)) {
				bboxFiltered++
				continue
			}

			emit(fromID, from)
			emit(toID, to)
			out.Edges = append(out.Edges, campus.Edge{
				From:   NodeID(fromID),
				To:     NodeID(toID),
				Weight: geo.Haversine(from.lat, from.lon, to.lat, to.lon),
			})
		}
	}

	if skippedEdges > 0 {
		log.Printf("Warning: skipped %d edges due to missing node coordinates", skippedEdges)
	}
	if bboxFiltered > 0 {
		log.Printf("Filtered %d edges outside bounding box", bboxFiltered)
	}
	log.Printf("Built %d footpath edges, %d nodes, %d entrances", len(out.Edges), len(out.Nodes), entrances)

	if opt.LargestComponent {
		out = largestComponent(out)
	}
	return &out, nil
}

// ImportFile opens path and imports it, detecting the format from the file
// name.
func ImportFile(ctx context.Context, path string, opt Options) (*campus.OutdoorGraph, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	opt.Format = format

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return Import(ctx, f, opt)
}

// largestComponent drops every node and edge outside the largest connected
// component.
func largestComponent(g campus.OutdoorGraph) campus.OutdoorGraph {
	ds := &campus.Dataset{Outdoor: g}
	ug := graph.Build(ds)
	keep := make(map[string]struct{})
	for _, idx := range graph.LargestComponent(ug) {
		keep[ug.Nodes[idx].ID()] = struct{}{}
	}

	var out campus.OutdoorGraph
	for _, n := range g.Nodes {
		if _, ok := keep[n.ID]; ok {
			out.Nodes = append(out.Nodes, n)
		}
	}
	for _, e := range g.Edges {
		if _, ok := keep[e.From]; ok {
			out.Edges = append(out.Edges, e)
		}
	}
	if dropped := len(g.Nodes) - len(out.Nodes); dropped > 0 {
		log.Printf("Largest component: kept %d nodes, dropped %d", len(out.Nodes), dropped)
	}
	return out
}
