package navigation

import (
	"fmt"

	"campusnav/pkg/campus"
	"campusnav/pkg/graph"
	"campusnav/pkg/render"
)

type floorKey struct {
	building int
	floor    int
}

// run is a maximal stretch of a path sharing domain, building and floor.
type run struct {
	outdoor    bool
	building   int
	floor      int
	nodes      []uint32
	stairsOnly bool
}

func (r run) sameLocation(o run) bool {
	return r.outdoor == o.outdoor && r.building == o.building && r.floor == o.floor
}

// RouteBuilder converts resolved paths into navigation steps.
type RouteBuilder struct {
	ds         *campus.Dataset
	g          *graph.Graph
	floors     *campus.FloorIndex
	renderer   *render.Renderer
	floorNodes map[floorKey][]*campus.IndoorNode
}

// NewRouteBuilder creates a builder. g must have been built from ds.
func NewRouteBuilder(ds *campus.Dataset, g *graph.Graph, floors *campus.FloorIndex, renderer *render.Renderer) *RouteBuilder {
	fn := make(map[floorKey][]*campus.IndoorNode)
	for i := range ds.Indoor.Nodes {
		n := &ds.Indoor.Nodes[i]
		k := floorKey{building: n.Building(), floor: n.FloorNum}
		fn[k] = append(fn[k], n)
	}
	return &RouteBuilder{ds: ds, g: g, floors: floors, renderer: renderer, floorNodes: fn}
}

// Build returns the steps of path in traversal order.
func (b *RouteBuilder) Build(path []uint32) []Step {
	if len(path) == 0 {
		return nil
	}
	runs := collapseStairs(b.splitRuns(path))
	startID := b.g.Nodes[path[0]].ID()
	endID := b.g.Nodes[path[len(path)-1]].ID()

	steps := make([]Step, 0, 2*len(runs))
	for i, r := range runs {
		if i > 0 {
			steps = append(steps, transition(runs[i-1], r))
		}
		if r.outdoor {
			steps = append(steps, b.outdoorSegment(runs, i))
			continue
		}
		steps = append(steps, b.byFloor(r, startID, endID))
	}
	return steps
}

// splitRuns partitions path into runs. Indoor floors come from the floor
// index, not the declared floor number.
func (b *RouteBuilder) splitRuns(path []uint32) []run {
	var runs []run
	for _, idx := range path {
		n := b.g.Nodes[idx]
		cur := run{outdoor: true}
		if !n.IsOutdoor() {
			cur = run{building: n.Building(), floor: b.floors.FloorOf(n.In)}
		}
		stairs := n.Has(campus.Stairs)
		if last := len(runs) - 1; last >= 0 && runs[last].sameLocation(cur) {
			runs[last].nodes = append(runs[last].nodes, idx)
			runs[last].stairsOnly = runs[last].stairsOnly && stairs
			continue
		}
		cur.nodes = []uint32{idx}
		cur.stairsOnly = stairs
		runs = append(runs, cur)
	}
	return runs
}

// collapseStairs drops intermediate indoor runs made only of STAIRS nodes
// when both neighbours are in the same building, so that passing through a
// floor on the staircase yields a single floor transition.
func collapseStairs(runs []run) []run {
	out := make([]run, 0, len(runs))
	for i, r := range runs {
		if i > 0 && i < len(runs)-1 && len(out) > 0 && !r.outdoor && r.stairsOnly {
			prev, next := out[len(out)-1], runs[i+1]
			if !prev.outdoor && !next.outdoor && prev.building == r.building && next.building == r.building {
				continue
			}
		}
		if last := len(out) - 1; last >= 0 && out[last].sameLocation(r) {
			out[last].nodes = append(out[last].nodes, r.nodes...)
			out[last].stairsOnly = out[last].stairsOnly && r.stairsOnly
			continue
		}
		out = append(out, r)
	}
	return out
}

func transition(from, to run) Step {
	switch {
	case !from.outdoor && to.outdoor:
		return TransitionToOutdoor{FromBuilding: from.building}
	case from.outdoor && !to.outdoor:
		return TransitionToIndoor{ToBuilding: to.building}
	case from.building != to.building:
		return TransitionToBuilding{From: from.building, To: to.building}
	}
	return TransitionToFloor{From: from.floor, To: to.floor}
}

func (b *RouteBuilder) byFloor(r run, startID, endID string) ByFloor {
	in := render.Input{
		Path:       make([]*campus.IndoorNode, len(r.nodes)),
		FloorNodes: b.floorNodes[floorKey{building: r.building, floor: r.floor}],
		StartID:    startID,
		EndID:      endID,
	}
	for i, idx := range r.nodes {
		in.Path[i] = b.g.Nodes[idx].In
	}
	if fl, ok := b.ds.Floor(r.building, r.floor); ok {
		in.Plan = fl.Plan
	}

	scene := b.renderer.Floor(in)
	return ByFloor{
		Floor:           r.floor,
		Building:        r.building,
		Scene:           scene,
		Image:           b.renderer.SVG(scene),
		PointOfInterest: scene.PointOfInterest,
		RouteBounds:     scene.RouteBounds,
	}
}

// outdoorSegment builds the segment for runs[i]. Unlabelled ends are
// described by the building on the other side of the entrance.
func (b *RouteBuilder) outdoorSegment(runs []run, i int) OutdoorSegment {
	r := runs[i]
	seg := OutdoorSegment{Path: make([]*campus.OutdoorNode, len(r.nodes))}
	for j, idx := range r.nodes {
		seg.Path[j] = b.g.Nodes[idx].Out
	}

	first, last := seg.Path[0], seg.Path[len(seg.Path)-1]
	seg.FromDescription = first.Label
	if seg.FromDescription == "" && i > 0 {
		seg.FromDescription = buildingName(runs[i-1].building)
	}
	seg.ToDescription = last.Label
	if seg.ToDescription == "" && i < len(runs)-1 {
		seg.ToDescription = buildingName(runs[i+1].building)
	}
	return seg
}

func buildingName(n int) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("Building %d", n)
}
