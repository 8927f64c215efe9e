package routing

import (
	"campusnav/pkg/geo"
	"campusnav/pkg/graph"
)

// DistanceCalculator measures resolved paths in meters using the same edge
// weights the search relaxes.
type DistanceCalculator struct {
	g *graph.Graph
}

// NewDistanceCalculator creates a calculator over g.
func NewDistanceCalculator(g *graph.Graph) DistanceCalculator {
	return DistanceCalculator{g: g}
}

// Total sums the length of every consecutive pair on path.
func (d DistanceCalculator) Total(path []uint32) float64 {
	var sum float64
	for i := 1; i < len(path); i++ {
		sum += d.step(path[i-1], path[i])
	}
	return sum
}

// Outdoor sums the length of pairs where at least one endpoint is outdoor.
func (d DistanceCalculator) Outdoor(path []uint32) float64 {
	var sum float64
	for i := 1; i < len(path); i++ {
		u, v := path[i-1], path[i]
		if d.g.Nodes[u].IsOutdoor() || d.g.Nodes[v].IsOutdoor() {
			sum += d.step(u, v)
		}
	}
	return sum
}

// step is the edge weight when u and v are adjacent, else the great-circle
// distance when both are outdoor, else 0.
func (d DistanceCalculator) step(u, v uint32) float64 {
	if w, ok := d.g.EdgeWeight(u, v); ok {
		return w
	}
	a, aok := d.g.Nodes[u].LonLat()
	b, bok := d.g.Nodes[v].LonLat()
	if aok && bok {
		return geo.Haversine(a.Lat(), a.Lon(), b.Lat(), b.Lon())
	}
	return 0
}
