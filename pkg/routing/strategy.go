package routing

import "campusnav/pkg/graph"

const (
	// DomainPenalty discourages the unwanted domain in the indoor- and
	// outdoor-preferred strategies.
	DomainPenalty = 50.0
	// AlternativePenalty is applied to every edge of the standard path when
	// searching for an alternative.
	AlternativePenalty = 3.0
)

// Standard leaves stored weights unchanged.
func Standard(u, v uint32) float64 { return 1 }

// IndoorPreferred penalises every edge touching an outdoor node.
func IndoorPreferred(g *graph.Graph) WeightFunc {
	return func(u, v uint32) float64 {
		if g.Nodes[u].IsOutdoor() || g.Nodes[v].IsOutdoor() {
			return DomainPenalty
		}
		return 1
	}
}

// OutdoorPreferred penalises every edge between two indoor nodes.
func OutdoorPreferred(g *graph.Graph) WeightFunc {
	return func(u, v uint32) float64 {
		if !g.Nodes[u].IsOutdoor() && !g.Nodes[v].IsOutdoor() {
			return DomainPenalty
		}
		return 1
	}
}

// Avoiding multiplies the weight of every edge on path, in either
// direction, by penalty.
func Avoiding(path []uint32, penalty float64) WeightFunc {
	used := make(map[uint64]struct{}, 2*len(path))
	for i := 1; i < len(path); i++ {
		a, b := path[i-1], path[i]
		used[edgeKey(a, b)] = struct{}{}
		used[edgeKey(b, a)] = struct{}{}
	}
	return func(u, v uint32) float64 {
		if _, ok := used[edgeKey(u, v)]; ok {
			return penalty
		}
		return 1
	}
}

func edgeKey(u, v uint32) uint64 {
	return uint64(u)<<32 | uint64(v)
}
