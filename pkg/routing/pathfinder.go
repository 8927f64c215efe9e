// Package routing searches the unified campus graph: Dijkstra with
// caller-supplied edge weighting, nearest-node lookups, path distance
// accounting and coordinate snapping.
package routing

import (
	"math"

	"campusnav/pkg/graph"
)

const noNode = math.MaxUint32

// WeightFunc returns the multiplier applied to the stored weight of the
// half-edge u->v. It must return a positive value.
type WeightFunc func(u, v uint32) float64

// Path is a resolved node sequence with its cost under the weighting it was
// searched with.
type Path struct {
	Nodes []uint32
	Cost  float64
}

// PathFinder runs Dijkstra over an immutable graph. It keeps no per-query
// state, so one PathFinder may serve concurrent searches.
type PathFinder struct {
	g *graph.Graph
}

// NewPathFinder creates a path finder over g.
func NewPathFinder(g *graph.Graph) *PathFinder {
	return &PathFinder{g: g}
}

// FindPath returns the cheapest path from start to end under weight. A nil
// weight means Standard. ok is false when end is unreachable; that is an
// expected outcome, not an error.
func (pf *PathFinder) FindPath(start, end uint32, weight WeightFunc) (path Path, ok bool) {
	if weight == nil {
		weight = Standard
	}
	n := pf.g.NumNodes()
	dist := make([]float64, n)
	pred := make([]uint32, n)
	for i := range dist {
		dist[i] = math.Inf(1)
		pred[i] = noNode
	}
	dist[start] = 0

	pq := NewMinHeap[uint32, float64](64)
	pq.Push(start, 0)

	for pq.Len() > 0 {
		cur := pq.Pop()
		u := cur.Value
		if cur.Priority > dist[u] {
			continue // stale entry
		}
		if u == end {
			break
		}
		es, ee := pf.g.EdgesFrom(u)
		for e := es; e < ee; e++ {
			v := pf.g.Head[e]
			nd := cur.Priority + pf.g.Weight[e]*weight(u, v)
			if nd < dist[v] {
				dist[v] = nd
				pred[v] = u
				pq.Push(v, nd)
			}
		}
	}

	if math.IsInf(dist[end], 1) {
		return Path{}, false
	}
	return Path{Nodes: unwind(pred, start, end), Cost: dist[end]}, true
}

// FindNearest returns the node closest to start (standard weights) that
// satisfies match. start itself is a candidate.
func (pf *PathFinder) FindNearest(start uint32, match func(uint32) bool) (uint32, bool) {
	n := pf.g.NumNodes()
	dist := make([]float64, n)
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	dist[start] = 0

	pq := NewMinHeap[uint32, float64](64)
	pq.Push(start, 0)

	for pq.Len() > 0 {
		cur := pq.Pop()
		u := cur.Value
		if cur.Priority > dist[u] {
			continue
		}
		if match(u) {
			return u, true
		}
		es, ee := pf.g.EdgesFrom(u)
		for e := es; e < ee; e++ {
			v := pf.g.Head[e]
			if nd := cur.Priority + pf.g.Weight[e]; nd < dist[v] {
				dist[v] = nd
				pq.Push(v, nd)
			}
		}
	}
	return 0, false
}

// unwind walks predecessors back from end and returns the path start..end.
func unwind(pred []uint32, start, end uint32) []uint32 {
	var nodes []uint32
	for v := end; v != noNode; v = pred[v] {
		nodes = append(nodes, v)
		if v == start {
			break
		}
	}
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	return nodes
}
