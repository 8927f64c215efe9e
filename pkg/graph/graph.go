package graph

import (
	"github.com/paulmach/orb"

	"campusnav/pkg/campus"
)

// Kind tells which domain a node belongs to.
type Kind uint8

const (
	Indoor Kind = iota
	Outdoor
)

func (k Kind) String() string {
	if k == Outdoor {
		return "outdoor"
	}
	return "indoor"
}

// Node refers to one dataset node. It never owns node data: exactly one of
// In/Out is set, pointing into the dataset the graph was built from.
type Node struct {
	Kind Kind
	In   *campus.IndoorNode
	Out  *campus.OutdoorNode
}

// ID returns the dataset id of the node.
func (n Node) ID() string {
	if n.Kind == Outdoor {
		return n.Out.ID
	}
	return n.In.ID
}

// Label returns the node's human-readable label, possibly empty.
func (n Node) Label() string {
	if n.Kind == Outdoor {
		return n.Out.Label
	}
	return n.In.Label
}

// Has reports whether the node carries tag t.
func (n Node) Has(t campus.NodeType) bool {
	if n.Kind == Outdoor {
		return n.Out.Has(t)
	}
	return n.In.Has(t)
}

// Building returns the node's building number (0 if unknown).
func (n Node) Building() int {
	if n.Kind == Outdoor {
		return n.Out.Building()
	}
	return n.In.Building()
}

// IsOutdoor reports whether the node is an outdoor geo-node.
func (n Node) IsOutdoor() bool { return n.Kind == Outdoor }

// LonLat returns the position of an outdoor node as an orb point
// (X = longitude, Y = latitude). ok is false for indoor nodes.
func (n Node) LonLat() (p orb.Point, ok bool) {
	if n.Kind != Outdoor {
		return orb.Point{}, false
	}
	return orb.Point{n.Out.Lon, n.Out.Lat}, true
}

// Graph is the unified, immutable routing graph: every dataset node in one
// arena, adjacency in CSR (Compressed Sparse Row) format with each stored
// edge present in both directions, plus entrance connector edges.
type Graph struct {
	Nodes    []Node            // arena; index is the node's uint32 handle
	FirstOut []uint32          // len: len(Nodes)+1; FirstOut[i]..FirstOut[i+1] are edges from node i
	Head     []uint32          // target node for each half-edge
	Weight   []float64         // weight of each half-edge
	index    map[string]uint32 // dataset id -> arena index
	comp     []uint32          // connected component representative per node
	compSize []uint32          // size of each node's component

	NumStoredEdges int      // edges taken from the dataset
	NumConnectors  int      // synthetic entrance connectors
	NumSkipped     int      // dataset edges referencing unknown node ids
	Unmatched      []string // indoor entrances left without a connector
}

// NumNodes returns the number of nodes in the arena.
func (g *Graph) NumNodes() int { return len(g.Nodes) }

// EdgesFrom returns the range of half-edge indices for edges leaving u.
func (g *Graph) EdgesFrom(u uint32) (start, end uint32) {
	return g.FirstOut[u], g.FirstOut[u+1]
}

// Lookup resolves a dataset id to its arena index.
func (g *Graph) Lookup(id string) (uint32, bool) {
	idx, ok := g.index[id]
	return idx, ok
}

// EdgeWeight returns the weight of the u->v edge. With parallel edges the
// lightest one wins, which is the one a shortest-path search relaxes.
func (g *Graph) EdgeWeight(u, v uint32) (float64, bool) {
	var (
		best  float64
		found bool
	)
	start, end := g.EdgesFrom(u)
	for e := start; e < end; e++ {
		if g.Head[e] == v && (!found || g.Weight[e] < best) {
			best, found = g.Weight[e], true
		}
	}
	return best, found
}

// Connected reports whether u and v lie in the same connected component.
func (g *Graph) Connected(u, v uint32) bool {
	return g.comp[u] == g.comp[v]
}

// NumComponents counts connected components.
func (g *Graph) NumComponents() int {
	n := 0
	for i, root := range g.comp {
		if uint32(i) == root {
			n++
		}
	}
	return n
}
