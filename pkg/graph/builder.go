package graph

import (
	"strings"

	"campusnav/pkg/campus"
)

// DefaultConnectorWeight is the estimated cost of crossing a building
// entrance. It is not derived from geometry.
const DefaultConnectorWeight = 5.0

// BuildOptions configures Build.
type BuildOptions struct {
	ConnectorWeight float64 // weight of entrance connectors; <= 0 means DefaultConnectorWeight
}

// Build creates the unified graph from a dataset. The returned graph keeps
// pointers into ds, which must not be mutated afterwards.
func Build(ds *campus.Dataset, opts ...BuildOptions) *Graph {
	var opt BuildOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	if opt.ConnectorWeight <= 0 {
		opt.ConnectorWeight = DefaultConnectorWeight
	}

	// Step 1: Place every node in the arena, indoor first.
	numNodes := len(ds.Indoor.Nodes) + len(ds.Outdoor.Nodes)
	g := &Graph{
		Nodes: make([]Node, 0, numNodes),
		index: make(map[string]uint32, numNodes),
	}
	for i := range ds.Indoor.Nodes {
		n := &ds.Indoor.Nodes[i]
		g.index[n.ID] = uint32(len(g.Nodes))
		g.Nodes = append(g.Nodes, Node{Kind: Indoor, In: n})
	}
	var outdoorEntrances []uint32
	for i := range ds.Outdoor.Nodes {
		n := &ds.Outdoor.Nodes[i]
		idx := uint32(len(g.Nodes))
		g.index[n.ID] = idx
		g.Nodes = append(g.Nodes, Node{Kind: Outdoor, Out: n})
		if n.Has(campus.MainEntrance) {
			outdoorEntrances = append(outdoorEntrances, idx)
		}
	}

	// Step 2: Collect half-edges in insertion order, each stored edge twice.
	type halfEdge struct {
		from   uint32
		to     uint32
		weight float64
	}
	half := make([]halfEdge, 0, 2*(len(ds.Indoor.Edges)+len(ds.Outdoor.Edges)))

	addStored := func(edges []campus.Edge) {
		for _, e := range edges {
			u, okU := g.index[e.From]
			v, okV := g.index[e.To]
			if !okU || !okV {
				g.NumSkipped++
				continue
			}
			half = append(half,
				halfEdge{from: u, to: v, weight: e.Weight},
				halfEdge{from: v, to: u, weight: e.Weight},
			)
			g.NumStoredEdges++
		}
	}
	addStored(ds.Indoor.Edges)
	addStored(ds.Outdoor.Edges)

	// Step 3: Connect indoor main entrances to outdoor main entrances.
	for i := range ds.Indoor.Nodes {
		n := &ds.Indoor.Nodes[i]
		if !n.Has(campus.MainEntrance) {
			continue
		}
		out, ok := g.matchEntrance(n, outdoorEntrances)
		if !ok {
			g.Unmatched = append(g.Unmatched, n.ID)
			continue
		}
		in := g.index[n.ID]
		half = append(half,
			halfEdge{from: in, to: out, weight: opt.ConnectorWeight},
			halfEdge{from: out, to: in, weight: opt.ConnectorWeight},
		)
		g.NumConnectors++
	}

	// Step 4: Build CSR arrays with a stable counting sort on the source node.
	g.FirstOut = make([]uint32, numNodes+1)
	for _, h := range half {
		g.FirstOut[h.from+1]++
	}
	for i := 1; i <= numNodes; i++ {
		g.FirstOut[i] += g.FirstOut[i-1]
	}

	g.Head = make([]uint32, len(half))
	g.Weight = make([]float64, len(half))
	pos := make([]uint32, numNodes)
	copy(pos, g.FirstOut[:numNodes])
	for _, h := range half {
		idx := pos[h.from]
		g.Head[idx] = h.to
		g.Weight[idx] = h.weight
		pos[h.from]++
	}

	// Step 5: Label connected components.
	g.comp, g.compSize = componentRoots(g)

	return g
}

// matchEntrance picks the outdoor main entrance for an indoor entrance.
// Candidates whose label mentions the building number as a separate token
// win ("Building 1" for building 1, not "Building 12"); then any label
// containing the number ("B2 entrance"); otherwise the first outdoor
// entrance at all.
func (g *Graph) matchEntrance(entrance *campus.IndoorNode, candidates []uint32) (uint32, bool) {
	if len(candidates) == 0 {
		return 0, false
	}
	building := strings.TrimSpace(entrance.BuildNum)
	if building != "" {
		for _, c := range candidates {
			if containsToken(g.Nodes[c].Out.Label, building) {
				return c, true
			}
		}
		for _, c := range candidates {
			if strings.Contains(g.Nodes[c].Out.Label, building) {
				return c, true
			}
		}
	}
	// TODO: pick the geographically nearest candidate once indoor floor
	// plans carry a geo-reference; the first entrance can sit in another
	// part of the campus.
	return candidates[0], true
}

// containsToken reports whether token occurs in s without being glued to
// other letters or digits ("1" matches "Building 1" but not "Building 12").
func containsToken(s, token string) bool {
	for from := 0; ; {
		i := strings.Index(s[from:], token)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(token)
		if (start == 0 || !isAlnum(s[start-1])) && (end == len(s) || !isAlnum(s[end])) {
			return true
		}
		from = start + 1
	}
}

func isAlnum(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
