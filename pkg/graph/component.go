package graph

// UnionFind implements a disjoint-set data structure with path compression
// and union by rank.
type UnionFind struct {
	parent []uint32
	rank   []byte
	size   []uint32
}

// NewUnionFind creates a UnionFind for n elements.
func NewUnionFind(n uint32) *UnionFind {
	parent := make([]uint32, n)
	size := make([]uint32, n)
	for i := range n {
		parent[i] = i
		size[i] = 1
	}
	return &UnionFind{
		parent: parent,
		rank:   make([]byte, n),
		size:   size,
	}
}

// Find returns the representative of the set containing x, with path halving.
func (uf *UnionFind) Find(x uint32) uint32 {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]] // path halving
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets containing x and y. Returns false if already same set.
func (uf *UnionFind) Union(x, y uint32) bool {
	rx := uf.Find(x)
	ry := uf.Find(y)
	if rx == ry {
		return false
	}

	// Union by rank.
	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
	return true
}

// Size returns the number of elements in the set containing x.
func (uf *UnionFind) Size(x uint32) uint32 {
	return uf.size[uf.Find(x)]
}

// componentRoots returns, for every node, the representative of its
// connected component and the size of that component. Adjacency is
// symmetric so one pass over the half-edges is enough.
func componentRoots(g *Graph) (roots, sizes []uint32) {
	n := uint32(len(g.Nodes))
	uf := NewUnionFind(n)
	for u := uint32(0); u < n; u++ {
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			uf.Union(u, g.Head[e])
		}
	}

	roots = make([]uint32, n)
	sizes = make([]uint32, n)
	for i := uint32(0); i < n; i++ {
		roots[i] = uf.Find(i)
		sizes[i] = uf.Size(i)
	}
	return roots, sizes
}

// LargestComponent returns the node indices of the largest connected
// component. Ties go to the component whose representative comes first.
func LargestComponent(g *Graph) []uint32 {
	if len(g.Nodes) == 0 {
		return nil
	}

	bestRoot, bestSize := g.comp[0], uint32(0)
	for i, root := range g.comp {
		if uint32(i) == root && g.compSize[i] > bestSize {
			bestRoot, bestSize = root, g.compSize[i]
		}
	}

	nodes := make([]uint32, 0, bestSize)
	for i, root := range g.comp {
		if root == bestRoot {
			nodes = append(nodes, uint32(i))
		}
	}
	return nodes
}
