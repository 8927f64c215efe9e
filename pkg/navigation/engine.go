package navigation

import (
	"errors"
	"fmt"
	"log"
	"math"
	"slices"
	"sort"

	"campusnav/pkg/campus"
	"campusnav/pkg/graph"
	"campusnav/pkg/render"
	"campusnav/pkg/routing"
)

// ErrUnknownNode is returned when a node id is not in the dataset.
var ErrUnknownNode = errors.New("unknown node")

const (
	// DefaultMaxResults caps the number of returned directions.
	DefaultMaxResults = 4

	// acceptableFactor bounds how much longer than the fastest route an
	// indoor-preferring route may be and still rank first.
	acceptableFactor = 1.3
	// outdoorTieMeters is the outdoor distance difference below which
	// routes are compared by total distance instead.
	outdoorTieMeters = 10.0
	// maxCandidates bounds the search strategies run per query.
	maxCandidates = 4
)

// Options configures an Engine.
type Options struct {
	PreferIndoor    bool    // default ranking preference for callers that do not choose
	MaxResults      int     // <= 0 means DefaultMaxResults
	ConnectorWeight float64 // <= 0 means graph.DefaultConnectorWeight
	Render          render.Options
}

// DefaultOptions returns the standard engine options.
func DefaultOptions() Options {
	return Options{
		PreferIndoor:    true,
		MaxResults:      DefaultMaxResults,
		ConnectorWeight: graph.DefaultConnectorWeight,
		Render:          render.DefaultOptions(),
	}
}

// Engine computes ranked directions over one dataset. It is immutable after
// NewEngine and safe for concurrent use.
type Engine struct {
	ds      *campus.Dataset
	g       *graph.Graph
	pf      *routing.PathFinder
	dist    routing.DistanceCalculator
	builder *RouteBuilder
	snapper *routing.Snapper
	opts    Options
}

// NewEngine builds the unified graph and every index over ds. ds must not be
// mutated afterwards.
func NewEngine(ds *campus.Dataset, opts Options) *Engine {
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	g := graph.Build(ds, graph.BuildOptions{ConnectorWeight: opts.ConnectorWeight})
	renderer := render.NewRenderer(opts.Render)
	opts.Render = renderer.Options()

	e := &Engine{
		ds:      ds,
		g:       g,
		pf:      routing.NewPathFinder(g),
		dist:    routing.NewDistanceCalculator(g),
		builder: NewRouteBuilder(ds, g, campus.NewFloorIndex(ds.Indoor.Nodes), renderer),
		snapper: routing.NewSnapper(g),
		opts:    opts,
	}

	log.Printf("Graph: %d nodes (%d indoor, %d outdoor), %d edges, %d connectors, %d components",
		g.NumNodes(), len(ds.Indoor.Nodes), len(ds.Outdoor.Nodes),
		g.NumStoredEdges, g.NumConnectors, g.NumComponents())
	log.Printf("Snapping index: %d outdoor nodes", e.snapper.Len())
	if g.NumSkipped > 0 {
		log.Printf("Warning: skipped %d edges referencing unknown nodes", g.NumSkipped)
	}
	if len(g.Unmatched) > 0 {
		log.Printf("Warning: %d indoor entrances have no outdoor entrance: %v", len(g.Unmatched), g.Unmatched)
	}
	return e
}

// NewEngineFromCache builds an engine over the dataset held by c, loading it
// on first use. Engines built from the same cache share one dataset.
func NewEngineFromCache(c *campus.Cache, opts Options) (*Engine, error) {
	ds, err := c.Get()
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return NewEngine(ds, opts), nil
}

// Options returns the effective engine options.
func (e *Engine) Options() Options { return e.opts }

// Node looks up a node by id.
func (e *Engine) Node(id string) (graph.Node, bool) {
	idx, ok := e.g.Lookup(id)
	if !ok {
		return graph.Node{}, false
	}
	return e.g.Nodes[idx], true
}

// candidate is a searched path with its measured distances.
type candidate struct {
	path    []uint32
	total   float64
	outdoor float64
}

// ComputeRoutes returns up to MaxResults ranked directions from one node to
// another. Disconnected nodes yield an empty result, not an error.
func (e *Engine) ComputeRoutes(from, to string, preferIndoor bool) ([]Direction, error) {
	s, ok := e.g.Lookup(from)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, from)
	}
	t, ok := e.g.Lookup(to)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, to)
	}
	if !e.g.Connected(s, t) {
		return nil, nil
	}

	paths := e.candidatePaths(s, t)
	if len(paths) == 0 {
		return nil, nil
	}

	cands := make([]candidate, len(paths))
	for i, p := range paths {
		cands[i] = candidate{path: p, total: e.dist.Total(p), outdoor: e.dist.Outdoor(p)}
	}
	rank(cands, preferIndoor)
	badges := assignBadges(cands, preferIndoor)

	n := min(len(cands), e.opts.MaxResults)
	dirs := make([]Direction, n)
	for i := range n {
		dirs[i] = Direction{
			Steps:                 e.builder.Build(cands[i].path),
			TotalDistanceMeters:   cands[i].total,
			OutdoorDistanceMeters: cands[i].outdoor,
			Badge:                 badges[i],
		}
	}
	return dirs, nil
}

// candidatePaths runs every weighting strategy and returns the distinct
// paths in strategy order.
func (e *Engine) candidatePaths(s, t uint32) [][]uint32 {
	var paths [][]uint32
	add := func(p routing.Path, ok bool) {
		if !ok {
			return
		}
		for _, q := range paths {
			if slices.Equal(q, p.Nodes) {
				return
			}
		}
		paths = append(paths, p.Nodes)
	}

	std, stdOK := e.pf.FindPath(s, t, routing.Standard)
	add(std, stdOK)
	add(e.pf.FindPath(s, t, routing.IndoorPreferred(e.g)))
	add(e.pf.FindPath(s, t, routing.OutdoorPreferred(e.g)))
	if stdOK && len(paths) < maxCandidates {
		add(e.pf.FindPath(s, t, routing.Avoiding(std.Nodes, routing.AlternativePenalty)))
	}
	return paths
}

// rank orders candidates in place. With preferIndoor, candidates within
// acceptableFactor of the fastest come first; inside each group a clear
// outdoor-distance difference decides, otherwise total distance. The sort
// is stable so equal candidates keep strategy order.
func rank(cands []candidate, preferIndoor bool) {
	fastest := math.Inf(1)
	for _, c := range cands {
		fastest = math.Min(fastest, c.total)
	}
	maxAcceptable := fastest * acceptableFactor

	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if !preferIndoor {
			return a.total < b.total
		}
		aOK, bOK := a.total <= maxAcceptable, b.total <= maxAcceptable
		if aOK != bOK {
			return aOK
		}
		if math.Abs(a.outdoor-b.outdoor) > outdoorTieMeters {
			return a.outdoor < b.outdoor
		}
		return a.total < b.total
	})
}

// assignBadges labels ranked candidates. Rules are tried in order per
// candidate and only the first candidate with the minimum total distance is
// labelled Fastest.
func assignBadges(cands []candidate, preferIndoor bool) []Badge {
	fastest, minOutdoor := math.Inf(1), math.Inf(1)
	for _, c := range cands {
		fastest = math.Min(fastest, c.total)
		minOutdoor = math.Min(minOutdoor, c.outdoor)
	}

	badges := make([]Badge, len(cands))
	fastestTaken := false
	for i, c := range cands {
		switch {
		case c.total == fastest && !fastestTaken:
			badges[i] = BadgeFastest
			fastestTaken = true
		case c.outdoor == minOutdoor && c.outdoor < c.total*0.5:
			badges[i] = BadgeMostlyIndoor
		case preferIndoor && c.outdoor == minOutdoor:
			badges[i] = BadgeRecommended
		case c.outdoor > 0 && c.outdoor < c.total*0.3:
			badges[i] = BadgeBalanced
		}
	}
	return badges
}
