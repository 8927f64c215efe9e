package routing

import (
	"errors"
	"math"

	"github.com/tidwall/rtree"

	"campusnav/pkg/geo"
	"campusnav/pkg/graph"
)

const maxSnapDistMeters = 500.0

// ErrPointTooFar is returned when no outdoor node lies within snapping range.
var ErrPointTooFar = errors.New("point too far from outdoor graph")

// SnapResult is a query point resolved to an outdoor node.
type SnapResult struct {
	Node uint32  // arena index of the outdoor node
	Dist float64 // meters from the query point to the node
}

// Snapper finds the outdoor node nearest to a lat/lng. Outdoor nodes are
// indexed as points in an R-tree keyed by (lon, lat).
type Snapper struct {
	tree rtree.RTreeG[uint32]
	g    *graph.Graph
}

// NewSnapper indexes every outdoor node of g.
func NewSnapper(g *graph.Graph) *Snapper {
	s := &Snapper{g: g}
	for i, n := range g.Nodes {
		p, ok := n.LonLat()
		if !ok {
			continue
		}
		pt := [2]float64{p.Lon(), p.Lat()}
		s.tree.Insert(pt, pt, uint32(i))
	}
	return s
}

// Len returns the number of indexed nodes.
func (s *Snapper) Len() int { return s.tree.Len() }

// Snap returns the nearest outdoor node within 500 m of lat/lng.
func (s *Snapper) Snap(lat, lng float64) (SnapResult, error) {
	dLat, dLon := geo.DegreeSpan(lat, maxSnapDistMeters)
	lo := [2]float64{lng - dLon, lat - dLat}
	hi := [2]float64{lng + dLon, lat + dLat}

	best := SnapResult{Node: noNode, Dist: math.Inf(1)}
	s.tree.Search(lo, hi, func(pt, _ [2]float64, idx uint32) bool {
		d := geo.Haversine(lat, lng, pt[1], pt[0])
		// Ties go to the lower index so results do not depend on tree layout.
		if d < best.Dist || (d == best.Dist && idx < best.Node) {
			best = SnapResult{Node: idx, Dist: d}
		}
		return true
	})

	if best.Node == noNode || best.Dist > maxSnapDistMeters {
		return SnapResult{}, ErrPointTooFar
	}
	return best, nil
}
