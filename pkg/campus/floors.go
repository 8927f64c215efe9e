package campus

import (
	"math"
	"sort"
)

type floorKey struct {
	building int
	floor    int
}

// FloorIndex maps indoor node elevations to floor numbers by nearest mean z
// of the floors of the node's building.
type FloorIndex struct {
	means map[int][]floorMean // building -> floors sorted by number
}

type floorMean struct {
	floor int
	z     float64
}

// NewFloorIndex computes per-floor mean elevations from the indoor nodes.
func NewFloorIndex(nodes []IndoorNode) *FloorIndex {
	sums := make(map[floorKey]float64)
	counts := make(map[floorKey]int)
	for i := range nodes {
		k := floorKey{building: nodes[i].Building(), floor: nodes[i].FloorNum}
		sums[k] += nodes[i].Z
		counts[k]++
	}

	means := make(map[int][]floorMean)
	for k, sum := range sums {
		means[k.building] = append(means[k.building], floorMean{
			floor: k.floor,
			z:     sum / float64(counts[k]),
		})
	}
	for b := range means {
		fl := means[b]
		sort.Slice(fl, func(i, j int) bool { return fl[i].floor < fl[j].floor })
	}
	return &FloorIndex{means: means}
}

// FloorOf returns the floor whose mean elevation is closest to n.Z within the
// node's building. Ties resolve to the lower floor. Without samples for the
// building the declared floor number is returned.
func (fi *FloorIndex) FloorOf(n *IndoorNode) int {
	floors := fi.means[n.Building()]
	if len(floors) == 0 {
		return n.FloorNum
	}
	best := floors[0].floor
	bestDiff := math.Inf(1)
	for _, f := range floors {
		if d := math.Abs(f.z - n.Z); d < bestDiff {
			best = f.floor
			bestDiff = d
		}
	}
	return best
}
