package navigation

import (
	"errors"
	"fmt"

	"campusnav/pkg/campus"
	"campusnav/pkg/graph"
)

// ErrNotFound is returned when no node reachable from the reference matches
// a nearest-of-kind selection.
var ErrNotFound = errors.New("no matching node reachable")

// NearestKind is a "take me to the closest one" selection.
type NearestKind string

const (
	NearestManWC        NearestKind = "wc_man"
	NearestWomanWC      NearestKind = "wc_woman"
	NearestMainEntrance NearestKind = "main_entrance"
)

// ParseNearestKind validates a wire name.
func ParseNearestKind(s string) (NearestKind, bool) {
	switch k := NearestKind(s); k {
	case NearestManWC, NearestWomanWC, NearestMainEntrance:
		return k, true
	}
	return "", false
}

func (k NearestKind) tag() campus.NodeType {
	switch k {
	case NearestManWC:
		return campus.WCMan
	case NearestWomanWC:
		return campus.WCWoman
	}
	return campus.MainEntrance
}

// Selection is a route endpoint chosen by the user: a concrete node, or the
// nearest node of a kind relative to some reference node.
type Selection struct {
	NodeID  string
	Nearest NearestKind // when set, NodeID is ignored
}

// Resolve turns a selection into a node id. reference is only consulted for
// nearest-of-kind selections; the reference itself qualifies when it
// carries the tag.
func (e *Engine) Resolve(sel Selection, reference string) (string, error) {
	if sel.Nearest == "" {
		if _, ok := e.g.Lookup(sel.NodeID); !ok {
			return "", fmt.Errorf("%w: %s", ErrUnknownNode, sel.NodeID)
		}
		return sel.NodeID, nil
	}

	ref, ok := e.g.Lookup(reference)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownNode, reference)
	}
	tag := sel.Nearest.tag()
	idx, ok := e.pf.FindNearest(ref, func(n uint32) bool {
		node := e.g.Nodes[n]
		return !node.IsOutdoor() && node.Has(tag)
	})
	if !ok {
		return "", fmt.Errorf("%w: %s from %s", ErrNotFound, sel.Nearest, reference)
	}
	return e.g.Nodes[idx].ID(), nil
}

// Snap returns the id of the outdoor node nearest to lat/lon and its
// distance in meters. It fails with routing.ErrPointTooFar beyond 500 m.
func (e *Engine) Snap(lat, lon float64) (string, float64, error) {
	res, err := e.snapper.Snap(lat, lon)
	if err != nil {
		return "", 0, err
	}
	return e.g.Nodes[res.Node].ID(), res.Dist, nil
}

// Stats summarises the loaded graph.
type Stats struct {
	IndoorNodes        int
	OutdoorNodes       int
	Edges              int
	Connectors         int
	Components         int
	LargestComponent   int
	UnmatchedEntrances int
	SkippedEdges       int
}

// Stats reports graph counts.
func (e *Engine) Stats() Stats {
	return Stats{
		IndoorNodes:        len(e.ds.Indoor.Nodes),
		OutdoorNodes:       len(e.ds.Outdoor.Nodes),
		Edges:              e.g.NumStoredEdges,
		Connectors:         e.g.NumConnectors,
		Components:         e.g.NumComponents(),
		LargestComponent:   len(graph.LargestComponent(e.g)),
		UnmatchedEntrances: len(e.g.Unmatched),
		SkippedEdges:       e.g.NumSkipped,
	}
}
