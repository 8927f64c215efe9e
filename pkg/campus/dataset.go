// Package campus holds the navigation dataset: floor-plan geometry per
// building and floor, plus the indoor and outdoor walking graphs.
package campus

import (
	"strconv"
	"strings"
)

// NodeType is a semantic tag attached to a graph node.
type NodeType string

const (
	MainEntrance NodeType = "MAIN_ENTRANCE"
	WCMan        NodeType = "WC_MAN"
	WCWoman      NodeType = "WC_WOMAN"
	Stairs       NodeType = "STAIRS"
	Turn         NodeType = "TURN"
	Auditorium   NodeType = "AUDITORIUM"
)

// Dataset is the complete navigation document for one campus.
type Dataset struct {
	Buildings []Building   `json:"plan"`
	Indoor    IndoorGraph  `json:"inDoor"`
	Outdoor   OutdoorGraph `json:"outDoor"`
}

// Building groups the floor plans of one building.
type Building struct {
	Num    int     `json:"num"`
	Floors []Floor `json:"floors"`
}

// Floor is the raw drawing of one floor.
type Floor struct {
	Num  int  `json:"num"`
	Plan Plan `json:"plan"`
}

// Plan is the 2-D geometry of a floor in source units, Y axis pointing up.
type Plan struct {
	Lines     []Line     `json:"lines"`
	Polylines []Polyline `json:"polylines"`
	Texts     []Text     `json:"texts"`
}

// Line is a standalone straight segment.
type Line struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Polyline is an ordered list of [x, y] points. Closed polylines are rooms.
type Polyline struct {
	Closed bool        `json:"closed"`
	Points [][]float64 `json:"points"`
}

// Text is a caption placed at (X, Y).
type Text struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Text string  `json:"text"`
}

// Edge is a stored graph edge. Routing treats it as traversable both ways.
type Edge struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Weight float64 `json:"weight"`
}

// IndoorGraph is the walking graph inside buildings.
type IndoorGraph struct {
	Edges []Edge       `json:"edges"`
	Nodes []IndoorNode `json:"nodes"`
}

// OutdoorGraph is the walking graph between buildings.
type OutdoorGraph struct {
	Edges []Edge        `json:"edges"`
	Nodes []OutdoorNode `json:"nodes"`
}

// IndoorNode is a waypoint on a floor. X/Y share the floor plan's coordinate
// system; Z is the elevation used to tell floors apart.
type IndoorNode struct {
	ID       string     `json:"id"`
	Label    string     `json:"label,omitempty"`
	Type     []NodeType `json:"type,omitempty"`
	X        float64    `json:"x"`
	Y        float64    `json:"y"`
	Z        float64    `json:"z"`
	BuildNum string     `json:"buildNum"`
	FloorNum int        `json:"floorNum"`
}

// Types returns the node's tags, inferring them from the id when the dataset
// carries none.
func (n *IndoorNode) Types() []NodeType {
	if n.Type != nil {
		return n.Type
	}
	return inferTypes(n.ID, true)
}

// Has reports whether the node carries tag t.
func (n *IndoorNode) Has(t NodeType) bool {
	return hasType(n.Types(), t)
}

// Building returns the numeric building number, or 0 when it is absent or
// not numeric.
func (n *IndoorNode) Building() int {
	return parseBuilding(n.BuildNum)
}

// OutdoorNode is a geo-referenced waypoint between buildings.
type OutdoorNode struct {
	ID       string     `json:"id"`
	Label    string     `json:"label,omitempty"`
	Type     []NodeType `json:"type,omitempty"`
	Lon      float64    `json:"lon"`
	Lat      float64    `json:"lat"`
	BuildNum string     `json:"buildNum,omitempty"`
}

// Types returns the node's tags, inferring them from the id when the dataset
// carries none.
func (n *OutdoorNode) Types() []NodeType {
	if n.Type != nil {
		return n.Type
	}
	return inferTypes(n.ID, false)
}

// Has reports whether the node carries tag t.
func (n *OutdoorNode) Has(t NodeType) bool {
	return hasType(n.Types(), t)
}

// Building returns the numeric building number, or 0.
func (n *OutdoorNode) Building() int {
	return parseBuilding(n.BuildNum)
}

// Floor returns the plan of the given building floor.
func (d *Dataset) Floor(building, floor int) (*Floor, bool) {
	for i := range d.Buildings {
		b := &d.Buildings[i]
		if b.Num != building {
			continue
		}
		for j := range b.Floors {
			if b.Floors[j].Num == floor {
				return &b.Floors[j], true
			}
		}
	}
	return nil, false
}

// MergeOutdoor appends nodes and edges of g, skipping nodes whose id already
// exists anywhere in the dataset. It returns the number of nodes added.
func (d *Dataset) MergeOutdoor(g OutdoorGraph) int {
	seen := make(map[string]struct{}, len(d.Indoor.Nodes)+len(d.Outdoor.Nodes))
	for i := range d.Indoor.Nodes {
		seen[d.Indoor.Nodes[i].ID] = struct{}{}
	}
	for i := range d.Outdoor.Nodes {
		seen[d.Outdoor.Nodes[i].ID] = struct{}{}
	}

	added := 0
	for _, n := range g.Nodes {
		if _, dup := seen[n.ID]; dup {
			continue
		}
		seen[n.ID] = struct{}{}
		d.Outdoor.Nodes = append(d.Outdoor.Nodes, n)
		added++
	}
	d.Outdoor.Edges = append(d.Outdoor.Edges, g.Edges...)
	return added
}

// inferTypes derives tags from well-known id substrings.
func inferTypes(id string, indoor bool) []NodeType {
	var types []NodeType
	if strings.Contains(id, string(Turn)) {
		types = append(types, Turn)
	}
	if indoor && strings.Contains(id, string(Stairs)) {
		types = append(types, Stairs)
	}
	return types
}

func hasType(types []NodeType, t NodeType) bool {
	for _, have := range types {
		if have == t {
			return true
		}
	}
	return false
}

func parseBuilding(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
