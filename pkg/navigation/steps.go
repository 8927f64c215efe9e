// Package navigation turns searched paths into ranked, renderable walking
// directions across buildings, floors and the outdoor campus.
package navigation

import (
	"fmt"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"

	"campusnav/pkg/campus"
	"campusnav/pkg/render"
)

// StepKind names a Step variant on the wire.
type StepKind string

const (
	KindByFloor              StepKind = "by_floor"
	KindTransitionToFloor    StepKind = "transition_to_floor"
	KindTransitionToBuilding StepKind = "transition_to_building"
	KindTransitionToOutdoor  StepKind = "transition_to_outdoor"
	KindTransitionToIndoor   StepKind = "transition_to_indoor"
	KindOutdoorSegment       StepKind = "outdoor_segment"
)

// Step is one instruction of a direction. The variant set is closed: the
// concrete types are the ones declared in this file.
type Step interface {
	Kind() StepKind
	isStep()
}

// ByFloor shows the part of the route that crosses one floor.
type ByFloor struct {
	Floor           int
	Building        int
	Scene           render.FloorRenderData
	Image           []byte // SVG; nil when the floor has no plan geometry
	PointOfInterest orb.Point
	RouteBounds     orb.Bound
}

// TransitionToFloor changes floors inside one building.
type TransitionToFloor struct {
	From int
	To   int
}

// TransitionToBuilding moves between buildings without going outside.
type TransitionToBuilding struct {
	From int
	To   int
}

// TransitionToOutdoor leaves a building.
type TransitionToOutdoor struct {
	FromBuilding int
}

// TransitionToIndoor enters a building.
type TransitionToIndoor struct {
	ToBuilding int
}

// OutdoorSegment is a stretch of the route between buildings, drawn by the
// client on a map.
type OutdoorSegment struct {
	Path            []*campus.OutdoorNode
	FromDescription string
	ToDescription   string
}

func (ByFloor) Kind() StepKind              { return KindByFloor }
func (TransitionToFloor) Kind() StepKind    { return KindTransitionToFloor }
func (TransitionToBuilding) Kind() StepKind { return KindTransitionToBuilding }
func (TransitionToOutdoor) Kind() StepKind  { return KindTransitionToOutdoor }
func (TransitionToIndoor) Kind() StepKind   { return KindTransitionToIndoor }
func (OutdoorSegment) Kind() StepKind       { return KindOutdoorSegment }

func (ByFloor) isStep()              {}
func (TransitionToFloor) isStep()    {}
func (TransitionToBuilding) isStep() {}
func (TransitionToOutdoor) isStep()  {}
func (TransitionToIndoor) isStep()   {}
func (OutdoorSegment) isStep()       {}

// Coordinates returns the segment as (lon, lat) pairs.
func (s OutdoorSegment) Coordinates() [][]float64 {
	coords := make([][]float64, len(s.Path))
	for i, n := range s.Path {
		coords[i] = []float64{n.Lon, n.Lat}
	}
	return coords
}

// GeoJSON returns the segment as a LineString feature carrying its
// descriptions and node ids as properties.
func (s OutdoorSegment) GeoJSON() *geojson.Feature {
	f := geojson.NewFeature(geojson.NewLineStringGeometry(s.Coordinates()))
	ids := make([]string, len(s.Path))
	for i, n := range s.Path {
		ids[i] = n.ID
	}
	f.SetProperty("node_ids", ids)
	if s.FromDescription != "" {
		f.SetProperty("from", s.FromDescription)
	}
	if s.ToDescription != "" {
		f.SetProperty("to", s.ToDescription)
	}
	return f
}

// Describe renders a step as a one-line instruction.
func Describe(s Step) string {
	switch st := s.(type) {
	case ByFloor:
		return fmt.Sprintf("Building %d, floor %d", st.Building, st.Floor)
	case TransitionToFloor:
		return fmt.Sprintf("Take the stairs from floor %d to floor %d", st.From, st.To)
	case TransitionToBuilding:
		return fmt.Sprintf("Walk from building %d to building %d", st.From, st.To)
	case TransitionToOutdoor:
		return fmt.Sprintf("Leave building %d", st.FromBuilding)
	case TransitionToIndoor:
		return fmt.Sprintf("Enter building %d", st.ToBuilding)
	case OutdoorSegment:
		switch {
		case st.FromDescription != "" && st.ToDescription != "":
			return fmt.Sprintf("Walk outside from %s to %s", st.FromDescription, st.ToDescription)
		case st.ToDescription != "":
			return "Walk outside to " + st.ToDescription
		}
		return "Walk outside"
	}
	return string(s.Kind())
}
