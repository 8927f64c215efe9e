package api

import (
	"bytes"
	"encoding/json"
	"errors"

	geojson "github.com/paulmach/go.geojson"
)

// RouteRequest is the JSON body for POST /api/v1/routes.
type RouteRequest struct {
	From         Endpoint `json:"from"`
	To           Endpoint `json:"to"`
	PreferIndoor *bool    `json:"prefer_indoor,omitempty"`
}

// Endpoint is a node id (JSON string), a coordinate ({"lat":..,"lon":..})
// or a nearest-of-kind selection ({"nearest":"wc_man"}).
type Endpoint struct {
	NodeID  string
	Point   *LatLngJSON
	Nearest string
}

type endpointObject struct {
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
	Nearest string   `json:"nearest"`
}

// UnmarshalJSON accepts any of the three endpoint forms.
func (e *Endpoint) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &e.NodeID)
	}
	if len(b) == 0 || b[0] != '{' {
		return errors.New("endpoint must be a node id or an object")
	}
	var o endpointObject
	if err := json.Unmarshal(b, &o); err != nil {
		return err
	}
	switch {
	case o.Nearest != "" && (o.Lat != nil || o.Lon != nil):
		return errors.New("endpoint mixes nearest with coordinates")
	case o.Nearest != "":
		e.Nearest = o.Nearest
	case o.Lat != nil && o.Lon != nil:
		e.Point = &LatLngJSON{Lat: *o.Lat, Lon: *o.Lon}
	default:
		return errors.New("endpoint object needs lat and lon, or nearest")
	}
	return nil
}

// IsZero reports whether no form was given.
func (e Endpoint) IsZero() bool {
	return e.NodeID == "" && e.Point == nil && e.Nearest == ""
}

// LatLngJSON represents a lat/lon pair in JSON.
type LatLngJSON struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// RouteResponse is the JSON response for a route query.
type RouteResponse struct {
	RequestID  string          `json:"request_id"`
	Directions []DirectionJSON `json:"directions"`
}

// DirectionJSON is one ranked route.
type DirectionJSON struct {
	Badge                 string     `json:"badge,omitempty"`
	TotalDistanceMeters   float64    `json:"total_distance_meters"`
	OutdoorDistanceMeters float64    `json:"outdoor_distance_meters"`
	EstimatedTimeMinutes  float64    `json:"estimated_time_minutes"`
	DistanceText          string     `json:"distance_text"`
	TimeText              string     `json:"time_text"`
	Steps                 []StepJSON `json:"steps"`
}

// StepJSON is a flattened navigation step; which fields are set depends on
// Kind. Numbers are pointers so that floor or building 0 is still sent.
type StepJSON struct {
	Kind        string `json:"kind"`
	Instruction string `json:"instruction"`

	Building *int `json:"building,omitempty"`
	Floor    *int `json:"floor,omitempty"`
	From     *int `json:"from,omitempty"`
	To       *int `json:"to,omitempty"`

	// by_floor
	SVG             string      `json:"svg,omitempty"`
	Width           float64     `json:"width,omitempty"`
	Height          float64     `json:"height,omitempty"`
	PointOfInterest *PointJSON  `json:"point_of_interest,omitempty"`
	RouteBounds     *BoundsJSON `json:"route_bounds,omitempty"`

	// outdoor_segment
	FromDescription string           `json:"from_description,omitempty"`
	ToDescription   string           `json:"to_description,omitempty"`
	GeoJSON         *geojson.Feature `json:"geojson,omitempty"`
}

// PointJSON is a render-space point.
type PointJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoundsJSON is a render-space rectangle.
type BoundsJSON struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// NodeResponse is the JSON response for GET /api/v1/nearest.
type NodeResponse struct {
	RequestID string   `json:"request_id"`
	ID        string   `json:"id"`
	Label     string   `json:"label,omitempty"`
	Kind      string   `json:"kind"`
	Building  int      `json:"building,omitempty"`
	Floor     int      `json:"floor,omitempty"`
	Types     []string `json:"types,omitempty"`
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// StatsResponse is the JSON response for GET /api/v1/stats.
type StatsResponse struct {
	IndoorNodes        int `json:"indoor_nodes"`
	OutdoorNodes       int `json:"outdoor_nodes"`
	Edges              int `json:"edges"`
	Connectors         int `json:"connectors"`
	Components         int `json:"components"`
	LargestComponent   int `json:"largest_component"`
	UnmatchedEntrances int `json:"unmatched_entrances"`
	SkippedEdges       int `json:"skipped_edges"`
}

// HealthResponse is the JSON response for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}
