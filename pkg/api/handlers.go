package api

import (
	"errors"
	"log"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"campusnav/pkg/format"
	"campusnav/pkg/graph"
	"campusnav/pkg/navigation"
	"campusnav/pkg/routing"
)

// maxBodyBytes caps POST bodies.
const maxBodyBytes = 4 << 10

// Router is the part of navigation.Engine the handlers use.
type Router interface {
	ComputeRoutes(from, to string, preferIndoor bool) ([]navigation.Direction, error)
	Resolve(sel navigation.Selection, reference string) (string, error)
	Snap(lat, lon float64) (string, float64, error)
	Node(id string) (graph.Node, bool)
	Stats() navigation.Stats
}

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	router       Router
	preferIndoor bool
}

// NewHandlers creates handlers with the given router. preferIndoor is used
// when a request does not say.
func NewHandlers(router Router, preferIndoor bool) *Handlers {
	return &Handlers{
		router:       router,
		preferIndoor: preferIndoor,
	}
}

// HandleRoutes handles POST /api/v1/routes.
func (h *Handlers) HandleRoutes(c *gin.Context) {
	if c.ContentType() != "application/json" {
		writeError(c, http.StatusBadRequest, "invalid_request", "")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	var req RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", "")
		return
	}
	if req.From.IsZero() {
		writeError(c, http.StatusBadRequest, "invalid_request", "from")
		return
	}
	if req.To.IsZero() {
		writeError(c, http.StatusBadRequest, "invalid_request", "to")
		return
	}
	if req.From.Nearest != "" {
		// Nearest is relative to the start, so the start must be concrete.
		writeError(c, http.StatusBadRequest, "invalid_request", "from")
		return
	}

	from, ok := h.resolve(c, req.From, "", "from")
	if !ok {
		return
	}
	to, ok := h.resolve(c, req.To, from, "to")
	if !ok {
		return
	}

	preferIndoor := h.preferIndoor
	if req.PreferIndoor != nil {
		preferIndoor = *req.PreferIndoor
	}

	dirs, err := h.router.ComputeRoutes(from, to, preferIndoor)
	if err != nil {
		if errors.Is(err, navigation.ErrUnknownNode) {
			writeError(c, http.StatusNotFound, "unknown_node", "")
			return
		}
		log.Printf("compute routes %s -> %s: %v", from, to, err)
		writeError(c, http.StatusInternalServerError, "internal_error", "")
		return
	}

	resp := RouteResponse{
		RequestID:  requestID(c),
		Directions: make([]DirectionJSON, 0, len(dirs)),
	}
	for _, d := range dirs {
		resp.Directions = append(resp.Directions, directionJSON(d))
	}
	c.JSON(http.StatusOK, resp)
}

// resolve turns a request endpoint into a node id, writing the error
// response itself when it fails.
func (h *Handlers) resolve(c *gin.Context, ep Endpoint, reference, field string) (string, bool) {
	switch {
	case ep.Point != nil:
		if err := validateCoord(*ep.Point); err != nil {
			writeError(c, http.StatusBadRequest, "invalid_coordinates", field)
			return "", false
		}
		id, _, err := h.router.Snap(ep.Point.Lat, ep.Point.Lon)
		if err != nil {
			if errors.Is(err, routing.ErrPointTooFar) {
				writeError(c, http.StatusUnprocessableEntity, "point_too_far", field)
				return "", false
			}
			log.Printf("snap %s: %v", field, err)
			writeError(c, http.StatusInternalServerError, "internal_error", "")
			return "", false
		}
		return id, true
	case ep.Nearest != "":
		kind, ok := navigation.ParseNearestKind(ep.Nearest)
		if !ok {
			writeError(c, http.StatusBadRequest, "invalid_kind", field)
			return "", false
		}
		return h.resolveSelection(c, navigation.Selection{Nearest: kind}, reference, field)
	}
	return h.resolveSelection(c, navigation.Selection{NodeID: ep.NodeID}, reference, field)
}

func (h *Handlers) resolveSelection(c *gin.Context, sel navigation.Selection, reference, field string) (string, bool) {
	id, err := h.router.Resolve(sel, reference)
	switch {
	case err == nil:
		return id, true
	case errors.Is(err, navigation.ErrUnknownNode):
		writeError(c, http.StatusNotFound, "unknown_node", field)
	case errors.Is(err, navigation.ErrNotFound):
		writeError(c, http.StatusNotFound, "not_found", field)
	default:
		log.Printf("resolve %s: %v", field, err)
		writeError(c, http.StatusInternalServerError, "internal_error", "")
	}
	return "", false
}

// HandleNearest handles GET /api/v1/nearest?from=<id>&kind=<kind>.
func (h *Handlers) HandleNearest(c *gin.Context) {
	from := c.Query("from")
	if from == "" {
		writeError(c, http.StatusBadRequest, "invalid_request", "from")
		return
	}
	kind, ok := navigation.ParseNearestKind(c.Query("kind"))
	if !ok {
		writeError(c, http.StatusBadRequest, "invalid_kind", "kind")
		return
	}

	id, ok := h.resolveSelection(c, navigation.Selection{Nearest: kind}, from, "from")
	if !ok {
		return
	}
	n, ok := h.router.Node(id)
	if !ok {
		writeError(c, http.StatusNotFound, "unknown_node", "")
		return
	}
	c.JSON(http.StatusOK, nodeJSON(requestID(c), n))
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(c *gin.Context) {
	s := h.router.Stats()
	c.JSON(http.StatusOK, StatsResponse{
		IndoorNodes:        s.IndoorNodes,
		OutdoorNodes:       s.OutdoorNodes,
		Edges:              s.Edges,
		Connectors:         s.Connectors,
		Components:         s.Components,
		LargestComponent:   s.LargestComponent,
		UnmatchedEntrances: s.UnmatchedEntrances,
		SkippedEdges:       s.SkippedEdges,
	})
}

func directionJSON(d navigation.Direction) DirectionJSON {
	minutes := d.EstimatedTimeMinutes()
	out := DirectionJSON{
		Badge:                 string(d.Badge),
		TotalDistanceMeters:   format.Round(d.TotalDistanceMeters, 1),
		OutdoorDistanceMeters: format.Round(d.OutdoorDistanceMeters, 1),
		EstimatedTimeMinutes:  format.Round(minutes, 1),
		DistanceText:          format.Distance(d.TotalDistanceMeters),
		TimeText:              format.Duration(minutes),
		Steps:                 make([]StepJSON, 0, len(d.Steps)),
	}
	for _, s := range d.Steps {
		out.Steps = append(out.Steps, stepJSON(s))
	}
	return out
}

func stepJSON(s navigation.Step) StepJSON {
	out := StepJSON{
		Kind:        string(s.Kind()),
		Instruction: navigation.Describe(s),
	}
	switch st := s.(type) {
	case navigation.ByFloor:
		out.Building, out.Floor = &st.Building, &st.Floor
		out.SVG = string(st.Image)
		if !st.Scene.Empty() {
			out.Width = st.Scene.Width
			out.Height = st.Scene.Height
			out.PointOfInterest = &PointJSON{X: st.PointOfInterest[0], Y: st.PointOfInterest[1]}
			out.RouteBounds = &BoundsJSON{
				MinX: st.RouteBounds.Min[0],
				MinY: st.RouteBounds.Min[1],
				MaxX: st.RouteBounds.Max[0],
				MaxY: st.RouteBounds.Max[1],
			}
		}
	case navigation.TransitionToFloor:
		out.From, out.To = &st.From, &st.To
	case navigation.TransitionToBuilding:
		out.From, out.To = &st.From, &st.To
	case navigation.TransitionToOutdoor:
		out.Building = &st.FromBuilding
	case navigation.TransitionToIndoor:
		out.Building = &st.ToBuilding
	case navigation.OutdoorSegment:
		out.FromDescription = st.FromDescription
		out.ToDescription = st.ToDescription
		out.GeoJSON = st.GeoJSON()
	}
	return out
}

func nodeJSON(reqID string, n graph.Node) NodeResponse {
	out := NodeResponse{
		RequestID: reqID,
		ID:        n.ID(),
		Label:     n.Label(),
		Kind:      n.Kind.String(),
		Building:  n.Building(),
	}
	var types []string
	switch {
	case n.In != nil:
		out.Floor = n.In.FloorNum
		for _, t := range n.In.Types() {
			types = append(types, string(t))
		}
	case n.Out != nil:
		for _, t := range n.Out.Types() {
			types = append(types, string(t))
		}
	}
	out.Types = types
	return out
}

func validateCoord(ll LatLngJSON) error {
	if math.IsNaN(ll.Lat) || math.IsNaN(ll.Lon) || math.IsInf(ll.Lat, 0) || math.IsInf(ll.Lon, 0) {
		return errors.New("coordinates must be finite numbers")
	}
	if ll.Lat < -90 || ll.Lat > 90 || ll.Lon < -180 || ll.Lon > 180 {
		return errors.New("coordinates out of range")
	}
	return nil
}

func writeError(c *gin.Context, status int, code, field string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: code, Field: field, RequestID: requestID(c)})
}
