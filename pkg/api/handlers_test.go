package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"campusnav/pkg/campus"
	"campusnav/pkg/graph"
	"campusnav/pkg/navigation"
	"campusnav/pkg/render"
	"campusnav/pkg/routing"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// mockRouter implements Router for testing.
type mockRouter struct {
	dirs []navigation.Direction
	err  error

	nodes      map[string]graph.Node
	nearestID  string
	nearestErr error
	snapID     string
	snapErr    error
	stats      navigation.Stats

	gotFrom, gotTo string
	gotPrefer      bool
	gotReference   string
	panics         bool
}

func (m *mockRouter) ComputeRoutes(from, to string, preferIndoor bool) ([]navigation.Direction, error) {
	if m.panics {
		panic("boom")
	}
	m.gotFrom, m.gotTo, m.gotPrefer = from, to, preferIndoor
	return m.dirs, m.err
}

func (m *mockRouter) Resolve(sel navigation.Selection, reference string) (string, error) {
	if sel.Nearest != "" {
		m.gotReference = reference
		return m.nearestID, m.nearestErr
	}
	if _, ok := m.nodes[sel.NodeID]; !ok {
		return "", fmt.Errorf("%w: %s", navigation.ErrUnknownNode, sel.NodeID)
	}
	return sel.NodeID, nil
}

func (m *mockRouter) Snap(lat, lon float64) (string, float64, error) {
	return m.snapID, 12, m.snapErr
}

func (m *mockRouter) Node(id string) (graph.Node, bool) {
	n, ok := m.nodes[id]
	return n, ok
}

func (m *mockRouter) Stats() navigation.Stats { return m.stats }

func newMock() *mockRouter {
	nodes := map[string]graph.Node{
		"O1": {Kind: graph.Outdoor, Out: &campus.OutdoorNode{ID: "O1", Lat: 50, Lon: 30}},
	}
	for _, n := range []*campus.IndoorNode{
		{ID: "A", BuildNum: "1", FloorNum: 2},
		{ID: "B", BuildNum: "1", FloorNum: 3},
		{ID: "WC", Label: "WC", BuildNum: "1", FloorNum: 3, Type: []campus.NodeType{campus.WCMan}},
	} {
		nodes[n.ID] = graph.Node{Kind: graph.Indoor, In: n}
	}
	return &mockRouter{nodes: nodes}
}

func serve(t *testing.T, m *mockRouter, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	r := NewRouter(DefaultConfig(":0"), NewHandlers(m, true))
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

var jsonHeader = map[string]string{"Content-Type": "application/json"}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v (body %s)", err, w.Body.String())
	}
	return resp
}

func TestHandleRoutes_Success(t *testing.T) {
	m := newMock()
	m.dirs = []navigation.Direction{{
		TotalDistanceMeters:   1234.56,
		OutdoorDistanceMeters: 200,
		Badge:                 navigation.BadgeFastest,
		Steps: []navigation.Step{
			navigation.ByFloor{
				Building:        1,
				Floor:           2,
				Scene:           render.FloorRenderData{Width: 2000, Height: 1100},
				Image:           []byte("<svg></svg>"),
				PointOfInterest: orb.Point{10, 20},
				RouteBounds:     orb.Bound{Min: orb.Point{1, 2}, Max: orb.Point{3, 4}},
			},
			navigation.TransitionToFloor{From: 2, To: 3},
			navigation.TransitionToOutdoor{FromBuilding: 1},
			navigation.OutdoorSegment{
				Path: []*campus.OutdoorNode{
					{ID: "O1", Lat: 50, Lon: 30},
					{ID: "O2", Lat: 50.001, Lon: 30.001},
				},
				FromDescription: "Building 1",
			},
		},
	}}

	w := serve(t, m, "POST", "/api/v1/routes", `{"from":"A","to":"B","prefer_indoor":false}`, jsonHeader)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200. body: %s", w.Code, w.Body.String())
	}
	if m.gotFrom != "A" || m.gotTo != "B" || m.gotPrefer {
		t.Errorf("ComputeRoutes(%q, %q, %v), want (A, B, false)", m.gotFrom, m.gotTo, m.gotPrefer)
	}

	var resp RouteResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RequestID == "" || resp.RequestID != w.Header().Get("X-Request-ID") {
		t.Errorf("request_id = %q, header = %q", resp.RequestID, w.Header().Get("X-Request-ID"))
	}
	if len(resp.Directions) != 1 {
		t.Fatalf("directions = %d, want 1", len(resp.Directions))
	}
	d := resp.Directions[0]
	if d.Badge != "Fastest" {
		t.Errorf("badge = %q", d.Badge)
	}
	if d.TotalDistanceMeters != 1234.6 || d.DistanceText != "1.2 km" {
		t.Errorf("distance = %v %q", d.TotalDistanceMeters, d.DistanceText)
	}
	if d.TimeText != "15 min" {
		t.Errorf("time_text = %q, want 15 min", d.TimeText)
	}
	if len(d.Steps) != 4 {
		t.Fatalf("steps = %d, want 4", len(d.Steps))
	}

	floor := d.Steps[0]
	if floor.Kind != "by_floor" || floor.SVG != "<svg></svg>" || deref(floor.Floor) != 2 || deref(floor.Building) != 1 {
		t.Errorf("by_floor step = %+v", floor)
	}
	if floor.PointOfInterest == nil || *floor.PointOfInterest != (PointJSON{X: 10, Y: 20}) {
		t.Errorf("point_of_interest = %+v", floor.PointOfInterest)
	}
	if floor.RouteBounds == nil || floor.RouteBounds.MaxY != 4 {
		t.Errorf("route_bounds = %+v", floor.RouteBounds)
	}
	if s := d.Steps[1]; s.Kind != "transition_to_floor" || deref(s.From) != 2 || deref(s.To) != 3 {
		t.Errorf("transition step = %+v", s)
	}
	if s := d.Steps[2]; s.Kind != "transition_to_outdoor" || deref(s.Building) != 1 {
		t.Errorf("outdoor transition = %+v", s)
	}
	seg := d.Steps[3]
	if seg.Kind != "outdoor_segment" || seg.GeoJSON == nil {
		t.Fatalf("outdoor step = %+v", seg)
	}
	if got := len(seg.GeoJSON.Geometry.LineString); got != 2 {
		t.Errorf("geojson points = %d, want 2", got)
	}
	if seg.FromDescription != "Building 1" {
		t.Errorf("from_description = %q", seg.FromDescription)
	}
}

// deref returns -1 for a missing field.
func deref(p *int) int {
	if p == nil {
		return -1
	}
	return *p
}

func TestStepJSON_ZeroValuesSurvive(t *testing.T) {
	tests := []struct {
		name    string
		step    navigation.Step
		want    []string
		wantNot []string
	}{
		{
			name:    "ground floor",
			step:    navigation.ByFloor{Building: 3, Floor: 0},
			want:    []string{`"building":3`, `"floor":0`},
			wantNot: []string{`"from"`, `"to"`},
		},
		{
			name:    "transition from ground floor",
			step:    navigation.TransitionToFloor{From: 0, To: 1},
			want:    []string{`"from":0`, `"to":1`},
			wantNot: []string{`"floor"`, `"building"`},
		},
		{
			name: "building zero",
			step: navigation.TransitionToOutdoor{FromBuilding: 0},
			want: []string{`"building":0`},
		},
		{
			name:    "outdoor segment",
			step:    navigation.OutdoorSegment{Path: []*campus.OutdoorNode{{ID: "O1"}, {ID: "O2"}}},
			wantNot: []string{`"floor"`, `"building"`, `"from"`, `"to"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(stepJSON(tt.step))
			if err != nil {
				t.Fatal(err)
			}
			for _, w := range tt.want {
				if !strings.Contains(string(b), w) {
					t.Errorf("%s missing %s", b, w)
				}
			}
			for _, w := range tt.wantNot {
				if strings.Contains(string(b), w) {
					t.Errorf("%s should not contain %s", b, w)
				}
			}
		})
	}
}

func TestHandleRoutes_DefaultPreference(t *testing.T) {
	m := newMock()
	w := serve(t, m, "POST", "/api/v1/routes", `{"from":"A","to":"B"}`, jsonHeader)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !m.gotPrefer {
		t.Error("prefer_indoor should default to the handler setting (true)")
	}
}

func TestHandleRoutes_NoPathIsEmptyList(t *testing.T) {
	w := serve(t, newMock(), "POST", "/api/v1/routes", `{"from":"A","to":"B"}`, jsonHeader)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"directions":[]`) {
		t.Errorf("body = %s, want empty directions array", w.Body.String())
	}
}

func TestHandleRoutes_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		header map[string]string
		setup  func(*mockRouter)
		status int
		code   string
		field  string
	}{
		{name: "missing content type", body: `{"from":"A","to":"B"}`, status: 400, code: "invalid_request"},
		{name: "invalid json", body: "not json", header: jsonHeader, status: 400, code: "invalid_request"},
		{name: "missing to", body: `{"from":"A"}`, header: jsonHeader, status: 400, code: "invalid_request", field: "to"},
		{name: "nearest start", body: `{"from":{"nearest":"wc_man"},"to":"B"}`, header: jsonHeader, status: 400, code: "invalid_request", field: "from"},
		{name: "bad kind", body: `{"from":"A","to":{"nearest":"cafe"}}`, header: jsonHeader, status: 400, code: "invalid_kind", field: "to"},
		{name: "unknown from", body: `{"from":"nope","to":"B"}`, header: jsonHeader, status: 404, code: "unknown_node", field: "from"},
		{name: "out of range", body: `{"from":{"lat":91,"lon":30},"to":"B"}`, header: jsonHeader, status: 400, code: "invalid_coordinates", field: "from"},
		{
			name:   "point too far", body: `{"from":"A","to":{"lat":50,"lon":30}}`, header: jsonHeader,
			setup:  func(m *mockRouter) { m.snapErr = routing.ErrPointTooFar },
			status: 422, code: "point_too_far", field: "to",
		},
		{
			name:   "nearest not found", body: `{"from":"A","to":{"nearest":"wc_woman"}}`, header: jsonHeader,
			setup:  func(m *mockRouter) { m.nearestErr = navigation.ErrNotFound },
			status: 404, code: "not_found", field: "to",
		},
		{
			name:   "engine unknown node", body: `{"from":"A","to":"B"}`, header: jsonHeader,
			setup:  func(m *mockRouter) { m.err = fmt.Errorf("%w: B", navigation.ErrUnknownNode) },
			status: 404, code: "unknown_node",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMock()
			if tt.setup != nil {
				tt.setup(m)
			}
			w := serve(t, m, "POST", "/api/v1/routes", tt.body, tt.header)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d. body: %s", w.Code, tt.status, w.Body.String())
			}
			resp := decodeError(t, w)
			if resp.Error != tt.code || resp.Field != tt.field {
				t.Errorf("error = (%q, %q), want (%q, %q)", resp.Error, resp.Field, tt.code, tt.field)
			}
		})
	}
}

func TestHandleRoutes_SnapsAndResolvesNearest(t *testing.T) {
	m := newMock()
	m.snapID = "O1"
	m.nearestID = "WC"
	w := serve(t, m, "POST", "/api/v1/routes", `{"from":{"lat":50,"lon":30},"to":{"nearest":"wc_man"}}`, jsonHeader)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200. body: %s", w.Code, w.Body.String())
	}
	if m.gotFrom != "O1" || m.gotTo != "WC" {
		t.Errorf("ComputeRoutes(%q, %q), want (O1, WC)", m.gotFrom, m.gotTo)
	}
	if m.gotReference != "O1" {
		t.Errorf("nearest reference = %q, want the snapped start", m.gotReference)
	}
}

func TestHandleNearest(t *testing.T) {
	m := newMock()
	m.nearestID = "WC"
	w := serve(t, m, "GET", "/api/v1/nearest?from=A&kind=wc_man", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200. body: %s", w.Code, w.Body.String())
	}
	var resp NodeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ID != "WC" || resp.Kind != "indoor" || resp.Floor != 3 || resp.Building != 1 {
		t.Errorf("node = %+v", resp)
	}
	if len(resp.Types) != 1 || resp.Types[0] != string(campus.WCMan) {
		t.Errorf("types = %v", resp.Types)
	}
	if m.gotReference != "A" {
		t.Errorf("reference = %q, want A", m.gotReference)
	}
}

func TestHandleNearest_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		err    error
		status int
		code   string
	}{
		{"missing from", "/api/v1/nearest?kind=wc_man", nil, 400, "invalid_request"},
		{"bad kind", "/api/v1/nearest?from=A&kind=lift", nil, 400, "invalid_kind"},
		{"none reachable", "/api/v1/nearest?from=A&kind=wc_woman", navigation.ErrNotFound, 404, "not_found"},
		{"unknown from", "/api/v1/nearest?from=X&kind=wc_man", navigation.ErrUnknownNode, 404, "unknown_node"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMock()
			m.nearestErr = tt.err
			w := serve(t, m, "GET", tt.target, "", nil)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			if got := decodeError(t, w).Error; got != tt.code {
				t.Errorf("error = %q, want %q", got, tt.code)
			}
		})
	}
}

func TestHandleHealth(t *testing.T) {
	w := serve(t, newMock(), "GET", "/api/v1/health", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}

	var resp HealthResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Status != "ok" {
		t.Errorf("status = %q, want 'ok'", resp.Status)
	}
}

func TestHandleStats(t *testing.T) {
	m := newMock()
	m.stats = navigation.Stats{IndoorNodes: 500, OutdoorNodes: 40, Connectors: 6, Components: 2}
	w := serve(t, m, "GET", "/api/v1/stats", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}

	var resp StatsResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.IndoorNodes != 500 || resp.Connectors != 6 || resp.Components != 2 {
		t.Errorf("stats = %+v", resp)
	}
}

func TestMiddleware_Headers(t *testing.T) {
	w := serve(t, newMock(), "GET", "/api/v1/health", "", nil)
	for k, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Cache-Control":          "no-store",
	} {
		if got := w.Header().Get(k); got != want {
			t.Errorf("%s = %q, want %q", k, got, want)
		}
	}
	if _, err := uuid.Parse(w.Header().Get("X-Request-ID")); err != nil {
		t.Errorf("X-Request-ID is not a uuid: %v", err)
	}
}

func TestMiddleware_RequestIDPropagation(t *testing.T) {
	id := uuid.NewString()
	w := serve(t, newMock(), "GET", "/api/v1/health", "", map[string]string{"X-Request-ID": id})
	if got := w.Header().Get("X-Request-ID"); got != id {
		t.Errorf("X-Request-ID = %q, want %q", got, id)
	}

	w = serve(t, newMock(), "GET", "/api/v1/health", "", map[string]string{"X-Request-ID": "<script>"})
	if got := w.Header().Get("X-Request-ID"); got == "<script>" {
		t.Error("malformed request id was echoed back")
	}
}

func TestMiddleware_CORS(t *testing.T) {
	cfg := DefaultConfig(":0")
	cfg.CORSOrigin = "https://campus.example"
	r := NewRouter(cfg, NewHandlers(newMock(), true))

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	req.Header.Set("Origin", "https://campus.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://campus.example" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestMiddleware_ConcurrencyLimit(t *testing.T) {
	sem := make(chan struct{}, 1)
	sem <- struct{}{}

	r := gin.New()
	r.Use(requestIDMiddleware(), limitConcurrency(sem))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	if w.Header().Get("Retry-After") != "1" {
		t.Errorf("Retry-After = %q, want 1", w.Header().Get("Retry-After"))
	}
	if got := decodeError(t, w).Error; got != "service_unavailable" {
		t.Errorf("error = %q", got)
	}
}

func TestMiddleware_Recovery(t *testing.T) {
	m := newMock()
	m.panics = true
	w := serve(t, m, "POST", "/api/v1/routes", `{"from":"A","to":"B"}`, jsonHeader)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if got := decodeError(t, w).Error; got != "internal_error" {
		t.Errorf("error = %q", got)
	}
}

func TestEndpoint_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in      string
		want    Endpoint
		wantErr bool
	}{
		{in: `"A"`, want: Endpoint{NodeID: "A"}},
		{in: `{"lat":1.5,"lon":2.5}`, want: Endpoint{Point: &LatLngJSON{Lat: 1.5, Lon: 2.5}}},
		{in: `{"nearest":"wc_man"}`, want: Endpoint{Nearest: "wc_man"}},
		{in: `{"lat":1.5}`, wantErr: true},
		{in: `{"lat":1,"lon":2,"nearest":"wc_man"}`, wantErr: true},
		{in: `42`, wantErr: true},
	}
	for _, tt := range tests {
		var got Endpoint
		err := json.Unmarshal([]byte(tt.in), &got)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			continue
		}
		if got.NodeID != tt.want.NodeID || got.Nearest != tt.want.Nearest {
			t.Errorf("%s: got %+v, want %+v", tt.in, got, tt.want)
		}
		if (got.Point == nil) != (tt.want.Point == nil) || (got.Point != nil && *got.Point != *tt.want.Point) {
			t.Errorf("%s: point = %v, want %v", tt.in, got.Point, tt.want.Point)
		}
	}
}
