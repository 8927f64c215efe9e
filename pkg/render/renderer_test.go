package render

import (
	"math"
	"strings"
	"testing"

	"github.com/paulmach/orb"

	"campusnav/pkg/campus"
)

// testPlan is a 100 x 50 room with a corridor line and two captions.
//
//	(0,50) +----------------+ (100,50)
//	       |  "Room 101"    |
//	       |----------------|  line y=25
//	       |  "WC"          |
//	 (0,0) +----------------+ (100,0)
func testPlan() campus.Plan {
	return campus.Plan{
		Polylines: []campus.Polyline{
			{Closed: true, Points: [][]float64{{0, 0}, {100, 0}, {100, 50}, {0, 50}}},
			{Closed: false, Points: [][]float64{{10, 10}, {20, 10}}},
		},
		Lines: []campus.Line{{X1: 0, Y1: 25, X2: 100, Y2: 25}},
		Texts: []campus.Text{
			{X: 50, Y: 40, Text: "Room 101"},
			{X: 50, Y: 10, Text: "WC"},
		},
	}
}

func near(a, b orb.Point) bool {
	return math.Abs(a.X()-b.X()) < 1e-9 && math.Abs(a.Y()-b.Y()) < 1e-9
}

func TestFloorTransform(t *testing.T) {
	r := NewRenderer(DefaultOptions())
	d := r.Floor(Input{Plan: testPlan()})

	// scale = 1800/100 = 18, height = 50*18 + 200 = 1100.
	if d.Width != 2000 || d.Height != 1100 {
		t.Fatalf("canvas = %vx%v, want 2000x1100", d.Width, d.Height)
	}
	if math.Abs(d.StrokeWidth-1.1) > 1e-9 {
		t.Errorf("StrokeWidth = %v, want 1.1", d.StrokeWidth)
	}

	if len(d.Polygons) != 1 || len(d.Polylines) != 1 || len(d.Lines) != 1 {
		t.Fatalf("got %d polygons, %d polylines, %d lines, want 1 each",
			len(d.Polygons), len(d.Polylines), len(d.Lines))
	}

	// Y is flipped: source origin is bottom-left.
	tests := []struct {
		name      string
		got, want orb.Point
	}{
		{"origin", d.Polygons[0][0], orb.Point{100, 1000}},
		{"far corner", d.Polygons[0][2], orb.Point{1900, 100}},
		{"line start", d.Lines[0].A, orb.Point{100, 550}},
		{"polyline", d.Polylines[0][1], orb.Point{460, 820}},
	}
	for _, tt := range tests {
		if !near(tt.got, tt.want) {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestFloorDegenerate(t *testing.T) {
	tests := []struct {
		name string
		plan campus.Plan
	}{
		{"empty", campus.Plan{}},
		{"single point", campus.Plan{Texts: []campus.Text{{X: 5, Y: 5, Text: "x"}}}},
		{"zero height", campus.Plan{Lines: []campus.Line{{X1: 0, Y1: 3, X2: 10, Y2: 3}}}},
		{"zero width", campus.Plan{Lines: []campus.Line{{X1: 4, Y1: 0, X2: 4, Y2: 10}}}},
	}
	r := NewRenderer(Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := []*campus.IndoorNode{{ID: "A"}}
			d := r.Floor(Input{Plan: tt.plan, Path: path, StartID: "A"})
			if !d.Empty() || d.Width != 0 || d.Height != 0 {
				t.Errorf("canvas = %vx%v, want 0x0", d.Width, d.Height)
			}
			if len(d.Polygons)+len(d.Polylines)+len(d.Lines)+len(d.Route)+len(d.Texts)+len(d.Icons) != 0 {
				t.Errorf("degenerate plan produced geometry: %+v", d)
			}
			if d.Start != nil || d.End != nil {
				t.Error("degenerate plan produced markers")
			}
			if svg := r.SVG(d); svg != nil {
				t.Errorf("SVG = %q, want nil", svg)
			}
		})
	}
}

func TestFloorRouteSkipsStairs(t *testing.T) {
	path := []*campus.IndoorNode{
		{ID: "A", X: 0, Y: 0},
		{ID: "B", X: 10, Y: 0},
		{ID: "C_STAIRS", X: 20, Y: 0},
		{ID: "D", X: 30, Y: 0},
		{ID: "E", X: 40, Y: 0},
	}
	r := NewRenderer(DefaultOptions())
	d := r.Floor(Input{Plan: testPlan(), Path: path, StartID: "A", EndID: "E"})

	if len(d.Route) != 2 {
		t.Fatalf("route pieces = %d, want 2 (A-B, D-E)", len(d.Route))
	}
	if len(d.Route[0]) != 2 || len(d.Route[1]) != 2 {
		t.Errorf("piece sizes = %d, %d, want 2, 2", len(d.Route[0]), len(d.Route[1]))
	}
	if !near(d.Route[0][0], orb.Point{100, 1000}) {
		t.Errorf("route start = %v, want (100, 1000)", d.Route[0][0])
	}

	// Bounds cover A..B and D..E only.
	wantBounds := orb.Bound{Min: orb.Point{100, 1000}, Max: orb.Point{820, 1000}}
	if !near(d.RouteBounds.Min, wantBounds.Min) || !near(d.RouteBounds.Max, wantBounds.Max) {
		t.Errorf("RouteBounds = %v, want %v", d.RouteBounds, wantBounds)
	}

	if d.Start == nil || d.End == nil {
		t.Fatal("expected start and end markers")
	}
	if !near(d.PointOfInterest, orb.Point{100, 1000}) {
		t.Errorf("PointOfInterest = %v, want (100, 1000)", d.PointOfInterest)
	}

	opts := DefaultOptions()
	opts.DrawStairs = true
	d = NewRenderer(opts).Floor(Input{Plan: testPlan(), Path: path})
	if len(d.Route) != 1 || len(d.Route[0]) != 5 {
		t.Errorf("with stairs: route = %v, want one piece of 5 points", d.Route)
	}
}

func TestFloorMarkers(t *testing.T) {
	r := NewRenderer(DefaultOptions())
	path := []*campus.IndoorNode{
		{ID: "S1_STAIRS", X: 0, Y: 0},
		{ID: "M", X: 10, Y: 10},
		{ID: "N", X: 20, Y: 10},
	}

	tests := []struct {
		name               string
		start, end         string
		wantStart, wantEnd bool
	}{
		{"middle of route", "X", "Y", false, false},
		{"ends here", "X", "N", false, true},
		{"starts on stairs", "S1_STAIRS", "N", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := r.Floor(Input{Plan: testPlan(), Path: path, StartID: tt.start, EndID: tt.end})
			if (d.Start != nil) != tt.wantStart {
				t.Errorf("Start = %v, want present=%v", d.Start, tt.wantStart)
			}
			if (d.End != nil) != tt.wantEnd {
				t.Errorf("End = %v, want present=%v", d.End, tt.wantEnd)
			}
		})
	}
}

func TestFloorTextsAndIcons(t *testing.T) {
	plan := testPlan()
	plan.Texts = append(plan.Texts,
		campus.Text{X: 1, Y: 1, Text: "  М "},
		campus.Text{X: 1, Y: 1, Text: "ж"},
		campus.Text{X: 1, Y: 1, Text: "\t\n"},
		campus.Text{X: 1, Y: 1, Text: "Lab <A&B>"},
	)
	floorNodes := []*campus.IndoorNode{
		{ID: "W", Type: []campus.NodeType{campus.WCMan, campus.WCWoman}},
		{ID: "M", Type: []campus.NodeType{campus.WCMan, campus.MainEntrance}},
		{ID: "F", Type: []campus.NodeType{campus.WCWoman}},
		{ID: "E", Type: []campus.NodeType{campus.MainEntrance}},
		{ID: "P"},
	}

	d := NewRenderer(DefaultOptions()).Floor(Input{Plan: plan, FloorNodes: floorNodes})

	var texts []string
	for _, tl := range d.Texts {
		texts = append(texts, tl.Text)
	}
	want := []string{"Room 101", "Lab &lt;A&amp;B&gt;"}
	if strings.Join(texts, "|") != strings.Join(want, "|") {
		t.Errorf("texts = %q, want %q", texts, want)
	}

	wantIcons := []IconKind{IconRestroom, IconMen, IconWomen, IconEntrance}
	if len(d.Icons) != len(wantIcons) {
		t.Fatalf("icons = %d, want %d", len(d.Icons), len(wantIcons))
	}
	for i, k := range wantIcons {
		if d.Icons[i].Kind != k || d.Icons[i].Tint != k.Tint() {
			t.Errorf("icon %d = %+v, want %s", i, d.Icons[i], k)
		}
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Room 1", "Room 1"},
		{"  padded\t", "padded"},
		{"a\x00b\x1fc", "abc"},
		{"<b>&", "&lt;b&gt;&amp;"},
		{"\n\r", ""},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsRestroomCaption(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"WC", true},
		{"wc 2", true},
		{"М", true},
		{"ж", true},
		{"Ж", true},
		{"Мех", false},
		{"Room", false},
	}
	for _, tt := range tests {
		if got := isRestroomCaption(tt.in); got != tt.want {
			t.Errorf("isRestroomCaption(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSVG(t *testing.T) {
	r := NewRenderer(DefaultOptions())
	path := []*campus.IndoorNode{{ID: "A", X: 0, Y: 0}, {ID: "B", X: 100, Y: 50}}
	d := r.Floor(Input{
		Plan:       testPlan(),
		Path:       path,
		FloorNodes: []*campus.IndoorNode{{ID: "E", Type: []campus.NodeType{campus.MainEntrance}}},
		StartID:    "A",
		EndID:      "B",
	})
	svg := string(r.SVG(d))

	wants := []string{
		`<svg xmlns="http://www.w3.org/2000/svg" width="2000" height="1100" viewBox="0 0 2000 1100">`,
		`<polygon points="100,1000 1900,1000 1900,100 100,100" fill="#37474F" fill-opacity="0.05"`,
		`<polyline points="280,820 460,820" fill="none"`,
		`<line x1="100" y1="550" x2="1900" y2="550"`,
		`<polyline points="100,1000 1900,100" fill="none" stroke="#2196F3" stroke-width="4.4"`,
		`<circle cx="100" cy="1000" r="3.3" fill="#4CAF50" stroke="none" />`,
		`<circle cx="1900" cy="100" r="3.3" fill="#F44336" stroke="none" />`,
		`<circle class="icon-entrance" cx="100" cy="1000"`,
		`<text x="1000" y="280" fill="#666666">Room 101</text>`,
		`</svg>`,
	}
	for _, w := range wants {
		if !strings.Contains(svg, w) {
			t.Errorf("SVG missing %q\n%s", w, svg)
		}
	}
	if strings.Contains(svg, ">WC<") {
		t.Error("restroom caption should be dropped")
	}
}
