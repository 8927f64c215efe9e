// Package render turns a floor plan and the part of a route that crosses it
// into output-space geometry, and encodes that geometry as SVG.
package render

import (
	"math"

	"github.com/paulmach/orb"

	"campusnav/pkg/campus"
)

// Palette holds the colours of a rendered floor as CSS hex strings.
type Palette struct {
	Plan  string
	Route string
	Start string
	End   string
	Text  string
}

// Options configures a Renderer. Zero fields take the defaults.
type Options struct {
	OutputWidth float64 // logical canvas width
	PaddingPct  float64 // padding on each side, as a fraction of OutputWidth
	DrawStairs  bool    // draw route segments touching STAIRS nodes
	Palette     Palette
}

// DefaultOptions returns the standard rendering options.
func DefaultOptions() Options {
	return Options{
		OutputWidth: 2000,
		PaddingPct:  0.05,
		Palette: Palette{
			Plan:  "#37474F",
			Route: "#2196F3",
			Start: "#4CAF50",
			End:   "#F44336",
			Text:  "#666666",
		},
	}
}

// Segment is a standalone straight line in output space.
type Segment struct {
	A, B orb.Point
}

// TextLabel is a sanitised caption in output space.
type TextLabel struct {
	Text  string
	At    orb.Point
	Color string
}

// FloorRenderData is one floor's scene, already transformed into output
// space (origin top-left, Y down). A zero Width means there was nothing to
// draw.
type FloorRenderData struct {
	Width       float64
	Height      float64
	StrokeWidth float64

	Polygons  []orb.Ring       // closed polylines (rooms)
	Polylines []orb.LineString // open polylines
	Lines     []Segment
	Route     []orb.LineString // route pieces; gaps where stairs were skipped
	Start     *orb.Point
	End       *orb.Point
	Texts     []TextLabel
	Icons     []Icon

	PointOfInterest orb.Point // first route node, for auto-zoom
	RouteBounds     orb.Bound // bounds of the drawn route points
}

// Empty reports whether the floor had no measurable extent.
func (d *FloorRenderData) Empty() bool {
	return d.Width == 0 || d.Height == 0
}

// Input is everything needed to render one floor of one route.
type Input struct {
	Plan       campus.Plan
	Path       []*campus.IndoorNode // the route run on this floor, in order
	FloorNodes []*campus.IndoorNode // every node of the floor, for icons
	StartID    string               // first node of the whole route
	EndID      string               // last node of the whole route
}

// Renderer maps floor plans into a fixed-width output space.
type Renderer struct {
	opts Options
}

// NewRenderer creates a renderer, filling unset options with defaults.
func NewRenderer(opts Options) *Renderer {
	def := DefaultOptions()
	if opts.OutputWidth <= 0 {
		opts.OutputWidth = def.OutputWidth
	}
	if opts.PaddingPct <= 0 || opts.PaddingPct >= 0.5 {
		opts.PaddingPct = def.PaddingPct
	}
	p := &opts.Palette
	if p.Plan == "" {
		p.Plan = def.Palette.Plan
	}
	if p.Route == "" {
		p.Route = def.Palette.Route
	}
	if p.Start == "" {
		p.Start = def.Palette.Start
	}
	if p.End == "" {
		p.End = def.Palette.End
	}
	if p.Text == "" {
		p.Text = def.Palette.Text
	}
	return &Renderer{opts: opts}
}

// Options returns the effective options.
func (r *Renderer) Options() Options { return r.opts }

// transform maps plan coordinates into output space.
type transform struct {
	minX, minY float64
	scale      float64
	padding    float64
	height     float64
}

func (t transform) point(x, y float64) orb.Point {
	return orb.Point{
		(x-t.minX)*t.scale + t.padding,
		t.height - ((y-t.minY)*t.scale + t.padding),
	}
}

func (t transform) node(n *campus.IndoorNode) orb.Point {
	return t.point(n.X, n.Y)
}

// Floor renders one floor. Degenerate plans (no geometry, or zero width or
// height) produce an empty FloorRenderData.
func (r *Renderer) Floor(in Input) FloorRenderData {
	bound, ok := planBound(in.Plan)
	if !ok {
		return FloorRenderData{}
	}
	dataW := bound.Max.X() - bound.Min.X()
	dataH := bound.Max.Y() - bound.Min.Y()
	if dataW == 0 || dataH == 0 {
		return FloorRenderData{}
	}

	width := r.opts.OutputWidth
	padding := width * r.opts.PaddingPct
	scale := (width - 2*padding) / dataW
	height := float64(int(dataH*scale + 2*padding))

	t := transform{
		minX:    bound.Min.X(),
		minY:    bound.Min.Y(),
		scale:   scale,
		padding: padding,
		height:  height,
	}

	out := FloorRenderData{
		Width:       width,
		Height:      height,
		StrokeWidth: math.Max(1, height*0.001),
	}

	for _, pl := range in.Plan.Polylines {
		ls := make(orb.LineString, 0, len(pl.Points))
		for _, p := range pl.Points {
			if len(p) < 2 {
				continue
			}
			ls = append(ls, t.point(p[0], p[1]))
		}
		if pl.Closed {
			out.Polygons = append(out.Polygons, orb.Ring(ls))
		} else {
			out.Polylines = append(out.Polylines, ls)
		}
	}
	for _, l := range in.Plan.Lines {
		out.Lines = append(out.Lines, Segment{A: t.point(l.X1, l.Y1), B: t.point(l.X2, l.Y2)})
	}

	out.Route = r.routePieces(t, in.Path)
	out.RouteBounds = routeBounds(out.Route)

	if len(in.Path) > 0 {
		first, last := in.Path[0], in.Path[len(in.Path)-1]
		out.PointOfInterest = t.node(first)
		if first.ID == in.StartID && !first.Has(campus.Stairs) {
			p := t.node(first)
			out.Start = &p
		}
		if last.ID == in.EndID && !last.Has(campus.Stairs) {
			p := t.node(last)
			out.End = &p
		}
	}

	for _, txt := range in.Plan.Texts {
		clean := Sanitize(txt.Text)
		if clean == "" || isRestroomCaption(clean) {
			continue
		}
		out.Texts = append(out.Texts, TextLabel{
			Text:  clean,
			At:    t.point(txt.X, txt.Y),
			Color: r.opts.Palette.Text,
		})
	}

	for _, n := range in.FloorNodes {
		kind, ok := IconFor(n)
		if !ok {
			continue
		}
		out.Icons = append(out.Icons, Icon{Kind: kind, At: t.node(n), Tint: kind.Tint()})
	}

	return out
}

// routePieces splits the route into drawable line strings. Segments with a
// STAIRS endpoint are left out unless DrawStairs is set.
func (r *Renderer) routePieces(t transform, path []*campus.IndoorNode) []orb.LineString {
	var (
		pieces []orb.LineString
		cur    orb.LineString
	)
	flush := func() {
		if len(cur) >= 2 {
			pieces = append(pieces, cur)
		}
		cur = nil
	}
	for i := 1; i < len(path); i++ {
		u, v := path[i-1], path[i]
		if !r.opts.DrawStairs && (u.Has(campus.Stairs) || v.Has(campus.Stairs)) {
			flush()
			continue
		}
		if len(cur) == 0 {
			cur = append(cur, t.node(u))
		}
		cur = append(cur, t.node(v))
	}
	flush()
	return pieces
}

func routeBounds(pieces []orb.LineString) orb.Bound {
	if len(pieces) == 0 {
		return orb.Bound{}
	}
	b := pieces[0].Bound()
	for _, ls := range pieces[1:] {
		b = b.Union(ls.Bound())
	}
	return b
}

// planBound returns the bounding box of every coordinate in the plan.
func planBound(p campus.Plan) (orb.Bound, bool) {
	var (
		b     orb.Bound
		found bool
	)
	add := func(x, y float64) {
		pt := orb.Point{x, y}
		if !found {
			b = orb.Bound{Min: pt, Max: pt}
			found = true
			return
		}
		b = b.Extend(pt)
	}
	for _, pl := range p.Polylines {
		for _, pt := range pl.Points {
			if len(pt) >= 2 {
				add(pt[0], pt[1])
			}
		}
	}
	for _, l := range p.Lines {
		add(l.X1, l.Y1)
		add(l.X2, l.Y2)
	}
	for _, t := range p.Texts {
		add(t.X, t.Y)
	}
	return b, found
}
