package render

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"

	"campusnav/pkg/format"
)

// SVG encodes a rendered floor as a standalone SVG document. It returns nil
// for empty render data.
func (r *Renderer) SVG(d FloorRenderData) []byte {
	if d.Empty() {
		return nil
	}
	pal := r.opts.Palette
	stroke := format.Coord(d.StrokeWidth)
	w, h := format.Coord(d.Width), format.Coord(d.Height)

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`, w, h, w, h)

	b.WriteString(`<g id="geometry">`)
	for _, ring := range d.Polygons {
		fmt.Fprintf(&b, `<polygon points="%s" fill="%s" fill-opacity="0.05" stroke="%s" stroke-width="%s" />`,
			formatPoints(ring), pal.Plan, pal.Plan, stroke)
	}
	for _, ls := range d.Polylines {
		fmt.Fprintf(&b, `<polyline points="%s" fill="none" stroke="%s" stroke-width="%s" />`,
			formatPoints(ls), pal.Plan, stroke)
	}
	for _, l := range d.Lines {
		fmt.Fprintf(&b, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%s" />`,
			format.Coord(l.A.X()), format.Coord(l.A.Y()), format.Coord(l.B.X()), format.Coord(l.B.Y()), pal.Plan, stroke)
	}
	b.WriteString(`</g>`)

	b.WriteString(`<g id="route">`)
	for _, ls := range d.Route {
		fmt.Fprintf(&b, `<polyline points="%s" fill="none" stroke="%s" stroke-width="%s" stroke-linecap="round" stroke-linejoin="round" opacity="0.8" />`,
			formatPoints(ls), pal.Route, format.Coord(d.StrokeWidth*4))
	}
	b.WriteString(`</g>`)

	radius := format.Coord(d.StrokeWidth * 3)
	b.WriteString(`<g id="markers">`)
	if d.Start != nil {
		fmt.Fprintf(&b, `<circle cx="%s" cy="%s" r="%s" fill="%s" stroke="none" />`,
			format.Coord(d.Start.X()), format.Coord(d.Start.Y()), radius, pal.Start)
	}
	if d.End != nil {
		fmt.Fprintf(&b, `<circle cx="%s" cy="%s" r="%s" fill="%s" stroke="none" />`,
			format.Coord(d.End.X()), format.Coord(d.End.Y()), radius, pal.End)
	}
	b.WriteString(`</g>`)

	b.WriteString(`<g id="icons">`)
	for _, ic := range d.Icons {
		fmt.Fprintf(&b, `<circle class="icon-%s" cx="%s" cy="%s" r="%s" fill="%s" />`,
			ic.Kind, format.Coord(ic.At.X()), format.Coord(ic.At.Y()), radius, ic.Tint)
	}
	b.WriteString(`</g>`)

	b.WriteString(`<g id="text">`)
	for _, t := range d.Texts {
		// Text is already escaped by Sanitize.
		fmt.Fprintf(&b, `<text x="%s" y="%s" fill="%s">%s</text>`,
			format.Coord(t.At.X()), format.Coord(t.At.Y()), t.Color, t.Text)
	}
	b.WriteString(`</g>`)

	b.WriteString(`</svg>`)
	return []byte(b.String())
}

func formatPoints(pts []orb.Point) string {
	var b strings.Builder
	for i, p := range pts {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(format.Coord(p.X()))
		b.WriteByte(',')
		b.WriteString(format.Coord(p.Y()))
	}
	return b.String()
}
