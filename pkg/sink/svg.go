package sink

import (
	"bytes"
	"fmt"
	"html"
)

// SVGOption configures wireframe rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	labels   bool
	surfaces bool
	scale    float64
}

// WithLabels draws each node's id in its top-left corner.
func WithLabels() SVGOption { return func(r *svgRenderer) { r.labels = true } }

// WithSurfaces outlines bound surfaces on top of the node boxes.
func WithSurfaces() SVGOption { return func(r *svgRenderer) { r.surfaces = true } }

// WithSVGScale sets the ratio of output pixels to layout units (default 1).
func WithSVGScale(s float64) SVGOption { return func(r *svgRenderer) { r.scale = s } }

var depthFills = []string{"#f8fafc", "#e0f2fe", "#dcfce7", "#fef9c3", "#fce7f3", "#ede9fe"}

const (
	strokeColor  = "#475569"
	errorColor   = "#dc2626"
	surfaceColor = "#2563eb"
)

// RenderSVG draws every node box of the frame. Boxes are filled by depth and
// nodes named by a diagnostic are outlined in red. The drawing covers the
// viewport, extended to include boxes that fall outside it.
func RenderSVG(f Frame, opts ...SVGOption) []byte {
	r := svgRenderer{scale: 1}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 {
		r.scale = 1
	}

	ext := f.Extent()
	w, h := float64(ext.Width), float64(ext.Height)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w*r.scale, h*r.scale)
	fmt.Fprintf(&buf, `  <rect class="viewport" x="0" y="0" width="%.2f" height="%.2f" fill="white" stroke="#94a3b8" stroke-dasharray="4 4"/>`+"\n",
		f.Viewport.Width, f.Viewport.Height)

	flagged := f.flagged()
	for _, n := range f.Nodes {
		stroke, width := strokeColor, 1.0
		if flagged[n.ID] {
			stroke, width = errorColor, 2.5
		}
		fmt.Fprintf(&buf, `  <rect id="node-%s" class="node %s" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" stroke="%s" stroke-width="%.1f"/>`+"\n",
			html.EscapeString(n.ID), n.Kind, n.Position.X, n.Position.Y, n.Size.Width, n.Size.Height,
			depthFills[n.Depth%len(depthFills)], stroke, width)
		if r.labels && n.Size.Width > 0 && n.Size.Height > 0 {
			fmt.Fprintf(&buf, `  <text x="%.2f" y="%.2f" font-family="monospace" font-size="10" fill="%s">%s</text>`+"\n",
				n.Position.X+3, n.Position.Y+12, strokeColor, html.EscapeString(n.ID))
		}
	}

	if r.surfaces {
		for _, s := range f.Surfaces {
			if !s.Bound {
				continue
			}
			fmt.Fprintf(&buf, `  <rect class="surface" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="none" stroke="%s" stroke-dasharray="2 2"/>`+"\n",
				s.Position.X, s.Position.Y, s.Size.Width, s.Size.Height, surfaceColor)
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}
