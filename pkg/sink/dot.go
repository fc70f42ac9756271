package sink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/crystal/pkg/layout"
)

// DOTOptions configures hierarchy export via [ToDOT].
type DOTOptions struct {
	// Detailed adds kind, sizing policy and solved geometry to node labels.
	// When false, only the node id is shown.
	Detailed bool
}

var kindShapes = map[layout.Kind]string{
	layout.KindEmpty:      "box",
	layout.KindBlock:      "box3d",
	layout.KindHorizontal: "cds",
	layout.KindVertical:   "folder",
}

// ToDOT converts a layout tree to Graphviz DOT, one vertex per node and one
// edge per parent-child link, children ordered left to right. Nodes are
// keyed by pre-order index, so duplicate ids still produce distinct vertices.
// The result can be drawn with [RenderTreeSVG].
func ToDOT(root layout.Node, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  ordering=out;\n")
	buf.WriteString("  node [style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	index := make(map[layout.Node]int)
	for n := range layout.Walk(root) {
		i := len(index)
		index[n] = i
		fmt.Fprintf(&buf, "  n%d [label=%q, shape=%s];\n", i, fmtLabel(n, opts.Detailed), kindShapes[n.Kind()])
	}

	buf.WriteString("\n")
	for n := range layout.Walk(root) {
		for _, c := range n.Children() {
			fmt.Fprintf(&buf, "  n%d -> n%d;\n", index[n], index[c])
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n layout.Node, detailed bool) string {
	if !detailed {
		return n.ID()
	}
	is := n.IntrinsicSize()
	s, p := n.Size(), n.Position()
	parts := []string{
		n.Kind().String(),
		fmt.Sprintf("w: %s  h: %s", is.Width, is.Height),
		fmt.Sprintf("%gx%g @ (%g, %g)", s.Width, s.Height, p.X, p.Y),
	}
	return n.ID() + "\n" + strings.Join(parts, "\n")
}

// graphvizMu serializes use of the embedded Graphviz runtime.
var graphvizMu sync.Mutex

// RenderTreeSVG renders a DOT graph to SVG using Graphviz. It is safe for
// concurrent use; calls are serialized.
func RenderTreeSVG(ctx context.Context, dot string) ([]byte, error) {
	graphvizMu.Lock()
	defer graphvizMu.Unlock()

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with one sized
// in pixels and anchored at the origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
