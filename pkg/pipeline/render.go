package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/crystal/pkg/layout"
	"github.com/matzehuels/crystal/pkg/sink"
)

// Render generates one output artifact from a solved tree and its frame.
func Render(ctx context.Context, root layout.Node, f sink.Frame, format string, opts Options) ([]byte, error) {
	svgOpts := buildSVGOptions(opts)

	switch format {
	case FormatJSON:
		return sink.RenderJSON(f)
	case FormatSVG:
		return sink.RenderSVG(f, svgOpts...), nil
	case FormatPNG:
		return sink.RenderPNG(ctx, f, opts.Scale, svgOpts...)
	case FormatPDF:
		return sink.RenderPDF(ctx, f, svgOpts...)
	case FormatDOT:
		return []byte(sink.ToDOT(root, sink.DOTOptions{Detailed: opts.Detailed})), nil
	case FormatTreeSVG:
		return sink.RenderTreeSVG(ctx, sink.ToDOT(root, sink.DOTOptions{Detailed: opts.Detailed}))
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// buildSVGOptions builds wireframe rendering options.
func buildSVGOptions(opts Options) []sink.SVGOption {
	svgOpts := []sink.SVGOption{sink.WithSurfaces()}
	if opts.Labels {
		svgOpts = append(svgOpts, sink.WithLabels())
	}
	return svgOpts
}
