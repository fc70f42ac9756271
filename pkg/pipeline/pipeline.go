// Package pipeline provides the solve pipeline shared by the crystal CLI and
// HTTP server.
//
// One run takes a tree document through every stage:
//
//  1. Load: read and decode the document (TOML or JSON)
//  2. Build: validate it and build a fresh layout tree
//  3. Solve: resolve every node's size and position against the viewport
//  4. Sync: copy solved geometry onto the document's surfaces
//  5. Render: produce the requested outputs (JSON, SVG, PNG, PDF, DOT)
//
// Building and solving are cheap and always run. Rendered artifacts are
// cached, keyed by the document's content and the options that shape the
// output.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	doc, err := runner.Load(ctx, "dashboard.toml")
//	if err != nil {
//	    return err
//	}
//	result, err := runner.Execute(ctx, doc, pipeline.Options{
//	    Width:   1024,
//	    Height:  768,
//	    Formats: []string{"json", "svg"},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
//
// Layout diagnostics never fail a run; they are reported in [Result.Errors].
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/crystal/pkg/cache"
	"github.com/matzehuels/crystal/pkg/errors"
	"github.com/matzehuels/crystal/pkg/layout"
	"github.com/matzehuels/crystal/pkg/sink"
	"github.com/matzehuels/crystal/pkg/surface"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the viewport width used when neither the options nor
	// the document set one.
	DefaultWidth = 800.0

	// DefaultHeight is the default viewport height.
	DefaultHeight = 600.0

	// DefaultScale is the PNG resolution multiplier.
	DefaultScale = 2.0
)

// Format constants for output formats.
const (
	FormatJSON    = "json"
	FormatSVG     = "svg"
	FormatPNG     = "png"
	FormatPDF     = "pdf"
	FormatDOT     = "dot"
	FormatTreeSVG = "tree-svg"
)

// Formats lists every supported output format.
var Formats = []string{FormatJSON, FormatSVG, FormatPNG, FormatPDF, FormatDOT, FormatTreeSVG}

// Extension returns the file extension used when writing format to disk.
func Extension(format string) string {
	switch format {
	case FormatTreeSVG:
		return ".tree.svg"
	case FormatDOT:
		return ".dot"
	default:
		return "." + format
	}
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Viewport. Zero means the document's viewport, then Fallback, then
	// the defaults.
	Width    float32     `json:"width,omitempty"`
	Height   float32     `json:"height,omitempty"`
	Fallback layout.Size `json:"-"`

	// Solve options
	Dedupe bool `json:"dedupe,omitempty"` // Drop repeated diagnostics

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Labels   bool     `json:"labels,omitempty"`   // Node ids in SVG output
	Detailed bool     `json:"detailed,omitempty"` // Sizing and geometry in DOT labels
	Scale    float64  `json:"scale,omitempty"`    // PNG resolution multiplier
	Refresh  bool     `json:"refresh,omitempty"`  // Bypass cached artifacts

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Root is the solved layout tree.
	Root layout.Node

	// DocumentHash is the content hash of the document.
	DocumentHash string

	// Viewport is the size the tree was solved against.
	Viewport layout.Size

	// Errors are the layout diagnostics in solver order.
	Errors []layout.LayoutError

	// Surfaces holds the synced geometry of each declared surface, and
	// Missing the surface ids that matched no node.
	Surfaces []surface.Surface
	Missing  []string

	// Frame is the geometry snapshot the artifacts were rendered from.
	Frame sink.Frame

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which artifacts came from the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	ErrorCount int
	BuildTime  time.Duration
	SolveTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for rendered artifacts.
type CacheInfo struct {
	Hits      []string // Formats served from the cache
	RenderHit bool     // Whether all artifacts came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and fills in defaults. Format
// names are lowercased and deduplicated.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := errors.ValidateViewport(o.Width, o.Height); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if err := errors.ValidateFormats(o.Formats, Formats); err != nil {
		return err
	}
	o.Formats = normalizeFormats(o.Formats)
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must not be negative")
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

func normalizeFormats(formats []string) []string {
	out := make([]string, 0, len(formats))
	seen := make(map[string]bool, len(formats))
	for _, f := range formats {
		f = strings.ToLower(f)
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

// Viewport resolves the viewport of a document: explicit options win, then
// the document's own viewport, then Fallback, then [DefaultWidth] x
// [DefaultHeight]. Each axis is resolved on its own.
func (o *Options) Viewport(docViewport layout.Size) layout.Size {
	vp := layout.Size{Width: DefaultWidth, Height: DefaultHeight}
	if o.Fallback.Width > 0 {
		vp.Width = o.Fallback.Width
	}
	if o.Fallback.Height > 0 {
		vp.Height = o.Fallback.Height
	}
	if docViewport.Width > 0 {
		vp.Width = docViewport.Width
	}
	if docViewport.Height > 0 {
		vp.Height = docViewport.Height
	}
	if o.Width > 0 {
		vp.Width = o.Width
	}
	if o.Height > 0 {
		vp.Height = o.Height
	}
	return vp
}

// FrameKeyOpts returns cache key options for the solved frame.
func (o *Options) FrameKeyOpts(vp layout.Size) cache.FrameKeyOpts {
	return cache.FrameKeyOpts{
		Width:  vp.Width,
		Height: vp.Height,
		Dedupe: o.Dedupe,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering. Only
// the settings a format uses are part of its key.
func (o *Options) ArtifactKeyOpts(vp layout.Size, format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Width:  vp.Width,
		Height: vp.Height,
		Format: format,
		Dedupe: o.Dedupe,
	}
	switch format {
	case FormatSVG, FormatPDF:
		k.Labels = o.Labels
	case FormatPNG:
		k.Labels = o.Labels
		k.Scale = o.Scale
	case FormatDOT, FormatTreeSVG:
		k.Detailed = o.Detailed
	}
	return k
}
