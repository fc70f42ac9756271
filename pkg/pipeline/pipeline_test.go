package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/crystal/pkg/cache"
	"github.com/matzehuels/crystal/pkg/errors"
	"github.com/matzehuels/crystal/pkg/layout"
	"github.com/matzehuels/crystal/pkg/observability"
	"github.com/matzehuels/crystal/pkg/sink"
	"github.com/matzehuels/crystal/pkg/tree"
)

const dashboardTOML = `
surfaces = ["sidebar", "content", "status"]

[viewport]
width = 800
height = 600

[root]
id = "root"
kind = "vertical"
width = "flex"
height = "flex"

[[root.children]]
id = "main"
kind = "horizontal"
width = "flex"
height = "flex"
spacing = 8
padding = 4

[[root.children.children]]
id = "sidebar"
width = 250
height = "flex"

[[root.children.children]]
id = "content"
kind = "block"
width = "flex(3)"
height = "flex"
padding = 12

[[root.children.children.children]]
id = "card"
width = 200
height = 120

[[root.children]]
id = "status"
width = "flex"
height = 24
`

const overflowJSON = `{
  "root": {
    "id": "root", "kind": "horizontal", "width": 100, "height": 50,
    "children": [
      {"id": "b", "width": 80, "height": 10},
      {"id": "b", "width": 80, "height": 10},
      {"id": "b", "width": 80, "height": 10}
    ]
  }
}`

func decode(t *testing.T, src string, format tree.Format) *tree.Document {
	t.Helper()
	doc, err := tree.Decode(strings.NewReader(src), format)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return doc
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if diff := cmp.Diff([]string{FormatJSON}, opts.Formats); diff != "" {
		t.Errorf("Formats mismatch (-want +got):\n%s", diff)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("Scale = %v, want %v", opts.Scale, DefaultScale)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discarding logger")
	}
}

func TestValidateAndSetDefaults_NormalizesFormats(t *testing.T) {
	opts := Options{Formats: []string{"SVG", "json", "svg", "Tree-SVG"}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	want := []string{FormatSVG, FormatJSON, FormatTreeSVG}
	if diff := cmp.Diff(want, opts.Formats); diff != "" {
		t.Errorf("Formats mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateAndSetDefaults_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"unknown format", Options{Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"negative width", Options{Width: -1}, errors.ErrCodeInvalidViewport},
		{"huge height", Options{Height: errors.MaxViewportDimension + 1}, errors.ErrCodeInvalidViewport},
		{"negative scale", Options{Scale: -2}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Formats: []string{"svg"}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	opts.Formats = []string{"not-a-format"}

	// Already validated; the second call must not revisit the options.
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
}

func TestOptionsViewport(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		doc  layout.Size
		want layout.Size
	}{
		{"defaults", Options{}, layout.Size{}, layout.Size{Width: DefaultWidth, Height: DefaultHeight}},
		{"document", Options{}, layout.Size{Width: 1024, Height: 768}, layout.Size{Width: 1024, Height: 768}},
		{"options win", Options{Width: 320, Height: 240}, layout.Size{Width: 1024, Height: 768}, layout.Size{Width: 320, Height: 240}},
		{"per axis", Options{Height: 100}, layout.Size{Width: 1024}, layout.Size{Width: 1024, Height: 100}},
		{"fallback", Options{Fallback: layout.Size{Width: 640, Height: 480}}, layout.Size{Height: 900}, layout.Size{Width: 640, Height: 900}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.Viewport(tt.doc); got != tt.want {
				t.Errorf("Viewport() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestArtifactKeyOpts_OnlyRelevantSettings(t *testing.T) {
	opts := Options{Labels: true, Detailed: true, Scale: 3}
	vp := layout.Size{Width: 10, Height: 20}

	if k := opts.ArtifactKeyOpts(vp, FormatSVG); !k.Labels || k.Detailed || k.Scale != 0 {
		t.Errorf("svg key = %+v, want labels only", k)
	}
	if k := opts.ArtifactKeyOpts(vp, FormatPNG); !k.Labels || k.Scale != 3 {
		t.Errorf("png key = %+v, want labels and scale", k)
	}
	if k := opts.ArtifactKeyOpts(vp, FormatDOT); k.Labels || !k.Detailed {
		t.Errorf("dot key = %+v, want detailed only", k)
	}
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		FormatJSON:    ".json",
		FormatSVG:     ".svg",
		FormatDOT:     ".dot",
		FormatTreeSVG: ".tree.svg",
	}
	for format, want := range tests {
		if got := Extension(format); got != want {
			t.Errorf("Extension(%q) = %q, want %q", format, got, want)
		}
	}
}

func TestExecute_Dashboard(t *testing.T) {
	doc := decode(t, dashboardTOML, tree.FormatTOML)
	r := NewRunner(nil, nil, nil)

	res, err := r.Execute(context.Background(), doc, Options{Formats: []string{"json", "svg", "dot"}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if res.Viewport != (layout.Size{Width: 800, Height: 600}) {
		t.Errorf("Viewport = %v, want document viewport 800x600", res.Viewport)
	}
	if len(res.Errors) != 0 {
		t.Errorf("Errors = %v, want none", res.Errors)
	}
	if res.Stats.NodeCount != 6 {
		t.Errorf("NodeCount = %d, want 6", res.Stats.NodeCount)
	}

	want := map[string]struct {
		size layout.Size
		pos  layout.Position
	}{
		"sidebar": {layout.Size{Width: 250, Height: 568}, layout.Position{X: 4, Y: 4}},
		"content": {layout.Size{Width: 534, Height: 568}, layout.Position{X: 262, Y: 4}},
		"status":  {layout.Size{Width: 800, Height: 24}, layout.Position{X: 0, Y: 576}},
	}
	if len(res.Surfaces) != len(want) {
		t.Fatalf("got %d surfaces, want %d", len(res.Surfaces), len(want))
	}
	for _, s := range res.Surfaces {
		w := want[s.ID]
		if !s.Bound || s.Size != w.size || s.Position != w.pos {
			t.Errorf("surface %s = %v @ %v (bound %v), want %v @ %v", s.ID, s.Size, s.Position, s.Bound, w.size, w.pos)
		}
	}

	card, _ := layout.Find(res.Root, "card")
	if card == nil || card.Position() != (layout.Position{X: 274, Y: 16}) {
		t.Errorf("card position = %v, want (274, 16)", card)
	}

	var out sink.JSONOutput
	if err := json.Unmarshal(res.Artifacts[FormatJSON], &out); err != nil {
		t.Fatalf("unmarshal json artifact: %v", err)
	}
	if len(out.Nodes) != 6 || out.Nodes[0].ID != "root" {
		t.Errorf("json nodes = %+v, want 6 nodes starting at root", out.Nodes)
	}
	if !strings.HasPrefix(string(res.Artifacts[FormatSVG]), "<svg") {
		t.Errorf("svg artifact does not start with <svg")
	}
	if !strings.Contains(string(res.Artifacts[FormatDOT]), "digraph G") {
		t.Errorf("dot artifact missing digraph header")
	}
}

func TestExecute_OptionsOverrideViewport(t *testing.T) {
	doc := decode(t, dashboardTOML, tree.FormatTOML)
	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), doc, Options{Width: 400, Height: 300})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	status, _ := layout.Find(res.Root, "status")
	if got := status.Size(); got != (layout.Size{Width: 400, Height: 24}) {
		t.Errorf("status size = %v, want 400x24", got)
	}
	if got := status.Position(); got.Y != 276 {
		t.Errorf("status y = %v, want 276", got.Y)
	}
}

func TestExecute_LayoutErrors(t *testing.T) {
	doc := decode(t, overflowJSON, tree.FormatJSON)
	r := NewRunner(nil, nil, nil)

	res, err := r.Execute(context.Background(), doc, Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := []layout.LayoutError{
		&layout.OverflowError{ID: "root"},
		&layout.OutOfBoundsError{ParentID: "root", ChildID: "b"},
		&layout.OutOfBoundsError{ParentID: "root", ChildID: "b"},
	}
	if diff := cmp.Diff(want, res.Errors); diff != "" {
		t.Errorf("Errors mismatch (-want +got):\n%s", diff)
	}
	if res.Stats.ErrorCount != 3 {
		t.Errorf("ErrorCount = %d, want 3", res.Stats.ErrorCount)
	}

	res, err = r.Execute(context.Background(), doc, Options{Dedupe: true})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if diff := cmp.Diff(want[:2], res.Errors); diff != "" {
		t.Errorf("deduped Errors mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_MissingSurface(t *testing.T) {
	doc := decode(t, overflowJSON, tree.FormatJSON)
	doc.Surfaces = []string{"b", "ghost"}

	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), doc, Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if diff := cmp.Diff([]string{"ghost"}, res.Missing); diff != "" {
		t.Errorf("Missing mismatch (-want +got):\n%s", diff)
	}
	if len(res.Surfaces) != 2 || !res.Surfaces[0].Bound || res.Surfaces[1].Bound {
		t.Errorf("Surfaces = %+v, want b bound and ghost unbound", res.Surfaces)
	}
}

func TestExecute_InvalidDocument(t *testing.T) {
	doc := &tree.Document{Root: tree.NodeSpec{ID: "x", Kind: "grid"}}
	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), doc, Options{})
	if !errors.Is(err, errors.ErrCodeInvalidNodeKind) {
		t.Errorf("error = %v, want code %s", err, errors.ErrCodeInvalidNodeKind)
	}
}

func TestExecute_InvalidOptions(t *testing.T) {
	doc := decode(t, overflowJSON, tree.FormatJSON)
	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), doc, Options{Formats: []string{"bmp"}})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want code %s", err, errors.ErrCodeInvalidFormat)
	}
}

type countingCacheHooks struct {
	mu                sync.Mutex
	hits, misses, set map[string]int
}

func newCountingCacheHooks() *countingCacheHooks {
	return &countingCacheHooks{hits: map[string]int{}, misses: map[string]int{}, set: map[string]int{}}
}

func (h *countingCacheHooks) OnCacheHit(_ context.Context, keyType string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits[keyType]++
}

func (h *countingCacheHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.misses[keyType]++
}

func (h *countingCacheHooks) OnCacheSet(_ context.Context, keyType string, _ int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.set[keyType]++
}

func TestExecute_CachesArtifacts(t *testing.T) {
	hooks := newCountingCacheHooks()
	observability.SetCacheHooks(hooks)
	t.Cleanup(observability.Reset)

	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	r := NewRunner(c, nil, nil)
	doc := decode(t, dashboardTOML, tree.FormatTOML)
	opts := Options{Formats: []string{"json", "svg"}}

	first, err := r.Execute(context.Background(), doc, opts)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if len(first.CacheInfo.Hits) != 0 || first.CacheInfo.RenderHit {
		t.Errorf("first run CacheInfo = %+v, want no hits", first.CacheInfo)
	}

	second, err := r.Execute(context.Background(), doc, opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheInfo.RenderHit {
		t.Errorf("second run CacheInfo = %+v, want all hits", second.CacheInfo)
	}
	if diff := cmp.Diff(first.Artifacts, second.Artifacts); diff != "" {
		t.Errorf("cached artifacts differ (-first +second):\n%s", diff)
	}

	wantHits := map[string]int{"frame": 1, "artifact": 1}
	if diff := cmp.Diff(wantHits, hooks.hits); diff != "" {
		t.Errorf("cache hits mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantHits, hooks.set); diff != "" {
		t.Errorf("cache sets mismatch (-want +got):\n%s", diff)
	}

	// A different viewport is a different entry.
	third, err := r.Execute(context.Background(), doc, Options{Formats: opts.Formats, Width: 640})
	if err != nil {
		t.Fatalf("third Execute: %v", err)
	}
	if len(third.CacheInfo.Hits) != 0 {
		t.Errorf("resized run hits = %v, want none", third.CacheInfo.Hits)
	}
}

func TestExecute_HitsKeepFormatOrder(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	r := NewRunner(c, nil, nil)
	doc := decode(t, dashboardTOML, tree.FormatTOML)
	opts := Options{Formats: []string{"DOT", "svg", "json"}}

	if _, err := r.Execute(context.Background(), doc, opts); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	res, err := r.Execute(context.Background(), doc, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if diff := cmp.Diff([]string{"dot", "svg", "json"}, res.CacheInfo.Hits); diff != "" {
		t.Errorf("hits mismatch (-want +got):\n%s", diff)
	}
	if len(res.Artifacts) != 3 {
		t.Errorf("artifacts = %d, want 3", len(res.Artifacts))
	}
}

func TestExecute_RefreshBypassesCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	r := NewRunner(c, nil, nil)
	doc := decode(t, dashboardTOML, tree.FormatTOML)

	if _, err := r.Execute(context.Background(), doc, Options{}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	res, err := r.Execute(context.Background(), doc, Options{Refresh: true})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(res.CacheInfo.Hits) != 0 {
		t.Errorf("refresh hits = %v, want none", res.CacheInfo.Hits)
	}
}

type recordingPipelineHooks struct {
	observability.NoopPipelineHooks
	loads       []string
	loadErr     error
	solveNodes  int
	solveErrors int
}

func (h *recordingPipelineHooks) OnLoadComplete(_ context.Context, source string, _ int, _ time.Duration, err error) {
	h.loads = append(h.loads, source)
	h.loadErr = err
}

func (h *recordingPipelineHooks) OnSolveComplete(_ context.Context, nodes, layoutErrors int, _ time.Duration) {
	h.solveNodes, h.solveErrors = nodes, layoutErrors
}

func TestLoad(t *testing.T) {
	hooks := &recordingPipelineHooks{}
	observability.SetPipelineHooks(hooks)
	t.Cleanup(observability.Reset)

	path := filepath.Join(t.TempDir(), "overflow.json")
	if err := os.WriteFile(path, []byte(overflowJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRunner(nil, nil, nil)
	doc, err := r.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := r.Execute(context.Background(), doc, Options{}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if hooks.solveNodes != 4 || hooks.solveErrors != 3 {
		t.Errorf("solve hook got nodes=%d errors=%d, want 4 and 3", hooks.solveNodes, hooks.solveErrors)
	}

	_, err = r.Load(context.Background(), filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want code %s", err, errors.ErrCodeFileNotFound)
	}
	if len(hooks.loads) != 2 || hooks.loadErr == nil {
		t.Errorf("load hooks = %v (last err %v), want two loads ending in an error", hooks.loads, hooks.loadErr)
	}
}
