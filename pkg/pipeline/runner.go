package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/crystal/pkg/cache"
	"github.com/matzehuels/crystal/pkg/layout"
	"github.com/matzehuels/crystal/pkg/observability"
	"github.com/matzehuels/crystal/pkg/sink"
	"github.com/matzehuels/crystal/pkg/surface"
	"github.com/matzehuels/crystal/pkg/tree"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so that caching behaves the same everywhere.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options; every run builds its own tree.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL is the lifetime of cached artifacts.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    cache.DefaultTTL,
	}
}

// Load reads the tree document at path.
func (r *Runner) Load(ctx context.Context, path string) (*tree.Document, error) {
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, path)
	start := time.Now()

	doc, err := tree.ReadFile(path)
	nodes := 0
	if err == nil {
		nodes = len(doc.IDs())
	}
	hooks.OnLoadComplete(ctx, path, nodes, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	r.Logger.Debug("loaded document", "path", path, "nodes", nodes)
	return doc, nil
}

// Execute builds, solves and renders doc.
func (r *Runner) Execute(ctx context.Context, doc *tree.Document, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := opts.Logger

	result := &Result{Artifacts: make(map[string][]byte)}

	// Stage 1: Build
	buildStart := time.Now()
	root, err := doc.Build()
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Root = root
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = layout.Count(root)

	if dups := doc.DuplicateIDs(); len(dups) > 0 {
		logger.Warn("duplicate node ids; lookups use the first match", "ids", dups)
	}

	docHash, err := cache.HashJSON(doc)
	if err != nil {
		return nil, fmt.Errorf("hash document: %w", err)
	}
	result.DocumentHash = docHash

	// Stage 2: Solve
	var docViewport layout.Size
	if doc.Viewport != nil {
		docViewport = doc.Viewport.Size()
	}
	vp := opts.Viewport(docViewport)
	result.Viewport = vp
	solveStart := time.Now()
	result.Errors = r.Solve(ctx, root, vp, opts)
	result.Stats.SolveTime = time.Since(solveStart)
	result.Stats.ErrorCount = len(result.Errors)

	logger.Info("solved layout",
		"nodes", result.Stats.NodeCount,
		"viewport", fmt.Sprintf("%gx%g", vp.Width, vp.Height),
		"errors", result.Stats.ErrorCount,
		"duration", result.Stats.SolveTime)

	// Stage 3: Sync surfaces
	surfaces := surface.NewManager(logger, doc.SurfaceIDs()...)
	result.Missing = surfaces.Sync(root)
	result.Surfaces = surfaces.Surfaces()
	result.Frame = sink.NewFrame(root, vp, result.Errors, result.Surfaces)

	// Stage 4: Render
	renderStart := time.Now()
	artifacts, hits, err := r.RenderWithCacheInfo(ctx, result, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.Hits = hits
	result.CacheInfo.RenderHit = len(hits) == len(opts.Formats)

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", len(hits),
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Solve solves root against vp, firing solve hooks and logging every
// diagnostic as a warning.
func (r *Runner) Solve(ctx context.Context, root layout.Node, vp layout.Size, opts Options) []layout.LayoutError {
	r.applyLogger(&opts)
	hooks := observability.Pipeline()
	nodes := layout.Count(root)

	hooks.OnSolveStart(ctx, nodes, vp.Width, vp.Height)
	start := time.Now()
	errs := layout.Solve(root, vp)
	if opts.Dedupe {
		errs = layout.Dedupe(errs)
	}
	hooks.OnSolveComplete(ctx, nodes, len(errs), time.Since(start))

	for _, e := range errs {
		logLayoutError(opts.Logger, e)
	}
	return errs
}

func logLayoutError(logger *log.Logger, err layout.LayoutError) {
	switch e := err.(type) {
	case *layout.OverflowError:
		logger.Warn("children overflow container", "id", e.ID)
	case *layout.OutOfBoundsError:
		logger.Warn("child out of parent bounds", "parent", e.ParentID, "child", e.ChildID)
	default:
		logger.Warn(err.Error())
	}
}

// RenderWithCacheInfo renders every requested format of a solved result,
// serving cached artifacts where possible. It returns the formats that came
// from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, res *Result, opts Options) (map[string][]byte, []string, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, err
	}
	pipeHooks := observability.Pipeline()
	pipeHooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	// Formats render concurrently; results are collected by index so hits
	// keep the order of opts.Formats.
	outputs := make([][]byte, len(opts.Formats))
	cached := make([]bool, len(opts.Formats))
	g, gctx := errgroup.WithContext(ctx)
	for i, format := range opts.Formats {
		g.Go(func() error {
			data, hit, err := r.renderFormat(gctx, res, format, opts)
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			outputs[i], cached[i] = data, hit
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		pipeHooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
		return nil, nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var hits []string
	for i, format := range opts.Formats {
		artifacts[format] = outputs[i]
		if cached[i] {
			hits = append(hits, format)
		}
	}

	pipeHooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
	return artifacts, hits, nil
}

// renderFormat serves one format from the cache or renders and stores it.
func (r *Runner) renderFormat(ctx context.Context, res *Result, format string, opts Options) ([]byte, bool, error) {
	cacheHooks := observability.Cache()
	key, keyType := r.artifactKey(res, format, opts)

	if !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			opts.Logger.Warn("cache read failed", "format", format, "err", err)
		}
		if err == nil && hit {
			cacheHooks.OnCacheHit(ctx, keyType)
			return data, true, nil
		}
		cacheHooks.OnCacheMiss(ctx, keyType)
	}

	data, err := Render(ctx, res.Root, res.Frame, format, opts)
	if err != nil {
		return nil, false, err
	}

	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		opts.Logger.Warn("cache write failed", "format", format, "err", err)
		return data, false, nil
	}
	cacheHooks.OnCacheSet(ctx, keyType, len(data))
	return data, false, nil
}

// artifactKey returns the cache key for one format. The JSON export is the
// frame itself and is keyed as such.
func (r *Runner) artifactKey(res *Result, format string, opts Options) (key, keyType string) {
	if format == FormatJSON {
		return r.Keyer.FrameKey(res.DocumentHash, opts.FrameKeyOpts(res.Viewport)), "frame"
	}
	return r.Keyer.ArtifactKey(res.DocumentHash, opts.ArtifactKeyOpts(res.Viewport, format)), "artifact"
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
