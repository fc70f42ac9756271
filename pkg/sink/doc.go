// Package sink renders solved layout trees to output formats.
//
// A [Frame] captures everything a solve produced: the viewport, the geometry
// of every node, the synced surfaces and the layout diagnostics. Sinks turn
// a frame into bytes:
//
//   - [RenderJSON]: machine-readable geometry and diagnostics
//   - [RenderSVG]: wireframe of every node box, diagnostics highlighted
//   - [RenderPNG], [RenderPDF]: the wireframe rasterized via rsvg-convert
//
// The hierarchy itself, independent of geometry, is exported with [ToDOT]
// and drawn with Graphviz by [RenderTreeSVG].
//
// All sinks are pure functions of their input and safe to call concurrently.
package sink
