// Package tree decodes declarative layout documents and builds solvable
// [layout.Node] trees from them.
//
// # Overview
//
// A document describes one UI tree and, optionally, the viewport it is meant
// for and the node ids that back rendering surfaces. Documents are written in
// TOML or JSON; both encode the same structure:
//
//	[viewport]
//	width = 800
//	height = 600
//
//	[root]
//	id = "root"
//	kind = "horizontal"
//	width = "flex"
//	height = "flex"
//	spacing = 8
//
//	[[root.children]]
//	id = "sidebar"
//	width = 250
//	height = "flex"
//
//	[[root.children]]
//	id = "content"
//	width = "flex(3)"
//	height = "flex"
//
// # Node Fields
//
// Required:
//   - id: Node identifier, used in diagnostics and to bind surfaces
//
// Optional:
//   - kind: "empty" (default), "block", "horizontal" or "vertical"
//   - width, height: "shrink" (default), "flex", "flex(N)", "fixed(V)" or a number V
//   - padding: inset on all sides (block, horizontal, vertical)
//   - spacing: gap between children (horizontal, vertical)
//   - main_align, cross_align: "start", "center", "end", "space-between", "space-evenly"
//   - children: child nodes (none for empty, at most one for block)
//
// # Building
//
// [Document.Build] validates the document and returns a fresh tree on every
// call, so a document can be solved repeatedly, or concurrently, without the
// trees sharing state. Duplicate ids are allowed, as they are in the solver;
// [Document.DuplicateIDs] reports them for callers that want to warn.
package tree
