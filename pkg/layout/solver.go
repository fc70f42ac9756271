package layout

// Solve computes the size and position of every node under root for a
// viewport, mutating the tree in place, and returns the diagnostics found.
//
// The viewport is the outermost constraint. Passes run in a fixed order:
// minimum constraints must be known before flex space is distributed, and
// sizes must be final before positions are assigned. Positions are absolute,
// starting from the root's current position (the origin unless the caller
// moved it). Solve keeps no state, so calling it again on an unchanged tree
// yields identical geometry.
func Solve(root Node, viewport Size) []LayoutError {
	if root == nil {
		return nil
	}
	viewport = Size{Width: sanitize(viewport.Width), Height: sanitize(viewport.Height)}

	root.SetMaxWidth(viewport.Width)
	root.SetMaxHeight(viewport.Height)

	_, _ = root.solveMinConstraints()
	root.solveMaxConstraints(viewport)
	root.updateSize()
	root.positionChildren()
	return root.collectErrors()
}
