// Package layout computes the size and position of every node in a UI tree.
//
// A tree is built from a closed set of node variants ([Empty], [Block],
// [Horizontal], [Vertical]), each carrying an [IntrinsicSize] that declares
// how it wants to be sized on each axis:
//
//   - [Fixed]: exactly the given value, regardless of available space.
//   - [Shrink]: the minimum needed to contain its content.
//   - [Flex]: a share of the parent's free space, weighted by factor.
//
// # Solving
//
// [Solve] runs a fixed sequence of passes over the tree:
//
//  1. Minimum constraints, post-order (children before parents).
//  2. Maximum constraints, pre-order; flex space is distributed here.
//  3. Final sizes from (intrinsic size, constraints).
//  4. Absolute positions, pre-order, honouring padding, spacing and alignment.
//  5. Diagnostics: [LayoutError] values for children that leave their parent's
//     bounds and for groups whose content overflows the main axis.
//
// Solve never fails. Conflicting constraints still produce a best-effort
// geometry and the conflicts are returned as data.
//
// # Example
//
//	row := layout.NewHorizontal("row", layout.IntrinsicSize{Width: layout.Flex(1), Height: layout.Flex(1)},
//	    layout.NewEmpty("left", layout.IntrinsicSize{Width: layout.Flex(1), Height: layout.Flex(1)}),
//	    layout.NewEmpty("right", layout.IntrinsicSize{Width: layout.Flex(3), Height: layout.Flex(1)}),
//	)
//	errs := layout.Solve(row, layout.Size{Width: 800, Height: 400})
//	for n := range layout.Walk(row) {
//	    fmt.Println(n.ID(), n.Size(), n.Position())
//	}
//
// The package does no I/O and keeps no state between calls; a tree must not be
// shared between goroutines while it is being solved.
package layout
