package sink

import (
	"github.com/matzehuels/crystal/pkg/layout"
	"github.com/matzehuels/crystal/pkg/surface"
)

// Frame is the result of one solve, ready for rendering.
type Frame struct {
	Viewport layout.Size
	Nodes    []Node
	Surfaces []surface.Surface
	Errors   []layout.LayoutError
}

// Node is the solved geometry of one layout node.
type Node struct {
	ID       string          `json:"id"`
	Kind     string          `json:"kind"`
	Parent   string          `json:"parent,omitempty"`
	Depth    int             `json:"depth"`
	Size     layout.Size     `json:"size"`
	Position layout.Position `json:"position"`
}

// NewFrame captures the geometry of a solved tree in pre-order.
func NewFrame(root layout.Node, viewport layout.Size, errs []layout.LayoutError, surfaces []surface.Surface) Frame {
	f := Frame{Viewport: viewport, Surfaces: surfaces, Errors: errs}
	if root == nil {
		return f
	}

	type item struct {
		node   layout.Node
		parent string
		depth  int
	}
	stack := []item{{node: root}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		f.Nodes = append(f.Nodes, Node{
			ID:       it.node.ID(),
			Kind:     it.node.Kind().String(),
			Parent:   it.parent,
			Depth:    it.depth,
			Size:     it.node.Size(),
			Position: it.node.Position(),
		})
		children := it.node.Children()
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, item{node: children[i], parent: it.node.ID(), depth: it.depth + 1})
		}
	}
	return f
}

// Extent is the bounding size of the viewport and every node box.
func (f Frame) Extent() layout.Size {
	ext := f.Viewport
	for _, n := range f.Nodes {
		ext.Width = max(ext.Width, n.Position.X+n.Size.Width)
		ext.Height = max(ext.Height, n.Position.Y+n.Size.Height)
	}
	return ext
}

// flagged returns the ids of nodes named by a diagnostic: overflowing
// containers and children out of their parent's bounds.
func (f Frame) flagged() map[string]bool {
	ids := make(map[string]bool, len(f.Errors))
	for _, err := range f.Errors {
		switch e := err.(type) {
		case *layout.OverflowError:
			ids[e.ID] = true
		case *layout.OutOfBoundsError:
			ids[e.ChildID] = true
		}
	}
	return ids
}
