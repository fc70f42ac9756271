package tree

import "github.com/matzehuels/crystal/pkg/layout"

// Build validates d and returns a new tree for it.
func (d *Document) Build() (layout.Node, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d.Root.build(), nil
}

// build assumes n has been validated.
func (n *NodeSpec) build() layout.Node {
	kind, _ := layout.ParseKind(n.Kind)
	size := n.IntrinsicSize()

	switch kind {
	case layout.KindBlock:
		b := layout.NewBlock(n.ID, size, nil)
		b.Padding = n.Padding
		if len(n.Children) == 1 {
			b.SetChild(n.Children[0].build())
		}
		return b
	case layout.KindHorizontal:
		h := layout.NewHorizontal(n.ID, size, n.buildChildren()...)
		h.Padding, h.Spacing = n.Padding, n.Spacing
		h.MainAxisAlignment, h.CrossAxisAlignment = n.MainAlign, n.CrossAlign
		return h
	case layout.KindVertical:
		v := layout.NewVertical(n.ID, size, n.buildChildren()...)
		v.Padding, v.Spacing = n.Padding, n.Spacing
		v.MainAxisAlignment, v.CrossAxisAlignment = n.MainAlign, n.CrossAlign
		return v
	default:
		return layout.NewEmpty(n.ID, size)
	}
}

func (n *NodeSpec) buildChildren() []layout.Node {
	children := make([]layout.Node, len(n.Children))
	for i := range n.Children {
		children[i] = n.Children[i].build()
	}
	return children
}

// FromNode converts a tree back into a document root. Geometry is not
// carried over; only the declaration is.
func FromNode(root layout.Node) NodeSpec {
	spec := NodeSpec{
		ID:     root.ID(),
		Kind:   root.Kind().String(),
		Width:  Sizing(root.IntrinsicSize().Width),
		Height: Sizing(root.IntrinsicSize().Height),
	}
	switch n := root.(type) {
	case *layout.Block:
		spec.Padding = n.Padding
	case *layout.Horizontal:
		spec.Padding, spec.Spacing = n.Padding, n.Spacing
		spec.MainAlign, spec.CrossAlign = n.MainAxisAlignment, n.CrossAxisAlignment
	case *layout.Vertical:
		spec.Padding, spec.Spacing = n.Padding, n.Spacing
		spec.MainAlign, spec.CrossAlign = n.MainAxisAlignment, n.CrossAxisAlignment
	}
	for _, c := range root.Children() {
		spec.Children = append(spec.Children, FromNode(c))
	}
	return spec
}
