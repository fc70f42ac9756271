package layout

import "iter"

// Empty is a leaf node. Its size follows directly from its intrinsic size:
// fixed axes take their value, flex axes fill the space offered and shrink
// axes collapse to zero.
type Empty struct {
	box
}

// NewEmpty returns a leaf node.
func NewEmpty(id string, size IntrinsicSize) *Empty {
	return &Empty{box: box{id: id, intrinsic: size}}
}

func (e *Empty) Kind() Kind           { return KindEmpty }
func (e *Empty) Children() []Node     { return nil }
func (e *Empty) Iter() iter.Seq[Node] { return Walk(e) }

func (e *Empty) solveMinConstraints() (float32, float32) {
	return e.setMin(Size{})
}

func (e *Empty) solveMaxConstraints(Size) {
	e.constraints = e.constraints.Normalize()
}

func (e *Empty) updateSize() {
	e.updateOwnSize()
}

func (e *Empty) positionChildren() {}

func (e *Empty) collectErrors() []LayoutError { return nil }
