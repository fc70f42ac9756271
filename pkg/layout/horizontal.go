package layout

import "iter"

// Horizontal lays its children out left to right. Flex factors apply to
// widths only; every non-fixed child is stretched to the full inner height.
type Horizontal struct {
	stack
}

// NewHorizontal returns a horizontal container holding children in order.
// Nil children, including nil pointers of a node type, are skipped.
func NewHorizontal(id string, size IntrinsicSize, children ...Node) *Horizontal {
	h := &Horizontal{stack: stack{box: box{id: id, intrinsic: size}, axis: axisX}}
	h.add(children...)
	return h
}

// AddChild appends children in order.
func (h *Horizontal) AddChild(children ...Node) *Horizontal {
	h.add(children...)
	return h
}

func (h *Horizontal) Kind() Kind           { return KindHorizontal }
func (h *Horizontal) Iter() iter.Seq[Node] { return Walk(h) }
