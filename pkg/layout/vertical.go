package layout

import "iter"

// Vertical lays its children out top to bottom. It is the mirror image of
// [Horizontal]: flex factors apply to heights and children are stretched to
// the full inner width.
type Vertical struct {
	stack
}

// NewVertical returns a vertical container holding children in order.
// Nil children, including nil pointers of a node type, are skipped.
func NewVertical(id string, size IntrinsicSize, children ...Node) *Vertical {
	v := &Vertical{stack: stack{box: box{id: id, intrinsic: size}, axis: axisY}}
	v.add(children...)
	return v
}

// AddChild appends children in order.
func (v *Vertical) AddChild(children ...Node) *Vertical {
	v.add(children...)
	return v
}

func (v *Vertical) Kind() Kind           { return KindVertical }
func (v *Vertical) Iter() iter.Seq[Node] { return Walk(v) }
