package layout

import "iter"

// Block is a container with a single optional child surrounded by padding.
// The child is placed at the block's position offset by the padding; it is
// never centered.
type Block struct {
	box
	Padding float32

	child Node
}

// NewBlock returns a block wrapping child. child may be nil.
func NewBlock(id string, size IntrinsicSize, child Node) *Block {
	b := &Block{box: box{id: id, intrinsic: size}}
	return b.SetChild(child)
}

// SetChild replaces the block's child. A nil child, typed or not, empties
// the slot.
func (b *Block) SetChild(child Node) *Block {
	if isNil(child) {
		child = nil
	}
	b.child = child
	return b
}

// Child returns the block's child, or nil.
func (b *Block) Child() Node { return b.child }

func (b *Block) Kind() Kind           { return KindBlock }
func (b *Block) Iter() iter.Seq[Node] { return Walk(b) }

func (b *Block) Children() []Node {
	if b.child == nil {
		return nil
	}
	return []Node{b.child}
}

func (b *Block) solveMinConstraints() (float32, float32) {
	var content Size
	if b.child != nil {
		content.Width, content.Height = b.child.solveMinConstraints()
	}
	content.Width += 2 * b.Padding
	content.Height += 2 * b.Padding
	return b.setMin(content)
}

func (b *Block) solveMaxConstraints(Size) {
	b.constraints = b.constraints.Normalize()
	if b.child == nil {
		return
	}

	inner := shrinkBy(b.resolved(), b.Padding)
	is := b.child.IntrinsicSize()
	space := Size{
		Width:  offered(is.Width, inner.Width),
		Height: offered(is.Height, inner.Height),
	}
	b.child.SetMaxWidth(space.Width)
	b.child.SetMaxHeight(space.Height)
	b.child.solveMaxConstraints(space)
}

func (b *Block) updateSize() {
	b.updateOwnSize()
	if b.child != nil {
		b.child.updateSize()
	}
}

func (b *Block) positionChildren() {
	if b.child == nil {
		return
	}
	b.child.SetPosition(Position{X: b.position.X + b.Padding, Y: b.position.Y + b.Padding})
	b.child.positionChildren()
}

func (b *Block) collectErrors() []LayoutError {
	return b.childErrors(nil, b.Children())
}

// offered is the max a parent hands a child along an axis where the child
// may fill the parent: fixed children get exactly their size.
func offered(s BoxSizing, avail float32) float32 {
	if s.IsFixed() {
		return s.Value
	}
	return avail
}

// shrinkBy removes padding from both sides of each axis.
func shrinkBy(s Size, padding float32) Size {
	return Size{
		Width:  sanitize(s.Width - 2*padding),
		Height: sanitize(s.Height - 2*padding),
	}
}
