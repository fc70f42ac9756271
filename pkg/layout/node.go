package layout

import (
	"fmt"
	"iter"
	"reflect"
	"strings"
)

// Kind identifies a node variant.
type Kind uint8

const (
	KindEmpty      Kind = iota // Leaf with no children
	KindBlock                  // At most one child, padding only
	KindHorizontal             // Children laid out left to right
	KindVertical               // Children laid out top to bottom
)

var kindNames = [...]string{
	KindEmpty:      "empty",
	KindBlock:      "block",
	KindHorizontal: "horizontal",
	KindVertical:   "vertical",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// ParseKind parses a variant name as returned by [Kind.String].
// "hstack" and "vstack" are accepted as aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "empty", "":
		return KindEmpty, nil
	case "block":
		return KindBlock, nil
	case "horizontal", "hstack", "row":
		return KindHorizontal, nil
	case "vertical", "vstack", "column":
		return KindVertical, nil
	}
	return KindEmpty, fmt.Errorf("unknown node kind %q: want empty, block, horizontal or vertical", s)
}

// Node is a layout node. The set of implementations is closed:
// [*Empty], [*Block], [*Horizontal] and [*Vertical].
//
// Geometry accessors are meaningful after [Solve] has run. Node ids are
// assigned by whoever builds the tree; the solver does not enforce uniqueness.
type Node interface {
	ID() string
	Kind() Kind
	Size() Size
	Position() Position
	Constraints() BoxConstraints
	IntrinsicSize() IntrinsicSize

	// Children returns the node's children in declared order. The slice
	// must not be modified.
	Children() []Node

	// Iter yields the node and its descendants in pre-order.
	Iter() iter.Seq[Node]

	SetPosition(Position)
	SetX(x float32)
	SetY(y float32)
	SetMinWidth(w float32)
	SetMinHeight(h float32)
	SetMaxWidth(w float32)
	SetMaxHeight(h float32)

	// Solver passes, called only by Solve in this order.
	solveMinConstraints() (width, height float32)
	solveMaxConstraints(space Size)
	updateSize()
	positionChildren()
	collectErrors() []LayoutError
}

// box holds the state common to every variant.
type box struct {
	id          string
	intrinsic   IntrinsicSize
	constraints BoxConstraints
	size        Size
	position    Position
}

func (b *box) ID() string                       { return b.id }
func (b *box) Size() Size                       { return b.size }
func (b *box) Position() Position               { return b.position }
func (b *box) Constraints() BoxConstraints      { return b.constraints }
func (b *box) IntrinsicSize() IntrinsicSize     { return b.intrinsic }
func (b *box) SetPosition(p Position)           { b.position = p }
func (b *box) SetX(x float32)                   { b.position.X = x }
func (b *box) SetY(y float32)                   { b.position.Y = y }
func (b *box) SetMinWidth(w float32)            { b.constraints.MinWidth = w }
func (b *box) SetMinHeight(h float32)           { b.constraints.MinHeight = h }
func (b *box) SetMaxWidth(w float32)            { b.constraints.MaxWidth = w }
func (b *box) SetMaxHeight(h float32)           { b.constraints.MaxHeight = h }
func (b *box) SetIntrinsicSize(s IntrinsicSize) { b.intrinsic = s }

// setMin records the node's minimum size given the size its content needs.
// Fixed axes use their value, flex axes defer (0) and shrink axes take the content.
func (b *box) setMin(content Size) (float32, float32) {
	b.constraints.MinWidth = minFor(b.intrinsic.Width, content.Width)
	b.constraints.MinHeight = minFor(b.intrinsic.Height, content.Height)
	return b.constraints.MinWidth, b.constraints.MinHeight
}

func minFor(s BoxSizing, content float32) float32 {
	switch s.Kind {
	case SizingFixed:
		return s.Value
	case SizingFlex:
		return 0
	default:
		return content
	}
}

// resolved is the size the node will end up with given its current constraints.
func (b *box) resolved() Size {
	return Size{
		Width:  b.intrinsic.Width.resolve(b.constraints.MinWidth, b.constraints.MaxWidth),
		Height: b.intrinsic.Height.resolve(b.constraints.MinHeight, b.constraints.MaxHeight),
	}
}

func (b *box) updateOwnSize() {
	b.size = b.resolved()
}

// contains reports whether child lies inside b, allowing for float error.
func (b *box) contains(child Node) bool {
	p, s := child.Position(), child.Size()
	return p.X >= b.position.X-epsilon &&
		p.Y >= b.position.Y-epsilon &&
		p.X+s.Width <= b.position.X+b.size.Width+epsilon &&
		p.Y+s.Height <= b.position.Y+b.size.Height+epsilon
}

// childErrors checks each child against b and appends the child's own diagnostics.
func (b *box) childErrors(errs []LayoutError, children []Node) []LayoutError {
	for _, child := range children {
		if !b.contains(child) {
			errs = append(errs, &OutOfBoundsError{ParentID: b.id, ChildID: child.ID()})
		}
		errs = append(errs, child.collectErrors()...)
	}
	return errs
}

const epsilon = 1e-3

// Walk returns an iterator over root and its descendants in pre-order,
// children in declared order. It is safe to stop early.
func Walk(root Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		if root == nil {
			return
		}
		stack := []Node{root}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(n) {
				return
			}
			children := n.Children()
			for i := len(children) - 1; i >= 0; i-- {
				stack = append(stack, children[i])
			}
		}
	}
}

// Find returns the first node in pre-order whose id is id.
func Find(root Node, id string) (Node, bool) {
	for n := range Walk(root) {
		if n.ID() == id {
			return n, true
		}
	}
	return nil, false
}

// Count returns the number of nodes reachable from root.
func Count(root Node) int {
	n := 0
	for range Walk(root) {
		n++
	}
	return n
}

// isNil reports whether n is nil or a nil pointer wrapped in the interface.
func isNil(n Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
