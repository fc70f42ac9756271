package layout

// axis selects which dimension of a stack is the main axis.
type axis uint8

const (
	axisX axis = iota // main axis is x (Horizontal)
	axisY             // main axis is y (Vertical)
)

func (a axis) main(s Size) float32 {
	if a == axisX {
		return s.Width
	}
	return s.Height
}

func (a axis) cross(s Size) float32 {
	if a == axisX {
		return s.Height
	}
	return s.Width
}

func (a axis) mainSizing(is IntrinsicSize) BoxSizing {
	if a == axisX {
		return is.Width
	}
	return is.Height
}

func (a axis) crossSizing(is IntrinsicSize) BoxSizing {
	if a == axisX {
		return is.Height
	}
	return is.Width
}

func (a axis) size(main, cross float32) Size {
	if a == axisX {
		return Size{Width: main, Height: cross}
	}
	return Size{Width: cross, Height: main}
}

func (a axis) point(main, cross float32) Position {
	if a == axisX {
		return Position{X: main, Y: cross}
	}
	return Position{X: cross, Y: main}
}

func (a axis) mainPos(p Position) float32 {
	if a == axisX {
		return p.X
	}
	return p.Y
}

func (a axis) crossPos(p Position) float32 {
	if a == axisX {
		return p.Y
	}
	return p.X
}

// stack is the algorithm shared by Horizontal and Vertical. The main axis is
// partitioned among children by sizing class: fixed children take their
// size, shrink children their minimum, and flex children split what is left
// in proportion to their factor. On the cross axis every non-fixed child is
// offered the full inner cross size.
type stack struct {
	box
	axis axis

	Spacing            float32       // gap between consecutive children
	Padding            float32       // inset on all four sides
	MainAxisAlignment  AxisAlignment // placement of the group along the main axis
	CrossAxisAlignment AxisAlignment // placement of each child on the cross axis

	children []Node
}

func (s *stack) Children() []Node { return s.children }

func (s *stack) add(children ...Node) {
	for _, c := range children {
		if !isNil(c) {
			s.children = append(s.children, c)
		}
	}
}

// gaps is the total spacing between consecutive children.
func (s *stack) gaps() float32 {
	if len(s.children) < 2 {
		return 0
	}
	return s.Spacing * float32(len(s.children)-1)
}

func (s *stack) solveMinConstraints() (float32, float32) {
	var mainSum, crossMax float32
	for _, child := range s.children {
		w, h := child.solveMinConstraints()
		childMin := Size{Width: w, Height: h}
		mainSum += s.axis.main(childMin)
		crossMax = max(crossMax, s.axis.cross(childMin))
	}
	content := s.axis.size(mainSum+s.gaps()+2*s.Padding, crossMax+2*s.Padding)
	return s.setMin(content)
}

func (s *stack) solveMaxConstraints(Size) {
	s.constraints = s.constraints.Normalize()
	if len(s.children) == 0 {
		return
	}

	inner := shrinkBy(s.resolved(), s.Padding)
	innerMain, innerCross := s.axis.main(inner), s.axis.cross(inner)

	// Space left for flex children once fixed and shrink siblings are placed.
	remaining := innerMain - s.gaps()
	var total uint32
	for _, child := range s.children {
		ms := s.axis.mainSizing(child.IntrinsicSize())
		switch ms.Kind {
		case SizingFixed:
			remaining -= ms.Value
		case SizingFlex:
			total += uint32(ms.Factor)
		default:
			remaining -= s.axis.main(minSize(child))
		}
	}
	remaining = max(remaining, 0)

	for _, child := range s.children {
		is := child.IntrinsicSize()
		ms := s.axis.mainSizing(is)

		var childMain float32
		switch ms.Kind {
		case SizingFixed:
			childMain = ms.Value
		case SizingFlex:
			// A group whose factors sum to zero does not grow.
			if total > 0 {
				childMain = float32(ms.Factor) / float32(total) * remaining
			}
		default:
			childMain = s.axis.main(minSize(child))
		}
		childCross := offered(s.axis.crossSizing(is), innerCross)

		space := s.axis.size(childMain, childCross)
		child.SetMaxWidth(space.Width)
		child.SetMaxHeight(space.Height)
		child.solveMaxConstraints(space)
	}
}

func (s *stack) updateSize() {
	s.updateOwnSize()
	for _, child := range s.children {
		child.updateSize()
	}
}

// used is the main-axis extent of the children and the spacing between them.
func (s *stack) used() float32 {
	sum := s.gaps()
	for _, child := range s.children {
		sum += s.axis.main(child.Size())
	}
	return sum
}

func (s *stack) positionChildren() {
	if len(s.children) == 0 {
		return
	}
	inner := shrinkBy(s.size, s.Padding)
	innerCross := s.axis.cross(inner)

	lead, gap := s.MainAxisAlignment.mainOffsets(s.axis.main(inner)-s.used(), s.Spacing, len(s.children))
	cursor := s.axis.mainPos(s.position) + s.Padding + lead
	crossStart := s.axis.crossPos(s.position) + s.Padding

	for _, child := range s.children {
		size := child.Size()
		offset := s.CrossAxisAlignment.crossOffset(innerCross, s.axis.cross(size))
		child.SetPosition(s.axis.point(cursor, crossStart+offset))
		cursor += s.axis.main(size) + gap
		child.positionChildren()
	}
}

func (s *stack) collectErrors() []LayoutError {
	var errs []LayoutError
	if len(s.children) > 0 && s.used()+2*s.Padding > s.axis.main(s.size)+epsilon {
		errs = append(errs, &OverflowError{ID: s.id})
	}
	return s.childErrors(errs, s.children)
}

func minSize(n Node) Size {
	c := n.Constraints()
	return Size{Width: c.MinWidth, Height: c.MinHeight}
}
