package layout

import "fmt"

// LayoutError is a diagnostic produced by [Solve]. It is one of
// [*OutOfBoundsError] or [*OverflowError]; the set is closed.
type LayoutError interface {
	error
	layoutError()
}

// OutOfBoundsError reports a child whose resolved box extends outside its parent's box.
type OutOfBoundsError struct {
	ParentID string
	ChildID  string
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("node %q is out of its parent's (%q) bounds", e.ChildID, e.ParentID)
}

func (*OutOfBoundsError) layoutError() {}

// OverflowError reports a node whose children need more main-axis space than it has.
type OverflowError struct {
	ID string
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("children of node %q overflow", e.ID)
}

func (*OverflowError) layoutError() {}

// Dedupe returns errs without repeated diagnostics, keeping the first occurrence
// of each. Solve never deduplicates on its own; callers that solve every frame
// can use this before logging.
func Dedupe(errs []LayoutError) []LayoutError {
	if len(errs) < 2 {
		return errs
	}
	type key struct {
		overflow bool
		a, b     string
	}
	seen := make(map[key]struct{}, len(errs))
	out := make([]LayoutError, 0, len(errs))
	for _, err := range errs {
		var k key
		switch e := err.(type) {
		case *OutOfBoundsError:
			k = key{a: e.ParentID, b: e.ChildID}
		case *OverflowError:
			k = key{overflow: true, a: e.ID}
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, err)
	}
	return out
}
