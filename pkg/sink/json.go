package sink

import (
	"encoding/json"

	"github.com/matzehuels/crystal/pkg/layout"
	"github.com/matzehuels/crystal/pkg/surface"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	source  string
	compact bool
}

// WithJSONSource records the document the frame was solved from.
func WithJSONSource(path string) JSONOption { return func(r *jsonRenderer) { r.source = path } }

// WithJSONCompact disables indentation.
func WithJSONCompact() JSONOption { return func(r *jsonRenderer) { r.compact = true } }

// JSONOutput is the document written by [RenderJSON].
type JSONOutput struct {
	Source   string            `json:"source,omitempty"`
	Viewport layout.Size       `json:"viewport"`
	Nodes    []Node            `json:"nodes"`
	Surfaces []surface.Surface `json:"surfaces,omitempty"`
	Errors   []JSONError       `json:"errors"`
}

// JSONError is a layout diagnostic in JSON form.
type JSONError struct {
	Kind    string `json:"kind"` // "overflow" or "out_of_bounds"
	ID      string `json:"id,omitempty"`
	Parent  string `json:"parent,omitempty"`
	Child   string `json:"child,omitempty"`
	Message string `json:"message"`
}

// NewJSONErrors converts diagnostics to their JSON form, keeping order.
func NewJSONErrors(errs []layout.LayoutError) []JSONError {
	out := make([]JSONError, 0, len(errs))
	for _, err := range errs {
		je := JSONError{Message: err.Error()}
		switch e := err.(type) {
		case *layout.OverflowError:
			je.Kind, je.ID = "overflow", e.ID
		case *layout.OutOfBoundsError:
			je.Kind, je.Parent, je.Child = "out_of_bounds", e.ParentID, e.ChildID
		}
		out = append(out, je)
	}
	return out
}

// RenderJSON exports the frame's geometry and diagnostics. Nodes are listed
// in pre-order and errors in the order the solver reported them, so equal
// frames encode to equal bytes.
func RenderJSON(f Frame, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := JSONOutput{
		Source:   r.source,
		Viewport: f.Viewport,
		Nodes:    f.Nodes,
		Surfaces: f.Surfaces,
		Errors:   NewJSONErrors(f.Errors),
	}
	if out.Nodes == nil {
		out.Nodes = []Node{}
	}

	if r.compact {
		return json.Marshal(out)
	}
	return json.MarshalIndent(out, "", "  ")
}
