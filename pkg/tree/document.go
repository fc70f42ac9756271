package tree

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/crystal/pkg/errors"
	"github.com/matzehuels/crystal/pkg/layout"
)

// Format is a document encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFromPath returns the format implied by a file extension.
func FormatFromPath(path string) (Format, error) {
	if err := errors.ValidateDocumentPath(path); err != nil {
		return "", err
	}
	return Format(strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")), nil
}

// Viewport is the size a document is meant to be solved against.
type Viewport struct {
	Width  float32 `toml:"width" json:"width"`
	Height float32 `toml:"height" json:"height"`
}

// Size returns v as solver geometry.
func (v Viewport) Size() layout.Size {
	return layout.Size{Width: v.Width, Height: v.Height}
}

// Document is a decoded tree document.
type Document struct {
	// Viewport is optional; callers fall back to their own default.
	Viewport *Viewport `toml:"viewport,omitempty" json:"viewport,omitempty"`

	// Surfaces lists the node ids that back rendering surfaces. When empty,
	// every node in the tree gets a surface.
	Surfaces []string `toml:"surfaces,omitempty" json:"surfaces,omitempty"`

	Root NodeSpec `toml:"root" json:"root"`
}

// NodeSpec declares one node and its subtree.
type NodeSpec struct {
	ID         string               `toml:"id" json:"id"`
	Kind       string               `toml:"kind,omitempty" json:"kind,omitempty"`
	Width      Sizing               `toml:"width,omitempty" json:"width"`
	Height     Sizing               `toml:"height,omitempty" json:"height"`
	Padding    float32              `toml:"padding,omitempty" json:"padding,omitempty"`
	Spacing    float32              `toml:"spacing,omitempty" json:"spacing,omitempty"`
	MainAlign  layout.AxisAlignment `toml:"main_align,omitempty" json:"main_align,omitempty"`
	CrossAlign layout.AxisAlignment `toml:"cross_align,omitempty" json:"cross_align,omitempty"`
	Children   []NodeSpec           `toml:"children,omitempty" json:"children,omitempty"`
}

// IntrinsicSize returns the node's sizing policy on both axes.
func (n *NodeSpec) IntrinsicSize() layout.IntrinsicSize {
	return layout.IntrinsicSize{Width: n.Width.BoxSizing(), Height: n.Height.BoxSizing()}
}

// Decode reads a document in the given format from r.
//
// Unknown keys are rejected so that typos such as "heigth" surface as errors
// instead of silently falling back to shrink sizing. Decode does not validate
// the tree; see [Document.Validate]. Decode does not close r.
func Decode(r io.Reader, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(&doc)
		if err != nil {
			return nil, decodeError(err, format)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, errors.New(errors.ErrCodeInvalidDocument, "unknown keys: %s", strings.Join(keys, ", "))
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, decodeError(err, format)
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported document format %q", format)
	}
	return &doc, nil
}

// decodeError keeps the code of errors raised by field decoders, such as
// invalid sizings, and marks everything else as a malformed document.
func decodeError(err error, format Format) error {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInvalidDocument
	}
	return errors.Wrap(code, err, "decode %s document", format)
}

// ReadFile reads and decodes the document at path. The format is taken from
// the file extension.
func ReadFile(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "document %s not found", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return Decode(f, format)
}

// Limits on accepted documents.
const (
	MaxDepth = 128
	MaxNodes = 1 << 14
)

// Validate reports the first problem that prevents the document from being built.
func (d *Document) Validate() error {
	if d.Viewport != nil {
		if err := errors.ValidateViewport(d.Viewport.Width, d.Viewport.Height); err != nil {
			return err
		}
	}
	count := 0
	return d.Root.validate(0, &count)
}

func (n *NodeSpec) validate(depth int, count *int) error {
	*count++
	if *count > MaxNodes {
		return errors.New(errors.ErrCodeInvalidDocument, "too many nodes (max %d)", MaxNodes)
	}
	if depth >= MaxDepth {
		return errors.New(errors.ErrCodeInvalidDocument, "node %q: tree too deep (max %d levels)", n.ID, MaxDepth)
	}
	if err := errors.ValidateNodeID(n.ID); err != nil {
		return err
	}

	kind, err := layout.ParseKind(n.Kind)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidNodeKind, err, "node %q", n.ID)
	}
	switch {
	case kind == layout.KindEmpty && len(n.Children) > 0:
		return errors.New(errors.ErrCodeInvalidDocument, "node %q: empty nodes cannot have children", n.ID)
	case kind == layout.KindBlock && len(n.Children) > 1:
		return errors.New(errors.ErrCodeInvalidDocument, "node %q: block nodes have at most one child, got %d", n.ID, len(n.Children))
	}

	for _, s := range []Sizing{n.Width, n.Height} {
		if err := s.BoxSizing().Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidSizing, err, "node %q", n.ID)
		}
	}
	if err := errors.ValidateLength("padding", n.Padding); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDocument, err, "node %q", n.ID)
	}
	if err := errors.ValidateLength("spacing", n.Spacing); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDocument, err, "node %q", n.ID)
	}

	for i := range n.Children {
		if err := n.Children[i].validate(depth+1, count); err != nil {
			return err
		}
	}
	return nil
}

// IDs returns every node id in pre-order, children in declared order.
func (d *Document) IDs() []string {
	var ids []string
	var walk func(n *NodeSpec)
	walk = func(n *NodeSpec) {
		ids = append(ids, n.ID)
		for i := range n.Children {
			walk(&n.Children[i])
		}
	}
	walk(&d.Root)
	return ids
}

// DuplicateIDs returns the ids used by more than one node, sorted.
func (d *Document) DuplicateIDs() []string {
	seen := make(map[string]int)
	for _, id := range d.IDs() {
		seen[id]++
	}
	var dups []string
	for id, n := range seen {
		if n > 1 {
			dups = append(dups, id)
		}
	}
	slices.Sort(dups)
	return dups
}

// SurfaceIDs returns the ids that should back surfaces: the declared list,
// or every node id when none is declared.
func (d *Document) SurfaceIDs() []string {
	if len(d.Surfaces) > 0 {
		return slices.Clone(d.Surfaces)
	}
	return d.IDs()
}
