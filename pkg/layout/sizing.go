package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Size is a width and height pair.
type Size struct {
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
}

// Position is a top-left coordinate in the root's coordinate space.
type Position struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// SizingKind identifies a [BoxSizing] policy.
type SizingKind uint8

const (
	SizingShrink SizingKind = iota // Smallest size that contains the content
	SizingFixed                    // Exactly Value
	SizingFlex                     // Share of the parent's free space
)

// BoxSizing describes the size a node tries to be along one axis.
// The zero value is [Shrink].
type BoxSizing struct {
	Kind   SizingKind
	Value  float32 // used by SizingFixed
	Factor uint8   // used by SizingFlex
}

// Fixed returns a policy that sizes a node to exactly v.
func Fixed(v float32) BoxSizing {
	return BoxSizing{Kind: SizingFixed, Value: v}
}

// Shrink returns a policy that sizes a node to its content.
func Shrink() BoxSizing {
	return BoxSizing{Kind: SizingShrink}
}

// Flex returns a policy that claims a share of the parent's free space.
// The factor only has meaning relative to sibling factors on the same axis.
func Flex(factor uint8) BoxSizing {
	return BoxSizing{Kind: SizingFlex, Factor: factor}
}

// IsFixed reports whether b is a fixed policy.
func (b BoxSizing) IsFixed() bool { return b.Kind == SizingFixed }

// IsFlex reports whether b is a flex policy.
func (b BoxSizing) IsFlex() bool { return b.Kind == SizingFlex }

// IsShrink reports whether b is a shrink policy.
func (b BoxSizing) IsShrink() bool { return b.Kind == SizingShrink }

// resolve applies the three-way switch shared by every variant:
// fixed nodes take their value, flex nodes their max and shrink nodes their min.
func (b BoxSizing) resolve(lo, hi float32) float32 {
	switch b.Kind {
	case SizingFixed:
		return b.Value
	case SizingFlex:
		return hi
	default:
		return lo
	}
}

// Validate reports an error if b cannot be solved.
func (b BoxSizing) Validate() error {
	switch b.Kind {
	case SizingFixed:
		v := float64(b.Value)
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("fixed size must be a finite non-negative number, got %v", b.Value)
		}
	case SizingShrink, SizingFlex:
	default:
		return fmt.Errorf("unknown sizing kind %d", b.Kind)
	}
	return nil
}

// String returns the textual form accepted by [ParseBoxSizing].
func (b BoxSizing) String() string {
	switch b.Kind {
	case SizingFixed:
		return "fixed(" + strconv.FormatFloat(float64(b.Value), 'f', -1, 32) + ")"
	case SizingFlex:
		return "flex(" + strconv.Itoa(int(b.Factor)) + ")"
	default:
		return "shrink"
	}
}

// ParseBoxSizing parses "shrink", "flex", "flex(N)", "fixed(V)" or a bare number V.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseBoxSizing(s string) (BoxSizing, error) {
	t := strings.ToLower(strings.TrimSpace(s))
	switch {
	case t == "" || t == "shrink":
		return Shrink(), nil
	case t == "flex":
		return Flex(1), nil
	case strings.HasPrefix(t, "flex(") && strings.HasSuffix(t, ")"):
		arg := strings.TrimSpace(t[len("flex(") : len(t)-1])
		n, err := strconv.ParseUint(arg, 10, 8)
		if err != nil {
			return BoxSizing{}, fmt.Errorf("invalid flex factor %q: must be an integer in 0..255", arg)
		}
		return Flex(uint8(n)), nil
	case strings.HasPrefix(t, "fixed(") && strings.HasSuffix(t, ")"):
		t = strings.TrimSpace(t[len("fixed(") : len(t)-1])
	}

	v, err := strconv.ParseFloat(t, 32)
	if err != nil {
		return BoxSizing{}, fmt.Errorf("invalid sizing %q: want shrink, flex, flex(N), fixed(V) or a number", s)
	}
	b := Fixed(float32(v))
	if err := b.Validate(); err != nil {
		return BoxSizing{}, err
	}
	return b, nil
}

// MarshalText implements [encoding.TextMarshaler].
func (b BoxSizing) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (b *BoxSizing) UnmarshalText(text []byte) error {
	parsed, err := ParseBoxSizing(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// IntrinsicSize is a node's declared sizing policy, one per axis.
type IntrinsicSize struct {
	Width  BoxSizing
	Height BoxSizing
}

// BoxConstraints are the min/max bounds written onto a node while solving.
type BoxConstraints struct {
	MinWidth  float32
	MinHeight float32
	MaxWidth  float32
	MaxHeight float32
}

// Normalize raises each max to at least its min. A shrink node whose
// content is larger than the space it was offered keeps its content size;
// the conflict is reported by the diagnostics pass instead.
func (c BoxConstraints) Normalize() BoxConstraints {
	c.MaxWidth = max(c.MaxWidth, c.MinWidth)
	c.MaxHeight = max(c.MaxHeight, c.MinHeight)
	return c
}

// sanitize maps NaN and negative values to zero.
func sanitize(v float32) float32 {
	if math.IsNaN(float64(v)) || v < 0 {
		return 0
	}
	return v
}
