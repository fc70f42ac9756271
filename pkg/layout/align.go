package layout

import (
	"fmt"
	"strings"
)

// AxisAlignment describes how a container arranges its children along an axis.
// Alignment only moves children; it never changes their size.
type AxisAlignment uint8

const (
	AlignStart        AxisAlignment = iota // Pack at the start
	AlignCenter                            // Center the group
	AlignEnd                               // Pack at the end
	AlignSpaceBetween                      // Free space between children, none at the edges (main axis only)
	AlignSpaceEvenly                       // Equal free space between children and at the edges (main axis only)
)

var alignNames = [...]string{
	AlignStart:        "start",
	AlignCenter:       "center",
	AlignEnd:          "end",
	AlignSpaceBetween: "space-between",
	AlignSpaceEvenly:  "space-evenly",
}

func (a AxisAlignment) String() string {
	if int(a) < len(alignNames) {
		return alignNames[a]
	}
	return fmt.Sprintf("AxisAlignment(%d)", a)
}

// ParseAxisAlignment parses the names returned by [AxisAlignment.String].
// An empty string is Start.
func ParseAxisAlignment(s string) (AxisAlignment, error) {
	t := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	if t == "" {
		return AlignStart, nil
	}
	for i, name := range alignNames {
		if name == t {
			return AxisAlignment(i), nil
		}
	}
	return AlignStart, fmt.Errorf("invalid alignment %q: want start, center, end, space-between or space-evenly", s)
}

// MarshalText implements [encoding.TextMarshaler].
func (a AxisAlignment) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (a *AxisAlignment) UnmarshalText(text []byte) error {
	parsed, err := ParseAxisAlignment(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// mainOffsets returns the leading offset and the gap between consecutive
// children for a group of n children that leaves free space unused.
func (a AxisAlignment) mainOffsets(free, spacing float32, n int) (lead, gap float32) {
	free = max(free, 0)
	switch a {
	case AlignCenter:
		return free / 2, spacing
	case AlignEnd:
		return free, spacing
	case AlignSpaceBetween:
		if n > 1 {
			return 0, spacing + free/float32(n-1)
		}
		return 0, spacing
	case AlignSpaceEvenly:
		slot := free / float32(n+1)
		return slot, spacing + slot
	default:
		return 0, spacing
	}
}

// crossOffset returns where a child of the given extent starts inside a cross-axis span.
func (a AxisAlignment) crossOffset(span, extent float32) float32 {
	free := max(span-extent, 0)
	switch a {
	case AlignCenter:
		return free / 2
	case AlignEnd:
		return free
	default:
		return 0
	}
}
