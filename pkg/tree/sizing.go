package tree

import (
	"bytes"
	"encoding/json"

	"github.com/matzehuels/crystal/pkg/errors"
	"github.com/matzehuels/crystal/pkg/layout"
)

// Sizing is a [layout.BoxSizing] as written in documents. It decodes from
// the textual forms accepted by [layout.ParseBoxSizing] or from a bare
// number, which means a fixed size.
type Sizing layout.BoxSizing

// BoxSizing returns s as a solver policy.
func (s Sizing) BoxSizing() layout.BoxSizing { return layout.BoxSizing(s) }

func (s Sizing) String() string { return layout.BoxSizing(s).String() }

// MarshalText implements [encoding.TextMarshaler].
func (s Sizing) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (s *Sizing) UnmarshalText(text []byte) error {
	b, err := layout.ParseBoxSizing(string(text))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSizing, err, "invalid sizing")
	}
	*s = Sizing(b)
	return nil
}

// UnmarshalTOML implements [toml.Unmarshaler]. TOML distinguishes integers,
// floats and strings, so each is handled on its own.
//
// [toml.Unmarshaler]: https://pkg.go.dev/github.com/BurntSushi/toml#Unmarshaler
func (s *Sizing) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case string:
		return s.UnmarshalText([]byte(v))
	case int64:
		return s.setFixed(float64(v))
	case float64:
		return s.setFixed(v)
	default:
		return errors.New(errors.ErrCodeInvalidSizing, "invalid sizing %v: want a string or a number", v)
	}
}

// UnmarshalJSON implements [json.Unmarshaler].
func (s *Sizing) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*s = Sizing{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		return s.UnmarshalText([]byte(text))
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New(errors.ErrCodeInvalidSizing, "invalid sizing %s: want a string or a number", data)
	}
	return s.setFixed(n)
}

func (s *Sizing) setFixed(v float64) error {
	b := layout.Fixed(float32(v))
	if err := b.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSizing, err, "invalid sizing %v", v)
	}
	*s = Sizing(b)
	return nil
}
