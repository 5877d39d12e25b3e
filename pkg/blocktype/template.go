package blocktype

import (
	"fmt"
	"math"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/anchit2000/flowcanvas/pkg/errors"
	"github.com/anchit2000/flowcanvas/pkg/flow"
	"github.com/anchit2000/flowcanvas/pkg/geom"
	"github.com/anchit2000/flowcanvas/pkg/visual"
)

// Default block geometry, in surface units.
const (
	DefaultWidth  = 180
	DefaultHeight = 60
	ConnectorSize = 12
)

// Kind is the value kind of a template field.
type Kind string

// Field kinds.
const (
	KindText   Kind = "text"
	KindNumber Kind = "number"
	KindBool   Kind = "bool"
	KindChoice Kind = "choice"
)

// Field is one form field of a block.
type Field struct {
	Name    string   `toml:"name"`
	Kind    Kind     `toml:"kind"`
	Label   string   `toml:"label"`
	Default any      `toml:"default"`
	Options []string `toml:"options"`
}

// Template describes how blocks of one type are rendered.
type Template struct {
	Type   string      `toml:"type"`
	Label  string      `toml:"label"`
	Width  float64     `toml:"width"`
	Height float64     `toml:"height"`
	Ports  []geom.Port `toml:"ports"`
	Fields []Field     `toml:"fields"`
}

// ParseTemplate decodes and validates a TOML descriptor. Missing sizes
// default to 180×60, missing ports to one input and one output, and field
// defaults are coerced to their kind.
func ParseTemplate(data []byte) (*Template, error) {
	var t Template
	if _, err := toml.Decode(string(data), &t); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTemplate, err, "cannot parse template")
	}
	if err := errors.ValidateBlockType(t.Type); err != nil {
		return nil, err
	}
	if t.Label == "" {
		t.Label = t.Type
	}
	if t.Width <= 0 {
		t.Width = DefaultWidth
	}
	if t.Height <= 0 {
		t.Height = DefaultHeight
	}
	if t.Ports == nil {
		t.Ports = []geom.Port{geom.PortIn, geom.PortOut}
	}
	for _, p := range t.Ports {
		if p != geom.PortIn && p != geom.PortOut {
			return nil, errors.New(errors.ErrCodeInvalidTemplate, "template %q: unknown port %q", t.Type, p)
		}
	}

	seen := make(map[string]bool, len(t.Fields))
	for i := range t.Fields {
		f := &t.Fields[i]
		if f.Name == "" || seen[f.Name] {
			return nil, errors.New(errors.ErrCodeInvalidTemplate,
				"template %q: field %d has an empty or duplicate name", t.Type, i)
		}
		seen[f.Name] = true
		if f.Kind == "" {
			f.Kind = KindText
		}
		if f.Default == nil {
			f.Default = f.Kind.zero(f.Options)
		}
		v, err := f.coerce(f.Default)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidTemplate, err,
				"template %q: field %q default", t.Type, f.Name)
		}
		f.Default = v
	}
	return &t, nil
}

// Defaults returns a fresh data payload holding every field's default.
func (t *Template) Defaults() flow.Data {
	d := make(flow.Data, len(t.Fields))
	for _, f := range t.Fields {
		d[f.Name] = f.Default
	}
	return d
}

// Field returns the field called name.
func (t *Template) Field(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// PortSpecs places the template's connectors: the input on the centre of
// the left edge, the output on the centre of the right edge.
func (t *Template) PortSpecs() []visual.PortSpec {
	specs := make([]visual.PortSpec, 0, len(t.Ports))
	y := t.Height/2 - ConnectorSize/2
	for _, p := range t.Ports {
		x := -ConnectorSize / 2.0
		if p == geom.PortOut {
			x = t.Width - ConnectorSize/2.0
		}
		specs = append(specs, visual.PortSpec{Port: p, Rel: geom.Point{X: x, Y: y}, Size: ConnectorSize})
	}
	return specs
}

// NewElement renders a block of this type at pos. The element's fields are
// empty; callers fill them through an [Adapter].
func (t *Template) NewElement(blockID string, pos geom.Point) *visual.Element {
	return &visual.Element{
		BlockID: blockID,
		Type:    t.Type,
		Label:   t.Label,
		Bounds:  geom.RectAt(pos.X, pos.Y, t.Width, t.Height),
		Ports:   t.PortSpecs(),
		Fields:  make(map[string]any, len(t.Fields)),
	}
}

func (k Kind) zero(options []string) any {
	switch k {
	case KindNumber:
		return 0.0
	case KindBool:
		return false
	case KindChoice:
		if len(options) > 0 {
			return options[0]
		}
	}
	return ""
}

// coerce converts v to the field's kind. Numbers from TOML (int64) and JSON
// (float64) both become float64.
func (f Field) coerce(v any) (any, error) {
	switch f.Kind {
	case KindText:
		switch t := v.(type) {
		case string:
			return t, nil
		case nil:
			return "", nil
		default:
			return fmt.Sprint(t), nil
		}
	case KindNumber:
		var n float64
		switch t := v.(type) {
		case float64:
			n = t
		case float32:
			n = float64(t)
		case int:
			n = float64(t)
		case int64:
			n = float64(t)
		case string:
			parsed, err := strconv.ParseFloat(t, 64)
			if err != nil {
				return nil, fmt.Errorf("field %q: %q is not a number", f.Name, t)
			}
			n = parsed
		default:
			return nil, fmt.Errorf("field %q: cannot use %T as a number", f.Name, v)
		}
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, fmt.Errorf("field %q: number is not finite", f.Name)
		}
		return n, nil
	case KindBool:
		switch t := v.(type) {
		case bool:
			return t, nil
		case string:
			b, err := strconv.ParseBool(t)
			if err != nil {
				return nil, fmt.Errorf("field %q: %q is not a boolean", f.Name, t)
			}
			return b, nil
		default:
			return nil, fmt.Errorf("field %q: cannot use %T as a boolean", f.Name, v)
		}
	case KindChoice:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("field %q: cannot use %T as a choice", f.Name, v)
		}
		if len(f.Options) > 0 && !contains(f.Options, s) {
			return nil, fmt.Errorf("field %q: %q is not one of %v", f.Name, s, f.Options)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("field %q: unknown kind %q", f.Name, f.Kind)
	}
}

func contains(options []string, s string) bool {
	for _, o := range options {
		if o == s {
			return true
		}
	}
	return false
}
