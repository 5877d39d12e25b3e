package blocktype

import (
	"github.com/anchit2000/flowcanvas/pkg/errors"
	"github.com/anchit2000/flowcanvas/pkg/flow"
	"github.com/anchit2000/flowcanvas/pkg/visual"
)

// Adapter moves a block's data payload in and out of its rendered element.
type Adapter interface {
	// ReadFromVisual returns the data currently shown by el.
	ReadFromVisual(el *visual.Element) (flow.Data, error)

	// WriteToVisual shows data in el. Keys not in data keep their value.
	WriteToVisual(el *visual.Element, data flow.Data) error
}

// Normalizer is implemented by adapters that convert user edits to the
// template's field kinds. The editor applies it to edits only; imported
// data is written as is.
type Normalizer interface {
	Normalize(data flow.Data) (flow.Data, error)
}

// FieldAdapter is the schema-driven adapter built from a template's
// fields. WriteToVisual stores values verbatim, so imported data round-trips
// exactly even when it does not match the current schema. Normalize coerces
// declared fields for user edits.
type FieldAdapter struct {
	tmpl *Template
}

// NewFieldAdapter returns the adapter for tmpl.
func NewFieldAdapter(tmpl *Template) *FieldAdapter {
	return &FieldAdapter{tmpl: tmpl}
}

// ReadFromVisual implements [Adapter]. The result does not alias el.
func (a *FieldAdapter) ReadFromVisual(el *visual.Element) (flow.Data, error) {
	return flow.Data(el.Fields).Clone(), nil
}

// WriteToVisual implements [Adapter].
func (a *FieldAdapter) WriteToVisual(el *visual.Element, data flow.Data) error {
	if el.Fields == nil {
		el.Fields = make(map[string]any, len(data))
	}
	for k, v := range data.Clone() {
		el.Fields[k] = v
	}
	return nil
}

// Normalize implements [Normalizer]. Declared fields are coerced to their
// kind; undeclared keys pass through. Nothing is returned if any declared
// field fails coercion.
func (a *FieldAdapter) Normalize(data flow.Data) (flow.Data, error) {
	out := make(flow.Data, len(data))
	for k, v := range data.Clone() {
		f, ok := a.tmpl.Field(k)
		if !ok {
			out[k] = v
			continue
		}
		cv, err := f.coerce(v)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s data", a.tmpl.Type)
		}
		out[k] = cv
	}
	return out, nil
}

var (
	_ Adapter    = (*FieldAdapter)(nil)
	_ Normalizer = (*FieldAdapter)(nil)
)
