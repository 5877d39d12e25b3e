package blocktype

import (
	"testing"

	"github.com/anchit2000/flowcanvas/pkg/errors"
	"github.com/anchit2000/flowcanvas/pkg/geom"
)

func TestParseTemplateDefaults(t *testing.T) {
	tmpl, err := ParseTemplate([]byte(`
type = "note"

[[fields]]
name = "count"
kind = "number"
default = 3

[[fields]]
name = "flag"
kind = "bool"

[[fields]]
name = "mode"
kind = "choice"
options = ["a", "b"]

[[fields]]
name = "text"
`))
	if err != nil {
		t.Fatalf("ParseTemplate: %v", err)
	}

	if tmpl.Label != "note" || tmpl.Width != DefaultWidth || tmpl.Height != DefaultHeight {
		t.Errorf("label/size = %q %vx%v", tmpl.Label, tmpl.Width, tmpl.Height)
	}
	if len(tmpl.Ports) != 2 {
		t.Errorf("Ports = %v, want in and out", tmpl.Ports)
	}

	want := map[string]any{"count": 3.0, "flag": false, "mode": "a", "text": ""}
	got := tmpl.Defaults()
	for k, v := range want {
		if got[k] != v {
			t.Errorf("Defaults()[%q] = %#v, want %#v", k, got[k], v)
		}
	}
}

func TestParseTemplateErrors(t *testing.T) {
	tests := []struct {
		name string
		desc string
		code errors.Code
	}{
		{"Syntax", `type = `, errors.ErrCodeInvalidTemplate},
		{"MissingType", `label = "x"`, errors.ErrCodeInvalidBlockType},
		{"BadType", `type = "Bad Type"`, errors.ErrCodeInvalidBlockType},
		{"BadPort", "type = \"x\"\nports = [\"side\"]", errors.ErrCodeInvalidTemplate},
		{"DuplicateField", "type = \"x\"\n[[fields]]\nname = \"a\"\n[[fields]]\nname = \"a\"", errors.ErrCodeInvalidTemplate},
		{"BadDefault", "type = \"x\"\n[[fields]]\nname = \"n\"\nkind = \"number\"\ndefault = \"many\"", errors.ErrCodeInvalidTemplate},
		{"ChoiceOutsideOptions", "type = \"x\"\n[[fields]]\nname = \"c\"\nkind = \"choice\"\noptions = [\"a\"]\ndefault = \"z\"", errors.ErrCodeInvalidTemplate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTemplate([]byte(tt.desc))
			if !errors.Is(err, tt.code) {
				t.Errorf("ParseTemplate() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestNewElementPlacesConnectors(t *testing.T) {
	tmpl := &Template{Type: "agent", Width: 180, Height: 60, Ports: []geom.Port{geom.PortIn, geom.PortOut}}
	el := tmpl.NewElement("b1", geom.Point{X: 100, Y: 100})

	if el.Bounds != geom.RectAt(100, 100, 180, 60) {
		t.Errorf("Bounds = %v", el.Bounds)
	}

	in, ok := el.ConnectorBounds(geom.PortIn)
	if !ok || in.Center() != (geom.Point{X: 100, Y: 130}) {
		t.Errorf("in connector centre = %v, want {100 130}", in.Center())
	}
	out, ok := el.ConnectorBounds(geom.PortOut)
	if !ok || out.Center() != (geom.Point{X: 280, Y: 130}) {
		t.Errorf("out connector centre = %v, want {280 130}", out.Center())
	}
}

func TestBuiltinTemplatesParse(t *testing.T) {
	for _, typ := range []string{"agent", "calculator", "url", "chat-input", "chat-output", "markdown"} {
		t.Run(typ, func(t *testing.T) {
			data, err := EmbeddedSource{}.Fetch(t.Context(), typ)
			if err != nil {
				t.Fatalf("Fetch: %v", err)
			}
			tmpl, err := ParseTemplate(data)
			if err != nil {
				t.Fatalf("ParseTemplate: %v", err)
			}
			if tmpl.Type != typ || tmpl.Width != 180 || tmpl.Height != 60 {
				t.Errorf("template = %s %vx%v", tmpl.Type, tmpl.Width, tmpl.Height)
			}
		})
	}
}
