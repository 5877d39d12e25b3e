package visual

import (
	"testing"

	"github.com/anchit2000/flowcanvas/pkg/geom"
)

func testElement(id string, x, y float64) *Element {
	return &Element{
		BlockID: id,
		Type:    "agent",
		Bounds:  geom.RectAt(x, y, 180, 60),
		Ports: []PortSpec{
			{Port: geom.PortIn, Rel: geom.Point{X: -6, Y: 24}, Size: 12},
			{Port: geom.PortOut, Rel: geom.Point{X: 174, Y: 24}, Size: 12},
		},
	}
}

func TestHitTest(t *testing.T) {
	s := NewSurface(800, 600)
	s.AddElement(testElement("a", 100, 100))
	s.AddElement(testElement("b", 150, 120)) // overlaps a, on top

	tests := []struct {
		name string
		p    geom.Point
		want Hit
	}{
		{"Empty", geom.Point{X: 10, Y: 10}, Hit{Kind: HitNone}},
		{"BodyOfA", geom.Point{X: 110, Y: 105}, Hit{Kind: HitBlock, BlockID: "a"}},
		{"TopmostWins", geom.Point{X: 200, Y: 150}, Hit{Kind: HitBlock, BlockID: "b"}},
		{"OutConnector", geom.Point{X: 330, Y: 150}, Hit{Kind: HitConnector, BlockID: "b", Port: geom.PortOut}},
		{"InConnectorOverBody", geom.Point{X: 146, Y: 150}, Hit{Kind: HitConnector, BlockID: "b", Port: geom.PortIn}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.HitTest(tt.p); got != tt.want {
				t.Errorf("HitTest(%v) = %+v, want %+v", tt.p, got, tt.want)
			}
		})
	}
}

func TestHitTestRespectsOffset(t *testing.T) {
	s := NewSurface(800, 600)
	s.SetOffset(geom.Point{X: 50, Y: 20})
	s.AddElement(testElement("a", 0, 0))

	if got := s.HitTest(geom.Point{X: 60, Y: 30}); got.BlockID != "a" {
		t.Errorf("HitTest with offset = %+v, want block a", got)
	}
	if got := s.HitTest(geom.Point{X: 10, Y: 10}); got.Kind != HitNone {
		t.Errorf("HitTest outside = %+v, want none", got)
	}
}

func TestConnectorBoundsViewport(t *testing.T) {
	s := NewSurface(800, 600)
	s.SetOffset(geom.Point{X: 10, Y: 10})
	s.AddElement(testElement("a", 100, 100))

	r, ok := s.ConnectorBounds(geom.ConnectorRef{BlockID: "a", Port: geom.PortOut})
	if !ok {
		t.Fatal("connector not found")
	}
	if r.Min != (geom.Point{X: 284, Y: 134}) {
		t.Errorf("ConnectorBounds.Min = %v, want {284 134}", r.Min)
	}
	if _, ok := s.ConnectorBounds(geom.ConnectorRef{BlockID: "zz", Port: geom.PortOut}); ok {
		t.Error("missing element should report false")
	}
}

func TestMoveElementAndLines(t *testing.T) {
	s := NewSurface(800, 600)
	s.AddElement(testElement("a", 0, 0))
	if !s.MoveElement("a", geom.Point{X: 150, Y: 220}) {
		t.Fatal("MoveElement reported missing element")
	}
	el, _ := s.Element("a")
	if el.Position() != (geom.Point{X: 150, Y: 220}) || el.Bounds.Width() != 180 {
		t.Errorf("element bounds = %+v", el.Bounds)
	}

	id := s.AddLine(geom.Point{}, geom.Point{X: 1, Y: 1})
	s.SetLineEnd(id, geom.Point{X: 5, Y: 5})
	l, _ := s.Line(id)
	if l.To != (geom.Point{X: 5, Y: 5}) {
		t.Errorf("line end = %v", l.To)
	}
	s.RemoveLine(id)
	if len(s.Lines()) != 0 {
		t.Error("line not removed")
	}

	s.Clear()
	if len(s.Elements()) != 0 {
		t.Error("Clear left elements behind")
	}
	if next := s.AddLine(geom.Point{}, geom.Point{}); next == id {
		t.Error("line handle reused after Clear")
	}
}
