package geom

import "testing"

type fakeLayout struct {
	surface    Rect
	connectors map[ConnectorRef]Rect
}

func (f *fakeLayout) ConnectorBounds(ref ConnectorRef) (Rect, bool) {
	r, ok := f.connectors[ref]
	return r, ok
}

func (f *fakeLayout) SurfaceBounds() Rect { return f.surface }

func TestAnchor(t *testing.T) {
	tests := []struct {
		name      string
		connector Rect
		surface   Rect
		want      Point
	}{
		{"Origin", RectAt(0, 0, 10, 10), RectAt(0, 0, 800, 600), Point{5, 5}},
		{"OffsetSurface", RectAt(110, 60, 10, 10), RectAt(100, 50, 800, 600), Point{15, 15}},
		{"NegativeOffset", RectAt(-5, -5, 10, 4), RectAt(-20, -10, 800, 600), Point{20, 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Anchor(tt.connector, tt.surface); got != tt.want {
				t.Errorf("Anchor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestServiceAnchorOfRecomputes(t *testing.T) {
	ref := ConnectorRef{BlockID: "a", Port: PortOut}
	layout := &fakeLayout{
		surface:    RectAt(10, 10, 500, 500),
		connectors: map[ConnectorRef]Rect{ref: RectAt(20, 20, 10, 10)},
	}
	svc := NewService(layout)

	got, ok := svc.AnchorOf(ref)
	if !ok || got != (Point{15, 15}) {
		t.Fatalf("AnchorOf = %v, %v; want {15 15}, true", got, ok)
	}

	// Scrolling moves both the surface and the connector; the local anchor
	// must stay put.
	layout.surface = layout.surface.Translate(Point{0, -40})
	layout.connectors[ref] = layout.connectors[ref].Translate(Point{0, -40})
	got, _ = svc.AnchorOf(ref)
	if got != (Point{15, 15}) {
		t.Errorf("after scroll AnchorOf = %v, want {15 15}", got)
	}

	layout.connectors[ref] = RectAt(60, 20, 10, 10)
	got, _ = svc.AnchorOf(ref)
	if got != (Point{55, 55}) {
		t.Errorf("after move AnchorOf = %v, want {55 55}", got)
	}
}

func TestServiceAnchorOfMissing(t *testing.T) {
	svc := NewService(&fakeLayout{surface: RectAt(0, 0, 10, 10)})
	if _, ok := svc.AnchorOf(ConnectorRef{BlockID: "nope", Port: PortIn}); ok {
		t.Error("AnchorOf should report false for an unrendered connector")
	}
}

func TestRectContains(t *testing.T) {
	r := RectAt(0, 0, 10, 10)
	if !r.Contains(Point{0, 0}) {
		t.Error("top-left corner should be inside")
	}
	if r.Contains(Point{10, 5}) {
		t.Error("right edge should be outside")
	}
	if !RectAt(0, 0, 0, 5).Empty() {
		t.Error("zero-width rect should be empty")
	}
}
