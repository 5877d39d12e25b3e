package geom

// Port polarity of a connector.
type Port string

// Connector polarities.
const (
	PortOut Port = "out"
	PortIn  Port = "in"
)

// ConnectorRef identifies a connector by the block it belongs to and its
// polarity. It never refers to a rendered element directly.
type ConnectorRef struct {
	BlockID string
	Port    Port
}

// Layout reports the current rendered geometry. Bounds are in viewport
// coordinates.
type Layout interface {
	// ConnectorBounds returns the rendered bounding box of a connector, or
	// false if the connector is not currently rendered.
	ConnectorBounds(ref ConnectorRef) (Rect, bool)
	// SurfaceBounds returns the rendered bounding box of the drawing surface.
	SurfaceBounds() Rect
}

// Service computes connector anchors from a live [Layout].
type Service struct {
	layout Layout
}

// NewService creates a geometry service reading from layout.
func NewService(layout Layout) *Service {
	return &Service{layout: layout}
}

// AnchorOf returns the centre of the referenced connector in surface-local
// coordinates. It returns false when the connector is not rendered; callers
// treat that as "skip this update".
func (s *Service) AnchorOf(ref ConnectorRef) (Point, bool) {
	box, ok := s.layout.ConnectorBounds(ref)
	if !ok {
		return Point{}, false
	}
	return Anchor(box, s.layout.SurfaceBounds()), true
}

// ToLocal converts a viewport point into surface-local coordinates.
func (s *Service) ToLocal(p Point) Point {
	return p.Sub(s.layout.SurfaceBounds().Min)
}
