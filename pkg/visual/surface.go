// Package visual is the headless render layer of the editor.
//
// A [Surface] mirrors what a browser canvas would hold: one [Element] per
// placed block, connector rectangles derived from the block's template, and
// [Line] artifacts for connections. The flow registries never point into
// this package; the editor keeps a separate handle table from connection key
// to [LineID].
//
// Element bounds are stored in surface-local coordinates. The surface itself
// sits at an offset inside the viewport (it scrolls), and everything the
// surface reports through [geom.Layout] is translated into viewport
// coordinates so that the geometry service performs the same subtraction a
// browser would.
package visual

import (
	"maps"
	"slices"

	"github.com/anchit2000/flowcanvas/pkg/geom"
)

// PortSpec places a connector inside its block. Rel is the connector's
// top-left corner relative to the block's top-left corner.
type PortSpec struct {
	Port geom.Port
	Rel  geom.Point
	Size float64
}

// Element is the rendered form of a block.
type Element struct {
	BlockID string
	Type    string
	Label   string
	Bounds  geom.Rect
	Ports   []PortSpec
	// Fields holds the form values shown inside the block. Block-type
	// adapters read and write it; the surface never interprets it.
	Fields map[string]any
}

// Position returns the top-left corner of the element.
func (e *Element) Position() geom.Point { return e.Bounds.Min }

// ConnectorBounds returns the surface-local rectangle of port p.
func (e *Element) ConnectorBounds(p geom.Port) (geom.Rect, bool) {
	for _, ps := range e.Ports {
		if ps.Port == p {
			at := e.Bounds.Min.Add(ps.Rel)
			return geom.RectAt(at.X, at.Y, ps.Size, ps.Size), true
		}
	}
	return geom.Rect{}, false
}

// LineID identifies a rendered line.
type LineID int

// Line is a rendered connection line in surface-local coordinates.
type Line struct {
	ID   LineID
	From geom.Point
	To   geom.Point
}

// HitKind classifies what lies under a pointer.
type HitKind int

const (
	HitNone HitKind = iota
	HitBlock
	HitConnector
)

// Hit is the result of [Surface.HitTest].
type Hit struct {
	Kind    HitKind
	BlockID string
	Port    geom.Port
}

// Surface is the drawing surface.
//
// The zero value is not usable; create one with [NewSurface].
type Surface struct {
	offset   geom.Point
	width    float64
	height   float64
	elements map[string]*Element
	order    []string
	lines    map[LineID]*Line
	nextLine LineID
}

// NewSurface creates an empty surface of the given size positioned at the
// viewport origin.
func NewSurface(width, height float64) *Surface {
	return &Surface{
		width:    width,
		height:   height,
		elements: make(map[string]*Element),
		lines:    make(map[LineID]*Line),
		nextLine: 1,
	}
}

// SetOffset moves the surface to offset inside the viewport.
func (s *Surface) SetOffset(offset geom.Point) { s.offset = offset }

// Offset returns the surface's position inside the viewport.
func (s *Surface) Offset() geom.Point { return s.offset }

// Resize changes the surface size.
func (s *Surface) Resize(width, height float64) {
	s.width, s.height = width, height
}

// SurfaceBounds implements [geom.Layout].
func (s *Surface) SurfaceBounds() geom.Rect {
	return geom.RectAt(s.offset.X, s.offset.Y, s.width, s.height)
}

// ConnectorBounds implements [geom.Layout]. The rectangle is reported in
// viewport coordinates.
func (s *Surface) ConnectorBounds(ref geom.ConnectorRef) (geom.Rect, bool) {
	el, ok := s.elements[ref.BlockID]
	if !ok {
		return geom.Rect{}, false
	}
	r, ok := el.ConnectorBounds(ref.Port)
	if !ok {
		return geom.Rect{}, false
	}
	return r.Translate(s.offset), true
}

// AddElement renders a new element on top of all others. An existing
// element for the same block is replaced.
func (s *Surface) AddElement(el *Element) {
	if _, ok := s.elements[el.BlockID]; ok {
		s.RemoveElement(el.BlockID)
	}
	if el.Fields == nil {
		el.Fields = make(map[string]any)
	}
	s.elements[el.BlockID] = el
	s.order = append(s.order, el.BlockID)
}

// RemoveElement removes the element of blockID.
func (s *Surface) RemoveElement(blockID string) {
	delete(s.elements, blockID)
	s.order = slices.DeleteFunc(s.order, func(id string) bool { return id == blockID })
}

// Element returns the element of blockID.
func (s *Surface) Element(blockID string) (*Element, bool) {
	el, ok := s.elements[blockID]
	return el, ok
}

// Elements returns the elements bottom to top.
func (s *Surface) Elements() []*Element {
	out := make([]*Element, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.elements[id])
	}
	return out
}

// MoveElement moves the element of blockID so its top-left corner is at pos
// (surface-local). It reports false if no such element exists.
func (s *Surface) MoveElement(blockID string, pos geom.Point) bool {
	el, ok := s.elements[blockID]
	if !ok {
		return false
	}
	el.Bounds = el.Bounds.Translate(pos.Sub(el.Bounds.Min))
	return true
}

// HitTest reports what lies under the viewport point p. The topmost
// element wins and its connectors take precedence over its body.
func (s *Surface) HitTest(p geom.Point) Hit {
	local := p.Sub(s.offset)
	for i := len(s.order) - 1; i >= 0; i-- {
		el := s.elements[s.order[i]]
		for _, ps := range el.Ports {
			if r, _ := el.ConnectorBounds(ps.Port); r.Contains(local) {
				return Hit{Kind: HitConnector, BlockID: el.BlockID, Port: ps.Port}
			}
		}
		if el.Bounds.Contains(local) {
			return Hit{Kind: HitBlock, BlockID: el.BlockID}
		}
	}
	return Hit{Kind: HitNone}
}

// AddLine renders a new line and returns its handle.
func (s *Surface) AddLine(from, to geom.Point) LineID {
	id := s.nextLine
	s.nextLine++
	s.lines[id] = &Line{ID: id, From: from, To: to}
	return id
}

// SetLine updates both ends of line id.
func (s *Surface) SetLine(id LineID, from, to geom.Point) bool {
	l, ok := s.lines[id]
	if !ok {
		return false
	}
	l.From, l.To = from, to
	return true
}

// SetLineEnd updates only the far end of line id.
func (s *Surface) SetLineEnd(id LineID, to geom.Point) bool {
	l, ok := s.lines[id]
	if !ok {
		return false
	}
	l.To = to
	return true
}

// RemoveLine deletes line id.
func (s *Surface) RemoveLine(id LineID) { delete(s.lines, id) }

// Line returns a copy of line id.
func (s *Surface) Line(id LineID) (Line, bool) {
	l, ok := s.lines[id]
	if !ok {
		return Line{}, false
	}
	return *l, true
}

// Lines returns copies of all lines ordered by handle.
func (s *Surface) Lines() []Line {
	out := make([]Line, 0, len(s.lines))
	for _, id := range slices.Sorted(maps.Keys(s.lines)) {
		out = append(out, *s.lines[id])
	}
	return out
}

// Clear removes every element and line. Line handles are not reused.
func (s *Surface) Clear() {
	clear(s.elements)
	clear(s.lines)
	s.order = nil
}

var _ geom.Layout = (*Surface)(nil)
