// Package geom computes connector anchor points on the drawing surface.
//
// Block positions and connection lines are expressed in surface-local
// coordinates: the origin is the top-left corner of the drawing surface,
// wherever the surface currently sits inside the viewport. Rendered bounding
// boxes, on the other hand, are reported in viewport coordinates (the frame
// pointer events arrive in). [Anchor] converts between the two by
// subtracting the surface's own offset from the connector centre.
//
// [Service] never caches: blocks move and the viewport scrolls between calls,
// so every anchor is recomputed from the live [Layout].
package geom

import "math"

// Point is a 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Dist returns the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// Rect is an axis-aligned rectangle. Min is the top-left corner, Max the
// bottom-right corner.
type Rect struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// RectAt builds a rectangle from its top-left corner and size.
func RectAt(x, y, w, h float64) Rect {
	return Rect{Min: Point{X: x, Y: y}, Max: Point{X: x + w, Y: y + h}}
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height returns the vertical extent of r.
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Center returns the midpoint of r.
func (r Rect) Center() Point {
	return Point{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2}
}

// Translate returns r moved by d.
func (r Rect) Translate(d Point) Rect { return Rect{Min: r.Min.Add(d), Max: r.Max.Add(d)} }

// Contains reports whether p lies inside r. The top and left edges are
// inclusive, the bottom and right edges exclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X < r.Max.X && p.Y >= r.Min.Y && p.Y < r.Max.Y
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.Width() <= 0 || r.Height() <= 0 }

// Anchor returns the centre of connector expressed in the local coordinates
// of surface. Both rectangles must be in the same (viewport) frame.
func Anchor(connector, surface Rect) Point {
	return connector.Center().Sub(surface.Min)
}
