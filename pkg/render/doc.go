// Package render draws flow documents as diagrams.
//
// # Overview
//
// [ToDOT] converts a [flowdoc.Document] into Graphviz DOT source in which
// every block is pinned at its stored position, so the picture matches what
// the editor shows. [RenderSVG] lays the DOT out in-process with the neato
// engine and returns SVG bytes.
//
//	dot := render.ToDOT(doc, render.Options{})
//	svg, err := render.RenderSVG(ctx, dot)
//
// # Coordinates
//
// Block positions are surface-local with y growing downwards. Graphviz
// places y upwards, so y is negated; inputscale=72 makes one surface unit
// one point. Edges leave the east side of the source block (its output
// connector) and enter the west side of the target (its input connector).
// Connections that reference a missing block are not drawn.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no Graphviz installation is required.
package render
