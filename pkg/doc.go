// Package pkg provides the libraries behind the flowcanvas flow editor.
//
// # Overview
//
// A flow is a set of typed blocks placed on a drawing surface and wired
// together from output ports to input ports. The pkg directory holds the
// headless editing core; the terminal editor, HTTP server and batch
// commands in cmd/ and internal/ only drive it.
//
// # Architecture
//
// The data flow of an editing session:
//
//	host events (drop, pointer, scroll)
//	         ↓
//	    [editor] package (gesture state machine, placement, wiring)
//	         ↓
//	    [flow] registries  +  [visual] surface (elements, lines)
//	         ↓
//	    [flowdoc] document (JSON export / import)
//	         ↓
//	    [render] DOT / SVG
//
// Block types are described by TOML templates loaded through [blocktype]
// from the built-in set, a local directory or a template server, with
// remote descriptors kept in a [cache] backend.
//
// # Quick Start
//
//	import (
//	    "context"
//	    "os"
//
//	    "github.com/anchit2000/flowcanvas/pkg/blocktype"
//	    "github.com/anchit2000/flowcanvas/pkg/editor"
//	    "github.com/anchit2000/flowcanvas/pkg/flow"
//	    "github.com/anchit2000/flowcanvas/pkg/flowdoc"
//	)
//
//	ctx := context.Background()
//	ed := editor.New(blocktype.NewRegistry(nil))
//	a, _ := ed.Place(ctx, "calculator", flow.Position{X: 100, Y: 100})
//	b, _ := ed.Place(ctx, "chat-output", flow.Position{X: 300, Y: 100})
//	ed.Connect(ctx, a.ID, b.ID)
//
//	doc, _ := ed.Export(ctx)
//	flowdoc.Write(doc, os.Stdout)
//
// # Main Packages
//
//   - [geom]: points, rectangles, connector anchors and coordinate conversion
//   - [flow]: block and connection registries
//   - [visual]: the headless render surface and hit testing
//   - [blocktype]: templates, sources and data adapters per block type
//   - [editor]: the interaction controller and serialization gateway
//   - [flowdoc]: the canonical document format
//   - [render]: Graphviz output
//   - [cache]: file, redis and null caches
//   - [errors]: error codes shared by every package
//   - [observability]: hooks for metrics and error reporting
package pkg
