// Package editor is the interaction controller of the flow editor.
//
// An [Editor] turns pointer and drop events into changes to the block and
// connection registries and keeps the visual surface in sync with them.
// Front-ends (the terminal editor, the HTTP surface, tests) translate their
// native input into [PointerEvent] and [DropEvent] values in viewport
// coordinates and feed them to the editor.
//
// # Gestures
//
// Each pointer id carries at most one gesture:
//
//   - Pressing on a block body starts a drag. The block keeps the offset at
//     which it was grabbed; every move writes the new position to the
//     registry, moves the element and redraws the block's lines.
//   - Pressing on an output connector starts wiring. A transient line
//     follows the pointer. Releasing over an input connector of another
//     block creates a connection; releasing anywhere else discards the line.
//   - Pressing on an input connector or on empty surface does nothing.
//
// Dragging and wiring are mutually exclusive across pointers: while any
// pointer drags, no wiring can start, and the other way round.
//
// # Placement
//
// [Editor.Drop] places a block from the palette. The block's template is
// fetched first; this is the only blocking step and it runs without holding
// the editor's lock, so several drops can be in flight while gestures
// continue. A failed fetch aborts only that placement.
//
// # Serialization
//
// [Editor.Export] produces a [flowdoc.Document] from the live state and
// [Editor.Import] replaces the session with a document's contents.
// Connections whose endpoints are missing are skipped on import. A block
// whose template cannot be loaded is skipped as well; the import continues
// and returns an IMPORT_INCOMPLETE error listing every skipped block
// together with an [ImportReport].
//
// An Editor is safe for concurrent use.
package editor
