package editor

import (
	"context"

	"github.com/anchit2000/flowcanvas/pkg/flow"
	"github.com/anchit2000/flowcanvas/pkg/geom"
	"github.com/anchit2000/flowcanvas/pkg/visual"
)

// State is the interaction state of the editor.
type State int

// Interaction states.
const (
	Idle State = iota
	PlacingFromPalette
	DraggingBlock
	WiringConnection
)

var stateNames = map[State]string{
	Idle:               "idle",
	PlacingFromPalette: "placing",
	DraggingBlock:      "dragging",
	WiringConnection:   "wiring",
}

// String returns the lowercase state name.
func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// PointerKind is the phase of a pointer event.
type PointerKind int

// Pointer phases.
const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
)

// PointerEvent is a pointer press, move or release in viewport coordinates.
type PointerEvent struct {
	Pointer int
	Kind    PointerKind
	X, Y    float64
}

func (ev PointerEvent) point() geom.Point { return geom.Point{X: ev.X, Y: ev.Y} }

// DropEvent is a palette item released over the viewport.
type DropEvent struct {
	X, Y float64
	Type string
}

type gesture struct {
	state   State
	blockID string
	grab    geom.Point
	line    visual.LineID
}

// State returns the aggregate interaction state. An active gesture wins
// over pending drops.
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state()
}

func (e *Editor) state() State {
	for _, g := range e.gestures {
		return g.state
	}
	if e.pending > 0 {
		return PlacingFromPalette
	}
	return Idle
}

func (e *Editor) active(s State) bool {
	for _, g := range e.gestures {
		if g.state == s {
			return true
		}
	}
	return false
}

// Drop places a block of ev.Type so that the drop point sits horizontally
// centred, AnchorY below the block's top edge. The template fetch happens
// before the editor is locked; a failure is reported and aborts only this
// placement.
func (e *Editor) Drop(ctx context.Context, ev DropEvent) (flow.Block, error) {
	e.mu.Lock()
	e.pending++
	e.mu.Unlock()

	tmpl, adapter, err := e.resolve(ctx, ev.Type)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending--
	if err != nil {
		e.report(ctx, "drop", err)
		return flow.Block{}, err
	}
	local := e.geometry.ToLocal(geom.Point{X: ev.X, Y: ev.Y})
	pos := local.Sub(geom.Point{X: tmpl.Width / 2, Y: e.anchorY})
	return e.place(ctx, tmpl, adapter, pos)
}

// Pointer feeds one pointer event to the gesture state machine. Gestures
// never fail: a release that does not complete a connection simply ends
// the gesture.
func (e *Editor) Pointer(ctx context.Context, ev PointerEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch ev.Kind {
	case PointerDown:
		e.pointerDown(ctx, ev)
	case PointerMove:
		e.pointerMove(ctx, ev)
	case PointerUp:
		e.pointerUp(ctx, ev)
	}
}

// Cancel aborts the gesture of pointer, discarding any transient line. A
// drag keeps the position reached so far.
func (e *Editor) Cancel(pointer int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancel(pointer)
}

func (e *Editor) cancel(pointer int) {
	g, ok := e.gestures[pointer]
	if !ok {
		return
	}
	if g.state == WiringConnection {
		e.surface.RemoveLine(g.line)
	}
	delete(e.gestures, pointer)
}

func (e *Editor) pointerDown(ctx context.Context, ev PointerEvent) {
	// A press without a release for the same pointer means the release was lost.
	e.cancel(ev.Pointer)

	hit := e.surface.HitTest(ev.point())
	switch {
	case hit.Kind == visual.HitConnector && hit.Port == geom.PortOut:
		if e.active(DraggingBlock) {
			return
		}
		anchor, ok := e.geometry.AnchorOf(geom.ConnectorRef{BlockID: hit.BlockID, Port: geom.PortOut})
		if !ok {
			return
		}
		e.gestures[ev.Pointer] = &gesture{
			state:   WiringConnection,
			blockID: hit.BlockID,
			line:    e.surface.AddLine(anchor, anchor),
		}
		e.logger.Debug("wiring started", "from", hit.BlockID, "pointer", ev.Pointer)

	case hit.Kind == visual.HitBlock:
		if e.active(WiringConnection) {
			return
		}
		el, _ := e.surface.Element(hit.BlockID)
		e.gestures[ev.Pointer] = &gesture{
			state:   DraggingBlock,
			blockID: hit.BlockID,
			grab:    e.geometry.ToLocal(ev.point()).Sub(el.Position()),
		}
		e.logger.Debug("drag started", "block", hit.BlockID, "pointer", ev.Pointer)
	}
}

func (e *Editor) pointerMove(ctx context.Context, ev PointerEvent) {
	g, ok := e.gestures[ev.Pointer]
	if !ok {
		return
	}
	local := e.geometry.ToLocal(ev.point())
	switch g.state {
	case DraggingBlock:
		e.moveBlock(ctx, g.blockID, local.Sub(g.grab))
	case WiringConnection:
		e.surface.SetLineEnd(g.line, local)
	}
}

func (e *Editor) pointerUp(ctx context.Context, ev PointerEvent) {
	g, ok := e.gestures[ev.Pointer]
	if !ok {
		return
	}
	delete(e.gestures, ev.Pointer)
	if g.state != WiringConnection {
		return
	}

	e.surface.RemoveLine(g.line)
	hit := e.surface.HitTest(ev.point())
	if hit.Kind != visual.HitConnector || hit.Port != geom.PortIn {
		return
	}
	// Self-loops are rejected by the registry and the line stays discarded.
	_, _ = e.connect(ctx, g.blockID, hit.BlockID)
}
