package editor

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/anchit2000/flowcanvas/pkg/blocktype"
	"github.com/anchit2000/flowcanvas/pkg/errors"
	"github.com/anchit2000/flowcanvas/pkg/flow"
	"github.com/anchit2000/flowcanvas/pkg/geom"
	"github.com/anchit2000/flowcanvas/pkg/observability"
	"github.com/anchit2000/flowcanvas/pkg/visual"
)

// DefaultAnchorY is the vertical distance between a dropped block's top
// edge and the drop point.
const DefaultAnchorY = 30

// Default surface size.
const (
	DefaultSurfaceWidth  = 2000
	DefaultSurfaceHeight = 1200
)

// Provider resolves block types. [blocktype.Registry] implements it.
type Provider interface {
	Template(ctx context.Context, blockType string) (*blocktype.Template, error)
	Adapter(ctx context.Context, blockType string) (blocktype.Adapter, error)
}

// Option configures an [Editor].
type Option func(*Editor)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *log.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithIDFunc sets the block id generator. The default produces UUIDs.
func WithIDFunc(fn flow.IDFunc) Option {
	return func(e *Editor) { e.idFunc = fn }
}

// WithAnchorY sets the drop anchor (see [DefaultAnchorY]).
func WithAnchorY(y float64) Option {
	return func(e *Editor) { e.anchorY = y }
}

// WithSurfaceSize sets the size of the drawing surface.
func WithSurfaceSize(width, height float64) Option {
	return func(e *Editor) { e.width, e.height = width, height }
}

// Editor is one editing session.
type Editor struct {
	provider Provider
	logger   *log.Logger
	idFunc   flow.IDFunc
	anchorY  float64
	width    float64
	height   float64

	mu       sync.Mutex
	blocks   *flow.BlockRegistry
	conns    *flow.ConnectionRegistry
	surface  *visual.Surface
	geometry *geom.Service
	adapters map[string]blocktype.Adapter
	lines    map[uint64]visual.LineID
	gestures map[int]*gesture
	pending  int
}

// New creates an empty session resolving block types through provider.
func New(provider Provider, opts ...Option) *Editor {
	e := &Editor{
		provider: provider,
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
		anchorY:  DefaultAnchorY,
		width:    DefaultSurfaceWidth,
		height:   DefaultSurfaceHeight,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.blocks = flow.NewBlockRegistry(e.idFunc)
	e.conns = flow.NewConnectionRegistry()
	e.surface = visual.NewSurface(e.width, e.height)
	e.geometry = geom.NewService(e.surface)
	e.adapters = make(map[string]blocktype.Adapter)
	e.lines = make(map[uint64]visual.LineID)
	e.gestures = make(map[int]*gesture)
	return e
}

// Place creates a block of blockType with its top-left corner at pos
// (surface-local) and fills it with the template defaults.
func (e *Editor) Place(ctx context.Context, blockType string, pos flow.Position) (flow.Block, error) {
	tmpl, adapter, err := e.resolve(ctx, blockType)
	if err != nil {
		e.report(ctx, "place", err)
		return flow.Block{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.place(ctx, tmpl, adapter, pos)
}

// Move puts block id at pos (surface-local) and redraws its lines.
func (e *Editor) Move(ctx context.Context, id string, pos flow.Position) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.blocks.Has(id) {
		return errors.Wrap(errors.ErrCodeUnknownBlock, flow.ErrUnknownBlock, "move %s", id)
	}
	e.moveBlock(ctx, id, pos)
	return nil
}

// SetData applies a user edit to block id: the adapter normalizes data to
// the template's field kinds, shows it and the registry stores it.
func (e *Editor) SetData(id string, data flow.Data) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	el, ok := e.surface.Element(id)
	if !ok {
		return errors.Wrap(errors.ErrCodeUnknownBlock, flow.ErrUnknownBlock, "set data of %s", id)
	}
	adapter := e.adapters[id]
	if n, ok := adapter.(blocktype.Normalizer); ok {
		norm, err := n.Normalize(data)
		if err != nil {
			return err
		}
		data = norm
	}
	if err := adapter.WriteToVisual(el, data); err != nil {
		return err
	}
	return e.syncData(id, el)
}

// Connect wires the output of block from to the input of block to.
func (e *Editor) Connect(ctx context.Context, from, to string) (flow.Connection, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ref := range []geom.ConnectorRef{
		{BlockID: from, Port: geom.PortOut},
		{BlockID: to, Port: geom.PortIn},
	} {
		if !e.blocks.Has(ref.BlockID) {
			return flow.Connection{}, errors.New(errors.ErrCodeMissingEndpoint, "block %s does not exist", ref.BlockID)
		}
		if _, ok := e.surface.ConnectorBounds(ref); !ok {
			return flow.Connection{}, errors.New(errors.ErrCodeInvalidConnection, "block %s has no %s port", ref.BlockID, ref.Port)
		}
	}
	return e.connect(ctx, from, to)
}

// Redraw drops connections whose blocks no longer exist and recomputes
// every line from the current connector positions.
func (e *Editor) Redraw() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.redraw()
}

// Scroll moves the surface inside the viewport by (dx, dy). Stored
// positions and lines are surface-local and do not change.
func (e *Editor) Scroll(dx, dy float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.surface.SetOffset(e.surface.Offset().Add(geom.Point{X: dx, Y: dy}))
}

// Block returns block id.
func (e *Editor) Block(id string) (flow.Block, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.blocks.Get(id)
}

// Blocks returns the blocks in creation order.
func (e *Editor) Blocks() []flow.Block {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.blocks.All()
}

// Connections returns the connections in creation order.
func (e *Editor) Connections() []flow.Connection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conns.All()
}

// Snapshot is a copy of what the surface currently shows.
type Snapshot struct {
	State    State
	Offset   geom.Point
	Elements []visual.Element
	Lines    []visual.Line
}

// Snapshot copies the visible state for rendering.
func (e *Editor) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := Snapshot{
		State:  e.state(),
		Offset: e.surface.Offset(),
		Lines:  e.surface.Lines(),
	}
	for _, el := range e.surface.Elements() {
		cp := *el
		cp.Ports = append([]visual.PortSpec(nil), el.Ports...)
		cp.Fields = flow.Data(el.Fields).Clone()
		s.Elements = append(s.Elements, cp)
	}
	return s
}

// HitTest reports what lies under the viewport point p.
func (e *Editor) HitTest(p geom.Point) visual.Hit {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.surface.HitTest(p)
}

func (e *Editor) resolve(ctx context.Context, blockType string) (*blocktype.Template, blocktype.Adapter, error) {
	tmpl, err := e.provider.Template(ctx, blockType)
	if err != nil {
		return nil, nil, templateError(err, blockType)
	}
	adapter, err := e.provider.Adapter(ctx, blockType)
	if err != nil {
		return nil, nil, templateError(err, blockType)
	}
	return tmpl, adapter, nil
}

func templateError(err error, blockType string) error {
	if errors.GetCode(err) == errors.ErrCodeTemplateFetch {
		return err
	}
	return errors.Wrap(errors.ErrCodeTemplateFetch, err, "load template %q", blockType)
}

// place must be called with e.mu held.
func (e *Editor) place(ctx context.Context, tmpl *blocktype.Template, adapter blocktype.Adapter, pos flow.Position) (flow.Block, error) {
	el := tmpl.NewElement("", pos)
	if err := adapter.WriteToVisual(el, tmpl.Defaults()); err != nil {
		err = errors.Wrap(errors.ErrCodeInvalidTemplate, err, "defaults of %q", tmpl.Type)
		e.report(ctx, "place", err)
		return flow.Block{}, err
	}

	b := e.blocks.Place(tmpl.Type, pos)
	el.BlockID = b.ID
	e.surface.AddElement(el)
	e.adapters[b.ID] = adapter
	if err := e.syncData(b.ID, el); err != nil {
		return flow.Block{}, err
	}

	e.logger.Debug("block placed", "id", b.ID, "type", b.Type, "x", pos.X, "y", pos.Y)
	observability.Editor().OnBlockPlaced(ctx, b.Type)
	b, _ = e.blocks.Get(b.ID)
	return b, nil
}

// syncData copies the data shown by el into the registry.
func (e *Editor) syncData(id string, el *visual.Element) error {
	data, err := e.adapters[id].ReadFromVisual(el)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "read data of %s", id)
	}
	return e.blocks.SetData(id, data)
}

func (e *Editor) moveBlock(ctx context.Context, id string, pos flow.Position) {
	if err := e.blocks.MoveTo(id, pos); err != nil {
		return
	}
	e.surface.MoveElement(id, pos)
	e.conns.ForEachInvolving(id, e.drawLine)
	observability.Editor().OnBlockMoved(ctx, id)
}

func (e *Editor) connect(ctx context.Context, from, to string) (flow.Connection, error) {
	c, err := e.conns.Connect(from, to)
	if err != nil {
		e.logger.Debug("connection rejected", "from", from, "to", to, "err", err)
		observability.Editor().OnConnectionRejected(ctx, from, to, err)
		return flow.Connection{}, errors.Wrap(errors.ErrCodeInvalidConnection, err, "connect %s to %s", from, to)
	}
	e.drawLine(c)
	e.logger.Debug("connected", "from", from, "to", to)
	observability.Editor().OnConnectionCreated(ctx, from, to)
	return c, nil
}

// drawLine creates or updates the line of c. Connections with an endpoint
// that is not rendered are skipped.
func (e *Editor) drawLine(c flow.Connection) {
	from, ok := e.geometry.AnchorOf(c.From.Ref())
	if !ok {
		return
	}
	to, ok := e.geometry.AnchorOf(c.To.Ref())
	if !ok {
		return
	}
	if id, ok := e.lines[c.Key()]; ok && e.surface.SetLine(id, from, to) {
		return
	}
	e.lines[c.Key()] = e.surface.AddLine(from, to)
}

func (e *Editor) redraw() {
	for _, c := range e.conns.RemoveWhereEndpointMissing(e.blocks.IDs()) {
		if id, ok := e.lines[c.Key()]; ok {
			e.surface.RemoveLine(id)
			delete(e.lines, c.Key())
		}
	}
	for _, c := range e.conns.All() {
		e.drawLine(c)
	}
}

// report sends err to the error channel and the log.
func (e *Editor) report(ctx context.Context, op string, err error) {
	e.logger.Warn(op+" failed", "err", err)
	observability.Editor().OnError(ctx, op, err)
}
