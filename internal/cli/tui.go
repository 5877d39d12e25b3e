package cli

import (
	"context"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/anchit2000/flowcanvas/pkg/blocktype"
	"github.com/anchit2000/flowcanvas/pkg/editor"
	"github.com/anchit2000/flowcanvas/pkg/errors"
	"github.com/anchit2000/flowcanvas/pkg/flow"
	"github.com/anchit2000/flowcanvas/pkg/geom"
	"github.com/anchit2000/flowcanvas/pkg/visual"
)

// Terminal layout. One cell covers cellW by cellH surface units, so a
// default 180x60 block is 18 cells wide and 3 rows tall.
const (
	paletteWidth = 18
	headerRows   = 2
	cellW        = 10.0
	cellH        = 20.0
	scrollStep   = 4 * cellW

	defaultTermWidth  = 100
	defaultTermHeight = 30
)

var (
	paletteItemStyle     = lipgloss.NewStyle().Foreground(colorWhite)
	paletteSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	paletteDragStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	canvasStyle          = lipgloss.NewStyle().Foreground(colorGray)
	statusErrorStyle     = lipgloss.NewStyle().Foreground(colorRed)
)

// paletteItem is one placeable block type.
type paletteItem struct {
	Type  string
	Label string
}

// newPalette lists every type the registry can load.
func newPalette(ctx context.Context, reg *blocktype.Registry) ([]paletteItem, error) {
	types, err := reg.Types(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]paletteItem, 0, len(types))
	for _, t := range types {
		label := t
		if tmpl, err := reg.Template(ctx, t); err == nil {
			label = tmpl.Label
		}
		items = append(items, paletteItem{Type: t, Label: label})
	}
	return items, nil
}

type dropDoneMsg struct {
	block flow.Block
	err   error
}

type savedMsg struct {
	path string
	err  error
}

// EditorModel is the bubbletea model of the terminal editor.
//
// Mouse input on the canvas is forwarded to the editor as pointer events
// with cell coordinates scaled to surface units. Pressing on a palette item
// and releasing over the canvas drops a block of that type.
type EditorModel struct {
	ctx     context.Context
	ed      *editor.Editor
	palette []paletteItem
	path    string

	cursor   int
	dragType string
	width    int
	height   int
	status   string
	failed   bool
	dirty    bool
}

// NewEditorModel creates the model for ed. Saving writes to path.
func NewEditorModel(ctx context.Context, ed *editor.Editor, palette []paletteItem, path string) EditorModel {
	return EditorModel{
		ctx:     ctx,
		ed:      ed,
		palette: palette,
		path:    path,
		width:   defaultTermWidth,
		height:  defaultTermHeight,
		status:  "Drag a block type onto the canvas",
	}
}

// Dirty reports whether the session changed since the last save.
func (m EditorModel) Dirty() bool { return m.dirty }

func (m EditorModel) Init() tea.Cmd {
	return nil
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case dropDoneMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.dirty = true
		m.setStatus("Placed %s %s", msg.block.Type, msg.block.ID)
	case savedMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.dirty = false
		m.setStatus("Saved %s", msg.path)
	}
	return m, nil
}

func (m EditorModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "s":
		return m, m.save()
	case "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "j":
		if m.cursor < len(m.palette)-1 {
			m.cursor++
		}
	case "enter":
		if len(m.palette) == 0 {
			return m, nil
		}
		cols, rows := m.canvasSize()
		return m, m.drop(m.palette[m.cursor].Type, viewportPoint(cols/2, rows/2))
	case "esc":
		m.ed.Cancel(0)
	case "r":
		m.ed.Redraw()
	case "left":
		m.ed.Scroll(scrollStep, 0)
	case "right":
		m.ed.Scroll(-scrollStep, 0)
	case "up":
		m.ed.Scroll(0, scrollStep)
	case "down":
		m.ed.Scroll(0, -scrollStep)
	}
	return m, nil
}

func (m EditorModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	col, row := msg.X-paletteWidth, msg.Y-headerRows
	onCanvas := col >= 0 && row >= 0

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if !onCanvas {
			if i := msg.Y - headerRows; msg.X < paletteWidth && i >= 0 && i < len(m.palette) {
				m.cursor = i
				m.dragType = m.palette[i].Type
			}
			return m, nil
		}
		m.ed.Pointer(m.ctx, pointerEvent(editor.PointerDown, col, row))
	case tea.MouseActionMotion:
		if m.dragType == "" {
			m.ed.Pointer(m.ctx, pointerEvent(editor.PointerMove, col, row))
		}
	case tea.MouseActionRelease:
		if m.dragType != "" {
			t := m.dragType
			m.dragType = ""
			if onCanvas {
				return m, m.drop(t, viewportPoint(col, row))
			}
			return m, nil
		}
		before := len(m.ed.Connections())
		m.ed.Pointer(m.ctx, pointerEvent(editor.PointerUp, col, row))
		m.dirty = true
		if after := len(m.ed.Connections()); after > before {
			m.setStatus("Connected (%d connections)", after)
		}
	}
	return m, nil
}

func (m EditorModel) drop(blockType string, p geom.Point) tea.Cmd {
	ctx, ed := m.ctx, m.ed
	return func() tea.Msg {
		b, err := ed.Drop(ctx, editor.DropEvent{X: p.X, Y: p.Y, Type: blockType})
		return dropDoneMsg{block: b, err: err}
	}
}

func (m EditorModel) save() tea.Cmd {
	ctx, ed, path := m.ctx, m.ed, m.path
	return func() tea.Msg {
		return savedMsg{path: path, err: ed.ExportFile(ctx, path)}
	}
}

func (m *EditorModel) setStatus(format string, args ...any) {
	m.status, m.failed = fmt.Sprintf(format, args...), false
}

func (m *EditorModel) setError(err error) {
	m.status, m.failed = errors.UserMessage(err), true
}

// viewportPoint is the centre of canvas cell (col, row) in viewport units.
func viewportPoint(col, row int) geom.Point {
	return geom.Point{X: float64(col)*cellW + cellW/2, Y: float64(row)*cellH + cellH/2}
}

func pointerEvent(kind editor.PointerKind, col, row int) editor.PointerEvent {
	p := viewportPoint(col, row)
	return editor.PointerEvent{Pointer: 0, Kind: kind, X: p.X, Y: p.Y}
}

func (m EditorModel) canvasSize() (cols, rows int) {
	return max(m.width-paletteWidth, 1), max(m.height-headerRows-1, 1)
}

func (m EditorModel) View() string {
	var b strings.Builder

	title := StyleTitle.Render(appTitle) + StyleDim.Render(" · "+m.path)
	if m.dirty {
		title += StyleWarning.Render(" *")
	}
	b.WriteString(title + StyleDim.Render("  ["+m.ed.State().String()+"]"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("drag palette → canvas  ● out  ○ in  j/k select  ⏎ place  arrows scroll  s save  q quit"))
	b.WriteString("\n")

	cols, rows := m.canvasSize()
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.paletteView(rows), canvasStyle.Render(drawCanvas(m.ed.Snapshot(), cols, rows))))
	b.WriteString("\n")

	if m.failed {
		b.WriteString(statusErrorStyle.Render(iconError + " " + m.status))
	} else {
		b.WriteString(StyleDim.Render(iconInfo + " " + m.status))
	}
	return b.String()
}

func (m EditorModel) paletteView(rows int) string {
	lines := make([]string, rows)
	for i := range lines {
		if i >= len(m.palette) {
			continue
		}
		item := m.palette[i]
		switch {
		case item.Type == m.dragType:
			lines[i] = paletteDragStyle.Render("▸ " + item.Label)
		case i == m.cursor:
			lines[i] = paletteSelectedStyle.Render("› " + item.Label)
		default:
			lines[i] = paletteItemStyle.Render("  " + item.Label)
		}
	}
	return lipgloss.NewStyle().Width(paletteWidth).Render(strings.Join(lines, "\n"))
}

// =============================================================================
// Canvas
// =============================================================================

type grid struct {
	cols, rows int
	cells      [][]rune
}

func newGrid(cols, rows int) *grid {
	g := &grid{cols: cols, rows: rows, cells: make([][]rune, rows)}
	for r := range g.cells {
		g.cells[r] = []rune(strings.Repeat(" ", cols))
	}
	return g
}

func (g *grid) set(col, row int, ch rune) {
	if col >= 0 && col < g.cols && row >= 0 && row < g.rows {
		g.cells[row][col] = ch
	}
}

func (g *grid) text(col, row int, s string, limit int) {
	for i, ch := range []rune(s) {
		if i >= limit {
			break
		}
		g.set(col+i, row, ch)
	}
}

func (g *grid) String() string {
	lines := make([]string, g.rows)
	for r, cells := range g.cells {
		lines[r] = string(cells)
	}
	return strings.Join(lines, "\n")
}

// cell maps a viewport point to the cell containing it.
func cell(p geom.Point) (col, row int) {
	return int(math.Floor(p.X / cellW)), int(math.Floor(p.Y / cellH))
}

// drawCanvas draws lines first so blocks cover them.
func drawCanvas(snap editor.Snapshot, cols, rows int) string {
	g := newGrid(cols, rows)
	for _, l := range snap.Lines {
		drawLine(g, l.From.Add(snap.Offset), l.To.Add(snap.Offset))
	}
	for i := range snap.Elements {
		drawElement(g, &snap.Elements[i], snap.Offset)
	}
	return g.String()
}

func drawElement(g *grid, el *visual.Element, offset geom.Point) {
	r := el.Bounds.Translate(offset)
	c0, r0 := cell(r.Min)
	c1, r1 := cell(r.Max.Sub(geom.Point{X: 1, Y: 1}))

	for c := c0; c <= c1; c++ {
		for row := r0; row <= r1; row++ {
			g.set(c, row, ' ')
		}
		g.set(c, r0, '─')
		g.set(c, r1, '─')
	}
	for row := r0; row <= r1; row++ {
		g.set(c0, row, '│')
		g.set(c1, row, '│')
	}
	g.set(c0, r0, '┌')
	g.set(c1, r0, '┐')
	g.set(c0, r1, '└')
	g.set(c1, r1, '┘')

	inner := c1 - c0 - 1
	g.text(c0+1, r0, el.BlockID, inner)
	if r1-r0 >= 2 {
		g.text(c0+2, r0+1, el.Label, inner-2)
	}

	for _, ps := range el.Ports {
		cr, ok := el.ConnectorBounds(ps.Port)
		if !ok {
			continue
		}
		col, row := cell(cr.Center().Add(offset))
		glyph := '○'
		if ps.Port == geom.PortOut {
			glyph = '●'
		}
		g.set(col, row, glyph)
	}
}

// drawLine plots a dotted line between two viewport points.
func drawLine(g *grid, from, to geom.Point) {
	c0, r0 := cell(from)
	c1, r1 := cell(to)
	dc, dr := abs(c1-c0), -abs(r1-r0)
	sc, sr := sign(c1-c0), sign(r1-r0)
	e := dc + dr
	for {
		g.set(c0, r0, '·')
		if c0 == c1 && r0 == r1 {
			return
		}
		e2 := 2 * e
		if e2 >= dr {
			e += dr
			c0 += sc
		}
		if e2 <= dc {
			e += dc
			r0 += sr
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
