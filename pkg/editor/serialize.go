package editor

import (
	"context"
	stderrors "errors"
	"io"
	"time"

	"github.com/anchit2000/flowcanvas/pkg/blocktype"
	"github.com/anchit2000/flowcanvas/pkg/errors"
	"github.com/anchit2000/flowcanvas/pkg/flow"
	"github.com/anchit2000/flowcanvas/pkg/flowdoc"
	"github.com/anchit2000/flowcanvas/pkg/geom"
	"github.com/anchit2000/flowcanvas/pkg/observability"
)

// ImportReport describes what an import restored and what it skipped.
type ImportReport struct {
	Blocks             int      `json:"blocks"`
	Connections        int      `json:"connections"`
	SkippedBlocks      []string `json:"skippedBlocks,omitempty"`
	SkippedConnections int      `json:"skippedConnections"`
}

// Complete reports whether nothing was skipped.
func (r ImportReport) Complete() bool {
	return len(r.SkippedBlocks) == 0 && r.SkippedConnections == 0
}

func (r ImportReport) stats() observability.ImportStats {
	return observability.ImportStats{
		Blocks:             r.Blocks,
		Connections:        r.Connections,
		SkippedBlocks:      len(r.SkippedBlocks),
		SkippedConnections: r.SkippedConnections,
	}
}

// Export captures the session as a document. Every block's data is read
// back from its element through the block type's adapter and its position
// is taken from the element, so the document reflects what is shown.
func (e *Editor) Export(ctx context.Context) (flowdoc.Document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, id := range e.blocks.Order() {
		el, ok := e.surface.Element(id)
		if !ok {
			continue
		}
		if err := e.syncData(id, el); err != nil {
			e.report(ctx, "export", err)
			return flowdoc.Document{}, err
		}
		_ = e.blocks.MoveTo(id, el.Position())
	}
	doc := flowdoc.New(e.blocks.All(), e.conns.All())
	observability.Editor().OnExport(ctx, len(doc.Blocks), len(doc.Connections))
	return doc, nil
}

// ExportFile writes the exported document to path.
func (e *Editor) ExportFile(ctx context.Context, path string) error {
	doc, err := e.Export(ctx)
	if err != nil {
		return err
	}
	return flowdoc.WriteFile(doc, path)
}

// Import replaces the session with the contents of doc.
//
// Templates are fetched before the session is locked; then both
// registries, the surface and all gestures are reset. Block data is written
// as stored in doc. Blocks whose template cannot be loaded are skipped. Connections with a missing endpoint are skipped and counted.
// If any block was skipped the returned error has code IMPORT_INCOMPLETE
// and joins the per-block failures; the report is valid either way.
func (e *Editor) Import(ctx context.Context, doc flowdoc.Document) (ImportReport, error) {
	start := time.Now()
	if err := doc.Validate(); err != nil {
		e.report(ctx, "import", err)
		return ImportReport{}, err
	}

	types := e.resolveTypes(ctx, doc.Blocks)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.reset()

	var (
		report   ImportReport
		failures []error
	)
	for _, b := range doc.Blocks {
		if err := e.restoreBlock(b, types[b.Type]); err != nil {
			e.logger.Warn("block skipped", "id", b.ID, "type", b.Type, "err", err)
			failures = append(failures, err)
			report.SkippedBlocks = append(report.SkippedBlocks, b.ID)
			continue
		}
		report.Blocks++
	}

	for _, c := range doc.Connections {
		if c.From.Port != geom.PortOut || c.To.Port != geom.PortIn ||
			!e.blocks.Has(c.From.BlockID) || !e.blocks.Has(c.To.BlockID) {
			report.SkippedConnections++
			continue
		}
		conn, err := e.conns.Connect(c.From.BlockID, c.To.BlockID)
		if err != nil {
			report.SkippedConnections++
			continue
		}
		e.drawLine(conn)
		report.Connections++
	}

	var err error
	if len(failures) > 0 {
		err = errors.Wrap(errors.ErrCodeImportIncomplete, stderrors.Join(failures...),
			"%d of %d blocks could not be restored", len(failures), len(doc.Blocks))
		e.report(ctx, "import", err)
	}
	e.logger.Debug("imported", "blocks", report.Blocks, "connections", report.Connections,
		"skipped_blocks", len(report.SkippedBlocks), "skipped_connections", report.SkippedConnections)
	observability.Editor().OnImport(ctx, report.stats(), time.Since(start), err)
	return report, err
}

// ImportReader reads a document from r and imports it.
func (e *Editor) ImportReader(ctx context.Context, r io.Reader) (ImportReport, error) {
	doc, err := flowdoc.Read(r)
	if err != nil {
		e.report(ctx, "import", err)
		return ImportReport{}, err
	}
	return e.Import(ctx, doc)
}

// ImportFile reads the document at path and imports it.
func (e *Editor) ImportFile(ctx context.Context, path string) (ImportReport, error) {
	doc, err := flowdoc.ReadFile(path)
	if err != nil {
		e.report(ctx, "import", err)
		return ImportReport{}, err
	}
	return e.Import(ctx, doc)
}

// Reset clears the session.
func (e *Editor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reset()
}

func (e *Editor) reset() {
	e.blocks.Reset()
	e.conns.Reset()
	e.surface.Clear()
	clear(e.adapters)
	clear(e.lines)
	clear(e.gestures)
}

// resolvedType is the outcome of one template lookup during import.
type resolvedType struct {
	tmpl    *blocktype.Template
	adapter blocktype.Adapter
	err     error
}

// resolveTypes fetches the template of every distinct block type. It runs
// without e.mu so that other events are served while templates load.
func (e *Editor) resolveTypes(ctx context.Context, blocks []flowdoc.Block) map[string]resolvedType {
	out := make(map[string]resolvedType)
	for _, b := range blocks {
		if _, ok := out[b.Type]; ok {
			continue
		}
		tmpl, adapter, err := e.resolve(ctx, b.Type)
		out[b.Type] = resolvedType{tmpl: tmpl, adapter: adapter, err: err}
	}
	return out
}

// restoreBlock must be called with e.mu held. Data is written as stored in
// the document.
func (e *Editor) restoreBlock(b flowdoc.Block, rt resolvedType) error {
	if rt.err != nil {
		return rt.err
	}
	tmpl, adapter := rt.tmpl, rt.adapter
	el := tmpl.NewElement(b.ID, b.Position)
	if err := adapter.WriteToVisual(el, b.Data); err != nil {
		return err
	}
	if err := e.blocks.Add(flow.Block{ID: b.ID, Type: b.Type, Position: b.Position}); err != nil {
		return errors.Wrap(errors.ErrCodeImportParse, err, "block %s", b.ID)
	}
	e.surface.AddElement(el)
	e.adapters[b.ID] = adapter
	return e.syncData(b.ID, el)
}
