package render

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/anchit2000/flowcanvas/pkg/blocktype"
	"github.com/anchit2000/flowcanvas/pkg/flowdoc"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds the block's data to its label.
	Detailed bool

	// Labels maps a block type to its display label. Types without an
	// entry are shown by their key.
	Labels map[string]string

	// Width and Height are the block size in surface units. Zero means the
	// default block size.
	Width, Height float64
}

// ToDOT converts a flow document to Graphviz DOT with pinned positions.
func ToDOT(doc flowdoc.Document, opts Options) string {
	w, h := opts.Width, opts.Height
	if w <= 0 {
		w = blocktype.DefaultWidth
	}
	if h <= 0 {
		h = blocktype.DefaultHeight
	}

	var buf bytes.Buffer
	buf.WriteString("digraph flow {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, fixedsize=true, width=%s, height=%s];\n",
		inches(w), inches(h))
	buf.WriteString("  edge [tailport=e, headport=w, arrowsize=0.7];\n")
	buf.WriteString("\n")

	known := make(map[string]bool, len(doc.Blocks))
	for _, b := range doc.Blocks {
		known[b.ID] = true
		// pos is the node centre; block positions are top-left corners.
		x := b.Position.X + w/2
		y := -(b.Position.Y + h/2)
		fmt.Fprintf(&buf, "  %q [label=%q, pos=\"%s,%s!\"];\n",
			b.ID, fmtLabel(b, opts), num(x), num(y))
	}

	buf.WriteString("\n")
	for _, c := range doc.Connections {
		if !known[c.From.BlockID] || !known[c.To.BlockID] {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", c.From.BlockID, c.To.BlockID)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(b flowdoc.Block, opts Options) string {
	label := b.Type
	if l, ok := opts.Labels[b.Type]; ok {
		label = l
	}
	if !opts.Detailed {
		return label
	}

	parts := []string{label}
	for _, k := range slices.Sorted(maps.Keys(b.Data)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, b.Data[k]))
	}
	return strings.Join(parts, "\n")
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func inches(units float64) string { return strconv.FormatFloat(units/72, 'f', 4, 64) }

// RenderSVG lays out a DOT graph and renders it to SVG using Graphviz. The
// engine is chosen by the graph's layout attribute.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.-]+)\s+([0-9.-]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's fixed pt-based svg header with one
// that scales to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
