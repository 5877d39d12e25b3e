package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/anchit2000/flowcanvas/pkg/flowdoc"
	"github.com/anchit2000/flowcanvas/pkg/geom"
)

// runCLI executes the root command with a config file that does not exist,
// so every test runs on the defaults.
func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	var logs bytes.Buffer
	c := New(&logs, LogDebug)
	root := c.RootCommand()
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.toml")}, args...))
	root.SetOut(&logs)
	root.SetErr(&logs)
	return root.ExecuteContext(context.Background())
}

func writeFlow(t *testing.T) string {
	t.Helper()
	doc := flowdoc.Document{
		Blocks: []flowdoc.Block{
			{ID: "a", Type: "calculator", Position: geom.Point{X: 100, Y: 100}},
			{ID: "b", Type: "chat-output", Position: geom.Point{X: 300, Y: 100}},
		},
		Connections: []flowdoc.Connection{
			{From: flowdoc.Endpoint{BlockID: "a", Port: geom.PortOut}, To: flowdoc.Endpoint{BlockID: "b", Port: geom.PortIn}},
			{From: flowdoc.Endpoint{BlockID: "a", Port: geom.PortOut}, To: flowdoc.Endpoint{BlockID: "ghost", Port: geom.PortIn}},
		},
	}
	path := filepath.Join(t.TempDir(), "flow.json")
	if err := flowdoc.WriteFile(doc, path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		flag, output string
		want         string
		wantErr      bool
	}{
		{"", "", formatSVG, false},
		{"dot", "", formatDOT, false},
		{"", "out.dot", formatDOT, false},
		{"svg", "out.dot", formatSVG, false},
		{"png", "", "", true},
		{"", "out.pdf", "", true},
	}
	for _, tt := range tests {
		got, err := resolveFormat(tt.flag, tt.output)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("resolveFormat(%q, %q) = %q, %v; want %q", tt.flag, tt.output, got, err, tt.want)
		}
	}
}

func TestOutputPath(t *testing.T) {
	if got := outputPath("", "flows/demo.json", "svg"); got != "flows/demo.svg" {
		t.Errorf("outputPath = %q", got)
	}
	if got := outputPath("x.dot", "demo.json", "dot"); got != "x.dot" {
		t.Errorf("outputPath = %q", got)
	}
}

func TestRenderDOT(t *testing.T) {
	in := writeFlow(t)
	out := filepath.Join(t.TempDir(), "flow.dot")
	if err := runCLI(t, "render", in, "-o", out); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	dot := string(data)
	for _, want := range []string{"digraph flow", `label="Calculator`, `"a" -> "b"`} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "ghost") {
		t.Error("dangling connection rendered")
	}
}

func TestInspectAndTypes(t *testing.T) {
	in := writeFlow(t)
	if err := runCLI(t, "inspect", in); err != nil {
		t.Errorf("inspect: %v", err)
	}
	if err := runCLI(t, "types", "--fields"); err != nil {
		t.Errorf("types: %v", err)
	}
	if err := runCLI(t, "inspect", filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("inspect of a missing file succeeded")
	}
}

func TestBlockTableCountsFanInOut(t *testing.T) {
	doc, err := flowdoc.ReadFile(writeFlow(t))
	if err != nil {
		t.Fatal(err)
	}
	out := blockTable(doc)
	if !strings.Contains(out, "calculator") || !strings.Contains(out, "chat-output") {
		t.Errorf("table = %s", out)
	}
}

func TestConfigErrorsFailCommands(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfg, []byte("[cache]\nbackend = \"tape\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := New(&bytes.Buffer{}, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"--config", cfg, "types"})
	root.SetErr(&bytes.Buffer{})
	if err := root.ExecuteContext(context.Background()); err == nil {
		t.Error("invalid config accepted")
	}
}

func TestNewRegistryLocalTemplates(t *testing.T) {
	dir := t.TempDir()
	tmpl := "type = \"note\"\nlabel = \"Note\"\n\n[[fields]]\nname = \"text\"\n"
	if err := os.WriteFile(filepath.Join(dir, "note.toml"), []byte(tmpl), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(&bytes.Buffer{}, LogInfo)
	ctx := context.Background()
	reg, closeCache, err := c.newRegistry(ctx, sourceOptions{dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	defer closeCache()

	palette, err := newPalette(ctx, reg)
	if err != nil {
		t.Fatal(err)
	}
	i := slices.IndexFunc(palette, func(p paletteItem) bool { return p.Type == "note" })
	if i < 0 || palette[i].Label != "Note" {
		t.Errorf("palette = %+v, want local note type", palette)
	}
	if !slices.ContainsFunc(palette, func(p paletteItem) bool { return p.Type == "agent" }) {
		t.Error("built-in types missing from palette")
	}
}

func TestNewRegistryRejectsBadURL(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	if _, _, err := c.newRegistry(context.Background(), sourceOptions{url: "ftp://nope"}); err == nil {
		t.Error("invalid template URL accepted")
	}
}

func TestDisplayAddr(t *testing.T) {
	if got := displayAddr(":8080"); got != "localhost:8080" {
		t.Errorf("displayAddr(:8080) = %q", got)
	}
	if got := displayAddr("0.0.0.0:9000"); got != "0.0.0.0:9000" {
		t.Errorf("displayAddr = %q", got)
	}
}

func TestImportIntoReportsSkips(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	ctx := withLogger(context.Background(), c.Logger)
	reg, closeCache, err := c.newRegistry(ctx, sourceOptions{})
	if err != nil {
		t.Fatal(err)
	}
	defer closeCache()

	ed := c.newEditor(reg)
	if err := importInto(ctx, ed, writeFlow(t)); err != nil {
		t.Fatal(err)
	}
	if len(ed.Blocks()) != 2 || len(ed.Connections()) != 1 {
		t.Errorf("imported %d blocks, %d connections", len(ed.Blocks()), len(ed.Connections()))
	}
}
