package server

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/anchit2000/flowcanvas/pkg/blocktype"
	"github.com/anchit2000/flowcanvas/pkg/editor"
	"github.com/anchit2000/flowcanvas/pkg/errors"
	"github.com/anchit2000/flowcanvas/pkg/flowdoc"
	"github.com/anchit2000/flowcanvas/pkg/geom"
	"github.com/anchit2000/flowcanvas/pkg/observability"
)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("b%d", n)
	}
}

func newTestServer(opts ...Option) *Server {
	reg := blocktype.NewRegistry(nil)
	ed := editor.New(reg, editor.WithIDFunc(seqIDs()))
	return New(ed, reg, opts...)
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func place(t *testing.T, s *Server, blockType string, x, y float64) flowdoc.Block {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/blocks", map[string]any{
		"type":     blockType,
		"position": map[string]float64{"x": x, "y": y},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("place %s: status %d: %s", blockType, rec.Code, rec.Body)
	}
	return decodeBody[flowdoc.Block](t, rec)
}

func TestPlaceAndExport(t *testing.T) {
	s := newTestServer()
	b := place(t, s, "agent", 10, 20)
	if b.ID != "b1" || b.Type != "agent" || b.Data["model"] != "gpt-4o" {
		t.Errorf("placed block = %+v", b)
	}

	rec := do(t, s, http.MethodGet, "/api/flow", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export status %d", rec.Code)
	}
	doc, err := flowdoc.Unmarshal(rec.Body.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Blocks) != 1 || doc.Blocks[0].Position.X != 10 || doc.Blocks[0].Position.Y != 20 {
		t.Errorf("exported blocks = %+v", doc.Blocks)
	}
}

func TestPlaceErrors(t *testing.T) {
	s := newTestServer()
	tests := []struct {
		name string
		body any
		want int
		code errors.Code
	}{
		{"BadJSON", "{", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"UnknownField", `{"kind":"agent"}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"BadTypeName", map[string]any{"type": "../etc"}, http.StatusBadRequest, errors.ErrCodeInvalidBlockType},
		{"UnknownType", map[string]any{"type": "nope"}, http.StatusUnprocessableEntity, errors.ErrCodeTemplateFetch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/blocks", tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
			if got := decodeBody[errorResponse](t, rec); got.Code != tt.code {
				t.Errorf("code = %s, want %s", got.Code, tt.code)
			}
		})
	}
}

func TestConnect(t *testing.T) {
	s := newTestServer()
	a := place(t, s, "calculator", 100, 100)
	b := place(t, s, "chat-output", 300, 100)

	tests := []struct {
		name     string
		from, to string
		want     int
	}{
		{"Valid", a.ID, b.ID, http.StatusCreated},
		{"SelfLoop", a.ID, a.ID, http.StatusUnprocessableEntity},
		{"MissingTarget", a.ID, "ghost", http.StatusNotFound},
		{"NoOutPort", b.ID, a.ID, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/connections", connectRequest{From: tt.from, To: tt.to})
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
		})
	}

	conns := decodeBody[[]flowdoc.Connection](t, do(t, s, http.MethodGet, "/api/connections", nil))
	if len(conns) != 1 || conns[0].From.BlockID != a.ID || conns[0].To.BlockID != b.ID {
		t.Errorf("connections = %+v", conns)
	}
}

func TestDropCentresBlockOnPointer(t *testing.T) {
	s := newTestServer()
	rec := do(t, s, http.MethodPost, "/api/drop", dropRequest{Type: "calculator", X: 190, Y: 130})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	b := decodeBody[flowdoc.Block](t, rec)
	if b.Position.X != 100 || b.Position.Y != 100 {
		t.Errorf("position = %+v, want {100 100}", b.Position)
	}
}

func TestPointerWiring(t *testing.T) {
	s := newTestServer()
	place(t, s, "calculator", 100, 100)
	place(t, s, "chat-output", 300, 100)

	steps := []struct {
		kind string
		x, y float64
		want editor.State
	}{
		{"down", 280, 130, editor.WiringConnection},
		{"move", 290, 140, editor.WiringConnection},
		{"up", 300, 130, editor.Idle},
	}
	for _, st := range steps {
		rec := do(t, s, http.MethodPost, "/api/pointer", pointerRequest{Pointer: 1, Kind: st.kind, X: st.x, Y: st.y})
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d: %s", st.kind, rec.Code, rec.Body)
		}
		var got struct {
			State string `json:"state"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatal(err)
		}
		if got.State != st.want.String() {
			t.Errorf("after %s state = %s, want %s", st.kind, got.State, st.want)
		}
	}

	conns := decodeBody[[]flowdoc.Connection](t, do(t, s, http.MethodGet, "/api/connections", nil))
	if len(conns) != 1 {
		t.Errorf("connections = %+v, want one", conns)
	}
}

func TestPointerCancelAndUnknownKind(t *testing.T) {
	s := newTestServer()
	place(t, s, "calculator", 100, 100)

	do(t, s, http.MethodPost, "/api/pointer", pointerRequest{Pointer: 1, Kind: "down", X: 280, Y: 130})
	rec := do(t, s, http.MethodPost, "/api/pointer", pointerRequest{Pointer: 1, Kind: "cancel"})
	if !strings.Contains(rec.Body.String(), `"idle"`) {
		t.Errorf("cancel response = %s", rec.Body)
	}
	snap := decodeBody[struct{ Lines []lineJSON }](t, do(t, s, http.MethodGet, "/api/snapshot", nil))
	if len(snap.Lines) != 0 {
		t.Errorf("transient line survived cancel: %+v", snap.Lines)
	}

	rec = do(t, s, http.MethodPost, "/api/pointer", pointerRequest{Pointer: 1, Kind: "hover"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown kind status = %d, want 400", rec.Code)
	}
}

func TestSnapshotPortlessElement(t *testing.T) {
	dir := t.TempDir()
	note := "type = \"note\"\nlabel = \"Note\"\nports = []\n"
	if err := os.WriteFile(filepath.Join(dir, "note.toml"), []byte(note), 0o644); err != nil {
		t.Fatal(err)
	}
	reg := blocktype.NewRegistry(blocktype.NewDirSource(dir))
	s := New(editor.New(reg, editor.WithIDFunc(seqIDs())), reg)
	place(t, s, "note", 0, 0)

	rec := do(t, s, http.MethodGet, "/api/snapshot", nil)
	if strings.Contains(rec.Body.String(), `"ports": null`) || strings.Contains(rec.Body.String(), `"ports":null`) {
		t.Errorf("ports serialized as null: %s", rec.Body)
	}
	snap := decodeBody[struct{ Elements []elementJSON }](t, rec)
	if len(snap.Elements) != 1 || snap.Elements[0].Ports == nil || len(snap.Elements[0].Ports) != 0 {
		t.Errorf("elements = %+v, want one element with an empty port list", snap.Elements)
	}
}

func TestUpdateBlock(t *testing.T) {
	s := newTestServer()
	b := place(t, s, "agent", 0, 0)

	rec := do(t, s, http.MethodPatch, "/api/blocks/"+b.ID, map[string]any{
		"position": map[string]float64{"x": 150, "y": 220},
		"data":     map[string]any{"temperature": 0.2},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	got := decodeBody[flowdoc.Block](t, rec)
	if got.Position.X != 150 || got.Position.Y != 220 || got.Data["temperature"] != 0.2 {
		t.Errorf("updated block = %+v", got)
	}

	if rec := do(t, s, http.MethodPatch, "/api/blocks/ghost", map[string]any{"position": map[string]float64{}}); rec.Code != http.StatusNotFound {
		t.Errorf("unknown block status = %d, want 404", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/blocks/ghost", nil); rec.Code != http.StatusNotFound {
		t.Errorf("GET unknown block status = %d, want 404", rec.Code)
	}
}

func TestImport(t *testing.T) {
	s := newTestServer()
	place(t, s, "agent", 0, 0)

	doc := flowdoc.Document{
		Blocks: []flowdoc.Block{
			{ID: "x", Type: "calculator", Position: geom.Point{X: 100, Y: 100}},
			{ID: "y", Type: "nope", Position: geom.Point{X: 300, Y: 100}},
		},
		Connections: []flowdoc.Connection{
			{From: flowdoc.Endpoint{BlockID: "x", Port: "out"}, To: flowdoc.Endpoint{BlockID: "y", Port: "in"}},
		},
	}
	rec := do(t, s, http.MethodPut, "/api/flow", doc)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	resp := decodeBody[importResponse](t, rec)
	if resp.Error == nil || resp.Error.Code != errors.ErrCodeImportIncomplete {
		t.Errorf("error = %+v, want IMPORT_INCOMPLETE", resp.Error)
	}
	if resp.Report.Blocks != 1 || !slices.Equal(resp.Report.SkippedBlocks, []string{"y"}) || resp.Report.SkippedConnections != 1 {
		t.Errorf("report = %+v", resp.Report)
	}

	blocks := decodeBody[[]flowdoc.Block](t, do(t, s, http.MethodGet, "/api/blocks", nil))
	if len(blocks) != 1 || blocks[0].ID != "x" {
		t.Errorf("blocks after import = %+v", blocks)
	}

	rec = do(t, s, http.MethodPut, "/api/flow", `{"blocks": [`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed import status = %d, want 400", rec.Code)
	}
}

func TestResetAndTypes(t *testing.T) {
	s := newTestServer()
	place(t, s, "agent", 0, 0)
	if rec := do(t, s, http.MethodDelete, "/api/flow", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("reset status %d", rec.Code)
	}
	if blocks := decodeBody[[]flowdoc.Block](t, do(t, s, http.MethodGet, "/api/blocks", nil)); len(blocks) != 0 {
		t.Errorf("blocks after reset = %+v", blocks)
	}

	types := decodeBody[map[string][]string](t, do(t, s, http.MethodGet, "/api/types", nil))
	if !slices.Contains(types["types"], "agent") {
		t.Errorf("types = %v", types)
	}
}

func TestScrollKeepsPositions(t *testing.T) {
	s := newTestServer()
	b := place(t, s, "agent", 10, 10)
	rec := do(t, s, http.MethodPost, "/api/scroll", scrollRequest{DX: -40, DY: 5})
	if !strings.Contains(rec.Body.String(), `"x":-40`) {
		t.Errorf("scroll response = %s", rec.Body)
	}
	got := decodeBody[flowdoc.Block](t, do(t, s, http.MethodGet, "/api/blocks/"+b.ID, nil))
	if got.Position.X != 10 || got.Position.Y != 10 {
		t.Errorf("position after scroll = %+v", got.Position)
	}
}

func TestMetrics(t *testing.T) {
	t.Cleanup(observability.Reset)
	m := NewMetrics("flowcanvas_test")
	m.Install()
	s := newTestServer(WithMetrics(m))

	place(t, s, "agent", 0, 0)
	do(t, s, http.MethodPost, "/api/blocks", map[string]any{"type": "nope"})

	body := do(t, s, http.MethodGet, "/metrics", nil).Body.String()
	for _, want := range []string{
		`flowcanvas_test_blocks_placed_total{type="agent"} 1`,
		`flowcanvas_test_errors_total{code="TEMPLATE_FETCH_FAILED",op="place"} 1`,
		`flowcanvas_test_http_requests_total{method="POST",route="/api/blocks",status="201"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestMetricsImportResult(t *testing.T) {
	m := NewMetrics("x")
	ctx := context.Background()
	m.OnImport(ctx, observability.ImportStats{}, 0, nil)
	m.OnImport(ctx, observability.ImportStats{}, 0, errors.New(errors.ErrCodeImportIncomplete, "partial"))
	m.OnImport(ctx, observability.ImportStats{}, 0, stderrors.New("boom"))

	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range families {
		if f.GetName() != "x_imports_total" {
			continue
		}
		if n := len(f.GetMetric()); n != 3 {
			t.Errorf("import results = %d, want 3", n)
		}
		return
	}
	t.Error("x_imports_total not gathered")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeInvalidInput, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeImportParse, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeUnknownBlock, "x"), http.StatusNotFound},
		{errors.New(errors.ErrCodeMissingEndpoint, "x"), http.StatusNotFound},
		{errors.New(errors.ErrCodeInvalidConnection, "x"), http.StatusUnprocessableEntity},
		{errors.New(errors.ErrCodeNetwork, "x"), http.StatusBadGateway},
		{stderrors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
