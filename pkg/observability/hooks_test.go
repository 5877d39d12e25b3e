package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooks(t *testing.T) {
	ctx := context.Background()

	Editor().OnBlockPlaced(ctx, "agent")
	Editor().OnBlockMoved(ctx, "b1")
	Editor().OnConnectionCreated(ctx, "b1", "b2")
	Editor().OnConnectionRejected(ctx, "b1", "b1", errors.New("self-loop"))
	Editor().OnExport(ctx, 2, 1)
	Editor().OnImport(ctx, ImportStats{Blocks: 2}, time.Millisecond, nil)
	Editor().OnError(ctx, "import", errors.New("boom"))

	Cache().OnCacheHit(ctx, "template")
	Cache().OnCacheMiss(ctx, "template")
	Cache().OnCacheSet(ctx, "template", 100)

	HTTP().OnRequest(ctx, "GET", "templates.example.com", "/agent.toml")
	HTTP().OnResponse(ctx, "GET", "templates.example.com", "/agent.toml", 200, time.Millisecond)
	HTTP().OnError(ctx, "GET", "templates.example.com", "/agent.toml", errors.New("timeout"))
}

func TestSetHooks(t *testing.T) {
	defer Reset()

	editor := &testEditorHooks{}
	cache := &testCacheHooks{}
	http := &testHTTPHooks{}

	SetEditorHooks(editor)
	SetCacheHooks(cache)
	SetHTTPHooks(http)

	if Editor() != editor {
		t.Error("SetEditorHooks did not register hooks")
	}
	if Cache() != cache {
		t.Error("SetCacheHooks did not register hooks")
	}
	if HTTP() != http {
		t.Error("SetHTTPHooks did not register hooks")
	}

	Reset()

	if _, ok := Editor().(NoopEditorHooks); !ok {
		t.Error("Reset did not restore editor hooks")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Reset did not restore cache hooks")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("Reset did not restore HTTP hooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	defer Reset()

	custom := &testEditorHooks{}
	SetEditorHooks(custom)

	SetEditorHooks(nil)

	if Editor() != custom {
		t.Error("SetEditorHooks(nil) should be ignored")
	}
}

func TestCustomHooksReceiveEvents(t *testing.T) {
	defer Reset()

	h := &testEditorHooks{}
	SetEditorHooks(h)

	Editor().OnBlockPlaced(context.Background(), "agent")
	Editor().OnError(context.Background(), "drop", errors.New("template missing"))

	if h.placed != 1 || h.errors != 1 {
		t.Errorf("placed=%d errors=%d, want 1 and 1", h.placed, h.errors)
	}
}

// Recorders
type testEditorHooks struct {
	NoopEditorHooks
	placed int
	errors int
}

func (h *testEditorHooks) OnBlockPlaced(context.Context, string) { h.placed++ }
func (h *testEditorHooks) OnError(context.Context, string, error) { h.errors++ }

type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
