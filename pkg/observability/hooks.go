// Package observability lets a process watch the editor without the editor
// depending on a metrics backend.
//
// Libraries emit events through the hooks returned by [Editor], [Cache] and
// [HTTP]. Until main registers something else, those are no-ops. The serve
// command registers prometheus-backed hooks; tests register recorders.
//
//	observability.Editor().OnBlockPlaced(ctx, blockType)
//
// [EditorHooks.OnError] is the editor's error channel. Template fetch
// failures, parse failures and incomplete imports are reported there as well
// as being returned to the caller.
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// ImportStats summarizes one document import.
type ImportStats struct {
	Blocks             int
	Connections        int
	SkippedBlocks      int // template could not be loaded
	SkippedConnections int // endpoint missing after block restore
}

// EditorHooks receives editing and serialization events.
type EditorHooks interface {
	OnBlockPlaced(ctx context.Context, blockType string)
	OnBlockMoved(ctx context.Context, blockID string)
	OnConnectionCreated(ctx context.Context, from, to string)
	OnConnectionRejected(ctx context.Context, from, to string, reason error)
	OnExport(ctx context.Context, blocks, connections int)
	OnImport(ctx context.Context, stats ImportStats, duration time.Duration, err error)

	// OnError reports a failed operation; op names it ("place", "import").
	OnError(ctx context.Context, op string, err error)
}

// CacheHooks receives template cache events. keyType names the kind of
// entry, currently always "template".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events for requests to a remote template server.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	// OnError is called when no response arrived at all.
	OnError(ctx context.Context, method, host, path string, err error)
}

type NoopEditorHooks struct{}

func (NoopEditorHooks) OnBlockPlaced(context.Context, string)                       {}
func (NoopEditorHooks) OnBlockMoved(context.Context, string)                        {}
func (NoopEditorHooks) OnConnectionCreated(context.Context, string, string)         {}
func (NoopEditorHooks) OnConnectionRejected(context.Context, string, string, error) {}
func (NoopEditorHooks) OnExport(context.Context, int, int)                          {}
func (NoopEditorHooks) OnImport(context.Context, ImportStats, time.Duration, error) {}
func (NoopEditorHooks) OnError(context.Context, string, error)                      {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// hooks is replaced wholesale on every Set so readers never lock.
type hooks struct {
	editor EditorHooks
	cache  CacheHooks
	http   HTTPHooks
}

var current atomic.Pointer[hooks]

func init() { Reset() }

func update(fn func(h *hooks)) {
	for {
		old := current.Load()
		next := *old
		fn(&next)
		if current.CompareAndSwap(old, &next) {
			return
		}
	}
}

// SetEditorHooks registers h. A nil h is ignored.
func SetEditorHooks(h EditorHooks) {
	if h != nil {
		update(func(c *hooks) { c.editor = h })
	}
}

// SetCacheHooks registers h. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(c *hooks) { c.cache = h })
	}
}

// SetHTTPHooks registers h. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		update(func(c *hooks) { c.http = h })
	}
}

func Editor() EditorHooks { return current.Load().editor }
func Cache() CacheHooks   { return current.Load().cache }
func HTTP() HTTPHooks     { return current.Load().http }

// Reset restores the no-op hooks.
func Reset() {
	current.Store(&hooks{
		editor: NoopEditorHooks{},
		cache:  NoopCacheHooks{},
		http:   NoopHTTPHooks{},
	})
}
