// Package observability lets a host program watch slip rendering without the
// rendering packages knowing who is watching.
//
// The pipeline reports roster extraction and room renders, the runner
// reports artifact cache traffic and the HTTP server reports requests. Each
// category has a hook interface with a no-op implementation; the program
// swaps in its own at startup:
//
//	observability.SetPipelineHooks(renderMetrics{})
//	observability.SetCacheHooks(renderMetrics{})
//
// Embed the Noop types to implement only the events of interest.
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// PipelineHooks observes extraction and rendering.
type PipelineHooks interface {
	OnExtractStart(ctx context.Context)
	OnExtractComplete(ctx context.Context, students int, duration time.Duration, err error)

	// event is "testpage" for alignment pages, with an empty room.
	OnRenderStart(ctx context.Context, event, room string)
	OnRenderComplete(ctx context.Context, event, room string, pages int, duration time.Duration, err error)
}

// CacheHooks observes artifact cache lookups and writes.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks observes server requests.
type HTTPHooks interface {
	// OnRequest fires before routing, with the raw path.
	OnRequest(ctx context.Context, method, path string)
	// OnResponse fires once the handler returns. route is the matched chi
	// pattern such as "/print/{event}", or empty when nothing matched.
	OnResponse(ctx context.Context, method, route string, status int, duration time.Duration)
}

type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnExtractStart(context.Context)                                {}
func (NoopPipelineHooks) OnExtractComplete(context.Context, int, time.Duration, error) {}
func (NoopPipelineHooks) OnRenderStart(context.Context, string, string)                 {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, string, int, time.Duration, error) {
}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// registry is an immutable snapshot of the installed hooks. Setters publish
// a modified copy, so readers on hot paths never lock.
type registry struct {
	pipeline PipelineHooks
	cache    CacheHooks
	http     HTTPHooks
}

var noop = registry{
	pipeline: NoopPipelineHooks{},
	cache:    NoopCacheHooks{},
	http:     NoopHTTPHooks{},
}

var current atomic.Pointer[registry]

func init() { Reset() }

func update(fn func(*registry)) {
	for {
		old := current.Load()
		next := *old
		fn(&next)
		if current.CompareAndSwap(old, &next) {
			return
		}
	}
}

// SetPipelineHooks installs h. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		update(func(r *registry) { r.pipeline = h })
	}
}

// SetCacheHooks installs h. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(r *registry) { r.cache = h })
	}
}

// SetHTTPHooks installs h. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		update(func(r *registry) { r.http = h })
	}
}

func Pipeline() PipelineHooks { return current.Load().pipeline }
func Cache() CacheHooks       { return current.Load().cache }
func HTTP() HTTPHooks         { return current.Load().http }

// Reset reinstalls the no-op hooks. Tests that install hooks defer it.
func Reset() {
	r := noop
	current.Store(&r)
}
