// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register hooks
// at startup to receive events about layout assembly, stretch gestures, cut
// passes, cache operations and HTTP requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Stretch and cut hooks are invoked from inside pointer-move handling, so
// implementations must return quickly and must not block.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetStretchHooks(&myStretchHooks{})
//	    observability.SetCutHooks(&myCutHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Assembly().OnAssembleStart(ctx, systemID, columns)
//	// ... assemble ...
//	observability.Assembly().OnAssembleComplete(ctx, systemID, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Assembly Hooks
// =============================================================================

// AssemblyHooks receives events from layout assembly and alternative
// resolution.
type AssemblyHooks interface {
	OnAssembleStart(ctx context.Context, systemID string, columns int)
	OnAssembleComplete(ctx context.Context, systemID string, duration time.Duration, err error)

	OnResolveComplete(ctx context.Context, systemID string, alternatives int, duration time.Duration, err error)
}

// =============================================================================
// Stretch Hooks
// =============================================================================

// StretchHooks receives gesture events from the stretch engines.
type StretchHooks interface {
	OnGestureStart(axis string, side int)
	OnSwap(axis string, from, to string)
	OnGestureEnd(axis string, committed bool)
}

// =============================================================================
// Cut Hooks
// =============================================================================

// CutHooks receives events from the cut manager.
type CutHooks interface {
	// OnCutHit records a memoized pass that performed no boolean operations.
	OnCutHit(memberID string)

	// OnCutRecompute records a pass that performed ops boolean operations.
	OnCutRecompute(memberID string, ops int, duration time.Duration)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP adapter.
type HTTPHooks interface {
	// OnRequest records an incoming HTTP request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records the response status and latency.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopAssemblyHooks is a no-op implementation of AssemblyHooks.
type NoopAssemblyHooks struct{}

func (NoopAssemblyHooks) OnAssembleStart(context.Context, string, int)                         {}
func (NoopAssemblyHooks) OnAssembleComplete(context.Context, string, time.Duration, error)     {}
func (NoopAssemblyHooks) OnResolveComplete(context.Context, string, int, time.Duration, error) {}

// NoopStretchHooks is a no-op implementation of StretchHooks.
type NoopStretchHooks struct{}

func (NoopStretchHooks) OnGestureStart(string, int)    {}
func (NoopStretchHooks) OnSwap(string, string, string) {}
func (NoopStretchHooks) OnGestureEnd(string, bool)     {}

// NoopCutHooks is a no-op implementation of CutHooks.
type NoopCutHooks struct{}

func (NoopCutHooks) OnCutHit(string)                           {}
func (NoopCutHooks) OnCutRecompute(string, int, time.Duration) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	assemblyHooks AssemblyHooks = NoopAssemblyHooks{}
	stretchHooks  StretchHooks  = NoopStretchHooks{}
	cutHooks      CutHooks      = NoopCutHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

// SetAssemblyHooks registers custom assembly hooks.
// This should be called once at application startup.
func SetAssemblyHooks(h AssemblyHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		assemblyHooks = h
	}
}

// SetStretchHooks registers custom stretch hooks.
func SetStretchHooks(h StretchHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		stretchHooks = h
	}
}

// SetCutHooks registers custom cut hooks.
func SetCutHooks(h CutHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cutHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Assembly returns the registered assembly hooks.
func Assembly() AssemblyHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return assemblyHooks
}

// Stretch returns the registered stretch hooks.
func Stretch() StretchHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return stretchHooks
}

// Cut returns the registered cut hooks.
func Cut() CutHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cutHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	assemblyHooks = NoopAssemblyHooks{}
	stretchHooks = NoopStretchHooks{}
	cutHooks = NoopCutHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
