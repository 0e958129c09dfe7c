// Package observability provides hooks for metrics and tracing.
//
// Libraries emit events through a small set of hook interfaces; the process
// registers one implementation at startup. The defaults are no-ops, so
// packages can be used and tested without any metrics backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	metrics := observability.NewPrometheus(prometheus.DefaultRegisterer)
//	observability.SetFetchHooks(metrics)
//	observability.SetCacheHooks(metrics)
//	observability.SetHTTPHooks(metrics)
//
// Libraries call hooks to emit events:
//
//	observability.Fetch().OnFetchStart(ctx, owner, repo)
//	// ... fan out sub-resource requests ...
//	observability.Fetch().OnFetchComplete(ctx, owner, repo, failed, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Fetch Hooks
// =============================================================================

// FetchHooks receives events from the aggregate fetcher.
type FetchHooks interface {
	// OnFetchStart records the start of a fan-out for one repository.
	OnFetchStart(ctx context.Context, owner, repo string)

	// OnFetchComplete records the join of a fan-out. failed is the number of
	// sub-resources that did not succeed.
	OnFetchComplete(ctx context.Context, owner, repo string, failed int, duration time.Duration)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit on the named tier.
	OnCacheHit(ctx context.Context, tier string)

	// OnCacheMiss records a cache miss on the named tier.
	OnCacheMiss(ctx context.Context, tier string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, tier string, size int)

	// OnCacheError records a tier failure that was recovered locally.
	OnCacheError(ctx context.Context, tier, op string, err error)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from upstream HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopFetchHooks is a no-op implementation of FetchHooks.
type NoopFetchHooks struct{}

func (NoopFetchHooks) OnFetchStart(context.Context, string, string)                        {}
func (NoopFetchHooks) OnFetchComplete(context.Context, string, string, int, time.Duration) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)                  {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)                 {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int)             {}
func (NoopCacheHooks) OnCacheError(context.Context, string, string, error) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	fetchHooks FetchHooks = NoopFetchHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	httpHooks  HTTPHooks  = NoopHTTPHooks{}
	hooksMu    sync.RWMutex
)

// SetFetchHooks registers custom fetch hooks.
// This should be called once at application startup.
func SetFetchHooks(h FetchHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		fetchHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any HTTP operations.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Fetch returns the registered fetch hooks.
func Fetch() FetchHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return fetchHooks
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
	fetchHooks = NoopFetchHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
