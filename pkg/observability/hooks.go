// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries emit events through the registered hooks; the defaults are
// no-ops, so nothing is recorded unless main installs an implementation.
// This keeps the optimizer and simulator packages free of any metrics
// backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetOptimizerHooks(&myOptimizerHooks{})
//	    observability.SetSimulatorHooks(&mySimulatorHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Simulator().OnSimulateStart(ctx, "surrogate", cfg.Stages)
//	res, err := sim.Simulate(ctx, cfg)
//	observability.Simulator().OnSimulateComplete(ctx, "surrogate", time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Optimizer Hooks
// =============================================================================

// OptimizerHooks receives events from an optimization run.
type OptimizerHooks interface {
	OnRunStart(ctx context.Context, runID, mode string, dims int)
	OnIteration(ctx context.Context, runID string, iteration int, tac float64)
	OnEvaluationFailed(ctx context.Context, runID string, err error)
	OnRunComplete(ctx context.Context, runID string, iterations int, converged bool, duration time.Duration, err error)
}

// =============================================================================
// Simulator Hooks
// =============================================================================

// SimulatorHooks receives events around every simulator call.
type SimulatorHooks interface {
	OnSimulateStart(ctx context.Context, simulator string, stages int)
	OnSimulateComplete(ctx context.Context, simulator string, duration time.Duration, err error)
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

// HTTPHooks receives events from HTTP client operations.
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

// NoopOptimizerHooks is a no-op implementation of OptimizerHooks.
type NoopOptimizerHooks struct{}

func (NoopOptimizerHooks) OnRunStart(context.Context, string, string, int)   {}
func (NoopOptimizerHooks) OnIteration(context.Context, string, int, float64) {}
func (NoopOptimizerHooks) OnEvaluationFailed(context.Context, string, error) {}
func (NoopOptimizerHooks) OnRunComplete(context.Context, string, int, bool, time.Duration, error) {
}

// NoopSimulatorHooks is a no-op implementation of SimulatorHooks.
type NoopSimulatorHooks struct{}

func (NoopSimulatorHooks) OnSimulateStart(context.Context, string, int)                    {}
func (NoopSimulatorHooks) OnSimulateComplete(context.Context, string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	optimizerHooks OptimizerHooks = NoopOptimizerHooks{}
	simulatorHooks SimulatorHooks = NoopSimulatorHooks{}
	cacheHooks     CacheHooks     = NoopCacheHooks{}
	httpHooks      HTTPHooks      = NoopHTTPHooks{}
	hooksMu        sync.RWMutex
)

// SetOptimizerHooks registers custom optimizer hooks.
// This should be called once at application startup before any run starts.
func SetOptimizerHooks(h OptimizerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		optimizerHooks = h
	}
}

// SetSimulatorHooks registers custom simulator hooks.
func SetSimulatorHooks(h SimulatorHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		simulatorHooks = h
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

// Optimizer returns the registered optimizer hooks.
func Optimizer() OptimizerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return optimizerHooks
}

// Simulator returns the registered simulator hooks.
func Simulator() SimulatorHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return simulatorHooks
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
	optimizerHooks = NoopOptimizerHooks{}
	simulatorHooks = NoopSimulatorHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
