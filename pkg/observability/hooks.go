// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about editing sessions, storage operations, and HTTP requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (Prometheus in the server, anything else elsewhere)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetEditorHooks(&myEditorHooks{})
//	    observability.SetStorageHooks(&myStorageHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Editor().OnConnect(presetOut, presetIn)
//	observability.Storage().OnSet(ctx, "redis", len(data))
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Editor Hooks
// =============================================================================

// EditorHooks receives events from editing sessions. Editors are
// synchronous, so these hooks carry no context.
type EditorHooks interface {
	// Graph mutations
	OnNodeCreated(preset string)
	OnNodeDeleted(preset string)
	OnConnect(outType, inType string)
	OnDisconnect()

	// OnConnectionRejected records a refused connection; reason is the
	// rejection sentinel's message.
	OnConnectionRejected(reason string)

	// Persistence events
	OnSave(nodes, edges int, duration time.Duration, err error)
	OnLoad(nodes, edges, skipped int, duration time.Duration, err error)
}

// =============================================================================
// Storage Hooks
// =============================================================================

// StorageHooks receives events from storage backends.
type StorageHooks interface {
	// OnHit records a successful read.
	OnHit(ctx context.Context, backend string)

	// OnMiss records a read of an absent key.
	OnMiss(ctx context.Context, backend string)

	// OnSet records a write.
	OnSet(ctx context.Context, backend string, size int)

	// OnError records a backend failure.
	OnError(ctx context.Context, backend, op string, err error)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP server.
type HTTPHooks interface {
	// OnRequest records a completed request. Route is the matched route
	// pattern, not the raw path.
	OnRequest(ctx context.Context, method, route string, statusCode int, duration time.Duration)

	// OnSessionOpen and OnSessionClose bracket a live editing session.
	OnSessionOpen(ctx context.Context)
	OnSessionClose(ctx context.Context, events int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEditorHooks is a no-op implementation of EditorHooks.
type NoopEditorHooks struct{}

func (NoopEditorHooks) OnNodeCreated(string)                       {}
func (NoopEditorHooks) OnNodeDeleted(string)                       {}
func (NoopEditorHooks) OnConnect(string, string)                   {}
func (NoopEditorHooks) OnDisconnect()                              {}
func (NoopEditorHooks) OnConnectionRejected(string)                {}
func (NoopEditorHooks) OnSave(int, int, time.Duration, error)      {}
func (NoopEditorHooks) OnLoad(int, int, int, time.Duration, error) {}

// NoopStorageHooks is a no-op implementation of StorageHooks.
type NoopStorageHooks struct{}

func (NoopStorageHooks) OnHit(context.Context, string)                  {}
func (NoopStorageHooks) OnMiss(context.Context, string)                 {}
func (NoopStorageHooks) OnSet(context.Context, string, int)             {}
func (NoopStorageHooks) OnError(context.Context, string, string, error) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnSessionOpen(context.Context)                                 {}
func (NoopHTTPHooks) OnSessionClose(context.Context, int)                           {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	editorHooks  EditorHooks  = NoopEditorHooks{}
	storageHooks StorageHooks = NoopStorageHooks{}
	httpHooks    HTTPHooks    = NoopHTTPHooks{}
	hooksMu      sync.RWMutex
)

// SetEditorHooks registers custom editor hooks.
// This should be called once at application startup before any editor is created.
func SetEditorHooks(h EditorHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		editorHooks = h
	}
}

// SetStorageHooks registers custom storage hooks.
// This should be called once at application startup before any storage operations.
func SetStorageHooks(h StorageHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storageHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before the server starts.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Editor returns the registered editor hooks.
func Editor() EditorHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return editorHooks
}

// Storage returns the registered storage hooks.
func Storage() StorageHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storageHooks
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
	editorHooks = NoopEditorHooks{}
	storageHooks = NoopStorageHooks{}
	httpHooks = NoopHTTPHooks{}
}
