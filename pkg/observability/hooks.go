// Package observability lets a host process observe the engine.
//
// The engine emits events at its interesting points: every recompute and the
// decision it took, every malformed analyzer entry it skipped, every export it
// rendered and every message it moved over a transport. Nothing here depends on
// a metrics backend; consumers register implementations at startup.
//
// Packages emit through the package-level accessors:
//
//	observability.Engine().OnRecompute(ctx, "rebuild", len(g.Nodes), len(g.Edges), elapsed)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Engine Hooks
// =============================================================================

// EngineHooks receives events from graph recomputation.
type EngineHooks interface {
	// OnRecompute records one stabilizer pass and the decision it took.
	OnRecompute(ctx context.Context, decision string, nodes, edges int, duration time.Duration)

	// OnMalformed records an analyzer entry that was skipped.
	OnMalformed(ctx context.Context, code string, err error)

	// OnFreeze records that an analysis error left the previous graph in place.
	OnFreeze(ctx context.Context, message string)

	// OnRebuild records that a fresh graph generation was started.
	OnRebuild(ctx context.Context, generation string)
}

// RenderHooks receives events from graph exports.
type RenderHooks interface {
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives artifact cache lookups and writes. keyType is the
// key prefix, e.g. "export".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Transport Hooks
// =============================================================================

// TransportHooks receives events from message transports such as Redis pub/sub.
type TransportHooks interface {
	// OnReceive records an inbound message on channel.
	OnReceive(ctx context.Context, channel string, size int)

	// OnPublish records an outbound message and how long publishing took.
	OnPublish(ctx context.Context, channel string, size int, duration time.Duration)

	// OnError records a transport failure.
	OnError(ctx context.Context, channel string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEngineHooks is embedded by tests that only care about some events.
type NoopEngineHooks struct{}

func (NoopEngineHooks) OnRecompute(context.Context, string, int, int, time.Duration) {}
func (NoopEngineHooks) OnMalformed(context.Context, string, error)                  {}
func (NoopEngineHooks) OnFreeze(context.Context, string)                            {}
func (NoopEngineHooks) OnRebuild(context.Context, string)                           {}

type NoopRenderHooks struct{}

func (NoopRenderHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopRenderHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopTransportHooks struct{}

func (NoopTransportHooks) OnReceive(context.Context, string, int)                {}
func (NoopTransportHooks) OnPublish(context.Context, string, int, time.Duration) {}
func (NoopTransportHooks) OnError(context.Context, string, error)                {}

// =============================================================================
// Registry
// =============================================================================

// slot holds one registered hook set. Setting nil keeps the current value.
type slot[T any] struct {
	mu  sync.RWMutex
	cur T
}

func (s *slot[T]) load() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

func (s *slot[T]) store(h T) {
	if any(h) == nil {
		return
	}
	s.mu.Lock()
	s.cur = h
	s.mu.Unlock()
}

var (
	engineSlot    = &slot[EngineHooks]{cur: NoopEngineHooks{}}
	renderSlot    = &slot[RenderHooks]{cur: NoopRenderHooks{}}
	cacheSlot     = &slot[CacheHooks]{cur: NoopCacheHooks{}}
	transportSlot = &slot[TransportHooks]{cur: NoopTransportHooks{}}
)

// SetEngineHooks registers engine hooks. Call it once at startup.
func SetEngineHooks(h EngineHooks) { engineSlot.store(h) }

func SetRenderHooks(h RenderHooks) { renderSlot.store(h) }

func SetCacheHooks(h CacheHooks) { cacheSlot.store(h) }

func SetTransportHooks(h TransportHooks) { transportSlot.store(h) }

func Engine() EngineHooks       { return engineSlot.load() }
func Render() RenderHooks       { return renderSlot.load() }
func Cache() CacheHooks         { return cacheSlot.load() }
func Transport() TransportHooks { return transportSlot.load() }

// Reset restores the no-op hooks. Tests that register hooks defer it.
func Reset() {
	engineSlot.store(NoopEngineHooks{})
	renderSlot.store(NoopRenderHooks{})
	cacheSlot.store(NoopCacheHooks{})
	transportSlot.store(NoopTransportHooks{})
}
