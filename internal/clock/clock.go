// Package clock implements the logical-clock deferred-reclamation
// protocol: a monotonic tick counter plus a registry of per-goroutine
// acknowledgement slots. Each RemovableMap owns its own clock.
//
// A removal stamps the tick at which it happened. A node stamped at tick
// T is safe to reclaim once every registered goroutine has acknowledged
// (via Refresh) some tick >= T — tracked by reducing the registry to its
// minimum acknowledged tick. This is the same epoch-reclamation shape as
// the teacher's FastTrack vector clocks, simplified from "one counter per
// thread, all compared pairwise" down to "one counter per thread, reduced
// to a single minimum" because reclamation only needs a lower bound, not
// a full happens-before partial order.
package clock

import (
	"sync/atomic"

	"github.com/kolkov/conhashmap/internal/lock"
)

// Global is a monotonic tick counter plus a registry of live Handles.
// NewRemovable creates one Global per map. Sharing one Global between
// several maps would only make reclamation more conservative (never
// early), never less safe.
type Global struct {
	tick atomic.Uint64

	mu      lock.SpinRW
	handles []*Handle
}

// New creates an empty global clock, its registry starting with no
// registered handles.
func New() *Global {
	return &Global{}
}

// Advance pre-increments the global tick and returns the new value. Used
// by a remover to stamp the deletion tick of the node it is unlinking.
func (g *Global) Advance() uint64 {
	return g.tick.Add(1)
}

// Current returns the current global tick without advancing it. Used by
// a reader to publish its acknowledgement via Handle.Refresh.
func (g *Global) Current() uint64 {
	return g.tick.Load()
}

// Join registers a new Handle for the calling goroutine and returns it.
// The goroutine must call Handle.Close when it stops touching the map;
// until then it is counted by Min and must periodically call Refresh or
// reclamation stalls behind it.
func (g *Global) Join() *Handle {
	h := &Handle{owner: g}
	g.mu.Lock()
	g.handles = append(g.handles, h)
	g.mu.Unlock()
	return h
}

func (g *Global) leave(h *Handle) {
	g.mu.Lock()
	for i, other := range g.handles {
		if other == h {
			g.handles = append(g.handles[:i], g.handles[i+1:]...)
			break
		}
	}
	g.mu.Unlock()
}

// Min returns the smallest acknowledged tick across every registered
// Handle. If the registry is empty it returns the current global tick, so
// a deletion queue drains cleanly once every goroutine using the map has
// closed its handle (e.g. at shutdown).
func (g *Global) Min() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if len(g.handles) == 0 {
		return g.tick.Load()
	}

	min := g.handles[0].local.Load()
	for _, h := range g.handles[1:] {
		if v := h.local.Load(); v < min {
			min = v
		}
	}
	return min
}

// Handle is one goroutine's acknowledgement slot: the highest global tick
// that goroutine has observed. A deletion stamped at or before a
// goroutine's last Refresh is guaranteed not to be referenced by that
// goroutine's in-flight reads.
type Handle struct {
	owner *Global
	local atomic.Uint64
}

// Refresh publishes the current global tick into this handle, acting as
// this goroutine's acknowledgement of every deletion stamped at or before
// that tick. A removable-map read calls this before it starts walking a
// bucket chain.
func (h *Handle) Refresh() uint64 {
	t := h.owner.Current()
	h.local.Store(t)
	return t
}

// Acknowledged returns the tick this handle last published via Refresh.
func (h *Handle) Acknowledged() uint64 {
	return h.local.Load()
}

// Close unregisters the handle. After Close, this goroutine is invisible
// to Min — it must not use the handle again.
func (h *Handle) Close() {
	h.owner.leave(h)
}
