package conhashmap

import (
	"sync/atomic"

	"github.com/kolkov/conhashmap/errors"
	"github.com/kolkov/conhashmap/internal/bucket"
	"github.com/kolkov/conhashmap/internal/clock"
	"github.com/kolkov/conhashmap/internal/gcqueue"
)

// RemovableMap is a concurrent hash map that additionally supports
// Remove. Removed nodes are not reclaimed immediately: they are unlinked,
// their delete tick is handed to a deletion queue, and they are counted as
// reclaimed only once every
// goroutine registered with the map (via Join) has acknowledged a tick
// past the removal. This is what makes a lock-free Get safe even though
// the map supports removal — see the package doc for the full argument.
//
// The zero value is not usable; construct with NewRemovable.
type RemovableMap[K comparable, V any] struct {
	buckets []bucket.Bucket[K, V]
	hash    func(K) uint64

	clk     *clock.Global
	pending *gcqueue.Queue // reclamation queue for unlinked nodes

	hits      atomic.Uint64
	misses    atomic.Uint64
	sets      atomic.Uint64
	setAbsent atomic.Uint64
	removes   atomic.Uint64
	reclaimed atomic.Uint64
}

// Handle is one goroutine's registration with a RemovableMap, required
// before that goroutine may call Get. It is the Go-idiomatic stand-in
// for the spec's automatic thread-local register-on-construct /
// unregister-on-destroy contract: Go has no destructor hook a goroutine
// could use to unregister itself automatically, so the caller must call
// Close explicitly when it stops using the map.
type Handle struct {
	inner *clock.Handle
}

// Close unregisters the handle. After Close, the owning goroutine is
// invisible to GarbageCollect's reclamation threshold and must not reuse
// this handle.
func (h *Handle) Close() {
	h.inner.Close()
}

// NewRemovable constructs a map with a fixed bucket array of the given
// size. bucketCount must be >= 1. hash computes the bucket index for a
// key — see package conhashmap/khash for ready-made hashers.
func NewRemovable[K comparable, V any](bucketCount int, hash func(K) uint64) *RemovableMap[K, V] {
	if bucketCount < 1 {
		panic("conhashmap: bucketCount must be >= 1")
	}
	if hash == nil {
		panic("conhashmap: hash must not be nil")
	}
	return &RemovableMap[K, V]{
		buckets: make([]bucket.Bucket[K, V], bucketCount),
		hash:    hash,
		clk:     clock.New(),
		pending: gcqueue.New(),
	}
}

func (m *RemovableMap[K, V]) bucketFor(k K) *bucket.Bucket[K, V] {
	idx := m.hash(k) % uint64(len(m.buckets))
	return &m.buckets[idx]
}

// Join registers the calling goroutine and returns a Handle it must pass
// to every subsequent Get call. Call Close on the handle once this
// goroutine stops using the map, or reclamation of entries removed after
// that point will stall indefinitely behind it.
func (m *RemovableMap[K, V]) Join() *Handle {
	return &Handle{inner: m.clk.Join()}
}

// Get refreshes h's acknowledged tick and then looks up k. It takes no
// bucket lock; encountering a logically deleted node mid-walk aborts and
// restarts the walk from a freshly loaded bucket head.
func (m *RemovableMap[K, V]) Get(h *Handle, k K) (V, bool) {
	h.inner.Refresh()
	v, ok := m.bucketFor(k).LookupRemovable(k)
	if ok {
		m.hits.Add(1)
	} else {
		m.misses.Add(1)
	}
	return v, ok
}

// Set inserts k/v, or replaces the value of an existing k via an atomic
// pointer swap. Never fails.
func (m *RemovableMap[K, V]) Set(k K, v V) {
	m.sets.Add(1)
	b := m.bucketFor(k)
	b.Lock()
	defer b.Unlock()

	if node, _ := b.FindLocked(k); node != nil {
		node.SwapValue(v)
		return
	}
	b.PrependLocked(bucket.NewNode(k, v))
}

// SetIfAbsent inserts k/v only if k has no existing entry, returning the
// existing value and true if one was found (v is discarded), or the zero
// value and false if k/v was just inserted.
func (m *RemovableMap[K, V]) SetIfAbsent(k K, v V) (V, bool) {
	m.setAbsent.Add(1)
	b := m.bucketFor(k)
	b.Lock()
	defer b.Unlock()

	if node, _ := b.FindLocked(k); node != nil {
		return node.LoadValue(), true
	}
	b.PrependLocked(bucket.NewNode(k, v))
	var zero V
	return zero, false
}

// Remove unlinks the node for k, stamps it with a freshly advanced
// global tick, and enqueues it for deferred reclamation. It returns a
// KeyNotFound error (see package conhashmap/errors) if k has no live
// entry.
//
// The unlink happens before the tick is stamped, exactly as §4.4
// requires: a concurrent reader that loaded the old bucket head before
// this unlink and then reaches this node during its walk is guaranteed
// to observe a non-zero delete tick and restart, never a stale value.
func (m *RemovableMap[K, V]) Remove(k K) error {
	b := m.bucketFor(k)
	b.Lock()
	node, prev := b.FindLocked(k)
	if node == nil {
		b.Unlock()
		return errors.NewKeyNotFound(k)
	}
	b.UnlinkLocked(node, prev)
	tick := m.clk.Advance()
	node.MarkDeleted(tick)
	b.Unlock()

	m.removes.Add(1)
	m.pending.Enqueue(tick, func() { m.reclaimed.Add(1) })
	return nil
}

// GarbageCollect reclaims every removed node whose delete tick is at or
// below the minimum tick acknowledged across every goroutine still
// registered via Join, and returns how many were reclaimed. Zero is a
// normal result, not an error, and may be called from any goroutine —
// there is no dedicated-reaper requirement.
func (m *RemovableMap[K, V]) GarbageCollect() int {
	return m.pending.GarbageCollect(m.clk.Min())
}

// Close unconditionally reclaims every node still awaiting reclamation,
// regardless of acknowledged ticks, and returns how many were reclaimed.
// Correct only when the caller guarantees no Get is still in flight.
func (m *RemovableMap[K, V]) Close() int {
	return m.pending.Drain()
}

// Stats reports cumulative operation counts, for callers that want basic
// observability without pulling in the conhashmap/otel submodule.
func (m *RemovableMap[K, V]) Stats() Stats {
	return Stats{
		Hits:        m.hits.Load(),
		Misses:      m.misses.Load(),
		Sets:        m.sets.Load(),
		SetIfAbsent: m.setAbsent.Load(),
		Removes:     m.removes.Load(),
		Reclaimed:   m.reclaimed.Load(),
	}
}
