package conhashmap

import (
	"sync/atomic"

	"github.com/kolkov/conhashmap/internal/bucket"
)

// AppendOnlyMap is a concurrent hash map whose entries may be inserted
// and updated but never removed. Get takes no lock at all: it is safe
// purely because a chain is only ever grown, never unlinked, so every
// pointer a reader follows was published by a release-store before the
// reader's acquire-load observed it.
//
// The zero value is not usable; construct with NewAppendOnly.
type AppendOnlyMap[K comparable, V any] struct {
	buckets []bucket.Bucket[K, V]
	hash    func(K) uint64

	hits      atomic.Uint64
	misses    atomic.Uint64
	sets      atomic.Uint64
	setAbsent atomic.Uint64
}

// NewAppendOnly constructs a map with a fixed bucket array of the given
// size. bucketCount must be >= 1; callers wanting good chain-length
// distribution should prefer a prime or a power of two, though neither is
// enforced. hash computes the bucket index for a key — see package
// conhashmap/khash for ready-made hashers of common key types.
func NewAppendOnly[K comparable, V any](bucketCount int, hash func(K) uint64) *AppendOnlyMap[K, V] {
	if bucketCount < 1 {
		panic("conhashmap: bucketCount must be >= 1")
	}
	if hash == nil {
		panic("conhashmap: hash must not be nil")
	}
	return &AppendOnlyMap[K, V]{
		buckets: make([]bucket.Bucket[K, V], bucketCount),
		hash:    hash,
	}
}

func (m *AppendOnlyMap[K, V]) bucketFor(k K) *bucket.Bucket[K, V] {
	idx := m.hash(k) % uint64(len(m.buckets))
	return &m.buckets[idx]
}

// Get returns the current value for k and true, or the zero value and
// false if k has never been set. It takes no lock and performs no
// synchronization beyond atomic loads.
func (m *AppendOnlyMap[K, V]) Get(k K) (V, bool) {
	v, ok := m.bucketFor(k).LookupAppendOnly(k)
	if ok {
		m.hits.Add(1)
	} else {
		m.misses.Add(1)
	}
	return v, ok
}

// Set inserts k/v, or replaces the value of an existing k via an atomic
// pointer swap (never a torn in-place write of a wide value). Never
// fails.
func (m *AppendOnlyMap[K, V]) Set(k K, v V) {
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

// SetIfAbsent inserts k/v only if k has no existing entry. It returns the
// existing value and true if k was already present (v is discarded in
// that case), or the zero value and false if k/v was just inserted.
func (m *AppendOnlyMap[K, V]) SetIfAbsent(k K, v V) (V, bool) {
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

// Stats reports cumulative operation counts, for callers that want basic
// observability without pulling in the conhashmap/otel submodule.
func (m *AppendOnlyMap[K, V]) Stats() Stats {
	return Stats{
		Hits:        m.hits.Load(),
		Misses:      m.misses.Load(),
		Sets:        m.sets.Load(),
		SetIfAbsent: m.setAbsent.Load(),
	}
}

// Stats is a snapshot of a map's cumulative operation counters.
type Stats struct {
	Hits        uint64
	Misses      uint64
	Sets        uint64
	SetIfAbsent uint64
	Removes     uint64
	Reclaimed   uint64
}
