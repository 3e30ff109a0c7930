// Package gcqueue implements the deletion queue that the reclamation
// protocol uses to delay reclaiming a logically-removed node until every
// goroutine using the owning map has acknowledged a tick past the
// deletion. Superseded values replaced by Set are not queued.
//
// Unlike the bucket locks and the clock registry, this queue is
// protected by a plain blocking mutex, not a spinlock: enqueue and
// garbage-collect are rare relative to reads, so there is nothing to gain
// from spinning here and something to lose if a goroutine is descheduled
// while holding it.
package gcqueue

import "sync"

// item is one pending reclamation: the tick at which the entry was
// logically removed, and the action run when it is reclaimed (RemovableMap
// uses it to count reclaimed nodes; tests use a probe here to observe
// exactly when reclamation happened). The queue holds no reference to the
// removed node itself; the Go garbage collector recovers the node's
// memory once nothing else references it.
type item struct {
	tick   uint64
	onReap func()
}

// Queue holds entries awaiting reclamation. It is safe for concurrent
// use by multiple goroutines.
type Queue struct {
	mu    sync.Mutex
	items []item
}

// New returns an empty deletion queue.
func New() *Queue {
	return &Queue{}
}

// Enqueue records an entry stamped at tick, to be reclaimed once
// GarbageCollect observes a minimum acknowledged tick >= tick. onReap is
// invoked exactly once, at the moment of reclamation, from whichever
// goroutine's GarbageCollect call reclaims it.
func (q *Queue) Enqueue(tick uint64, onReap func()) {
	q.mu.Lock()
	q.items = append(q.items, item{tick: tick, onReap: onReap})
	q.mu.Unlock()
}

// GarbageCollect reclaims every entry stamped at a tick <= min, calling
// its onReap and removing it from the queue. It returns the number of
// entries reclaimed; zero is a normal result, not an error.
func (q *Queue) GarbageCollect(min uint64) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.items[:0]
	reclaimed := 0
	for _, it := range q.items {
		if it.tick <= min {
			it.onReap()
			reclaimed++
			continue
		}
		kept = append(kept, it)
	}
	q.items = kept
	return reclaimed
}

// Len reports how many entries are currently awaiting reclamation.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Drain unconditionally reclaims every remaining entry regardless of
// tick, for use by a map's Close: correct only because the caller
// guarantees no traversal is still in flight.
func (q *Queue) Drain() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.items)
	for _, it := range q.items {
		it.onReap()
	}
	q.items = nil
	return n
}
