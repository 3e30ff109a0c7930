// Package bucket implements the singly linked chain that hangs off each
// slot of the map's fixed bucket array: the Node type nodes are made of,
// and the Bucket that holds a chain's head pointer plus the spin-mutex
// writers serialize on.
//
// Readers never take the bucket's lock. In append-only mode a chain only
// ever grows, so a reader walking it sees a consistent, if possibly
// stale, snapshot. In removable mode a reader additionally checks each
// node's delete tick and restarts the walk from a freshly loaded head if
// it encounters one mid-traversal — see LookupRemovable.
package bucket

import (
	"sync/atomic"

	"github.com/kolkov/conhashmap/internal/lock"
)

// Node is one key/value entry in a bucket chain. The key is immutable
// once the node is constructed; the value is held behind an extra
// pointer indirection so replacing it is a single atomic pointer swap,
// never a torn in-place write of a wide value.
//
// deleteTick is zero for a live node and is set exactly once, by the
// writer that unlinks the node, to the global tick at which the removal
// happened. Append-only maps never touch deleteTick.
type Node[K comparable, V any] struct {
	key        K
	value      atomic.Pointer[V]
	next       atomic.Pointer[Node[K, V]]
	deleteTick atomic.Uint64
}

// NewNode allocates a live node for k, v with no successor.
func NewNode[K comparable, V any](k K, v V) *Node[K, V] {
	n := &Node[K, V]{key: k}
	n.value.Store(&v)
	return n
}

// Key returns the node's immutable key.
func (n *Node[K, V]) Key() K {
	return n.key
}

// LoadValue returns the node's current value. Safe to call without the
// bucket lock: the returned value is whichever version was published
// most recently as of this call, never a torn read.
func (n *Node[K, V]) LoadValue() V {
	return *n.value.Load()
}

// SwapValue publishes v as the node's new value and returns the
// previously published value pointer. The caller owns the returned
// pointer's lifetime from this point — under the indirection discipline
// it must not be freed until every goroutine that might still hold a
// reference to it has acknowledged a tick past this swap.
func (n *Node[K, V]) SwapValue(v V) *V {
	return n.value.Swap(&v)
}

// Next returns the node's successor, or nil at the end of the chain.
func (n *Node[K, V]) Next() *Node[K, V] {
	return n.next.Load()
}

// DeleteTick returns the tick this node was logically deleted at, or 0
// if it is still live.
func (n *Node[K, V]) DeleteTick() uint64 {
	return n.deleteTick.Load()
}

// MarkDeleted stamps the node's delete tick. Callers must hold the
// owning bucket's writer lock and must have already unlinked the node
// from the chain (§4.4's unlink-before-stamp ordering: a concurrent
// reader that loaded the old head before the unlink and then reaches
// this node must observe DeleteTick() != 0 and restart).
func (n *Node[K, V]) MarkDeleted(tick uint64) {
	n.deleteTick.Store(tick)
}

// Bucket is one slot of the map's fixed array: an atomically published
// chain head plus the spin-mutex writers acquire before mutating it.
type Bucket[K comparable, V any] struct {
	head atomic.Pointer[Node[K, V]]
	mu   lock.Spin
}

// Lock acquires the bucket's writer lock. Readers never call this.
func (b *Bucket[K, V]) Lock() {
	b.mu.Lock()
}

// Unlock releases the bucket's writer lock.
func (b *Bucket[K, V]) Unlock() {
	b.mu.Unlock()
}

// Head returns the chain's current head, an atomic acquire-load.
func (b *Bucket[K, V]) Head() *Node[K, V] {
	return b.head.Load()
}

// FindLocked walks the chain looking for k. The caller must hold the
// writer lock: under that lock the chain is guaranteed free of logically
// deleted nodes (removable mode unlinks before it stamps), so no delete
// check is needed here, unlike the lock-free reader paths.
func (b *Bucket[K, V]) FindLocked(k K) (node, prev *Node[K, V]) {
	cur := b.head.Load()
	for cur != nil {
		if cur.key == k {
			return cur, prev
		}
		prev = cur
		cur = cur.next.Load()
	}
	return nil, nil
}

// PrependLocked publishes n as the new chain head with n.next set to the
// previous head. The caller must hold the writer lock. The next-pointer
// store happens before the head publication so a concurrent reader that
// acquires the new head already sees a fully initialized node.
func (b *Bucket[K, V]) PrependLocked(n *Node[K, V]) {
	n.next.Store(b.head.Load())
	b.head.Store(n)
}

// UnlinkLocked removes node from the chain, relinking prev.next (or the
// bucket head, if node was first) to node's successor. The caller must
// hold the writer lock and must call this before calling
// node.MarkDeleted, per the unlink-before-stamp ordering.
func (b *Bucket[K, V]) UnlinkLocked(node, prev *Node[K, V]) {
	if prev != nil {
		prev.next.Store(node.next.Load())
		return
	}
	b.head.Store(node.next.Load())
}

// LookupAppendOnly walks the chain with no synchronization beyond atomic
// loads. Safe because append-only chains never unlink a node: every
// pointer a reader follows was either always valid or became valid by a
// release-store this read's acquire-load pairs with.
func (b *Bucket[K, V]) LookupAppendOnly(k K) (V, bool) {
	for cur := b.head.Load(); cur != nil; cur = cur.next.Load() {
		if cur.key == k {
			return cur.LoadValue(), true
		}
	}
	var zero V
	return zero, false
}

// LookupRemovable walks the chain exactly like LookupAppendOnly except
// that encountering a logically deleted node aborts the current walk and
// restarts it from a freshly loaded head. Termination: a restart only
// happens on a node that is already deleted, and each restart re-reads a
// head that has shed at least that one deleted node from what this
// particular lookup has seen so far.
func (b *Bucket[K, V]) LookupRemovable(k K) (V, bool) {
	for {
		restarted := false
		cur := b.head.Load()
		for cur != nil {
			if cur.DeleteTick() != 0 {
				restarted = true
				break
			}
			if cur.key == k {
				return cur.LoadValue(), true
			}
			cur = cur.next.Load()
		}
		if !restarted {
			var zero V
			return zero, false
		}
	}
}
