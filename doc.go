// Package conhashmap implements a concurrent hash map for read-heavy
// workloads on shared-memory multi-core machines.
//
// # Quick Start
//
//	m := conhashmap.NewAppendOnly[string, int](64, khash.String)
//	m.Set("requests", 1)
//	v, ok := m.Get("requests") // v == 1, ok == true, no lock taken
//
// Two map types are offered, sharing the same bucket-chain implementation
// (internal/bucket) but differing in whether entries can be removed:
//
//   - [AppendOnlyMap]: Set and SetIfAbsent only. Get never takes a lock.
//   - [RemovableMap]: adds Remove, with safe deferred reclamation so a
//     concurrent Get never observes a node that Remove has already freed.
//     Readers must [RemovableMap.Join] once per goroutine before calling
//     Get, and [Handle.Close] when that goroutine stops using the map —
//     the Go-idiomatic stand-in for automatic thread-local registration,
//     since Go has no hook for "this goroutine is about to exit".
//
// # Concurrency model
//
// Writers on the same bucket are serialized by a per-bucket spinlock
// (internal/lock.Spin); readers never take it. In RemovableMap, safe
// reclamation of removed nodes is deferred using a logical clock
// (internal/clock) and a deletion queue (internal/gcqueue): a removed
// node is only actually reclaimed once every registered goroutine has
// acknowledged a tick past its removal. Call [RemovableMap.GarbageCollect]
// periodically (from any goroutine — there is no dedicated reaper
// requirement) to sweep entries that have become eligible.
//
// This package has no configuration, logging, or CLI surface: it is a
// data structure, not a service. Ready-made hash functions for common key
// types live in the sibling package conhashmap/khash; an OpenTelemetry
// metrics collector lives in the separate module conhashmap/otel so the
// core package pays no import cost for observability unless a caller
// opts in.
package conhashmap
