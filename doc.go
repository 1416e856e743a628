// Package store provides the synchronous observable primitives the paqs state
// engine is built on.
//
// A Writable holds a mutable value and notifies subscribers, in subscription
// order, every time the value is replaced. A Derived holds a read-only value
// computed from one or more sources and is recomputed eagerly whenever any
// source changes.
//
// Data flow:
//
//	Writable.Set -> recompute dependents (rank order) -> notify Writable subscribers
//	             -> notify each dependent's subscribers (rank order)
//
// Every store is a vertex of an explicit dependency graph. A derived vertex is
// ranked one above its highest-ranked source, so recomputing the downstream
// set in rank order guarantees that no combine function ever sees a mix of
// fresh and stale source values, and no subscriber is notified before every
// dependent has settled. Sources must exist before a dependent is created, so
// the graph is acyclic by construction.
//
// Subscribe replays the current value immediately. A Set issued from inside a
// notification pass on the same store is queued; the running pass completes
// and another pass delivers the latest value.
package store
