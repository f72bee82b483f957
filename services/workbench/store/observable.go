// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package store provides the observable application state of the workbench.
//
// # Description
//
// Each store owns one slice of state (search results, cluster results, the
// selected data source) and publishes every committed mutation to its
// subscribers. Derived values are plain functions of a snapshot; stores
// never cache them.
//
// # Thread Safety
//
// Stores are safe for concurrent use. Writes may come from backend
// goroutines; the TUI hops notifications onto the bubbletea event loop.
//
// # Snapshot Ownership
//
// Snapshots share slices with the store. Writers must replace slices
// instead of mutating them in place, and readers must treat snapshots as
// immutable.
package store

import (
	"sync"

	"github.com/AleutianAI/ClusterWorkbench/services/workbench/telemetry"
)

// Listener receives the committed state after a mutation.
type Listener[T any] func(state T)

// Observable holds a value of type T and notifies subscribers on change.
//
// # Description
//
// Update commits under the lock and then notifies listeners outside it.
// A write issued while listeners are running (from a listener or from
// another goroutine) does not start a nested notification pass; it is
// folded into one more pass after the current one finishes. Listeners
// therefore never run re-entrantly and always see the latest state.
type Observable[T any] struct {
	name string

	mu          sync.Mutex
	state       T
	listeners   map[uint64]Listener[T]
	nextID      uint64
	dispatching bool
	pending     bool
}

// NewObservable creates an observable seeded with initial.
//
// # Inputs
//
//   - name: Store name used in metrics labels.
//   - initial: The starting state.
func NewObservable[T any](name string, initial T) *Observable[T] {
	return &Observable[T]{
		name:      name,
		state:     initial,
		listeners: make(map[uint64]Listener[T]),
	}
}

// Snapshot returns the current state.
func (o *Observable[T]) Snapshot() T {
	o.mustExist()
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Set replaces the whole state.
func (o *Observable[T]) Set(state T) {
	o.Update(func(s *T) { *s = state })
}

// Update applies fn to the state as one commit and notifies subscribers.
func (o *Observable[T]) Update(fn func(state *T)) {
	o.UpdateIf(nil, fn)
}

// UpdateIf applies fn only when cond holds, checked under the same lock as
// the commit. A nil cond always holds. It reports whether fn was applied.
func (o *Observable[T]) UpdateIf(cond func() bool, fn func(state *T)) bool {
	o.mustExist()

	o.mu.Lock()
	if cond != nil && !cond() {
		o.mu.Unlock()
		return false
	}
	fn(&o.state)
	if o.dispatching {
		o.pending = true
		o.mu.Unlock()
		return true
	}
	o.dispatching = true
	o.mu.Unlock()

	o.dispatch()
	return true
}

// Subscribe registers l and returns a function that removes it.
//
// The listener is not called for the state that exists at subscription
// time; callers read Snapshot for that.
func (o *Observable[T]) Subscribe(l Listener[T]) (unsubscribe func()) {
	o.mustExist()

	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.listeners[id] = l
	o.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.listeners, id)
			o.mu.Unlock()
		})
	}
}

// dispatch runs notification passes until no write is pending. A panicking
// listener ends the dispatch and is re-raised; the next Update starts a
// fresh pass.
func (o *Observable[T]) dispatch() {
	defer func() {
		if r := recover(); r != nil {
			o.mu.Lock()
			o.dispatching = false
			o.pending = false
			o.mu.Unlock()
			panic(r)
		}
	}()

	for {
		o.mu.Lock()
		state := o.state
		listeners := make([]Listener[T], 0, len(o.listeners))
		for _, l := range o.listeners {
			listeners = append(listeners, l)
		}
		o.pending = false
		o.mu.Unlock()

		for _, l := range listeners {
			l(state)
		}
		telemetry.StoreNotifications.WithLabelValues(o.name).Inc()

		o.mu.Lock()
		if !o.pending {
			o.dispatching = false
			o.mu.Unlock()
			return
		}
		o.mu.Unlock()
	}
}

func (o *Observable[T]) mustExist() {
	if o == nil {
		panic("store: use of nil store")
	}
}
