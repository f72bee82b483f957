// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package prefs implements the durable user-preference store.
//
// # Description
//
// A preference entry is a small JSON-encoded struct kept under a namespace
// string such as "workbench:ui". Get loads the persisted value merged over
// caller-supplied defaults; Entry.Update changes the value in memory,
// notifies subscribers, and schedules a write-behind flush to the Backend.
//
// # Durability
//
// Writes are at-most-once. A process that dies between Update and the next
// flush loses that update. Close flushes everything still pending.
//
// # Error Handling
//
// Preferences are not correctness-critical. A payload that fails to decode,
// or a backend read error, yields the defaults and a Warn log line;
// nothing is returned to the caller.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/ClusterWorkbench/services/workbench/store"
	"github.com/AleutianAI/ClusterWorkbench/services/workbench/telemetry"
)

// ErrClosed is returned by Flush after Close.
var ErrClosed = errors.New("prefs: store closed")

var tracer = otel.Tracer("workbench.prefs")

// writeTimeout bounds a single backend write from the flush loop.
const writeTimeout = 5 * time.Second

// Options configures a Store.
type Options struct {
	// Logger for decode failures and write errors. Defaults to slog.Default().
	Logger *slog.Logger

	// FlushDelay coalesces bursts of updates into one write per namespace.
	// Zero flushes as soon as the writer wakes.
	FlushDelay time.Duration
}

// Store schedules and performs durable preference writes.
//
// Thread Safety: Safe for concurrent use.
type Store struct {
	backend Backend
	logger  *slog.Logger
	delay   time.Duration

	mu      sync.Mutex
	entries map[string]any    // namespace -> *Entry[T]
	latest  map[string][]byte // last payload seen or written per namespace
	pending map[string][]byte // payloads not yet flushed
	closed  bool

	writeMu sync.Mutex // serializes drains

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

// New creates a Store over backend and starts its flush loop.
func New(backend Backend, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		backend: backend,
		logger:  logger,
		delay:   opts.FlushDelay,
		entries: make(map[string]any),
		latest:  make(map[string][]byte),
		pending: make(map[string][]byte),
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

// Get returns the entry for namespace, loading it on first use.
//
// # Description
//
// The persisted payload is decoded over a copy of defaults, so keys missing
// from the payload keep their default values. When nothing is persisted
// yet, defaults are scheduled for writing. Later calls for the same
// namespace return the same *Entry.
//
// # Inputs
//
//   - ctx: Bounds the initial backend read.
//   - s: The preference store.
//   - namespace: Key scope, e.g. "workbench:ui".
//   - defaults: Values for missing or unreadable fields.
//
// # Outputs
//
//   - *Entry[T]: The live entry. Never nil.
func Get[T any](ctx context.Context, s *Store, namespace string, defaults T) *Entry[T] {
	ctx, span := tracer.Start(ctx, "prefs.Get")
	defer span.End()
	span.SetAttributes(attribute.String("prefs.namespace", namespace))

	s.mu.Lock()
	if cached, ok := s.entries[namespace]; ok {
		if e, ok := cached.(*Entry[T]); ok {
			s.mu.Unlock()
			span.SetAttributes(attribute.Bool("prefs.cached", true))
			return e
		}
	}
	payload, known := s.latest[namespace]
	s.mu.Unlock()

	if !known {
		var err error
		payload, known, err = s.backend.Load(ctx, namespace)
		if err != nil {
			s.logger.Warn("preference load failed, using defaults",
				"namespace", namespace, "error", err.Error())
			payload, known = nil, false
		}
	}

	value, ok := decode(payload, defaults)
	if known && !ok {
		telemetry.PreferenceDecodeFailures.Inc()
		s.logger.Warn("malformed preference payload, using defaults", "namespace", namespace)
	}

	e := &Entry[T]{
		store:     s,
		namespace: namespace,
		value:     store.NewObservable("prefs:"+namespace, value),
	}

	s.mu.Lock()
	// Another caller may have won the race while the backend was read.
	if cached, ok := s.entries[namespace]; ok {
		if winner, ok := cached.(*Entry[T]); ok {
			s.mu.Unlock()
			return winner
		}
	}
	s.entries[namespace] = e
	if known {
		s.latest[namespace] = payload
	}
	s.mu.Unlock()

	if !known {
		e.persist()
	}
	return e
}

// decode unmarshals payload over defaults. ok is false when payload is
// present but unusable, in which case defaults are returned unchanged.
func decode[T any](payload []byte, defaults T) (T, bool) {
	if len(payload) == 0 {
		return defaults, payload == nil
	}
	value := defaults
	if err := json.Unmarshal(payload, &value); err != nil {
		return defaults, false
	}
	return value, true
}

// Flush writes every pending payload before returning.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrClosed
	}
	return s.drain(ctx)
}

// Close flushes pending writes and stops the flush loop. It does not close
// the backend. Safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.stop)
	<-s.done

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return s.drain(ctx)
}

// Reset deletes the persisted payload for namespace and forgets any cached
// entry, so the next Get starts from defaults.
func (s *Store) Reset(ctx context.Context, namespace string) error {
	s.mu.Lock()
	delete(s.entries, namespace)
	delete(s.latest, namespace)
	delete(s.pending, namespace)
	s.mu.Unlock()
	return s.backend.Delete(ctx, namespace)
}

// Raw returns the latest known payload for namespace without decoding it.
func (s *Store) Raw(ctx context.Context, namespace string) ([]byte, bool, error) {
	s.mu.Lock()
	payload, ok := s.latest[namespace]
	s.mu.Unlock()
	if ok {
		return payload, true, nil
	}
	return s.backend.Load(ctx, namespace)
}

// Namespaces lists persisted namespaces.
func (s *Store) Namespaces(ctx context.Context) ([]string, error) {
	return s.backend.Namespaces(ctx)
}

// schedule encodes a payload and queues it. encode runs under the store
// lock so that concurrent updates queue payloads in commit order.
func (s *Store) schedule(namespace string, encode func() ([]byte, error)) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		telemetry.PreferenceWrites.WithLabelValues("dropped").Inc()
		s.logger.Warn("preference write after close dropped", "namespace", namespace)
		return
	}
	payload, err := encode()
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn("preference encode failed", "namespace", namespace, "error", err.Error())
		return
	}
	s.latest[namespace] = payload
	s.pending[namespace] = payload
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Store) run() {
	defer close(s.done)
	for {
		select {
		case <-s.stop:
			return
		case <-s.wake:
			if s.delay > 0 {
				select {
				case <-time.After(s.delay):
				case <-s.stop:
					return
				}
			}
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			_ = s.drain(ctx)
			cancel()
		}
	}
}

// drain writes pending payloads. A failed write is logged and not retried.
func (s *Store) drain(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	batch := s.pending
	s.pending = make(map[string][]byte)
	s.mu.Unlock()

	var firstErr error
	for namespace, payload := range batch {
		if err := s.backend.Save(ctx, namespace, payload); err != nil {
			telemetry.PreferenceWrites.WithLabelValues("error").Inc()
			s.logger.Warn("preference write failed", "namespace", namespace, "error", err.Error())
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		telemetry.PreferenceWrites.WithLabelValues("ok").Inc()
	}
	return firstErr
}

// =============================================================================
// Entry
// =============================================================================

// Entry is a live preference value of type T.
type Entry[T any] struct {
	store     *Store
	namespace string
	value     *store.Observable[T]
}

// Namespace returns the entry's namespace.
func (e *Entry[T]) Namespace() string {
	return e.namespace
}

// Value returns the current value.
func (e *Entry[T]) Value() T {
	return e.value.Snapshot()
}

// Update mutates the value, notifies subscribers, and schedules a write.
func (e *Entry[T]) Update(fn func(v *T)) {
	e.value.Update(fn)
	e.persist()
}

// Subscribe registers l for changes made through Update.
func (e *Entry[T]) Subscribe(l store.Listener[T]) (unsubscribe func()) {
	return e.value.Subscribe(l)
}

func (e *Entry[T]) persist() {
	e.store.schedule(e.namespace, func() ([]byte, error) {
		return json.Marshal(e.value.Snapshot())
	})
}
