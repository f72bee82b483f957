// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package backend

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/AleutianAI/ClusterWorkbench/services/workbench/store"
	"github.com/AleutianAI/ClusterWorkbench/services/workbench/telemetry"
)

// Config configures a Runner.
type Config struct {
	// Path of the fixture file. Read on every request so edits apply.
	Path string

	// Delay is added before results are published, to make loading states
	// visible. Zero publishes as soon as the fixture is read.
	Delay time.Duration

	// Logger for request failures. Defaults to slog.Default().
	Logger *slog.Logger
}

// Runner serves search and clustering requests from a fixture file.
//
// # Description
//
// Each Request starts a run in its own goroutine and supersedes any run
// still in flight: the older run is cancelled, and once the newer request
// has begun it commits nothing more. Documents are committed before
// clusters, so the cluster surface stays loading until its own commit.
//
// Thread Safety: Safe for concurrent use.
type Runner struct {
	search   *store.SearchResultStore
	clusters *store.ClusterStore
	path     string
	delay    time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	seq    uint64
	last   *store.SourceSelection
	cancel context.CancelFunc
	closed bool

	wg sync.WaitGroup
}

// NewRunner creates a runner publishing into search and clusters.
func NewRunner(search *store.SearchResultStore, clusters *store.ClusterStore, cfg Config) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		search:   search,
		clusters: clusters,
		path:     cfg.Path,
		delay:    cfg.Delay,
		logger:   logger,
	}
}

// Request starts a run for sel and returns immediately.
func (r *Runner) Request(sel store.SourceSelection) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	if r.cancel != nil {
		r.cancel()
	}
	r.seq++
	seq := r.seq
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.last = &sel
	r.wg.Add(1)
	r.mu.Unlock()

	r.search.BeginSearch(sel.Query)
	r.clusters.BeginClustering()

	go func() {
		defer r.wg.Done()
		defer cancel()
		r.run(ctx, seq, sel)
	}()
}

// Rerun repeats the last request, if any. It reports whether a run started.
func (r *Runner) Rerun() bool {
	r.mu.Lock()
	last := r.last
	r.mu.Unlock()
	if last == nil {
		return false
	}
	r.Request(*last)
	return true
}

// Wait blocks until no run is in flight.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Close cancels any run in flight and waits for it. Later requests are
// ignored.
func (r *Runner) Close() {
	r.mu.Lock()
	r.closed = true
	if r.cancel != nil {
		r.cancel()
	}
	r.mu.Unlock()
	r.wg.Wait()
}

func (r *Runner) current(seq uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seq == seq
}

func (r *Runner) run(ctx context.Context, seq uint64, sel store.SourceSelection) {
	start := time.Now()
	logger := r.logger.With("source", sel.Source, "algorithm", sel.Algorithm, "query", sel.Query)

	if r.delay > 0 {
		select {
		case <-ctx.Done():
			telemetry.BackendRequests.WithLabelValues("superseded").Inc()
			return
		case <-time.After(r.delay):
		}
	}

	fixture, err := LoadFixture(r.path)
	var (
		docs       []store.Document
		clustering Clustering
	)
	if err == nil {
		docs, clustering, err = fixture.Query(sel.Source, sel.Algorithm, sel.Query)
	}

	if ctx.Err() != nil || !r.current(seq) {
		telemetry.BackendRequests.WithLabelValues("superseded").Inc()
		return
	}
	telemetry.BackendLatency.Observe(time.Since(start).Seconds())

	outcome := "ok"
	var info store.ServiceInfo
	if err != nil {
		outcome = "error"
		docs, clustering = nil, Clustering{}
	} else {
		info = store.ServiceInfo{ClusteringTimeMillis: clustering.TimeMillis, Algorithm: sel.Algorithm}
	}

	if !r.publish(seq, docs, clustering.Clusters, info) {
		telemetry.BackendRequests.WithLabelValues("superseded").Inc()
		return
	}
	telemetry.BackendRequests.WithLabelValues(outcome).Inc()
	if err != nil {
		logger.Warn("request failed, published empty result", "error", err.Error())
		return
	}
	logger.Debug("request complete", "documents", len(docs), "clusters", len(clustering.Clusters))
}

// publish commits search then cluster results while seq is the latest
// request. Each commit re-checks seq under its store's lock, so a Request
// landing between the two leaves the clusters masked for the newer run.
// It reports whether both commits happened.
func (r *Runner) publish(seq uint64, docs []store.Document, clusters []store.Cluster, info store.ServiceInfo) bool {
	current := func() bool { return r.current(seq) }
	if !r.search.CompleteIf(current, docs) {
		return false
	}
	return r.clusters.CompleteIf(current, clusters, info)
}
