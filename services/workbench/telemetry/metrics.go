// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry holds the workbench Prometheus metrics.
//
// Metrics are registered on the default registry at package init, so any
// package may record into them without wiring. Handler exposes them over
// HTTP for `workbench run --metrics-addr`.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// =============================================================================
// Metrics
// =============================================================================

var (
	// StoreNotifications counts notification passes per store.
	StoreNotifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workbench_store_notifications_total",
		Help: "Total notification passes delivered to store subscribers",
	}, []string{"store"})

	// ViewSwitches counts switcher requests by surface and target view.
	ViewSwitches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workbench_view_switches_total",
		Help: "Total view switch requests by surface and view",
	}, []string{"surface", "view"})

	// ViewFallbacks counts resolutions of unknown view ids.
	ViewFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workbench_view_fallbacks_total",
		Help: "Total view resolutions that fell back to the default view",
	}, []string{"surface"})

	// PreferenceWrites counts durable preference writes by result.
	PreferenceWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workbench_preference_writes_total",
		Help: "Total preference writes by result (ok, error, dropped)",
	}, []string{"result"})

	// PreferenceDecodeFailures counts payloads replaced by defaults.
	PreferenceDecodeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workbench_preference_decode_failures_total",
		Help: "Total persisted preference payloads that failed to decode",
	})

	// Renders counts composed frames by mode.
	Renders = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workbench_renders_total",
		Help: "Total composed frames by mode (intro, results)",
	}, []string{"mode"})

	// RegistryLoadErrors counts failed static registry loads.
	RegistryLoadErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workbench_registry_load_errors_total",
		Help: "Total static registry load errors",
	}, []string{"registry"})

	// BackendRequests counts fixture backend runs by outcome.
	BackendRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workbench_backend_requests_total",
		Help: "Total search and clustering runs by outcome",
	}, []string{"outcome"})

	// LogRecords counts warning and error log records by level.
	LogRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workbench_log_records_total",
		Help: "Total warning and error log records by level",
	}, []string{"level"})

	// BackendLatency observes search plus clustering duration.
	BackendLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "workbench_backend_latency_seconds",
		Help:    "Duration of search plus clustering runs",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
	})
)

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
