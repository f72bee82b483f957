// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tui composes the workbench screen and drives it with bubbletea.
//
// # Description
//
// Workbench binds the observable stores, the UI preference entry, and the
// view and source registries. Compose turns one Snapshot into a render
// tree; Model runs the interactive loop and re-renders whenever a store
// commits.
//
// # Thread Safety
//
// Stores may be written from any goroutine. Model must only be used from
// the bubbletea event loop.
package tui

import (
	"errors"
	"sync"

	"github.com/AleutianAI/ClusterWorkbench/services/workbench/prefs"
	"github.com/AleutianAI/ClusterWorkbench/services/workbench/render"
	"github.com/AleutianAI/ClusterWorkbench/services/workbench/sources"
	"github.com/AleutianAI/ClusterWorkbench/services/workbench/store"
	"github.com/AleutianAI/ClusterWorkbench/services/workbench/views"
)

// Requester starts a search and clustering run for a selection. Request
// must not block; results arrive later through the stores.
type Requester interface {
	Request(sel store.SourceSelection)
}

// Workbench is the composition layer.
type Workbench struct {
	stores  Stores
	ui      *prefs.Entry[UIState]
	sources *sources.Registry
	views   *views.Registry
}

// NewWorkbench wires the composition layer.
//
// # Description
//
// The cluster surface switch handler writes the chosen view through to the
// UI preference; the document surface stays on its fixed view.
//
// # Inputs
//
//   - stores: The shared stores. All must be non-nil.
//   - ui: The UI preference entry, usually from LoadUIState.
//   - src: The source registry.
//
// # Outputs
//
//   - *Workbench: Ready to compose.
//   - error: Non-nil if an input is missing.
func NewWorkbench(stores Stores, ui *prefs.Entry[UIState], src *sources.Registry) (*Workbench, error) {
	if stores.Search == nil || stores.Clusters == nil || stores.Source == nil {
		return nil, errors.New("tui: all stores are required")
	}
	if ui == nil {
		return nil, errors.New("tui: ui preference entry is required")
	}
	if src == nil {
		return nil, errors.New("tui: source registry is required")
	}

	reg, err := views.Builtin(func(viewID string) {
		ui.Update(func(s *UIState) { s.ClusterView = viewID })
	})
	if err != nil {
		return nil, err
	}

	return &Workbench{
		stores:  stores,
		ui:      ui,
		sources: src,
		views:   reg,
	}, nil
}

// Views returns the view registry.
func (w *Workbench) Views() *views.Registry {
	return w.views
}

// Sources returns the source registry.
func (w *Workbench) Sources() *sources.Registry {
	return w.sources
}

// Snapshot reads every store once.
func (w *Workbench) Snapshot() Snapshot {
	return Snapshot{
		Search:    w.stores.Search.Snapshot(),
		Clusters:  w.stores.Clusters.Snapshot(),
		Selection: w.stores.Source.Snapshot(),
		UI:        w.ui.Value(),
	}
}

// Compose builds the frame for snap.
func (w *Workbench) Compose(snap Snapshot, opts ComposeOptions) *render.Node {
	return composer{views: w.views, sources: w.sources}.compose(snap, opts)
}

// =============================================================================
// Actions
// =============================================================================

// SelectView asks the surface to switch to viewID.
func (w *Workbench) SelectView(surface views.Surface, viewID string) bool {
	return w.views.OnViewChange(surface, viewID)
}

// CycleClusterView switches the cluster surface to the view after the
// active one.
func (w *Workbench) CycleClusterView() {
	next := w.views.Next(views.SurfaceClusters, w.ui.Value().ClusterView)
	w.views.OnViewChange(views.SurfaceClusters, next)
}

// CycleSource selects the next data source.
func (w *Workbench) CycleSource() {
	current := w.stores.Source.Snapshot().Source
	w.stores.Source.SelectSource(w.sources.Next(current).ID)
}

// CycleAlgorithm selects the next clustering algorithm.
func (w *Workbench) CycleAlgorithm() {
	current := w.stores.Source.Snapshot().Algorithm
	w.stores.Source.SelectAlgorithm(store.NextAlgorithm(current))
}

// SetQuery sets the text of the next search.
func (w *Workbench) SetQuery(q string) {
	w.stores.Source.SetQuery(q)
}

// Selection returns the current source selection.
func (w *Workbench) Selection() store.SourceSelection {
	return w.stores.Source.Snapshot()
}

// Subscribe calls fn after any store or the UI preference commits. The
// returned function removes every subscription.
func (w *Workbench) Subscribe(fn func()) (unsubscribe func()) {
	unsubs := []func(){
		w.stores.Search.Subscribe(func(store.SearchResult) { fn() }),
		w.stores.Clusters.Subscribe(func(store.ClusterResult) { fn() }),
		w.stores.Source.Subscribe(func(store.SourceSelection) { fn() }),
		w.ui.Subscribe(func(UIState) { fn() }),
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			for _, u := range unsubs {
				u()
			}
		})
	}
}
