// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package views holds the registry of swappable view renderers.
//
// # Description
//
// Each surface (clusters, documents) has a fixed, ordered list of view
// descriptors. The active view of a surface is an id that is resolved
// against the list on every render; an id the registry does not know
// resolves to the surface's first view. Switching is delegated to a
// per-surface handler, so one surface can persist its choice while another
// ignores switch requests.
//
// Thread Safety:
//
//	A Registry is immutable after NewRegistry and safe for concurrent use.
package views

import (
	"errors"
	"fmt"

	"github.com/AleutianAI/ClusterWorkbench/services/workbench/loading"
	"github.com/AleutianAI/ClusterWorkbench/services/workbench/render"
	"github.com/AleutianAI/ClusterWorkbench/services/workbench/sources"
	"github.com/AleutianAI/ClusterWorkbench/services/workbench/store"
	"github.com/AleutianAI/ClusterWorkbench/services/workbench/telemetry"
)

var (
	// ErrEmptySurface is returned when a surface has no views.
	ErrEmptySurface = errors.New("views: surface has no views")

	// ErrDuplicateView is returned when a surface registers an id twice.
	ErrDuplicateView = errors.New("views: duplicate view id")
)

// Surface names a region of the results screen that hosts swappable views.
type Surface string

const (
	SurfaceClusters  Surface = "clusters"
	SurfaceDocuments Surface = "documents"
)

// State is the immutable snapshot a view renders from.
type State struct {
	Search   store.SearchResult
	Clusters store.ClusterResult

	// Source is the selected data source descriptor.
	Source sources.Source
}

// RenderFunc builds a view's subtree from a snapshot.
type RenderFunc func(st State) *render.Node

// Descriptor is one registered view.
type Descriptor struct {
	ID    string
	Label string

	Render RenderFunc

	surface Surface
}

// SwitchHandler reacts to a request to make viewID active. A nil handler
// ignores switch requests.
type SwitchHandler func(viewID string)

// SurfaceConfig declares one surface of a registry.
type SurfaceConfig struct {
	Surface Surface
	Views   []Descriptor

	// OnChange receives switch requests for the surface. Nil keeps the
	// surface on a fixed view.
	OnChange SwitchHandler
}

// Registry is the set of views per surface.
type Registry struct {
	views    map[Surface][]Descriptor
	handlers map[Surface]SwitchHandler
	order    []Surface
}

// NewRegistry validates configs and builds a registry.
//
// # Outputs
//
//   - *Registry: The registry.
//   - error: ErrEmptySurface or ErrDuplicateView (wrapped), or an error for
//     a repeated surface, an empty view id, or a nil render function.
func NewRegistry(configs ...SurfaceConfig) (*Registry, error) {
	r := &Registry{
		views:    make(map[Surface][]Descriptor, len(configs)),
		handlers: make(map[Surface]SwitchHandler, len(configs)),
	}
	for _, cfg := range configs {
		if _, dup := r.views[cfg.Surface]; dup {
			return nil, fmt.Errorf("views: surface %q configured twice", cfg.Surface)
		}
		if len(cfg.Views) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrEmptySurface, cfg.Surface)
		}
		seen := make(map[string]bool, len(cfg.Views))
		descs := make([]Descriptor, 0, len(cfg.Views))
		for _, d := range cfg.Views {
			if d.ID == "" {
				return nil, fmt.Errorf("views: surface %q has a view with no id", cfg.Surface)
			}
			if d.Render == nil {
				return nil, fmt.Errorf("views: view %q on %q has no render function", d.ID, cfg.Surface)
			}
			if seen[d.ID] {
				return nil, fmt.Errorf("%w: %q on %q", ErrDuplicateView, d.ID, cfg.Surface)
			}
			seen[d.ID] = true
			if d.Label == "" {
				d.Label = d.ID
			}
			d.surface = cfg.Surface
			descs = append(descs, d)
		}
		r.views[cfg.Surface] = descs
		r.handlers[cfg.Surface] = cfg.OnChange
		r.order = append(r.order, cfg.Surface)
	}
	return r, nil
}

// Surfaces returns the configured surfaces in declaration order.
func (r *Registry) Surfaces() []Surface {
	out := make([]Surface, len(r.order))
	copy(out, r.order)
	return out
}

// Views returns the descriptors of surface in order, for the switcher.
func (r *Registry) Views(surface Surface) []Descriptor {
	descs := r.views[surface]
	out := make([]Descriptor, len(descs))
	copy(out, descs)
	return out
}

// Has reports whether viewID is registered on surface.
func (r *Registry) Has(surface Surface, viewID string) bool {
	_, found := r.lookup(surface, viewID)
	return found
}

// Resolve returns the descriptor for viewID, or the surface's first view
// when viewID is not registered. It never fails for a configured surface;
// an unconfigured surface yields a descriptor that renders nothing.
func (r *Registry) Resolve(surface Surface, viewID string) Descriptor {
	d, found := r.lookup(surface, viewID)
	if !found && len(r.views[surface]) > 0 {
		telemetry.ViewFallbacks.WithLabelValues(string(surface)).Inc()
	}
	return d
}

func (r *Registry) lookup(surface Surface, viewID string) (Descriptor, bool) {
	descs := r.views[surface]
	for _, d := range descs {
		if d.ID == viewID {
			return d, true
		}
	}
	if len(descs) == 0 {
		return Descriptor{surface: surface, Render: func(State) *render.Node { return nil }}, false
	}
	return descs[0], false
}

// Render runs d over st and wraps the result in a loading gate driven by
// isLoading.
func (r *Registry) Render(d Descriptor, st State, isLoading loading.Predicate, opts ...loading.Option) *render.Node {
	content := render.Section(string(d.surface)+"-view-"+d.ID, d.Render(st))
	opts = append([]loading.Option{loading.WithID(string(d.surface) + "-gate")}, opts...)
	return loading.Gate(isLoading, content, opts...)
}

// OnViewChange forwards a switch request to the surface's handler. Requests
// for unregistered ids are ignored. It reports whether the request reached
// a handler.
func (r *Registry) OnViewChange(surface Surface, viewID string) bool {
	if !r.Has(surface, viewID) {
		return false
	}
	telemetry.ViewSwitches.WithLabelValues(string(surface), viewID).Inc()
	h := r.handlers[surface]
	if h == nil {
		return false
	}
	h(viewID)
	return true
}

// Switchable reports whether the surface has a switch handler.
func (r *Registry) Switchable(surface Surface) bool {
	return r.handlers[surface] != nil
}

// Next returns the id of the view after viewID on surface, wrapping. An
// unknown viewID is treated as the first view.
func (r *Registry) Next(surface Surface, viewID string) string {
	descs := r.views[surface]
	if len(descs) == 0 {
		return ""
	}
	for i, d := range descs {
		if d.ID == viewID {
			return descs[(i+1)%len(descs)].ID
		}
	}
	return descs[1%len(descs)].ID
}

// Switcher builds the tab strip for surface with activeID marked. The
// active id is resolved first so a stale id marks the fallback view.
func (r *Registry) Switcher(surface Surface, activeID string) *render.Node {
	active, _ := r.lookup(surface, activeID)
	tabs := make([]*render.Node, 0, len(r.views[surface]))
	for _, d := range r.views[surface] {
		tabs = append(tabs, render.Tab(string(surface)+"-tab-"+d.ID, d.Label, d.ID == active.ID))
	}
	return render.Tabs(string(surface)+"-switcher", tabs...)
}
