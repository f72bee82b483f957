// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tui

import (
	"github.com/AleutianAI/ClusterWorkbench/services/workbench/loading"
	"github.com/AleutianAI/ClusterWorkbench/services/workbench/render"
	"github.com/AleutianAI/ClusterWorkbench/services/workbench/sources"
	"github.com/AleutianAI/ClusterWorkbench/services/workbench/store"
	"github.com/AleutianAI/ClusterWorkbench/services/workbench/telemetry"
	"github.com/AleutianAI/ClusterWorkbench/services/workbench/views"
)

// =============================================================================
// Composition
// =============================================================================

// Mode is the top-level screen the workbench shows.
type Mode string

const (
	// ModeIntro is shown until the first search completes.
	ModeIntro Mode = "intro"

	// ModeResults shows stats and the two view surfaces.
	ModeResults Mode = "results"
)

// ModeOf returns the mode a snapshot selects. Only SearchResult.Initial
// decides; loading flags never change the mode.
func ModeOf(snap Snapshot) Mode {
	if snap.Search.Initial {
		return ModeIntro
	}
	return ModeResults
}

// ComposeOptions carries per-frame presentation inputs.
type ComposeOptions struct {
	// Spinner is the current spinner frame shown in loading overlays.
	Spinner string
}

// composer binds the static registries used to build trees.
type composer struct {
	views   *views.Registry
	sources *sources.Registry
}

// compose builds the whole frame: the side panel next to the main area.
func (c composer) compose(snap Snapshot, opts ComposeOptions) *render.Node {
	mode := ModeOf(snap)
	telemetry.Renders.WithLabelValues(string(mode)).Inc()

	var main *render.Node
	if mode == ModeIntro {
		main = c.renderIntro(snap)
	} else {
		main = c.renderResults(snap, opts)
	}
	return render.Row("workbench", c.renderSide(snap), main)
}

// renderSide lists sources and algorithms with the selection marked.
func (c composer) renderSide(snap Snapshot) *render.Node {
	selected := c.sources.Resolve(snap.Selection.Source)

	srcItems := make([]*render.Node, 0, len(c.sources.IDs()))
	for _, s := range c.sources.All() {
		item := render.Item("side-source-"+s.ID, s.Label)
		item.Active = s.ID == selected.ID
		srcItems = append(srcItems, item)
	}

	algItems := make([]*render.Node, 0, len(store.Algorithms))
	for _, a := range store.Algorithms {
		item := render.Item("side-algorithm-"+a.ID, a.Label)
		item.Active = a.ID == snap.Selection.Algorithm
		algItems = append(algItems, item)
	}

	query := snap.Selection.Query
	if query == "" {
		query = "(all documents)"
	}

	return render.Section("side",
		render.Heading("Clustering Workbench"),
		render.Muted("Source"),
		render.List("side-sources", srcItems...),
		render.Muted("Algorithm"),
		render.List("side-algorithms", algItems...),
		render.Muted("Query"),
		render.Text(query),
	)
}

// renderIntro builds the onboarding steps and welcome text.
func (c composer) renderIntro(snap Snapshot) *render.Node {
	src := c.sources.Resolve(snap.Selection.Source)

	configure := render.Item("step-configure", "Configure "+src.Label+" data source")
	if help, ok := src.CreateIntroHelp(); ok {
		configure.Children = append(configure.Children, help)
	}

	steps := render.OrderedList("intro-steps",
		render.Item("step-choose", "Choose data source and clustering algorithm",
			render.Muted(src.Label+" with "+store.AlgorithmLabel(snap.Selection.Algorithm)),
		),
		configure,
		render.Item("step-cluster", "Press enter to cluster"),
	)

	welcome := render.Section("welcome",
		render.Heading("This is the Clustering Workbench"),
		render.Text("You can use the workbench for:"),
		render.List("welcome-uses",
			render.Item("", "clustering data from local files, Solr, or Elasticsearch"),
			render.Item("", "experimenting with clustering algorithms and their output"),
			render.Item("", "comparing cluster visualizations side by side"),
		),
	)

	return render.Section("intro", steps, welcome)
}

// renderResults builds the stats strip and both view surfaces.
func (c composer) renderResults(snap Snapshot, opts ComposeOptions) *render.Node {
	st := views.State{
		Search:   snap.Search,
		Clusters: snap.Clusters,
		Source:   c.sources.Resolve(snap.Selection.Source),
	}

	gateOpts := func(label string) []loading.Option {
		return []loading.Option{loading.WithLabel(label), loading.WithSpinner(opts.Spinner)}
	}

	clusterView := c.views.Resolve(views.SurfaceClusters, snap.UI.ClusterView)
	clusterGate := c.views.Render(clusterView, st,
		func() bool { return snap.Clusters.Loading },
		gateOpts("Clustering…")...)

	docView := c.views.Resolve(views.SurfaceDocuments, views.ViewList)
	docGate := c.views.Render(docView, st,
		func() bool { return snap.Search.Loading },
		gateOpts("Searching…")...)

	return render.Section("results",
		renderStats(snap),
		render.Section("clusters-surface",
			c.views.Switcher(views.SurfaceClusters, snap.UI.ClusterView),
			clusterGate,
		),
		render.Section("documents-surface",
			render.Heading("Documents"),
			docGate,
		),
	)
}
