// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package views

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/AleutianAI/ClusterWorkbench/pkg/ux"
	"github.com/AleutianAI/ClusterWorkbench/services/workbench/render"
	"github.com/AleutianAI/ClusterWorkbench/services/workbench/store"
)

// =============================================================================
// Shipped Configuration
// =============================================================================

// Default view ids.
const (
	ViewFolders  = "folders"
	ViewTreemap  = "treemap"
	ViewPieChart = "pie-chart"
	ViewList     = "list"
)

// barWidth is the width of treemap bars in cells.
const barWidth = 24

// defaultFields are shown for a source that names none.
var defaultFields = []string{"url", "snippet"}

// otherLabel replaces the label of the catch-all cluster.
const otherLabel = "Other topics"

// ClusterViews returns the shipped cluster surface views in switcher order.
func ClusterViews() []Descriptor {
	return []Descriptor{
		{ID: ViewFolders, Label: "Folders", Render: renderFolders},
		{ID: ViewTreemap, Label: "Treemap", Render: renderTreemap},
		{ID: ViewPieChart, Label: "Pie chart", Render: renderPieChart},
	}
}

// DocumentViews returns the shipped document surface views.
func DocumentViews() []Descriptor {
	return []Descriptor{
		{ID: ViewList, Label: "List", Render: renderDocumentList},
	}
}

// Builtin builds the shipped registry. onClusterView receives cluster
// surface switches; the document surface stays on its fixed view.
func Builtin(onClusterView SwitchHandler) (*Registry, error) {
	return NewRegistry(
		SurfaceConfig{Surface: SurfaceClusters, Views: ClusterViews(), OnChange: onClusterView},
		SurfaceConfig{Surface: SurfaceDocuments, Views: DocumentViews()},
	)
}

// =============================================================================
// Cluster Views
// =============================================================================

// ordered returns clusters largest first with the catch-all group last.
func ordered(clusters []store.Cluster) []store.Cluster {
	out := make([]store.Cluster, len(clusters))
	copy(out, clusters)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Other != out[j].Other {
			return !out[i].Other
		}
		return out[i].Size() > out[j].Size()
	})
	return out
}

func clusterLabel(c store.Cluster) string {
	if c.Other {
		return otherLabel
	}
	return c.Label()
}

func noClusters() *render.Node {
	return render.Muted("No clusters")
}

func renderFolders(st State) *render.Node {
	if len(st.Clusters.Clusters) == 0 {
		return noClusters()
	}
	return folderList("folders", st.Clusters.Clusters)
}

func folderList(id string, clusters []store.Cluster) *render.Node {
	items := make([]*render.Node, 0, len(clusters))
	for i, c := range ordered(clusters) {
		itemID := fmt.Sprintf("%s-%d", id, i)
		text := fmt.Sprintf("%s (%s)", clusterLabel(c), humanize.Comma(int64(c.Size())))
		var sub *render.Node
		if len(c.Clusters) > 0 {
			sub = folderList(itemID, c.Clusters)
		}
		items = append(items, render.Item(itemID, text, sub))
	}
	return render.List(id, items...)
}

func renderTreemap(st State) *render.Node {
	clusters := ordered(st.Clusters.Clusters)
	if len(clusters) == 0 {
		return noClusters()
	}
	largest := 0
	width := 0
	for _, c := range clusters {
		if n := c.Size(); n > largest {
			largest = n
		}
		if w := len([]rune(clusterLabel(c))); w > width {
			width = w
		}
	}
	rows := make([]*render.Node, 0, len(clusters))
	for i, c := range clusters {
		ratio := 0.0
		if largest > 0 {
			ratio = float64(c.Size()) / float64(largest)
		}
		label := clusterLabel(c)
		pad := strings.Repeat(" ", width-len([]rune(label)))
		rows = append(rows, &render.Node{
			Kind: render.KindText,
			ID:   fmt.Sprintf("treemap-%d", i),
			Text: fmt.Sprintf("%s%s %s %s", label, pad, ux.Bar(ratio, barWidth), humanize.Comma(int64(c.Size()))),
		})
	}
	return render.Section("treemap", rows...)
}

func renderPieChart(st State) *render.Node {
	clusters := ordered(st.Clusters.Clusters)
	if len(clusters) == 0 {
		return noClusters()
	}
	total := 0
	for _, c := range clusters {
		total += c.Size()
	}
	items := make([]*render.Node, 0, len(clusters))
	for i, c := range clusters {
		share := 0.0
		if total > 0 {
			share = 100 * float64(c.Size()) / float64(total)
		}
		items = append(items, render.Item(fmt.Sprintf("pie-%d", i),
			fmt.Sprintf("%5.1f%%  %s", share, clusterLabel(c))))
	}
	return render.List("pie-chart", items...)
}

// =============================================================================
// Document Views
// =============================================================================

func renderDocumentList(st State) *render.Node {
	docs := st.Search.Documents
	if len(docs) == 0 {
		return render.Muted("No documents")
	}
	fields := st.Source.Fields
	if len(fields) == 0 {
		fields = defaultFields
	}
	items := make([]*render.Node, 0, len(docs))
	for _, d := range docs {
		title := d.Title
		if title == "" {
			title = d.ID
		}
		var details []*render.Node
		for _, f := range fields {
			if v := documentField(d, f); v != "" {
				details = append(details, render.Muted(v))
			}
		}
		items = append(items, render.Item("doc-"+d.ID, title, details...))
	}
	return render.OrderedList("documents", items...)
}

// documentField returns the named field of d. "title" is shown as the item
// text and skipped here.
func documentField(d store.Document, field string) string {
	switch field {
	case "title":
		return ""
	case "url":
		return d.URL
	case "snippet":
		return d.Snippet
	}
	return d.Fields[field]
}
