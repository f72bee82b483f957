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
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/AleutianAI/ClusterWorkbench/services/workbench/render"
)

// NoValue is shown for a stat the backend did not report.
const NoValue = "—"

// Stat ids in the stats strip.
const (
	StatResultCount   = "result-count"
	StatClusterCount  = "cluster-count"
	StatClusteredDocs = "clustered-docs"
	StatTime          = "processing-time"
)

// FormatPercent renders ratio in [0, 1] as a percentage with one decimal.
func FormatPercent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", 100*ratio)
}

// FormatDuration humanizes a clustering time in milliseconds. nil yields
// NoValue.
//
// # Examples
//
//	850   -> "850ms"
//	1234  -> "1.23s"
//	2000  -> "2s"
//	125000 -> "2m 5s"
func FormatDuration(millis *int64) string {
	if millis == nil {
		return NoValue
	}
	ms := *millis
	switch {
	case ms < 0:
		return NoValue
	case ms < 1000:
		return strconv.FormatInt(ms, 10) + "ms"
	}
	// Round before picking the unit so 59999ms reads as a minute.
	if cs := (ms + 5) / 10; cs < 6000 {
		s := strconv.FormatFloat(float64(cs)/100, 'f', 2, 64)
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
		return s + "s"
	}
	total := (ms + 500) / 1000
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if s == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dm %ds", m, s)
}

// renderStats builds the stats strip from a snapshot. Values are derived on
// every call.
func renderStats(snap Snapshot) *render.Node {
	docs := len(snap.Search.Documents)
	ratio := snap.Clusters.ClusteredDocsRatio(docs)
	return render.Stats("stats",
		render.Stat(StatResultCount, humanize.Comma(int64(docs)), "results"),
		render.Stat(StatClusterCount, humanize.Comma(int64(len(snap.Clusters.Clusters))), "clusters"),
		render.Stat(StatClusteredDocs, FormatPercent(ratio), "clustered docs"),
		render.Stat(StatTime, FormatDuration(snap.Clusters.ServiceInfo.ClusteringTimeMillis), "clustering time"),
	)
}
