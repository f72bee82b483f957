// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package store

// Cluster is one group of documents, possibly with sub-clusters.
type Cluster struct {
	Labels []string `yaml:"labels" json:"labels"`

	// Documents holds indices into SearchResult.Documents.
	Documents []int `yaml:"documents" json:"documents"`

	Score float64 `yaml:"score,omitempty" json:"score,omitempty"`

	// Other marks the catch-all group of documents no real cluster took.
	Other bool `yaml:"other,omitempty" json:"other,omitempty"`

	Clusters []Cluster `yaml:"clusters,omitempty" json:"clusters,omitempty"`
}

// Label returns the display label.
func (c Cluster) Label() string {
	switch len(c.Labels) {
	case 0:
		return "(unlabeled)"
	case 1:
		return c.Labels[0]
	}
	out := c.Labels[0]
	for _, l := range c.Labels[1:] {
		out += ", " + l
	}
	return out
}

// Size returns the number of distinct documents in c and its sub-clusters.
func (c Cluster) Size() int {
	seen := make(map[int]struct{})
	c.collect(seen)
	return len(seen)
}

func (c Cluster) collect(seen map[int]struct{}) {
	for _, d := range c.Documents {
		seen[d] = struct{}{}
	}
	for _, sub := range c.Clusters {
		sub.collect(seen)
	}
}

// ServiceInfo carries backend-reported metadata about a clustering run.
type ServiceInfo struct {
	// ClusteringTimeMillis is nil when the backend did not report it.
	ClusteringTimeMillis *int64

	// Algorithm that produced the clusters.
	Algorithm string
}

// ClusterResult is the state owned by ClusterStore.
type ClusterResult struct {
	Clusters    []Cluster
	ServiceInfo ServiceInfo

	// Loading is true while clustering is in flight. It only drives the
	// loading overlay, never the intro/results mode.
	Loading bool
}

// ClusteredDocsRatio returns the share of documentCount documents that
// belong to at least one cluster other than the "other" group.
//
// Documents in several clusters count once. Indices outside
// [0, documentCount) are ignored. Returns 0 when documentCount is 0.
func (r ClusterResult) ClusteredDocsRatio(documentCount int) float64 {
	return ClusteredDocsRatio(r.Clusters, documentCount)
}

// ClusteredDocsRatio is the free-function form of
// ClusterResult.ClusteredDocsRatio.
func ClusteredDocsRatio(clusters []Cluster, documentCount int) float64 {
	if documentCount <= 0 {
		return 0
	}
	seen := make(map[int]struct{})
	for _, c := range clusters {
		if c.Other {
			continue
		}
		c.collect(seen)
	}
	clustered := 0
	for d := range seen {
		if d >= 0 && d < documentCount {
			clustered++
		}
	}
	return float64(clustered) / float64(documentCount)
}

// ClusterStore owns the latest clustering result.
type ClusterStore struct {
	*Observable[ClusterResult]
}

// NewClusterStore creates an empty, idle cluster store.
func NewClusterStore() *ClusterStore {
	return &ClusterStore{
		Observable: NewObservable("clusters", ClusterResult{}),
	}
}

// BeginClustering marks clustering as in flight. Existing clusters stay
// visible under the loading overlay until Complete replaces them.
func (s *ClusterStore) BeginClustering() {
	s.Update(func(r *ClusterResult) {
		r.Loading = true
	})
}

// Complete publishes clusters and service info.
func (s *ClusterStore) Complete(clusters []Cluster, info ServiceInfo) {
	s.CompleteIf(nil, clusters, info)
}

// CompleteIf publishes clusters only while current holds, checked with the
// commit. It reports whether it published.
func (s *ClusterStore) CompleteIf(current func() bool, clusters []Cluster, info ServiceInfo) bool {
	return s.UpdateIf(current, func(r *ClusterResult) {
		r.Clusters = clusters
		r.ServiceInfo = info
		r.Loading = false
	})
}

// Fail publishes an empty clustering.
func (s *ClusterStore) Fail() {
	s.Complete(nil, ServiceInfo{})
}
