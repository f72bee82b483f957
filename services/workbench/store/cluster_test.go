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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func docRange(from, to int) []int {
	out := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}

func TestClusteredDocsRatio(t *testing.T) {
	tests := []struct {
		name     string
		clusters []Cluster
		docs     int
		want     float64
	}{
		{
			name: "no documents",
			clusters: []Cluster{
				{Labels: []string{"a"}, Documents: []int{0, 1}},
			},
			docs: 0,
			want: 0,
		},
		{
			name: "no clusters",
			docs: 10,
			want: 0,
		},
		{
			name: "40 of 50",
			clusters: []Cluster{
				{Labels: []string{"a"}, Documents: docRange(0, 25)},
				{Labels: []string{"b"}, Documents: docRange(25, 40)},
			},
			docs: 50,
			want: 0.8,
		},
		{
			name: "overlapping clusters count once",
			clusters: []Cluster{
				{Labels: []string{"a"}, Documents: []int{0, 1, 2}},
				{Labels: []string{"b"}, Documents: []int{1, 2, 3}},
			},
			docs: 8,
			want: 0.5,
		},
		{
			name: "sub-clusters count",
			clusters: []Cluster{
				{Labels: []string{"a"}, Documents: []int{0}, Clusters: []Cluster{
					{Labels: []string{"a1"}, Documents: []int{1, 2}},
				}},
			},
			docs: 4,
			want: 0.75,
		},
		{
			name: "other topics excluded",
			clusters: []Cluster{
				{Labels: []string{"a"}, Documents: []int{0, 1}},
				{Labels: []string{"Other Topics"}, Documents: []int{2, 3}, Other: true},
			},
			docs: 4,
			want: 0.5,
		},
		{
			name: "out of range indices ignored",
			clusters: []Cluster{
				{Labels: []string{"a"}, Documents: []int{0, 7, -1}},
			},
			docs: 2,
			want: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClusterResult{Clusters: tt.clusters}.ClusteredDocsRatio(tt.docs)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}

func TestCluster_LabelAndSize(t *testing.T) {
	c := Cluster{
		Labels:    []string{"Data", "Mining"},
		Documents: []int{0, 1},
		Clusters:  []Cluster{{Documents: []int{1, 2}}},
	}
	assert.Equal(t, "Data, Mining", c.Label())
	assert.Equal(t, 3, c.Size())
	assert.Equal(t, "(unlabeled)", Cluster{}.Label())
	assert.Equal(t, "Solo", Cluster{Labels: []string{"Solo"}}.Label())
}
