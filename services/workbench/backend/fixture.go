// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package backend is a file-backed stand-in for the search and clustering
// service.
//
// # Description
//
// A fixture file holds documents and precomputed clusters per algorithm.
// Runner answers Request by filtering the documents with the query and
// publishing the result to the search and cluster stores from a goroutine.
// The stores only ever see valid state: a failed run publishes an empty
// result.
package backend

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/ClusterWorkbench/services/workbench/store"
)

// MaxFixtureSize is the largest fixture file Load accepts (16MB).
const MaxFixtureSize = 16 << 20

var (
	// ErrUnsupportedSource is returned when the fixture does not serve the
	// selected source.
	ErrUnsupportedSource = errors.New("backend: source not served by fixture")

	// ErrUnknownAlgorithm is returned when the fixture has no clusters for
	// the selected algorithm.
	ErrUnknownAlgorithm = errors.New("backend: no clusters for algorithm")
)

// Fixture is the on-disk results file. JSON is accepted as YAML.
type Fixture struct {
	// Sources lists the source ids served. Empty serves every source.
	Sources []string `yaml:"sources,omitempty" json:"sources,omitempty"`

	Documents []store.Document `yaml:"documents" json:"documents"`

	// Clusterings maps algorithm id to its precomputed output.
	Clusterings map[string]Clustering `yaml:"clusterings" json:"clusterings"`
}

// Clustering is one algorithm's output over Fixture.Documents.
type Clustering struct {
	Clusters []store.Cluster `yaml:"clusters" json:"clusters"`

	// TimeMillis is the reported clustering time. Omitted means unknown.
	TimeMillis *int64 `yaml:"timeMillis,omitempty" json:"timeMillis,omitempty"`
}

// LoadFixture reads and validates a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	if info.Size() > MaxFixtureSize {
		return nil, fmt.Errorf("reading fixture: %s is %d bytes, limit is %d", path, info.Size(), MaxFixtureSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes and validates fixture data.
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Fixture) validate() error {
	seen := make(map[string]bool, len(f.Documents))
	for i, d := range f.Documents {
		if d.ID == "" {
			return fmt.Errorf("parsing fixture: document %d has no id", i)
		}
		if seen[d.ID] {
			return fmt.Errorf("parsing fixture: duplicate document id %q", d.ID)
		}
		seen[d.ID] = true
	}
	for alg, c := range f.Clusterings {
		if err := checkIndices(c.Clusters, len(f.Documents)); err != nil {
			return fmt.Errorf("parsing fixture: algorithm %q: %w", alg, err)
		}
	}
	return nil
}

func checkIndices(clusters []store.Cluster, n int) error {
	for _, c := range clusters {
		for _, d := range c.Documents {
			if d < 0 || d >= n {
				return fmt.Errorf("cluster %q references document %d of %d", c.Label(), d, n)
			}
		}
		if err := checkIndices(c.Clusters, n); err != nil {
			return err
		}
	}
	return nil
}

// Serves reports whether the fixture answers for source.
func (f *Fixture) Serves(source string) bool {
	if len(f.Sources) == 0 {
		return true
	}
	for _, s := range f.Sources {
		if s == source {
			return true
		}
	}
	return false
}

// Query returns the documents matching query and the algorithm's clusters
// re-indexed onto them. An empty query matches every document. Clusters
// left without documents are dropped.
func (f *Fixture) Query(source, algorithm, query string) ([]store.Document, Clustering, error) {
	if !f.Serves(source) {
		return nil, Clustering{}, fmt.Errorf("%w: %q", ErrUnsupportedSource, source)
	}
	clustering, ok := f.Clusterings[algorithm]
	if !ok {
		return nil, Clustering{}, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return f.Documents, clustering, nil
	}

	remap := make(map[int]int)
	docs := make([]store.Document, 0)
	for i, d := range f.Documents {
		if matches(d, q) {
			remap[i] = len(docs)
			docs = append(docs, d)
		}
	}
	return docs, Clustering{
		Clusters:   reindex(clustering.Clusters, remap),
		TimeMillis: clustering.TimeMillis,
	}, nil
}

func matches(d store.Document, q string) bool {
	return strings.Contains(strings.ToLower(d.Title), q) ||
		strings.Contains(strings.ToLower(d.Snippet), q)
}

func reindex(clusters []store.Cluster, remap map[int]int) []store.Cluster {
	var out []store.Cluster
	for _, c := range clusters {
		var docs []int
		for _, d := range c.Documents {
			if nd, ok := remap[d]; ok {
				docs = append(docs, nd)
			}
		}
		sub := reindex(c.Clusters, remap)
		if len(docs) == 0 && len(sub) == 0 {
			continue
		}
		c.Documents = docs
		c.Clusters = sub
		out = append(out, c)
	}
	return out
}
