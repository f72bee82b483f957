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

// SourceSelection is the state owned by SourceStore.
type SourceSelection struct {
	// Source is an id in the sources registry.
	Source string

	// Algorithm is the clustering algorithm id.
	Algorithm string

	// Query is the text the next search will run.
	Query string
}

// SourceStore owns the user's data source and algorithm choice.
type SourceStore struct {
	*Observable[SourceSelection]
}

// NewSourceStore creates a store with the given initial selection.
func NewSourceStore(initial SourceSelection) *SourceStore {
	return &SourceStore{
		Observable: NewObservable("source", initial),
	}
}

// SelectSource changes the data source.
func (s *SourceStore) SelectSource(id string) {
	s.Update(func(sel *SourceSelection) { sel.Source = id })
}

// SelectAlgorithm changes the clustering algorithm.
func (s *SourceStore) SelectAlgorithm(id string) {
	s.Update(func(sel *SourceSelection) { sel.Algorithm = id })
}

// SetQuery changes the query text.
func (s *SourceStore) SetQuery(q string) {
	s.Update(func(sel *SourceSelection) { sel.Query = q })
}

// Algorithm describes a clustering algorithm the backend offers.
type Algorithm struct {
	ID    string
	Label string
}

// Algorithms is the fixed, ordered set of algorithms the workbench offers.
var Algorithms = []Algorithm{
	{ID: "lingo", Label: "Lingo"},
	{ID: "stc", Label: "STC"},
	{ID: "bkmeans", Label: "Bisecting k-means"},
}

// AlgorithmLabel returns the label for id, or id itself when unknown.
func AlgorithmLabel(id string) string {
	for _, a := range Algorithms {
		if a.ID == id {
			return a.Label
		}
	}
	return id
}

// NextAlgorithm returns the algorithm after id in Algorithms, wrapping.
func NextAlgorithm(id string) string {
	for i, a := range Algorithms {
		if a.ID == id {
			return Algorithms[(i+1)%len(Algorithms)].ID
		}
	}
	return Algorithms[0].ID
}
