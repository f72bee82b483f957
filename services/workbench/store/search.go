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

// Document is a single search hit.
type Document struct {
	// ID is unique within one SearchResult.
	ID string `yaml:"id" json:"id"`

	Title   string `yaml:"title" json:"title"`
	URL     string `yaml:"url,omitempty" json:"url,omitempty"`
	Snippet string `yaml:"snippet,omitempty" json:"snippet,omitempty"`

	// Fields holds source-specific attributes (author, journal, path).
	Fields map[string]string `yaml:"fields,omitempty" json:"fields,omitempty"`
}

// SearchResult is the state owned by SearchResultStore.
type SearchResult struct {
	// Query that produced Documents. Empty for match-all sources.
	Query string

	Documents []Document

	// Initial is true until the first search completes. It selects intro
	// mode and is independent of Loading.
	Initial bool

	// Loading is true while a search request is in flight.
	Loading bool
}

// SearchResultStore owns the latest search result.
type SearchResultStore struct {
	*Observable[SearchResult]
}

// NewSearchResultStore creates a store in the initial (no query yet) state.
func NewSearchResultStore() *SearchResultStore {
	return &SearchResultStore{
		Observable: NewObservable("search", SearchResult{Initial: true}),
	}
}

// BeginSearch marks a search for query as in flight.
func (s *SearchResultStore) BeginSearch(query string) {
	s.Update(func(r *SearchResult) {
		r.Query = query
		r.Loading = true
	})
}

// Complete publishes documents and leaves the initial state.
func (s *SearchResultStore) Complete(documents []Document) {
	s.CompleteIf(nil, documents)
}

// CompleteIf publishes documents only while current holds. current is
// checked atomically with the commit; it reports whether it published.
func (s *SearchResultStore) CompleteIf(current func() bool, documents []Document) bool {
	return s.UpdateIf(current, func(r *SearchResult) {
		r.Documents = documents
		r.Initial = false
		r.Loading = false
	})
}

// Fail publishes an empty result. Upstream failures have no dedicated
// state; they surface as a search that found nothing.
func (s *SearchResultStore) Fail() {
	s.Complete(nil)
}
