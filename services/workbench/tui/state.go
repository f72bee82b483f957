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
	"context"

	"github.com/AleutianAI/ClusterWorkbench/services/workbench/prefs"
	"github.com/AleutianAI/ClusterWorkbench/services/workbench/store"
	"github.com/AleutianAI/ClusterWorkbench/services/workbench/views"
)

// UINamespace is the preference namespace of the workbench UI state.
const UINamespace = "workbench:ui"

// UIState is the persisted UI preference.
type UIState struct {
	// ClusterView is the active view id of the cluster surface. It may name
	// a view that no longer exists; resolution falls back without rewriting.
	ClusterView string `json:"clusterView"`
}

// DefaultUIState returns the UI preference used when nothing is persisted.
func DefaultUIState() UIState {
	return UIState{ClusterView: views.ViewFolders}
}

// LoadUIState returns the live UI preference entry from p.
func LoadUIState(ctx context.Context, p *prefs.Store) *prefs.Entry[UIState] {
	return prefs.Get(ctx, p, UINamespace, DefaultUIState())
}

// Stores are the observable stores the workbench reads. They are created
// once at startup and shared by reference.
type Stores struct {
	Search   *store.SearchResultStore
	Clusters *store.ClusterStore
	Source   *store.SourceStore
}

// Snapshot is one consistent read of every store and the UI preference.
type Snapshot struct {
	Search    store.SearchResult
	Clusters  store.ClusterResult
	Selection store.SourceSelection
	UI        UIState
}
