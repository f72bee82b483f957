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
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/ClusterWorkbench/services/workbench/store"
	"github.com/AleutianAI/ClusterWorkbench/services/workbench/views"
)

type recordingRequester struct {
	requests []store.SourceSelection
}

func (r *recordingRequester) Request(sel store.SourceSelection) {
	r.requests = append(r.requests, sel)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func sized(t *testing.T, f *fixture, req Requester) Model {
	t.Helper()
	m := NewModel(f.wb, req)
	return send(t, m, tea.WindowSizeMsg{Width: 120, Height: 60})
}

func TestModel_ViewBeforeSize(t *testing.T) {
	f := newFixture(t)
	m := NewModel(f.wb, nil)
	assert.Equal(t, "Starting workbench...\n", m.View())
	assert.NotNil(t, m.Init())
}

func TestModel_IntroView(t *testing.T) {
	f := newFixture(t)
	m := sized(t, f, nil)

	out := ansi.Strip(m.View())
	assert.Contains(t, out, "Choose data source and clustering algorithm")
	assert.Contains(t, out, "Configure Solr data source")
	assert.NotContains(t, out, "clustered docs")
}

func TestModel_StoreChangeRerenders(t *testing.T) {
	f := newFixture(t)
	m := sized(t, f, nil)

	f.completeExample()
	m = send(t, m, storeChangedMsg{})

	out := ansi.Strip(m.View())
	assert.Contains(t, out, "50 results")
	assert.Contains(t, out, "80.0% clustered docs")
}

func TestModel_WritesCoalesce(t *testing.T) {
	f := newFixture(t)
	m := NewModel(f.wb, nil)

	f.stores.Source.SetQuery("a")
	f.stores.Source.SetQuery("b")
	f.stores.Clusters.BeginClustering()
	assert.Len(t, m.changes, 1, "one pending signal for a burst of writes")

	msg := waitForChange(m.changes)()
	assert.IsType(t, storeChangedMsg{}, msg)
	assert.Len(t, m.changes, 0)
}

func TestModel_Keys(t *testing.T) {
	f := newFixture(t)
	req := &recordingRequester{}
	m := sized(t, f, req)

	m = send(t, m, runes("v"))
	assert.Equal(t, views.ViewTreemap, f.ui.Value().ClusterView)

	m = send(t, m, runes("s"))
	m = send(t, m, runes("a"))
	sel := f.wb.Selection()
	assert.Equal(t, "elasticsearch", sel.Source)
	assert.Equal(t, "stc", sel.Algorithm)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Len(t, req.requests, 1)
	assert.Equal(t, "elasticsearch", req.requests[0].Source)

	m = send(t, m, runes("?"))
	assert.True(t, m.help.ShowAll)
}

func TestModel_QueryEditing(t *testing.T) {
	f := newFixture(t)
	req := &recordingRequester{}
	m := sized(t, f, req)

	m = send(t, m, runes("/"))
	require.True(t, m.editing)
	for _, r := range "golang" {
		m = send(t, m, runes(string(r)))
	}
	assert.True(t, strings.Contains(m.View(), "golang"))
	assert.Empty(t, req.requests, "typed letters do not trigger bindings")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.editing)
	assert.Equal(t, "golang", f.wb.Selection().Query)
	assert.Empty(t, req.requests)

	m = send(t, m, runes("/"))
	m = send(t, m, runes("x"))
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.editing)
	assert.Equal(t, "golang", f.wb.Selection().Query, "esc discards the edit")
}

func TestModel_Quit(t *testing.T) {
	f := newFixture(t)
	m := sized(t, f, nil)

	next, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, next.View())

	f.stores.Source.SetQuery("after quit")
	assert.Len(t, m.changes, 0, "subscriptions removed on quit")
}

func TestRenderStatic(t *testing.T) {
	f := newFixture(t)
	f.completeExample()

	out := ansi.Strip(RenderStatic(f.wb, 120))
	assert.Contains(t, out, "2 clusters")
	assert.Contains(t, out, "Alpha (25)")
	assert.Contains(t, out, "Document 0")
}
