// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package loading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/ClusterWorkbench/services/workbench/render"
)

func TestGate_NotLoading(t *testing.T) {
	content := render.Text("clusters")
	g := Gate(func() bool { return false }, content)

	assert.Equal(t, render.KindGate, g.Kind)
	assert.False(t, Masking(g))
	require.Len(t, g.Children, 1)
	assert.Same(t, content, wrapped(g))
}

func TestGate_LoadingKeepsContent(t *testing.T) {
	content := render.Text("clusters")
	g := Gate(func() bool { return true }, content, WithID("clusters-gate"), WithLabel("Clustering…"))

	assert.True(t, Masking(g))
	assert.Equal(t, "clusters-gate", g.ID)
	assert.Same(t, content, wrapped(g), "content stays mounted while loading")

	overlay := g.Find("clusters-gate-overlay")
	require.NotNil(t, overlay)
	assert.Equal(t, render.KindOverlay, overlay.Kind)
	assert.Equal(t, "Clustering…", overlay.Text)
}

func TestGate_ContentIdentityAcrossCycles(t *testing.T) {
	content := render.Text("docs")
	loading := false
	pred := func() bool { return loading }

	idle := Gate(pred, content)
	loading = true
	busy := Gate(pred, content)
	loading = false
	after := Gate(pred, content)

	assert.Same(t, wrapped(idle), wrapped(busy))
	assert.Same(t, wrapped(busy), wrapped(after))
	assert.False(t, Masking(after))
}

func TestGate_PredicateEvaluatedOnce(t *testing.T) {
	calls := 0
	Gate(func() bool { calls++; return true }, render.Text("x"))
	assert.Equal(t, 1, calls)
}

func TestGate_Spinner(t *testing.T) {
	g := Gate(func() bool { return true }, nil, WithSpinner("⣾ "))
	assert.Nil(t, wrapped(g))
	assert.Equal(t, "⣾ "+DefaultLabel, g.Find("loading-overlay").Text)
}

func TestGate_NilPredicate(t *testing.T) {
	assert.False(t, Masking(Gate(nil, render.Text("x"))))
}

func TestWrapped_NonGate(t *testing.T) {
	assert.Nil(t, wrapped(render.Text("x")))
	assert.Nil(t, wrapped(nil))
	assert.False(t, Masking(nil))
}
