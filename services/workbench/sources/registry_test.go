// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package sources

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/ClusterWorkbench/services/workbench/render"
)

func TestDefault_LoadsEmbeddedRegistry(t *testing.T) {
	r, err := Default(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"files", "solr", "elasticsearch", "pubmed"}, r.IDs())

	again, err := Default(context.Background())
	require.NoError(t, err)
	assert.Same(t, r, again)
}

func TestSource_IntroHelp(t *testing.T) {
	r := MustDefault()

	solr, err := r.Lookup("solr")
	require.NoError(t, err)
	help, ok := solr.CreateIntroHelp()
	require.True(t, ok)
	assert.Equal(t, "source-help-solr", help.ID)
	assert.Contains(t, help.PlainText(), "Solr collection URL")

	pubmed, err := r.Lookup("pubmed")
	require.NoError(t, err)
	help, ok = pubmed.CreateIntroHelp()
	assert.False(t, ok, "pubmed has no help")
	assert.Nil(t, help)
}

func TestSource_HelpFuncReturningNil(t *testing.T) {
	s := Source{ID: "x", IntroHelp: func() *render.Node { return nil }}
	_, ok := s.CreateIntroHelp()
	assert.False(t, ok)
}

func TestRegistry_LookupAndResolve(t *testing.T) {
	r := MustDefault()

	_, err := r.Lookup("nope")
	assert.ErrorIs(t, err, ErrUnknownSource)
	assert.Equal(t, "files", r.Resolve("nope").ID)
	assert.Equal(t, "solr", r.Resolve("solr").ID)
}

func TestRegistry_Next(t *testing.T) {
	r := MustDefault()
	assert.Equal(t, "solr", r.Next("files").ID)
	assert.Equal(t, "files", r.Next("pubmed").ID)
	assert.Equal(t, "files", r.Next("unknown").ID)
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"invalid yaml": "sources: [",
		"empty":        "sources: []",
		"missing id":   "sources:\n  - label: X\n",
		"duplicate":    "sources:\n  - id: a\n  - id: a\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(context.Background(), []byte(data))
			assert.Error(t, err)
		})
	}
}

func TestParse_LabelDefaultsToID(t *testing.T) {
	r, err := Parse(context.Background(), []byte("sources:\n  - id: custom\n"))
	require.NoError(t, err)
	assert.Equal(t, "custom", r.Resolve("custom").Label)
}

func TestAll_ReturnsCopy(t *testing.T) {
	r := MustDefault()
	all := r.All()
	all[0].Label = "changed"
	assert.Equal(t, "Local files", r.Resolve("files").Label)
}
