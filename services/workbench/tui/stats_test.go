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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AleutianAI/ClusterWorkbench/services/workbench/store"
)

func TestFormatDuration(t *testing.T) {
	ms := func(v int64) *int64 { return &v }
	tests := []struct {
		in   *int64
		want string
	}{
		{nil, NoValue},
		{ms(-5), NoValue},
		{ms(0), "0ms"},
		{ms(850), "850ms"},
		{ms(1000), "1s"},
		{ms(1234), "1.23s"},
		{ms(1500), "1.5s"},
		{ms(10000), "10s"},
		{ms(1999), "2s"},
		{ms(59994), "59.99s"},
		{ms(59995), "1m"},
		{ms(59999), "1m"},
		{ms(60000), "1m"},
		{ms(125000), "2m 5s"},
		{ms(125600), "2m 6s"},
		{ms(3_720_000), "1h 2m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.in))
	}
}

func TestFormatPercent_OneDecimal(t *testing.T) {
	assert.Equal(t, "80.0%", FormatPercent(0.8))
	assert.Equal(t, "0.0%", FormatPercent(0))
	assert.Equal(t, "100.0%", FormatPercent(1))
	assert.Equal(t, "33.3%", FormatPercent(1.0/3))
}

func TestRenderStats_LargeCountsUseSeparators(t *testing.T) {
	snap := Snapshot{Search: store.SearchResult{Documents: make([]store.Document, 12345)}}
	assert.Contains(t, renderStats(snap).PlainText(), "12,345 results")
}
