// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package prefs

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/ClusterWorkbench/services/workbench/storage/badger"
)

type uiState struct {
	ClusterView string `json:"clusterView"`
	Density     string `json:"density"`
}

var uiDefaults = uiState{ClusterView: "folders", Density: "normal"}

const ns = "workbench:ui"

func newBadgerStore(t *testing.T) (*Store, *badger.DB) {
	t.Helper()
	db, err := badger.OpenInMemory()
	require.NoError(t, err)
	s := New(NewBadgerBackend(db), Options{})
	t.Cleanup(func() {
		_ = s.Close()
		_ = db.Close()
	})
	return s, db
}

// TestGet_CreatesEntryWithDefaults verifies lazy creation on first read.
func TestGet_CreatesEntryWithDefaults(t *testing.T) {
	s, _ := newBadgerStore(t)
	ctx := context.Background()

	e := Get(ctx, s, ns, uiDefaults)
	assert.Equal(t, uiDefaults, e.Value())
	assert.Equal(t, ns, e.Namespace())

	require.NoError(t, s.Flush(ctx))
	namespaces, err := s.Namespaces(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{ns}, namespaces)

	raw, found, err := s.Raw(ctx, ns)
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"clusterView":"folders","density":"normal"}`, string(raw))
}

// TestGet_Idempotent verifies repeated Gets return equal values.
func TestGet_Idempotent(t *testing.T) {
	s, _ := newBadgerStore(t)
	ctx := context.Background()

	a := Get(ctx, s, ns, uiDefaults)
	b := Get(ctx, s, ns, uiDefaults)
	assert.Same(t, a, b)
	assert.Equal(t, a.Value(), b.Value())
}

// TestGet_MergesOverDefaults verifies missing keys keep default values.
func TestGet_MergesOverDefaults(t *testing.T) {
	s, db := newBadgerStore(t)
	ctx := context.Background()

	require.NoError(t, db.Put(ctx, []byte(badgerKeyPrefix+ns), []byte(`{"clusterView":"treemap"}`)))

	e := Get(ctx, s, ns, uiDefaults)
	assert.Equal(t, uiState{ClusterView: "treemap", Density: "normal"}, e.Value())
}

// TestGet_MalformedPayloadDegrades verifies schema mismatches yield defaults.
func TestGet_MalformedPayloadDegrades(t *testing.T) {
	payloads := map[string]string{
		"invalid json":  `{not json`,
		"type mismatch": `{"clusterView": 42}`,
		"wrong shape":   `["folders"]`,
		"empty":         ``,
	}
	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			s, db := newBadgerStore(t)
			ctx := context.Background()
			require.NoError(t, db.Put(ctx, []byte(badgerKeyPrefix+ns), []byte(payload)))

			var e *Entry[uiState]
			assert.NotPanics(t, func() { e = Get(ctx, s, ns, uiDefaults) })
			assert.Equal(t, uiDefaults, e.Value())
		})
	}
}

// TestRoundTrip_SurvivesRestart verifies a view switch persists across a
// simulated process restart.
func TestRoundTrip_SurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	db, err := badger.OpenWithPath(dir)
	require.NoError(t, err)
	s := New(NewBadgerBackend(db), Options{})

	e := Get(ctx, s, ns, uiDefaults)
	e.Update(func(v *uiState) { v.ClusterView = "treemap" })

	require.NoError(t, s.Close())
	require.NoError(t, db.Close())

	db2, err := badger.OpenWithPath(dir)
	require.NoError(t, err)
	defer db2.Close()
	s2 := New(NewBadgerBackend(db2), Options{})
	defer s2.Close()

	e2 := Get(ctx, s2, ns, uiDefaults)
	assert.Equal(t, "treemap", e2.Value().ClusterView)
}

// TestRoundTrip_SQLite verifies the sqlite backend keeps the same contract.
func TestRoundTrip_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.db")
	ctx := context.Background()

	backend, err := OpenSQLite(path)
	require.NoError(t, err)
	s := New(backend, Options{})
	Get(ctx, s, ns, uiDefaults).Update(func(v *uiState) { v.ClusterView = "treemap" })
	require.NoError(t, s.Close())
	require.NoError(t, backend.Close())

	backend2, err := OpenSQLite(path)
	require.NoError(t, err)
	defer backend2.Close()
	s2 := New(backend2, Options{})
	defer s2.Close()

	assert.Equal(t, "treemap", Get(ctx, s2, ns, uiDefaults).Value().ClusterView)

	namespaces, err := s2.Namespaces(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{ns}, namespaces)
}

func TestSQLiteBackend_Basics(t *testing.T) {
	b, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer b.Close()
	ctx := context.Background()

	_, found, err := b.Load(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, b.Save(ctx, "a", []byte(`{"x":1}`)))
	require.NoError(t, b.Save(ctx, "a", []byte(`{"x":2}`)))
	payload, found, err := b.Load(ctx, "a")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"x":2}`, string(payload))

	require.NoError(t, b.Delete(ctx, "a"))
	_, found, err = b.Load(ctx, "a")
	require.NoError(t, err)
	assert.False(t, found)
}

// TestEntry_SubscribeSeesUpdates verifies entries are observable.
func TestEntry_SubscribeSeesUpdates(t *testing.T) {
	s, _ := newBadgerStore(t)
	e := Get(context.Background(), s, ns, uiDefaults)

	var seen []string
	e.Subscribe(func(v uiState) { seen = append(seen, v.ClusterView) })
	e.Update(func(v *uiState) { v.ClusterView = "treemap" })
	e.Update(func(v *uiState) { v.ClusterView = "folders" })

	assert.Equal(t, []string{"treemap", "folders"}, seen)
}

// TestGet_SeesPendingWrite verifies a Get with a different type reads the
// value scheduled but not yet flushed.
func TestGet_SeesPendingWrite(t *testing.T) {
	s, _ := newBadgerStore(t)
	ctx := context.Background()

	Get(ctx, s, ns, uiDefaults).Update(func(v *uiState) { v.ClusterView = "treemap" })

	type narrow struct {
		ClusterView string `json:"clusterView"`
	}
	got := Get(ctx, s, ns, narrow{ClusterView: "folders"})
	assert.Equal(t, "treemap", got.Value().ClusterView)
}

func TestReset_RestoresDefaults(t *testing.T) {
	s, _ := newBadgerStore(t)
	ctx := context.Background()

	Get(ctx, s, ns, uiDefaults).Update(func(v *uiState) { v.ClusterView = "treemap" })
	require.NoError(t, s.Flush(ctx))

	require.NoError(t, s.Reset(ctx, ns))
	assert.Equal(t, uiDefaults, Get(ctx, s, ns, uiDefaults).Value())
}

func TestClose_DropsLaterWrites(t *testing.T) {
	s, _ := newBadgerStore(t)
	ctx := context.Background()
	e := Get(ctx, s, ns, uiDefaults)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Flush(ctx), ErrClosed)

	assert.NotPanics(t, func() { e.Update(func(v *uiState) { v.ClusterView = "treemap" }) })
	assert.Equal(t, "treemap", e.Value().ClusterView, "in-memory state still changes")
}

// failingBackend fails every call.
type failingBackend struct{}

var errBackend = errors.New("backend down")

func (failingBackend) Load(context.Context, string) ([]byte, bool, error) {
	return nil, false, errBackend
}
func (failingBackend) Save(context.Context, string, []byte) error { return errBackend }
func (failingBackend) Delete(context.Context, string) error       { return errBackend }
func (failingBackend) Namespaces(context.Context) ([]string, error) {
	return nil, errBackend
}

func TestGet_BackendFailureDegrades(t *testing.T) {
	// The long delay keeps the flush loop from draining before Flush does.
	s := New(failingBackend{}, Options{FlushDelay: time.Hour})
	ctx := context.Background()

	e := Get(ctx, s, ns, uiDefaults)
	assert.Equal(t, uiDefaults, e.Value())
	assert.ErrorIs(t, s.Flush(ctx), errBackend)
	assert.NoError(t, s.Close(), "nothing pending after the failed flush")
}

func TestEntry_ConcurrentUpdatesPersistLatest(t *testing.T) {
	s, _ := newBadgerStore(t)
	ctx := context.Background()

	type counter struct {
		N int `json:"n"`
	}
	e := Get(ctx, s, "counter", counter{})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Update(func(c *counter) { c.N++ })
		}()
	}
	wg.Wait()
	require.NoError(t, s.Flush(ctx))

	raw, _, err := s.Raw(ctx, "counter")
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":20}`, string(raw))
}
