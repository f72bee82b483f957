// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.
package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/ClusterWorkbench/cmd/workbench/config"
	"github.com/AleutianAI/ClusterWorkbench/services/workbench/sources"
)

// writeConfig writes a config rooted in a temp dir and returns its path.
func writeConfig(t *testing.T, mutate func(c *config.WorkbenchConfig)) string {
	t.Helper()
	dir := t.TempDir()
	c := config.DefaultConfig()
	c.DataDir = filepath.Join(dir, "data")
	c.Logging.Dir = filepath.Join(dir, "logs")
	c.Logging.Level = "warn"
	c.Backend.Delay = 0
	c.Backend.Watch = false
	c.Preferences.FlushDelay = 0
	if mutate != nil {
		mutate(&c)
	}
	path := filepath.Join(dir, "workbench.yaml")
	require.NoError(t, config.Save(path, c))
	return path
}

// execute runs the root command with args and returns plain stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath, logLevel = "", ""
	metricsAddr, fixturePath = "", ""
	staticRender, staticCluster, staticWidth = false, false, 100
	cfg = nil

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return ansi.Strip(out.String()), err
}

func TestViewsCommand(t *testing.T) {
	path := writeConfig(t, nil)
	out, err := execute(t, "--config", path, "views")
	require.NoError(t, err)

	assert.Contains(t, out, "clusters (switchable)")
	assert.Contains(t, out, "documents (fixed)")
	for _, id := range []string{"folders", "treemap", "pie-chart", "list"} {
		assert.Contains(t, out, id)
	}
}

func TestRunStatic_Intro(t *testing.T) {
	path := writeConfig(t, func(c *config.WorkbenchConfig) { c.Defaults.Source = "solr" })
	out, err := execute(t, "--config", path, "run", "--static")
	require.NoError(t, err)

	assert.Contains(t, out, "Choose data source and clustering algorithm")
	assert.Contains(t, out, "Configure Solr data source")
	assert.NotContains(t, out, "clustering time")
}

func TestRunStatic_ClusterWritesSampleAndShowsResults(t *testing.T) {
	path := writeConfig(t, nil)
	out, err := execute(t, "--config", path, "run", "--static", "--cluster")
	require.NoError(t, err)

	assert.Contains(t, out, "clustering time")
	assert.Contains(t, out, "Clustering Algorithms")
	assert.NotContains(t, out, "Choose data source")

	loaded, err := config.Load(path, nil)
	require.NoError(t, err)
	assert.FileExists(t, loaded.FixturePath())
}

func TestRunStatic_FixtureFlag(t *testing.T) {
	fixture := filepath.Join(t.TempDir(), "results.yaml")
	require.NoError(t, os.WriteFile(fixture, []byte(`
documents:
  - id: a
    title: Only document
clusterings:
  lingo:
    clusters:
      - labels: [Single Topic]
        documents: [0]
`), 0o644))

	path := writeConfig(t, nil)
	out, err := execute(t, "--config", path, "run", "--static", "--cluster", "--fixture", fixture)
	require.NoError(t, err)
	assert.Contains(t, out, "Single Topic")
	assert.Contains(t, out, "Only document")
}

func TestPrefsShowAndReset(t *testing.T) {
	for _, driver := range []string{config.DriverBadger, config.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			path := writeConfig(t, func(c *config.WorkbenchConfig) { c.Preferences.Driver = driver })

			out, err := execute(t, "--config", path, "prefs", "show")
			require.NoError(t, err)
			assert.Contains(t, out, "No stored preferences")

			_, err = execute(t, "--config", path, "run", "--static")
			require.NoError(t, err)

			out, err = execute(t, "--config", path, "prefs", "show")
			require.NoError(t, err)
			assert.Contains(t, out, "workbench:ui")
			assert.Contains(t, out, `"clusterView":"folders"`)

			out, err = execute(t, "--config", path, "prefs", "reset")
			require.NoError(t, err)
			assert.Contains(t, out, "Reset workbench:ui")

			out, err = execute(t, "--config", path, "prefs", "show")
			require.NoError(t, err)
			assert.Contains(t, out, "No stored preferences")
		})
	}
}

func TestInitCommand_SavesAnswers(t *testing.T) {
	path := writeConfig(t, nil)
	original := askInit
	t.Cleanup(func() { askInit = original })
	askInit = func(_ context.Context, src *sources.Registry, a *initAnswers) error {
		assert.Equal(t, "files", a.Source, "form starts from the current config")
		a.Source = "pubmed"
		a.Algorithm = "stc"
		a.Driver = config.DriverSQLite
		a.Fixture = "  /tmp/results.yaml "
		return nil
	}

	out, err := execute(t, "--config", path, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved "+path)

	loaded, err := config.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "pubmed", loaded.Defaults.Source)
	assert.Equal(t, "stc", loaded.Defaults.Algorithm)
	assert.Equal(t, config.DriverSQLite, loaded.Preferences.Driver)
	assert.Equal(t, "/tmp/results.yaml", loaded.Backend.Fixture)
}

func TestInitCommand_DeclinedWritesNothing(t *testing.T) {
	path := writeConfig(t, nil)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	original := askInit
	t.Cleanup(func() { askInit = original })
	askInit = func(_ context.Context, _ *sources.Registry, a *initAnswers) error {
		a.Algorithm = "bkmeans"
		a.Confirm = false
		return nil
	}

	out, err := execute(t, "--config", path, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing written")

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestInvalidConfigFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workbench.yaml")
	require.NoError(t, os.WriteFile(path, []byte("preferences:\n  driver: redis\n"), 0o644))
	_, err := execute(t, "--config", path, "views")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Preferences.Driver")
}

func TestLogLevelOverrideIsValidated(t *testing.T) {
	path := writeConfig(t, nil)
	_, err := execute(t, "--config", path, "--log-level", "loud", "views")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--log-level")
}

func TestMetricsMux_ServesMetrics(t *testing.T) {
	srv := httptest.NewServer(metricsMux())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "go_goroutines")
}
