// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_CreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "workbench.yaml")
	var notice bytes.Buffer

	cfg, err := Load(path, &notice)
	require.NoError(t, err)
	assert.Contains(t, notice.String(), "First run detected")
	assert.FileExists(t, path)

	assert.Equal(t, DriverBadger, cfg.Preferences.Driver)
	assert.Equal(t, 250*time.Millisecond, cfg.Preferences.FlushDelay)
	assert.Equal(t, "lingo", cfg.Defaults.Algorithm)
	assert.NotContains(t, cfg.DataDir, "~", "home is expanded")

	notice.Reset()
	again, err := Load(path, &notice)
	require.NoError(t, err)
	assert.Empty(t, notice.String())
	assert.Equal(t, cfg, again)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workbench.yaml")
	require.NoError(t, os.WriteFile(path, []byte("preferences:\n  driver: sqlite\nbackend:\n  delay: 2s\n"), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.Preferences.Driver)
	assert.Equal(t, 2*time.Second, cfg.Backend.Delay)
	assert.Equal(t, "files", cfg.Defaults.Source)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad driver":    "preferences:\n  driver: redis\n",
		"bad level":     "logging:\n  level: loud\n",
		"bad algorithm": "defaults:\n  algorithm: kmeans\n",
		"bad addr":      "metrics:\n  addr: nonsense\n",
		"negative":      "backend:\n  delay: -1s\n",
		"not yaml":      "data_dir: [",
		"empty source":  "defaults:\n  source: \"\"\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "workbench.yaml")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
			_, err := Load(path, nil)
			assert.Error(t, err)
		})
	}
}

func TestValidate_MessageNamesField(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Preferences.Driver = "redis"
	err := Validate(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Preferences.Driver")
	assert.Contains(t, err.Error(), "redis")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workbench.yaml")
	cfg := DefaultConfig()
	cfg.Metrics.Addr = "127.0.0.1:9464"
	cfg.Backend.Fixture = "/tmp/results.yaml"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9464", loaded.Metrics.Addr)
	assert.Equal(t, "/tmp/results.yaml", loaded.FixturePath())
	assert.Equal(t, cfg.Preferences.FlushDelay, loaded.Preferences.FlushDelay)
}

func TestFixturePath_DefaultsToDataDir(t *testing.T) {
	cfg := WorkbenchConfig{DataDir: "/data"}
	assert.Equal(t, filepath.Join("/data", "results.yaml"), cfg.FixturePath())
}
