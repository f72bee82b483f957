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
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/AleutianAI/ClusterWorkbench/cmd/workbench/config"
	"github.com/AleutianAI/ClusterWorkbench/pkg/logging"
	"github.com/AleutianAI/ClusterWorkbench/services/workbench/backend"
	"github.com/AleutianAI/ClusterWorkbench/services/workbench/prefs"
	"github.com/AleutianAI/ClusterWorkbench/services/workbench/sources"
	"github.com/AleutianAI/ClusterWorkbench/services/workbench/storage/badger"
	"github.com/AleutianAI/ClusterWorkbench/services/workbench/store"
	"github.com/AleutianAI/ClusterWorkbench/services/workbench/telemetry"
	"github.com/AleutianAI/ClusterWorkbench/services/workbench/tui"
)

// newLogger builds the process logger. quiet keeps stderr free while the
// TUI owns the terminal; records then only reach the log file.
func newLogger(c *config.WorkbenchConfig, quiet bool) (*logging.Logger, error) {
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, err
	}
	logger := logging.New(logging.Config{
		Level:    level,
		LogDir:   c.Logging.Dir,
		Service:  "workbench",
		Quiet:    quiet,
		Exporter: telemetry.LogCounter{},
	})
	return logger.With("session_id", uuid.NewString()), nil
}

// preferences is an open preference store and its backend.
type preferences struct {
	store   *prefs.Store
	closeFn func() error
}

// Close flushes pending writes and closes the backend.
func (p *preferences) Close() error {
	return errors.Join(p.store.Close(), p.closeFn())
}

// openPreferences opens the configured preference driver under DataDir.
func openPreferences(c *config.WorkbenchConfig, logger *logging.Logger) (*preferences, error) {
	opts := prefs.Options{Logger: logger.Slog(), FlushDelay: c.Preferences.FlushDelay}

	switch c.Preferences.Driver {
	case config.DriverSQLite:
		path := filepath.Join(c.DataDir, "prefs.db")
		if err := os.MkdirAll(c.DataDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		db, err := prefs.OpenSQLite(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite preferences %s: %w", path, err)
		}
		return &preferences{store: prefs.New(db, opts), closeFn: db.Close}, nil

	case config.DriverBadger, "":
		bcfg := badger.DefaultConfig()
		bcfg.Path = filepath.Join(c.DataDir, "prefs")
		bcfg.Logger = logger.Slog()
		db, err := badger.Open(bcfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open badger preferences %s: %w", bcfg.Path, err)
		}
		return &preferences{store: prefs.New(prefs.NewBadgerBackend(db), opts), closeFn: db.Close}, nil
	}
	return nil, fmt.Errorf("unknown preferences driver %q", c.Preferences.Driver)
}

// app holds everything a workbench session needs.
type app struct {
	logger *logging.Logger
	prefs  *preferences
	stores tui.Stores
	wb     *tui.Workbench
	runner *backend.Runner
}

// newApp wires stores, preferences, registries and the results backend.
//
// # Inputs
//
//   - ctx: Bounds registry and preference loading.
//   - c: Loaded configuration.
//   - logger: Process logger. Not closed by app.
//   - fixture: Results file the backend reads.
func newApp(ctx context.Context, c *config.WorkbenchConfig, logger *logging.Logger, fixture string) (*app, error) {
	src, err := sources.Default(ctx)
	if err != nil {
		return nil, err
	}

	p, err := openPreferences(c, logger)
	if err != nil {
		return nil, err
	}

	stores := tui.Stores{
		Search:   store.NewSearchResultStore(),
		Clusters: store.NewClusterStore(),
		Source: store.NewSourceStore(store.SourceSelection{
			Source:    src.Resolve(c.Defaults.Source).ID,
			Algorithm: c.Defaults.Algorithm,
		}),
	}

	wb, err := tui.NewWorkbench(stores, tui.LoadUIState(ctx, p.store), src)
	if err != nil {
		_ = p.Close()
		return nil, err
	}

	runner := backend.NewRunner(stores.Search, stores.Clusters, backend.Config{
		Path:   fixture,
		Delay:  c.Backend.Delay,
		Logger: logger.Slog(),
	})

	logger.Debug("workbench wired",
		"source", stores.Source.Snapshot().Source,
		"algorithm", stores.Source.Snapshot().Algorithm,
		"prefs_driver", c.Preferences.Driver,
		"fixture", fixture)

	return &app{logger: logger, prefs: p, stores: stores, wb: wb, runner: runner}, nil
}

// Close stops the backend and flushes preferences.
func (a *app) Close() error {
	a.runner.Close()
	return a.prefs.Close()
}
