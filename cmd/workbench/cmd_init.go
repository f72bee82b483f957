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
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/ClusterWorkbench/cmd/workbench/config"
	"github.com/AleutianAI/ClusterWorkbench/pkg/ux"
	"github.com/AleutianAI/ClusterWorkbench/services/workbench/sources"
	"github.com/AleutianAI/ClusterWorkbench/services/workbench/store"
)

// initAnswers holds the form fields.
type initAnswers struct {
	Source    string
	Algorithm string
	Driver    string
	Fixture   string
	Confirm   bool
}

// askInit fills answers from the user. Replaced in tests.
var askInit = func(ctx context.Context, src *sources.Registry, answers *initAnswers) error {
	return initForm(src, answers).RunWithContext(ctx)
}

// runInit implements the init command.
//
// # Description
//
// Asks for the default data source, clustering algorithm, preference
// storage driver and results fixture, then rewrites the config file.
// Fields not covered by the form keep their current values.
//
// # Examples
//
//	workbench init
//	workbench init --config ./workbench.yaml
func runInit(cmd *cobra.Command, _ []string) error {
	src, err := sources.Default(cmd.Context())
	if err != nil {
		return err
	}

	answers := initAnswers{
		Source:    src.Resolve(cfg.Defaults.Source).ID,
		Algorithm: cfg.Defaults.Algorithm,
		Driver:    cfg.Preferences.Driver,
		Fixture:   cfg.Backend.Fixture,
		Confirm:   true,
	}
	if err := askInit(cmd.Context(), src, &answers); err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}
	if !answers.Confirm {
		ux.Warning(cmd.OutOrStdout(), "Nothing written")
		return nil
	}

	updated := *cfg
	applyAnswers(&updated, answers)
	if err := config.Validate(&updated); err != nil {
		return err
	}
	if err := config.Save(configPath, updated); err != nil {
		return err
	}
	ux.Success(cmd.OutOrStdout(), "Saved "+configPath)
	return nil
}

func initForm(src *sources.Registry, a *initAnswers) *huh.Form {
	sourceOpts := make([]huh.Option[string], 0, len(src.All()))
	for _, s := range src.All() {
		sourceOpts = append(sourceOpts, huh.NewOption(s.Label, s.ID))
	}
	algOpts := make([]huh.Option[string], 0, len(store.Algorithms))
	for _, alg := range store.Algorithms {
		algOpts = append(algOpts, huh.NewOption(alg.Label, alg.ID))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Default data source").
				Options(sourceOpts...).
				Value(&a.Source),
			huh.NewSelect[string]().
				Title("Default clustering algorithm").
				Options(algOpts...).
				Value(&a.Algorithm),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Preference storage").
				Options(
					huh.NewOption("BadgerDB (default)", config.DriverBadger),
					huh.NewOption("SQLite", config.DriverSQLite),
				).
				Value(&a.Driver),
			huh.NewInput().
				Title("Results fixture").
				Description("Leave empty to use the built-in sample").
				Value(&a.Fixture),
			huh.NewConfirm().
				Title("Write the config?").
				Value(&a.Confirm),
		),
	).WithTheme(huh.ThemeBase16())
}

func applyAnswers(c *config.WorkbenchConfig, a initAnswers) {
	c.Defaults.Source = a.Source
	c.Defaults.Algorithm = a.Algorithm
	c.Preferences.Driver = a.Driver
	c.Backend.Fixture = strings.TrimSpace(a.Fixture)
}
