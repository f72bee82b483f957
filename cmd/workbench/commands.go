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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/ClusterWorkbench/cmd/workbench/config"
)

// --- Global Command Variables ---
var (
	configPath string
	logLevel   string

	// cfg is loaded by PersistentPreRunE before any subcommand runs.
	cfg *config.WorkbenchConfig

	rootCmd = &cobra.Command{
		Use:   "workbench",
		Short: "Browse search results clustered into topics",
		Long: `Workbench runs a query against a document source, clusters the
results and shows them as folders, a treemap or a pie chart next to the
document list. Settings live in ~/.workbench/workbench.yaml.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: loadConfig,
	}

	// --- Workbench ---
	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Open the workbench",
		Args:  cobra.NoArgs,
		RunE:  runWorkbench, // Defined in cmd_run.go
	}

	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Choose default source, algorithm and storage interactively",
		Args:  cobra.NoArgs,
		RunE:  runInit, // Defined in cmd_init.go
	}

	// --- Preferences ---
	prefsCmd = &cobra.Command{
		Use:   "prefs",
		Short: "Inspect or reset stored preferences",
	}
	prefsShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print every stored preference namespace",
		Args:  cobra.NoArgs,
		RunE:  runPrefsShow, // Defined in cmd_prefs.go
	}
	prefsResetCmd = &cobra.Command{
		Use:   "reset [namespace]",
		Short: "Delete a preference namespace (default workbench:ui)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPrefsReset,
	}

	// --- Views ---
	viewsCmd = &cobra.Command{
		Use:   "views",
		Short: "List the result views of each surface",
		Args:  cobra.NoArgs,
		RunE:  runViews, // Defined in cmd_views.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.workbench/workbench.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on host:port")
	runCmd.Flags().StringVar(&fixturePath, "fixture", "", "results fixture file (overrides backend.fixture)")
	runCmd.Flags().BoolVar(&staticRender, "static", false, "print one frame and exit instead of opening the TUI")
	runCmd.Flags().BoolVar(&staticCluster, "cluster", false, "with --static, run the default query before printing")
	runCmd.Flags().IntVar(&staticWidth, "width", 100, "with --static, the output width")

	prefsCmd.AddCommand(prefsShowCmd, prefsResetCmd)
	rootCmd.AddCommand(runCmd, initCmd, prefsCmd, viewsCmd)
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	path := configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return err
		}
	}
	loaded, err := config.Load(path, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if logLevel != "" {
		loaded.Logging.Level = logLevel
		if err := config.Validate(loaded); err != nil {
			return fmt.Errorf("--log-level: %w", err)
		}
	}
	configPath = path
	cfg = loaded
	return nil
}
