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
	"io"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/ClusterWorkbench/pkg/ux"
	"github.com/AleutianAI/ClusterWorkbench/services/workbench/tui"
)

func runPrefsShow(cmd *cobra.Command, _ []string) error {
	return withPreferences(cmd, func(p *preferences, out io.Writer) error {
		ctx := cmd.Context()
		namespaces, err := p.store.Namespaces(ctx)
		if err != nil {
			return fmt.Errorf("failed to list preferences: %w", err)
		}
		if len(namespaces) == 0 {
			ux.Info(out, "No stored preferences")
			return nil
		}
		for _, ns := range namespaces {
			payload, _, err := p.store.Raw(ctx, ns)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", ns, err)
			}
			fmt.Fprintf(out, "%s  %s\n", ux.Styles.Bold.Render(ns), payload)
		}
		return nil
	})
}

func runPrefsReset(cmd *cobra.Command, args []string) error {
	namespace := tui.UINamespace
	if len(args) == 1 {
		namespace = args[0]
	}
	return withPreferences(cmd, func(p *preferences, out io.Writer) error {
		if err := p.store.Reset(cmd.Context(), namespace); err != nil {
			return fmt.Errorf("failed to reset %s: %w", namespace, err)
		}
		ux.Success(out, "Reset "+namespace)
		return nil
	})
}

// withPreferences opens the configured store for fn and closes it after.
func withPreferences(cmd *cobra.Command, fn func(p *preferences, out io.Writer) error) error {
	logger, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer logger.Close()

	p, err := openPreferences(cfg, logger)
	if err != nil {
		return err
	}
	if err := fn(p, cmd.OutOrStdout()); err != nil {
		_ = p.Close()
		return err
	}
	return p.Close()
}
