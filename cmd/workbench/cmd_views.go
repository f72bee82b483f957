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
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/ClusterWorkbench/pkg/ux"
	"github.com/AleutianAI/ClusterWorkbench/services/workbench/views"
)

func runViews(cmd *cobra.Command, _ []string) error {
	// The handler only marks the cluster surface as switchable.
	reg, err := views.Builtin(func(string) {})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, surface := range reg.Surfaces() {
		mode := "fixed"
		if reg.Switchable(surface) {
			mode = "switchable"
		}
		fmt.Fprintf(out, "%s %s\n", ux.Styles.Title.Render(string(surface)), ux.Styles.Muted.Render("("+mode+")"))
		for i, d := range reg.Views(surface) {
			marker := " "
			if i == 0 {
				marker = string(ux.IconActive)
			}
			fmt.Fprintf(out, "  %s %-10s %s\n", marker, d.ID, d.Label)
		}
	}
	fmt.Fprintln(out, strings.TrimSpace(ux.Styles.Muted.Render(string(ux.IconActive)+" marks the view used when none is stored")))
	return nil
}
