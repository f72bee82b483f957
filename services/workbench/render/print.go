// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/AleutianAI/ClusterWorkbench/pkg/ux"
)

// =============================================================================
// Terminal Printer
// =============================================================================

// Print renders n as styled terminal text no wider than width. A width of
// zero or less disables wrapping.
//
// # Description
//
// A masked gate prints its overlay banner first and its content faint below
// it, so the content stays visible in place while loading.
func Print(n *Node, width int) string {
	if n == nil {
		return ""
	}
	return strings.TrimRight(printNode(n, width), "\n")
}

func printNode(n *Node, width int) string {
	switch n.Kind {
	case KindSection:
		parts := make([]string, 0, len(n.Children))
		for _, c := range n.Children {
			if s := printNode(c, width); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n")

	case KindRow:
		return printRow(n, width)

	case KindHeading:
		return ux.Styles.Title.Render(wrap(n.Text, width))

	case KindText:
		return wrap(n.Text, width)

	case KindMuted:
		return ux.Styles.Muted.Render(wrap(n.Text, width))

	case KindList:
		return printList(n, width, 0)

	case KindItem:
		return printItem(n, string(ux.IconBullet)+" ", width, 0)

	case KindStats:
		parts := make([]string, 0, len(n.Children))
		for _, c := range n.Children {
			parts = append(parts, printNode(c, width))
		}
		return strings.Join(parts, ux.Styles.Muted.Render("  ·  "))

	case KindStat:
		return ux.Styles.StatValue.Render(n.Value) + " " + ux.Styles.StatLabel.Render(n.Text)

	case KindTabs:
		parts := make([]string, 0, len(n.Children))
		for _, c := range n.Children {
			parts = append(parts, printNode(c, width))
		}
		return strings.Join(parts, ux.Styles.Muted.Render(" │ "))

	case KindTab:
		if n.Active {
			return ux.Styles.TabActive.Render(n.Text)
		}
		return ux.Styles.Tab.Render(n.Text)

	case KindGate:
		return printGate(n, width)

	case KindOverlay:
		return ux.Styles.Overlay.Render(n.Text)
	}
	return ""
}

func printRow(n *Node, width int) string {
	if len(n.Children) == 0 {
		return ""
	}
	// The first child is a fixed-width side column; the rest share the
	// remaining width.
	side := width / 3
	if width <= 0 {
		side = 0
	}
	cols := make([]string, 0, len(n.Children))
	for i, c := range n.Children {
		w := width
		if i == 0 && side > 0 {
			w = side
		} else if side > 0 {
			w = width - side - 2
		}
		s := printNode(c, w)
		if i == 0 && len(n.Children) > 1 {
			panel := ux.Styles.Panel
			if side > 0 {
				panel = panel.Width(side)
			}
			s = panel.Render(s)
		}
		cols = append(cols, s)
		if i < len(n.Children)-1 {
			cols = append(cols, " ")
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func printList(n *Node, width, depth int) string {
	lines := make([]string, 0, len(n.Children))
	for i, c := range n.Children {
		if c.Kind != KindItem {
			lines = append(lines, indentBlock(printNode(c, width), strings.Repeat("  ", depth+1)))
			continue
		}
		marker := string(ux.IconBullet) + " "
		if n.Ordered {
			marker = fmt.Sprintf("%d. ", i+1)
		}
		lines = append(lines, printItem(c, marker, width, depth))
	}
	return strings.Join(lines, "\n")
}

func printItem(n *Node, marker string, width, depth int) string {
	indent := strings.Repeat("  ", depth)
	text := n.Text
	if n.Active {
		text = ux.Styles.Highlight.Render(text)
	}
	lines := []string{indent + marker + text}
	for _, c := range n.Children {
		var s string
		switch c.Kind {
		case KindList:
			s = printList(c, width, depth+1)
		default:
			s = indentBlock(printNode(c, width), indent+"   ")
		}
		if s != "" {
			lines = append(lines, s)
		}
	}
	return strings.Join(lines, "\n")
}

func printGate(n *Node, width int) string {
	var content []string
	var overlay string
	for _, c := range n.Children {
		if c.Kind == KindOverlay {
			overlay = printNode(c, width)
			continue
		}
		content = append(content, printNode(c, width))
	}
	body := strings.Join(content, "\n")
	if !n.Masked {
		return body
	}
	// Styles are dropped before dimming so the faint attribute applies to
	// every cell of the masked content.
	masked := ux.Styles.Masked.Render(ansi.Strip(body))
	if overlay == "" {
		return masked
	}
	return overlay + "\n" + masked
}

func indentBlock(s, indent string) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = indent + l
	}
	return strings.Join(lines, "\n")
}

func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return ansi.Wordwrap(s, width, "")
}
