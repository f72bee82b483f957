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

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the workbench key bindings.
type keyMap struct {
	Cluster   key.Binding
	View      key.Binding
	Source    key.Binding
	Algorithm key.Binding
	Query     key.Binding
	Up        key.Binding
	Down      key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Cluster: key.NewBinding(
			key.WithKeys("enter", "c"),
			key.WithHelp("enter", "cluster"),
		),
		View: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "switch view"),
		),
		Source: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "source"),
		),
		Algorithm: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "algorithm"),
		),
		Query: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "query"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Cluster, k.View, k.Source, k.Algorithm, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Cluster, k.Query},
		{k.View, k.Source, k.Algorithm},
		{k.Up, k.Down},
		{k.Help, k.Quit},
	}
}
