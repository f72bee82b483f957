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

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/AleutianAI/ClusterWorkbench/pkg/ux"
	"github.com/AleutianAI/ClusterWorkbench/services/workbench/render"
)

// =============================================================================
// Messages
// =============================================================================

// storeChangedMsg signals that at least one store committed since the
// last frame.
type storeChangedMsg struct{}

// =============================================================================
// Model
// =============================================================================

// Model is the bubbletea model for the workbench.
//
// # Description
//
// Store listeners run on whichever goroutine wrote the store. They only
// signal a buffered channel; the model drains it with a command, so every
// burst of writes produces one storeChangedMsg and one re-render on the
// event loop.
type Model struct {
	wb        *Workbench
	requester Requester

	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	viewport viewport.Model
	query    textinput.Model

	changes     chan struct{}
	unsubscribe func()

	width    int
	height   int
	ready    bool
	editing  bool
	quitting bool
}

// NewModel creates the workbench model. requester may be nil, in which case
// the cluster key does nothing.
//
// # Inputs
//
//   - wb: The composition layer.
//   - requester: Starts backend runs.
//
// # Outputs
//
//   - Model: Ready-to-use model for tea.NewProgram.
func NewModel(wb *Workbench, requester Requester) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = ux.Styles.Highlight

	q := textinput.New()
	q.Placeholder = "query"
	q.Prompt = "/ "

	changes := make(chan struct{}, 1)
	unsubscribe := wb.Subscribe(func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	return Model{
		wb:          wb,
		requester:   requester,
		keys:        defaultKeyMap(),
		help:        help.New(),
		spinner:     sp,
		query:       q,
		changes:     changes,
		unsubscribe: unsubscribe,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForChange(m.changes))
}

func waitForChange(changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return storeChangedMsg{}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

		height := m.viewportHeight()
		if !m.ready {
			m.viewport = viewport.New(m.width, height)
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = height
		}
		m.refresh()

	case storeChangedMsg:
		m.refresh()
		return m, waitForChange(m.changes)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		snap := m.wb.Snapshot()
		if snap.Clusters.Loading || snap.Search.Loading {
			m.refresh()
		}
		return m, cmd

	case tea.KeyMsg:
		if m.editing {
			return m.updateQuery(msg)
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			m.unsubscribe()
			return m, tea.Quit

		case key.Matches(msg, m.keys.Cluster):
			if m.requester != nil {
				m.requester.Request(m.wb.Selection())
			}
			return m, nil

		case key.Matches(msg, m.keys.View):
			m.wb.CycleClusterView()
			return m, nil

		case key.Matches(msg, m.keys.Source):
			m.wb.CycleSource()
			return m, nil

		case key.Matches(msg, m.keys.Algorithm):
			m.wb.CycleAlgorithm()
			return m, nil

		case key.Matches(msg, m.keys.Query):
			m.editing = true
			m.query.SetValue(m.wb.Selection().Query)
			m.query.CursorEnd()
			return m, m.query.Focus()

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			if m.ready {
				m.viewport.Height = m.viewportHeight()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// updateQuery handles keys while the query input has focus.
func (m Model) updateQuery(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.editing = false
		m.query.Blur()
		m.wb.SetQuery(strings.TrimSpace(m.query.Value()))
		return m, nil
	case tea.KeyEsc:
		m.editing = false
		m.query.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.query, cmd = m.query.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Starting workbench...\n"
	}

	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.editing {
		b.WriteString(m.query.View())
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// =============================================================================
// Rendering
// =============================================================================

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	tree := m.wb.Compose(m.wb.Snapshot(), ComposeOptions{Spinner: m.spinner.View()})
	m.viewport.SetContent(render.Print(tree, m.width))
}

func (m Model) viewportHeight() int {
	footer := lipgloss.Height(m.help.View(m.keys)) + 1
	if m.editing {
		footer++
	}
	h := m.height - footer
	if h < 1 {
		h = 1
	}
	return h
}

// RenderStatic prints one frame of wb. Used when stdout is not a terminal.
func RenderStatic(wb *Workbench, width int) string {
	return render.Print(wb.Compose(wb.Snapshot(), ComposeOptions{}), width)
}
