// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux provides terminal styling for the workbench CLI and TUI.
package ux

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Workbench color palette - deep ocean teals and arctic waters
var (
	ColorTealBright  = lipgloss.Color("#2CD7C7") // highlights, active selection
	ColorTealPrimary = lipgloss.Color("#20B9B4") // headings
	ColorTealDeep    = lipgloss.Color("#16858E") // borders
	ColorTealOcean   = lipgloss.Color("#157483") // bars

	ColorSlate   = lipgloss.Color("#2C4A54") // muted text
	ColorDeepSea = lipgloss.Color("#104855") // overlay background

	ColorSuccess = lipgloss.Color("#2CD7C7")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Highlight lipgloss.Style

	Box     lipgloss.Style
	Panel   lipgloss.Style
	Overlay lipgloss.Style
	Masked  lipgloss.Style

	StatValue lipgloss.Style
	StatLabel lipgloss.Style
	TabActive lipgloss.Style
	Tab       lipgloss.Style
	Bar       lipgloss.Style
	BarEmpty  lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(ColorTealBright),
	Subtitle:  lipgloss.NewStyle().Foreground(ColorTealPrimary),
	Bold:      lipgloss.NewStyle().Bold(true),
	Muted:     lipgloss.NewStyle().Foreground(ColorSlate),
	Success:   lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning:   lipgloss.NewStyle().Foreground(ColorWarning),
	Error:     lipgloss.NewStyle().Foreground(ColorError),
	Highlight: lipgloss.NewStyle().Foreground(ColorTealBright).Bold(true),

	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorTealDeep).
		Padding(0, 1),
	Panel: lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, true, false, false).
		BorderForeground(ColorSlate).
		PaddingRight(1),
	Overlay: lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorWarning).
		Background(ColorDeepSea).
		Padding(0, 1),
	Masked: lipgloss.NewStyle().Faint(true),

	StatValue: lipgloss.NewStyle().Bold(true).Foreground(ColorTealBright),
	StatLabel: lipgloss.NewStyle().Foreground(ColorSlate),
	TabActive: lipgloss.NewStyle().Bold(true).Underline(true).Foreground(ColorTealBright),
	Tab:       lipgloss.NewStyle().Foreground(ColorSlate),
	Bar:       lipgloss.NewStyle().Foreground(ColorTealOcean),
	BarEmpty:  lipgloss.NewStyle().Foreground(ColorSlate),
}

// Icon provides themed status icons
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconPending Icon = "○"
	IconActive  Icon = "●"
	IconArrow   Icon = "→"
	IconBullet  Icon = "•"
)

// Render returns the icon with appropriate styling
func (i Icon) Render() string {
	switch i {
	case IconSuccess, IconActive:
		return Styles.Success.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	case IconPending:
		return Styles.Muted.Render(string(i))
	default:
		return string(i)
	}
}

// Success writes a success message with checkmark
func Success(w io.Writer, text string) {
	fmt.Fprintf(w, "%s %s\n", IconSuccess.Render(), Styles.Success.Render(text))
}

// Warning writes a warning message
func Warning(w io.Writer, text string) {
	fmt.Fprintf(w, "%s %s\n", IconWarning.Render(), Styles.Warning.Render(text))
}

// Error writes an error message
func Error(w io.Writer, text string) {
	fmt.Fprintf(w, "%s %s\n", IconError.Render(), Styles.Error.Render(text))
}

// Info writes an informational message
func Info(w io.Writer, text string) {
	fmt.Fprintf(w, "%s %s\n", Styles.Muted.Render("│"), text)
}

// Bar renders a proportional bar of the given width. ratio is clamped to
// [0, 1].
func Bar(ratio float64, width int) string {
	if width <= 0 {
		return ""
	}
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio*float64(width) + 0.5)
	return Styles.Bar.Render(strings.Repeat("█", filled)) +
		Styles.BarEmpty.Render(strings.Repeat("░", width-filled))
}
