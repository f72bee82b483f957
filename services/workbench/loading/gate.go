// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package loading wraps render content with a loading indicator.
package loading

import (
	"strings"

	"github.com/AleutianAI/ClusterWorkbench/services/workbench/render"
)

// DefaultLabel is the overlay text when no label is given.
const DefaultLabel = "Loading…"

// Predicate reports whether the wrapped content is being refreshed. It is
// evaluated once per Gate call.
type Predicate func() bool

// Option customizes a gate.
type Option func(*options)

type options struct {
	id      string
	label   string
	spinner string
}

// WithID sets the gate node id.
func WithID(id string) Option {
	return func(o *options) { o.id = id }
}

// WithLabel sets the overlay text.
func WithLabel(label string) Option {
	return func(o *options) { o.label = label }
}

// WithSpinner prefixes the overlay text with a spinner frame.
func WithSpinner(frame string) Option {
	return func(o *options) { o.spinner = strings.TrimSpace(frame) }
}

// Gate returns content wrapped in a gate node.
//
// # Description
//
// The content is always the gate's first child, whether or not isLoading
// holds, so the content keeps its place and state across loading cycles.
// While isLoading returns true the gate is marked Masked and an overlay
// child is appended. A nil predicate never loads.
//
// # Inputs
//
//   - isLoading: Evaluated once for this render.
//   - content: The wrapped subtree. May be nil.
//   - opts: Id, label, and spinner options.
//
// # Outputs
//
//   - *render.Node: A KindGate node. Never nil.
func Gate(isLoading Predicate, content *render.Node, opts ...Option) *render.Node {
	o := options{id: "loading", label: DefaultLabel}
	for _, opt := range opts {
		opt(&o)
	}

	gate := &render.Node{Kind: render.KindGate, ID: o.id}
	if content != nil {
		gate.Children = append(gate.Children, content)
	}
	if isLoading == nil || !isLoading() {
		return gate
	}

	text := o.label
	if o.spinner != "" {
		text = o.spinner + " " + text
	}
	gate.Masked = true
	gate.Children = append(gate.Children, &render.Node{
		Kind: render.KindOverlay,
		ID:   o.id + "-overlay",
		Text: text,
	})
	return gate
}

// wrapped returns the content of a gate node, or nil.
func wrapped(gate *render.Node) *render.Node {
	if gate == nil || gate.Kind != render.KindGate {
		return nil
	}
	for _, c := range gate.Children {
		if c.Kind != render.KindOverlay {
			return c
		}
	}
	return nil
}

// Masking reports whether gate is currently masking its content.
func Masking(gate *render.Node) bool {
	return gate != nil && gate.Kind == render.KindGate && gate.Masked
}
