// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package render defines the render tree the workbench composes each frame
// and the printer that turns it into styled terminal text.
//
// # Description
//
// Builders (the composition layer, view renderers, the loading gate)
// return *Node values. A tree is a plain description: it owns no state and
// can be inspected in tests with Find and PlainText before Print styles it.
package render

import "strings"

// Kind tells the printer how to lay out a node.
type Kind int

const (
	// KindSection stacks its children vertically.
	KindSection Kind = iota

	// KindRow places its children side by side.
	KindRow

	// KindHeading is a section title.
	KindHeading

	// KindText is a line of body text.
	KindText

	// KindMuted is a line of secondary text.
	KindMuted

	// KindList holds KindItem children. Ordered lists are numbered.
	KindList

	// KindItem is a list entry; its children render indented below it.
	KindItem

	// KindStats holds KindStat children on one line.
	KindStats

	// KindStat is a value with a label.
	KindStat

	// KindTabs holds KindTab children for a view switcher.
	KindTabs

	// KindTab is one switcher entry.
	KindTab

	// KindGate wraps content that may be masked by an overlay.
	KindGate

	// KindOverlay is the banner a gate shows while masked.
	KindOverlay
)

// Node is one element of a render tree.
type Node struct {
	Kind Kind

	// ID names a node for lookup. Not required to be unique, Find returns
	// the first match in depth-first order.
	ID string

	Text string

	// Value is the stat value for KindStat.
	Value string

	// Active marks the selected tab or item.
	Active bool

	// Ordered numbers the items of a KindList.
	Ordered bool

	// Masked is set on a KindGate whose content is obscured.
	Masked bool

	Children []*Node
}

// Section stacks children vertically.
func Section(id string, children ...*Node) *Node {
	return &Node{Kind: KindSection, ID: id, Children: compact(children)}
}

// Row places children side by side.
func Row(id string, children ...*Node) *Node {
	return &Node{Kind: KindRow, ID: id, Children: compact(children)}
}

// Heading creates a title line.
func Heading(text string) *Node {
	return &Node{Kind: KindHeading, Text: text}
}

// Text creates a body line.
func Text(text string) *Node {
	return &Node{Kind: KindText, Text: text}
}

// Muted creates a secondary line.
func Muted(text string) *Node {
	return &Node{Kind: KindMuted, Text: text}
}

// List creates an unordered list.
func List(id string, items ...*Node) *Node {
	return &Node{Kind: KindList, ID: id, Children: compact(items)}
}

// OrderedList creates a numbered list.
func OrderedList(id string, items ...*Node) *Node {
	return &Node{Kind: KindList, ID: id, Ordered: true, Children: compact(items)}
}

// Item creates a list entry with optional nested content.
func Item(id, text string, children ...*Node) *Node {
	return &Node{Kind: KindItem, ID: id, Text: text, Children: compact(children)}
}

// Stats creates a stats strip.
func Stats(id string, stats ...*Node) *Node {
	return &Node{Kind: KindStats, ID: id, Children: compact(stats)}
}

// Stat creates one stats entry.
func Stat(id, value, label string) *Node {
	return &Node{Kind: KindStat, ID: id, Value: value, Text: label}
}

// Tabs creates a switcher.
func Tabs(id string, tabs ...*Node) *Node {
	return &Node{Kind: KindTabs, ID: id, Children: compact(tabs)}
}

// Tab creates one switcher entry.
func Tab(id, label string, active bool) *Node {
	return &Node{Kind: KindTab, ID: id, Text: label, Active: active}
}

// Find returns the first node with the given id, or nil.
func (n *Node) Find(id string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if c.ID == id {
			found = c
			return false
		}
		return true
	})
	return found
}

// Contains reports whether a node with the given id exists in the tree.
func (n *Node) Contains(id string) bool {
	return n.Find(id) != nil
}

// Walk visits n and its descendants depth-first until fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// PlainText returns the unstyled text of the tree, one node per line.
// Stats render as "value label".
func (n *Node) PlainText() string {
	var b strings.Builder
	n.Walk(func(c *Node) bool {
		switch {
		case c.Kind == KindStat:
			b.WriteString(c.Value + " " + c.Text + "\n")
		case c.Text != "":
			b.WriteString(c.Text + "\n")
		}
		return true
	})
	return b.String()
}

func compact(nodes []*Node) []*Node {
	out := nodes[:0:0]
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}
