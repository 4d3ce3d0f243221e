// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch is a command grammar dispatcher built around a tree of
// literal and argument nodes.
package dispatch

import (
	"context"
	"strings"

	"github.com/jeranaias/dispatch/cmderr"
	"github.com/jeranaias/dispatch/reader"
)

// Usage syntax tokens: [ ] wrap an optional element, ( ) wrap a required
// choice, | separates alternatives.
const (
	usageOptionalOpen  = "["
	usageOptionalClose = "]"
	usageRequiredOpen  = "("
	usageRequiredClose = ")"
	usageOr            = "|"
)

// =============================================================================
// FLAT USAGE
// =============================================================================

// GetAllUsage returns one usage line per executable path beneath the node.
// A redirect renders as "..." when it targets the root and as "-> target"
// otherwise. With restricted set, paths the source cannot use are omitted.
func (d *Dispatcher) GetAllUsage(node *CommandNode, source any, restricted bool) []string {
	var result []string
	d.allUsage(node, source, &result, "", restricted)
	return result
}

func (d *Dispatcher) allUsage(node *CommandNode, source any, result *[]string, prefix string, restricted bool) {
	if restricted && !node.CanUse(source) {
		return
	}
	if node.command != nil {
		*result = append(*result, prefix)
	}
	switch {
	case node.redirect != nil:
		redirect := "-> " + node.redirect.UsageText()
		if node.redirect == d.root {
			redirect = "..."
		}
		if prefix == "" {
			*result = append(*result, node.UsageText()+string(ArgumentSeparator)+redirect)
		} else {
			*result = append(*result, prefix+string(ArgumentSeparator)+redirect)
		}
	case len(node.children) > 0:
		for _, child := range node.Children() {
			childPrefix := child.UsageText()
			if prefix != "" {
				childPrefix = prefix + string(ArgumentSeparator) + child.UsageText()
			}
			d.allUsage(child, source, result, childPrefix, restricted)
		}
	}
}

// =============================================================================
// SMART USAGE
// =============================================================================

// GetSmartUsage returns a compact usage string per direct child of the
// node, collapsing single-child chains and rendering sibling alternatives
// as (a|b) or [a|b] depending on whether the parent is itself executable.
// Children the source cannot use are omitted, preserving child order.
func (d *Dispatcher) GetSmartUsage(node *CommandNode, source any) ([]*CommandNode, map[*CommandNode]string) {
	var order []*CommandNode
	result := make(map[*CommandNode]string)
	optional := node.command != nil
	for _, child := range node.Children() {
		if usage := d.smartUsage(child, source, optional, false); usage != "" {
			order = append(order, child)
			result[child] = usage
		}
	}
	return order, result
}

func (d *Dispatcher) smartUsage(node *CommandNode, source any, optional, deep bool) string {
	if !node.CanUse(source) {
		return ""
	}
	self := node.UsageText()
	if optional {
		self = usageOptionalOpen + self + usageOptionalClose
	}
	childOptional := node.command != nil
	if deep {
		return self
	}

	if node.redirect != nil {
		redirect := "-> " + node.redirect.UsageText()
		if node.redirect == d.root {
			redirect = "..."
		}
		return self + string(ArgumentSeparator) + redirect
	}

	var usable []*CommandNode
	for _, child := range node.Children() {
		if child.CanUse(source) {
			usable = append(usable, child)
		}
	}
	switch {
	case len(usable) == 1:
		if usage := d.smartUsage(usable[0], source, childOptional, childOptional); usage != "" {
			return self + string(ArgumentSeparator) + usage
		}
	case len(usable) > 1:
		seen := make(map[string]struct{})
		var childUsage []string
		for _, child := range usable {
			usage := d.smartUsage(child, source, childOptional, true)
			if usage == "" {
				continue
			}
			if _, dup := seen[usage]; dup {
				continue
			}
			seen[usage] = struct{}{}
			childUsage = append(childUsage, usage)
		}
		if len(childUsage) == 1 {
			usage := childUsage[0]
			if childOptional {
				usage = usageOptionalOpen + usage + usageOptionalClose
			}
			return self + string(ArgumentSeparator) + usage
		}
		if len(childUsage) > 1 {
			open, close := usageRequiredOpen, usageRequiredClose
			if childOptional {
				open, close = usageOptionalOpen, usageOptionalClose
			}
			var names []string
			for _, child := range usable {
				names = append(names, child.UsageText())
			}
			return self + string(ArgumentSeparator) + open + strings.Join(names, usageOr) + close
		}
	}
	return self
}

// =============================================================================
// PATH LOOKUP
// =============================================================================

// FindNode walks child names from the root and returns the node at the end
// of the path, or nil when any segment is missing.
func (d *Dispatcher) FindNode(path ...string) *CommandNode {
	node := d.root
	for _, name := range path {
		node = node.Child(name)
		if node == nil {
			return nil
		}
	}
	return node
}

// GetPath returns the child-name path from the root to the target node, or
// nil when the target is not reachable through ownership edges.
func (d *Dispatcher) GetPath(target *CommandNode) []string {
	return findPath(d.root, target, nil)
}

func findPath(node, target *CommandNode, prefix []string) []string {
	for _, child := range node.Children() {
		path := append(prefix[:len(prefix):len(prefix)], child.Name())
		if child == target {
			return path
		}
		if found := findPath(child, target, path); found != nil {
			return found
		}
	}
	return nil
}

// Get resolves a space-separated path of child names for the given source.
// Literal segments match case-insensitively including aliases. An unknown
// segment or a segment the source cannot use is an error.
func (d *Dispatcher) Get(ctx context.Context, path string, source any) (*CommandNode, error) {
	node := d.root
	rd := reader.New(path)
	for rd.CanReadAnything() {
		rd.SkipWhitespace()
		if !rd.CanReadAnything() {
			break
		}
		at := rd.Clone()
		name := rd.ReadUntil(byte(ArgumentSeparator))
		next := node.Child(name)
		if next == nil {
			next = node.byLiteral[strings.ToLower(name)]
		}
		if next == nil {
			return nil, cmderr.NewUnknownError("command").WithReader(at)
		}
		if denial := next.CheckRequirement(source); denial != nil {
			return nil, denial.WithReader(at)
		}
		node = next
	}
	if node == d.root {
		return nil, cmderr.NewUnknownError("command")
	}
	return node, nil
}
