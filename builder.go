// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch is a command grammar dispatcher built around a tree of
// literal and argument nodes.
package dispatch

import "github.com/jeranaias/dispatch/cmderr"

// =============================================================================
// BUILDER
// =============================================================================

// Builder is the common surface of the fluent node builders. Build
// materializes the subtree; a builder is single-use.
type Builder interface {
	// Build materializes the node and its subtree.
	Build() *CommandNode
}

// base carries the attributes shared by both builder kinds. Misuse (children
// on a redirecting node, redirecting a node with children) panics.
type base struct {
	children    []Builder
	command     Command
	description string
	requirement Requirement
	target      *CommandNode
	modifier    RedirectModifier
	forks       bool
}

func (b *base) then(children []Builder) {
	if b.target != nil {
		panic("dispatch: cannot add children to a redirecting node")
	}
	b.children = append(b.children, children...)
}

func (b *base) executes(fn Command, description []string) {
	b.command = fn
	if len(description) > 0 {
		b.description = description[0]
	}
}

// requires accumulates: repeated calls combine via conjunction, first
// denial wins.
func (b *base) requires(req Requirement) {
	if b.requirement == nil {
		b.requirement = req
		return
	}
	prev := b.requirement
	b.requirement = func(source any) *cmderr.RequirementError {
		if denial := prev(source); denial != nil {
			return denial
		}
		return req(source)
	}
}

func (b *base) redirect(target *CommandNode, modifier RedirectModifier, forks bool) {
	if len(b.children) > 0 {
		panic("dispatch: cannot redirect a node with children")
	}
	b.target = target
	b.modifier = modifier
	b.forks = forks
}

func (b *base) fill(node *CommandNode) *CommandNode {
	node.command = b.command
	node.description = b.description
	node.requirement = b.requirement
	node.redirect = b.target
	node.modifier = b.modifier
	node.forks = b.forks
	for _, child := range b.children {
		node.AddChild(child.Build())
	}
	return node
}

// =============================================================================
// LITERAL BUILDER
// =============================================================================

// LiteralBuilder assembles a literal keyword node.
type LiteralBuilder struct {
	base
	names []string
}

// Literal starts a builder for a literal keyword. The first name is
// canonical, the rest are aliases; all match case-insensitively. Panics when
// given no names.
func Literal(names ...string) *LiteralBuilder {
	if len(names) == 0 {
		panic("dispatch: literal needs at least one name")
	}
	return &LiteralBuilder{names: names}
}

// Then attaches child builders.
func (b *LiteralBuilder) Then(children ...Builder) *LiteralBuilder {
	b.then(children)
	return b
}

// ThenLiteral attaches a childless literal child, a shorthand for terminal
// keywords.
func (b *LiteralBuilder) ThenLiteral(names ...string) *LiteralBuilder {
	return b.Then(Literal(names...))
}

// ThenArgument attaches a childless argument child.
func (b *LiteralBuilder) ThenArgument(name string, argType ArgumentType) *LiteralBuilder {
	return b.Then(Argument(name, argType))
}

// Executes attaches the executor, with an optional human description.
func (b *LiteralBuilder) Executes(fn Command, description ...string) *LiteralBuilder {
	b.executes(fn, description)
	return b
}

// Requires gates the node on a predicate over the source. Repeated calls
// combine via conjunction.
func (b *LiteralBuilder) Requires(req Requirement) *LiteralBuilder {
	b.requires(req)
	return b
}

// Redirect transfers further parsing to the target node.
func (b *LiteralBuilder) Redirect(target *CommandNode) *LiteralBuilder {
	b.redirect(target, nil, false)
	return b
}

// RedirectModified redirects with a modifier deriving the new source.
func (b *LiteralBuilder) RedirectModified(target *CommandNode, modifier RedirectModifier) *LiteralBuilder {
	b.redirect(target, modifier, false)
	return b
}

// Fork redirects with a modifier that may fan execution out across multiple
// derived sources, collecting per-branch failures instead of aborting.
func (b *LiteralBuilder) Fork(target *CommandNode, modifier RedirectModifier) *LiteralBuilder {
	b.redirect(target, modifier, true)
	return b
}

// Build materializes the literal node and its subtree.
func (b *LiteralBuilder) Build() *CommandNode {
	node := newNode(nodeLiteral)
	node.names = b.names
	return b.fill(node)
}

// =============================================================================
// ARGUMENT BUILDER
// =============================================================================

// ArgumentBuilder assembles a typed argument node.
type ArgumentBuilder struct {
	base
	name        string
	argType     ArgumentType
	suggestions SuggestionProvider
}

// Argument starts a builder for a typed argument slot.
func Argument(name string, argType ArgumentType) *ArgumentBuilder {
	return &ArgumentBuilder{name: name, argType: argType}
}

// Then attaches child builders.
func (b *ArgumentBuilder) Then(children ...Builder) *ArgumentBuilder {
	b.then(children)
	return b
}

// ThenLiteral attaches a childless literal child.
func (b *ArgumentBuilder) ThenLiteral(names ...string) *ArgumentBuilder {
	return b.Then(Literal(names...))
}

// ThenArgument attaches a childless argument child.
func (b *ArgumentBuilder) ThenArgument(name string, argType ArgumentType) *ArgumentBuilder {
	return b.Then(Argument(name, argType))
}

// Executes attaches the executor, with an optional human description.
func (b *ArgumentBuilder) Executes(fn Command, description ...string) *ArgumentBuilder {
	b.executes(fn, description)
	return b
}

// Requires gates the node on a predicate over the source. Repeated calls
// combine via conjunction.
func (b *ArgumentBuilder) Requires(req Requirement) *ArgumentBuilder {
	b.requires(req)
	return b
}

// Redirect transfers further parsing to the target node.
func (b *ArgumentBuilder) Redirect(target *CommandNode) *ArgumentBuilder {
	b.redirect(target, nil, false)
	return b
}

// RedirectModified redirects with a modifier deriving the new source.
func (b *ArgumentBuilder) RedirectModified(target *CommandNode, modifier RedirectModifier) *ArgumentBuilder {
	b.redirect(target, modifier, false)
	return b
}

// Fork redirects with a modifier that may fan execution out across multiple
// derived sources, collecting per-branch failures instead of aborting.
func (b *ArgumentBuilder) Fork(target *CommandNode, modifier RedirectModifier) *ArgumentBuilder {
	b.redirect(target, modifier, true)
	return b
}

// Suggests overrides the argument type's completion behavior for this node.
func (b *ArgumentBuilder) Suggests(provider SuggestionProvider) *ArgumentBuilder {
	b.suggestions = provider
	return b
}

// Build materializes the argument node and its subtree.
func (b *ArgumentBuilder) Build() *CommandNode {
	node := newNode(nodeArgument)
	node.name = b.name
	node.argType = b.argType
	node.customSuggestions = b.suggestions
	return b.fill(node)
}
