// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch is a command grammar dispatcher built around a tree of
// literal and argument nodes.
package dispatch

import (
	"fmt"

	"github.com/jeranaias/dispatch/cmderr"
	"github.com/jeranaias/dispatch/reader"
)

// =============================================================================
// PARSED ARGUMENT
// =============================================================================

// ParsedArgument is one bound argument: the span of the original input it
// was parsed from and the loaded value.
type ParsedArgument struct {
	// Range is the span within the original input.
	Range reader.StringRange

	// Value is the loaded argument value.
	Value any
}

// NodeSpan records one traversed node together with the input span it
// consumed.
type NodeSpan struct {
	// Node is the traversed grammar node.
	Node *CommandNode

	// Range is the span of input the node consumed.
	Range reader.StringRange
}

// =============================================================================
// CONTEXT BUILDER
// =============================================================================

// ContextBuilder accumulates parse state as the parser descends: the source
// value, argument bindings, traversed nodes with their spans, the currently
// selected executor, and the child builder produced by a redirect. Copy
// snapshots the builder so a rejected alternative can be discarded.
type ContextBuilder struct {
	dispatcher *Dispatcher
	source     any
	rootNode   *CommandNode
	args       map[string]ParsedArgument
	nodes      []NodeSpan
	command    Command
	child      *ContextBuilder
	rng        reader.StringRange
	modifier   RedirectModifier
	forks      bool
}

// NewContextBuilder creates an empty builder rooted at the given node with
// the covered range anchored at start.
func NewContextBuilder(d *Dispatcher, source any, root *CommandNode, start int) *ContextBuilder {
	return &ContextBuilder{
		dispatcher: d,
		source:     source,
		rootNode:   root,
		args:       make(map[string]ParsedArgument),
		rng:        reader.At(start),
	}
}

// Source returns the caller-provided source value.
func (b *ContextBuilder) Source() any {
	return b.source
}

// RootNode returns the node this builder's descent started from.
func (b *ContextBuilder) RootNode() *CommandNode {
	return b.rootNode
}

// Range returns the span of input covered so far.
func (b *ContextBuilder) Range() reader.StringRange {
	return b.rng
}

// Nodes returns the traversed nodes in order.
func (b *ContextBuilder) Nodes() []NodeSpan {
	return b.nodes
}

// WithSource replaces the source value.
func (b *ContextBuilder) WithSource(source any) *ContextBuilder {
	b.source = source
	return b
}

// WithArgument binds a parsed argument under the given name.
func (b *ContextBuilder) WithArgument(name string, arg ParsedArgument) *ContextBuilder {
	b.args[name] = arg
	return b
}

// WithCommand selects the executor; a later deeper executor overwrites an
// earlier one.
func (b *ContextBuilder) WithCommand(command Command) *ContextBuilder {
	b.command = command
	return b
}

// WithNode appends a traversed node, extends the covered range, and adopts
// the node's redirect modifier and fork flag.
func (b *ContextBuilder) WithNode(node *CommandNode, rng reader.StringRange) *ContextBuilder {
	b.nodes = append(b.nodes, NodeSpan{Node: node, Range: rng})
	b.rng = reader.EncompassingMax(b.rng, rng)
	b.modifier = node.modifier
	b.forks = node.forks
	return b
}

// WithChild attaches the builder produced by following a redirect.
func (b *ContextBuilder) WithChild(child *ContextBuilder) *ContextBuilder {
	b.child = child
	return b
}

// Copy snapshots the builder. Argument and node lists are copied shallowly,
// enough for the parser to back-track between sibling attempts.
func (b *ContextBuilder) Copy() *ContextBuilder {
	c := *b
	c.args = make(map[string]ParsedArgument, len(b.args))
	for name, arg := range b.args {
		c.args[name] = arg
	}
	c.nodes = append([]NodeSpan(nil), b.nodes...)
	return &c
}

// Build freezes the builder into an immutable context over the given input.
func (b *ContextBuilder) Build(input string) *CommandContext {
	var child *CommandContext
	if b.child != nil {
		child = b.child.Build(input)
	}
	return &CommandContext{
		source:   b.source,
		input:    input,
		args:     b.args,
		nodes:    b.nodes,
		command:  b.command,
		child:    child,
		rng:      b.rng,
		modifier: b.modifier,
		forks:    b.forks,
		rootNode: b.rootNode,
	}
}

// =============================================================================
// SUGGESTION CONTEXT
// =============================================================================

// SuggestionContext names the node whose children should provide
// completions and the position they apply from.
type SuggestionContext struct {
	// Parent is the node whose children are queried for suggestions.
	Parent *CommandNode

	// Start is the position within the input suggestions apply from.
	Start int
}

// FindSuggestionContext locates the node under the cursor. When the cursor
// is past this builder's range the search recurses into the redirect child,
// or anchors after the last traversed node. When the cursor sits inside a
// traversed node's span, the node preceding it is the parent and the span's
// start is the anchor, so a partially typed token is completed in place. A
// cursor before the builder's range is an error.
func (b *ContextBuilder) FindSuggestionContext(cursor int) (SuggestionContext, error) {
	if b.rng.Start > cursor {
		return SuggestionContext{}, fmt.Errorf("cannot find node before cursor %d", cursor)
	}
	if b.rng.End < cursor {
		if b.child != nil {
			return b.child.FindSuggestionContext(cursor)
		}
		if len(b.nodes) > 0 {
			last := b.nodes[len(b.nodes)-1]
			return SuggestionContext{Parent: last.Node, Start: last.Range.End + 1}, nil
		}
		return SuggestionContext{Parent: b.rootNode, Start: b.rng.Start}, nil
	}
	prev := b.rootNode
	for _, span := range b.nodes {
		if span.Range.Start <= cursor && cursor <= span.Range.End {
			return SuggestionContext{Parent: prev, Start: span.Range.Start}, nil
		}
		prev = span.Node
	}
	if prev == nil {
		return SuggestionContext{}, fmt.Errorf("cannot find node at cursor %d", cursor)
	}
	return SuggestionContext{Parent: prev, Start: b.rng.Start}, nil
}

// =============================================================================
// COMMAND CONTEXT
// =============================================================================

// CommandContext is the frozen parse state handed to executors, modifiers,
// and suggestion providers. Contexts are immutable and single-use per parse.
type CommandContext struct {
	source   any
	input    string
	args     map[string]ParsedArgument
	nodes    []NodeSpan
	command  Command
	child    *CommandContext
	rng      reader.StringRange
	modifier RedirectModifier
	forks    bool
	rootNode *CommandNode
}

// Source returns the caller-provided source value for this branch.
func (c *CommandContext) Source() any {
	return c.source
}

// Input returns the full command input.
func (c *CommandContext) Input() string {
	return c.input
}

// Range returns the span of input this context covers.
func (c *CommandContext) Range() reader.StringRange {
	return c.rng
}

// Command returns the selected executor, or nil.
func (c *CommandContext) Command() Command {
	return c.command
}

// Child returns the context produced by following a redirect, or nil.
func (c *CommandContext) Child() *CommandContext {
	return c.child
}

// LastChild returns the deepest context in the redirect chain.
func (c *CommandContext) LastChild() *CommandContext {
	result := c
	for result.child != nil {
		result = result.child
	}
	return result
}

// RedirectModifier returns the modifier recorded for this context's
// redirect, or nil.
func (c *CommandContext) RedirectModifier() RedirectModifier {
	return c.modifier
}

// IsForked reports whether this context's redirect forks execution.
func (c *CommandContext) IsForked() bool {
	return c.forks
}

// RootNode returns the node this context's descent started from.
func (c *CommandContext) RootNode() *CommandNode {
	return c.rootNode
}

// Nodes returns the traversed nodes in order.
func (c *CommandContext) Nodes() []NodeSpan {
	return c.nodes
}

// HasNodes reports whether any node was traversed.
func (c *CommandContext) HasNodes() bool {
	return len(c.nodes) > 0
}

// HasArgument reports whether an argument was bound under the given name.
func (c *CommandContext) HasArgument(name string) bool {
	_, ok := c.args[name]
	return ok
}

// Argument returns the raw parsed argument bound under the given name.
func (c *CommandContext) Argument(name string) (ParsedArgument, bool) {
	arg, ok := c.args[name]
	return arg, ok
}

// CopyFor returns a context identical to this one but carrying a different
// source, used when a redirect modifier derives new sources.
func (c *CommandContext) CopyFor(source any) *CommandContext {
	if c.source == source {
		return c
	}
	copied := *c
	copied.source = source
	return &copied
}

// GetArgument returns the argument bound under name as type T. An unbound
// name or a bound value of a different type is an error; the builder's
// name-to-type pairing makes the latter a caller bug.
func GetArgument[T any](c *CommandContext, name string) (T, error) {
	var zero T
	arg, ok := c.args[name]
	if !ok {
		return zero, cmderr.NewUnknownError("argument " + name)
	}
	value, ok := arg.Value.(T)
	if !ok {
		return zero, cmderr.NewSyntaxError("argument %q has type %T, not %T", name, arg.Value, zero)
	}
	return value, nil
}
