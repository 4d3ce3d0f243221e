// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch is a command grammar dispatcher built around a tree of
// literal and argument nodes.
package dispatch

import (
	"context"
	"sort"

	"github.com/jeranaias/dispatch/cmderr"
	"github.com/jeranaias/dispatch/reader"
)

// =============================================================================
// DISPATCHER
// =============================================================================

// Dispatcher owns the root of a command tree and drives parsing, execution,
// and completion against it. Registration must not race with parses using
// the same root; concurrent read-only parses are safe.
type Dispatcher struct {
	root     *CommandNode
	consumer ResultConsumer
}

// NewDispatcher creates a dispatcher with an empty root.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		root:     newRootNode(),
		consumer: func(*CommandContext, bool, any) {},
	}
}

// Root returns the implicit parent of all registered commands.
func (d *Dispatcher) Root() *CommandNode {
	return d.root
}

// SetConsumer installs a callback observing the outcome of every executed
// branch. A nil consumer restores the default no-op.
func (d *Dispatcher) SetConsumer(consumer ResultConsumer) {
	if consumer == nil {
		consumer = func(*CommandContext, bool, any) {}
	}
	d.consumer = consumer
}

// Register builds the given command and adds it under the root, merging
// with any existing command of the same name. The built node is returned so
// it can be used as a redirect target or unregistered later.
func (d *Dispatcher) Register(b Builder) *CommandNode {
	return d.RegisterBuilt(b.Build())
}

// RegisterBuilt adds an already-built node under the root.
func (d *Dispatcher) RegisterBuilt(node *CommandNode) *CommandNode {
	d.root.AddChild(node)
	return node
}

// Unregister removes the named command's whole subtree from the root.
func (d *Dispatcher) Unregister(node *CommandNode) {
	d.root.Remove(node.Name())
}

// =============================================================================
// PARSE RESULTS
// =============================================================================

// ParseResults is the outcome of one parse: the deepest successful context,
// the reader at the point parsing stopped, and the error each rejected
// child raised. An empty error map with a fully consumed reader signals
// complete success.
type ParseResults struct {
	// Context is the deepest successful context builder.
	Context *ContextBuilder

	// Reader is positioned where parsing stopped.
	Reader *reader.StringReader

	// Errors maps each rejected child node to the error it raised.
	Errors map[*CommandNode]error
}

// =============================================================================
// PARSER
// =============================================================================

// Parse parses the input against the tree for the given source.
func (d *Dispatcher) Parse(ctx context.Context, input string, source any) *ParseResults {
	return d.ParseReader(ctx, reader.New(input), source)
}

// ParseReader parses from an existing reader, starting at its cursor.
func (d *Dispatcher) ParseReader(ctx context.Context, rd *reader.StringReader, source any) *ParseResults {
	root := NewContextBuilder(d, source, d.root, rd.Cursor())
	return d.parseNodes(ctx, d.root, rd, root)
}

// parseNodes tries every relevant child of node against the input. Each
// attempt runs on its own reader clone and context copy, so a rejected
// alternative leaves no trace beyond its entry in the error map. Surviving
// alternatives compete as potentials: a parse with no leftover input beats
// one with leftover, then one without errors beats one with, and remaining
// ties keep the deterministic child order.
func (d *Dispatcher) parseNodes(ctx context.Context, node *CommandNode, originalReader *reader.StringReader, contextSoFar *ContextBuilder) *ParseResults {
	source := contextSoFar.source
	var errs map[*CommandNode]error
	var potentials []*ParseResults

	recordErr := func(child *CommandNode, err error) {
		if errs == nil {
			errs = make(map[*CommandNode]error)
		}
		errs[child] = err
	}

	for _, child := range node.Relevant(originalReader) {
		if denial := child.CheckRequirement(source); denial != nil {
			if denial.Reason != nil {
				recordErr(child, denial)
			}
			continue
		}

		childContext := contextSoFar.Copy()
		rd := originalReader.Clone()
		err := child.Parse(ctx, rd, childContext)
		if err == nil && rd.CanReadAnything() && rd.Peek() != ArgumentSeparator {
			err = cmderr.NewExpectedSeparatorError().WithReader(rd.Clone())
		}
		if err != nil {
			recordErr(child, err)
			continue
		}

		childContext.WithCommand(child.command)

		// A redirect needs only one lookahead character because the target
		// re-consumes from the separator on; a normal descent needs the
		// separator plus at least one character of the next token.
		needed := 2
		if child.redirect != nil {
			needed = 1
		}
		if !rd.CanRead(needed) {
			potentials = append(potentials, &ParseResults{Context: childContext, Reader: rd})
			continue
		}

		rd.Skip()
		if child.redirect != nil {
			redirected := NewContextBuilder(d, source, child.redirect, rd.Cursor())
			parsed := d.parseNodes(ctx, child.redirect, rd, redirected)
			childContext.WithChild(parsed.Context)
			return &ParseResults{Context: childContext, Reader: parsed.Reader, Errors: parsed.Errors}
		}
		potentials = append(potentials, d.parseNodes(ctx, child, rd, childContext))
	}

	if len(potentials) == 0 {
		return &ParseResults{Context: contextSoFar, Reader: originalReader, Errors: errs}
	}
	if len(potentials) > 1 {
		sort.SliceStable(potentials, func(i, j int) bool {
			a, b := potentials[i], potentials[j]
			aLeft, bLeft := a.Reader.CanReadAnything(), b.Reader.CanReadAnything()
			if aLeft != bLeft {
				return !aLeft
			}
			aErrs, bErrs := len(a.Errors) > 0, len(b.Errors) > 0
			if aErrs != bErrs {
				return !aErrs
			}
			return false
		})
	}
	return potentials[0]
}
