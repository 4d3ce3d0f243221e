// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch is a command grammar dispatcher built around a tree of
// literal and argument nodes.
package dispatch

import (
	"context"

	"github.com/jeranaias/dispatch/cmderr"
)

// =============================================================================
// EXECUTION
// =============================================================================

// ExecResult is the outcome of one executed branch. Exactly one of Value
// and Err is meaningful, distinguished by Err being nil.
type ExecResult struct {
	// Context is the branch that ran.
	Context *CommandContext

	// Value is the executor's return value on success.
	Value any

	// Err is the executor's or modifier's failure, under forked execution.
	Err error
}

// Execute parses and executes the input in one step.
func (d *Dispatcher) Execute(ctx context.Context, input string, source any) ([]ExecResult, error) {
	return d.ExecuteResults(ctx, d.Parse(ctx, input, source))
}

// ExecuteResults executes a successful parse. An incomplete parse collapses
// the error map to a single representative error. Execution walks the chain
// of redirect contexts, applying modifiers to derive sources; a forking
// redirect fans out across every derived source and collects per-branch
// failures instead of aborting.
func (d *Dispatcher) ExecuteResults(ctx context.Context, parse *ParseResults) ([]ExecResult, error) {
	if parse.Reader.CanReadAnything() {
		if len(parse.Errors) == 1 {
			for _, err := range parse.Errors {
				return nil, err
			}
		}
		if parse.Context.rng.IsEmpty() {
			return nil, cmderr.NewUnknownError("command").WithReader(parse.Reader)
		}
		return nil, cmderr.NewUnknownError("argument").WithReader(parse.Reader)
	}

	var results []ExecResult
	original := parse.Context.Build(parse.Reader.String())
	contexts := []*CommandContext{original}
	var next []*CommandContext
	found := false
	forked := false

	for contexts != nil {
		for _, c := range contexts {
			child := c.Child()
			switch {
			case child != nil:
				forked = forked || c.IsForked()
				if !child.HasNodes() {
					continue
				}
				found = true
				modifier := c.RedirectModifier()
				if modifier == nil {
					next = append(next, child.CopyFor(c.Source()))
					continue
				}
				sources, err := modifier(ctx, c)
				if err != nil {
					d.consumer(c, false, nil)
					if !forked {
						return nil, err
					}
					results = append(results, ExecResult{Context: c, Err: err})
					continue
				}
				for _, source := range sources {
					next = append(next, child.CopyFor(source))
				}
			case c.Command() != nil:
				found = true
				value, err := c.Command()(ctx, c)
				if err != nil {
					d.consumer(c, false, nil)
					if !forked {
						return nil, err
					}
					results = append(results, ExecResult{Context: c, Err: err})
					continue
				}
				d.consumer(c, true, value)
				results = append(results, ExecResult{Context: c, Value: value})
			}
		}
		contexts = next
		next = nil
	}

	if !found {
		d.consumer(original, false, nil)
		return nil, cmderr.NewUnknownError("command").WithReader(parse.Reader)
	}
	return results, nil
}
