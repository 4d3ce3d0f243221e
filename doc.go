// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch is a command grammar dispatcher: a library for
// declaratively building a tree of commands, parsing free-form input against
// that tree, executing the matched command, and offering context-sensitive
// completion suggestions for partial input.
//
// A grammar is a tree of literal keyword nodes and typed argument nodes,
// assembled with the fluent Literal and Argument builders and registered on
// a Dispatcher. Parsing is a non-deterministic descent: literals and
// argument parsers compete for each token, rejected alternatives are
// recorded in an error map, and the deepest successful state wins. Nodes may
// redirect to other nodes (including the root, forming cycles) and may fork
// execution across multiple derived sources.
//
// # Key Types
//
//   - Dispatcher: owns the root, exposes Register/Parse/Execute/suggestions
//   - CommandNode: one vertex of the grammar (root, literal, or argument)
//   - LiteralBuilder, ArgumentBuilder: fluent tree construction
//   - CommandContext: frozen parse state handed to executors
//   - ParseResults: deepest context + leftover reader + rejection errors
//   - ArgumentType: plugin contract for parsing one argument value
//
// # Usage
//
//	d := dispatch.NewDispatcher()
//	d.Register(dispatch.Literal("greet").
//		Then(dispatch.Argument("name", arguments.Word()).
//			Executes(func(ctx context.Context, c *dispatch.CommandContext) (any, error) {
//				name, err := dispatch.GetArgument[string](c, "name")
//				if err != nil {
//					return nil, err
//				}
//				return "hello " + name, nil
//			})))
//	results, err := d.Execute(context.Background(), "greet world", nil)
package dispatch
