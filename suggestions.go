// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch is a command grammar dispatcher built around a tree of
// literal and argument nodes.
package dispatch

import (
	"context"

	"github.com/jeranaias/dispatch/suggest"
)

// =============================================================================
// SUGGESTION ENGINE
// =============================================================================

// GetCompletionSuggestions returns completions at the end of the parsed
// input.
func (d *Dispatcher) GetCompletionSuggestions(ctx context.Context, parse *ParseResults) (suggest.Suggestions, error) {
	return d.GetCompletionSuggestionsAt(ctx, parse, len(parse.Reader.String()))
}

// GetCompletionSuggestionsAt returns completions at an arbitrary cursor
// position inside the parsed input. The node under the cursor is located
// first; its children then each fill a suggestion builder anchored at the
// current token's start, and the per-child sets merge into one sorted set
// over a single covering range. A child whose provider fails contributes
// nothing rather than poisoning the whole panel.
func (d *Dispatcher) GetCompletionSuggestionsAt(ctx context.Context, parse *ParseResults, cursor int) (suggest.Suggestions, error) {
	sc, err := parse.Context.FindSuggestionContext(cursor)
	if err != nil {
		return suggest.Empty(), err
	}

	start := sc.Start
	if cursor < start {
		start = cursor
	}
	fullInput := parse.Reader.String()
	truncated := fullInput[:cursor]
	frozen := parse.Context.Build(truncated)
	source := parse.Context.Source()

	var sets []suggest.Suggestions
	for _, child := range sc.Parent.Children() {
		if denial := child.CheckRequirement(source); denial != nil && !denial.ShowInTree {
			continue
		}
		kind := suggest.KindArgument
		if child.IsLiteral() {
			kind = suggest.KindLiteral
		}
		b := suggest.NewBuilder(truncated, start).
			WithPrefix(child.UsageText()).
			WithSuffix(child.Description()).
			WithKind(kind).
			WithNode(child)
		if err := child.ListSuggestions(ctx, frozen, b); err != nil {
			continue
		}
		sets = append(sets, b.Build())
	}
	return suggest.Merge(fullInput, sets), nil
}
