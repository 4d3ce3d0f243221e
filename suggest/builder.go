// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package suggest provides the completion data model shared by the parser,
// the dispatcher, and the argument types.
package suggest

import (
	"strings"

	"github.com/jeranaias/dispatch/reader"
)

// =============================================================================
// BUILDER
// =============================================================================

// Builder accumulates suggestions for one completion request. It carries the
// full input and the start position the suggestions apply from, so providers
// only need to supply replacement text. A suggestion equal to the text the
// user has already typed past the start position is dropped, since applying
// it would change nothing.
type Builder struct {
	// Input is the full command input the suggestions are for.
	Input string

	// Start is the position suggestions apply from.
	Start int

	remaining        string
	remainingLowered string
	result           []Suggestion

	// Seeded display metadata, copied onto every suggestion added after the
	// corresponding With* call.
	prefix string
	suffix string
	kind   Kind
	node   any
}

// NewBuilder creates a builder for input with suggestions applying from
// start.
func NewBuilder(input string, start int) *Builder {
	remaining := input[start:]
	return &Builder{
		Input:            input,
		Start:            start,
		remaining:        remaining,
		remainingLowered: strings.ToLower(remaining),
	}
}

// Remaining returns the input from the start position to the end.
func (b *Builder) Remaining() string {
	return b.remaining
}

// RemainingLowered returns Remaining lowercased, for prefix matching.
func (b *Builder) RemainingLowered() string {
	return b.remainingLowered
}

// WithPrefix seeds a usage prefix onto subsequently added suggestions.
func (b *Builder) WithPrefix(prefix string) *Builder {
	b.prefix = prefix
	return b
}

// WithSuffix seeds a description suffix onto subsequently added suggestions.
func (b *Builder) WithSuffix(suffix string) *Builder {
	b.suffix = suffix
	return b
}

// WithKind seeds a kind onto subsequently added suggestions.
func (b *Builder) WithKind(kind Kind) *Builder {
	b.kind = kind
	return b
}

// WithNode seeds an originating node onto subsequently added suggestions.
func (b *Builder) WithNode(node any) *Builder {
	b.node = node
	return b
}

// Suggest adds a plain text suggestion.
func (b *Builder) Suggest(text string) *Builder {
	return b.SuggestWithTooltip(text, "")
}

// SuggestWithTooltip adds a text suggestion with a hover tooltip. Text equal
// to the remaining input is dropped.
func (b *Builder) SuggestWithTooltip(text, tooltip string) *Builder {
	if text == b.remaining {
		return b
	}
	b.result = append(b.result, Suggestion{
		Range:   reader.Between(b.Start, len(b.Input)),
		Text:    text,
		Tooltip: tooltip,
		Prefix:  b.prefix,
		Suffix:  b.suffix,
		Kind:    b.kind,
		Node:    b.node,
	})
	return b
}

// Add copies every suggestion from another builder into this one.
func (b *Builder) Add(other *Builder) *Builder {
	b.result = append(b.result, other.result...)
	return b
}

// Build merges the accumulated suggestions into a sorted, deduplicated set.
func (b *Builder) Build() Suggestions {
	return Create(b.Input, b.result)
}

// CreateOffset returns a fresh builder over the same input with a new start
// position.
func (b *Builder) CreateOffset(start int) *Builder {
	return NewBuilder(b.Input, start)
}

// Restart returns a fresh builder over the same input and start position,
// discarding accumulated suggestions and seeded metadata.
func (b *Builder) Restart() *Builder {
	return NewBuilder(b.Input, b.Start)
}
