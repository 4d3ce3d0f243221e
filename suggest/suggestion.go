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
// SUGGESTION KIND
// =============================================================================

// Kind classifies where a suggestion came from.
type Kind int

const (
	// KindOther is the default for suggestions with no known origin.
	KindOther Kind = iota
	// KindLiteral marks a suggestion produced from a literal keyword node.
	KindLiteral
	// KindArgument marks a suggestion produced by an argument type.
	KindArgument
)

// =============================================================================
// SUGGESTION
// =============================================================================

// Suggestion is one candidate completion. Text replaces the span of the
// original input covered by Range; the remaining fields are display metadata
// and do not affect what is inserted.
type Suggestion struct {
	// Range is the span of the original input the suggestion replaces.
	Range reader.StringRange

	// Text is the replacement text.
	Text string

	// Tooltip is an optional hover description.
	Tooltip string

	// Prefix is an optional usage string displayed before Text.
	Prefix string

	// Suffix is an optional description displayed after Text.
	Suffix string

	// Kind classifies the suggestion source.
	Kind Kind

	// Node is the grammar node that produced the suggestion, if any.
	Node any
}

// Apply splices the suggestion into the given input, replacing the covered
// range with Text.
func (s Suggestion) Apply(input string) string {
	if s.Range.Start == 0 && s.Range.End == len(input) {
		return s.Text
	}
	var sb strings.Builder
	if s.Range.Start > 0 {
		sb.WriteString(input[:s.Range.Start])
	}
	sb.WriteString(s.Text)
	if s.Range.End < len(input) {
		sb.WriteString(input[s.Range.End:])
	}
	return sb.String()
}

// Expand widens the suggestion to cover rng, splicing in the surrounding
// characters of command so the replacement text stays equivalent. A
// suggestion already covering rng is returned unchanged.
func (s Suggestion) Expand(command string, rng reader.StringRange) Suggestion {
	if rng == s.Range {
		return s
	}
	var sb strings.Builder
	if rng.Start < s.Range.Start {
		sb.WriteString(command[rng.Start:s.Range.Start])
	}
	sb.WriteString(s.Text)
	if rng.End > s.Range.End {
		sb.WriteString(command[s.Range.End:rng.End])
	}
	out := s
	out.Range = rng
	out.Text = sb.String()
	return out
}

// compare orders suggestions case-insensitively by text, falling back to a
// case-sensitive comparison for a stable total order.
func compare(a, b Suggestion) int {
	if c := strings.Compare(strings.ToLower(a.Text), strings.ToLower(b.Text)); c != 0 {
		return c
	}
	return strings.Compare(a.Text, b.Text)
}
