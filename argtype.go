// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch is a command grammar dispatcher built around a tree of
// literal and argument nodes.
package dispatch

import (
	"context"

	"github.com/jeranaias/dispatch/cmderr"
	"github.com/jeranaias/dispatch/reader"
	"github.com/jeranaias/dispatch/suggest"
)

// =============================================================================
// ARGUMENT TYPE CONTRACT
// =============================================================================

// ArgumentType is the plugin contract for a typed argument slot. Parse is
// synchronous and consumes input from the reader up to the next separator or
// a type-specific terminator; Load resolves the parsed form into the final
// value and may do expensive work. The split lets resolution happen only
// after the parse has committed to this alternative.
//
// Parse failures should return cmderr errors pinned at the failure position
// and leave the reader cursor where it was before the read, unless the error
// is marked WithoutRewind, in which case the pinned reader's cursor is
// authoritative.
type ArgumentType interface {
	// Parse reads one argument token from the reader into an intermediate
	// parsed form.
	Parse(rd *reader.StringReader) (any, error)

	// Load resolves the parsed form into the final argument value.
	Load(ctx context.Context, parsed any) (any, error)

	// ListSuggestions fills the builder with completions for a partially
	// typed argument. The default behavior for most types is to offer the
	// examples that start with the remaining input.
	ListSuggestions(ctx context.Context, c *CommandContext, b *suggest.Builder) error

	// Examples returns a small set of representative inputs, used both for
	// default suggestions and for ambiguity detection.
	Examples() []string
}

// =============================================================================
// FUNCTION TYPES
// =============================================================================

// Command is an executor attached to a node. The returned value is opaque to
// the dispatcher and surfaced in the ExecResult.
type Command func(ctx context.Context, c *CommandContext) (any, error)

// RedirectModifier derives the source values a redirect continues with.
// Returning more than one source under a forking redirect fans execution out
// across every derived source.
type RedirectModifier func(ctx context.Context, c *CommandContext) ([]any, error)

// SuggestionProvider overrides an argument node's completion behavior.
type SuggestionProvider func(ctx context.Context, c *CommandContext, b *suggest.Builder) error

// Requirement gates a node on the caller's source value. A nil return
// permits the node. A non-nil RequirementError denies it; a denial with a
// nil Reason hides the node silently, and ShowInTree controls whether a
// denied node is still listed in help and suggestions.
type Requirement func(source any) *cmderr.RequirementError

// ResultConsumer observes the outcome of each executed branch.
type ResultConsumer func(c *CommandContext, success bool, value any)

// =============================================================================
// REQUIREMENT HELPERS
// =============================================================================

// Require adapts a boolean predicate into a Requirement that denies with the
// given reason.
func Require(pred func(source any) bool, reason any) Requirement {
	return func(source any) *cmderr.RequirementError {
		if pred(source) {
			return nil
		}
		return cmderr.NewRequirementError(reason)
	}
}

// RequireHidden adapts a boolean predicate into a Requirement that hides the
// node silently when denied.
func RequireHidden(pred func(source any) bool) Requirement {
	return func(source any) *cmderr.RequirementError {
		if pred(source) {
			return nil
		}
		return cmderr.NewRequirementError(nil)
	}
}
