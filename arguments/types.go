// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package arguments provides the stock argument types for the dispatch
// command grammar.
package arguments

import (
	"context"
	"math"
	"strings"

	"github.com/jeranaias/dispatch"
	"github.com/jeranaias/dispatch/cmderr"
	"github.com/jeranaias/dispatch/reader"
	"github.com/jeranaias/dispatch/suggest"
)

// SuggestExamples fills the builder with the examples that start with the
// remaining input, the default completion behavior for most types.
func SuggestExamples(examples []string, b *suggest.Builder) {
	for _, example := range examples {
		if strings.HasPrefix(strings.ToLower(example), b.RemainingLowered()) {
			b.Suggest(example)
		}
	}
}

// =============================================================================
// INTEGER
// =============================================================================

// IntegerType parses a whole number within inclusive bounds.
type IntegerType struct {
	// Min and Max are the inclusive bounds.
	Min int
	Max int
}

// Integer creates an integer type bounded to [min, max].
func Integer(min, max int) *IntegerType {
	return &IntegerType{Min: min, Max: max}
}

// Int creates an unbounded integer type.
func Int() *IntegerType {
	return Integer(math.MinInt, math.MaxInt)
}

// Parse reads one integer token and checks the bounds.
func (t *IntegerType) Parse(rd *reader.StringReader) (any, error) {
	start := rd.Cursor()
	n, err := rd.ReadInt()
	if err != nil {
		return nil, err
	}
	if n < t.Min {
		rd.SetCursor(start)
		return nil, cmderr.NewRangeError(cmderr.RangeTooLow, "integer", n, t.Min, t.Max).WithReader(rd.Clone())
	}
	if n > t.Max {
		rd.SetCursor(start)
		return nil, cmderr.NewRangeError(cmderr.RangeTooHigh, "integer", n, t.Min, t.Max).WithReader(rd.Clone())
	}
	return n, nil
}

// Load returns the parsed integer unchanged.
func (t *IntegerType) Load(ctx context.Context, parsed any) (any, error) {
	return parsed, nil
}

// ListSuggestions offers the matching examples.
func (t *IntegerType) ListSuggestions(ctx context.Context, c *dispatch.CommandContext, b *suggest.Builder) error {
	SuggestExamples(t.Examples(), b)
	return nil
}

// Examples returns representative integer inputs.
func (t *IntegerType) Examples() []string {
	return []string{"0", "123", "-123"}
}

// =============================================================================
// FLOAT
// =============================================================================

// Float64Type parses a decimal number within inclusive bounds.
type Float64Type struct {
	// Min and Max are the inclusive bounds.
	Min float64
	Max float64
}

// Float64 creates a float type bounded to [min, max].
func Float64(min, max float64) *Float64Type {
	return &Float64Type{Min: min, Max: max}
}

// Float creates an unbounded float type.
func Float() *Float64Type {
	return Float64(math.Inf(-1), math.Inf(1))
}

// Parse reads one float token and checks the bounds.
func (t *Float64Type) Parse(rd *reader.StringReader) (any, error) {
	start := rd.Cursor()
	f, err := rd.ReadFloat64()
	if err != nil {
		return nil, err
	}
	if f < t.Min {
		rd.SetCursor(start)
		return nil, cmderr.NewRangeError(cmderr.RangeTooLow, "float", f, t.Min, t.Max).WithReader(rd.Clone())
	}
	if f > t.Max {
		rd.SetCursor(start)
		return nil, cmderr.NewRangeError(cmderr.RangeTooHigh, "float", f, t.Min, t.Max).WithReader(rd.Clone())
	}
	return f, nil
}

// Load returns the parsed float unchanged.
func (t *Float64Type) Load(ctx context.Context, parsed any) (any, error) {
	return parsed, nil
}

// ListSuggestions offers the matching examples.
func (t *Float64Type) ListSuggestions(ctx context.Context, c *dispatch.CommandContext, b *suggest.Builder) error {
	SuggestExamples(t.Examples(), b)
	return nil
}

// Examples returns representative float inputs.
func (t *Float64Type) Examples() []string {
	return []string{"0", "1.2", "-5.5"}
}

// =============================================================================
// BOOL
// =============================================================================

// BoolType parses "true" or "false", case-insensitively.
type BoolType struct{}

// Bool creates a boolean type.
func Bool() *BoolType {
	return &BoolType{}
}

// Parse reads one boolean token.
func (t *BoolType) Parse(rd *reader.StringReader) (any, error) {
	v, err := rd.ReadBool()
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Load returns the parsed boolean unchanged.
func (t *BoolType) Load(ctx context.Context, parsed any) (any, error) {
	return parsed, nil
}

// ListSuggestions offers the matching examples.
func (t *BoolType) ListSuggestions(ctx context.Context, c *dispatch.CommandContext, b *suggest.Builder) error {
	SuggestExamples(t.Examples(), b)
	return nil
}

// Examples returns both boolean inputs.
func (t *BoolType) Examples() []string {
	return []string{"true", "false"}
}

// =============================================================================
// STRINGS
// =============================================================================

// WordType parses a single unquoted word.
type WordType struct{}

// Word creates a single-word string type.
func Word() *WordType {
	return &WordType{}
}

// Parse reads an unquoted word; an empty word is an error.
func (t *WordType) Parse(rd *reader.StringReader) (any, error) {
	word := rd.ReadUnquotedString()
	if word == "" {
		return nil, cmderr.NewExpectedError("word").WithReader(rd.Clone())
	}
	return word, nil
}

// Load returns the parsed word unchanged.
func (t *WordType) Load(ctx context.Context, parsed any) (any, error) {
	return parsed, nil
}

// ListSuggestions offers the matching examples.
func (t *WordType) ListSuggestions(ctx context.Context, c *dispatch.CommandContext, b *suggest.Builder) error {
	SuggestExamples(t.Examples(), b)
	return nil
}

// Examples returns representative word inputs.
func (t *WordType) Examples() []string {
	return []string{"word", "words_with_underscores"}
}

// PhraseType parses either an unquoted word or a double-quoted string with
// backslash escapes.
type PhraseType struct{}

// Phrase creates an optionally quoted string type.
func Phrase() *PhraseType {
	return &PhraseType{}
}

// Parse reads a quoted or unquoted string token.
func (t *PhraseType) Parse(rd *reader.StringReader) (any, error) {
	s, err := rd.ReadString()
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Load returns the parsed string unchanged.
func (t *PhraseType) Load(ctx context.Context, parsed any) (any, error) {
	return parsed, nil
}

// ListSuggestions offers the matching examples.
func (t *PhraseType) ListSuggestions(ctx context.Context, c *dispatch.CommandContext, b *suggest.Builder) error {
	SuggestExamples(t.Examples(), b)
	return nil
}

// Examples returns representative phrase inputs.
func (t *PhraseType) Examples() []string {
	return []string{"word", `"quoted phrase"`}
}

// GreedyType consumes everything up to the end of the input.
type GreedyType struct{}

// Greedy creates a rest-of-line string type. It must be the last argument
// of its branch since nothing can parse after it.
func Greedy() *GreedyType {
	return &GreedyType{}
}

// Parse consumes the whole remaining input.
func (t *GreedyType) Parse(rd *reader.StringReader) (any, error) {
	text := rd.Remaining()
	if text == "" {
		return nil, cmderr.NewExpectedError("text").WithReader(rd.Clone())
	}
	rd.SetCursor(len(rd.String()))
	return text, nil
}

// Load returns the parsed text unchanged.
func (t *GreedyType) Load(ctx context.Context, parsed any) (any, error) {
	return parsed, nil
}

// ListSuggestions offers nothing; free text has no completions.
func (t *GreedyType) ListSuggestions(ctx context.Context, c *dispatch.CommandContext, b *suggest.Builder) error {
	return nil
}

// Examples returns representative free-text inputs.
func (t *GreedyType) Examples() []string {
	return []string{"word", "words with spaces"}
}
