// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package arguments provides the stock argument types for the dispatch
// command grammar.
package arguments

import (
	"context"
	"strings"

	"github.com/jeranaias/dispatch"
	"github.com/jeranaias/dispatch/cmderr"
	"github.com/jeranaias/dispatch/reader"
	"github.com/jeranaias/dispatch/suggest"
)

// =============================================================================
// SIMPLE
// =============================================================================

// SimpleType lifts a parse function into a full argument type whose loaded
// value is the parsed value itself.
type SimpleType[P any] struct {
	parse    func(rd *reader.StringReader) (P, error)
	examples []string
}

// Simple creates an argument type from a parse function and its examples.
func Simple[P any](parse func(rd *reader.StringReader) (P, error), examples ...string) *SimpleType[P] {
	return &SimpleType[P]{parse: parse, examples: examples}
}

// Parse runs the wrapped parse function.
func (t *SimpleType[P]) Parse(rd *reader.StringReader) (any, error) {
	v, err := t.parse(rd)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Load returns the parsed value unchanged.
func (t *SimpleType[P]) Load(ctx context.Context, parsed any) (any, error) {
	return parsed, nil
}

// ListSuggestions offers the matching examples.
func (t *SimpleType[P]) ListSuggestions(ctx context.Context, c *dispatch.CommandContext, b *suggest.Builder) error {
	SuggestExamples(t.examples, b)
	return nil
}

// Examples returns the examples given at construction.
func (t *SimpleType[P]) Examples() []string {
	return t.examples
}

// =============================================================================
// LAZY
// =============================================================================

// LazyType defers an inner type's parse and load to load time. Parse
// consumes one whitespace-delimited token as an opaque string; Load runs the
// inner type over that token. Useful when the inner parse is expensive or
// must not run until the parser has committed to this alternative.
type LazyType struct {
	inner dispatch.ArgumentType
}

// Lazy wraps an inner type with deferred parsing.
func Lazy(inner dispatch.ArgumentType) *LazyType {
	return &LazyType{inner: inner}
}

// Parse consumes one opaque token up to the next separator.
func (t *LazyType) Parse(rd *reader.StringReader) (any, error) {
	token := rd.ReadUntil(' ')
	if token == "" {
		return nil, cmderr.NewExpectedError("argument").WithReader(rd.Clone())
	}
	return token, nil
}

// Load parses the deferred token with the inner type and loads the result.
// The token must be consumed in full.
func (t *LazyType) Load(ctx context.Context, parsed any) (any, error) {
	token := parsed.(string)
	rd := reader.New(token)
	inner, err := t.inner.Parse(rd)
	if err != nil {
		return nil, err
	}
	if rd.CanReadAnything() {
		return nil, cmderr.NewSyntaxError("trailing data in %q", token).WithReader(rd.Clone())
	}
	return t.inner.Load(ctx, inner)
}

// ListSuggestions delegates to the inner type.
func (t *LazyType) ListSuggestions(ctx context.Context, c *dispatch.CommandContext, b *suggest.Builder) error {
	return t.inner.ListSuggestions(ctx, c, b)
}

// Examples delegates to the inner type.
func (t *LazyType) Examples() []string {
	return t.inner.Examples()
}

// =============================================================================
// LIST
// =============================================================================

// Dedupe selects when, if ever, a list drops duplicate entries.
type Dedupe int

const (
	// DedupeNone keeps every entry.
	DedupeNone Dedupe = iota
	// DedupeParsed drops entries whose parsed forms are equal.
	DedupeParsed
	// DedupeLoaded drops entries whose loaded values are equal.
	DedupeLoaded
)

// ListType collects multiple values of an inner type separated by a fixed
// separator string, with inclusive cardinality bounds. The list ends at the
// argument separator or end of input. Deduplicated entry forms must be
// comparable.
type ListType struct {
	inner  dispatch.ArgumentType
	sep    string
	min    int
	max    int
	dedupe Dedupe
}

// List creates a list of inner values separated by sep, requiring between
// min and max entries. With DedupeParsed both bounds apply after
// deduplication; with DedupeLoaded the maximum is checked on the parsed
// entries before deduplication and the minimum is checked again after it.
func List(inner dispatch.ArgumentType, sep string, min, max int, dedupe Dedupe) *ListType {
	return &ListType{inner: inner, sep: sep, min: min, max: max, dedupe: dedupe}
}

// Parse reads separator-joined entries until the argument separator or end
// of input, then checks the cardinality bounds.
func (t *ListType) Parse(rd *reader.StringReader) (any, error) {
	var parsed []any
	var seen map[any]struct{}
	if t.dedupe == DedupeParsed {
		seen = make(map[any]struct{})
	}
	for {
		entry, err := t.inner.Parse(rd)
		if err != nil {
			return nil, err
		}
		if seen != nil {
			if _, dup := seen[entry]; !dup {
				seen[entry] = struct{}{}
				parsed = append(parsed, entry)
			}
		} else {
			parsed = append(parsed, entry)
		}
		if !rd.CanReadAnything() || rd.Peek() == ' ' {
			break
		}
		if !strings.HasPrefix(rd.Remaining(), t.sep) {
			return nil, cmderr.NewBadSeparatorError(t.sep).WithReader(rd.Clone())
		}
		rd.SetCursor(rd.Cursor() + len(t.sep))
	}
	if len(parsed) < t.min {
		return nil, cmderr.NewRangeError(cmderr.RangeTooFew, "list", len(parsed), t.min, t.max).WithReader(rd.Clone())
	}
	if len(parsed) > t.max {
		return nil, cmderr.NewRangeError(cmderr.RangeTooMany, "list", len(parsed), t.min, t.max).WithReader(rd.Clone())
	}
	return parsed, nil
}

// Load loads each entry with the inner type. The loaded value is []any.
func (t *ListType) Load(ctx context.Context, parsed any) (any, error) {
	entries := parsed.([]any)
	loaded := make([]any, 0, len(entries))
	var seen map[any]struct{}
	if t.dedupe == DedupeLoaded {
		seen = make(map[any]struct{})
	}
	for _, entry := range entries {
		v, err := t.inner.Load(ctx, entry)
		if err != nil {
			return nil, err
		}
		if seen != nil {
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
		}
		loaded = append(loaded, v)
	}
	if len(loaded) < t.min {
		return nil, cmderr.NewRangeError(cmderr.RangeTooFew, "list", len(loaded), t.min, t.max)
	}
	return loaded, nil
}

// ListSuggestions completes the entry after the last full separator, so a
// partially typed list keeps suggesting inner values.
func (t *ListType) ListSuggestions(ctx context.Context, c *dispatch.CommandContext, b *suggest.Builder) error {
	remaining := b.Remaining()
	if idx := strings.LastIndex(remaining, t.sep); idx >= 0 {
		offset := b.CreateOffset(b.Start + idx + len(t.sep))
		if err := t.inner.ListSuggestions(ctx, c, offset); err != nil {
			return err
		}
		b.Add(offset)
		return nil
	}
	return t.inner.ListSuggestions(ctx, c, b)
}

// Examples delegates to the inner type.
func (t *ListType) Examples() []string {
	return t.inner.Examples()
}

// =============================================================================
// ERRORABLE
// =============================================================================

// errorableParsed remembers which of the two types accepted the input so
// Load can route to the same one.
type errorableParsed struct {
	value    any
	fallback bool
}

// ErrorableType tries a primary type and, when it rejects the input, falls
// back to a secondary one from the same position.
type ErrorableType struct {
	primary  dispatch.ArgumentType
	fallback dispatch.ArgumentType
}

// Errorable creates a type that parses with primary and falls back to
// fallback when primary fails.
func Errorable(primary, fallback dispatch.ArgumentType) *ErrorableType {
	return &ErrorableType{primary: primary, fallback: fallback}
}

// Parse tries the primary type, rewinding and trying the fallback on
// failure. The fallback's error wins when both reject.
func (t *ErrorableType) Parse(rd *reader.StringReader) (any, error) {
	start := rd.Cursor()
	v, err := t.primary.Parse(rd)
	if err == nil {
		return errorableParsed{value: v}, nil
	}
	rd.SetCursor(start)
	v, err = t.fallback.Parse(rd)
	if err != nil {
		return nil, err
	}
	return errorableParsed{value: v, fallback: true}, nil
}

// Load routes to whichever type accepted the input.
func (t *ErrorableType) Load(ctx context.Context, parsed any) (any, error) {
	p := parsed.(errorableParsed)
	if p.fallback {
		return t.fallback.Load(ctx, p.value)
	}
	return t.primary.Load(ctx, p.value)
}

// ListSuggestions merges completions from both types.
func (t *ErrorableType) ListSuggestions(ctx context.Context, c *dispatch.CommandContext, b *suggest.Builder) error {
	if err := t.primary.ListSuggestions(ctx, c, b); err != nil {
		return err
	}
	return t.fallback.ListSuggestions(ctx, c, b)
}

// Examples merges both types' examples.
func (t *ErrorableType) Examples() []string {
	out := append([]string(nil), t.primary.Examples()...)
	return append(out, t.fallback.Examples()...)
}
