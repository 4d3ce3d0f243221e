// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package reader provides the cursor-based string reader used by the parser.
package reader

import (
	"strconv"
	"strings"

	"github.com/jeranaias/dispatch/cmderr"
)

// =============================================================================
// STRING READER
// =============================================================================

// SyntaxEscape is the escape character inside quoted strings.
const SyntaxEscape = '\\'

// StringReader is a cursor over an immutable input string. The zero value is
// not usable; construct with New.
type StringReader struct {
	input  string
	cursor int
}

// New creates a reader over the given input with the cursor at 0.
func New(input string) *StringReader {
	return &StringReader{input: input}
}

// Clone snapshots the reader, including its cursor.
func (r *StringReader) Clone() *StringReader {
	return &StringReader{input: r.input, cursor: r.cursor}
}

// String returns the full input being read.
func (r *StringReader) String() string {
	return r.input
}

// Cursor returns the current position within the input.
func (r *StringReader) Cursor() int {
	return r.cursor
}

// SetCursor rewinds (or advances) the cursor to an absolute position.
func (r *StringReader) SetCursor(cursor int) {
	r.cursor = cursor
}

// Remaining returns the unread tail of the input.
func (r *StringReader) Remaining() string {
	return r.input[r.cursor:]
}

// ReadSoFar returns the consumed head of the input.
func (r *StringReader) ReadSoFar() string {
	return r.input[:r.cursor]
}

// CanRead reports whether at least n characters remain.
func (r *StringReader) CanRead(n int) bool {
	return r.cursor+n <= len(r.input)
}

// CanReadAnything reports whether any input remains.
func (r *StringReader) CanReadAnything() bool {
	return r.CanRead(1)
}

// Peek returns the character at the cursor without advancing.
func (r *StringReader) Peek() byte {
	return r.input[r.cursor]
}

// PeekAt returns the character at cursor+offset without advancing.
func (r *StringReader) PeekAt(offset int) byte {
	return r.input[r.cursor+offset]
}

// Read returns the character at the cursor and advances past it.
func (r *StringReader) Read() byte {
	c := r.input[r.cursor]
	r.cursor++
	return c
}

// Skip advances past a single character.
func (r *StringReader) Skip() {
	r.cursor++
}

// SkipWhitespace advances past any run of whitespace.
func (r *StringReader) SkipWhitespace() {
	for r.CanReadAnything() && isWhitespace(r.Peek()) {
		r.Skip()
	}
}

// ReadWhile consumes characters for as long as the predicate holds and
// returns the consumed run.
func (r *StringReader) ReadWhile(pred func(byte) bool) string {
	start := r.cursor
	for r.CanReadAnything() && pred(r.Peek()) {
		r.Skip()
	}
	return r.input[start:r.cursor]
}

// ReadUntil consumes characters until the terminator (exclusive) and returns
// the consumed run. The terminator itself is not consumed.
func (r *StringReader) ReadUntil(terminator byte) string {
	return r.ReadWhile(func(c byte) bool { return c != terminator })
}

// =============================================================================
// PRIMITIVE TOKEN READS
// =============================================================================

// ReadInt reads a whitespace-or-separator delimited integer token.
func (r *StringReader) ReadInt() (int, error) {
	start := r.cursor
	raw := r.ReadWhile(isAllowedNumber)
	if raw == "" {
		return 0, cmderr.NewExpectedError("integer").WithReader(r.Clone())
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		r.cursor = start
		return 0, cmderr.NewSyntaxError("invalid integer %q", raw).WithReader(r.Clone())
	}
	return n, nil
}

// ReadFloat64 reads a whitespace-or-separator delimited float token.
func (r *StringReader) ReadFloat64() (float64, error) {
	start := r.cursor
	raw := r.ReadWhile(isAllowedNumber)
	if raw == "" {
		return 0, cmderr.NewExpectedError("float").WithReader(r.Clone())
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		r.cursor = start
		return 0, cmderr.NewSyntaxError("invalid float %q", raw).WithReader(r.Clone())
	}
	return f, nil
}

// ReadBool reads a "true" or "false" token.
func (r *StringReader) ReadBool() (bool, error) {
	start := r.cursor
	raw, err := r.ReadString()
	if err != nil {
		return false, err
	}
	if raw == "" {
		return false, cmderr.NewExpectedError("bool").WithReader(r.Clone())
	}
	switch strings.ToLower(raw) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		r.cursor = start
		return false, cmderr.NewSyntaxError("invalid bool %q", raw).WithReader(r.Clone())
	}
}

// ReadUnquotedString reads a run of unquoted-string characters
// (alphanumerics plus _-.+).
func (r *StringReader) ReadUnquotedString() string {
	return r.ReadWhile(isAllowedInUnquotedString)
}

// ReadQuotedString reads a double-quoted string with backslash escapes. The
// cursor must be on the opening quote.
func (r *StringReader) ReadQuotedString() (string, error) {
	if !r.CanReadAnything() {
		return "", nil
	}
	if r.Peek() != '"' {
		return "", cmderr.NewExpectedError("quote to start a string").WithReader(r.Clone())
	}
	start := r.cursor
	r.Skip()
	var sb strings.Builder
	escaped := false
	for r.CanReadAnything() {
		c := r.Read()
		if escaped {
			if c == '"' || c == SyntaxEscape {
				sb.WriteByte(c)
				escaped = false
			} else {
				r.cursor--
				err := cmderr.NewSyntaxError("invalid escape sequence %q in quoted string", string(c)).WithReader(r.Clone())
				r.cursor = start
				return "", err
			}
		} else if c == SyntaxEscape {
			escaped = true
		} else if c == '"' {
			return sb.String(), nil
		} else {
			sb.WriteByte(c)
		}
	}
	err := cmderr.NewExpectedError("closing quote for string").WithReader(r.Clone())
	r.cursor = start
	return "", err
}

// ReadString reads either a quoted or an unquoted string token.
func (r *StringReader) ReadString() (string, error) {
	if r.CanReadAnything() && r.Peek() == '"' {
		return r.ReadQuotedString()
	}
	return r.ReadUnquotedString(), nil
}

// =============================================================================
// CHARACTER CLASSES
// =============================================================================

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isAllowedNumber(c byte) bool {
	return (c >= '0' && c <= '9') || c == '.' || c == '-'
}

func isAllowedInUnquotedString(c byte) bool {
	return (c >= '0' && c <= '9') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= 'a' && c <= 'z') ||
		c == '_' || c == '-' || c == '.' || c == '+'
}
