// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package reader provides the cursor-based string reader that the parser and
// the argument types consume input through.
//
// A StringReader is a cursor over an immutable input string. Cloning a
// reader snapshots the cursor, so a failed parse attempt can be discarded
// without disturbing the original. The primitive reads (ints, floats, bools,
// quoted strings) return errors from the cmderr package pinned at the
// failure position and leave the cursor where it was before the read.
//
// # Key Types
//
//   - StringReader: cursor + input, primitive token reads, clone/rewind
//   - StringRange: a [start, end) span within the original input
//
// # Usage
//
//	rd := reader.New("123 foo")
//	n, err := rd.ReadInt() // n == 123, cursor at the space
package reader
