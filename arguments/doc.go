// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package arguments provides the stock argument types for the dispatch
// command grammar, plus the combinator wrappers for building new types out
// of existing ones.
//
// The stock types cover the primitive tokens: bounded integers and floats,
// booleans, single words, optionally quoted phrases, and greedy rest-of-line
// strings. The wrappers compose: Simple lifts a parse function into a full
// type, Lazy defers an inner type's work to load time, List collects
// separated values with cardinality bounds and optional deduplication, and
// Errorable falls back to a second type when the first rejects the input.
//
// # Key Types
//
//   - IntegerType, Float64Type, BoolType: bounded primitives
//   - WordType, PhraseType, GreedyType: string flavors
//   - SimpleType, LazyType, ListType, ErrorableType: combinators
//
// # Usage
//
//	dispatch.Argument("count", arguments.Integer(1, 64))
//	dispatch.Argument("tags", arguments.List(arguments.Word(), ",", 1, 8, arguments.DedupeLoaded))
package arguments
