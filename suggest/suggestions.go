// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package suggest provides the completion data model shared by the parser,
// the dispatcher, and the argument types.
package suggest

import (
	"sort"

	"github.com/jeranaias/dispatch/reader"
)

// =============================================================================
// SUGGESTION SET
// =============================================================================

// Suggestions is a sorted, deduplicated set of suggestions that all apply
// over one covering range of the original input.
type Suggestions struct {
	// Range is the covering span shared by every entry in List.
	Range reader.StringRange

	// List holds the suggestions, sorted case-insensitively by text.
	List []Suggestion
}

// Empty returns a suggestion set with no entries.
func Empty() Suggestions {
	return Suggestions{Range: reader.At(0)}
}

// IsEmpty reports whether the set holds no suggestions.
func (s Suggestions) IsEmpty() bool {
	return len(s.List) == 0
}

// Merge combines several suggestion sets over the same command into one.
// Empty inputs collapse to Empty; a single input is returned as-is.
func Merge(command string, sets []Suggestions) Suggestions {
	nonEmpty := sets[:0:0]
	for _, set := range sets {
		if !set.IsEmpty() {
			nonEmpty = append(nonEmpty, set)
		}
	}
	switch len(nonEmpty) {
	case 0:
		return Empty()
	case 1:
		return nonEmpty[0]
	}
	var all []Suggestion
	for _, set := range nonEmpty {
		all = append(all, set.List...)
	}
	return Create(command, all)
}

// Create builds a suggestion set from raw suggestions over the given
// command. Each suggestion is expanded to the smallest range covering them
// all, then the set is deduplicated and sorted.
func Create(command string, list []Suggestion) Suggestions {
	if len(list) == 0 {
		return Empty()
	}
	covering := list[0].Range
	for _, s := range list[1:] {
		covering = reader.EncompassingMax(covering, s.Range)
	}
	seen := make(map[suggestionKey]struct{}, len(list))
	expanded := make([]Suggestion, 0, len(list))
	for _, s := range list {
		e := s.Expand(command, covering)
		key := suggestionKey{text: e.Text, tooltip: e.Tooltip}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		expanded = append(expanded, e)
	}
	sort.SliceStable(expanded, func(i, j int) bool {
		return compare(expanded[i], expanded[j]) < 0
	})
	return Suggestions{Range: covering, List: expanded}
}

// suggestionKey identifies a suggestion for dedup purposes. Expansion has
// already normalized the range, so text plus tooltip is sufficient.
type suggestionKey struct {
	text    string
	tooltip string
}
