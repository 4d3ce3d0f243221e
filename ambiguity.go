// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch is a command grammar dispatcher built around a tree of
// literal and argument nodes.
package dispatch

// =============================================================================
// AMBIGUITY REPORTER
// =============================================================================

// AmbiguityConsumer receives one report per ambiguous sibling pair: the
// shared parent, the child whose examples overlap, the sibling that also
// accepts them, and the overlapping example inputs.
type AmbiguityConsumer func(parent, child, sibling *CommandNode, inputs []string)

// FindAmbiguities walks the whole tree reporting sibling pairs where one
// child's example inputs are also accepted by the other. A debugging aid;
// the parser itself tolerates ambiguity via its tie-break.
func (d *Dispatcher) FindAmbiguities(consumer AmbiguityConsumer) {
	d.root.FindAmbiguities(consumer)
}

// FindAmbiguities reports ambiguous sibling pairs beneath this node.
func (n *CommandNode) FindAmbiguities(consumer AmbiguityConsumer) {
	for _, child := range n.ordered {
		for _, sibling := range n.ordered {
			if child == sibling {
				continue
			}
			var matches []string
			for _, input := range child.Examples() {
				if sibling.IsValidInput(input) {
					matches = append(matches, input)
				}
			}
			if len(matches) > 0 {
				consumer(n, child, sibling, matches)
			}
		}
		child.FindAmbiguities(consumer)
	}
}
