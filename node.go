// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch is a command grammar dispatcher built around a tree of
// literal and argument nodes.
package dispatch

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/jeranaias/dispatch/cmderr"
	"github.com/jeranaias/dispatch/reader"
	"github.com/jeranaias/dispatch/suggest"
)

// ArgumentSeparator is the single character that separates parsed arguments.
const ArgumentSeparator = ' '

// childCollator orders sibling nodes of the same kind. Mutation of the tree
// is single-threaded, so sharing one collator is safe.
var childCollator = collate.New(language.English)

// =============================================================================
// NODE
// =============================================================================

// nodeKind tags the three node variants.
type nodeKind int

const (
	nodeRoot nodeKind = iota
	nodeLiteral
	nodeArgument
)

// CommandNode is one vertex of the grammar: the root, a literal keyword, or
// a typed argument slot. Children are owned by their parent; a redirect is a
// non-owning reference to any other node in the tree (cycles are allowed).
// A node never has children and a redirect at the same time. Nodes are
// mutable only while the tree is being assembled; every parse-time operation
// treats them as immutable.
type CommandNode struct {
	kind nodeKind

	// Literal variant: names[0] is the canonical keyword, the rest are
	// aliases. All match case-insensitively.
	names []string

	// Argument variant.
	name              string
	argType           ArgumentType
	customSuggestions SuggestionProvider

	children  map[string]*CommandNode
	ordered   []*CommandNode
	argsOnly  []*CommandNode
	byLiteral map[string]*CommandNode

	requirement Requirement
	redirect    *CommandNode
	modifier    RedirectModifier
	forks       bool
	command     Command
	description string
}

func newNode(kind nodeKind) *CommandNode {
	return &CommandNode{
		kind:      kind,
		children:  make(map[string]*CommandNode),
		byLiteral: make(map[string]*CommandNode),
	}
}

// newRootNode creates the implicit parent of all registered commands.
func newRootNode() *CommandNode {
	return newNode(nodeRoot)
}

// =============================================================================
// IDENTITY & ACCESSORS
// =============================================================================

// Name returns the node's identity within its parent: the canonical literal
// text, the argument name, or "" for the root.
func (n *CommandNode) Name() string {
	switch n.kind {
	case nodeLiteral:
		return n.names[0]
	case nodeArgument:
		return n.name
	default:
		return ""
	}
}

// SortedKey returns the key siblings of the same kind are ordered by.
func (n *CommandNode) SortedKey() string {
	return n.Name()
}

// UsageText returns the node's usage token: the canonical literal text or
// the argument name wrapped in angle brackets.
func (n *CommandNode) UsageText() string {
	switch n.kind {
	case nodeLiteral:
		return n.names[0]
	case nodeArgument:
		return "<" + n.name + ">"
	default:
		return ""
	}
}

// Description returns the human description attached via the builder.
func (n *CommandNode) Description() string {
	return n.description
}

// Command returns the node's executor, or nil.
func (n *CommandNode) Command() Command {
	return n.command
}

// Redirect returns the node this node redirects to, or nil.
func (n *CommandNode) Redirect() *CommandNode {
	return n.redirect
}

// RedirectModifier returns the modifier applied when the redirect is taken.
func (n *CommandNode) RedirectModifier() RedirectModifier {
	return n.modifier
}

// IsFork reports whether the node's redirect forks execution.
func (n *CommandNode) IsFork() bool {
	return n.forks
}

// IsLiteral reports whether the node is a literal keyword.
func (n *CommandNode) IsLiteral() bool {
	return n.kind == nodeLiteral
}

// IsArgument reports whether the node is a typed argument slot.
func (n *CommandNode) IsArgument() bool {
	return n.kind == nodeArgument
}

// Names returns the literal's canonical name followed by its aliases, or
// nil for non-literal nodes.
func (n *CommandNode) Names() []string {
	return n.names
}

// Type returns the argument node's argument type, or nil.
func (n *CommandNode) Type() ArgumentType {
	return n.argType
}

// Examples returns the inputs used for default suggestions and ambiguity
// detection: the canonical name for a literal, the type's examples for an
// argument.
func (n *CommandNode) Examples() []string {
	switch n.kind {
	case nodeLiteral:
		return n.names[:1]
	case nodeArgument:
		return n.argType.Examples()
	default:
		return nil
	}
}

// =============================================================================
// CHILDREN
// =============================================================================

// Children returns all children in deterministic order: literals before
// arguments, each group collated by sort key.
func (n *CommandNode) Children() []*CommandNode {
	return n.ordered
}

// Child returns the child with the given name, or nil.
func (n *CommandNode) Child(name string) *CommandNode {
	return n.children[name]
}

// Literals returns the literal children in deterministic order.
func (n *CommandNode) Literals() []*CommandNode {
	out := make([]*CommandNode, 0, len(n.ordered)-len(n.argsOnly))
	for _, c := range n.ordered {
		if c.kind == nodeLiteral {
			out = append(out, c)
		}
	}
	return out
}

// Arguments returns the argument children in deterministic order.
func (n *CommandNode) Arguments() []*CommandNode {
	return n.argsOnly
}

// AddChild inserts a child, merging with any existing child of the same
// name: an incoming executor overrides, grandchildren are folded in
// recursively. Panics when given the root node or when this node redirects.
func (n *CommandNode) AddChild(child *CommandNode) {
	if child.kind == nodeRoot {
		panic("dispatch: cannot add the root node as a child")
	}
	if n.redirect != nil {
		panic("dispatch: cannot add children to a redirecting node")
	}
	if existing, ok := n.children[child.Name()]; ok {
		if child.command != nil {
			existing.command = child.command
			if child.description != "" {
				existing.description = child.description
			}
		}
		for _, grand := range child.ordered {
			existing.AddChild(grand)
		}
		return
	}
	n.children[child.Name()] = child
	if child.kind == nodeLiteral {
		for _, alias := range child.names {
			n.byLiteral[strings.ToLower(alias)] = child
		}
	}
	n.sortChildren()
}

// Remove detaches the named child and its whole subtree.
func (n *CommandNode) Remove(name string) {
	child, ok := n.children[name]
	if !ok {
		return
	}
	delete(n.children, name)
	if child.kind == nodeLiteral {
		for _, alias := range child.names {
			if n.byLiteral[strings.ToLower(alias)] == child {
				delete(n.byLiteral, strings.ToLower(alias))
			}
		}
	}
	n.sortChildren()
}

// sortChildren rebuilds the deterministic enumeration order used by parse
// and suggestion: literals first, then arguments, each group collated.
func (n *CommandNode) sortChildren() {
	n.ordered = n.ordered[:0]
	for _, c := range n.children {
		n.ordered = append(n.ordered, c)
	}
	sort.SliceStable(n.ordered, func(i, j int) bool {
		a, b := n.ordered[i], n.ordered[j]
		if a.kind != b.kind {
			return a.kind == nodeLiteral
		}
		return childCollator.CompareString(a.SortedKey(), b.SortedKey()) < 0
	})
	n.argsOnly = n.argsOnly[:0]
	for _, c := range n.ordered {
		if c.kind == nodeArgument {
			n.argsOnly = append(n.argsOnly, c)
		}
	}
}

// Relevant narrows the children the parser must try for the upcoming token.
// When a literal child matches the next whitespace-delimited token, only
// that literal is relevant; otherwise the argument children are.
func (n *CommandNode) Relevant(rd *reader.StringReader) []*CommandNode {
	if len(n.byLiteral) == 0 {
		return n.argsOnly
	}
	cursor := rd.Cursor()
	input := rd.String()
	end := cursor
	for end < len(input) && input[end] != ArgumentSeparator {
		end++
	}
	if literal, ok := n.byLiteral[strings.ToLower(input[cursor:end])]; ok {
		return []*CommandNode{literal}
	}
	return n.argsOnly
}

// =============================================================================
// REQUIREMENTS
// =============================================================================

// CheckRequirement evaluates the node's visibility for the given source. A
// nil return permits the node. Ancestors without their own executor are
// permitted when their redirect target or any descendant is; the first
// failure seen is reported otherwise. Redirect cycles are tolerated.
func (n *CommandNode) CheckRequirement(source any) *cmderr.RequirementError {
	return n.checkRequirement(source, make(map[*CommandNode]struct{}))
}

func (n *CommandNode) checkRequirement(source any, visited map[*CommandNode]struct{}) *cmderr.RequirementError {
	if _, seen := visited[n]; seen {
		return cmderr.NewRequirementError(nil)
	}
	visited[n] = struct{}{}
	if n.requirement != nil {
		if denial := n.requirement(source); denial != nil {
			return denial
		}
	}
	if n.kind == nodeRoot || n.command != nil {
		return nil
	}
	var firstDenial *cmderr.RequirementError
	if n.redirect != nil {
		denial := n.redirect.checkRequirement(source, visited)
		if denial == nil {
			return nil
		}
		firstDenial = denial
	}
	for _, child := range n.ordered {
		denial := child.checkRequirement(source, visited)
		if denial == nil {
			return nil
		}
		if firstDenial == nil {
			firstDenial = denial
		}
	}
	return firstDenial
}

// CanUse reports whether the node is permitted for the given source.
func (n *CommandNode) CanUse(source any) bool {
	return n.CheckRequirement(source) == nil
}

// =============================================================================
// PARSING
// =============================================================================

// Parse consumes this node's token from the reader and stamps the result
// into the context builder. Literals advance past a matching keyword;
// arguments run their type's Parse and Load and record the parsed value.
func (n *CommandNode) Parse(ctx context.Context, rd *reader.StringReader, c *ContextBuilder) error {
	switch n.kind {
	case nodeLiteral:
		start := rd.Cursor()
		if !n.matchLiteral(rd) {
			return cmderr.NewLiteralError(n.names[0]).WithReader(rd.Clone())
		}
		c.WithNode(n, reader.Between(start, rd.Cursor()))
		return nil
	case nodeArgument:
		start := rd.Cursor()
		parsed, err := n.argType.Parse(rd)
		if err != nil {
			if ce := cmderr.AsCommandError(err); ce != nil && !ce.RewindReader && ce.Reader != nil {
				rd.SetCursor(ce.Reader.Cursor())
			} else {
				rd.SetCursor(start)
			}
			return err
		}
		loaded, err := n.argType.Load(ctx, parsed)
		if err != nil {
			rd.SetCursor(start)
			return err
		}
		rng := reader.Between(start, rd.Cursor())
		c.WithArgument(n.name, ParsedArgument{Range: rng, Value: loaded})
		c.WithNode(n, rng)
		return nil
	default:
		return cmderr.NewUnknownError("command").WithReader(rd.Clone())
	}
}

// matchLiteral advances past the first of the node's names that matches at
// the cursor and is followed by end-of-input or the argument separator.
func (n *CommandNode) matchLiteral(rd *reader.StringReader) bool {
	start := rd.Cursor()
	input := rd.String()
	for _, name := range n.names {
		end := start + len(name)
		if end > len(input) || !strings.EqualFold(input[start:end], name) {
			continue
		}
		if end < len(input) && input[end] != ArgumentSeparator {
			continue
		}
		rd.SetCursor(end)
		return true
	}
	return false
}

// IsValidInput reports whether the given text would parse as this node's
// token, used by the ambiguity reporter. Trailing input past the separator
// is ignored.
func (n *CommandNode) IsValidInput(input string) bool {
	switch n.kind {
	case nodeLiteral:
		rd := reader.New(input)
		return n.matchLiteral(rd)
	case nodeArgument:
		rd := reader.New(input)
		if _, err := n.argType.Parse(rd); err != nil {
			return false
		}
		return !rd.CanReadAnything() || rd.Peek() == ArgumentSeparator
	default:
		return false
	}
}

// =============================================================================
// SUGGESTIONS
// =============================================================================

// ListSuggestions fills the builder with this node's completions: matching
// literal names (aliases noted in the tooltip), or the argument's provider.
func (n *CommandNode) ListSuggestions(ctx context.Context, c *CommandContext, b *suggest.Builder) error {
	switch n.kind {
	case nodeLiteral:
		tooltip := ""
		if len(n.names) > 1 {
			tooltip = strings.Join(n.names[1:], ", ")
		}
		for _, name := range n.names {
			if strings.HasPrefix(strings.ToLower(name), b.RemainingLowered()) {
				b.SuggestWithTooltip(name, tooltip)
			}
		}
		return nil
	case nodeArgument:
		if n.customSuggestions != nil {
			return n.customSuggestions(ctx, c, b)
		}
		return n.argType.ListSuggestions(ctx, c, b)
	default:
		return nil
	}
}
