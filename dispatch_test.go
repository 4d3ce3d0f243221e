// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dispatch_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/dispatch"
	"github.com/jeranaias/dispatch/arguments"
	"github.com/jeranaias/dispatch/cmderr"
	"github.com/jeranaias/dispatch/reader"
	"github.com/jeranaias/dispatch/suggest"
)

// userType resolves 4-16 character user names. Load lowercases and rejects
// names containing "fail", exercising the parse/load split.
type userType struct{}

func (userType) Parse(rd *reader.StringReader) (any, error) {
	start := rd.Cursor()
	name := rd.ReadUnquotedString()
	if len(name) < 4 || len(name) > 16 {
		rd.SetCursor(start)
		return nil, cmderr.NewExpectedError("user name").WithReader(rd.Clone())
	}
	return name, nil
}

func (userType) Load(ctx context.Context, parsed any) (any, error) {
	name := strings.ToLower(parsed.(string))
	if strings.Contains(name, "fail") {
		return nil, errors.New("no such user")
	}
	return name, nil
}

func (t userType) ListSuggestions(ctx context.Context, c *dispatch.CommandContext, b *suggest.Builder) error {
	arguments.SuggestExamples(t.Examples(), b)
	return nil
}

func (userType) Examples() []string {
	return []string{"user1", "user2", "user3", "user4"}
}

func ruleType() dispatch.ArgumentType {
	return arguments.Simple(func(rd *reader.StringReader) (string, error) {
		name := rd.ReadUnquotedString()
		if name == "" {
			return "", cmderr.NewExpectedError("rule").WithReader(rd.Clone())
		}
		return name, nil
	}, "rule1", "rule2", "rule3")
}

func noop(ctx context.Context, c *dispatch.CommandContext) (any, error) {
	return nil, nil
}

// demoTree builds the grammar the completion and redirect tests run
// against: nested literal branches, a hidden command, self- and
// cross-redirects, and a two-argument command.
func demoTree(t *testing.T) *dispatch.Dispatcher {
	t.Helper()
	d := dispatch.NewDispatcher()
	d.Register(dispatch.Literal("a").Then(
		dispatch.Literal("1").Then(
			dispatch.Literal("i").Executes(noop),
			dispatch.Literal("ii").Executes(noop),
		),
		dispatch.Literal("2").Then(
			dispatch.Literal("i").Executes(noop),
			dispatch.Literal("ii").Executes(noop),
		),
	))
	d.Register(dispatch.Literal("b").ThenLiteral("1"))
	d.Register(dispatch.Literal("c").Executes(noop))
	d.Register(dispatch.Literal("d").
		Requires(dispatch.RequireHidden(func(any) bool { return false })).
		Executes(noop))
	d.Register(dispatch.Literal("e").Executes(noop).Then(
		dispatch.Literal("1").Executes(noop).Then(
			dispatch.Literal("i").Executes(noop),
			dispatch.Literal("ii").Executes(noop),
		),
	))
	d.Register(dispatch.Literal("f"))
	d.Register(dispatch.Literal("g").Executes(noop))
	h := d.Register(dispatch.Literal("h").Executes(noop))
	d.Register(dispatch.Literal("i").Executes(noop).Then(
		dispatch.Literal("1").Executes(noop),
		dispatch.Literal("2").Executes(noop),
	))
	d.Register(dispatch.Literal("j").Redirect(d.Root()))
	d.Register(dispatch.Literal("k").Redirect(h))
	d.Register(dispatch.Literal("user-test").Then(
		dispatch.Argument("user", userType{}).Then(
			dispatch.Argument("rule", ruleType()).Executes(noop),
		),
	))
	return d
}

func suggestionTexts(s suggest.Suggestions) []string {
	texts := make([]string, 0, len(s.List))
	for _, entry := range s.List {
		texts = append(texts, entry.Text)
	}
	return texts
}

func suggestAt(t *testing.T, d *dispatch.Dispatcher, input string, cursor int) suggest.Suggestions {
	t.Helper()
	ctx := context.Background()
	parse := d.Parse(ctx, input, nil)
	got, err := d.GetCompletionSuggestionsAt(ctx, parse, cursor)
	require.NoError(t, err)
	return got
}

// =============================================================================
// COMPLETION
// =============================================================================

func TestSuggestionsMidTree(t *testing.T) {
	d := demoTree(t)
	got := suggestAt(t, d, "i ", 2)
	assert.Equal(t, []string{"1", "2"}, suggestionTexts(got))
	assert.Equal(t, reader.Between(2, 2), got.Range)
}

func TestSuggestionsAtRoot(t *testing.T) {
	d := demoTree(t)
	got := suggestAt(t, d, "i ", 0)
	assert.Equal(t,
		[]string{"a", "b", "c", "e", "f", "g", "h", "i", "j", "k", "user-test"},
		suggestionTexts(got),
		"the hidden command must be omitted and literals locale-sorted")
}

func TestSuggestionsExcludeTypedRemainder(t *testing.T) {
	d := demoTree(t)
	got := suggestAt(t, d, "a 1 i ", 5)
	assert.Equal(t, []string{"ii"}, suggestionTexts(got),
		"the already-typed token must not be suggested verbatim")
	assert.Equal(t, reader.Between(4, 5), got.Range)
}

func TestSuggestionsInsidePartialToken(t *testing.T) {
	d := demoTree(t)
	got := suggestAt(t, d, "a 1 i ", 4)
	assert.Equal(t, []string{"i", "ii"}, suggestionTexts(got))
}

func TestSuggestionsForRejectedArgument(t *testing.T) {
	d := demoTree(t)
	got := suggestAt(t, d, "user-test use rule1 ", 13)
	assert.Equal(t, []string{"user1", "user2", "user3", "user4"}, suggestionTexts(got))
	assert.Equal(t, reader.Between(10, 13), got.Range)
}

func TestSuggestionsForNextArgument(t *testing.T) {
	d := demoTree(t)
	got := suggestAt(t, d, "user-test user rule", 19)
	assert.Equal(t, []string{"rule1", "rule2", "rule3"}, suggestionTexts(got))
}

func TestSuggestionsCarryMetadata(t *testing.T) {
	d := demoTree(t)
	got := suggestAt(t, d, "user-test ", 10)
	require.NotEmpty(t, got.List)
	for _, s := range got.List {
		assert.Equal(t, suggest.KindArgument, s.Kind)
		assert.Equal(t, "<user>", s.Prefix)
		assert.NotNil(t, s.Node)
	}
}

func TestSuggestionsDeterministic(t *testing.T) {
	d := demoTree(t)
	first := suggestionTexts(suggestAt(t, d, "i ", 0))
	for range 5 {
		assert.Equal(t, first, suggestionTexts(suggestAt(t, d, "i ", 0)))
	}
}

// =============================================================================
// PARSING
// =============================================================================

func TestParseFollowsRedirectCycle(t *testing.T) {
	d := demoTree(t)
	parse := d.Parse(context.Background(), "j j j a", nil)

	assert.False(t, parse.Reader.CanReadAnything(), "all input must be consumed")
	assert.Empty(t, parse.Errors)

	// The outermost context holds the first j; the redirect chain nests the
	// rest, ending at a parsed at the root.
	spans := parse.Context.Nodes()
	require.Len(t, spans, 1)
	assert.Equal(t, "j", spans[0].Node.Name())
	assert.Equal(t, reader.Between(0, 1), spans[0].Range)
}

func TestParseRangesStrictlyIncrease(t *testing.T) {
	d := demoTree(t)
	parse := d.Parse(context.Background(), "a 1 ii", nil)

	require.False(t, parse.Reader.CanReadAnything())
	spans := parse.Context.Nodes()
	require.Len(t, spans, 3)
	prevEnd := -1
	for _, span := range spans {
		assert.Greater(t, span.Range.Start, prevEnd)
		assert.GreaterOrEqual(t, span.Range.End, span.Range.Start)
		prevEnd = span.Range.End
	}
}

func TestParseBindsArguments(t *testing.T) {
	d := demoTree(t)
	ctx := context.Background()
	parse := d.Parse(ctx, "user-test MixedCase rule2", nil)
	require.False(t, parse.Reader.CanReadAnything())

	frozen := parse.Context.Build("user-test MixedCase rule2")
	user, err := dispatch.GetArgument[string](frozen, "user")
	require.NoError(t, err)
	assert.Equal(t, "mixedcase", user, "load lowercases the parsed name")

	rule, err := dispatch.GetArgument[string](frozen, "rule")
	require.NoError(t, err)
	assert.Equal(t, "rule2", rule)

	_, err = dispatch.GetArgument[string](frozen, "missing")
	assert.True(t, cmderr.IsUnknownError(err))
	_, err = dispatch.GetArgument[int](frozen, "user")
	assert.True(t, cmderr.IsSyntaxError(err))
}

func TestParseLoadFailureIsRecorded(t *testing.T) {
	d := demoTree(t)
	parse := d.Parse(context.Background(), "user-test failuser rule1", nil)

	assert.True(t, parse.Reader.CanReadAnything(), "the rejected branch leaves input unconsumed")
	require.Len(t, parse.Errors, 1)
	for _, err := range parse.Errors {
		assert.ErrorContains(t, err, "no such user")
	}
}

func TestParseCaseInsensitiveLiterals(t *testing.T) {
	d := demoTree(t)
	parse := d.Parse(context.Background(), "C", nil)
	assert.False(t, parse.Reader.CanReadAnything())
	spans := parse.Context.Nodes()
	require.Len(t, spans, 1)
	assert.Equal(t, "c", spans[0].Node.Name())
}

func TestParseDeterministic(t *testing.T) {
	d := demoTree(t)
	ctx := context.Background()
	for range 5 {
		parse := d.Parse(ctx, "a 1 i", nil)
		assert.False(t, parse.Reader.CanReadAnything())
		assert.Len(t, parse.Context.Nodes(), 3)
	}
}
