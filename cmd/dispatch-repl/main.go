// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// dispatch-repl is an interactive shell for exploring a dispatch command
// tree. It registers a demonstration grammar, merges extra literal commands
// from an optional TOML grammar file (live-reloaded on change), and reads
// lines with history and TAB completion.
//
// Interactive usage:
//   help            Render the command overview
//   <line>?         List completions for the line instead of running it
//   quit, exit      Leave the shell (Ctrl+D works too)
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/peterh/liner"

	"github.com/jeranaias/dispatch"
	"github.com/jeranaias/dispatch/arguments"
	"github.com/jeranaias/dispatch/cmderr"
	"github.com/jeranaias/dispatch/internal/grammarfile"
	"github.com/jeranaias/dispatch/internal/replcfg"
	"github.com/jeranaias/dispatch/reader"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	// Prompt style
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#06B6D4")).
			Bold(true)

	// Result value style
	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981"))

	// Info style
	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9CA3AF"))

	// Error style
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F43F5E")).
			Bold(true)

	// Caret style for pinned error positions
	caretStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B")).
			Bold(true)

	// Suggestion text style
	suggestionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A78BFA"))
)

// disableStyles strips color from every style when the config or NO_COLOR
// turns styling off.
func disableStyles() {
	plain := lipgloss.NewStyle()
	promptStyle = plain
	resultStyle = plain
	infoStyle = plain
	errorStyle = plain
	caretStyle = plain
	suggestionStyle = plain
}

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownRenderer renders the help overview for terminal display.
var markdownRenderer *glamour.TermRenderer

func initRenderer(wordWrap int) {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		// Fallback to plain text if renderer initialization fails
		markdownRenderer = nil
	}
}

func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// =============================================================================
// INPUT HISTORY
// =============================================================================

// InputLine provides input history and line editing for the shell.
type InputLine struct {
	line        *liner.State
	historyFile string
}

// NewInputLine creates an InputLine with history loaded from the config's
// history file.
func NewInputLine(cfg *replcfg.Config) *InputLine {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	historyFile, err := cfg.HistoryPath()
	if err != nil {
		historyFile = filepath.Join(os.TempDir(), "dispatch_repl_history")
	}

	il := &InputLine{
		line:        line,
		historyFile: historyFile,
	}
	il.LoadHistory()
	return il
}

// LoadHistory loads command history from file.
func (il *InputLine) LoadHistory() {
	if f, err := os.Open(il.historyFile); err == nil {
		il.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
func (il *InputLine) ReadInput(prompt string) (string, error) {
	input, err := il.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		il.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists command history to file with secure permissions.
func (il *InputLine) SaveHistory() {
	if err := replcfg.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(il.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	il.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (il *InputLine) Close() {
	il.SaveHistory()
	il.line.Close()
}

// =============================================================================
// DEMO GRAMMAR
// =============================================================================

// replies builds an executor that returns a fixed string.
func replies(text string) dispatch.Command {
	return func(ctx context.Context, c *dispatch.CommandContext) (any, error) {
		return text, nil
	}
}

func userArg() dispatch.ArgumentType {
	return arguments.Simple(func(rd *reader.StringReader) (string, error) {
		start := rd.Cursor()
		name := rd.ReadUnquotedString()
		if len(name) < 4 || len(name) > 16 {
			rd.SetCursor(start)
			return "", cmderr.NewExpectedError("user name").WithReader(rd.Clone())
		}
		return name, nil
	}, "user1", "user2", "user3", "user4")
}

func ruleArg() dispatch.ArgumentType {
	return arguments.Simple(func(rd *reader.StringReader) (string, error) {
		name := rd.ReadUnquotedString()
		if name == "" {
			return "", cmderr.NewExpectedError("rule").WithReader(rd.Clone())
		}
		return name, nil
	}, "rule1", "rule2", "rule3")
}

// registerDemoGrammar fills the dispatcher with the demonstration tree the
// shell ships with: nested literal branches, a hidden command, self- and
// cross-redirects, and a two-argument command.
func registerDemoGrammar(d *dispatch.Dispatcher) {
	d.Register(dispatch.Literal("a").Then(
		dispatch.Literal("1").Then(
			dispatch.Literal("i").Executes(replies("ran a 1 i")),
			dispatch.Literal("ii").Executes(replies("ran a 1 ii")),
		),
		dispatch.Literal("2").Then(
			dispatch.Literal("i").Executes(replies("ran a 2 i")),
			dispatch.Literal("ii").Executes(replies("ran a 2 ii")),
		),
	))
	d.Register(dispatch.Literal("b").ThenLiteral("1"))
	d.Register(dispatch.Literal("c").Executes(replies("ran c"), "a plain command"))
	d.Register(dispatch.Literal("d").
		Requires(dispatch.RequireHidden(func(any) bool { return false })).
		Executes(replies("you should not see this")))
	d.Register(dispatch.Literal("e").Executes(replies("ran e")).Then(
		dispatch.Literal("1").Executes(replies("ran e 1")).Then(
			dispatch.Literal("i").Executes(replies("ran e 1 i")),
			dispatch.Literal("ii").Executes(replies("ran e 1 ii")),
		),
	))
	d.Register(dispatch.Literal("g").Executes(replies("ran g")))
	h := d.Register(dispatch.Literal("h").Executes(replies("ran h"), "reachable through k"))
	d.Register(dispatch.Literal("i").Executes(replies("ran i")).Then(
		dispatch.Literal("1").Executes(replies("ran i 1")),
		dispatch.Literal("2").Executes(replies("ran i 2")),
	))
	d.Register(dispatch.Literal("j").Redirect(d.Root()))
	d.Register(dispatch.Literal("k").Redirect(h))
	d.Register(dispatch.Literal("user-test").Then(
		dispatch.Argument("user", userArg()).Then(
			dispatch.Argument("rule", ruleArg()).Executes(
				func(ctx context.Context, c *dispatch.CommandContext) (any, error) {
					user, err := dispatch.GetArgument[string](c, "user")
					if err != nil {
						return nil, err
					}
					rule, err := dispatch.GetArgument[string](c, "rule")
					if err != nil {
						return nil, err
					}
					return fmt.Sprintf("applied rule %s to %s", rule, user), nil
				}, "apply a rule to a user"),
		),
	))
}

// =============================================================================
// HELP RENDERING
// =============================================================================

// helpMarkdown builds the command overview the help command renders.
func helpMarkdown(d *dispatch.Dispatcher, source any) string {
	roots, usages := d.GetSmartUsage(d.Root(), source)

	var sb strings.Builder
	sb.WriteString("# Commands\n\n")
	for _, node := range roots {
		sb.WriteString(fmt.Sprintf("- `%s`", usages[node]))
		if desc := node.Description(); desc != "" {
			sb.WriteString(" - " + desc)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\nEnd a line with `?` to list completions, `quit` to leave.\n")
	return sb.String()
}

// =============================================================================
// SHELL
// =============================================================================

// Shell ties the dispatcher, config, input handling and grammar file
// registry together.
type Shell struct {
	cfg      *replcfg.Config
	d        *dispatch.Dispatcher
	input    *InputLine
	registry *grammarfile.Registry
	watcher  grammarfile.FileWatcher
	source   any
}

// NewShell builds a shell around the demonstration grammar.
func NewShell(cfg *replcfg.Config) *Shell {
	d := dispatch.NewDispatcher()
	registerDemoGrammar(d)

	s := &Shell{
		cfg:    cfg,
		d:      d,
		source: "console",
	}

	d.Register(dispatch.Literal("help").Executes(
		func(ctx context.Context, c *dispatch.CommandContext) (any, error) {
			return renderMarkdown(helpMarkdown(d, c.Source())), nil
		}, "show this overview"))

	return s
}

// MergeGrammarFile loads extra commands from the configured grammar file and
// starts watching it for changes.
func (s *Shell) MergeGrammarFile() {
	if s.cfg.GrammarFile == "" {
		return
	}

	s.registry = grammarfile.NewRegistry(s.d, s.cfg.GrammarFile)
	if s.registry.Missing() {
		fmt.Fprintln(os.Stderr, infoStyle.Render(
			fmt.Sprintf("grammar file %s not found, skipping", s.cfg.GrammarFile)))
		return
	}

	if err := s.registry.Reload(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("[grammar]")+" "+err.Error())
		return
	}
	fmt.Println(infoStyle.Render(
		fmt.Sprintf("loaded %d commands from %s", s.registry.Count(), s.cfg.GrammarFile)))

	watcher, err := grammarfile.StartWatcher(s.registry, 250*time.Millisecond, func(err error) {
		if err != nil {
			fmt.Fprintln(os.Stderr, "\n"+errorStyle.Render("[grammar reload]")+" "+err.Error())
			return
		}
		fmt.Println("\n" + infoStyle.Render("grammar file reloaded"))
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("[grammar watch]")+" "+err.Error())
		return
	}
	s.watcher = watcher
}

// completer asks the suggestion engine for completions at the cursor.
// It is wired into liner as a word completer so only the span the engine
// reports is replaced.
func (s *Shell) completer(line string, pos int) (string, []string, string) {
	if !s.cfg.Completion.Enabled {
		return line[:pos], nil, line[pos:]
	}

	ctx := context.Background()
	parse := s.d.Parse(ctx, line, s.source)
	got, err := s.d.GetCompletionSuggestionsAt(ctx, parse, pos)
	if err != nil || got.IsEmpty() {
		return line[:pos], nil, line[pos:]
	}

	limit := len(got.List)
	if limit > s.cfg.Completion.MaxResults {
		limit = s.cfg.Completion.MaxResults
	}
	completions := make([]string, 0, limit)
	for _, entry := range got.List[:limit] {
		completions = append(completions, entry.Text)
	}

	start := got.Range.Start
	if start > pos {
		start = pos
	}
	return line[:start], completions, line[pos:]
}

// showSuggestions prints the completion list for a line, with prefixes and
// width-truncated tooltips.
func (s *Shell) showSuggestions(line string) {
	ctx := context.Background()
	parse := s.d.Parse(ctx, line, s.source)
	got, err := s.d.GetCompletionSuggestionsAt(ctx, parse, len(line))
	if err != nil {
		printError(err, line)
		return
	}
	if got.IsEmpty() {
		fmt.Println(infoStyle.Render("no completions"))
		return
	}

	for _, entry := range got.List {
		text := entry.Text
		if entry.Prefix != "" {
			text = entry.Prefix + " " + text
		}
		out := "  " + suggestionStyle.Render(text)
		if entry.Tooltip != "" {
			tooltip := runewidth.Truncate(entry.Tooltip, s.cfg.UI.TooltipWidth, "...")
			out += "  " + infoStyle.Render(tooltip)
		}
		fmt.Println(out)
	}
}

// printError reports a command error, with a caret under the failing
// position when the error is pinned to the input.
func printError(err error, input string) {
	ce := cmderr.AsCommandError(err)
	if ce == nil || ce.Position() < 0 {
		fmt.Fprintln(os.Stderr, errorStyle.Render("[error]")+" "+err.Error())
		return
	}

	pos := ce.Position()
	if pos > len(input) {
		pos = len(input)
	}
	fmt.Fprintln(os.Stderr, errorStyle.Render("[error]")+" "+ce.Message)
	fmt.Fprintln(os.Stderr, "  "+input)
	fmt.Fprintln(os.Stderr, "  "+strings.Repeat(" ", runewidth.StringWidth(input[:pos]))+caretStyle.Render("^"))
}

// dispatchLine runs one input line and prints the outcome.
func (s *Shell) dispatchLine(input string) {
	results, err := s.d.Execute(context.Background(), input, s.source)
	if err != nil {
		printError(err, input)
		return
	}

	for _, r := range results {
		switch {
		case r.Err != nil:
			fmt.Fprintln(os.Stderr, errorStyle.Render("[error]")+" "+r.Err.Error())
		case r.Value == nil:
			fmt.Println(infoStyle.Render("ok"))
		default:
			fmt.Println(resultStyle.Render(fmt.Sprint(r.Value)))
		}
	}
}

// Run is the main shell loop.
func (s *Shell) Run() {
	s.input = NewInputLine(s.cfg)
	defer s.input.Close()

	s.input.line.SetWordCompleter(s.completer)

	fmt.Println(infoStyle.Render("dispatch shell - type help for an overview"))

	for {
		input, err := s.input.ReadInput(promptStyle.Render(s.cfg.Prompt))
		if err != nil {
			if err == liner.ErrPromptAborted {
				// Ctrl+C pressed - exit gracefully
				fmt.Println()
				return
			}
			// EOF (Ctrl+D) or other error - exit gracefully
			fmt.Println()
			return
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			return
		}

		if strings.HasSuffix(input, "?") {
			s.showSuggestions(strings.TrimSuffix(input, "?"))
			continue
		}

		s.dispatchLine(input)
	}
}

// Close releases the grammar watcher.
func (s *Shell) Close() {
	if s.watcher != nil {
		s.watcher.Close()
	}
}

// =============================================================================
// MAIN
// =============================================================================

func main() {
	cfg, err := replcfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}
	if cfg == nil {
		cfg = replcfg.Default()
	}

	if !cfg.UI.Color {
		disableStyles()
	}
	initRenderer(cfg.UI.WordWrap)

	shell := NewShell(cfg)
	defer shell.Close()

	shell.MergeGrammarFile()
	shell.Run()
}
