// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package grammarfile loads literal command definitions from TOML files and
// merges them into a dispatcher. A definition file can be watched for changes
// so edits take effect in a running REPL.
package grammarfile

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/dispatch"
)

// =============================================================================
// FILE SCHEMA
// =============================================================================

// File is the top-level TOML document.
type File struct {
	Commands []Command `toml:"command"`
}

// Command describes one literal command. Commands nest through Subs; a
// command with a reply is executable, one without only routes to its
// children.
type Command struct {
	// Name is the primary literal (required)
	Name string `toml:"name"`
	// Aliases are alternative spellings of the literal
	Aliases []string `toml:"aliases"`
	// Description is shown by help output
	Description string `toml:"description"`
	// Reply is the text returned when the command executes
	Reply string `toml:"reply"`
	// Subs are nested literal commands
	Subs []Command `toml:"sub"`
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads and validates a TOML grammar file.
func Load(path string) ([]Command, error) {
	var file File
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("failed to decode grammar file: %w", err)
	}
	if err := validate(file.Commands, ""); err != nil {
		return nil, err
	}
	return file.Commands, nil
}

// validate walks the command tree and rejects unusable definitions.
func validate(cmds []Command, parent string) error {
	seen := make(map[string]bool)
	for _, cmd := range cmds {
		at := cmd.Name
		if parent != "" {
			at = parent + " " + cmd.Name
		}

		if strings.TrimSpace(cmd.Name) == "" {
			return fmt.Errorf("grammar file: command under %q has no name", parent)
		}
		if strings.ContainsAny(cmd.Name, " \t") {
			return fmt.Errorf("grammar file: command name %q contains whitespace", at)
		}
		for _, alias := range cmd.Aliases {
			if strings.TrimSpace(alias) == "" || strings.ContainsAny(alias, " \t") {
				return fmt.Errorf("grammar file: command %q has invalid alias %q", at, alias)
			}
		}

		lower := strings.ToLower(cmd.Name)
		if seen[lower] {
			return fmt.Errorf("grammar file: duplicate command %q", at)
		}
		seen[lower] = true

		if cmd.Reply == "" && len(cmd.Subs) == 0 {
			return fmt.Errorf("grammar file: command %q has neither a reply nor subcommands", at)
		}

		if err := validate(cmd.Subs, at); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// BUILDING
// =============================================================================

// Build converts a command definition into a dispatch builder.
func Build(cmd Command) *dispatch.LiteralBuilder {
	names := append([]string{cmd.Name}, cmd.Aliases...)
	b := dispatch.Literal(names...)

	if cmd.Reply != "" {
		reply := cmd.Reply
		b.Executes(func(ctx context.Context, c *dispatch.CommandContext) (any, error) {
			return reply, nil
		}, cmd.Description)
	}

	for _, sub := range cmd.Subs {
		b.Then(Build(sub))
	}

	return b
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry tracks grammar-file commands registered on a dispatcher so a
// reload can replace the previous set atomically.
type Registry struct {
	d  *dispatch.Dispatcher
	mu sync.Mutex

	path  string
	nodes []*dispatch.CommandNode
}

// NewRegistry creates a registry that merges commands from path into d.
func NewRegistry(d *dispatch.Dispatcher, path string) *Registry {
	return &Registry{d: d, path: path}
}

// Path returns the grammar file path the registry loads from.
func (r *Registry) Path() string {
	return r.path
}

// Reload reads the grammar file and swaps the registered command set.
// A file that fails to load leaves the previous commands in place.
func (r *Registry) Reload() error {
	cmds, err := Load(r.path)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, node := range r.nodes {
		r.d.Unregister(node)
	}
	r.nodes = r.nodes[:0]

	for _, cmd := range cmds {
		r.nodes = append(r.nodes, r.d.Register(Build(cmd)))
	}
	return nil
}

// Count returns how many top-level commands are currently registered.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.nodes)
}

// Missing reports whether the grammar file does not exist.
func (r *Registry) Missing() bool {
	_, err := os.Stat(r.path)
	return err != nil
}
