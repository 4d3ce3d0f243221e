// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package grammarfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jeranaias/dispatch"
)

func writeGrammar(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "grammar.toml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoadParsesNestedCommands(t *testing.T) {
	path := writeGrammar(t, `
[[command]]
name = "ping"
aliases = ["p"]
description = "replies with pong"
reply = "pong"

[[command]]
name = "server"

  [[command.sub]]
  name = "status"
  reply = "running"

  [[command.sub]]
  name = "version"
  reply = "1.0"
`)

	cmds, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cmds) != 2 {
		t.Fatalf("got %d commands, want 2", len(cmds))
	}
	if cmds[0].Name != "ping" || cmds[0].Reply != "pong" {
		t.Fatalf("first command = %+v", cmds[0])
	}
	if len(cmds[0].Aliases) != 1 || cmds[0].Aliases[0] != "p" {
		t.Fatalf("aliases = %v", cmds[0].Aliases)
	}
	if len(cmds[1].Subs) != 2 {
		t.Fatalf("got %d subcommands, want 2", len(cmds[1].Subs))
	}
}

func TestLoadRejectsBadDefinitions(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "missing name",
			content: "[[command]]\nreply = \"x\"\n",
			want:    "no name",
		},
		{
			name:    "name with whitespace",
			content: "[[command]]\nname = \"two words\"\nreply = \"x\"\n",
			want:    "whitespace",
		},
		{
			name:    "duplicate names",
			content: "[[command]]\nname = \"a\"\nreply = \"x\"\n\n[[command]]\nname = \"A\"\nreply = \"y\"\n",
			want:    "duplicate",
		},
		{
			name:    "no reply and no subs",
			content: "[[command]]\nname = \"bare\"\n",
			want:    "neither",
		},
		{
			name:    "bad alias",
			content: "[[command]]\nname = \"a\"\nreply = \"x\"\naliases = [\"b c\"]\n",
			want:    "alias",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeGrammar(t, tt.content)
			_, err := Load(path)
			if err == nil {
				t.Fatal("Load() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load() error = %q, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestBuildProducesExecutableCommands(t *testing.T) {
	d := dispatch.NewDispatcher()
	d.Register(Build(Command{
		Name:    "server",
		Aliases: []string{"srv"},
		Subs: []Command{
			{Name: "status", Reply: "running"},
		},
	}))

	results, err := d.Execute(context.Background(), "srv status", nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(results) != 1 || results[0].Value != "running" {
		t.Fatalf("results = %+v", results)
	}
}

func TestRegistryReloadSwapsCommands(t *testing.T) {
	path := writeGrammar(t, "[[command]]\nname = \"old\"\nreply = \"before\"\n")

	d := dispatch.NewDispatcher()
	reg := NewRegistry(d, path)
	if err := reg.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if reg.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", reg.Count())
	}

	results, err := d.Execute(context.Background(), "old", nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if results[0].Value != "before" {
		t.Fatalf("Value = %v", results[0].Value)
	}

	if err := os.WriteFile(path, []byte("[[command]]\nname = \"new\"\nreply = \"after\"\n"), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := reg.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	if _, err := d.Execute(context.Background(), "old", nil); err == nil {
		t.Fatal("replaced command must be gone")
	}
	results, err = d.Execute(context.Background(), "new", nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if results[0].Value != "after" {
		t.Fatalf("Value = %v", results[0].Value)
	}
}

func TestRegistryReloadKeepsOldSetOnError(t *testing.T) {
	path := writeGrammar(t, "[[command]]\nname = \"keep\"\nreply = \"kept\"\n")

	d := dispatch.NewDispatcher()
	reg := NewRegistry(d, path)
	if err := reg.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	if err := os.WriteFile(path, []byte("not valid toml ["), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := reg.Reload(); err == nil {
		t.Fatal("Reload() = nil, want error")
	}

	results, err := d.Execute(context.Background(), "keep", nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if results[0].Value != "kept" {
		t.Fatalf("Value = %v", results[0].Value)
	}
}
