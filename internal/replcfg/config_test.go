// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package replcfg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(*Config)
		field string
	}{
		{
			name:  "bad theme",
			mod:   func(c *Config) { c.UI.Theme = "solarized" },
			field: "ui.theme",
		},
		{
			name:  "word wrap too small",
			mod:   func(c *Config) { c.UI.WordWrap = 5 },
			field: "ui.word_wrap",
		},
		{
			name:  "tooltip width too large",
			mod:   func(c *Config) { c.UI.TooltipWidth = 500 },
			field: "ui.tooltip_width",
		},
		{
			name:  "max results negative",
			mod:   func(c *Config) { c.Completion.MaxResults = -1 },
			field: "completion.max_results",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mod(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Fatalf("Validate() = %q, want mention of %q", err, tt.field)
			}
		})
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.Prompt = "repl$ "
	cfg.GrammarFile = filepath.Join(dir, "grammar.toml")
	cfg.UI.Theme = "light"
	cfg.Completion.MaxResults = 7

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Fatalf("permissions = %o, want 0600", perm)
	}

	got, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if got.Prompt != "repl$ " {
		t.Fatalf("Prompt = %q", got.Prompt)
	}
	if got.UI.Theme != "light" {
		t.Fatalf("Theme = %q", got.UI.Theme)
	}
	if got.Completion.MaxResults != 7 {
		t.Fatalf("MaxResults = %d", got.Completion.MaxResults)
	}
}

func TestLoadFromPathFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := "prompt = \"x> \"\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if got.Prompt != "x> " {
		t.Fatalf("Prompt = %q", got.Prompt)
	}
	if got.UI.Theme != "dark" {
		t.Fatalf("Theme = %q, want default", got.UI.Theme)
	}
	if got.UI.WordWrap != 80 {
		t.Fatalf("WordWrap = %d, want default", got.UI.WordWrap)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("DISPATCH_REPL_PROMPT", "env> ")
	t.Setenv("DISPATCH_REPL_THEME", "light")
	t.Setenv("NO_COLOR", "1")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Prompt != "env> " {
		t.Fatalf("Prompt = %q", cfg.Prompt)
	}
	if cfg.UI.Theme != "light" {
		t.Fatalf("Theme = %q", cfg.UI.Theme)
	}
	if cfg.UI.Color {
		t.Fatal("NO_COLOR must disable color")
	}
}

func TestHistoryPathPrefersExplicitFile(t *testing.T) {
	cfg := Default()
	cfg.HistoryFile = "/tmp/custom_history"

	path, err := cfg.HistoryPath()
	if err != nil {
		t.Fatalf("HistoryPath() error = %v", err)
	}
	if path != "/tmp/custom_history" {
		t.Fatalf("HistoryPath() = %q", path)
	}
}
