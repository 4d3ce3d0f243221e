// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package replcfg provides configuration loading and management for the
// dispatch demo REPL.
//
// Supports TOML configuration with sensible defaults, environment variable
// overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.dispatch-repl/config.toml
//   - Built-in defaults
package replcfg

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete REPL configuration.
type Config struct {
	// Prompt is the string printed before each input line
	Prompt string `toml:"prompt"`

	// HistoryFile is the path to the input history file (empty = default
	// ~/.dispatch-repl/history)
	HistoryFile string `toml:"history_file"`

	// GrammarFile is the path to a TOML file with extra literal commands
	// (empty = no extra commands, no watching)
	GrammarFile string `toml:"grammar_file"`

	// UI configuration
	UI UIConfig `toml:"ui"`

	// Completion configuration
	Completion CompletionConfig `toml:"completion"`
}

// UIConfig contains display configuration.
type UIConfig struct {
	// Theme is the color theme: "dark", "light", "auto"
	Theme string `toml:"theme"`
	// Color enables styled output
	Color bool `toml:"color"`
	// WordWrap is the column to wrap rendered help text at
	WordWrap int `toml:"word_wrap"`
	// TooltipWidth is the maximum display width of completion tooltips
	TooltipWidth int `toml:"tooltip_width"`
}

// CompletionConfig contains TAB completion configuration.
type CompletionConfig struct {
	// Enabled controls whether TAB completion is active
	Enabled bool `toml:"enabled"`
	// MaxResults caps how many suggestions are offered per keystroke
	MaxResults int `toml:"max_results"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Prompt:      "dispatch> ",
		HistoryFile: "",
		GrammarFile: "",

		UI: UIConfig{
			Theme:        "dark",
			Color:        true,
			WordWrap:     80,
			TooltipWidth: 40,
		},

		Completion: CompletionConfig{
			Enabled:    true,
			MaxResults: 50,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the REPL configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".dispatch-repl"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// HistoryPath returns the effective history file path for the config.
func (c *Config) HistoryPath() (string, error) {
	if c.HistoryFile != "" {
		return c.HistoryFile, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions checks and fixes permissions on config files.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}

	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default config file, falling back to
// defaults if no file exists. Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	path, err := ConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadTOML(cfg, path); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				cfg.ApplyEnvOverrides()
				cfg.SetDefaults()
				if err := cfg.Validate(); err != nil {
					return nil, fmt.Errorf("invalid config: %w", err)
				}
				return cfg, nil
			}
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, loadErr
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	_, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}
	if err := LoadTOML(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# dispatch REPL configuration file")
	fmt.Fprintln(file, "# Generated by dispatch-repl - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if c.UI.WordWrap < 20 || c.UI.WordWrap > 500 {
		errs = append(errs, ValidationError{
			Field:   "ui.word_wrap",
			Message: fmt.Sprintf("word_wrap must be 20-500, got %d", c.UI.WordWrap),
		})
	}

	if c.UI.TooltipWidth < 10 || c.UI.TooltipWidth > 200 {
		errs = append(errs, ValidationError{
			Field:   "ui.tooltip_width",
			Message: fmt.Sprintf("tooltip_width must be 10-200, got %d", c.UI.TooltipWidth),
		})
	}

	if c.Completion.MaxResults < 1 || c.Completion.MaxResults > 1000 {
		errs = append(errs, ValidationError{
			Field:   "completion.max_results",
			Message: fmt.Sprintf("max_results must be 1-1000, got %d", c.Completion.MaxResults),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults sets default values for any missing or zero-value fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Prompt == "" {
		c.Prompt = defaults.Prompt
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.UI.WordWrap == 0 {
		c.UI.WordWrap = defaults.UI.WordWrap
	}
	if c.UI.TooltipWidth == 0 {
		c.UI.TooltipWidth = defaults.UI.TooltipWidth
	}
	if c.Completion.MaxResults == 0 {
		c.Completion.MaxResults = defaults.Completion.MaxResults
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - DISPATCH_REPL_PROMPT: overrides prompt
//   - DISPATCH_REPL_HISTORY: overrides history_file
//   - DISPATCH_REPL_GRAMMAR: overrides grammar_file
//   - DISPATCH_REPL_THEME: overrides ui.theme
//   - DISPATCH_REPL_NO_COLOR / NO_COLOR: disables styled output
func (c *Config) ApplyEnvOverrides() {
	if prompt := os.Getenv("DISPATCH_REPL_PROMPT"); prompt != "" {
		c.Prompt = prompt
	}

	if history := os.Getenv("DISPATCH_REPL_HISTORY"); history != "" {
		c.HistoryFile = history
	}

	if grammar := os.Getenv("DISPATCH_REPL_GRAMMAR"); grammar != "" {
		c.GrammarFile = grammar
	}

	if theme := os.Getenv("DISPATCH_REPL_THEME"); theme != "" {
		c.UI.Theme = theme
	}

	if noColor := os.Getenv("DISPATCH_REPL_NO_COLOR"); noColor != "" {
		c.UI.Color = !(noColor == "1" || strings.ToLower(noColor) == "true")
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		c.UI.Color = false
	}
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
// This should only be used in tests to reset state between test runs.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
