// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for haven.
//
// Configuration lives in TOML at ~/.haven/config.toml, with sensible
// defaults, environment variable overrides, and validation. The file
// holds the API key, so it is kept at 0600.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete haven configuration.
type Config struct {
	Version string `toml:"version"`

	// Gemini API configuration
	Gemini GeminiConfig `toml:"gemini"`

	// Authentication behavior
	Auth AuthConfig `toml:"auth"`

	// Safety monitor configuration
	Safety SafetyConfig `toml:"safety"`

	// Storage configuration
	Storage StorageConfig `toml:"storage"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// GeminiConfig contains Gemini API settings.
type GeminiConfig struct {
	// APIKey authenticates requests. Empty means the AI surfaces run
	// on fallbacks only.
	APIKey string `toml:"api_key"`
	// Model is the Gemini model name
	Model string `toml:"model"`
	// TimeoutSecs is the per-request timeout in seconds
	TimeoutSecs int `toml:"timeout_secs"`
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	// AllowPasswordlessLogin accepts any password for legacy accounts
	// that never stored one
	AllowPasswordlessLogin bool `toml:"allow_passwordless_login"`
	// HashPasswords stores bcrypt hashes instead of plain text
	HashPasswords bool `toml:"hash_passwords"`
	// IdleLogoutMins logs the active user out after this many idle
	// minutes. 0 disables the auto-lock.
	IdleLogoutMins int `toml:"idle_logout_mins"`
}

// SafetyConfig contains safety monitor settings.
type SafetyConfig struct {
	// ScansPerMinute paces classifier calls during a scan pass
	ScansPerMinute int `toml:"scans_per_minute"`
}

// StorageConfig contains storage settings.
type StorageConfig struct {
	// Path is the SQLite database path (empty = ~/.haven/haven.db)
	Path string `toml:"path"`
}

// UIConfig contains UI settings.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme"`
	// SidebarOpen is the sidebar's initial state
	SidebarOpen bool `toml:"sidebar_open"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",
		Gemini: GeminiConfig{
			Model:       "gemini-2.0-flash",
			TimeoutSecs: 30,
		},
		Auth: AuthConfig{
			AllowPasswordlessLogin: true,
			HashPasswords:          false,
			IdleLogoutMins:         15,
		},
		Safety: SafetyConfig{
			ScansPerMinute: 30,
		},
		UI: UIConfig{
			Theme:       "dark",
			SidebarOpen: true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the haven configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".haven"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DefaultStoragePath returns the default SQLite database path.
func DefaultStoragePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "haven.db"), nil
}

// EnsureConfigDir ensures the config directory exists. 0700: the
// directory holds the database and the API key.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// ensureSecurePermissions fixes permissions on the config file.
// It holds the API key, so anything wider than 0600 gets tightened.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Mode().Perm() != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions: %w", err)
		}
	}
	return nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load loads configuration from the default config file, falling back
// to defaults when it does not exist. Environment overrides are
// applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	if _, statErr := os.Stat(path); statErr != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific file path with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	cfg.fillDefaults()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save saves the configuration to the default TOML file with 0600
// permissions.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath saves the configuration to a specific TOML file.
func SaveToPath(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
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

	fmt.Fprintln(file, "# haven configuration file")
	fmt.Fprintln(file, "# Generated by haven - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// fillDefaults fills in any missing values with defaults.
func (c *Config) fillDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = defaults.Gemini.Model
	}
	if c.Gemini.TimeoutSecs == 0 {
		c.Gemini.TimeoutSecs = defaults.Gemini.TimeoutSecs
	}
	if c.Safety.ScansPerMinute == 0 {
		c.Safety.ScansPerMinute = defaults.Safety.ScansPerMinute
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
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

	if c.Gemini.TimeoutSecs < 1 || c.Gemini.TimeoutSecs > 300 {
		errs = append(errs, ValidationError{
			Field:   "gemini.timeout_secs",
			Message: fmt.Sprintf("must be 1-300, got %d", c.Gemini.TimeoutSecs),
		})
	}

	if c.Safety.ScansPerMinute < 1 || c.Safety.ScansPerMinute > 600 {
		errs = append(errs, ValidationError{
			Field:   "safety.scans_per_minute",
			Message: fmt.Sprintf("must be 1-600, got %d", c.Safety.ScansPerMinute),
		})
	}

	if c.Auth.IdleLogoutMins < 0 || c.Auth.IdleLogoutMins > 240 {
		errs = append(errs, ValidationError{
			Field:   "auth.idle_logout_mins",
			Message: fmt.Sprintf("must be 0-240 (0 disables), got %d", c.Auth.IdleLogoutMins),
		})
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported environment variables:
//   - HAVEN_API_KEY: overrides gemini.api_key
//   - HAVEN_MODEL: overrides gemini.model
//   - HAVEN_DATA_PATH: overrides storage.path
//   - HAVEN_THEME: overrides ui.theme
//   - HAVEN_IDLE_LOGOUT_MINS: overrides auth.idle_logout_mins
func (c *Config) ApplyEnvOverrides() {
	if key := os.Getenv("HAVEN_API_KEY"); key != "" {
		c.Gemini.APIKey = key
	}
	if model := os.Getenv("HAVEN_MODEL"); model != "" {
		c.Gemini.Model = model
	}
	if path := os.Getenv("HAVEN_DATA_PATH"); path != "" {
		c.Storage.Path = path
	}
	if theme := os.Getenv("HAVEN_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if mins := os.Getenv("HAVEN_IDLE_LOGOUT_MINS"); mins != "" {
		if v, err := strconv.Atoi(mins); err == nil {
			c.Auth.IdleLogoutMins = v
		}
	}
}
