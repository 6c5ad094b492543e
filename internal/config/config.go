// Package config loads the mailsmith configuration file. The library
// directory defaults to ~/.mailsmith and can be overridden with the
// MAILSMITH_DIR environment variable; config.yaml inside it tunes the rest.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EnvLibraryDir overrides the library directory when set.
const EnvLibraryDir = "MAILSMITH_DIR"

// Config is the on-disk configuration.
type Config struct {
	// LibraryPath is where templates and this file live.
	LibraryPath string `yaml:"-"`
	// HistoryLimit caps each editing session's undo stack.
	HistoryLimit int `yaml:"history_limit"`
	// EmitNodeIDs adds data-node-id attributes to exported HTML.
	EmitNodeIDs bool `yaml:"emit_node_ids"`
	// DefaultLocale seeds new templates.
	DefaultLocale string `yaml:"default_locale"`
	// TargetClients narrows compatibility reporting in the CLI output.
	TargetClients []string `yaml:"target_clients,omitempty"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		HistoryLimit:  100,
		DefaultLocale: "en",
	}
}

// LibraryDir resolves the library directory: explicit argument, then the
// environment, then ~/.mailsmith.
func LibraryDir(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if env := os.Getenv(EnvLibraryDir); env != "" {
		return env, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".mailsmith"), nil
}

// Load reads config.yaml from the library directory, falling back to
// defaults when the file is absent.
func Load(libraryPath string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.LibraryPath = libraryPath

	path := filepath.Join(libraryPath, "config.yaml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 100
	}
	if cfg.DefaultLocale == "" {
		cfg.DefaultLocale = "en"
	}
	return cfg, nil
}

// Save writes the configuration back to config.yaml.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.LibraryPath, 0755); err != nil {
		return fmt.Errorf("failed to create library directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	return os.WriteFile(filepath.Join(c.LibraryPath, "config.yaml"), data, 0644)
}
