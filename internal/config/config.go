// Package config loads the optional mcpcheck.toml manifest. Env vars override
// manifest values; the manifest overrides profile defaults.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// BuildConfig describes the external build step.
type BuildConfig struct {
	Command string `toml:"command"`
	WorkDir string `toml:"workDir"`
	Skip    bool   `toml:"skip"`
}

// SuiteConfig tunes probe execution.
type SuiteConfig struct {
	RequiredTools  []string `toml:"requiredTools"`
	TimeoutSeconds int      `toml:"timeoutSeconds"`
	MaxOutputBytes int      `toml:"maxOutputBytes"`
}

// HistoryConfig enables the run-history store.
type HistoryConfig struct {
	DatabaseURL string `toml:"databaseURL"`
}

// Manifest aggregates harness configuration. Every field is optional.
type Manifest struct {
	Target  string        `toml:"target"`
	Profile string        `toml:"profile"`
	Build   BuildConfig   `toml:"build"`
	Suite   SuiteConfig   `toml:"suite"`
	History HistoryConfig `toml:"history"`
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if m.Suite.TimeoutSeconds < 0 {
		return nil, fmt.Errorf("manifest %s: suite.timeoutSeconds must not be negative", path)
	}
	if m.Suite.MaxOutputBytes < 0 {
		return nil, fmt.Errorf("manifest %s: suite.maxOutputBytes must not be negative", path)
	}
	return &m, nil
}
