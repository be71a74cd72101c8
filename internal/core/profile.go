package core

import (
	"fmt"
	"strings"
)

// ProfileDefaults holds per-profile default configuration values. Profiles
// provide defaults only — the manifest and explicit env vars always override.
type ProfileDefaults struct {
	Name            string
	TimeoutSeconds  int
	MaxOutputBytes  int
	StrictSchemas   bool
	BuildTimeoutSec int
}

var profiles = map[string]*ProfileDefaults{
	"default": {
		Name:            "default",
		TimeoutSeconds:  5,
		MaxOutputBytes:  256 * 1024,
		StrictSchemas:   false,
		BuildTimeoutSec: 300,
	},
	"ci": {
		Name:            "ci",
		TimeoutSeconds:  15,
		MaxOutputBytes:  256 * 1024,
		StrictSchemas:   false,
		BuildTimeoutSec: 600,
	},
	"strict": {
		Name:            "strict",
		TimeoutSeconds:  5,
		MaxOutputBytes:  256 * 1024,
		StrictSchemas:   true,
		BuildTimeoutSec: 300,
	},
}

// LoadProfile returns profile defaults for the given name.
// Empty name defaults to "default". Unknown names return an error.
func LoadProfile(name string) (*ProfileDefaults, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		name = "default"
	}
	p, ok := profiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown profile %q (valid: default, ci, strict)", name)
	}
	copy := *p
	return &copy, nil
}
