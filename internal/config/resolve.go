package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chatbridge/mcpcheck/internal/core"
)

// Settings is the fully resolved harness configuration. Precedence, lowest
// to highest: profile defaults, manifest values, environment variables.
type Settings struct {
	Target          string
	TimeoutSeconds  int
	MaxOutputBytes  int
	RequiredTools   []string
	StrictSchemas   bool
	BuildCommand    string
	BuildWorkDir    string
	BuildTimeoutSec int
	SkipBuild       bool
	DatabaseURL     string
}

// Resolve layers the manifest and environment over profile defaults. getenv
// abstracts os.Getenv so the layering is testable. Invalid values are
// rejected here so startup can fail before any probe runs.
func Resolve(profile *core.ProfileDefaults, m *Manifest, getenv func(string) string) (*Settings, error) {
	s := &Settings{
		TimeoutSeconds:  profile.TimeoutSeconds,
		MaxOutputBytes:  profile.MaxOutputBytes,
		StrictSchemas:   profile.StrictSchemas,
		BuildTimeoutSec: profile.BuildTimeoutSec,
		RequiredTools:   m.Suite.RequiredTools,
		SkipBuild:       m.Build.Skip,
	}

	if m.Suite.TimeoutSeconds > 0 {
		s.TimeoutSeconds = m.Suite.TimeoutSeconds
	}
	if raw := strings.TrimSpace(getenv("MCPCHECK_TIMEOUT_SECONDS")); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			return nil, fmt.Errorf("invalid MCPCHECK_TIMEOUT_SECONDS %q: must be a positive integer", raw)
		}
		s.TimeoutSeconds = secs
	}

	if m.Suite.MaxOutputBytes > 0 {
		s.MaxOutputBytes = m.Suite.MaxOutputBytes
	}
	if raw := strings.TrimSpace(getenv("MCPCHECK_MAX_OUTPUT_BYTES")); raw != "" {
		bytes, err := strconv.Atoi(raw)
		if err != nil || bytes <= 0 {
			return nil, fmt.Errorf("invalid MCPCHECK_MAX_OUTPUT_BYTES %q: must be a positive integer", raw)
		}
		s.MaxOutputBytes = bytes
	}

	if raw := strings.TrimSpace(getenv("MCPCHECK_REQUIRED_TOOLS")); raw != "" {
		s.RequiredTools = splitCSV(raw)
		if len(s.RequiredTools) == 0 {
			return nil, fmt.Errorf("invalid MCPCHECK_REQUIRED_TOOLS %q: no tool names", raw)
		}
	}

	if raw := strings.TrimSpace(getenv("MCPCHECK_STRICT")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid MCPCHECK_STRICT %q: must be a boolean", raw)
		}
		s.StrictSchemas = v
	}

	s.Target = strings.TrimSpace(firstNonEmpty(getenv("MCPCHECK_TARGET"), m.Target))
	if s.Target == "" {
		return nil, fmt.Errorf("target executable not configured: set MCPCHECK_TARGET or target in mcpcheck.toml")
	}

	s.BuildCommand = strings.TrimSpace(firstNonEmpty(getenv("MCPCHECK_BUILD_CMD"), m.Build.Command))
	s.BuildWorkDir = firstNonEmpty(getenv("MCPCHECK_BUILD_WORKDIR"), m.Build.WorkDir)
	if raw := strings.TrimSpace(getenv("MCPCHECK_SKIP_BUILD")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid MCPCHECK_SKIP_BUILD %q: must be a boolean", raw)
		}
		s.SkipBuild = v
	}

	s.DatabaseURL = strings.TrimSpace(firstNonEmpty(getenv("MCPCHECK_DATABASE_URL"), m.History.DatabaseURL))

	return s, nil
}

func firstNonEmpty(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func splitCSV(raw string) []string {
	out := make([]string, 0)
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
