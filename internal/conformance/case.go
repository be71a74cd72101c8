// Package conformance defines the fixed conformance cases and the suite that
// runs them sequentially against a target server.
package conformance

import (
	"time"

	"github.com/chatbridge/mcpcheck/internal/harness"
)

// CheckResult is the verdict of one assertion over one outcome. Detail is
// shown to the user on both pass (supporting evidence) and fail (diagnosis).
type CheckResult struct {
	Passed bool
	Detail string
}

// Assertion is a pure predicate over a probe outcome.
type Assertion func(harness.Outcome) CheckResult

// Case binds a request template to an assertion; one independently runnable
// conformance check.
type Case struct {
	Name    string
	Request harness.Request
	Assert  Assertion
}

// Result records one case execution. Results are append-only and ordered by
// execution; they are never mutated after insertion.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Summary aggregates one suite run.
type Summary struct {
	RunID      string
	Target     string
	Profile    string
	Results    []Result
	Passed     int
	Total      int
	StartedAt  time.Time
	FinishedAt time.Time
}

// ExitCode is 0 iff every case passed.
func (s Summary) ExitCode() int {
	if s.Passed == s.Total {
		return 0
	}
	return 1
}
