package conformance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/chatbridge/mcpcheck/internal/harness"
)

// ProbeRunner performs one request/response exchange against the target.
type ProbeRunner interface {
	Run(ctx context.Context, req harness.Request) harness.Outcome
}

// Reporter receives suite progress for rendering. All callbacks happen on the
// suite's goroutine, in execution order.
type Reporter interface {
	SuiteStarted(total int)
	CaseStarted(name string)
	CaseFinished(r Result)
	SuiteFinished(s Summary)
}

// RecordSink persists a finished suite run.
type RecordSink interface {
	RecordRun(ctx context.Context, s Summary) error
}

// Suite runs its cases strictly sequentially, in declaration order. A fault
// inside one case is recorded as a failed result; it never aborts the run,
// so the number of results always equals the number of cases.
type Suite struct {
	cases    []Case
	probe    ProbeRunner
	logger   *slog.Logger
	reporter Reporter
	sink     RecordSink
	target   string
	profile  string
}

func NewSuite(probe ProbeRunner, cases []Case, logger *slog.Logger) *Suite {
	if logger == nil {
		logger = slog.Default()
	}
	return &Suite{cases: cases, probe: probe, logger: logger}
}

// SetReporter attaches a progress reporter. A nil reporter runs silently.
func (s *Suite) SetReporter(r Reporter) { s.reporter = r }

// SetSink attaches a run-history sink. A nil sink disables persistence.
func (s *Suite) SetSink(sink RecordSink) { s.sink = sink }

// SetRunInfo attaches target and profile labels carried into the summary.
func (s *Suite) SetRunInfo(target, profile string) {
	s.target = target
	s.profile = profile
}

// Run executes every case and returns the summary. Sink write failures are
// logged, not fatal: the verdict is already decided by then.
func (s *Suite) Run(ctx context.Context) Summary {
	summary := Summary{
		RunID:     uuid.New().String(),
		Target:    s.target,
		Profile:   s.profile,
		Total:     len(s.cases),
		StartedAt: time.Now().UTC(),
	}

	if s.reporter != nil {
		s.reporter.SuiteStarted(len(s.cases))
	}

	for _, c := range s.cases {
		if s.reporter != nil {
			s.reporter.CaseStarted(c.Name)
		}
		result := s.runCase(ctx, c)
		summary.Results = append(summary.Results, result)
		if result.Passed {
			summary.Passed++
		}
		if s.reporter != nil {
			s.reporter.CaseFinished(result)
		}
	}

	summary.FinishedAt = time.Now().UTC()

	if s.reporter != nil {
		s.reporter.SuiteFinished(summary)
	}
	if s.sink != nil {
		if err := s.sink.RecordRun(ctx, summary); err != nil {
			s.logger.Warn("run history write failed", "run_id", summary.RunID, "err", err)
		}
	}

	s.logger.Info("suite finished",
		"run_id", summary.RunID,
		"passed", summary.Passed,
		"total", summary.Total,
		"duration_ms", summary.FinishedAt.Sub(summary.StartedAt).Milliseconds(),
	)
	return summary
}

// runCase isolates one case execution: a panicking assertion or probe becomes
// a failed result carrying the fault description.
func (s *Suite) runCase(ctx context.Context, c Case) (result Result) {
	result = Result{Name: c.Name}
	defer func() {
		if r := recover(); r != nil {
			result.Passed = false
			result.Detail = fmt.Sprintf("unexpected fault: %v", r)
			s.logger.Error("case panicked", "case", c.Name, "fault", r)
		}
	}()

	outcome := s.probe.Run(ctx, c.Request)
	check := c.Assert(outcome)
	result.Passed = check.Passed
	result.Detail = check.Detail
	return result
}
