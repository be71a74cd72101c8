// Package buildstep runs the external build command that produces the target
// executable before any probes run.
package buildstep

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	ErrCodeCommandEmpty   = "build_command_empty"
	ErrCodeCommandInvalid = "build_command_invalid"
	ErrCodeWorkDirInvalid = "build_workdir_invalid"
	ErrCodeTimeout        = "build_timeout"
	ErrCodeExecFailed     = "build_failed"
)

// BuildError carries a machine-readable code alongside the failure detail.
type BuildError struct {
	ErrCode string
	Detail  string
}

func (e *BuildError) Error() string     { return e.Detail }
func (e *BuildError) ErrorCode() string { return e.ErrCode }

type Config struct {
	Command        string
	WorkDir        string
	Timeout        time.Duration
	MaxOutputBytes int
}

// Report captures one build invocation.
type Report struct {
	Command         string `json:"command"`
	WorkDir         string `json:"work_dir"`
	ExitCode        int    `json:"exit_code"`
	DurationMS      int64  `json:"duration_ms"`
	Stdout          string `json:"stdout"`
	Stderr          string `json:"stderr"`
	StdoutTruncated bool   `json:"stdout_truncated,omitempty"`
	StderrTruncated bool   `json:"stderr_truncated,omitempty"`
}

type Runner struct {
	cfg Config
}

func NewRunner(cfg Config) (*Runner, error) {
	if strings.TrimSpace(cfg.Command) == "" {
		return nil, &BuildError{ErrCode: ErrCodeCommandEmpty, Detail: "build command is empty"}
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = "."
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if cfg.MaxOutputBytes <= 0 {
		cfg.MaxOutputBytes = 256 * 1024
	}
	return &Runner{cfg: cfg}, nil
}

// Run executes the build command without a shell. The command is split on
// whitespace; shell operators are rejected outright.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	if err := validateCommandLine(r.cfg.Command); err != nil {
		return Report{}, err
	}
	args := strings.Fields(r.cfg.Command)

	wd, err := absWorkDir(r.cfg.WorkDir)
	if err != nil {
		return Report{}, err
	}

	execCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, args[0], args[1:]...)
	cmd.Dir = wd
	var stdoutBuf bytes.Buffer
	var stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	start := time.Now()
	runErr := cmd.Run()
	duration := time.Since(start)

	report := Report{
		Command:    r.cfg.Command,
		WorkDir:    wd,
		DurationMS: duration.Milliseconds(),
	}
	report.Stdout, report.StdoutTruncated = truncateOutput(stdoutBuf.String(), r.cfg.MaxOutputBytes)
	report.Stderr, report.StderrTruncated = truncateOutput(stderrBuf.String(), r.cfg.MaxOutputBytes)

	if runErr == nil {
		return report, nil
	}

	if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
		report.ExitCode = -1
		return report, &BuildError{ErrCode: ErrCodeTimeout, Detail: fmt.Sprintf("build command timed out after %s", r.cfg.Timeout)}
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		report.ExitCode = exitErr.ExitCode()
		return report, &BuildError{ErrCode: ErrCodeExecFailed, Detail: fmt.Sprintf("build command failed with exit code %d", report.ExitCode)}
	}

	report.ExitCode = -1
	return report, &BuildError{ErrCode: ErrCodeExecFailed, Detail: runErr.Error()}
}

func validateCommandLine(commandLine string) error {
	forbidden := []string{";", "|", "&", ">", "<", "`", "$(", "\n"}
	for _, op := range forbidden {
		if strings.Contains(commandLine, op) {
			return &BuildError{ErrCode: ErrCodeCommandInvalid, Detail: fmt.Sprintf("forbidden shell operator %q in build command", op)}
		}
	}
	return nil
}

func absWorkDir(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", &BuildError{ErrCode: ErrCodeWorkDirInvalid, Detail: "build workdir is empty"}
	}
	wd, err := filepath.Abs(dir)
	if err != nil {
		return "", &BuildError{ErrCode: ErrCodeWorkDirInvalid, Detail: fmt.Sprintf("resolve build workdir %q: %v", dir, err)}
	}
	return wd, nil
}

func truncateOutput(text string, maxBytes int) (string, bool) {
	if len(text) <= maxBytes {
		return text, false
	}
	return text[:maxBytes] + "\n[output truncated]", true
}
