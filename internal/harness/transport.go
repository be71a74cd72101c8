package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// Status classifies one transport exchange.
type Status string

const (
	StatusCompleted   Status = "completed"
	StatusTimedOut    Status = "timed-out"
	StatusSpawnFailed Status = "spawn-failed"
)

// RawOutput is everything captured from a single process exchange. A non-zero
// exit code still counts as completed: whether the run passes is decided by
// the decoded response, not the exit status.
type RawOutput struct {
	Status          Status
	Stdout          string
	Stderr          string
	StdoutTruncated bool
	StderrTruncated bool
	ExitCode        int
	Detail          string // failure text for timed-out and spawn-failed
	Duration        time.Duration
}

// TransportConfig bounds a single exchange.
type TransportConfig struct {
	Timeout        time.Duration
	MaxOutputBytes int
}

// Transport spawns one fresh target process per exchange. No process is ever
// reused, so a later probe can never observe state left by an earlier one.
type Transport struct {
	cfg TransportConfig
}

func NewTransport(cfg TransportConfig) *Transport {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxOutputBytes <= 0 {
		cfg.MaxOutputBytes = 256 * 1024
	}
	return &Transport{cfg: cfg}
}

// Exchange spawns path with no arguments, writes requestLine to its stdin,
// closes stdin, and collects stdout and stderr until exit or timeout. On
// timeout the process is killed and reaped before Exchange returns.
func (t *Transport) Exchange(ctx context.Context, path string, requestLine []byte) RawOutput {
	execCtx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, path)
	cmd.Stdin = bytes.NewReader(requestLine)
	var stdoutBuf bytes.Buffer
	var stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	// Bounds Wait when a killed target leaves pipe-holding children behind.
	cmd.WaitDelay = time.Second

	start := time.Now()
	runErr := cmd.Run()
	duration := time.Since(start)

	out := RawOutput{
		Status:   StatusCompleted,
		Duration: duration,
	}
	out.Stdout, out.StdoutTruncated = truncateOutput(stdoutBuf.String(), t.cfg.MaxOutputBytes)
	out.Stderr, out.StderrTruncated = truncateOutput(stderrBuf.String(), t.cfg.MaxOutputBytes)

	if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
		out.Status = StatusTimedOut
		out.ExitCode = -1
		out.Detail = fmt.Sprintf("timed out: no response within %s", t.cfg.Timeout)
		return out
	}

	// A canceled parent context (SIGINT while a probe is in flight) kills the
	// target the same way a timeout does; report it as an aborted exchange,
	// not a launch failure.
	if execCtx.Err() != nil {
		out.Status = StatusTimedOut
		out.ExitCode = -1
		out.Detail = fmt.Sprintf("exchange interrupted: %v", context.Cause(execCtx))
		return out
	}

	if runErr == nil {
		return out
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return out
	}

	out.Status = StatusSpawnFailed
	out.ExitCode = -1
	out.Detail = runErr.Error()
	return out
}

func truncateOutput(text string, maxBytes int) (string, bool) {
	if len(text) <= maxBytes {
		return text, false
	}
	return text[:maxBytes] + "\n[output truncated]", true
}
