package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/chatbridge/mcpcheck/internal/telemetry"
)

// Probe pairs one transport exchange with one decode. A probe call is a
// single deterministic attempt: no retries happen at this layer.
type Probe struct {
	target    string
	transport *Transport
	logger    *slog.Logger
}

func NewProbe(target string, transport *Transport, logger *slog.Logger) *Probe {
	if logger == nil {
		logger = slog.Default()
	}
	return &Probe{target: target, transport: transport, logger: logger}
}

// Run performs one request/response exchange against a fresh process instance
// and classifies the result.
func (p *Probe) Run(ctx context.Context, req Request) Outcome {
	traceID := uuid.New().String()

	line, err := EncodeRequest(req)
	if err != nil {
		return p.finish(req, traceID, TransportFailure(err.Error()), 0)
	}

	raw := p.transport.Exchange(ctx, p.target, line)

	switch raw.Status {
	case StatusSpawnFailed:
		return p.finish(req, traceID, TransportFailure(fmt.Sprintf("spawn failed: %s", raw.Detail)), raw.Duration)
	case StatusTimedOut:
		telemetry.IncTransportTimeout()
		return p.finish(req, traceID, TransportFailure(raw.Detail), raw.Duration)
	}

	resp, decodeErr := DecodeResponse(raw.Stdout)
	if decodeErr != nil {
		telemetry.IncDecodeFailure()
		var de *DecodeError
		if errors.As(decodeErr, &de) {
			return p.finish(req, traceID, DecodeFailure(de.Reason, de.Raw), raw.Duration)
		}
		return p.finish(req, traceID, DecodeFailure(decodeErr.Error(), raw.Stdout), raw.Duration)
	}

	return p.finish(req, traceID, Decoded(resp), raw.Duration)
}

func (p *Probe) finish(req Request, traceID string, outcome Outcome, duration time.Duration) Outcome {
	telemetry.IncProbeOutcome(req.Method, string(outcome.Kind))
	telemetry.ObserveProbeDuration(req.Method, duration)
	p.logger.Debug("probe finished",
		"trace_id", traceID,
		"method", req.Method,
		"outcome", string(outcome.Kind),
		"duration_ms", duration.Milliseconds(),
	)
	return outcome
}
