package harness

// OutcomeKind tags the closed set of probe results.
type OutcomeKind string

const (
	OutcomeDecoded        OutcomeKind = "decoded"
	OutcomeTransportError OutcomeKind = "transport_error"
	OutcomeDecodeError    OutcomeKind = "decode_error"
)

// Outcome is the result of one probe: either a decoded protocol response,
// a transport-level failure (spawn or timeout), or a decode failure with
// the offending raw text preserved.
type Outcome struct {
	Kind     OutcomeKind
	Response *Response // set iff Kind == OutcomeDecoded
	Reason   string    // set for transport and decode errors
	Raw      string    // offending stdout text for decode errors
}

func Decoded(resp *Response) Outcome {
	return Outcome{Kind: OutcomeDecoded, Response: resp}
}

func TransportFailure(reason string) Outcome {
	return Outcome{Kind: OutcomeTransportError, Reason: reason}
}

func DecodeFailure(reason, raw string) Outcome {
	return Outcome{Kind: OutcomeDecodeError, Reason: reason, Raw: raw}
}
