// Package harness drives single-exchange JSON-RPC probes against a target
// executable over stdin/stdout. Each probe spawns a fresh process, writes one
// newline-terminated request, and classifies the outcome.
package harness

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Request is a line-delimited JSON-RPC 2.0 request. IDs need not be unique
// across probes: every exchange runs against its own process instance.
type Request struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      int            `json:"id"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params,omitempty"`
}

// NewRequest builds a request with the protocol version fixed to "2.0".
func NewRequest(id int, method string, params map[string]any) Request {
	return Request{JSONRPC: "2.0", ID: id, Method: method, Params: params}
}

// RPCError is the error member of a JSON-RPC error response.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Response is a decoded response line: exactly one of Result or Err is set.
// Raw keeps the original line for failure diagnostics.
type Response struct {
	Result any
	Err    *RPCError
	Raw    string
}

// IsError reports whether the response carried an error member.
func (r *Response) IsError() bool {
	return r.Err != nil
}

// ResultField looks up a top-level field of an object-shaped result.
func (r *Response) ResultField(name string) (any, bool) {
	obj, ok := r.Result.(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := obj[name]
	return v, ok
}

// DecodeError reports a response line that could not be interpreted. The raw
// offending text is preserved so failures can be diagnosed without a re-run.
type DecodeError struct {
	Reason string
	Raw    string
}

func (e *DecodeError) Error() string {
	if e.Raw == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Raw)
}

// ErrorCode implements the coded-error contract used across the harness.
func (e *DecodeError) ErrorCode() string {
	return "decode_failed"
}

// EncodeRequest serializes a request to its single-line wire form,
// newline-terminated.
func EncodeRequest(req Request) ([]byte, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return append(data, '\n'), nil
}

type rawResponse struct {
	Result json.RawMessage `json:"result"`
	Error  json.RawMessage `json:"error"`
}

// DecodeResponse decodes the first non-empty line of the captured stdout. A
// line holding neither a result nor an error member, or both, is rejected
// rather than guessed at.
func DecodeResponse(stdout string) (*Response, error) {
	line := firstNonEmptyLine(stdout)
	if line == "" {
		return nil, &DecodeError{Reason: "empty response", Raw: ""}
	}

	var raw rawResponse
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return nil, &DecodeError{Reason: "invalid response", Raw: line}
	}

	hasResult := len(raw.Result) > 0 && string(raw.Result) != "null"
	hasError := len(raw.Error) > 0 && string(raw.Error) != "null"

	switch {
	case hasResult && hasError:
		return nil, &DecodeError{Reason: "ambiguous response: both result and error present", Raw: line}
	case !hasResult && !hasError:
		return nil, &DecodeError{Reason: "response has neither result nor error", Raw: line}
	case hasError:
		var rpcErr RPCError
		if err := json.Unmarshal(raw.Error, &rpcErr); err != nil {
			return nil, &DecodeError{Reason: "malformed error member", Raw: line}
		}
		return &Response{Err: &rpcErr, Raw: line}, nil
	default:
		var result any
		if err := json.Unmarshal(raw.Result, &result); err != nil {
			return nil, &DecodeError{Reason: "malformed result member", Raw: line}
		}
		return &Response{Result: result, Raw: line}, nil
	}
}

func firstNonEmptyLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
