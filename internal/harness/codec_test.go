package harness

import (
	"errors"
	"strings"
	"testing"
)

func TestEncodeRequestWireShape(t *testing.T) {
	line, err := EncodeRequest(NewRequest(1, "initialize", map[string]any{}))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	s := string(line)
	if !strings.HasSuffix(s, "\n") {
		t.Fatalf("expected newline-terminated line, got %q", s)
	}
	if strings.Count(s, "\n") != 1 {
		t.Fatalf("expected single-line output, got %q", s)
	}
	for _, want := range []string{`"jsonrpc":"2.0"`, `"id":1`, `"method":"initialize"`} {
		if !strings.Contains(s, want) {
			t.Fatalf("expected %s in %q", want, s)
		}
	}
}

func TestEncodeRequestOmitsNilParams(t *testing.T) {
	line, err := EncodeRequest(NewRequest(2, "tools/list", nil))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if strings.Contains(string(line), "params") {
		t.Fatalf("expected params omitted, got %q", line)
	}
}

func TestDecodeResponseSuccess(t *testing.T) {
	resp, err := DecodeResponse(`{"jsonrpc":"2.0","id":1,"result":{"protocolVersion":"2024-11-05"}}` + "\n")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.IsError() {
		t.Fatal("expected success response")
	}
	v, ok := resp.ResultField("protocolVersion")
	if !ok || v != "2024-11-05" {
		t.Fatalf("unexpected protocolVersion: %v (present=%v)", v, ok)
	}
}

func TestDecodeResponseError(t *testing.T) {
	resp, err := DecodeResponse(`{"jsonrpc":"2.0","id":4,"error":{"code":-32601,"message":"Method not found"}}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.IsError() {
		t.Fatal("expected error response")
	}
	if resp.Err.Code != -32601 || resp.Err.Message != "Method not found" {
		t.Fatalf("unexpected error member: %+v", resp.Err)
	}
}

func TestDecodeResponseSkipsLeadingBlankLines(t *testing.T) {
	resp, err := DecodeResponse("\n   \n" + `{"jsonrpc":"2.0","id":1,"result":{}}` + "\n")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.IsError() {
		t.Fatal("expected success response")
	}
}

func TestDecodeResponseEmpty(t *testing.T) {
	_, err := DecodeResponse("")
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if de.Reason != "empty response" {
		t.Fatalf("unexpected reason: %q", de.Reason)
	}
	if de.Raw != "" {
		t.Fatalf("expected empty raw text, got %q", de.Raw)
	}
}

func TestDecodeResponseInvalidJSONPreservesRaw(t *testing.T) {
	_, err := DecodeResponse("not json at all\n")
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if de.Reason != "invalid response" {
		t.Fatalf("unexpected reason: %q", de.Reason)
	}
	if de.Raw != "not json at all" {
		t.Fatalf("expected offending line preserved, got %q", de.Raw)
	}
}

func TestDecodeResponseNeitherResultNorError(t *testing.T) {
	_, err := DecodeResponse(`{"jsonrpc":"2.0","id":1}`)
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if !strings.Contains(de.Reason, "neither result nor error") {
		t.Fatalf("unexpected reason: %q", de.Reason)
	}
}

func TestDecodeResponseBothResultAndError(t *testing.T) {
	_, err := DecodeResponse(`{"id":1,"result":{},"error":{"code":1,"message":"x"}}`)
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if !strings.Contains(de.Reason, "ambiguous") {
		t.Fatalf("unexpected reason: %q", de.Reason)
	}
}

func TestDecodeResponseNonObjectResult(t *testing.T) {
	resp, err := DecodeResponse(`{"id":1,"result":"plain string"}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := resp.ResultField("anything"); ok {
		t.Fatal("field lookup on non-object result should report absence")
	}
}
