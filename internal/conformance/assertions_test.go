package conformance

import (
	"strings"
	"testing"

	"github.com/chatbridge/mcpcheck/internal/harness"
)

func successOutcome(result map[string]any) harness.Outcome {
	return harness.Decoded(&harness.Response{Result: result, Raw: "{...}"})
}

func errorOutcome(code int, message string) harness.Outcome {
	return harness.Decoded(&harness.Response{Err: &harness.RPCError{Code: code, Message: message}, Raw: "{...}"})
}

func caseByName(t *testing.T, name string) Case {
	t.Helper()
	for _, c := range DefaultCases(nil) {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("no case named %q", name)
	return Case{}
}

func TestDefaultCasesOrderAndRequests(t *testing.T) {
	cases := DefaultCases(nil)
	if len(cases) != 5 {
		t.Fatalf("expected 5 fixed cases, got %d", len(cases))
	}
	wantMethods := []string{"initialize", "tools/list", "tools/call", "invalid_method", "tools/call"}
	for i, want := range wantMethods {
		if cases[i].Request.Method != want {
			t.Fatalf("case %d: expected method %s, got %s", i, want, cases[i].Request.Method)
		}
		if cases[i].Request.JSONRPC != "2.0" {
			t.Fatalf("case %d: expected jsonrpc 2.0", i)
		}
	}
	if name := cases[2].Request.Params["name"]; name != "list_sources" {
		t.Fatalf("expected list_sources call, got %v", name)
	}
	if name := cases[4].Request.Params["name"]; name != "invalid_tool" {
		t.Fatalf("expected invalid_tool call, got %v", name)
	}
}

func TestInitializePassesWithProtocolVersion(t *testing.T) {
	c := caseByName(t, "Initialize")
	res := c.Assert(successOutcome(map[string]any{"protocolVersion": "2024-11-05"}))
	if !res.Passed {
		t.Fatalf("expected pass, detail: %s", res.Detail)
	}
	if !strings.Contains(res.Detail, "2024-11-05") {
		t.Fatalf("expected detail to show protocol version, got %q", res.Detail)
	}
}

func TestInitializeFailsWithoutProtocolVersion(t *testing.T) {
	c := caseByName(t, "Initialize")
	if res := c.Assert(successOutcome(map[string]any{"capabilities": map[string]any{}})); res.Passed {
		t.Fatal("expected failure when protocolVersion is missing")
	}
}

func TestInitializeFailsOnErrorResponse(t *testing.T) {
	c := caseByName(t, "Initialize")
	if res := c.Assert(errorOutcome(-32600, "bad request")); res.Passed {
		t.Fatal("expected failure on error response")
	}
}

func toolsResult(names ...string) map[string]any {
	tools := make([]any, 0, len(names))
	for _, n := range names {
		tools = append(tools, map[string]any{"name": n})
	}
	return map[string]any{"tools": tools}
}

func TestListToolsPassesOnSuperset(t *testing.T) {
	c := caseByName(t, "List Tools")
	res := c.Assert(successOutcome(toolsResult("list_sources", "list_chats", "get_messages", "extra_tool")))
	if !res.Passed {
		t.Fatalf("expected pass, detail: %s", res.Detail)
	}
	if !strings.Contains(res.Detail, "extra_tool") {
		t.Fatalf("expected found tools listed, got %q", res.Detail)
	}
}

func TestListToolsFailsOnMissingRequiredTool(t *testing.T) {
	c := caseByName(t, "List Tools")
	res := c.Assert(successOutcome(toolsResult("list_sources")))
	if res.Passed {
		t.Fatal("expected failure when required tools are missing")
	}
	for _, missing := range []string{"list_chats", "get_messages"} {
		if !strings.Contains(res.Detail, missing) {
			t.Fatalf("expected %s named in detail, got %q", missing, res.Detail)
		}
	}
}

func TestListToolsFailsOnUnnamedEntry(t *testing.T) {
	c := caseByName(t, "List Tools")
	res := c.Assert(successOutcome(map[string]any{"tools": []any{map[string]any{"description": "no name"}}}))
	if res.Passed {
		t.Fatal("expected failure for tool entry without name")
	}
}

func TestListToolsHonorsCustomRequiredSet(t *testing.T) {
	cases := DefaultCases([]string{"ping"})
	res := cases[1].Assert(successOutcome(toolsResult("ping")))
	if !res.Passed {
		t.Fatalf("expected pass with custom required set, detail: %s", res.Detail)
	}
}

func TestCallToolPassesOnContentField(t *testing.T) {
	c := caseByName(t, "List Sources Tool")
	if res := c.Assert(successOutcome(map[string]any{"content": []any{}})); !res.Passed {
		t.Fatalf("expected pass, detail: %s", res.Detail)
	}
}

func TestCallToolFailsWithoutContentField(t *testing.T) {
	c := caseByName(t, "List Sources Tool")
	if res := c.Assert(successOutcome(map[string]any{"data": "x"})); res.Passed {
		t.Fatal("expected failure without content field")
	}
}

func TestInvalidMethodRequiresStructuredError(t *testing.T) {
	c := caseByName(t, "Invalid Method Error")
	res := c.Assert(errorOutcome(-32601, "Method not found"))
	if !res.Passed {
		t.Fatalf("expected pass, detail: %s", res.Detail)
	}
	if !strings.Contains(res.Detail, "-32601") {
		t.Fatalf("expected error code in detail, got %q", res.Detail)
	}
	if res := c.Assert(successOutcome(map[string]any{})); res.Passed {
		t.Fatal("silent success must fail the unknown-method case")
	}
}

func TestInvalidToolRequiresStructuredError(t *testing.T) {
	c := caseByName(t, "Invalid Tool Error")
	if res := c.Assert(errorOutcome(-32602, "Unknown tool")); !res.Passed {
		t.Fatalf("expected pass, detail: %s", res.Detail)
	}
	if res := c.Assert(successOutcome(map[string]any{"content": []any{}})); res.Passed {
		t.Fatal("silent success must fail the unknown-tool case")
	}
}

func TestTransportAndDecodeFailuresFailEveryCase(t *testing.T) {
	outcomes := map[string]harness.Outcome{
		"transport": harness.TransportFailure("spawn failed: no such file"),
		"decode":    harness.DecodeFailure("invalid response", "garbage"),
	}
	for label, outcome := range outcomes {
		for _, c := range DefaultCases(nil) {
			res := c.Assert(outcome)
			if res.Passed {
				t.Fatalf("%s outcome should fail case %q", label, c.Name)
			}
			if res.Detail == "" {
				t.Fatalf("%s outcome should carry detail for case %q", label, c.Name)
			}
		}
	}
}

func TestDecodeFailureDetailPreservesRawText(t *testing.T) {
	c := caseByName(t, "Initialize")
	res := c.Assert(harness.DecodeFailure("invalid response", "panic: boom"))
	if !strings.Contains(res.Detail, "panic: boom") {
		t.Fatalf("expected raw text in detail, got %q", res.Detail)
	}
}
