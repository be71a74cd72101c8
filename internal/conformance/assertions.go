package conformance

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chatbridge/mcpcheck/internal/harness"
)

// DefaultRequiredTools is the capability set a conforming chat MCP server
// must advertise in tools/list.
var DefaultRequiredTools = []string{"list_sources", "list_chats", "get_messages"}

// DefaultCases returns the five fixed conformance cases in declaration order.
// requiredTools defaults to DefaultRequiredTools when empty.
func DefaultCases(requiredTools []string) []Case {
	if len(requiredTools) == 0 {
		requiredTools = DefaultRequiredTools
	}
	return []Case{
		{
			Name:    "Initialize",
			Request: harness.NewRequest(1, "initialize", map[string]any{}),
			Assert:  assertInitialize,
		},
		{
			Name:    "List Tools",
			Request: harness.NewRequest(2, "tools/list", nil),
			Assert:  assertToolsList(requiredTools),
		},
		{
			Name:    "List Sources Tool",
			Request: harness.NewRequest(3, "tools/call", map[string]any{"name": "list_sources", "arguments": map[string]any{}}),
			Assert:  assertCallContent,
		},
		{
			Name:    "Invalid Method Error",
			Request: harness.NewRequest(4, "invalid_method", nil),
			Assert:  assertStructuredError,
		},
		{
			Name:    "Invalid Tool Error",
			Request: harness.NewRequest(5, "tools/call", map[string]any{"name": "invalid_tool", "arguments": map[string]any{}}),
			Assert:  assertStructuredError,
		},
	}
}

func assertInitialize(o harness.Outcome) CheckResult {
	resp, fail := requireSuccess(o)
	if fail != nil {
		return *fail
	}
	version, ok := resp.ResultField("protocolVersion")
	if !ok {
		return CheckResult{Detail: fmt.Sprintf("result missing protocolVersion: %s", resp.Raw)}
	}
	return CheckResult{Passed: true, Detail: fmt.Sprintf("protocol version: %v", version)}
}

func assertToolsList(required []string) Assertion {
	return func(o harness.Outcome) CheckResult {
		resp, fail := requireSuccess(o)
		if fail != nil {
			return *fail
		}
		names, err := toolNames(resp)
		if err != nil {
			return CheckResult{Detail: fmt.Sprintf("%s: %s", err, resp.Raw)}
		}

		var missing []string
		for _, want := range required {
			found := false
			for _, name := range names {
				if name == want {
					found = true
					break
				}
			}
			if !found {
				missing = append(missing, want)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			return CheckResult{Detail: fmt.Sprintf("missing required tools: %s (found: %s)", strings.Join(missing, ", "), strings.Join(names, ", "))}
		}
		return CheckResult{Passed: true, Detail: fmt.Sprintf("found tools: %s", strings.Join(names, ", "))}
	}
}

func assertCallContent(o harness.Outcome) CheckResult {
	resp, fail := requireSuccess(o)
	if fail != nil {
		return *fail
	}
	if _, ok := resp.ResultField("content"); !ok {
		return CheckResult{Detail: fmt.Sprintf("result missing content: %s", resp.Raw)}
	}
	return CheckResult{Passed: true, Detail: "response has content field"}
}

func assertStructuredError(o harness.Outcome) CheckResult {
	if o.Kind != harness.OutcomeDecoded {
		return CheckResult{Detail: describeOutcome(o)}
	}
	if !o.Response.IsError() {
		return CheckResult{Detail: fmt.Sprintf("expected error response, got: %s", o.Response.Raw)}
	}
	return CheckResult{Passed: true, Detail: fmt.Sprintf("error code: %d, message: %s", o.Response.Err.Code, o.Response.Err.Message)}
}

// requireSuccess narrows an outcome to a decoded success response. Transport
// and decode failures are never treated as inconclusive: they fail the case.
func requireSuccess(o harness.Outcome) (*harness.Response, *CheckResult) {
	if o.Kind != harness.OutcomeDecoded {
		return nil, &CheckResult{Detail: describeOutcome(o)}
	}
	if o.Response.IsError() {
		return nil, &CheckResult{Detail: fmt.Sprintf("expected success, got error response: %s", o.Response.Raw)}
	}
	return o.Response, nil
}

func toolNames(resp *harness.Response) ([]string, error) {
	rawTools, ok := resp.ResultField("tools")
	if !ok {
		return nil, fmt.Errorf("result missing tools")
	}
	list, ok := rawTools.([]any)
	if !ok {
		return nil, fmt.Errorf("tools is not a list")
	}
	names := make([]string, 0, len(list))
	for _, entry := range list {
		tool, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("tool entry is not an object")
		}
		name, ok := tool["name"].(string)
		if !ok {
			return nil, fmt.Errorf("tool entry missing name")
		}
		names = append(names, name)
	}
	return names, nil
}

func describeOutcome(o harness.Outcome) string {
	switch o.Kind {
	case harness.OutcomeTransportError:
		return fmt.Sprintf("transport error: %s", o.Reason)
	case harness.OutcomeDecodeError:
		if o.Raw == "" {
			return fmt.Sprintf("decode error: %s", o.Reason)
		}
		return fmt.Sprintf("decode error: %s (raw: %s)", o.Reason, o.Raw)
	default:
		return fmt.Sprintf("response: %s", o.Response.Raw)
	}
}
