package conformance

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/chatbridge/mcpcheck/internal/harness"
)

// ToolSchemasCase is the strict-profile extra case: every tool advertised by
// tools/list must declare an inputSchema that compiles as a JSON Schema. It
// appends after the five fixed cases so their count and order stay stable.
func ToolSchemasCase() Case {
	return Case{
		Name:    "Tool Schemas",
		Request: harness.NewRequest(6, "tools/list", nil),
		Assert:  assertToolSchemas,
	}
}

func assertToolSchemas(o harness.Outcome) CheckResult {
	resp, fail := requireSuccess(o)
	if fail != nil {
		return *fail
	}
	rawTools, ok := resp.ResultField("tools")
	if !ok {
		return CheckResult{Detail: fmt.Sprintf("result missing tools: %s", resp.Raw)}
	}
	list, ok := rawTools.([]any)
	if !ok {
		return CheckResult{Detail: fmt.Sprintf("tools is not a list: %s", resp.Raw)}
	}

	var bad []string
	for _, entry := range list {
		tool, ok := entry.(map[string]any)
		if !ok {
			return CheckResult{Detail: fmt.Sprintf("tool entry is not an object: %s", resp.Raw)}
		}
		name, _ := tool["name"].(string)
		if name == "" {
			name = "(unnamed)"
		}
		schema, ok := tool["inputSchema"]
		if !ok {
			bad = append(bad, fmt.Sprintf("%s: missing inputSchema", name))
			continue
		}
		if err := compileSchema(schema); err != nil {
			bad = append(bad, fmt.Sprintf("%s: %v", name, err))
		}
	}
	if len(bad) > 0 {
		return CheckResult{Detail: fmt.Sprintf("invalid tool schemas: %s", strings.Join(bad, "; "))}
	}
	return CheckResult{Passed: true, Detail: fmt.Sprintf("validated %d tool schemas", len(list))}
}

func compileSchema(schema any) error {
	b, err := json.Marshal(schema)
	if err != nil {
		return err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("inputSchema.json", strings.NewReader(string(b))); err != nil {
		return err
	}
	if _, err := c.Compile("inputSchema.json"); err != nil {
		return err
	}
	return nil
}
