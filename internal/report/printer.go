// Package report renders the colorized conformance report.
package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/chatbridge/mcpcheck/internal/conformance"
)

// Printer writes the human-facing report. It implements
// conformance.Reporter; logging goes to stderr so the printer owns stdout.
type Printer struct {
	out    io.Writer
	yellow *color.Color
	green  *color.Color
	red    *color.Color
}

func NewPrinter(out io.Writer) *Printer {
	return &Printer{
		out:    out,
		yellow: color.New(color.FgYellow),
		green:  color.New(color.FgGreen),
		red:    color.New(color.FgRed),
	}
}

func (p *Printer) BuildStarted(command string) {
	p.yellow.Fprintf(p.out, "Building target: %s\n", command)
}

func (p *Printer) BuildSucceeded() {
	p.green.Fprintln(p.out, "Target built successfully")
}

func (p *Printer) BuildFailed(stderr string) {
	p.red.Fprintln(p.out, "Failed to build target")
	if stderr != "" {
		fmt.Fprintln(p.out, stderr)
	}
}

func (p *Printer) SuiteStarted(total int) {
	p.yellow.Fprintln(p.out, "=== Running MCP Server Conformance Tests ===")
}

func (p *Printer) CaseStarted(name string) {
	fmt.Fprintln(p.out)
	p.yellow.Fprintf(p.out, "Test: %s\n", name)
}

func (p *Printer) CaseFinished(r conformance.Result) {
	if r.Passed {
		p.green.Fprintln(p.out, "✓ PASSED")
	} else {
		p.red.Fprintln(p.out, "✗ FAILED")
	}
	if r.Detail != "" {
		fmt.Fprintf(p.out, "  %s\n", r.Detail)
	}
}

func (p *Printer) SuiteFinished(s conformance.Summary) {
	fmt.Fprintln(p.out)
	p.yellow.Fprintln(p.out, "=== Test Summary ===")
	for _, r := range s.Results {
		fmt.Fprintf(p.out, "  %s: ", r.Name)
		if r.Passed {
			p.green.Fprintln(p.out, "PASSED")
		} else {
			p.red.Fprintln(p.out, "FAILED")
		}
	}
	fmt.Fprintln(p.out)
	p.yellow.Fprintf(p.out, "Total: %d/%d tests passed\n", s.Passed, s.Total)
	if s.Passed == s.Total {
		p.green.Fprintln(p.out, "All tests passed!")
	} else {
		p.red.Fprintln(p.out, "Some tests failed")
	}
}
