package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/chatbridge/mcpcheck/internal/conformance"
)

func TestRecordRunRoundTrip(t *testing.T) {
	databaseURL := os.Getenv("MCPCHECK_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("MCPCHECK_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	database, err := New(databaseURL)
	if err != nil {
		t.Fatalf("db connect: %v", err)
	}
	defer database.Close()

	now := time.Now().UTC().Truncate(time.Millisecond)
	summary := conformance.Summary{
		RunID:   uuid.New().String(),
		Target:  "/tmp/chat-mcp-server",
		Profile: "default",
		Results: []conformance.Result{
			{Name: "Initialize", Passed: true, Detail: "protocol version: 2024-11-05"},
			{Name: "List Tools", Passed: false, Detail: "missing required tools: list_chats"},
		},
		Passed:     1,
		Total:      2,
		StartedAt:  now,
		FinishedAt: now.Add(time.Second),
	}

	if err := database.RecordRun(ctx, summary); err != nil {
		t.Fatalf("record run: %v", err)
	}

	runs, err := database.ListSuiteRuns(ctx, 10)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	var found *SuiteRun
	for _, r := range runs {
		if r.RunID == summary.RunID {
			found = r
			break
		}
	}
	if found == nil {
		t.Fatalf("run %s not found in history", summary.RunID)
	}
	if found.Passed != 1 || found.Total != 2 || found.ExitCode != 1 {
		t.Fatalf("unexpected run row: %+v", found)
	}

	records, err := database.ListCaseResults(ctx, summary.RunID)
	if err != nil {
		t.Fatalf("list case results: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 case rows, got %d", len(records))
	}
	if records[0].Name != "Initialize" || !records[0].Passed {
		t.Fatalf("unexpected first case row: %+v", records[0])
	}
	if records[1].Name != "List Tools" || records[1].Passed {
		t.Fatalf("unexpected second case row: %+v", records[1])
	}
}
