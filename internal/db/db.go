// Package db provides optional PostgreSQL persistence for suite run history:
// one row per run plus one row per case result.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/chatbridge/mcpcheck/internal/conformance"
)

// DB wraps the underlying *sql.DB and provides typed query methods.
type DB struct {
	conn *sql.DB
}

// New opens a PostgreSQL connection, verifies connectivity, and applies
// migrations.
func New(databaseURL string) (*DB, error) {
	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	conn.SetMaxOpenConns(5)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	if err := applyMigrations(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("db migrate: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the database connection pool.
func (d *DB) Close() error {
	return d.conn.Close()
}

// SuiteRun is one persisted suite execution.
type SuiteRun struct {
	RunID      string    `json:"run_id"`
	Target     string    `json:"target"`
	Profile    string    `json:"profile"`
	Passed     int       `json:"passed"`
	Total      int       `json:"total"`
	ExitCode   int       `json:"exit_code"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// CaseRecord is one persisted case result within a run.
type CaseRecord struct {
	RunID  string `json:"run_id"`
	Seq    int    `json:"seq"`
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RecordRun implements conformance.RecordSink: the run row and its case rows
// are written in one transaction.
func (d *DB) RecordRun(ctx context.Context, s conformance.Summary) error {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record run: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO suite_runs (run_id, target, profile, passed, total, exit_code, started_at, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.RunID, s.Target, s.Profile, s.Passed, s.Total, s.ExitCode(), s.StartedAt, s.FinishedAt,
	); err != nil {
		return fmt.Errorf("insert suite run: %w", err)
	}

	for i, r := range s.Results {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO case_results (run_id, seq, name, passed, detail) VALUES ($1, $2, $3, $4, $5)`,
			s.RunID, i, r.Name, r.Passed, r.Detail,
		); err != nil {
			return fmt.Errorf("insert case result %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// ListSuiteRuns returns recent runs, most recent first.
func (d *DB) ListSuiteRuns(ctx context.Context, limit int) ([]*SuiteRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.conn.QueryContext(ctx,
		`SELECT run_id, target, profile, passed, total, exit_code, started_at, finished_at
		 FROM suite_runs ORDER BY started_at DESC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list suite runs: %w", err)
	}
	defer rows.Close()

	var runs []*SuiteRun
	for rows.Next() {
		r := &SuiteRun{}
		if err := rows.Scan(&r.RunID, &r.Target, &r.Profile, &r.Passed, &r.Total, &r.ExitCode, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan suite run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ListCaseResults returns case rows for a run in execution order.
func (d *DB) ListCaseResults(ctx context.Context, runID string) ([]*CaseRecord, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT run_id, seq, name, passed, detail FROM case_results WHERE run_id = $1 ORDER BY seq`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list case results: %w", err)
	}
	defer rows.Close()

	var records []*CaseRecord
	for rows.Next() {
		r := &CaseRecord{}
		if err := rows.Scan(&r.RunID, &r.Seq, &r.Name, &r.Passed, &r.Detail); err != nil {
			return nil, fmt.Errorf("scan case result: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
