package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/scenariotools/internal/trace"
)

// ErrRunNotFound is returned by ReadRun for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// ReadRun returns the run recorded under id.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, scenario, scenario_hash, pass, error, failures, calls
		FROM runs
		WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}
	return run, err
}

// ListRuns returns the runs of a scenario, or of every scenario when
// scenario is empty, ordered by ID.
//
// Returns an empty slice (not nil) if nothing was recorded.
func (s *Store) ListRuns(ctx context.Context, scenario string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, scenario, scenario_hash, pass, error, failures, calls
		FROM runs
		WHERE ? = '' OR scenario = ?
		ORDER BY id COLLATE BINARY ASC
	`, scenario, scenario)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadCalls returns the calls of a run ordered by seq.
//
// Returns an empty slice (not nil) if the run has no calls.
func (s *Store) ReadCalls(ctx context.Context, runID string) ([]trace.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, call, depth, params, results, error
		FROM calls
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query calls: %w", err)
	}
	defer rows.Close()

	events := []trace.Event{}
	for rows.Next() {
		e, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calls: %w", err)
	}
	return events, nil
}

// CountCalls returns how many recorded calls, across all runs, were made to
// the named callable.
func (s *Store) CountCalls(ctx context.Context, call string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM calls WHERE call = ?`, call).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count calls: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run          Run
		failuresJSON string
	)
	if err := row.Scan(
		&run.ID,
		&run.Scenario,
		&run.ScenarioHash,
		&run.Pass,
		&run.Error,
		&failuresJSON,
		&run.Calls,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	if err := json.Unmarshal([]byte(failuresJSON), &run.Failures); err != nil {
		return Run{}, fmt.Errorf("run %s: failures: %w", run.ID, err)
	}
	return run, nil
}

func scanCall(row scanner) (trace.Event, error) {
	var (
		e           trace.Event
		paramsJSON  string
		resultsJSON string
	)
	if err := row.Scan(&e.Seq, &e.Call, &e.Depth, &paramsJSON, &resultsJSON, &e.Error); err != nil {
		return trace.Event{}, fmt.Errorf("scan call: %w", err)
	}

	e.Params = []trace.Param{}
	if err := json.Unmarshal([]byte(paramsJSON), &e.Params); err != nil {
		return trace.Event{}, fmt.Errorf("call %d: params: %w", e.Seq, err)
	}

	results, err := trace.Unmarshal([]byte(resultsJSON))
	if err != nil {
		return trace.Event{}, fmt.Errorf("call %d: results: %w", e.Seq, err)
	}
	arr, ok := results.(trace.Array)
	if !ok {
		return trace.Event{}, fmt.Errorf("call %d: results are not an array", e.Seq)
	}
	e.Results = []trace.Value(arr)
	return e, nil
}
