package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/scenariotools/internal/trace"
)

// Run is the stored summary of one scenario run.
type Run struct {
	ID           string
	Scenario     string
	ScenarioHash string
	Pass         bool
	Error        string
	Failures     []string
	Calls        int
}

// WriteRun inserts a run record.
// Uses ON CONFLICT(id) DO NOTHING: a run ID already recorded is left as is.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	failures := run.Failures
	if failures == nil {
		failures = []string{}
	}
	failuresJSON, err := json.Marshal(failures)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, scenario, scenario_hash, pass, error, failures, calls)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Scenario,
		run.ScenarioHash,
		run.Pass,
		run.Error,
		string(failuresJSON),
		run.Calls,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteCall inserts one call of a run.
//
// The row ID is trace.CallID(runID, e). Params and results are stored as
// canonical JSON, so a call read back hashes to the same ID.
//
// Note: The run must exist (foreign key constraint).
func (s *Store) WriteCall(ctx context.Context, runID string, e trace.Event) error {
	id, err := trace.CallID(runID, e)
	if err != nil {
		return fmt.Errorf("write call: %w", err)
	}
	v := e.Value()
	paramsJSON, err := trace.MarshalCanonical(v["params"])
	if err != nil {
		return fmt.Errorf("write call: params: %w", err)
	}
	resultsJSON, err := trace.MarshalCanonical(v["results"])
	if err != nil {
		return fmt.Errorf("write call: results: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO calls
		(id, run_id, seq, call, depth, params, results, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		id,
		runID,
		e.Seq,
		e.Call,
		e.Depth,
		string(paramsJSON),
		string(resultsJSON),
		e.Error,
	)
	if err != nil {
		return fmt.Errorf("write call: %w", err)
	}
	return nil
}
