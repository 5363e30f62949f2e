package harness

import "github.com/roach88/scenariotools/internal/trace"

// Result is the outcome of running a scenario.
type Result struct {
	// Scenario is the scenario name.
	Scenario string `json:"scenario"`

	// RunID identifies this run in the store.
	RunID string `json:"run_id"`

	// Pass is true when the run ended as expected and every assertion held.
	Pass bool `json:"pass"`

	// Trace holds every call made, in seq order.
	Trace []trace.Event `json:"trace"`

	// Errors contains assertion and expectation failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Error is the error that stopped the run, if any. A run stopped by an
	// error can still pass when the scenario expects it.
	Error string `json:"error,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(scenario, runID string) *Result {
	return &Result{
		Scenario: scenario,
		RunID:    runID,
		Pass:     true,
		Trace:    []trace.Event{},
		Errors:   []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Snapshot returns the golden form of the run.
func (r *Result) Snapshot() trace.Snapshot {
	return trace.Snapshot{
		Scenario: r.Scenario,
		Events:   r.Trace,
		Error:    r.Error,
	}
}
