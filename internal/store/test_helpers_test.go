package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/scenariotools/internal/trace"
)

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a passing run with minimal fields.
func createTestRun(id, scenario string) Run {
	return Run{
		ID:           id,
		Scenario:     scenario,
		ScenarioHash: "hash-" + scenario,
		Pass:         true,
		Failures:     []string{},
	}
}

// createTestEvent creates a call event binding one int parameter.
func createTestEvent(seq int64, call string) trace.Event {
	return trace.Event{
		Seq:   seq,
		Call:  call,
		Depth: 0,
		Params: []trace.Param{
			{Type: "int", Index: 0, Priority: "exact"},
		},
		Results: []trace.Value{trace.Object{"n": trace.Int(seq)}},
	}
}
