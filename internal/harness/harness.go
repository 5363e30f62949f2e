package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/scenariotools/internal/store"
	"github.com/roach88/scenariotools/internal/testutil"
	"github.com/roach88/scenariotools/internal/trace"
	"github.com/roach88/scenariotools/internal/tst"
)

// Harness runs scenarios against a registry.
type Harness struct {
	registry *Registry
	store    *store.Store
	runIDs   RunIDGenerator
	logger   *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) { h.logger = logger }
}

// WithRunIDGenerator sets the generator used for scenarios without a run_id.
func WithRunIDGenerator(gen RunIDGenerator) Option {
	return func(h *Harness) { h.runIDs = gen }
}

// WithStore records every run and its calls in st.
func WithStore(st *store.Store) Option {
	return func(h *Harness) { h.store = st }
}

// New creates a harness for reg.
func New(reg *Registry, opts ...Option) *Harness {
	h := &Harness{
		registry: reg,
		runIDs:   UUIDv7Generator{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario with a one-off harness.
func Run(ctx context.Context, s *Scenario, reg *Registry, opts ...Option) (*Result, error) {
	return New(reg, opts...).Run(ctx, s)
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Check every name the scenario uses against the registry
//  2. Build the root context: scenario values, then fixtures
//  3. Walk the steps depth first, recording one trace event per call
//  4. Stop at the first failing call
//  5. Compare the outcome with expect_error and evaluate assertions
//  6. Record the run in the store, if one is configured
//
// Scenario failures are reported in the Result. The returned error is for
// runs that could not be carried out at all: unknown names, undecodable
// values, or store failures.
func (h *Harness) Run(ctx context.Context, s *Scenario) (*Result, error) {
	if err := h.registry.Check(s); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	root, err := h.registry.NewContext(s.Context)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	runID := s.RunID
	if runID == "" {
		runID = h.runIDs.Generate()
	}
	result := NewResult(s.Name, runID)
	logger := h.logger.With("scenario", s.Name, "run_id", runID)

	w := &walker{
		registry: h.registry,
		seq:      testutil.NewSequence(),
		logger:   logger,
		result:   result,
	}
	runErr := w.walk(ctx, root, s.Steps, 0)
	if runErr != nil {
		result.Error = runErr.Error()
	}

	switch {
	case s.ExpectError == "" && runErr != nil:
		result.AddError(fmt.Sprintf("unexpected error: %v", runErr))
	case s.ExpectError != "" && runErr == nil:
		result.AddError(fmt.Sprintf("expected error %q, run succeeded", s.ExpectError))
	case s.ExpectError != "" && !errorMatches(runErr, s.ExpectError):
		result.AddError(fmt.Sprintf("expected error %q, got: %v", s.ExpectError, runErr))
	}

	for _, msg := range EvaluateAssertions(result, s.Assertions) {
		result.AddError(msg)
	}

	logger.Info("scenario finished",
		"pass", result.Pass,
		"calls", len(result.Trace),
		"failures", len(result.Errors),
	)

	if h.store != nil {
		if err := h.record(ctx, result); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
		}
	}
	return result, nil
}

// errorMatches reports whether err carries the toolkit code want, or
// mentions want in its message.
func errorMatches(err error, want string) bool {
	if string(tst.CodeOf(err)) == want {
		return true
	}
	return strings.Contains(err.Error(), want)
}

// record writes the run and its calls to the store.
func (h *Harness) record(ctx context.Context, result *Result) error {
	hash, err := trace.ScenarioHash(result.Snapshot())
	if err != nil {
		return err
	}
	run := store.Run{
		ID:           result.RunID,
		Scenario:     result.Scenario,
		ScenarioHash: hash,
		Pass:         result.Pass,
		Error:        result.Error,
		Failures:     result.Errors,
		Calls:        len(result.Trace),
	}
	if err := h.store.WriteRun(ctx, run); err != nil {
		return fmt.Errorf("failed to write run: %w", err)
	}
	for _, e := range result.Trace {
		if err := h.store.WriteCall(ctx, result.RunID, e); err != nil {
			return fmt.Errorf("failed to write call %d: %w", e.Seq, err)
		}
	}
	return nil
}

// walker runs the step tree of one scenario.
type walker struct {
	registry *Registry
	seq      *testutil.Sequence
	logger   *slog.Logger
	result   *Result
}

func (w *walker) walk(ctx context.Context, c *tst.Context, steps []Step, depth int) error {
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.step(ctx, c, step, depth); err != nil {
			return err
		}
	}
	return nil
}

// step runs one call and then its nested steps, which see the call's
// results ahead of its context.
func (w *walker) step(ctx context.Context, c *tst.Context, step Step, depth int) error {
	fn, _ := w.registry.Lookup(step.Call) // names are checked before the walk
	values, err := w.registry.DecodeAll(step.With)
	if err != nil {
		return fmt.Errorf("call %s: %w", step.Call, err)
	}
	stepCtx := c.With(values...)

	event := trace.Event{
		Seq:     w.seq.Next(),
		Call:    step.Call,
		Depth:   depth,
		Params:  []trace.Param{},
		Results: []trace.Value{},
	}

	results, err := w.invoke(fn, stepCtx, &event)
	w.result.Trace = append(w.result.Trace, event)
	if err != nil {
		w.logger.Info("call failed", "seq", event.Seq, "call", step.Call, "error", err)
		return fmt.Errorf("call %s (seq %d): %w", step.Call, event.Seq, err)
	}
	w.logger.Debug("call completed",
		"seq", event.Seq,
		"call", step.Call,
		"depth", depth,
		"context", stepCtx.String(),
	)

	return w.walk(ctx, stepCtx.With(results...), step.Steps, depth+1)
}

// invoke binds and calls fn, filling in the event's params and results.
func (w *walker) invoke(fn any, c *tst.Context, event *trace.Event) ([]any, error) {
	b, err := tst.Bind(fn, c)
	if err != nil {
		event.Error = err.Error()
		return nil, err
	}
	for _, sel := range b.Selections() {
		event.Params = append(event.Params, trace.Param{
			Type:     sel.TargetName(),
			Index:    sel.Index,
			Priority: sel.Priority.String(),
		})
	}

	results, err := b.Invoke()
	for _, r := range results {
		event.Results = append(event.Results, trace.Describe(r))
	}
	if err != nil {
		event.Error = err.Error()
		return nil, err
	}
	return results, nil
}
