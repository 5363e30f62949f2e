package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/scenariotools/internal/store"
	"github.com/roach88/scenariotools/internal/trace"
)

// RunSummary is one stored run in trace output.
type RunSummary struct {
	ID           string   `json:"id"`
	Scenario     string   `json:"scenario"`
	ScenarioHash string   `json:"scenario_hash"`
	Pass         bool     `json:"pass"`
	Calls        int      `json:"calls"`
	Error        string   `json:"error,omitempty"`
	Failures     []string `json:"failures,omitempty"`
}

// RunTrace is a stored run with its calls.
type RunTrace struct {
	Run   RunSummary        `json:"run"`
	Calls []json.RawMessage `json:"calls"` // canonical JSON events
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	var scenario string

	cmd := &cobra.Command{
		Use:   "trace <db> [run-id]",
		Short: "Show runs recorded by run --db",
		Long: `Without a run ID, list the runs recorded in a database, optionally
limited to one scenario. With a run ID, show that run's calls in order,
indented by nesting depth.

Examples:
  tst trace runs.db
  tst trace runs.db --scenario margin_borrow_from_master
  tst trace runs.db 0199f3c2-... --format json`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) == 2 {
				runID = args[1]
			}
			return showTrace(cmd.Context(), rootOpts, args[0], runID, scenario, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&scenario, "scenario", "", "only list runs of this scenario")
	return cmd
}

func showTrace(ctx context.Context, opts *RootOptions, dbPath, runID, scenario string, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts, out, errOut)

	// Open would create a missing database.
	if _, err := os.Stat(dbPath); err != nil {
		formatter.Error(ErrCodeNotFound, fmt.Sprintf("database not found: %s", dbPath), nil)
		return WrapExitError(ExitCommandError, "database not found: "+dbPath, err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if runID == "" {
		return listStoredRuns(ctx, st, scenario, formatter, out)
	}
	return showStoredRun(ctx, st, runID, formatter, out)
}

func listStoredRuns(ctx context.Context, st *store.Store, scenario string, formatter *OutputFormatter, out io.Writer) error {
	runs, err := st.ListRuns(ctx, scenario)
	if err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}
	summaries := make([]RunSummary, len(runs))
	for i, r := range runs {
		summaries[i] = summarize(r)
	}

	if formatter.JSON() {
		return formatter.Success(summaries)
	}
	if len(summaries) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}
	marks := marksFor(out)
	for _, r := range summaries {
		mark := marks.Pass
		if !r.Pass {
			mark = marks.Fail
		}
		fmt.Fprintf(out, "%s %s  %s (%d calls)\n", mark, r.ID, r.Scenario, r.Calls)
	}
	return nil
}

func showStoredRun(ctx context.Context, st *store.Store, runID string, formatter *OutputFormatter, out io.Writer) error {
	run, err := st.ReadRun(ctx, runID)
	if errors.Is(err, store.ErrRunNotFound) {
		formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "run not found", err)
	}
	if err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}
	events, err := st.ReadCalls(ctx, runID)
	if err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read calls", err)
	}

	if formatter.JSON() {
		rt := RunTrace{Run: summarize(run), Calls: make([]json.RawMessage, len(events))}
		for i, e := range events {
			data, err := trace.MarshalCanonical(e.Value())
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to encode call", err)
			}
			rt.Calls[i] = data
		}
		return formatter.Success(rt)
	}

	fmt.Fprintf(out, "run %s  scenario %s  pass=%t\n", run.ID, run.Scenario, run.Pass)
	for _, e := range events {
		fmt.Fprintln(out, formatEvent(e))
	}
	if run.Error != "" {
		fmt.Fprintf(out, "error: %s\n", run.Error)
	}
	for _, f := range run.Failures {
		fmt.Fprintf(out, "failure: %s\n", f)
	}
	return nil
}

// formatEvent renders one call as "  [seq] <indent>call -> results".
func formatEvent(e trace.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  [%d] %s%s", e.Seq, strings.Repeat("  ", e.Depth), e.Call)
	if len(e.Results) > 0 {
		if data, err := trace.MarshalCanonical(trace.Array(e.Results)); err == nil {
			fmt.Fprintf(&b, " -> %s", data)
		}
	}
	if e.Error != "" {
		fmt.Fprintf(&b, " !! %s", e.Error)
	}
	return b.String()
}

func summarize(r store.Run) RunSummary {
	return RunSummary{
		ID:           r.ID,
		Scenario:     r.Scenario,
		ScenarioHash: r.ScenarioHash,
		Pass:         r.Pass,
		Calls:        r.Calls,
		Error:        r.Error,
		Failures:     r.Failures,
	}
}
