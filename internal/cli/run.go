package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/scenariotools/internal/harness"
	"github.com/roach88/scenariotools/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Filter string // scenario filter (glob pattern)
	Update bool   // regenerate golden files
	Golden string // golden file directory
	DB     string // optional SQLite database recording every run
}

// ScenarioResult is the outcome of one scenario file.
type ScenarioResult struct {
	File   string   `json:"file"`
	Name   string   `json:"name"`
	RunID  string   `json:"run_id,omitempty"`
	Pass   bool     `json:"pass"`
	Calls  int      `json:"calls"`
	Golden string   `json:"golden,omitempty"` // "match", "mismatch", "updated" or "missing"
	Errors []string `json:"errors,omitempty"`
}

// RunResult summarizes a run command.
type RunResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenarios-dir>",
		Short: "Run scenarios and compare traces with golden files",
		Long: `Run every scenario file in a directory and compare each trace with
its golden file. Golden files default to a "golden" directory next to the
scenarios directory; scenarios without a golden file are only checked
against their own expectations and assertions.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, unreadable database, etc.)

Examples:
  tst run ./testdata/scenarios
  tst run ./testdata/scenarios --filter "margin_*"
  tst run ./testdata/scenarios --update
  tst run ./testdata/scenarios --db runs.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(cmd.Context(), opts, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Golden, "golden", "", "golden file directory (default <scenarios-dir>/../golden)")
	cmd.Flags().StringVar(&opts.DB, "db", "", "record runs in this SQLite database")

	return cmd
}

func runScenarios(ctx context.Context, opts *RunOptions, dir string, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, out, errOut)

	if err := requireDir("scenarios directory", dir); err != nil {
		formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return err
	}
	files, err := findScenarioFiles(dir, opts.Filter)
	if err != nil {
		formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	goldenDir := opts.Golden
	if goldenDir == "" {
		goldenDir = filepath.Join(filepath.Dir(filepath.Clean(dir)), "golden")
	}

	hopts := []harness.Option{harness.WithLogger(opts.logger(errOut))}
	if opts.DB != "" {
		st, err := store.Open(opts.DB)
		if err != nil {
			formatter.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()
		hopts = append(hopts, harness.WithStore(st))
	}
	h := harness.New(opts.Registry, hopts...)

	result := RunResult{
		Scenarios: make([]ScenarioResult, 0, len(files)),
		Total:     len(files),
	}
	for _, file := range files {
		sr := runScenarioFile(ctx, h, file, goldenDir, opts.Update)
		formatter.VerboseLog("%s: pass=%t calls=%d", sr.Name, sr.Pass, sr.Calls)
		result.Scenarios = append(result.Scenarios, sr)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if formatter.JSON() {
		if result.Failed > 0 {
			formatter.Failure(result)
		} else {
			formatter.Success(result)
		}
	} else {
		writeRunText(out, result)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenarios failed", result.Failed, result.Total))
	}
	return nil
}

// runScenarioFile loads, runs and golden-checks one scenario. Every problem
// is reported in the result; none stops the other scenarios.
func runScenarioFile(ctx context.Context, h *harness.Harness, file, goldenDir string, update bool) ScenarioResult {
	sr := ScenarioResult{File: file, Name: scenarioName(file)}

	s, err := harness.LoadScenario(file)
	if err != nil {
		sr.Errors = []string{fmt.Sprintf("load: %v", err)}
		return sr
	}
	sr.Name = s.Name

	res, err := h.Run(ctx, s)
	if err != nil {
		sr.Errors = []string{fmt.Sprintf("run: %v", err)}
		return sr
	}
	sr.RunID = res.RunID
	sr.Pass = res.Pass
	sr.Calls = len(res.Trace)
	sr.Errors = res.Errors

	err = harness.CompareGolden(goldenDir, s.Name, res, update)
	switch {
	case err == nil && update:
		sr.Golden = "updated"
	case err == nil:
		sr.Golden = "match"
	case errors.Is(err, fs.ErrNotExist):
		sr.Golden = "missing"
	case errors.Is(err, harness.ErrGoldenMismatch):
		sr.Golden = "mismatch"
		sr.Pass = false
		sr.Errors = append(sr.Errors, err.Error())
	default:
		sr.Pass = false
		sr.Errors = append(sr.Errors, fmt.Sprintf("golden: %v", err))
	}
	return sr
}

func scenarioName(file string) string {
	base := filepath.Base(file)
	return base[:len(base)-len(filepath.Ext(base))]
}

func writeRunText(w io.Writer, result RunResult) {
	if result.Total == 0 {
		fmt.Fprintln(w, "No scenarios found.")
		return
	}
	marks := marksFor(w)
	for _, sr := range result.Scenarios {
		mark := marks.Pass
		if !sr.Pass {
			mark = marks.Fail
		}
		fmt.Fprintf(w, "%s %s (%d calls)\n", mark, sr.Name, sr.Calls)
		for _, e := range sr.Errors {
			fmt.Fprintf(w, "    %s\n", e)
		}
	}
	fmt.Fprintf(w, "\n%d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
}
