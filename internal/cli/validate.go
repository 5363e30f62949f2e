package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/scenariotools/internal/harness"
)

// FileValidation is the validation outcome of one scenario file.
type FileValidation struct {
	File   string   `json:"file"`
	Name   string   `json:"name,omitempty"`
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ValidateResult summarizes a validate command.
type ValidateResult struct {
	Files   []FileValidation `json:"files"`
	Valid   int              `json:"valid"`
	Invalid int              `json:"invalid"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "validate <scenarios-dir>",
		Short: "Check scenario files without running them",
		Long: `Check every scenario file in a directory against the scenario schema
and the registry: every type, call and fixture a scenario names must be
registered, and every value must decode. Nothing is run.

Exit codes:
  0 - All scenarios are valid
  1 - One or more scenarios are invalid
  2 - Command error`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateScenarios(rootOpts, args[0], filter, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "filter scenarios by glob pattern")
	return cmd
}

func validateScenarios(opts *RootOptions, dir, filter string, out, errOut io.Writer) error {
	formatter := newFormatter(opts, out, errOut)

	if err := requireDir("scenarios directory", dir); err != nil {
		formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return err
	}
	files, err := findScenarioFiles(dir, filter)
	if err != nil {
		formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	result := ValidateResult{Files: make([]FileValidation, 0, len(files))}
	for _, file := range files {
		fv := validateFile(opts.Registry, file)
		formatter.VerboseLog("checked %s", file)
		result.Files = append(result.Files, fv)
		if fv.Valid {
			result.Valid++
		} else {
			result.Invalid++
		}
	}

	if formatter.JSON() {
		if result.Invalid > 0 {
			formatter.Failure(result)
		} else {
			formatter.Success(result)
		}
	} else {
		marks := marksFor(out)
		for _, fv := range result.Files {
			mark := marks.Pass
			if !fv.Valid {
				mark = marks.Fail
			}
			fmt.Fprintf(out, "%s %s\n", mark, fv.File)
			for _, e := range fv.Errors {
				fmt.Fprintf(out, "    %s\n", e)
			}
		}
		fmt.Fprintf(out, "\n%d valid, %d invalid\n", result.Valid, result.Invalid)
	}

	if result.Invalid > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d invalid scenarios", result.Invalid))
	}
	return nil
}

func validateFile(reg *harness.Registry, file string) FileValidation {
	fv := FileValidation{File: file}
	s, err := harness.LoadScenario(file)
	if err != nil {
		fv.Errors = []string{err.Error()}
		return fv
	}
	fv.Name = s.Name
	if err := reg.Check(s); err != nil {
		fv.Errors = splitJoined(err)
		return fv
	}
	fv.Valid = true
	return fv
}

// splitJoined unpacks an errors.Join error into one message per error.
func splitJoined(err error) []string {
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) {
		return []string{err.Error()}
	}
	var out []string
	for _, e := range joined.Unwrap() {
		out = append(out, e.Error())
	}
	return out
}
