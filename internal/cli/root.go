package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/scenariotools/internal/harness"
	"github.com/roach88/scenariotools/internal/riskdata"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// Registry resolves the types and calls scenarios refer to.
	Registry *harness.Registry
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Error codes reported in JSON output.
const (
	ErrCodeGeneric  = "E001"
	ErrCodeInvalid  = "E002" // scenario fails schema or registry checks
	ErrCodeNotFound = "E005" // path or run not found
	ErrCodeStore    = "E006" // database could not be opened or read
)

// NewRootCommand creates the tst command tree over the risk data registry.
func NewRootCommand() *cobra.Command {
	return newRootCommand(riskdata.Registry())
}

func newRootCommand(reg *harness.Registry) *cobra.Command {
	opts := &RootOptions{Registry: reg}

	cmd := &cobra.Command{
		Use:   "tst",
		Short: "tst - scenario runner for type-selected calls",
		Long: `Run YAML scenarios whose steps call registered builders with arguments
selected by type from a context of values, and compare the resulting
call traces against golden files.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewBuildersCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// logger returns the harness logger: debug-level text on w when verbose,
// discarded otherwise.
func (o *RootOptions) logger(w io.Writer) *slog.Logger {
	if !o.Verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
