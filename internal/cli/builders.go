package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// BuilderInfo describes one registered call.
type BuilderInfo struct {
	Name    string `json:"name"`
	Params  string `json:"params"`
	Generic bool   `json:"generic,omitempty"`
}

// TypeEntry describes one registered value type.
type TypeEntry struct {
	Name   string `json:"name"`
	GoType string `json:"go_type"`
}

// BuildersResult is the registry listing.
type BuildersResult struct {
	Calls    []BuilderInfo `json:"calls"`
	Types    []TypeEntry   `json:"types"`
	Fixtures []string      `json:"fixtures"`
}

// NewBuildersCommand creates the builders command.
func NewBuildersCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "builders",
		Short: "List the calls, value types and fixtures scenarios can use",
		Long: `List the registry: every call with the parameter list its arguments are
selected by, every value type with its Go type, and the fixtures placed at
the end of each scenario's root context.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listBuilders(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

func listBuilders(opts *RootOptions, out, errOut io.Writer) error {
	reg := opts.Registry
	result := BuildersResult{
		Calls:    []BuilderInfo{},
		Types:    []TypeEntry{},
		Fixtures: reg.Fixtures(),
	}
	for _, c := range reg.Calls() {
		result.Calls = append(result.Calls, BuilderInfo{
			Name:    c.Name,
			Params:  c.Shape.String(),
			Generic: c.Shape.Generic(),
		})
	}
	for _, t := range reg.Types() {
		result.Types = append(result.Types, TypeEntry{Name: t.Name, GoType: t.GoType})
	}
	if result.Fixtures == nil {
		result.Fixtures = []string{}
	}

	formatter := newFormatter(opts, out, errOut)
	if formatter.JSON() {
		return formatter.Success(result)
	}

	fmt.Fprintln(out, "Calls:")
	for _, c := range result.Calls {
		fmt.Fprintf(out, "  %-20s %s\n", c.Name, c.Params)
	}
	fmt.Fprintln(out, "\nTypes:")
	for _, t := range result.Types {
		fmt.Fprintf(out, "  %-20s %s\n", t.Name, t.GoType)
	}
	fmt.Fprintln(out, "\nFixtures:")
	for _, f := range result.Fixtures {
		fmt.Fprintf(out, "  %s\n", f)
	}
	return nil
}
