package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/bundlerule/internal/app"
	"go.trai.ch/zerr"
)

// Plan output formats.
const (
	FormatJSON    = "json"
	FormatCmdline = "cmdline"
)

var errUnknownFormat = zerr.New("unknown output format, expected json or cmdline")

func (c *CLI) newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan [labels...]",
		Short: "Print the bundler invocations of bundle rules",
		Long: "Plan the given bundle rules, or every bundle rule of the current package, " +
			"materialize their configuration files and print the planned actions.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			if format != FormatJSON && format != FormatCmdline {
				return zerr.With(errUnknownFormat, "format", format)
			}

			plan, err := c.app.Plan(cmd.Context(), args, planOptions(cmd))
			if err != nil {
				return err
			}

			if format == FormatCmdline {
				return writeCmdlines(cmd.OutOrStdout(), plan)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(plan.Actions)
		},
	}
	addPlanFlags(cmd)
	cmd.Flags().StringP("format", "f", FormatJSON, "Output format: json or cmdline")
	return cmd
}

// writeCmdlines prints every action as a shell command preceded by its label and digest.
func writeCmdlines(w io.Writer, plan *app.Plan) error {
	for _, action := range plan.Actions {
		desc := action.Descriptor
		words := desc.EnvList()
		for _, arg := range desc.CommandLine() {
			words = append(words, quoteArg(arg))
		}
		if _, err := fmt.Fprintf(w, "# %s %s\n%s\n", desc.Label, action.Digest, strings.Join(words, " ")); err != nil {
			return err
		}
	}
	return nil
}

func quoteArg(arg string) string {
	if arg == "" {
		return `""`
	}
	for _, r := range arg {
		if !isShellSafe(r) {
			return strconv.Quote(arg)
		}
	}
	return arg
}

func isShellSafe(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	default:
		return strings.ContainsRune("@%+=:,./_-", r)
	}
}
