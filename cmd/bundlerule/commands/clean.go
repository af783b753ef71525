package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/bundlerule/internal/app"
	"go.trai.ch/bundlerule/internal/core/domain"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove generated bundle artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, _ := cmd.Flags().GetString("workspace")
			outputRoot, _ := cmd.Flags().GetString("output-root")

			return c.app.Clean(cmd.Context(), app.CleanOptions{
				Dir:        dir,
				OutputRoot: outputRoot,
			})
		},
	}
	cmd.Flags().String("output-root", domain.DefaultOutputRoot, "Directory generated artifacts are declared under")
	return cmd
}
