package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/bundlerule/internal/adapters/worker"
	"go.trai.ch/bundlerule/internal/app"
	"go.trai.ch/bundlerule/internal/engine/runner"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [labels...]",
		Short: "Plan bundle rules and run the bundler",
		Long: "Plan the given bundle rules, or every bundle rule of the current package, " +
			"execute the planned actions in dependency order and verify their declared outputs.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, _ := cmd.Flags().GetInt("jobs")
			noWorkers, _ := cmd.Flags().GetBool("no-workers")
			keepGoing, _ := cmd.Flags().GetBool("keep-going")
			idle, _ := cmd.Flags().GetDuration("worker-idle-timeout")

			return c.app.Run(cmd.Context(), args, app.RunOptions{
				Plan: planOptions(cmd),
				Runner: runner.Options{
					Jobs:      jobs,
					NoWorkers: noWorkers,
					KeepGoing: keepGoing,
				},
				WorkerIdleTimeout: idle,
			})
		},
	}
	addPlanFlags(cmd)
	cmd.Flags().IntP("jobs", "j", 0, "Maximum number of actions running at once (default: number of CPUs)")
	cmd.Flags().Bool("no-workers", false, "Run persistent worker actions as one-shot processes")
	cmd.Flags().BoolP("keep-going", "k", false, "Keep running actions that do not depend on a failed action")
	cmd.Flags().Duration("worker-idle-timeout", worker.DefaultIdleTimeout, "Stop persistent workers unused for this long")
	return cmd
}
