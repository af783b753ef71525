package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/bundlerule/internal/app"
	"go.trai.ch/bundlerule/internal/core/domain"
	"go.trai.ch/bundlerule/internal/engine/planner"
)

// DefaultBundler is the bundler executable used when --bundler is not set.
const DefaultBundler = "node_modules/.bin/rollup"

func addPlanFlags(cmd *cobra.Command) {
	cmd.Flags().String("output-root", domain.DefaultOutputRoot, "Directory generated artifacts are declared under")
	cmd.Flags().String("bundler", DefaultBundler, "Bundler executable for one-shot actions")
	cmd.Flags().String("worker", "", "Persistent worker executable for rules with supports_workers")
	cmd.Flags().Bool("stamp", false, "Stamp rules that leave stamp on auto")
	cmd.Flags().String("compilation-mode", domain.DefaultCompilationMode, "Compilation mode passed to the bundler")
	cmd.Flags().String("info-file", domain.DefaultStableStatusFile, "Stable status file used when stamping")
	cmd.Flags().String("version-file", domain.DefaultVolatileStatusFile, "Volatile status file used when stamping")
}

func planOptions(cmd *cobra.Command) app.PlanOptions {
	dir, _ := cmd.Flags().GetString("workspace")
	outputRoot, _ := cmd.Flags().GetString("output-root")
	bundler, _ := cmd.Flags().GetString("bundler")
	worker, _ := cmd.Flags().GetString("worker")
	stamp, _ := cmd.Flags().GetBool("stamp")
	mode, _ := cmd.Flags().GetString("compilation-mode")
	infoFile, _ := cmd.Flags().GetString("info-file")
	versionFile, _ := cmd.Flags().GetString("version-file")

	return app.PlanOptions{
		Dir: dir,
		Planner: planner.Options{
			OutputRoot:         outputRoot,
			Bundler:            bundler,
			Worker:             worker,
			Stamp:              stamp,
			StableStatusFile:   infoFile,
			VolatileStatusFile: versionFile,
			CompilationMode:    mode,
		},
	}
}
