package planner

import (
	"path"

	"go.trai.ch/bundlerule/internal/core/domain"
	"go.trai.ch/zerr"
)

// PlanOutputs decides what the action declares as outputs.
//
// In directory mode a single directory named after the rule is declared and the bundler
// decides its contents. Otherwise each entry point declares <chunk>.js, plus <chunk>.js.map
// when the sourcemap mode writes a separate file. File mode accepts one entry point only.
func PlanOutputs(
	entries []domain.ResolvedEntryPoint,
	directoryMode bool,
	sourcemap domain.SourcemapMode,
	outputRoot string,
	rule domain.Label,
) (domain.OutputPlan, error) {
	if directoryMode {
		return domain.DirectoryPlan(domain.NewGeneratedFile(outputRoot, path.Join(rule.Pkg, rule.Name))), nil
	}

	if len(entries) > 1 {
		err := zerr.With(domain.ErrMultipleEntryPointsRequireOutputDir, "attribute", "output_dir")
		return domain.OutputPlan{}, domain.ConfigError(zerr.With(err, "entry_points", len(entries)))
	}

	planned := make([]domain.OutputEntry, 0, len(entries))
	for _, e := range entries {
		out := domain.OutputEntry{
			Chunk: e.Chunk,
			File:  domain.NewGeneratedFile(outputRoot, path.Join(rule.Pkg, e.Chunk+".js")),
		}
		if sourcemap.EmitsSeparateFile() {
			m := domain.NewGeneratedFile(outputRoot, path.Join(rule.Pkg, e.Chunk+".js.map"))
			out.Sourcemap = &m
		}
		planned = append(planned, out)
	}
	return domain.FileSetPlan(planned), nil
}
