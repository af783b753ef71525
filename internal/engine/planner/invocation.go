package planner

import (
	"fmt"

	"go.trai.ch/bundlerule/internal/core/domain"
	"go.trai.ch/zerr"
)

// InvocationRequest collects the upstream results the invocation is built from.
type InvocationRequest struct {
	Rule        *domain.Rule
	EntryPoints []domain.ResolvedEntryPoint
	Inputs      []domain.SourceFile
	Outputs     domain.OutputPlan
	// Config is the materialized configuration artifact.
	Config domain.SourceFile
	// Stamp is the resolved stamping decision.
	Stamp     bool
	DependsOn []domain.Label
}

// BuildArguments returns the bundler arguments. Position carries meaning to the bundler,
// so the order is fixed: passthrough args, entry points and output target, format,
// silence, config, symlink preservation, sourcemap.
func BuildArguments(
	rule *domain.Rule,
	entries []domain.ResolvedEntryPoint,
	outputs domain.OutputPlan,
	config domain.SourceFile,
) []string {
	args := make([]string, 0, len(rule.Args)+2*len(entries)+12)
	args = append(args, rule.Args...)

	if outputs.Kind == domain.OutputDirectory {
		for _, e := range entries {
			args = append(args, e.Chunk+"="+e.File.Path())
		}
		args = append(args, "--output.dir", outputs.Directory.Path())
	} else {
		for _, e := range entries {
			args = append(args, e.File.Path())
		}
		args = append(args, "--output.file", outputs.Primary().Path())
	}

	args = append(args, "--format", string(rule.Format))

	if rule.Silent {
		args = append(args, "--silent")
	}

	args = append(args, "--config", config.Path())

	// Symlinks in the sandbox must not be resolved to their targets outside of it.
	args = append(args, "--preserveSymlinks")

	if rule.Sourcemap != "" && rule.Sourcemap != domain.SourcemapFalse {
		args = append(args, "--sourcemap", string(rule.Sourcemap))
	}

	return args
}

// BuildInvocation assembles the descriptor for one rule and selects its transport.
func BuildInvocation(req InvocationRequest, opts Options) (*domain.InvocationDescriptor, error) {
	rule := req.Rule

	tool := domain.Tool{Path: opts.Bundler}
	transport := domain.OneShot
	var paramFile *domain.ParamFile
	requirements := map[string]string{}

	if rule.SupportsWorkers {
		if opts.Worker == "" {
			err := zerr.With(domain.ErrWorkerNotConfigured, "attribute", "supports_workers")
			return nil, domain.ConfigError(zerr.With(err, "rule", rule.Label.String()))
		}
		tool = domain.Tool{Path: opts.Worker}
		transport = domain.PersistentWorker
		paramFile = &domain.ParamFile{
			File:   domain.NewGeneratedFile(opts.OutputRoot, paramShortPath(rule.Label)),
			Format: domain.ParamFileMultiline,
		}
		requirements[domain.SupportsWorkersRequirement] = "1"
	} else if opts.Bundler == "" {
		return nil, domain.ConfigError(zerr.With(domain.ErrBundlerNotConfigured, "rule", rule.Label.String()))
	}

	silence := domain.SilenceNone
	switch {
	case rule.Silent:
		silence = domain.SilenceAll
	case rule.SilentOnSuccess:
		silence = domain.SilenceOnSuccess
	}

	inputs := newFileSet()
	inputs.add(req.Inputs...)
	inputs.add(req.Config)
	if req.Stamp {
		inputs.add(opts.stableStatus(), opts.volatileStatus())
	}

	outputs := req.Outputs.Artifacts()

	return &domain.InvocationDescriptor{
		Label:           rule.Label,
		Mnemonic:        domain.Mnemonic,
		ProgressMessage: fmt.Sprintf("Bundling JavaScript %s [rollup]", req.Outputs.Primary().ShortPath()),
		Tool:            tool,
		Transport:       transport,
		Arguments:       BuildArguments(rule, req.EntryPoints, req.Outputs, req.Config),
		ParamFile:       paramFile,
		EntryPoints:     req.EntryPoints,
		Config:          req.Config,
		Inputs:          inputs.files,
		Outputs:         outputs,
		OutputPlan:      req.Outputs,
		Env:             map[string]string{domain.CompilationModeEnv: opts.compilationMode()},
		Hints: domain.ExecutionHints{
			SupportsWorkers:   rule.SupportsWorkers,
			Silence:           silence,
			LinkWorkspaceRoot: rule.LinkWorkspaceRoot,
			Requirements:      requirements,
		},
		Provides: domain.NewModuleInfo().
			With(domain.ModuleSources, outputs).
			With(domain.DefaultFiles, outputs),
		DependsOn: req.DependsOn,
	}, nil
}

func paramShortPath(l domain.Label) string {
	return domain.ParamFilePath("", l.Pkg, l.Name)
}
