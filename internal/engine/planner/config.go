package planner

import (
	"strconv"

	"go.trai.ch/bundlerule/internal/core/domain"
	"go.trai.ch/bundlerule/internal/core/ports"
)

const (
	// InfoFilePlaceholder is replaced with the stable status file path.
	InfoFilePlaceholder = "bazel_info_file"
	// VersionFilePlaceholder is replaced with the volatile status file path.
	VersionFilePlaceholder = "bazel_version_file"

	undefinedSentinel = "undefined"
)

// ConfigSubstitutions returns the template substitutions for the stamping decision.
// The order is fixed so the materialized file is byte-identical across plans.
func ConfigSubstitutions(stamp bool, opts Options) []ports.Substitution {
	info, version := undefinedSentinel, undefinedSentinel
	if stamp {
		info = strconv.Quote(opts.stableStatus().Path())
		version = strconv.Quote(opts.volatileStatus().Path())
	}
	return []ports.Substitution{
		{Placeholder: InfoFilePlaceholder, Value: info},
		{Placeholder: VersionFilePlaceholder, Value: version},
	}
}

// configRequest builds the materialization request for rule.
func configRequest(root string, rule *domain.Rule, template *domain.SourceFile, stamp bool, opts Options) ports.ConfigRequest {
	return ports.ConfigRequest{
		Root:          root,
		Template:      template,
		Output:        configArtifact(rule.Label, opts),
		Substitutions: ConfigSubstitutions(stamp, opts),
	}
}

func configArtifact(l domain.Label, opts Options) domain.SourceFile {
	return domain.NewGeneratedFile(opts.OutputRoot, domain.ConfigFilePath("", l.Pkg, l.Name))
}
