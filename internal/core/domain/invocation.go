package domain

import (
	"slices"
	"strings"
)

const (
	// Mnemonic identifies bundle actions.
	Mnemonic = "Rollup"

	// CompilationModeEnv is the environment variable carrying the build mode.
	CompilationModeEnv = "COMPILATION_MODE"

	// SupportsWorkersRequirement is the execution requirement key set for worker capable actions.
	SupportsWorkersRequirement = "supports-workers"
)

// Transport selects how the execution collaborator delivers arguments to the bundler.
type Transport int

const (
	// OneShot spawns the bundler per action with arguments on the command line.
	OneShot Transport = iota
	// PersistentWorker sends arguments to a long-lived worker through a param file.
	PersistentWorker
)

func (t Transport) String() string {
	if t == PersistentWorker {
		return "persistent_worker"
	}
	return "one_shot"
}

// MarshalText implements encoding.TextMarshaler.
func (t Transport) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Tool is the identity of the executable an action runs.
type Tool struct {
	Path string `json:"path"`
}

// ParamFileFormat is the encoding of a param file.
type ParamFileFormat string

// ParamFileMultiline writes one argument per line.
const ParamFileMultiline ParamFileFormat = "multiline"

// ParamFile describes the file that carries arguments in worker mode.
type ParamFile struct {
	File   SourceFile      `json:"file"`
	Format ParamFileFormat `json:"format"`
}

// SilenceLevel is how much bundler output the execution collaborator should surface.
type SilenceLevel int

const (
	// SilenceNone streams all bundler output.
	SilenceNone SilenceLevel = iota
	// SilenceOnSuccess surfaces output only when the action fails.
	SilenceOnSuccess
	// SilenceAll asks the bundler itself to be silent.
	SilenceAll
)

func (s SilenceLevel) String() string {
	switch s {
	case SilenceOnSuccess:
		return "on_success"
	case SilenceAll:
		return "all"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s SilenceLevel) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ExecutionHints carry scheduling information for the execution collaborator.
type ExecutionHints struct {
	SupportsWorkers   bool              `json:"supports_workers"`
	Silence           SilenceLevel      `json:"silence"`
	LinkWorkspaceRoot bool              `json:"link_workspace_root"`
	Requirements      map[string]string `json:"execution_requirements,omitempty"`
}

// InvocationDescriptor is the planned bundler action for one rule.
// It is built once by the planner and must not be modified afterwards.
type InvocationDescriptor struct {
	Label           Label                `json:"label"`
	Mnemonic        string               `json:"mnemonic"`
	ProgressMessage string               `json:"progress_message"`
	Tool            Tool                 `json:"tool"`
	Transport       Transport            `json:"transport"`
	Arguments       []string             `json:"arguments"`
	ParamFile       *ParamFile           `json:"param_file,omitempty"`
	EntryPoints     []ResolvedEntryPoint `json:"entry_points"`
	Config          SourceFile           `json:"config"`
	Inputs          []SourceFile         `json:"inputs"`
	Outputs         []SourceFile         `json:"outputs"`
	OutputPlan      OutputPlan           `json:"output_plan"`
	Env             map[string]string    `json:"env"`
	Hints           ExecutionHints       `json:"execution_hints"`
	Provides        ModuleInfo           `json:"provides"`
	// DependsOn lists the bundle rules whose outputs are among the inputs.
	DependsOn []Label `json:"depends_on,omitempty"`
}

// CommandLine returns the argv the execution collaborator runs.
// In worker mode the arguments travel through the param file.
func (d *InvocationDescriptor) CommandLine() []string {
	if d.Transport == PersistentWorker && d.ParamFile != nil {
		return []string{d.Tool.Path, "@" + d.ParamFile.File.Path()}
	}
	argv := make([]string, 0, len(d.Arguments)+1)
	argv = append(argv, d.Tool.Path)
	return append(argv, d.Arguments...)
}

// ParamFileContent returns the param file body, one argument per line.
func (d *InvocationDescriptor) ParamFileContent() string {
	if len(d.Arguments) == 0 {
		return ""
	}
	return strings.Join(d.Arguments, "\n") + "\n"
}

// EnvList returns the environment as KEY=VALUE pairs in key order.
func (d *InvocationDescriptor) EnvList() []string {
	keys := make([]string, 0, len(d.Env))
	for k := range d.Env {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+d.Env[k])
	}
	return out
}
