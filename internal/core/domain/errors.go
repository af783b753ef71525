package domain

import (
	"errors"

	"go.trai.ch/zerr"
)

// Error categories. Every error returned by the planner is joined with exactly
// one of these so callers can classify it with errors.Is.
var (
	// ErrConfig marks a static contradiction in a rule's declared configuration.
	ErrConfig = zerr.New("configuration error")

	// ErrResolution marks an entry point that cannot be matched to a source file.
	ErrResolution = zerr.New("resolution error")

	// ErrExecution marks a failure of the external bundler process or worker channel.
	ErrExecution = zerr.New("execution error")
)

var (
	// ErrBothEntryPointForms is returned when a rule sets both entry_point and entry_points.
	ErrBothEntryPointForms = zerr.New("only one of entry_point or entry_points may be set")

	// ErrNoEntryPoint is returned when a rule sets neither entry_point nor entry_points.
	ErrNoEntryPoint = zerr.New("one of entry_point or entry_points must be set")

	// ErrEntryPointFileCount is returned when entry_point or an entry_points key does not provide exactly one file.
	ErrEntryPointFileCount = zerr.New("entry point must provide exactly one file")

	// ErrDuplicateEntryPoint is returned when two entry_points keys resolve to the same file.
	ErrDuplicateEntryPoint = zerr.New("duplicate entry point")

	// ErrUnresolvedEntryPoint is returned when no javascript file matches an entry point stem.
	ErrUnresolvedEntryPoint = zerr.New("could not find corresponding javascript entry point")

	// ErrMultipleEntryPointsRequireOutputDir is returned when several entry points are planned in file mode.
	ErrMultipleEntryPointsRequireOutputDir = zerr.New("multiple entry points require that output_dir be set")

	// ErrWorkerNotConfigured is returned when supports_workers is set without a worker executable.
	ErrWorkerNotConfigured = zerr.New("supports_workers requires a configured worker executable")

	// ErrBundlerNotConfigured is returned when no bundler executable is configured.
	ErrBundlerNotConfigured = zerr.New("no bundler executable configured")

	// ErrInvalidFormat is returned when the format attribute is not a known output format.
	ErrInvalidFormat = zerr.New("invalid format, expected one of amd, cjs, esm, iife, umd, system")

	// ErrInvalidSourcemap is returned when the sourcemap attribute is not a known mode.
	ErrInvalidSourcemap = zerr.New("invalid sourcemap, expected one of inline, hidden, true, false")

	// ErrInvalidStamp is returned when the stamp attribute is not -1, 0 or 1.
	ErrInvalidStamp = zerr.New("invalid stamp, expected -1, 0 or 1")

	// ErrInvalidLabel is returned when a label string cannot be parsed.
	ErrInvalidLabel = zerr.New("invalid label")

	// ErrInvalidAttribute is returned when a rule attribute has the wrong type.
	ErrInvalidAttribute = zerr.New("invalid attribute value")

	// ErrUnknownAttribute is returned when a rule declares an attribute it does not support.
	ErrUnknownAttribute = zerr.New("unknown attribute")

	// ErrMissingName is returned when a rule or target omits its name.
	ErrMissingName = zerr.New("missing name attribute")

	// ErrDuplicateTarget is returned when a package declares the same name twice.
	ErrDuplicateTarget = zerr.New("target already declared in package")

	// ErrUnknownTarget is returned when a label does not resolve to a rule, target or file.
	ErrUnknownTarget = zerr.New("no such target")

	// ErrNotABundle is returned when a planning request names something other than a bundle rule.
	ErrNotABundle = zerr.New("target is not a rollup_bundle rule")

	// ErrNoTargetsSpecified is returned when there is nothing to plan in the current package.
	ErrNoTargetsSpecified = zerr.New("no targets specified")

	// ErrCycleDetected is returned when bundle rules depend on each other in a cycle.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrMissingDependency is returned when an action references an action that is not in the graph.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrActionAlreadyExists is returned when an action is added to the graph twice.
	ErrActionAlreadyExists = zerr.New("action already exists")

	// ErrWorkspaceNotFound is returned when no workspace marker exists above the working directory.
	ErrWorkspaceNotFound = zerr.New("could not find MODULE.bazel, WORKSPACE or bundle.work.yaml")

	// ErrPackageNotFound is returned when a package directory has no BUILD or bundle.yaml file.
	ErrPackageNotFound = zerr.New("no BUILD.bazel, BUILD or bundle.yaml file in package")

	// ErrConfigReadFailed is returned when a rule file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read rule file")

	// ErrConfigParseFailed is returned when a rule file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse rule file")

	// ErrTemplateReadFailed is returned when a config template cannot be read.
	ErrTemplateReadFailed = zerr.New("failed to read config template")

	// ErrTemplateWriteFailed is returned when the materialized config cannot be written.
	ErrTemplateWriteFailed = zerr.New("failed to write materialized config")

	// ErrStaleOutputRemoveFailed is returned when an output of an earlier run cannot be removed.
	ErrStaleOutputRemoveFailed = zerr.New("failed to remove stale output")

	// ErrParamFileWriteFailed is returned when the param file cannot be written.
	ErrParamFileWriteFailed = zerr.New("failed to write param file")

	// ErrOutputDirCreateFailed is returned when an output directory cannot be created.
	ErrOutputDirCreateFailed = zerr.New("failed to create output directory")

	// ErrBundlerStartFailed is returned when the bundler process cannot be started.
	ErrBundlerStartFailed = zerr.New("failed to start bundler process")

	// ErrBundlerFailed is returned when the one-shot bundler process exits non-zero.
	ErrBundlerFailed = zerr.New("bundler process failed")

	// ErrWorkerFailed is returned when a persistent worker reports failure or its channel breaks.
	ErrWorkerFailed = zerr.New("persistent worker failed")

	// ErrWorkerPoolClosed is returned when a request is sent to a closed worker pool.
	ErrWorkerPoolClosed = zerr.New("worker pool is closed")

	// ErrOutputMissing is returned when a declared output is absent after a successful run.
	ErrOutputMissing = zerr.New("declared output was not created")

	// ErrDescriptorHashFailed is returned when a descriptor cannot be digested.
	ErrDescriptorHashFailed = zerr.New("failed to hash invocation descriptor")

	// ErrOutputRootOutsideWorkspace is returned when the output root escapes the workspace root.
	ErrOutputRootOutsideWorkspace = zerr.New("output root must be inside the workspace")

	// ErrBuildExecutionFailed is returned when any action of a run fails.
	ErrBuildExecutionFailed = zerr.New("build execution failed")
)

// ConfigError joins err with the ErrConfig category.
func ConfigError(err error) error {
	return joinCategory(ErrConfig, err)
}

// ResolutionError joins err with the ErrResolution category.
func ResolutionError(err error) error {
	return joinCategory(ErrResolution, err)
}

// ExecutionError joins err with the ErrExecution category.
func ExecutionError(err error) error {
	return joinCategory(ErrExecution, err)
}

func joinCategory(category, err error) error {
	if err == nil {
		return nil
	}
	var c *categorized
	if errors.As(err, &c) {
		return err
	}
	return &categorized{category: category, err: err}
}

// Annotate attaches metadata to err while keeping its category.
func Annotate(err error, key string, value any) error {
	if err == nil {
		return nil
	}
	if c, ok := err.(*categorized); ok {
		return &categorized{category: c.category, err: zerr.With(c.err, key, value)}
	}
	return zerr.With(err, key, value)
}

// categorized reports the wrapped error's message while matching both the
// category and the wrapped chain with errors.Is.
type categorized struct {
	category error
	err      error
}

func (c *categorized) Error() string {
	return c.err.Error()
}

func (c *categorized) Unwrap() []error {
	return []error{c.err, c.category}
}
