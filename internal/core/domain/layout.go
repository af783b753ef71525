package domain

import "path"

const (
	// DefaultOutputRoot is the directory, relative to the workspace root, that generated artifacts live under.
	DefaultOutputRoot = "bazel-out/bin"

	// DefaultStableStatusFile is the stable build metadata file used when stamping.
	DefaultStableStatusFile = "bazel-out/stable-status.txt"

	// DefaultVolatileStatusFile is the volatile build metadata file used when stamping.
	DefaultVolatileStatusFile = "bazel-out/volatile-status.txt"

	// DefaultCompilationMode is the COMPILATION_MODE passed to the bundler when none is configured.
	DefaultCompilationMode = "fastbuild"

	// BuildFileName is the preferred BUILD file name.
	BuildFileName = "BUILD.bazel"

	// LegacyBuildFileName is the fallback BUILD file name.
	LegacyBuildFileName = "BUILD"

	// BundleFileName is the YAML rule file name.
	BundleFileName = "bundle.yaml"

	// WorkFileName marks a workspace root that has no Bazel markers.
	WorkFileName = "bundle.work.yaml"

	// ParamFileSuffix is appended to the rule name to form the param file name.
	ParamFileSuffix = ".rollup.params"

	// ConfigFileSuffix is appended to the rule name to form the materialized config file name.
	ConfigFileSuffix = ".rollup_config.js"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// WorkspaceMarkers lists the files whose presence identifies a workspace root, in lookup order.
var WorkspaceMarkers = []string{"MODULE.bazel", "WORKSPACE.bazel", "WORKSPACE", WorkFileName}

// PackageFiles lists the rule files tried in a package directory, in lookup order.
var PackageFiles = []string{BuildFileName, LegacyBuildFileName, BundleFileName}

// PackageOutputPath returns the path of name inside the output directory of pkg.
func PackageOutputPath(outputRoot, pkg, name string) string {
	return path.Join(outputRoot, pkg, name)
}

// ParamFilePath returns the param file path for the rule name in pkg.
func ParamFilePath(outputRoot, pkg, name string) string {
	return PackageOutputPath(outputRoot, pkg, "_"+name+ParamFileSuffix)
}

// ConfigFilePath returns the materialized config path for the rule name in pkg.
func ConfigFilePath(outputRoot, pkg, name string) string {
	return PackageOutputPath(outputRoot, pkg, "_"+name+ConfigFileSuffix)
}
