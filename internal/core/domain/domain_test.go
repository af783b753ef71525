package domain_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/bundlerule/internal/core/domain"
)

func TestSourceFile(t *testing.T) {
	src := domain.NewSourceFile("app/src/index.ts")
	assert.Equal(t, "app/src/index.ts", src.Path())
	assert.Equal(t, "ts", src.Extension())
	assert.Equal(t, "app/src/index", src.Stem())
	assert.False(t, src.IsJS())
	assert.False(t, src.IsGenerated())
	assert.Equal(t, src.Path(), src.ShortPath())

	gen := domain.NewGeneratedFile("bazel-out/bin", "app/src/index.mjs")
	assert.Equal(t, "bazel-out/bin/app/src/index.mjs", gen.Path())
	assert.Equal(t, "app/src/index.mjs", gen.ShortPath())
	assert.True(t, gen.IsJS())
	assert.True(t, gen.IsGenerated())
	assert.Equal(t, src.Stem(), gen.Stem())

	assert.Equal(t, domain.NewSourceFile("a/./b.js"), domain.NewSourceFile("a/b.js"))
	assert.True(t, domain.SourceFile{}.IsZero())
}

func TestFilterJS(t *testing.T) {
	files := []domain.SourceFile{
		domain.NewSourceFile("a.ts"),
		domain.NewSourceFile("b.js"),
		domain.NewSourceFile("c.css"),
		domain.NewSourceFile("d.mjs"),
	}
	assert.Equal(t, []domain.SourceFile{files[1], files[3]}, domain.FilterJS(files))
}

func TestParseLabel(t *testing.T) {
	tests := []struct {
		input string
		pkg   string
		want  string
	}{
		{input: "//app:bundle", pkg: "lib", want: "//app:bundle"},
		{input: ":bundle", pkg: "app", want: "//app:bundle"},
		{input: "index.ts", pkg: "app", want: "//app:index.ts"},
		{input: "src/index.ts", pkg: "app", want: "//app:src/index.ts"},
		{input: "//:root", pkg: "app", want: "//:root"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l, err := domain.ParseLabel(tt.input, tt.pkg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, l.String())
		})
	}

	l, err := domain.ParseLabel("src/index.ts", "app")
	require.NoError(t, err)
	assert.Equal(t, "app/src/index.ts", l.FilePath())

	_, err = domain.ParseLabel("", "app")
	require.Error(t, err)
	assert.ErrorContains(t, err, "invalid label")

	_, err = domain.ParseLabel("@npm//rollup:bin", "app")
	require.Error(t, err)
	assert.ErrorContains(t, err, "invalid label")
}

func TestParseAttributes(t *testing.T) {
	f, err := domain.ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, domain.FormatESM, f)

	f, err = domain.ParseFormat("umd")
	require.NoError(t, err)
	assert.Equal(t, domain.FormatUMD, f)

	_, err = domain.ParseFormat("es2015")
	assert.ErrorContains(t, err, "invalid format")

	m, err := domain.ParseSourcemap("")
	require.NoError(t, err)
	assert.Equal(t, domain.SourcemapInline, m)

	m, err = domain.ParseSourcemap("true")
	require.NoError(t, err)
	assert.True(t, m.EmitsSeparateFile())
	assert.False(t, domain.SourcemapHidden.EmitsSeparateFile())

	_, err = domain.ParseSourcemap("external")
	assert.ErrorContains(t, err, "invalid sourcemap")
}

func TestStampMode(t *testing.T) {
	tests := []struct {
		input  string
		want   domain.StampMode
		global bool
		stamp  bool
	}{
		{input: "", want: domain.StampAuto, global: true, stamp: true},
		{input: "-1", want: domain.StampAuto, global: false, stamp: false},
		{input: "auto", want: domain.StampAuto, global: true, stamp: true},
		{input: "0", want: domain.StampOff, global: true, stamp: false},
		{input: "off", want: domain.StampOff, global: true, stamp: false},
		{input: "1", want: domain.StampOn, global: false, stamp: true},
		{input: "on", want: domain.StampOn, global: false, stamp: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := domain.ParseStamp(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.stamp, got.Resolve(tt.global))
		})
	}

	_, err := domain.ParseStamp("2")
	assert.ErrorContains(t, err, "invalid stamp")
	_, err = domain.ParseStamp("yes")
	assert.ErrorContains(t, err, "invalid stamp")
}

func TestModuleInfo(t *testing.T) {
	info := domain.NewModuleInfo()
	assert.False(t, info.Has(domain.ModuleSources))
	assert.Nil(t, info.Files(domain.ModuleSources))

	withEmpty := info.With(domain.ModuleSources, nil)
	assert.True(t, withEmpty.Has(domain.ModuleSources))
	assert.Empty(t, withEmpty.Files(domain.ModuleSources))
	assert.False(t, info.Has(domain.ModuleSources), "With must not modify the receiver")

	out := domain.NewGeneratedFile("bazel-out/bin", "app/bundle.js")
	full := withEmpty.With(domain.DefaultFiles, []domain.SourceFile{out})
	data, err := json.Marshal(full)
	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"shape":"module_sources","files":[]},{"shape":"default_files","files":["bazel-out/bin/app/bundle.js"]}]`,
		string(data))
}

func TestOutputPlan_Artifacts(t *testing.T) {
	js := domain.NewGeneratedFile("bazel-out/bin", "app/x.js")
	jsMap := domain.NewGeneratedFile("bazel-out/bin", "app/x.js.map")

	plan := domain.FileSetPlan([]domain.OutputEntry{{Chunk: "x", File: js, Sourcemap: &jsMap}})
	assert.Equal(t, []domain.SourceFile{js, jsMap}, plan.Artifacts())
	assert.Equal(t, js, plan.Primary())

	dir := domain.NewGeneratedFile("bazel-out/bin", "app/bundle")
	dirPlan := domain.DirectoryPlan(dir)
	assert.Equal(t, []domain.SourceFile{dir}, dirPlan.Artifacts())
	assert.Equal(t, "directory", dirPlan.Kind.String())
}

func TestInvocationDescriptor_CommandLine(t *testing.T) {
	params := domain.NewGeneratedFile("bazel-out/bin", "app/_bundle.rollup.params")
	d := &domain.InvocationDescriptor{
		Tool:      domain.Tool{Path: "node_modules/.bin/rollup"},
		Transport: domain.OneShot,
		Arguments: []string{"app/index.js", "--format", "esm"},
		Env:       map[string]string{"Z": "1", domain.CompilationModeEnv: "opt"},
	}
	assert.Equal(t, []string{"node_modules/.bin/rollup", "app/index.js", "--format", "esm"}, d.CommandLine())
	assert.Equal(t, []string{"COMPILATION_MODE=opt", "Z=1"}, d.EnvList())

	d.Transport = domain.PersistentWorker
	d.ParamFile = &domain.ParamFile{File: params, Format: domain.ParamFileMultiline}
	assert.Equal(t, []string{"node_modules/.bin/rollup", "@bazel-out/bin/app/_bundle.rollup.params"}, d.CommandLine())
	assert.Equal(t, "app/index.js\n--format\nesm\n", d.ParamFileContent())
}

func TestErrorCategories(t *testing.T) {
	err := domain.ConfigError(domain.ErrNoEntryPoint)
	assert.True(t, errors.Is(err, domain.ErrConfig))
	assert.False(t, errors.Is(err, domain.ErrResolution))
	assert.True(t, errors.Is(err, domain.ErrNoEntryPoint))
	assert.Equal(t, domain.ErrNoEntryPoint.Error(), err.Error())

	assert.True(t, errors.Is(domain.ResolutionError(domain.ErrUnresolvedEntryPoint), domain.ErrResolution))
	assert.True(t, errors.Is(domain.ExecutionError(domain.ErrBundlerFailed), domain.ErrExecution))
	assert.NoError(t, domain.ConfigError(nil))
}

func TestLayoutPaths(t *testing.T) {
	assert.Equal(t, "bazel-out/bin/app/_bundle.rollup.params", domain.ParamFilePath("bazel-out/bin", "app", "bundle"))
	assert.Equal(t, "bazel-out/bin/app/_bundle.rollup_config.js", domain.ConfigFilePath("bazel-out/bin", "app", "bundle"))
	assert.Equal(t, "bazel-out/bin/bundle.js", domain.PackageOutputPath("bazel-out/bin", "", "bundle.js"))
}

func TestPackage_DuplicateNames(t *testing.T) {
	pkg := domain.NewPackage("app", "app/BUILD.bazel")
	require.NoError(t, pkg.AddRule(domain.NewRule(domain.MustParseLabel("//app:bundle"))))
	require.NoError(t, pkg.AddTarget(&domain.Target{Label: domain.MustParseLabel("//app:lib"), Kind: domain.KindJSLibrary}))

	err := pkg.AddTarget(&domain.Target{Label: domain.MustParseLabel("//app:bundle"), Kind: domain.KindFilegroup})
	assert.ErrorContains(t, err, "target already declared")
	assert.Equal(t, []domain.Label{domain.MustParseLabel("//app:bundle")}, pkg.BundleLabels())
}
