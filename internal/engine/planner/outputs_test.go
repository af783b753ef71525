package planner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/bundlerule/internal/core/domain"
	"go.trai.ch/bundlerule/internal/engine/planner"
)

func TestPlanOutputs_FileMode(t *testing.T) {
	entries := []domain.ResolvedEntryPoint{{File: src("app/index.js"), Chunk: "bundle"}}

	tests := []struct {
		name      string
		sourcemap domain.SourcemapMode
		want      []domain.SourceFile
	}{
		{
			name:      "separate sourcemap",
			sourcemap: domain.SourcemapTrue,
			want:      []domain.SourceFile{gen("app/bundle.js"), gen("app/bundle.js.map")},
		},
		{name: "inline sourcemap", sourcemap: domain.SourcemapInline, want: []domain.SourceFile{gen("app/bundle.js")}},
		{name: "hidden sourcemap", sourcemap: domain.SourcemapHidden, want: []domain.SourceFile{gen("app/bundle.js")}},
		{name: "no sourcemap", sourcemap: domain.SourcemapFalse, want: []domain.SourceFile{gen("app/bundle.js")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := planner.PlanOutputs(entries, false, tt.sourcemap, domain.DefaultOutputRoot, label("//app:bundle"))
			require.NoError(t, err)
			assert.Equal(t, domain.OutputFileSet, plan.Kind)
			assert.Equal(t, tt.want, plan.Artifacts())
			assert.Equal(t, "bazel-out/bin/app/bundle.js", plan.Primary().Path())
		})
	}
}

func TestPlanOutputs_MultipleEntriesRequireDirectory(t *testing.T) {
	entries := []domain.ResolvedEntryPoint{
		{File: src("app/a.js"), Chunk: "a"},
		{File: src("app/b.js"), Chunk: "b"},
	}

	_, err := planner.PlanOutputs(entries, false, domain.SourcemapInline, domain.DefaultOutputRoot, label("//app:chunks"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfig)
	assert.ErrorContains(t, err, "output_dir")

	plan, err := planner.PlanOutputs(entries, true, domain.SourcemapTrue, domain.DefaultOutputRoot, label("//app:chunks"))
	require.NoError(t, err)
	assert.Equal(t, domain.OutputDirectory, plan.Kind)
	assert.Equal(t, []domain.SourceFile{gen("app/chunks")}, plan.Artifacts())
}

func TestPlanOutputs_RootPackage(t *testing.T) {
	entries := []domain.ResolvedEntryPoint{{File: src("main.js"), Chunk: "bundle"}}

	plan, err := planner.PlanOutputs(entries, false, domain.SourcemapInline, "out", label("//:bundle"))
	require.NoError(t, err)
	assert.Equal(t, "out/bundle.js", plan.Primary().Path())
	assert.Equal(t, "bundle.js", plan.Primary().ShortPath())
}
