package planner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/bundlerule/internal/core/domain"
	"go.trai.ch/bundlerule/internal/engine/planner"
)

func dep(l string, info domain.ModuleInfo) domain.Dependency {
	return domain.Dependency{Label: label(l), Providers: info}
}

func TestAggregate_DefaultFilesOnly(t *testing.T) {
	a, b, c := src("lib/a.js"), src("lib/b.js"), src("lib/c.js")
	deps := []domain.Dependency{
		dep("//lib:one", domain.NewModuleInfo().With(domain.DefaultFiles, []domain.SourceFile{a, b, a})),
		dep("//lib:two", domain.NewModuleInfo().With(domain.DefaultFiles, []domain.SourceFile{c, b})),
	}

	assert.Equal(t, []domain.SourceFile{a, b, c}, planner.Aggregate(nil, deps))
}

func TestAggregate_ESModuleAndModuleSourcesBothContribute(t *testing.T) {
	esm := []domain.SourceFile{src("lib/index.mjs"), src("lib/shared.js")}
	cjs := []domain.SourceFile{src("lib/shared.js"), src("lib/index.js")}
	info := domain.NewModuleInfo().
		With(domain.ESModuleSources, esm).
		With(domain.ModuleSources, cjs)

	got := planner.Aggregate(nil, []domain.Dependency{dep("//lib:lib", info)})
	assert.Equal(t, []domain.SourceFile{src("lib/index.mjs"), src("lib/shared.js"), src("lib/index.js")}, got)
}

func TestAggregate_DefaultFilesOnlyWithoutModuleSources(t *testing.T) {
	modules := []domain.SourceFile{src("lib/index.js")}
	defaults := []domain.SourceFile{src("lib/index.js"), src("lib/README.md")}

	withModules := domain.NewModuleInfo().
		With(domain.ModuleSources, modules).
		With(domain.DefaultFiles, defaults)
	assert.Equal(t, modules, planner.DependencySources(withModules))

	// An empty module source shape is still present and suppresses the fallback.
	emptyModules := domain.NewModuleInfo().
		With(domain.ModuleSources, nil).
		With(domain.DefaultFiles, defaults)
	assert.Empty(t, planner.DependencySources(emptyModules))

	// Absence of a shape is not an error.
	assert.Empty(t, planner.DependencySources(domain.NewModuleInfo()))
}

func TestAggregate_ExternalPackageSourcesAreAdditive(t *testing.T) {
	info := domain.NewModuleInfo().
		With(domain.ModuleSources, []domain.SourceFile{src("lib/index.js")}).
		With(domain.ExternalPackageSources, []domain.SourceFile{src("node_modules/lodash/lodash.js")})

	got := planner.DependencySources(info)
	assert.Equal(t, []domain.SourceFile{src("lib/index.js"), src("node_modules/lodash/lodash.js")}, got)
}

func TestAggregate_DirectFilesComeFirst(t *testing.T) {
	entry := src("app/index.js")
	extra := src("app/extra.js")
	info := domain.NewModuleInfo().With(domain.DefaultFiles, []domain.SourceFile{extra, src("lib/x.js")})

	got := planner.Aggregate([]domain.SourceFile{entry, extra}, []domain.Dependency{dep("//lib:x", info)})
	assert.Equal(t, []domain.SourceFile{entry, extra, src("lib/x.js")}, got)
}
