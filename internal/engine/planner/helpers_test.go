package planner_test

import (
	"context"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
	"go.trai.ch/bundlerule/internal/core/domain"
	"go.trai.ch/bundlerule/internal/core/ports"
	"go.trai.ch/bundlerule/internal/engine/planner"
	"go.trai.ch/bundlerule/internal/engine/workspace"
)

const (
	testBundler = "node_modules/.bin/rollup"
	testWorker  = "node_modules/.bin/rollup-worker"
)

func label(s string) domain.Label {
	return domain.MustParseLabel(s)
}

func labelPtr(s string) *domain.Label {
	l := label(s)
	return &l
}

func labels(ss ...string) []domain.Label {
	out := make([]domain.Label, 0, len(ss))
	for _, s := range ss {
		out = append(out, label(s))
	}
	return out
}

func src(p string) domain.SourceFile {
	return domain.NewSourceFile(p)
}

func gen(p string) domain.SourceFile {
	return domain.NewGeneratedFile(domain.DefaultOutputRoot, p)
}

func rule(l string, mutate func(r *domain.Rule)) *domain.Rule {
	r := domain.NewRule(label(l))
	if mutate != nil {
		mutate(r)
	}
	return r
}

// memLoader serves packages from memory.
type memLoader map[string]*domain.Package

func (m memLoader) FindWorkspaceRoot(dir string) (string, error) {
	return dir, nil
}

func (m memLoader) LoadPackage(_, pkg string) (*domain.Package, error) {
	if p, ok := m[pkg]; ok {
		return p, nil
	}
	return nil, domain.ErrPackageNotFound
}

// testWorkspace assembles a workspace from rules, targets and source file paths.
type testWorkspace struct {
	t        *testing.T
	packages memLoader
	files    fstest.MapFS
}

func newTestWorkspace(t *testing.T, files ...string) *testWorkspace {
	t.Helper()
	w := &testWorkspace{t: t, packages: memLoader{}, files: fstest.MapFS{}}
	for _, f := range files {
		w.files[f] = &fstest.MapFile{Data: []byte("// " + f)}
	}
	return w
}

func (w *testWorkspace) pkg(path string) *domain.Package {
	if p, ok := w.packages[path]; ok {
		return p
	}
	p := domain.NewPackage(path, path+"/BUILD.bazel")
	w.packages[path] = p
	return p
}

func (w *testWorkspace) rule(r *domain.Rule) *testWorkspace {
	w.t.Helper()
	require.NoError(w.t, w.pkg(r.Label.Pkg).AddRule(r))
	return w
}

func (w *testWorkspace) target(t *domain.Target) *testWorkspace {
	w.t.Helper()
	require.NoError(w.t, w.pkg(t.Label.Pkg).AddTarget(t))
	return w
}

func (w *testWorkspace) build() *workspace.Workspace {
	return workspace.New("/ws", w.packages, w.files)
}

// recordingMaterializer captures materialization requests.
type recordingMaterializer struct {
	mu       sync.Mutex
	requests []ports.ConfigRequest
}

func (m *recordingMaterializer) Materialize(_ context.Context, req ports.ConfigRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	return nil
}

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, ports.Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End()                     {}
func (noopSpan) RecordError(error)        {}
func (noopSpan) SetAttribute(string, any) {}

func defaultOptions() planner.Options {
	return planner.Options{
		OutputRoot: domain.DefaultOutputRoot,
		Bundler:    testBundler,
		Worker:     testWorker,
	}
}

func newPlanner(opts planner.Options) (*planner.Planner, *recordingMaterializer) {
	m := &recordingMaterializer{}
	return planner.New(m, noopTracer{}, opts), m
}
