package runner_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/bundlerule/internal/core/domain"
	"go.trai.ch/bundlerule/internal/core/ports"
	"go.trai.ch/bundlerule/internal/core/ports/mocks"
	"go.trai.ch/bundlerule/internal/engine/runner"
	"go.uber.org/mock/gomock"
)

const execRoot = "/workspace"

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, ports.Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End() {}

func (noopSpan) RecordError(error) {}

func (noopSpan) SetAttribute(string, any) {}

type fixture struct {
	executor *mocks.MockExecutor
	workers  *mocks.MockWorkerPool
	verifier *mocks.MockVerifier
	hasher   *mocks.MockHasher
	runner   *runner.Runner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &fixture{
		executor: mocks.NewMockExecutor(ctrl),
		workers:  mocks.NewMockWorkerPool(ctrl),
		verifier: mocks.NewMockVerifier(ctrl),
		hasher:   mocks.NewMockHasher(ctrl),
	}
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()

	f.verifier.EXPECT().VerifyOutputs(execRoot, gomock.Any()).Return(nil, nil).AnyTimes()
	f.hasher.EXPECT().ComputeOutputHash(execRoot, gomock.Any()).Return("0123456789abcdef", nil).AnyTimes()

	f.runner = runner.New(f.executor, f.workers, f.verifier, f.hasher, noopTracer{}, log)
	return f
}

func action(l string, deps ...string) *domain.InvocationDescriptor {
	desc := &domain.InvocationDescriptor{
		Label:     domain.MustParseLabel(l),
		Mnemonic:  domain.Mnemonic,
		Tool:      domain.Tool{Path: "node_modules/.bin/rollup"},
		Transport: domain.OneShot,
		OutputPlan: domain.FileSetPlan([]domain.OutputEntry{
			{Chunk: "bundle", File: domain.NewGeneratedFile(domain.DefaultOutputRoot, "app/bundle.js")},
		}),
	}
	for _, d := range deps {
		desc.DependsOn = append(desc.DependsOn, domain.MustParseLabel(d))
	}
	return desc
}

func graphOf(t *testing.T, actions ...*domain.InvocationDescriptor) *domain.ActionGraph {
	t.Helper()
	g := domain.NewActionGraph()
	for _, a := range actions {
		require.NoError(t, g.AddAction(a))
	}
	require.NoError(t, g.Validate())
	return g
}

func succeed(_ context.Context, _ string, desc *domain.InvocationDescriptor) (*domain.ExecutionResult, error) {
	return &domain.ExecutionResult{Label: desc.Label, Duration: time.Millisecond}, nil
}

func fail(_ context.Context, _ string, desc *domain.InvocationDescriptor) (*domain.ExecutionResult, error) {
	err := domain.ExecutionError(errors.Join(domain.ErrBundlerFailed, errors.New("exit status 1")))
	return &domain.ExecutionResult{Label: desc.Label, ExitCode: 1}, err
}

func label(l string) domain.Label {
	return domain.MustParseLabel(l)
}

func TestRunner_Run_DependencyOrder(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)

		// //app:a consumes //app:b and //app:c, which both consume //app:d.
		g := graphOf(t,
			action("//app:a", "//app:b", "//app:c"),
			action("//app:b", "//app:d"),
			action("//app:c", "//app:d"),
			action("//app:d"),
		)

		var mu sync.Mutex
		var order []string
		f.executor.EXPECT().Execute(gomock.Any(), execRoot, gomock.Any()).DoAndReturn(
			func(ctx context.Context, root string, desc *domain.InvocationDescriptor) (*domain.ExecutionResult, error) {
				time.Sleep(10 * time.Millisecond)
				mu.Lock()
				order = append(order, desc.Label.String())
				mu.Unlock()
				return succeed(ctx, root, desc)
			}).Times(4)

		results, err := f.runner.Run(t.Context(), execRoot, g, runner.Options{Jobs: 2})
		require.NoError(t, err)
		require.Len(t, results, 4)

		assert.Equal(t, "//app:d", order[0])
		assert.Equal(t, "//app:a", order[3])
		for _, res := range results {
			assert.Equal(t, "0123456789abcdef", res.OutputDigest)
		}
		for l, s := range f.runner.Statuses() {
			assert.Equal(t, runner.StatusCompleted, s, l.String())
		}
	})
}

func TestRunner_Run_FailureSkipsDependents(t *testing.T) {
	f := newFixture(t)

	g := graphOf(t,
		action("//app:a", "//app:b"),
		action("//app:b", "//app:d"),
		action("//app:d"),
	)

	f.executor.EXPECT().Execute(gomock.Any(), execRoot, gomock.Any()).DoAndReturn(fail).Times(1)

	results, err := f.runner.Run(t.Context(), execRoot, g, runner.Options{Jobs: 4})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBuildExecutionFailed)
	assert.ErrorIs(t, err, domain.ErrExecution)
	assert.ErrorContains(t, err, domain.ErrBundlerFailed.Error())

	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].ExitCode)

	statuses := f.runner.Statuses()
	assert.Equal(t, runner.StatusFailed, statuses[label("//app:d")])
	assert.Equal(t, runner.StatusSkipped, statuses[label("//app:b")])
	assert.Equal(t, runner.StatusSkipped, statuses[label("//app:a")])
}

func TestRunner_Run_FailureCancelsRunningActions(t *testing.T) {
	f := newFixture(t)

	g := graphOf(t, action("//app:broken"), action("//app:slow"))

	f.executor.EXPECT().Execute(gomock.Any(), execRoot, gomock.Any()).DoAndReturn(
		func(ctx context.Context, root string, desc *domain.InvocationDescriptor) (*domain.ExecutionResult, error) {
			if desc.Label.Name == "broken" {
				return fail(ctx, root, desc)
			}
			<-ctx.Done()
			return &domain.ExecutionResult{Label: desc.Label, ExitCode: -1}, domain.ExecutionError(ctx.Err())
		}).MinTimes(1).MaxTimes(2)

	_, err := f.runner.Run(t.Context(), execRoot, g, runner.Options{Jobs: 2})
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrBundlerFailed.Error())
	assert.NotErrorIs(t, err, context.Canceled, "interrupted actions are not reported as failures")

	statuses := f.runner.Statuses()
	assert.Equal(t, runner.StatusFailed, statuses[label("//app:broken")])
	assert.Equal(t, runner.StatusCanceled, statuses[label("//app:slow")])
}

func TestRunner_Run_KeepGoing(t *testing.T) {
	f := newFixture(t)

	g := graphOf(t,
		action("//app:broken"),
		action("//app:after", "//app:broken"),
		action("//app:independent"),
	)

	f.executor.EXPECT().Execute(gomock.Any(), execRoot, gomock.Any()).DoAndReturn(
		func(ctx context.Context, root string, desc *domain.InvocationDescriptor) (*domain.ExecutionResult, error) {
			if desc.Label.Name == "broken" {
				return fail(ctx, root, desc)
			}
			return succeed(ctx, root, desc)
		}).Times(2)

	results, err := f.runner.Run(t.Context(), execRoot, g, runner.Options{Jobs: 1, KeepGoing: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBuildExecutionFailed)
	assert.Len(t, results, 2)

	statuses := f.runner.Statuses()
	assert.Equal(t, runner.StatusFailed, statuses[label("//app:broken")])
	assert.Equal(t, runner.StatusSkipped, statuses[label("//app:after")])
	assert.Equal(t, runner.StatusCompleted, statuses[label("//app:independent")])
}

func TestRunner_Run_Transport(t *testing.T) {
	worker := action("//app:worker")
	worker.Transport = domain.PersistentWorker

	t.Run("worker actions use the pool", func(t *testing.T) {
		f := newFixture(t)
		f.workers.EXPECT().Execute(gomock.Any(), execRoot, worker).DoAndReturn(succeed).Times(1)
		f.executor.EXPECT().Execute(gomock.Any(), execRoot, gomock.Any()).DoAndReturn(succeed).Times(1)

		_, err := f.runner.Run(t.Context(), execRoot, graphOf(t, worker, action("//app:oneshot")), runner.Options{})
		require.NoError(t, err)
	})

	t.Run("no workers runs one-shot", func(t *testing.T) {
		f := newFixture(t)
		f.executor.EXPECT().Execute(gomock.Any(), execRoot, worker).DoAndReturn(succeed).Times(1)

		_, err := f.runner.Run(t.Context(), execRoot, graphOf(t, worker), runner.Options{NoWorkers: true})
		require.NoError(t, err)
	})
}

func TestRunner_Run_MissingOutputs(t *testing.T) {
	ctrl := gomock.NewController(t)
	executor := mocks.NewMockExecutor(ctrl)
	verifier := mocks.NewMockVerifier(ctrl)
	hasher := mocks.NewMockHasher(ctrl)
	log := mocks.NewMockLogger(ctrl)

	desc := action("//app:bundle")
	executor.EXPECT().Execute(gomock.Any(), execRoot, desc).DoAndReturn(succeed)
	verifier.EXPECT().VerifyOutputs(execRoot, desc.OutputPlan).Return([]string{"bazel-out/bin/app/bundle.js"}, nil)

	r := runner.New(executor, mocks.NewMockWorkerPool(ctrl), verifier, hasher, noopTracer{}, log)
	results, err := r.Run(t.Context(), execRoot, graphOf(t, desc), runner.Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBuildExecutionFailed)
	assert.ErrorIs(t, err, domain.ErrExecution)
	assert.ErrorContains(t, err, domain.ErrOutputMissing.Error())
	require.Len(t, results, 1)
	assert.Empty(t, results[0].OutputDigest)
	assert.Equal(t, runner.StatusFailed, r.Statuses()[desc.Label])
}

func TestRunner_Run_JobsLimit(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)

		g := graphOf(t, action("//app:a"), action("//app:b"), action("//app:c"))

		var running, peak atomic.Int32
		f.executor.EXPECT().Execute(gomock.Any(), execRoot, gomock.Any()).DoAndReturn(
			func(ctx context.Context, root string, desc *domain.InvocationDescriptor) (*domain.ExecutionResult, error) {
				n := running.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				running.Add(-1)
				return succeed(ctx, root, desc)
			}).Times(3)

		_, err := f.runner.Run(t.Context(), execRoot, g, runner.Options{Jobs: 1})
		require.NoError(t, err)
		assert.Equal(t, int32(1), peak.Load())
	})
}

func TestRunner_Run_Canceled(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	results, err := f.runner.Run(ctx, execRoot, graphOf(t, action("//app:a"), action("//app:b", "//app:a")), runner.Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBuildExecutionFailed)
	assert.ErrorIs(t, err, domain.ErrExecution)
	assert.Empty(t, results)

	statuses := f.runner.Statuses()
	assert.True(t, slices.Equal(
		[]runner.ActionStatus{statuses[label("//app:a")], statuses[label("//app:b")]},
		[]runner.ActionStatus{runner.StatusCanceled, runner.StatusCanceled},
	))
}

type captureLogger struct {
	mu    sync.Mutex
	infos []string
}

func (l *captureLogger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, msg)
}

func (l *captureLogger) Warn(string) {}

func (l *captureLogger) Error(error) {}

func TestRunner_Run_Silence(t *testing.T) {
	tests := []struct {
		name    string
		silence domain.SilenceLevel
		want    []string
	}{
		{
			name:    "progress and completion are logged",
			silence: domain.SilenceNone,
			want:    []string{"Bundling JavaScript app/bundle.js [rollup]", "built //app:bundle in 1ms"},
		},
		{
			name:    "silent actions log nothing",
			silence: domain.SilenceAll,
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			log := &captureLogger{}
			r := runner.New(f.executor, f.workers, f.verifier, f.hasher, noopTracer{}, log)

			desc := action("//app:bundle")
			desc.ProgressMessage = "Bundling JavaScript app/bundle.js [rollup]"
			desc.Hints.Silence = tt.silence
			f.executor.EXPECT().Execute(gomock.Any(), execRoot, desc).DoAndReturn(succeed)

			_, err := r.Run(t.Context(), execRoot, graphOf(t, desc), runner.Options{Jobs: 1})
			require.NoError(t, err)
			assert.Equal(t, tt.want, log.infos)
		})
	}
}
