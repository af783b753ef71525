// Package runner executes a planned action graph.
package runner

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"runtime"
	"strings"
	"sync"
	"time"

	"go.trai.ch/bundlerule/internal/core/domain"
	"go.trai.ch/bundlerule/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// ActionStatus represents the status of an action during a run.
type ActionStatus string

const (
	// StatusPending indicates the action is waiting for its dependencies.
	StatusPending ActionStatus = "Pending"
	// StatusRunning indicates the action is currently executing.
	StatusRunning ActionStatus = "Running"
	// StatusCompleted indicates the action succeeded and its outputs were verified.
	StatusCompleted ActionStatus = "Completed"
	// StatusFailed indicates the action or the verification of its outputs failed.
	StatusFailed ActionStatus = "Failed"
	// StatusSkipped indicates a dependency of the action did not complete.
	StatusSkipped ActionStatus = "Skipped"
	// StatusCanceled indicates the run was canceled before the action finished.
	StatusCanceled ActionStatus = "Canceled"
)

// Options configure a run.
type Options struct {
	// Jobs bounds the number of actions executing at once. Zero means runtime.NumCPU().
	Jobs int
	// NoWorkers runs persistent worker actions as one-shot processes.
	NoWorkers bool
	// KeepGoing keeps executing actions that do not depend on a failed action.
	KeepGoing bool
}

// Runner executes the actions of an ActionGraph in dependency order.
// A Runner serves one Run at a time.
type Runner struct {
	executor ports.Executor
	workers  ports.WorkerPool
	verifier ports.Verifier
	hasher   ports.Hasher
	tracer   ports.Tracer
	logger   ports.Logger

	mu     sync.RWMutex
	status map[domain.Label]ActionStatus
}

// New creates a Runner.
func New(
	executor ports.Executor,
	workers ports.WorkerPool,
	verifier ports.Verifier,
	hasher ports.Hasher,
	tracer ports.Tracer,
	logger ports.Logger,
) *Runner {
	return &Runner{
		executor: executor,
		workers:  workers,
		verifier: verifier,
		hasher:   hasher,
		tracer:   tracer,
		logger:   logger,
		status:   make(map[domain.Label]ActionStatus),
	}
}

// Statuses returns a copy of the status of every action of the last run.
func (r *Runner) Statuses() map[domain.Label]ActionStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.status)
}

func (r *Runner) updateStatus(l domain.Label, status ActionStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status[l] = status
}

func (r *Runner) getStatus(l domain.Label) ActionStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status[l]
}

// Run executes every action of graph with execRoot as working directory.
// The graph must be validated. Results are returned in execution order for
// every action that ran, also when the run fails.
func (r *Runner) Run(
	ctx context.Context,
	execRoot string,
	graph *domain.ActionGraph,
	opts Options,
) ([]*domain.ExecutionResult, error) {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	ctx, span := r.tracer.Start(ctx, "run")
	defer span.End()
	span.SetAttribute("actions", graph.Len())
	span.SetAttribute("jobs", jobs)

	state := r.newRunState(execRoot, graph, opts, jobs)

	g, gctx := errgroup.WithContext(ctx)
	for desc := range graph.Walk() {
		g.Go(func() error {
			return state.runAction(gctx, desc)
		})
	}
	_ = g.Wait()

	results := make([]*domain.ExecutionResult, 0, graph.Len())
	for desc := range graph.Walk() {
		if res, ok := state.results[desc.Label]; ok {
			results = append(results, res)
		}
	}

	err := state.errs
	if err == nil && ctx.Err() != nil {
		err = domain.ExecutionError(zerr.Wrap(ctx.Err(), "run canceled"))
	}
	if err != nil {
		span.RecordError(err)
		return results, errors.Join(domain.ErrBuildExecutionFailed, err)
	}
	return results, nil
}

type runState struct {
	r        *Runner
	execRoot string
	opts     Options
	sem      *semaphore.Weighted
	done     map[domain.Label]chan struct{}

	mu      sync.Mutex
	results map[domain.Label]*domain.ExecutionResult
	errs    error
}

func (r *Runner) newRunState(execRoot string, graph *domain.ActionGraph, opts Options, jobs int) *runState {
	state := &runState{
		r:        r,
		execRoot: execRoot,
		opts:     opts,
		sem:      semaphore.NewWeighted(int64(jobs)),
		done:     make(map[domain.Label]chan struct{}, graph.Len()),
		results:  make(map[domain.Label]*domain.ExecutionResult, graph.Len()),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = make(map[domain.Label]ActionStatus, graph.Len())
	for desc := range graph.Walk() {
		state.done[desc.Label] = make(chan struct{})
		r.status[desc.Label] = StatusPending
	}
	return state
}

// runAction waits for the dependencies of desc and executes it once they all completed.
// The returned error cancels the remaining actions.
func (s *runState) runAction(ctx context.Context, desc *domain.InvocationDescriptor) error {
	defer close(s.done[desc.Label])

	for _, dep := range desc.DependsOn {
		select {
		case <-s.done[dep]:
		case <-ctx.Done():
			s.r.updateStatus(desc.Label, StatusCanceled)
			return nil
		}
		if status := s.r.getStatus(dep); status != StatusCompleted {
			if status == StatusCanceled {
				s.r.updateStatus(desc.Label, StatusCanceled)
			} else {
				s.r.updateStatus(desc.Label, StatusSkipped)
			}
			return nil
		}
	}

	if ctx.Err() != nil {
		s.r.updateStatus(desc.Label, StatusCanceled)
		return nil
	}
	if err := s.sem.Acquire(ctx, 1); err != nil {
		s.r.updateStatus(desc.Label, StatusCanceled)
		return nil
	}
	defer s.sem.Release(1)

	s.r.updateStatus(desc.Label, StatusRunning)
	res, err := s.r.execute(ctx, s.execRoot, desc, s.opts)

	s.mu.Lock()
	defer s.mu.Unlock()
	if res != nil {
		s.results[desc.Label] = res
	}
	if err == nil {
		s.r.updateStatus(desc.Label, StatusCompleted)
		return nil
	}
	if ctx.Err() != nil {
		// Interrupted because another action failed or the run was canceled.
		s.r.updateStatus(desc.Label, StatusCanceled)
		return nil
	}

	s.r.updateStatus(desc.Label, StatusFailed)
	s.errs = errors.Join(s.errs, err)
	if s.opts.KeepGoing {
		return nil
	}
	return err
}

// execute runs one action on its transport and verifies the declared outputs.
func (r *Runner) execute(
	ctx context.Context,
	execRoot string,
	desc *domain.InvocationDescriptor,
	opts Options,
) (*domain.ExecutionResult, error) {
	label := desc.Label.String()

	ctx, span := r.tracer.Start(ctx, "execute "+label)
	defer span.End()
	span.SetAttribute("mnemonic", desc.Mnemonic)
	span.SetAttribute("transport", desc.Transport.String())

	silent := desc.Hints.Silence == domain.SilenceAll
	if desc.ProgressMessage != "" && !silent {
		r.logger.Info(desc.ProgressMessage)
	}

	executor := r.executor
	if desc.Transport == domain.PersistentWorker && !opts.NoWorkers {
		executor = r.workers
	}

	res, err := executor.Execute(ctx, execRoot, desc)
	if err != nil {
		err = domain.Annotate(err, "label", label)
		span.RecordError(err)
		return res, err
	}
	span.SetAttribute("exit_code", res.ExitCode)

	missing, err := r.verifier.VerifyOutputs(execRoot, desc.OutputPlan)
	if err != nil {
		err = domain.ExecutionError(zerr.With(zerr.Wrap(err, "failed to verify outputs"), "label", label))
		span.RecordError(err)
		return res, err
	}
	if len(missing) > 0 {
		err = zerr.With(zerr.With(domain.ErrOutputMissing, "label", label), "missing", strings.Join(missing, ", "))
		err = domain.ExecutionError(err)
		span.RecordError(err)
		return res, err
	}

	digest, err := r.hasher.ComputeOutputHash(execRoot, desc.OutputPlan)
	if err != nil {
		err = domain.ExecutionError(zerr.With(zerr.Wrap(err, "failed to hash outputs"), "label", label))
		span.RecordError(err)
		return res, err
	}
	res.OutputDigest = digest
	span.SetAttribute("output_digest", digest)

	if !silent {
		r.logger.Info(fmt.Sprintf("built %s in %s", label, res.Duration.Round(time.Millisecond)))
	}
	return res, nil
}
