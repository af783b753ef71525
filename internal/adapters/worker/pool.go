// Package worker runs bundler actions on persistent worker processes.
package worker

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"go.trai.ch/bundlerule/internal/adapters/shell"
	"go.trai.ch/bundlerule/internal/core/domain"
	"go.trai.ch/bundlerule/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultIdleTimeout is how long an unused worker process is kept alive.
const DefaultIdleTimeout = 30 * time.Second

// Pool implements ports.WorkerPool. Processes are keyed by tool, execution root and
// environment, and each serves one request at a time.
type Pool struct {
	logger      ports.Logger
	idleTimeout time.Duration

	mu     sync.Mutex
	closed bool
	nextID int
	idle   map[string][]*process
	all    map[*process]struct{}
}

// NewPool creates an empty Pool.
func NewPool(logger ports.Logger, idleTimeout time.Duration) *Pool {
	return &Pool{
		logger:      logger,
		idleTimeout: idleTimeout,
		idle:        make(map[string][]*process),
		all:         make(map[*process]struct{}),
	}
}

// SetIdleTimeout changes the idle timeout of processes started from now on.
func (p *Pool) SetIdleTimeout(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.idleTimeout = d
}

// Execute sends the action's arguments to a worker process and waits for the response.
func (p *Pool) Execute(
	ctx context.Context,
	execRoot string,
	desc *domain.InvocationDescriptor,
) (*domain.ExecutionResult, error) {
	if err := shell.Prepare(execRoot, desc); err != nil {
		return nil, err
	}

	env := shell.ResolveEnvironment(os.Environ(), desc.Env)
	proc, id, err := p.acquire(execRoot, desc.Tool.Path, env)
	if err != nil {
		return nil, domain.ExecutionError(zerr.With(err, "tool", desc.Tool.Path))
	}

	start := time.Now()
	resp, err := proc.do(ctx, WorkRequest{Arguments: desc.Arguments, RequestID: id})
	result := &domain.ExecutionResult{
		Label:    desc.Label,
		Duration: time.Since(start),
	}
	if err != nil {
		p.discard(proc)
		result.ExitCode = -1
		return result, domain.ExecutionError(zerr.Wrap(err, domain.ErrWorkerFailed.Error()))
	}
	p.release(proc)

	result.ExitCode = resp.ExitCode
	silenced := desc.Hints.Silence == domain.SilenceOnSuccess
	if silenced {
		result.Output = resp.Output
	}
	if !silenced || resp.ExitCode != 0 {
		lines := shell.NewLogWriter(p.logger, desc.Label)
		_, _ = lines.Write([]byte(resp.Output))
		_ = lines.Close()
	}

	if resp.ExitCode != 0 {
		result.Output = resp.Output
		failure := zerr.With(domain.ErrWorkerFailed, "exit_code", resp.ExitCode)
		if resp.Output != "" {
			failure = zerr.With(failure, "output", resp.Output)
		}
		return result, domain.ExecutionError(failure)
	}
	return result, nil
}

// acquire returns an idle process for the key, starting one when none is free.
func (p *Pool) acquire(execRoot, tool string, env []string) (*process, int, error) {
	key := tool + "\x00" + execRoot + "\x00" + strings.Join(env, "\x00")

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, 0, domain.ErrWorkerPoolClosed
	}
	p.nextID++
	id := p.nextID
	if free := p.idle[key]; len(free) > 0 {
		proc := free[len(free)-1]
		p.idle[key] = free[:len(free)-1]
		proc.lifecycle.Busy()
		p.mu.Unlock()
		return proc, id, nil
	}
	timeout := p.idleTimeout
	p.mu.Unlock()

	proc, err := startProcess(key, shell.ResolveExecutable(tool, execRoot, env), tool, execRoot, env)
	if err != nil {
		return nil, 0, err
	}
	proc.lifecycle = NewLifecycle(timeout, func() { p.expire(proc) })

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		go proc.stop()
		return nil, 0, domain.ErrWorkerPoolClosed
	}
	p.all[proc] = struct{}{}
	return proc, id, nil
}

// release returns a healthy process to the idle list.
func (p *Pool) release(proc *process) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		go proc.stop()
		return
	}
	p.idle[proc.key] = append(p.idle[proc.key], proc)
	proc.lifecycle.Idle()
}

// discard kills a process whose channel broke.
func (p *Pool) discard(proc *process) {
	p.mu.Lock()
	delete(p.all, proc)
	p.mu.Unlock()
	proc.kill()
}

// expire stops a process that stayed idle for the idle timeout.
func (p *Pool) expire(proc *process) {
	p.mu.Lock()
	free := p.idle[proc.key]
	found := false
	for i, candidate := range free {
		if candidate == proc {
			p.idle[proc.key] = append(free[:i:i], free[i+1:]...)
			found = true
			break
		}
	}
	if found {
		delete(p.all, proc)
	}
	p.mu.Unlock()

	if found {
		proc.stop()
	}
}

// Size returns the number of running worker processes.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.all)
}

// Close stops every worker process. Later requests fail with domain.ErrWorkerPoolClosed.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	procs := make([]*process, 0, len(p.all))
	for proc := range p.all {
		procs = append(procs, proc)
	}
	p.all = make(map[*process]struct{})
	p.idle = make(map[string][]*process)
	p.mu.Unlock()

	var wg sync.WaitGroup
	for _, proc := range procs {
		wg.Go(proc.stop)
	}
	wg.Wait()
	return nil
}
