// Package shell runs one-shot bundler actions as child processes.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
	"go.trai.ch/bundlerule/internal/core/domain"
	"go.trai.ch/bundlerule/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/term"
)

// waitDelay bounds how long output is drained after the bundler exits or is killed.
const waitDelay = 2 * time.Second

// Executor implements ports.Executor using os/exec, and a pty when attached to a terminal.
type Executor struct {
	logger ports.Logger
	// UsePTY runs the bundler in a pseudo terminal so it keeps its colored progress output.
	UsePTY bool
}

// NewExecutor creates a new Executor. A pty is used when stderr is a terminal.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{
		logger: logger,
		UsePTY: term.IsTerminal(int(os.Stderr.Fd())),
	}
}

// Execute runs the action's command line in execRoot and waits for it to exit.
func (e *Executor) Execute(
	ctx context.Context,
	execRoot string,
	desc *domain.InvocationDescriptor,
) (*domain.ExecutionResult, error) {
	if err := Prepare(execRoot, desc); err != nil {
		return nil, err
	}

	argv := desc.CommandLine()
	env := ResolveEnvironment(os.Environ(), desc.Env)

	cmd := exec.CommandContext(ctx, ResolveExecutable(argv[0], execRoot, env), argv[1:]...) //nolint:gosec // configured tool
	cmd.Args[0] = argv[0]
	cmd.Dir = execRoot
	cmd.Env = env
	cmd.WaitDelay = waitDelay

	sink := newOutputSink(e.logger, desc.Label, desc.Hints.Silence == domain.SilenceOnSuccess)

	start := time.Now()
	err := e.run(cmd, sink)
	sink.Close()

	result := &domain.ExecutionResult{
		Label:    desc.Label,
		Duration: time.Since(start),
	}
	if sink.buffered {
		result.Output = sink.String()
	}

	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		result.ExitCode = -1
		if ctx.Err() != nil {
			return result, domain.ExecutionError(zerr.Wrap(err, domain.ErrBundlerFailed.Error()))
		}
		return result, domain.ExecutionError(zerr.With(zerr.Wrap(err, domain.ErrBundlerStartFailed.Error()), "tool", argv[0]))
	}

	result.ExitCode = exitErr.ExitCode()
	result.Output = sink.String()
	sink.Flush()

	failure := zerr.With(zerr.Wrap(err, domain.ErrBundlerFailed.Error()), "exit_code", result.ExitCode)
	if result.Output != "" {
		failure = zerr.With(failure, "output", result.Output)
	}
	return result, domain.ExecutionError(failure)
}

func (e *Executor) run(cmd *exec.Cmd, out io.Writer) error {
	if !e.UsePTY {
		cmd.Stdout = out
		cmd.Stderr = out
		return cmd.Run()
	}

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return zerr.Wrap(err, "failed to start pty")
	}

	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		defer func() { _ = ptmx.Close() }()
		// The pty merges stdout and stderr. Reading ends with EIO once the child exits.
		_, _ = io.Copy(out, ptmx)
	}()

	err = cmd.Wait()
	<-ioDone
	return err
}

// outputSink receives bundler output. Lines are logged as they arrive, or kept
// until the action fails when buffered is set. The full output is always retained.
type outputSink struct {
	mu       sync.Mutex
	buffered bool
	lines    *logWriter
	all      bytes.Buffer
}

func newOutputSink(logger ports.Logger, label domain.Label, buffered bool) *outputSink {
	return &outputSink{
		buffered: buffered,
		lines:    newLogWriter(logger, label),
	}
}

func (s *outputSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.all.Write(p)
	if s.buffered {
		return len(p), nil
	}
	return s.lines.Write(p)
}

// Close logs a trailing partial line.
func (s *outputSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.buffered {
		_ = s.lines.Close()
	}
}

// Flush logs the held back output of a buffered sink.
func (s *outputSink) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.buffered {
		return
	}
	_, _ = s.lines.Write(s.all.Bytes())
	_ = s.lines.Close()
}

func (s *outputSink) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.all.String()
}

// logWriter splits a byte stream into lines and logs each one.
type logWriter struct {
	logger ports.Logger
	prefix string
	buf    []byte
}

func newLogWriter(logger ports.Logger, label domain.Label) *logWriter {
	return &logWriter{logger: logger, prefix: "[" + label.String() + "] "}
}

// NewLogWriter returns a writer logging each line it receives, prefixed with label.
// Close logs a trailing partial line.
func NewLogWriter(logger ports.Logger, label domain.Label) io.WriteCloser {
	return newLogWriter(logger, label)
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	w.buf = append(w.buf, p...)

	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.logLine(w.buf[:i])
		w.buf = w.buf[i+1:]
	}

	return len(p), nil
}

func (w *logWriter) Close() error {
	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *logWriter) logLine(line []byte) {
	// PTYs may introduce \r.
	msg := strings.TrimSuffix(string(line), "\r")
	w.logger.Info(w.prefix + msg)
}
