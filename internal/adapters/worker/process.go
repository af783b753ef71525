package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"go.trai.ch/bundlerule/internal/core/domain"
	"go.trai.ch/zerr"
)

// stopTimeout is how long a worker may take to exit after its stdin is closed.
const stopTimeout = 2 * time.Second

// process is one running persistent worker. It serves a single request at a time.
type process struct {
	key       string
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *os.File
	enc       *json.Encoder
	dec       *json.Decoder
	stderr    *lockedBuffer
	exited    chan struct{}
	lifecycle *Lifecycle
	stopOnce  sync.Once
}

func startProcess(key, executable, tool, dir string, env []string) (*process, error) {
	cmd := exec.Command(executable, PersistentWorkerFlag) //nolint:gosec // configured worker tool
	cmd.Args[0] = tool
	cmd.Dir = dir
	cmd.Env = env
	cmd.WaitDelay = stopTimeout

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to open worker stdin")
	}
	// The read end outlives cmd.Wait so a response written just before exit is not lost.
	stdout, stdoutWriter, err := os.Pipe()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to open worker stdout")
	}
	cmd.Stdout = stdoutWriter
	stderr := &lockedBuffer{}
	cmd.Stderr = stderr

	err = cmd.Start()
	_ = stdoutWriter.Close()
	if err != nil {
		_ = stdout.Close()
		return nil, zerr.With(zerr.Wrap(err, domain.ErrBundlerStartFailed.Error()), "tool", tool)
	}

	p := &process{
		key:    key,
		cmd:    cmd,
		stdin:  stdin,
		stdout: stdout,
		enc:    json.NewEncoder(stdin),
		dec:    json.NewDecoder(stdout),
		stderr: stderr,
		exited: make(chan struct{}),
	}
	go func() {
		_ = cmd.Wait()
		close(p.exited)
	}()
	return p, nil
}

// do sends req and waits for its response.
// Any error means the channel to the worker is broken and the process must not be reused.
func (p *process) do(ctx context.Context, req WorkRequest) (WorkResponse, error) {
	if err := p.enc.Encode(req); err != nil {
		return WorkResponse{}, zerr.Wrap(err, "failed to send work request")
	}

	type result struct {
		resp WorkResponse
		err  error
	}
	done := make(chan result, 1)
	go func() {
		var resp WorkResponse
		err := p.dec.Decode(&resp)
		done <- result{resp: resp, err: err}
	}()

	select {
	case <-ctx.Done():
		p.kill()
		return WorkResponse{}, zerr.Wrap(ctx.Err(), "work request canceled")
	case r := <-done:
		if r.err != nil {
			return WorkResponse{}, zerr.With(zerr.Wrap(r.err, "failed to read work response"), "stderr", p.stderr.String())
		}
		if r.resp.RequestID != req.RequestID {
			err := zerr.With(zerr.New("work response does not match request"), "request_id", req.RequestID)
			return WorkResponse{}, zerr.With(err, "response_id", r.resp.RequestID)
		}
		return r.resp, nil
	}
}

// stop closes the worker's stdin and waits for it to exit, killing it after stopTimeout.
func (p *process) stop() {
	p.stopOnce.Do(func() {
		if p.lifecycle != nil {
			p.lifecycle.Stop()
		}
		_ = p.stdin.Close()
		select {
		case <-p.exited:
		case <-time.After(stopTimeout):
			_ = p.cmd.Process.Kill()
			<-p.exited
		}
		_ = p.stdout.Close()
	})
}

func (p *process) kill() {
	p.stopOnce.Do(func() {
		if p.lifecycle != nil {
			p.lifecycle.Stop()
		}
		_ = p.cmd.Process.Kill()
		<-p.exited
		_ = p.stdin.Close()
		_ = p.stdout.Close()
	})
}

// lockedBuffer collects the worker's stderr.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
