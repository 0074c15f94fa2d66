package process

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/giantswarm/pgbootstrap/internal/command"
	"github.com/giantswarm/pgbootstrap/internal/logging"
	"github.com/giantswarm/pgbootstrap/internal/sentinel"
)

// ErrAlreadyStarted is returned when Start is called on a running Process.
const ErrAlreadyStarted = sentinel.Error("process already started")

// ErrNotStarted is returned by methods that need a started process.
const ErrNotStarted = sentinel.Error("process not started")

// ErrNilCmd is returned when Start is called with a nil *exec.Cmd.
const ErrNilCmd = sentinel.Error("cmd must not be nil")

// ErrEmptyCmdPath is returned when Start is called with an empty cmd.Path.
const ErrEmptyCmdPath = sentinel.Error("cmd.Path must not be empty")

// killDrainTimeout bounds how long ExitCode waits for cmd.Wait to deliver
// once the process is known to be gone (exited on its own or SIGKILLed).
// It only guards against cmd.Wait hanging on stuck I/O.
const killDrainTimeout = 10 * time.Second

// Process runs one child whose stdout and stderr are merged into a single
// pipe. The caller owns the read end returned by Start and consumes it
// line by line.
//
// Process is not safe for concurrent use; the readiness watcher drives it
// from a single goroutine.
type Process struct {
	cmd      *exec.Cmd
	output   *os.File
	waitDone <-chan error    // receives the cmd.Wait result exactly once
	exited   <-chan struct{} // closed when the process exits
	waited   bool
	waitErr  error
	name     string
	log      *slog.Logger
}

// New returns an unstarted Process. The name is used in errors and logs.
// Panics if name is empty. A nil logger uses the package logger.
func New(name string, logger *slog.Logger) *Process {
	if name == "" {
		panic("pgbootstrap: process name must not be empty")
	}
	return &Process{name: name, log: logging.OrDefault(logger)}
}

// Start starts cmd with its stdout and stderr both attached to the write
// end of one pipe and returns the read end. The read end reports EOF once
// every holder of the write end (the child and anything it spawned) has
// exited or closed it.
//
// A single goroutine calling cmd.Wait is started here so that exactly one
// Wait call is made per process.
func (p *Process) Start(cmd *exec.Cmd) (io.Reader, error) {
	if cmd == nil {
		return nil, ErrNilCmd
	}
	if cmd.Path == "" {
		return nil, ErrEmptyCmdPath
	}
	if p.cmd != nil {
		return nil, ErrAlreadyStarted
	}

	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("create %s output pipe: %w", p.name, err)
	}
	cmd.Stdout = w
	cmd.Stderr = w
	configureSysProcAttr(cmd)

	if err := cmd.Start(); err != nil {
		_ = r.Close()
		_ = w.Close()
		return nil, fmt.Errorf("start %s process: %w", p.name, err)
	}
	// The child has its own copy of the write end. Ours must be closed or
	// the reader never sees EOF.
	_ = w.Close()

	p.cmd = cmd
	p.output = r

	done := make(chan error, 1)
	exited := make(chan struct{})
	go func() {
		done <- cmd.Wait()
		close(exited)
	}()
	p.waitDone = done
	p.exited = exited

	p.log.Debug("process started", "process", p.name, "pid", cmd.Process.Pid)
	return r, nil
}

// Pid returns the child's process id, or 0 if it has not been started.
func (p *Process) Pid() int {
	if p.cmd == nil || p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// Exited returns a channel that is closed when the process exits. Returns
// nil if the process has not been started.
func (p *Process) Exited() <-chan struct{} {
	return p.exited
}

// Signal sends sig to the child. Returns os.ErrProcessDone (wrapped) if the
// child has already exited.
func (p *Process) Signal(sig os.Signal) error {
	if p.cmd == nil {
		return ErrNotStarted
	}
	if err := p.cmd.Process.Signal(sig); err != nil {
		return fmt.Errorf("signal %s with %v: %w", p.name, sig, err)
	}
	p.log.Debug("signal sent", "process", p.name, "pid", p.Pid(), "signal", sig)
	return nil
}

// Kill sends SIGKILL to the child. Killing a process that already exited
// is not an error.
func (p *Process) Kill() error {
	if p.cmd == nil {
		return ErrNotStarted
	}
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill %s: %w", p.name, err)
	}
	return nil
}

// ExitCode returns the child's exit code once it has exited. A child
// terminated by a signal reports -1. Call it only after Exited is closed
// or after Kill; it waits at most killDrainTimeout for the status.
func (p *Process) ExitCode() (int, error) {
	if p.cmd == nil {
		return 0, ErrNotStarted
	}
	if !p.waited {
		ok, err := drainDone(p.waitDone, killDrainTimeout)
		if !ok {
			return 0, fmt.Errorf("%s: timed out collecting exit status", p.name)
		}
		p.waited = true
		p.waitErr = err
	}
	code, err := command.ExitCode(p.waitErr)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", p.name, err)
	}
	return code, nil
}

// Close releases the read end of the output pipe.
func (p *Process) Close() {
	if p.output != nil {
		_ = p.output.Close()
		p.output = nil
	}
}

// drainDone reads from done with timeout as a hard upper bound. Returns
// true and the cmd.Wait error if the channel delivered in time, or false
// if the timeout elapsed.
func drainDone(done <-chan error, timeout time.Duration) (bool, error) {
	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case err := <-done:
		return true, err
	case <-t.C:
		return false, nil
	}
}
