package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/exec"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/giantswarm/pgbootstrap/internal/logging"
	"github.com/giantswarm/pgbootstrap/internal/sentinel"
)

// ErrEmptyCommand is returned when a Request has no arguments.
const ErrEmptyCommand = sentinel.Error("command must not be empty")

// ErrCommandFailed matches every *Failure via errors.Is.
const ErrCommandFailed = sentinel.Error("command failed")

// DefaultEnvBinary is the launcher every command is run through, so that
// PATH lookup happens in the child with the child's environment.
const DefaultEnvBinary = "/usr/bin/env"

// Request describes one external command invocation.
type Request struct {
	// Args is the command line. Args[0] is resolved through PATH by the
	// env launcher. Must not be empty.
	Args []string

	// Env overrides are applied on top of the parent environment. Values
	// are never logged.
	Env map[string]string

	// Dir is the working directory. Empty inherits the parent's.
	Dir string

	// Capture collects stdout and stderr into Result.Output instead of
	// forwarding them to the executor's writers.
	Capture bool

	// ForwardSignals relays SIGINT and SIGTERM received by this process to
	// the child while it runs. Used for the foreground server hand-off.
	ForwardSignals bool
}

// CommandLine returns the space-joined command line for logs and errors.
func (r Request) CommandLine() string {
	return strings.Join(r.Args, " ")
}

// Result is the outcome of a command that ran to completion.
type Result struct {
	ExitCode int
	Output   []byte
}

// Failure reports a command that exited with a non-zero status.
type Failure struct {
	Args     []string
	ExitCode int
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return fmt.Sprintf("failed to run command: %s: unexpected return code: %d",
		strings.Join(f.Args, " "), f.ExitCode)
}

// Is makes every Failure match ErrCommandFailed.
func (f *Failure) Is(target error) bool {
	return target == ErrCommandFailed
}

// Check returns a *Failure for a non-zero exit code and nil otherwise.
func Check(args []string, exitCode int) error {
	if exitCode == 0 {
		return nil
	}
	return &Failure{Args: slices.Clone(args), ExitCode: exitCode}
}

// Executor runs external commands. Every external invocation in
// pgbootstrap goes through an Executor so failure handling is uniform.
type Executor interface {
	// Run executes req and waits for it to finish. A non-zero exit status
	// yields a *Failure alongside the Result; a command that could not be
	// started yields a wrapped start error and a zero Result.
	Run(ctx context.Context, req Request) (Result, error)
}

// Compile-time interface satisfaction check.
var _ Executor = (*Exec)(nil)

// Exec is the os/exec backed Executor.
type Exec struct {
	EnvBinary string    // Launcher; empty uses DefaultEnvBinary
	Stdin     io.Reader // nil reads from the null device
	Stdout    io.Writer // nil discards
	Stderr    io.Writer // nil discards
	Logger    *slog.Logger
}

// NewExec returns an Exec wired to the process's own standard streams,
// which is how every pipeline command runs in production.
func NewExec(logger *slog.Logger) *Exec {
	return &Exec{
		EnvBinary: DefaultEnvBinary,
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Logger:    logger,
	}
}

// Run implements Executor.
func (e *Exec) Run(ctx context.Context, req Request) (Result, error) {
	if len(req.Args) == 0 {
		return Result{}, ErrEmptyCommand
	}

	log := logging.OrDefault(e.Logger)
	log.Info("running command", "command", req.CommandLine())

	cmd := exec.CommandContext(ctx, e.envBinary(), req.Args...)
	cmd.Dir = req.Dir
	if req.Env != nil {
		cmd.Env = MergeEnv(os.Environ(), req.Env)
	}

	var captured bytes.Buffer
	if req.Capture {
		cmd.Stdout = &captured
		cmd.Stderr = &captured
	} else {
		cmd.Stdin = e.Stdin
		cmd.Stdout = e.Stdout
		cmd.Stderr = e.Stderr
	}

	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("start %s: %w", req.Args[0], err)
	}

	var err error
	if req.ForwardSignals {
		err = waitForwarding(cmd, log)
	} else {
		err = cmd.Wait()
	}

	code, waitErr := ExitCode(err)
	if waitErr != nil {
		return Result{}, fmt.Errorf("wait for %s: %w", req.Args[0], waitErr)
	}

	res := Result{ExitCode: code}
	if req.Capture {
		res.Output = captured.Bytes()
	}
	if err := Check(req.Args, code); err != nil {
		log.Debug("command failed", "command", req.CommandLine(), "exit_code", code)
		return res, err
	}
	return res, nil
}

func (e *Exec) envBinary() string {
	if e.EnvBinary == "" {
		return DefaultEnvBinary
	}
	return e.EnvBinary
}

// waitForwarding waits for cmd while relaying SIGINT and SIGTERM to it.
// The child decides how to react; for postgres SIGINT is a fast shutdown
// and SIGTERM a smart one.
func waitForwarding(cmd *exec.Cmd, log *slog.Logger) error {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	for {
		select {
		case err := <-done:
			return err
		case sig := <-sigs:
			log.Info("forwarding signal", "signal", sig, "pid", cmd.Process.Pid)
			if err := cmd.Process.Signal(sig); err != nil && !errors.Is(err, os.ErrProcessDone) {
				log.Warn("forward signal failed", "signal", sig, "error", err)
			}
		}
	}
}

// ExitCode interprets the error returned by cmd.Wait or cmd.Run. A nil
// error is exit code 0 and an *exec.ExitError carries the child's status
// (-1 when it was killed by a signal). Any other error is returned as-is
// because the child's status is unknown.
func ExitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 0, err
}

// MergeEnv returns base ("KEY=value" entries) with overlay applied. Keys
// present in overlay replace their base entries; new keys are appended in
// sorted order so the result is deterministic.
func MergeEnv(base []string, overlay map[string]string) []string {
	out := make([]string, 0, len(base)+len(overlay))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if _, ok := overlay[key]; ok {
			continue
		}
		out = append(out, kv)
	}
	for _, key := range slices.Sorted(maps.Keys(overlay)) {
		out = append(out, key+"="+overlay[key])
	}
	return out
}
