package readiness

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/giantswarm/pgbootstrap/internal/command"
	"github.com/giantswarm/pgbootstrap/internal/diagnostics"
)

// These tests run real helper processes through /usr/bin/env sh -c in
// place of docker-entrypoint.sh.

func testEnviron() []string {
	return []string{"PATH=" + os.Getenv("PATH")}
}

func TestWatcher_Run_StopsAfterReady(t *testing.T) {
	t.Parallel()

	script := `trap "exit 0" INT
echo "database system is ready to accept connections"
echo "PostgreSQL init process complete; ready for start up."
echo "database system is ready to accept connections"
while :; do sleep 0.1; done`

	var mirror strings.Builder
	var states []State
	rec := command.NewRecorder()
	w := New(Options{
		DataDir:      t.TempDir(),
		Command:      []string{"sh", "-c", script},
		Environ:      testEnviron,
		Mirror:       &mirror,
		StopTimeout:  5 * time.Second,
		Exec:         rec,
		OnTransition: func(tr Transition) { states = append(states, tr.To) },
	})

	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	want := []State{StateInitComplete, StateShutdownRequested, StateStopped}
	if !slices.Equal(states, want) {
		t.Errorf("states = %v, want %v", states, want)
	}
	if strings.Count(mirror.String(), PhraseReady) != 2 {
		t.Errorf("mirror = %q, want both ready lines", mirror.String())
	}
	if n := len(rec.Calls()); n != 0 {
		t.Errorf("executor ran %d commands, want none on a clean exit", n)
	}
}

func TestWatcher_Run_NoReadyExitsOnEOF(t *testing.T) {
	t.Parallel()

	var states []State
	w := New(Options{
		DataDir:      t.TempDir(),
		Command:      []string{"sh", "-c", `echo "PostgreSQL init process complete"; echo bye`},
		Environ:      testEnviron,
		Exec:         command.NewRecorder(),
		OnTransition: func(tr Transition) { states = append(states, tr.To) },
	})

	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	want := []State{StateInitComplete, StateStopped}
	if !slices.Equal(states, want) {
		t.Errorf("states = %v, want %v", states, want)
	}
}

func TestWatcher_Run_Environment(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var mirror strings.Builder
	w := New(Options{
		DataDir: dir,
		Command: []string{"sh", "-c", `echo "$PGDATA|$POSTGRES_PASSWORD|$POSTGRES_HOST_AUTH_METHOD"`},
		Environ: func() []string {
			return append(testEnviron(), "PGDATA=/elsewhere", "POSTGRES_PASSWORD=secret")
		},
		Mirror: &mirror,
		Exec:   command.NewRecorder(),
	})

	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if want := dir + "|secret|trust\n"; mirror.String() != want {
		t.Errorf("child saw %q, want %q", mirror.String(), want)
	}
}

func TestWatcher_Run_NonZeroExit(t *testing.T) {
	t.Parallel()

	cmdline := []string{"sh", "-c", `echo "initdb: error"; exit 3`}
	w := New(Options{
		DataDir: t.TempDir(),
		Command: cmdline,
		Environ: testEnviron,
		Exec:    command.NewRecorder(),
	})

	err := w.Run(context.Background())
	var failure *command.Failure
	if !errors.As(err, &failure) {
		t.Fatalf("error = %v, want *command.Failure", err)
	}
	if failure.ExitCode != 3 || !slices.Equal(failure.Args, cmdline) {
		t.Errorf("failure = %+v, want exit code 3 for %q", failure, cmdline)
	}
}

func TestWatcher_Run_Timeout(t *testing.T) {
	t.Parallel()

	pidFile := filepath.Join(t.TempDir(), "pid")
	script := `echo $$ > ` + diagnostics.ShellQuote(pidFile) + `
trap "" INT
echo "PostgreSQL init process complete"
echo "database system is ready to accept connections"
exec sleep 30 >/dev/null 2>&1`

	rec := command.NewRecorder()
	w := New(Options{
		DataDir:     t.TempDir(),
		Command:     []string{"sh", "-c", script},
		Environ:     testEnviron,
		StopTimeout: 200 * time.Millisecond,
		Exec:        rec,
	})

	start := time.Now()
	err := w.Run(context.Background())
	if !errors.Is(err, ErrExitTimeout) {
		t.Fatalf("error = %v, want %v", err, ErrExitTimeout)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Errorf("Run took %v, want it bounded by the grace period", elapsed)
	}
	if got := rec.CommandLines(); !slices.Equal(got, []string{"pstree -ahltpu"}) {
		t.Errorf("diagnostics = %q, want the process tree exactly once", got)
	}

	data, rerr := os.ReadFile(pidFile)
	if rerr != nil {
		t.Fatalf("read pid file: %v", rerr)
	}
	pid, rerr := strconv.Atoi(strings.TrimSpace(string(data)))
	if rerr != nil {
		t.Fatalf("parse pid: %v", rerr)
	}
	deadline := time.Now().Add(5 * time.Second)
	for syscall.Kill(pid, 0) == nil {
		if time.Now().After(deadline) {
			t.Fatalf("process %d still alive after timeout", pid)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWatcher_Run_TimeoutDiagnosticFailureIsNotReturned(t *testing.T) {
	t.Parallel()

	rec := command.NewRecorder()
	rec.ExitWith("pstree -ahltpu", 127)
	w := New(Options{
		DataDir:     t.TempDir(),
		Command:     []string{"sh", "-c", `exec sleep 30 >/dev/null 2>&1`},
		Environ:     testEnviron,
		StopTimeout: 100 * time.Millisecond,
		Exec:        rec,
	})

	err := w.Run(context.Background())
	if !errors.Is(err, ErrExitTimeout) {
		t.Fatalf("error = %v, want %v", err, ErrExitTimeout)
	}
	if errors.Is(err, command.ErrCommandFailed) {
		t.Error("diagnostic failure must not replace the timeout error")
	}
}
