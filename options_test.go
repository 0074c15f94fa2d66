package pgbootstrap_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/giantswarm/pgbootstrap"
)

// panicTestCase defines a test case for option validation panic tests.
type panicTestCase struct {
	name     string
	panics   bool
	panicMsg string
	fn       func()
}

// requirePanics calls fn and verifies it panics (or not) with the expected message.
func requirePanics(t *testing.T, shouldPanic bool, wantMsg string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if shouldPanic && r == nil {
			t.Fatal("expected panic but didn't get one")
		}
		if !shouldPanic && r != nil {
			t.Fatalf("unexpected panic: %v", r)
		}
		if shouldPanic && r != nil {
			msg := fmt.Sprint(r)
			if !strings.HasPrefix(msg, wantMsg) {
				t.Fatalf("expected panic message starting with %q, got %q", wantMsg, msg)
			}
		}
	}()
	fn()
}

// runPanicTests runs a slice of panic test cases using requirePanics.
func runPanicTests(t *testing.T, tests []panicTestCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			requirePanics(t, tt.panics, tt.panicMsg, tt.fn)
		})
	}
}

func TestWithStopTimeoutPanicsOnInvalid(t *testing.T) {
	t.Parallel()
	runPanicTests(t, []panicTestCase{
		{
			name:     "zero",
			panics:   true,
			panicMsg: "pgbootstrap: stop timeout must be greater than 0, got 0s",
			fn:       func() { pgbootstrap.WithStopTimeout(0) },
		},
		{
			name:     "negative",
			panics:   true,
			panicMsg: "pgbootstrap: stop timeout must be greater than 0, got -1s",
			fn:       func() { pgbootstrap.WithStopTimeout(-1 * time.Second) },
		},
		{name: "valid", fn: func() { pgbootstrap.WithStopTimeout(time.Second) }},
	})
}

func TestWithEmptyPathsPanic(t *testing.T) {
	t.Parallel()
	runPanicTests(t, []panicTestCase{
		{
			name:     "data dir",
			panics:   true,
			panicMsg: "pgbootstrap: data directory must not be empty",
			fn:       func() { pgbootstrap.WithDataDir("") },
		},
		{
			name:     "config path",
			panics:   true,
			panicMsg: "pgbootstrap: pgbackrest config path must not be empty",
			fn:       func() { pgbootstrap.WithConfigPath("") },
		},
		{
			name:     "staging dir",
			panics:   true,
			panicMsg: "pgbootstrap: staging directory must not be empty",
			fn:       func() { pgbootstrap.WithStagingDir("") },
		},
		{
			name:     "lock path",
			panics:   true,
			panicMsg: "pgbootstrap: lock path must not be empty",
			fn:       func() { pgbootstrap.WithLockPath("") },
		},
		{name: "valid data dir", fn: func() { pgbootstrap.WithDataDir("/data") }},
	})
}

func TestWithEnumsPanicOnUnknown(t *testing.T) {
	t.Parallel()
	runPanicTests(t, []panicTestCase{
		{
			name:     "backup target",
			panics:   true,
			panicMsg: `pgbootstrap: unknown backup target "staging"`,
			fn:       func() { pgbootstrap.WithBackupTarget("staging") },
		},
		{
			name:     "handoff",
			panics:   true,
			panicMsg: `pgbootstrap: unknown hand-off mode "fork"`,
			fn:       func() { pgbootstrap.WithHandoff("fork") },
		},
		{name: "prod", fn: func() { pgbootstrap.WithBackupTarget(pgbootstrap.BackupProd) }},
		{name: "exec", fn: func() { pgbootstrap.WithHandoff(pgbootstrap.HandoffExec) }},
	})
}

func TestWithMiscPanics(t *testing.T) {
	t.Parallel()
	runPanicTests(t, []panicTestCase{
		{
			name:     "negative lock wait",
			panics:   true,
			panicMsg: "pgbootstrap: lock wait must not be negative, got -1s",
			fn:       func() { pgbootstrap.WithLockWait(-time.Second) },
		},
		{
			name:     "nil output",
			panics:   true,
			panicMsg: "pgbootstrap: output writer must not be nil",
			fn:       func() { pgbootstrap.WithOutput(nil) },
		},
		{name: "zero lock wait", fn: func() { pgbootstrap.WithLockWait(0) }},
	})
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	got := pgbootstrap.ApplyOptionsForTesting()
	want := pgbootstrap.ConfigSnapshot{
		DataDir:     "/var/lib/postgresql/data",
		Target:      pgbootstrap.BackupDebug,
		ConfigPath:  "/etc/pgbackrest.conf",
		StagingDir:  "/tmp/pgconfbackup",
		StopTimeout: 3 * time.Second,
		Handoff:     pgbootstrap.HandoffChild,
		LockPath:    "/tmp/pgbootstrap.lock",
	}
	if got != want {
		t.Errorf("defaults = %+v, want %+v", got, want)
	}
}

func TestOptionsApply(t *testing.T) {
	t.Parallel()

	got := pgbootstrap.ApplyOptionsForTesting(
		pgbootstrap.WithBackupTarget(pgbootstrap.BackupProd),
		pgbootstrap.WithDataDir("/data"),
		pgbootstrap.WithConfigPath("/etc/pgbackrest/pgbackrest.conf"),
		pgbootstrap.WithStagingDir("/tmp/stage"),
		pgbootstrap.WithStopTimeout(10*time.Second),
		pgbootstrap.WithHandoff(pgbootstrap.HandoffExec),
		pgbootstrap.WithObjectStoreProbe(true),
		pgbootstrap.WithLockPath("/run/pgbootstrap.lock"),
		pgbootstrap.WithLockWait(time.Minute),
	)
	want := pgbootstrap.ConfigSnapshot{
		DataDir:          "/data",
		Target:           pgbootstrap.BackupProd,
		ConfigPath:       "/etc/pgbackrest/pgbackrest.conf",
		StagingDir:       "/tmp/stage",
		StopTimeout:      10 * time.Second,
		Handoff:          pgbootstrap.HandoffExec,
		ProbeObjectStore: true,
		LockPath:         "/run/pgbootstrap.lock",
		LockWait:         time.Minute,
	}
	if got != want {
		t.Errorf("config = %+v, want %+v", got, want)
	}
}
