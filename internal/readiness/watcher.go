package readiness

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/giantswarm/pgbootstrap/internal/command"
	"github.com/giantswarm/pgbootstrap/internal/diagnostics"
	"github.com/giantswarm/pgbootstrap/internal/logging"
	"github.com/giantswarm/pgbootstrap/internal/process"
)

// ErrExitTimeout is returned by Run when the bootstrap process is still
// running StopTimeout after its output stream closed.
const ErrExitTimeout = process.ErrExitTimeout

// DefaultEntrypoint is the bootstrap script shipped in the postgres image.
const DefaultEntrypoint = "/usr/local/bin/docker-entrypoint.sh"

// DefaultStopTimeout is the grace period between end of output and kill.
const DefaultStopTimeout = 3 * time.Second

// processName names the bootstrap subprocess in logs and errors.
const processName = "docker-entrypoint"

// defaultEnv is applied to the bootstrap environment for keys the parent
// does not set. The temporary server only listens on a local socket.
var defaultEnv = map[string]string{
	"POSTGRES_PASSWORD":         "root",
	"POSTGRES_HOST_AUTH_METHOD": "trust",
}

// Options configures a Watcher.
type Options struct {
	// DataDir is exported to the bootstrap script as PGDATA. Required.
	DataDir string

	// Command overrides the bootstrap command line. Defaults to
	// bash DefaultEntrypoint postgres.
	Command []string

	// EnvBinary is the launcher the command runs through. Defaults to
	// command.DefaultEnvBinary.
	EnvBinary string

	// Environ returns the parent environment. Defaults to os.Environ.
	Environ func() []string

	// Classifier defaults to DefaultClassifier().
	Classifier LineClassifier

	// Mirror receives every output line verbatim. Nil discards.
	Mirror io.Writer

	// StopTimeout defaults to DefaultStopTimeout.
	StopTimeout time.Duration

	// Exec runs the process-tree postmortem. Required.
	Exec command.Executor

	// Announcer prints operator banners on state changes. Optional.
	Announcer *logging.Announcer

	// OnTransition is called for every transition that was not ignored,
	// including the final one to StateStopped. Optional.
	OnTransition func(Transition)

	Logger *slog.Logger
}

// Watcher runs the bootstrap subprocess and stops it once initialized.
type Watcher struct {
	opts Options
	log  *slog.Logger
}

// New returns a Watcher with defaults applied. Panics if DataDir is empty
// or Exec is nil.
func New(opts Options) *Watcher {
	if opts.DataDir == "" {
		panic("pgbootstrap: readiness data directory must not be empty")
	}
	if opts.Exec == nil {
		panic("pgbootstrap: readiness executor must not be nil")
	}
	if len(opts.Command) == 0 {
		opts.Command = []string{"bash", DefaultEntrypoint, "postgres"}
	}
	if opts.EnvBinary == "" {
		opts.EnvBinary = command.DefaultEnvBinary
	}
	if opts.Environ == nil {
		opts.Environ = os.Environ
	}
	if opts.Classifier == nil {
		opts.Classifier = DefaultClassifier()
	}
	if opts.Mirror == nil {
		opts.Mirror = io.Discard
	}
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = DefaultStopTimeout
	}
	return &Watcher{opts: opts, log: logging.OrDefault(opts.Logger)}
}

// Run starts the bootstrap subprocess and blocks until it has exited.
//
// Returns ErrExitTimeout (wrapped) if the process outlived its grace
// period, or a *command.Failure naming the bootstrap command if it exited
// with a non-zero status, including death by signal.
func (w *Watcher) Run(ctx context.Context) error {
	cmd := exec.Command(w.opts.EnvBinary, w.opts.Command...)
	cmd.Env = BootstrapEnv(w.opts.Environ(), w.opts.DataDir)

	proc := process.New(processName, w.log)
	out, err := proc.Start(cmd)
	if err != nil {
		return err
	}
	defer proc.Close()

	w.log.Info("bootstrap started", "command", strings.Join(w.opts.Command, " "), "pid", proc.Pid(), "data_dir", w.opts.DataDir)

	var m Machine
	if err := w.consume(out, &m, func() error { return proc.Signal(syscall.SIGINT) }); err != nil {
		if kerr := proc.Kill(); kerr != nil {
			w.log.Warn("kill bootstrap failed", "error", kerr)
		}
		return err
	}
	w.observe(m.Close())

	err = process.WaitExit(ctx, process.WaitExitConfig{
		Timeout: w.opts.StopTimeout,
		Name:    processName,
		Logger:  w.log,
	}, proc.Exited())
	if err != nil {
		if errors.Is(err, ErrExitTimeout) {
			w.opts.Announcer.Announce(fmt.Sprintf(
				"Postgres did not exit within %s of closing its output. Printing the process tree for debug...",
				w.opts.StopTimeout))
			if derr := diagnostics.ProcessTree(ctx, w.opts.Exec); derr != nil {
				w.log.Warn("process tree diagnostic failed", "error", derr)
			}
		}
		if kerr := proc.Kill(); kerr != nil {
			w.log.Warn("kill bootstrap failed", "error", kerr)
		}
		return err
	}

	code, err := proc.ExitCode()
	if err != nil {
		return err
	}
	w.log.Info("bootstrap exited", "exit_code", code)
	return command.Check(w.opts.Command, code)
}

// consume reads r until EOF, mirroring every line and driving m. signal is
// called once per ActionSignal.
func (w *Watcher) consume(r io.Reader, m *Machine, signal func() error) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			_, _ = io.WriteString(w.opts.Mirror, line)
			if serr := w.handleLine(strings.TrimRight(line, "\r\n"), m, signal); serr != nil {
				return serr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s output: %w", processName, err)
		}
	}
}

func (w *Watcher) handleLine(line string, m *Machine, signal func() error) error {
	ev, ok := w.opts.Classifier.Classify(line)
	if !ok {
		return nil
	}
	t, ok := m.Feed(ev)
	if !ok {
		w.log.Debug("event ignored", "event", ev, "state", m.State())
		return nil
	}
	w.observe(t)

	if t.Action != ActionSignal {
		return nil
	}
	if err := signal(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			w.log.Warn("bootstrap exited before shutdown signal", "error", err)
			return nil
		}
		return fmt.Errorf("stop %s: %w", processName, err)
	}
	return nil
}

func (w *Watcher) observe(t Transition) {
	w.log.Info("bootstrap transition", "from", t.From, "to", t.To, "event", t.Event)

	switch {
	case t.Event == EventInitComplete:
		w.opts.Announcer.Announce("Postgres initialized. Waiting for postgres to start again.")
	case t.Action == ActionSignal:
		w.opts.Announcer.Announce("Postgres is ready to accept connections: sending SIGINT to shutdown postgres immediately.")
	case t.Event == EventShutDown:
		w.opts.Announcer.Announce("Postgres has been shutdown.")
	}

	if w.opts.OnTransition != nil {
		w.opts.OnTransition(t)
	}
}

// BootstrapEnv returns the environment for the bootstrap script: parent
// with PGDATA replaced by dataDir, plus defaultEnv for keys the parent
// does not set.
func BootstrapEnv(parent []string, dataDir string) []string {
	env := make([]string, 0, len(parent)+len(defaultEnv)+1)
	set := make(map[string]bool, len(parent))
	for _, kv := range parent {
		key, _, _ := strings.Cut(kv, "=")
		if key == "PGDATA" {
			continue
		}
		set[key] = true
		env = append(env, kv)
	}
	var extra []string
	for key, value := range defaultEnv {
		if !set[key] {
			extra = append(extra, key+"="+value)
		}
	}
	slices.Sort(extra)
	env = append(env, extra...)
	return append(env, "PGDATA="+dataDir)
}
