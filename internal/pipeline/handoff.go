package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/giantswarm/pgbootstrap/internal/command"
	"github.com/giantswarm/pgbootstrap/internal/logging"
)

// ServerCommand starts the database server as the postgres user.
var ServerCommand = []string{"gosu", "postgres", "postgres"}

// Starter hands off to the long-running database server.
type Starter interface {
	Start(ctx context.Context, args []string) error
}

// ChildStarter runs the server as a foreground child through the executor
// and returns once it exits. SIGINT and SIGTERM received meanwhile are
// forwarded to it.
type ChildStarter struct {
	Exec command.Executor
}

// Start implements Starter.
func (s *ChildStarter) Start(ctx context.Context, args []string) error {
	_, err := s.Exec.Run(ctx, command.Request{Args: args, ForwardSignals: true})
	return err
}

// ExecStarter replaces the current process image with the server. Start
// only returns if the replacement failed.
type ExecStarter struct {
	EnvBinary string          // defaults to command.DefaultEnvBinary
	Environ   func() []string // defaults to os.Environ
	Logger    *slog.Logger

	exec func(argv0 string, argv []string, envv []string) error
}

// Start implements Starter.
func (s *ExecStarter) Start(_ context.Context, args []string) error {
	if len(args) == 0 {
		return command.ErrEmptyCommand
	}
	bin := s.EnvBinary
	if bin == "" {
		bin = command.DefaultEnvBinary
	}
	environ := s.Environ
	if environ == nil {
		environ = os.Environ
	}
	execFn := s.exec
	if execFn == nil {
		execFn = unix.Exec
	}

	argv := append([]string{bin}, args...)
	logging.OrDefault(s.Logger).Info("replacing process", "command", strings.Join(args, " "))
	if err := execFn(bin, argv, environ()); err != nil {
		return fmt.Errorf("exec %s: %w", args[0], err)
	}
	return nil
}

// ServerExitCode reports the exit status of a server that ran as a child
// and exited non-zero. It returns false for every other error.
func ServerExitCode(err error) (int, bool) {
	var failure *command.Failure
	if !errors.As(err, &failure) || !slices.Equal(failure.Args, ServerCommand) {
		return 0, false
	}
	if failure.ExitCode <= 0 {
		return 1, true
	}
	return failure.ExitCode, true
}

func newStarter(h Handoff, exec command.Executor, logger *slog.Logger) Starter {
	if h == HandoffExec {
		return &ExecStarter{Logger: logger}
	}
	return &ChildStarter{Exec: exec}
}
