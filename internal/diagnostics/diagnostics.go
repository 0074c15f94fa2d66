package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/giantswarm/pgbootstrap/internal/command"
	"github.com/giantswarm/pgbootstrap/internal/logging"
)

// ProcessTreeArgs is the postmortem command printed when a subprocess does
// not exit in time.
var ProcessTreeArgs = []string{"pstree", "-ahltpu"}

// Dumper prints the state of a data directory.
type Dumper struct {
	Exec    command.Executor
	DataDir string
	Logger  *slog.Logger
}

// Dump lists the data directory and prints its configuration files. Both
// commands always run; their errors are joined.
func (d *Dumper) Dump(ctx context.Context) error {
	log := logging.OrDefault(d.Logger)

	var errs []error
	if _, err := d.Exec.Run(ctx, command.Request{Args: ListArgs(d.DataDir)}); err != nil {
		errs = append(errs, fmt.Errorf("list data directory: %w", err))
	}
	if _, err := d.Exec.Run(ctx, command.Request{Args: ConfDumpArgs(d.DataDir)}); err != nil {
		// A fresh data directory has no *.conf files yet.
		log.Debug("config dump failed", "data_dir", d.DataDir, "error", err)
		errs = append(errs, fmt.Errorf("dump config files: %w", err))
	}
	return errors.Join(errs...)
}

// ProcessTree prints the process tree of the whole container.
func ProcessTree(ctx context.Context, exec command.Executor) error {
	if _, err := exec.Run(ctx, command.Request{Args: ProcessTreeArgs}); err != nil {
		return fmt.Errorf("print process tree: %w", err)
	}
	return nil
}

// ListArgs returns the command listing dir.
func ListArgs(dir string) []string {
	return []string{"ls", "-l", dir}
}

// ConfDumpArgs returns the command printing every *.conf file directly
// inside dir. The glob has to be expanded by a shell, so dir is quoted.
func ConfDumpArgs(dir string) []string {
	return []string{"bash", "-c", "cat " + ShellQuote(dir) + "/*.conf"}
}

// ShellQuote returns s as a single-quoted POSIX shell word.
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
