package pgbackrest

import (
	"context"

	"github.com/giantswarm/pgbootstrap/internal/command"
)

// Stanza is the only stanza pgbootstrap configures.
const Stanza = "main"

// Binary is the pgbackrest executable, resolved through PATH.
const Binary = "pgbackrest"

// Commands runs pgbackrest sub-commands against the "main" stanza.
type Commands struct {
	Exec command.Executor

	// ConfigPath is passed with --config when it differs from
	// DefaultConfigPath.
	ConfigPath string
}

// Info prints the repository info, verifying that the backup store is
// reachable with the written configuration.
func (c *Commands) Info(ctx context.Context) error {
	_, err := c.Exec.Run(ctx, command.Request{Args: c.Args("info")})
	return err
}

// Restore restores the latest backup into the data directory with WAL
// archiving disabled on the restored cluster.
func (c *Commands) Restore(ctx context.Context) error {
	_, err := c.Exec.Run(ctx, command.Request{Args: c.Args("restore", "--archive-mode", "off")})
	return err
}

// Args returns the pgbackrest command line for sub and its arguments.
func (c *Commands) Args(sub string, args ...string) []string {
	out := []string{Binary, "--stanza=" + Stanza}
	if c.ConfigPath != "" && c.ConfigPath != DefaultConfigPath {
		out = append(out, "--config="+c.ConfigPath)
	}
	out = append(out, sub)
	return append(out, args...)
}
