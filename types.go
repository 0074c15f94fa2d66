package pgbootstrap

import (
	"github.com/giantswarm/pgbootstrap/internal/command"
	"github.com/giantswarm/pgbootstrap/internal/pgbackrest"
	"github.com/giantswarm/pgbootstrap/internal/pipeline"
)

// BackupTarget selects the backup repository restored from.
type BackupTarget = pgbackrest.Target

// Backup targets.
const (
	BackupDebug = pgbackrest.TargetDebug
	BackupProd  = pgbackrest.TargetProd
)

// Handoff selects how the database server is started.
type Handoff = pipeline.Handoff

// Hand-off modes.
const (
	HandoffChild = pipeline.HandoffChild
	HandoffExec  = pipeline.HandoffExec
)

// CommandFailure is the error of an external command that exited with a
// non-zero status. It carries the command line and exit code.
type CommandFailure = command.Failure

// ParseBackupTarget returns the BackupTarget named s, or an error matching
// ErrUnknownTarget.
func ParseBackupTarget(s string) (BackupTarget, error) {
	return pgbackrest.ParseTarget(s)
}

// ParseHandoff returns the Handoff named s, or an error matching
// ErrUnknownHandoff.
func ParseHandoff(s string) (Handoff, error) {
	return pipeline.ParseHandoff(s)
}
