package pgbootstrap

import (
	"time"

	"github.com/giantswarm/pgbootstrap/internal/bootlock"
	"github.com/giantswarm/pgbootstrap/internal/pgbackrest"
	"github.com/giantswarm/pgbootstrap/internal/pipeline"
	"github.com/giantswarm/pgbootstrap/internal/readiness"
)

// Default configuration values for New.
const (
	// DefaultDataDir is PGDATA in the stock postgres image.
	DefaultDataDir = pipeline.DefaultDataDir

	// DefaultConfigPath is where pgbackrest reads its configuration.
	DefaultConfigPath = pgbackrest.DefaultConfigPath

	// DefaultStagingDir holds the *.conf files while the backup is
	// restored over the data directory.
	DefaultStagingDir = pipeline.DefaultStagingDir

	// DefaultStopTimeout is how long the bootstrap process may take to exit
	// after its output ended before it is killed.
	DefaultStopTimeout = readiness.DefaultStopTimeout

	// DefaultLockPath is the boot lock file.
	DefaultLockPath = bootlock.DefaultPath

	// DefaultLockWait of zero fails immediately when the lock is held.
	DefaultLockWait time.Duration = 0

	// DefaultBackupTarget restores from the test repository.
	DefaultBackupTarget = BackupDebug

	// DefaultHandoff runs the server as a child process.
	DefaultHandoff = HandoffChild
)
