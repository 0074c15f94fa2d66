package pgbootstrap

import (
	"fmt"
	"io"
	"time"

	"github.com/giantswarm/pgbootstrap/internal/pgbackrest"
	"github.com/giantswarm/pgbootstrap/internal/pipeline"
)

// requirePositive panics if v <= 0 with a descriptive message.
func requirePositive(name string, v time.Duration) {
	if v <= 0 {
		panic(fmt.Sprintf("pgbootstrap: %s must be greater than 0, got %v", name, v))
	}
}

// requireNonEmpty panics if s is empty with a descriptive message.
func requireNonEmpty(name, s string) {
	if s == "" {
		panic(fmt.Sprintf("pgbootstrap: %s must not be empty", name))
	}
}

// Option configures a Runner during construction via New.
//
// With* functions panic on invalid input. Option values are normally
// constants or already-parsed flags, so an invalid value is a programmer
// error. Parse operator input with ParseBackupTarget and ParseHandoff
// first.
type Option func(*bootConfig)

// WithBackupTarget selects the backup repository to restore from.
//
// Default: BackupDebug.
//
// Panics if t is not a known target.
func WithBackupTarget(t BackupTarget) Option {
	if _, err := pgbackrest.ParseTarget(string(t)); err != nil {
		panic(fmt.Sprintf("pgbootstrap: %v", err))
	}
	return func(c *bootConfig) {
		c.Target = t
	}
}

// WithDataDir sets the data directory, exported to the bootstrap script as
// PGDATA and written to the pgbackrest configuration as pg1-path.
//
// Default: /var/lib/postgresql/data.
//
// Panics if dir is empty.
func WithDataDir(dir string) Option {
	requireNonEmpty("data directory", dir)
	return func(c *bootConfig) {
		c.DataDir = dir
	}
}

// WithConfigPath sets where the pgbackrest configuration is written. A
// non-default path is passed to every pgbackrest invocation with --config.
//
// Panics if path is empty.
func WithConfigPath(path string) Option {
	requireNonEmpty("pgbackrest config path", path)
	return func(c *bootConfig) {
		c.ConfigPath = path
	}
}

// WithStagingDir sets the directory holding the *.conf files during the
// restore. It is removed at the end of a successful boot.
//
// Panics if dir is empty.
func WithStagingDir(dir string) Option {
	requireNonEmpty("staging directory", dir)
	return func(c *bootConfig) {
		c.StagingDir = dir
	}
}

// WithStopTimeout sets how long the bootstrap process may take to exit
// after its output ended. When it expires the process tree is printed and
// the process is killed.
//
// Default: 3 seconds.
//
// Panics if d <= 0.
func WithStopTimeout(d time.Duration) Option {
	requirePositive("stop timeout", d)
	return func(c *bootConfig) {
		c.StopTimeout = d
	}
}

// WithHandoff selects how the database server is started.
//
// Default: HandoffChild.
//
// Panics if h is not a known mode.
func WithHandoff(h Handoff) Option {
	if _, err := pipeline.ParseHandoff(string(h)); err != nil {
		panic(fmt.Sprintf("pgbootstrap: %v", err))
	}
	return func(c *bootConfig) {
		c.Handoff = h
	}
}

// WithObjectStoreProbe enables a direct S3 check of the backup bucket in
// addition to pgbackrest info. Like pgbackrest info, its failure is only
// logged.
func WithObjectStoreProbe(enabled bool) Option {
	return func(c *bootConfig) {
		c.ProbeObjectStore = enabled
	}
}

// WithLockPath sets the boot lock file.
//
// Default: /tmp/pgbootstrap.lock.
//
// Panics if path is empty.
func WithLockPath(path string) Option {
	requireNonEmpty("lock path", path)
	return func(c *bootConfig) {
		c.LockPath = path
	}
}

// WithLockWait sets how long Run waits for a boot lock held by another
// run. Zero fails immediately.
//
// Panics if d < 0.
func WithLockWait(d time.Duration) Option {
	if d < 0 {
		panic(fmt.Sprintf("pgbootstrap: lock wait must not be negative, got %v", d))
	}
	return func(c *bootConfig) {
		c.LockWait = d
	}
}

// WithOutput sets where the bootstrap output and the phase banners are
// written.
//
// Default: os.Stdout.
//
// Panics if w is nil.
func WithOutput(w io.Writer) Option {
	if w == nil {
		panic("pgbootstrap: output writer must not be nil")
	}
	return func(c *bootConfig) {
		c.Output = w
	}
}
