package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/giantswarm/pgbootstrap"
)

// Flag names, shared with the settings file keys.
const (
	flagBackupSource     = "backup-source"
	flagPGData           = "pgdata"
	flagConfigPath       = "config-path"
	flagStagingDir       = "staging-dir"
	flagStopTimeout      = "stop-timeout"
	flagHandoff          = "handoff"
	flagProbeObjectStore = "probe-object-store"
	flagLockPath         = "lock-path"
	flagLockWait         = "lock-wait"
	flagLogLevel         = "log-level"
	flagSettings         = "settings"
)

// flags holds the parsed command line.
type flags struct {
	target           pgbootstrap.BackupTarget
	pgdata           string
	configPath       string
	stagingDir       string
	stopTimeout      time.Duration
	handoff          pgbootstrap.Handoff
	probeObjectStore bool
	lockPath         string
	lockWait         time.Duration
	logLevel         string
	settings         string
}

func newRootCmd() *cobra.Command {
	cmd, _ := newCommand()
	return cmd
}

// newCommand returns the root command and the flags it parses into.
func newCommand() (*cobra.Command, *flags) {
	f := &flags{
		target:  pgbootstrap.DefaultBackupTarget,
		handoff: pgbootstrap.DefaultHandoff,
	}

	cmd := &cobra.Command{
		Use:   "pgbootstrap",
		Short: "Restore a PostgreSQL container from its pgbackrest backup and start it",
		Long: `pgbootstrap is the entrypoint of the database container.

It writes /etc/pgbackrest.conf, lets docker-entrypoint.sh initialize a fresh
cluster, stops it as soon as it accepts connections, restores the latest
backup over it while keeping the generated *.conf files, and finally runs
"gosu postgres postgres" in the foreground.

Credentials for the backup bucket are read from AWS_ACCESS_KEY,
AWS_SECRET_KEY and AWS_BUCKET. When one is unset and stdin is a terminal,
pgbootstrap prompts for it.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, logger, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			pgbootstrap.SetLogger(logger)
			return pgbootstrap.New(opts...).Run(cmd.Context())
		},
	}

	fs := cmd.Flags()
	fs.Var(&f.target, flagBackupSource, "backup repository to restore from (debug|prod)")
	fs.StringVar(&f.pgdata, flagPGData, pgbootstrap.DefaultDataDir, "data directory")
	fs.StringVar(&f.configPath, flagConfigPath, pgbootstrap.DefaultConfigPath, "where to write the pgbackrest configuration")
	fs.StringVar(&f.stagingDir, flagStagingDir, pgbootstrap.DefaultStagingDir, "where *.conf files are kept during the restore")
	fs.DurationVar(&f.stopTimeout, flagStopTimeout, pgbootstrap.DefaultStopTimeout, "grace period for the bootstrap process to exit before it is killed")
	fs.Var(&f.handoff, flagHandoff, "how to start the server (child|exec)")
	fs.BoolVar(&f.probeObjectStore, flagProbeObjectStore, false, "also check the backup bucket directly over S3")
	fs.StringVar(&f.lockPath, flagLockPath, pgbootstrap.DefaultLockPath, "boot lock file")
	fs.DurationVar(&f.lockWait, flagLockWait, pgbootstrap.DefaultLockWait, "how long to wait for a boot lock held by another run")
	fs.StringVar(&f.logLevel, flagLogLevel, "info", "log level (debug|info|warn|error)")
	fs.StringVar(&f.settings, flagSettings, "", "optional YAML file with defaults for any flag above")

	return cmd, f
}

// resolve merges the settings file into the flags and turns them into
// runner options and the process logger.
func (f *flags) resolve(cmd *cobra.Command) ([]pgbootstrap.Option, *slog.Logger, error) {
	if f.settings != "" {
		s, err := loadSettings(f.settings)
		if err != nil {
			return nil, nil, err
		}
		if err := s.apply(cmd.Flags()); err != nil {
			return nil, nil, err
		}
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(f.logLevel)); err != nil {
		return nil, nil, fmt.Errorf("invalid --%s: %w", flagLogLevel, err)
	}
	if f.stopTimeout <= 0 {
		return nil, nil, fmt.Errorf("invalid --%s: must be positive, got %s", flagStopTimeout, f.stopTimeout)
	}
	if f.lockWait < 0 {
		return nil, nil, fmt.Errorf("invalid --%s: must not be negative, got %s", flagLockWait, f.lockWait)
	}
	for name, v := range map[string]string{
		flagPGData:     f.pgdata,
		flagConfigPath: f.configPath,
		flagStagingDir: f.stagingDir,
		flagLockPath:   f.lockPath,
	} {
		if v == "" {
			return nil, nil, fmt.Errorf("invalid --%s: must not be empty", name)
		}
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})).
		With("component", "pgbootstrap", "run_id", uuid.NewString())

	opts := []pgbootstrap.Option{
		pgbootstrap.WithBackupTarget(f.target),
		pgbootstrap.WithDataDir(f.pgdata),
		pgbootstrap.WithConfigPath(f.configPath),
		pgbootstrap.WithStagingDir(f.stagingDir),
		pgbootstrap.WithStopTimeout(f.stopTimeout),
		pgbootstrap.WithHandoff(f.handoff),
		pgbootstrap.WithObjectStoreProbe(f.probeObjectStore),
		pgbootstrap.WithLockPath(f.lockPath),
		pgbootstrap.WithLockWait(f.lockWait),
		pgbootstrap.WithOutput(cmd.OutOrStdout()),
	}
	return opts, logger, nil
}
