// Package pgbootstrap boots a PostgreSQL container from a pgbackrest
// backup.
//
// A boot writes the pgbackrest configuration, lets the stock
// docker-entrypoint.sh initialize a fresh cluster, stops it as soon as it
// is up, restores the latest backup over it while keeping the generated
// *.conf files, and finally starts the server in the foreground.
//
// # Basic Usage
//
//	import "github.com/giantswarm/pgbootstrap"
//
//	r := pgbootstrap.New(
//	    pgbootstrap.WithBackupTarget(pgbootstrap.BackupProd),
//	    pgbootstrap.WithDataDir("/var/lib/postgresql/data"),
//	)
//	if err := r.Run(ctx); err != nil {
//	    fmt.Fprintln(os.Stderr, err)
//	    os.Exit(pgbootstrap.ExitCode(err))
//	}
//
// # Credentials
//
// The backup store credentials are read from AWS_ACCESS_KEY,
// AWS_SECRET_KEY and AWS_BUCKET. When one is unset and stdin is a
// terminal the operator is prompted for it; otherwise the run fails with
// ErrMissingCredential before anything is started.
//
// # Concurrency
//
// A run holds an exclusive file lock for its whole duration. A second run
// against the same lock file fails with ErrLocked instead of racing the
// first over the data directory.
package pgbootstrap
