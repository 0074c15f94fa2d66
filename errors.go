package pgbootstrap

import (
	"github.com/giantswarm/pgbootstrap/internal/bootlock"
	"github.com/giantswarm/pgbootstrap/internal/command"
	"github.com/giantswarm/pgbootstrap/internal/credential"
	"github.com/giantswarm/pgbootstrap/internal/objstore"
	"github.com/giantswarm/pgbootstrap/internal/pgbackrest"
	"github.com/giantswarm/pgbootstrap/internal/pipeline"
	"github.com/giantswarm/pgbootstrap/internal/readiness"
)

// Sentinel errors for error inspection with errors.Is.
const (
	// ErrCommandFailed matches every *CommandFailure.
	ErrCommandFailed = command.ErrCommandFailed

	// ErrEmptyCommand is returned when a command line is empty.
	ErrEmptyCommand = command.ErrEmptyCommand

	// ErrMissingCredential is returned when a credential is not in the
	// environment and the operator cannot be prompted.
	ErrMissingCredential = credential.ErrMissingCredential

	// ErrIOFailure is returned when the pgbackrest configuration cannot be
	// written.
	ErrIOFailure = pgbackrest.ErrIOFailure

	// ErrInvalidValue is returned when a credential cannot be written to the
	// pgbackrest configuration, for example because it spans lines.
	ErrInvalidValue = pgbackrest.ErrInvalidValue

	// ErrUnknownTarget is returned when parsing an unknown backup target.
	ErrUnknownTarget = pgbackrest.ErrUnknownTarget

	// ErrUnknownHandoff is returned when parsing an unknown hand-off mode.
	ErrUnknownHandoff = pipeline.ErrUnknownHandoff

	// ErrExitTimeout is returned when the bootstrap process does not exit
	// within the stop timeout after its output ended. The process is killed.
	ErrExitTimeout = readiness.ErrExitTimeout

	// ErrLocked is returned by Run when another run holds the boot lock.
	ErrLocked = bootlock.ErrLocked

	// ErrBucketNotFound and ErrEmptyRepository are reported by the optional
	// object store probe. The probe is best-effort, so they only appear in
	// logs.
	ErrBucketNotFound  = objstore.ErrBucketNotFound
	ErrEmptyRepository = objstore.ErrEmptyRepository
)
