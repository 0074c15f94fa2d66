package pgbootstrap_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/giantswarm/pgbootstrap"
)

// TestPublicErrorConstants verifies that every exported error constant
// has a message, matches itself directly and when wrapped, and matches
// none of the others.
func TestPublicErrorConstants(t *testing.T) {
	t.Parallel()

	allErrors := map[string]error{
		"ErrBucketNotFound":    pgbootstrap.ErrBucketNotFound,
		"ErrCommandFailed":     pgbootstrap.ErrCommandFailed,
		"ErrEmptyCommand":      pgbootstrap.ErrEmptyCommand,
		"ErrEmptyRepository":   pgbootstrap.ErrEmptyRepository,
		"ErrExitTimeout":       pgbootstrap.ErrExitTimeout,
		"ErrIOFailure":         pgbootstrap.ErrIOFailure,
		"ErrInvalidValue":      pgbootstrap.ErrInvalidValue,
		"ErrLocked":            pgbootstrap.ErrLocked,
		"ErrMissingCredential": pgbootstrap.ErrMissingCredential,
		"ErrUnknownHandoff":    pgbootstrap.ErrUnknownHandoff,
		"ErrUnknownTarget":     pgbootstrap.ErrUnknownTarget,
	}

	for name, sentinel := range allErrors {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if sentinel == nil {
				t.Fatalf("%s is nil", name)
			}
			if msg := sentinel.Error(); msg == "" {
				t.Errorf("%s.Error() returned empty string", name)
			}
			if !errors.Is(sentinel, sentinel) {
				t.Errorf("errors.Is(%s, %s) = false, want true (self-match)", name, name)
			}
			wrapped := fmt.Errorf("wrapping: %w", sentinel)
			if !errors.Is(wrapped, sentinel) {
				t.Errorf("errors.Is(wrapped %s) = false, want true", name)
			}
			for otherName, other := range allErrors {
				if otherName != name && errors.Is(sentinel, other) {
					t.Errorf("errors.Is(%s, %s) = true, want false", name, otherName)
				}
			}
		})
	}
}

func TestCommandFailureMatchesErrCommandFailed(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("step restore: %w", &pgbootstrap.CommandFailure{
		Args:     []string{"pgbackrest", "--stanza=main", "restore"},
		ExitCode: 56,
	})
	if !errors.Is(err, pgbootstrap.ErrCommandFailed) {
		t.Fatal("CommandFailure does not match ErrCommandFailed")
	}
	want := "step restore: failed to run command: pgbackrest --stanza=main restore: unexpected return code: 56"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err  error
		want int
	}{
		"success": {},
		"required step failed": {
			err:  &pgbootstrap.CommandFailure{Args: []string{"pgbackrest", "info"}, ExitCode: 56},
			want: 1,
		},
		"server exited": {
			err:  fmt.Errorf("step start-server: %w", &pgbootstrap.CommandFailure{Args: []string{"gosu", "postgres", "postgres"}, ExitCode: 3}),
			want: 3,
		},
		"plain error": {
			err:  pgbootstrap.ErrLocked,
			want: 1,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if got := pgbootstrap.ExitCode(tc.err); got != tc.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	if _, err := pgbootstrap.ParseBackupTarget("nightly"); !errors.Is(err, pgbootstrap.ErrUnknownTarget) {
		t.Errorf("ParseBackupTarget error = %v, want %v", err, pgbootstrap.ErrUnknownTarget)
	}
	if tgt, err := pgbootstrap.ParseBackupTarget("prod"); err != nil || tgt != pgbootstrap.BackupProd {
		t.Errorf("ParseBackupTarget(prod) = %v, %v", tgt, err)
	}
	if _, err := pgbootstrap.ParseHandoff("fork"); !errors.Is(err, pgbootstrap.ErrUnknownHandoff) {
		t.Errorf("ParseHandoff error = %v, want %v", err, pgbootstrap.ErrUnknownHandoff)
	}
}
