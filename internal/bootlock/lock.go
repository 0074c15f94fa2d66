package bootlock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"

	"github.com/giantswarm/pgbootstrap/internal/fileutil"
	"github.com/giantswarm/pgbootstrap/internal/logging"
	"github.com/giantswarm/pgbootstrap/internal/sentinel"
)

// ErrLocked is returned when another run holds the boot lock.
const ErrLocked = sentinel.Error("another pgbootstrap run holds the boot lock")

// DefaultPath is the lock file used when none is configured.
const DefaultPath = "/tmp/pgbootstrap.lock"

// retryInterval is the delay between attempts when waiting for the lock.
const retryInterval = 50 * time.Millisecond

// Lock is a held boot lock.
type Lock struct {
	fl  *flock.Flock
	log *slog.Logger
}

// Acquire takes the lock at path. With wait zero it fails immediately with
// ErrLocked if the lock is held; otherwise it retries for up to wait.
func Acquire(ctx context.Context, path string, wait time.Duration, logger *slog.Logger) (*Lock, error) {
	log := logging.OrDefault(logger)
	if path == "" {
		path = DefaultPath
	}
	if err := fileutil.EnsureDirForFile(path); err != nil {
		return nil, fmt.Errorf("acquire boot lock %s: %w", path, err)
	}

	fl := flock.New(path)
	locked, err := tryLock(ctx, fl, wait)
	if err != nil {
		return nil, fmt.Errorf("acquire boot lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", path, ErrLocked)
	}

	log.Debug("boot lock acquired", "path", path)
	return &Lock{fl: fl, log: log}, nil
}

func tryLock(ctx context.Context, fl *flock.Flock, wait time.Duration) (bool, error) {
	if wait <= 0 {
		return fl.TryLock()
	}
	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	locked, err := fl.TryLockContext(waitCtx, retryInterval)
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		// Our own wait ran out: the lock is simply held.
		return false, nil
	}
	return locked, err
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.fl.Path()
}

// Release unlocks and closes the lock file. The file stays on disk;
// removing it could invalidate a lock another process just acquired.
// Safe to call on a nil Lock and more than once.
func (l *Lock) Release() {
	if l == nil || l.fl == nil {
		return
	}
	if err := l.fl.Close(); err != nil {
		l.log.Debug("failed to release boot lock", "path", l.fl.Path(), "error", err)
	}
}
