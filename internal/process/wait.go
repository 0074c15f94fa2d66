package process

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/giantswarm/pgbootstrap/internal/logging"
	"github.com/giantswarm/pgbootstrap/internal/sentinel"
	"k8s.io/apimachinery/pkg/util/wait"
)

// ErrExitTimeout is returned by WaitExit when the process is still running
// when the grace period ends.
const ErrExitTimeout = sentinel.Error("process did not exit within the grace period")

// DefaultPollInterval is how often WaitExit checks whether the process exited.
const DefaultPollInterval = 10 * time.Millisecond

// Sentinel errors for invalid WaitExit configuration.
var (
	// ErrIntervalNotPositive indicates a non-positive poll interval.
	ErrIntervalNotPositive = errors.New("interval must be positive")

	// ErrTimeoutNotPositive indicates a non-positive timeout.
	ErrTimeoutNotPositive = errors.New("timeout must be positive")
)

// WaitExitConfig configures WaitExit.
type WaitExitConfig struct {
	Interval time.Duration // Poll interval; zero uses DefaultPollInterval
	Timeout  time.Duration // Grace period
	Name     string        // For errors and logs (e.g., "docker-entrypoint")
	Logger   *slog.Logger  // Optional; defaults to the package logger
}

// WaitExit blocks until exited is closed or cfg.Timeout elapses. It returns
// nil when the process exited in time and an error wrapping ErrExitTimeout
// otherwise. It never signals the process; the caller decides what to do
// with a process that outlived its grace period.
func WaitExit(ctx context.Context, cfg WaitExitConfig, exited <-chan struct{}) error {
	if cfg.Name == "" {
		return errors.New("wait exit: name must not be empty")
	}
	if exited == nil {
		return fmt.Errorf("wait for %s exit: %w", cfg.Name, ErrNotStarted)
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = DefaultPollInterval
	}
	if interval < 0 {
		return fmt.Errorf("wait for %s exit: %w", cfg.Name, ErrIntervalNotPositive)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("wait for %s exit: %w", cfg.Name, ErrTimeoutNotPositive)
	}

	log := logging.OrDefault(cfg.Logger)
	polls := 0
	err := wait.PollUntilContextTimeout(ctx, interval, cfg.Timeout, true,
		func(context.Context) (bool, error) {
			polls++
			select {
			case <-exited:
				return true, nil
			default:
				return false, nil
			}
		})
	if err == nil {
		log.Debug("process exited", "name", cfg.Name, "polls", polls)
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("wait for %s exit: %w", cfg.Name, ctxErr)
	}
	if wait.Interrupted(err) {
		return fmt.Errorf("%s still running after %s: %w", cfg.Name, cfg.Timeout, ErrExitTimeout)
	}
	return fmt.Errorf("wait for %s exit: %w", cfg.Name, err)
}
