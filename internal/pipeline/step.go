package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/giantswarm/pgbootstrap/internal/logging"
)

// Policy decides what a step's failure does to the run.
type Policy int

const (
	// Required steps abort the run on failure.
	Required Policy = iota

	// BestEffort steps have their failure logged and the run continues.
	BestEffort
)

// String implements fmt.Stringer.
func (p Policy) String() string {
	switch p {
	case Required:
		return "required"
	case BestEffort:
		return "best-effort"
	default:
		return "unknown"
	}
}

// Step is one unit of the pipeline.
type Step struct {
	Name   string
	Policy Policy
	Run    func(ctx context.Context) error
}

// Runner executes steps in order.
type Runner struct {
	Steps     []Step
	Announcer *logging.Announcer
	Logger    *slog.Logger
}

// Run executes every step in order and returns the error of the first
// failing required step, wrapped as "step <name>: <err>". Steps after it
// do not run. Nothing that already ran is undone.
func (r *Runner) Run(ctx context.Context) error {
	log := logging.OrDefault(r.Logger)

	for i, step := range r.Steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("step %s: %w", step.Name, err)
		}

		r.Announcer.Announce(fmt.Sprintf("Running %s...", step.Name))
		log.Info("step started", "step", step.Name, "index", i+1, "total", len(r.Steps), "policy", step.Policy)
		start := time.Now()

		err := step.Run(ctx)
		elapsed := time.Since(start).Round(time.Millisecond)
		if err == nil {
			log.Debug("step completed", "step", step.Name, "duration", elapsed)
			continue
		}

		if step.Policy == BestEffort {
			log.Warn("best-effort step failed, continuing", "step", step.Name, "duration", elapsed, "error", err)
			continue
		}
		log.Error("required step failed", "step", step.Name, "duration", elapsed, "error", err)
		return fmt.Errorf("step %s: %w", step.Name, err)
	}
	return nil
}

// Names returns the step names in execution order.
func (r *Runner) Names() []string {
	names := make([]string, len(r.Steps))
	for i, s := range r.Steps {
		names[i] = s.Name
	}
	return names
}
