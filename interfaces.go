package pgbootstrap

import "context"

// Runner runs one container boot.
type Runner interface {
	// Run executes every boot step in order while holding the boot lock and
	// returns the first failure of a required step, naming the step.
	// Failures of best-effort steps are logged and do not stop the boot.
	//
	// With HandoffExec a successful Run does not return: the process is
	// replaced by the database server. With HandoffChild Run returns when
	// the server exits; a non-zero server exit is returned as a
	// *CommandFailure.
	Run(ctx context.Context) error

	// Steps returns the names of the boot steps in execution order.
	Steps() []string
}
