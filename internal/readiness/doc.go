// Package readiness drives the one-shot database bootstrap: it runs the
// stock docker-entrypoint.sh, mirrors its merged output line by line, and
// stops the temporary server once initialization is complete.
//
// # Detection
//
// The bootstrap script initializes the data directory, starts a temporary
// server to run init scripts, stops it, prints "PostgreSQL init process
// complete" and then starts the real server. The watcher has no hook into
// that lifecycle, so it classifies log lines:
//
//	AwaitingInit --InitComplete--> InitComplete --Ready--> ShutdownRequested
//
// A Ready line seen before InitComplete belongs to the temporary server
// and is ignored. On the transition to ShutdownRequested the watcher sends
// SIGINT (a postgres fast shutdown) exactly once. End of the output stream
// ends the loop in whatever state was reached.
//
// Trigger phrases are data: a LineClassifier maps a line to an Event and
// the Machine maps events to transitions, so both are testable without a
// subprocess.
//
// # Grace period
//
// After end of stream the watcher waits up to StopTimeout for the process
// to exit. If it is still running, the container process tree is printed
// for postmortem, the process is killed and ErrExitTimeout is returned.
package readiness
