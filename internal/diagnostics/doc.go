// Package diagnostics runs the operator-visibility commands executed
// between pipeline steps: a listing of the data directory, a dump of its
// *.conf files, and the process-tree postmortem printed when the
// bootstrap subprocess outlives its grace period.
//
// Every command goes through a command.Executor and forwards its output to
// the operator. Callers decide whether a failure matters; the pipeline
// treats all of them as best-effort.
package diagnostics
