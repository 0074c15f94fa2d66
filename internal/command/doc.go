// Package command is the single primitive through which pgbootstrap runs
// external programs.
//
// Exec launches each command through /usr/bin/env, forwards or captures
// its output, and turns a non-zero exit status into a *Failure naming the
// command line and the code. There are no retries. Recorder is an
// Executor double that records requests and answers with scripted exit
// codes.
package command
