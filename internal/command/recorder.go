package command

import (
	"context"
	"slices"
	"sync"
)

// Compile-time interface satisfaction check.
var _ Executor = (*Recorder)(nil)

// Recorder is an Executor that runs nothing. It records every request and
// answers with scripted exit codes, keyed by the space-joined command
// line. Unscripted commands succeed. Used as the stand-in for pgbackrest,
// gosu and the diagnostic utilities in tests.
type Recorder struct {
	mu        sync.Mutex
	calls     []Request
	exitCodes map[string]int
	outputs   map[string][]byte
	errs      map[string]error
}

// NewRecorder returns a Recorder on which every command succeeds.
func NewRecorder() *Recorder {
	return &Recorder{
		exitCodes: make(map[string]int),
		outputs:   make(map[string][]byte),
		errs:      make(map[string]error),
	}
}

// ExitWith makes commandLine exit with code.
func (r *Recorder) ExitWith(commandLine string, code int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exitCodes[commandLine] = code
}

// Output makes commandLine produce out when run with Capture.
func (r *Recorder) Output(commandLine string, out []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outputs[commandLine] = out
}

// FailToStart makes commandLine fail with err as if it could not be started.
func (r *Recorder) FailToStart(commandLine string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs[commandLine] = err
}

// Run implements Executor.
func (r *Recorder) Run(_ context.Context, req Request) (Result, error) {
	if len(req.Args) == 0 {
		return Result{}, ErrEmptyCommand
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	req.Args = slices.Clone(req.Args)
	r.calls = append(r.calls, req)

	line := req.CommandLine()
	if err, ok := r.errs[line]; ok {
		return Result{}, err
	}
	res := Result{ExitCode: r.exitCodes[line]}
	if req.Capture {
		res.Output = r.outputs[line]
	}
	return res, Check(req.Args, res.ExitCode)
}

// Calls returns a copy of every request received so far.
func (r *Recorder) Calls() []Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

// CommandLines returns the command line of every request, in order.
func (r *Recorder) CommandLines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := make([]string, len(r.calls))
	for i, c := range r.calls {
		lines[i] = c.CommandLine()
	}
	return lines
}

// Count returns how many times commandLine was run.
func (r *Recorder) Count(commandLine string) int {
	n := 0
	for _, line := range r.CommandLines() {
		if line == commandLine {
			n++
		}
	}
	return n
}
