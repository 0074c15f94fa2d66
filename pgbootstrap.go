package pgbootstrap

import (
	"context"
	"fmt"

	"github.com/giantswarm/pgbootstrap/internal/bootlock"
	"github.com/giantswarm/pgbootstrap/internal/command"
	"github.com/giantswarm/pgbootstrap/internal/credential"
	"github.com/giantswarm/pgbootstrap/internal/logging"
	"github.com/giantswarm/pgbootstrap/internal/pipeline"
)

// Compile-time interface satisfaction check.
var _ Runner = (*runner)(nil)

// runner is the Runner returned by New.
type runner struct {
	cfg bootConfig
}

// New returns a Runner configured by opts. It performs no I/O; all work
// happens in Run.
//
// Panics if any option receives an invalid value. See the individual
// With* functions for constraints.
//
//nolint:ireturn // Returns Runner interface by design for testability (mockable).
func New(opts ...Option) Runner {
	cfg := defaultBootConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &runner{cfg: cfg}
}

// Run implements Runner.
func (r *runner) Run(ctx context.Context) error {
	log := logging.Logger()

	lock, err := bootlock.Acquire(ctx, r.cfg.LockPath, r.cfg.LockWait, log)
	if err != nil {
		return err
	}
	defer lock.Release()

	credCfg := r.cfg.creds
	credCfg.Logger = log
	creds := credential.NewResolver(credCfg)
	defer creds.Close()

	p, err := pipeline.Build(r.cfg.Config, r.deps(creds))
	if err != nil {
		return err
	}

	log.Info("starting boot",
		"data_dir", r.cfg.DataDir,
		"backup_target", r.cfg.Target,
		"handoff", r.cfg.Handoff,
		"lock", lock.Path(),
	)
	if err := p.Run(ctx); err != nil {
		return fmt.Errorf("boot failed: %w", err)
	}
	return nil
}

// Steps implements Runner.
func (r *runner) Steps() []string {
	creds := credential.NewResolver(r.cfg.creds)
	defer creds.Close()

	p, err := pipeline.Build(r.cfg.Config, r.deps(creds))
	if err != nil {
		return nil
	}
	return p.Names()
}

func (r *runner) deps(creds pipeline.CredentialSource) pipeline.Deps {
	exec := r.cfg.exec
	if exec == nil {
		e := command.NewExec(logging.Logger())
		e.Stdout = r.cfg.Output
		exec = e
	}
	return pipeline.Deps{
		Exec:        exec,
		Credentials: creds,
		Bootstrap:   r.cfg.bootstrap,
		Starter:     r.cfg.starter,
		Out:         r.cfg.Output,
		Logger:      logging.Logger(),
	}
}

// ExitCode maps the error returned by Run to a process exit code: 0 for
// nil, the server's own status when it ran as a child and exited non-zero,
// and 1 for every other failure.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if code, ok := pipeline.ServerExitCode(err); ok {
		return code
	}
	return 1
}
