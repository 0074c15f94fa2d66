package pgbootstrap

import (
	"time"

	"github.com/giantswarm/pgbootstrap/internal/command"
	"github.com/giantswarm/pgbootstrap/internal/credential"
	"github.com/giantswarm/pgbootstrap/internal/pipeline"
)

// ConfigSnapshot holds a copy of bootConfig fields for test assertions.
type ConfigSnapshot struct {
	DataDir          string
	Target           BackupTarget
	ConfigPath       string
	StagingDir       string
	StopTimeout      time.Duration
	Handoff          Handoff
	ProbeObjectStore bool
	LockPath         string
	LockWait         time.Duration
}

// ApplyOptionsForTesting creates a default bootConfig, applies the given
// options, and returns a ConfigSnapshot of the result.
func ApplyOptionsForTesting(opts ...Option) ConfigSnapshot {
	cfg := defaultBootConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return ConfigSnapshot{
		DataDir:          cfg.DataDir,
		Target:           cfg.Target,
		ConfigPath:       cfg.ConfigPath,
		StagingDir:       cfg.StagingDir,
		StopTimeout:      cfg.StopTimeout,
		Handoff:          cfg.Handoff,
		ProbeObjectStore: cfg.ProbeObjectStore,
		LockPath:         cfg.LockPath,
		LockWait:         cfg.LockWait,
	}
}

// WithCollaboratorsForTesting replaces the external collaborators of a
// run: every command goes to exec, the bootstrap step runs bootstrap, and
// credentials are looked up in env without prompting.
func WithCollaboratorsForTesting(exec command.Executor, bootstrap pipeline.Bootstrapper, env map[string]string) Option {
	return func(c *bootConfig) {
		c.exec = exec
		c.bootstrap = bootstrap
		c.creds = credential.Config{
			LookupEnv: func(key string) (string, bool) {
				v, ok := env[key]
				return v, ok
			},
			Interactive: func() bool { return false },
		}
	}
}
