package pgbootstrap

import (
	"io"
	"os"
	"time"

	"github.com/giantswarm/pgbootstrap/internal/command"
	"github.com/giantswarm/pgbootstrap/internal/credential"
	"github.com/giantswarm/pgbootstrap/internal/pipeline"
)

// bootConfig holds the configuration of a Runner. The pipeline part is
// handed to pipeline.Build unchanged.
type bootConfig struct {
	pipeline.Config

	LockPath string
	LockWait time.Duration
	Output   io.Writer

	// Set only by tests through export_test.go.
	exec      command.Executor
	bootstrap pipeline.Bootstrapper
	starter   pipeline.Starter
	creds     credential.Config
}

// defaultBootConfig returns a bootConfig populated with all default
// values. Both New and test helpers use it.
func defaultBootConfig() bootConfig {
	return bootConfig{
		Config: pipeline.Config{
			DataDir:     DefaultDataDir,
			Target:      DefaultBackupTarget,
			ConfigPath:  DefaultConfigPath,
			StagingDir:  DefaultStagingDir,
			StopTimeout: DefaultStopTimeout,
			Handoff:     DefaultHandoff,
		},
		LockPath: DefaultLockPath,
		LockWait: DefaultLockWait,
		Output:   os.Stdout,
	}
}
