package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/giantswarm/pgbootstrap/internal/pgbackrest"
	"github.com/giantswarm/pgbootstrap/internal/readiness"
	"github.com/giantswarm/pgbootstrap/internal/sentinel"
)

// ErrUnknownHandoff is returned when parsing an unknown hand-off mode.
const ErrUnknownHandoff = sentinel.Error("unknown hand-off mode")

// Defaults applied by DefaultConfig.
const (
	DefaultDataDir    = "/var/lib/postgresql/data"
	DefaultStagingDir = "/tmp/pgconfbackup"
)

// Names of the environment variables holding the backup credentials.
const (
	AccessKeyVar = "AWS_ACCESS_KEY"
	SecretKeyVar = "AWS_SECRET_KEY"
	BucketVar    = "AWS_BUCKET"
)

// Handoff selects how the database server is started in the last step.
type Handoff string

const (
	// HandoffChild runs the server as a child process, forwarding SIGINT
	// and SIGTERM, and returns its exit status.
	HandoffChild Handoff = "child"

	// HandoffExec replaces the current process with the server.
	HandoffExec Handoff = "exec"
)

// ParseHandoff returns the Handoff named s.
func ParseHandoff(s string) (Handoff, error) {
	switch h := Handoff(s); h {
	case HandoffChild, HandoffExec:
		return h, nil
	default:
		return "", fmt.Errorf("%w %q (valid: child|exec)", ErrUnknownHandoff, s)
	}
}

// String implements fmt.Stringer and pflag.Value.
func (h Handoff) String() string {
	return string(h)
}

// Set implements pflag.Value.
func (h *Handoff) Set(s string) error {
	parsed, err := ParseHandoff(s)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// Type implements pflag.Value.
func (h *Handoff) Type() string {
	return "handoff"
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Handoff) UnmarshalText(text []byte) error {
	return h.Set(string(text))
}

// Config is built once per run and passed to Build. Nothing in the
// pipeline reads flags or other global state.
type Config struct {
	DataDir          string            // PGDATA of the server
	Target           pgbackrest.Target // backup repository to restore from
	ConfigPath       string            // where the pgbackrest config is written
	StagingDir       string            // temporary home of *.conf during restore
	StopTimeout      time.Duration     // bootstrap grace period after end of output
	Handoff          Handoff
	ProbeObjectStore bool // also probe the bucket directly during verification
}

// DefaultConfig returns the configuration of a stock container boot.
func DefaultConfig() Config {
	return Config{
		DataDir:     DefaultDataDir,
		Target:      pgbackrest.TargetDebug,
		ConfigPath:  pgbackrest.DefaultConfigPath,
		StagingDir:  DefaultStagingDir,
		StopTimeout: readiness.DefaultStopTimeout,
		Handoff:     HandoffChild,
	}
}

// Validate reports every missing or invalid field.
func (c Config) Validate() error {
	var errs []error

	if c.DataDir == "" {
		errs = append(errs, errors.New("data dir must not be empty"))
	}
	if _, err := pgbackrest.ParseTarget(string(c.Target)); err != nil {
		errs = append(errs, err)
	}
	if c.ConfigPath == "" {
		errs = append(errs, errors.New("config path must not be empty"))
	}
	if c.StagingDir == "" {
		errs = append(errs, errors.New("staging dir must not be empty"))
	}
	if c.StagingDir != "" && c.DataDir != "" {
		if err := checkDisjoint(c.StagingDir, c.DataDir); err != nil {
			errs = append(errs, err)
		}
	}
	if c.StopTimeout <= 0 {
		errs = append(errs, fmt.Errorf("stop timeout must be positive, got %s", c.StopTimeout))
	}
	if _, err := ParseHandoff(string(c.Handoff)); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// checkDisjoint rejects a staging dir that is, contains, or lies inside the
// data dir. The staging dir is removed after the restore, and pgbackrest's
// delta restore removes anything inside the data dir it does not know.
func checkDisjoint(staging, dataDir string) error {
	s, err := filepath.Abs(staging)
	if err != nil {
		return fmt.Errorf("resolve staging dir: %w", err)
	}
	d, err := filepath.Abs(dataDir)
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}
	switch {
	case s == d:
		return fmt.Errorf("staging dir %s must differ from data dir %s", staging, dataDir)
	case within(d, s):
		return fmt.Errorf("staging dir %s must not contain data dir %s", staging, dataDir)
	case within(s, d):
		return fmt.Errorf("staging dir %s must not be inside data dir %s", staging, dataDir)
	}
	return nil
}

// within reports whether the absolute path p lies below dir.
func within(p, dir string) bool {
	rel, err := filepath.Rel(dir, p)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
