package pgbackrest

import (
	"fmt"
	"slices"
	"strings"

	"github.com/giantswarm/pgbootstrap/internal/sentinel"
)

// ErrUnknownTarget is returned when parsing an unknown backup target name.
const ErrUnknownTarget = sentinel.Error("unknown backup target")

// Target selects which repository in the bucket backups are read from.
type Target string

const (
	// TargetDebug is the scratch repository used for testing restores.
	TargetDebug Target = "debug"

	// TargetProd is the production repository.
	TargetProd Target = "prod"
)

var repoPaths = map[Target]string{
	TargetDebug: "/pgbackrest-test",
	TargetProd:  "/penguin-db/pgbackrest",
}

// Targets returns every known target in a stable order.
func Targets() []Target {
	return []Target{TargetDebug, TargetProd}
}

// ParseTarget returns the Target named s.
func ParseTarget(s string) (Target, error) {
	t := Target(s)
	if _, ok := repoPaths[t]; !ok {
		return "", fmt.Errorf("%w %q (valid: %s)", ErrUnknownTarget, s, targetNames())
	}
	return t, nil
}

// RepoPath returns the repository path inside the bucket, or "" for an
// unknown target.
func (t Target) RepoPath() string {
	return repoPaths[t]
}

// String implements fmt.Stringer and pflag.Value.
func (t Target) String() string {
	return string(t)
}

// Set implements pflag.Value.
func (t *Target) Set(s string) error {
	parsed, err := ParseTarget(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Type implements pflag.Value.
func (t *Target) Type() string {
	return "target"
}

// UnmarshalText implements encoding.TextUnmarshaler, used when a target is
// read from a settings file.
func (t *Target) UnmarshalText(text []byte) error {
	return t.Set(string(text))
}

// MarshalText implements encoding.TextMarshaler.
func (t Target) MarshalText() ([]byte, error) {
	return []byte(t), nil
}

func targetNames() string {
	names := make([]string, 0, len(repoPaths))
	for _, t := range Targets() {
		names = append(names, string(t))
	}
	return strings.Join(slices.Clip(names), "|")
}
