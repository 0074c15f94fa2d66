package pgbackrest

import (
	"fmt"
	"os"

	"github.com/giantswarm/pgbootstrap/internal/fileutil"
	"github.com/giantswarm/pgbootstrap/internal/sentinel"
)

// ErrIOFailure is returned when the configuration file cannot be written.
const ErrIOFailure = sentinel.Error("config file I/O failure")

// DefaultConfigPath is where pgbackrest looks for its configuration.
const DefaultConfigPath = "/etc/pgbackrest.conf"

// ConfigMode keeps the file, which holds the secret key, owner-only.
const ConfigMode os.FileMode = 0o600

// WriteConfig atomically replaces the file at path with text.
func WriteConfig(path, text string) error {
	if err := fileutil.WriteFileAtomic(path, []byte(text), ConfigMode); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrIOFailure, path, err)
	}
	return nil
}
