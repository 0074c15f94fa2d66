package pgbackrest

import (
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/giantswarm/pgbootstrap/internal/credential"
	"github.com/giantswarm/pgbootstrap/internal/sentinel"
)

// ErrInvalidValue is returned when a value cannot be written to the
// configuration file.
const ErrInvalidValue = sentinel.Error("invalid config value")

// DefaultRegion is the region of the backup bucket.
const DefaultRegion = "ap-southeast-1"

// Endpoint is the S3 endpoint pgbackrest talks to.
const Endpoint = "s3.amazonaws.com"

// Credentials authenticate pgbackrest against the backup bucket.
type Credentials struct {
	AccessKey string
	SecretKey *credential.Secret
	Region    string
	Bucket    string
}

var configTemplate = template.Must(template.New("pgbackrest.conf").Option("missingkey=error").Parse(`[main]
pg1-path={{.DataDir}}

[global]
process-max=2
repo1-bundle=y
repo1-type=s3
repo1-path={{.RepoPath}}
repo1-s3-key={{.AccessKey}}
repo1-s3-key-secret={{.SecretKey}}
repo1-s3-region={{.Region}}
repo1-s3-bucket={{.Bucket}}
repo1-s3-endpoint={{.Endpoint}}

# Force a checkpoint to start backup immediately.
start-fast=y
# Use delta restore.
delta=y

# Enable ZSTD compression.
compress-type=zst
compress-level=6

log-level-console=info
log-level-file=debug

[global:archive-push]
compress-level=4
`))

type templateData struct {
	DataDir   string
	RepoPath  string
	AccessKey string
	SecretKey string
	Region    string
	Bucket    string
	Endpoint  string
}

// Render returns the configuration for dataDir, restoring from target with
// creds. The output depends only on its inputs. Every field must be
// non-empty and free of line breaks; all problems are reported together.
func Render(creds Credentials, target Target, dataDir string) (string, error) {
	repoPath := target.RepoPath()
	if repoPath == "" {
		return "", fmt.Errorf("%w %q", ErrUnknownTarget, string(target))
	}

	data := templateData{
		DataDir:   dataDir,
		RepoPath:  repoPath,
		AccessKey: creds.AccessKey,
		SecretKey: creds.SecretKey.Reveal(),
		Region:    creds.Region,
		Bucket:    creds.Bucket,
		Endpoint:  Endpoint,
	}
	if err := errors.Join(
		checkValue("pg1-path", data.DataDir),
		checkValue("repo1-s3-key", data.AccessKey),
		checkValue("repo1-s3-key-secret", data.SecretKey),
		checkValue("repo1-s3-region", data.Region),
		checkValue("repo1-s3-bucket", data.Bucket),
	); err != nil {
		return "", err
	}

	var b strings.Builder
	if err := configTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render pgbackrest config: %w", err)
	}
	return b.String(), nil
}

// checkValue reports why value cannot be written as key's value. The
// error names the key, never the value.
func checkValue(key, value string) error {
	switch {
	case value == "":
		return fmt.Errorf("%w: %s must not be empty", ErrInvalidValue, key)
	case strings.ContainsAny(value, "\r\n"):
		return fmt.Errorf("%w: %s must not contain line breaks", ErrInvalidValue, key)
	default:
		return nil
	}
}
