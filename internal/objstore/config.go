package objstore

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultEndpoint is the S3 endpoint pgbackrest is configured with.
const DefaultEndpoint = "s3.amazonaws.com"

// DefaultTimeout bounds a whole Probe call.
const DefaultTimeout = 10 * time.Second

// Config describes the bucket and repository prefix to probe.
type Config struct {
	Endpoint  string // host[:port], no scheme
	AccessKey string
	SecretKey string
	Region    string
	Bucket    string
	Prefix    string // repository path, e.g. /pgbackrest-test
	Insecure  bool   // plain HTTP; only for local test servers
	Timeout   time.Duration
}

// Validate reports every missing or malformed field.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Endpoint) == "" {
		errs = append(errs, errors.New("endpoint is required"))
	}
	if strings.Contains(c.Endpoint, "://") {
		errs = append(errs, fmt.Errorf("endpoint must not include scheme: %q", c.Endpoint))
	}
	if strings.TrimSpace(c.AccessKey) == "" {
		errs = append(errs, errors.New("access key is required"))
	}
	if strings.TrimSpace(c.SecretKey) == "" {
		errs = append(errs, errors.New("secret key is required"))
	}
	if strings.TrimSpace(c.Region) == "" {
		errs = append(errs, errors.New("region is required"))
	}
	if strings.TrimSpace(c.Bucket) == "" {
		errs = append(errs, errors.New("bucket is required"))
	}
	if c.Timeout < 0 {
		errs = append(errs, errors.New("timeout must not be negative"))
	}
	return errors.Join(errs...)
}

// KeyPrefix returns the S3 key prefix for a repository path: no leading
// slash and exactly one trailing slash. The bucket root is "".
func KeyPrefix(repoPath string) string {
	p := strings.Trim(repoPath, "/")
	if p == "" {
		return ""
	}
	return p + "/"
}
