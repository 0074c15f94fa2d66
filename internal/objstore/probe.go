package objstore

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/giantswarm/pgbootstrap/internal/logging"
	"github.com/giantswarm/pgbootstrap/internal/sentinel"
)

// ErrBucketNotFound is returned when the bucket does not exist.
const ErrBucketNotFound = sentinel.Error("bucket does not exist")

// ErrEmptyRepository is returned when the repository prefix holds no
// objects.
const ErrEmptyRepository = sentinel.Error("no objects under repository prefix")

// Prober checks that a pgbackrest repository is present in S3.
type Prober struct {
	client *minio.Client
	cfg    Config
	log    *slog.Logger
}

// NewProber validates cfg and builds an S3 client for it. No request is
// made until Probe.
func NewProber(cfg Config, logger *slog.Logger) (*Prober, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid object store config: %w", err)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    !cfg.Insecure,
		Region:    cfg.Region,
		Transport: newTransport(),
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	return &Prober{client: client, cfg: cfg, log: logging.OrDefault(logger)}, nil
}

// Probe confirms that the bucket exists and that at least one object sits
// under the repository prefix.
func (p *Prober) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	exists, err := p.client.BucketExists(ctx, p.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", p.cfg.Bucket, err)
	}
	if !exists {
		return fmt.Errorf("%s: %w", p.cfg.Bucket, ErrBucketNotFound)
	}

	prefix := KeyPrefix(p.cfg.Prefix)
	objects := p.client.ListObjects(ctx, p.cfg.Bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
		MaxKeys:   1,
	})
	// Only the first object matters; cancel stops the lister.
	obj, ok := <-objects
	if !ok {
		return fmt.Errorf("s3://%s/%s: %w", p.cfg.Bucket, prefix, ErrEmptyRepository)
	}
	if obj.Err != nil {
		return fmt.Errorf("list s3://%s/%s: %w", p.cfg.Bucket, prefix, obj.Err)
	}

	p.log.Info("backup repository found", "bucket", p.cfg.Bucket, "prefix", prefix, "sample_key", obj.Key)
	return nil
}

func newTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
