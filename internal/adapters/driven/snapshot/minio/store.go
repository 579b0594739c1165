package minio

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
	"github.com/custodia-labs/sceneseek/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.SnapshotStore = (*Store)(nil)

// Config configures the S3 connection.
type Config struct {
	// Endpoint is a host:port or a URL; an https scheme forces TLS.
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	Region    string
	Secure    bool
}

// Store implements driven.SnapshotStore on top of minio-go.
type Store struct {
	client *minio.Client
	bucket string
	region string
}

// New connects a Store from cfg. No request is made until first use.
func New(cfg Config) (*Store, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("snapshot endpoint and bucket are required: %w", domain.ErrInvalidInput)
	}
	endpoint, secure, err := parseEndpoint(cfg.Endpoint, cfg.Secure)
	if err != nil {
		return nil, err
	}

	var creds *credentials.Credentials
	if cfg.AccessKey != "" {
		creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	} else {
		creds = credentials.NewEnvAWS()
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  creds,
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create snapshot client: %w", err)
	}
	return NewStore(client, cfg.Bucket, cfg.Region), nil
}

// NewStore wraps an existing client.
func NewStore(client *minio.Client, bucket, region string) *Store {
	return &Store{client: client, bucket: bucket, region: region}
}

// EnsureBucket creates the bucket if it does not exist.
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return s.classify(ctx, "check bucket", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return s.classify(ctx, "create bucket", err)
	}
	return nil
}

// Upload stores the file at path under key.
func (s *Store) Upload(ctx context.Context, key, path string) error {
	_, err := s.client.FPutObject(ctx, s.bucket, key, path, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return s.classify(ctx, "upload "+key, err)
	}
	return nil
}

// Download writes the object at key to path.
func (s *Store) Download(ctx context.Context, key, path string) error {
	if err := s.client.FGetObject(ctx, s.bucket, key, path, minio.GetObjectOptions{}); err != nil {
		return s.classify(ctx, "download "+key, err)
	}
	return nil
}

func (s *Store) classify(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("%s: %w", op, classifyError(err))
}

// classifyError maps S3 error codes onto domain errors.
func classifyError(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	case "NoSuchBucket", "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return fmt.Errorf("%w: %w", domain.ErrSnapshotUnavailable, err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%w: %w", domain.ErrSnapshotUnavailable, err)
	}
	return err
}

// parseEndpoint accepts host:port or a URL and returns the host and TLS flag.
func parseEndpoint(raw string, secure bool) (string, bool, error) {
	if !strings.Contains(raw, "://") {
		return strings.TrimSuffix(raw, "/"), secure, nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false, fmt.Errorf("invalid snapshot endpoint %q: %w", raw, domain.ErrInvalidInput)
	}
	switch u.Scheme {
	case "https":
		secure = true
	case "http":
		secure = false
	}
	return u.Host, secure, nil
}
