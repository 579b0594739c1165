package minio

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
)

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		secure     bool
		wantHost   string
		wantSecure bool
		wantErr    bool
	}{
		{name: "host and port", raw: "localhost:9000", secure: false, wantHost: "localhost:9000"},
		{name: "keeps flag", raw: "s3.example.com", secure: true, wantHost: "s3.example.com", wantSecure: true},
		{name: "https forces tls", raw: "https://s3.example.com", wantHost: "s3.example.com", wantSecure: true},
		{name: "http disables tls", raw: "http://minio:9000/", secure: true, wantHost: "minio:9000"},
		{name: "missing host", raw: "http://", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, secure, err := parseEndpoint(tt.raw, tt.secure)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, host)
			assert.Equal(t, tt.wantSecure, secure)
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("requires endpoint and bucket", func(t *testing.T) {
		_, err := New(Config{Endpoint: "localhost:9000"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = New(Config{Bucket: "b"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("creates client", func(t *testing.T) {
		store, err := New(Config{Endpoint: "http://localhost:9000", Bucket: "b", AccessKey: "a", SecretKey: "s"})
		require.NoError(t, err)
		assert.Equal(t, "b", store.bucket)
	})
}

func TestClassifyError(t *testing.T) {
	notFound := minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404}
	assert.ErrorIs(t, classifyError(notFound), domain.ErrNotFound)

	noBucket := minio.ErrorResponse{Code: "NoSuchBucket", StatusCode: 404}
	assert.ErrorIs(t, classifyError(noBucket), domain.ErrSnapshotUnavailable)

	dial := &url.Error{Op: "Get", URL: "http://localhost:1", Err: errors.New("connection refused")}
	assert.ErrorIs(t, classifyError(dial), domain.ErrSnapshotUnavailable)

	other := errors.New("boom")
	assert.Equal(t, other, classifyError(other))
}

// TestStore_Integration requires a running MinIO instance at SCENESEEK_TEST_MINIO.
func TestStore_Integration(t *testing.T) {
	endpoint := os.Getenv("SCENESEEK_TEST_MINIO")
	if endpoint == "" {
		t.Skip("SCENESEEK_TEST_MINIO not set")
	}
	store, err := New(Config{
		Endpoint:  endpoint,
		Bucket:    "sceneseek-test",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.EnsureBucket(ctx))

	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	require.NoError(t, os.WriteFile(src, []byte("snapshot"), 0o600))

	require.NoError(t, store.Upload(ctx, "test/src.bin", src))

	dst := filepath.Join(dir, "dst.bin")
	require.NoError(t, store.Download(ctx, "test/src.bin", dst))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "snapshot", string(data))

	err = store.Download(ctx, "test/missing.bin", filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
