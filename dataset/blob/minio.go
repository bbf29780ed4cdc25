package blob

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOSource reads objects from a MinIO (or other S3-compatible) bucket.
type MinIOSource struct {
	client *minio.Client
	bucket string
}

// NewMinIOSource creates a source for bucket using client.
func NewMinIOSource(client *minio.Client, bucket string) *MinIOSource {
	return &MinIOSource{
		client: client,
		bucket: bucket,
	}
}

// NewMinIOSourceFromEnv connects to endpoint with credentials taken from the
// environment.
func NewMinIOSourceFromEnv(endpoint, bucket string) (*MinIOSource, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewEnvMinio(),
		Secure: os.Getenv("MINIO_INSECURE") == "",
	})
	if err != nil {
		return nil, fmt.Errorf("blob: minio client for %s: %w", endpoint, err)
	}
	return NewMinIOSource(client, bucket), nil
}

// Open streams the object. The caller must close it.
func (s *MinIOSource) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapMinIOError(err)
	}

	// GetObject is lazy; Stat surfaces a missing key before the first read.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, mapMinIOError(err)
	}
	return obj, nil
}

func mapMinIOError(err error) error {
	errResp := minio.ToErrorResponse(err)
	if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
		return ErrNotFound
	}
	return err
}
