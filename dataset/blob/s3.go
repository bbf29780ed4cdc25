package blob

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of the S3 client used by S3Source.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads objects from an S3 bucket.
type S3Source struct {
	client S3API
	bucket string
}

// NewS3Source creates a source for bucket using client.
func NewS3Source(client S3API, bucket string) *S3Source {
	return &S3Source{
		client: client,
		bucket: bucket,
	}
}

// NewS3SourceFromConfig creates a source backed by a client built from the
// default AWS configuration chain.
func NewS3SourceFromConfig(ctx context.Context, bucket string, optFns ...func(*config.LoadOptions) error) (*S3Source, error) {
	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("blob: load aws config: %w", err)
	}
	return NewS3Source(s3.NewFromConfig(cfg), bucket), nil
}

// Open streams the object body. The caller must close it.
func (s *S3Source) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrNotFound
		}
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return resp.Body, nil
}
