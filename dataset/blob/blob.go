package blob

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
)

// ErrNotFound is returned when an object does not exist.
var ErrNotFound = os.ErrNotExist

// Source opens objects of one bucket for reading.
type Source interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// Scheme identifies the object store of a Location.
type Scheme string

const (
	SchemeS3    Scheme = "s3"
	SchemeMinIO Scheme = "minio"
)

// Location is a parsed object-store URL.
type Location struct {
	Scheme   Scheme
	Endpoint string // MinIO only
	Bucket   string
	Key      string
}

// String formats the location back into URL form.
func (l Location) String() string {
	if l.Scheme == SchemeMinIO {
		return fmt.Sprintf("minio://%s/%s/%s", l.Endpoint, l.Bucket, l.Key)
	}
	return fmt.Sprintf("s3://%s/%s", l.Bucket, l.Key)
}

// IsLocation reports whether s uses one of the object-store schemes.
func IsLocation(s string) bool {
	return strings.HasPrefix(s, "s3://") || strings.HasPrefix(s, "minio://")
}

// ParseLocation parses s3://bucket/key and minio://endpoint/bucket/key URLs.
func ParseLocation(s string) (Location, error) {
	u, err := url.Parse(s)
	if err != nil {
		return Location{}, fmt.Errorf("blob: parse location %q: %w", s, err)
	}

	path := strings.TrimPrefix(u.Path, "/")

	var loc Location
	switch Scheme(u.Scheme) {
	case SchemeS3:
		loc = Location{Scheme: SchemeS3, Bucket: u.Host, Key: path}
	case SchemeMinIO:
		bucket, key, _ := strings.Cut(path, "/")
		loc = Location{Scheme: SchemeMinIO, Endpoint: u.Host, Bucket: bucket, Key: key}
		if loc.Endpoint == "" {
			return Location{}, fmt.Errorf("blob: location %q: missing endpoint", s)
		}
	default:
		return Location{}, fmt.Errorf("blob: location %q: unsupported scheme %q", s, u.Scheme)
	}

	if loc.Bucket == "" {
		return Location{}, fmt.Errorf("blob: location %q: missing bucket", s)
	}
	if loc.Key == "" || strings.HasSuffix(loc.Key, "/") {
		return Location{}, fmt.Errorf("blob: location %q: missing object key", s)
	}
	return loc, nil
}

// Open resolves loc to a source using the environment's credentials and
// opens the object.
func Open(ctx context.Context, loc Location) (io.ReadCloser, error) {
	var (
		src Source
		err error
	)
	switch loc.Scheme {
	case SchemeS3:
		src, err = NewS3SourceFromConfig(ctx, loc.Bucket)
	case SchemeMinIO:
		src, err = NewMinIOSourceFromEnv(loc.Endpoint, loc.Bucket)
	default:
		err = fmt.Errorf("blob: unsupported scheme %q", loc.Scheme)
	}
	if err != nil {
		return nil, err
	}

	rc, err := src.Open(ctx, loc.Key)
	if err != nil {
		return nil, fmt.Errorf("blob: open %s: %w", loc, err)
	}
	return rc, nil
}
