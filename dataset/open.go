package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hupe1980/kmeans/dataset/blob"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Stdin is the location that reads from standard input.
const Stdin = "-"

// Compression identifies the stream compression of an input.
type Compression uint8

const (
	// CompressionNone indicates plain text.
	CompressionNone Compression = iota
	// CompressionGzip indicates a gzip stream (.gz).
	CompressionGzip
	// CompressionZSTD indicates a zstd stream (.zst, .zstd).
	CompressionZSTD
	// CompressionLZ4 indicates an LZ4 frame stream (.lz4).
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionZSTD:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// CompressionFromName picks the compression by file suffix.
func CompressionFromName(name string) Compression {
	switch {
	case strings.HasSuffix(name, ".gz"):
		return CompressionGzip
	case strings.HasSuffix(name, ".zst"), strings.HasSuffix(name, ".zstd"):
		return CompressionZSTD
	case strings.HasSuffix(name, ".lz4"):
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// Open opens location for reading and decompresses it by suffix.
// The caller must close the returned reader.
func Open(ctx context.Context, location string) (io.ReadCloser, error) {
	var (
		rc   io.ReadCloser
		name string
		err  error
	)

	switch {
	case location == Stdin:
		rc, name = io.NopCloser(os.Stdin), ""
	case blob.IsLocation(location):
		loc, perr := blob.ParseLocation(location)
		if perr != nil {
			return nil, perr
		}
		rc, err = blob.Open(ctx, loc)
		name = loc.Key
	default:
		rc, err = os.Open(location)
		name = location
	}
	if err != nil {
		return nil, err
	}

	r, err := Decompress(rc, CompressionFromName(name))
	if err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("dataset: open %s: %w", location, err)
	}
	return r, nil
}

// Decompress wraps rc in a decoder for c. Closing the result closes rc.
func Decompress(rc io.ReadCloser, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionNone:
		return rc, nil
	case CompressionGzip:
		zr, err := gzip.NewReader(rc)
		if err != nil {
			return nil, err
		}
		return &decodeCloser{Reader: zr, close: zr.Close, src: rc}, nil
	case CompressionZSTD:
		dec, err := zstd.NewReader(rc)
		if err != nil {
			return nil, err
		}
		return &decodeCloser{Reader: dec, close: func() error { dec.Close(); return nil }, src: rc}, nil
	case CompressionLZ4:
		return &decodeCloser{Reader: lz4.NewReader(rc), src: rc}, nil
	default:
		return nil, fmt.Errorf("unsupported compression %s", c)
	}
}

type decodeCloser struct {
	io.Reader
	close func() error
	src   io.Closer
}

func (d *decodeCloser) Close() error {
	var errs []error
	if d.close != nil {
		errs = append(errs, d.close())
	}
	errs = append(errs, d.src.Close())
	return errors.Join(errs...)
}
