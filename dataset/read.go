package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/hupe1980/kmeans"
)

// maxPreallocPoints bounds the capacity reserved from an untrusted header.
const maxPreallocPoints = 1 << 20

// HeaderRecord is the Record value of a ParseError raised in the header.
const HeaderRecord = -1

// Header is the first line of an input stream.
type Header struct {
	TotalPoints   int
	TotalValues   int
	K             int
	MaxIterations int
	HasName       bool
}

// ParseError reports a malformed token.
type ParseError struct {
	Record int    // zero-based point index, or HeaderRecord
	Field  string // header field name, "value[j]" or "name"
	Err    error
}

func (e *ParseError) Error() string {
	if e.Record == HeaderRecord {
		return fmt.Sprintf("dataset: header field %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("dataset: record %d field %s: %v", e.Record, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ErrOutOfRange is wrapped by a ParseError for a header count below its minimum.
var ErrOutOfRange = errors.New("value out of range")

type tokenizer struct {
	sc *bufio.Scanner
}

func newTokenizer(r io.Reader) *tokenizer {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	sc.Split(bufio.ScanWords)
	return &tokenizer{sc: sc}
}

func (t *tokenizer) next(record int, field string) (string, error) {
	if t.sc.Scan() {
		return t.sc.Text(), nil
	}
	err := t.sc.Err()
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return "", &ParseError{Record: record, Field: field, Err: err}
}

func (t *tokenizer) int(record int, field string, lowest int) (int, error) {
	tok, err := t.next(record, field)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, &ParseError{Record: record, Field: field, Err: err}
	}
	if v < lowest {
		return 0, &ParseError{Record: record, Field: field, Err: fmt.Errorf("%w: %d < %d", ErrOutOfRange, v, lowest)}
	}
	return v, nil
}

func (t *tokenizer) float(record int, field string) (float64, error) {
	tok, err := t.next(record, field)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, &ParseError{Record: record, Field: field, Err: err}
	}
	return v, nil
}

// ReadHeader reads the five header tokens.
func ReadHeader(r io.Reader) (*Header, error) {
	return readHeader(newTokenizer(r))
}

func readHeader(t *tokenizer) (*Header, error) {
	var (
		h   Header
		err error
	)
	if h.TotalPoints, err = t.int(HeaderRecord, "total_points", 0); err != nil {
		return nil, err
	}
	if h.TotalValues, err = t.int(HeaderRecord, "total_values", 1); err != nil {
		return nil, err
	}
	if h.K, err = t.int(HeaderRecord, "K", 0); err != nil {
		return nil, err
	}
	if h.MaxIterations, err = t.int(HeaderRecord, "max_iterations", 0); err != nil {
		return nil, err
	}
	hasName, err := t.int(HeaderRecord, "has_name", 0)
	if err != nil {
		return nil, err
	}
	h.HasName = hasName != 0
	return &h, nil
}

// Read parses a complete input stream into its header and point set.
// Tokens after the last record are ignored.
func Read(r io.Reader) (*Header, *kmeans.PointSet, error) {
	t := newTokenizer(r)

	h, err := readHeader(t)
	if err != nil {
		return nil, nil, err
	}

	points, err := kmeans.NewPointSetCapacity(h.TotalValues, min(h.TotalPoints, maxPreallocPoints))
	if err != nil {
		return nil, nil, err
	}

	values := make([]float64, h.TotalValues)
	for i := range h.TotalPoints {
		for j := range values {
			if values[j], err = t.float(i, "value["+strconv.Itoa(j)+"]"); err != nil {
				return nil, nil, err
			}
		}

		var label string
		if h.HasName {
			if label, err = t.next(i, "name"); err != nil {
				return nil, nil, err
			}
		}

		if _, err := points.Add(values, label); err != nil {
			return nil, nil, err
		}
	}

	return h, points, nil
}
