package kmeans

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrInvalidMaxIterations is returned when the iteration cap is negative.
	ErrInvalidMaxIterations = errors.New("max iterations must not be negative")

	// ErrInvalidPointCount is returned when the configured point count is negative.
	ErrInvalidPointCount = errors.New("point count must not be negative")

	// ErrInvalidWorkers is returned when a negative worker count is configured.
	ErrInvalidWorkers = errors.New("worker count must not be negative")

	// ErrInvalidConfiguration is returned by Run when k exceeds the number of
	// points. No point is modified.
	ErrInvalidConfiguration = errors.New("invalid configuration: k exceeds point count")

	// ErrPointCountMismatch is returned by Run when the point set holds a
	// different number of points than the engine was constructed for.
	ErrPointCountMismatch = errors.New("point count mismatch")
)

// ErrDimensionMismatch indicates a point/engine dimensionality mismatch.
//
// Index is the offending point, or -1 if the mismatch concerns a whole set.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	Index    int
}

func (e *ErrDimensionMismatch) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
	}
	return fmt.Sprintf("dimension mismatch at point %d: expected %d, got %d", e.Index, e.Expected, e.Actual)
}

// ErrInvalidDimension indicates an invalid configured dimension.
type ErrInvalidDimension struct {
	Dimension int
}

func (e *ErrInvalidDimension) Error() string {
	return fmt.Sprintf("invalid dimension: %d", e.Dimension)
}

// ErrInvalidAssignment is returned by Recompute when a point's cluster index
// lies outside [0, K), e.g. because it was never assigned.
var ErrInvalidAssignment = errors.New("invalid cluster assignment")
