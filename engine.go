package kmeans

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/kmeans/internal/parallel"
)

// State is the position of an Engine in its run state machine.
type State int32

const (
	// StateInit is the state before seeding. A run rejected for its
	// configuration stays here.
	StateInit State = iota
	// StateIterating is the assign/recompute loop.
	StateIterating
	// StateConverged means an assignment pass moved no point.
	StateConverged
	// StateExhausted means the iteration cap was reached.
	StateExhausted
	// StateFailed means the run was aborted after seeding began,
	// e.g. by context cancellation.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StateIterating:
		return "Iterating"
	case StateConverged:
		return "Converged"
	case StateExhausted:
		return "Exhausted"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// Termination is the reason a run stopped.
type Termination string

const (
	// Converged means the last assignment pass moved no point.
	Converged Termination = "Converged"
	// Exhausted means the iteration cap was reached while points still moved.
	Exhausted Termination = "Exhausted"
)

// Timings are the wall-clock durations of a run.
type Timings struct {
	Total        time.Duration // whole Run call
	Seeding      time.Duration // centroid seeding
	Refinement   time.Duration // assign/recompute loop
	PerIteration time.Duration // Refinement / Iterations
}

// Result is the outcome of a successful Run. Final assignments are read
// from the point set.
type Result struct {
	Centroids    *CentroidTable
	Iterations   int
	Termination  Termination
	Changes      []int // points reassigned in each iteration
	ClusterSizes []int // points per cluster after the last recompute
	SeedIndexes  []int // point chosen as initial centroid, per cluster
	Timings      Timings
}

// Engine runs Lloyd's k-means over a point set of a fixed shape.
//
// An Engine may be reused; concurrent calls to Run are serialized.
type Engine struct {
	k             int
	totalPoints   int
	dim           int
	maxIterations int

	opts    options
	logger  *Logger
	limiter parallel.Limiter

	runMu sync.Mutex
	state atomic.Int32
}

// New creates an engine for k clusters over totalPoints points of
// totalValues coordinates, stopping after at most maxIterations iterations.
// A cap of 0 behaves like 1: the first iteration always completes.
//
// k > totalPoints is accepted here and rejected by Run.
func New(k, totalPoints, totalValues, maxIterations int, optFns ...Option) (*Engine, error) {
	if k < 1 {
		return nil, ErrInvalidK
	}
	if totalPoints < 0 || int64(totalPoints) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPointCount, totalPoints)
	}
	if totalValues < 1 {
		return nil, &ErrInvalidDimension{Dimension: totalValues}
	}
	if maxIterations < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMaxIterations, maxIterations)
	}

	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.workers < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWorkers, opts.workers)
	}

	e := &Engine{
		k:             k,
		totalPoints:   totalPoints,
		dim:           totalValues,
		maxIterations: max(maxIterations, 1),
		opts:          opts,
		logger:        opts.logger.WithK(k).WithDimension(totalValues),
	}
	if opts.resources != nil {
		e.limiter = opts.resources
	}

	return e, nil
}

// K returns the number of clusters.
func (e *Engine) K() int { return e.k }

// Dim returns the configured dimensionality.
func (e *Engine) Dim() int { return e.dim }

// State returns the current state. It is safe to call while Run is in progress.
func (e *Engine) State() State { return State(e.state.Load()) }

// Workers returns the number of workers a run over the configured points uses.
func (e *Engine) Workers() int { return parallel.Workers(e.totalPoints, e.opts.workers) }

// Run clusters points and returns once the assignments converge or the
// iteration cap is reached.
//
// Every point starts the run Unassigned, so repeated runs over the same
// point set are identical. Configuration errors (k > point count, a point
// set of another shape) are returned before any point is modified.
func (e *Engine) Run(ctx context.Context, points *PointSet) (res *Result, err error) {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	start := time.Now()
	e.state.Store(int32(StateInit))

	defer func() {
		total := time.Since(start)
		iterations := 0
		var term Termination
		if res != nil {
			res.Timings.Total = total
			iterations, term = res.Iterations, res.Termination
		}
		e.opts.metricsCollector.RecordRun(iterations, term, total, err)
		e.logger.LogRun(ctx, iterations, term, total, err)
	}()

	if err := e.validate(points); err != nil {
		return nil, err
	}

	workers := e.Workers()
	memBytes := accumulatorBytes(workers, e.k, e.dim)
	if err := e.opts.resources.AcquireMemory(memBytes); err != nil {
		return nil, fmt.Errorf("reserve accumulators (%d bytes): %w", memBytes, err)
	}
	defer e.opts.resources.ReleaseMemory(memBytes)

	res, err = e.run(ctx, points)
	if err != nil {
		e.state.Store(int32(StateFailed))
		return nil, err
	}
	return res, nil
}

func (e *Engine) validate(points *PointSet) error {
	if e.k > e.totalPoints {
		return fmt.Errorf("%w: k=%d, points=%d", ErrInvalidConfiguration, e.k, e.totalPoints)
	}
	if points == nil {
		return fmt.Errorf("%w: nil point set", ErrPointCountMismatch)
	}
	if points.Len() != e.totalPoints {
		return fmt.Errorf("%w: expected %d, got %d", ErrPointCountMismatch, e.totalPoints, points.Len())
	}
	if points.Dim() != e.dim {
		return &ErrDimensionMismatch{Expected: e.dim, Actual: points.Dim(), Index: -1}
	}
	return nil
}

func (e *Engine) run(ctx context.Context, points *PointSet) (*Result, error) {
	points.ResetAssignments()

	seedStart := time.Now()
	centroids := NewCentroidTable(e.k, e.dim)
	seeded, err := seedCentroids(points, e.k, e.opts.indexSource(), centroids)
	if err != nil {
		return nil, err
	}
	seeding := time.Since(seedStart)
	e.opts.metricsCollector.RecordSeed(seeding)
	e.logger.LogSeed(ctx, seeded.indexes, seeded.rejected, seeding)

	e.state.Store(int32(StateIterating))

	asg := newAssigner(points.Len(), e.opts.workers, e.limiter)
	rc := newRecomputer(points.Len(), e.k, e.dim, e.opts.workers, e.limiter)

	res := &Result{
		Centroids:   centroids,
		SeedIndexes: seeded.indexes,
	}

	loopStart := time.Now()
	for iter := 1; ; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		iterStart := time.Now()

		changed, moved, err := asg.assign(ctx, points, centroids)
		if err != nil {
			return nil, err
		}

		sizes, err := rc.recompute(ctx, points, centroids)
		if err != nil {
			return nil, err
		}

		res.Iterations = iter
		res.Changes = append(res.Changes, moved)
		res.ClusterSizes = sizes

		d := time.Since(iterStart)
		e.opts.metricsCollector.RecordIteration(iter, moved, d)
		e.logger.LogIteration(ctx, iter, moved, countEmpty(sizes), d)

		if !changed {
			res.Termination = Converged
			e.state.Store(int32(StateConverged))
			break
		}
		if iter >= e.maxIterations {
			res.Termination = Exhausted
			e.state.Store(int32(StateExhausted))
			break
		}
	}

	res.Timings.Seeding = seeding
	res.Timings.Refinement = time.Since(loopStart)
	res.Timings.PerIteration = res.Timings.Refinement / time.Duration(res.Iterations)

	return res, nil
}

func countEmpty(sizes []int) int {
	empty := 0
	for _, s := range sizes {
		if s == 0 {
			empty++
		}
	}
	return empty
}

// Seed picks the initial centroids for points the way Run does and assigns
// every chosen point to its cluster.
func (e *Engine) Seed(points *PointSet) (*CentroidTable, error) {
	if err := e.validate(points); err != nil {
		return nil, err
	}
	centroids := NewCentroidTable(e.k, e.dim)
	if _, err := seedCentroids(points, e.k, e.opts.indexSource(), centroids); err != nil {
		return nil, err
	}
	return centroids, nil
}

// Assign runs a single assignment pass, moving every point to its nearest
// centroid. It reports whether any point changed cluster.
func (e *Engine) Assign(ctx context.Context, points *PointSet, centroids *CentroidTable) (bool, error) {
	if err := e.checkShapes(points, centroids); err != nil {
		return false, err
	}
	changed, _, err := newAssigner(points.Len(), e.opts.workers, e.limiter).assign(ctx, points, centroids)
	return changed, err
}

// Recompute runs a single recompute pass over the current assignments and
// returns the number of points per cluster. Every point must be assigned.
func (e *Engine) Recompute(ctx context.Context, points *PointSet, centroids *CentroidTable) ([]int, error) {
	if err := e.checkShapes(points, centroids); err != nil {
		return nil, err
	}
	return newRecomputer(points.Len(), centroids.K(), e.dim, e.opts.workers, e.limiter).recompute(ctx, points, centroids)
}

func (e *Engine) checkShapes(points *PointSet, centroids *CentroidTable) error {
	if points == nil {
		return fmt.Errorf("%w: nil point set", ErrPointCountMismatch)
	}
	if points.Dim() != e.dim {
		return &ErrDimensionMismatch{Expected: e.dim, Actual: points.Dim(), Index: -1}
	}
	if centroids == nil || centroids.K() < 1 {
		return ErrInvalidK
	}
	if centroids.Dim() != e.dim {
		return &ErrDimensionMismatch{Expected: e.dim, Actual: centroids.Dim(), Index: -1}
	}
	return nil
}
