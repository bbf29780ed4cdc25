package kmeans

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kmeans/resource"
	"github.com/hupe1980/kmeans/testutil"
)

var twoGroups = [][]float64{{1.0}, {1.1}, {9.0}, {9.2}}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name   string
		k      int
		points int
		dim    int
		iters  int
		opts   []Option
		target error
	}{
		{"ZeroK", 0, 10, 2, 10, nil, ErrInvalidK},
		{"NegativePoints", 2, -1, 2, 10, nil, ErrInvalidPointCount},
		{"NegativeIterations", 2, 10, 2, -1, nil, ErrInvalidMaxIterations},
		{"NegativeWorkers", 2, 10, 2, 10, []Option{WithWorkers(-1)}, ErrInvalidWorkers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.k, tt.points, tt.dim, tt.iters, tt.opts...)
			assert.ErrorIs(t, err, tt.target)
		})
	}

	t.Run("ZeroDimension", func(t *testing.T) {
		_, err := New(2, 10, 0, 10)
		var id *ErrInvalidDimension
		assert.ErrorAs(t, err, &id)
	})

	t.Run("KGreaterThanPointsAccepted", func(t *testing.T) {
		e, err := New(5, 2, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, 5, e.K())
		assert.Equal(t, 1, e.Dim())
		assert.Equal(t, StateInit, e.State())
	})
}

func TestRun_TwoGroups(t *testing.T) {
	for _, workers := range []int{1, 2, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			points := newTestPointSet(t, 1, twoGroups)
			e, err := New(2, 4, 1, 10,
				WithWorkers(workers),
				WithIndexSource(testutil.NewSequenceSource(0, 2)),
			)
			require.NoError(t, err)

			res, err := e.Run(context.Background(), points)
			require.NoError(t, err)

			assert.Equal(t, Converged, res.Termination)
			assert.Equal(t, StateConverged, e.State())
			assert.LessOrEqual(t, res.Iterations, 2)
			assert.Equal(t, []int{0, 2}, res.SeedIndexes)
			assert.InDelta(t, 1.05, res.Centroids.At(0, 0), 1e-12)
			assert.InDelta(t, 9.1, res.Centroids.At(1, 0), 1e-12)
			assert.Equal(t, []int{0, 0, 1, 1}, points.Assignments())
			assert.Equal(t, []int{2, 2}, res.ClusterSizes)
			assert.Equal(t, []int{2, 0}, res.Changes)
		})
	}
}

func TestRun_KEqualsPoints(t *testing.T) {
	rows := [][]float64{{0, 0}, {5, 5}, {10, 0}, {0, 10}, {-7, 3}}
	points := newTestPointSet(t, 2, rows)

	e, err := New(len(rows), len(rows), 2, 10, WithWorkers(3))
	require.NoError(t, err)

	res, err := e.Run(context.Background(), points)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, Converged, res.Termination)
	assert.Equal(t, []int{0}, res.Changes)

	// Every point is a singleton cluster centred on itself.
	seen := make(map[int]bool)
	for i := range rows {
		c := points.Cluster(i)
		require.False(t, seen[c], "cluster %d used twice", c)
		seen[c] = true
		assert.Equal(t, rows[i], res.Centroids.Row(c))
		assert.Equal(t, c, indexOf(res.SeedIndexes, i))
	}
	for _, size := range res.ClusterSizes {
		assert.Equal(t, 1, size)
	}
}

func indexOf(s []int, v int) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

func TestRun_KGreaterThanPoints(t *testing.T) {
	points := newTestPointSet(t, 1, twoGroups)
	mc := &BasicMetricsCollector{}

	e, err := New(5, 4, 1, 10, WithMetricsCollector(mc))
	require.NoError(t, err)

	res, err := e.Run(context.Background(), points)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	assert.Nil(t, res)
	assert.Equal(t, StateInit, e.State())

	for i := range points.Len() {
		assert.Equal(t, Unassigned, points.Cluster(i))
	}

	stats := mc.GetStats()
	assert.Equal(t, int64(1), stats.RunErrors)
	assert.Zero(t, stats.SeedCount)
}

func TestRun_ShapeMismatch(t *testing.T) {
	t.Run("Dimension", func(t *testing.T) {
		points := newTestPointSet(t, 2, [][]float64{{1, 1}, {2, 2}})
		e, err := New(2, 2, 3, 10)
		require.NoError(t, err)

		_, err = e.Run(context.Background(), points)
		var dm *ErrDimensionMismatch
		require.ErrorAs(t, err, &dm)
		assert.Equal(t, 3, dm.Expected)
		assert.Equal(t, 2, dm.Actual)
		assert.Equal(t, []int{Unassigned, Unassigned}, points.Assignments())
	})

	t.Run("Count", func(t *testing.T) {
		points := newTestPointSet(t, 1, twoGroups)
		e, err := New(2, 3, 1, 10)
		require.NoError(t, err)

		_, err = e.Run(context.Background(), points)
		assert.ErrorIs(t, err, ErrPointCountMismatch)
	})

	t.Run("Nil", func(t *testing.T) {
		e, err := New(1, 1, 1, 10)
		require.NoError(t, err)

		_, err = e.Run(context.Background(), nil)
		assert.ErrorIs(t, err, ErrPointCountMismatch)
	})
}

func TestRun_Exhausted(t *testing.T) {
	points := newTestPointSet(t, 1, twoGroups)
	e, err := New(2, 4, 1, 1, WithIndexSource(testutil.NewSequenceSource(0, 2)))
	require.NoError(t, err)

	res, err := e.Run(context.Background(), points)
	require.NoError(t, err)

	assert.Equal(t, Exhausted, res.Termination)
	assert.Equal(t, StateExhausted, e.State())
	assert.Equal(t, 1, res.Iterations)

	// The recompute of the final iteration is applied.
	assert.InDelta(t, 1.05, res.Centroids.At(0, 0), 1e-12)
	assert.InDelta(t, 9.1, res.Centroids.At(1, 0), 1e-12)
}

func TestRun_Properties(t *testing.T) {
	rng := testutil.NewRNG(7)
	rows, _ := rng.ClusteredPoints(2000, 8, 6, 1.5)

	for _, tc := range []struct {
		k, maxIter, workers int
	}{
		{6, 100, 4},
		{12, 3, 3},
		{1, 10, 8},
	} {
		points := newTestPointSet(t, 8, rows)
		e, err := New(tc.k, len(rows), 8, tc.maxIter, WithWorkers(tc.workers), WithSeed(99))
		require.NoError(t, err)

		res, err := e.Run(context.Background(), points)
		require.NoError(t, err)

		// Terminates within the cap.
		assert.LessOrEqual(t, res.Iterations, tc.maxIter)
		assert.Len(t, res.Changes, res.Iterations)

		// Every assignment lies in [0, K).
		for i := range points.Len() {
			c := points.Cluster(i)
			require.GreaterOrEqual(t, c, 0)
			require.Less(t, c, tc.k)
		}

		// Cluster sizes add up to the point count.
		total := 0
		for _, s := range res.ClusterSizes {
			total += s
		}
		assert.Equal(t, len(rows), total)

		assert.Equal(t, res.Timings.Refinement/time.Duration(res.Iterations), res.Timings.PerIteration)
		assert.GreaterOrEqual(t, res.Timings.Total, res.Timings.Refinement)
	}
}

func TestRun_Determinism(t *testing.T) {
	rng := testutil.NewRNG(11)
	rows, _ := rng.ClusteredPoints(1500, 4, 5, 2)

	run := func(workers int) (*Result, []int) {
		points := newTestPointSet(t, 4, rows)
		e, err := New(5, len(rows), 4, 50, WithWorkers(workers), WithSeed(3))
		require.NoError(t, err)
		res, err := e.Run(context.Background(), points)
		require.NoError(t, err)
		return res, points.Assignments()
	}

	r1, a1 := run(4)
	r2, a2 := run(4)
	assert.Equal(t, r1.Iterations, r2.Iterations)
	assert.Equal(t, r1.Centroids.Flat(), r2.Centroids.Flat())
	assert.Equal(t, a1, a2)

	// Across worker counts results agree up to summation order.
	r3, a3 := run(1)
	assert.Equal(t, r1.Iterations, r3.Iterations)
	assert.Equal(t, a1, a3)
	assert.InDeltaSlice(t, r1.Centroids.Flat(), r3.Centroids.Flat(), 1e-9)
}

func TestRun_DeterminismAcrossWorkers_Exact(t *testing.T) {
	// Integer coordinates make every partial sum exact, so the result is
	// bit-identical no matter how the points are split.
	rows := testutil.NewRNG(5).GridPoints(999, 16, 3)

	var want *Result
	var wantAssign []int
	for _, workers := range []int{1, 2, 3, 7, 16} {
		points := newTestPointSet(t, 3, rows)
		e, err := New(8, len(rows), 3, 100, WithWorkers(workers))
		require.NoError(t, err)

		res, err := e.Run(context.Background(), points)
		require.NoError(t, err)

		if want == nil {
			want, wantAssign = res, points.Assignments()
			continue
		}
		assert.Equal(t, want.Iterations, res.Iterations, "workers=%d", workers)
		assert.Equal(t, want.Centroids.Flat(), res.Centroids.Flat(), "workers=%d", workers)
		assert.Equal(t, wantAssign, points.Assignments(), "workers=%d", workers)
	}
}

func TestRun_Reuse(t *testing.T) {
	rows := testutil.NewRNG(1).UniformPoints(300, 2)
	e, err := New(4, len(rows), 2, 30, WithWorkers(2))
	require.NoError(t, err)

	p1 := newTestPointSet(t, 2, rows)
	r1, err := e.Run(context.Background(), p1)
	require.NoError(t, err)

	p2 := newTestPointSet(t, 2, rows)
	r2, err := e.Run(context.Background(), p2)
	require.NoError(t, err)

	assert.Equal(t, r1.SeedIndexes, r2.SeedIndexes)
	assert.Equal(t, r1.Centroids.Flat(), r2.Centroids.Flat())
}

func TestRun_SamePointSetTwice(t *testing.T) {
	points := newTestPointSet(t, 1, twoGroups)
	e, err := New(2, 4, 1, 10,
		WithWorkers(2),
		WithIndexSource(testutil.NewSequenceSource(0, 2)),
	)
	require.NoError(t, err)

	r1, err := e.Run(context.Background(), points)
	require.NoError(t, err)
	a1 := points.Assignments()

	r2, err := e.Run(context.Background(), points)
	require.NoError(t, err)

	assert.Equal(t, 2, r1.Iterations)
	assert.Equal(t, r1.Iterations, r2.Iterations)
	assert.Equal(t, []int{2, 0}, r2.Changes)
	assert.Equal(t, r1.Termination, r2.Termination)
	assert.Equal(t, r1.Centroids.Flat(), r2.Centroids.Flat())
	assert.Equal(t, a1, points.Assignments())
}

func TestRun_ZeroIterationCap(t *testing.T) {
	points := newTestPointSet(t, 1, twoGroups)
	e, err := New(2, 4, 1, 0, WithIndexSource(testutil.NewSequenceSource(0, 2)))
	require.NoError(t, err)

	res, err := e.Run(context.Background(), points)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, Exhausted, res.Termination)
	assert.Equal(t, StateExhausted, e.State())
	assert.Equal(t, []int{2}, res.Changes)
	assert.Equal(t, []int{0, 0, 1, 1}, points.Assignments())
	assert.InDelta(t, 1.05, res.Centroids.At(0, 0), 1e-12)
	assert.InDelta(t, 9.1, res.Centroids.At(1, 0), 1e-12)
}

func TestRun_Cancelled(t *testing.T) {
	rows := testutil.NewRNG(1).UniformPoints(100, 2)
	points := newTestPointSet(t, 2, rows)

	e, err := New(3, len(rows), 2, 10)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = e.Run(ctx, points)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateFailed, e.State())
}

func TestRun_Metrics(t *testing.T) {
	mc := &BasicMetricsCollector{}
	points := newTestPointSet(t, 1, twoGroups)

	e, err := New(2, 4, 1, 10,
		WithMetricsCollector(mc),
		WithIndexSource(testutil.NewSequenceSource(0, 2)),
	)
	require.NoError(t, err)

	res, err := e.Run(context.Background(), points)
	require.NoError(t, err)

	stats := mc.GetStats()
	assert.Equal(t, int64(1), stats.SeedCount)
	assert.Equal(t, int64(res.Iterations), stats.IterationCount)
	assert.Equal(t, int64(2), stats.Reassigned)
	assert.Equal(t, int64(1), stats.RunCount)
	assert.Equal(t, int64(1), stats.ConvergedRuns)
	assert.Zero(t, stats.ExhaustedRuns)
	assert.Zero(t, stats.RunErrors)
}

func TestRun_ResourceController(t *testing.T) {
	rows := testutil.NewRNG(2).UniformPoints(200, 4)

	t.Run("MemoryLimitExceeded", func(t *testing.T) {
		rc := resource.NewController(resource.Config{MemoryLimitBytes: 64})
		points := newTestPointSet(t, 4, rows)

		e, err := New(4, len(rows), 4, 10, WithWorkers(2), WithResourceController(rc))
		require.NoError(t, err)

		_, err = e.Run(context.Background(), points)
		assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
		assert.Empty(t, nonUnassigned(points))
		assert.Zero(t, rc.MemoryUsage())
	})

	t.Run("Released", func(t *testing.T) {
		rc := resource.NewController(resource.Config{
			MemoryLimitBytes: 1 << 20,
			MaxWorkers:       1,
		})
		points := newTestPointSet(t, 4, rows)

		e, err := New(4, len(rows), 4, 10, WithWorkers(4), WithResourceController(rc))
		require.NoError(t, err)

		_, err = e.Run(context.Background(), points)
		require.NoError(t, err)
		assert.Zero(t, rc.MemoryUsage())
		assert.Zero(t, rc.ActiveWorkers())
	})
}

func nonUnassigned(ps *PointSet) []int {
	var idx []int
	for i := range ps.Len() {
		if ps.Cluster(i) != Unassigned {
			idx = append(idx, i)
		}
	}
	return idx
}

func TestEngine_AssignIdempotent(t *testing.T) {
	rng := testutil.NewRNG(3)
	rows, _ := rng.ClusteredPoints(500, 3, 4, 0.5)
	points := newTestPointSet(t, 3, rows)

	e, err := New(4, len(rows), 3, 100, WithWorkers(4))
	require.NoError(t, err)

	res, err := e.Run(context.Background(), points)
	require.NoError(t, err)
	require.Equal(t, Converged, res.Termination)

	before := points.Assignments()
	changed, err := e.Assign(context.Background(), points, res.Centroids)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, before, points.Assignments())
}

func TestEngine_AssignTieBreak(t *testing.T) {
	points := newTestPointSet(t, 1, [][]float64{{5}, {5}})
	e, err := New(3, 2, 1, 10, WithWorkers(2))
	require.NoError(t, err)

	// 5 is equidistant from 0 and 10; the duplicate at index 2 never wins.
	centroids := NewCentroidTable(3, 1)
	centroids.SetRow(0, []float64{0})
	centroids.SetRow(1, []float64{10})
	centroids.SetRow(2, []float64{0})

	changed, err := e.Assign(context.Background(), points, centroids)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []int{0, 0}, points.Assignments())
}

func TestEngine_Recompute(t *testing.T) {
	points := newTestPointSet(t, 2, [][]float64{{0, 0}, {2, 2}, {10, 10}, {11, 13}, {12, 10}})
	for i, c := range []int{0, 0, 1, 1, 1} {
		points.SetCluster(i, c)
	}

	e, err := New(3, 5, 2, 10, WithWorkers(2))
	require.NoError(t, err)

	centroids := NewCentroidTable(3, 2)
	centroids.SetRow(2, []float64{math.Pi, -math.E})
	emptyBefore := []uint64{math.Float64bits(centroids.At(2, 0)), math.Float64bits(centroids.At(2, 1))}

	sizes, err := e.Recompute(context.Background(), points, centroids)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 3, 0}, sizes)
	assert.Equal(t, []float64{1, 1}, centroids.Row(0))
	assert.Equal(t, []float64{11, 11}, centroids.Row(1))

	// The empty cluster keeps its previous centroid bit for bit.
	assert.Equal(t, emptyBefore, []uint64{math.Float64bits(centroids.At(2, 0)), math.Float64bits(centroids.At(2, 1))})
}

func TestEngine_RecomputeCountsConserved(t *testing.T) {
	rows := testutil.NewRNG(9).UniformPoints(1001, 5)
	points := newTestPointSet(t, 5, rows)

	for _, workers := range []int{1, 3, 8} {
		e, err := New(7, len(rows), 5, 10, WithWorkers(workers))
		require.NoError(t, err)

		centroids, err := e.Seed(points)
		require.NoError(t, err)
		_, err = e.Assign(context.Background(), points, centroids)
		require.NoError(t, err)

		sizes, err := e.Recompute(context.Background(), points, centroids)
		require.NoError(t, err)

		total := 0
		for _, s := range sizes {
			total += s
		}
		assert.Equal(t, len(rows), total)
		points.ResetAssignments()
	}
}

func TestEngine_RecomputeUnassigned(t *testing.T) {
	points := newTestPointSet(t, 1, twoGroups)
	e, err := New(2, 4, 1, 10)
	require.NoError(t, err)

	_, err = e.Recompute(context.Background(), points, NewCentroidTable(2, 1))
	assert.ErrorIs(t, err, ErrInvalidAssignment)
}

func TestEngine_StepShapeMismatch(t *testing.T) {
	points := newTestPointSet(t, 1, twoGroups)
	e, err := New(2, 4, 1, 10)
	require.NoError(t, err)

	_, err = e.Assign(context.Background(), points, NewCentroidTable(2, 3))
	var dm *ErrDimensionMismatch
	assert.True(t, errors.As(err, &dm))

	_, err = e.Recompute(context.Background(), points, nil)
	assert.ErrorIs(t, err, ErrInvalidK)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "Init", StateInit.String())
	assert.Equal(t, "Iterating", StateIterating.String())
	assert.Equal(t, "Converged", StateConverged.String())
	assert.Equal(t, "Exhausted", StateExhausted.String())
	assert.Equal(t, "Failed", StateFailed.String())
	assert.Equal(t, "Unknown(42)", State(42).String())
}

func BenchmarkRun(b *testing.B) {
	rng := testutil.NewRNG(42)
	rows, _ := rng.ClusteredPoints(20000, 32, 16, 1)

	for _, workers := range []int{1, 4, 0} {
		b.Run(fmt.Sprintf("workers=%d", workers), func(b *testing.B) {
			points := newTestPointSet(b, 32, rows)
			e, err := New(16, len(rows), 32, 20, WithWorkers(workers))
			require.NoError(b, err)

			b.ReportAllocs()
			for b.Loop() {
				if _, err := e.Run(context.Background(), points); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
