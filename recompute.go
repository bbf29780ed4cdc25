package kmeans

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/hupe1980/kmeans/internal/parallel"
)

// accumulator is the private per-worker state of a recompute pass:
// per-cluster coordinate sums (K * Dim) and point counts (K).
type accumulator struct {
	dim    int
	sums   []float64
	counts []int
}

func newAccumulator(k, dim int) *accumulator {
	return &accumulator{
		dim:    dim,
		sums:   make([]float64, k*dim),
		counts: make([]int, k),
	}
}

func (a *accumulator) reset() {
	clear(a.sums)
	clear(a.counts)
}

func (a *accumulator) add(cluster int, values []float64) {
	off := cluster * a.dim
	floats.Add(a.sums[off:off+a.dim], values)
	a.counts[cluster]++
}

func (a *accumulator) merge(o *accumulator) {
	floats.Add(a.sums, o.sums)
	for i, c := range o.counts {
		a.counts[i] += c
	}
}

// accumulatorBytes is the memory held by the accumulators of one run.
func accumulatorBytes(workers, k, dim int) int64 {
	return int64(workers) * int64(k*dim+k) * 8
}

// recomputer derives new centroid positions from the current assignments.
type recomputer struct {
	workers int
	limiter parallel.Limiter
	accs    []*accumulator
}

func newRecomputer(n, k, dim, workers int, limiter parallel.Limiter) *recomputer {
	accs := make([]*accumulator, parallel.Workers(n, workers))
	for i := range accs {
		accs[i] = newAccumulator(k, dim)
	}
	return &recomputer{
		workers: workers,
		limiter: limiter,
		accs:    accs,
	}
}

// recompute sets every non-empty centroid to the mean of its points and
// returns the per-cluster point counts. Centroids of empty clusters are left
// untouched.
func (r *recomputer) recompute(ctx context.Context, points *PointSet, centroids *CentroidTable) ([]int, error) {
	k := centroids.K()

	err := parallel.For(ctx, points.Len(), r.workers, r.limiter, func(ctx context.Context, w int, s parallel.Span) error {
		acc := r.accs[w]
		acc.reset()

		for i := s.Lo; i < s.Hi; i++ {
			if (i-s.Lo)%ctxCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}

			c := points.Cluster(i)
			if c < 0 || c >= k {
				return fmt.Errorf("%w: point %d has cluster %d, want [0, %d)", ErrInvalidAssignment, i, c, k)
			}
			acc.add(c, points.Values(i))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	total := r.accs[0]
	for _, acc := range r.accs[1:] {
		total.merge(acc)
	}

	dim := centroids.Dim()
	err = parallel.For(ctx, k, r.workers, r.limiter, func(_ context.Context, _ int, s parallel.Span) error {
		for i := s.Lo; i < s.Hi; i++ {
			count := total.counts[i]
			if count == 0 {
				continue
			}

			n := float64(count)
			sum := total.sums[i*dim : (i+1)*dim]
			row := centroids.Row(i)
			for j := range row {
				row[j] = sum[j] / n
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return append([]int(nil), total.counts...), nil
}
