package kmeans

import (
	"context"
	"sync/atomic"

	"github.com/hupe1980/kmeans/distance"
	"github.com/hupe1980/kmeans/internal/parallel"
)

// ctxCheckInterval is how many points a worker processes between context checks.
const ctxCheckInterval = 4096

// assigner moves every point to its nearest centroid.
//
// Each worker owns a contiguous span of points and is the only writer of
// their assignments; centroids are read-only during the pass.
type assigner struct {
	workers int
	limiter parallel.Limiter
	moved   []int // per-worker reassignment counts
}

func newAssigner(n, workers int, limiter parallel.Limiter) *assigner {
	return &assigner{
		workers: workers,
		limiter: limiter,
		moved:   make([]int, parallel.Workers(n, workers)),
	}
}

// assign reassigns every point to its nearest centroid. changed reports
// whether any point moved; moved is the number of points that did.
func (a *assigner) assign(ctx context.Context, points *PointSet, centroids *CentroidTable) (bool, int, error) {
	var changed atomic.Bool

	flat := centroids.Flat()
	dim := centroids.Dim()

	err := parallel.For(ctx, points.Len(), a.workers, a.limiter, func(ctx context.Context, w int, s parallel.Span) error {
		local := 0
		for i := s.Lo; i < s.Hi; i++ {
			if (i-s.Lo)%ctxCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}

			best, _ := distance.Nearest(points.Values(i), flat, dim)
			if points.Cluster(i) != best {
				points.SetCluster(i, best)
				local++
			}
		}

		a.moved[w] = local
		if local > 0 {
			changed.Store(true)
		}
		return nil
	})
	if err != nil {
		return false, 0, err
	}

	moved := 0
	for _, m := range a.moved {
		moved += m
	}

	return changed.Load(), moved, nil
}
