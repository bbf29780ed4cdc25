// Package kmeans implements Lloyd's k-means clustering over an in-memory
// set of n-dimensional points, with parallel assignment and recomputation.
//
// # Quick Start
//
//	points, _ := kmeans.NewPointSet(2)
//	points.Add([]float64{1.0, 1.0}, "a")
//	points.Add([]float64{9.0, 9.5}, "b")
//	// ...
//
//	engine, _ := kmeans.New(k, points.Len(), 2, 100,
//	    kmeans.WithWorkers(8),
//	    kmeans.WithSeed(42),
//	)
//	res, err := engine.Run(ctx, points)
//	if err != nil {
//	    return err
//	}
//	for i := range res.Centroids.K() {
//	    fmt.Println(res.Centroids.Row(i))
//	}
//	cluster := points.Cluster(0)
//
// # Algorithm
//
// Run seeds K centroids from K distinct points chosen by rejection sampling
// from a seeded pseudo-random source, then repeats:
//
//  1. Assign: every point moves to the centroid with the smallest squared
//     Euclidean distance; ties go to the lowest centroid index.
//  2. Recompute: every centroid becomes the mean of its points. A centroid
//     without points keeps its previous position.
//
// The loop stops when an assignment pass moves no point (Converged) or after
// the configured number of iterations (Exhausted). The recompute of the last
// iteration is always applied.
//
// # Concurrency
//
// Both phases split the point range into one contiguous span per worker.
// During assignment a worker writes only the assignments of its own span and
// reports change through a shared atomic flag. During recomputation each
// worker sums into a private accumulator; the accumulators are reduced after
// all workers finish, without locks. The phases are separated by barriers.
//
// Given the same seed and input, runs are deterministic for a fixed worker
// count. Different worker counts sum in a different order, which may change
// results within floating-point rounding.
//
// # Errors
//
//   - ErrInvalidConfiguration: k exceeds the number of points; no point is touched
//   - ErrDimensionMismatch: a point or set of another dimensionality
//   - ErrPointCountMismatch: a point set of another size than configured
package kmeans
