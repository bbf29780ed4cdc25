// Package testutil provides testing utilities for the kmeans module.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating reproducible point data and
// scripted index sources for centroid seeding.
//
// # Random Point Generation
//
//	rng := testutil.NewRNG(seed)
//	pts := rng.UniformPoints(1000, 16)        // uniform [0, 1)
//	pts, centers := rng.ClusteredPoints(1000, 16, 8, 0.05)
//	pts := rng.GridPoints(1000, 4, 16)        // exactly representable values
//
// # Scripted Seeding
//
//	src := testutil.NewSequenceSource(0, 2) // IntN returns 0, then 2, ...
package testutil
