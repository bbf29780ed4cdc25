// Package distance provides the distance calculation used for cluster
// assignment.
//
// # Metric
//
// Only squared Euclidean distance is supported. The square root is never
// taken: it is monotonic, so omitting it does not change which centroid is
// nearest.
//
// # Usage
//
//	d := distance.SquaredL2(a, b)
//	idx, d := distance.Nearest(vec, centroids, dim)
package distance
