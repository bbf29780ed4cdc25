package distance

import "math"

// Func is a function type for distance calculation.
type Func func(a, b []float64) float64

// SquaredL2 calculates the squared L2 (Euclidean) distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func SquaredL2(a, b []float64) float64 {
	b = b[:len(a)]

	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Nearest returns the index of the row of the flattened centroids table
// (k * dim) closest to vec, together with its squared L2 distance.
//
// Ties resolve to the lowest index: a later centroid only wins when it is
// strictly closer. Returns -1 if the table is empty.
func Nearest(vec []float64, centroids []float64, dim int) (int, float64) {
	best := -1
	minDist := math.Inf(1)

	k := len(centroids) / dim
	for j := 0; j < k; j++ {
		d := SquaredL2(vec, centroids[j*dim:(j+1)*dim])
		if d < minDist {
			minDist = d
			best = j
		}
	}

	return best, minDist
}
