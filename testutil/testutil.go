package testutil

import (
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), // nolint gosec
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// UniformPoints generates points with coordinates in range [0, 1).
// Uses a single backing array for efficiency.
func (r *RNG) UniformPoints(num, dim int) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dim)
	points := make([][]float64, num)

	for i := range num {
		p := data[i*dim : (i+1)*dim]
		for j := range p {
			p[j] = r.rand.Float64()
		}
		points[i] = p
	}

	return points
}

// ClusteredPoints generates points scattered around clusters random centers
// in [-10, 10)^dim with Gaussian noise of standard deviation spread.
// Point i belongs to center i % clusters. The centers are returned as well.
func (r *RNG) ClusteredPoints(num, dim, clusters int, spread float64) ([][]float64, [][]float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	centers := make([][]float64, clusters)
	for c := range centers {
		centers[c] = make([]float64, dim)
		for j := range centers[c] {
			centers[c][j] = r.rand.Float64()*20 - 10
		}
	}

	data := make([]float64, num*dim)
	points := make([][]float64, num)

	for i := range num {
		center := centers[i%clusters]
		p := data[i*dim : (i+1)*dim]
		for j := range p {
			p[j] = center[j] + r.rand.NormFloat64()*spread
		}
		points[i] = p
	}

	return points, centers
}

// GridPoints generates points whose coordinates are small integers in
// [0, levels). Sums and most means of such values are exact in float64,
// so results do not depend on summation order.
func (r *RNG) GridPoints(num, levels, dim int) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dim)
	points := make([][]float64, num)

	for i := range num {
		p := data[i*dim : (i+1)*dim]
		for j := range p {
			p[j] = float64(r.rand.Intn(levels))
		}
		points[i] = p
	}

	return points
}

// SequenceSource is a scripted index source: IntN returns the configured
// values in order, cycling when exhausted, reduced modulo n.
// It is not safe for concurrent use.
type SequenceSource struct {
	seq   []int
	pos   int
	Calls int
}

// NewSequenceSource creates a source returning seq in order.
func NewSequenceSource(seq ...int) *SequenceSource {
	return &SequenceSource{seq: seq}
}

// IntN returns the next scripted value modulo n.
func (s *SequenceSource) IntN(n int) int {
	v := s.seq[s.pos%len(s.seq)]
	s.pos++
	s.Calls++
	return v % n
}
