package kmeans

import "slices"

// Unassigned is the cluster index of a point that has not been assigned yet.
const Unassigned = -1

// PointSet holds the samples of a clustering run together with their
// current cluster assignments.
//
// Coordinates live in a single flat slice (Len() * Dim()); a point's
// identity is its insertion index. Clusters are referenced purely by index.
//
// A PointSet is not safe for concurrent mutation. During Run, the engine
// owns the assignments; each worker writes only the points of its own span.
type PointSet struct {
	dim         int
	values      []float64
	assignments []int
	labels      []string // nil until the first non-empty label
}

// NewPointSet creates an empty point set of the given dimensionality.
func NewPointSet(dim int) (*PointSet, error) {
	if dim < 1 {
		return nil, &ErrInvalidDimension{Dimension: dim}
	}
	return &PointSet{dim: dim}, nil
}

// NewPointSetCapacity creates an empty point set with room for n points.
func NewPointSetCapacity(dim, n int) (*PointSet, error) {
	ps, err := NewPointSet(dim)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		ps.values = make([]float64, 0, n*dim)
		ps.assignments = make([]int, 0, n)
	}
	return ps, nil
}

// Add appends a point and returns its index. The coordinates are copied.
// label may be empty.
func (ps *PointSet) Add(values []float64, label string) (int, error) {
	idx := len(ps.assignments)
	if len(values) != ps.dim {
		return -1, &ErrDimensionMismatch{Expected: ps.dim, Actual: len(values), Index: idx}
	}

	ps.values = append(ps.values, values...)
	ps.assignments = append(ps.assignments, Unassigned)

	if label != "" && ps.labels == nil {
		ps.labels = make([]string, idx, cap(ps.assignments))
	}
	if ps.labels != nil {
		ps.labels = append(ps.labels, label)
	}

	return idx, nil
}

// Len returns the number of points.
func (ps *PointSet) Len() int { return len(ps.assignments) }

// Dim returns the dimensionality of every point.
func (ps *PointSet) Dim() int { return ps.dim }

// Values returns the coordinates of point i.
// The returned slice aliases internal storage and must not be modified.
func (ps *PointSet) Values(i int) []float64 {
	off := i * ps.dim
	return ps.values[off : off+ps.dim : off+ps.dim]
}

// Label returns the display label of point i, or "" if it has none.
func (ps *PointSet) Label(i int) string {
	if ps.labels == nil {
		return ""
	}
	return ps.labels[i]
}

// HasLabels reports whether any point carries a label.
func (ps *PointSet) HasLabels() bool { return ps.labels != nil }

// Cluster returns the cluster index of point i, or Unassigned.
func (ps *PointSet) Cluster(i int) int { return ps.assignments[i] }

// SetCluster sets the cluster index of point i.
func (ps *PointSet) SetCluster(i, cluster int) { ps.assignments[i] = cluster }

// Assignments returns a copy of all cluster assignments, indexed by point.
func (ps *PointSet) Assignments() []int { return slices.Clone(ps.assignments) }

// ResetAssignments marks every point as Unassigned.
func (ps *PointSet) ResetAssignments() {
	for i := range ps.assignments {
		ps.assignments[i] = Unassigned
	}
}
