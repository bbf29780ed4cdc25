package kmeans

import "slices"

// CentroidTable holds the K centroid vectors of a run in a flat K * Dim
// table. Rows are referenced by cluster index.
type CentroidTable struct {
	k    int
	dim  int
	data []float64
}

// NewCentroidTable creates a zeroed table of k centroids.
func NewCentroidTable(k, dim int) *CentroidTable {
	return &CentroidTable{
		k:    k,
		dim:  dim,
		data: make([]float64, k*dim),
	}
}

// K returns the number of centroids.
func (t *CentroidTable) K() int { return t.k }

// Dim returns the dimensionality of every centroid.
func (t *CentroidTable) Dim() int { return t.dim }

// At returns coordinate j of centroid i.
func (t *CentroidTable) At(i, j int) float64 { return t.data[i*t.dim+j] }

// Set sets coordinate j of centroid i.
func (t *CentroidTable) Set(i, j int, v float64) { t.data[i*t.dim+j] = v }

// Row returns centroid i. The slice aliases the table.
func (t *CentroidTable) Row(i int) []float64 {
	off := i * t.dim
	return t.data[off : off+t.dim : off+t.dim]
}

// SetRow copies values into centroid i.
func (t *CentroidTable) SetRow(i int, values []float64) {
	copy(t.Row(i), values)
}

// Flat returns the whole table as one slice (K * Dim).
// The slice aliases the table.
func (t *CentroidTable) Flat() []float64 { return t.data }

// Clone returns a deep copy of the table.
func (t *CentroidTable) Clone() *CentroidTable {
	return &CentroidTable{
		k:    t.k,
		dim:  t.dim,
		data: slices.Clone(t.data),
	}
}

// Rows returns a copy of the table as one slice per centroid.
func (t *CentroidTable) Rows() [][]float64 {
	rows := make([][]float64, t.k)
	for i := range rows {
		rows[i] = slices.Clone(t.Row(i))
	}
	return rows
}
