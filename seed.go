package kmeans

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

type seedResult struct {
	indexes  []int // point chosen for each cluster, by cluster index
	rejected int   // draws that hit an already chosen point
}

// seedCentroids picks k distinct points by rejection sampling and copies
// their coordinates into the rows of table. Every chosen point is assigned
// to its cluster immediately.
//
// Seeding is serial: draws must be checked against every earlier accepted
// draw, and k is small compared to the refinement work.
func seedCentroids(points *PointSet, k int, src IndexSource, table *CentroidTable) (seedResult, error) {
	n := points.Len()
	chosen := roaring.New()
	res := seedResult{indexes: make([]int, 0, k)}

	for i := 0; i < k; i++ {
		for {
			idx := src.IntN(n)
			if idx < 0 || idx >= n {
				return res, fmt.Errorf("index source returned %d, want [0, %d)", idx, n)
			}

			if !chosen.CheckedAdd(uint32(idx)) {
				res.rejected++
				continue
			}

			points.SetCluster(idx, i)
			table.SetRow(i, points.Values(idx))
			res.indexes = append(res.indexes, idx)
			break
		}
	}

	return res, nil
}
