package dataset

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/hupe1980/kmeans"
	"github.com/hupe1980/kmeans/codec"
)

// WriteText writes res in the classic report layout:
//
//	Break in iteration 2
//
//	Cluster values: 1.05
//
//	Cluster values: 9.1
//
//	TOTAL EXECUTION TIME = 153
//	TIME PHASE 1 = 12
//	TIME PHASE 2 = 141
//	TIME PER ITERATION = 70
//
// Each coordinate is followed by a single space. Times are microseconds.
func WriteText(w io.Writer, res *kmeans.Result) error {
	if res == nil {
		return errors.New("dataset: nil result")
	}

	bw := bufio.NewWriter(w)
	var buf []byte

	buf = append(buf, "Break in iteration "...)
	buf = strconv.AppendInt(buf, int64(res.Iterations), 10)
	buf = append(buf, "\n\n"...)
	if _, err := bw.Write(buf); err != nil {
		return err
	}

	for i := range res.Centroids.K() {
		buf = append(buf[:0], "Cluster values: "...)
		for _, v := range res.Centroids.Row(i) {
			buf = strconv.AppendFloat(buf, v, 'g', 6, 64)
			buf = append(buf, ' ')
		}
		buf = append(buf, "\n\n"...)
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}

	timings := []struct {
		label string
		d     time.Duration
	}{
		{"TOTAL EXECUTION TIME = ", res.Timings.Total},
		{"TIME PHASE 1 = ", res.Timings.Seeding},
		{"TIME PHASE 2 = ", res.Timings.Refinement},
		{"TIME PER ITERATION = ", res.Timings.PerIteration},
	}
	for _, t := range timings {
		buf = append(buf[:0], t.label...)
		buf = strconv.AppendInt(buf, t.d.Microseconds(), 10)
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// Report is the machine-readable form of a run.
type Report struct {
	Iterations   int           `json:"iterations"`
	Termination  string        `json:"termination"`
	Centroids    [][]float64   `json:"centroids"`
	ClusterSizes []int         `json:"cluster_sizes"`
	Changes      []int         `json:"changes"`
	SeedIndexes  []int         `json:"seed_indexes"`
	Timings      TimingsReport `json:"timings_us"`
	Points       []PointReport `json:"points,omitempty"`
}

// TimingsReport holds Result.Timings in microseconds.
type TimingsReport struct {
	Total        int64 `json:"total"`
	Seeding      int64 `json:"seeding"`
	Refinement   int64 `json:"refinement"`
	PerIteration int64 `json:"per_iteration"`
}

// PointReport is the final assignment of one point.
type PointReport struct {
	Index   int    `json:"index"`
	Label   string `json:"label,omitempty"`
	Cluster int    `json:"cluster"`
}

// NewReport builds a Report from res. Per-point assignments are included
// when points is non-nil.
func NewReport(res *kmeans.Result, points *kmeans.PointSet) *Report {
	r := &Report{
		Iterations:   res.Iterations,
		Termination:  string(res.Termination),
		Centroids:    res.Centroids.Rows(),
		ClusterSizes: res.ClusterSizes,
		Changes:      res.Changes,
		SeedIndexes:  res.SeedIndexes,
		Timings: TimingsReport{
			Total:        res.Timings.Total.Microseconds(),
			Seeding:      res.Timings.Seeding.Microseconds(),
			Refinement:   res.Timings.Refinement.Microseconds(),
			PerIteration: res.Timings.PerIteration.Microseconds(),
		},
	}

	if points != nil {
		r.Points = make([]PointReport, points.Len())
		for i := range r.Points {
			r.Points[i] = PointReport{Index: i, Label: points.Label(i), Cluster: points.Cluster(i)}
		}
	}
	return r
}

// WriteJSON encodes NewReport(res, points) with c followed by a newline.
// A nil codec selects codec.Default.
func WriteJSON(w io.Writer, c codec.Codec, res *kmeans.Result, points *kmeans.PointSet) error {
	if res == nil {
		return errors.New("dataset: nil result")
	}
	if c == nil {
		c = codec.Default
	}

	data, err := c.Marshal(NewReport(res, points))
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
