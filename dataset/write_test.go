package dataset

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/hupe1980/kmeans"
	"github.com/hupe1980/kmeans/codec"
	"github.com/hupe1980/kmeans/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *kmeans.Result {
	centroids := kmeans.NewCentroidTable(2, 2)
	centroids.SetRow(0, []float64{1.05, 2})
	centroids.SetRow(1, []float64{9.1, 1e6})

	return &kmeans.Result{
		Centroids:    centroids,
		Iterations:   2,
		Termination:  kmeans.Converged,
		Changes:      []int{2, 0},
		ClusterSizes: []int{2, 2},
		SeedIndexes:  []int{0, 2},
		Timings: kmeans.Timings{
			Total:        1500 * time.Microsecond,
			Seeding:      100 * time.Microsecond,
			Refinement:   1400 * time.Microsecond,
			PerIteration: 700 * time.Microsecond,
		},
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sampleResult()))

	want := "Break in iteration 2\n\n" +
		"Cluster values: 1.05 2 \n\n" +
		"Cluster values: 9.1 1e+06 \n\n" +
		"TOTAL EXECUTION TIME = 1500\n" +
		"TIME PHASE 1 = 100\n" +
		"TIME PHASE 2 = 1400\n" +
		"TIME PER ITERATION = 700\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteText_NilResult(t *testing.T) {
	assert.Error(t, WriteText(&bytes.Buffer{}, nil))
}

func TestWriteJSON(t *testing.T) {
	points, err := kmeans.NewPointSet(2)
	require.NoError(t, err)
	for i, label := range []string{"a", "b", "c", "d"} {
		_, err := points.Add([]float64{float64(i), 0}, label)
		require.NoError(t, err)
		points.SetCluster(i, i/2)
	}

	for _, c := range []codec.Codec{codec.JSON{}, codec.GoJSON{}, nil} {
		name := "default"
		if c != nil {
			name = c.Name()
		}
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteJSON(&buf, c, sampleResult(), points))
			assert.True(t, strings.HasSuffix(buf.String(), "}\n"))

			var got Report
			require.NoError(t, codec.JSON{}.Unmarshal(buf.Bytes(), &got))

			assert.Equal(t, 2, got.Iterations)
			assert.Equal(t, "Converged", got.Termination)
			assert.Equal(t, [][]float64{{1.05, 2}, {9.1, 1e6}}, got.Centroids)
			assert.Equal(t, []int{2, 2}, got.ClusterSizes)
			assert.Equal(t, []int{2, 0}, got.Changes)
			assert.Equal(t, TimingsReport{Total: 1500, Seeding: 100, Refinement: 1400, PerIteration: 700}, got.Timings)
			require.Len(t, got.Points, 4)
			assert.Equal(t, PointReport{Index: 3, Label: "d", Cluster: 1}, got.Points[3])
		})
	}
}

func TestNewReport_WithoutPoints(t *testing.T) {
	r := NewReport(sampleResult(), nil)
	assert.Nil(t, r.Points)
	assert.Equal(t, []int{0, 2}, r.SeedIndexes)
}

func TestReadRunWrite(t *testing.T) {
	h, points, err := Read(strings.NewReader("4 1 2 10 0\n1.0\n1.1\n9.0\n9.2\n"))
	require.NoError(t, err)

	engine, err := kmeans.New(h.K, h.TotalPoints, h.TotalValues, h.MaxIterations,
		kmeans.WithWorkers(2),
		kmeans.WithIndexSource(testutil.NewSequenceSource(0, 2)),
	)
	require.NoError(t, err)

	res, err := engine.Run(context.Background(), points)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, res))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Break in iteration 2\n\n"))
	assert.Contains(t, out, "Cluster values: 1.05 \n\n")
	assert.Contains(t, out, "Cluster values: 9.1 \n\n")
	assert.Contains(t, out, "TIME PER ITERATION = ")
}
