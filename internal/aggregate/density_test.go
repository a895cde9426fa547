package aggregate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gazemap/internal/model"
)

func projectedAt(points ...model.Point) []model.ProjectedSample {
	out := make([]model.ProjectedSample, len(points))
	for i, p := range points {
		out[i] = model.ProjectedSample{Pixel: p}
		out[i].Timestamp = float64(i)
	}
	return out
}

func TestHistogram2DCountsOnlyInsideCanvas(t *testing.T) {
	points := []model.Point{
		{X: 0, Y: 0},
		{X: 100, Y: 50},
		{X: 49.9, Y: 24.9},
		{X: 50, Y: 25},
		{X: -0.1, Y: 10},
		{X: 10, Y: 50.1},
		{X: math.NaN(), Y: 1},
	}

	counts, binned := Histogram2D(points, 100, 50, 2, 2)
	assert.Equal(t, 4, binned)
	assert.Equal(t, []float64{2, 0, 0, 2}, counts)

	var sum float64
	for _, c := range counts {
		sum += c
	}
	assert.Equal(t, float64(binned), sum)
}

func TestDensityConservesMassAwayFromEdges(t *testing.T) {
	c := model.Canvas{Width: 500, Height: 500}
	var pts []model.Point
	for i := 0; i < 200; i++ {
		pts = append(pts, model.Point{X: 200 + float64(i%20)*5, Y: 220 + float64(i/20)*3})
	}

	grid, err := Density(projectedAt(pts...), c, DensityOptions{BinsX: 50, BinsY: 50, Sigma: 2})
	require.NoError(t, err)
	assert.Equal(t, 200, grid.Binned)
	assert.InDelta(t, 200, grid.Sum(), 1e-9)
	assert.Len(t, grid.EdgesX, 51)
	assert.Equal(t, 0.0, grid.EdgesX[0])
	assert.Equal(t, 500.0, grid.EdgesX[50])
	assert.Equal(t, model.AxisImage, grid.Axis)
}

func TestDensityMassApproximatelyConservedAtEdges(t *testing.T) {
	c := model.Canvas{Width: 300, Height: 300}
	pts := []model.Point{{X: 0, Y: 0}, {X: 300, Y: 300}, {X: 0, Y: 300}, {X: 150, Y: 0}}

	grid, err := Density(projectedAt(pts...), c, DensityOptions{BinsX: 30, BinsY: 30, Sigma: 1.5})
	require.NoError(t, err)
	assert.Equal(t, 4, grid.Binned)
	assert.InDelta(t, 4, grid.Sum(), 0.4)
}

func TestDensityIsDeterministic(t *testing.T) {
	c := model.Canvas{Width: 640, Height: 480}
	pts := []model.Point{{X: 10, Y: 10}, {X: 320, Y: 240}, {X: 600, Y: 100}, {X: 320, Y: 241}}
	opts := DensityOptions{BinsX: 64, BinsY: 48, Sigma: 3}

	a, err := Density(projectedAt(pts...), c, opts)
	require.NoError(t, err)
	b, err := Density(projectedAt(pts...), c, opts)
	require.NoError(t, err)
	assert.Equal(t, a.Counts, b.Counts)
}

func TestDensityWithoutSmoothingMatchesHistogram(t *testing.T) {
	c := model.Canvas{Width: 10, Height: 10}
	grid, err := Density(projectedAt(model.Point{X: 9.5, Y: 0.5}), c, DensityOptions{BinsX: 10, BinsY: 10})
	require.NoError(t, err)
	assert.Equal(t, 1.0, grid.At(9, 0))
	assert.Equal(t, 1.0, grid.Max())
}

func TestDensityRejectsInvalidOptions(t *testing.T) {
	_, err := Density(nil, model.Canvas{Width: 10, Height: 10}, DensityOptions{BinsX: 0, BinsY: 10})
	assert.ErrorIs(t, err, ErrInvalidOptions)

	_, err = Density(nil, model.Canvas{Width: 0, Height: 10}, DensityOptions{BinsX: 10, BinsY: 10})
	assert.ErrorIs(t, err, ErrInvalidOptions)

	_, err = Density(nil, model.Canvas{Width: 10, Height: 10}, DensityOptions{BinsX: 10, BinsY: 10, Sigma: -1})
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestGaussianKernelNormalized(t *testing.T) {
	k := GaussianKernel(10, DefaultTruncate)
	require.Len(t, k, 81)

	var sum float64
	for _, w := range k {
		sum += w
	}
	assert.InDelta(t, 1, sum, 1e-12)
	assert.Equal(t, k[0], k[80])
	assert.Greater(t, k[40], k[39])
}

func TestGaussianFilterReflectsAtBorder(t *testing.T) {
	grid := []float64{1, 0, 0, 0}
	out := GaussianFilter(grid, 4, 1, 1, DefaultTruncate)

	assert.Greater(t, out[0], out[1])
	assert.Greater(t, out[1], out[2])
	assert.Equal(t, []float64{1, 0, 0, 0}, grid)

	var sum float64
	for _, v := range out {
		sum += v
	}
	assert.InDelta(t, 1, sum, 0.05)
}

func TestReflect(t *testing.T) {
	n := 4
	want := map[int]int{-1: 0, -2: 1, -4: 3, -5: 3, 4: 3, 5: 2, 7: 0, 8: 0, 11: 3, 2: 2}
	for in, exp := range want {
		assert.Equal(t, exp, reflect(in, n), "reflect(%d)", in)
	}
}
