package aggregate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gazemap/internal/model"
)

func timed(ts, duration float64, px model.Point) model.ProjectedSample {
	s := model.ProjectedSample{Pixel: px}
	s.Timestamp = ts
	s.Duration = duration
	return s
}

func TestPathOrdersByTimestamp(t *testing.T) {
	samples := []model.ProjectedSample{
		timed(300, 100, model.Point{X: 3}),
		timed(100, 100, model.Point{X: 1}),
		timed(200, 100, model.Point{X: 2}),
		timed(200, 100, model.Point{X: 22}),
	}

	path := Path(samples, DefaultPathOptions())
	require.Equal(t, 4, path.Len())

	xs := []float64{}
	for _, p := range path.Points {
		xs = append(xs, p.Pixel.X)
	}
	assert.Equal(t, []float64{1, 2, 22, 3}, xs)

	for i := 1; i < len(path.Points); i++ {
		assert.LessOrEqual(t, path.Points[i-1].Time, path.Points[i].Time)
	}
	assert.Equal(t, 0.0, path.Points[0].Time)
	assert.Equal(t, 0.5, path.Points[1].Time)
	assert.Equal(t, 1.0, path.Points[3].Time)

	// input untouched
	assert.Equal(t, 300.0, samples[0].Timestamp)
}

func TestPathDegenerateTimeRange(t *testing.T) {
	single := Path([]model.ProjectedSample{timed(5, 100, model.Point{})}, DefaultPathOptions())
	require.Equal(t, 1, single.Len())
	assert.Equal(t, 0.0, single.Points[0].Time)

	same := Path([]model.ProjectedSample{
		timed(5, 100, model.Point{}),
		timed(5, 100, model.Point{}),
	}, DefaultPathOptions())
	for _, p := range same.Points {
		assert.False(t, math.IsNaN(p.Time))
		assert.Equal(t, 0.0, p.Time)
	}

	empty := Path(nil, DefaultPathOptions())
	assert.Equal(t, 0, empty.Len())
}

func TestWeightClipsDuration(t *testing.T) {
	opts := DefaultPathOptions()
	assert.InDelta(t, 40.0/12, opts.Weight(1), 1e-12)
	assert.InDelta(t, 400.0/12, opts.Weight(10000), 1e-12)
	assert.InDelta(t, 120.0/12, opts.Weight(120), 1e-12)
	assert.InDelta(t, 40.0/12, opts.Weight(math.NaN()), 1e-12)

	raw := PathOptions{MinDuration: 0, MaxDuration: 100}
	assert.Equal(t, 50.0, raw.Weight(50))
}

func TestSegmentsSkipIncompleteSaccades(t *testing.T) {
	full := timed(20, 30, model.Point{})
	full.PixelSegment = model.Segment{Start: model.Point{X: 1, Y: 1}, End: model.Point{X: 5, Y: 5}}
	broken := timed(10, 30, model.Point{})
	broken.PixelSegment = model.Segment{Start: model.Point{X: math.NaN(), Y: 1}, End: model.Point{X: 5, Y: 5}}
	early := timed(0, 30, model.Point{})
	early.PixelSegment = model.Segment{Start: model.Point{X: 2, Y: 2}, End: model.Point{X: 3, Y: 3}}

	set := Segments([]model.ProjectedSample{full, broken, early}, DefaultPathOptions())
	require.Equal(t, 2, set.Len())
	assert.Equal(t, 0.0, set.Segments[0].Timestamp)
	assert.Equal(t, 0.0, set.Segments[0].Time)
	assert.Equal(t, 1.0, set.Segments[1].Time)
	assert.Equal(t, model.KindSegments, set.Kind())
}

func TestNormalizeTimes(t *testing.T) {
	got := NormalizeTimes([]float64{10, 20, 30, 15})
	assert.Equal(t, []float64{0, 0.5, 1, 0.25}, got)
	assert.Equal(t, []float64{0, 0}, NormalizeTimes([]float64{7, 7}))
}
