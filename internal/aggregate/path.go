package aggregate

import (
	"math"
	"sort"

	"gazemap/internal/model"
)

// PathOptions controls per-sample weights.
type PathOptions struct {
	MinDuration float64
	MaxDuration float64
	// Divisor scales the clipped duration; non-positive means 1.
	Divisor float64
	Axis    model.AxisMode
}

// DefaultPathOptions clips durations to [40, 400] and divides by 12.
func DefaultPathOptions() PathOptions {
	return PathOptions{MinDuration: 40, MaxDuration: 400, Divisor: 12, Axis: model.AxisImage}
}

// Weight clips duration to [MinDuration, MaxDuration] and scales it. A NaN
// duration is treated as MinDuration.
func (o PathOptions) Weight(duration float64) float64 {
	lo, hi := o.MinDuration, o.MaxDuration
	if hi < lo {
		lo, hi = hi, lo
	}
	d := duration
	switch {
	case math.IsNaN(d):
		d = lo
	case d < lo:
		d = lo
	case d > hi:
		d = hi
	}
	div := o.Divisor
	if div <= 0 {
		div = 1
	}
	return d / div
}

// SortByTime returns a copy of samples ordered by timestamp. Equal
// timestamps keep their input order.
func SortByTime(samples []model.ProjectedSample) []model.ProjectedSample {
	ordered := make([]model.ProjectedSample, len(samples))
	copy(ordered, samples)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp < ordered[j].Timestamp
	})
	return ordered
}

// NormalizeTimes maps ts onto [0,1] via (t-min)/(max-min). When fewer than
// two distinct values exist every result is 0.
func NormalizeTimes(ts []float64) []float64 {
	out := make([]float64, len(ts))
	if len(ts) == 0 {
		return out
	}
	lo, hi := ts[0], ts[0]
	for _, t := range ts[1:] {
		lo = math.Min(lo, t)
		hi = math.Max(hi, t)
	}
	span := hi - lo
	if !(span > 0) || math.IsInf(span, 0) {
		return out
	}
	for i, t := range ts {
		out[i] = (t - lo) / span
	}
	return out
}

// Path orders samples by time and attaches normalized time and weight.
func Path(samples []model.ProjectedSample, opts PathOptions) *model.GazePath {
	ordered := SortByTime(samples)
	times := make([]float64, len(ordered))
	for i, s := range ordered {
		times[i] = s.Timestamp
	}
	norm := NormalizeTimes(times)

	points := make([]model.PathPoint, len(ordered))
	for i, s := range ordered {
		points[i] = model.PathPoint{
			Pixel:     s.Pixel,
			Time:      norm[i],
			Weight:    opts.Weight(s.Duration),
			Timestamp: s.Timestamp,
		}
	}
	return &model.GazePath{Points: points, Axis: axisOrDefault(opts.Axis)}
}

// Segments orders saccades by time and keeps their pixel segments.
func Segments(samples []model.ProjectedSample, opts PathOptions) *model.SegmentSet {
	ordered := SortByTime(samples)
	times := make([]float64, len(ordered))
	for i, s := range ordered {
		times[i] = s.Timestamp
	}
	norm := NormalizeTimes(times)

	segs := make([]model.PathSegment, 0, len(ordered))
	for i, s := range ordered {
		if !s.PixelSegment.Start.Valid() || !s.PixelSegment.End.Valid() {
			continue
		}
		segs = append(segs, model.PathSegment{
			Pixel:     s.PixelSegment,
			Time:      norm[i],
			Weight:    opts.Weight(s.Duration),
			Timestamp: s.Timestamp,
		})
	}
	return &model.SegmentSet{Segments: segs, Axis: axisOrDefault(opts.Axis)}
}

func axisOrDefault(axis model.AxisMode) model.AxisMode {
	if axis == "" {
		return model.AxisImage
	}
	return axis
}
