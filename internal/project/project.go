// Package project converts normalized gaze coordinates into pixel space.
package project

import (
	"fmt"

	"gazemap/internal/model"
)

// ParseAxis maps a flag value onto an AxisMode.
func ParseAxis(value string) (model.AxisMode, error) {
	switch model.AxisMode(value) {
	case model.AxisImage, model.AxisPlot:
		return model.AxisMode(value), nil
	case "":
		return model.AxisImage, nil
	default:
		return "", fmt.Errorf("unknown axis mode %q (want image or plot)", value)
	}
}

// Point scales p by the canvas size. In AxisPlot the Y coordinate is flipped
// to height - y. Out-of-range inputs pass through unchanged.
func Point(p model.Point, c model.Canvas, axis model.AxisMode) model.Point {
	w, h := float64(c.Width), float64(c.Height)
	px := model.Point{X: p.X * w, Y: p.Y * h}
	if axis == model.AxisPlot {
		px.Y = h - px.Y
	}
	return px
}

// Normalize is the inverse of Point.
func Normalize(px model.Point, c model.Canvas, axis model.AxisMode) model.Point {
	w, h := float64(c.Width), float64(c.Height)
	y := px.Y
	if axis == model.AxisPlot {
		y = h - y
	}
	return model.Point{X: px.X / w, Y: y / h}
}

// Sample projects both the anchor point and, for saccades, the segment.
func Sample(s model.AssignedSample, c model.Canvas, axis model.AxisMode) model.ProjectedSample {
	return model.ProjectedSample{
		AssignedSample: s,
		Pixel:          Point(s.Anchor(), c, axis),
		PixelSegment: model.Segment{
			Start: Point(s.Segment.Start, c, axis),
			End:   Point(s.Segment.End, c, axis),
		},
	}
}

// Samples projects every sample onto c.
func Samples(samples []model.AssignedSample, c model.Canvas, axis model.AxisMode) []model.ProjectedSample {
	out := make([]model.ProjectedSample, len(samples))
	for i, s := range samples {
		out[i] = Sample(s, c, axis)
	}
	return out
}
