// Package model provides the value types shared by the gaze segmentation and
// aggregation stages.
package model

import "math"

// MovementKind is the eye movement classification of a raw sample.
type MovementKind string

const (
	// Fixation marks a sample carrying a single gaze point.
	Fixation MovementKind = "Fixation"
	// Saccade marks a sample carrying a start and an end point.
	Saccade MovementKind = "Saccade"
)

// MarkerKind distinguishes the two task-boundary markers.
type MarkerKind int

const (
	StartMarker MarkerKind = iota
	EndMarker
)

func (k MarkerKind) String() string {
	switch k {
	case StartMarker:
		return "start"
	case EndMarker:
		return "end"
	default:
		return "unknown"
	}
}

// Point is a 2D coordinate, either normalized or in pixels depending on context.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Valid reports whether neither coordinate is NaN.
func (p Point) Valid() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y)
}

// InUnitSquare reports whether p lies within [0,1]x[0,1].
func (p Point) InUnitSquare() bool {
	return p.X >= 0 && p.X <= 1 && p.Y >= 0 && p.Y <= 1
}

// Segment is a directed line from Start to End.
type Segment struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

// RawEvent is a task-boundary marker as read from the record stream.
type RawEvent struct {
	Participant string
	Kind        MarkerKind
	Label       string
	Timestamp   float64
}

// StimulusInterval is the closed time range during which a stimulus was shown.
// Start <= End always holds for intervals produced by the interval builder.
type StimulusInterval struct {
	Participant string  `json:"participant"`
	StimulusID  int     `json:"stimulus_id"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
}

// Contains reports whether t lies in [Start, End], both ends inclusive.
func (iv StimulusInterval) Contains(t float64) bool {
	return iv.Start <= t && t <= iv.End
}

// Duration returns End - Start.
func (iv StimulusInterval) Duration() float64 {
	return iv.End - iv.Start
}

// RawSample is a single fixation or saccade. Fixations use Point; saccades use
// Segment. Missing numeric fields hold NaN.
type RawSample struct {
	Participant string
	Movement    MovementKind
	Timestamp   float64
	Point       Point
	Segment     Segment
	Duration    float64
}

// Anchor returns the point used for density and path aggregation: the
// fixation point, or the landing point of a saccade.
func (s RawSample) Anchor() Point {
	if s.Movement == Saccade {
		return s.Segment.End
	}
	return s.Point
}

// AssignedSample is a RawSample resolved to exactly one stimulus.
type AssignedSample struct {
	RawSample
	StimulusID int
}

// ProjectedSample is an AssignedSample whose coordinates are in pixel space.
type ProjectedSample struct {
	AssignedSample
	Pixel        Point
	PixelSegment Segment
}

// Canvas describes the pixel space of one stimulus.
type Canvas struct {
	StimulusID int    `json:"stimulus_id"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Source     string `json:"source,omitempty"`
}

// AxisMode selects the vertical orientation of projected coordinates.
type AxisMode string

const (
	// AxisImage keeps Y growing downward, aligned with raster images.
	AxisImage AxisMode = "image"
	// AxisPlot flips Y so it grows upward, aligned with plot coordinates.
	AxisPlot AxisMode = "plot"
)
