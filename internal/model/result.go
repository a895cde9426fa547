package model

// AggregationKind names the variant held by an AggregationResult.
type AggregationKind string

const (
	KindDensity  AggregationKind = "density"
	KindPath     AggregationKind = "path"
	KindSegments AggregationKind = "saccades"
)

// AggregationResult is one of *DensityGrid, *GazePath or *SegmentSet.
type AggregationResult interface {
	Kind() AggregationKind
	// Len is the number of samples that contributed to the result.
	Len() int
}

// DensityGrid is a smoothed 2D histogram over pixel space. Counts is stored
// row-major: the value of bin (ix, iy) is Counts[iy*BinsX+ix]. Bin iy=0 spans
// EdgesY[0]..EdgesY[1], which is the top of the canvas in AxisImage and the
// bottom in AxisPlot.
type DensityGrid struct {
	BinsX  int
	BinsY  int
	Counts []float64
	EdgesX []float64
	EdgesY []float64
	Sigma  float64
	Axis   AxisMode
	// Binned is the number of samples that fell inside the canvas before smoothing.
	Binned int
}

func (g *DensityGrid) Kind() AggregationKind { return KindDensity }
func (g *DensityGrid) Len() int              { return g.Binned }

// At returns the value of bin (ix, iy).
func (g *DensityGrid) At(ix, iy int) float64 {
	return g.Counts[iy*g.BinsX+ix]
}

// Sum returns the total mass of the grid.
func (g *DensityGrid) Sum() float64 {
	var total float64
	for _, v := range g.Counts {
		total += v
	}
	return total
}

// Max returns the largest bin value, or 0 for an empty grid.
func (g *DensityGrid) Max() float64 {
	var peak float64
	for _, v := range g.Counts {
		if v > peak {
			peak = v
		}
	}
	return peak
}

// PathPoint is one entry of a gaze path.
type PathPoint struct {
	Pixel     Point   `json:"pixel"`
	Time      float64 `json:"time"`
	Weight    float64 `json:"weight"`
	Timestamp float64 `json:"timestamp"`
}

// GazePath is a timestamp-ordered sequence of gaze points.
type GazePath struct {
	Points []PathPoint
	Axis   AxisMode
}

func (p *GazePath) Kind() AggregationKind { return KindPath }
func (p *GazePath) Len() int              { return len(p.Points) }

// PathSegment is one saccade in pixel space.
type PathSegment struct {
	Pixel     Segment `json:"pixel"`
	Time      float64 `json:"time"`
	Weight    float64 `json:"weight"`
	Timestamp float64 `json:"timestamp"`
}

// SegmentSet is a timestamp-ordered set of saccade segments.
type SegmentSet struct {
	Segments []PathSegment
	Axis     AxisMode
}

func (s *SegmentSet) Kind() AggregationKind { return KindSegments }
func (s *SegmentSet) Len() int              { return len(s.Segments) }
