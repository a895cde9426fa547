// Package aggregate turns the projected samples of one stimulus into a
// density grid, a gaze path or a saccade segment set.
package aggregate

import (
	"errors"
	"fmt"
	"math"

	"gazemap/internal/model"
)

// ErrInvalidOptions is returned for non-positive bin counts or canvas sizes.
var ErrInvalidOptions = errors.New("invalid aggregation options")

// DefaultTruncate is the kernel radius in standard deviations.
const DefaultTruncate = 4.0

// DensityOptions configures the histogram and its smoothing.
type DensityOptions struct {
	BinsX int
	BinsY int
	// Sigma is the Gaussian standard deviation in bins. Zero disables smoothing.
	Sigma float64
	// Truncate limits the kernel to Truncate*Sigma bins; zero means DefaultTruncate.
	Truncate float64
	Axis     model.AxisMode
}

// DefaultDensityOptions returns a 300x300 grid smoothed with sigma 10.
func DefaultDensityOptions() DensityOptions {
	return DensityOptions{BinsX: 300, BinsY: 300, Sigma: 10, Truncate: DefaultTruncate, Axis: model.AxisImage}
}

// Density bins the pixel anchors of samples over [0,width]x[0,height] and
// smooths the counts. Points outside the canvas or with NaN coordinates are
// not binned.
func Density(samples []model.ProjectedSample, c model.Canvas, opts DensityOptions) (*model.DensityGrid, error) {
	if opts.BinsX <= 0 || opts.BinsY <= 0 {
		return nil, fmt.Errorf("%w: bins %dx%d", ErrInvalidOptions, opts.BinsX, opts.BinsY)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return nil, fmt.Errorf("%w: canvas %dx%d", ErrInvalidOptions, c.Width, c.Height)
	}
	if opts.Sigma < 0 || math.IsNaN(opts.Sigma) {
		return nil, fmt.Errorf("%w: sigma %v", ErrInvalidOptions, opts.Sigma)
	}

	points := make([]model.Point, len(samples))
	for i, s := range samples {
		points[i] = s.Pixel
	}

	w, h := float64(c.Width), float64(c.Height)
	counts, binned := Histogram2D(points, w, h, opts.BinsX, opts.BinsY)

	truncate := opts.Truncate
	if truncate <= 0 {
		truncate = DefaultTruncate
	}
	smoothed := GaussianFilter(counts, opts.BinsX, opts.BinsY, opts.Sigma, truncate)

	axis := opts.Axis
	if axis == "" {
		axis = model.AxisImage
	}
	return &model.DensityGrid{
		BinsX:  opts.BinsX,
		BinsY:  opts.BinsY,
		Counts: smoothed,
		EdgesX: Linspace(0, w, opts.BinsX+1),
		EdgesY: Linspace(0, h, opts.BinsY+1),
		Sigma:  opts.Sigma,
		Axis:   axis,
		Binned: binned,
	}, nil
}

// Histogram2D counts points into nx*ny equal bins spanning [0,w]x[0,h].
// Bins are half-open except the last in each axis, which also holds the
// upper edge. The result is row-major (iy*nx+ix).
func Histogram2D(points []model.Point, w, h float64, nx, ny int) ([]float64, int) {
	counts := make([]float64, nx*ny)
	binned := 0
	for _, p := range points {
		if !p.Valid() || p.X < 0 || p.X > w || p.Y < 0 || p.Y > h {
			continue
		}
		ix := binIndex(p.X, w, nx)
		iy := binIndex(p.Y, h, ny)
		counts[iy*nx+ix]++
		binned++
	}
	return counts, binned
}

func binIndex(v, extent float64, n int) int {
	i := int(v / extent * float64(n))
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}
