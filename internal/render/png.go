// Package render draws aggregation results over their stimulus images and
// writes them as PNG files.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"

	"gazemap/internal/canvas"
	"gazemap/internal/model"
)

// Options controls the look of rendered overlays.
type Options struct {
	// DensityAlpha is the opacity of the densest bin.
	DensityAlpha float64
	// PathAlpha is the opacity of gaze path dots.
	PathAlpha float64
	// LinkAlpha is the opacity of the lines joining consecutive path dots.
	LinkAlpha float64
	// SaccadeAlpha is the opacity of saccade segments.
	SaccadeAlpha float64
	// RadiusScale converts a path weight into a dot radius in pixels:
	// radius = RadiusScale * sqrt(weight).
	RadiusScale float64
	// Caption enables the title line in the top-left corner.
	Caption bool
}

// DefaultOptions mirrors the analysis plots the overlays replace.
func DefaultOptions() Options {
	return Options{
		DensityAlpha: 0.6,
		PathAlpha:    0.85,
		LinkAlpha:    0.15,
		SaccadeAlpha: 0.3,
		RadiusScale:  1.5,
		Caption:      true,
	}
}

var saccadeBlue = color.RGBA{R: 31, G: 119, B: 180, A: 255}

// PNG implements model.Renderer by writing one PNG per stimulus into Dir.
type PNG struct {
	Dir     string
	Options Options
}

// NewPNG returns a renderer with default options.
func NewPNG(dir string) *PNG {
	return &PNG{Dir: dir, Options: DefaultOptions()}
}

// FileName returns "<participant>_Question<N>_<Mode>.png".
func FileName(participant string, stimulusID int, kind model.AggregationKind) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, participant)
	return fmt.Sprintf("%s_Question%d_%s.png", safe, stimulusID, modeName(kind))
}

func modeName(kind model.AggregationKind) string {
	switch kind {
	case model.KindDensity:
		return "Density"
	case model.KindPath:
		return "Path"
	case model.KindSegments:
		return "Saccades"
	default:
		return string(kind)
	}
}

// RenderDensity implements model.Renderer.
func (p *PNG) RenderDensity(target model.RenderTarget, grid *model.DensityGrid) (string, error) {
	dst, err := p.background(target.Canvas)
	if err != nil {
		return "", err
	}
	if grid.BinsX > 0 && grid.BinsY > 0 && grid.Max() > 0 {
		heat := DensityImage(grid, p.Options.DensityAlpha)
		b := dst.Bounds()
		scaled := resize.Resize(uint(b.Dx()), uint(b.Dy()), heat, resize.Bilinear)
		draw.Draw(dst, b, scaled, scaled.Bounds().Min, draw.Over)
	}
	return p.finish(dst, target, model.KindDensity)
}

// DensityImage converts grid into a BinsX x BinsY overlay. Opacity grows
// with the square root of the normalized density so sparse regions stay
// visible; empty bins are transparent.
func DensityImage(grid *model.DensityGrid, alpha float64) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, grid.BinsX, grid.BinsY))
	peak := grid.Max()
	if peak <= 0 {
		return img
	}
	for iy := 0; iy < grid.BinsY; iy++ {
		row := iy
		if grid.Axis == model.AxisPlot {
			row = grid.BinsY - 1 - iy
		}
		for ix := 0; ix < grid.BinsX; ix++ {
			v := grid.At(ix, iy) / peak
			if v <= 0 || math.IsNaN(v) {
				continue
			}
			img.SetNRGBA(ix, row, withAlpha(Inferno.At(v), alpha*math.Sqrt(v)))
		}
	}
	return img
}

// RenderPath implements model.Renderer.
func (p *PNG) RenderPath(target model.RenderTarget, path *model.GazePath) (string, error) {
	dst, err := p.background(target.Canvas)
	if err != nil {
		return "", err
	}
	h := float64(dst.Bounds().Dy())
	br := newBrush(dst)

	for i := 1; i < len(path.Points); i++ {
		a := imagePoint(path.Points[i-1].Pixel, h, path.Axis)
		b := imagePoint(path.Points[i].Pixel, h, path.Axis)
		br.line(a.x, a.y, b.x, b.y, 1, withAlpha(color.RGBA{A: 255}, p.Options.LinkAlpha))
	}
	for _, pt := range path.Points {
		at := imagePoint(pt.Pixel, h, path.Axis)
		radius := float32(p.Options.RadiusScale * math.Sqrt(pt.Weight))
		br.circle(at.x, at.y, radius, withAlpha(Plasma.At(pt.Time), p.Options.PathAlpha))
	}
	return p.finish(dst, target, model.KindPath)
}

// RenderSegments implements model.Renderer.
func (p *PNG) RenderSegments(target model.RenderTarget, set *model.SegmentSet) (string, error) {
	dst, err := p.background(target.Canvas)
	if err != nil {
		return "", err
	}
	h := float64(dst.Bounds().Dy())
	br := newBrush(dst)
	c := withAlpha(saccadeBlue, p.Options.SaccadeAlpha)
	for _, seg := range set.Segments {
		a := imagePoint(seg.Pixel.Start, h, set.Axis)
		b := imagePoint(seg.Pixel.End, h, set.Axis)
		br.line(a.x, a.y, b.x, b.y, 1.5, c)
	}
	return p.finish(dst, target, model.KindSegments)
}

type vec struct{ x, y float32 }

// imagePoint converts a projected pixel into raster coordinates, whose
// origin is always the top-left corner.
func imagePoint(px model.Point, height float64, axis model.AxisMode) vec {
	y := px.Y
	if axis == model.AxisPlot {
		y = height - y
	}
	return vec{float32(px.X), float32(y)}
}

// background returns an RGBA copy of the stimulus image, or a white canvas
// of the right size when the canvas has no source file.
func (p *PNG) background(c model.Canvas) (*image.RGBA, error) {
	if c.Width <= 0 || c.Height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", c.Width, c.Height)
	}
	rect := image.Rect(0, 0, c.Width, c.Height)
	dst := image.NewRGBA(rect)
	if c.Source == "" {
		draw.Draw(dst, rect, image.White, image.Point{}, draw.Src)
		return dst, nil
	}
	img, err := canvas.Load(c)
	if err != nil {
		return nil, fmt.Errorf("load background: %w", err)
	}
	if img.Bounds().Dx() == c.Width && img.Bounds().Dy() == c.Height {
		draw.Draw(dst, rect, img, img.Bounds().Min, draw.Src)
	} else {
		draw.BiLinear.Scale(dst, rect, img, img.Bounds(), draw.Src, nil)
	}
	return dst, nil
}

func (p *PNG) finish(dst *image.RGBA, target model.RenderTarget, kind model.AggregationKind) (string, error) {
	if p.Options.Caption {
		caption(dst, fmt.Sprintf("%s - Question %d (%s)", target.Participant, target.StimulusID, modeName(kind)))
	}
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	out := filepath.Join(p.Dir, FileName(target.Participant, target.StimulusID, kind))
	f, err := os.Create(out)
	if err != nil {
		return "", fmt.Errorf("create output file: %w", err)
	}
	if err := png.Encode(f, dst); err != nil {
		f.Close()
		return "", fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close output file: %w", err)
	}
	return out, nil
}

var _ model.Renderer = (*PNG)(nil)
