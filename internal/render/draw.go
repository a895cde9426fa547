package render

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// circleK places cubic control points so four arcs approximate a circle.
const circleK = 0.5522847498

// brush rasterizes filled shapes onto dst with x/image/vector.
type brush struct {
	dst  *image.RGBA
	rast *vector.Rasterizer
}

func newBrush(dst *image.RGBA) *brush {
	b := dst.Bounds()
	return &brush{dst: dst, rast: vector.NewRasterizer(b.Dx(), b.Dy())}
}

func (b *brush) fill(c color.Color) {
	b.rast.Draw(b.dst, b.dst.Bounds(), image.NewUniform(c), image.Point{})
	bounds := b.dst.Bounds()
	b.rast.Reset(bounds.Dx(), bounds.Dy())
}

// circle fills a disc centred on (cx, cy).
func (b *brush) circle(cx, cy, radius float32, c color.Color) {
	if radius <= 0 {
		return
	}
	kr := circleK * radius
	r := b.rast
	r.MoveTo(cx, cy-radius)
	r.CubeTo(cx+kr, cy-radius, cx+radius, cy-kr, cx+radius, cy)
	r.CubeTo(cx+radius, cy+kr, cx+kr, cy+radius, cx, cy+radius)
	r.CubeTo(cx-kr, cy+radius, cx-radius, cy+kr, cx-radius, cy)
	r.CubeTo(cx-radius, cy-kr, cx-kr, cy-radius, cx, cy-radius)
	r.ClosePath()
	b.fill(c)
}

// line strokes a segment of the given width as a filled quad.
func (b *brush) line(x0, y0, x1, y1, width float32, c color.Color) {
	dx, dy := x1-x0, y1-y0
	length := float32(math.Hypot(float64(dx), float64(dy)))
	if length == 0 {
		b.circle(x0, y0, width/2, c)
		return
	}
	nx, ny := -dy/length*width/2, dx/length*width/2
	r := b.rast
	r.MoveTo(x0+nx, y0+ny)
	r.LineTo(x1+nx, y1+ny)
	r.LineTo(x1-nx, y1-ny)
	r.LineTo(x0-nx, y0-ny)
	r.ClosePath()
	b.fill(c)
}

// caption writes text at the top-left corner with a drop shadow.
func caption(dst *image.RGBA, text string) {
	if text == "" {
		return
	}
	face := basicfont.Face7x13
	b := dst.Bounds()
	x := b.Min.X + 8
	y := b.Min.Y + 8 + face.Metrics().Ascent.Ceil()

	shadow := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.RGBA{A: 200}),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x + 1), Y: fixed.I(y + 1)},
	}
	shadow.DrawString(text)
	dr := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 255}),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	dr.DrawString(text)
}
