package render

import (
	"image/color"
	"math"
)

// Colormap maps a value in [0,1] onto an opaque colour.
type Colormap []color.RGBA

// Inferno approximates the perceptually uniform inferno map.
var Inferno = Colormap{
	{0, 0, 4, 255},
	{40, 11, 84, 255},
	{101, 21, 110, 255},
	{159, 42, 99, 255},
	{212, 72, 66, 255},
	{245, 125, 21, 255},
	{250, 193, 39, 255},
	{252, 255, 164, 255},
}

// Plasma approximates the plasma map.
var Plasma = Colormap{
	{13, 8, 135, 255},
	{84, 2, 163, 255},
	{139, 10, 165, 255},
	{185, 50, 137, 255},
	{219, 92, 104, 255},
	{244, 136, 73, 255},
	{254, 188, 43, 255},
	{240, 249, 33, 255},
}

// At interpolates linearly between stops. NaN maps to the first stop.
func (m Colormap) At(v float64) color.RGBA {
	if len(m) == 0 {
		return color.RGBA{A: 255}
	}
	if math.IsNaN(v) || v <= 0 {
		return m[0]
	}
	if v >= 1 {
		return m[len(m)-1]
	}
	pos := v * float64(len(m)-1)
	i := int(pos)
	frac := pos - float64(i)
	a, b := m[i], m[i+1]
	lerp := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*frac))
	}
	return color.RGBA{lerp(a.R, b.R), lerp(a.G, b.G), lerp(a.B, b.B), 255}
}

// withAlpha returns c as a non-premultiplied colour with opacity alpha.
func withAlpha(c color.RGBA, alpha float64) color.NRGBA {
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(alpha * 255))}
}
