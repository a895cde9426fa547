package render

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gazemap/internal/model"
)

func readPNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return img
}

func writeBackground(t *testing.T, dir string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	path := filepath.Join(dir, "Question1.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func isGray(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r>>8 == 200 && g>>8 == 200 && b>>8 == 200
}

func TestColormapEndpoints(t *testing.T) {
	assert.Equal(t, Inferno[0], Inferno.At(0))
	assert.Equal(t, Inferno[len(Inferno)-1], Inferno.At(1))
	assert.Equal(t, Plasma[0], Plasma.At(-3))
	mid := Plasma.At(0.5)
	assert.Equal(t, uint8(255), mid.A)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "P_01_Question3_Density.png", FileName("P 01", 3, model.KindDensity))
	assert.Equal(t, "P1_Question12_Saccades.png", FileName("P1", 12, model.KindSegments))
}

func TestDensityImageFlipsPlotAxis(t *testing.T) {
	grid := &model.DensityGrid{BinsX: 2, BinsY: 2, Counts: []float64{0, 0, 0, 4}, Axis: model.AxisImage}
	img := DensityImage(grid, 0.6)
	assert.Equal(t, uint8(0), img.NRGBAAt(0, 0).A)
	assert.Equal(t, uint8(153), img.NRGBAAt(1, 1).A)

	grid.Axis = model.AxisPlot
	img = DensityImage(grid, 0.6)
	assert.Equal(t, uint8(153), img.NRGBAAt(1, 0).A)
	assert.Equal(t, uint8(0), img.NRGBAAt(1, 1).A)
}

func TestRenderDensityWritesCanvasSizedPNG(t *testing.T) {
	dir := t.TempDir()
	r := NewPNG(filepath.Join(dir, "out"))
	r.Options.Caption = false
	target := model.RenderTarget{
		Participant: "P1",
		StimulusID:  1,
		Canvas:      model.Canvas{StimulusID: 1, Width: 40, Height: 20, Source: writeBackground(t, dir, 40, 20)},
	}
	grid := &model.DensityGrid{BinsX: 2, BinsY: 1, Counts: []float64{0, 1}}

	out, err := r.RenderDensity(target, grid)
	require.NoError(t, err)
	assert.Equal(t, "P1_Question1_Density.png", filepath.Base(out))

	img := readPNG(t, out)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 20, img.Bounds().Dy())
	assert.True(t, isGray(img.At(2, 10)), "empty bin should leave the background")
	assert.False(t, isGray(img.At(37, 10)), "dense bin should be tinted")
}

func TestRenderPathDrawsDots(t *testing.T) {
	dir := t.TempDir()
	r := NewPNG(dir)
	r.Options.Caption = false
	target := model.RenderTarget{Participant: "P1", StimulusID: 2, Canvas: model.Canvas{Width: 50, Height: 50}}
	path := &model.GazePath{
		Points: []model.PathPoint{
			{Pixel: model.Point{X: 10, Y: 40}, Time: 0, Weight: 10},
			{Pixel: model.Point{X: 40, Y: 40}, Time: 1, Weight: 10},
		},
		Axis: model.AxisPlot,
	}

	out, err := r.RenderPath(target, path)
	require.NoError(t, err)
	img := readPNG(t, out)

	// Plot axis: y=40 from the bottom is raster row 10.
	_, _, b, _ := img.At(10, 10).RGBA()
	r0, g0, _, _ := img.At(10, 10).RGBA()
	assert.Less(t, g0, b, "first dot should use the dark end of the colormap")
	assert.Less(t, r0, uint32(0xffff))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, color.RGBAModel.Convert(img.At(10, 40)))
}

func TestRenderSegments(t *testing.T) {
	dir := t.TempDir()
	r := NewPNG(dir)
	target := model.RenderTarget{Participant: "P1", StimulusID: 4, Canvas: model.Canvas{Width: 30, Height: 30}}
	set := &model.SegmentSet{
		Segments: []model.PathSegment{{Pixel: model.Segment{Start: model.Point{X: 0, Y: 25}, End: model.Point{X: 29, Y: 25}}}},
		Axis:     model.AxisImage,
	}

	out, err := r.RenderSegments(target, set)
	require.NoError(t, err)
	img := readPNG(t, out)
	_, _, b, _ := img.At(15, 25).RGBA()
	rr, _, _, _ := img.At(15, 25).RGBA()
	assert.Greater(t, b, rr)
}

func TestRenderRejectsEmptyCanvas(t *testing.T) {
	r := NewPNG(t.TempDir())
	_, err := r.RenderPath(model.RenderTarget{StimulusID: 1}, &model.GazePath{})
	require.Error(t, err)
}
