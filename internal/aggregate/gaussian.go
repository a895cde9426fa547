package aggregate

import "math"

// GaussianKernel returns normalized weights for offsets -r..r where
// r = int(truncate*sigma + 0.5).
func GaussianKernel(sigma, truncate float64) []float64 {
	radius := int(truncate*sigma + 0.5)
	kernel := make([]float64, 2*radius+1)
	var sum float64
	for i := range kernel {
		x := float64(i - radius)
		kernel[i] = math.Exp(-0.5 * x * x / (sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// GaussianFilter applies an isotropic Gaussian to a row-major nx*ny grid,
// one axis at a time. Samples beyond the border are read from the grid
// mirrored about its edge (d c b a | a b c d | d c b a). The input is not
// modified. A non-positive sigma returns a copy.
func GaussianFilter(grid []float64, nx, ny int, sigma, truncate float64) []float64 {
	out := make([]float64, len(grid))
	copy(out, grid)
	if sigma <= 0 || nx == 0 || ny == 0 {
		return out
	}

	kernel := GaussianKernel(sigma, truncate)
	radius := len(kernel) / 2

	line := make([]float64, max(nx, ny))
	// rows
	for y := 0; y < ny; y++ {
		row := out[y*nx : (y+1)*nx]
		copy(line, row)
		convolve(row, line[:nx], kernel, radius)
	}
	// columns
	col := make([]float64, ny)
	for x := 0; x < nx; x++ {
		for y := 0; y < ny; y++ {
			line[y] = out[y*nx+x]
		}
		convolve(col, line[:ny], kernel, radius)
		for y := 0; y < ny; y++ {
			out[y*nx+x] = col[y]
		}
	}
	return out
}

func convolve(dst, src, kernel []float64, radius int) {
	n := len(src)
	for i := 0; i < n; i++ {
		var acc float64
		for k, w := range kernel {
			acc += w * src[reflect(i+k-radius, n)]
		}
		dst[i] = acc
	}
}

func reflect(i, n int) int {
	if i >= 0 && i < n {
		return i
	}
	period := 2 * n
	m := i % period
	if m < 0 {
		m += period
	}
	if m >= n {
		m = period - 1 - m
	}
	return m
}
