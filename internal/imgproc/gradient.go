package imgproc

// Gradient returns the horizontal (along x) and vertical (along y)
// derivatives of g. Interior samples use central differences
// (f[i+1]-f[i-1])/2; the first and last sample of each axis use the
// one-sided difference with their only neighbour. An axis of length 1 has
// zero derivative.
func Gradient(g *Grid) (dx, dy *Grid) {
	width, height := g.Width(), g.Height()
	dx = newGridLike(g)
	dy = newGridLike(g)

	for y := 0; y < height; y++ {
		src := g.Row(y)
		dst := dx.Row(y)
		if width < 2 {
			continue
		}
		dst[0] = src[1] - src[0]
		for x := 1; x < width-1; x++ {
			dst[x] = (src[x+1] - src[x-1]) / 2
		}
		dst[width-1] = src[width-1] - src[width-2]
	}

	if height < 2 {
		return dx, dy
	}
	for y := 0; y < height; y++ {
		dst := dy.Row(y)
		switch y {
		case 0:
			subRows(dst, g.Row(1), g.Row(0), 1)
		case height - 1:
			subRows(dst, g.Row(height-1), g.Row(height-2), 1)
		default:
			subRows(dst, g.Row(y+1), g.Row(y-1), 0.5)
		}
	}
	return dx, dy
}

// subRows stores (a-b)*scale into dst.
func subRows(dst, a, b []float64, scale float64) {
	for i := range dst {
		dst[i] = (a[i] - b[i]) * scale
	}
}
