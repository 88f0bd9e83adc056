package keypoints

import (
	"testing"

	"orb-keypoints/internal/imgproc"

	"github.com/stretchr/testify/require"
)

// gridFromFunc builds a width x height grid with values fn(x, y).
func gridFromFunc(t *testing.T, width, height int, fn func(x, y int) float64) *imgproc.Grid {
	t.Helper()
	g, err := imgproc.NewGrid(width, height)
	require.NoError(t, err)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.Set(x, y, fn(x, y))
		}
	}
	return g
}

// wedgeImage is a 64x64 dark image with a bright wedge whose apex sits at
// (32, 32) and which opens downwards.
func wedgeImage(t *testing.T) *imgproc.Grid {
	t.Helper()
	return gridFromFunc(t, 64, 64, func(x, y int) float64 {
		dx := x - 32
		if dx < 0 {
			dx = -dx
		}
		if y >= 32 && float64(dx) <= float64(y-32)*0.5 {
			return 220
		}
		return 30
	})
}

// ringPatch is a 7x7 grid of value center whose circle samples listed in
// idx are set to ring.
func ringPatch(t *testing.T, center, ring float64, idx []int) *imgproc.Grid {
	t.Helper()
	g := gridFromFunc(t, 7, 7, func(x, y int) float64 { return center })
	for _, i := range idx {
		off := Circle[i]
		g.Set(3+off.X, 3+off.Y, ring)
	}
	return g
}

func indexRange(from, count int) []int {
	out := make([]int, count)
	for i := range out {
		out[i] = (from + i) % len(Circle)
	}
	return out
}
