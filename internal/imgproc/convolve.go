package imgproc

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrInvalidKernelShape is returned for kernels without odd, positive
// dimensions.
var ErrInvalidKernelShape = errors.New("kernel dimensions must be odd and positive")

// Convolve correlates g with kernel and returns a grid of the same size.
// The kernel is not flipped. Pixels outside the grid are taken from the
// grid mirrored about its first and last row/column without repeating the
// edge sample (for a row a b c d the left padding reads c b).
func Convolve(g *Grid, kernel mat.Matrix) (*Grid, error) {
	kh, kw := kernel.Dims()
	if kh <= 0 || kw <= 0 || kh%2 == 0 || kw%2 == 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidKernelShape, kh, kw)
	}

	width, height := g.Width(), g.Height()
	padH, padW := kh/2, kw/2
	rows := reflectIndices(height, padH)
	cols := reflectIndices(width, padW)
	weights := mat.DenseCopyOf(kernel)

	out := newGridLike(g)
	for y := 0; y < height; y++ {
		dst := out.Row(y)
		for a := 0; a < kh; a++ {
			src := g.Row(rows[y+a])
			krow := weights.RawRowView(a)
			for x := 0; x < width; x++ {
				var sum float64
				for b, w := range krow {
					sum += src[cols[x+b]] * w
				}
				dst[x] += sum
			}
		}
	}
	return out, nil
}

// reflectIndices maps positions of an axis of length n padded by pad on
// both sides to source indices: index i of the result corresponds to
// position i-pad.
func reflectIndices(n, pad int) []int {
	idx := make([]int, n+2*pad)
	for i := range idx {
		idx[i] = reflect(i-pad, n)
	}
	return idx
}

// reflect folds i into [0, n) by mirroring about 0 and n-1. The mirror is
// periodic with period 2(n-1), so paddings wider than the axis keep
// bouncing between the edges.
func reflect(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * (n - 1)
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - i
	}
	return i
}
