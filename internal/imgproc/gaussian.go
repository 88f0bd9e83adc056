package imgproc

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrInvalidSigma is returned for a non-positive Gaussian spread.
var ErrInvalidSigma = errors.New("gaussian sigma must be positive")

// GaussianKernel builds a size x size Gaussian weight matrix centered at
// ((size-1)/2, (size-1)/2) and normalized so its weights sum to 1.
func GaussianKernel(size int, sigma float64) (*mat.Dense, error) {
	if size <= 0 || size%2 == 0 {
		return nil, fmt.Errorf("%w: gaussian size %d", ErrInvalidKernelShape, size)
	}
	if !(sigma > 0) || math.IsInf(sigma, 1) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidSigma, sigma)
	}

	center := float64(size-1) / 2
	twoSigmaSq := 2 * sigma * sigma
	norm := 1 / (math.Pi * twoSigmaSq)

	weights := make([]float64, size*size)
	for r := 0; r < size; r++ {
		dr := float64(r) - center
		for c := 0; c < size; c++ {
			dc := float64(c) - center
			weights[r*size+c] = norm * math.Exp(-(dr*dr+dc*dc)/twoSigmaSq)
		}
	}
	floats.Scale(1/floats.Sum(weights), weights)

	return mat.NewDense(size, size, weights), nil
}

// GaussianBlur smooths g with a size x size Gaussian kernel of spread sigma.
func GaussianBlur(g *Grid, size int, sigma float64) (*Grid, error) {
	kernel, err := GaussianKernel(size, sigma)
	if err != nil {
		return nil, err
	}
	return Convolve(g, kernel)
}
