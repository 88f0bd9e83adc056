package keypoints

import (
	"fmt"
	"math"
	"sort"

	"orb-keypoints/internal/imgproc"
	"orb-keypoints/pkg/geometry"
)

// HarrisParams configures the Harris corner filter.
type HarrisParams struct {
	K          float64 `json:"k"`           // Sensitivity constant in det - k*trace^2 (default: 0.05)
	Threshold  float64 `json:"threshold"`   // Candidates need a response strictly above this (default: 1e-5)
	WindowSize int     `json:"window_size"` // Gaussian window over the gradient products, odd (default: 5)
	Sigma      float64 `json:"sigma"`       // Gaussian window spread (default: 1)
}

// DefaultHarrisParams returns the default Harris filter parameters.
func DefaultHarrisParams() HarrisParams {
	return HarrisParams{
		K:          0.05,
		Threshold:  1e-5,
		WindowSize: 5,
		Sigma:      1,
	}
}

// Validate checks the parameters.
func (p HarrisParams) Validate() error {
	if math.IsNaN(p.K) || math.IsInf(p.K, 0) {
		return fmt.Errorf("%w: Harris k must be finite, got %v", ErrInvalidParams, p.K)
	}
	if math.IsNaN(p.Threshold) {
		return fmt.Errorf("%w: Harris threshold is NaN", ErrInvalidParams)
	}
	if p.WindowSize <= 0 || p.WindowSize%2 == 0 {
		return fmt.Errorf("%w: Harris window size must be odd and positive, got %d", ErrInvalidParams, p.WindowSize)
	}
	if !(p.Sigma > 0) {
		return fmt.Errorf("%w: Harris sigma must be positive, got %v", ErrInvalidParams, p.Sigma)
	}
	return nil
}

// HarrisResponse computes the corner response det(M) - k*trace(M)^2 for
// every pixel, where M is the Gaussian-weighted structure tensor built from
// the image gradients.
func HarrisResponse(g *imgproc.Grid, params HarrisParams) (*imgproc.Grid, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	dx, dy := imgproc.Gradient(g)
	sxx, err := smoothedProduct(dx, dx, params)
	if err != nil {
		return nil, err
	}
	syy, err := smoothedProduct(dy, dy, params)
	if err != nil {
		return nil, err
	}
	sxy, err := smoothedProduct(dx, dy, params)
	if err != nil {
		return nil, err
	}

	response, err := imgproc.NewGrid(g.Width(), g.Height())
	if err != nil {
		return nil, err
	}
	for y := 0; y < g.Height(); y++ {
		rxx, ryy, rxy := sxx.Row(y), syy.Row(y), sxy.Row(y)
		dst := response.Row(y)
		for x := range dst {
			det := rxx[x]*ryy[x] - rxy[x]*rxy[x]
			trace := rxx[x] + ryy[x]
			dst[x] = det - params.K*trace*trace
		}
	}
	return response, nil
}

func smoothedProduct(a, b *imgproc.Grid, params HarrisParams) (*imgproc.Grid, error) {
	product, err := imgproc.MulElem(a, b)
	if err != nil {
		return nil, err
	}
	return imgproc.GaussianBlur(product, params.WindowSize, params.Sigma)
}

// FilterHarris scores each candidate with the Harris response at its exact
// pixel, drops candidates scoring at or below params.Threshold and returns
// the rest sorted by descending response. Equal responses keep their
// candidate order.
func FilterHarris(g *imgproc.Grid, candidates []geometry.PointInt, params HarrisParams) ([]Keypoint, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	bounds := g.Bounds()
	for i, c := range candidates {
		if !bounds.Contains(c) {
			return nil, fmt.Errorf("%w: candidate %d at (%d,%d) in %dx%d grid",
				ErrCandidateOutOfBounds, i, c.X, c.Y, g.Width(), g.Height())
		}
	}
	if len(candidates) == 0 {
		return []Keypoint{}, nil
	}

	response, err := HarrisResponse(g, params)
	if err != nil {
		return nil, err
	}

	kps := make([]Keypoint, 0, len(candidates))
	for _, c := range candidates {
		r := response.At(c.X, c.Y)
		if r > params.Threshold {
			kps = append(kps, Keypoint{X: c.X, Y: c.Y, Response: r})
		}
	}
	sort.SliceStable(kps, func(i, j int) bool {
		return kps[i].Response > kps[j].Response
	})

	tracef("harris: kept %d of %d candidates", len(kps), len(candidates))
	return kps, nil
}
