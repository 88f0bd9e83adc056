package keypoints

import (
	"fmt"
	"time"

	"orb-keypoints/internal/imgproc"
)

// Extract runs the full pipeline on g: optional Gaussian pre-smoothing,
// FAST detection, Harris filtering and ranking, orientation and
// description. All stages read the smoothed grid.
//
// pattern may be nil, in which case a fresh pattern of
// params.DescriptorBits offsets is drawn from a time-seeded source. A
// non-nil pattern must have been drawn for params.PatchRadius.
func Extract(g *imgproc.Grid, params Params, pattern *Pattern) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if pattern == nil {
		var err error
		pattern, err = NewPattern(nil, params.DescriptorBits, params.PatchRadius)
		if err != nil {
			return nil, err
		}
	} else if pattern.Radius() != params.PatchRadius {
		return nil, fmt.Errorf("%w: pattern radius %d, patch radius %d",
			ErrInvalidPattern, pattern.Radius(), params.PatchRadius)
	}

	start := time.Now()
	side := 2*params.PatchRadius + 1
	if g.Width() < side || g.Height() < side {
		opsf("grid %dx%d is smaller than the %dx%d patch: no descriptors will be produced",
			g.Width(), g.Height(), side, side)
	}

	smoothed := g
	if params.PreBlurSize > 0 {
		var err error
		smoothed, err = imgproc.GaussianBlur(g, params.PreBlurSize, params.PreBlurSigma)
		if err != nil {
			return nil, fmt.Errorf("pre-smoothing: %w", err)
		}
	}

	candidates, err := DetectFAST(smoothed, params.FAST)
	if err != nil {
		return nil, fmt.Errorf("FAST detection: %w", err)
	}

	kps, err := FilterHarris(smoothed, candidates, params.Harris)
	if err != nil {
		return nil, fmt.Errorf("harris filter: %w", err)
	}
	ranked := len(kps)
	if params.MaxKeypoints > 0 && len(kps) > params.MaxKeypoints {
		kps = kps[:params.MaxKeypoints]
	}

	orientations, err := ComputeOrientations(smoothed, kps, params.PatchRadius)
	if err != nil {
		return nil, fmt.Errorf("orientation: %w", err)
	}

	features, err := ComputeDescriptors(smoothed, kps, orientations, pattern)
	if err != nil {
		return nil, fmt.Errorf("descriptors: %w", err)
	}

	diagf("extract %dx%d: %d candidates, %d ranked, %d kept, %d described (%v)",
		g.Width(), g.Height(), len(candidates), ranked, len(kps), len(features), time.Since(start))

	return &Result{
		Keypoints:    kps,
		Orientations: orientations,
		Features:     features,
		Pattern:      pattern,
	}, nil
}
