package keypoints

import (
	"fmt"

	"orb-keypoints/internal/imgproc"
	"orb-keypoints/pkg/geometry"
)

// Implementation of the FAST segment test:
// Rosten, Edward; Tom Drummond (2005). Fusing points and lines for high
// performance tracking. IEEE International Conference on Computer Vision.

// CircleRadius is the radius of the FAST sampling circle. Pixels closer
// than this to the border are never tested.
const CircleRadius = 3

// Circle holds the 16 offsets of the radius 3 Bresenham circle, walked in
// order around the center pixel. Indices 0, 4, 8 and 12 are the cardinal
// samples used by the pre-filter.
var Circle = [16]geometry.PointInt{
	{X: -3, Y: 0},
	{X: -3, Y: 1},
	{X: -2, Y: 2},
	{X: -1, Y: 3},
	{X: 0, Y: 3},
	{X: 1, Y: 3},
	{X: 2, Y: 2},
	{X: 3, Y: 1},
	{X: 3, Y: 0},
	{X: 3, Y: -1},
	{X: 2, Y: -2},
	{X: 1, Y: -3},
	{X: 0, Y: -3},
	{X: -1, Y: -3},
	{X: -2, Y: -2},
	{X: -3, Y: -1},
}

var cardinalIdx = [4]int{0, 8, 4, 12}

// polarity classifies a circle sample against the center pixel.
type polarity int8

const (
	similar  polarity = iota // within center ± threshold
	brighter                 // above center + threshold
	darker                   // below center - threshold
)

func classify(v, center, threshold float64) polarity {
	switch {
	case v > center+threshold:
		return brighter
	case v < center-threshold:
		return darker
	default:
		return similar
	}
}

// DetectFAST returns every pixel that passes the segment test, in row-major
// order. A pixel passes when ArcLength consecutive circle samples are all
// brighter than center+Threshold or all darker than center-Threshold. The
// arc may wrap past the last circle index, unlike a single pass over
// indices 0-15, so an arc straddling the circle start is still found. No
// suppression is applied between neighbouring candidates.
func DetectFAST(g *imgproc.Grid, params FASTParams) ([]geometry.PointInt, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	// An arc of n samples covers at least n/4 of the cardinal samples.
	minCardinal := params.ArcLength / 4
	width, height := g.Width(), g.Height()

	var candidates []geometry.PointInt
	var classes [len(Circle)]polarity
	for y := CircleRadius; y < height-CircleRadius; y++ {
		for x := CircleRadius; x < width-CircleRadius; x++ {
			center := g.At(x, y)

			// Cheap rejection on the four cardinal samples.
			var nBrighter, nDarker int
			for _, idx := range cardinalIdx {
				off := Circle[idx]
				switch classify(g.At(x+off.X, y+off.Y), center, params.Threshold) {
				case brighter:
					nBrighter++
				case darker:
					nDarker++
				}
			}
			if nBrighter < minCardinal && nDarker < minCardinal {
				continue
			}

			for i, off := range Circle {
				classes[i] = classify(g.At(x+off.X, y+off.Y), center, params.Threshold)
			}
			if hasArc(classes[:], params.ArcLength) {
				candidates = append(candidates, geometry.PointInt{X: x, Y: y})
			}
		}
	}

	tracef("fast: %d candidates in %dx%d grid (threshold %.1f, arc %d)",
		len(candidates), width, height, params.Threshold, params.ArcLength)
	return candidates, nil
}

// hasArc reports whether classes contains arc consecutive entries of the
// same non-similar polarity, treating the slice as circular.
func hasArc(classes []polarity, arc int) bool {
	n := len(classes)
	run := 0
	prev := similar
	for i := 0; i < n+arc-1; i++ {
		c := classes[i%n]
		switch {
		case c == similar:
			run = 0
		case c == prev:
			run++
		default:
			run = 1
		}
		prev = c
		if run >= arc {
			return true
		}
	}
	return false
}

// FASTParams configures DetectFAST.
type FASTParams struct {
	Threshold float64 `json:"threshold"`  // Intensity margin over/under the center (default: 10)
	ArcLength int     `json:"arc_length"` // Consecutive samples required, 1-16 (default: 12)
}

// DefaultFASTParams returns the default segment test parameters.
func DefaultFASTParams() FASTParams {
	return FASTParams{
		Threshold: 10,
		ArcLength: 12,
	}
}

// Validate checks the parameters.
func (p FASTParams) Validate() error {
	if !(p.Threshold >= 0) {
		return fmt.Errorf("%w: %w: got %v", ErrInvalidParams, ErrInvalidThreshold, p.Threshold)
	}
	if p.ArcLength < 1 || p.ArcLength > len(Circle) {
		return fmt.Errorf("%w: FAST arc length must be in [1, %d], got %d", ErrInvalidParams, len(Circle), p.ArcLength)
	}
	return nil
}
