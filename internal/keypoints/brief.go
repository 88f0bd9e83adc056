package keypoints

import (
	"fmt"
	"math"

	"orb-keypoints/internal/imgproc"
	"orb-keypoints/pkg/geometry"

	"gonum.org/v1/gonum/spatial/r2"
)

// ComputeDescriptors computes a descriptor for every keypoint whose patch
// (of the pattern's radius) lies fully inside the grid. Keypoints with a
// clipped patch are skipped, so the result may be shorter than kps; each
// Feature carries its own keypoint and orientation.
//
// For bit i the pattern offset is rotated by the keypoint orientation and
// rounded half to even to (dx, dy); the bit is set when the pixel at
// (x+dx, y+dy) is strictly brighter than the pixel at (x-dx, y-dy). A
// rotated offset that leaves the patch yields a 0 bit.
func ComputeDescriptors(g *imgproc.Grid, kps []Keypoint, orientations []float64, pattern *Pattern) ([]Feature, error) {
	if len(kps) != len(orientations) {
		return nil, fmt.Errorf("%w: %d keypoints, %d orientations", ErrLengthMismatch, len(kps), len(orientations))
	}
	if pattern == nil {
		return nil, ErrNilPattern
	}

	bounds := g.Bounds()
	radius := pattern.radius
	features := make([]Feature, 0, len(kps))
	rotated := make([]geometry.PointInt, len(pattern.offsets))
	for i, kp := range kps {
		if !bounds.ContainsRect(geometry.SquareAround(kp.Point(), radius)) {
			continue
		}
		rotateOffsets(rotated, pattern.offsets, orientations[i])

		desc := NewDescriptor(len(rotated))
		for bit, off := range rotated {
			if off.X < -radius || off.X > radius || off.Y < -radius || off.Y > radius {
				continue
			}
			if g.At(kp.X+off.X, kp.Y+off.Y) > g.At(kp.X-off.X, kp.Y-off.Y) {
				desc.set(bit)
			}
		}
		features = append(features, Feature{
			Keypoint:    kp,
			Orientation: orientations[i],
			Descriptor:  desc,
		})
	}

	if dropped := len(kps) - len(features); dropped > 0 {
		tracef("brief: dropped %d of %d keypoints with clipped patches", dropped, len(kps))
	}
	return features, nil
}

// rotateOffsets applies the rotation matrix [cos -sin; sin cos] for angle
// to each offset in src and stores the rounded result in dst. Angles that
// differ by whole turns give the same offsets.
func rotateOffsets(dst, src []geometry.PointInt, angle float64) {
	rot := r2.NewRotation(math.Remainder(angle, 2*math.Pi), r2.Vec{})
	for i, off := range src {
		v := rot.Rotate(r2.Vec{X: float64(off.X), Y: float64(off.Y)})
		dst[i] = geometry.PointInt{
			X: roundOffset(v.X),
			Y: roundOffset(v.Y),
		}
	}
}

// offsetPrecision is the grid rotated coordinates are snapped to before
// rounding, so sin/cos noise cannot move a value across a .5 boundary.
const offsetPrecision = 1e9

// roundOffset rounds a rotated coordinate half to even.
func roundOffset(v float64) int {
	return int(math.RoundToEven(math.Round(v*offsetPrecision) / offsetPrecision))
}
