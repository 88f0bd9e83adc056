package keypoints

import (
	"fmt"
	"math"

	"orb-keypoints/internal/imgproc"
	"orb-keypoints/pkg/geometry"
)

// ComputeOrientations returns the intensity-centroid angle of the
// (2*radius+1) square patch around each keypoint, in radians within
// (-pi, pi]. x grows to the right and y grows downwards, so mass to the
// right of the center gives 0 and mass above it gives -pi/2.
//
// Keypoints whose patch does not fit inside the grid get 0; they are kept,
// so the result always has one entry per keypoint.
func ComputeOrientations(g *imgproc.Grid, kps []Keypoint, radius int) ([]float64, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("%w: patch radius must be positive, got %d", ErrInvalidParams, radius)
	}

	bounds := g.Bounds()
	orientations := make([]float64, len(kps))
	clipped := 0
	for i, kp := range kps {
		if !bounds.ContainsRect(geometry.SquareAround(kp.Point(), radius)) {
			clipped++
			continue
		}
		orientations[i] = centroidAngle(g, kp.X, kp.Y, radius)
	}

	if clipped > 0 {
		tracef("orientation: %d of %d patches clipped, angle set to 0", clipped, len(kps))
	}
	return orientations, nil
}

// centroidAngle computes atan2(m01, m10) over a patch known to be inside g.
func centroidAngle(g *imgproc.Grid, cx, cy, radius int) float64 {
	var m10, m01 float64
	for dy := -radius; dy <= radius; dy++ {
		row := g.Row(cy + dy)
		var rowSum float64
		for dx := -radius; dx <= radius; dx++ {
			v := row[cx+dx]
			m10 += v * float64(dx)
			rowSum += v
		}
		m01 += rowSum * float64(dy)
	}

	angle := math.Atan2(m01, m10)
	if angle == -math.Pi {
		angle = math.Pi
	}
	return angle
}
