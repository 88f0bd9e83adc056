package keypoints

import (
	"fmt"
	"math/rand"
	"time"

	"orb-keypoints/pkg/geometry"
)

// DefaultPatchRadius is the default half width of the orientation and
// descriptor patch (31x31 pixels).
const DefaultPatchRadius = 15

// Pattern is the set of offsets compared by the descriptor stage. Bit i of
// a descriptor compares the pixel at center+offset[i] with the pixel at
// center-offset[i], after rotating the offset by the keypoint orientation.
// A Pattern is never modified after construction and may be shared.
type Pattern struct {
	radius  int
	offsets []geometry.PointInt
}

// NewPattern draws n offsets whose coordinates are uniform in
// [-radius, radius). The draw order is dx then dy for each offset. With a
// nil rng a time-seeded source is used, so two patterns drawn that way
// differ; pass a seeded source for reproducible descriptors.
func NewPattern(rng *rand.Rand, n, radius int) (*Pattern, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: need at least one offset, got %d", ErrInvalidPattern, n)
	}
	if radius <= 0 {
		return nil, fmt.Errorf("%w: radius must be positive, got %d", ErrInvalidPattern, radius)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	offsets := make([]geometry.PointInt, n)
	for i := range offsets {
		dx := rng.Intn(2*radius) - radius
		dy := rng.Intn(2*radius) - radius
		offsets[i] = geometry.PointInt{X: dx, Y: dy}
	}
	return &Pattern{radius: radius, offsets: offsets}, nil
}

// NewPatternFromOffsets builds a pattern from fixed offsets, for replaying
// a stored pattern or for tests. Every coordinate must lie in
// [-radius, radius].
func NewPatternFromOffsets(radius int, offsets []geometry.PointInt) (*Pattern, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("%w: radius must be positive, got %d", ErrInvalidPattern, radius)
	}
	if len(offsets) == 0 {
		return nil, fmt.Errorf("%w: no offsets", ErrInvalidPattern)
	}
	for i, off := range offsets {
		if off.X < -radius || off.X > radius || off.Y < -radius || off.Y > radius {
			return nil, fmt.Errorf("%w: offset %d (%d,%d) outside radius %d", ErrInvalidPattern, i, off.X, off.Y, radius)
		}
	}
	copied := make([]geometry.PointInt, len(offsets))
	copy(copied, offsets)
	return &Pattern{radius: radius, offsets: copied}, nil
}

// Len returns the number of offsets, which is the descriptor length.
func (p *Pattern) Len() int {
	return len(p.offsets)
}

// Radius returns the patch radius the pattern was drawn for.
func (p *Pattern) Radius() int {
	return p.radius
}

// Offsets returns a copy of the offsets.
func (p *Pattern) Offsets() []geometry.PointInt {
	out := make([]geometry.PointInt, len(p.offsets))
	copy(out, p.offsets)
	return out
}
