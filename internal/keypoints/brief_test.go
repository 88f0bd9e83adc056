package keypoints

import (
	"math"
	"math/rand"
	"testing"

	"orb-keypoints/pkg/geometry"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rampImage increases by 1 per column and by 100 per row.
func rampImage(x, y int) float64 {
	return float64(x + 100*y)
}

var rampOffsets = []geometry.PointInt{
	{X: 1, Y: 0},
	{X: 0, Y: 1},
	{X: -1, Y: 0},
	{X: 0, Y: -1},
	{X: 0, Y: 0},
	{X: 2, Y: 2},
	{X: -2, Y: 1},
}

func TestComputeDescriptors_KnownBits(t *testing.T) {
	t.Parallel()

	g := gridFromFunc(t, 11, 11, rampImage)
	pattern, err := NewPatternFromOffsets(2, rampOffsets)
	require.NoError(t, err)

	tests := []struct {
		name  string
		angle float64
		want  []uint8
	}{
		{"upright", 0, []uint8{1, 1, 0, 0, 0, 1, 1}},
		{"half turn", math.Pi, []uint8{0, 0, 1, 1, 0, 0, 0}},
		// (2,2) rotates to (0,3), outside the radius 2 patch.
		{"eighth turn", math.Pi / 4, []uint8{1, 1, 0, 0, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kps := []Keypoint{{X: 5, Y: 5, Response: 1}}
			features, err := ComputeDescriptors(g, kps, []float64{tt.angle}, pattern)
			require.NoError(t, err)
			require.Len(t, features, 1)

			f := features[0]
			assert.Equal(t, kps[0], f.Keypoint)
			assert.Equal(t, tt.angle, f.Orientation)
			if diff := cmp.Diff(tt.want, f.Descriptor.Bits()); diff != "" {
				t.Errorf("bits mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestComputeDescriptors_DropsClippedPatches(t *testing.T) {
	t.Parallel()

	g := gridFromFunc(t, 11, 11, rampImage)
	pattern, err := NewPatternFromOffsets(2, rampOffsets)
	require.NoError(t, err)

	kps := []Keypoint{{X: 5, Y: 5}, {X: 0, Y: 0}, {X: 8, Y: 5}, {X: 9, Y: 9}}
	features, err := ComputeDescriptors(g, kps, []float64{0, 1, 0.5, 2}, pattern)
	require.NoError(t, err)
	require.Len(t, features, 2)

	assert.Equal(t, kps[0], features[0].Keypoint)
	assert.Equal(t, kps[2], features[1].Keypoint)
	assert.Equal(t, 0.5, features[1].Orientation)
}

func TestComputeDescriptors_Deterministic(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	g := gridFromFunc(t, 41, 41, func(x, y int) float64 { return float64(rng.Intn(256)) })
	pattern, err := NewPattern(rand.New(rand.NewSource(1)), DefaultDescriptorBits, DefaultPatchRadius)
	require.NoError(t, err)

	kps := []Keypoint{{X: 20, Y: 20}}
	first, err := ComputeDescriptors(g, kps, []float64{0.7}, pattern)
	require.NoError(t, err)
	second, err := ComputeDescriptors(g, kps, []float64{0.7}, pattern)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Len(t, second, 1)

	assert.Equal(t, DefaultDescriptorBits, first[0].Descriptor.Len())
	assert.True(t, first[0].Descriptor.Equal(second[0].Descriptor))

	// A full turn lands on the same rotated offsets.
	turned, err := ComputeDescriptors(g, kps, []float64{0.7 + 2*math.Pi}, pattern)
	require.NoError(t, err)
	require.Len(t, turned, 1)
	assert.True(t, first[0].Descriptor.Equal(turned[0].Descriptor))

	// Random texture sets some bits but not all of them.
	ones := first[0].Descriptor.OnesCount()
	assert.Greater(t, ones, 0)
	assert.Less(t, ones, DefaultDescriptorBits)
}

func TestComputeDescriptors_FullTurnAtHalfBoundary(t *testing.T) {
	t.Parallel()

	// At -pi/6 every odd horizontal offset lands on a .5 row offset.
	rng := rand.New(rand.NewSource(7))
	g := gridFromFunc(t, 41, 41, func(x, y int) float64 { return float64(rng.Intn(256)) })
	offsets := make([]geometry.PointInt, 0, 2*DefaultPatchRadius)
	for dx := -DefaultPatchRadius; dx < DefaultPatchRadius; dx++ {
		offsets = append(offsets, geometry.PointInt{X: dx, Y: 0})
	}
	pattern, err := NewPatternFromOffsets(DefaultPatchRadius, offsets)
	require.NoError(t, err)

	angle := -math.Pi / 6
	kps := []Keypoint{{X: 20, Y: 20}, {X: 20, Y: 20}, {X: 20, Y: 20}}
	features, err := ComputeDescriptors(g, kps, []float64{angle, angle + 2*math.Pi, angle - 4*math.Pi}, pattern)
	require.NoError(t, err)
	require.Len(t, features, 3)

	dist, err := features[0].Descriptor.Distance(features[1].Descriptor)
	require.NoError(t, err)
	assert.Zero(t, dist)
	dist, err = features[0].Descriptor.Distance(features[2].Descriptor)
	require.NoError(t, err)
	assert.Zero(t, dist)
}

func TestComputeDescriptors_Errors(t *testing.T) {
	t.Parallel()

	g := gridFromFunc(t, 11, 11, rampImage)
	pattern, err := NewPatternFromOffsets(2, rampOffsets)
	require.NoError(t, err)

	_, err = ComputeDescriptors(g, []Keypoint{{X: 5, Y: 5}}, nil, pattern)
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = ComputeDescriptors(g, []Keypoint{{X: 5, Y: 5}}, []float64{0}, nil)
	assert.ErrorIs(t, err, ErrNilPattern)

	features, err := ComputeDescriptors(g, nil, nil, pattern)
	require.NoError(t, err)
	assert.Empty(t, features)
}

func TestRotateOffsets(t *testing.T) {
	t.Parallel()

	src := []geometry.PointInt{{X: 3, Y: 0}, {X: 0, Y: 3}, {X: 1, Y: 1}}
	dst := make([]geometry.PointInt, len(src))

	rotateOffsets(dst, src, math.Pi/2)
	assert.Equal(t, []geometry.PointInt{{X: 0, Y: 3}, {X: -3, Y: 0}, {X: -1, Y: 1}}, dst)

	rotateOffsets(dst, src, 0)
	assert.Equal(t, src, dst)

	// Exact halves round to even.
	half := []geometry.PointInt{{X: -5, Y: 0}, {X: 3, Y: 0}, {X: 1, Y: 0}}
	dst = make([]geometry.PointInt, len(half))
	rotateOffsets(dst, half, -math.Pi/6)
	assert.Equal(t, []geometry.PointInt{{X: -4, Y: 2}, {X: 3, Y: -2}, {X: 1, Y: 0}}, dst)
}

func TestRotateOffsets_WholeTurns(t *testing.T) {
	t.Parallel()

	var src []geometry.PointInt
	for dy := -DefaultPatchRadius; dy < DefaultPatchRadius; dy++ {
		for dx := -DefaultPatchRadius; dx < DefaultPatchRadius; dx++ {
			src = append(src, geometry.PointInt{X: dx, Y: dy})
		}
	}
	want := make([]geometry.PointInt, len(src))
	got := make([]geometry.PointInt, len(src))
	for k := -6; k <= 6; k++ {
		angle := float64(k) * math.Pi / 6
		rotateOffsets(want, src, angle)
		for _, turns := range []float64{-2, -1, 1, 3} {
			rotateOffsets(got, src, angle+turns*2*math.Pi)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("angle %d*pi/6 + %v turns (-want +got):\n%s", k, turns, diff)
			}
		}
	}
}

func TestNewPattern(t *testing.T) {
	t.Parallel()

	a, err := NewPattern(rand.New(rand.NewSource(42)), 512, 15)
	require.NoError(t, err)
	b, err := NewPattern(rand.New(rand.NewSource(42)), 512, 15)
	require.NoError(t, err)

	assert.Equal(t, 512, a.Len())
	assert.Equal(t, 15, a.Radius())
	if diff := cmp.Diff(a.Offsets(), b.Offsets()); diff != "" {
		t.Errorf("same seed gave different patterns (-a +b):\n%s", diff)
	}

	var sawMin bool
	for _, off := range a.Offsets() {
		assert.GreaterOrEqual(t, off.X, -15)
		assert.Less(t, off.X, 15)
		assert.GreaterOrEqual(t, off.Y, -15)
		assert.Less(t, off.Y, 15)
		sawMin = sawMin || off.X == -15 || off.Y == -15
	}
	assert.True(t, sawMin, "1024 draws over 30 values should hit -15")

	// Offsets returns a copy.
	offs := a.Offsets()
	offs[0] = geometry.PointInt{X: 99, Y: 99}
	assert.NotEqual(t, offs[0], a.Offsets()[0])

	// Unseeded patterns are still well formed.
	c, err := NewPattern(nil, 8, 3)
	require.NoError(t, err)
	assert.Equal(t, 8, c.Len())
}

func TestNewPattern_Errors(t *testing.T) {
	t.Parallel()

	_, err := NewPattern(nil, 0, 15)
	assert.ErrorIs(t, err, ErrInvalidPattern)
	_, err = NewPattern(nil, 16, 0)
	assert.ErrorIs(t, err, ErrInvalidPattern)

	_, err = NewPatternFromOffsets(2, nil)
	assert.ErrorIs(t, err, ErrInvalidPattern)
	_, err = NewPatternFromOffsets(0, rampOffsets)
	assert.ErrorIs(t, err, ErrInvalidPattern)
	_, err = NewPatternFromOffsets(2, []geometry.PointInt{{X: 0, Y: 0}, {X: 3, Y: 0}})
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestNewPatternFromOffsets_Copies(t *testing.T) {
	t.Parallel()

	offsets := []geometry.PointInt{{X: 1, Y: 2}, {X: -2, Y: 0}}
	p, err := NewPatternFromOffsets(2, offsets)
	require.NoError(t, err)

	offsets[0] = geometry.PointInt{}
	assert.Equal(t, geometry.PointInt{X: 1, Y: 2}, p.Offsets()[0])
}
