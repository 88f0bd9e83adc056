package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointInt(t *testing.T) {
	t.Parallel()

	a := PointInt{X: 4, Y: 7}
	b := PointInt{X: 1, Y: 3}
	assert.Equal(t, PointInt{X: 3, Y: 4}, a.Sub(b))
	assert.InDelta(t, 5.0, a.Distance(b), 1e-12)
	assert.Equal(t, Point2D{X: 4, Y: 7}, a.ToFloat())
}

func TestPoint2D_Scale(t *testing.T) {
	t.Parallel()

	p := Point2D{X: 3, Y: -4}
	assert.Equal(t, Point2D{X: 6, Y: -8}, p.Scale(2))
	assert.InDelta(t, 5.0, p.Distance(Point2D{}), 1e-12)
}

func TestSquareAround(t *testing.T) {
	t.Parallel()

	r := SquareAround(PointInt{X: 10, Y: 5}, 2)
	assert.Equal(t, RectInt{X: 8, Y: 3, Width: 5, Height: 5}, r)
	assert.True(t, r.Contains(PointInt{X: 8, Y: 3}))
	assert.True(t, r.Contains(PointInt{X: 12, Y: 7}))
	assert.False(t, r.Contains(PointInt{X: 13, Y: 7}))
	assert.False(t, r.Contains(PointInt{X: 12, Y: 2}))
}

func TestRectInt_ContainsRect(t *testing.T) {
	t.Parallel()

	bounds := RectInt{Width: 20, Height: 10}
	tests := []struct {
		name  string
		inner RectInt
		want  bool
	}{
		{"inside", SquareAround(PointInt{X: 5, Y: 5}, 3), true},
		{"touching edges", RectInt{Width: 20, Height: 10}, true},
		{"past right edge", SquareAround(PointInt{X: 18, Y: 5}, 2), false},
		{"negative origin", SquareAround(PointInt{X: 1, Y: 5}, 2), false},
		{"empty", RectInt{X: 2, Y: 2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bounds.ContainsRect(tt.inner))
		})
	}
	assert.True(t, RectInt{Width: 0, Height: 3}.Empty())
}
