// Package imgproc provides the intensity grid type and the filtering
// primitives (convolution, Gaussian smoothing, gradients) the keypoint
// pipeline is built on.
package imgproc

import (
	"errors"
	"fmt"

	"orb-keypoints/pkg/geometry"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrEmptyGrid is returned when a grid would have no pixels.
	ErrEmptyGrid = errors.New("grid must have positive width and height")

	// ErrGridSize is returned when a value slice or a second grid does not
	// match the expected dimensions.
	ErrGridSize = errors.New("grid size mismatch")
)

// Grid is a single-channel intensity image stored row-major in a dense
// matrix: row y, column x. Pipeline stages never modify a grid they are
// given; they return new grids instead.
type Grid struct {
	data *mat.Dense
}

// NewGrid returns a zero-filled grid of the given size.
func NewGrid(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrEmptyGrid, width, height)
	}
	return &Grid{data: mat.NewDense(height, width, nil)}, nil
}

// NewGridFromValues returns a grid holding a copy of values, which are
// given row by row (len(values) == width*height).
func NewGridFromValues(width, height int, values []float64) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrEmptyGrid, width, height)
	}
	if len(values) != width*height {
		return nil, fmt.Errorf("%w: %d values for a %dx%d grid", ErrGridSize, len(values), width, height)
	}
	data := make([]float64, len(values))
	copy(data, values)
	return &Grid{data: mat.NewDense(height, width, data)}, nil
}

// NewGridFromRows returns a grid built from equally long rows.
func NewGridFromRows(rows [][]float64) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyGrid
	}
	width := len(rows[0])
	values := make([]float64, 0, width*len(rows))
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrGridSize, y, len(row), width)
		}
		values = append(values, row...)
	}
	return NewGridFromValues(width, len(rows), values)
}

// newGridLike returns a zero-filled grid with the same size as g.
func newGridLike(g *Grid) *Grid {
	rows, cols := g.data.Dims()
	return &Grid{data: mat.NewDense(rows, cols, nil)}
}

// Width returns the number of columns.
func (g *Grid) Width() int {
	_, cols := g.data.Dims()
	return cols
}

// Height returns the number of rows.
func (g *Grid) Height() int {
	rows, _ := g.data.Dims()
	return rows
}

// Bounds returns the pixel rectangle covered by the grid.
func (g *Grid) Bounds() geometry.RectInt {
	return geometry.RectInt{Width: g.Width(), Height: g.Height()}
}

// At returns the value at column x, row y. It panics when the position is
// outside the grid; callers check Bounds first.
func (g *Grid) At(x, y int) float64 {
	return g.data.At(y, x)
}

// Set stores v at column x, row y. It is meant for building grids; the
// pipeline itself never calls it on an input grid.
func (g *Grid) Set(x, y int, v float64) {
	g.data.Set(y, x, v)
}

// Row returns row y. The slice shares storage with the grid, so writes
// through it modify the grid.
func (g *Grid) Row(y int) []float64 {
	return g.data.RawRowView(y)
}

// Values returns a copy of the grid values, row by row.
func (g *Grid) Values() []float64 {
	out := make([]float64, 0, g.Width()*g.Height())
	for y := 0; y < g.Height(); y++ {
		out = append(out, g.Row(y)...)
	}
	return out
}

// MulElem returns the element-wise product of a and b.
func MulElem(a, b *Grid) (*Grid, error) {
	if a.Width() != b.Width() || a.Height() != b.Height() {
		return nil, fmt.Errorf("%w: %dx%d vs %dx%d", ErrGridSize, a.Width(), a.Height(), b.Width(), b.Height())
	}
	out := newGridLike(a)
	out.data.MulElem(a.data, b.data)
	return out, nil
}

// Stats summarizes the grid values.
type Stats struct {
	Min  float64
	Max  float64
	Mean float64
}

// Stats returns the minimum, maximum and mean value of the grid.
func (g *Grid) Stats() Stats {
	values := g.Values()
	return Stats{
		Min:  floats.Min(values),
		Max:  floats.Max(values),
		Mean: floats.Sum(values) / float64(len(values)),
	}
}
