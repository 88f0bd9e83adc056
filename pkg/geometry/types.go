// Package geometry provides the pixel coordinate types shared by the
// image packages.
package geometry

import (
	"math"
)

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Scale returns the point scaled by a factor.
func (p Point2D) Scale(factor float64) Point2D {
	return Point2D{X: p.X * factor, Y: p.Y * factor}
}

// PointInt represents a 2D point with integer coordinates.
// X is the column and Y the row of a pixel.
type PointInt struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ToFloat converts to Point2D.
func (p PointInt) ToFloat() Point2D {
	return Point2D{X: float64(p.X), Y: float64(p.Y)}
}

// Sub returns the difference of two points.
func (p PointInt) Sub(other PointInt) PointInt {
	return PointInt{X: p.X - other.X, Y: p.Y - other.Y}
}

// Distance returns the Euclidean distance to another point.
func (p PointInt) Distance(other PointInt) float64 {
	return p.ToFloat().Distance(other.ToFloat())
}

// RectInt represents a rectangle with integer coordinates.
// It covers columns [X, X+Width) and rows [Y, Y+Height).
type RectInt struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// SquareAround returns the (2*radius+1) wide square centered on p.
func SquareAround(p PointInt, radius int) RectInt {
	side := 2*radius + 1
	return RectInt{X: p.X - radius, Y: p.Y - radius, Width: side, Height: side}
}

// Empty reports whether the rectangle covers no pixels.
func (r RectInt) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains returns true if the pixel p lies inside the rectangle.
func (r RectInt) Contains(p PointInt) bool {
	return p.X >= r.X && p.X < r.X+r.Width &&
		p.Y >= r.Y && p.Y < r.Y+r.Height
}

// ContainsRect returns true if other lies entirely inside the rectangle.
func (r RectInt) ContainsRect(other RectInt) bool {
	if other.Empty() {
		return false
	}
	return other.X >= r.X && other.X+other.Width <= r.X+r.Width &&
		other.Y >= r.Y && other.Y+other.Height <= r.Y+r.Height
}

