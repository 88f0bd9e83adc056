// Package keypoints detects corner keypoints in an intensity grid and
// computes rotation-aware binary descriptors for them.
//
// The pipeline runs in stages, each of which fully consumes its input:
// FAST candidate detection, Harris corner filtering (which also ranks the
// survivors), intensity-centroid orientation and oriented BRIEF
// description. Extract chains the stages; each stage is also usable on its
// own.
package keypoints

import (
	"errors"

	"orb-keypoints/pkg/geometry"
)

var (
	// ErrInvalidParams is wrapped by every parameter validation error.
	ErrInvalidParams = errors.New("invalid parameters")

	// ErrInvalidThreshold is returned for a negative FAST threshold.
	ErrInvalidThreshold = errors.New("threshold must be non-negative")

	// ErrCandidateOutOfBounds is returned when a candidate passed to the
	// Harris filter lies outside the grid.
	ErrCandidateOutOfBounds = errors.New("candidate outside grid")

	// ErrLengthMismatch is returned when keypoints and orientations passed
	// to the descriptor stage differ in length.
	ErrLengthMismatch = errors.New("keypoint and orientation counts differ")

	// ErrNilPattern is returned when the descriptor stage gets no pattern.
	ErrNilPattern = errors.New("sampling pattern is nil")

	// ErrInvalidPattern is returned for malformed sampling patterns.
	ErrInvalidPattern = errors.New("invalid sampling pattern")
)

// Keypoint is a ranked corner location. Response is the Harris score the
// keypoint was ranked by.
type Keypoint struct {
	X        int     `json:"x"`
	Y        int     `json:"y"`
	Response float64 `json:"response"`
}

// Point returns the keypoint location.
func (k Keypoint) Point() geometry.PointInt {
	return geometry.PointInt{X: k.X, Y: k.Y}
}

// Feature binds a keypoint to its orientation and descriptor.
type Feature struct {
	Keypoint
	Orientation float64    `json:"orientation"`
	Descriptor  Descriptor `json:"-"`
}

// Result is the output of Extract.
type Result struct {
	// Keypoints are the Harris survivors, strongest first.
	Keypoints []Keypoint

	// Orientations holds one angle per keypoint, same index. Keypoints too
	// close to the border for a full patch get 0.
	Orientations []float64

	// Features holds the keypoints whose descriptor patch fitted inside the
	// grid, in keypoint order. It can be shorter than Keypoints.
	Features []Feature

	// Pattern is the sampling pattern the descriptors were computed with.
	Pattern *Pattern
}
