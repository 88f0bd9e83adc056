// Package overlay draws keypoints and their orientations on top of the
// source image.
package overlay

import (
	"image"
	"image/color"
	"math"

	"orb-keypoints/internal/keypoints"
	"orb-keypoints/pkg/colorutil"
	"orb-keypoints/pkg/geometry"

	"github.com/fogleman/gg"
)

// Shape selects how a marker is drawn.
type Shape int

const (
	ShapeCircle Shape = iota // Circle outline
	ShapeTarget              // Circle with crosshairs through the center
)

// Marker is one keypoint to draw, in image coordinates.
type Marker struct {
	Center    geometry.Point2D
	Angle     float64 // Orientation in radians, y pointing down
	Described bool    // Has a descriptor; drawn with an orientation tick
}

// Options configures Render.
type Options struct {
	Radius     float64     // Marker radius in pixels (default: 4)
	TickLength float64     // Orientation tick length (default: 10)
	LineWidth  float64     // Stroke width (default: 1.5)
	Shape      Shape       // Marker shape (default: ShapeCircle)
	Described  color.Color // Color of keypoints with a descriptor
	Plain      color.Color // Color of keypoints without one
}

// DefaultOptions returns the default rendering options.
func DefaultOptions() Options {
	return Options{
		Radius:     4,
		TickLength: 10,
		LineWidth:  1.5,
		Shape:      ShapeCircle,
		Described:  colorutil.Green,
		Plain:      colorutil.WithAlpha(colorutil.Blue, 128),
	}
}

// MarkersFromResult returns one marker per keypoint of res. Positions are
// multiplied by 1/scale, so markers for a downscaled grid land on the
// original image; pass 1 when no downscaling was applied.
func MarkersFromResult(res *keypoints.Result, scale float64) []Marker {
	if scale <= 0 {
		scale = 1
	}
	described := make(map[geometry.PointInt]bool, len(res.Features))
	for _, f := range res.Features {
		described[f.Point()] = true
	}

	markers := make([]Marker, len(res.Keypoints))
	for i, kp := range res.Keypoints {
		var angle float64
		if i < len(res.Orientations) {
			angle = res.Orientations[i]
		}
		markers[i] = Marker{
			Center:    kp.Point().ToFloat().Scale(1 / scale),
			Angle:     angle,
			Described: described[kp.Point()],
		}
	}
	return markers
}

// Render returns a copy of img with the markers drawn on it.
func Render(img image.Image, markers []Marker, opts Options) image.Image {
	b := img.Bounds()
	dc := gg.NewContext(b.Dx(), b.Dy())
	dc.DrawImage(img, -b.Min.X, -b.Min.Y)
	dc.SetLineWidth(opts.LineWidth)

	// Plain markers first so described ones stay visible on top.
	for _, pass := range []bool{false, true} {
		for _, m := range markers {
			if m.Described != pass {
				continue
			}
			if m.Described {
				dc.SetColor(opts.Described)
			} else {
				dc.SetColor(opts.Plain)
			}
			drawMarker(dc, m, opts)
		}
	}
	return dc.Image()
}

func drawMarker(dc *gg.Context, m Marker, opts Options) {
	x, y := m.Center.X, m.Center.Y
	dc.DrawCircle(x, y, opts.Radius)
	dc.Stroke()

	if opts.Shape == ShapeTarget {
		dc.DrawLine(x-opts.Radius, y, x+opts.Radius, y)
		dc.DrawLine(x, y-opts.Radius, x, y+opts.Radius)
		dc.Stroke()
	}

	if m.Described {
		dc.DrawLine(x, y, x+opts.TickLength*math.Cos(m.Angle), y+opts.TickLength*math.Sin(m.Angle))
		dc.Stroke()
	}
}

// SavePNG writes img to path as a PNG file.
func SavePNG(path string, img image.Image) error {
	return gg.SavePNG(path, img)
}
