package imageio

import (
	"fmt"
	"image"
	"strings"

	"orb-keypoints/internal/imgproc"
	"orb-keypoints/pkg/colorutil"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// GrayMode selects how color pixels are reduced to one intensity.
type GrayMode int

const (
	GrayMean  GrayMode = iota // Unweighted mean of R, G and B
	GrayLuma                  // ITU-R 601 luma, as image.Gray computes it
	GrayValue                 // HSV value, the brightest of R, G and B
)

func (m GrayMode) String() string {
	switch m {
	case GrayMean:
		return "mean"
	case GrayLuma:
		return "luma"
	case GrayValue:
		return "value"
	default:
		return "unknown"
	}
}

// ParseGrayMode parses "mean", "luma" or "value". The empty string is
// the default, mean.
func ParseGrayMode(s string) (GrayMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mean", "":
		return GrayMean, nil
	case "luma":
		return GrayLuma, nil
	case "value":
		return GrayValue, nil
	default:
		return GrayMean, fmt.Errorf("unknown grayscale mode %q (want mean, luma or value)", s)
	}
}

// ToGrid converts img to an intensity grid with values in [0, 255]. Grid
// (0, 0) is the top-left pixel of img's bounds. Alpha is ignored.
func ToGrid(img image.Image, mode GrayMode) (*imgproc.Grid, error) {
	b := img.Bounds()
	g, err := imgproc.NewGrid(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}

	switch mode {
	case GrayLuma:
		gray, ok := img.(*image.Gray)
		if !ok {
			gray = image.NewGray(b)
			draw.Draw(gray, b, img, b.Min, draw.Src)
		}
		for y := 0; y < b.Dy(); y++ {
			row := g.Row(y)
			off := gray.PixOffset(b.Min.X, b.Min.Y+y)
			for x := range row {
				row[x] = float64(gray.Pix[off+x])
			}
		}
	case GrayMean:
		for y := 0; y < b.Dy(); y++ {
			row := g.Row(y)
			for x := range row {
				r, gr, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
				row[x] = float64(r>>8+gr>>8+bl>>8) / 3
			}
		}
	case GrayValue:
		for y := 0; y < b.Dy(); y++ {
			row := g.Row(y)
			for x := range row {
				row[x] = colorutil.Value(img.At(b.Min.X+x, b.Min.Y+y))
			}
		}
	default:
		return nil, fmt.Errorf("unknown grayscale mode %d", mode)
	}
	return g, nil
}

// Downscale shrinks img so its longer side is at most maxDim pixels,
// keeping the aspect ratio. It returns the image and the applied scale
// (new width / old width). Images already small enough, or maxDim <= 0,
// are returned unchanged with scale 1.
func Downscale(img image.Image, maxDim int) (image.Image, float64) {
	b := img.Bounds()
	if maxDim <= 0 || (b.Dx() <= maxDim && b.Dy() <= maxDim) {
		return img, 1
	}
	out := resize.Thumbnail(uint(maxDim), uint(maxDim), img, resize.Bilinear)
	return out, float64(out.Bounds().Dx()) / float64(b.Dx())
}
