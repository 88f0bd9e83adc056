package overlay

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"orb-keypoints/internal/keypoints"
	"orb-keypoints/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResult() *keypoints.Result {
	kps := []keypoints.Keypoint{{X: 20, Y: 20, Response: 3}, {X: 2, Y: 30, Response: 2}, {X: 30, Y: 8, Response: 1}}
	return &keypoints.Result{
		Keypoints:    kps,
		Orientations: []float64{0, 0, 1},
		Features: []keypoints.Feature{
			{Keypoint: kps[0], Orientation: 0, Descriptor: keypoints.NewDescriptor(8)},
			{Keypoint: kps[2], Orientation: 1, Descriptor: keypoints.NewDescriptor(8)},
		},
	}
}

func TestMarkersFromResult(t *testing.T) {
	t.Parallel()

	markers := MarkersFromResult(testResult(), 1)
	require.Len(t, markers, 3)
	assert.Equal(t, Marker{Center: geometry.Point2D{X: 20, Y: 20}, Angle: 0, Described: true}, markers[0])
	assert.Equal(t, Marker{Center: geometry.Point2D{X: 2, Y: 30}, Angle: 0, Described: false}, markers[1])
	assert.Equal(t, Marker{Center: geometry.Point2D{X: 30, Y: 8}, Angle: 1, Described: true}, markers[2])

	scaled := MarkersFromResult(testResult(), 0.5)
	assert.Equal(t, geometry.Point2D{X: 40, Y: 40}, scaled[0].Center)

	assert.Equal(t, markers, MarkersFromResult(testResult(), 0), "non-positive scale means no scaling")
}

func countLit(img image.Image, r image.Rectangle) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			if cr+cg+cb > 0 {
				n++
			}
		}
	}
	return n
}

func TestRender(t *testing.T) {
	t.Parallel()

	src := image.NewGray(image.Rect(0, 0, 40, 40))
	out := Render(src, MarkersFromResult(testResult(), 1), DefaultOptions())
	assert.Equal(t, image.Rect(0, 0, 40, 40), out.Bounds())

	// Orientation tick of the first keypoint runs to the right.
	_, g, _, _ := out.At(27, 20).RGBA()
	assert.Greater(t, g>>8, uint32(100))

	// The plain keypoint gets a circle but no tick.
	assert.Greater(t, countLit(out, image.Rect(0, 26, 7, 35)), 0)
	assert.Zero(t, countLit(out, image.Rect(8, 29, 14, 32)))

	// Far from every marker the image is untouched.
	assert.Zero(t, countLit(out, image.Rect(0, 0, 12, 12)))

	// The source is not modified.
	assert.Zero(t, countLit(src, src.Bounds()))
}

func TestRender_TargetShape(t *testing.T) {
	t.Parallel()

	src := image.NewGray(image.Rect(0, 0, 40, 40))
	markers := []Marker{{Center: geometry.Point2D{X: 20.5, Y: 20.5}}}

	circle := Render(src, markers, DefaultOptions())
	opts := DefaultOptions()
	opts.Shape = ShapeTarget
	target := Render(src, markers, opts)

	// Only the target has crosshairs through the center.
	assert.Zero(t, countLit(circle, image.Rect(20, 20, 21, 21)))
	assert.Greater(t, countLit(target, image.Rect(20, 20, 21, 21)), 0)
}

func TestRender_OffsetBounds(t *testing.T) {
	t.Parallel()

	full := image.NewRGBA(image.Rect(0, 0, 50, 50))
	for y := 10; y < 50; y++ {
		for x := 10; x < 50; x++ {
			full.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	sub := full.SubImage(image.Rect(10, 10, 50, 50))

	out := Render(sub, nil, DefaultOptions())
	assert.Equal(t, image.Rect(0, 0, 40, 40), out.Bounds())
	r, _, _, _ := out.At(0, 0).RGBA()
	assert.Equal(t, uint32(200), r>>8)
}

func TestSavePNG(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "overlay.png")
	img := Render(image.NewGray(image.Rect(0, 0, 16, 12)), nil, DefaultOptions())
	require.NoError(t, SavePNG(path, img))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 16, cfg.Width)
	assert.Equal(t, 12, cfg.Height)
}
