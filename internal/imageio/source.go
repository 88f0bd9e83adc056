// Package imageio loads images from disk and converts them to intensity
// grids for the keypoint pipeline.
package imageio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Source is a decoded input image.
type Source struct {
	Path   string      // Original file path
	Image  image.Image // Decoded image data
	Format string      // Decoder name ("png", "tiff", ...)
	DPI    float64     // From TIFF resolution tags, 0 when unknown
}

// Load decodes the image at path.
func Load(path string) (*Source, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	src := &Source{
		Path:   path,
		Image:  img,
		Format: format,
	}

	if format == "tiff" {
		if _, err := file.Seek(0, io.SeekStart); err == nil {
			if dpi, err := tiffDPI(file); err == nil {
				src.DPI = dpi
			}
		}
	}

	return src, nil
}

// Width returns the image width in pixels.
func (s *Source) Width() int {
	if s.Image == nil {
		return 0
	}
	return s.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (s *Source) Height() int {
	if s.Image == nil {
		return 0
	}
	return s.Image.Bounds().Dy()
}

// TIFF tags and field types used by tiffDPI.
const (
	tagXResolution    = 282
	tagYResolution    = 283
	tagResolutionUnit = 296

	typeShort    = 3
	typeRational = 5

	unitCentimeter = 3
)

// tiffDPI reads the resolution tags of the first IFD.
func tiffDPI(r io.ReadSeeker) (float64, error) {
	header := make([]byte, 8)
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, err
	}

	var order binary.ByteOrder
	switch {
	case header[0] == 'I' && header[1] == 'I':
		order = binary.LittleEndian
	case header[0] == 'M' && header[1] == 'M':
		order = binary.BigEndian
	default:
		return 0, errors.New("not a valid TIFF file")
	}

	if _, err := r.Seek(int64(order.Uint32(header[4:8])), io.SeekStart); err != nil {
		return 0, err
	}
	var numEntries uint16
	if err := binary.Read(r, order, &numEntries); err != nil {
		return 0, err
	}

	// Rationals live outside the IFD; collect their offsets first.
	var xOff, yOff int64 = -1, -1
	var unit uint16 = 2 // inches
	entry := make([]byte, 12)
	for i := uint16(0); i < numEntries; i++ {
		if _, err := io.ReadFull(r, entry); err != nil {
			return 0, err
		}
		tag := order.Uint16(entry[0:2])
		fieldType := order.Uint16(entry[2:4])
		switch {
		case tag == tagXResolution && fieldType == typeRational:
			xOff = int64(order.Uint32(entry[8:12]))
		case tag == tagYResolution && fieldType == typeRational:
			yOff = int64(order.Uint32(entry[8:12]))
		case tag == tagResolutionUnit && fieldType == typeShort:
			unit = order.Uint16(entry[8:10])
		}
	}

	dpi := 0.0
	for _, off := range []int64{xOff, yOff} {
		if off < 0 || dpi != 0 {
			continue
		}
		v, err := readRational(r, off, order)
		if err != nil {
			return 0, err
		}
		dpi = v
	}
	if dpi == 0 {
		return 0, errors.New("no resolution tags found")
	}

	if unit == unitCentimeter {
		dpi *= 2.54
	}
	return dpi, nil
}

func readRational(r io.ReadSeeker, offset int64, order binary.ByteOrder) (float64, error) {
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return 0, err
	}
	var v [2]uint32
	if err := binary.Read(r, order, &v); err != nil {
		return 0, err
	}
	if v[1] == 0 {
		return 0, nil
	}
	return float64(v[0]) / float64(v[1]), nil
}

// SupportedFormats returns the file extensions Load can decode.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".tiff", ".tif", ".bmp", ".webp"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
