// Package store persists extracted features: a gob-encoded descriptor
// table, a NumPy descriptor matrix and a JSON run manifest.
package store

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"

	"orb-keypoints/internal/keypoints"
	"orb-keypoints/pkg/geometry"
)

// tableVersion is written first in every encoded table.
const tableVersion = 1

// Table holds the features extracted from one image together with the
// pattern that produced their descriptors. Table implements the GobDecoder
// and GobEncoder interfaces.
type Table struct {
	Source string  // Input image path
	Width  int     // Grid width the features refer to
	Height int     // Grid height the features refer to
	Scale  float64 // Downscale factor applied before extraction (1 = none)
	DPI    float64 // Input resolution, 0 when unknown

	Pattern  *keypoints.Pattern
	Features []keypoints.Feature
}

// NewTable builds a table from an extraction result.
func NewTable(source string, width, height int, res *keypoints.Result) *Table {
	features := make([]keypoints.Feature, len(res.Features))
	copy(features, res.Features)
	return &Table{
		Source:   source,
		Width:    width,
		Height:   height,
		Scale:    1,
		Pattern:  res.Pattern,
		Features: features,
	}
}

// Len returns the number of features.
func (t *Table) Len() int {
	return len(t.Features)
}

// DescriptorBits returns the descriptor length of the table, taken from
// the pattern, or from the first feature when there is no pattern.
func (t *Table) DescriptorBits() int {
	if t.Pattern != nil {
		return t.Pattern.Len()
	}
	if len(t.Features) > 0 {
		return t.Features[0].Descriptor.Len()
	}
	return 0
}

// GobEncode places a binary representation of the table in a byte slice.
func (t *Table) GobEncode() ([]byte, error) {
	buffer := new(bytes.Buffer)
	compressor := gzip.NewWriter(buffer)
	encoder := gob.NewEncoder(compressor)

	// Add a version number first.
	if err := encoder.Encode(tableVersion); err != nil {
		return nil, fmt.Errorf("unable to encode table version: %w", err)
	}

	header := []interface{}{t.Source, t.Width, t.Height, t.Scale, t.DPI}
	for _, v := range header {
		if err := encoder.Encode(v); err != nil {
			return nil, fmt.Errorf("unable to encode table header: %w", err)
		}
	}

	// Pattern. A radius of 0 marks a table without one.
	radius, offsets := 0, []geometry.PointInt{}
	if t.Pattern != nil {
		radius, offsets = t.Pattern.Radius(), t.Pattern.Offsets()
	}
	if err := encoder.Encode(radius); err != nil {
		return nil, fmt.Errorf("unable to encode pattern radius: %w", err)
	}
	if err := encoder.Encode(offsets); err != nil {
		return nil, fmt.Errorf("unable to encode pattern offsets: %w", err)
	}

	// Features are encoded field by field; descriptors use their own
	// binary form.
	if err := encoder.Encode(len(t.Features)); err != nil {
		return nil, fmt.Errorf("unable to encode feature count: %w", err)
	}
	for i, f := range t.Features {
		if err := encoder.Encode(f.Keypoint); err != nil {
			return nil, fmt.Errorf("unable to encode keypoint %d: %w", i, err)
		}
		if err := encoder.Encode(f.Orientation); err != nil {
			return nil, fmt.Errorf("unable to encode orientation %d: %w", i, err)
		}
		desc, err := f.Descriptor.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("unable to encode descriptor %d: %w", i, err)
		}
		if err := encoder.Encode(desc); err != nil {
			return nil, fmt.Errorf("unable to encode descriptor %d: %w", i, err)
		}
	}

	// Finish up.
	if err := compressor.Close(); err != nil {
		return nil, fmt.Errorf("unable to flush compressor: %w", err)
	}

	return buffer.Bytes(), nil
}

// GobDecode reconstructs the table from a binary representation.
func (t *Table) GobDecode(from []byte) error {
	decompressor, err := gzip.NewReader(bytes.NewReader(from))
	if err != nil {
		return fmt.Errorf("unable to open decompressor: %w", err)
	}
	defer decompressor.Close()
	decoder := gob.NewDecoder(decompressor)

	var version int
	if err := decoder.Decode(&version); err != nil {
		return fmt.Errorf("unable to decode table version: %w", err)
	}
	if version != tableVersion {
		return fmt.Errorf("unsupported table version %d", version)
	}

	var decoded Table
	header := []interface{}{&decoded.Source, &decoded.Width, &decoded.Height, &decoded.Scale, &decoded.DPI}
	for _, v := range header {
		if err := decoder.Decode(v); err != nil {
			return fmt.Errorf("unable to decode table header: %w", err)
		}
	}

	var radius int
	var offsets []geometry.PointInt
	if err := decoder.Decode(&radius); err != nil {
		return fmt.Errorf("unable to decode pattern radius: %w", err)
	}
	if err := decoder.Decode(&offsets); err != nil {
		return fmt.Errorf("unable to decode pattern offsets: %w", err)
	}
	if radius > 0 {
		decoded.Pattern, err = keypoints.NewPatternFromOffsets(radius, offsets)
		if err != nil {
			return fmt.Errorf("unable to rebuild pattern: %w", err)
		}
	}

	var size int
	if err := decoder.Decode(&size); err != nil {
		return fmt.Errorf("unable to decode feature count: %w", err)
	}
	if size < 0 {
		return fmt.Errorf("invalid feature count %d", size)
	}
	decoded.Features = make([]keypoints.Feature, size)
	for i := range decoded.Features {
		f := &decoded.Features[i]
		if err := decoder.Decode(&f.Keypoint); err != nil {
			return fmt.Errorf("unable to decode keypoint %d: %w", i, err)
		}
		if err := decoder.Decode(&f.Orientation); err != nil {
			return fmt.Errorf("unable to decode orientation %d: %w", i, err)
		}
		var desc []byte
		if err := decoder.Decode(&desc); err != nil {
			return fmt.Errorf("unable to decode descriptor %d: %w", i, err)
		}
		if err := f.Descriptor.UnmarshalBinary(desc); err != nil {
			return fmt.Errorf("descriptor %d: %w", i, err)
		}
	}

	*t = decoded
	return nil
}

// Save writes the gob-encoded table to path.
func (t *Table) Save(path string) error {
	data, err := t.GobEncode()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads a table written by Save.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t := new(Table)
	if err := t.GobDecode(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
