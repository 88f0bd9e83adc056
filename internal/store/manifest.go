package store

import (
	"encoding/json"
	"os"
	"time"

	"orb-keypoints/internal/keypoints"

	"github.com/google/uuid"
)

// Manifest is a human-readable JSON summary of one extraction run. It
// carries keypoint positions and orientations but not descriptors, which
// live in the table.
type Manifest struct {
	Version   int       `json:"version"`
	RunID     string    `json:"run_id"`
	Created   time.Time `json:"created"`
	Source    string    `json:"source"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Scale     float64   `json:"scale"`
	DPI       float64   `json:"dpi,omitempty"`
	Grayscale string    `json:"grayscale"`
	Seed      *int64    `json:"pattern_seed,omitempty"`

	Params keypoints.Params `json:"params"`

	// Counts per stage
	Keypoints int `json:"keypoints"`
	Described int `json:"described"`

	Features []keypoints.Feature `json:"features"`

	// Output files, as given on the command line
	TablePath   string `json:"table,omitempty"`
	NPYPath     string `json:"npy,omitempty"`
	OverlayPath string `json:"overlay,omitempty"`
}

// NewManifest summarizes a table and the result it was built from.
func NewManifest(t *Table, res *keypoints.Result, params keypoints.Params) *Manifest {
	return &Manifest{
		Version:   tableVersion,
		RunID:     uuid.NewString(),
		Created:   time.Now(),
		Source:    t.Source,
		Width:     t.Width,
		Height:    t.Height,
		Scale:     t.Scale,
		DPI:       t.DPI,
		Params:    params,
		Keypoints: len(res.Keypoints),
		Described: len(t.Features),
		Features:  t.Features,
	}
}

// LoadManifest loads a manifest from a JSON file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	return &m, nil
}

// Save writes the manifest to a file.
func (m *Manifest) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
