// Package config loads keypoint pipeline tuning from JSON files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"orb-keypoints/internal/imageio"
	"orb-keypoints/internal/keypoints"
)

// TuningConfig is the JSON tuning schema. Every field is optional; the
// Get* methods fall back to the pipeline defaults for fields left unset,
// so partial files are safe.
type TuningConfig struct {
	// Input
	Grayscale    *string `json:"grayscale,omitempty"`     // "mean", "luma" or "value"
	MaxDimension *int    `json:"max_dimension,omitempty"` // 0 disables downscaling

	// Pre-smoothing
	PreBlurSize  *int     `json:"pre_blur_size,omitempty"`
	PreBlurSigma *float64 `json:"pre_blur_sigma,omitempty"`

	// FAST
	FASTThreshold *float64 `json:"fast_threshold,omitempty"`
	FASTArcLength *int     `json:"fast_arc_length,omitempty"`

	// Harris
	HarrisK          *float64 `json:"harris_k,omitempty"`
	HarrisThreshold  *float64 `json:"harris_threshold,omitempty"`
	HarrisWindowSize *int     `json:"harris_window_size,omitempty"`
	HarrisSigma      *float64 `json:"harris_sigma,omitempty"`
	MaxKeypoints     *int     `json:"max_keypoints,omitempty"`

	// Orientation and descriptor
	PatchRadius    *int   `json:"patch_radius,omitempty"`
	DescriptorBits *int   `json:"descriptor_bits,omitempty"`
	PatternSeed    *int64 `json:"pattern_seed,omitempty"` // unset draws a time-seeded pattern
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }
func ptrInt64(v int64) *int64       { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field except
// PatternSeed set to its default.
func DefaultTuningConfig() *TuningConfig {
	p := keypoints.DefaultParams()
	return &TuningConfig{
		Grayscale:        ptrString(imageio.GrayMean.String()),
		MaxDimension:     ptrInt(0),
		PreBlurSize:      ptrInt(p.PreBlurSize),
		PreBlurSigma:     ptrFloat64(p.PreBlurSigma),
		FASTThreshold:    ptrFloat64(p.FAST.Threshold),
		FASTArcLength:    ptrInt(p.FAST.ArcLength),
		HarrisK:          ptrFloat64(p.Harris.K),
		HarrisThreshold:  ptrFloat64(p.Harris.Threshold),
		HarrisWindowSize: ptrInt(p.Harris.WindowSize),
		HarrisSigma:      ptrFloat64(p.Harris.Sigma),
		MaxKeypoints:     ptrInt(p.MaxKeypoints),
		PatchRadius:      ptrInt(p.PatchRadius),
		DescriptorBits:   ptrInt(p.DescriptorBits),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file must have a .json extension and be at most 1MB. Unknown fields
// are rejected so typos do not silently fall back to defaults.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	f, err := os.Open(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	defer f.Close()

	cfg := EmptyTuningConfig()
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid. Pipeline
// parameters are checked together through keypoints.Params.Validate, so
// errors wrap keypoints.ErrInvalidParams.
func (c *TuningConfig) Validate() error {
	if c.Grayscale != nil {
		if _, err := imageio.ParseGrayMode(*c.Grayscale); err != nil {
			return err
		}
	}
	if c.MaxDimension != nil && *c.MaxDimension < 0 {
		return fmt.Errorf("max_dimension must be non-negative, got %d", *c.MaxDimension)
	}
	if err := c.Params().Validate(); err != nil {
		return err
	}
	return nil
}

// Params returns the pipeline parameters described by the config.
func (c *TuningConfig) Params() keypoints.Params {
	p := keypoints.DefaultParams()
	if c.PreBlurSize != nil {
		p.PreBlurSize = *c.PreBlurSize
	}
	if c.PreBlurSigma != nil {
		p.PreBlurSigma = *c.PreBlurSigma
	}
	if c.FASTThreshold != nil {
		p.FAST.Threshold = *c.FASTThreshold
	}
	if c.FASTArcLength != nil {
		p.FAST.ArcLength = *c.FASTArcLength
	}
	if c.HarrisK != nil {
		p.Harris.K = *c.HarrisK
	}
	if c.HarrisThreshold != nil {
		p.Harris.Threshold = *c.HarrisThreshold
	}
	if c.HarrisWindowSize != nil {
		p.Harris.WindowSize = *c.HarrisWindowSize
	}
	if c.HarrisSigma != nil {
		p.Harris.Sigma = *c.HarrisSigma
	}
	if c.MaxKeypoints != nil {
		p.MaxKeypoints = *c.MaxKeypoints
	}
	if c.PatchRadius != nil {
		p.PatchRadius = *c.PatchRadius
	}
	if c.DescriptorBits != nil {
		p.DescriptorBits = *c.DescriptorBits
	}
	return p
}

// GetGrayscale returns the grayscale conversion mode or the default (mean).
func (c *TuningConfig) GetGrayscale() imageio.GrayMode {
	if c.Grayscale == nil {
		return imageio.GrayMean
	}
	mode, err := imageio.ParseGrayMode(*c.Grayscale)
	if err != nil {
		return imageio.GrayMean // default on parse error
	}
	return mode
}

// GetMaxDimension returns the max_dimension value or the default (0, no
// downscaling).
func (c *TuningConfig) GetMaxDimension() int {
	if c.MaxDimension == nil {
		return 0
	}
	return *c.MaxDimension
}

// GetPatternSeed returns the pattern seed and whether one was configured.
func (c *TuningConfig) GetPatternSeed() (int64, bool) {
	if c.PatternSeed == nil {
		return 0, false
	}
	return *c.PatternSeed, true
}
