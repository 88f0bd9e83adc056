package keypoints

import (
	"fmt"
	"math"
)

// Params configures Extract.
type Params struct {
	// Gaussian pre-smoothing of the whole image. A size of 0 disables it.
	PreBlurSize  int     `json:"pre_blur_size"`  // Kernel size, odd (default: 5)
	PreBlurSigma float64 `json:"pre_blur_sigma"` // Kernel spread (default: 1)

	FAST   FASTParams   `json:"fast"`
	Harris HarrisParams `json:"harris"`

	// MaxKeypoints keeps only the strongest keypoints after ranking.
	// 0 keeps all of them.
	MaxKeypoints int `json:"max_keypoints"`

	PatchRadius    int `json:"patch_radius"`    // Orientation and descriptor patch half width (default: 15)
	DescriptorBits int `json:"descriptor_bits"` // Bits per descriptor when a pattern is drawn (default: 256)
}

// DefaultParams returns the default pipeline parameters.
func DefaultParams() Params {
	return Params{
		PreBlurSize:    5,
		PreBlurSigma:   1,
		FAST:           DefaultFASTParams(),
		Harris:         DefaultHarrisParams(),
		MaxKeypoints:   0,
		PatchRadius:    DefaultPatchRadius,
		DescriptorBits: DefaultDescriptorBits,
	}
}

// WithFASTThreshold returns a copy of params with a different FAST threshold.
func (p Params) WithFASTThreshold(threshold float64) Params {
	p.FAST.Threshold = threshold
	return p
}

// WithHarrisThreshold returns a copy of params with a different Harris
// acceptance threshold.
func (p Params) WithHarrisThreshold(threshold float64) Params {
	p.Harris.Threshold = threshold
	return p
}

// WithPreBlur returns a copy of params with a different pre-smoothing
// kernel. Size 0 disables pre-smoothing.
func (p Params) WithPreBlur(size int, sigma float64) Params {
	p.PreBlurSize = size
	p.PreBlurSigma = sigma
	return p
}

// WithMaxKeypoints returns a copy of params keeping at most n keypoints.
func (p Params) WithMaxKeypoints(n int) Params {
	p.MaxKeypoints = n
	return p
}

// WithDescriptor returns a copy of params with a different patch radius
// and descriptor length.
func (p Params) WithDescriptor(radius, bits int) Params {
	p.PatchRadius = radius
	p.DescriptorBits = bits
	return p
}

// Validate checks if the parameters are usable.
// Returns an error wrapping ErrInvalidParams for the first bad field.
func (p Params) Validate() error {
	if p.PreBlurSize < 0 || (p.PreBlurSize > 0 && p.PreBlurSize%2 == 0) {
		return fmt.Errorf("%w: PreBlurSize must be 0 or odd, got %d", ErrInvalidParams, p.PreBlurSize)
	}
	if p.PreBlurSize > 0 && (!(p.PreBlurSigma > 0) || math.IsInf(p.PreBlurSigma, 1)) {
		return fmt.Errorf("%w: PreBlurSigma must be positive, got %v", ErrInvalidParams, p.PreBlurSigma)
	}
	if err := p.FAST.Validate(); err != nil {
		return err
	}
	if err := p.Harris.Validate(); err != nil {
		return err
	}
	if p.MaxKeypoints < 0 {
		return fmt.Errorf("%w: MaxKeypoints must be non-negative, got %d", ErrInvalidParams, p.MaxKeypoints)
	}
	if p.PatchRadius <= 0 {
		return fmt.Errorf("%w: PatchRadius must be positive, got %d", ErrInvalidParams, p.PatchRadius)
	}
	if p.DescriptorBits <= 0 {
		return fmt.Errorf("%w: DescriptorBits must be positive, got %d", ErrInvalidParams, p.DescriptorBits)
	}
	return nil
}
