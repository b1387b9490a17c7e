// Package vision locates the focal point of an image by scanning it in equal
// slices along each axis.
package vision

import (
	"fmt"

	"github.com/menta2k/focalcrop/pkg/backend"
	"github.com/menta2k/focalcrop/pkg/colorspace"
	"github.com/menta2k/focalcrop/pkg/types"
)

// FocalDetector finds the focal point of an image
type FocalDetector struct {
	config DetectionConfig
}

// DetectionConfig holds the tuning knobs of the slice scan
type DetectionConfig struct {
	// SliceCount is the number of slices per axis, at least 2
	SliceCount int
	// Weight balances color distinctiveness (1) against entropy (0)
	Weight float64
	// SmoothingStrength is passed to Smooth before scanning
	SmoothingStrength int
}

// DefaultConfig returns the reference tuning
func DefaultConfig() DetectionConfig {
	return DetectionConfig{
		SliceCount:        20,
		Weight:            0.5,
		SmoothingStrength: 7,
	}
}

// Validate checks the configuration ranges
func (c DetectionConfig) Validate() error {
	if c.SliceCount < 2 {
		return fmt.Errorf("slice count must be at least 2, got %d", c.SliceCount)
	}
	if c.Weight < 0 || c.Weight > 1 {
		return fmt.Errorf("color/entropy weight must be within [0,1], got %g", c.Weight)
	}
	if c.SmoothingStrength < 0 {
		return fmt.Errorf("smoothing strength must not be negative, got %d", c.SmoothingStrength)
	}
	return nil
}

// New creates a FocalDetector with the default configuration
func New() *FocalDetector {
	return &FocalDetector{config: DefaultConfig()}
}

// NewWithConfig creates a FocalDetector with a custom configuration
func NewWithConfig(config DetectionConfig) *FocalDetector {
	return &FocalDetector{config: config}
}

// Config returns the active configuration
func (d *FocalDetector) Config() DetectionConfig {
	return d.config
}

// FindFocalPoint smooths img in place, takes its average color as the
// reference and scans both axes independently against it.
//
// The image is mutated; pass a clone when the pixels are needed afterwards.
func (d *FocalDetector) FindFocalPoint(img backend.RegionFeatureProvider) (types.FocalPoint, error) {
	if err := d.config.Validate(); err != nil {
		return types.FocalPoint{}, err
	}
	size := img.Size()
	if err := size.Validate("focal point"); err != nil {
		return types.FocalPoint{}, err
	}

	if err := img.Smooth(d.config.SmoothingStrength); err != nil {
		return types.FocalPoint{}, fmt.Errorf("smooth: %w", err)
	}

	avg, err := img.AverageColor(types.Full(size))
	if err != nil {
		return types.FocalPoint{}, fmt.Errorf("reference color: %w", err)
	}
	reference := colorspace.RGBToLab(avg)

	scanner := NewScanner(img)
	horizontal, err := scanner.Scan(Horizontal, d.config.SliceCount, d.config.Weight, reference)
	if err != nil {
		return types.FocalPoint{}, fmt.Errorf("horizontal scan: %w", err)
	}
	vertical, err := scanner.Scan(Vertical, d.config.SliceCount, d.config.Weight, reference)
	if err != nil {
		return types.FocalPoint{}, fmt.Errorf("vertical scan: %w", err)
	}

	return types.FocalPoint{
		X:       horizontal.Center,
		Y:       vertical.Center,
		XWeight: horizontal.Weight,
		YWeight: vertical.Weight,
	}, nil
}
