// Package analyzer inspects source images before they are decoded in full
package analyzer

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/focalcrop/pkg/types"
)

// ImageAnalyzer validates image headers against size and format limits
type ImageAnalyzer struct {
	config Config
}

// Config holds the accepted formats and size limits
type Config struct {
	SupportedFormats []string
	// MinImageSize is the smallest accepted width and height
	MinImageSize int
	// MaxPixels bounds width*height so huge images are rejected before decoding. 0 disables it.
	MaxPixels int
}

// New creates a new ImageAnalyzer with default configuration
func New() *ImageAnalyzer {
	return &ImageAnalyzer{
		config: Config{
			SupportedFormats: []string{"jpeg", "png", "gif", "webp", "bmp", "tiff"},
			MinImageSize:     1,
			MaxPixels:        100_000_000,
		},
	}
}

// NewWithConfig creates a new ImageAnalyzer with custom configuration
func NewWithConfig(config Config) *ImageAnalyzer {
	return &ImageAnalyzer{config: config}
}

// ImageInfo contains basic image metadata
type ImageInfo struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Format      string  `json:"format,omitempty"`
	AspectRatio float64 `json:"aspect_ratio"`
	Area        int     `json:"area"`
	Orientation string  `json:"orientation"`
}

// Dimensions returns the size as types.Dimensions
func (i ImageInfo) Dimensions() types.Dimensions {
	return types.Dimensions{Width: i.Width, Height: i.Height}
}

// Inspect reads the header of the image at path
func (a *ImageAnalyzer) Inspect(path string) (ImageInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	return a.InspectReader(file)
}

// InspectReader reads an image header from reader
func (a *ImageAnalyzer) InspectReader(reader io.Reader) (ImageInfo, error) {
	cfg, format, err := image.DecodeConfig(reader)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("failed to decode image header: %w", err)
	}
	if !a.isFormatSupported(format) {
		return ImageInfo{}, fmt.Errorf("unsupported image format: %s", format)
	}

	info := a.GetImageInfo(types.Dimensions{Width: cfg.Width, Height: cfg.Height})
	info.Format = format
	return info, nil
}

// GetImageInfo returns basic information about an image of size d
func (a *ImageAnalyzer) GetImageInfo(d types.Dimensions) ImageInfo {
	info := ImageInfo{
		Width:  d.Width,
		Height: d.Height,
		Area:   d.Width * d.Height,
	}
	if d.Height > 0 {
		info.AspectRatio = float64(d.Width) / float64(d.Height)
	}

	switch {
	case d.Width > d.Height:
		info.Orientation = "landscape"
	case d.Width < d.Height:
		info.Orientation = "portrait"
	default:
		info.Orientation = "square"
	}
	return info
}

func (a *ImageAnalyzer) isFormatSupported(format string) bool {
	for _, supported := range a.config.SupportedFormats {
		if strings.EqualFold(format, supported) {
			return true
		}
	}
	return false
}

// ValidateImage checks if an image meets minimum requirements
func (a *ImageAnalyzer) ValidateImage(info ImageInfo) error {
	if err := info.Dimensions().Validate("validate"); err != nil {
		return err
	}
	if info.Width < a.config.MinImageSize || info.Height < a.config.MinImageSize {
		return fmt.Errorf("image too small: %dx%d (minimum: %d)",
			info.Width, info.Height, a.config.MinImageSize)
	}
	if a.config.MaxPixels > 0 && info.Area > a.config.MaxPixels {
		return fmt.Errorf("image too large: %dx%d (maximum: %d pixels)",
			info.Width, info.Height, a.config.MaxPixels)
	}
	return nil
}
