// Package cropper turns a focal point into crop coordinates and drives the
// resize of an image around it.
package cropper

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/menta2k/focalcrop/pkg/backend"
	"github.com/menta2k/focalcrop/pkg/types"
	"github.com/menta2k/focalcrop/pkg/vision"
)

// FocalResolver finds the focal point of an image. The image may be mutated.
type FocalResolver interface {
	FindFocalPoint(img backend.RegionFeatureProvider) (types.FocalPoint, error)
}

// Options are the analysis parameters
type Options struct {
	SliceCount        int     `json:"slice_count"`
	Weight            float64 `json:"color_entropy_weight"`
	SmoothingStrength int     `json:"smoothing_strength"`
}

// DefaultOptions returns 20 slices, an even color/entropy balance and smoothing strength 7
func DefaultOptions() Options {
	d := vision.DefaultConfig()
	return Options{
		SliceCount:        d.SliceCount,
		Weight:            d.Weight,
		SmoothingStrength: d.SmoothingStrength,
	}
}

func (o Options) detectionConfig() vision.DetectionConfig {
	return vision.DetectionConfig{
		SliceCount:        o.SliceCount,
		Weight:            o.Weight,
		SmoothingStrength: o.SmoothingStrength,
	}
}

// Validate checks the option ranges
func (o Options) Validate() error {
	return o.detectionConfig().Validate()
}

// Logger contains a logger. Nothing is logged unless DebugMode is set.
type Logger struct {
	DebugMode bool
	Log       *log.Logger
}

// SmartCropper resizes images, cropping around the focal point when the
// destination aspect ratio differs from the source
type SmartCropper struct {
	options  Options
	detector FocalResolver
	logger   Logger
}

// New creates a SmartCropper with the default options
func New() *SmartCropper {
	return NewWithConfig(DefaultOptions())
}

// NewWithConfig creates a SmartCropper with custom options
func NewWithConfig(options Options) *SmartCropper {
	return &SmartCropper{
		options:  options,
		detector: vision.NewWithConfig(options.detectionConfig()),
		logger:   Logger{Log: log.New(io.Discard, "", 0)},
	}
}

// SetDetector replaces the focal point resolver
func (c *SmartCropper) SetDetector(detector FocalResolver) {
	c.detector = detector
}

// SetLogger sets the debug logger
func (c *SmartCropper) SetLogger(logger Logger) {
	if logger.Log == nil {
		logger.Log = log.New(io.Discard, "", 0)
	}
	c.logger = logger
}

// Options returns the analysis options
func (c *SmartCropper) Options() Options {
	return c.options
}

func (c *SmartCropper) debugf(format string, args ...interface{}) {
	if c.logger.DebugMode {
		c.logger.Log.Printf(format, args...)
	}
}

// Result contains the outcome of a resize
type Result struct {
	Image       backend.Image
	Coordinates types.ResizeCoordinates
	// Focal is the focal point found on the sample. It is zero when no analysis ran.
	Focal types.FocalPoint
	// Sample is the size of the analysed sample. It is zero when no analysis ran.
	Sample types.Dimensions
	// Cropped reports whether part of the source was cut away
	Cropped bool
}

// Resize scales img to fit maxW x maxH. With crop set, the result is exactly
// maxW x maxH (or smaller when the source is smaller) and the cut is placed
// around the focal point. A zero bound with crop unset leaves that side free.
// img itself is not modified.
func (c *SmartCropper) Resize(img backend.Image, maxW, maxH int, crop bool) (Result, error) {
	src := img.Size()
	if err := src.Validate("resize"); err != nil {
		return Result{}, err
	}
	if maxW < 0 || maxH < 0 || (maxW == 0 && maxH == 0) {
		return Result{}, &types.GeometryError{Op: "resize", Reason: fmt.Sprintf("invalid target %dx%d", maxW, maxH)}
	}
	dest := types.Dimensions{Width: maxW, Height: maxH}

	if !crop || maxW == 0 || maxH == 0 {
		w, h := ConstrainInsideBox(src.Width, src.Height, maxW, maxH)
		coords := types.ResizeCoordinates{DstW: w, DstH: h, SrcW: src.Width, SrcH: src.Height}
		return c.apply(img, Result{Coordinates: coords})
	}

	if src.SameAspect(dest) {
		c.debugf("source %s has the aspect ratio of %s, resizing without analysis", src, dest)
		coords, err := ResizeCoordinates(src, dest, types.Origin{}, 1)
		if err != nil {
			return Result{}, err
		}
		return c.apply(img, Result{Coordinates: coords})
	}

	res, err := c.Analyze(img, dest)
	if err != nil {
		return Result{}, err
	}
	return c.apply(img, res)
}

// Analyze computes the crop coordinates of img for a dest sized thumbnail
// without producing any pixels
func (c *SmartCropper) Analyze(img backend.Image, dest types.Dimensions) (Result, error) {
	if err := c.options.Validate(); err != nil {
		return Result{}, err
	}
	src := img.Size()
	if err := src.Validate("analyze"); err != nil {
		return Result{}, err
	}
	if err := dest.Validate("analyze"); err != nil {
		return Result{}, err
	}

	fp, sampleSize, ok, err := c.focus(img, dest)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return c.centered(src, dest)
	}

	_, window := OutputSize(sampleSize, dest)
	origin, err := CropOrigin(sampleSize, window, fp)
	if errors.Is(err, types.ErrNoCropNeeded) {
		coords, err := ResizeCoordinates(src, dest, types.Origin{}, 1)
		if err != nil {
			return Result{}, err
		}
		return Result{Coordinates: coords, Focal: fp, Sample: sampleSize}, nil
	}
	if err != nil {
		return Result{}, err
	}

	scale := float64(src.Width) / float64(sampleSize.Width)
	coords, err := ResizeCoordinates(src, dest, origin, scale)
	if err != nil {
		return Result{}, err
	}
	c.debugf("sample origin %.2f,%.2f scale %.4f coordinates %v", origin.X, origin.Y, scale, coords.Slice())

	return Result{
		Coordinates: coords,
		Focal:       fp,
		Sample:      sampleSize,
		Cropped:     coords.SrcW < src.Width || coords.SrcH < src.Height,
	}, nil
}

// FocalPoint returns the focal point Analyze would use for a dest sized
// thumbnail of img, together with the size of the sample it was found on.
// Sources that cannot be sampled report the center and a zero sample size.
func (c *SmartCropper) FocalPoint(img backend.Image, dest types.Dimensions) (types.FocalPoint, types.Dimensions, error) {
	if err := c.options.Validate(); err != nil {
		return types.FocalPoint{}, types.Dimensions{}, err
	}
	if err := img.Size().Validate("focal point"); err != nil {
		return types.FocalPoint{}, types.Dimensions{}, err
	}
	if err := dest.Validate("focal point"); err != nil {
		return types.FocalPoint{}, types.Dimensions{}, err
	}
	fp, sample, ok, err := c.focus(img, dest)
	if err != nil {
		return types.FocalPoint{}, types.Dimensions{}, err
	}
	if !ok {
		return types.FocalPoint{X: 0.5, Y: 0.5}, types.Dimensions{}, nil
	}
	return fp, sample, nil
}

// focus presizes a copy of img and runs the detector on it. ok is false when
// the source is too small to slice or the presize failed.
func (c *SmartCropper) focus(img backend.Image, dest types.Dimensions) (fp types.FocalPoint, sample types.Dimensions, ok bool, err error) {
	src := img.Size()
	slices := c.options.SliceCount
	if src.Width < slices || src.Height < slices {
		c.debugf("source %s is smaller than %d slices, using a centered crop", src, slices)
		return fp, sample, false, nil
	}

	// The sample never drops below one pixel per slice.
	sw, sh := ConstrainOutsideBox(src.Width, src.Height, max(dest.Width, slices), max(dest.Height, slices))
	presized, err := img.ResizeAndCrop(types.Full(src), sw, sh)
	if err != nil {
		c.debugf("presize of %s to %dx%d failed: %v, using a centered crop", src, sw, sh, err)
		return fp, sample, false, nil
	}
	defer presized.Close()

	fp, err = c.detector.FindFocalPoint(presized)
	if err != nil {
		return fp, sample, false, fmt.Errorf("focal point: %w", err)
	}
	sample = types.Dimensions{Width: sw, Height: sh}
	c.debugf("focal point %.4f,%.4f weights %d,%d on sample %s", fp.X, fp.Y, fp.XWeight, fp.YWeight, sample)
	return fp, sample, true, nil
}

// centered crops around the middle of the source
func (c *SmartCropper) centered(src, dest types.Dimensions) (Result, error) {
	center := types.FocalPoint{X: 0.5, Y: 0.5}
	_, window := OutputSize(src, dest)

	origin, err := CropOrigin(src, window, center)
	if err != nil && !errors.Is(err, types.ErrNoCropNeeded) {
		return Result{}, err
	}
	coords, err := ResizeCoordinates(src, dest, origin, 1)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Coordinates: coords,
		Focal:       center,
		Cropped:     coords.SrcW < src.Width || coords.SrcH < src.Height,
	}, nil
}

// apply resamples img according to res.Coordinates
func (c *SmartCropper) apply(img backend.Image, res Result) (Result, error) {
	coords := res.Coordinates
	out, err := img.ResizeAndCrop(coords.Source(), coords.DstW, coords.DstH)
	if err != nil {
		return Result{}, fmt.Errorf("resample %v: %w", coords.Slice(), err)
	}
	res.Image = out
	return res, nil
}
