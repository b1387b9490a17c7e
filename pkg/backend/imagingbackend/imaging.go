// Package imagingbackend implements the analysis primitives on top of
// github.com/disintegration/imaging. The filters mirror the classic GD
// behaviour: a weighted 3x3 smoothing kernel and a 3x3 edge detector biased
// to mid grey.
package imagingbackend

import (
	"errors"
	"image"

	"github.com/disintegration/imaging"

	"github.com/menta2k/focalcrop/pkg/backend"
	"github.com/menta2k/focalcrop/pkg/colorspace"
	"github.com/menta2k/focalcrop/pkg/processing"
	"github.com/menta2k/focalcrop/pkg/types"
)

// Name is the registry name of this backend
const Name = "imaging"

var edgeKernel = [9]float64{
	-1, 0, -1,
	0, 4, 0,
	-1, 0, -1,
}

// edgeBias shifts the edge response so that flat areas map to mid grey
const edgeBias = 127

func init() {
	backend.Register(Backend{})
}

// Backend loads images into imaging-backed buffers
type Backend struct{}

// Name implements backend.Backend
func (Backend) Name() string { return Name }

// Load decodes the file at path
func (b Backend) Load(path string) (backend.Image, error) {
	img, err := processing.NewProcessor().LoadImage(path)
	if err != nil {
		return nil, &types.BackendError{Backend: Name, Op: "load", Err: err}
	}
	return b.FromImage(img)
}

// FromImage copies an already decoded image
func (Backend) FromImage(img image.Image) (backend.Image, error) {
	if img == nil {
		return nil, &types.BackendError{Backend: Name, Op: "load", Err: errors.New("nil image")}
	}
	nrgba := imaging.Clone(img)
	if err := sizeOf(nrgba).Validate("load"); err != nil {
		return nil, err
	}
	return &Image{img: nrgba}, nil
}

// Image is an NRGBA buffer with origin at (0,0)
type Image struct {
	img *image.NRGBA
}

func sizeOf(img *image.NRGBA) types.Dimensions {
	b := img.Bounds()
	return types.Dimensions{Width: b.Dx(), Height: b.Dy()}
}

func rect(r types.Region) image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Size implements backend.RegionFeatureProvider
func (i *Image) Size() types.Dimensions {
	return sizeOf(i.img)
}

// Smooth convolves the image with a 3x3 kernel whose center weight is strength
// and whose neighbours weigh 1, normalized by the kernel sum.
func (i *Image) Smooth(strength int) error {
	if strength < 0 {
		return &types.GeometryError{Op: "smooth", Reason: "strength must not be negative"}
	}
	w := float64(strength)
	kernel := [9]float64{
		1, 1, 1,
		1, w, 1,
		1, 1, 1,
	}
	i.img = imaging.Convolve3x3(i.img, kernel, &imaging.ConvolveOptions{Normalize: true})
	return nil
}

// AverageColor box-resamples the region down to a single pixel
func (i *Image) AverageColor(r types.Region) (colorspace.RGB, error) {
	if err := backend.ValidateRegion("average color", i.Size(), r); err != nil {
		return colorspace.RGB{}, err
	}
	region := imaging.Crop(i.img, rect(r))
	pixel := imaging.Resize(region, 1, 1, imaging.Box)
	return colorspace.FromColor(pixel.NRGBAAt(0, 0)), nil
}

// Entropy edge-detects and greys the region, then measures the entropy of its histogram
func (i *Image) Entropy(r types.Region) (float64, error) {
	if err := backend.ValidateRegion("entropy", i.Size(), r); err != nil {
		return 0, err
	}
	region := imaging.Crop(i.img, rect(r))
	region = imaging.Convolve3x3(region, edgeKernel, &imaging.ConvolveOptions{Bias: edgeBias})
	region = imaging.Grayscale(region)

	var hist backend.Histogram
	// Grayscale sets R=G=B, so the red channel carries the level.
	for p := 0; p < len(region.Pix); p += 4 {
		hist.Add(region.Pix[p])
	}
	return hist.Entropy(), nil
}

// Clone implements backend.Image
func (i *Image) Clone() backend.Image {
	return &Image{img: imaging.Clone(i.img)}
}

// ResizeAndCrop implements backend.Image
func (i *Image) ResizeAndCrop(src types.Region, dstW, dstH int) (backend.Image, error) {
	if err := backend.ValidateResize(i.Size(), src, dstW, dstH); err != nil {
		return nil, err
	}
	cropped := imaging.Crop(i.img, rect(src))
	if dstW == src.Width && dstH == src.Height {
		return &Image{img: cropped}, nil
	}
	return &Image{img: imaging.Resize(cropped, dstW, dstH, imaging.Lanczos)}, nil
}

// Image implements backend.Image
func (i *Image) Image() (image.Image, error) {
	return i.img, nil
}

// Close implements backend.Image
func (i *Image) Close() error {
	return nil
}
