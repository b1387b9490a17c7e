// Package giftbackend implements the analysis primitives with
// github.com/disintegration/gift, following ImageMagick's approach:
// median smoothing and an 8-neighbour Laplacian edge detector.
package giftbackend

import (
	"errors"
	"image"

	"github.com/disintegration/gift"

	"github.com/menta2k/focalcrop/pkg/backend"
	"github.com/menta2k/focalcrop/pkg/colorspace"
	"github.com/menta2k/focalcrop/pkg/processing"
	"github.com/menta2k/focalcrop/pkg/types"
)

// Name is the registry name of this backend
const Name = "gift"

var laplacian = []float32{
	-1, -1, -1,
	-1, 8, -1,
	-1, -1, -1,
}

func init() {
	backend.Register(Backend{})
}

// Backend loads images into gift-processed buffers
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
	out := &Image{img: apply(img)}
	if err := out.Size().Validate("load"); err != nil {
		return nil, err
	}
	return out, nil
}

// apply runs a filter chain into a fresh NRGBA buffer anchored at (0,0)
func apply(src image.Image, filters ...gift.Filter) *image.NRGBA {
	g := gift.New(filters...)
	b := g.Bounds(src.Bounds())
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	g.Draw(dst, src)
	return dst
}

func rect(r types.Region) image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Image is an NRGBA buffer with origin at (0,0)
type Image struct {
	img *image.NRGBA
}

// Size implements backend.RegionFeatureProvider
func (i *Image) Size() types.Dimensions {
	b := i.img.Bounds()
	return types.Dimensions{Width: b.Dx(), Height: b.Dy()}
}

// Smooth applies a square median filter of the given size
func (i *Image) Smooth(strength int) error {
	if strength < 0 {
		return &types.GeometryError{Op: "smooth", Reason: "strength must not be negative"}
	}
	i.img = apply(i.img, gift.Median(strength, false))
	return nil
}

// AverageColor box-resamples the region down to a single pixel
func (i *Image) AverageColor(r types.Region) (colorspace.RGB, error) {
	if err := backend.ValidateRegion("average color", i.Size(), r); err != nil {
		return colorspace.RGB{}, err
	}
	pixel := apply(i.img, gift.Crop(rect(r)), gift.Resize(1, 1, gift.BoxResampling))
	return colorspace.FromColor(pixel.NRGBAAt(0, 0)), nil
}

// Entropy edge-detects and greys the region, then measures the entropy of its histogram
func (i *Image) Entropy(r types.Region) (float64, error) {
	if err := backend.ValidateRegion("entropy", i.Size(), r); err != nil {
		return 0, err
	}
	region := apply(i.img,
		gift.Crop(rect(r)),
		gift.Convolution(laplacian, false, false, false, 0),
		gift.Grayscale(),
	)

	var hist backend.Histogram
	for y := 0; y < r.Height; y++ {
		row := region.Pix[y*region.Stride : y*region.Stride+r.Width*4]
		for p := 0; p < len(row); p += 4 {
			hist.Add(row[p])
		}
	}
	return hist.Entropy(), nil
}

// Clone implements backend.Image
func (i *Image) Clone() backend.Image {
	c := image.NewNRGBA(i.img.Bounds())
	copy(c.Pix, i.img.Pix)
	return &Image{img: c}
}

// ResizeAndCrop implements backend.Image
func (i *Image) ResizeAndCrop(src types.Region, dstW, dstH int) (backend.Image, error) {
	if err := backend.ValidateResize(i.Size(), src, dstW, dstH); err != nil {
		return nil, err
	}
	filters := []gift.Filter{gift.Crop(rect(src))}
	if dstW != src.Width || dstH != src.Height {
		filters = append(filters, gift.Resize(dstW, dstH, gift.LanczosResampling))
	}
	return &Image{img: apply(i.img, filters...)}, nil
}

// Image implements backend.Image
func (i *Image) Image() (image.Image, error) {
	return i.img, nil
}

// Close implements backend.Image
func (i *Image) Close() error {
	return nil
}
