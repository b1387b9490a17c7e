//go:build gocv
// +build gocv

// Package gocvbackend implements the analysis primitives with OpenCV through
// gocv.io/x/gocv. It is only compiled with the gocv build tag.
package gocvbackend

import (
	"errors"
	"image"
	"math"

	"gocv.io/x/gocv"

	"github.com/menta2k/focalcrop/pkg/backend"
	"github.com/menta2k/focalcrop/pkg/colorspace"
	"github.com/menta2k/focalcrop/pkg/types"
)

// Name is the registry name of this backend
const Name = "gocv"

func init() {
	backend.Register(Backend{})
}

// Available reports whether the backend was compiled in
func Available() bool { return true }

// Backend loads images into OpenCV matrices
type Backend struct{}

// Name implements backend.Backend
func (Backend) Name() string { return Name }

// Load decodes the file at path
func (Backend) Load(path string) (backend.Image, error) {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	if mat.Empty() {
		mat.Close()
		return nil, &types.BackendError{Backend: Name, Op: "load", Err: errors.New("failed to decode " + path)}
	}
	return &Image{mat: mat}, nil
}

// FromImage copies an already decoded image
func (Backend) FromImage(img image.Image) (backend.Image, error) {
	if img == nil {
		return nil, &types.BackendError{Backend: Name, Op: "load", Err: errors.New("nil image")}
	}
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, &types.BackendError{Backend: Name, Op: "load", Err: err}
	}
	if mat.Empty() {
		mat.Close()
		return nil, &types.GeometryError{Op: "load", Reason: "empty image"}
	}
	return &Image{mat: mat}, nil
}

// Image is a BGR matrix
type Image struct {
	mat gocv.Mat
}

func rect(r types.Region) image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Size implements backend.RegionFeatureProvider
func (i *Image) Size() types.Dimensions {
	return types.Dimensions{Width: i.mat.Cols(), Height: i.mat.Rows()}
}

// Smooth applies a median blur. OpenCV needs an odd aperture, so even strengths round up.
func (i *Image) Smooth(strength int) error {
	if strength < 0 {
		return &types.GeometryError{Op: "smooth", Reason: "strength must not be negative"}
	}
	if strength <= 1 {
		return nil
	}
	if strength%2 == 0 {
		strength++
	}
	dst := gocv.NewMat()
	gocv.MedianBlur(i.mat, &dst, strength)
	if dst.Empty() {
		dst.Close()
		return &types.BackendError{Backend: Name, Op: "smooth", Err: errors.New("median blur produced an empty matrix")}
	}
	i.mat.Close()
	i.mat = dst
	return nil
}

// AverageColor returns the per-channel mean of the region
func (i *Image) AverageColor(r types.Region) (colorspace.RGB, error) {
	if err := backend.ValidateRegion("average color", i.Size(), r); err != nil {
		return colorspace.RGB{}, err
	}
	region := i.mat.Region(rect(r))
	defer region.Close()

	mean := region.Mean()
	return colorspace.RGB{
		R: channel(mean.Val3),
		G: channel(mean.Val2),
		B: channel(mean.Val1),
		A: 255,
	}, nil
}

func channel(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(v))))
}

// Entropy runs a Laplacian edge filter over an isolated copy of the region,
// converts it to grey and measures the entropy of its histogram.
func (i *Image) Entropy(r types.Region) (float64, error) {
	if err := backend.ValidateRegion("entropy", i.Size(), r); err != nil {
		return 0, err
	}
	view := i.mat.Region(rect(r))
	region := view.Clone()
	view.Close()
	defer region.Close()

	kernel := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV32F)
	defer kernel.Close()
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			kernel.SetFloatAt(y, x, -1)
		}
	}
	kernel.SetFloatAt(1, 1, 8)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Filter2D(region, &edges, gocv.MatType(-1), kernel, image.Pt(-1, -1), 0, gocv.BorderReplicate)

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(edges, &gray, gocv.ColorBGRToGray)

	var hist backend.Histogram
	for y := 0; y < gray.Rows(); y++ {
		for x := 0; x < gray.Cols(); x++ {
			hist.Add(gray.GetUCharAt(y, x))
		}
	}
	return hist.Entropy(), nil
}

// Clone implements backend.Image
func (i *Image) Clone() backend.Image {
	return &Image{mat: i.mat.Clone()}
}

// ResizeAndCrop implements backend.Image
func (i *Image) ResizeAndCrop(src types.Region, dstW, dstH int) (backend.Image, error) {
	if err := backend.ValidateResize(i.Size(), src, dstW, dstH); err != nil {
		return nil, err
	}
	region := i.mat.Region(rect(src))
	defer region.Close()

	if dstW == src.Width && dstH == src.Height {
		return &Image{mat: region.Clone()}, nil
	}

	dst := gocv.NewMat()
	gocv.Resize(region, &dst, image.Pt(dstW, dstH), 0, 0, gocv.InterpolationArea)
	if dst.Empty() {
		dst.Close()
		return nil, &types.BackendError{Backend: Name, Op: "resize", Err: errors.New("resize produced an empty matrix")}
	}
	return &Image{mat: dst}, nil
}

// Image implements backend.Image
func (i *Image) Image() (image.Image, error) {
	img, err := i.mat.ToImage()
	if err != nil {
		return nil, &types.BackendError{Backend: Name, Op: "export", Err: err}
	}
	return img, nil
}

// Close implements backend.Image
func (i *Image) Close() error {
	return i.mat.Close()
}
