package cropper

import (
	"fmt"
	"math"

	"github.com/menta2k/focalcrop/pkg/types"
)

// round rounds half away from zero
func round(v float64) int {
	return int(math.Round(v))
}

// ConstrainOutsideBox scales width x height down, never up, to the smallest
// size that still covers a minW x minH box. A side that ends up one pixel
// short of the box after rounding is bumped to the box size, which keeps the
// function idempotent.
func ConstrainOutsideBox(width, height, minW, minH int) (int, int) {
	widthRatio, heightRatio := 1.0, 1.0
	didWidth, didHeight := false, false

	if width > 0 && width > minW {
		widthRatio = float64(minW) / float64(width)
		didWidth = true
	}
	if height > 0 && height > minH {
		heightRatio = float64(minH) / float64(height)
		didHeight = true
	}

	smaller := math.Min(widthRatio, heightRatio)
	larger := math.Max(widthRatio, heightRatio)

	// The larger ratio overflows the box on one side, which is what covering needs.
	ratio := smaller
	if round(float64(width)*larger) > minW || round(float64(height)*larger) > minH {
		ratio = larger
	}

	w := max(1, round(float64(width)*ratio))
	h := max(1, round(float64(height)*ratio))

	if didWidth && w == minW-1 {
		w = minW
	}
	if didHeight && h == minH-1 {
		h = minH
	}
	return w, h
}

// ConstrainInsideBox scales width x height down, never up, to fit inside a
// maxW x maxH box while keeping the aspect ratio. A zero bound leaves that
// side unconstrained.
func ConstrainInsideBox(width, height, maxW, maxH int) (int, int) {
	if maxW <= 0 && maxH <= 0 {
		return width, height
	}

	widthRatio, heightRatio := 1.0, 1.0
	didWidth, didHeight := false, false

	if maxW > 0 && width > 0 && width > maxW {
		widthRatio = float64(maxW) / float64(width)
		didWidth = true
	}
	if maxH > 0 && height > 0 && height > maxH {
		heightRatio = float64(maxH) / float64(height)
		didHeight = true
	}

	smaller := math.Min(widthRatio, heightRatio)
	larger := math.Max(widthRatio, heightRatio)

	ratio := larger
	if (maxW > 0 && round(float64(width)*larger) > maxW) || (maxH > 0 && round(float64(height)*larger) > maxH) {
		ratio = smaller
	}

	w := max(1, round(float64(width)*ratio))
	h := max(1, round(float64(height)*ratio))

	if didWidth && w == maxW-1 {
		w = maxW
	}
	if didHeight && h == maxH-1 {
		h = maxH
	}
	return w, h
}

// CropOrigin places a window of size win inside an image of size src so that
// the focal point lands on a rule of thirds line chosen by the axis bias, or
// in the middle of the window when there is no bias.
//
// Only the axis along which src is proportionally longer than win is moved;
// the other coordinate is 0. The moving coordinate is kept at most
// src-win-1 and at least 0. ErrNoCropNeeded is returned when src and win
// have exactly the same aspect ratio.
func CropOrigin(src, win types.Dimensions, fp types.FocalPoint) (types.Origin, error) {
	if err := src.Validate("crop origin"); err != nil {
		return types.Origin{}, err
	}
	if err := win.Validate("crop origin"); err != nil {
		return types.Origin{}, err
	}
	if win.Width > src.Width || win.Height > src.Height {
		return types.Origin{}, &types.GeometryError{
			Op:     "crop origin",
			Reason: fmt.Sprintf("window %s does not fit inside %s", win, src),
		}
	}
	if src.SameAspect(win) {
		return types.Origin{}, types.ErrNoCropNeeded
	}

	if src.WiderThan(win) {
		x := place(fp.X, fp.XWeight, src.Width, win.Width)
		return types.Origin{X: x}, nil
	}
	y := place(fp.Y, fp.YWeight, src.Height, win.Height)
	return types.Origin{Y: y}, nil
}

// place positions the window on one axis
func place(focus float64, weight, total, window int) float64 {
	var v float64
	switch {
	case weight > 0:
		v = focus*float64(total) - (2.0/3.0)*float64(window)
	case weight < 0:
		v = focus*float64(total) - (1.0/3.0)*float64(window)
	default:
		v = focus*float64(total) - 0.5*float64(window)
	}
	v = math.Min(v, float64(total-window-1))
	return math.Max(0, v)
}

// CropRectFor computes the integer crop rectangle of a dest sized window in
// an image of size src, with no rescaling involved.
func CropRectFor(src, dest types.Dimensions, fp types.FocalPoint) (types.CropRect, error) {
	origin, err := CropOrigin(src, dest, fp)
	if err != nil {
		return types.CropRect{}, err
	}
	return types.CropRect{
		X:      round(origin.X),
		Y:      round(origin.Y),
		Width:  dest.Width,
		Height: dest.Height,
	}, nil
}

// OutputSize returns the size of the resized image and the source rectangle
// size that maps onto it without distortion. The output never exceeds orig,
// and a zero dest side is filled in from the aspect ratio of orig.
func OutputSize(orig, dest types.Dimensions) (out, crop types.Dimensions) {
	aspect := float64(orig.Width) / float64(orig.Height)

	newW := min(dest.Width, orig.Width)
	newH := min(dest.Height, orig.Height)
	if newW <= 0 {
		newW = round(float64(newH) * aspect)
	}
	if newH <= 0 {
		newH = round(float64(newW) / aspect)
	}
	newW, newH = max(1, newW), max(1, newH)

	ratio := math.Max(float64(newW)/float64(orig.Width), float64(newH)/float64(orig.Height))
	crop = types.Dimensions{
		Width:  min(orig.Width, round(float64(newW)/ratio)),
		Height: min(orig.Height, round(float64(newH)/ratio)),
	}
	return types.Dimensions{Width: newW, Height: newH}, crop
}

// ResizeCoordinates maps a crop origin measured on a sample back onto the
// original image. scale is the original width divided by the sample width.
// The source rectangle is kept inside orig.
func ResizeCoordinates(orig, dest types.Dimensions, sampleOrigin types.Origin, scale float64) (types.ResizeCoordinates, error) {
	if err := orig.Validate("rescale"); err != nil {
		return types.ResizeCoordinates{}, err
	}
	if dest.Width < 0 || dest.Height < 0 || (dest.Width == 0 && dest.Height == 0) {
		return types.ResizeCoordinates{}, &types.GeometryError{
			Op:     "rescale",
			Reason: fmt.Sprintf("destination %s needs at least one positive side", dest),
		}
	}
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return types.ResizeCoordinates{}, &types.GeometryError{Op: "rescale", Reason: fmt.Sprintf("invalid scale %g", scale)}
	}

	out, crop := OutputSize(orig, dest)

	x := round(sampleOrigin.X * scale)
	y := round(sampleOrigin.Y * scale)
	x = max(0, min(x, orig.Width-crop.Width))
	y = max(0, min(y, orig.Height-crop.Height))

	return types.ResizeCoordinates{
		SrcX: x,
		SrcY: y,
		DstW: out.Width,
		DstH: out.Height,
		SrcW: crop.Width,
		SrcH: crop.Height,
	}, nil
}
