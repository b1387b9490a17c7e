package types

import "fmt"

// Dimensions is a pixel width and height
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Validate reports a GeometryError unless both sides are positive
func (d Dimensions) Validate(op string) error {
	if d.Width <= 0 || d.Height <= 0 {
		return &GeometryError{Op: op, Reason: fmt.Sprintf("dimensions must be positive, got %dx%d", d.Width, d.Height)}
	}
	return nil
}

// SameAspect reports whether d and o have exactly the same width/height ratio.
// The comparison is done by cross multiplication so no rounding is involved.
func (d Dimensions) SameAspect(o Dimensions) bool {
	return int64(d.Width)*int64(o.Height) == int64(o.Width)*int64(d.Height)
}

// WiderThan reports whether d is proportionally wider than o
func (d Dimensions) WiderThan(o Dimensions) bool {
	return int64(d.Width)*int64(o.Height) > int64(o.Width)*int64(d.Height)
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// Region is a rectangle in pixel coordinates inside a parent image
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Full returns the region covering an entire image of the given size
func Full(d Dimensions) Region {
	return Region{Width: d.Width, Height: d.Height}
}

// Area returns the area of the region
func (r Region) Area() int {
	return r.Width * r.Height
}

// Within reports whether r lies entirely inside an image of size d
func (r Region) Within(d Dimensions) bool {
	return r.X >= 0 && r.Y >= 0 && r.Width > 0 && r.Height > 0 &&
		r.X+r.Width <= d.Width && r.Y+r.Height <= d.Height
}

func (r Region) String() string {
	return fmt.Sprintf("%dx%d@%d,%d", r.Width, r.Height, r.X, r.Y)
}

// FocalPoint is the most salient position of an image as fractions of its
// width and height, together with the directional bias found on each axis.
type FocalPoint struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	XWeight int     `json:"x_weight"`
	YWeight int     `json:"y_weight"`
}

// Origin is a crop origin that may still carry a fractional part
type Origin struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CropRect is an integer crop origin with the destination size
type CropRect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ResizeCoordinates describes a resample step: the source rectangle
// (SrcX, SrcY, SrcW, SrcH) is scaled into the destination rectangle
// (DstX, DstY, DstW, DstH).
type ResizeCoordinates struct {
	DstX int `json:"dst_x"`
	DstY int `json:"dst_y"`
	SrcX int `json:"src_x"`
	SrcY int `json:"src_y"`
	DstW int `json:"dst_w"`
	DstH int `json:"dst_h"`
	SrcW int `json:"src_w"`
	SrcH int `json:"src_h"`
}

// Source returns the source rectangle as a Region
func (c ResizeCoordinates) Source() Region {
	return Region{X: c.SrcX, Y: c.SrcY, Width: c.SrcW, Height: c.SrcH}
}

// Slice returns the coordinates in the order dst_x, dst_y, src_x, src_y, dst_w, dst_h, src_w, src_h
func (c ResizeCoordinates) Slice() []int {
	return []int{c.DstX, c.DstY, c.SrcX, c.SrcY, c.DstW, c.DstH, c.SrcW, c.SrcH}
}
