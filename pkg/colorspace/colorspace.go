// Package colorspace converts sRGB colors to an approximate L*a*b* space and
// measures perceptual distance between them.
//
// The Lab conversion is the fast Hunter-style approximation used by the
// focal point analysis, not a standards-compliant CIE Lab. Its constants are
// kept exactly so that scores stay comparable between runs and backends.
package colorspace

import (
	"image/color"
	"math"
)

// RGB is an 8-bit color. Alpha is carried for completeness but ignored by the analysis.
type RGB struct {
	R uint8 `json:"red"`
	G uint8 `json:"green"`
	B uint8 `json:"blue"`
	A uint8 `json:"alpha"`
}

// FromColor converts any color.Color to a non-premultiplied RGB value
func FromColor(c color.Color) RGB {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB{R: n.R, G: n.G, B: n.B, A: n.A}
}

// Lab is a perceptual color coordinate
type Lab struct {
	L float64 `json:"l"`
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// sRGB to XYZ matrix rows.
var (
	xRow = [3]float64{0.4124, 0.3576, 0.1805}
	yRow = [3]float64{0.2126, 0.7152, 0.0722}
	zRow = [3]float64{0.0193, 0.1192, 0.9505}
)

// linearize expands one gamma-encoded channel to linear light on a 0..100 scale
func linearize(v uint8) float64 {
	c := float64(v) / 255
	if c > 0.04045 {
		c = math.Pow((c+0.055)/1.055, 2.4)
	} else {
		c = c / 12.92
	}
	return c * 100
}

// RGBToLab converts an RGB color to Lab
func RGBToLab(c RGB) Lab {
	r, g, b := linearize(c.R), linearize(c.G), linearize(c.B)

	x := xRow[0]*r + xRow[1]*g + xRow[2]*b
	y := yRow[0]*r + yRow[1]*g + yRow[2]*b
	z := zRow[0]*r + zRow[1]*g + zRow[2]*b

	// Y is zero only for pure black, where the a and b terms would divide by zero.
	if y == 0 {
		return Lab{}
	}

	sy := math.Sqrt(y)
	return Lab{
		L: 10 * sy,
		A: 17.5 * (1.02*x - y) / sy,
		B: 7 * (y - 0.847*z) / sy,
	}
}

// Distance is the Euclidean distance between two Lab colors divided by 10,
// which puts it on roughly the same 0..10 scale as region entropy.
func Distance(c1, c2 Lab) float64 {
	dl := c2.L - c1.L
	da := c2.A - c1.A
	db := c2.B - c1.B
	return math.Sqrt(dl*dl+da*da+db*db) / 10
}
