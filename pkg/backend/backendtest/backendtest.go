// Package backendtest holds a conformance suite every image backend must pass.
package backendtest

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/focalcrop/pkg/backend"
	"github.com/menta2k/focalcrop/pkg/colorspace"
	"github.com/menta2k/focalcrop/pkg/types"
)

// Uniform returns a width x height image filled with c
func Uniform(width, height int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// Blocks returns a checkerboard of black and white squares of the given size
func Blocks(width, height, block int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x/block+y/block)%2 == 0 {
				img.SetNRGBA(x, y, color.NRGBA{255, 255, 255, 255})
			} else {
				img.SetNRGBA(x, y, color.NRGBA{0, 0, 0, 255})
			}
		}
	}
	return img
}

// Stripes returns one pixel wide vertical stripes, white on even columns
func Stripes(width, height int) *image.NRGBA {
	img := Uniform(width, height, color.NRGBA{0, 0, 0, 255})
	for y := 0; y < height; y++ {
		for x := 0; x < width; x += 2 {
			img.SetNRGBA(x, y, color.NRGBA{255, 255, 255, 255})
		}
	}
	return img
}

// Run exercises every primitive of b
func Run(t *testing.T, b backend.Backend) {
	t.Run("FromImage", func(t *testing.T) {
		img, err := b.FromImage(Uniform(40, 30, color.NRGBA{10, 20, 30, 255}))
		require.NoError(t, err)
		defer img.Close()
		assert.Equal(t, types.Dimensions{Width: 40, Height: 30}, img.Size())

		_, err = b.FromImage(nil)
		assert.True(t, types.IsBackendError(err))
	})

	t.Run("Load", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "in.png")
		f, err := os.Create(path)
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, Uniform(24, 16, color.NRGBA{200, 100, 50, 255})))
		require.NoError(t, f.Close())

		img, err := b.Load(path)
		require.NoError(t, err)
		defer img.Close()
		assert.Equal(t, types.Dimensions{Width: 24, Height: 16}, img.Size())

		_, err = b.Load(filepath.Join(t.TempDir(), "missing.png"))
		require.Error(t, err)
		assert.True(t, types.IsBackendError(err))
	})

	t.Run("AverageColor", func(t *testing.T) {
		src := Uniform(10, 4, color.NRGBA{0, 0, 0, 255})
		for y := 0; y < 4; y++ {
			for x := 5; x < 10; x++ {
				src.SetNRGBA(x, y, color.NRGBA{255, 255, 255, 255})
			}
		}
		img, err := b.FromImage(src)
		require.NoError(t, err)
		defer img.Close()

		c, err := img.AverageColor(types.Region{X: 0, Y: 0, Width: 10, Height: 4})
		require.NoError(t, err)
		assert.InDelta(t, 127.5, float64(c.R), 1)
		assert.InDelta(t, 127.5, float64(c.G), 1)
		assert.InDelta(t, 127.5, float64(c.B), 1)

		c, err = img.AverageColor(types.Region{X: 6, Y: 1, Width: 3, Height: 2})
		require.NoError(t, err)
		assert.Equal(t, colorspace.RGB{R: 255, G: 255, B: 255, A: 255}, c)
	})

	t.Run("EntropyUniformIsZero", func(t *testing.T) {
		img, err := b.FromImage(Uniform(30, 20, color.NRGBA{128, 128, 128, 255}))
		require.NoError(t, err)
		defer img.Close()

		e, err := img.Entropy(types.Region{X: 5, Y: 0, Width: 10, Height: 20})
		require.NoError(t, err)
		assert.Equal(t, 0.0, e)
	})

	t.Run("EntropyDetailIsPositive", func(t *testing.T) {
		img, err := b.FromImage(Blocks(30, 30, 3))
		require.NoError(t, err)
		defer img.Close()

		e, err := img.Entropy(types.Region{Width: 30, Height: 30})
		require.NoError(t, err)
		assert.Greater(t, e, 0.0)
	})

	t.Run("InvalidRegion", func(t *testing.T) {
		img, err := b.FromImage(Uniform(20, 20, color.NRGBA{1, 2, 3, 255}))
		require.NoError(t, err)
		defer img.Close()

		_, err = img.Entropy(types.Region{X: 15, Y: 0, Width: 10, Height: 10})
		assert.True(t, types.IsGeometryError(err))
		_, err = img.AverageColor(types.Region{X: 0, Y: 0, Width: 0, Height: 10})
		assert.True(t, types.IsGeometryError(err))
		_, err = img.ResizeAndCrop(types.Region{X: 0, Y: 0, Width: 21, Height: 10}, 5, 5)
		assert.True(t, types.IsGeometryError(err))
		assert.True(t, types.IsGeometryError(img.Smooth(-1)))
	})

	t.Run("CloneIsIndependent", func(t *testing.T) {
		img, err := b.FromImage(Stripes(20, 20))
		require.NoError(t, err)
		defer img.Close()

		column := types.Region{X: 1, Y: 0, Width: 1, Height: 20}
		before, err := img.AverageColor(column)
		require.NoError(t, err)

		clone := img.Clone()
		defer clone.Close()
		require.NoError(t, clone.Smooth(3))

		after, err := img.AverageColor(column)
		require.NoError(t, err)
		assert.Equal(t, before, after)

		smoothed, err := clone.AverageColor(column)
		require.NoError(t, err)
		assert.NotEqual(t, before, smoothed)
	})

	t.Run("ResizeAndCrop", func(t *testing.T) {
		img, err := b.FromImage(Blocks(40, 30, 5))
		require.NoError(t, err)
		defer img.Close()

		out, err := img.ResizeAndCrop(types.Region{X: 10, Y: 5, Width: 20, Height: 20}, 10, 10)
		require.NoError(t, err)
		defer out.Close()
		assert.Equal(t, types.Dimensions{Width: 10, Height: 10}, out.Size())

		same, err := img.ResizeAndCrop(types.Region{X: 10, Y: 5, Width: 20, Height: 20}, 20, 20)
		require.NoError(t, err)
		defer same.Close()
		assert.Equal(t, types.Dimensions{Width: 20, Height: 20}, same.Size())

		exported, err := out.Image()
		require.NoError(t, err)
		assert.Equal(t, 10, exported.Bounds().Dx())
		assert.Equal(t, 10, exported.Bounds().Dy())

		// The source keeps its size
		assert.Equal(t, types.Dimensions{Width: 40, Height: 30}, img.Size())
	})
}
