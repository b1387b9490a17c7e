package focalcrop

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/focalcrop/pkg/analyzer"
	"github.com/menta2k/focalcrop/pkg/cropper"
	"github.com/menta2k/focalcrop/pkg/thumbnail"
)

// createTestImage creates a grey image with a bright checkered subject on the right
func createTestImage(width, height int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBA{64, 64, 64, 255}
			if x >= width*3/4 && x < width*17/20 && y >= height*3/10 && y < height/2 && (x/2+y/2)%2 == 0 {
				c = color.NRGBA{255, 255, 255, 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestNew(t *testing.T) {
	fc, err := New()
	require.NoError(t, err)
	assert.Equal(t, "imaging", fc.Backend())
	assert.NotNil(t, fc.analyzer)
	assert.NotNil(t, fc.cropper)
	assert.NotNil(t, fc.generator)
	assert.Equal(t, cropper.DefaultOptions(), fc.cropper.Options())
}

func TestNewWithOptions(t *testing.T) {
	options := cropper.Options{SliceCount: 10, Weight: 1, SmoothingStrength: 0}
	fc, err := New(WithBackend("gift"), WithOptions(options))
	require.NoError(t, err)
	assert.Equal(t, "gift", fc.Backend())
	assert.Equal(t, options, fc.cropper.Options())

	_, err = New(WithBackend("nope"))
	assert.Error(t, err)

	_, err = New(WithOptions(cropper.Options{SliceCount: 1, Weight: 0.5}))
	assert.ErrorContains(t, err, "invalid options")
}

func TestAnalyze(t *testing.T) {
	fc, err := New()
	require.NoError(t, err)

	img := createTestImage(400, 200)
	before := img.(*image.NRGBA).NRGBAAt(0, 0)

	focal, err := fc.Analyze(img)
	require.NoError(t, err)
	assert.Greater(t, focal.X, 0.6)
	assert.Less(t, focal.X, 0.95)
	assert.Equal(t, before, img.(*image.NRGBA).NRGBAAt(0, 0))
}

func TestAnalyzeForMatchesCrop(t *testing.T) {
	fc, err := New()
	require.NoError(t, err)
	img := createTestImage(400, 200)

	focal, sample, err := fc.AnalyzeFor(img, 100, 100)
	require.NoError(t, err)
	assert.Equal(t, 200, sample.Width)
	assert.Equal(t, 100, sample.Height)

	cropped, err := fc.Crop(img, 100, 100)
	require.NoError(t, err)
	assert.Equal(t, cropped.Focal, focal)

	// Analyze samples for the default thumbnail size
	def, err := fc.Analyze(img)
	require.NoError(t, err)
	expected, _, err := fc.AnalyzeFor(img, AnalysisSize.Width, AnalysisSize.Height)
	require.NoError(t, err)
	assert.Equal(t, expected, def)
}

func TestAnalyzeForTinyImage(t *testing.T) {
	fc, err := New()
	require.NoError(t, err)

	focal, sample, err := fc.AnalyzeFor(createTestImage(12, 12), 10, 10)
	require.NoError(t, err)
	assert.Equal(t, 0.5, focal.X)
	assert.Equal(t, 0.5, focal.Y)
	assert.Zero(t, sample.Width)
}

func TestAnalyzeImage(t *testing.T) {
	fc, err := New()
	require.NoError(t, err)

	result, err := fc.AnalyzeImage(createTestImage(400, 200))
	require.NoError(t, err)
	assert.Equal(t, 400, result.Info.Width)
	assert.Equal(t, "landscape", result.Info.Orientation)
	assert.Greater(t, result.Focal.X, 0.5)
	assert.Equal(t, 300, result.Sample.Width)
	assert.Equal(t, 150, result.Sample.Height)

	strict := analyzer.NewWithConfig(analyzer.Config{MinImageSize: 500})
	fc, err = New(WithAnalyzer(strict))
	require.NoError(t, err)
	_, err = fc.AnalyzeImage(createTestImage(400, 200))
	assert.ErrorContains(t, err, "too small")
}

func TestCrop(t *testing.T) {
	fc, err := New()
	require.NoError(t, err)

	result, err := fc.Crop(createTestImage(400, 200), 100, 100)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(100, 100), result.Image.Bounds().Size())
	assert.True(t, result.Cropped)
	assert.Equal(t, 200, result.Coordinates.SrcW)
	assert.Equal(t, 200, result.Coordinates.SrcH)
	// centered would start at 100
	assert.Greater(t, result.Coordinates.SrcX, 100)

	_, err = fc.Crop(createTestImage(400, 200), -1, 100)
	assert.Error(t, err)
}

func TestCropDebugLog(t *testing.T) {
	var buf bytes.Buffer
	fc, err := New(WithLogger(cropper.Logger{DebugMode: true, Log: log.New(&buf, "", 0)}))
	require.NoError(t, err)

	_, err = fc.Crop(createTestImage(400, 200), 100, 100)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "focal point")
}

func TestProcessImageFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "subject.png")
	f, err := os.Create(src)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, createTestImage(400, 200)))
	require.NoError(t, f.Close())

	fc, err := New(WithOutput(thumbnail.Options{Format: "png"}))
	require.NoError(t, err)

	sizes := []thumbnail.Size{{Name: "thumbnail", Width: 100, Height: 100, Crop: true}}
	outputs, err := fc.ProcessImageFile(context.Background(), src, filepath.Join(dir, "out"), sizes)
	require.NoError(t, err)
	require.Len(t, outputs, 1)
	assert.Equal(t, filepath.Join(dir, "out", "subject-100x100.png"), outputs[0].Path)
	assert.FileExists(t, outputs[0].Path)

	results, err := fc.ProcessFiles(context.Background(), []string{src}, filepath.Join(dir, "batch"), sizes, 2)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.FileExists(t, results[0].Outputs[0].Path)
}

func TestGetVersion(t *testing.T) {
	assert.Equal(t, Version, GetVersion())
}
